package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	agentbridge "github.com/intelmesh/agent-bridge"
)

// LLMClient produces a completion for a system/user prompt pair. Both agents
// depend on this interface so tests can substitute a canned model.
type LLMClient interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// OpenAIClient is an LLMClient backed by an OpenAI-compatible chat
// completions endpoint, reached through the bridge so LLM calls share the
// same rate limiting and retry behavior as every other outbound request.
type OpenAIClient struct {
	Bridge      *agentbridge.AgentBridge
	Service     string // bridge service name, default "openai"
	Model       string
	Temperature float64
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message      chatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

func (c *OpenAIClient) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	service := c.Service
	if service == "" {
		service = "openai"
	}
	model := c.Model
	if model == "" {
		model = "gpt-4o"
	}

	body, err := json.Marshal(chatRequest{
		Model: model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature: c.Temperature,
	})
	if err != nil {
		return "", err
	}

	resp, err := c.Bridge.Request(ctx, service, &agentbridge.NormalizedRequest{
		Method:   http.MethodPost,
		Endpoint: "/v1/chat/completions",
		Body:     body,
	})
	if err != nil {
		return "", err
	}

	var parsed chatResponse
	if err := json.Unmarshal(resp.Data, &parsed); err != nil {
		return "", fmt.Errorf("decoding completion response: %w", err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("llm error: %s", parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("llm returned no choices")
	}
	return parsed.Choices[0].Message.Content, nil
}
