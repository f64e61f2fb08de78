package agents

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	agentbridge "github.com/intelmesh/agent-bridge"
	"go.uber.org/zap"
)

const emailSystemPrompt = `You are a professional email composition agent.
Compose well-structured business emails from research findings: proper
greeting, clear body paragraphs covering the key findings, and a closing.
Match the requested tone. Respond with a JSON object of the form
{"subject": "...", "body": "..."} and nothing else.`

// EmailAgent drafts professional emails from research findings and files them
// with Gmail. It never reports a draft as created unless the provider
// returned a draft ID.
type EmailAgent struct {
	bridge *agentbridge.AgentBridge
	llm    LLMClient
	logger *zap.Logger
}

func NewEmailAgent(bridge *agentbridge.AgentBridge, llm LLMClient, logger *zap.Logger) *EmailAgent {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EmailAgent{bridge: bridge, llm: llm, logger: logger}
}

// llmDraft is the structured output requested from the model.
type llmDraft struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// DraftEmail asks the LLM for a subject and body covering the findings and
// returns a validated draft addressed to recipients.
func (a *EmailAgent) DraftEmail(ctx context.Context, findings string, recipients []string, purpose, tone string) (*EmailDraft, error) {
	if a.llm == nil {
		return nil, fmt.Errorf("no LLM configured for email drafting")
	}
	if tone == "" {
		tone = "professional"
	}

	prompt := fmt.Sprintf(
		"Create an email draft based on this research:\n\n%s\n\nPurpose: %s\nTone: %s\nRecipients: %s",
		findings, purpose, tone, strings.Join(recipients, ", "))

	text, err := a.llm.Complete(ctx, emailSystemPrompt, prompt)
	if err != nil {
		return nil, fmt.Errorf("drafting email: %w", err)
	}

	var parsed llmDraft
	if err := json.Unmarshal([]byte(stripCodeFence(text)), &parsed); err != nil {
		return nil, fmt.Errorf("llm returned malformed draft: %w", err)
	}

	draft := &EmailDraft{
		To:      recipients,
		Subject: strings.TrimSpace(parsed.Subject),
		Body:    strings.TrimSpace(parsed.Body),
	}
	if err := draft.Validate(); err != nil {
		return nil, err
	}
	return draft, nil
}

// gmailDraftResponse mirrors the slice of the drafts.create answer we consume.
type gmailDraftResponse struct {
	ID      string `json:"id"`
	Message struct {
		ID string `json:"id"`
	} `json:"message"`
}

// CreateGmailDraft files the draft via the "gmail" service and returns the
// draft ID the provider assigned.
func (a *EmailAgent) CreateGmailDraft(ctx context.Context, draft *EmailDraft) (string, error) {
	if err := draft.Validate(); err != nil {
		return "", err
	}

	raw := base64.URLEncoding.EncodeToString([]byte(buildRawMessage(draft)))
	body, err := json.Marshal(map[string]any{
		"message": map[string]string{"raw": raw},
	})
	if err != nil {
		return "", err
	}

	resp, err := a.bridge.Request(ctx, "gmail", &agentbridge.NormalizedRequest{
		Method:   http.MethodPost,
		Endpoint: "/gmail/v1/users/me/drafts",
		Body:     body,
	})
	if err != nil {
		return "", fmt.Errorf("creating gmail draft: %w", err)
	}

	var parsed gmailDraftResponse
	if err := json.Unmarshal(resp.Data, &parsed); err != nil {
		return "", fmt.Errorf("decoding draft response: %w", err)
	}
	if parsed.ID == "" {
		return "", fmt.Errorf("gmail did not confirm the draft")
	}

	a.logger.Info("gmail draft created", zap.String("draft_id", parsed.ID))
	return parsed.ID, nil
}

// buildRawMessage renders the draft as an RFC 2822 message with CRLF line
// endings, ready for base64url encoding.
func buildRawMessage(draft *EmailDraft) string {
	var b strings.Builder
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(draft.To, ", "))
	if len(draft.Cc) > 0 {
		fmt.Fprintf(&b, "Cc: %s\r\n", strings.Join(draft.Cc, ", "))
	}
	if len(draft.Bcc) > 0 {
		fmt.Fprintf(&b, "Bcc: %s\r\n", strings.Join(draft.Bcc, ", "))
	}
	fmt.Fprintf(&b, "Subject: %s\r\n", draft.Subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(draft.Body)
	return b.String()
}

// stripCodeFence removes a surrounding markdown code fence some models wrap
// around JSON output.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
