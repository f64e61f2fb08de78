package agents

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	agentbridge "github.com/intelmesh/agent-bridge"
	"github.com/intelmesh/agent-bridge/adapters"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

// newGmailBridge returns a bridge whose "gmail" service is backed by handler.
func newGmailBridge(t *testing.T, handler http.HandlerFunc) *agentbridge.AgentBridge {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	adapter := adapters.NewGmailAdapter(oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "tok"}))
	adapter.BaseURL = server.URL

	bridge := agentbridge.New()
	require.NoError(t, bridge.RegisterService("gmail", adapter, testServiceConfig()))
	return bridge
}

func TestDraftEmailParsesLLMOutput(t *testing.T) {
	llm := &fakeLLM{reply: "```json\n{\"subject\": \"Research findings\", \"body\": \"Hello,\\n\\nHere is what I found.\"}\n```"}
	agent := NewEmailAgent(nil, llm, nil)

	draft, err := agent.DraftEmail(context.Background(), "findings text", []string{"dana@example.com"}, "share findings", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"dana@example.com"}, draft.To)
	assert.Equal(t, "Research findings", draft.Subject)
	assert.Contains(t, draft.Body, "Here is what I found")
}

func TestDraftEmailRejectsMalformedLLMOutput(t *testing.T) {
	llm := &fakeLLM{reply: "Sure! Here's your email: Dear team..."}
	agent := NewEmailAgent(nil, llm, nil)

	_, err := agent.DraftEmail(context.Background(), "findings", []string{"dana@example.com"}, "share", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "malformed draft")
}

func TestDraftEmailRequiresLLM(t *testing.T) {
	agent := NewEmailAgent(nil, nil, nil)
	_, err := agent.DraftEmail(context.Background(), "findings", []string{"dana@example.com"}, "share", "")
	require.Error(t, err)
}

func TestCreateGmailDraft(t *testing.T) {
	var rawMessage string
	bridge := newGmailBridge(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/gmail/v1/users/me/drafts", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		var payload struct {
			Message struct {
				Raw string `json:"raw"`
			} `json:"message"`
		}
		require.NoError(t, json.Unmarshal(body, &payload))
		rawMessage = payload.Message.Raw
		fmt.Fprint(w, `{"id": "r-42", "message": {"id": "m-42"}}`)
	})
	agent := NewEmailAgent(bridge, nil, nil)

	draft := &EmailDraft{
		To:      []string{"dana@example.com"},
		Cc:      []string{"sam@example.com"},
		Subject: "Quarterly research",
		Body:    "Findings attached below.",
	}
	draftID, err := agent.CreateGmailDraft(context.Background(), draft)
	require.NoError(t, err)
	assert.Equal(t, "r-42", draftID)

	decoded, err := base64.URLEncoding.DecodeString(rawMessage)
	require.NoError(t, err)
	msg := string(decoded)
	assert.Contains(t, msg, "To: dana@example.com\r\n")
	assert.Contains(t, msg, "Cc: sam@example.com\r\n")
	assert.Contains(t, msg, "Subject: Quarterly research\r\n")
	assert.True(t, strings.HasSuffix(msg, "\r\nFindings attached below."))
}

func TestCreateGmailDraftNotConfirmed(t *testing.T) {
	bridge := newGmailBridge(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{}`)
	})
	agent := NewEmailAgent(bridge, nil, nil)

	_, err := agent.CreateGmailDraft(context.Background(), &EmailDraft{
		To: []string{"dana@example.com"}, Subject: "s", Body: "b",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "did not confirm")
}

func TestCreateGmailDraftValidatesFirst(t *testing.T) {
	bridge := newGmailBridge(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("invalid drafts never reach the API")
	})
	agent := NewEmailAgent(bridge, nil, nil)

	_, err := agent.CreateGmailDraft(context.Background(), &EmailDraft{Subject: "s", Body: "b"})
	require.Error(t, err)
}

func TestResearchAndDraftEndToEnd(t *testing.T) {
	braveServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, braveFixture)
	}))
	t.Cleanup(braveServer.Close)
	gmailServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id": "draft-7"}`)
	}))
	t.Cleanup(gmailServer.Close)

	brave := adapters.NewBraveAdapter("k")
	brave.BaseURL = braveServer.URL
	gmail := adapters.NewGmailAdapter(oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "tok"}))
	gmail.BaseURL = gmailServer.URL

	bridge := agentbridge.New()
	require.NoError(t, bridge.RegisterService("brave", brave, testServiceConfig()))
	require.NoError(t, bridge.RegisterService("gmail", gmail, testServiceConfig()))

	llm := &fakeLLM{reply: `{"subject": "Findings", "body": "Summary of findings."}`}
	emailAgent := NewEmailAgent(bridge, llm, nil)
	researchAgent := NewResearchAgent(bridge, llm, emailAgent, nil)

	summary, draftID, err := researchAgent.ResearchAndDraft(context.Background(),
		"golang concurrency", []string{"dana@example.com"}, "share findings", "professional")
	require.NoError(t, err)
	assert.Equal(t, "draft-7", draftID)
	assert.Len(t, summary.Results, 3)
}

func TestStripCodeFence(t *testing.T) {
	assert.Equal(t, `{"a":1}`, stripCodeFence("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripCodeFence("```\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripCodeFence(`{"a":1}`))
}
