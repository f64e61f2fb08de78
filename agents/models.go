// Package agents implements the research and email-drafting agents that sit
// on top of the agent-bridge SDK. The research agent searches the web through
// the Brave adapter and summarizes findings with an LLM; the email agent
// turns findings into a professional draft and files it in Gmail.
package agents

import (
	"fmt"
	"net/mail"
	"strings"
	"time"
)

// SearchResult is one entry returned by the web search service.
type SearchResult struct {
	Title       string   `json:"title"`
	URL         string   `json:"url"`
	Description string   `json:"description"`
	Score       *float64 `json:"score,omitempty"`
}

// SearchQuery is a validated search request.
type SearchQuery struct {
	Query      string
	MaxResults int
}

const (
	maxQueryLen       = 500
	maxSearchResults  = 50
	defaultMaxResults = 10
)

// NewSearchQuery sanitizes and validates a raw query. Whitespace is collapsed,
// the query must end up between 1 and 500 characters, and maxResults must be
// between 1 and 50 (zero selects the default of 10).
func NewSearchQuery(query string, maxResults int) (SearchQuery, error) {
	sanitized := strings.Join(strings.Fields(query), " ")
	if sanitized == "" {
		return SearchQuery{}, fmt.Errorf("query must be a non-empty string")
	}
	if len(sanitized) > maxQueryLen {
		return SearchQuery{}, fmt.Errorf("query is too long (max %d characters)", maxQueryLen)
	}
	if maxResults == 0 {
		maxResults = defaultMaxResults
	}
	if maxResults < 1 || maxResults > maxSearchResults {
		return SearchQuery{}, fmt.Errorf("maxResults must be between 1 and %d", maxSearchResults)
	}
	return SearchQuery{Query: sanitized, MaxResults: maxResults}, nil
}

// ResearchSummary is the research agent's output for one topic.
type ResearchSummary struct {
	Query       string         `json:"query"`
	Results     []SearchResult `json:"results"`
	Summary     string         `json:"summary"`
	KeyInsights []string       `json:"key_insights"`
	Timestamp   time.Time      `json:"timestamp"`
}

// EmailDraft is a draft ready to be filed with the email provider.
type EmailDraft struct {
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Body    string   `json:"body"`
	Cc      []string `json:"cc,omitempty"`
	Bcc     []string `json:"bcc,omitempty"`
}

// Validate checks that the draft has at least one recipient, every address
// parses, and subject and body are non-empty.
func (d *EmailDraft) Validate() error {
	if len(d.To) == 0 {
		return fmt.Errorf("email draft needs at least one recipient")
	}
	for _, lists := range [][]string{d.To, d.Cc, d.Bcc} {
		for _, addr := range lists {
			if _, err := mail.ParseAddress(addr); err != nil {
				return fmt.Errorf("invalid email address %q: %w", addr, err)
			}
		}
	}
	if strings.TrimSpace(d.Subject) == "" {
		return fmt.Errorf("email draft needs a subject")
	}
	if strings.TrimSpace(d.Body) == "" {
		return fmt.Errorf("email draft needs a body")
	}
	return nil
}
