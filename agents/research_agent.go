package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	agentbridge "github.com/intelmesh/agent-bridge"
	"go.uber.org/zap"
)

const researchSystemPrompt = `You are a truthful research assistant.
Summarize the provided web search results for the requested topic.
Only state what the results support; if the results are thin or off-topic, say so.
Never invent sources or findings.`

// ResearchAgent searches the web through the bridge and produces summarized
// findings. It can delegate email drafting to an EmailAgent.
type ResearchAgent struct {
	bridge *agentbridge.AgentBridge
	llm    LLMClient
	email  *EmailAgent
	logger *zap.Logger
}

// NewResearchAgent wires a research agent. llm may be nil, in which case
// summaries fall back to the formatted result list. email may be nil if
// delegation is not needed.
func NewResearchAgent(bridge *agentbridge.AgentBridge, llm LLMClient, email *EmailAgent, logger *zap.Logger) *ResearchAgent {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ResearchAgent{bridge: bridge, llm: llm, email: email, logger: logger}
}

// braveResponse mirrors the slice of the Brave Search answer we consume.
type braveResponse struct {
	Web struct {
		Results []struct {
			Title       string   `json:"title"`
			URL         string   `json:"url"`
			Description string   `json:"description"`
			Score       *float64 `json:"score"`
		} `json:"results"`
	} `json:"web"`
}

// Search validates the query and runs it against the "brave" service.
func (a *ResearchAgent) Search(ctx context.Context, query string, maxResults int) ([]SearchResult, error) {
	q, err := NewSearchQuery(query, maxResults)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("q", q.Query)
	params.Set("count", strconv.Itoa(q.MaxResults))
	params.Set("safesearch", "moderate")
	params.Set("country", "US")
	params.Set("search_lang", "en")

	resp, err := a.bridge.Request(ctx, "brave", &agentbridge.NormalizedRequest{
		Method:   http.MethodGet,
		Endpoint: "/res/v1/web/search?" + params.Encode(),
	})
	if err != nil {
		return nil, err
	}

	var parsed braveResponse
	if err := json.Unmarshal(resp.Data, &parsed); err != nil {
		return nil, fmt.Errorf("decoding search response: %w", err)
	}

	results := make([]SearchResult, 0, len(parsed.Web.Results))
	for _, item := range parsed.Web.Results {
		if len(results) == q.MaxResults {
			break
		}
		title := item.Title
		if title == "" {
			title = "No title"
		}
		desc := item.Description
		if desc == "" {
			desc = "No description"
		}
		results = append(results, SearchResult{
			Title:       title,
			URL:         item.URL,
			Description: desc,
			Score:       item.Score,
		})
	}

	a.logger.Info("search completed",
		zap.String("query", q.Query),
		zap.Int("results", len(results)))
	return results, nil
}

// Research searches a topic and produces a summary with key insights. When
// the LLM is unavailable or fails, the summary says so instead of pretending;
// the raw results and insights are still returned.
func (a *ResearchAgent) Research(ctx context.Context, topic string, maxResults int) (*ResearchSummary, error) {
	results, err := a.Search(ctx, topic, maxResults)
	if err != nil {
		return nil, err
	}

	summary := &ResearchSummary{
		Query:       topic,
		Results:     results,
		KeyInsights: ExtractKeyInsights(results, 5),
		Timestamp:   time.Now(),
	}

	if a.llm == nil {
		summary.Summary = FormatSearchResults(results, topic)
		return summary, nil
	}

	text, err := a.llm.Complete(ctx, researchSystemPrompt,
		fmt.Sprintf("Topic: %s\n\n%s", topic, FormatSearchResults(results, topic)))
	if err != nil {
		a.logger.Warn("llm summary failed", zap.Error(err))
		summary.Summary = fmt.Sprintf("Summary unavailable (%v). Raw results:\n%s",
			err, FormatSearchResults(results, topic))
		return summary, nil
	}
	summary.Summary = text
	return summary, nil
}

// ResearchAndDraft researches a topic and delegates drafting an email about
// the findings to the email agent. It returns the summary, the created Gmail
// draft ID, and any error. A draft ID is returned only when the provider
// confirmed the draft.
func (a *ResearchAgent) ResearchAndDraft(ctx context.Context, topic string, recipients []string, purpose, tone string) (*ResearchSummary, string, error) {
	summary, err := a.Research(ctx, topic, 0)
	if err != nil {
		return nil, "", err
	}
	if a.email == nil {
		return summary, "", fmt.Errorf("email delegation failed: no email agent configured")
	}

	draft, err := a.email.DraftEmail(ctx, summary.Summary, recipients, purpose, tone)
	if err != nil {
		return summary, "", fmt.Errorf("email delegation failed: %w", err)
	}
	draftID, err := a.email.CreateGmailDraft(ctx, draft)
	if err != nil {
		return summary, "", fmt.Errorf("email delegation failed: %w", err)
	}
	return summary, draftID, nil
}

// FormatSearchResults renders results for display or LLM consumption.
func FormatSearchResults(results []SearchResult, query string) string {
	if len(results) == 0 {
		return fmt.Sprintf("No search results found for query: %q", query)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Search Results for: %q (%d results)\n", query, len(results))
	b.WriteString(strings.Repeat("=", 60))
	b.WriteString("\n\n")
	for i, r := range results {
		fmt.Fprintf(&b, "%d. %s\n", i+1, r.Title)
		fmt.Fprintf(&b, "   URL: %s\n", r.URL)
		fmt.Fprintf(&b, "   Description: %s\n", r.Description)
		if r.Score != nil {
			fmt.Fprintf(&b, "   Relevance Score: %.2f\n", *r.Score)
		}
		b.WriteString("\n")
	}
	return b.String()
}

var authoritativeDomains = []string{".edu", ".gov", ".org"}

// ExtractKeyInsights derives simple observations from a result set: source
// count, authoritative domains, recency markers, and recurring themes.
func ExtractKeyInsights(results []SearchResult, maxInsights int) []string {
	if len(results) == 0 {
		return []string{"No search results available for insight extraction"}
	}

	insights := []string{
		fmt.Sprintf("Found %d relevant sources on the topic", len(results)),
	}

	authCount := 0
	for _, r := range results {
		for _, domain := range authoritativeDomains {
			if strings.Contains(r.URL, domain) {
				authCount++
				break
			}
		}
	}
	if authCount > 0 {
		insights = append(insights, fmt.Sprintf(
			"Includes %d authoritative sources (educational, government, or organizational)", authCount))
	}

	year := strconv.Itoa(time.Now().Year())
	recent := 0
	for _, r := range results {
		if strings.Contains(r.Title, year) || strings.Contains(r.Description, year) {
			recent++
		}
	}
	if recent > 0 {
		insights = append(insights, fmt.Sprintf("Contains %d sources with current year references", recent))
	}

	if themes := topKeywords(results, 3); len(themes) > 0 {
		insights = append(insights, "Key themes include: "+strings.Join(themes, ", "))
	}

	insights = append(insights, "Information compiled from multiple independent sources")
	if len(insights) > maxInsights {
		insights = insights[:maxInsights]
	}
	return insights
}

// topKeywords counts words longer than four characters across titles and
// descriptions and returns up to n that occur more than once, most frequent
// first.
func topKeywords(results []SearchResult, n int) []string {
	freq := make(map[string]int)
	for _, r := range results {
		for _, word := range strings.Fields(strings.ToLower(r.Title + " " + r.Description)) {
			if len(word) > 4 {
				freq[word]++
			}
		}
	}

	words := make([]string, 0, len(freq))
	for w, c := range freq {
		if c > 1 {
			words = append(words, w)
		}
	}
	sort.Slice(words, func(i, j int) bool {
		if freq[words[i]] != freq[words[j]] {
			return freq[words[i]] > freq[words[j]]
		}
		return words[i] < words[j]
	})
	if len(words) > n {
		words = words[:n]
	}
	return words
}
