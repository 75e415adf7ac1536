// Package openrouter asks a chat model for semantic caption groups. The
// model is an untrusted oracle: its reply is parsed leniently and handed to
// the grouper's validation pipeline, never used directly.
package openrouter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/forPelevin/capgen/internal/types"
)

const defaultModel = "anthropic/claude-3.5-sonnet"

type Adapter struct {
	key     string
	model   string
	baseURL string
	client  *http.Client
}

func New(apiKey, model, baseURL string) *Adapter {
	if model == "" {
		model = defaultModel
	}
	return &Adapter{
		key:     apiKey,
		model:   model,
		baseURL: normalizeBaseURL(baseURL),
		client:  &http.Client{Timeout: 2 * time.Minute},
	}
}

const groupingInstructions = `You are a subtitle expert. You will be given a word-level transcript, one word per line as INDEX|START|END|WORD.
Group the words into natural caption display chunks that are easy to read:
- Break at sentence endings and natural pauses (periods, commas, questions).
- Keep short phrases together.
- A word after a time gap larger than one second starts a new group.
- Use at least 2 words per group unless a word is isolated by a gap.
Return ONLY valid JSON of the form {"groups":[{"word_indices":[0,1,2]}]} covering every word index exactly once.`

func (a *Adapter) SuggestGroups(ctx context.Context, words []types.Word) ([]types.GroupSuggestion, error) {
	if len(words) == 0 {
		return nil, nil
	}

	var lines []string
	for i, w := range words {
		lines = append(lines, fmt.Sprintf("%d|%.2f|%.2f|%s", i, w.Start, w.End, w.Text))
	}
	prompt := groupingInstructions + "\n\nTranscript (" +
		fmt.Sprintf("%d words", len(words)) + "):\n" + strings.Join(lines, "\n")

	payload := map[string]any{
		"model":  a.model,
		"stream": false,
		"messages": []map[string]any{
			{"role": "user", "content": prompt},
		},
		"response_format": map[string]any{
			"type": "json_schema",
			"json_schema": map[string]any{
				"name": "caption_groups",
				"schema": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"groups": map[string]any{
							"type": "array",
							"items": map[string]any{
								"type": "object",
								"properties": map[string]any{
									"word_indices": map[string]any{
										"type":  "array",
										"items": map[string]any{"type": "integer"},
									},
								},
								"required": []string{"word_indices"},
							},
						},
					},
					"required": []string{"groups"},
				},
			},
		},
	}

	pb, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("openrouter: marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/api/v1/chat/completions", bytes.NewReader(pb))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+a.key)
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("openrouter: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("openrouter: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("openrouter: status %d: %s", resp.StatusCode, redactSecrets(truncate(string(body), 400), a.key))
	}

	var chat struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &chat); err != nil {
		return nil, fmt.Errorf("openrouter: decode response: %w", err)
	}
	if len(chat.Choices) == 0 {
		return nil, fmt.Errorf("openrouter: empty choices")
	}

	return ParseSuggestions(chat.Choices[0].Message.Content)
}

// ParseSuggestions leniently extracts group candidates from model output:
// markdown fences are stripped, the first JSON object is located, and
// non-integral indices are dropped. Structural validation happens later in
// the grouper.
func ParseSuggestions(content string) ([]types.GroupSuggestion, error) {
	raw, err := extractJSON(stripFences(content))
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Groups []struct {
			WordIndices []json.Number `json:"word_indices"`
		} `json:"groups"`
	}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, fmt.Errorf("openrouter: invalid groups JSON: %w", err)
	}

	var out []types.GroupSuggestion
	for _, g := range parsed.Groups {
		var indices []int
		for _, n := range g.WordIndices {
			v, err := n.Int64()
			if err != nil {
				continue
			}
			indices = append(indices, int(v))
		}
		out = append(out, types.GroupSuggestion{WordIndices: indices})
	}
	return out, nil
}

var fenceRE = regexp.MustCompile("(?m)^```(?:json)?\\s*$")

func stripFences(s string) string {
	return strings.TrimSpace(fenceRE.ReplaceAllString(s, ""))
}

func extractJSON(s string) (string, error) {
	t := strings.TrimSpace(s)
	if strings.HasPrefix(t, "{") && strings.HasSuffix(t, "}") {
		return t, nil
	}
	start := strings.Index(t, "{")
	end := strings.LastIndex(t, "}")
	if start >= 0 && end > start {
		return t[start : end+1], nil
	}
	return "", fmt.Errorf("openrouter: could not locate JSON object in: %q", truncate(t, 200))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

var (
	bearerTokenRE = regexp.MustCompile(`(?i)\bBearer\s+[A-Za-z0-9._-]+\b`)
	apiKeyFieldRE = regexp.MustCompile(`(?i)(api[_-]?key\s*[:=]\s*)([^\n\r,;]+)`)
)

func redactSecrets(s, apiKey string) string {
	if s == "" {
		return s
	}
	out := s
	if apiKey != "" {
		out = strings.ReplaceAll(out, apiKey, "[REDACTED]")
	}
	out = bearerTokenRE.ReplaceAllString(out, "Bearer [REDACTED]")
	out = apiKeyFieldRE.ReplaceAllString(out, "${1}[REDACTED]")
	return out
}
