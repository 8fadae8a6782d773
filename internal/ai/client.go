// Package ai wraps the external generative text service used for trip
// planning and experience enrichment. The contract is deliberately
// narrow: a prompt goes in, plain text comes out, and every caller
// must survive an empty or malformed response.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta/models/gemini-1.5-flash-latest:generateContent"

// Client calls the Gemini generateContent endpoint. A zero API key is
// allowed; Generate then short-circuits to an empty response so the
// deterministic fallbacks kick in without a network round trip.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewClient builds a Client with a bounded request timeout.
func NewClient(apiKey string) *Client {
	return &Client{
		baseURL: defaultBaseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 20 * time.Second},
	}
}

// generateRequest/generateResponse mirror the subset of the Gemini
// wire format this service touches.
type generateRequest struct {
	Contents []struct {
		Parts []struct {
			Text string `json:"text"`
		} `json:"parts"`
	} `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Generate sends a prompt and returns the first candidate's text.
// Failures are logged and surfaced as an empty string, never as an
// error: callers always have a fallback and the request flow must not
// depend on the external service being up.
func (c *Client) Generate(ctx context.Context, prompt string) string {
	if c.apiKey == "" {
		return ""
	}
	var req generateRequest
	req.Contents = make([]struct {
		Parts []struct {
			Text string `json:"text"`
		} `json:"parts"`
	}, 1)
	req.Contents[0].Parts = make([]struct {
		Text string `json:"text"`
	}, 1)
	req.Contents[0].Parts[0].Text = prompt

	body, err := json.Marshal(req)
	if err != nil {
		log.Printf("ai: marshal request failed: %v", err)
		return ""
	}
	url := fmt.Sprintf("%s?key=%s", c.baseURL, c.apiKey)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		log.Printf("ai: build request failed: %v", err)
		return ""
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		log.Printf("ai: call failed: %v", err)
		return ""
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		log.Printf("ai: call returned status %d", resp.StatusCode)
		return ""
	}
	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		log.Printf("ai: decode response failed: %v", err)
		return ""
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return ""
	}
	return out.Candidates[0].Content.Parts[0].Text
}

// RepairJSON extracts a JSON document from model output that may be
// wrapped in markdown code fences or surrounded by prose. It strips
// ```json fences and trims to the outermost braces. The result is not
// guaranteed to parse; callers must still handle unmarshal errors.
func RepairJSON(raw string) string {
	s := strings.ReplaceAll(raw, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	s = strings.TrimSpace(s)
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start >= 0 && end > start {
		s = s[start : end+1]
	}
	return s
}
