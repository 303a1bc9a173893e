// Package gemini implements the classification oracle against Google's
// Gemini API.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"gstrone/internal/config"
	"gstrone/internal/port"
)

const apiBaseURL = "https://generativelanguage.googleapis.com/v1beta/models"

// Oracle implements port.ClassificationOracle using Gemini.
type Oracle struct {
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
}

// New creates a Gemini-backed oracle.
func New(cfg *config.OracleConfig) *Oracle {
	return newOracle(cfg, "")
}

// NewWithEndpoint creates an oracle pointing at a custom API endpoint (for testing).
func NewWithEndpoint(cfg *config.OracleConfig, endpoint string) *Oracle {
	return newOracle(cfg, endpoint)
}

func newOracle(cfg *config.OracleConfig, endpoint string) *Oracle {
	model := cfg.Model
	if model == "" {
		model = "gemini-2.0-flash"
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 20 * time.Second
	}
	if endpoint == "" {
		endpoint = fmt.Sprintf("%s/%s:generateContent", apiBaseURL, model)
	}
	return &Oracle{
		apiKey:   cfg.APIKey,
		model:    model,
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

const classifyPrompt = `You are a GST filing assistant. Classify the following sales transaction
into exactly one statutory reporting category.

Categories:
- "b2cs": supply to an unregistered buyer reported in the rate-wise summary table
- "b2cl": inter-state invoice above Rs 2,50,000 to an unregistered buyer, reported invoice-level

Transaction fields (JSON):
%s

Respond with JSON only, in this shape:
{"category": "...", "confidence": 0.0, "rationale": "..."}

confidence is your certainty between 0 and 1. Do not include any other text.`

// Classify asks Gemini for a category suggestion.
func (o *Oracle) Classify(ctx context.Context, input port.ClassifyInput) (*port.Suggestion, error) {
	fields, err := json.Marshal(input)
	if err != nil {
		return nil, fmt.Errorf("marshaling input: %w", err)
	}

	text, err := o.generate(ctx, fmt.Sprintf(classifyPrompt, string(fields)))
	if err != nil {
		return nil, err
	}

	var sugg port.Suggestion
	if err := json.Unmarshal([]byte(text), &sugg); err != nil {
		return nil, fmt.Errorf("parsing suggestion: %w", err)
	}
	if sugg.Category == "" {
		return nil, fmt.Errorf("suggestion missing category")
	}
	return &sugg, nil
}

const insightsPrompt = `You are a GST filing assistant. A seller has just generated their monthly
GSTR-1 from marketplace export data. Summarize up to five short, plain-language
observations a chartered accountant would point out. Focus on totals, unusual
rate mixes, cancelled invoice counts, and reconciliation warnings.

Run summary (JSON):
%s

Respond with JSON only: {"insights": ["...", "..."]}`

// Insights asks Gemini for human-readable observations over a run summary.
func (o *Oracle) Insights(ctx context.Context, summary map[string]any) ([]string, error) {
	fields, err := json.Marshal(summary)
	if err != nil {
		return nil, fmt.Errorf("marshaling summary: %w", err)
	}

	text, err := o.generate(ctx, fmt.Sprintf(insightsPrompt, string(fields)))
	if err != nil {
		return nil, err
	}

	var out struct {
		Insights []string `json:"insights"`
	}
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		return nil, fmt.Errorf("parsing insights: %w", err)
	}
	return out.Insights, nil
}

func (o *Oracle) generate(ctx context.Context, prompt string) (string, error) {
	reqBody := map[string]interface{}{
		"contents": []map[string]interface{}{
			{
				"role": "user",
				"parts": []map[string]interface{}{
					{"text": prompt},
				},
			},
		},
		"generationConfig": map[string]interface{}{
			"responseMimeType": "application/json",
			"maxOutputTokens":  1024,
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", o.apiKey)

	resp, err := o.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling gemini API: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("gemini API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	return extractText(respBody)
}

// geminiResponse models the Gemini API response envelope.
type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

func extractText(respBody []byte) (string, error) {
	var gr geminiResponse
	if err := json.Unmarshal(respBody, &gr); err != nil {
		return "", fmt.Errorf("parsing response: %w", err)
	}
	if len(gr.Candidates) == 0 || len(gr.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("empty response from gemini")
	}
	var sb strings.Builder
	for _, p := range gr.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	return strings.TrimSpace(sb.String()), nil
}
