package narrative

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

const (
	// 2.5-flash is fast and good at structured summarization tasks.
	modelName = "gemini-2.5-flash"
)

// Gemini summarizes an analytics snapshot through the Gen AI API.
//
// Vertex vs Gemini Dev is controlled via env vars:
//   - GOOGLE_GENAI_USE_VERTEXAI=True  -> Vertex AI
//   - GOOGLE_CLOUD_PROJECT
//   - GOOGLE_CLOUD_LOCATION
type Gemini struct {
	client *genai.Client
}

// NewGemini creates a Gemini-backed summarizer.
func NewGemini(ctx context.Context) (*Gemini, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("narrative.NewGemini: creating genai client: %w", err)
	}
	return &Gemini{client: client}, nil
}

// Summarize implements Summarizer. The projection is computed locally; the
// model contributes the narrative text and the fraud read.
func (g *Gemini) Summarize(ctx context.Context, snap *Snapshot) (*Result, error) {
	prompt, err := buildPrompt(snap)
	if err != nil {
		return nil, fmt.Errorf("narrative.Summarize: %w", err)
	}

	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: prompt},
			},
		},
	}

	resp, err := g.client.Models.GenerateContent(ctx, modelName, contents, nil)
	if err != nil {
		return nil, fmt.Errorf("narrative.Summarize: generate content: %w", err)
	}

	raw := responseText(resp)
	if raw == "" {
		return nil, fmt.Errorf("narrative.Summarize: empty model response")
	}

	result, err := parseModelOutput(raw)
	if err != nil {
		return nil, fmt.Errorf("narrative.Summarize: %w", err)
	}
	result.Projection = Project(snap.MonthlyTrend)
	return result, nil
}

func buildPrompt(snap *Snapshot) (string, error) {
	payload, err := json.Marshal(snap)
	if err != nil {
		return "", fmt.Errorf("marshaling snapshot: %w", err)
	}

	return "You are a financial analyst reviewing aggregated bank statement analytics.\n\n" +
		"Task:\n" +
		"- Read the JSON analytics payload below.\n" +
		"- Output STRICT JSON only (no comments, no extra text, no code fences).\n\n" +
		"The output object must have these fields:\n" +
		"- \"executive_summary\": string, professional, objective, max 200 words\n" +
		"- \"fraud_likelihood\": number 0-100\n" +
		"- \"fraud_patterns\": array of short strings naming suspicious patterns, empty if none\n\n" +
		"Analytics payload:\n" + string(payload) + "\n\n" +
		"Return ONLY valid raw JSON beginning with \"{\" and ending with \"}\".\n", nil
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}
	return strings.TrimSpace(sb.String())
}

// parseModelOutput tolerates fenced output despite the prompt forbidding it.
func parseModelOutput(raw string) (*Result, error) {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")

	var decoded struct {
		ExecutiveSummary string   `json:"executive_summary"`
		FraudLikelihood  *float64 `json:"fraud_likelihood"`
		FraudPatterns    []string `json:"fraud_patterns"`
	}
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &decoded); err != nil {
		return nil, fmt.Errorf("decoding model output: %w", err)
	}
	return &Result{
		ExecutiveSummary: decoded.ExecutiveSummary,
		FraudLikelihood:  decoded.FraudLikelihood,
		FraudPatterns:    decoded.FraudPatterns,
	}, nil
}

var _ Summarizer = (*Gemini)(nil)
