package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"inbox-organizer-backend/pkg/ai"
)

const defaultModel = "gemini-2.5-flash"

// GeminiService implements ai.EnrichmentService against the Google
// generative language HTTP API.
type GeminiService struct {
	ApiKey string
	Model  string
}

func NewGeminiService(apiKey string) *GeminiService {
	return &GeminiService{ApiKey: apiKey, Model: defaultModel}
}

// ClassifyEmail implements ai.EnrichmentService
func (g *GeminiService) ClassifyEmail(ctx context.Context, in ai.EmailInput) (ai.Classification, error) {
	var out ai.Classification
	raw, err := g.generate(ctx, ai.BuildClassifyPrompt(in))
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal([]byte(ai.ExtractJSONObject(raw)), &out); err != nil {
		return out, fmt.Errorf("failed to parse classification JSON: %v", err)
	}
	return out, nil
}

// PrioritizeEmail implements ai.EnrichmentService
func (g *GeminiService) PrioritizeEmail(ctx context.Context, in ai.EmailInput, category string) (ai.Prioritization, error) {
	var out ai.Prioritization
	raw, err := g.generate(ctx, ai.BuildPrioritizePrompt(in, category))
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal([]byte(ai.ExtractJSONObject(raw)), &out); err != nil {
		return out, fmt.Errorf("failed to parse prioritization JSON: %v", err)
	}
	return out, nil
}

// RecommendAction implements ai.EnrichmentService
func (g *GeminiService) RecommendAction(ctx context.Context, in ai.EmailInput, category, priority string) (ai.ActionPlan, error) {
	var out ai.ActionPlan
	raw, err := g.generate(ctx, ai.BuildActionPrompt(in, category, priority))
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal([]byte(ai.ExtractJSONObject(raw)), &out); err != nil {
		return out, fmt.Errorf("failed to parse action JSON: %v", err)
	}
	return out, nil
}

// generate sends one prompt to the generateContent endpoint and returns
// the first candidate's text.
func (g *GeminiService) generate(ctx context.Context, prompt string) (string, error) {
	model := g.Model
	if model == "" {
		model = defaultModel
	}
	url := "https://generativelanguage.googleapis.com/v1beta/models/" + model + ":generateContent?key=" + g.ApiKey

	payload := map[string]interface{}{
		"contents": []map[string]interface{}{
			{"parts": []map[string]string{{"text": prompt}}},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("Gemini API error: %s", string(respBody))
	}

	var result map[string]interface{}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", err
	}

	if c, ok := result["candidates"].([]interface{}); ok && len(c) > 0 {
		if cand, ok := c[0].(map[string]interface{}); ok {
			if content, ok := cand["content"].(map[string]interface{}); ok {
				if parts, ok := content["parts"].([]interface{}); ok && len(parts) > 0 {
					if part, ok := parts[0].(map[string]interface{}); ok {
						if text, ok := part["text"].(string); ok {
							return text, nil
						}
					}
				}
			}
		}
	}
	return "", fmt.Errorf("no content returned")
}
