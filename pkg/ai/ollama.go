package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// OllamaService implements EnrichmentService using an Ollama local LLM.
type OllamaService struct {
	getBaseURL func() string // Dynamic getter for BaseURL
	getModel   func() string // Dynamic getter for Model
}

// NewOllamaService creates a new Ollama service
func NewOllamaService(baseURL, model string) *OllamaService {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if model == "" {
		model = "llama3"
	}
	// Use static values (for when no runtime config is wired)
	return &OllamaService{
		getBaseURL: func() string { return baseURL },
		getModel:   func() string { return model },
	}
}

// NewOllamaServiceWithGetters creates a new Ollama service with dynamic getters
func NewOllamaServiceWithGetters(getBaseURL, getModel func() string) *OllamaService {
	return &OllamaService{
		getBaseURL: getBaseURL,
		getModel:   getModel,
	}
}

// ClassifyEmail implements EnrichmentService
func (o *OllamaService) ClassifyEmail(ctx context.Context, in EmailInput) (Classification, error) {
	var out Classification
	raw, err := o.generate(ctx, BuildClassifyPrompt(in), 200)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal([]byte(ExtractJSONObject(raw)), &out); err != nil {
		return out, fmt.Errorf("failed to parse classification JSON: %v", err)
	}
	return out, nil
}

// PrioritizeEmail implements EnrichmentService
func (o *OllamaService) PrioritizeEmail(ctx context.Context, in EmailInput, category string) (Prioritization, error) {
	var out Prioritization
	raw, err := o.generate(ctx, BuildPrioritizePrompt(in, category), 200)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal([]byte(ExtractJSONObject(raw)), &out); err != nil {
		return out, fmt.Errorf("failed to parse prioritization JSON: %v", err)
	}
	return out, nil
}

// RecommendAction implements EnrichmentService
func (o *OllamaService) RecommendAction(ctx context.Context, in EmailInput, category, priority string) (ActionPlan, error) {
	var out ActionPlan
	raw, err := o.generate(ctx, BuildActionPrompt(in, category, priority), 600)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal([]byte(ExtractJSONObject(raw)), &out); err != nil {
		return out, fmt.Errorf("failed to parse action JSON: %v", err)
	}
	return out, nil
}

// generate calls Ollama's /api/generate endpoint and returns the raw
// response text.
func (o *OllamaService) generate(ctx context.Context, prompt string, numPredict int) (string, error) {
	url := o.getBaseURL() + "/api/generate"

	payload := map[string]interface{}{
		"model":  o.getModel(),
		"prompt": prompt,
		"stream": false,
		"options": map[string]interface{}{
			"temperature": 0.2,
			"num_predict": numPredict,
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
		return "", fmt.Errorf("ollama request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ollama API error (%d): %s", resp.StatusCode, string(respBody))
	}

	var result struct {
		Response string `json:"response"`
		Done     bool   `json:"done"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	return result.Response, nil
}
