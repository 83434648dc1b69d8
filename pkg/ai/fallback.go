package ai

import (
	"context"
	"fmt"
	"log"
	"net"
	"strings"
)

// FallbackService routes enrichment calls between two providers.
// Gemini goes first for every stage (better structured-output quality);
// on quota exhaustion or connection failure the call falls back to the
// local Ollama instance, and vice versa.
type FallbackService struct {
	gemini EnrichmentService
	ollama *OllamaService
}

// NewFallbackService creates a new fallback service with both providers
func NewFallbackService(gemini EnrichmentService, ollama *OllamaService) *FallbackService {
	return &FallbackService{
		gemini: gemini,
		ollama: ollama,
	}
}

// isConnectionError checks if the error is a network/connection error
func isConnectionError(err error) bool {
	if err == nil {
		return false
	}

	if _, ok := err.(net.Error); ok {
		return true
	}

	errStr := strings.ToLower(err.Error())
	connectionIndicators := []string{
		"connection refused",
		"no such host",
		"network is unreachable",
		"connection reset",
		"timeout",
		"dial tcp",
		"eof",
	}

	for _, indicator := range connectionIndicators {
		if strings.Contains(errStr, indicator) {
			return true
		}
	}

	return false
}

// isQuotaError checks if the error indicates API quota exhaustion (429)
func isQuotaError(err error) bool {
	if err == nil {
		return false
	}

	errStr := strings.ToLower(err.Error())
	quotaIndicators := []string{
		"429",
		"quota",
		"rate limit",
		"too many requests",
		"resource exhausted",
	}

	for _, indicator := range quotaIndicators {
		if strings.Contains(errStr, indicator) {
			return true
		}
	}

	return false
}

// ClassifyEmail tries Gemini first, falls back to Ollama
func (f *FallbackService) ClassifyEmail(ctx context.Context, in EmailInput) (Classification, error) {
	var zero Classification
	if f.gemini != nil {
		result, err := f.gemini.ClassifyEmail(ctx, in)
		if err == nil {
			return result, nil
		}
		logFallback("classification", err)
	}

	if f.ollama != nil {
		result, err := f.ollama.ClassifyEmail(ctx, in)
		if err == nil {
			return result, nil
		}
		if isConnectionError(err) && f.gemini != nil {
			log.Printf("[AI] Ollama connection failed for classification: %v, retrying Gemini", err)
			return f.gemini.ClassifyEmail(ctx, in)
		}
		return zero, fmt.Errorf("ollama classification failed: %w", err)
	}

	return zero, fmt.Errorf("no AI provider available for classification")
}

// PrioritizeEmail tries Gemini first, falls back to Ollama
func (f *FallbackService) PrioritizeEmail(ctx context.Context, in EmailInput, category string) (Prioritization, error) {
	var zero Prioritization
	if f.gemini != nil {
		result, err := f.gemini.PrioritizeEmail(ctx, in, category)
		if err == nil {
			return result, nil
		}
		logFallback("prioritization", err)
	}

	if f.ollama != nil {
		result, err := f.ollama.PrioritizeEmail(ctx, in, category)
		if err == nil {
			return result, nil
		}
		if isConnectionError(err) && f.gemini != nil {
			log.Printf("[AI] Ollama connection failed for prioritization: %v, retrying Gemini", err)
			return f.gemini.PrioritizeEmail(ctx, in, category)
		}
		return zero, fmt.Errorf("ollama prioritization failed: %w", err)
	}

	return zero, fmt.Errorf("no AI provider available for prioritization")
}

// RecommendAction tries Gemini first, falls back to Ollama
func (f *FallbackService) RecommendAction(ctx context.Context, in EmailInput, category, priority string) (ActionPlan, error) {
	var zero ActionPlan
	if f.gemini != nil {
		result, err := f.gemini.RecommendAction(ctx, in, category, priority)
		if err == nil {
			return result, nil
		}
		logFallback("action recommendation", err)
	}

	if f.ollama != nil {
		result, err := f.ollama.RecommendAction(ctx, in, category, priority)
		if err == nil {
			return result, nil
		}
		if isConnectionError(err) && f.gemini != nil {
			log.Printf("[AI] Ollama connection failed for action recommendation: %v, retrying Gemini", err)
			return f.gemini.RecommendAction(ctx, in, category, priority)
		}
		return zero, fmt.Errorf("ollama action recommendation failed: %w", err)
	}

	return zero, fmt.Errorf("no AI provider available for action recommendation")
}

func logFallback(stage string, err error) {
	if isQuotaError(err) {
		log.Printf("[AI] Gemini quota exhausted for %s: %v, falling back to Ollama", stage, err)
	} else {
		log.Printf("[AI] Gemini error for %s: %v, falling back to Ollama", stage, err)
	}
}
