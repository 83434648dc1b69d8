package ai

import (
	"context"
)

// EmailInput is the slice of a normalized email record that the
// enrichment prompts see. Bodies are truncated by the caller before
// they reach a provider.
type EmailInput struct {
	Subject       string
	Body          string
	SenderName    string
	SenderEmail   string
	HasAttachment bool
	AgeDays       int
}

// Classification is the result of the categorization stage.
type Classification struct {
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence"`
	Reasoning  string  `json:"reasoning"`
}

// Prioritization is the result of the priority stage.
type Prioritization struct {
	Priority  string `json:"priority"`
	Score     int    `json:"score"`
	Reasoning string `json:"reasoning"`
}

// KeyInfo holds the structured facts extracted alongside the action
// recommendation.
type KeyInfo struct {
	Dates       []string `json:"dates"`
	Names       []string `json:"names"`
	ActionItems []string `json:"action_items"`
	Other       string   `json:"other"`
}

// ActionPlan is the result of the response-architect stage.
type ActionPlan struct {
	Action        string  `json:"action"`
	KeyInfo       KeyInfo `json:"key_info"`
	DraftResponse string  `json:"draft_response"`
	Reasoning     string  `json:"reasoning"`
}

// EnrichmentService is the interface for the three-stage email
// enrichment pipeline. Implement this interface to add new AI providers
// (Gemini, Ollama, OpenAI, etc.); any backend that can answer the three
// prompts satisfies the boundary.
type EnrichmentService interface {
	ClassifyEmail(ctx context.Context, in EmailInput) (Classification, error)
	PrioritizeEmail(ctx context.Context, in EmailInput, category string) (Prioritization, error)
	RecommendAction(ctx context.Context, in EmailInput, category, priority string) (ActionPlan, error)
}

// ProviderType represents the AI provider type
type ProviderType string

const (
	ProviderGemini ProviderType = "gemini"
	ProviderOllama ProviderType = "ollama"
	ProviderAuto   ProviderType = "auto"
)

// Categories an email can be classified into.
var Categories = []string{
	"Work",
	"Personal",
	"Urgent",
	"Newsletter",
	"Spam",
	"Financial",
	"Meeting",
	"Social",
}

// PriorityLevels maps priority names to their rank, 1 being highest.
var PriorityLevels = map[string]int{
	"Critical": 1,
	"High":     2,
	"Medium":   3,
	"Low":      4,
}

// Actions a provider may recommend.
var Actions = []string{
	"Reply",
	"Schedule Meeting",
	"Archive",
	"Mark as Spam",
	"Forward",
	"Flag for Review",
	"Delete",
	"Add to Calendar",
}

// Safe defaults used when a provider answers outside the vocabulary.
const (
	DefaultCategory = "Personal"
	DefaultPriority = "Medium"
	DefaultAction   = "Archive"
)

// ValidCategory reports whether c is one of the known categories.
func ValidCategory(c string) bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// ValidPriority reports whether p is one of the known priority levels.
func ValidPriority(p string) bool {
	_, ok := PriorityLevels[p]
	return ok
}

// ValidAction reports whether a is one of the known actions.
func ValidAction(a string) bool {
	for _, known := range Actions {
		if a == known {
			return true
		}
	}
	return false
}
