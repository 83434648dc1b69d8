package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	enrichdomain "inbox-organizer-backend/internal/enrichment/domain"
	ingestdomain "inbox-organizer-backend/internal/ingest/domain"
	"inbox-organizer-backend/pkg/ai"
)

// stubService lets each test script the three stages independently.
type stubService struct {
	classify   func(ai.EmailInput) (ai.Classification, error)
	prioritize func(ai.EmailInput, string) (ai.Prioritization, error)
	recommend  func(ai.EmailInput, string, string) (ai.ActionPlan, error)
}

func (s *stubService) ClassifyEmail(_ context.Context, in ai.EmailInput) (ai.Classification, error) {
	return s.classify(in)
}

func (s *stubService) PrioritizeEmail(_ context.Context, in ai.EmailInput, category string) (ai.Prioritization, error) {
	return s.prioritize(in, category)
}

func (s *stubService) RecommendAction(_ context.Context, in ai.EmailInput, category, priority string) (ai.ActionPlan, error) {
	return s.recommend(in, category, priority)
}

func happyService() *stubService {
	return &stubService{
		classify: func(ai.EmailInput) (ai.Classification, error) {
			return ai.Classification{Category: "Work", Confidence: 0.9, Reasoning: "project talk"}, nil
		},
		prioritize: func(_ ai.EmailInput, category string) (ai.Prioritization, error) {
			return ai.Prioritization{Priority: "High", Score: 2}, nil
		},
		recommend: func(_ ai.EmailInput, category, priority string) (ai.ActionPlan, error) {
			return ai.ActionPlan{
				Action:        "Reply",
				KeyInfo:       ai.KeyInfo{ActionItems: []string{"send the deck"}},
				DraftResponse: "On it.",
				Reasoning:     "sender expects an answer",
			}, nil
		},
	}
}

func testRecord() *ingestdomain.EmailRecord {
	return &ingestdomain.EmailRecord{
		EmailID:     "42",
		SenderEmail: "boss@example.com",
		SenderName:  "The Boss",
		Subject:     "Deck for Friday",
		Body:        "Can you send the deck?",
		Timestamp:   "2025-01-10T10:30:00Z",
		ThreadID:    "thread_042",
	}
}

func TestProcessAllStagesSucceed(t *testing.T) {
	o := NewOrchestrator(happyService())

	e := o.Process(context.Background(), testRecord())

	assert.Equal(t, "42", e.EmailID)
	assert.Equal(t, "Work", e.Category)
	assert.InDelta(t, 0.9, e.ConfidenceScore, 0.001)
	assert.Equal(t, "High", e.Priority)
	assert.Equal(t, "Reply", e.ActionRecommendation)
	assert.Equal(t, "On it.", e.DraftResponse)
	assert.Equal(t, enrichdomain.StatusCompleted, e.ProcessingStatus)
	assert.Empty(t, e.ErrorMessage)
	assert.Contains(t, e.KeyInfo, "send the deck")
}

func TestProcessStagesChainOutputs(t *testing.T) {
	svc := happyService()
	var gotCategory, gotPriorityCategory, gotPriority string
	svc.prioritize = func(_ ai.EmailInput, category string) (ai.Prioritization, error) {
		gotCategory = category
		return ai.Prioritization{Priority: "Critical"}, nil
	}
	svc.recommend = func(_ ai.EmailInput, category, priority string) (ai.ActionPlan, error) {
		gotPriorityCategory = category
		gotPriority = priority
		return ai.ActionPlan{Action: "Archive"}, nil
	}

	NewOrchestrator(svc).Process(context.Background(), testRecord())

	assert.Equal(t, "Work", gotCategory)
	assert.Equal(t, "Work", gotPriorityCategory)
	assert.Equal(t, "Critical", gotPriority)
}

func TestProcessClampsUnknownVocabulary(t *testing.T) {
	svc := happyService()
	svc.classify = func(ai.EmailInput) (ai.Classification, error) {
		return ai.Classification{Category: "Cryptozoology", Confidence: 0.99}, nil
	}
	svc.prioritize = func(_ ai.EmailInput, _ string) (ai.Prioritization, error) {
		return ai.Prioritization{Priority: "Ludicrous"}, nil
	}
	svc.recommend = func(_ ai.EmailInput, _, _ string) (ai.ActionPlan, error) {
		return ai.ActionPlan{Action: "Teleport"}, nil
	}

	e := NewOrchestrator(svc).Process(context.Background(), testRecord())

	assert.Equal(t, ai.DefaultCategory, e.Category)
	assert.Equal(t, ai.DefaultPriority, e.Priority)
	assert.Equal(t, ai.DefaultAction, e.ActionRecommendation)
	assert.Equal(t, enrichdomain.StatusCompleted, e.ProcessingStatus)
}

func TestProcessClassifyFailureFallsBack(t *testing.T) {
	svc := happyService()
	svc.classify = func(ai.EmailInput) (ai.Classification, error) {
		return ai.Classification{}, errors.New("provider down")
	}

	e := NewOrchestrator(svc).Process(context.Background(), testRecord())

	// Later stages still ran, so the record completes with the default
	// category and the stage error on file.
	assert.Equal(t, ai.DefaultCategory, e.Category)
	assert.Equal(t, "High", e.Priority)
	assert.Equal(t, enrichdomain.StatusCompleted, e.ProcessingStatus)
	assert.Contains(t, e.ErrorMessage, "provider down")
}

func TestProcessActionFailureMarksError(t *testing.T) {
	svc := happyService()
	svc.recommend = func(_ ai.EmailInput, _, _ string) (ai.ActionPlan, error) {
		return ai.ActionPlan{}, errors.New("timeout")
	}

	e := NewOrchestrator(svc).Process(context.Background(), testRecord())

	assert.Equal(t, enrichdomain.StatusError, e.ProcessingStatus)
	assert.Equal(t, "Flag for Review", e.ActionRecommendation)
	assert.Equal(t, "N/A", e.DraftResponse)
	assert.Contains(t, e.ErrorMessage, "timeout")
}

func TestAgeInDays(t *testing.T) {
	rec := testRecord()
	rec.Timestamp = "2099-01-01T00:00:00Z"
	assert.Equal(t, 0, ageInDays(rec), "future timestamps clamp to zero")

	rec.TimestampInferred = true
	assert.Equal(t, 0, ageInDays(rec))

	rec = testRecord()
	rec.Timestamp = "2025-01-10"
	assert.Greater(t, ageInDays(rec), 0)

	require.NotPanics(t, func() {
		rec.Timestamp = "garbage"
		assert.Equal(t, 0, ageInDays(rec))
	})
}
