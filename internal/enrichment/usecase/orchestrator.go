package usecase

import (
	"context"
	"encoding/json"
	"log"
	"strings"
	"time"

	enrichdomain "inbox-organizer-backend/internal/enrichment/domain"
	ingestdomain "inbox-organizer-backend/internal/ingest/domain"
	"inbox-organizer-backend/pkg/ai"
)

// Orchestrator runs the three enrichment stages for one record:
// classification, prioritization, action recommendation. Each stage
// feeds the next; a failed stage falls back to its safe default and the
// pipeline keeps going rather than aborting the record.
type Orchestrator struct {
	service ai.EnrichmentService
}

func NewOrchestrator(service ai.EnrichmentService) *Orchestrator {
	return &Orchestrator{service: service}
}

// Process enriches a single record. The returned Enrichment always has
// all fields populated; provider failures are reflected in
// ProcessingStatus and ErrorMessage, never in a Go error.
func (o *Orchestrator) Process(ctx context.Context, rec *ingestdomain.EmailRecord) *enrichdomain.Enrichment {
	in := ai.EmailInput{
		Subject:       rec.Subject,
		Body:          rec.Body,
		SenderName:    rec.SenderName,
		SenderEmail:   rec.SenderEmail,
		HasAttachment: rec.HasAttachment,
		AgeDays:       ageInDays(rec),
	}

	e := &enrichdomain.Enrichment{
		EmailID:          rec.EmailID,
		ProcessingStatus: enrichdomain.StatusProcessing,
	}
	var errMsgs []string

	cls, err := o.service.ClassifyEmail(ctx, in)
	if err != nil {
		log.Printf("[Enrich] Classification error for email %s: %v", rec.EmailID, err)
		errMsgs = append(errMsgs, err.Error())
		cls = ai.Classification{Category: ai.DefaultCategory}
	}
	if !ai.ValidCategory(cls.Category) {
		cls.Category = ai.DefaultCategory
	}
	e.Category = cls.Category
	e.ConfidenceScore = cls.Confidence

	pri, err := o.service.PrioritizeEmail(ctx, in, e.Category)
	if err != nil {
		log.Printf("[Enrich] Prioritization error for email %s: %v", rec.EmailID, err)
		errMsgs = append(errMsgs, err.Error())
		pri = ai.Prioritization{Priority: ai.DefaultPriority}
	}
	if !ai.ValidPriority(pri.Priority) {
		pri.Priority = ai.DefaultPriority
	}
	e.Priority = pri.Priority

	plan, err := o.service.RecommendAction(ctx, in, e.Category, e.Priority)
	if err != nil {
		log.Printf("[Enrich] Action recommendation error for email %s: %v", rec.EmailID, err)
		errMsgs = append(errMsgs, err.Error())
		plan = ai.ActionPlan{Action: "Flag for Review", DraftResponse: "N/A"}
		e.ProcessingStatus = enrichdomain.StatusError
	} else {
		e.ProcessingStatus = enrichdomain.StatusCompleted
	}
	if !ai.ValidAction(plan.Action) {
		plan.Action = ai.DefaultAction
	}
	e.ActionRecommendation = plan.Action
	e.DraftResponse = plan.DraftResponse
	e.Reasoning = plan.Reasoning

	if keyInfo, err := json.Marshal(plan.KeyInfo); err == nil {
		e.KeyInfo = string(keyInfo)
	}
	e.ErrorMessage = strings.Join(errMsgs, "; ")

	return e
}

func ageInDays(rec *ingestdomain.EmailRecord) int {
	if rec.TimestampInferred {
		return 0
	}
	ts := strings.TrimSuffix(rec.Timestamp, "Z")
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, ts); err == nil {
			days := int(time.Since(t).Hours() / 24)
			if days < 0 {
				return 0
			}
			return days
		}
	}
	return 0
}
