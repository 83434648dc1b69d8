package usecase

import (
	ingestdomain "inbox-organizer-backend/internal/ingest/domain"
)

// IngestUsecase drives the loader and normalizer over the configured
// source and keeps the resulting records available for the API layer.
type IngestUsecase interface {
	// Reload re-runs the full load-and-normalize pass. A single bad row
	// never aborts the run; whole-source failures are returned as typed
	// errors from the loader.
	Reload() (*ingestdomain.RunSummary, error)
	// Records returns the accepted records in file order.
	Records() []*ingestdomain.EmailRecord
	// GetByID returns one record, or nil when unknown.
	GetByID(emailID string) *ingestdomain.EmailRecord
	// Summary returns the summary of the last completed pass, or nil
	// when no pass has completed yet.
	Summary() *ingestdomain.RunSummary
}
