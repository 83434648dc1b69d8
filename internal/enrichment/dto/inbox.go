package dto

import (
	enrichdomain "inbox-organizer-backend/internal/enrichment/domain"
	ingestdomain "inbox-organizer-backend/internal/ingest/domain"
)

// EmailView is one record plus its enrichment, when available.
type EmailView struct {
	*ingestdomain.EmailRecord
	Enrichment *enrichdomain.Enrichment `json:"enrichment,omitempty"`
}

type EmailsResponse struct {
	Emails []EmailView `json:"emails"`
	Limit  int         `json:"limit"`
	Offset int         `json:"offset"`
	Total  int         `json:"total"`
}

type EnrichQueuedResponse struct {
	Queued int `json:"queued"`
	Cached int `json:"cached"`
}

type StatsResponse struct {
	TotalEmails    int            `json:"total_emails"`
	Categories     map[string]int `json:"categories"`
	Priorities     map[string]int `json:"priorities"`
	Actions        map[string]int `json:"actions"`
	HasAttachments int            `json:"has_attachments"`
	Enriched       int            `json:"enriched"`
	Errors         int            `json:"errors"`
}
