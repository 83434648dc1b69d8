package domain

import "time"

// Processing status values for an enrichment row.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusError      = "error"
)

// Enrichment stores the cached AI analysis for one email record. It is
// a separate entity keyed by EmailID; the ingested record itself is
// never mutated.
type Enrichment struct {
	ID                   string    `json:"id" gorm:"primaryKey"`
	EmailID              string    `json:"email_id" gorm:"uniqueIndex:idx_enrichment_email;not null"`
	Category             string    `json:"category"`
	Priority             string    `json:"priority"`
	ConfidenceScore      float64   `json:"confidence_score"`
	ActionRecommendation string    `json:"action_recommendation"`
	DraftResponse        string    `json:"draft_response" gorm:"type:text"`
	KeyInfo              string    `json:"key_info" gorm:"type:text"` // JSON-encoded ai.KeyInfo
	Reasoning            string    `json:"reasoning" gorm:"type:text"`
	ProcessingStatus     string    `json:"processing_status"`
	ErrorMessage         string    `json:"error_message,omitempty"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (Enrichment) TableName() string {
	return "email_enrichments"
}
