package repository

import (
	"time"

	enrichdomain "inbox-organizer-backend/internal/enrichment/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EnrichmentRepository defines the interface for the enrichment cache
type EnrichmentRepository interface {
	// Get retrieves the cached enrichment for an email, nil when absent
	Get(emailID string) (*enrichdomain.Enrichment, error)
	// GetByEmailIDs retrieves cached enrichments for multiple emails
	GetByEmailIDs(emailIDs []string) (map[string]*enrichdomain.Enrichment, error)
	// Save creates or updates the enrichment for an email
	Save(e *enrichdomain.Enrichment) error
	// Delete removes the cached enrichment for an email
	Delete(emailID string) error
}

// enrichmentRepository implements EnrichmentRepository interface
type enrichmentRepository struct {
	db *gorm.DB
}

// NewEnrichmentRepository creates a new instance of enrichmentRepository
func NewEnrichmentRepository(db *gorm.DB) EnrichmentRepository {
	return &enrichmentRepository{
		db: db,
	}
}

func (r *enrichmentRepository) Get(emailID string) (*enrichdomain.Enrichment, error) {
	var e enrichdomain.Enrichment
	err := r.db.Where("email_id = ?", emailID).First(&e).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &e, nil
}

func (r *enrichmentRepository) GetByEmailIDs(emailIDs []string) (map[string]*enrichdomain.Enrichment, error) {
	if len(emailIDs) == 0 {
		return map[string]*enrichdomain.Enrichment{}, nil
	}

	var rows []enrichdomain.Enrichment
	err := r.db.Where("email_id IN ?", emailIDs).Find(&rows).Error
	if err != nil {
		return nil, err
	}

	result := make(map[string]*enrichdomain.Enrichment, len(rows))
	for i := range rows {
		result[rows[i].EmailID] = &rows[i]
	}
	return result, nil
}

func (r *enrichmentRepository) Save(e *enrichdomain.Enrichment) error {
	var existing enrichdomain.Enrichment
	err := r.db.Where("email_id = ?", e.EmailID).First(&existing).Error

	now := time.Now()
	if err == gorm.ErrRecordNotFound {
		if e.ID == "" {
			e.ID = uuid.New().String()
		}
		e.CreatedAt = now
		e.UpdatedAt = now
		return r.db.Create(e).Error
	} else if err != nil {
		return err
	}

	e.ID = existing.ID
	e.CreatedAt = existing.CreatedAt
	e.UpdatedAt = now
	return r.db.Save(e).Error
}

func (r *enrichmentRepository) Delete(emailID string) error {
	return r.db.Where("email_id = ?", emailID).Delete(&enrichdomain.Enrichment{}).Error
}
