package delivery

import (
	"errors"
	"net/http"
	"sort"
	"strconv"
	"strings"

	enrichdomain "inbox-organizer-backend/internal/enrichment/domain"
	enrichdto "inbox-organizer-backend/internal/enrichment/dto"
	"inbox-organizer-backend/internal/enrichment/repository"
	enrichUsecase "inbox-organizer-backend/internal/enrichment/usecase"
	ingestdomain "inbox-organizer-backend/internal/ingest/domain"
	"inbox-organizer-backend/internal/ingest/loader"
	ingestUsecase "inbox-organizer-backend/internal/ingest/usecase"
	"inbox-organizer-backend/pkg/fuzzy"

	"github.com/gin-gonic/gin"
)

type InboxHandler struct {
	ingestUc   ingestUsecase.IngestUsecase
	enrichRepo repository.EnrichmentRepository
	worker     *enrichUsecase.EnrichWorkerService
}

func NewInboxHandler(ingestUc ingestUsecase.IngestUsecase, enrichRepo repository.EnrichmentRepository, worker *enrichUsecase.EnrichWorkerService) *InboxHandler {
	return &InboxHandler{
		ingestUc:   ingestUc,
		enrichRepo: enrichRepo,
		worker:     worker,
	}
}

// ReloadInbox re-runs the CSV ingest pass and returns the run summary.
func (h *InboxHandler) ReloadInbox(c *gin.Context) {
	summary, err := h.ingestUc.Reload()
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, loader.ErrSourceNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, summary)
}

// GetIngestSummary returns the summary of the last completed ingest.
func (h *InboxHandler) GetIngestSummary(c *gin.Context) {
	summary := h.ingestUc.Summary()
	if summary == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no ingest run completed yet"})
		return
	}

	c.JSON(http.StatusOK, summary)
}

// ListEmails lists records with optional category, priority and search
// filters plus pagination.
func (h *InboxHandler) ListEmails(c *gin.Context) {
	category := c.Query("category")
	priority := c.Query("priority")
	query := strings.TrimSpace(c.Query("q"))

	limit := 20
	offset := 0
	if limitStr := c.Query("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if offsetStr := c.Query("offset"); offsetStr != "" {
		if parsed, err := strconv.Atoi(offsetStr); err == nil && parsed >= 0 {
			offset = parsed
		}
	}

	records := h.ingestUc.Records()
	enrichments, err := h.enrichmentsFor(records)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var filtered []enrichdto.EmailView
	for _, rec := range records {
		e := enrichments[rec.EmailID]
		if category != "" && category != "All" {
			if e == nil || e.Category != category {
				continue
			}
		}
		if priority != "" && priority != "All" {
			if e == nil || e.Priority != priority {
				continue
			}
		}
		if query != "" && !fuzzy.MatchRecord(query, rec.Subject, rec.SenderName, rec.SenderEmail, rec.Body) {
			continue
		}
		filtered = append(filtered, enrichdto.EmailView{EmailRecord: rec, Enrichment: e})
	}

	if query != "" {
		sort.SliceStable(filtered, func(i, j int) bool {
			si := fuzzy.Score(query, filtered[i].Subject, filtered[i].SenderName, filtered[i].SenderEmail)
			sj := fuzzy.Score(query, filtered[j].Subject, filtered[j].SenderName, filtered[j].SenderEmail)
			return si > sj
		})
	}

	total := len(filtered)
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}

	c.JSON(http.StatusOK, enrichdto.EmailsResponse{
		Emails: filtered[offset:end],
		Limit:  limit,
		Offset: offset,
		Total:  total,
	})
}

// GetEmailByID returns one record together with its enrichment.
func (h *InboxHandler) GetEmailByID(c *gin.Context) {
	id := c.Param("id")
	rec := h.ingestUc.GetByID(id)
	if rec == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "email not found"})
		return
	}

	e, err := h.enrichRepo.Get(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, enrichdto.EmailView{EmailRecord: rec, Enrichment: e})
}

// EnrichEmail queues one record for AI enrichment.
func (h *InboxHandler) EnrichEmail(c *gin.Context) {
	id := c.Param("id")
	if h.ingestUc.GetByID(id) == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "email not found"})
		return
	}

	if !h.worker.QueueJob(enrichUsecase.EnrichJob{EmailID: id}) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "enrichment queue is full"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"message": "enrichment queued", "email_id": id})
}

// DeleteEnrichment drops the cached analysis for one record so the
// next enrichment request reprocesses it from scratch.
func (h *InboxHandler) DeleteEnrichment(c *gin.Context) {
	id := c.Param("id")
	if h.ingestUc.GetByID(id) == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "email not found"})
		return
	}

	if err := h.enrichRepo.Delete(id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "enrichment deleted", "email_id": id})
}

// EnrichAll queues every record without a completed enrichment.
func (h *InboxHandler) EnrichAll(c *gin.Context) {
	cached, queued, err := h.worker.QueueRecords(h.ingestUc.Records())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusAccepted, enrichdto.EnrichQueuedResponse{
		Queued: queued,
		Cached: len(cached),
	})
}

// GetStats aggregates category, priority and action counts over the
// enriched inbox.
func (h *InboxHandler) GetStats(c *gin.Context) {
	records := h.ingestUc.Records()
	enrichments, err := h.enrichmentsFor(records)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	stats := enrichdto.StatsResponse{
		TotalEmails: len(records),
		Categories:  make(map[string]int),
		Priorities:  make(map[string]int),
		Actions:     make(map[string]int),
	}

	for _, rec := range records {
		if rec.HasAttachment {
			stats.HasAttachments++
		}
		e := enrichments[rec.EmailID]
		if e == nil {
			continue
		}
		stats.Enriched++
		if e.ProcessingStatus == enrichdomain.StatusError {
			stats.Errors++
		}
		if e.Category != "" {
			stats.Categories[e.Category]++
		}
		if e.Priority != "" {
			stats.Priorities[e.Priority]++
		}
		if e.ActionRecommendation != "" {
			stats.Actions[e.ActionRecommendation]++
		}
	}

	c.JSON(http.StatusOK, stats)
}

func (h *InboxHandler) enrichmentsFor(records []*ingestdomain.EmailRecord) (map[string]*enrichdomain.Enrichment, error) {
	ids := make([]string, len(records))
	for i, rec := range records {
		ids[i] = rec.EmailID
	}
	return h.enrichRepo.GetByEmailIDs(ids)
}
