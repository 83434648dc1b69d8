package usecase

import (
	"context"
	"log"
	"sync"
	"time"

	enrichdomain "inbox-organizer-backend/internal/enrichment/domain"
	"inbox-organizer-backend/internal/enrichment/repository"
	ingestdomain "inbox-organizer-backend/internal/ingest/domain"
	"inbox-organizer-backend/pkg/ai"
)

// RecordSource provides lookup of ingested records by id.
type RecordSource interface {
	GetByID(emailID string) *ingestdomain.EmailRecord
}

// EnrichJob represents a job to enrich one email record
type EnrichJob struct {
	EmailID string
}

// EnrichWorkerService handles background AI enrichment with a
// cache-first policy: records that already have a completed enrichment
// row are never reprocessed.
type EnrichWorkerService struct {
	repo         repository.EnrichmentRepository
	records      RecordSource
	orchestrator *Orchestrator
	jobQueue     chan EnrichJob
	workerWg     sync.WaitGroup
	workerCount  int
	started      bool
	mu           sync.Mutex
}

// NewEnrichWorkerService creates a new enrichment worker service
func NewEnrichWorkerService(repo repository.EnrichmentRepository, records RecordSource, workerCount int) *EnrichWorkerService {
	if workerCount <= 0 {
		workerCount = 3
	}

	return &EnrichWorkerService{
		repo:        repo,
		records:     records,
		jobQueue:    make(chan EnrichJob, 500), // Buffered channel
		workerCount: workerCount,
	}
}

// SetAIService wires the enrichment provider after creation
func (s *EnrichWorkerService) SetAIService(svc ai.EnrichmentService) {
	s.orchestrator = NewOrchestrator(svc)
}

// Start starts the enrichment workers
func (s *EnrichWorkerService) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return
	}

	for i := 0; i < s.workerCount; i++ {
		s.workerWg.Add(1)
		go s.worker(i)
	}
	s.started = true
	log.Printf("[EnrichWorker] Started %d workers", s.workerCount)
}

// Stop stops all workers gracefully
func (s *EnrichWorkerService) Stop() {
	close(s.jobQueue)
	s.workerWg.Wait()
	log.Println("[EnrichWorker] All workers stopped")
}

// worker processes enrichment jobs from the queue
func (s *EnrichWorkerService) worker(id int) {
	defer s.workerWg.Done()

	for job := range s.jobQueue {
		s.processJob(job)
	}

	log.Printf("[EnrichWorker] Worker %d stopped", id)
}

// processJob enriches a single record unless a completed result is
// already cached.
func (s *EnrichWorkerService) processJob(job EnrichJob) {
	if s.orchestrator == nil {
		return
	}

	existing, err := s.repo.Get(job.EmailID)
	if err != nil {
		log.Printf("[EnrichWorker] Error checking cache for %s: %v", job.EmailID, err)
		return
	}
	if existing != nil && existing.ProcessingStatus == enrichdomain.StatusCompleted {
		return
	}

	rec := s.records.GetByID(job.EmailID)
	if rec == nil {
		log.Printf("[EnrichWorker] Unknown email %s, dropping job", job.EmailID)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	result := s.orchestrator.Process(ctx, rec)
	cancel()

	if err := s.repo.Save(result); err != nil {
		log.Printf("[EnrichWorker] Save error for %s: %v", job.EmailID, err)
		return
	}

	log.Printf("[EnrichWorker] Enriched email %s: %s / %s / %s",
		job.EmailID, result.Category, result.Priority, result.ActionRecommendation)
}

// QueueJob adds a single job to the queue (non-blocking)
func (s *EnrichWorkerService) QueueJob(job EnrichJob) bool {
	select {
	case s.jobQueue <- job:
		return true
	default:
		return false // Queue full
	}
}

// QueueRecords queues every record without a completed cached
// enrichment. It returns the cached enrichments and how many jobs were
// queued.
func (s *EnrichWorkerService) QueueRecords(records []*ingestdomain.EmailRecord) (map[string]*enrichdomain.Enrichment, int, error) {
	if len(records) == 0 {
		return map[string]*enrichdomain.Enrichment{}, 0, nil
	}

	emailIDs := make([]string, len(records))
	for i, rec := range records {
		emailIDs[i] = rec.EmailID
	}

	cached, err := s.repo.GetByEmailIDs(emailIDs)
	if err != nil {
		return nil, 0, err
	}

	queued := 0
	for _, rec := range records {
		if e, ok := cached[rec.EmailID]; ok && e.ProcessingStatus == enrichdomain.StatusCompleted {
			continue
		}
		if s.QueueJob(EnrichJob{EmailID: rec.EmailID}) {
			queued++
		}
	}

	return cached, queued, nil
}

// GetCached returns cached enrichments for the given email IDs.
func (s *EnrichWorkerService) GetCached(emailIDs []string) (map[string]*enrichdomain.Enrichment, error) {
	return s.repo.GetByEmailIDs(emailIDs)
}
