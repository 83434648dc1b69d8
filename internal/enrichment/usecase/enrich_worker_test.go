package usecase

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	enrichdomain "inbox-organizer-backend/internal/enrichment/domain"
	ingestdomain "inbox-organizer-backend/internal/ingest/domain"
	"inbox-organizer-backend/pkg/ai"
)

// memRepo is an in-memory EnrichmentRepository safe for concurrent use.
type memRepo struct {
	mu    sync.Mutex
	rows  map[string]*enrichdomain.Enrichment
	saves int
}

func newMemRepo() *memRepo {
	return &memRepo{rows: map[string]*enrichdomain.Enrichment{}}
}

func (r *memRepo) Get(emailID string) (*enrichdomain.Enrichment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rows[emailID], nil
}

func (r *memRepo) GetByEmailIDs(emailIDs []string) (map[string]*enrichdomain.Enrichment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]*enrichdomain.Enrichment)
	for _, id := range emailIDs {
		if e, ok := r.rows[id]; ok {
			out[id] = e
		}
	}
	return out, nil
}

func (r *memRepo) Save(e *enrichdomain.Enrichment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[e.EmailID] = e
	r.saves++
	return nil
}

func (r *memRepo) Delete(emailID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rows, emailID)
	return nil
}

func (r *memRepo) saveCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.saves
}

// memRecords is a RecordSource over a fixed set of records.
type memRecords map[string]*ingestdomain.EmailRecord

func (m memRecords) GetByID(emailID string) *ingestdomain.EmailRecord { return m[emailID] }

func singleRecordSource(rec *ingestdomain.EmailRecord) memRecords {
	return memRecords{rec.EmailID: rec}
}

func TestProcessJobEnrichesAndSaves(t *testing.T) {
	repo := newMemRepo()
	rec := testRecord()
	svc := NewEnrichWorkerService(repo, singleRecordSource(rec), 1)
	svc.SetAIService(happyService())

	svc.processJob(EnrichJob{EmailID: rec.EmailID})

	saved, err := repo.Get(rec.EmailID)
	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.Equal(t, "Work", saved.Category)
	assert.Equal(t, enrichdomain.StatusCompleted, saved.ProcessingStatus)
}

func TestProcessJobSkipsCompletedCache(t *testing.T) {
	repo := newMemRepo()
	rec := testRecord()
	require.NoError(t, repo.Save(&enrichdomain.Enrichment{
		EmailID:          rec.EmailID,
		ProcessingStatus: enrichdomain.StatusCompleted,
	}))

	calls := 0
	svc := NewEnrichWorkerService(repo, singleRecordSource(rec), 1)
	stub := happyService()
	origClassify := stub.classify
	stub.classify = func(in ai.EmailInput) (ai.Classification, error) {
		calls++
		return origClassify(in)
	}
	svc.SetAIService(stub)

	before := repo.saveCount()
	svc.processJob(EnrichJob{EmailID: rec.EmailID})

	assert.Equal(t, 0, calls, "cached result must short-circuit the provider")
	assert.Equal(t, before, repo.saveCount())
}

func TestProcessJobReprocessesErroredCache(t *testing.T) {
	repo := newMemRepo()
	rec := testRecord()
	require.NoError(t, repo.Save(&enrichdomain.Enrichment{
		EmailID:          rec.EmailID,
		ProcessingStatus: enrichdomain.StatusError,
	}))

	svc := NewEnrichWorkerService(repo, singleRecordSource(rec), 1)
	svc.SetAIService(happyService())

	svc.processJob(EnrichJob{EmailID: rec.EmailID})

	saved, _ := repo.Get(rec.EmailID)
	require.NotNil(t, saved)
	assert.Equal(t, enrichdomain.StatusCompleted, saved.ProcessingStatus)
}

func TestProcessJobUnknownRecordDropped(t *testing.T) {
	repo := newMemRepo()
	svc := NewEnrichWorkerService(repo, memRecords{}, 1)
	svc.SetAIService(happyService())

	svc.processJob(EnrichJob{EmailID: "ghost"})

	assert.Equal(t, 0, repo.saveCount())
}

func TestProcessJobWithoutProviderIsNoop(t *testing.T) {
	repo := newMemRepo()
	rec := testRecord()
	svc := NewEnrichWorkerService(repo, singleRecordSource(rec), 1)

	svc.processJob(EnrichJob{EmailID: rec.EmailID})

	assert.Equal(t, 0, repo.saveCount())
}

func TestQueueRecordsSplitsCachedAndQueued(t *testing.T) {
	repo := newMemRepo()
	records := []*ingestdomain.EmailRecord{
		{EmailID: "1"}, {EmailID: "2"}, {EmailID: "3"},
	}
	require.NoError(t, repo.Save(&enrichdomain.Enrichment{
		EmailID:          "2",
		ProcessingStatus: enrichdomain.StatusCompleted,
	}))

	svc := NewEnrichWorkerService(repo, memRecords{}, 1)
	cached, queued, err := svc.QueueRecords(records)
	require.NoError(t, err)

	assert.Len(t, cached, 1)
	assert.Contains(t, cached, "2")
	assert.Equal(t, 2, queued)
}

func TestQueueRecordsEmptyInput(t *testing.T) {
	svc := NewEnrichWorkerService(newMemRepo(), memRecords{}, 1)

	cached, queued, err := svc.QueueRecords(nil)
	require.NoError(t, err)
	assert.Empty(t, cached)
	assert.Zero(t, queued)
}

func TestWorkersDrainQueueOnStop(t *testing.T) {
	repo := newMemRepo()
	rec1 := testRecord()
	rec2 := testRecord()
	rec2.EmailID = "43"
	records := memRecords{rec1.EmailID: rec1, rec2.EmailID: rec2}

	svc := NewEnrichWorkerService(repo, records, 2)
	svc.SetAIService(happyService())
	svc.Start()

	assert.True(t, svc.QueueJob(EnrichJob{EmailID: rec1.EmailID}))
	assert.True(t, svc.QueueJob(EnrichJob{EmailID: rec2.EmailID}))
	svc.Stop()

	assert.Equal(t, 2, repo.saveCount())
}
