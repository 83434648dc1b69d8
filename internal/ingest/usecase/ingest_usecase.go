package usecase

import (
	"log"
	"sync"

	ingestdomain "inbox-organizer-backend/internal/ingest/domain"
	"inbox-organizer-backend/internal/ingest/loader"
	"inbox-organizer-backend/internal/ingest/normalizer"
)

// Run performs one complete load-and-normalize pass over the source
// named in opts. It returns the accepted records in file order together
// with an immutable summary of everything that was seen, accepted and
// dropped. Per-row problems are accumulated in the summary; only
// whole-source failures (missing or unreadable file) produce an error.
func Run(opts ingestdomain.Options) ([]*ingestdomain.EmailRecord, *ingestdomain.RunSummary, error) {
	opts = opts.Normalized()

	scanner, err := loader.Open(opts.SourcePath)
	if err != nil {
		return nil, nil, err
	}
	defer scanner.Close()

	var records []*ingestdomain.EmailRecord
	summary := &ingestdomain.RunSummary{}

	for scanner.Scan() {
		rec, failure := normalizer.Normalize(scanner.Row(), scanner.Line(), opts)
		if failure != nil {
			summary.Rejected++
			summary.RejectedReasons = append(summary.RejectedReasons, *failure)
			continue
		}
		records = append(records, rec)
		summary.Accepted++
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, err
	}

	stats := scanner.Stats()
	summary.TotalRowsSeen = stats.LogicalRows
	for _, m := range stats.Malformed {
		summary.Rejected++
		summary.RejectedReasons = append(summary.RejectedReasons, ingestdomain.ValidationFailure{
			Line:   m.Line,
			Fields: ingestdomain.Columns,
			Reason: m.Reason,
		})
	}

	return records, summary, nil
}

// ingestUsecase implements IngestUsecase, holding the records of the
// last pass in memory for the API layer.
type ingestUsecase struct {
	opts ingestdomain.Options

	mu      sync.RWMutex
	records []*ingestdomain.EmailRecord
	byID    map[string]*ingestdomain.EmailRecord
	summary *ingestdomain.RunSummary
}

// NewIngestUsecase creates a new instance of ingestUsecase.
func NewIngestUsecase(opts ingestdomain.Options) IngestUsecase {
	return &ingestUsecase{
		opts: opts.Normalized(),
		byID: make(map[string]*ingestdomain.EmailRecord),
	}
}

func (u *ingestUsecase) Reload() (*ingestdomain.RunSummary, error) {
	records, summary, err := Run(u.opts)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*ingestdomain.EmailRecord, len(records))
	for _, r := range records {
		if _, exists := byID[r.EmailID]; exists {
			log.Printf("[Ingest] Duplicate email_id %s, keeping first occurrence", r.EmailID)
			continue
		}
		byID[r.EmailID] = r
	}

	u.mu.Lock()
	u.records = records
	u.byID = byID
	u.summary = summary
	u.mu.Unlock()

	log.Printf("[Ingest] Loaded %s: seen=%d accepted=%d rejected=%d",
		u.opts.SourcePath, summary.TotalRowsSeen, summary.Accepted, summary.Rejected)
	return summary, nil
}

func (u *ingestUsecase) Records() []*ingestdomain.EmailRecord {
	u.mu.RLock()
	defer u.mu.RUnlock()
	out := make([]*ingestdomain.EmailRecord, len(u.records))
	copy(out, u.records)
	return out
}

func (u *ingestUsecase) GetByID(emailID string) *ingestdomain.EmailRecord {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.byID[emailID]
}

func (u *ingestUsecase) Summary() *ingestdomain.RunSummary {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.summary
}
