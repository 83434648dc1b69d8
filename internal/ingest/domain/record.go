package domain

// EmailRecord is one normalized email row from the source CSV.
// A record is built exactly once during ingest and is never mutated
// afterwards; AI enrichment lives in a separate entity keyed by EmailID.
type EmailRecord struct {
	EmailID       string `json:"email_id"`
	SenderEmail   string `json:"sender_email"`
	SenderName    string `json:"sender_name"`
	Subject       string `json:"subject"`
	Body          string `json:"body"`
	Timestamp     string `json:"timestamp"`
	HasAttachment bool   `json:"has_attachment"`
	ThreadID      string `json:"thread_id"`

	// TimestampInferred is set when the source timestamp could not be
	// parsed and the configured default was substituted.
	TimestampInferred bool `json:"timestamp_inferred,omitempty"`
}

// ValidationFailure describes a structurally parseable row that was
// rejected during normalization. It is a return value, not an error.
type ValidationFailure struct {
	Line    int      `json:"line"`
	EmailID string   `json:"email_id,omitempty"`
	Fields  []string `json:"fields"`
	Reason  string   `json:"reason"`
}

// RunSummary is the immutable result of one load-and-normalize pass.
type RunSummary struct {
	TotalRowsSeen   int                 `json:"total_rows_seen"`
	Accepted        int                 `json:"accepted"`
	Rejected        int                 `json:"rejected"`
	RejectedReasons []ValidationFailure `json:"rejected_reasons"`
}

// Options carries the ingest configuration that used to live in
// module-level constants. Callers pass it explicitly to the loader,
// normalizer and emitter.
type Options struct {
	SourcePath       string
	MaxSubjectLen    int
	MaxBodyLen       int
	TimestampDefault string
}

const (
	DefaultMaxSubjectLen    = 200
	DefaultMaxBodyLen       = 5000
	DefaultTimestampDefault = "1970-01-01T00:00:00Z"
)

// DefaultOptions returns Options with the documented limits applied.
func DefaultOptions(sourcePath string) Options {
	return Options{
		SourcePath:       sourcePath,
		MaxSubjectLen:    DefaultMaxSubjectLen,
		MaxBodyLen:       DefaultMaxBodyLen,
		TimestampDefault: DefaultTimestampDefault,
	}
}

// Normalized applies defaults for any zero-valued limit.
func (o Options) Normalized() Options {
	if o.MaxSubjectLen <= 0 {
		o.MaxSubjectLen = DefaultMaxSubjectLen
	}
	if o.MaxBodyLen <= 0 {
		o.MaxBodyLen = DefaultMaxBodyLen
	}
	if o.TimestampDefault == "" {
		o.TimestampDefault = DefaultTimestampDefault
	}
	return o
}

// Columns is the fixed column order of the source CSV.
var Columns = []string{
	"email_id",
	"sender_email",
	"sender_name",
	"subject",
	"body",
	"timestamp",
	"has_attachment",
	"thread_id",
}

// RawRow is one raw CSV row keyed by column name, before normalization.
type RawRow map[string]string
