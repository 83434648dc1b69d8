package normalizer

import (
	"log"
	"regexp"
	"strings"
	"time"

	ingestdomain "inbox-organizer-backend/internal/ingest/domain"
)

// timestampLayouts are tried in order when parsing the source timestamp.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

var multiNewline = regexp.MustCompile(`\n+`)

// trueLiterals and falseLiterals are the accepted textual spellings of
// has_attachment. Anything else is coerced to false and logged as a
// soft anomaly, never rejected.
var (
	trueLiterals  = map[string]struct{}{"true": {}, "yes": {}, "1": {}, "t": {}}
	falseLiterals = map[string]struct{}{"false": {}, "no": {}, "0": {}, "": {}}
)

// Normalize turns one raw row into an EmailRecord, or a
// ValidationFailure describing why the row was rejected. Bad data is a
// return value here, never an error: exactly one of the two results is
// non-nil.
func Normalize(row ingestdomain.RawRow, line int, opts ingestdomain.Options) (*ingestdomain.EmailRecord, *ingestdomain.ValidationFailure) {
	opts = opts.Normalized()

	emailID := strings.TrimSpace(row["email_id"])
	if emailID == "" || isPlaceholder(emailID) || strings.EqualFold(emailID, "email_id") {
		return nil, &ingestdomain.ValidationFailure{
			Line:   line,
			Fields: []string{"email_id"},
			Reason: "missing required field email_id",
		}
	}

	rec := &ingestdomain.EmailRecord{EmailID: emailID}

	senderEmail := strings.ToLower(cleanString(row["sender_email"]))
	if senderEmail != "" && !strings.Contains(senderEmail, "@") {
		log.Printf("[Ingest] Suspicious sender_email %q for email %s", senderEmail, emailID)
	}
	rec.SenderEmail = senderEmail
	rec.SenderName = cleanString(row["sender_name"])

	subject := cleanString(row["subject"])
	// Subjects are single-line: embedded newlines become spaces.
	subject = strings.ReplaceAll(subject, "\n", " ")
	subject = strings.TrimSpace(multiNewline.ReplaceAllString(subject, " "))
	rec.Subject = truncateRunes(subject, opts.MaxSubjectLen)

	body := cleanString(row["body"])
	body = collapseBlankLines(body)
	rec.Body = truncateRunes(body, opts.MaxBodyLen)

	rec.Timestamp, rec.TimestampInferred = normalizeTimestamp(row["timestamp"], opts.TimestampDefault)

	rec.HasAttachment = normalizeBool(row["has_attachment"], emailID)

	threadID := cleanString(row["thread_id"])
	if threadID == "" {
		threadID = "thread_" + emailID
	}
	rec.ThreadID = threadID

	return rec, nil
}

// cleanString trims whitespace, strips escape artifacts left by the
// source's quoting (doubled quotes, literal backslash-n sequences), and
// maps null-ish placeholders to the empty string.
func cleanString(s string) string {
	s = strings.TrimSpace(s)
	if isPlaceholder(s) {
		return ""
	}
	s = strings.ReplaceAll(s, `\n`, "\n")
	s = strings.ReplaceAll(s, `""`, `"`)
	s = strings.ReplaceAll(s, `\"`, `"`)
	return strings.TrimSpace(s)
}

func isPlaceholder(s string) bool {
	switch strings.ToLower(s) {
	case "none", "null", "nan":
		return true
	}
	return false
}

// collapseBlankLines trims each body line and drops empty ones, the way
// the original cleaning pass did.
func collapseBlankLines(s string) string {
	if s == "" {
		return ""
	}
	lines := strings.Split(s, "\n")
	kept := lines[:0]
	for _, l := range lines {
		if t := strings.TrimSpace(l); t != "" {
			kept = append(kept, t)
		}
	}
	return strings.Join(kept, "\n")
}

func normalizeTimestamp(raw, fallback string) (string, bool) {
	ts := strings.TrimSpace(raw)
	if ts == "" || isPlaceholder(ts) {
		return fallback, true
	}
	candidate := strings.TrimSuffix(ts, "Z")
	for _, layout := range timestampLayouts {
		if _, err := time.Parse(layout, ts); err == nil {
			return ts, false
		}
		if _, err := time.Parse(layout, candidate); err == nil {
			return ts, false
		}
	}
	return fallback, true
}

func normalizeBool(raw, emailID string) bool {
	v := strings.ToLower(strings.TrimSpace(raw))
	if _, ok := trueLiterals[v]; ok {
		return true
	}
	if _, ok := falseLiterals[v]; ok {
		return false
	}
	log.Printf("[Ingest] Unrecognized has_attachment value %q for email %s, treating as false", raw, emailID)
	return false
}

// truncateRunes cuts s to at most n runes without splitting a
// multi-byte sequence.
func truncateRunes(s string, n int) string {
	if n <= 0 {
		return s
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
