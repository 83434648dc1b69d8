package fuzzy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevenshteinDistance(t *testing.T) {
	tests := []struct {
		s1, s2 string
		want   int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"", "abc", 3},
		{"kitten", "sitting", 3},
		{"meeting", "meetng", 1},
		{"meeting", "meeting", 0},
		{"Meeting", "meeting", 0}, // case-insensitive
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, LevenshteinDistance(tt.s1, tt.s2),
			"distance(%q, %q)", tt.s1, tt.s2)
	}
}

func TestMatch(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		text      string
		threshold int
		want      bool
	}{
		{"exact substring", "report", "Quarterly report attached", 0, true},
		{"single typo within threshold", "meetng", "Team meeting tomorrow", 2, true},
		{"typo beyond threshold", "mtg", "Team meeting tomorrow", 1, false},
		{"word prefix", "quart", "Quarterly report", 0, true},
		{"empty query never matches", "", "anything", 2, false},
		{"case insensitive", "URGENT", "This is urgent!!", 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Match(tt.query, tt.text, tt.threshold))
		})
	}
}

func TestMatchRecordSearchesAllFields(t *testing.T) {
	subject := "Budget approval needed"
	senderName := "Maria Santos"
	senderEmail := "maria.santos@example.com"
	body := "Please approve the attached budget before Friday."

	assert.True(t, MatchRecord("budget", subject, senderName, senderEmail, body))
	assert.True(t, MatchRecord("santos", subject, senderName, senderEmail, body))
	assert.True(t, MatchRecord("maria", subject, senderName, senderEmail, body))
	assert.True(t, MatchRecord("friday", subject, senderName, senderEmail, body))
	assert.False(t, MatchRecord("invoice", subject, senderName, senderEmail, body))
}

func TestMatchRecordTypoToleranceScalesWithQueryLength(t *testing.T) {
	// Short queries get a tight threshold so they don't match everything.
	assert.False(t, MatchRecord("cat", "dog pictures", "", "", ""))
	// Long queries tolerate a couple of typos.
	assert.True(t, MatchRecord("quartrely", "Quarterly results", "", "", ""))
}

func TestScoreRanksSubjectAboveSender(t *testing.T) {
	subjectHit := Score("budget", "Budget review", "Alex Kim", "a.kim@example.com")
	senderHit := Score("alex", "Weekly notes", "Alex Kim", "a.kim@example.com")
	miss := Score("zebra", "Weekly notes", "Alex Kim", "a.kim@example.com")

	assert.Greater(t, subjectHit, senderHit)
	assert.Greater(t, senderHit, miss)
	assert.Zero(t, miss)
}

func TestScoreWholeWordBonus(t *testing.T) {
	whole := Score("budget", "budget review", "", "")
	partial := Score("budg", "budget review", "", "")
	assert.Greater(t, whole, partial)
}
