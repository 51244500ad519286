package domain

import (
	"strings"
	"time"
)

// VideoID is the external platform's opaque identifier for a video.
type VideoID string

// String returns the string representation of the VideoID.
func (id VideoID) String() string {
	return string(id)
}

// WatchURL returns the canonical watch page URL for the video.
func (id VideoID) WatchURL() string {
	return "https://www.youtube.com/watch?v=" + string(id)
}

// EmbedURL returns the URL used to embed the video in a third-party page.
func (id VideoID) EmbedURL() string {
	return "https://www.youtube.com/embed/" + string(id)
}

// Valid reports whether the ID looks like a platform video identifier.
func (id VideoID) Valid() bool {
	if len(id) < 6 || len(id) > 64 {
		return false
	}
	for _, r := range string(id) {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return false
		}
	}
	return true
}

// ValidationStatus is the persisted validation state of a stored video.
type ValidationStatus string

const (
	ValidationPending ValidationStatus = "pending"
	ValidationValid   ValidationStatus = "valid"
	ValidationInvalid ValidationStatus = "invalid"
)

// CanTransition reports whether a stored row may move from s to next.
// Rows never go back to pending, and an invalid row can only be re-marked invalid.
// valid -> valid is a refresh after a successful revalidation.
func (s ValidationStatus) CanTransition(next ValidationStatus) bool {
	switch s {
	case ValidationPending:
		return next == ValidationValid || next == ValidationInvalid
	case ValidationValid:
		return next == ValidationValid || next == ValidationInvalid
	case ValidationInvalid:
		return next == ValidationInvalid
	}
	return false
}

// Candidate is a prospective video before validation.
type Candidate struct {
	VideoID     VideoID
	Title       string
	ChannelID   string
	ChannelName string
	Description string
	Subject     string
	Topic       string
	ClassLevel  ClassBand
}

// Video is a stored video row. Rows with ValidationStatus == ValidationValid are
// the validated videos handed to tutoring sessions.
type Video struct {
	Candidate

	ValidationStatus  ValidationStatus
	ValidationMethod  ValidationMethod
	ValidationDetails string
	ValidatedAt       *time.Time
	CreatedAt         time.Time
}

// NewVideo creates a pending row from a candidate.
func NewVideo(c Candidate) *Video {
	return &Video{
		Candidate:        c.Normalized(),
		ValidationStatus: ValidationPending,
		CreatedAt:        time.Now(),
	}
}

// IsValidated reports whether the row passed validation.
func (v *Video) IsValidated() bool {
	return v.ValidationStatus == ValidationValid
}

// Normalized returns a copy with trimmed fields and lower-cased classification tags.
func (c Candidate) Normalized() Candidate {
	c.VideoID = VideoID(strings.TrimSpace(string(c.VideoID)))
	c.Title = strings.TrimSpace(c.Title)
	c.ChannelName = strings.TrimSpace(c.ChannelName)
	c.Subject = NormalizeTag(c.Subject)
	c.Topic = NormalizeTag(c.Topic)
	c.ClassLevel = ClassBand(strings.TrimSpace(string(c.ClassLevel)))
	return c
}

// NormalizeTag lower-cases a classification tag and joins words with underscores.
func NormalizeTag(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.Join(strings.Fields(s), "_")
}

// SearchCriteria filters stored videos. Set fields are ANDed together.
// Subject and ClassLevel match exactly; Topic and FreeText match as substrings.
type SearchCriteria struct {
	Subject    string
	ClassLevel ClassBand
	Topic      string
	FreeText   string
	Limit      int
}

// Matches reports whether v satisfies the criteria, ignoring validation status.
func (c SearchCriteria) Matches(v *Video) bool {
	if c.Subject != "" && v.Subject != NormalizeTag(c.Subject) {
		return false
	}
	if c.ClassLevel != "" && v.ClassLevel != c.ClassLevel {
		return false
	}
	if c.Topic != "" && !strings.Contains(v.Topic, NormalizeTag(c.Topic)) {
		return false
	}
	if c.FreeText != "" {
		q := strings.ToLower(strings.TrimSpace(c.FreeText))
		if !strings.Contains(strings.ToLower(v.Title), q) && !strings.Contains(strings.ToLower(v.Description), q) {
			return false
		}
	}
	return true
}

// StoreStats summarizes the contents of a video store.
type StoreStats struct {
	Total          int     `json:"total"`
	Validated      int     `json:"validated"`
	Pending        int     `json:"pending"`
	Invalid        int     `json:"invalid"`
	ValidationRate float64 `json:"validation_rate"`
}

// ComputeRate fills ValidationRate from the counters.
func (s *StoreStats) ComputeRate() {
	if s.Total == 0 {
		s.ValidationRate = 0
		return
	}
	s.ValidationRate = float64(s.Validated) / float64(s.Total)
}
