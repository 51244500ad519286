package domain

import "errors"

// Domain errors.
var (
	// ErrVideoNotFound is returned when a video cannot be found in the store.
	ErrVideoNotFound = errors.New("video not found")

	// ErrNoVideoFound is returned when every resolution tier is exhausted.
	ErrNoVideoFound = errors.New("no playable video found")

	// ErrInvalidVideoID is returned when a video identifier is empty or malformed.
	ErrInvalidVideoID = errors.New("invalid video ID")

	// ErrInvalidTransition is returned when a validation status change is not allowed.
	ErrInvalidTransition = errors.New("invalid validation status transition")

	// ErrNotConfigured is returned by external collaborators that have no credential.
	// Callers treat it as "tier unavailable", never as a failure.
	ErrNotConfigured = errors.New("external service not configured")

	// ErrEmbedForbidden is returned when the embed endpoint answers 401 or 403.
	ErrEmbedForbidden = errors.New("embedding forbidden")

	// ErrRateLimited is returned when rate limited by external services.
	ErrRateLimited = errors.New("rate limited")

	// ErrJobNotFound is returned when a job cannot be found.
	ErrJobNotFound = errors.New("job not found")

	// ErrNoJobs is returned when there are no jobs to process.
	ErrNoJobs = errors.New("no jobs available")

	// ErrUnknownJobKind is returned when a job kind has no runner.
	ErrUnknownJobKind = errors.New("unknown job kind")
)

// VideoError wraps an error with video context.
type VideoError struct {
	VideoID VideoID
	Op      string
	Err     error
}

func (e *VideoError) Error() string {
	if e.VideoID != "" {
		return e.Op + " [" + e.VideoID.String() + "]: " + e.Err.Error()
	}
	return e.Op + ": " + e.Err.Error()
}

func (e *VideoError) Unwrap() error {
	return e.Err
}

// NewVideoError creates a new VideoError.
func NewVideoError(videoID VideoID, op string, err error) *VideoError {
	return &VideoError{
		VideoID: videoID,
		Op:      op,
		Err:     err,
	}
}
