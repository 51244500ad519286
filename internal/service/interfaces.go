package service

import (
	"context"

	"github.com/iconidentify/learnvid/internal/domain"
	"github.com/iconidentify/learnvid/pkg/youtube"
)

// VideoSearcher runs live searches against the video platform.
// Implementations return domain.ErrNotConfigured when no credential is set.
type VideoSearcher interface {
	Search(ctx context.Context, req youtube.SearchRequest) ([]domain.Candidate, error)
}

// MetadataChecker looks up a video's status through the platform's metadata API.
type MetadataChecker interface {
	VideoStatus(ctx context.Context, id domain.VideoID) (*domain.VideoMetadata, error)
}

// EmbedChecker queries the platform's embed-info endpoint.
type EmbedChecker interface {
	EmbedInfo(ctx context.Context, id domain.VideoID) (*domain.VideoMetadata, error)
}

// ExistenceProber checks that the video's canonical resource exists.
type ExistenceProber interface {
	Probe(ctx context.Context, id domain.VideoID) (int, error)
}

// Validator validates a single video.
type Validator interface {
	Validate(ctx context.Context, id domain.VideoID) domain.ValidationResult
}
