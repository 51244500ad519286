package service

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/iconidentify/learnvid/internal/catalog"
	"github.com/iconidentify/learnvid/internal/classifier"
	"github.com/iconidentify/learnvid/internal/config"
	"github.com/iconidentify/learnvid/internal/domain"
	"github.com/iconidentify/learnvid/internal/negcache"
	"github.com/iconidentify/learnvid/internal/repository"
	"github.com/iconidentify/learnvid/pkg/youtube"
)

// Source names the resolution tier that produced a video.
type Source string

const (
	SourceCurated        Source = "curated"
	SourceLiveSearch     Source = "live_search"
	SourceStaticFallback Source = "static_fallback"
)

// Resolution is a successfully resolved video.
type Resolution struct {
	Video   *domain.Video
	Source  Source
	Subject string
	Topic   string
	// Validation is set for live-search hits.
	Validation *domain.ValidationResult
}

// ResolverService picks one playable video for a learning query.
// Tiers run strictly in order: curated store, live search, static fallback.
type ResolverService struct {
	store      repository.VideoRepository
	validator  Validator
	searcher   VideoSearcher
	cache      *negcache.Cache
	classifier *classifier.Classifier
	cfg        config.ResolverConfig
	maxResults int64
	logger     *slog.Logger
}

// NewResolverService creates a resolver. searcher may be nil.
func NewResolverService(
	store repository.VideoRepository,
	validator Validator,
	searcher VideoSearcher,
	cache *negcache.Cache,
	cls *classifier.Classifier,
	cfg config.ResolverConfig,
	maxResults int64,
	logger *slog.Logger,
) *ResolverService {
	return &ResolverService{
		store:      store,
		validator:  validator,
		searcher:   searcher,
		cache:      cache,
		classifier: cls,
		cfg:        cfg,
		maxResults: maxResults,
		logger:     logger.With("component", "resolver"),
	}
}

// Resolve returns one playable video for query. It returns
// domain.ErrNoVideoFound only when every tier is exhausted and the static
// fallback is disabled or known bad.
func (s *ResolverService) Resolve(ctx context.Context, query string, lc domain.LearnerContext) (*Resolution, error) {
	topic, subject := s.classifier.ClassifyWithSubject(query, lc.Subject)
	band := lc.Band()
	logger := s.logger.With("subject", subject, "topic", topic, "class_level", band)

	if v := s.fromCurated(ctx, logger, subject, topic, band); v != nil {
		logger.Debug("resolved from curated store", "video_id", v.VideoID)
		return &Resolution{Video: v, Source: SourceCurated, Subject: subject, Topic: topic}, nil
	}

	if v, r := s.fromLiveSearch(ctx, logger, query, subject, topic, lc); v != nil {
		logger.Info("resolved from live search", "video_id", v.VideoID, "method", r.Method)
		return &Resolution{Video: v, Source: SourceLiveSearch, Subject: subject, Topic: topic, Validation: r}, nil
	}

	if s.cfg.StaticFallback && !s.cache.Contains(catalog.SafeFallback.VideoID) {
		logger.Info("serving static fallback", "video_id", catalog.SafeFallback.VideoID)
		return &Resolution{Video: fallbackVideo(), Source: SourceStaticFallback, Subject: subject, Topic: topic}, nil
	}

	logger.Warn("no playable video found")
	return nil, domain.ErrNoVideoFound
}

// curatedCriteria lists the curated lookups in the order they are tried.
func curatedCriteria(subject, topic string, band domain.ClassBand) []domain.SearchCriteria {
	if subject == "" {
		if topic == classifier.DefaultTopic {
			return nil
		}
		return []domain.SearchCriteria{{Topic: topic}}
	}
	criteria := []domain.SearchCriteria{
		{Subject: subject, Topic: topic},
		{Subject: subject},
	}
	if band != "" {
		criteria = append(criteria, domain.SearchCriteria{Subject: subject, ClassLevel: band})
	}
	return criteria
}

func (s *ResolverService) fromCurated(ctx context.Context, logger *slog.Logger, subject, topic string, band domain.ClassBand) *domain.Video {
	for _, criteria := range curatedCriteria(subject, topic, band) {
		matches, err := s.store.Search(ctx, criteria)
		if err != nil {
			logger.Warn("curated lookup failed", "criteria", criteria, "error", err)
			continue
		}

		usable := matches[:0]
		for _, v := range matches {
			if !s.cache.Contains(v.VideoID) {
				usable = append(usable, v)
			}
		}
		if len(usable) > 0 {
			return usable[rand.IntN(len(usable))]
		}
	}
	return nil
}

func (s *ResolverService) fromLiveSearch(ctx context.Context, logger *slog.Logger, query, subject, topic string, lc domain.LearnerContext) (*domain.Video, *domain.ValidationResult) {
	if s.searcher == nil {
		return nil, nil
	}

	young := lc.IsYoungLearner(s.cfg.YoungGradeMax)
	req := youtube.SearchRequest{
		Query:      BuildSearchQuery(query, subject, topic, lc.Band(), lc.Language, young),
		MaxResults: s.maxResults,
		Language:   languageCode(lc.Language),
	}

	if young {
		v, r, configured := s.fromSafeChannels(ctx, logger, req, subject, topic, lc)
		if v != nil || !configured {
			return v, r
		}
		logger.Debug("no allow-listed channel hit, widening search")
	}

	candidates, err := s.searcher.Search(ctx, req)
	if errors.Is(err, domain.ErrNotConfigured) {
		logger.Debug("live search not configured")
		return nil, nil
	}
	if err != nil {
		logger.Warn("live search failed", "query", req.Query, "error", err)
		return nil, nil
	}
	if young {
		candidates = preferChannels(candidates, s.cfg.SafeChannels)
	}
	return s.firstValid(ctx, logger, candidates, subject, topic, lc)
}

// fromSafeChannels searches each allow-listed channel in turn and returns the
// first valid hit. configured is false when the searcher has no credentials.
func (s *ResolverService) fromSafeChannels(ctx context.Context, logger *slog.Logger, req youtube.SearchRequest, subject, topic string, lc domain.LearnerContext) (*domain.Video, *domain.ValidationResult, bool) {
	for _, channel := range s.safeChannels() {
		if ctx.Err() != nil {
			return nil, nil, true
		}
		req.ChannelID = channel
		candidates, err := s.searcher.Search(ctx, req)
		if errors.Is(err, domain.ErrNotConfigured) {
			logger.Debug("live search not configured")
			return nil, nil, false
		}
		if err != nil {
			logger.Warn("channel search failed", "channel_id", channel, "error", err)
			continue
		}

		inChannel := candidates[:0:0]
		for _, c := range candidates {
			if c.ChannelID == "" {
				c.ChannelID = channel
			}
			if catalog.IsChildSafeChannel(c.ChannelID, s.cfg.SafeChannels) {
				inChannel = append(inChannel, c)
			}
		}
		if v, r := s.firstValid(ctx, logger, inChannel, subject, topic, lc); v != nil {
			return v, r, true
		}
	}
	return nil, nil, true
}

// safeChannels returns the built-in allow-list followed by configured extras.
func (s *ResolverService) safeChannels() []string {
	seen := make(map[string]bool, len(catalog.ChildSafeChannels)+len(s.cfg.SafeChannels))
	var out []string
	for _, list := range [][]string{catalog.ChildSafeChannels, s.cfg.SafeChannels} {
		for _, id := range list {
			if id != "" && !seen[id] {
				seen[id] = true
				out = append(out, id)
			}
		}
	}
	return out
}

// firstValid validates candidates in relevance order and returns the first
// playable one.
func (s *ResolverService) firstValid(ctx context.Context, logger *slog.Logger, candidates []domain.Candidate, subject, topic string, lc domain.LearnerContext) (*domain.Video, *domain.ValidationResult) {
	for _, c := range candidates {
		if ctx.Err() != nil {
			return nil, nil
		}
		r := s.validator.Validate(ctx, c.VideoID)
		if !r.IsValid() {
			continue
		}
		c.Subject = subject
		c.Topic = topic
		c.ClassLevel = lc.Band()
		if c.Title == "" && r.Metadata != nil {
			c.Title = r.Metadata.Title
		}
		v := domain.NewVideo(c)
		s.persistLiveHit(ctx, logger, v, r)
		v.ValidationStatus = domain.ValidationValid
		v.ValidationMethod = r.Method
		return v, &r
	}
	return nil, nil
}

// persistLiveHit writes a validated live-search hit to the curated store so
// the next identical request is served without a search.
func (s *ResolverService) persistLiveHit(ctx context.Context, logger *slog.Logger, v *domain.Video, r domain.ValidationResult) {
	if !s.cfg.PersistLiveHits {
		return
	}
	if _, err := s.store.Add(ctx, v); err != nil {
		logger.Warn("failed to store live hit", "video_id", v.VideoID, "error", err)
		return
	}
	if err := s.store.MarkValidation(ctx, v.VideoID, domain.ValidationValid, r.Details()); err != nil {
		logger.Warn("failed to mark live hit valid", "video_id", v.VideoID, "error", err)
	}
}

// preferChannels moves candidates from allow-listed channels to the front,
// keeping relevance order within each group.
func preferChannels(candidates []domain.Candidate, extra []string) []domain.Candidate {
	safe := make([]domain.Candidate, 0, len(candidates))
	rest := make([]domain.Candidate, 0, len(candidates))
	for _, c := range candidates {
		if catalog.IsChildSafeChannel(c.ChannelID, extra) {
			safe = append(safe, c)
		} else {
			rest = append(rest, c)
		}
	}
	return append(safe, rest...)
}

// BuildSearchQuery synthesizes a live-search query from the classified topic
// and the learner context.
func BuildSearchQuery(query, subject, topic string, band domain.ClassBand, lang domain.Language, young bool) string {
	var parts []string
	if topic != "" && topic != classifier.DefaultTopic {
		parts = append(parts, strings.ReplaceAll(topic, "_", " "))
	} else if q := strings.TrimSpace(query); q != "" {
		parts = append(parts, q)
	}
	if subject != "" {
		parts = append(parts, strings.ReplaceAll(subject, "_", " "))
	}
	if band != "" {
		parts = append(parts, "class "+string(band))
	}
	if young {
		parts = append(parts, "for kids")
	}
	switch lang {
	case domain.LanguageHindi:
		parts = append(parts, "in hindi")
	case domain.LanguageHinglish:
		parts = append(parts, "hindi english")
	}
	return strings.Join(parts, " ")
}

func languageCode(lang domain.Language) string {
	switch lang {
	case domain.LanguageHindi, domain.LanguageHinglish:
		return "hi"
	case domain.LanguageEnglish:
		return "en"
	}
	return ""
}

func fallbackVideo() *domain.Video {
	v := domain.NewVideo(catalog.SafeFallback)
	now := time.Now()
	v.ValidationStatus = domain.ValidationValid
	v.ValidationMethod = domain.MethodStaticFallback
	v.ValidatedAt = &now
	return v
}
