// Package youtube talks to the video platform: Data API search and status
// lookups, the oEmbed endpoint and a thumbnail existence probe.
package youtube

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	yt "google.golang.org/api/youtube/v3"

	"github.com/iconidentify/learnvid/internal/config"
	"github.com/iconidentify/learnvid/internal/domain"
)

// SearchRequest describes one live search.
type SearchRequest struct {
	Query      string
	MaxResults int64
	// Language is an ISO 639-1 relevance hint such as "hi".
	Language  string
	ChannelID string
}

// Client implements search, metadata, embed-info and probe calls.
// Data API calls return domain.ErrNotConfigured when no API key is set.
type Client struct {
	cfg        config.YouTubeConfig
	service    *yt.Service
	httpClient *http.Client
}

// NewClient creates a platform client. The Data API service is only built
// when cfg carries an API key.
func NewClient(ctx context.Context, cfg config.YouTubeConfig) (*Client, error) {
	c := &Client{
		cfg:        cfg,
		httpClient: &http.Client{},
	}
	if !cfg.Configured() {
		return c, nil
	}

	opts := []option.ClientOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithUserAgent(cfg.UserAgent),
	}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint))
	}
	svc, err := yt.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create youtube service: %w", err)
	}
	c.service = svc
	return c, nil
}

// Configured reports whether Data API calls are available.
func (c *Client) Configured() bool {
	return c.service != nil
}

// Search runs a safe-search query restricted to embeddable videos and returns
// candidates in the platform's relevance order.
func (c *Client) Search(ctx context.Context, req SearchRequest) ([]domain.Candidate, error) {
	if c.service == nil {
		return nil, domain.ErrNotConfigured
	}
	ctx, cancel := withTimeout(ctx, c.cfg.SearchTimeout)
	defer cancel()

	limit := req.MaxResults
	if limit <= 0 {
		limit = c.cfg.MaxResults
	}

	call := c.service.Search.List([]string{"snippet"}).
		Q(req.Query).
		Type("video").
		VideoEmbeddable("true").
		MaxResults(limit)
	if c.cfg.SafeSearch != "" {
		call = call.SafeSearch(c.cfg.SafeSearch)
	}
	if c.cfg.RegionCode != "" {
		call = call.RegionCode(c.cfg.RegionCode)
	}
	if req.Language != "" {
		call = call.RelevanceLanguage(req.Language)
	}
	if req.ChannelID != "" {
		call = call.ChannelId(req.ChannelID)
	}

	resp, err := call.Context(ctx).Do()
	if err != nil {
		return nil, classifyAPIError("search", err)
	}
	return candidatesFromSearch(resp), nil
}

// VideoStatus fetches embeddability and privacy for one video.
// A video the API does not return is reported as domain.ErrVideoNotFound.
func (c *Client) VideoStatus(ctx context.Context, id domain.VideoID) (*domain.VideoMetadata, error) {
	if c.service == nil {
		return nil, domain.ErrNotConfigured
	}
	ctx, cancel := withTimeout(ctx, c.cfg.APITimeout)
	defer cancel()

	resp, err := c.service.Videos.List([]string{"status", "snippet"}).
		Id(id.String()).
		Context(ctx).
		Do()
	if err != nil {
		return nil, classifyAPIError("videos.list", err)
	}
	if len(resp.Items) == 0 {
		return nil, domain.NewVideoError(id, "videos.list", domain.ErrVideoNotFound)
	}
	return metadataFromVideo(resp.Items[0]), nil
}

type oembedResponse struct {
	Title        string `json:"title"`
	AuthorName   string `json:"author_name"`
	ProviderName string `json:"provider_name"`
}

// EmbedInfo queries the oEmbed endpoint. HTTP 401/403 return
// domain.ErrEmbedForbidden; any other failure is returned as-is.
func (c *Client) EmbedInfo(ctx context.Context, id domain.VideoID) (*domain.VideoMetadata, error) {
	ctx, cancel := withTimeout(ctx, c.cfg.EmbedTimeout)
	defer cancel()

	u, err := url.Parse(c.cfg.OEmbedURL)
	if err != nil {
		return nil, fmt.Errorf("parse oembed url: %w", err)
	}
	q := u.Query()
	q.Set("url", id.WatchURL())
	q.Set("format", "json")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	c.setUserAgent(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("oembed request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, domain.NewVideoError(id, "oembed", domain.ErrEmbedForbidden)
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, domain.NewVideoError(id, "oembed", domain.ErrRateLimited)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, fmt.Errorf("oembed: http %d", resp.StatusCode)
	}

	var out oembedResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode oembed: %w", err)
	}
	if strings.TrimSpace(out.Title) == "" {
		return nil, fmt.Errorf("oembed: empty title")
	}
	return &domain.VideoMetadata{
		Title:      strings.TrimSpace(out.Title),
		Author:     strings.TrimSpace(out.AuthorName),
		Embeddable: true,
	}, nil
}

// Probe issues a HEAD against the video's thumbnail URL and returns the HTTP
// status code. Transport failures and timeouts are returned as errors.
func (c *Client) Probe(ctx context.Context, id domain.VideoID) (int, error) {
	ctx, cancel := withTimeout(ctx, c.cfg.ProbeTimeout)
	defer cancel()

	target := fmt.Sprintf(c.cfg.ProbeURLTemplate, url.PathEscape(id.String()))
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, target, nil)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	c.setUserAgent(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("probe request: %w", err)
	}
	resp.Body.Close()
	return resp.StatusCode, nil
}

func (c *Client) setUserAgent(req *http.Request) {
	if c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

// classifyAPIError marks quota and rate-limit responses with domain.ErrRateLimited.
func classifyAPIError(op string, err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		if gerr.Code == http.StatusTooManyRequests {
			return fmt.Errorf("%s: %w: %v", op, domain.ErrRateLimited, err)
		}
		if gerr.Code == http.StatusForbidden {
			for _, item := range gerr.Errors {
				if strings.Contains(item.Reason, "quota") || strings.Contains(item.Reason, "rateLimit") {
					return fmt.Errorf("%s: %w: %v", op, domain.ErrRateLimited, err)
				}
			}
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

func candidatesFromSearch(resp *yt.SearchListResponse) []domain.Candidate {
	if resp == nil {
		return nil
	}
	out := make([]domain.Candidate, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item == nil || item.Id == nil || item.Id.VideoId == "" {
			continue
		}
		c := domain.Candidate{VideoID: domain.VideoID(item.Id.VideoId)}
		if item.Snippet != nil {
			c.Title = html.UnescapeString(item.Snippet.Title)
			c.Description = html.UnescapeString(item.Snippet.Description)
			c.ChannelID = item.Snippet.ChannelId
			c.ChannelName = html.UnescapeString(item.Snippet.ChannelTitle)
		}
		out = append(out, c)
	}
	return out
}

func metadataFromVideo(v *yt.Video) *domain.VideoMetadata {
	md := &domain.VideoMetadata{}
	if v.Snippet != nil {
		md.Title = v.Snippet.Title
		md.Author = v.Snippet.ChannelTitle
		md.ChannelID = v.Snippet.ChannelId
	}
	if v.Status != nil {
		md.Embeddable = v.Status.Embeddable
		md.PrivacyStatus = v.Status.PrivacyStatus
		md.UploadStatus = v.Status.UploadStatus
	}
	return md
}
