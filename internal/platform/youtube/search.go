package youtube

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/api/customsearch/v1"
	"google.golang.org/api/option"
	yt "google.golang.org/api/youtube/v3"

	pkgerrors "github.com/yungbote/studypath/internal/pkg/errors"
	"github.com/yungbote/studypath/internal/platform/logger"
)

// Searcher finds videos for a short query.
type Searcher interface {
	Name() string
	Search(ctx context.Context, query string, max int) ([]Video, error)
}

// DataAPISearcher queries the video platform's own search API.
type DataAPISearcher struct {
	log *logger.Logger
	svc *yt.Service
}

func NewDataAPISearcher(ctx context.Context, log *logger.Logger, apiKey string, opts ...option.ClientOption) (*DataAPISearcher, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("youtube data api: %w", pkgerrors.ErrNotConfigured)
	}
	if log == nil {
		log = logger.Nop()
	}
	opts = append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	svc, err := yt.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("youtube data api: %w", err)
	}
	return &DataAPISearcher{log: log.With("service", "YouTubeSearch"), svc: svc}, nil
}

func (s *DataAPISearcher) Name() string { return "youtube_data_api" }

func (s *DataAPISearcher) Search(ctx context.Context, query string, max int) ([]Video, error) {
	if max <= 0 {
		max = 3
	}
	s.log.Debug("youtube search", "query", query, "max", max)
	resp, err := s.svc.Search.List([]string{"snippet"}).
		Q(query).
		Type("video").
		MaxResults(int64(max)).
		Order("relevance").
		VideoEmbeddable("true").
		VideoSyndicated("true").
		SafeSearch("moderate").
		RelevanceLanguage("en").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("youtube search: %w", err)
	}
	out := make([]Video, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item == nil || item.Id == nil || item.Id.VideoId == "" {
			continue
		}
		title := "Untitled"
		if item.Snippet != nil && strings.TrimSpace(item.Snippet.Title) != "" {
			title = strings.TrimSpace(item.Snippet.Title)
		}
		out = append(out, Video{URL: watchPrefix + item.Id.VideoId, Title: title})
	}
	s.log.Debug("youtube search results", "query", query, "count", len(out))
	return out, nil
}

// CSESearcher runs a general web search restricted to the video host.
type CSESearcher struct {
	log *logger.Logger
	svc *customsearch.Service
	cx  string
}

func NewCSESearcher(ctx context.Context, log *logger.Logger, apiKey, cx string, opts ...option.ClientOption) (*CSESearcher, error) {
	if strings.TrimSpace(apiKey) == "" || strings.TrimSpace(cx) == "" {
		return nil, fmt.Errorf("custom search: %w", pkgerrors.ErrNotConfigured)
	}
	if log == nil {
		log = logger.Nop()
	}
	opts = append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	svc, err := customsearch.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("custom search: %w", err)
	}
	return &CSESearcher{log: log.With("service", "CustomSearch"), svc: svc, cx: cx}, nil
}

func (s *CSESearcher) Name() string { return "custom_search" }

func (s *CSESearcher) Search(ctx context.Context, query string, max int) ([]Video, error) {
	if max <= 0 {
		max = 3
	}
	q := "site:youtube.com " + query
	s.log.Debug("cse search", "query", q, "max", max)
	resp, err := s.svc.Cse.List().Cx(s.cx).Q(q).Num(int64(max)).Safe("active").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("custom search: %w", err)
	}
	out := make([]Video, 0, max)
	for _, item := range resp.Items {
		if item == nil {
			continue
		}
		link := CanonicalURL(item.Link)
		if link == "" {
			continue
		}
		title := strings.TrimSpace(item.Title)
		if title == "" {
			title = "Untitled"
		}
		out = append(out, Video{URL: link, Title: title})
		if len(out) >= max {
			break
		}
	}
	s.log.Debug("cse search results", "query", q, "count", len(out))
	return out, nil
}
