package orchestrator

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/yungbote/studypath/internal/modules/generation/prompts"
	"github.com/yungbote/studypath/internal/modules/generation/repair"
	"github.com/yungbote/studypath/internal/platform/youtube"
)

const queryWords = 4

var (
	separatorRE = regexp.MustCompile(`[•|\-–—]+`)
	nonWordRE   = regexp.MustCompile(`[^\p{L}\p{N}\s]`)
)

var videoWrapperKeys = []string{"videos", "links", "items", "data", "results"}

// SearchQuery keeps the first few words of a topic, without punctuation.
func SearchQuery(topic string) string {
	s := separatorRE.ReplaceAllString(topic, " ")
	s = nonWordRE.ReplaceAllString(s, " ")
	words := strings.Fields(s)
	if len(words) > queryWords {
		words = words[:queryWords]
	}
	return strings.Join(words, " ")
}

// Video finds one companion video for topic. "" with a nil error means no
// provider had a usable video.
func (g *Generator) Video(ctx context.Context, topic string) (string, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return "", nil
	}
	query := SearchQuery(topic)
	var strategies []Strategy[string]
	for _, s := range g.searchers {
		strategies = append(strategies, Attempt(s.Name(), func(ctx context.Context) (string, error) {
			videos, err := s.Search(ctx, query, g.cfg.VideosPerTopic)
			if err != nil {
				return "", err
			}
			return g.pickVideo(videos)
		}))
	}
	if g.cloud != nil {
		strategies = append(strategies, Attempt("cloud", func(ctx context.Context) (string, error) {
			return g.cloudVideo(ctx, topic)
		}))
	}
	url, err := FirstSuccess(ctx, g.log, "video", strategies...)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		g.log.Warn("no video found", "topic", topic)
		return "", nil
	}
	return url, nil
}

// Videos looks up one video per topic concurrently. Results keep the input
// order.
func (g *Generator) Videos(ctx context.Context, topics []string) ([]string, error) {
	out := make([]string, len(topics))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(g.cfg.VideoConcurrency)
	for i, topic := range topics {
		eg.Go(func() error {
			url, err := g.Video(egCtx, topic)
			if err != nil {
				return err
			}
			out[i] = url
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (g *Generator) cloudVideo(ctx context.Context, topic string) (string, error) {
	prompt, err := prompts.Build(prompts.PromptVideoLinks, prompts.Input{Topic: topic, Count: g.cfg.VideosPerTopic})
	if err != nil {
		return "", err
	}
	raw, err := g.generate(ctx, g.cloud, "video", prompt)
	if err != nil {
		return "", err
	}
	recs := repair.ToArray(raw, repair.Options{WrapperKeys: videoWrapperKeys})
	videos := make([]youtube.Video, 0, len(recs))
	for _, rec := range recs {
		var v struct {
			URL   string `json:"url"`
			Link  string `json:"link"`
			Title string `json:"title"`
		}
		if err := json.Unmarshal(rec, &v); err != nil {
			var s string
			if json.Unmarshal(rec, &s) != nil {
				continue
			}
			v.URL = s
		}
		link := strings.TrimSpace(v.URL)
		if link == "" {
			link = strings.TrimSpace(v.Link)
		}
		videos = append(videos, youtube.Video{URL: link, Title: strings.TrimSpace(v.Title)})
	}
	return g.pickVideo(videos)
}

// pickVideo returns the first canonical, non-denied video.
func (g *Generator) pickVideo(videos []youtube.Video) (string, error) {
	for _, v := range videos {
		canon := youtube.CanonicalURL(v.URL)
		if canon == "" {
			continue
		}
		if g.denied(v.URL) || g.denied(v.Title) {
			g.log.Debug("video rejected by denylist", "url", v.URL, "title", v.Title)
			continue
		}
		return canon, nil
	}
	return "", ErrUnusable
}

func (g *Generator) denied(s string) bool {
	if s == "" {
		return false
	}
	for _, re := range g.deny {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}
