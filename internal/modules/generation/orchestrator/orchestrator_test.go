package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/yungbote/studypath/internal/domain/study"
	pkgerrors "github.com/yungbote/studypath/internal/pkg/errors"
	"github.com/yungbote/studypath/internal/platform/youtube"
)

type scriptedGen struct {
	name    string
	mu      sync.Mutex
	replies []string
	errs    []error
	prompts []string
	probe   error
}

func (s *scriptedGen) Name() string { return s.name }

func (s *scriptedGen) Generate(ctx context.Context, prompt string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := len(s.prompts)
	s.prompts = append(s.prompts, prompt)
	if i < len(s.errs) && s.errs[i] != nil {
		return "", s.errs[i]
	}
	if i < len(s.replies) {
		return s.replies[i], nil
	}
	return "", errors.New("no scripted reply")
}

func (s *scriptedGen) Probe(ctx context.Context) error { return s.probe }

func (s *scriptedGen) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.prompts)
}

type fakeSearcher struct {
	name   string
	videos map[string][]youtube.Video
	err    error
	delay  func(query string) time.Duration
}

func (f *fakeSearcher) Name() string { return f.name }

func (f *fakeSearcher) Search(ctx context.Context, query string, max int) ([]youtube.Video, error) {
	if f.delay != nil {
		select {
		case <-time.After(f.delay(query)):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.videos[query], nil
}

func newGen(t *testing.T, cloud TextGenerator, local LocalGenerator, searchers ...youtube.Searcher) *Generator {
	t.Helper()
	g, err := New(nil, cloud, local, searchers, Config{QuizCount: 3, CheckpointCount: 4})
	if err != nil {
		t.Fatalf("new generator: %v", err)
	}
	return g
}

func TestFirstSuccessFallsBackToHeuristic(t *testing.T) {
	primary := Attempt("primary", func(ctx context.Context) (string, error) {
		return "", errors.New("provider down")
	})
	heuristic := Attempt("heuristic", func(ctx context.Context) (string, error) {
		return "local result", nil
	})
	got, err := FirstSuccess(context.Background(), nil, "task", primary, nil, heuristic)
	if err != nil {
		t.Fatalf("expected primary failure to be absorbed, got %v", err)
	}
	if got != "local result" {
		t.Fatalf("expected heuristic output, got %q", got)
	}
}

func TestFirstSuccessStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	secondRan := false
	first := Attempt("first", func(ctx context.Context) (int, error) {
		cancel()
		return 0, ctx.Err()
	})
	second := Attempt("second", func(ctx context.Context) (int, error) {
		secondRan = true
		return 1, nil
	})
	_, err := FirstSuccess(ctx, nil, "task", first, second)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if secondRan {
		t.Fatalf("chain advanced after cancellation")
	}
}

func TestFirstSuccessExhausted(t *testing.T) {
	fail := Attempt("a", func(ctx context.Context) (int, error) { return 0, errors.New("nope") })
	_, err := FirstSuccess(context.Background(), nil, "task", fail, fail)
	if !errors.Is(err, pkgerrors.ErrProvidersExhausted) {
		t.Fatalf("expected ErrProvidersExhausted, got %v", err)
	}
	if _, err := FirstSuccess[int](context.Background(), nil, "empty"); !errors.Is(err, pkgerrors.ErrProvidersExhausted) {
		t.Fatalf("expected ErrProvidersExhausted for empty chain, got %v", err)
	}
}

func TestFirstSuccessReportsUnusableResponses(t *testing.T) {
	unusable := Attempt("cloud", func(ctx context.Context) (int, error) { return 0, ErrUnusable })
	_, err := FirstSuccess(context.Background(), nil, "quiz", unusable)
	if !errors.Is(err, pkgerrors.ErrProvidersExhausted) {
		t.Fatalf("expected ErrProvidersExhausted, got %v", err)
	}
	if !errors.Is(err, pkgerrors.ErrNoUsableRecords) {
		t.Fatalf("expected ErrNoUsableRecords in chain, got %v", err)
	}
}

const corpus = "Photosynthesis is the process by which plants turn light into chemical energy.\n" +
	"Mitochondria are the organelles that release energy from glucose in cells.\n" +
	"Osmosis refers to the movement of water across a semi-permeable membrane."

func assertQuiz(t *testing.T, items []study.QuizItem) {
	t.Helper()
	if len(items) == 0 {
		t.Fatalf("expected quiz items")
	}
	for _, it := range items {
		if !it.Valid() {
			t.Fatalf("invalid quiz item %+v", it)
		}
	}
}

func TestQuizCloudFailureUsesHeuristic(t *testing.T) {
	cloud := &scriptedGen{name: "cloud", errs: []error{errors.New("503")}}
	g := newGen(t, cloud, nil)
	items, err := g.Quiz(context.Background(), corpus)
	if err != nil {
		t.Fatalf("quiz: %v", err)
	}
	assertQuiz(t, items)
	if !strings.HasPrefix(items[0].Question, "Which description best matches") {
		t.Fatalf("expected definition-based heuristic question, got %q", items[0].Question)
	}
}

func TestQuizKeepsCloudItemsWhenEchoIsGarbage(t *testing.T) {
	cloud := &scriptedGen{name: "cloud", replies: []string{
		`[{"question":"What do plants make?","options":["Energy","Sand","Rocks","Salt"],"answer":"Energy"}]`,
	}}
	local := &scriptedGen{name: "local", replies: []string{"sorry, I cannot help with that"}}
	g := newGen(t, cloud, local)
	items, err := g.Quiz(context.Background(), corpus)
	if err != nil {
		t.Fatalf("quiz: %v", err)
	}
	if len(items) != 1 || items[0].Question != "What do plants make?" || items[0].Answer != "Energy" {
		t.Fatalf("expected cloud items, got %+v", items)
	}
	if local.calls() != 1 || !strings.Contains(local.prompts[0], "What do plants make?") {
		t.Fatalf("expected one echo call carrying the cloud items")
	}
}

func TestQuizLocalAfterCloudFailure(t *testing.T) {
	cloud := &scriptedGen{name: "cloud", replies: []string{"no json here"}}
	local := &scriptedGen{name: "local", replies: []string{
		"Here:\n```json\n{\"questions\":[{\"q\":\"Which organelle releases energy?\",\"choices\":[\"Mitochondria\",\"Nucleus\"],\"correct\":\"A\"}]}\n```",
	}}
	g := newGen(t, cloud, local)
	items, err := g.Quiz(context.Background(), corpus)
	if err != nil {
		t.Fatalf("quiz: %v", err)
	}
	assertQuiz(t, items)
	if items[0].Answer != "Mitochondria" {
		t.Fatalf("unexpected answer %q", items[0].Answer)
	}
}

func TestCheckpointsFallThroughToLocal(t *testing.T) {
	cloud := &scriptedGen{name: "cloud", replies: []string{"[]"}}
	local := &scriptedGen{name: "local", replies: []string{
		`Sure! [{"topic":"Cells","order":2},{"topic":"Energy","order":1},{"title":"","order":3}]`,
	}}
	g := newGen(t, cloud, local)
	cps, err := g.Checkpoints(context.Background(), corpus)
	if err != nil {
		t.Fatalf("checkpoints: %v", err)
	}
	if len(cps) != 2 || cps[0].Title != "Cells" || cps[0].Order != 2 || cps[1].Order != 1 {
		t.Fatalf("unexpected checkpoints %+v", cps)
	}
}

func TestCheckpointsHeuristicWithoutProviders(t *testing.T) {
	g := newGen(t, nil, nil)
	cps, err := g.Checkpoints(context.Background(), corpus)
	if err != nil {
		t.Fatalf("checkpoints: %v", err)
	}
	if len(cps) != 3 {
		t.Fatalf("expected 3 heuristic checkpoints, got %+v", cps)
	}
	for i, cp := range cps {
		if cp.Order != i+1 || cp.Title == "" {
			t.Fatalf("unexpected checkpoint %+v", cp)
		}
	}
}

func TestVideoProviderChainAndDenylist(t *testing.T) {
	failing := &fakeSearcher{name: "cse", err: errors.New("quota")}
	api := &fakeSearcher{name: "api", videos: map[string][]youtube.Video{
		"Loops in Python basics": {
			{URL: "https://www.youtube.com/watch?v=dQw4w9WgXcQ", Title: "Rick Astley - Never Gonna Give You Up"},
			{URL: "https://youtu.be/abc12345678", Title: "Python loops"},
		},
	}}
	g := newGen(t, nil, nil, failing, api)
	got, err := g.Video(context.Background(), "Loops in Python: basics & patterns")
	if err != nil {
		t.Fatalf("video: %v", err)
	}
	if got != "https://www.youtube.com/watch?v=abc12345678" {
		t.Fatalf("unexpected video %q", got)
	}
}

func TestVideoCloudFallback(t *testing.T) {
	cloud := &scriptedGen{name: "cloud", replies: []string{
		`[{"link":"https://www.youtube.com/shorts/abc12345678","title":"Loops"}]`,
	}}
	g := newGen(t, cloud, nil)
	got, err := g.Video(context.Background(), "Loops")
	if err != nil {
		t.Fatalf("video: %v", err)
	}
	if got != "https://www.youtube.com/watch?v=abc12345678" {
		t.Fatalf("unexpected video %q", got)
	}
}

func TestVideoNoResultIsNotAnError(t *testing.T) {
	cloud := &scriptedGen{name: "cloud", replies: []string{`[{"url":"https://youtu.be/xyz12345678","title":"never gonna give you up"}]`}}
	g := newGen(t, cloud, nil, &fakeSearcher{name: "api"})
	got, err := g.Video(context.Background(), "Loops")
	if err != nil || got != "" {
		t.Fatalf("expected empty result without error, got %q %v", got, err)
	}
}

func TestVideosKeepInputOrder(t *testing.T) {
	topics := []string{"alpha", "beta", "gamma"}
	videos := map[string][]youtube.Video{}
	for i, topic := range topics {
		videos[topic] = []youtube.Video{{URL: fmt.Sprintf("https://youtu.be/vid%08d", i)}}
	}
	s := &fakeSearcher{name: "api", videos: videos, delay: func(q string) time.Duration {
		if q == "alpha" {
			return 30 * time.Millisecond
		}
		return 0
	}}
	g := newGen(t, nil, nil, s)
	got, err := g.Videos(context.Background(), topics)
	if err != nil {
		t.Fatalf("videos: %v", err)
	}
	for i := range topics {
		want := fmt.Sprintf("https://www.youtube.com/watch?v=vid%08d", i)
		if got[i] != want {
			t.Fatalf("position %d: got %q want %q", i, got[i], want)
		}
	}
}

func TestVideosCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := &fakeSearcher{name: "api", delay: func(string) time.Duration { return time.Second }}
	g := newGen(t, nil, nil, s)
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	if _, err := g.Videos(ctx, []string{"a", "b"}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation, got %v", err)
	}
}

func TestSearchQuery(t *testing.T) {
	got := SearchQuery("Intro — Loops, Conditionals & Functions in Python")
	if got != "Intro Loops Conditionals Functions" {
		t.Fatalf("unexpected query %q", got)
	}
}

func TestTopicQuizFallback(t *testing.T) {
	cloud := &scriptedGen{name: "cloud", errs: []error{errors.New("down")}}
	g := newGen(t, cloud, nil)
	items, err := g.TopicQuiz(context.Background(), "Recursion", 1)
	if err != nil {
		t.Fatalf("topic quiz: %v", err)
	}
	assertQuiz(t, items)
	if !strings.Contains(items[0].Question, "Recursion") {
		t.Fatalf("unexpected fallback %+v", items[0])
	}
}

func TestTopicQuizCorrectIndex(t *testing.T) {
	cloud := &scriptedGen{name: "cloud", replies: []string{
		`[{"question":"Base case?","options":["Stops recursion","Starts loop","Allocates","Sorts"],"correctIndex":0}]`,
	}}
	g := newGen(t, cloud, nil)
	items, err := g.TopicQuiz(context.Background(), "Recursion", 1)
	if err != nil {
		t.Fatalf("topic quiz: %v", err)
	}
	if len(items) != 1 || items[0].Answer != "Stops recursion" {
		t.Fatalf("unexpected items %+v", items)
	}
}

func TestTutorReply(t *testing.T) {
	var history []TutorTurn
	for i := 0; i < 12; i++ {
		history = append(history, TutorTurn{Role: TutorRoleUser, Text: fmt.Sprintf("msg %d", i)})
	}
	cloud := &scriptedGen{name: "cloud", replies: []string{"  Think of it as a loop that calls itself.  "}}
	g := newGen(t, cloud, nil)
	reply, err := g.TutorReply(context.Background(), "Recursion", study.PersonaSocraticMentor, history, "why?")
	if err != nil {
		t.Fatalf("tutor: %v", err)
	}
	if reply != "Think of it as a loop that calls itself." {
		t.Fatalf("unexpected reply %q", reply)
	}
	p := cloud.prompts[0]
	if strings.Contains(p, "User: msg 1\n") || !strings.Contains(p, "User: msg 2") || !strings.Contains(p, "User: why?") {
		t.Fatalf("prompt should carry the last 10 turns:\n%s", p)
	}

	offline := newGen(t, nil, nil)
	reply, err = offline.TutorReply(context.Background(), "Recursion", study.PersonaConciseExpert, nil, "help")
	if err != nil {
		t.Fatalf("tutor fallback: %v", err)
	}
	if !strings.HasPrefix(reply, "Concise Expert: For Recursion,") {
		t.Fatalf("unexpected fallback %q", reply)
	}
}

func TestPingAndProbe(t *testing.T) {
	g := newGen(t, &scriptedGen{name: "cloud", errs: []error{errors.New("x")}}, nil)
	if got := g.PingCloud(context.Background(), "hi"); got != "" {
		t.Fatalf("expected empty ping on failure, got %q", got)
	}
	if err := g.ProbeLocal(context.Background()); !errors.Is(err, pkgerrors.ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
	local := &scriptedGen{name: "local", probe: errors.New("model missing")}
	g = newGen(t, nil, local)
	if err := g.ProbeLocal(context.Background()); err == nil {
		t.Fatalf("expected probe error")
	}
}
