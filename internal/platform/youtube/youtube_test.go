package youtube

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"google.golang.org/api/option"
)

func TestCanonicalURL(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"https://youtu.be/abc12345678", "https://www.youtube.com/watch?v=abc12345678"},
		{"https://www.youtube.com/watch?v=abc12345678&t=42", "https://www.youtube.com/watch?v=abc12345678"},
		{"https://www.youtube.com/shorts/abc12345678?feature=share", "https://www.youtube.com/watch?v=abc12345678"},
		{"http://m.youtube.com/watch?v=abc-_345678", "https://www.youtube.com/watch?v=abc-_345678"},
		{"https://www.youtube.com/embed/abc12345678", "https://www.youtube.com/watch?v=abc12345678"},
		{"https://www.youtube.com/@channel", "https://www.youtube.com/@channel"},
		{"https://vimeo.com/12345", ""},
		{"not a url", ""},
	}
	for _, tc := range cases {
		if got := CanonicalURL(tc.in); got != tc.want {
			t.Fatalf("CanonicalURL(%q)=%q want %q", tc.in, got, tc.want)
		}
	}
}

func TestEmbedURL(t *testing.T) {
	if got := EmbedURL("https://youtu.be/abc12345678"); got != "https://www.youtube.com/embed/abc12345678" {
		t.Fatalf("unexpected embed url %q", got)
	}
	if got := EmbedURL("https://example.com/x"); got != "https://example.com/x" {
		t.Fatalf("expected passthrough, got %q", got)
	}
}

func TestDataAPISearcher(t *testing.T) {
	var query string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items":[
			{"id":{"kind":"youtube#video","videoId":"abc12345678"},"snippet":{"title":"Loops explained"}},
			{"id":{"kind":"youtube#channel"}},
			{"id":{"videoId":"zzz12345678"},"snippet":{"title":""}}
		]}`))
	}))
	defer srv.Close()

	s, err := NewDataAPISearcher(context.Background(), nil, "test-key",
		option.WithEndpoint(srv.URL+"/"), option.WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	got, err := s.Search(context.Background(), "python loops", 3)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 videos, got %+v", got)
	}
	if got[0].URL != "https://www.youtube.com/watch?v=abc12345678" || got[0].Title != "Loops explained" {
		t.Fatalf("unexpected first video %+v", got[0])
	}
	if got[1].Title != "Untitled" {
		t.Fatalf("expected default title, got %+v", got[1])
	}
	for _, want := range []string{"videoEmbeddable=true", "safeSearch=moderate", "type=video"} {
		if !strings.Contains(query, want) {
			t.Fatalf("query %q missing %s", query, want)
		}
	}
}

func TestCSESearcherFiltersAndCanonicalizes(t *testing.T) {
	var q string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q = r.URL.Query().Get("q")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items":[
			{"link":"https://example.com/article","title":"Blog"},
			{"link":"https://youtu.be/abc12345678?t=3","title":"Short link"},
			{"link":"https://www.youtube.com/shorts/def12345678","title":"Short"}
		]}`))
	}))
	defer srv.Close()

	s, err := NewCSESearcher(context.Background(), nil, "k", "cx",
		option.WithEndpoint(srv.URL+"/"), option.WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	got, err := s.Search(context.Background(), "python loops", 3)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if q != "site:youtube.com python loops" {
		t.Fatalf("unexpected query %q", q)
	}
	if len(got) != 2 || got[0].URL != "https://www.youtube.com/watch?v=abc12345678" || got[1].URL != "https://www.youtube.com/watch?v=def12345678" {
		t.Fatalf("unexpected results %+v", got)
	}
}

func TestSearchersRequireCredentials(t *testing.T) {
	if _, err := NewDataAPISearcher(context.Background(), nil, ""); err == nil {
		t.Fatalf("expected error without key")
	}
	if _, err := NewCSESearcher(context.Background(), nil, "k", ""); err == nil {
		t.Fatalf("expected error without cx")
	}
}
