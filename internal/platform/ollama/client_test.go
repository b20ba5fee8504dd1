package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestGenerateSendsDeterministicJSONRequest(t *testing.T) {
	var got generateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte(`{"response":"[{\"checkpoint\":\"Loops\"}]","done":true}`))
	}))
	defer srv.Close()

	c := New(nil, Config{Host: srv.URL, Model: "phi3:mini"})
	out, err := c.Generate(context.Background(), "make topics")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !strings.Contains(out, "Loops") {
		t.Fatalf("unexpected output %q", out)
	}
	if got.Model != "phi3:mini" || got.Stream || got.Format != "json" {
		t.Fatalf("unexpected request %+v", got)
	}
	if got.Options.Temperature != 0 || got.Options.NumPredict != DefaultNumPredict {
		t.Fatalf("unexpected options %+v", got.Options)
	}
}

func TestGenerateTimesOutAndAdvances(t *testing.T) {
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer slow.Close()
	fast := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"response":"ok"}`))
	}))
	defer fast.Close()

	c := New(nil, Config{Host: slow.URL, Timeout: 50 * time.Millisecond})
	c.endpoints = []string{slow.URL, fast.URL}

	start := time.Now()
	out, err := c.Generate(context.Background(), "x")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if out != "ok" {
		t.Fatalf("expected fallback endpoint output, got %q", out)
	}
	if time.Since(start) > time.Second {
		t.Fatalf("timeout was not enforced")
	}
}

func TestGenerateAllEndpointsFail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model crashed", http.StatusInternalServerError)
	}))
	defer srv.Close()
	c := New(nil, Config{Host: srv.URL})
	c.endpoints = []string{srv.URL}
	if _, err := c.Generate(context.Background(), "x"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestProbeIsStrict(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"models":[{"name":"gemma3:4b"},{"name":"phi3:mini"}]}`))
	}))
	defer srv.Close()

	ok := New(nil, Config{Host: srv.URL, Model: "gemma3:4b"})
	ok.endpoints = []string{srv.URL}
	if err := ok.Probe(context.Background()); err != nil {
		t.Fatalf("expected model to resolve, got %v", err)
	}

	missing := New(nil, Config{Host: srv.URL, Model: "gemma3"})
	missing.endpoints = []string{srv.URL}
	err := missing.Probe(context.Background())
	if !errors.Is(err, ErrModelUnavailable) {
		t.Fatalf("expected ErrModelUnavailable, got %v", err)
	}
	if !strings.Contains(err.Error(), "gemma3") {
		t.Fatalf("error should name the model: %v", err)
	}
}

func TestEndpoints(t *testing.T) {
	got := Endpoints("http://gpu-box:11434/")
	if len(got) != 2 || got[0] != "http://gpu-box:11434" || got[1] != DefaultHost {
		t.Fatalf("unexpected endpoints %v", got)
	}
	if got := Endpoints(""); len(got) != 1 || got[0] != DefaultHost {
		t.Fatalf("unexpected default endpoints %v", got)
	}
}
