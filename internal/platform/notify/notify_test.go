package notify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
)

type recordingSink struct {
	mu   sync.Mutex
	msgs []Message
	err  error
}

func (r *recordingSink) Name() string { return "recording" }

func (r *recordingSink) Deliver(ctx context.Context, msg Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, msg)
	return r.err
}

func TestDispatcherDeliversToEverySink(t *testing.T) {
	failing := &recordingSink{err: errors.New("down")}
	ok := &recordingSink{}
	d := NewDispatcher(nil, failing, nil, ok)
	d.Notify(EventStudyCreated, map[string]string{"studyId": "s1"})
	d.Wait()
	if len(failing.msgs) != 1 || len(ok.msgs) != 1 {
		t.Fatalf("expected both sinks to be tried, got %d and %d", len(failing.msgs), len(ok.msgs))
	}
	if ok.msgs[0].Event != EventStudyCreated {
		t.Fatalf("unexpected event %q", ok.msgs[0].Event)
	}
}

func TestNoopNotifier(t *testing.T) {
	Noop().Notify(EventStudyGenerated, nil)
}

func TestWebhookPayloadAndRetry(t *testing.T) {
	var calls int32
	var got Message
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			http.Error(w, "busy", http.StatusServiceUnavailable)
			return
		}
		var raw map[string]json.RawMessage
		_ = json.NewDecoder(r.Body).Decode(&raw)
		_ = json.Unmarshal(raw["event"], &got.Event)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	sink := NewWebhookSink(srv.URL, srv.Client())
	sink.retryBase = 0
	if err := sink.Deliver(context.Background(), Message{Event: EventUploadProcessed, Payload: map[string]int{"files": 2}}); err != nil {
		t.Fatalf("deliver: %v", err)
	}
	if atomic.LoadInt32(&calls) != 2 {
		t.Fatalf("expected one retry, got %d calls", calls)
	}
	if got.Event != EventUploadProcessed {
		t.Fatalf("unexpected event %q", got.Event)
	}
}

func TestWebhookDoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, "bad", http.StatusBadRequest)
	}))
	defer srv.Close()

	sink := NewWebhookSink(srv.URL, srv.Client())
	if err := sink.Deliver(context.Background(), Message{Event: EventStudyCreated}); err == nil {
		t.Fatalf("expected error")
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Fatalf("expected a single attempt, got %d", calls)
	}
}
