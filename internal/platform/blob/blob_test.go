package blob

import (
	"context"
	"errors"
	"strings"
	"testing"

	pkgerrors "github.com/yungbote/studypath/internal/pkg/errors"
)

func TestLocalStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocalStore(nil, t.TempDir())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	ref, err := s.Put(ctx, "study-1", "../../Week 1 notes.pdf", []byte("%PDF-1.4"))
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if !strings.HasPrefix(ref, "local://uploads/study-1/") || !strings.HasSuffix(ref, "-Week_1_notes.pdf") {
		t.Fatalf("unexpected ref %q", ref)
	}
	got, err := s.Get(ctx, ref)
	if err != nil || string(got) != "%PDF-1.4" {
		t.Fatalf("get: %q %v", got, err)
	}

	if err := s.DeleteStudy(ctx, "study-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.Get(ctx, ref); !errors.Is(err, pkgerrors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestLocalStoreRejectsEscapes(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocalStore(nil, t.TempDir())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if _, err := s.Get(ctx, "local://../../etc/passwd"); !errors.Is(err, pkgerrors.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
	if _, err := s.Get(ctx, "gs://bucket/x"); !errors.Is(err, pkgerrors.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument for foreign ref, got %v", err)
	}
	if _, err := s.Put(ctx, "../x", "a.txt", nil); !errors.Is(err, pkgerrors.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument for bad study id, got %v", err)
	}
}

func TestGCSKeyFor(t *testing.T) {
	s := &GCSStore{bucket: "uploads-bucket"}
	key, err := s.keyFor("gs://uploads-bucket/uploads/s/abc-notes.pdf")
	if err != nil || key != "uploads/s/abc-notes.pdf" {
		t.Fatalf("unexpected key %q %v", key, err)
	}
	if _, err := s.keyFor("gs://other/uploads/s/x"); err == nil {
		t.Fatalf("expected error for other bucket")
	}
}
