package apierr

import (
	"fmt"
	"net/http"
	"testing"
)

func TestFromWrapped(t *testing.T) {
	base := Newf(http.StatusBadGateway, "quiz_generation_failed", "Failed to generate quiz questions. Please try again.")
	wrapped := fmt.Errorf("process materials: %w", base)

	ae, ok := From(wrapped)
	if !ok {
		t.Fatalf("expected api error in chain")
	}
	if ae.Code != "quiz_generation_failed" {
		t.Fatalf("unexpected code %q", ae.Code)
	}
	if StatusOf(wrapped) != http.StatusBadGateway {
		t.Fatalf("unexpected status %d", StatusOf(wrapped))
	}
	if StatusOf(fmt.Errorf("plain")) != http.StatusInternalServerError {
		t.Fatalf("expected 500 for plain errors")
	}
}
