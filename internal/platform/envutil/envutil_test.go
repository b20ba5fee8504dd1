package envutil

import (
	"testing"
	"time"
)

func TestReaders(t *testing.T) {
	t.Setenv("EU_STR", "  value ")
	t.Setenv("EU_INT", "12")
	t.Setenv("EU_BAD_INT", "x")
	t.Setenv("EU_BOOL", "off")
	t.Setenv("EU_MS", "250")
	t.Setenv("EU_LIST", "a, ,b,")
	t.Setenv("EU_FLOAT", "0.25")

	if got := String("EU_STR", "d"); got != "value" {
		t.Fatalf("String: got %q", got)
	}
	if got := String("EU_MISSING", "d"); got != "d" {
		t.Fatalf("String default: got %q", got)
	}
	if got := Int("EU_INT", 1); got != 12 {
		t.Fatalf("Int: got %d", got)
	}
	if got := Int("EU_BAD_INT", 7); got != 7 {
		t.Fatalf("Int fallback: got %d", got)
	}
	if Bool("EU_BOOL", true) {
		t.Fatalf("Bool: expected false")
	}
	if got := DurationMS("EU_MS", time.Second); got != 250*time.Millisecond {
		t.Fatalf("DurationMS: got %v", got)
	}
	got := List("EU_LIST", nil)
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("List: got %v", got)
	}
	if got := Float("EU_FLOAT", 1); got != 0.25 {
		t.Fatalf("Float: got %v", got)
	}
	if got := Float("EU_STR", 1); got != 1 {
		t.Fatalf("Float fallback: got %v", got)
	}
	if !Set("EU_STR") || Set("EU_MISSING") {
		t.Fatalf("Set mismatch")
	}
}
