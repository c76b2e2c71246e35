package monitor

import "testing"

func TestTruncateRuneBoundary(t *testing.T) {
	if got := truncate("abcdef", 10); got != "abcdef" {
		t.Fatalf("short string altered: %q", got)
	}
	if got := truncate("abcdef", 3); got != "abc" {
		t.Fatalf("ascii cut wrong: %q", got)
	}
	// cyrillic а is two bytes, a cut inside it must back up to the boundary
	if got := truncate("ааа", 3); got != "а" {
		t.Fatalf("multi-byte rune split: %q", got)
	}
	if got := truncate("日本語", 4); got != "日" {
		t.Fatalf("multi-byte rune split: %q", got)
	}
}
