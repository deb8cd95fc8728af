package parse

import (
	"strings"
	"testing"
	"unicode/utf8"
)

const sample = `REPLY:
You assume danger without evidence.

SCORES:
Logical Consistency: 5/5
**Evidence Quality**: 2/5
- Persuasiveness: 6/5
Clarity: 0/5

FEEDBACK: Support your claim with one concrete example.
`

func TestScore(t *testing.T) {
	if n, ok := Score(sample, "Logical Consistency"); !ok || n != 5 {
		t.Fatalf("expected 5, got %d ok=%v", n, ok)
	}
	if n, ok := Score(sample, "Evidence Quality"); !ok || n != 2 {
		t.Fatalf("expected 2 through markdown, got %d ok=%v", n, ok)
	}
	if _, ok := Score(sample, "Persuasiveness"); ok {
		t.Fatalf("expected 6/5 to be rejected")
	}
	if _, ok := Score(sample, "Clarity"); ok {
		t.Fatalf("expected 0/5 to be rejected")
	}
	if _, ok := Score(sample, "Rebuttal Strength"); ok {
		t.Fatalf("expected missing label to fail")
	}
}

func TestScore_OutOfRangeKeepsDefault(t *testing.T) {
	n, ok := Score("Logical Consistency: 6/5", "Logical Consistency")
	if got := OrInt(n, ok, 3); got != 3 {
		t.Fatalf("expected default 3, got %d", got)
	}
}

func TestLine(t *testing.T) {
	v, ok := Line(sample, "FEEDBACK")
	if !ok || v != "Support your claim with one concrete example." {
		t.Fatalf("unexpected feedback %q ok=%v", v, ok)
	}
	if _, ok := Line("no marker here", "FEEDBACK"); ok {
		t.Fatalf("expected missing marker to fail")
	}
	v, ok = Line("nothing", "FEEDBACK")
	if got := OrString(v, ok, "Keep practicing."); got != "Keep practicing." {
		t.Fatalf("expected default feedback, got %q", got)
	}
}

func TestSection(t *testing.T) {
	v, ok := Section(sample, "REPLY", "SCORES", "FEEDBACK")
	if !ok || v != "You assume danger without evidence." {
		t.Fatalf("unexpected reply %q ok=%v", v, ok)
	}
	v, ok = Section("SUMMARY: a\nb", "SUMMARY", "KEY POINTS")
	if !ok || v != "a\nb" {
		t.Fatalf("expected section to run to end, got %q", v)
	}
	if _, ok := Section("plain", "SUMMARY"); ok {
		t.Fatalf("expected missing section to fail")
	}
}

func TestBefore(t *testing.T) {
	v, ok := Before("Counter point.\nSCORES:\nClarity: 3/5", "SCORES", "FEEDBACK")
	if !ok || v != "Counter point." {
		t.Fatalf("unexpected %q", v)
	}
	if _, ok := Before("SCORES: x", "SCORES"); ok {
		t.Fatalf("expected empty prefix to fail")
	}
}

func TestBullets(t *testing.T) {
	got := Bullets("- one\n* two\n3. three\nnot a bullet\n•  four")
	want := []string{"one", "two", "three", "four"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestTruncate(t *testing.T) {
	long := strings.Repeat("ç", 250)
	got := Truncate(long, 200)
	if utf8.RuneCountInString(got) != 200 {
		t.Fatalf("expected 200 runes, got %d", utf8.RuneCountInString(got))
	}
	if Truncate("short", 200) != "short" {
		t.Fatalf("short strings must be unchanged")
	}
}
