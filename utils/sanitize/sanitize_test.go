package sanitize_test

import (
	"testing"

	"github.com/nicolep999/moodie/utils/sanitize"
)

func TestCleanStripsTags(t *testing.T) {
	got := sanitize.Clean("<script>alert(1)</script>Great movie")
	if got != "alert(1)Great movie" {
		t.Fatalf("unexpected result: %q", got)
	}
}

func TestCleanRemovesDangerousCharacters(t *testing.T) {
	got := sanitize.Clean(`He said "watch it" & don't miss <3`)
	if got != "He said watch it & dont miss 3" {
		t.Fatalf("unexpected result: %q", got)
	}
}

func TestCleanTrimsWhitespace(t *testing.T) {
	if got := sanitize.Clean("  plain text  "); got != "plain text" {
		t.Fatalf("expected trimmed text, got %q", got)
	}
}

func TestCleanEmptyPassthrough(t *testing.T) {
	if got := sanitize.Clean(""); got != "" {
		t.Fatalf("expected empty string, got %q", got)
	}
}

func TestCleanPlainTextUnchanged(t *testing.T) {
	if got := sanitize.Clean("A perfectly normal review title"); got != "A perfectly normal review title" {
		t.Fatalf("expected unchanged text, got %q", got)
	}
}
