package render

import (
	"strings"
	"testing"
)

func linkifyString(t *testing.T, in string) string {
	t.Helper()
	var sb strings.Builder
	linkify(in, &sb)
	return sb.String()
}

func TestLinkifyWebURL(t *testing.T) {
	out := linkifyString(t, "visit http://example.com now")

	want := `<a href="http://example.com">http://example.com</a>`
	if !strings.Contains(out, want) {
		t.Errorf("got %q, want it to contain %q", out, want)
	}
}

func TestLinkifySchemelessURL(t *testing.T) {
	out := linkifyString(t, "see example.com please")

	// Displayed text stays scheme-less; only the target gains http://.
	want := `<a href="http://example.com">example.com</a>`
	if !strings.Contains(out, want) {
		t.Errorf("got %q, want it to contain %q", out, want)
	}
}

func TestLinkifySkipsEmailDomains(t *testing.T) {
	out := linkifyString(t, "write to user@example.com today")

	if strings.Contains(out, "<a ") {
		t.Errorf("email domain was linkified: %q", out)
	}
}

func TestLinkifySkipsURLAfterAtSign(t *testing.T) {
	out := linkifyString(t, "odd construct user@http://example.com here")

	if strings.Contains(out, "<a ") {
		t.Errorf("@-preceded URL must not be wrapped: %q", out)
	}
}

func TestLinkifyBitcoinURI(t *testing.T) {
	uri := "bitcoin:175tWpb8K1S7NmH4Zx6rewF9WQrcZv245W"
	out := linkifyString(t, "pay "+uri+" thanks")

	want := `<a href="` + uri + `">` + uri + `</a>`
	if !strings.Contains(out, want) {
		t.Errorf("got %q, want it to contain %q", out, want)
	}
}

func TestLinkifyBitcoinBeforeWebURLs(t *testing.T) {
	out := linkifyString(t, "bitcoin:175tWpb8K1S7NmH4Zx6rewF9WQrcZv245W and http://example.com")

	if got := strings.Count(out, "<a href="); got != 2 {
		t.Errorf("expected two links, got %d in %q", got, out)
	}
}

func TestLinkifyPreservesSurroundingText(t *testing.T) {
	out := linkifyString(t, "a http://x.org b")

	if !strings.HasPrefix(out, "a ") || !strings.HasSuffix(out, " b") {
		t.Errorf("surrounding text altered: %q", out)
	}
}

func TestLinkifyNoMatches(t *testing.T) {
	in := "nothing to see here"
	if out := linkifyString(t, in); out != in {
		t.Errorf("text without URLs must pass through unchanged, got %q", out)
	}
}

func TestLinkifyTrailingPunctuationExcluded(t *testing.T) {
	out := linkifyString(t, "go to example.com.")

	if !strings.Contains(out, `<a href="http://example.com">example.com</a>.`) {
		t.Errorf("trailing dot should stay outside the link: %q", out)
	}
}
