package render

import (
	"strings"
	"testing"
)

func TestTextToHTMLPlainLines(t *testing.T) {
	out := TextToHTML("hello\nworld")

	if got := strings.Count(out, "<br />"); got != 1 {
		t.Errorf("expected exactly one line break, got %d in %q", got, out)
	}
	if strings.Contains(out, "<blockquote") {
		t.Errorf("unquoted text produced a blockquote: %q", out)
	}
	if !strings.HasPrefix(out, `<pre class="mailview">`) || !strings.HasSuffix(out, "</pre>") {
		t.Errorf("missing pre wrapper: %q", out)
	}
}

func TestTextToHTMLSingleQuoteLevel(t *testing.T) {
	out := TextToHTML("> quoted\nnormal")

	open := strings.Index(out, "<blockquote")
	quoted := strings.Index(out, "quoted")
	closing := strings.Index(out, "</blockquote>")
	normal := strings.Index(out, "normal")

	if open == -1 || closing == -1 {
		t.Fatalf("expected blockquote markers in %q", out)
	}
	if !(open < quoted && quoted < closing && closing < normal) {
		t.Errorf("marker ordering wrong: %q", out)
	}
	if got := strings.Count(out, "<blockquote"); got != 1 {
		t.Errorf("expected one open marker, got %d", got)
	}
	if !strings.Contains(out, QuoteColor(1)) {
		t.Errorf("level 1 border color missing: %q", out)
	}
}

func TestTextToHTMLBalancedMarkers(t *testing.T) {
	inputs := []string{
		"",
		"plain text only",
		"> one\n> > two\n> > > three\nnone",
		"> a\nb\n> c\n> > d\n",
		"> trailing quote with no final newline",
		"deep\n> > > > > > seven levels\n> > > > > > > is beyond the palette\nback",
	}

	for _, in := range inputs {
		out := TextToHTML(in)
		opens := strings.Count(out, "<blockquote")
		closes := strings.Count(out, "</blockquote>")
		if opens != closes {
			t.Errorf("input %q: %d opens vs %d closes", in, opens, closes)
		}
	}
}

func TestTextToHTMLNestedQuoteColors(t *testing.T) {
	out := TextToHTML("> > > three\n")

	for level := 1; level <= 3; level++ {
		if !strings.Contains(out, QuoteColor(level)) {
			t.Errorf("missing color for level %d in %q", level, out)
		}
	}
}

func TestQuoteColorBeyondPalette(t *testing.T) {
	if QuoteColor(6) != QuoteColor(17) {
		t.Error("levels beyond the palette should share the default color")
	}
	if QuoteColor(1) == QuoteColor(2) {
		t.Error("distinct levels should have distinct colors")
	}
}

func TestTextToHTMLCollapsesBlankLines(t *testing.T) {
	// Five blank lines between the paragraphs.
	out := TextToHTML("first\n\n\n\n\n\nsecond")

	if !strings.Contains(out, "first<br /><br />second") {
		t.Errorf("blank lines not collapsed to two breaks: %q", out)
	}
}

func TestTextToHTMLThreeBlankLinesKept(t *testing.T) {
	// Three newlines are below the collapse threshold of four.
	out := TextToHTML("first\n\n\nsecond")

	if !strings.Contains(out, "first<br /><br /><br />second") {
		t.Errorf("three breaks should survive: %q", out)
	}
}

func TestTextToHTMLHorizontalRule(t *testing.T) {
	out := TextToHTML(strings.Repeat("=", 35))

	if !strings.Contains(out, "<hr />") {
		t.Errorf("expected a horizontal rule: %q", out)
	}
	// Check the body only; the wrapper's class attribute contains '='.
	body := strings.TrimSuffix(strings.TrimPrefix(out, `<pre class="mailview">`), "</pre>")
	if strings.Contains(body, "=") {
		t.Errorf("rule characters leaked through: %q", body)
	}
	if got := strings.Count(out, "<hr />"); got != 1 {
		t.Errorf("expected a single rule, got %d", got)
	}
}

func TestTextToHTMLShortDashRunKept(t *testing.T) {
	out := TextToHTML("a\n-----\nb")

	if strings.Contains(out, "<hr />") {
		t.Errorf("29 or fewer rule characters must not become a rule: %q", out)
	}
}

func TestTextToHTMLEscapesSpecials(t *testing.T) {
	out := TextToHTML("a & b < c > d")

	for _, want := range []string{"&amp;", "&lt;", "&gt;"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %s in %q", want, out)
		}
	}
	if strings.Contains(out, "<gt>") {
		t.Errorf("sentinel leaked into output: %q", out)
	}
}

func TestTextToHTMLDropsCarriageReturns(t *testing.T) {
	out := TextToHTML("dos\r\nline")

	if strings.Contains(out, "\r") {
		t.Errorf("carriage return survived: %q", out)
	}
	if got := strings.Count(out, "<br />"); got != 1 {
		t.Errorf("expected one break for CRLF, got %d in %q", got, out)
	}
}

func TestTextToHTMLPreservesLeadingSpaces(t *testing.T) {
	out := TextToHTML("    indented")

	if !strings.Contains(out, "    indented") {
		t.Errorf("leading spaces lost: %q", out)
	}
}

func TestTextToHTMLUnwrapsSoftWrappedParagraph(t *testing.T) {
	out := TextToHTML("This is a long line that was wrapped\nby the sender.")

	if !strings.Contains(out, "wrapped by the sender.") {
		t.Errorf("soft-wrapped lines not joined: %q", out)
	}
	if strings.Contains(out, "wrapped<br />by") {
		t.Errorf("break survived between joined lines: %q", out)
	}
}

func TestTextToHTMLUnwrapChains(t *testing.T) {
	out := TextToHTML("First piece of a paragraph that\ngoes on and on and on here\nuntil it finally stops now.")

	if !strings.Contains(out, "that goes") || !strings.Contains(out, "here until") {
		t.Errorf("chained joins incomplete: %q", out)
	}
}

func TestTextToHTMLKeepsLogStyleLinesBroken(t *testing.T) {
	out := TextToHTML("2024-01-01 ERROR first entry\n2024-01-02 ERROR second entry")

	if !strings.Contains(out, "entry<br />2024-01-02") {
		t.Errorf("log lines were joined: %q", out)
	}
}

func TestTextToHTMLLargeBodyFallback(t *testing.T) {
	big := "> " + strings.Repeat("x", maxSmartHTMLifyLength)
	out := TextToHTML(big)

	if strings.Contains(out, "<blockquote") {
		t.Errorf("large body fallback must not track quotes")
	}
	if !strings.HasPrefix(out, `<pre class="mailview">&gt; `) {
		t.Errorf("large body fallback should escape the quote marker, got %q", out[:40])
	}
}

func TestTextToHTMLFragment(t *testing.T) {
	out := TextToHTMLFragment("it's here\nhttp://example.com/x")

	if !strings.Contains(out, "it&#39;s") {
		t.Errorf("apostrophe should be a numeric entity: %q", out)
	}
	if !strings.Contains(out, "<br>\r\n") {
		t.Errorf("fragment newline markup missing: %q", out)
	}
	if !strings.Contains(out, `<a href="http://example.com/x">`) {
		t.Errorf("fragment not linkified: %q", out)
	}
	if strings.Contains(out, "<pre") {
		t.Errorf("fragments must not be wrapped: %q", out)
	}
}

func TestStylePre(t *testing.T) {
	mono := StylePre(true)
	prop := StylePre(false)

	if !strings.Contains(mono, "monospace") {
		t.Errorf("fixed width preference ignored: %q", mono)
	}
	if !strings.Contains(prop, "sans-serif") {
		t.Errorf("proportional preference ignored: %q", prop)
	}
	if !strings.Contains(mono, "pre.mailview") {
		t.Errorf("style must target the wrapper class: %q", mono)
	}
}

func TestWrapDocument(t *testing.T) {
	doc := WrapDocument(TextToHTML("hi"), true)

	if !strings.HasPrefix(doc, "<!DOCTYPE html>") {
		t.Errorf("not a standalone document: %q", doc)
	}
	if !strings.Contains(doc, "monospace") || !strings.Contains(doc, "hi") {
		t.Errorf("document missing style or body: %q", doc)
	}
}
