package messageview

import "testing"

func TestQuoteDepth(t *testing.T) {
	cases := []struct {
		line string
		want int
	}{
		{"plain text", 0},
		{"> quoted once", 1},
		{">> nested", 2},
		{"> > spaced markers", 2},
		{"  > indented quote", 1},
		{">>> > deep", 4},
		{"", 0},
		{">", 1},
		{"not > a quote", 0},
	}

	for _, c := range cases {
		if got := quoteDepth(c.line); got != c.want {
			t.Errorf("quoteDepth(%q) = %d, want %d", c.line, got, c.want)
		}
	}
}

func TestColorizeQuotesLeavesPlainLinesUntouched(t *testing.T) {
	body := "hello\nworld"
	if got := colorizeQuotes(body); got != body {
		t.Errorf("plain body changed: %q", got)
	}
}

func TestColorizeQuotesPreservesLineCount(t *testing.T) {
	body := "intro\n> level one\n>> level two\noutro"
	got := colorizeQuotes(body)

	count := 1
	for _, r := range got {
		if r == '\n' {
			count++
		}
	}
	if count != 4 {
		t.Errorf("got %d lines, want 4", count)
	}
}
