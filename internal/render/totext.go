package render

import (
	"strings"

	"golang.org/x/net/html"
)

// Character emitted for non-text embedded objects (images), replaced with
// a space after parsing. U+00A0 is the non-breaking space some generators
// use instead of a regular space.
const (
	objectReplacementChar = '\uFFFC'
	nbspChar              = '\u00A0'
)

// Content inside these elements never contributes to the text output.
var tagsWithIgnoredContent = map[string]bool{
	"style":  true,
	"script": true,
	"title":  true,
}

// hrReplacement stands in for a horizontal rule, roughly what rich-text
// mail clients emit for one.
const hrReplacement = "_____________________________________________\r\n"

// HTMLToText converts an HTML string to plain text. The tokenizer's
// start/end/text events are folded with an ignored-tag depth counter so
// style, script and title content is discarded, structural tags become
// line breaks or list prefixes, and horizontal rules become a run of
// underscores. Malformed input yields whatever text was reduced up to the
// point the tokenizer gave up; the function never fails.
func HTMLToText(src string) string {
	z := html.NewTokenizer(strings.NewReader(src))

	var buf strings.Builder
	buf.Grow(len(src))
	ignoreDepth := 0

	for {
		switch z.Next() {
		case html.ErrorToken:
			// io.EOF on well-formed input; anything else leaves a
			// partial reduction, which is still the best answer.
			return finalizeText(buf.String())

		case html.TextToken:
			if ignoreDepth == 0 {
				buf.Write(z.Text())
			}

		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			handleOpenTag(&buf, strings.ToLower(string(name)), &ignoreDepth)

		case html.EndTagToken:
			name, _ := z.TagName()
			handleCloseTag(&buf, strings.ToLower(string(name)), &ignoreDepth)
		}
	}
}

func handleOpenTag(buf *strings.Builder, tag string, ignoreDepth *int) {
	if tagsWithIgnoredContent[tag] {
		*ignoreDepth++
		return
	}
	if *ignoreDepth > 0 {
		return
	}

	switch tag {
	case "hr":
		buf.WriteString(hrReplacement)
	case "br":
		buf.WriteByte('\n')
	case "p", "div", "blockquote", "tr":
		ensureLineBreak(buf)
	case "ul":
		ensureLineBreak(buf)
	case "li":
		buf.WriteString("\t  ")
	case "img":
		// Mirror the object placeholder a span-based renderer would
		// produce; finalizeText turns it into a space.
		buf.WriteRune(objectReplacementChar)
	}
}

func handleCloseTag(buf *strings.Builder, tag string, ignoreDepth *int) {
	if tagsWithIgnoredContent[tag] {
		if *ignoreDepth > 0 {
			*ignoreDepth--
		}
		return
	}
	if *ignoreDepth > 0 {
		return
	}

	switch tag {
	case "p", "div", "blockquote", "tr":
		ensureLineBreak(buf)
	case "ul", "li":
		buf.WriteString("\r\n")
	}
}

// ensureLineBreak appends a newline unless the output already ends with one.
func ensureLineBreak(buf *strings.Builder) {
	s := buf.String()
	if len(s) > 0 && s[len(s)-1] != '\n' {
		buf.WriteByte('\n')
	}
}

// finalizeText applies the two character substitutions the reduced text
// needs before display.
func finalizeText(text string) string {
	text = strings.ReplaceAll(text, string(objectReplacementChar), " ")
	return strings.ReplaceAll(text, string(nbspChar), " ")
}
