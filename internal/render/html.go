// Package render converts mail bodies between plain text and HTML.
//
// The text→HTML direction tracks nested ">" reply quoting and emits
// blockquote markup with per-level border colors; the HTML→text direction
// folds tokenizer events into plain text suitable for terminal display.
// All conversions are pure functions of their input and never fail.
package render

import (
	"regexp"
	"strings"
)

// Inputs larger than this skip the quote-tracking pass and take the
// escape-only path, trading fidelity for bounded memory on huge bodies.
const maxSmartHTMLifyLength = 256 * 1024

// Extra capacity reserved on output buffers beyond the input length.
const extraBufferLength = 512

const (
	htmlNewline    = "<br />"
	blockquoteEnd  = "</blockquote>"
	preCSSClass    = "mailview"
	quoteCSSClass  = "gmail_quote"
	blockquoteOpen = `<blockquote class="` + quoteCSSClass + `" ` +
		`style="margin: 0pt 0pt 1ex 0.8ex; border-left: 1px solid %COLOR%; padding-left: 1ex;">`
)

// gtSentinel temporarily stands in for a literal '>' during the escape pass.
// "&gt;" is valid inside link targets, so escaping eagerly would let the
// linkifier swallow it; the sentinel is rewritten to the entity at the end.
const gtSentinel = "<gt>"

// Border colors for the first five quote nesting levels.
const (
	quoteColorDefault = "#ccc"
	quoteColorLevel1  = "#729fcf"
	quoteColorLevel2  = "#ad7fa8"
	quoteColorLevel3  = "#8ae234"
	quoteColorLevel4  = "#fcaf3e"
	quoteColorLevel5  = "#e9b96e"
)

// QuoteColor returns the blockquote border color for a nesting level.
// Levels beyond the defined palette share a default color.
func QuoteColor(level int) string {
	switch level {
	case 1:
		return quoteColorLevel1
	case 2:
		return quoteColorLevel2
	case 3:
		return quoteColorLevel3
	case 4:
		return quoteColorLevel4
	case 5:
		return quoteColorLevel5
	default:
		return quoteColorDefault
	}
}

var (
	// A lone break before a closing blockquote stays inside; for runs of
	// two or more the run is rewritten with the breaks after the marker.
	trailingBreakRe = regexp.MustCompile(`\n((?:\n)+?)` + regexp.QuoteMeta(blockquoteEnd))

	// Lines of 30+ dashes, equals signs or underscores become rules.
	horizontalRuleRe = regexp.MustCompile(`\s*([-=_]{30,})\s*`)

	// A wrapped paragraph line joined to a short lowercase continuation.
	// The continuation is captured and re-emitted in place of a lookahead;
	// see unwrapParagraphs for the fixpoint iteration this requires.
	softWrapRe = regexp.MustCompile(`(?m)^([^\r\n]{4,}[\s\w,:;+/])(?:\r\n|\n|\r)([a-z]\S{0,10}[\s\n\r])`)

	// Four or more consecutive line breaks collapse down to two.
	excessBreaksRe = regexp.MustCompile(`(\r\n|\n|\r){4,}`)
)

// TextToHTML converts a plain text message body into an HTML document
// fragment wrapped in <pre class="mailview">, rendering nested ">" reply
// markers as colored blockquotes and linkifying URLs. Bodies over 256 KiB
// fall back to plain escaping with line breaks only.
func TextToHTML(text string) string {
	if len(text) > maxSmartHTMLifyLength {
		return simpleTextToHTML(text)
	}

	var buf strings.Builder
	buf.Grow(len(text) + extraBufferLength)

	isStartOfLine := true
	spaces := 0         // leading spaces not yet committed to output
	quoteDepth := 0     // blockquotes currently open in the output
	quotesThisLine := 0 // depth implied by this line's leading '>' run

	for _, c := range text {
		if isStartOfLine {
			switch c {
			case ' ':
				spaces++
			case '>':
				quotesThisLine++
				spaces = 0
			case '\n':
				appendQuotes(&buf, quotesThisLine, quoteDepth)
				quoteDepth = quotesThisLine
				appendSpaces(&buf, spaces)
				spaces = 0
				appendChar(&buf, c)
				quotesThisLine = 0
			default:
				isStartOfLine = false
				appendQuotes(&buf, quotesThisLine, quoteDepth)
				quoteDepth = quotesThisLine
				appendSpaces(&buf, spaces)
				spaces = 0
				appendChar(&buf, c)
			}
		} else {
			appendChar(&buf, c)
			if c == '\n' {
				isStartOfLine = true
				quotesThisLine = 0
			}
		}
	}

	// Close off any quotes still open at end of input.
	for i := quoteDepth; i > 0; i-- {
		buf.WriteString(blockquoteEnd)
	}

	out := buf.String()

	// Move runs of blank lines at the end of a blockquote outside of it.
	out = trailingBreakRe.ReplaceAllString(out, blockquoteEnd+"$1")

	// Replace lines of -, = or _ with horizontal rules.
	out = horizontalRuleRe.ReplaceAllString(out, "<hr />")

	// Unwrap soft-wrapped paragraphs into single lines that reflow at
	// display time, while leaving itemized or log-style content broken.
	out = unwrapParagraphs(out)

	// Compress four or more newlines down to two.
	out = excessBreaksRe.ReplaceAllString(out, "\n\n")

	// Line breaks become markup only after the line-oriented passes above.
	out = strings.ReplaceAll(out, "\n", htmlNewline)

	var sb strings.Builder
	sb.Grow(len(out) + extraBufferLength)
	sb.WriteString(htmlifyMessageHeader())
	linkify(out, &sb)
	sb.WriteString(htmlifyMessageFooter())

	// The '>' sentinel is safe to turn into its entity now that the
	// linkifier has run.
	return strings.ReplaceAll(sb.String(), gtSentinel, "&gt;")
}

// unwrapParagraphs applies the soft-wrap join until the text stops
// changing. The pattern consumes the continuation token it would otherwise
// only look ahead at, so chained joins need repeated passes.
func unwrapParagraphs(text string) string {
	for {
		joined := softWrapRe.ReplaceAllString(text, "$1 $2")
		if joined == text {
			return joined
		}
		text = joined
	}
}

// simpleTextToHTML escapes entities and converts newlines to line breaks,
// with none of the quote tracking or cleanup passes.
func simpleTextToHTML(text string) string {
	var buf strings.Builder
	buf.Grow(len(text) + extraBufferLength)
	buf.WriteString(htmlifyMessageHeader())
	buf.WriteString(strings.ReplaceAll(htmlEncode(text), "\n", htmlNewline))
	buf.WriteString(htmlifyMessageFooter())
	return buf.String()
}

// TextToHTMLFragment converts plain text into an HTML fragment with
// entities escaped, URLs linkified and newlines as <br> — no quote
// tracking and no <pre> wrapper.
func TextToHTMLFragment(text string) string {
	escaped := htmlEncode(text)

	var linkified strings.Builder
	linkified.Grow(len(escaped) + extraBufferLength)
	linkify(escaped, &linkified)

	return crlfRe.ReplaceAllString(linkified.String(), "<br>\r\n")
}

var crlfRe = regexp.MustCompile(`\r?\n`)

// htmlEncode escapes the HTML-significant characters. The apostrophe
// becomes a numeric entity because some webmail clients do not recognize
// &apos;.
func htmlEncode(text string) string {
	return entityReplacer.Replace(text)
}

var entityReplacer = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#39;",
)

// appendChar writes a single escaped character to the buffer. '>' becomes
// the sentinel rather than its entity, and carriage returns are dropped.
func appendChar(buf *strings.Builder, c rune) {
	switch c {
	case '&':
		buf.WriteString("&amp;")
	case '<':
		buf.WriteString("&lt;")
	case '>':
		buf.WriteString(gtSentinel)
	case '\r':
	default:
		buf.WriteRune(c)
	}
}

func appendSpaces(buf *strings.Builder, spaces int) {
	for ; spaces > 0; spaces-- {
		buf.WriteByte(' ')
	}
}

// appendQuotes reconciles the committed quote depth with this line's depth
// by opening or closing blockquote markers.
func appendQuotes(buf *strings.Builder, quotesThisLine, quoteDepth int) {
	if quotesThisLine > quoteDepth {
		for i := quoteDepth; i < quotesThisLine; i++ {
			buf.WriteString(strings.Replace(blockquoteOpen, "%COLOR%", QuoteColor(i+1), 1))
		}
	} else if quotesThisLine < quoteDepth {
		for i := quoteDepth; i > quotesThisLine; i-- {
			buf.WriteString(blockquoteEnd)
		}
	}
}

func htmlifyMessageHeader() string {
	return `<pre class="` + preCSSClass + `">`
}

func htmlifyMessageFooter() string {
	return "</pre>"
}

// StylePre returns a stylesheet for the <pre> wrapper emitted by
// TextToHTML, honoring the user's fixed-width font preference.
func StylePre(fixedWidthFont bool) string {
	font := "sans-serif"
	if fixedWidthFont {
		font = "monospace"
	}
	return `<style type="text/css"> pre.` + preCSSClass +
		` {white-space: pre-wrap; word-wrap:break-word; font-family: ` +
		font + `; margin-top: 0px}</style>`
}

// WrapDocument assembles a standalone HTML document around a converted
// body, used when exporting a message for browser viewing.
func WrapDocument(body string, fixedWidthFont bool) string {
	var sb strings.Builder
	sb.Grow(len(body) + extraBufferLength)
	sb.WriteString("<!DOCTYPE html><html><head><meta charset=\"utf-8\">")
	sb.WriteString(StylePre(fixedWidthFont))
	sb.WriteString("</head><body>")
	sb.WriteString(body)
	sb.WriteString("</body></html>")
	return sb.String()
}
