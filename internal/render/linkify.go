package render

import (
	"regexp"
	"strings"
)

// Payment URIs are wrapped before general web URLs so the address part is
// never mistaken for a hostname.
var bitcoinURIRe = regexp.MustCompile(
	`bitcoin:[13][a-km-zA-HJ-NP-Z1-9]{25,34}` +
		`(?:\?[a-zA-Z0-9$\-_.+!*'(),%:;@&=?/~#|]*)?`,
)

// Web URLs with an optional scheme. Scheme-less matches are displayed
// verbatim but linked with an http:// target. '<' and '>' are excluded so
// the match never crosses markup or the '>' sentinel.
var webURLRe = regexp.MustCompile(
	`(?i)\b(?:(?:https?|ftp|rtsp)://)?` + // optional scheme
		`(?:[a-z0-9](?:[a-z0-9-]*[a-z0-9])?\.)+[a-z]{2,}` + // dotted host
		`(?::\d{1,5})?` + // optional port
		`(?:/[a-zA-Z0-9$\-_.+!*'(),;/?:@&~=%#]*)?`, // optional path
)

// linkify wraps payment URIs and web URLs in anchors and appends the
// result to out. The input must already be entity-escaped; matched text is
// reproduced verbatim inside the anchor. A URL immediately preceded by '@'
// is left alone so the domain of an email address never becomes a link.
func linkify(text string, out *strings.Builder) {
	prepared := bitcoinURIRe.ReplaceAllString(text, `<a href="$0">$0</a>`)

	last := 0
	for _, loc := range webURLRe.FindAllStringIndex(prepared, -1) {
		start, end := loc[0], loc[1]
		out.WriteString(prepared[last:start])
		match := prepared[start:end]

		switch {
		case start > 0 && prepared[start-1] == '@':
			out.WriteString(match)
		case strings.Index(match, ":") > 0:
			out.WriteString(`<a href="` + match + `">` + match + `</a>`)
		default:
			// No scheme separator; link to http:// but display as matched.
			out.WriteString(`<a href="http://` + match + `">` + match + `</a>`)
		}
		last = end
	}
	out.WriteString(prepared[last:])
}
