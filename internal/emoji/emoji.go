// Package emoji substitutes Japanese carrier emoji code points with inline
// image references. The carriers placed pictographs in a private use area
// (U+FE000..U+FEFFF) with per-carrier glyph identifiers, so rendering a
// message from one of them needs the sender's carrier to pick the right
// lookup table.
package emoji

import (
	"embed"
	"encoding/json"
	"strconv"
	"strings"
	"sync"
)

//go:embed data/*.json
var tableFS embed.FS

// Carrier identifies which glyph table applies to a message.
type Carrier int

const (
	CarrierDocomo Carrier = iota
	CarrierSoftBank
	CarrierKDDI
	// CarrierUnknown falls back to the docomo table.
	CarrierUnknown
)

// String returns the lowercase carrier name.
func (c Carrier) String() string {
	switch c {
	case CarrierDocomo:
		return "docomo"
	case CarrierSoftBank:
		return "softbank"
	case CarrierKDDI:
		return "kddi"
	default:
		return "unknown"
	}
}

// Sender domains per carrier, matched against the address suffix.
var carrierDomains = map[string]Carrier{
	"docomo.ne.jp":   CarrierDocomo,
	"softbank.ne.jp": CarrierSoftBank,
	"vodafone.ne.jp": CarrierSoftBank,
	"disney.ne.jp":   CarrierSoftBank,
	"i.softbank.jp":  CarrierSoftBank,
	"ezweb.ne.jp":    CarrierKDDI,
	"ido.ne.jp":      CarrierKDDI,
}

// CarrierFromAddress infers the carrier from an email address domain.
// Unrecognized or malformed addresses map to CarrierUnknown.
func CarrierFromAddress(addr string) Carrier {
	at := strings.LastIndex(addr, "@")
	if at < 0 || at == len(addr)-1 {
		return CarrierUnknown
	}
	domain := strings.ToLower(addr[at+1:])

	for suffix, carrier := range carrierDomains {
		if domain == suffix || strings.HasSuffix(domain, "."+suffix) {
			return carrier
		}
	}
	return CarrierUnknown
}

// The emoji private use area scanned by HasEmoji.
const (
	emojiRangeLo = 0xFE000
	emojiRangeHi = 0xFEFFF
)

// HasEmoji reports whether s contains any code point in the carrier emoji
// range. It is a cheap pre-scan that lets callers skip ConvertToImg on the
// common emoji-free message.
func HasEmoji(s string) bool {
	for _, r := range s {
		if r >= emojiRangeLo && r <= emojiRangeHi {
			return true
		}
	}
	return false
}

// imgPathPrefix is the relative asset directory referenced by the
// generated <img> tags; the exporter ships glyph images alongside the
// document.
const imgPathPrefix = "emoticons/"

// ConvertToImg replaces carrier emoji code points in html with <img>
// references, selecting the glyph table by the first sender address.
// Messages without emoji code points are returned unchanged, and an
// absent or unrecognized sender falls back to the docomo table.
func ConvertToImg(html string, from []string) string {
	if !HasEmoji(html) {
		return html
	}

	carrier := CarrierUnknown
	if len(from) > 0 {
		carrier = CarrierFromAddress(from[0])
	}
	table := glyphTable(carrier)

	var buf strings.Builder
	buf.Grow(len(html) + 512)
	for _, r := range html {
		if glyph, ok := table[r]; ok {
			buf.WriteString(`<img src="` + imgPathPrefix + glyph + `.gif" alt="` + glyph + `" />`)
		} else {
			buf.WriteRune(r)
		}
	}
	return buf.String()
}

// InlineNames replaces carrier emoji code points with :name: tokens from
// the carrier-neutral emoticon table, for terminal display where images
// cannot be shown. Code points without a known name pass through.
func InlineNames(s string) string {
	if !HasEmoji(s) {
		return s
	}

	table := tables()[tableGeneric]
	var buf strings.Builder
	buf.Grow(len(s) + 64)
	for _, r := range s {
		if name, ok := table[r]; ok {
			buf.WriteString(":" + name + ":")
		} else {
			buf.WriteRune(r)
		}
	}
	return buf.String()
}

const (
	tableDocomo   = "docomo"
	tableKDDI     = "kddi"
	tableSoftBank = "softbank"
	tableGeneric  = "generic"
)

// glyphTable returns the carrier's code-point table, defaulting to docomo.
func glyphTable(c Carrier) map[rune]string {
	all := tables()
	switch c {
	case CarrierSoftBank:
		return all[tableSoftBank]
	case CarrierKDDI:
		return all[tableKDDI]
	default:
		return all[tableDocomo]
	}
}

// tables lazily parses the embedded JSON assets. Entries that fail to
// parse are skipped; the substitution then simply leaves those code
// points alone.
var tables = sync.OnceValue(func() map[string]map[rune]string {
	parsed := make(map[string]map[rune]string, 4)
	for _, name := range []string{tableDocomo, tableKDDI, tableSoftBank, tableGeneric} {
		parsed[name] = loadTable(name)
	}
	return parsed
})

func loadTable(name string) map[rune]string {
	table := make(map[rune]string)

	raw, err := tableFS.ReadFile("data/" + name + ".json")
	if err != nil {
		return table
	}

	var entries map[string]string
	if err := json.Unmarshal(raw, &entries); err != nil {
		return table
	}

	for hex, glyph := range entries {
		cp, err := strconv.ParseInt(hex, 16, 32)
		if err != nil {
			continue
		}
		table[rune(cp)] = glyph
	}
	return table
}
