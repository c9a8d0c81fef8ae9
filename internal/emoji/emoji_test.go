package emoji

import (
	"strings"
	"testing"
)

func TestCarrierFromAddress(t *testing.T) {
	cases := []struct {
		addr string
		want Carrier
	}{
		{"taro@docomo.ne.jp", CarrierDocomo},
		{"hanako@ezweb.ne.jp", CarrierKDDI},
		{"jiro@ido.ne.jp", CarrierKDDI},
		{"yuki@softbank.ne.jp", CarrierSoftBank},
		{"kei@i.softbank.jp", CarrierSoftBank},
		{"old@vodafone.ne.jp", CarrierSoftBank},
		{"kid@disney.ne.jp", CarrierSoftBank},
		{"sub@mail.docomo.ne.jp", CarrierDocomo},
		{"someone@gmail.com", CarrierUnknown},
		{"not-an-address", CarrierUnknown},
		{"trailing@", CarrierUnknown},
		{"", CarrierUnknown},
	}

	for _, tc := range cases {
		if got := CarrierFromAddress(tc.addr); got != tc.want {
			t.Errorf("CarrierFromAddress(%q) = %v, want %v", tc.addr, got, tc.want)
		}
	}
}

func TestHasEmoji(t *testing.T) {
	if HasEmoji("plain ascii text") {
		t.Error("ascii text reported as containing emoji")
	}
	if HasEmoji("日本語のテキスト") {
		t.Error("ordinary Japanese text reported as containing emoji")
	}
	if !HasEmoji("weather: " + string(rune(0xFE000))) {
		t.Error("carrier code point not detected")
	}
}

func TestConvertToImgDocomo(t *testing.T) {
	in := "sun " + string(rune(0xFE000))
	out := ConvertToImg(in, []string{"taro@docomo.ne.jp"})

	if !strings.Contains(out, `<img src="emoticons/E63E.gif" alt="E63E" />`) {
		t.Errorf("docomo glyph not substituted: %q", out)
	}
	if !strings.HasPrefix(out, "sun ") {
		t.Errorf("surrounding text altered: %q", out)
	}
}

func TestConvertToImgPerCarrier(t *testing.T) {
	in := string(rune(0xFE000))

	kddi := ConvertToImg(in, []string{"a@ezweb.ne.jp"})
	if !strings.Contains(kddi, "E92C") {
		t.Errorf("kddi table not used: %q", kddi)
	}

	softbank := ConvertToImg(in, []string{"a@softbank.ne.jp"})
	if !strings.Contains(softbank, "E04A") {
		t.Errorf("softbank table not used: %q", softbank)
	}
}

func TestConvertToImgUnknownSenderFallsBack(t *testing.T) {
	in := string(rune(0xFE000))

	noSender := ConvertToImg(in, nil)
	unknown := ConvertToImg(in, []string{"a@gmail.com"})

	for _, out := range []string{noSender, unknown} {
		if !strings.Contains(out, "E63E") {
			t.Errorf("fallback should use the docomo table: %q", out)
		}
	}
}

func TestConvertToImgNoEmojiShortCircuits(t *testing.T) {
	in := "no emoji at all"
	if out := ConvertToImg(in, []string{"taro@docomo.ne.jp"}); out != in {
		t.Errorf("emoji-free text must be returned unchanged, got %q", out)
	}
}

func TestConvertToImgUnmappedCodePointPassesThrough(t *testing.T) {
	// In range for the pre-scan but absent from the docomo table.
	in := string(rune(0xFE000)) + string(rune(0xFEFFF))
	out := ConvertToImg(in, nil)

	if !strings.ContainsRune(out, rune(0xFEFFF)) {
		t.Errorf("unmapped code point dropped: %q", out)
	}
}

func TestInlineNames(t *testing.T) {
	in := "weather " + string(rune(0xFE000))
	out := InlineNames(in)

	if !strings.Contains(out, ":sun:") {
		t.Errorf("generic name not substituted: %q", out)
	}

	plain := "nothing here"
	if InlineNames(plain) != plain {
		t.Error("emoji-free text must pass through InlineNames unchanged")
	}
}
