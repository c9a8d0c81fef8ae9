package mime

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func newAlternative() (*Multipart, *Part, *Part) {
	m := NewMultipart("alternative")
	plain := NewTextPart("text/plain", "utf-8", "hello plain")
	html := NewTextPart("text/html", "utf-8", "<p>hello html</p>")
	m.AddPart(plain)
	m.AddPart(html)
	return m, plain, html
}

func TestMultipartPartManagement(t *testing.T) {
	m, plain, html := newAlternative()

	if m.Len() != 2 {
		t.Fatalf("Len = %d, want 2", m.Len())
	}
	if m.Part(0) != plain || m.Part(1) != html {
		t.Error("part order wrong")
	}

	extra := NewTextPart("text/plain", "utf-8", "first")
	m.InsertPart(0, extra)
	if m.Part(0) != extra || m.Len() != 3 {
		t.Error("InsertPart did not prepend")
	}

	if !m.RemovePart(extra) {
		t.Error("RemovePart failed to find the part")
	}
	if m.RemovePart(extra) {
		t.Error("RemovePart found an already removed part")
	}
	if m.Len() != 2 {
		t.Errorf("Len after removal = %d, want 2", m.Len())
	}
}

func TestSetEncodingRejectsNon7bit8bit(t *testing.T) {
	m, _, _ := newAlternative()

	for _, enc := range []string{"base64", "quoted-printable", "binary", ""} {
		err := m.SetEncoding(enc)
		if !errors.Is(err, ErrIncompatibleEncoding) {
			t.Errorf("SetEncoding(%q) = %v, want ErrIncompatibleEncoding", enc, err)
		}
	}
}

func TestSetEncodingAppliesPerContentType(t *testing.T) {
	m, plain, html := newAlternative()

	if err := m.SetEncoding(Encoding7Bit); err != nil {
		t.Fatalf("SetEncoding: %v", err)
	}

	if got := plain.Header.Get("Content-Transfer-Encoding"); got != Encoding7Bit {
		t.Errorf("plain part encoding = %q, want 7bit", got)
	}
	// HTML parts are always 8bit regardless of the requested encoding.
	if got := html.Header.Get("Content-Transfer-Encoding"); got != Encoding8Bit {
		t.Errorf("html part encoding = %q, want 8bit", got)
	}
}

func TestSetEncodingCaseInsensitive(t *testing.T) {
	m, _, _ := newAlternative()
	if err := m.SetEncoding("8BIT"); err != nil {
		t.Errorf("uppercase encoding rejected: %v", err)
	}
}

func TestSetCharsetFirstPartOnly(t *testing.T) {
	m, plain, html := newAlternative()

	if err := m.SetCharset("iso-2022-jp"); err != nil {
		t.Fatalf("SetCharset: %v", err)
	}

	if plain.Body().(*TextBody).Charset != "iso-2022-jp" {
		t.Error("first part charset not updated")
	}
	if html.Body().(*TextBody).Charset != "utf-8" {
		t.Error("second part charset must be untouched")
	}
	if !strings.Contains(plain.Header.Get("Content-Type"), "iso-2022-jp") {
		t.Errorf("first part header lacks charset: %q", plain.Header.Get("Content-Type"))
	}
}

func TestSetCharsetEmptyContainer(t *testing.T) {
	m := NewMultipart("mixed")
	if err := m.SetCharset("utf-8"); err != nil {
		t.Errorf("empty container SetCharset = %v, want nil", err)
	}
}

func TestParentLinks(t *testing.T) {
	m, plain, _ := newAlternative()

	root := NewMultipartPart(m)
	if m.Parent() != root {
		t.Error("container parent not set by NewMultipartPart")
	}

	m.RemovePart(plain)
	if plain.parent != nil {
		t.Error("removed part still has a parent")
	}
}

func TestEncodeSerializesTree(t *testing.T) {
	m, _, _ := newAlternative()
	root := NewMultipartPart(m)

	var buf bytes.Buffer
	if err := root.Encode(&buf); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"multipart/alternative",
		"text/plain",
		"text/html",
		"hello plain",
		"hello html",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("serialized message missing %q:\n%s", want, out)
		}
	}
}
