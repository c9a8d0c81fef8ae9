package email

import (
	"strings"
	"testing"
	"time"

	"github.com/nhle/mailview/internal/model"
)

func TestEnvelopeToMessage(t *testing.T) {
	env := Envelope{
		UID:         42,
		MessageID:   "<abc@example.com>",
		Subject:     "hello",
		From:        "Alice",
		FromAddress: "alice@example.com",
		To:          []string{"bob@example.com"},
		Date:        time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC),
		Flags:       []string{model.FlagSeen},
	}

	m := envelopeToMessage(env)

	if m.UID != 42 || m.Subject != "hello" || m.FromAddress != "alice@example.com" {
		t.Errorf("envelope fields lost: %+v", m)
	}
	if !m.Seen() {
		t.Error("flags not carried over")
	}
	if m.FetchedAt.IsZero() {
		t.Error("fetched-at should be stamped")
	}
}

func TestRenderMessagePlainText(t *testing.T) {
	m := model.Message{TextBody: "hello\nworld"}
	renderMessage(&m)

	if !strings.Contains(m.RenderedHTML, `<pre class="mailview">`) {
		t.Errorf("plain text not converted to HTML: %q", m.RenderedHTML)
	}
	if !strings.Contains(m.RenderedHTML, "hello<br />world") {
		t.Errorf("line break not converted: %q", m.RenderedHTML)
	}
	if m.RenderedText != "hello\nworld" {
		t.Errorf("text rendering should pass plain bodies through: %q", m.RenderedText)
	}
}

func TestRenderMessageHTMLOnly(t *testing.T) {
	m := model.Message{HTMLBody: "<p>first</p><p>second</p>"}
	renderMessage(&m)

	if m.RenderedHTML != m.HTMLBody {
		t.Errorf("HTML body should be kept as-is: %q", m.RenderedHTML)
	}
	if !strings.Contains(m.RenderedText, "first") || !strings.Contains(m.RenderedText, "second") {
		t.Errorf("HTML not reduced to text: %q", m.RenderedText)
	}
	if strings.Contains(m.RenderedText, "<p>") {
		t.Errorf("tags left in text rendering: %q", m.RenderedText)
	}
}

func TestRenderMessageCarrierEmoji(t *testing.T) {
	m := model.Message{
		TextBody:    "weather \U000FE000 today",
		FromAddress: "friend@docomo.ne.jp",
	}
	renderMessage(&m)

	if !strings.Contains(m.RenderedHTML, `<img src="emoticons/`) {
		t.Errorf("carrier emoji not substituted: %q", m.RenderedHTML)
	}
	if strings.ContainsRune(m.RenderedHTML, '\U000FE000') {
		t.Error("raw emoji code point left in HTML rendering")
	}
}

func TestQuoteOriginal(t *testing.T) {
	parsed := &ParsedMessage{
		Envelope: Envelope{
			From: "Alice",
			Date: time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC),
		},
		TextBody: "line one\nline two",
	}

	got := quoteOriginal(parsed)

	if !strings.HasPrefix(got, "On Sat, 1 Mar 2025 at 09:30, Alice wrote:\n") {
		t.Errorf("attribution line wrong: %q", got)
	}
	if !strings.Contains(got, "> line one\n> line two\n") {
		t.Errorf("body not quoted: %q", got)
	}
}

func TestQuoteOriginalFallsBackToHTML(t *testing.T) {
	parsed := &ParsedMessage{
		Envelope: Envelope{From: "Bob", Date: time.Now()},
		HTMLBody: "<p>rich only</p>",
	}

	got := quoteOriginal(parsed)
	if !strings.Contains(got, "> rich only") {
		t.Errorf("HTML body not reduced for quoting: %q", got)
	}
}

func TestComposeMessage(t *testing.T) {
	raw, err := composeMessage(
		"me@example.com",
		[]string{"you@example.com", "them@example.org"},
		"Re: hi",
		"reply body",
		"abc@example.com",
	)
	if err != nil {
		t.Fatalf("composeMessage: %v", err)
	}

	msg := string(raw)
	for _, want := range []string{
		"From: me@example.com",
		"To: you@example.com, them@example.org",
		"Subject: Re: hi",
		"In-Reply-To: <abc@example.com>",
		"References: <abc@example.com>",
		"multipart/alternative",
		"text/plain",
		"text/html",
		"reply body",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("composed message missing %q", want)
		}
	}
}

func TestComposeMessageWithoutReference(t *testing.T) {
	raw, err := composeMessage(
		"me@example.com", []string{"you@example.com"}, "hi", "body", "",
	)
	if err != nil {
		t.Fatalf("composeMessage: %v", err)
	}
	if strings.Contains(string(raw), "In-Reply-To") {
		t.Error("new message should not carry In-Reply-To")
	}
}
