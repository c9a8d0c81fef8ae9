package model

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.Account.IMAPPort != "993" || cfg.Account.Mailbox != "INBOX" {
		t.Errorf("account defaults wrong: %+v", cfg.Account)
	}
	if !cfg.Display.FixedWidthFont {
		t.Error("fixed width font should default to true")
	}
	if cfg.Display.RecipientFormat != RecipientNameAndAddress {
		t.Errorf("recipient format default = %q", cfg.Display.RecipientFormat)
	}
	if cfg.Display.PollIntervalSec != 120 {
		t.Errorf("poll interval default = %d", cfg.Display.PollIntervalSec)
	}
}

func TestLoadConfigReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
account:
  imap_host: mail.example.com
  username: me@example.com
display:
  fixed_width_font: false
  recipient_format: address_only
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.Account.IMAPHost != "mail.example.com" {
		t.Errorf("imap host = %q", cfg.Account.IMAPHost)
	}
	if cfg.Account.IMAPPort != "993" {
		t.Errorf("missing keys should keep defaults, imap port = %q", cfg.Account.IMAPPort)
	}
	if cfg.Display.FixedWidthFont {
		t.Error("fixed width font should be false")
	}
	if cfg.Display.RecipientFormat != RecipientAddressOnly {
		t.Errorf("recipient format = %q", cfg.Display.RecipientFormat)
	}
}

func TestLoadConfigUnknownRecipientFormatFallsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "display:\n  recipient_format: something_else\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Display.RecipientFormat != RecipientNameAndAddress {
		t.Errorf("unknown format should fall back, got %q", cfg.Display.RecipientFormat)
	}
}

func TestSaveConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")

	in := defaultAppConfig()
	in.Account.IMAPHost = "imap.example.org"
	in.Account.Username = "user@example.org"

	if err := SaveConfig(path, in); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}

	out, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if out.Account.IMAPHost != in.Account.IMAPHost || out.Account.Username != in.Account.Username {
		t.Errorf("round trip lost account settings: %+v", out.Account)
	}
}

func TestMessageFlags(t *testing.T) {
	m := &Message{Flags: []string{FlagSeen, FlagFlagged}}

	if !m.Seen() || !m.Flagged() {
		t.Error("flag helpers should report present flags")
	}
	if (&Message{}).Seen() {
		t.Error("empty flag set reported as seen")
	}
}
