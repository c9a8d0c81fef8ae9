package model

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// RecipientFormat controls how a completed recipient is rendered in the
// compose view.
type RecipientFormat string

const (
	// RecipientNameAndAddress renders "Name <addr>" when a display name
	// is known.
	RecipientNameAndAddress RecipientFormat = "name_and_address"

	// RecipientAddressOnly always renders the bare address.
	RecipientAddressOnly RecipientFormat = "address_only"
)

// AccountConfig holds the mail server settings for one account.
type AccountConfig struct {
	// Name is the user-defined label for this account.
	Name string `mapstructure:"name" yaml:"name"`

	// IMAPHost and IMAPPort locate the IMAP server.
	IMAPHost string `mapstructure:"imap_host" yaml:"imap_host"`
	IMAPPort string `mapstructure:"imap_port" yaml:"imap_port"`

	// SMTPHost and SMTPPort locate the submission server for replies.
	SMTPHost string `mapstructure:"smtp_host" yaml:"smtp_host"`
	SMTPPort string `mapstructure:"smtp_port" yaml:"smtp_port"`

	// Username authenticates against both servers; the password lives in
	// the system keyring, never in this file.
	Username string `mapstructure:"username" yaml:"username"`

	// TLS selects implicit TLS; when false, STARTTLS is used.
	TLS bool `mapstructure:"tls" yaml:"tls"`

	// Mailbox is the folder to poll. Defaults to INBOX.
	Mailbox string `mapstructure:"mailbox" yaml:"mailbox"`
}

// DisplayConfig holds rendering preferences.
type DisplayConfig struct {
	Theme string `mapstructure:"theme" yaml:"theme"`

	// FixedWidthFont selects monospace for exported HTML previews.
	FixedWidthFont bool `mapstructure:"fixed_width_font" yaml:"fixed_width_font"`

	// RecipientFormat controls completed-recipient rendering.
	RecipientFormat RecipientFormat `mapstructure:"recipient_format" yaml:"recipient_format"`

	// PollIntervalSec is how often (in seconds) to check for new mail.
	PollIntervalSec int `mapstructure:"poll_interval_sec" yaml:"poll_interval_sec"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Account AccountConfig `mapstructure:"account" yaml:"account"`
	Display DisplayConfig `mapstructure:"display" yaml:"display"`
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/mailview/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "mailview", "config.yaml")
}

// defaultAppConfig returns a sensible default configuration.
func defaultAppConfig() *AppConfig {
	return &AppConfig{
		Account: AccountConfig{
			IMAPPort: "993",
			SMTPPort: "587",
			TLS:      true,
			Mailbox:  "INBOX",
		},
		Display: DisplayConfig{
			Theme:           "default",
			FixedWidthFont:  true,
			RecipientFormat: RecipientNameAndAddress,
			PollIntervalSec: 120,
		},
	}
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// If the file does not exist, it returns a default configuration.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	// Set defaults so missing keys resolve to sensible values.
	v.SetDefault("account.imap_port", "993")
	v.SetDefault("account.smtp_port", "587")
	v.SetDefault("account.tls", true)
	v.SetDefault("account.mailbox", "INBOX")
	v.SetDefault("display.theme", "default")
	v.SetDefault("display.fixed_width_font", true)
	v.SetDefault("display.recipient_format", string(RecipientNameAndAddress))
	v.SetDefault("display.poll_interval_sec", 120)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(*os.PathError); ok {
			return defaultAppConfig(), nil
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return defaultAppConfig(), nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := defaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	// Anything but the explicit address-only value means the default.
	if cfg.Display.RecipientFormat != RecipientAddressOnly {
		cfg.Display.RecipientFormat = RecipientNameAndAddress
	}

	return cfg, nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("account", cfg.Account)
	v.Set("display", cfg.Display)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
