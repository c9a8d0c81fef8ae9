package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/mailview/internal/app"
	"github.com/nhle/mailview/internal/credential"
	"github.com/nhle/mailview/internal/model"
	"github.com/nhle/mailview/internal/store"
)

// defaultDBPath returns the location of the local message cache,
// alongside the config file under ~/.config/mailview.
func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "mailview.db")
	}
	return filepath.Join(home, ".config", "mailview", "mailview.db")
}

func main() {
	cfgFlag := flag.String("config", "", "Path to config YAML (default: ~/.config/mailview/config.yaml)")
	dbFlag := flag.String("db", "", "Path to message cache database (default: ~/.config/mailview/mailview.db)")
	flag.Parse()

	cfgPath := *cfgFlag
	if cfgPath == "" {
		cfgPath = model.DefaultConfigPath()
	}

	cfg, err := model.LoadConfig(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	if flag.Arg(0) == "auth" {
		if err := runAuth(cfg); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
		return
	}

	dbPath := *dbFlag
	if dbPath == "" {
		dbPath = defaultDBPath()
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "creating data directory: %v\n", err)
		os.Exit(1)
	}

	s, err := store.NewSQLiteStore(dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "opening message cache: %v\n", err)
		os.Exit(1)
	}
	defer s.Close()

	p := tea.NewProgram(app.New(s, *cfg), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "tui error: %v\n", err)
		os.Exit(1)
	}
}

// runAuth prompts for the account password and stores it in the system
// keyring, where connectAccount later reads it.
func runAuth(cfg *model.AppConfig) error {
	username := cfg.Account.Username
	if username == "" {
		return fmt.Errorf("no account username configured; edit %s", model.DefaultConfigPath())
	}

	fmt.Printf("Password for %s: ", username)
	reader := bufio.NewReader(os.Stdin)
	password, err := reader.ReadString('\n')
	if err != nil {
		return fmt.Errorf("reading password: %w", err)
	}
	password = strings.TrimRight(password, "\r\n")
	if password == "" {
		return fmt.Errorf("empty password")
	}

	if err := credential.Set(credential.PasswordKey(username), password); err != nil {
		return err
	}

	fmt.Println("Password stored in system keyring.")
	return nil
}
