package app

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/mailview/internal/model"
	"github.com/nhle/mailview/tests/testutil"
)

func keyRune(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestGlobalKeysIgnoredWhileSearching(t *testing.T) {
	s := testutil.NewTestStore(t)
	m := New(s, model.AppConfig{})

	upd, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	m = upd.(Model)

	upd, _ = m.Update(keyRune('/'))
	m = upd.(Model)
	if !m.messageList.Searching() {
		t.Fatal("slash should focus the list search input")
	}

	upd, cmd := m.Update(keyRune('q'))
	m = upd.(Model)
	if m.currentView != ViewList {
		t.Errorf("q changed the view while searching: %v", m.currentView)
	}
	if !m.messageList.Searching() {
		t.Error("q closed the search input")
	}
	if cmd != nil {
		if _, quit := cmd().(tea.QuitMsg); quit {
			t.Error("q quit the app while searching")
		}
	}

	upd, _ = m.Update(keyRune('?'))
	m = upd.(Model)
	if m.currentView == ViewHelp {
		t.Error("? opened help while searching")
	}
}

func TestQuitFromListView(t *testing.T) {
	s := testutil.NewTestStore(t)
	m := New(s, model.AppConfig{})

	upd, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	m = upd.(Model)

	_, cmd := m.Update(keyRune('q'))
	if cmd == nil {
		t.Fatal("q in the list view should quit")
	}
	if _, quit := cmd().(tea.QuitMsg); !quit {
		t.Error("q in the list view should produce a quit command")
	}
}
