package store_test

import (
	"context"
	"testing"

	"github.com/nhle/mailview/internal/model"
	"github.com/nhle/mailview/tests/testutil"
)

func TestRecordContactCreatesAndIncrements(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	if err := s.RecordContact(ctx, "Bob", "bob@example.com"); err != nil {
		t.Fatalf("RecordContact: %v", err)
	}
	if err := s.RecordContact(ctx, "", "bob@example.com"); err != nil {
		t.Fatalf("RecordContact (second): %v", err)
	}

	contacts, err := s.GetContacts(ctx)
	if err != nil {
		t.Fatalf("GetContacts: %v", err)
	}
	if len(contacts) != 1 {
		t.Fatalf("got %d contacts, want 1", len(contacts))
	}
	if contacts[0].TimesContacted != 2 {
		t.Errorf("times contacted = %d, want 2", contacts[0].TimesContacted)
	}
	if contacts[0].Name != "Bob" {
		t.Errorf("empty name on re-record should not clear existing name, got %q", contacts[0].Name)
	}
}

func TestRecordContactIgnoresEmptyAddress(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	if err := s.RecordContact(ctx, "Nobody", ""); err != nil {
		t.Fatalf("RecordContact: %v", err)
	}

	contacts, err := s.GetContacts(ctx)
	if err != nil {
		t.Fatalf("GetContacts: %v", err)
	}
	if len(contacts) != 0 {
		t.Errorf("empty address should not be stored: %v", contacts)
	}
}

func TestSearchContactsRanksByUsage(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := s.RecordContact(ctx, "Alice", "alice@example.com"); err != nil {
			t.Fatalf("RecordContact: %v", err)
		}
	}
	if err := s.RecordContact(ctx, "Albert", "albert@example.org"); err != nil {
		t.Fatalf("RecordContact: %v", err)
	}
	if err := s.RecordContact(ctx, "Bob", "bob@example.com"); err != nil {
		t.Fatalf("RecordContact: %v", err)
	}

	got, err := s.SearchContacts(ctx, "al", 10)
	if err != nil {
		t.Fatalf("SearchContacts: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d matches, want 2", len(got))
	}
	if got[0].Address != "alice@example.com" {
		t.Errorf("most contacted should rank first, got %q", got[0].Address)
	}
}

func TestSearchContactsMatchesName(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	if err := s.RecordContact(ctx, "Zoe Smith", "zs@corp.example"); err != nil {
		t.Fatalf("RecordContact: %v", err)
	}

	got, err := s.SearchContacts(ctx, "Zoe", 5)
	if err != nil {
		t.Fatalf("SearchContacts: %v", err)
	}
	if len(got) != 1 || got[0].Address != "zs@corp.example" {
		t.Errorf("name prefix search returned %v", got)
	}
}

func TestUpsertContactUpdatesName(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	err := s.UpsertContact(ctx, model.Contact{Name: "C", Address: "c@example.com"})
	if err != nil {
		t.Fatalf("UpsertContact: %v", err)
	}
	err = s.UpsertContact(ctx, model.Contact{Name: "Carol", Address: "c@example.com"})
	if err != nil {
		t.Fatalf("UpsertContact (second): %v", err)
	}

	contacts, err := s.GetContacts(ctx)
	if err != nil {
		t.Fatalf("GetContacts: %v", err)
	}
	if len(contacts) != 1 || contacts[0].Name != "Carol" {
		t.Errorf("upsert did not update name: %v", contacts)
	}
}
