package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/nhle/mailview/internal/model"
)

// UpsertContact inserts a contact or updates its name if the address is
// already known. Contacts without a local ID get a fresh UUID.
func (s *SQLiteStore) UpsertContact(ctx context.Context, c model.Contact) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.LastContacted.IsZero() {
		c.LastContacted = time.Now()
	}

	const query = `
		INSERT INTO contacts (id, name, address, times_contacted, last_contacted)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(address) DO UPDATE SET
			name = excluded.name,
			last_contacted = excluded.last_contacted`

	_, err := s.db.ExecContext(ctx, query,
		c.ID, c.Name, c.Address, c.TimesContacted, c.LastContacted.UTC(),
	)
	if err != nil {
		return fmt.Errorf("upserting contact %s: %w", c.Address, err)
	}
	return nil
}

// SearchContacts returns contacts whose address or name starts with prefix,
// ranked by how often they have been contacted. The match is
// case-insensitive.
func (s *SQLiteStore) SearchContacts(
	ctx context.Context,
	prefix string,
	limit int,
) ([]model.Contact, error) {
	if limit <= 0 {
		limit = 10
	}

	const query = `
		SELECT id, name, address, times_contacted, last_contacted
		FROM contacts
		WHERE address LIKE ? OR name LIKE ?
		ORDER BY times_contacted DESC, last_contacted DESC
		LIMIT ?`

	p := prefix + "%"
	rows, err := s.db.QueryxContext(ctx, query, p, p, limit)
	if err != nil {
		return nil, fmt.Errorf("searching contacts: %w", err)
	}
	defer rows.Close()

	return scanContacts(rows)
}

// RecordContact notes that a message was sent to the given address,
// creating the contact if needed and bumping its usage counter.
func (s *SQLiteStore) RecordContact(ctx context.Context, name, address string) error {
	if address == "" {
		return nil
	}

	const query = `
		INSERT INTO contacts (id, name, address, times_contacted, last_contacted)
		VALUES (?, ?, ?, 1, ?)
		ON CONFLICT(address) DO UPDATE SET
			name = CASE WHEN excluded.name != '' THEN excluded.name ELSE contacts.name END,
			times_contacted = contacts.times_contacted + 1,
			last_contacted = excluded.last_contacted`

	_, err := s.db.ExecContext(ctx, query,
		uuid.New().String(), name, address, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("recording contact %s: %w", address, err)
	}
	return nil
}

// GetContacts retrieves the whole address book ordered by address.
func (s *SQLiteStore) GetContacts(ctx context.Context) ([]model.Contact, error) {
	const query = `
		SELECT id, name, address, times_contacted, last_contacted
		FROM contacts
		ORDER BY address ASC`

	rows, err := s.db.QueryxContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying contacts: %w", err)
	}
	defer rows.Close()

	return scanContacts(rows)
}

func scanContacts(rows *sqlx.Rows) ([]model.Contact, error) {
	var contacts []model.Contact
	for rows.Next() {
		var (
			c             model.Contact
			lastContacted time.Time
		)
		err := rows.Scan(&c.ID, &c.Name, &c.Address, &c.TimesContacted, &lastContacted)
		if err != nil {
			return nil, fmt.Errorf("scanning contact row: %w", err)
		}
		c.LastContacted = lastContacted
		contacts = append(contacts, c)
	}
	return contacts, rows.Err()
}
