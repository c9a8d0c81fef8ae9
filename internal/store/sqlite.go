package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/nhle/mailview/internal/model"
)

// SQLiteStore implements the Store interface using a local SQLite database.
type SQLiteStore struct {
	db *sqlx.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath,
// enables WAL mode, and runs any pending schema migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// runMigrations checks the current schema version and applies any
// outstanding migrations in order.
func (s *SQLiteStore) runMigrations() error {
	currentVersion := 0

	var tableCount int
	err := s.db.Get(
		&tableCount,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	)
	if err != nil {
		return fmt.Errorf("checking schema_version table: %w", err)
	}

	if tableCount > 0 {
		err = s.db.Get(&currentVersion, "SELECT COALESCE(MAX(version), 0) FROM schema_version")
		if err != nil {
			return fmt.Errorf("reading schema version: %w", err)
		}
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if _, err := s.db.Exec(m.sql); err != nil {
			return fmt.Errorf("applying migration v%d: %w", m.version, err)
		}
	}

	return nil
}

// UpsertMessages inserts or replaces a batch of cached messages, keyed by
// IMAP UID. Messages without a local ID get a fresh UUID. Envelope-only
// rows (empty bodies) from the poller update envelope fields without
// discarding bodies and renderings already cached for the same UID.
func (s *SQLiteStore) UpsertMessages(ctx context.Context, msgs []model.Message) error {
	if len(msgs) == 0 {
		return nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	const query = `
		INSERT INTO messages (
			id, uid, message_id, subject,
			from_name, from_address, to_addrs,
			date, flags,
			text_body, html_body, rendered_html, rendered_text,
			fetched_at
		) VALUES (
			?, ?, ?, ?,
			?, ?, ?,
			?, ?,
			?, ?, ?, ?,
			?
		)
		ON CONFLICT(uid) DO UPDATE SET
			message_id = excluded.message_id,
			subject = excluded.subject,
			from_name = excluded.from_name,
			from_address = excluded.from_address,
			to_addrs = excluded.to_addrs,
			date = excluded.date,
			flags = excluded.flags,
			text_body = CASE WHEN excluded.text_body != ''
				THEN excluded.text_body ELSE messages.text_body END,
			html_body = CASE WHEN excluded.html_body != ''
				THEN excluded.html_body ELSE messages.html_body END,
			rendered_html = CASE WHEN excluded.rendered_html != ''
				THEN excluded.rendered_html ELSE messages.rendered_html END,
			rendered_text = CASE WHEN excluded.rendered_text != ''
				THEN excluded.rendered_text ELSE messages.rendered_text END,
			fetched_at = excluded.fetched_at`

	stmt, err := tx.PreparexContext(ctx, query)
	if err != nil {
		return fmt.Errorf("preparing upsert statement: %w", err)
	}
	defer stmt.Close()

	for _, m := range msgs {
		if m.ID == "" {
			m.ID = uuid.New().String()
		}

		to, err := json.Marshal(m.To)
		if err != nil {
			return fmt.Errorf("marshaling recipients for message %d: %w", m.UID, err)
		}
		flags, err := json.Marshal(m.Flags)
		if err != nil {
			return fmt.Errorf("marshaling flags for message %d: %w", m.UID, err)
		}

		_, err = stmt.ExecContext(ctx,
			m.ID, m.UID, m.MessageID, m.Subject,
			m.From, m.FromAddress, string(to),
			m.Date.UTC(), string(flags),
			m.TextBody, m.HTMLBody, m.RenderedHTML, m.RenderedText,
			m.FetchedAt.UTC(),
		)
		if err != nil {
			return fmt.Errorf("upserting message %d: %w", m.UID, err)
		}
	}

	return tx.Commit()
}

// GetMessages retrieves cached messages matching the provided filter.
func (s *SQLiteStore) GetMessages(
	ctx context.Context,
	opts MessageFilter,
) ([]model.Message, error) {
	var conditions []string
	var args []interface{}

	if opts.Unread != nil {
		if *opts.Unread {
			conditions = append(conditions, "flags NOT LIKE ?")
		} else {
			conditions = append(conditions, "flags LIKE ?")
		}
		args = append(args, "%"+model.FlagSeen+"%")
	}
	if opts.Flagged != nil {
		if *opts.Flagged {
			conditions = append(conditions, "flags LIKE ?")
		} else {
			conditions = append(conditions, "flags NOT LIKE ?")
		}
		args = append(args, "%"+model.FlagFlagged+"%")
	}
	if opts.Query != nil && *opts.Query != "" {
		conditions = append(conditions, "(subject LIKE ? OR from_name LIKE ? OR from_address LIKE ?)")
		q := "%" + *opts.Query + "%"
		args = append(args, q, q, q)
	}

	query := "SELECT * FROM messages"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	sortBy := "date"
	if opts.SortBy != "" {
		allowedSorts := map[string]bool{
			"date":       true,
			"subject":    true,
			"from_name":  true,
			"fetched_at": true,
		}
		if allowedSorts[opts.SortBy] {
			sortBy = opts.SortBy
		}
	}

	direction := "ASC"
	if opts.SortDesc {
		direction = "DESC"
	}
	query += fmt.Sprintf(" ORDER BY %s %s", sortBy, direction)

	if opts.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", opts.Limit)
	}
	if opts.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", opts.Offset)
	}

	rows, err := s.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying messages: %w", err)
	}
	defer rows.Close()

	var msgs []model.Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}

	return msgs, rows.Err()
}

// GetMessageByUID retrieves a single cached message by IMAP UID.
// A missing message is reported as an error wrapping sql.ErrNoRows.
func (s *SQLiteStore) GetMessageByUID(
	ctx context.Context,
	uid uint32,
) (*model.Message, error) {
	rows, err := s.db.QueryxContext(ctx, "SELECT * FROM messages WHERE uid = ?", uid)
	if err != nil {
		return nil, fmt.Errorf("querying message %d: %w", uid, err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("getting message %d: %w", uid, err)
		}
		return nil, fmt.Errorf("getting message %d: %w", uid, sql.ErrNoRows)
	}

	m, err := scanMessage(rows)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// SetMessageFlags replaces the cached flag set of a message.
func (s *SQLiteStore) SetMessageFlags(
	ctx context.Context,
	uid uint32,
	flags []string,
) error {
	encoded, err := json.Marshal(flags)
	if err != nil {
		return fmt.Errorf("marshaling flags: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		"UPDATE messages SET flags = ? WHERE uid = ?", string(encoded), uid,
	)
	if err != nil {
		return fmt.Errorf("updating flags for message %d: %w", uid, err)
	}
	return nil
}

// DeleteMessage removes a cached message by UID.
func (s *SQLiteStore) DeleteMessage(ctx context.Context, uid uint32) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM messages WHERE uid = ?", uid)
	if err != nil {
		return fmt.Errorf("deleting message %d: %w", uid, err)
	}
	return nil
}

// IsNotFound reports whether err indicates a row that does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// scanMessage scans a message row from a sqlx.Rows result set.
func scanMessage(rows *sqlx.Rows) (model.Message, error) {
	var (
		m         model.Message
		to        string
		flags     string
		date      time.Time
		fetchedAt time.Time
	)

	err := rows.Scan(
		&m.ID, &m.UID, &m.MessageID, &m.Subject,
		&m.From, &m.FromAddress, &to,
		&date, &flags,
		&m.TextBody, &m.HTMLBody, &m.RenderedHTML, &m.RenderedText,
		&fetchedAt,
	)
	if err != nil {
		return model.Message{}, fmt.Errorf("scanning message row: %w", err)
	}

	m.Date = date
	m.FetchedAt = fetchedAt

	if to != "" {
		if err := json.Unmarshal([]byte(to), &m.To); err != nil {
			return model.Message{}, fmt.Errorf("unmarshaling recipients: %w", err)
		}
	}
	if flags != "" {
		if err := json.Unmarshal([]byte(flags), &m.Flags); err != nil {
			return model.Message{}, fmt.Errorf("unmarshaling flags: %w", err)
		}
	}

	return m, nil
}
