package main

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/mattn/go-sqlite3"
	"golang.org/x/crypto/bcrypt"
)

// timeLayout is a fixed-width ISO-8601 form so the TEXT column sorts
// chronologically under ORDER BY.
const timeLayout = "2006-01-02T15:04:05.000Z07:00"

// CredentialStore persists username/password-hash pairs and enforces
// username uniqueness. Plaintext passwords never leave this boundary.
type CredentialStore interface {
	// Register creates a new user and returns its id.
	Register(ctx context.Context, username, password string) (int64, error)
	// Verify checks credentials and returns the matching user id.
	Verify(ctx context.Context, username, password string) (int64, error)
}

// EntryStore persists journal entries. Every query and mutation is filtered
// by the owner id; callers supply the id of a resolved Identity, never a
// client-supplied value.
type EntryStore interface {
	Create(ctx context.Context, userID int64, content string) (*Entry, error)
	ListByUser(ctx context.Context, userID int64) ([]Entry, error)
	GetByID(ctx context.Context, id, userID int64) (*Entry, error)
	Update(ctx context.Context, id, userID int64, content string) error
	Delete(ctx context.Context, id, userID int64) error
}

type sqliteCredentials struct {
	db *sql.DB
}

func newCredentialStore(db *sql.DB) CredentialStore {
	return &sqliteCredentials{db: db}
}

func (s *sqliteCredentials) Register(ctx context.Context, username, password string) (int64, error) {
	if username == "" {
		return 0, invalidInputErr("You have to enter a username")
	}
	if password == "" {
		return 0, invalidInputErr("You have to enter a password")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return 0, storeErr("hashing password failed", err)
	}

	res, err := s.db.ExecContext(ctx,
		"INSERT INTO users (username, password_hash, created_at) VALUES (?, ?, ?)",
		username, string(hash), time.Now().UTC().Format(timeLayout))
	if err != nil {
		if isUniqueConstraintErr(err) {
			return 0, conflictErr("The username is already taken")
		}
		return 0, storeErr("saving user failed", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, storeErr("saving user failed", err)
	}
	return id, nil
}

func (s *sqliteCredentials) Verify(ctx context.Context, username, password string) (int64, error) {
	var u User
	err := s.db.QueryRowContext(ctx,
		"SELECT id, username, password_hash FROM users WHERE username = ?", username).
		Scan(&u.ID, &u.Username, &u.PasswordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, unauthorizedErr("Invalid username")
	}
	if err != nil {
		return 0, storeErr("looking up user failed", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return 0, unauthorizedErr("Invalid password")
	}
	return u.ID, nil
}

type sqliteEntries struct {
	db *sql.DB
}

func newEntryStore(db *sql.DB) EntryStore {
	return &sqliteEntries{db: db}
}

func (s *sqliteEntries) Create(ctx context.Context, userID int64, content string) (*Entry, error) {
	if content == "" {
		return nil, invalidInputErr("Entry content required")
	}

	now := time.Now().UTC().Truncate(time.Millisecond)
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO entries (user_id, content, timestamp) VALUES (?, ?, ?)",
		userID, content, now.Format(timeLayout))
	if err != nil {
		return nil, storeErr("saving entry failed", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, storeErr("saving entry failed", err)
	}
	return &Entry{ID: id, UserID: userID, Content: content, Timestamp: now}, nil
}

func (s *sqliteEntries) ListByUser(ctx context.Context, userID int64) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, user_id, content, timestamp FROM entries WHERE user_id = ? ORDER BY timestamp DESC, id DESC",
		userID)
	if err != nil {
		return nil, storeErr("fetching entries failed", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		e, err := scanEntry(rows.Scan)
		if err != nil {
			return nil, storeErr("fetching entries failed", err)
		}
		entries = append(entries, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("fetching entries failed", err)
	}
	return entries, nil
}

func (s *sqliteEntries) GetByID(ctx context.Context, id, userID int64) (*Entry, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, user_id, content, timestamp FROM entries WHERE id = ? AND user_id = ?",
		id, userID)
	e, err := scanEntry(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFoundErr("Entry not found or access denied")
	}
	if err != nil {
		return nil, storeErr("fetching entry failed", err)
	}
	return e, nil
}

func (s *sqliteEntries) Update(ctx context.Context, id, userID int64, content string) error {
	if content == "" {
		return invalidInputErr("Content cannot be empty")
	}

	res, err := s.db.ExecContext(ctx,
		"UPDATE entries SET content = ?, timestamp = ? WHERE id = ? AND user_id = ?",
		content, time.Now().UTC().Format(timeLayout), id, userID)
	if err != nil {
		return storeErr("updating entry failed", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return storeErr("updating entry failed", err)
	}
	if n == 0 {
		return notFoundErr("Entry not found or access denied")
	}
	return nil
}

func (s *sqliteEntries) Delete(ctx context.Context, id, userID int64) error {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM entries WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return storeErr("deleting entry failed", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return storeErr("deleting entry failed", err)
	}
	if n == 0 {
		return notFoundErr("Entry not found or access denied")
	}
	return nil
}

func scanEntry(scan func(dest ...interface{}) error) (*Entry, error) {
	var e Entry
	var ts string
	if err := scan(&e.ID, &e.UserID, &e.Content, &ts); err != nil {
		return nil, err
	}
	t, err := time.Parse(timeLayout, ts)
	if err != nil {
		return nil, err
	}
	e.Timestamp = t
	return &e, nil
}

func isUniqueConstraintErr(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
}
