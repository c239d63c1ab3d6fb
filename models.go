package main

import "time"

// User represents a registered account. Users are immutable after
// registration; there is no update or delete route.
type User struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
}

// Entry is a single journal post owned by one user.
type Entry struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// PostedAt formats the entry timestamp for the rendered pages.
func (e Entry) PostedAt() string {
	return e.Timestamp.Local().Format("2006-01-02 @ 15:04")
}

// Identity is a resolved session: who the current request is acting as.
// Handlers must hold a non-nil Identity before touching the entry store.
type Identity struct {
	UserID   int64
	Username string
	SID      string
}
