package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/bookywarm/wyrm/internal/models"
)

// SessionRepository implements [models.TokenStore] over a SQLite database.
type SessionRepository struct {
	db *sql.DB
}

var _ models.TokenStore = (*SessionRepository)(nil)

// NewSessionRepository creates a new [SessionRepository] with the given database connection
func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Get returns the stored credential, or an empty string when the slot is empty.
func (r *SessionRepository) Get() (string, error) {
	var token string
	err := r.db.QueryRow("SELECT value FROM sessions WHERE key = ?", models.SessionKey).Scan(&token)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to query session: %w", err)
	}
	return token, nil
}

// Set stores the credential, replacing any previous value.
func (r *SessionRepository) Set(token string) error {
	query := `
		INSERT INTO sessions (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`

	if _, err := r.db.Exec(query, models.SessionKey, token, time.Now()); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	return nil
}

// Clear removes the credential. Clearing an empty slot is not an error.
func (r *SessionRepository) Clear() error {
	if _, err := r.db.Exec("DELETE FROM sessions WHERE key = ?", models.SessionKey); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}
