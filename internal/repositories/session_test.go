package repositories

import (
	"database/sql"
	"testing"

	"github.com/bookywarm/wyrm/internal/shared"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}
	return db
}

func TestSessionRepository(t *testing.T) {
	t.Run("Get On Empty Slot", func(t *testing.T) {
		repo := NewSessionRepository(newTestDB(t))

		token, err := repo.Get()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if token != "" {
			t.Errorf("expected empty token, got %q", token)
		}
	})

	t.Run("Set Then Get", func(t *testing.T) {
		repo := NewSessionRepository(newTestDB(t))

		if err := repo.Set("T1"); err != nil {
			t.Fatalf("failed to set token: %v", err)
		}

		token, err := repo.Get()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if token != "T1" {
			t.Errorf("expected T1, got %q", token)
		}
	})

	t.Run("Set Is Last Write Wins", func(t *testing.T) {
		repo := NewSessionRepository(newTestDB(t))

		if err := repo.Set("T1"); err != nil {
			t.Fatalf("failed to set token: %v", err)
		}
		if err := repo.Set("T2"); err != nil {
			t.Fatalf("failed to overwrite token: %v", err)
		}

		token, _ := repo.Get()
		if token != "T2" {
			t.Errorf("expected T2, got %q", token)
		}

		var count int
		if err := repoCount(repo, &count); err != nil {
			t.Fatalf("failed to count rows: %v", err)
		}
		if count != 1 {
			t.Errorf("expected single slot, got %d rows", count)
		}
	})

	t.Run("Clear", func(t *testing.T) {
		repo := NewSessionRepository(newTestDB(t))

		if err := repo.Set("T1"); err != nil {
			t.Fatalf("failed to set token: %v", err)
		}
		if err := repo.Clear(); err != nil {
			t.Fatalf("failed to clear: %v", err)
		}

		token, _ := repo.Get()
		if token != "" {
			t.Errorf("expected empty token after clear, got %q", token)
		}

		// clearing an empty slot is fine
		if err := repo.Clear(); err != nil {
			t.Errorf("clearing empty slot should not fail: %v", err)
		}
	})

	t.Run("Survives Reconnection", func(t *testing.T) {
		db := newTestDB(t)
		repo := NewSessionRepository(db)

		if err := repo.Set("T1"); err != nil {
			t.Fatalf("failed to set token: %v", err)
		}

		// a second repository over the same database sees the token
		token, err := NewSessionRepository(db).Get()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if token != "T1" {
			t.Errorf("expected T1, got %q", token)
		}
	})
}

func repoCount(r *SessionRepository, out *int) error {
	return r.db.QueryRow("SELECT COUNT(*) FROM sessions").Scan(out)
}
