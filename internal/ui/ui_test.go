package ui

import (
	"context"
	"io"
	"testing"

	"github.com/bookywarm/wyrm/internal/controller"
	"github.com/bookywarm/wyrm/internal/models"
	"github.com/bookywarm/wyrm/internal/shared"
	tu "github.com/bookywarm/wyrm/internal/testing"
)

func newTestModel(backend *tu.MockBackend, token string) *Model {
	session := controller.NewSession(backend, tu.NewMemoryTokenStore(token), shared.NewLogger(io.Discard))
	search := controller.NewSearch(backend)
	library := controller.NewLibrary(backend)
	return NewModel(context.Background(), session, search, library)
}

func searchBackend(results map[string][]models.SearchResult) *tu.MockBackend {
	return &tu.MockBackend{
		SearchFn: func(ctx context.Context, query string) ([]models.SearchResult, error) {
			return results[query], nil
		},
	}
}

func TestModelSaveOutcome(t *testing.T) {
	ctx := context.Background()
	results := map[string][]models.SearchResult{
		"dune": {{GoogleBooksID: "g1", Title: "Dune", Authors: []string{"Frank Herbert"}}},
		"emma": {{GoogleBooksID: "g2", Title: "Emma", Authors: []string{"Jane Austen"}}},
	}

	t.Run("Current Save Marks Card And Refreshes", func(t *testing.T) {
		backend := searchBackend(results)
		m := newTestModel(backend, "T1")

		m.Update(searchMsg{snap: m.search.Run(ctx, "dune")})
		saveCmd := m.saveCard(0)

		_, cmd := m.Update(saveCmd())

		if !m.searchSnap.Cards[0].Saved {
			t.Error("expected the saved card to be marked guardado")
		}
		if cmd == nil {
			t.Error("successful save must schedule a library refresh")
		}
	})

	t.Run("Stale Save Never Touches A Newer Render", func(t *testing.T) {
		backend := searchBackend(results)
		m := newTestModel(backend, "T1")

		// dispatch the save against the first search, then render a second
		// one before the outcome arrives
		m.Update(searchMsg{snap: m.search.Run(ctx, "dune")})
		saveCmd := m.saveCard(0)
		m.Update(searchMsg{snap: m.search.Run(ctx, "emma")})

		m.Update(saveCmd())

		card := m.searchSnap.Cards[0]
		if card.Result.Title != "Emma" {
			t.Fatalf("expected the newer render to survive, got %q", card.Result.Title)
		}
		if card.Saved {
			t.Error("stale save outcome must not mark a card of the newer render")
		}
	})

	t.Run("Stale Save Failure Never Pins Its Error", func(t *testing.T) {
		backend := searchBackend(results)
		backend.SaveBookFn = func(ctx context.Context, req models.SaveBookRequest) error {
			return &saveError{message: "Faltan datos"}
		}
		m := newTestModel(backend, "T1")

		m.Update(searchMsg{snap: m.search.Run(ctx, "dune")})
		saveCmd := m.saveCard(0)
		m.Update(searchMsg{snap: m.search.Run(ctx, "emma")})

		m.Update(saveCmd())

		if got := m.searchSnap.Cards[0].Error; got != "" {
			t.Errorf("stale save error leaked onto the newer render: %q", got)
		}
	})
}

// saveError is a minimal error double for save failures.
type saveError struct{ message string }

func (e *saveError) Error() string { return e.message }

func TestModelAuthFormReset(t *testing.T) {
	ctx := context.Background()

	t.Run("Registration Success Clears The Form", func(t *testing.T) {
		backend := &tu.MockBackend{
			RegisterFn: func(ctx context.Context, req models.RegisterRequest) (*models.RegisterResponse, error) {
				return &models.RegisterResponse{Mensaje: "Usuario registrado exitosamente"}, nil
			},
		}
		m := newTestModel(backend, "")
		m.registering = true
		m.username.SetValue("alice")
		m.email.SetValue("a@b.com")
		m.password.SetValue("hunter2")

		m.Update(sessionMsg{snap: m.session.Register(ctx, "alice", "a@b.com", "hunter2")})

		if m.username.Value() != "" || m.email.Value() != "" || m.password.Value() != "" {
			t.Errorf("form not cleared: username=%q email=%q password=%q",
				m.username.Value(), m.email.Value(), m.password.Value())
		}
		if m.status != "Usuario registrado exitosamente" {
			t.Errorf("expected the server notice, got %q", m.status)
		}
	})

	t.Run("Logout Leaves No Credentials Behind", func(t *testing.T) {
		m := newTestModel(&tu.MockBackend{}, "T1")
		m.username.SetValue("alice")
		m.email.SetValue("a@b.com")
		m.password.SetValue("hunter2")
		m.queryInput.SetValue("dune")

		m.Update(sessionMsg{snap: m.session.Logout()})

		if m.view != AuthView {
			t.Fatal("expected the auth view after logout")
		}
		for name, value := range map[string]string{
			"username": m.username.Value(),
			"email":    m.email.Value(),
			"password": m.password.Value(),
			"query":    m.queryInput.Value(),
		} {
			if value != "" {
				t.Errorf("%s kept its value after logout: %q", name, value)
			}
		}
	})
}
