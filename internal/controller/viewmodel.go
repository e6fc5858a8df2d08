package controller

import (
	"fmt"

	"github.com/bookywarm/wyrm/internal/models"
	"github.com/bookywarm/wyrm/internal/services"
)

// SessionState enumerates the two states of the session state machine.
type SessionState int

const (
	Unauthenticated SessionState = iota
	Authenticated
)

// SessionSnapshot is the view model for the auth/session region.
type SessionSnapshot struct {
	State   SessionState
	Profile *models.UserProfile
	Notice  string // success message, e.g. after registration
	Error   string // inline error for the current attempt, terminal until retried
}

// Greeting returns the dashboard welcome line for an authenticated session.
func (s SessionSnapshot) Greeting() string {
	if s.State != Authenticated || s.Profile == nil {
		return ""
	}
	return fmt.Sprintf("¡Bienvenido, %s!", s.Profile.Username)
}

// SearchCard is one rendered catalog match with its save control state.
type SearchCard struct {
	Result models.SearchResult
	Rating int    // selector value, defaults to 5
	Saved  bool   // a saved card cannot be re-saved from the same render
	Error  string // per-card save error, control stays enabled for retry
}

// SearchSnapshot is the view model for the search-results region.
type SearchSnapshot struct {
	Gen     uint64
	Query   string
	Loading bool
	Cards   []SearchCard
	Message string // validation or no-results message
	Error   string
}

// LibrarySnapshot is the view model for the library region. Entries appear in
// backend order.
type LibrarySnapshot struct {
	Gen            uint64
	Entries        []models.LibraryEntry
	Empty          bool
	Error          string
	SessionExpired bool
}

// MutationResult is the outcome of a save/update/delete operation.
type MutationResult struct {
	Err            error
	Message        string // user-facing failure message, empty on success
	SessionExpired bool
	Refresh        bool // schedule exactly one refresh of the owning collection
}

// OK reports whether the mutation succeeded.
func (m MutationResult) OK() bool { return m.Err == nil }

// NewMutationResult applies the single re-fetch-after-mutation rule shared by
// every mutating operation: success schedules one refresh of the owning
// collection, a 401 tears the session down, anything else surfaces the
// message and leaves state untouched.
func NewMutationResult(err error) MutationResult {
	if err == nil {
		return MutationResult{Refresh: true}
	}
	return MutationResult{
		Err:            err,
		Message:        services.UserMessage(err),
		SessionExpired: services.IsUnauthorized(err),
	}
}
