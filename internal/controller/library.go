package controller

import (
	"context"
	"sync/atomic"

	"github.com/bookywarm/wyrm/internal/models"
	"github.com/bookywarm/wyrm/internal/services"
	"github.com/bookywarm/wyrm/internal/shared"
)

// Library mirrors the backend's snapshot of the user's saved ratings. Every
// mutation is confirmed by the backend before anything changes locally:
// re-fetching after each write costs one extra round trip but can never
// diverge from the server, which is acceptable at personal-library sizes.
type Library struct {
	backend services.Backend
	gen     atomic.Uint64
}

// NewLibrary creates a library controller.
func NewLibrary(backend services.Backend) *Library {
	return &Library{backend: backend}
}

// Refresh fetches the authoritative library snapshot. Entries keep the order
// the backend returned; an empty set is the empty-state message, not an
// error. Consecutive refreshes with no intervening mutation yield identical
// snapshots apart from the generation.
func (c *Library) Refresh(ctx context.Context) LibrarySnapshot {
	gen := c.gen.Add(1)

	entries, err := c.backend.MyBooks(ctx)
	if err != nil {
		return LibrarySnapshot{
			Gen:            gen,
			Error:          services.UserMessage(err),
			SessionExpired: services.IsUnauthorized(err),
		}
	}

	for i := range entries {
		entries[i].Book.CoverImage = shared.UpgradeImageURL(entries[i].Book.CoverImage)
	}

	return LibrarySnapshot{Gen: gen, Entries: entries, Empty: len(entries) == 0}
}

// UpdateRating sends the new rating to the backend. Nothing is mutated
// locally before confirmation: on failure the prior rendered value stands.
func (c *Library) UpdateRating(ctx context.Context, ratingID, rating int) MutationResult {
	if !models.ValidRating(rating) {
		return MutationResult{
			Err:     shared.ErrInvalidInput,
			Message: "la calificación debe estar entre 1 y 5",
		}
	}

	return NewMutationResult(c.backend.UpdateRating(ctx, ratingID, rating))
}

// DeleteRating removes an entry. Callers must have obtained interactive
// confirmation before dispatching.
func (c *Library) DeleteRating(ctx context.Context, ratingID int) MutationResult {
	return NewMutationResult(c.backend.DeleteRating(ctx, ratingID))
}

// Reset discards all transient library state for a new generation.
func (c *Library) Reset() LibrarySnapshot {
	return LibrarySnapshot{Gen: c.gen.Add(1)}
}
