package controller

import (
	"context"
	"strings"
	"sync/atomic"

	"github.com/bookywarm/wyrm/internal/models"
	"github.com/bookywarm/wyrm/internal/services"
	"github.com/bookywarm/wyrm/internal/shared"
)

const (
	msgEmptyQuery = "escribe algo para buscar"
	msgNoResults  = "no se encontraron libros"
)

// DefaultRating is the initial value of each result card's rating selector.
const DefaultRating = 5

// Search fetches external catalog matches. The endpoint is public, but the
// per-card save action goes through the gateway's authenticated path.
type Search struct {
	backend services.Backend
	gen     atomic.Uint64
}

// NewSearch creates a search controller.
func NewSearch(backend services.Backend) *Search {
	return &Search{backend: backend}
}

// Start validates the query and, when it passes, returns the loading
// placeholder snapshot for a fresh generation. An empty query after trimming
// is a local validation failure: Loading stays false, no network call is
// made, and the message is shown inline.
func (c *Search) Start(query string) SearchSnapshot {
	q := strings.TrimSpace(query)
	if q == "" {
		return SearchSnapshot{Gen: c.gen.Add(1), Message: msgEmptyQuery}
	}
	return SearchSnapshot{Gen: c.gen.Add(1), Query: q, Loading: true}
}

// Complete resolves a loading snapshot by fetching the catalog. The result
// set replaces the previous one wholesale; an empty array renders the
// no-results message, not an error. The returned snapshot keeps the
// generation of snap, so a newer Start supersedes it at render time.
func (c *Search) Complete(ctx context.Context, snap SearchSnapshot) SearchSnapshot {
	if !snap.Loading {
		return snap
	}

	results, err := c.backend.Search(ctx, snap.Query)
	if err != nil {
		return SearchSnapshot{Gen: snap.Gen, Query: snap.Query, Error: services.UserMessage(err)}
	}

	out := SearchSnapshot{Gen: snap.Gen, Query: snap.Query}
	if len(results) == 0 {
		out.Message = msgNoResults
		return out
	}

	out.Cards = make([]SearchCard, len(results))
	for i, r := range results {
		r.CoverImage = shared.UpgradeImageURL(r.CoverImage)
		out.Cards[i] = SearchCard{Result: r, Rating: DefaultRating}
	}
	return out
}

// Run performs a whole search in one step. Used by the CLI, where the loading
// placeholder has nowhere to render.
func (c *Search) Run(ctx context.Context, query string) SearchSnapshot {
	return c.Complete(ctx, c.Start(query))
}

// Save posts a catalog result with its rating to the user's library. The
// outcome follows the shared mutation rule; the library is the owning
// collection of this mutation, so success schedules its refresh.
func (c *Search) Save(ctx context.Context, result models.SearchResult, rating int) MutationResult {
	if !models.ValidRating(rating) {
		return MutationResult{
			Err:     shared.ErrInvalidInput,
			Message: "la calificación debe estar entre 1 y 5",
		}
	}

	err := c.backend.SaveBook(ctx, models.SaveBookRequest{
		GoogleBooksID: result.GoogleBooksID,
		Title:         result.Title,
		Author:        result.Author(),
		Rating:        rating,
		CoverImageURL: result.CoverImage,
	})
	return NewMutationResult(err)
}

// Reset discards all transient search state for a new generation, preventing
// results from a previous session leaking into a new one.
func (c *Search) Reset() SearchSnapshot {
	return SearchSnapshot{Gen: c.gen.Add(1)}
}
