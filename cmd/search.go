package main

import (
	"context"
	"fmt"

	"github.com/bookywarm/wyrm/internal/formatter"
	"github.com/bookywarm/wyrm/internal/shared"
	"github.com/urfave/cli/v3"
)

// Search queries the catalog and optionally saves one of the matches.
func (r *Runner) Search(ctx context.Context, cmd *cli.Command) error {
	query := cmd.StringArg("query")
	saveIndex := cmd.Int("save")
	rating := cmd.Int("rating")

	snap := r.search.Run(ctx, query)
	if snap.Error != "" {
		return fmt.Errorf("%w: %s", shared.ErrAPIRequest, snap.Error)
	}
	if snap.Message != "" {
		return r.writePlain("%s\n", snap.Message)
	}

	if cmd.Bool("json") {
		return r.writeJSON(snap.Cards, true)
	}

	for i, card := range snap.Cards {
		r.writePlain("%2d. %s\n", i+1, card.Result.Title)
		r.writePlain("    %s", card.Result.AuthorLine())
		if card.Result.PublishedDate != "" {
			r.writePlain(" (%s)", card.Result.PublishedDate)
		}
		r.writePlain("\n")
	}

	if saveIndex <= 0 {
		return nil
	}
	if saveIndex > len(snap.Cards) {
		return fmt.Errorf("%w: --save %d is out of range, got %d results", shared.ErrInvalidFlag, saveIndex, len(snap.Cards))
	}

	card := snap.Cards[saveIndex-1]
	result := r.search.Save(ctx, card.Result, rating)
	if result.SessionExpired {
		r.session.Invalidate()
		return fmt.Errorf("%w: %s", shared.ErrSessionExpired, result.Message)
	}
	if !result.OK() {
		return fmt.Errorf("%w: %s", shared.ErrAPIRequest, result.Message)
	}

	r.logger.Info("book saved", "title", card.Result.Title, "rating", rating)
	return r.writePlain("\n✓ '%s' guardado con %s\n", card.Result.Title, formatter.Stars(rating))
}
