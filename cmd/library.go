package main

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/bookywarm/wyrm/internal/controller"
	"github.com/bookywarm/wyrm/internal/formatter"
	"github.com/bookywarm/wyrm/internal/shared"
	"github.com/urfave/cli/v3"
)

// LibraryList prints the saved books in server order.
func (r *Runner) LibraryList(ctx context.Context, cmd *cli.Command) error {
	snap := r.library.Refresh(ctx)
	if snap.SessionExpired {
		r.session.Invalidate()
		return fmt.Errorf("%w: %s", shared.ErrSessionExpired, snap.Error)
	}
	if snap.Error != "" {
		return fmt.Errorf("%w: %s", shared.ErrAPIRequest, snap.Error)
	}

	if cmd.Bool("json") {
		return r.writeJSON(snap.Entries, true)
	}

	if snap.Empty {
		return r.writePlain("Aún no has guardado ningún libro.\n")
	}

	for _, entry := range snap.Entries {
		r.writePlain("%4d  %s  %s", entry.RatingID, formatter.Stars(entry.Rating), entry.Book.Title)
		if entry.Book.Author != "" {
			r.writePlain(" — %s", entry.Book.Author)
		}
		r.writePlain("\n")
	}
	return nil
}

// LibraryRate changes the rating of a saved book.
func (r *Runner) LibraryRate(ctx context.Context, cmd *cli.Command) error {
	ratingID := cmd.Int("id")
	rating := cmd.Int("rating")

	result := r.library.UpdateRating(ctx, ratingID, rating)
	if err := r.checkMutation(result); err != nil {
		return err
	}

	r.logger.Info("rating updated", "id", ratingID, "rating", rating)
	return r.writePlain("✓ Calificación actualizada a %s\n", formatter.Stars(rating))
}

// LibraryRemove deletes a saved book after confirmation.
func (r *Runner) LibraryRemove(ctx context.Context, cmd *cli.Command) error {
	ratingID := cmd.Int("id")

	if !cmd.Bool("yes") {
		r.writePlain("¿Eliminar el libro #%d de tu biblioteca? [y/N]: ", ratingID)
		line, err := bufio.NewReader(r.input).ReadString('\n')
		if err != nil && line == "" {
			return fmt.Errorf("failed to read confirmation: %w", err)
		}
		answer := strings.ToLower(strings.TrimSpace(line))
		if answer != "y" && answer != "yes" {
			return r.writePlain("Cancelado.\n")
		}
	}

	result := r.library.DeleteRating(ctx, ratingID)
	if err := r.checkMutation(result); err != nil {
		return err
	}

	r.logger.Info("book removed", "id", ratingID)
	return r.writePlain("✓ Libro eliminado\n")
}

// checkMutation maps a mutation outcome to a CLI error.
func (r *Runner) checkMutation(result controller.MutationResult) error {
	if result.SessionExpired {
		r.session.Invalidate()
		return fmt.Errorf("%w: %s", shared.ErrSessionExpired, result.Message)
	}
	if !result.OK() {
		return fmt.Errorf("%w: %s", shared.ErrAPIRequest, result.Message)
	}
	return nil
}
