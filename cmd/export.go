package main

import (
	"context"
	"fmt"

	"github.com/bookywarm/wyrm/internal/controller"
	"github.com/bookywarm/wyrm/internal/shared"
	"github.com/bookywarm/wyrm/internal/tasks"
	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"
)

// Export snapshots the saved library to disk.
func (r *Runner) Export(ctx context.Context, cmd *cli.Command) error {
	snap := r.session.Restore(ctx)
	if snap.State != controller.Authenticated {
		return fmt.Errorf("%w: log in before exporting", shared.ErrNotAuthenticated)
	}

	opts := tasks.ExportOpts{
		Format:     cmd.String("format"),
		OutputDir:  cmd.String("output"),
		Username:   snap.Profile.Username,
		Covers:     cmd.Bool("covers"),
		NumWorkers: cmd.Int("workers"),
		RateLimit:  cmd.Float("rate-limit"),
		HTTPClient: r.httpClient,
	}
	if opts.Format == "" {
		opts.Format = r.config.Export.Format
	}
	if opts.OutputDir == "" {
		opts.OutputDir = r.config.Export.OutputDir
	}
	if opts.NumWorkers == 0 {
		opts.NumWorkers = r.config.Export.NumWorkers
	}
	if opts.RateLimit == 0 {
		opts.RateLimit = r.config.Export.RateLimit
	}
	if !opts.Covers {
		opts.Covers = r.config.Export.Covers
	}

	exportLogger := shared.WithLogger(r.logger, "format", opts.Format, "output", opts.OutputDir)
	if cmd.Bool("verbose") {
		shared.SetLogLevel(exportLogger, log.DebugLevel)
	}

	progress := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progress {
			// Per-cover updates are noisy so they only surface with --verbose.
			if update.Phase == tasks.FetchCovers {
				exportLogger.Debug(update.Message, "phase", update.Phase.String(), "step", update.Step, "total", update.Total)
			} else {
				exportLogger.Info(update.Message, "phase", update.Phase.String(), "step", update.Step, "total", update.Total)
			}
		}
	}()

	result, err := r.engine.Run(ctx, progress, opts)
	close(progress)
	<-done
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	r.writePlain("✓ Exported %d books to %s\n", result.TotalEntries, result.OutputDirectory)
	for _, file := range result.Files {
		r.writePlain("  %s\n", file)
	}
	if result.FailedCovers > 0 {
		r.writePlain("⚠ %d cover downloads failed, see %s\n", result.FailedCovers, result.ManifestPath)
	}
	return nil
}
