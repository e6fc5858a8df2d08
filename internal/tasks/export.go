package tasks

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/bookywarm/wyrm/internal/formatter"
	"github.com/bookywarm/wyrm/internal/models"
	"github.com/bookywarm/wyrm/internal/shared"
	"golang.org/x/time/rate"
)

// ExportOpts contains configuration for library exports.
type ExportOpts struct {
	Format     string       // Export format: json, csv, markdown, txt
	OutputDir  string       // Base output directory (default: wyrm_export_{epoch})
	Username   string       // Owner name used in rendered documents
	Covers     bool         // Download cover images alongside the export
	NumWorkers int          // Concurrent cover downloads (default: 3)
	RateLimit  float64      // Cover requests per second (default: 5)
	HTTPClient *http.Client // Client for cover downloads (default: http.DefaultClient)
}

// CoverResult records the outcome of a single cover download.
type CoverResult struct {
	RatingID int    `json:"rating_id"`
	Title    string `json:"title"`
	File     string `json:"file,omitempty"`
	Success  bool   `json:"success"`
	Error    string `json:"error,omitempty"`
}

// ExportResult summarizes a completed export run.
type ExportResult struct {
	ExportID        string        `json:"export_id"`
	Username        string        `json:"username"`
	Format          string        `json:"format"`
	TotalEntries    int           `json:"total_entries"`
	OutputDirectory string        `json:"output_directory"`
	Files           []string      `json:"files"`
	Covers          []CoverResult `json:"covers,omitempty"`
	FailedCovers    int           `json:"failed_covers,omitempty"`
	ManifestPath    string        `json:"manifest_path"`
	GeneratedAt     time.Time     `json:"generated_at"`
}

type coverJob struct {
	entry models.LibraryEntry
}

// Run fetches the saved library and writes it to disk in the requested format.
//
// Cover downloads use a worker pool with rate limiting so a large library does
// not hammer the image host. Partial cover failures are recorded in the result
// rather than aborting the export.
func (e *ExportEngine) Run(ctx context.Context, progress chan<- ProgressUpdate, opts ExportOpts) (*ExportResult, error) {
	if e.backend == nil {
		return nil, fmt.Errorf("%w: backend service not initialized", shared.ErrServiceUnavailable)
	}

	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("wyrm_export_%d", time.Now().Unix())
	}
	if opts.Format == "" {
		opts.Format = "markdown"
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 3
	}
	if opts.NumWorkers > 10 {
		opts.NumWorkers = 10
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 5.0
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	e.sendProgress(progress, fetchingLibraryUpdate())
	entries, err := e.backend.MyBooks(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch library: %w", err)
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	result := &ExportResult{
		ExportID:        shared.GenerateID(),
		Username:        opts.Username,
		Format:          opts.Format,
		TotalEntries:    len(entries),
		OutputDirectory: opts.OutputDir,
		GeneratedAt:     time.Now().UTC(),
	}

	path, err := e.renderLibrary(entries, opts, progress)
	if err != nil {
		return nil, err
	}
	result.Files = append(result.Files, path)

	if opts.Covers {
		covers, failed := e.fetchCovers(ctx, progress, entries, opts)
		result.Covers = covers
		result.FailedCovers = failed
	}

	manifestPath := filepath.Join(opts.OutputDir, "export_manifest.json")
	e.sendProgress(progress, writingManifestUpdate(manifestPath))
	manifest, err := shared.MarshalJSON(result, true)
	if err != nil {
		return result, fmt.Errorf("export completed but failed to encode manifest: %w", err)
	}
	if err := os.WriteFile(manifestPath, manifest, 0644); err != nil {
		return result, fmt.Errorf("export completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath
	return result, nil
}

// renderLibrary writes the library document for the requested format and
// returns the written path.
func (e *ExportEngine) renderLibrary(entries []models.LibraryEntry, opts ExportOpts, progress chan<- ProgressUpdate) (string, error) {
	var (
		data []byte
		name string
		err  error
	)

	switch opts.Format {
	case "csv":
		name = "library.csv"
		data, err = formatter.ExportToCSV(entries)
	case "markdown":
		name = "library.md"
		data, err = formatter.ExportToMarkdown(opts.Username, entries)
	case "txt":
		name = "library.txt"
		data = formatter.ExportToText(entries)
	case "json":
		name = "library.json"
		data, err = shared.MarshalJSON(entries, true)
	default:
		return "", fmt.Errorf("%w: unknown export format '%s'", shared.ErrInvalidArgument, opts.Format)
	}
	if err != nil {
		return "", fmt.Errorf("%s export failed: %w", opts.Format, err)
	}

	path := filepath.Join(opts.OutputDir, name)
	e.sendProgress(progress, renderingFileUpdate(1, 1, path))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}

// fetchCovers downloads cover images through a rate-limited worker pool.
func (e *ExportEngine) fetchCovers(
	ctx context.Context,
	progress chan<- ProgressUpdate,
	entries []models.LibraryEntry,
	opts ExportOpts,
) ([]CoverResult, int) {
	coverDir := filepath.Join(opts.OutputDir, "covers")
	if err := os.MkdirAll(coverDir, 0755); err != nil {
		return []CoverResult{{Success: false, Error: err.Error()}}, 1
	}

	withCovers := make([]models.LibraryEntry, 0, len(entries))
	for _, entry := range entries {
		if entry.Book.CoverImage != "" {
			withCovers = append(withCovers, entry)
		}
	}
	if len(withCovers) == 0 {
		return nil, 0
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)

	jobs := make(chan coverJob, len(withCovers))
	results := make(chan CoverResult, len(withCovers))

	var wg sync.WaitGroup
	for i := 0; i < opts.NumWorkers; i++ {
		wg.Add(1)
		go e.coverWorker(ctx, &wg, limiter, jobs, results, coverDir, opts.HTTPClient)
	}

	go func() {
		for _, entry := range withCovers {
			select {
			case <-ctx.Done():
				close(jobs)
				return
			default:
			}
			jobs <- coverJob{entry: entry}
		}
		close(jobs)
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	covers := make([]CoverResult, 0, len(withCovers))
	failed := 0
	completed := 0
	for res := range results {
		completed++
		covers = append(covers, res)
		if res.Success {
			e.sendProgress(progress, coverFetchedUpdate(completed, len(withCovers), res.Title))
		} else {
			failed++
			e.sendProgress(progress, coverFailedUpdate(completed, len(withCovers), res.Title, fmt.Errorf("%s", res.Error)))
		}
	}
	return covers, failed
}

// coverWorker downloads covers from the jobs channel.
func (e *ExportEngine) coverWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	limiter *rate.Limiter,
	jobs <-chan coverJob,
	results chan<- CoverResult,
	coverDir string,
	client *http.Client,
) {
	defer wg.Done()

	for job := range jobs {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if err := limiter.Wait(ctx); err != nil {
			return
		}

		results <- e.downloadCover(ctx, job.entry, coverDir, client)
	}
}

// downloadCover fetches a single cover image to covers/{rating_id}.jpg.
func (e *ExportEngine) downloadCover(ctx context.Context, entry models.LibraryEntry, coverDir string, client *http.Client) CoverResult {
	result := CoverResult{
		RatingID: entry.RatingID,
		Title:    entry.Book.Title,
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, entry.Book.CoverImage, nil)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	resp, err := client.Do(req)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		result.Error = fmt.Sprintf("unexpected status %d", resp.StatusCode)
		return result
	}

	path := filepath.Join(coverDir, fmt.Sprintf("%d%s", entry.RatingID, coverExtension(resp.Header.Get("Content-Type"))))
	f, err := os.Create(path)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	defer f.Close()

	if _, err := io.Copy(f, resp.Body); err != nil {
		result.Error = err.Error()
		return result
	}

	result.File = path
	result.Success = true
	return result
}

func coverExtension(contentType string) string {
	switch {
	case strings.Contains(contentType, "png"):
		return ".png"
	case strings.Contains(contentType, "gif"):
		return ".gif"
	default:
		return ".jpg"
	}
}
