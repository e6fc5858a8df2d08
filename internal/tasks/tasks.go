// package tasks implements long-running library operations.
//
// The core abstraction is ExportEngine, which snapshots the reading library
// to disk in one or more formats and optionally downloads cover images.
// Operations emit progress updates via channels for non-blocking status
// reporting to CLI/UI layers.
package tasks

import (
	"fmt"

	"github.com/bookywarm/wyrm/internal/services"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	FetchLibrary Phase = iota
	RenderFiles
	FetchCovers
	WriteManifest
)

func (p Phase) String() string {
	switch p {
	case FetchLibrary:
		return "fetch_library"
	case RenderFiles:
		return "render_files"
	case FetchCovers:
		return "fetch_covers"
	case WriteManifest:
		return "write_manifest"
	default:
		return ""
	}
}

func fetchingLibraryUpdate() ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchLibrary,
		Step:    1,
		Total:   1,
		Message: "Fetching saved books from the server...",
	}
}

func renderingFileUpdate(step, total int, path string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   RenderFiles,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Writing %s", path),
		Data:    path,
	}
}

func coverFetchedUpdate(step, total int, title string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchCovers,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Downloaded cover for '%s'", title),
		Data:    title,
	}
}

func coverFailedUpdate(step, total int, title string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchCovers,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Cover for '%s' failed: %v", title, err),
		Data:    err,
	}
}

func writingManifestUpdate(path string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   WriteManifest,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Writing manifest %s", path),
		Data:    path,
	}
}

// ExportEngine snapshots the reading library to disk.
// Contains dependencies on the backend service.
type ExportEngine struct {
	backend services.Backend
}

// NewExportEngine creates a new ExportEngine over the provided backend.
func NewExportEngine(backend services.Backend) *ExportEngine {
	return &ExportEngine{backend: backend}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *ExportEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
		// Sent successfully
	default:
		// Channel full or closed, skip this update
	}
}
