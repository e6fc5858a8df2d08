package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bookywarm/wyrm/internal/models"
	internaltesting "github.com/bookywarm/wyrm/internal/testing"
)

func testEntries(coverBase string) []models.LibraryEntry {
	return []models.LibraryEntry{
		{
			RatingID: 1,
			Rating:   5,
			Book: models.Book{
				Title:      "El Quijote",
				Author:     "Miguel de Cervantes",
				CoverImage: coverBase + "/covers/1.jpg",
			},
		},
		{
			RatingID: 2,
			Rating:   3,
			Book: models.Book{
				Title:  "Rayuela",
				Author: "Julio Cortázar",
			},
		},
	}
}

func TestExportEngine_Run(t *testing.T) {
	tests := []struct {
		name           string
		format         string
		wantFile       string
		validateResult func(t *testing.T, result *ExportResult, tempDir string)
	}{
		{
			name:     "markdown export",
			format:   "markdown",
			wantFile: "library.md",
			validateResult: func(t *testing.T, result *ExportResult, tempDir string) {
				data, err := os.ReadFile(filepath.Join(tempDir, "library.md"))
				if err != nil {
					t.Fatalf("failed to read markdown file: %v", err)
				}
				if !strings.Contains(string(data), "# Biblioteca de alice") {
					t.Errorf("markdown missing heading, got:\n%s", data)
				}
				if !strings.Contains(string(data), "El Quijote") {
					t.Errorf("markdown missing book title")
				}
			},
		},
		{
			name:     "csv export",
			format:   "csv",
			wantFile: "library.csv",
			validateResult: func(t *testing.T, result *ExportResult, tempDir string) {
				data, err := os.ReadFile(filepath.Join(tempDir, "library.csv"))
				if err != nil {
					t.Fatalf("failed to read csv file: %v", err)
				}
				lines := strings.Split(strings.TrimSpace(string(data)), "\n")
				if len(lines) != 3 {
					t.Errorf("expected header plus 2 rows, got %d lines", len(lines))
				}
			},
		},
		{
			name:     "json export",
			format:   "json",
			wantFile: "library.json",
			validateResult: func(t *testing.T, result *ExportResult, tempDir string) {
				data, err := os.ReadFile(filepath.Join(tempDir, "library.json"))
				if err != nil {
					t.Fatalf("failed to read json file: %v", err)
				}
				var decoded []models.LibraryEntry
				if err := json.Unmarshal(data, &decoded); err != nil {
					t.Fatalf("json file did not decode: %v", err)
				}
				if len(decoded) != 2 {
					t.Errorf("expected 2 entries, got %d", len(decoded))
				}
			},
		},
		{
			name:     "txt export",
			format:   "txt",
			wantFile: "library.txt",
			validateResult: func(t *testing.T, result *ExportResult, tempDir string) {
				data, err := os.ReadFile(filepath.Join(tempDir, "library.txt"))
				if err != nil {
					t.Fatalf("failed to read txt file: %v", err)
				}
				if !strings.Contains(string(data), "Rayuela") {
					t.Errorf("txt export missing entry")
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tempDir := t.TempDir()
			backend := &internaltesting.MockBackend{
				MyBooksFn: func(ctx context.Context) ([]models.LibraryEntry, error) {
					return testEntries(""), nil
				},
			}

			engine := NewExportEngine(backend)
			result, err := engine.Run(context.Background(), nil, ExportOpts{
				Format:    tt.format,
				OutputDir: tempDir,
				Username:  "alice",
			})
			if err != nil {
				t.Fatalf("Run() failed: %v", err)
			}

			if result.TotalEntries != 2 {
				t.Errorf("TotalEntries = %d, want 2", result.TotalEntries)
			}
			if result.ExportID == "" {
				t.Error("expected a generated export ID")
			}
			if len(result.Files) != 1 || filepath.Base(result.Files[0]) != tt.wantFile {
				t.Errorf("Files = %v, want one %s", result.Files, tt.wantFile)
			}

			manifestPath := filepath.Join(tempDir, "export_manifest.json")
			if result.ManifestPath != manifestPath {
				t.Errorf("ManifestPath = %s, want %s", result.ManifestPath, manifestPath)
			}
			data, err := os.ReadFile(manifestPath)
			if err != nil {
				t.Fatalf("manifest not written: %v", err)
			}
			var manifest ExportResult
			if err := json.Unmarshal(data, &manifest); err != nil {
				t.Fatalf("manifest did not decode: %v", err)
			}
			if manifest.Username != "alice" {
				t.Errorf("manifest username = %s, want alice", manifest.Username)
			}

			if tt.validateResult != nil {
				tt.validateResult(t, result, tempDir)
			}
		})
	}

	t.Run("Unknown Format Fails", func(t *testing.T) {
		backend := &internaltesting.MockBackend{
			MyBooksFn: func(ctx context.Context) ([]models.LibraryEntry, error) {
				return testEntries(""), nil
			},
		}

		engine := NewExportEngine(backend)
		if _, err := engine.Run(context.Background(), nil, ExportOpts{
			Format:    "yaml",
			OutputDir: t.TempDir(),
		}); err == nil {
			t.Error("expected error for unknown format")
		}
	})

	t.Run("Library Fetch Failure Aborts", func(t *testing.T) {
		backend := &internaltesting.MockBackend{
			MyBooksFn: func(ctx context.Context) ([]models.LibraryEntry, error) {
				return nil, errors.New("boom")
			},
		}

		engine := NewExportEngine(backend)
		if _, err := engine.Run(context.Background(), nil, ExportOpts{OutputDir: t.TempDir()}); err == nil {
			t.Error("expected error when library fetch fails")
		}
	})
}

func TestExportEngine_Covers(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "missing.jpg") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "image/jpeg")
		w.Write([]byte("jpeg-bytes"))
	}))
	defer server.Close()

	t.Run("Downloads Covers To Subdirectory", func(t *testing.T) {
		tempDir := t.TempDir()
		backend := &internaltesting.MockBackend{
			MyBooksFn: func(ctx context.Context) ([]models.LibraryEntry, error) {
				return testEntries(server.URL), nil
			},
		}

		engine := NewExportEngine(backend)
		progress := make(chan ProgressUpdate, 32)
		result, err := engine.Run(context.Background(), progress, ExportOpts{
			Format:    "markdown",
			OutputDir: tempDir,
			Username:  "alice",
			Covers:    true,
		})
		if err != nil {
			t.Fatalf("Run() failed: %v", err)
		}

		// Only the first entry has a cover URL.
		if len(result.Covers) != 1 {
			t.Fatalf("expected 1 cover result, got %d", len(result.Covers))
		}
		if !result.Covers[0].Success {
			t.Errorf("cover download failed: %s", result.Covers[0].Error)
		}
		if result.FailedCovers != 0 {
			t.Errorf("FailedCovers = %d, want 0", result.FailedCovers)
		}

		coverPath := filepath.Join(tempDir, "covers", "1.jpg")
		data, err := os.ReadFile(coverPath)
		if err != nil {
			t.Fatalf("cover not written: %v", err)
		}
		if string(data) != "jpeg-bytes" {
			t.Errorf("unexpected cover contents: %s", data)
		}

		close(progress)
		sawCoverPhase := false
		for update := range progress {
			if update.Phase == FetchCovers {
				sawCoverPhase = true
			}
		}
		if !sawCoverPhase {
			t.Error("expected a fetch_covers progress update")
		}
	})

	t.Run("Partial Failures Are Recorded", func(t *testing.T) {
		tempDir := t.TempDir()
		backend := &internaltesting.MockBackend{
			MyBooksFn: func(ctx context.Context) ([]models.LibraryEntry, error) {
				entries := testEntries(server.URL)
				entries[1].Book.CoverImage = server.URL + "/covers/missing.jpg"
				return entries, nil
			},
		}

		engine := NewExportEngine(backend)
		result, err := engine.Run(context.Background(), nil, ExportOpts{
			Format:    "txt",
			OutputDir: tempDir,
			Covers:    true,
		})
		if err != nil {
			t.Fatalf("Run() failed: %v", err)
		}

		if len(result.Covers) != 2 {
			t.Fatalf("expected 2 cover results, got %d", len(result.Covers))
		}
		if result.FailedCovers != 1 {
			t.Errorf("FailedCovers = %d, want 1", result.FailedCovers)
		}
	})
}

func TestPhaseString(t *testing.T) {
	cases := map[Phase]string{
		FetchLibrary:  "fetch_library",
		RenderFiles:   "render_files",
		FetchCovers:   "fetch_covers",
		WriteManifest: "write_manifest",
		Phase(99):     "",
	}
	for phase, want := range cases {
		if got := phase.String(); got != want {
			t.Errorf("Phase(%d).String() = %q, want %q", phase, got, want)
		}
	}
}
