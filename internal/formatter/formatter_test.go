package formatter

import (
	"strings"
	"testing"

	"github.com/bookywarm/wyrm/internal/models"
)

var sampleEntries = []models.LibraryEntry{
	{RatingID: 42, Rating: 5, Book: models.Book{Title: "Dune", Author: "Frank Herbert", CoverImage: "https://img/d.jpg"}},
	{RatingID: 7, Rating: 3, Book: models.Book{Title: "Emma", Author: "Jane Austen"}},
}

func TestStars(t *testing.T) {
	tc := []struct {
		rating int
		want   string
	}{
		{5, "★★★★★"},
		{3, "★★★☆☆"},
		{1, "★☆☆☆☆"},
		{0, "☆☆☆☆☆"},
		{9, "★★★★★"},
		{-1, "☆☆☆☆☆"},
	}

	for _, tt := range tc {
		if got := Stars(tt.rating); got != tt.want {
			t.Errorf("Stars(%d) = %s, want %s", tt.rating, got, tt.want)
		}
	}
}

func TestExportToCSV(t *testing.T) {
	data, err := ExportToCSV(sampleEntries)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header + 2 records, got %d lines", len(lines))
	}
	if lines[0] != "RatingID,Title,Author,Rating,CoverImageURL" {
		t.Errorf("unexpected header: %s", lines[0])
	}
	if !strings.HasPrefix(lines[1], "42,Dune,Frank Herbert,5") {
		t.Errorf("unexpected first record: %s", lines[1])
	}
}

func TestExportToMarkdown(t *testing.T) {
	t.Run("With Entries", func(t *testing.T) {
		data, err := ExportToMarkdown("alice", sampleEntries)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		out := string(data)
		if !strings.Contains(out, "# Biblioteca de alice") {
			t.Error("expected title with username")
		}
		if !strings.Contains(out, "**Dune** — Frank Herbert ★★★★★") {
			t.Errorf("expected rated entry line, got:\n%s", out)
		}
		if !strings.Contains(out, "![cover](https://img/d.jpg)") {
			t.Error("expected cover image link")
		}
	})

	t.Run("Empty Library", func(t *testing.T) {
		data, err := ExportToMarkdown("alice", nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(string(data), "Aún no has guardado ningún libro") {
			t.Error("expected empty-state message")
		}
	})
}

func TestExportToText(t *testing.T) {
	out := string(ExportToText(sampleEntries))

	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if lines[0] != "Dune - Frank Herbert [★★★★★]" {
		t.Errorf("unexpected line: %s", lines[0])
	}
	// backend order preserved
	if !strings.HasPrefix(lines[1], "Emma") {
		t.Errorf("expected Emma second, got %s", lines[1])
	}
}
