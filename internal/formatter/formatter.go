// package formatter provides functions to export a library snapshot to various formats (CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"github.com/bookywarm/wyrm/internal/models"
)

// Stars renders a 1..5 rating as filled and hollow stars.
func Stars(rating int) string {
	if rating < 0 {
		rating = 0
	}
	if rating > 5 {
		rating = 5
	}
	return strings.Repeat("★", rating) + strings.Repeat("☆", 5-rating)
}

// ExportToCSV converts library entries to CSV with columns: RatingID, Title, Author, Rating, CoverImageURL
func ExportToCSV(entries []models.LibraryEntry) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"RatingID", "Title", "Author", "Rating", "CoverImageURL"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, entry := range entries {
		record := []string{
			strconv.Itoa(entry.RatingID),
			entry.Book.Title,
			entry.Book.Author,
			strconv.Itoa(entry.Rating),
			entry.Book.CoverImage,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts library entries to a Markdown document titled with
// the owner's username.
func ExportToMarkdown(username string, entries []models.LibraryEntry) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# Biblioteca de %s\n\n", username))
	buf.WriteString(fmt.Sprintf("**Libros**: %d\n\n", len(entries)))

	if len(entries) == 0 {
		buf.WriteString("_Aún no has guardado ningún libro._\n")
		return buf.Bytes(), nil
	}

	buf.WriteString("## Libros\n\n")
	for i, entry := range entries {
		authorPart := ""
		if entry.Book.Author != "" {
			authorPart = fmt.Sprintf(" — %s", entry.Book.Author)
		}
		buf.WriteString(fmt.Sprintf("%d. **%s**%s %s\n", i+1, entry.Book.Title, authorPart, Stars(entry.Rating)))
		if entry.Book.CoverImage != "" {
			buf.WriteString(fmt.Sprintf("   ![cover](%s)\n", entry.Book.CoverImage))
		}
	}

	return buf.Bytes(), nil
}

// ExportToText converts library entries to plain text, one line per entry in
// backend order.
func ExportToText(entries []models.LibraryEntry) []byte {
	var buf bytes.Buffer

	for _, entry := range entries {
		line := entry.Book.Title
		if entry.Book.Author != "" {
			line = fmt.Sprintf("%s - %s", line, entry.Book.Author)
		}
		buf.WriteString(fmt.Sprintf("%s [%s]\n", line, Stars(entry.Rating)))
	}

	return buf.Bytes()
}
