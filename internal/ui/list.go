package ui

import (
	"fmt"

	"github.com/bookywarm/wyrm/internal/controller"
	"github.com/bookywarm/wyrm/internal/formatter"
	"github.com/bookywarm/wyrm/internal/models"
	"github.com/charmbracelet/bubbles/list"
)

var (
	_ list.Item = searchItem{}
	_ list.Item = entryItem{}
)

// searchItem wraps [controller.SearchCard] to implement [list.Item].
type searchItem struct {
	card controller.SearchCard
}

func (i searchItem) FilterValue() string { return i.card.Result.Title }
func (i searchItem) Title() string       { return i.card.Result.Title }
func (i searchItem) Description() string {
	desc := i.card.Result.AuthorLine()
	if i.card.Result.PublishedDate != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.card.Result.PublishedDate)
	}
	if i.card.Saved {
		desc = fmt.Sprintf("%s • guardado", desc)
	}
	if i.card.Error != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.card.Error)
	}
	return desc
}

// entryItem wraps [models.LibraryEntry] to implement [list.Item].
type entryItem struct {
	entry models.LibraryEntry
}

func (i entryItem) FilterValue() string { return i.entry.Book.Title }
func (i entryItem) Title() string       { return i.entry.Book.Title }
func (i entryItem) Description() string {
	desc := formatter.Stars(i.entry.Rating)
	if i.entry.Book.Author != "" {
		desc = fmt.Sprintf("%s • %s", i.entry.Book.Author, desc)
	}
	return desc
}
