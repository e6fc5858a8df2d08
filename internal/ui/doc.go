// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides a multi-view workflow over the reading library:
//  1. [AuthView] : Login or register against the BookyWarm server
//  2. [DashboardView] : Search the catalog and manage saved books side by side
//  3. [ConfirmDeleteView] : Confirm removal of a saved book
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern.
// All network work runs inside tea.Cmd closures that return typed messages carrying
// controller snapshots; the model applies a snapshot only if its generation is at
// least the last one rendered for that region, so slow responses never clobber
// newer state.
//
// Keyboard navigation uses vim-style bindings (j/k, tab, enter, esc, y/n, q) with
// contextual help displayed via charmbracelet/bubbles/help.
package ui
