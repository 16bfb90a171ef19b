// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides a multi-view workflow for targeted artwork restoration:
//  1. [SearchView] : Scan the provider listing for title matches
//  2. [EpisodeListView] : Browse matching episodes
//  3. [ConfirmView] : Confirm a single-episode restore
//  4. [ProcessView] : Restore in flight
//  5. [ResultView] : Display the recorded outcome
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern.
// Search progress flows through a channel from the RestoreEngine, providing non-blocking status reporting during the scan.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, y/n, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
