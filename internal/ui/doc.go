// Package ui implements an interactive terminal task monitor using bubbletea's Elm architecture.
//
// The TUI polls a running extraction service and provides two views:
//  1. [TaskListView] : Browse tasks with live status and progress
//  2. [DetailView] : Inspect one task's full state, including failures
//
// The [Model] implements bubbletea's standard Init/Update/View pattern. A
// tick message drives periodic refreshes so progress updates appear without
// user interaction.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, d, q) with
// contextual help displayed via charmbracelet/bubbles/help.
package ui
