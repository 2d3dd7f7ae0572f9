// Package history provides command-line history persistence for interactive sessions.
package history

// HistoryManager defines the interface for managing typed command history.
// This interface enables dependency injection and easier testing.
type HistoryManager interface {
	// Load reads the history from disk
	Load() error

	// Save writes the history to disk
	Save() error

	// Add records a typed line and how it ended
	Add(entry Entry)

	// Lines returns the typed lines, oldest first, for prompt recall
	Lines() []string

	// Recent returns the N most recent entries, newest first
	Recent(n int) []Entry

	// Clear removes all history
	Clear()
}

// Ensure concrete type implements the interface
var _ HistoryManager = (*History)(nil)
