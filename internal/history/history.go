package history

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

const (
	// HistoryFile is the name of the history file
	HistoryFile = "history.json"

	// DefaultMaxEntries bounds the file size
	DefaultMaxEntries = 500
)

// Entry is one line typed at the prompt
type Entry struct {
	Line   string    `json:"line"`
	Caller string    `json:"caller"`
	Result string    `json:"result"`
	At     time.Time `json:"at"`
}

// History stores typed lines on disk
type History struct {
	mu         sync.RWMutex
	path       string
	maxEntries int
	Entries    []Entry `json:"entries"`
}

// NewHistory creates a history stored under the user's data directory
func NewHistory() *History {
	return NewHistoryAt(defaultPath())
}

// NewHistoryAt creates a history stored at path
func NewHistoryAt(path string) *History {
	return &History{
		path:       path,
		maxEntries: DefaultMaxEntries,
	}
}

func defaultPath() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join(os.TempDir(), "cmdrouter", HistoryFile)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "cmdrouter", HistoryFile)
}

// Path returns the history file location
func (h *History) Path() string {
	return h.path
}

// SetMaxEntries changes how many entries are kept
func (h *History) SetMaxEntries(n int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if n > 0 {
		h.maxEntries = n
		h.trim()
	}
}

// Load reads the history from disk. A missing file is not an error.
func (h *History) Load() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	data, err := os.ReadFile(h.path)
	if err != nil {
		if os.IsNotExist(err) {
			h.Entries = nil
			return nil
		}
		return err
	}

	var stored struct {
		Entries []Entry `json:"entries"`
	}
	if err := json.Unmarshal(data, &stored); err != nil {
		return err
	}
	h.Entries = stored.Entries
	h.trim()
	return nil
}

// Save writes the history to disk
func (h *History) Save() error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if err := os.MkdirAll(filepath.Dir(h.path), 0700); err != nil {
		return err
	}

	data, err := json.MarshalIndent(struct {
		Entries []Entry `json:"entries"`
	}{h.Entries}, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(h.path, data, 0600)
}

// Add records a line. Blank lines and immediate repeats are skipped.
func (h *History) Add(entry Entry) {
	entry.Line = strings.TrimSpace(entry.Line)
	if entry.Line == "" {
		return
	}
	if entry.At.IsZero() {
		entry.At = time.Now()
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if n := len(h.Entries); n > 0 && h.Entries[n-1].Line == entry.Line {
		h.Entries[n-1] = entry
		return
	}
	h.Entries = append(h.Entries, entry)
	h.trim()
}

// trim must be called with mu held
func (h *History) trim() {
	if over := len(h.Entries) - h.maxEntries; over > 0 {
		h.Entries = append([]Entry(nil), h.Entries[over:]...)
	}
}

// Lines returns typed lines, oldest first
func (h *History) Lines() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	lines := make([]string, len(h.Entries))
	for i, e := range h.Entries {
		lines[i] = e.Line
	}
	return lines
}

// Recent returns up to n entries, newest first
func (h *History) Recent(n int) []Entry {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if n <= 0 || n > len(h.Entries) {
		n = len(h.Entries)
	}
	out := make([]Entry, 0, n)
	for i := len(h.Entries) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, h.Entries[i])
	}
	return out
}

// Clear removes all entries
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Entries = nil
}
