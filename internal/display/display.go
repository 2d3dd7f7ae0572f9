// Package display handles terminal output: styled status lines, markdown
// rendering, spinners and tables.
package display

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/briandowns/spinner"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/rodaine/table"
)

var (
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	prefixStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	headerStyle  = lipgloss.NewStyle().Bold(true).Underline(true)
)

var (
	rendererMu sync.Mutex
	renderer   *glamour.TermRenderer
)

// InitRenderer prepares the markdown renderer. Until it is called (or if it
// fails) markdown is printed as-is.
func InitRenderer() error {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return fmt.Errorf("failed to create markdown renderer: %w", err)
	}

	rendererMu.Lock()
	renderer = r
	rendererMu.Unlock()
	return nil
}

// RenderMarkdown renders md for the terminal, or returns it unchanged when
// no renderer is initialized.
func RenderMarkdown(md string) string {
	rendererMu.Lock()
	r := renderer
	rendererMu.Unlock()

	if r == nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return out
}

// ShowContentRendered prints markdown, rendered if possible.
func ShowContentRendered(md string) {
	fmt.Print(RenderMarkdown(md))
	if !strings.HasSuffix(md, "\n") {
		fmt.Println()
	}
}

// ShowError prints an error line to stderr.
func ShowError(msg string) {
	fmt.Fprintln(os.Stderr, errorStyle.Render("Error: ")+msg)
}

// ShowWarning prints a warning line to stderr.
func ShowWarning(msg string) {
	fmt.Fprintln(os.Stderr, warningStyle.Render("Warning: ")+msg)
}

// NewSpinner returns a stopped spinner writing to stderr.
func NewSpinner(msg string) *spinner.Spinner {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	s.Suffix = " " + msg
	return s
}

// Header renders a section header.
func Header(title string) string {
	return headerStyle.Render(title)
}

// NewTable returns a table writing to w with a bold header row.
func NewTable(w io.Writer, columns ...interface{}) table.Table {
	return table.New(columns...).
		WithWriter(w).
		WithHeaderFormatter(func(format string, vals ...interface{}) string {
			return headerStyle.Render(fmt.Sprintf(format, vals...))
		})
}
