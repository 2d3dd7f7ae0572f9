package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/buildkite/shellwords"
	"github.com/elk-language/go-prompt"
	istrings "github.com/elk-language/go-prompt/strings"

	"github.com/quocvuong92/cmdrouter/internal/command"
	"github.com/quocvuong92/cmdrouter/internal/constants"
	"github.com/quocvuong92/cmdrouter/internal/display"
	"github.com/quocvuong92/cmdrouter/internal/history"
)

// InteractiveSession holds the state for an interactive prompt session.
type InteractiveSession struct {
	app         *App
	caller      command.Caller
	exitFlag    bool
	inputBuffer []string // Buffer for multiline input
	history     history.HistoryManager
}

// Session-local words handled before dispatch
var sessionCommands = []prompt.Suggest{
	{Text: "exit", Description: "Exit interactive mode"},
	{Text: "quit", Description: "Exit interactive mode"},
	{Text: "history", Description: "Show recent command lines"},
	{Text: "clear-session", Description: "Drop grants made for this session"},
}

// newSession builds a session for the configured caller
func (app *App) newSession(hist history.HistoryManager) *InteractiveSession {
	return &InteractiveSession{
		app:     app,
		caller:  callerFor(app.cfg),
		history: hist,
	}
}

// completer suggests the next literal of every command consistent with
// what has been typed so far.
func (s *InteractiveSession) completer(d prompt.Document) ([]prompt.Suggest, istrings.RuneNumber, istrings.RuneNumber) {
	text := d.TextBeforeCursor()
	endIndex := d.CurrentRuneIndex()
	w := d.GetWordBeforeCursor()
	startIndex := endIndex - istrings.RuneCountInString(w)

	return prompt.FilterHasPrefix(s.suggestions(text), w, true), startIndex, endIndex
}

func (s *InteractiveSession) suggestions(text string) []prompt.Suggest {
	typed := strings.Fields(text)
	if len(typed) == 0 || strings.HasSuffix(text, " ") {
		typed = append(typed, "")
	}
	pos := len(typed) - 1

	var out []prompt.Suggest
	seen := make(map[string]bool)
	for _, def := range s.app.registry.Completions(typed) {
		lits := def.Pattern().Literals()
		if pos >= len(lits) {
			continue
		}
		word := lits[pos]
		if seen[strings.ToLower(word)] {
			continue
		}
		seen[strings.ToLower(word)] = true
		desc := def.Help()
		if pos == len(lits)-1 {
			desc = def.Syntax() + " - " + desc
		}
		out = append(out, prompt.Suggest{Text: word, Description: desc})
	}

	if pos == 0 {
		out = append(out, sessionCommands...)
	}
	return out
}

// runInteractive starts the interactive mode with a REPL interface.
// Lines are split like a POSIX shell so quoted arguments stay together;
// end a line with \ to continue it.
func (app *App) runInteractive() {
	hist := history.NewHistory()
	if app.cfg.HistoryPath != "" {
		hist = history.NewHistoryAt(app.cfg.HistoryPath)
	}
	hist.SetMaxEntries(constants.DefaultHistorySize)
	if err := hist.Load(); err != nil {
		// History load failed, continue without it
		display.ShowWarning(fmt.Sprintf("Could not load history: %v", err))
	}

	session := app.newSession(hist)

	fmt.Fprintln(app.out, "cmdrouter - Interactive Mode")
	fmt.Fprintf(app.out, "Caller: %s (%s)\n", session.caller.Name(), session.caller.Kind())
	fmt.Fprintf(app.out, "Language: %s\n", app.catalog.Language())
	fmt.Fprintln(app.out, "Type help for commands, Ctrl+C or Ctrl+D to quit")
	fmt.Fprintln(app.out, "End a line with \\ for multiline input")
	fmt.Fprintln(app.out)

	if err := display.InitRenderer(); err != nil {
		app.logger.Debug("markdown renderer unavailable: " + err.Error())
	}

	p := prompt.New(
		session.execute,
		prompt.WithCompleter(session.completer),
		prompt.WithHistory(hist.Lines()),
		prompt.WithPrefix(session.caller.Name()+"> "),
		prompt.WithTitle("cmdrouter"),
		prompt.WithPrefixTextColor(prompt.Green),
		prompt.WithSuggestionBGColor(prompt.DarkBlue),
		prompt.WithSuggestionTextColor(prompt.White),
		prompt.WithSelectedSuggestionBGColor(prompt.Cyan),
		prompt.WithSelectedSuggestionTextColor(prompt.Black),
		prompt.WithDescriptionBGColor(prompt.DarkBlue),
		prompt.WithDescriptionTextColor(prompt.LightGray),
		prompt.WithSelectedDescriptionBGColor(prompt.Cyan),
		prompt.WithSelectedDescriptionTextColor(prompt.Black),
		prompt.WithScrollbarBGColor(prompt.DarkGray),
		prompt.WithScrollbarThumbColor(prompt.White),
		prompt.WithMaxSuggestion(15),
		prompt.WithCompletionOnDown(),
		prompt.WithExitChecker(func(in string, breakline bool) bool {
			return session.exitFlag
		}),
		prompt.WithKeyBind(prompt.KeyBind{
			Key: prompt.ControlC,
			Fn: func(p *prompt.Prompt) bool {
				fmt.Fprintln(app.out, "\nGoodbye!")
				session.saveHistory()
				session.exitFlag = true
				return false
			},
		}),
		prompt.WithKeyBind(prompt.KeyBind{
			Key: prompt.ControlD,
			Fn: func(p *prompt.Prompt) bool {
				if p.Buffer().Text() == "" {
					fmt.Fprintln(app.out, "Goodbye!")
					session.saveHistory()
					session.exitFlag = true
				}
				return false
			},
		}),
	)

	p.Run()
}

// saveHistory persists typed lines to the history file.
func (s *InteractiveSession) saveHistory() {
	if s.history == nil {
		return
	}
	if err := s.history.Save(); err != nil {
		display.ShowWarning(fmt.Sprintf("Could not save history: %v", err))
	}
}

// execute handles one line from the prompt.
func (s *InteractiveSession) execute(input string) {
	if s.exitFlag {
		return
	}
	if s.handleLine(context.Background(), input) {
		s.saveHistory()
		s.exitFlag = true
	}
}

// handleLine processes multiline continuation, session words and command
// dispatch. It returns true when the session should end.
func (s *InteractiveSession) handleLine(ctx context.Context, input string) bool {
	// Handle multiline input with backslash continuation
	if strings.HasSuffix(input, "\\") {
		s.inputBuffer = append(s.inputBuffer, strings.TrimSuffix(input, "\\"))
		fmt.Fprint(s.app.out, "... ")
		return false
	}
	if len(s.inputBuffer) > 0 {
		s.inputBuffer = append(s.inputBuffer, input)
		input = strings.Join(s.inputBuffer, " ")
		s.inputBuffer = nil
	}

	input = strings.TrimSpace(input)
	if input == "" {
		return false
	}

	switch strings.ToLower(input) {
	case "exit", "quit":
		fmt.Fprintln(s.app.out, "Goodbye!")
		return true
	case "history":
		s.showHistory()
		return false
	case "clear-session":
		s.app.store.Manager().ClearSessionGrants()
		fmt.Fprintln(s.app.out, "Session grants cleared.")
		return false
	}

	tokens, err := shellwords.SplitPosix(input)
	if err != nil {
		display.ShowError(err.Error())
		return false
	}

	outcome := s.app.dispatch(ctx, s.caller, tokens)
	if s.history != nil {
		s.history.Add(history.Entry{
			Line:   input,
			Caller: s.caller.Name(),
			Result: outcome.State.String(),
		})
	}
	return false
}

// showHistory prints the most recent lines as a table.
func (s *InteractiveSession) showHistory() {
	if s.history == nil {
		fmt.Fprintln(s.app.out, "History not available.")
		return
	}
	entries := s.history.Recent(10)
	if len(entries) == 0 {
		fmt.Fprintln(s.app.out, "No command history.")
		return
	}

	tbl := display.NewTable(s.app.out, "When", "Caller", "Line", "Result")
	for _, e := range entries {
		tbl.AddRow(e.At.Format("2006-01-02 15:04"), e.Caller, e.Line, e.Result)
	}
	tbl.Print()
}
