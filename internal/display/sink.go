package display

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/quocvuong92/cmdrouter/internal/command"
	"github.com/quocvuong92/cmdrouter/internal/logging"
)

// Sink delivers command output. Player messages go to the terminal with a
// "[Name] " prefix; console messages go to the logger.
type Sink struct {
	mu     sync.Mutex
	out    io.Writer
	name   string
	logger *logging.Logger
}

// NewSink creates a sink that prefixes messages with name. A nil out writes
// to stdout; a nil logger uses the default logger.
func NewSink(name string, out io.Writer, logger *logging.Logger) *Sink {
	if out == nil {
		out = os.Stdout
	}
	if logger == nil {
		logger = logging.DefaultLogger
	}
	return &Sink{out: out, name: name, logger: logger}
}

// Prefix returns the styled "[Name] " tag.
func (s *Sink) Prefix() string {
	if s.name == "" {
		return ""
	}
	return prefixStyle.Render("["+s.name+"]") + " "
}

// SendPlayer writes a prefixed message for an interactive caller.
func (s *Sink) SendPlayer(caller command.Caller, msg string) {
	s.write(s.Prefix() + msg)
}

// SendPlayerPlain writes msg without the name prefix.
func (s *Sink) SendPlayerPlain(caller command.Caller, msg string) {
	s.write(msg)
}

// SendConsole logs a prefixed message at level.
func (s *Sink) SendConsole(level logging.Level, msg string) {
	if s.name != "" {
		msg = "[" + s.name + "] " + msg
	}
	s.logger.Log(level, msg)
}

// Send routes msg by caller kind: console callers get a log line, everyone
// else a terminal line.
func (s *Sink) Send(caller command.Caller, msg string) {
	if caller == nil || caller.Kind() == command.Console {
		s.SendConsole(logging.LevelInfo, msg)
		return
	}
	s.SendPlayer(caller, msg)
}

// Sendf is Send with formatting.
func (s *Sink) Sendf(caller command.Caller, format string, args ...interface{}) {
	s.Send(caller, fmt.Sprintf(format, args...))
}

// Writer returns the terminal writer, for tables and rendered blocks.
func (s *Sink) Writer() io.Writer {
	return s.out
}

func (s *Sink) write(line string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintln(s.out, line)
}
