package executor

import (
	"context"
	"fmt"

	"github.com/quocvuong92/cmdrouter/internal/command"
	"github.com/quocvuong92/cmdrouter/internal/logging"
)

// Message keys rendered through the TextSource.
const (
	KeyArgumentCount = "NUM_ARGS_ERR"
	KeyUnknown       = "NO_CMD"
	KeyPermission    = "PERMS_ERR"
	KeyNoConsole     = "NO_CONSOLE"
	KeyUsage         = "USAGE"
	KeyInstance      = "CMD_NULL_ERR"
)

// State is where an execution attempt ended.
type State int

const (
	// Executed means the handler ran (it may still have returned an error)
	Executed State = iota
	// PermissionDenied means a required capability was missing
	PermissionDenied
	// ConsoleNotSupported means the console called a player-only command
	ConsoleNotSupported
	// ArgumentCount means dispatch recognised a command with the wrong token count
	ArgumentCount
	// UnknownCommand means dispatch recognised nothing
	UnknownCommand
	// InstanceError means the command's factory produced no handler
	InstanceError
)

func (s State) String() string {
	switch s {
	case Executed:
		return "executed"
	case PermissionDenied:
		return "permission_denied"
	case ConsoleNotSupported:
		return "console_not_supported"
	case ArgumentCount:
		return "argument_count"
	case UnknownCommand:
		return "unknown_command"
	case InstanceError:
		return "instance_error"
	default:
		return "unknown"
	}
}

// Outcome reports what happened to one command line.
type Outcome struct {
	State      State
	Definition *command.Definition
	// Invocation is set only when the handler ran
	Invocation *command.Invocation
	// Missing is the first capability the caller lacked
	Missing string
	// HandlerErr is whatever the handler returned
	HandlerErr error
}

// Err maps the outcome to a sentinel error. For an executed command it is
// the handler's error, if any.
func (o Outcome) Err() error {
	switch o.State {
	case Executed:
		return o.HandlerErr
	case PermissionDenied:
		return command.ErrPermissionDenied
	case ConsoleNotSupported:
		return command.ErrConsoleNotSupported
	case ArgumentCount:
		return command.ErrArgumentCount
	case InstanceError:
		return command.ErrNilHandler
	default:
		return command.ErrUnknownCommand
	}
}

// Executor turns dispatch results into handler invocations. It holds no
// per-call state and is safe for concurrent use.
type Executor struct {
	registry *command.Registry
	checker  *PermissionChecker
	text     TextSource
	sink     Sink
	logger   *logging.Logger
}

// Option configures an Executor.
type Option func(*Executor)

// WithText sets the source of user-visible failure messages.
func WithText(t TextSource) Option {
	return func(e *Executor) { e.text = t }
}

// WithSink sets where user-visible messages are delivered.
func WithSink(s Sink) Option {
	return func(e *Executor) { e.sink = s }
}

// WithLogger sets the logger for execution traces and handler errors.
func WithLogger(l *logging.Logger) Option {
	return func(e *Executor) { e.logger = l }
}

// New creates an executor over reg, checking capabilities against caps.
func New(reg *command.Registry, caps CapabilitySource, opts ...Option) *Executor {
	e := &Executor{
		registry: reg,
		checker:  NewPermissionChecker(caps),
		logger:   logging.DefaultLogger,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run dispatches tokens against the registry and executes the result.
func (e *Executor) Run(ctx context.Context, caller command.Caller, tokens []string) Outcome {
	return e.Execute(ctx, caller, e.registry.Dispatch(tokens))
}

// Execute carries a dispatch result through the capability check, the
// console check and, if both pass, a single handler call on a fresh
// invocation.
func (e *Executor) Execute(ctx context.Context, caller command.Caller, res command.ParseResult) Outcome {
	switch res.Status {
	case command.BadArgCount:
		e.notify(caller, e.message(KeyArgumentCount))
		if res.Definition != nil {
			e.notify(caller, e.message(KeyUsage)+res.Definition.Syntax())
		}
		return Outcome{State: ArgumentCount, Definition: res.Definition}
	case command.Success:
		if res.Definition != nil {
			break
		}
		fallthrough
	default:
		e.notify(caller, e.message(KeyUnknown))
		return Outcome{State: UnknownCommand}
	}

	def := res.Definition
	tokens := res.Tokens
	if tokens == nil {
		tokens = def.Pattern().Literals()
	}

	switch result, missing := e.checker.Check(caller, def); result {
	case MissingCapability:
		e.logger.Debug("capability check failed", logging.Fields{
			"command":    def.Name(),
			"caller":     callerName(caller),
			"capability": missing,
		})
		e.notify(caller, e.message(KeyPermission))
		return Outcome{State: PermissionDenied, Definition: def, Missing: missing}
	case ConsoleRejected:
		e.notify(caller, e.message(KeyNoConsole))
		return Outcome{State: ConsoleNotSupported, Definition: def}
	}

	handler := newHandler(def)
	if handler == nil {
		e.logger.Error("command instance failed", command.ErrNilHandler, logging.Fields{
			"command": def.Name(),
			"caller":  callerName(caller),
		})
		e.notify(caller, e.message(KeyInstance))
		return Outcome{State: InstanceError, Definition: def}
	}

	inv := command.NewInvocation(def, caller, tokens)
	err := e.invoke(ctx, def, handler, inv)
	if err != nil {
		e.logger.Error("command failed", err, logging.Fields{
			"command":    def.Name(),
			"invocation": inv.ID,
			"caller":     callerName(caller),
		})
		e.notify(caller, err.Error())
	}
	return Outcome{State: Executed, Definition: def, Invocation: inv, HandlerErr: err}
}

// invoke runs the handler once. A panicking handler is reported as an error
// so one bad command cannot take the host down.
func (e *Executor) invoke(ctx context.Context, def *command.Definition, h command.Handler, inv *command.Invocation) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("command %s panicked: %v", def.Name(), r)
		}
	}()

	e.logger.Debug("executing command", logging.Fields{
		"command":    def.Name(),
		"shape":      def.Shape().String(),
		"invocation": inv.ID,
		"args":       len(inv.Args),
	})
	return h.Execute(ctx, inv)
}

// newHandler builds the per-call handler; a panicking factory counts as
// producing none.
func newHandler(def *command.Definition) (h command.Handler) {
	defer func() {
		if recover() != nil {
			h = nil
		}
	}()
	return def.NewHandler()
}

func (e *Executor) message(key string) string {
	if e.text == nil {
		return fallbackText(key)
	}
	return e.text.Text(key)
}

// notify sends msg to an interactive caller, or to the console log for
// console callers.
func (e *Executor) notify(caller command.Caller, msg string) {
	if e.sink == nil || msg == "" {
		return
	}
	if caller == nil || caller.Kind() == command.Console {
		e.sink.SendConsole(logging.LevelWarn, msg)
		return
	}
	e.sink.SendPlayer(caller, msg)
}

func callerName(c command.Caller) string {
	if c == nil {
		return ""
	}
	return c.Name()
}

var fallbackMessages = map[string]string{
	KeyArgumentCount: "An incorrect number of arguments was specified.",
	KeyUnknown:       "An invalid command was specified.",
	KeyPermission:    "You do not have permission to execute this command.",
	KeyNoConsole:     "This command cannot be executed from Console.",
	KeyUsage:         "Usage: ",
	KeyInstance:      "An error occurred while generating a Command Instance. The command has been aborted.",
}

func fallbackText(key string) string {
	if msg, ok := fallbackMessages[key]; ok {
		return msg
	}
	return "Invalid Translation-Key: " + key
}
