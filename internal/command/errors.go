package command

import "errors"

// Dispatch and execution failures. Matching failures are reported as data
// (ParseResult / executor outcomes); these values let callers branch with
// errors.Is.
var (
	ErrUnknownCommand        = errors.New("unknown command")
	ErrArgumentCount         = errors.New("incorrect number of arguments")
	ErrPermissionDenied      = errors.New("permission denied")
	ErrConsoleNotSupported   = errors.New("command cannot be executed from console")
	ErrNilHandler            = errors.New("command factory returned no handler")
	ErrDuplicateRegistration = errors.New("command already registered")
)

// Construction errors. A definition that fails any of these checks is never
// handed to a registry.
var (
	ErrMissingHandler = errors.New("command has no handler")
	ErrEmptyName      = errors.New("command name is empty")
	ErrEmptyPattern   = errors.New("command pattern has no literal tokens")
	ErrInvalidPattern = errors.New("invalid command pattern")
)
