// Package executor runs dispatched commands after capability and console
// checks.
package executor

import (
	"context"

	"github.com/quocvuong92/cmdrouter/internal/command"
	"github.com/quocvuong92/cmdrouter/internal/logging"
)

// CommandExecutor defines the interface for executing resolved commands.
// This interface enables dependency injection and easier testing.
type CommandExecutor interface {
	// Execute runs the definition carried by a dispatch result
	Execute(ctx context.Context, caller command.Caller, res command.ParseResult) Outcome

	// Run dispatches tokens and executes the result
	Run(ctx context.Context, caller command.Caller, tokens []string) Outcome
}

// CapabilitySource answers permission questions about a caller.
type CapabilitySource interface {
	// HasCapability reports whether caller holds the capability
	HasCapability(caller command.Caller, capability string) bool

	// IsElevated reports whether caller bypasses capability checks
	IsElevated(caller command.Caller) bool
}

// TextSource resolves a message key to display text.
type TextSource interface {
	Text(key string) string
}

// Sink delivers user-visible messages.
type Sink interface {
	// SendPlayer delivers a message to an interactive caller
	SendPlayer(caller command.Caller, msg string)

	// SendConsole writes an operational message at the given level
	SendConsole(level logging.Level, msg string)
}

// Ensure concrete types implement the interfaces
var _ CommandExecutor = (*Executor)(nil)
var _ command.TextSource = TextSource(nil)
