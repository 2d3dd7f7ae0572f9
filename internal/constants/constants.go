// Package constants provides shared constants used across the application
// to avoid circular dependencies between packages.
package constants

import "time"

// AppName names config, settings and data directories
const AppName = "cmdrouter"

// Version is the host application version
const Version = "0.1.0"

// Application defaults
const (
	DefaultLanguage   = "en"
	DefaultPluginName = "cmdrouter"
	DefaultLogLevel   = "info"
	DefaultLogFormat  = "text"
	// DefaultCaller runs one-shot commands as the console
	DefaultCaller = "console"
)

// Limits used across the application
const (
	// DefaultHistorySize bounds the REPL history file
	DefaultHistorySize = 500
	// DefaultHelpPageSize is the number of commands per help page
	DefaultHelpPageSize = 8
	// DefaultReloadTimeout bounds a settings reload
	DefaultReloadTimeout = 10 * time.Second
)

// Capability nodes checked by the built-in commands
const (
	CapPermsView   = "cmdrouter.perms.view"
	CapPermsGrant  = "cmdrouter.perms.grant"
	CapPermsRevoke = "cmdrouter.perms.revoke"
	CapOp          = "cmdrouter.op"
	CapReload      = "cmdrouter.reload"
	CapSay         = "cmdrouter.say"
)
