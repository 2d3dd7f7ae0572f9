// Package cmd implements the cmdrouter command line host.
//
// # Architecture
//
// This package is organized into the following logical groups:
//
// ## Core CLI
//
//   - root.go: Main entry point, App struct, cobra command setup, flags and
//     runtime wiring (config, logging, locale, settings, registry, executor)
//   - commands.go: The commands and config subcommands
//   - grants.go: The grants subcommand for inspecting stored capabilities
//
// ## Registered Commands
//
//   - builtins.go: The host's own commands, one per shape:
//     static (help, whoami, reload, version), variable (perms, grant,
//     revoke, op, deop) and dynamic (help page <n>, say)
//
// ## Interactive Mode
//
//   - interactive.go: REPL session with registry-driven completion,
//     POSIX-style line splitting and persisted history
//
// # Key Components
//
// ## App
//
// The App struct holds configuration and the wired runtime. setup builds
// the runtime once; every entry point (one-shot dispatch, the REPL and the
// subcommands) goes through it.
//
// ## Callers
//
// One-shot commands run as the console unless --as names a player. The
// console is always elevated; players need capabilities or operator status.
//
// # Usage
//
//	// Main entry point
//	func main() {
//	    cmd.Execute()
//	}
package cmd
