package executor

import (
	"github.com/quocvuong92/cmdrouter/internal/command"
)

// PermissionResult is the outcome of the pre-execution checks
type PermissionResult int

const (
	// Permitted lets the handler run
	Permitted PermissionResult = iota
	// MissingCapability means a required capability is not held
	MissingCapability
	// ConsoleRejected means the console called a player-only command
	ConsoleRejected
)

// PermissionChecker runs the capability check and then the console check
// for a caller against a definition.
type PermissionChecker struct {
	caps CapabilitySource
}

// NewPermissionChecker creates a checker backed by caps. A nil source
// grants nothing and elevates nobody.
func NewPermissionChecker(caps CapabilitySource) *PermissionChecker {
	return &PermissionChecker{caps: caps}
}

// Check returns Permitted or the first failing check, plus the missing
// capability when the capability check failed.
func (pc *PermissionChecker) Check(caller command.Caller, def *command.Definition) (PermissionResult, string) {
	if missing, ok := pc.missingCapability(caller, def); !ok {
		return MissingCapability, missing
	}

	if caller != nil && caller.Kind() == command.Console && !def.ConsoleEligible() {
		return ConsoleRejected, ""
	}

	return Permitted, ""
}

func (pc *PermissionChecker) missingCapability(caller command.Caller, def *command.Definition) (string, bool) {
	caps := def.Capabilities()
	if len(caps) == 0 {
		return "", true
	}
	if pc.caps == nil {
		return caps[0], false
	}
	if pc.caps.IsElevated(caller) {
		return "", true
	}
	for _, c := range caps {
		if !pc.caps.HasCapability(caller, c) {
			return c, false
		}
	}
	return "", true
}
