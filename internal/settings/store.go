package settings

import (
	"fmt"
	"strings"

	"github.com/quocvuong92/cmdrouter/internal/command"
)

// Store answers capability questions for the executor and applies grant
// changes made by the perms commands.
type Store struct {
	manager *Manager
	matcher *CapabilityMatcher
}

// NewStore wraps a loaded Manager
func NewStore(m *Manager) *Store {
	return &Store{
		manager: m,
		matcher: NewCapabilityMatcher(),
	}
}

// Manager returns the underlying settings manager
func (s *Store) Manager() *Manager {
	return s.manager
}

// HasCapability reports whether the caller holds capability. Deny rules win
// over allow rules; defaults apply to everyone.
func (s *Store) HasCapability(caller command.Caller, capability string) bool {
	if caller == nil {
		return false
	}
	rules := s.manager.EffectiveRules(caller.Name())
	return s.matcher.CheckCapability(capability, rules) == Allow
}

// IsElevated reports whether the caller skips capability checks. The
// console always does; players do when they are operators.
func (s *Store) IsElevated(caller command.Caller) bool {
	if caller == nil {
		return false
	}
	if caller.Kind() == command.Console {
		return true
	}
	return s.manager.IsOperator(caller.Name())
}

// Grant applies a rule string ("cap" or "-cap") to player. Allow rules
// that are not persisted only last for the session.
func (s *Store) Grant(player, rule string, persist bool) (Rule, error) {
	r := ParseRule(rule)
	if strings.TrimSpace(player) == "" || r.Capability == "" {
		return r, fmt.Errorf("grant: player and capability are required")
	}

	if !persist && !r.Deny {
		s.manager.AddSessionGrant(player, r.Capability)
		return r, nil
	}

	if r.Deny {
		s.manager.AddDenyRule(player, r.Capability)
	} else {
		s.manager.AddAllowRule(player, r.Capability)
	}
	if err := s.manager.Save(); err != nil {
		return r, fmt.Errorf("failed to save settings: %w", err)
	}
	return r, nil
}

// Revoke removes a capability pattern from player's rules. It reports
// whether the player had it.
func (s *Store) Revoke(player, capability string) (bool, error) {
	removed := s.manager.RemoveRule(player, strings.TrimSpace(capability))
	if !removed {
		return false, nil
	}
	if err := s.manager.Save(); err != nil {
		return true, fmt.Errorf("failed to save settings: %w", err)
	}
	return true, nil
}

// Op makes player an operator and persists the change
func (s *Store) Op(player string) (bool, error) {
	if strings.TrimSpace(player) == "" {
		return false, fmt.Errorf("op: player is required")
	}
	if !s.manager.AddOperator(player) {
		return false, nil
	}
	if err := s.manager.Save(); err != nil {
		return true, fmt.Errorf("failed to save settings: %w", err)
	}
	return true, nil
}

// Deop clears operator status and persists the change
func (s *Store) Deop(player string) (bool, error) {
	if !s.manager.RemoveOperator(player) {
		return false, nil
	}
	if err := s.manager.Save(); err != nil {
		return true, fmt.Errorf("failed to save settings: %w", err)
	}
	return true, nil
}

// Describe returns a player's operator status and their own rules
func (s *Store) Describe(player string) (operator bool, rules Rules) {
	return s.manager.IsOperator(player), s.manager.PlayerRules(player)
}

// Reload re-reads settings from disk, keeping session grants
func (s *Store) Reload() error {
	return s.manager.Load()
}
