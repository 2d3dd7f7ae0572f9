package settings

import (
	"regexp"
	"strings"
)

// MatchResult represents the result of capability matching
type MatchResult int

const (
	// NoMatch indicates no matching rule was found
	NoMatch MatchResult = iota
	// Allow indicates the capability matches an allow rule
	Allow
	// Deny indicates the capability matches a deny rule
	Deny
)

func (r MatchResult) String() string {
	switch r {
	case Allow:
		return "allow"
	case Deny:
		return "deny"
	default:
		return "none"
	}
}

// CapabilityMatcher handles wildcard matching of capability rules
type CapabilityMatcher struct{}

// NewCapabilityMatcher creates a new capability matcher
func NewCapabilityMatcher() *CapabilityMatcher {
	return &CapabilityMatcher{}
}

// Match checks if a capability matches a rule pattern.
// Patterns support:
//   - Exact match: "cmdrouter.op" (case-insensitive)
//   - Everything: "*"
//   - Node wildcard: "cmdrouter.perms.*" matches "cmdrouter.perms.grant"
//     and "cmdrouter.perms" itself
//   - Glob: "cmdrouter.*.list" matches "cmdrouter.perms.list"
func (cm *CapabilityMatcher) Match(capability, pattern string) bool {
	capability = strings.ToLower(strings.TrimSpace(capability))
	pattern = strings.ToLower(strings.TrimSpace(pattern))

	if pattern == "" || capability == "" {
		return false
	}
	if pattern == "*" || pattern == capability {
		return true
	}

	// Node wildcard: "a.b.*" covers the "a.b" subtree
	if strings.HasSuffix(pattern, ".*") {
		node := strings.TrimSuffix(pattern, ".*")
		if !strings.Contains(node, "*") {
			return capability == node || strings.HasPrefix(capability, node+".")
		}
	}

	if strings.Contains(pattern, "*") {
		return cm.matchGlobPattern(capability, pattern)
	}

	return false
}

// matchGlobPattern matches patterns with * wildcards
// Converts glob pattern to regex for matching
func (cm *CapabilityMatcher) matchGlobPattern(capability, pattern string) bool {
	// Escape regex special characters except *
	regexPattern := regexp.QuoteMeta(pattern)

	// Replace escaped \* with .*
	regexPattern = strings.ReplaceAll(regexPattern, `\*`, `.*`)

	re, err := regexp.Compile("^" + regexPattern + "$")
	if err != nil {
		return false
	}

	return re.MatchString(capability)
}

// MatchRules reports whether any of the patterns matches capability
func (cm *CapabilityMatcher) MatchRules(capability string, patterns []string) bool {
	for _, p := range patterns {
		if cm.Match(capability, p) {
			return true
		}
	}
	return false
}

// CheckCapability checks a capability against allow and deny rules.
// Deny rules take precedence over allow rules.
func (cm *CapabilityMatcher) CheckCapability(capability string, rules Rules) MatchResult {
	if cm.MatchRules(capability, rules.Deny) {
		return Deny
	}
	if cm.MatchRules(capability, rules.Allow) {
		return Allow
	}
	return NoMatch
}

// Rule is a single parsed capability rule
type Rule struct {
	Capability string
	Deny       bool
}

// ParseRule parses a rule string. A leading "-" marks a deny rule:
//   - "cmdrouter.op"   -> Rule{Capability: "cmdrouter.op"}
//   - "-cmdrouter.op"  -> Rule{Capability: "cmdrouter.op", Deny: true}
func ParseRule(s string) Rule {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "-") {
		return Rule{Capability: strings.TrimSpace(s[1:]), Deny: true}
	}
	return Rule{Capability: strings.TrimPrefix(s, "+")}
}

// FormatRule formats a Rule back to string
func FormatRule(r Rule) string {
	if r.Deny {
		return "-" + r.Capability
	}
	return r.Capability
}
