package settings

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

const (
	// AppName is the application name used for settings directories
	AppName = "cmdrouter"

	// SettingsFile is the name of the settings file
	SettingsFile = "settings.json"

	// ProjectSettingsDir is the directory name for project-level settings
	ProjectSettingsDir = ".cmdrouter"
)

// Rules holds allow and deny capability patterns
type Rules struct {
	Allow []string `json:"allow"` // Capabilities granted
	Deny  []string `json:"deny"`  // Capabilities revoked (takes precedence)
}

func (r Rules) clone() Rules {
	return Rules{
		Allow: append([]string{}, r.Allow...),
		Deny:  append([]string{}, r.Deny...),
	}
}

// Settings represents the persisted capability grants
type Settings struct {
	// Operators are elevated and skip capability checks
	Operators []string `json:"operators"`

	// Defaults apply to every player
	Defaults Rules `json:"defaults"`

	// Players maps a lower-cased player name to their own rules
	Players map[string]Rules `json:"players"`
}

// Manager handles loading, saving, and merging settings from multiple sources
type Manager struct {
	mu            sync.RWMutex
	global        *Settings // ~/.local/share/cmdrouter/settings.json
	project       *Settings // ./.cmdrouter/settings.json
	merged        *Settings // Merged effective settings
	globalPath    string
	projectPath   string
	sessionGrants map[string][]string // Session-only grants (not persisted)
}

// NewManager creates a new settings manager
func NewManager() *Manager {
	return &Manager{
		global:        DefaultSettings(),
		merged:        DefaultSettings(),
		sessionGrants: make(map[string][]string),
	}
}

// DefaultSettings returns settings with nothing granted
func DefaultSettings() *Settings {
	return &Settings{
		Operators: []string{},
		Defaults: Rules{
			Allow: []string{},
			Deny:  []string{},
		},
		Players: make(map[string]Rules),
	}
}

func key(player string) string {
	return strings.ToLower(strings.TrimSpace(player))
}

// SetGlobalPath overrides the global settings file location
func (m *Manager) SetGlobalPath(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.globalPath = path
}

// Load loads settings from all sources and merges them
func (m *Manager) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.globalPath == "" {
		globalPath, err := getGlobalSettingsPath()
		if err != nil {
			return err
		}
		m.globalPath = globalPath
	}

	global, err := loadFromFile(m.globalPath)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	if global != nil {
		m.global = global
	} else {
		m.global = DefaultSettings()
	}

	// Project settings are optional; a broken file is ignored
	projectPath, err := getProjectSettingsPath()
	if err == nil {
		m.projectPath = projectPath
		project, err := loadFromFile(projectPath)
		if err != nil {
			m.project = nil
		} else {
			m.project = project
		}
	}

	m.merged = m.mergeSettings()
	return nil
}

// getGlobalSettingsPath returns the path to global settings file
func getGlobalSettingsPath() (string, error) {
	// Use XDG_DATA_HOME or default to ~/.local/share
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	return filepath.Join(dataHome, AppName, SettingsFile), nil
}

// getProjectSettingsPath returns the path to project settings file
func getProjectSettingsPath() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}

	return filepath.Join(cwd, ProjectSettingsDir, SettingsFile), nil
}

// loadFromFile loads settings from a JSON file
func loadFromFile(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	s := DefaultSettings()
	if err := json.Unmarshal(data, s); err != nil {
		return nil, err
	}
	if s.Players == nil {
		s.Players = make(map[string]Rules)
	}

	// Normalize player keys so lookups are case-insensitive
	players := make(map[string]Rules, len(s.Players))
	for name, rules := range s.Players {
		k := key(name)
		existing := players[k]
		existing.Allow = append(existing.Allow, rules.Allow...)
		existing.Deny = append(existing.Deny, rules.Deny...)
		players[k] = existing
	}
	s.Players = players

	return s, nil
}

// mergeSettings merges global and project settings.
// Rules from both sources are combined; deny still wins at check time.
func (m *Manager) mergeSettings() *Settings {
	merged := DefaultSettings()

	for _, src := range []*Settings{m.global, m.project} {
		if src == nil {
			continue
		}
		merged.Operators = appendUnique(merged.Operators, src.Operators...)
		merged.Defaults.Allow = append(merged.Defaults.Allow, src.Defaults.Allow...)
		merged.Defaults.Deny = append(merged.Defaults.Deny, src.Defaults.Deny...)
		for name, rules := range src.Players {
			r := merged.Players[name]
			r.Allow = append(r.Allow, rules.Allow...)
			r.Deny = append(r.Deny, rules.Deny...)
			merged.Players[name] = r
		}
	}

	return merged
}

func appendUnique(list []string, values ...string) []string {
	for _, v := range values {
		found := false
		for _, existing := range list {
			if strings.EqualFold(existing, v) {
				found = true
				break
			}
		}
		if !found {
			list = append(list, v)
		}
	}
	return list
}

func remove(list []string, value string) ([]string, bool) {
	out := list[:0]
	removed := false
	for _, v := range list {
		if strings.EqualFold(v, value) {
			removed = true
			continue
		}
		out = append(out, v)
	}
	return out, removed
}

// Save saves settings to the global settings file
func (m *Manager) Save() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.globalPath == "" {
		path, err := getGlobalSettingsPath()
		if err != nil {
			return err
		}
		m.globalPath = path
	}

	return saveToFile(m.globalPath, m.global)
}

// saveToFile saves settings to a JSON file
func saveToFile(path string, settings *Settings) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// GetMerged returns the merged effective settings (read-only)
func (m *Manager) GetMerged() *Settings {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.merged
}

// GetGlobal returns the global settings
func (m *Manager) GetGlobal() *Settings {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.global
}

// GetGlobalPath returns the path to the global settings file
func (m *Manager) GetGlobalPath() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.globalPath
}

// GetProjectPath returns the path to the project settings file
func (m *Manager) GetProjectPath() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.projectPath
}

// AddAllowRule grants a capability pattern to a player in global settings
func (m *Manager) AddAllowRule(player, capability string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := key(player)
	r := m.global.Players[k]
	r.Deny, _ = remove(r.Deny, capability)
	r.Allow = appendUnique(r.Allow, capability)
	m.global.Players[k] = r
	m.merged = m.mergeSettings()
}

// AddDenyRule denies a capability pattern to a player in global settings
func (m *Manager) AddDenyRule(player, capability string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := key(player)
	r := m.global.Players[k]
	r.Allow, _ = remove(r.Allow, capability)
	r.Deny = appendUnique(r.Deny, capability)
	m.global.Players[k] = r
	m.merged = m.mergeSettings()
}

// RemoveRule drops a capability pattern from both of a player's lists,
// including session grants. It reports whether anything was removed.
func (m *Manager) RemoveRule(player, capability string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := key(player)
	r, ok := m.global.Players[k]
	var fromAllow, fromDeny bool
	if ok {
		r.Allow, fromAllow = remove(r.Allow, capability)
		r.Deny, fromDeny = remove(r.Deny, capability)
		if len(r.Allow) == 0 && len(r.Deny) == 0 {
			delete(m.global.Players, k)
		} else {
			m.global.Players[k] = r
		}
	}
	var fromSession bool
	m.sessionGrants[k], fromSession = remove(m.sessionGrants[k], capability)
	m.merged = m.mergeSettings()

	return fromAllow || fromDeny || fromSession
}

// AddOperator marks a player as an operator. It returns false if they
// already were one.
func (m *Manager) AddOperator(player string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	before := len(m.global.Operators)
	m.global.Operators = appendUnique(m.global.Operators, strings.TrimSpace(player))
	m.merged = m.mergeSettings()
	return len(m.global.Operators) != before
}

// RemoveOperator clears a player's operator status
func (m *Manager) RemoveOperator(player string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	var removed bool
	m.global.Operators, removed = remove(m.global.Operators, strings.TrimSpace(player))
	m.merged = m.mergeSettings()
	return removed
}

// IsOperator checks the merged operator list
func (m *Manager) IsOperator(player string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, op := range m.merged.Operators {
		if strings.EqualFold(op, strings.TrimSpace(player)) {
			return true
		}
	}
	return false
}

// Operators returns the merged operator list, sorted
func (m *Manager) Operators() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := append([]string{}, m.merged.Operators...)
	sort.Strings(out)
	return out
}

// Players returns the names that have rules of their own, sorted
func (m *Manager) Players() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	seen := make(map[string]bool)
	for name := range m.merged.Players {
		seen[name] = true
	}
	for name, grants := range m.sessionGrants {
		if len(grants) > 0 {
			seen[name] = true
		}
	}
	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// PlayerRules returns the player's own rules plus session grants, without
// the defaults
func (m *Manager) PlayerRules(player string) Rules {
	m.mu.RLock()
	defer m.mu.RUnlock()

	k := key(player)
	r := m.merged.Players[k].clone()
	r.Allow = append(r.Allow, m.sessionGrants[k]...)
	return r
}

// EffectiveRules returns defaults, player rules and session grants combined
func (m *Manager) EffectiveRules(player string) Rules {
	m.mu.RLock()
	defer m.mu.RUnlock()

	k := key(player)
	r := m.merged.Defaults.clone()
	own := m.merged.Players[k]
	r.Allow = append(r.Allow, own.Allow...)
	r.Allow = append(r.Allow, m.sessionGrants[k]...)
	r.Deny = append(r.Deny, own.Deny...)
	return r
}

// AddSessionGrant grants a capability until the session ends (not persisted)
func (m *Manager) AddSessionGrant(player, capability string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := key(player)
	m.sessionGrants[k] = appendUnique(m.sessionGrants[k], capability)
}

// ClearSessionGrants clears all session-only grants
func (m *Manager) ClearSessionGrants() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sessionGrants = make(map[string][]string)
}
