package command

import (
	"strings"
	"sync"

	"github.com/quocvuong92/cmdrouter/internal/logging"
)

// TextSource resolves a message key to display text.
type TextSource interface {
	Text(key string) string
}

// Registry owns an ordered set of definitions and resolves input against
// them. Registration is expected to finish before dispatch traffic starts;
// Dispatch only takes the read lock.
type Registry struct {
	mu     sync.RWMutex
	defs   []*Definition
	logger *logging.Logger
	text   TextSource
	debug  bool
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithLogger sets the logger used for registration warnings and debug traces.
func WithLogger(l *logging.Logger) RegistryOption {
	return func(r *Registry) { r.logger = l }
}

// WithText sets the text source for registration warnings.
func WithText(t TextSource) RegistryOption {
	return func(r *Registry) { r.text = t }
}

// WithDebug logs every compared position at debug level.
func WithDebug(enabled bool) RegistryOption {
	return func(r *Registry) { r.debug = enabled }
}

// NewRegistry returns an empty registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{logger: logging.DefaultLogger}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// SetDebug toggles debug tracing.
func (r *Registry) SetDebug(enabled bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.debug = enabled
}

// Register appends def. It returns false and logs a warning when def, a
// definition with the same name, or one with the same pattern and shape is
// already registered.
func (r *Registry) Register(def *Definition) bool {
	if def == nil {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing := r.conflict(def); existing != nil {
		msg := "Failed to register command. Perhaps it is already registered? Command-ID: "
		if r.text != nil {
			msg = r.text.Text("CMD_REG_ERR")
		}
		r.logger.Warn(msg+def.Name(), logging.Fields{
			"command":  def.Name(),
			"pattern":  def.Pattern().String(),
			"conflict": existing.Name(),
			"error":    ErrDuplicateRegistration.Error(),
		})
		return false
	}

	r.defs = append(r.defs, def)
	return true
}

// RegisterStore registers a batch of definitions in order and returns how
// many were accepted.
func (r *Registry) RegisterStore(defs ...*Definition) int {
	n := 0
	for _, d := range defs {
		if r.Register(d) {
			n++
		}
	}
	return n
}

func (r *Registry) conflict(def *Definition) *Definition {
	for _, d := range r.defs {
		if d == def || strings.EqualFold(d.name, def.name) {
			return d
		}
		if d.shape == def.shape && d.pattern.Equal(def.pattern) {
			return d
		}
	}
	return nil
}

// Lookup finds a definition by name, case-insensitively.
func (r *Registry) Lookup(name string) (*Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, d := range r.defs {
		if strings.EqualFold(d.name, name) {
			return d, true
		}
	}
	return nil, false
}

// All returns the definitions in registration order.
func (r *Registry) All() []*Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Definition, len(r.defs))
	copy(out, r.defs)
	return out
}

// Len returns the number of registered definitions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.defs)
}

// Dispatch resolves tokens to at most one definition. The first Match in
// registration order wins; failing that, the first ArgCountMismatch is
// reported so the caller hears "wrong number of arguments" instead of
// "unknown command".
func (r *Registry) Dispatch(tokens []string) ParseResult {
	r.mu.RLock()
	defer r.mu.RUnlock()

	input := make([]string, len(tokens))
	copy(input, tokens)

	var countErr *Definition
	for _, d := range r.defs {
		switch compare(d, input, r.tracer(d)) {
		case Match:
			return ParseResult{Status: Success, Definition: d, Tokens: input}
		case ArgCountMismatch:
			if countErr == nil {
				countErr = d
			}
		}
	}

	if countErr != nil {
		return ParseResult{Status: BadArgCount, Definition: countErr, Tokens: input}
	}
	return ParseResult{Status: Fail, Tokens: input}
}

func (r *Registry) tracer(d *Definition) traceFunc {
	if !r.debug {
		return nil
	}
	return func(pos int, expected, received slot) {
		r.logger.Debug("compare", logging.Fields{
			"command":  d.name,
			"position": pos,
			"expected": slotString(expected),
			"received": slotString(received),
		})
	}
}

func slotString(s slot) string {
	if s.absent {
		return "null"
	}
	return s.value
}

// Completions returns definitions whose literal prefix is consistent with
// the literals typed so far. The last typed word may be partial.
func (r *Registry) Completions(typed []string) []*Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*Definition
	for _, d := range r.defs {
		lits := d.pattern.Literals()
		if d.shape == Static && len(typed) > len(lits) {
			continue
		}
		if prefixConsistent(lits, typed) {
			out = append(out, d)
		}
	}
	return out
}

func prefixConsistent(lits, typed []string) bool {
	for i, w := range typed {
		if i >= len(lits) {
			return true
		}
		last := i == len(typed)-1
		if last {
			if !strings.HasPrefix(strings.ToLower(lits[i]), strings.ToLower(w)) {
				return false
			}
			continue
		}
		if !strings.EqualFold(lits[i], w) {
			return false
		}
	}
	return true
}
