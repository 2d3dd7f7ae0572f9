package command

import (
	"context"
	"fmt"
	"strings"
)

// Shape selects the matching algorithm used for a definition.
type Shape int

const (
	// Static patterns are all literals and must be typed exactly
	Static Shape = iota
	// Variable patterns match a literal prefix and accept anything after it
	Variable
	// Dynamic patterns match a literal prefix and require a minimum token count
	Dynamic
)

// String returns the lower-case shape name
func (s Shape) String() string {
	switch s {
	case Static:
		return "static"
	case Variable:
		return "variable"
	case Dynamic:
		return "dynamic"
	default:
		return "unknown"
	}
}

// Handler executes one invocation of a command.
type Handler interface {
	Execute(ctx context.Context, inv *Invocation) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, inv *Invocation) error

// Execute calls f(ctx, inv).
func (f HandlerFunc) Execute(ctx context.Context, inv *Invocation) error {
	return f(ctx, inv)
}

// Factory returns a new Handler. It is called once per successful dispatch so
// handlers that keep state never see another caller's data.
type Factory func() Handler

// Definition describes a registered command. It is immutable once built and
// safe to share between goroutines.
type Definition struct {
	name         string
	pattern      Pattern
	shape        Shape
	arity        int
	capabilities []string
	console      bool
	help         string
	syntax       string
	factory      Factory
}

// Option configures a Definition under construction.
type Option func(*Definition)

// WithHandler runs fn for every invocation.
func WithHandler(fn HandlerFunc) Option {
	return func(d *Definition) {
		if fn == nil {
			return
		}
		d.factory = func() Handler { return fn }
	}
}

// WithFactory builds a fresh handler for every invocation.
func WithFactory(f Factory) Option {
	return func(d *Definition) { d.factory = f }
}

// WithCapabilities sets the capabilities a caller must hold.
func WithCapabilities(caps ...string) Option {
	return func(d *Definition) {
		for _, c := range caps {
			c = strings.TrimSpace(c)
			if c != "" {
				d.capabilities = append(d.capabilities, c)
			}
		}
	}
}

// WithConsole sets whether the console may execute the command.
func WithConsole(eligible bool) Option {
	return func(d *Definition) { d.console = eligible }
}

// WithHelp sets the help text.
func WithHelp(help string) Option {
	return func(d *Definition) { d.help = help }
}

// WithSyntax overrides the syntax line shown in help output.
func WithSyntax(syntax string) Option {
	return func(d *Definition) { d.syntax = syntax }
}

// WithArity sets the minimum total token count of a Dynamic definition.
func WithArity(n int) Option {
	return func(d *Definition) { d.arity = n }
}

// New builds a definition. A handler is mandatory.
func New(name string, pattern Pattern, shape Shape, opts ...Option) (*Definition, error) {
	d := &Definition{
		name:    strings.TrimSpace(name),
		pattern: pattern.clone(),
		shape:   shape,
		console: true,
	}
	for _, opt := range opts {
		opt(d)
	}

	if d.name == "" {
		return nil, ErrEmptyName
	}
	if shape < Static || shape > Dynamic {
		return nil, fmt.Errorf("%w: unknown shape %d", ErrInvalidPattern, shape)
	}
	if err := d.pattern.validate(shape); err != nil {
		return nil, fmt.Errorf("command %q: %w", d.name, err)
	}
	if d.arity < 0 || (d.arity > 0 && shape != Dynamic) {
		return nil, fmt.Errorf("command %q: %w: arity %d on %s shape", d.name, ErrInvalidPattern, d.arity, shape)
	}
	if d.factory == nil {
		return nil, fmt.Errorf("command %q: %w", d.name, ErrMissingHandler)
	}
	if d.syntax == "" {
		d.syntax = d.pattern.String()
	}
	return d, nil
}

// MustNew is New for statically known definitions; it panics on error.
func MustNew(name string, pattern Pattern, shape Shape, opts ...Option) *Definition {
	d, err := New(name, pattern, shape, opts...)
	if err != nil {
		panic(err)
	}
	return d
}

// Name returns the identifier the command was registered under.
func (d *Definition) Name() string { return d.name }

// Shape returns how the pattern is matched.
func (d *Definition) Shape() Shape { return d.shape }

// Help returns the one-line description shown by help listings.
func (d *Definition) Help() string { return d.help }

// Syntax returns the usage line, the pattern's text unless overridden.
func (d *Definition) Syntax() string { return d.syntax }

// Pattern returns a copy of the call pattern.
func (d *Definition) Pattern() Pattern { return d.pattern.clone() }

// Capabilities returns a copy of the required capabilities.
func (d *Definition) Capabilities() []string {
	out := make([]string, len(d.capabilities))
	copy(out, d.capabilities)
	return out
}

// ConsoleEligible reports whether the console may execute the command.
func (d *Definition) ConsoleEligible() bool { return d.console }

// MinTokens is the fewest tokens a Dynamic definition accepts.
func (d *Definition) MinTokens() int {
	if d.arity > 0 {
		return d.arity
	}
	return d.pattern.requiredCount()
}

// NewHandler returns the handler for a single invocation.
func (d *Definition) NewHandler() Handler {
	return d.factory()
}
