package command

import (
	"fmt"
	"strings"
)

// TokenKind classifies a single position of a call pattern.
type TokenKind int

const (
	// Literal must be typed exactly (case-insensitive)
	Literal TokenKind = iota
	// Required is a free-form placeholder written as <name>
	Required
	// Optional is a free-form placeholder written as [name]
	Optional
)

// Token is one position of a command's call pattern.
type Token struct {
	Value string
	Kind  TokenKind
}

// Lit returns a literal token.
func Lit(value string) Token { return Token{Value: value, Kind: Literal} }

// Arg returns a required placeholder token.
func Arg(name string) Token { return Token{Value: name, Kind: Required} }

// Opt returns an optional placeholder token.
func Opt(name string) Token { return Token{Value: name, Kind: Optional} }

// String renders the token the way it is written in a syntax line.
func (t Token) String() string {
	switch t.Kind {
	case Required:
		return "<" + t.Value + ">"
	case Optional:
		return "[" + t.Value + "]"
	default:
		return t.Value
	}
}

// Pattern is the ordered call signature of a command.
type Pattern []Token

// ParsePattern builds a pattern from a syntax line such as
// "kick <player> [reason]". Words wrapped in <> become required
// placeholders, words wrapped in [] optional ones, anything else a literal.
func ParsePattern(syntax string) Pattern {
	fields := strings.Fields(syntax)
	p := make(Pattern, 0, len(fields))
	for _, f := range fields {
		switch {
		case len(f) > 2 && strings.HasPrefix(f, "<") && strings.HasSuffix(f, ">"):
			p = append(p, Arg(f[1:len(f)-1]))
		case len(f) > 2 && strings.HasPrefix(f, "[") && strings.HasSuffix(f, "]"):
			p = append(p, Opt(f[1:len(f)-1]))
		default:
			p = append(p, Lit(f))
		}
	}
	return p
}

// Literals returns the literal prefix of the pattern.
func (p Pattern) Literals() []string {
	var out []string
	for _, t := range p {
		if t.Kind != Literal {
			break
		}
		out = append(out, t.Value)
	}
	return out
}

// Root returns the first literal, or "" for an empty pattern.
func (p Pattern) Root() string {
	if len(p) == 0 || p[0].Kind != Literal {
		return ""
	}
	return p[0].Value
}

func (p Pattern) requiredCount() int {
	n := 0
	for _, t := range p {
		if t.Kind != Optional {
			n++
		}
	}
	return n
}

// String renders the pattern as a syntax line.
func (p Pattern) String() string {
	parts := make([]string, len(p))
	for i, t := range p {
		parts[i] = t.String()
	}
	return strings.Join(parts, " ")
}

// Equal reports whether two patterns have the same shape, comparing literals
// case-insensitively and placeholders by kind only.
func (p Pattern) Equal(o Pattern) bool {
	if len(p) != len(o) {
		return false
	}
	for i := range p {
		if p[i].Kind != o[i].Kind {
			return false
		}
		if p[i].Kind == Literal && !strings.EqualFold(p[i].Value, o[i].Value) {
			return false
		}
	}
	return true
}

func (p Pattern) validate(shape Shape) error {
	if len(p) == 0 || p[0].Kind != Literal {
		return ErrEmptyPattern
	}
	seenPlaceholder := false
	for i, t := range p {
		if strings.TrimSpace(t.Value) == "" {
			return fmt.Errorf("%w: empty token at position %d", ErrInvalidPattern, i)
		}
		if t.Kind == Literal {
			if seenPlaceholder {
				return fmt.Errorf("%w: literal %q follows a placeholder", ErrInvalidPattern, t.Value)
			}
			continue
		}
		if shape == Static {
			return fmt.Errorf("%w: static pattern contains placeholder %s", ErrInvalidPattern, t)
		}
		seenPlaceholder = true
	}
	return nil
}

func (p Pattern) clone() Pattern {
	out := make(Pattern, len(p))
	copy(out, p)
	return out
}
