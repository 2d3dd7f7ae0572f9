package command

import "strings"

// Comparison is the outcome of matching one definition against input.
type Comparison int

const (
	// NoMatch means tokens were present but a literal differed
	NoMatch Comparison = iota
	// Match means the pattern was fully satisfied
	Match
	// ArgCountMismatch means the literal prefix was recognised but the token
	// count is wrong for the shape
	ArgCountMismatch
)

func (c Comparison) String() string {
	switch c {
	case Match:
		return "match"
	case ArgCountMismatch:
		return "arg_count_mismatch"
	default:
		return "no_match"
	}
}

// slot is one padded position; absent marks a position past the end of the
// shorter sequence.
type slot struct {
	value  string
	kind   TokenKind
	absent bool
}

// traceFunc receives expected/received values per compared position.
type traceFunc func(position int, expected, received slot)

// Compare matches tokens against def using the algorithm for its shape.
func Compare(def *Definition, tokens []string) Comparison {
	return compare(def, tokens, nil)
}

func compare(def *Definition, tokens []string, trace traceFunc) Comparison {
	want, got := pad(def.pattern, tokens)

	switch def.shape {
	case Static:
		return compareStatic(want, got, trace)
	case Variable:
		return comparePrefix(want, got, trace)
	case Dynamic:
		if r := comparePrefix(want, got, trace); r != Match {
			return r
		}
		if len(tokens) < def.MinTokens() {
			return ArgCountMismatch
		}
		return Match
	default:
		return NoMatch
	}
}

// pad extends the shorter of pattern and input with absent slots so both
// have the same length.
func pad(pattern Pattern, tokens []string) (want, got []slot) {
	n := len(pattern)
	if len(tokens) > n {
		n = len(tokens)
	}
	want = make([]slot, n)
	got = make([]slot, n)
	for i := 0; i < n; i++ {
		if i < len(pattern) {
			want[i] = slot{value: pattern[i].Value, kind: pattern[i].Kind}
		} else {
			want[i] = slot{absent: true}
		}
		if i < len(tokens) {
			got[i] = slot{value: tokens[i]}
		} else {
			got[i] = slot{absent: true}
		}
	}
	return want, got
}

// compareStatic requires every position to be present on both sides and equal.
func compareStatic(want, got []slot, trace traceFunc) Comparison {
	for i := range want {
		if trace != nil {
			trace(i, want[i], got[i])
		}
		if want[i].absent || got[i].absent {
			return ArgCountMismatch
		}
		if !strings.EqualFold(want[i].value, got[i].value) {
			return NoMatch
		}
	}
	return Match
}

// comparePrefix checks only the literal prefix; placeholder and trailing
// positions are free-form.
func comparePrefix(want, got []slot, trace traceFunc) Comparison {
	for i := range want {
		if want[i].absent || want[i].kind != Literal {
			break
		}
		if trace != nil {
			trace(i, want[i], got[i])
		}
		if got[i].absent {
			return ArgCountMismatch
		}
		if !strings.EqualFold(want[i].value, got[i].value) {
			return NoMatch
		}
	}
	return Match
}
