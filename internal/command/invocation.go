package command

import "github.com/google/uuid"

// CallerKind tells interactive users apart from the console.
type CallerKind int

const (
	// Interactive is a user typing commands
	Interactive CallerKind = iota
	// Console is the non-interactive operator channel
	Console
)

func (k CallerKind) String() string {
	if k == Console {
		return "console"
	}
	return "interactive"
}

// Caller identifies who issued a command line.
type Caller interface {
	Name() string
	Kind() CallerKind
}

// Invocation is the per-call execution context handed to a Handler. A new one
// is built for every successful dispatch and is owned by that call alone.
type Invocation struct {
	ID     string
	Caller Caller
	// Tokens is the full command line as typed
	Tokens []string
	// Args omits the root token
	Args  []string
	Shape Shape

	def *Definition
}

// NewInvocation copies tokens so the handler cannot alias the caller's slice.
func NewInvocation(def *Definition, caller Caller, tokens []string) *Invocation {
	full := make([]string, len(tokens))
	copy(full, tokens)
	var args []string
	if len(full) > 0 {
		args = full[1:]
	}
	return &Invocation{
		ID:     uuid.NewString(),
		Caller: caller,
		Tokens: full,
		Args:   args,
		Shape:  def.Shape(),
		def:    def,
	}
}

// Definition returns the matched definition.
func (inv *Invocation) Definition() *Definition { return inv.def }

// Arg returns the i-th argument or "" when absent.
func (inv *Invocation) Arg(i int) string {
	if i < 0 || i >= len(inv.Args) {
		return ""
	}
	return inv.Args[i]
}

// Rest returns the arguments from position i onward.
func (inv *Invocation) Rest(i int) []string {
	if i < 0 || i >= len(inv.Args) {
		return nil
	}
	return inv.Args[i:]
}
