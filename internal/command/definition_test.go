package command

import (
	"context"
	"errors"
	"testing"
)

func TestParsePattern(t *testing.T) {
	p := ParsePattern("kick  <player> [reason]")

	if len(p) != 3 {
		t.Fatalf("len = %d, want 3", len(p))
	}
	if p[0] != Lit("kick") || p[1] != Arg("player") || p[2] != Opt("reason") {
		t.Errorf("ParsePattern = %+v", p)
	}
	if p.String() != "kick <player> [reason]" {
		t.Errorf("String() = %q", p.String())
	}
	if p.Root() != "kick" {
		t.Errorf("Root() = %q", p.Root())
	}
	if lits := p.Literals(); len(lits) != 1 || lits[0] != "kick" {
		t.Errorf("Literals() = %v", lits)
	}
}

func TestParsePattern_BareBrackets(t *testing.T) {
	p := ParsePattern("emote <>")
	if p[1].Kind != Literal {
		t.Errorf("an empty placeholder should stay literal, got %+v", p[1])
	}
}

func TestPattern_Equal(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"ipc exempt list", "IPC Exempt LIST", true},
		{"kick <player>", "kick <target>", true},
		{"kick <player>", "kick [player]", false},
		{"kick <player>", "kick", false},
		{"ban", "kick", false},
	}
	for _, tt := range tests {
		if got := ParsePattern(tt.a).Equal(ParsePattern(tt.b)); got != tt.want {
			t.Errorf("Equal(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestNew_Validation(t *testing.T) {
	h := WithHandler(noop)

	tests := []struct {
		name    string
		cmd     string
		pattern Pattern
		shape   Shape
		opts    []Option
		wantErr error
	}{
		{"missing handler", "ban", ParsePattern("ban"), Static, nil, ErrMissingHandler},
		{"nil handler func", "ban", ParsePattern("ban"), Static, []Option{WithHandler(nil)}, ErrMissingHandler},
		{"empty name", " ", ParsePattern("ban"), Static, []Option{h}, ErrEmptyName},
		{"empty pattern", "ban", nil, Static, []Option{h}, ErrEmptyPattern},
		{"placeholder root", "ban", ParsePattern("<x> ban"), Variable, []Option{h}, ErrEmptyPattern},
		{"literal after placeholder", "ban", ParsePattern("ban <x> now"), Variable, []Option{h}, ErrInvalidPattern},
		{"placeholder in static", "ban", ParsePattern("ban <x>"), Static, []Option{h}, ErrInvalidPattern},
		{"arity on variable", "ban", ParsePattern("ban <x>"), Variable, []Option{h, WithArity(2)}, ErrInvalidPattern},
		{"negative arity", "say", ParsePattern("say <x>"), Dynamic, []Option{h, WithArity(-1)}, ErrInvalidPattern},
		{"unknown shape", "ban", ParsePattern("ban"), Shape(9), []Option{h}, ErrInvalidPattern},
		{"valid", "ban", ParsePattern("ban"), Static, []Option{h}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.cmd, tt.pattern, tt.shape, tt.opts...)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("New() error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("New() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestMustNew_Panics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustNew without a handler should panic")
		}
	}()
	MustNew("ban", ParsePattern("ban"), Static)
}

func TestDefinition_Defaults(t *testing.T) {
	d := mustDef(t, "kick", "kick <player>", Variable)

	if !d.ConsoleEligible() {
		t.Error("definitions should be console eligible by default")
	}
	if d.Syntax() != "kick <player>" {
		t.Errorf("Syntax() = %q", d.Syntax())
	}
	if len(d.Capabilities()) != 0 {
		t.Errorf("Capabilities() = %v, want none", d.Capabilities())
	}
	if d.Shape() != Variable || d.Shape().String() != "variable" {
		t.Errorf("Shape() = %v", d.Shape())
	}
}

func TestDefinition_AccessorsReturnCopies(t *testing.T) {
	d := mustDef(t, "ban", "ban <player>", Variable, WithCapabilities("admin.ban", " ", "admin.kick"))

	caps := d.Capabilities()
	if len(caps) != 2 {
		t.Fatalf("Capabilities() = %v, want 2 entries", caps)
	}
	caps[0] = "changed"
	if d.Capabilities()[0] != "admin.ban" {
		t.Error("mutating returned capabilities must not change the definition")
	}

	p := d.Pattern()
	p[0] = Lit("changed")
	if d.Pattern().Root() != "ban" {
		t.Error("mutating returned pattern must not change the definition")
	}
}

func TestDefinition_PatternCopiedOnConstruction(t *testing.T) {
	p := ParsePattern("ban <player>")
	d, err := New("ban", p, Variable, WithHandler(noop))
	if err != nil {
		t.Fatal(err)
	}
	p[0] = Lit("kick")
	if d.Pattern().Root() != "ban" {
		t.Error("caller's pattern slice must not alias the definition")
	}
}

type countingHandler struct {
	calls int
}

func (h *countingHandler) Execute(ctx context.Context, inv *Invocation) error {
	h.calls++
	return nil
}

func TestDefinition_FactoryBuildsFreshHandlers(t *testing.T) {
	d, err := New("count", ParsePattern("count"), Static, WithFactory(func() Handler {
		return &countingHandler{}
	}))
	if err != nil {
		t.Fatal(err)
	}

	a := d.NewHandler().(*countingHandler)
	b := d.NewHandler().(*countingHandler)
	if a == b {
		t.Fatal("factory should build a new handler per call")
	}
	_ = a.Execute(context.Background(), nil)
	if b.calls != 0 {
		t.Error("handlers must not share state")
	}
}

func TestNewInvocation(t *testing.T) {
	d := mustDef(t, "kick", "kick <player>", Variable)
	tokens := []string{"kick", "alice", "now"}

	inv := NewInvocation(d, nil, tokens)
	tokens[1] = "bob"

	if inv.Arg(0) != "alice" {
		t.Errorf("Arg(0) = %q, want alice", inv.Arg(0))
	}
	if inv.Arg(5) != "" || inv.Arg(-1) != "" {
		t.Error("out of range Arg should be empty")
	}
	if got := inv.Rest(1); len(got) != 1 || got[0] != "now" {
		t.Errorf("Rest(1) = %v", got)
	}
	if inv.Rest(3) != nil {
		t.Error("Rest past end should be nil")
	}
	if inv.ID == "" {
		t.Error("invocation should have an ID")
	}
	if inv.Definition() != d || inv.Shape != Variable {
		t.Error("invocation should reference its definition and shape")
	}

	other := NewInvocation(d, nil, []string{"kick", "carol"})
	if other.ID == inv.ID {
		t.Error("invocation IDs must be unique")
	}
}
