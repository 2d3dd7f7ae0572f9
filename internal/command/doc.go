// Package command implements command definitions, call-pattern matching and
// the dispatch registry.
//
// # Shapes
//
// Every definition has a call pattern: a literal prefix followed, for the
// non-static shapes, by placeholders.
//
//   - Static: every token is a literal and must be typed, nothing more.
//     "ipc exempt list" matches only those three words.
//   - Variable: the literal prefix must be typed; whatever follows is free-form.
//     "kick <player>" matches "kick", "kick alice" and "kick alice now".
//   - Dynamic: like Variable, but a minimum token count applies, either the
//     declared arity or prefix + required placeholders.
//     "say <message>" with arity 2 rejects a bare "say".
//
// Literal comparison is case-insensitive.
//
// # Dispatch
//
// Registry.Dispatch walks definitions in registration order. The first Match
// wins; otherwise the first definition whose prefix was recognised but whose
// token count was wrong is returned as BadArgCount; otherwise Fail.
//
//	reg := command.NewRegistry()
//	reg.Register(command.MustNew("kick", command.ParsePattern("kick <player>"), command.Variable,
//	    command.WithHandler(func(ctx context.Context, inv *command.Invocation) error {
//	        fmt.Println("kicking", inv.Arg(0))
//	        return nil
//	    })))
//	res := reg.Dispatch([]string{"kick", "alice"}) // res.Status == command.Success
//
// Definitions are immutable and shared. Each execution gets its own
// Invocation (and, with WithFactory, its own Handler), so concurrent callers
// of the same command never share mutable state.
package command
