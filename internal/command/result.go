package command

// Status tags a ParseResult.
type Status int

const (
	// Fail means no definition was recognised
	Fail Status = iota
	// Success means exactly one definition matched
	Success
	// BadArgCount means a definition was recognised with the wrong token count
	BadArgCount
)

func (s Status) String() string {
	switch s {
	case Success:
		return "SUCCESS"
	case BadArgCount:
		return "BAD_NUM_ARGS"
	default:
		return "FAIL"
	}
}

// ParseResult is the only channel between dispatch and execution.
type ParseResult struct {
	Status     Status
	Definition *Definition
	// Tokens is the dispatched input, copied
	Tokens []string
}

// Err maps the result to a sentinel error, or nil on Success.
func (r ParseResult) Err() error {
	switch r.Status {
	case Success:
		return nil
	case BadArgCount:
		return ErrArgumentCount
	default:
		return ErrUnknownCommand
	}
}
