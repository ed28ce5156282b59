package dynsys

import "errors"

// Domain errors for system construction and reduction.
var (
	// ErrInconsistentSystem indicates an over- or under-determined
	// equation set (state and equation counts disagree).
	ErrInconsistentSystem = errors.New("dynsys: inconsistent system (equations do not match states)")

	// ErrUnboundSymbol indicates an equation references a symbol that is
	// neither a declared state nor a declared input.
	ErrUnboundSymbol = errors.New("dynsys: unbound symbol in equation")

	// ErrMissingDefault indicates a declared symbol has no entry in the
	// defaults map.
	ErrMissingDefault = errors.New("dynsys: symbol missing a default value")

	// ErrDimensionMismatch indicates state or input vectors of the wrong
	// length were supplied to an evaluation.
	ErrDimensionMismatch = errors.New("dynsys: dimension mismatch between vector and system")

	// ErrDuplicateSymbol indicates the same name was declared twice.
	ErrDuplicateSymbol = errors.New("dynsys: duplicate symbol declaration")
)

// SystemError wraps an error with the name of the system it concerns.
type SystemError struct {
	System  string
	Wrapped error
}

func (e *SystemError) Error() string {
	return e.System + ": " + e.Wrapped.Error()
}

func (e *SystemError) Unwrap() error {
	return e.Wrapped
}
