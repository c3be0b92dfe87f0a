package verification

import "errors"

var (
	// ErrDataMismatch means the buffer delivered or held an element other
	// than the one it should have.
	ErrDataMismatch = errors.New("verification: data mismatch")

	// ErrUnexpectedOutput means the output handshake signals disagree with
	// the elements the buffer holds.
	ErrUnexpectedOutput = errors.New("verification: unexpected output")

	// ErrHandshakeViolated means a transfer happened, or did not happen,
	// against what the valid/ready pair allowed.
	ErrHandshakeViolated = errors.New("verification: handshake violated")

	// ErrCapacityExceeded means more elements were in flight than the buffer
	// can hold.
	ErrCapacityExceeded = errors.New("verification: capacity exceeded")

	// ErrOrderingViolated means the overflow slot was used while the main
	// slot was free.
	ErrOrderingViolated = errors.New("verification: ordering violated")

	// ErrResetNotMasked means an output read high while reset was asserted.
	ErrResetNotMasked = errors.New("verification: reset not masked")

	// ErrExpectationFailed means a scenario step read a value other than the
	// one the script expects.
	ErrExpectationFailed = errors.New("verification: expectation failed")

	// ErrUnknownScenario means no scenario has the requested name.
	ErrUnknownScenario = errors.New("verification: unknown scenario")

	// ErrInvalidScenario means a scenario file cannot be run as written.
	ErrInvalidScenario = errors.New("verification: invalid scenario")
)
