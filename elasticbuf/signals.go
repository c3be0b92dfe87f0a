package elasticbuf

// Inputs are the signals sampled at the start of a cycle.
type Inputs struct {
	// Reset is the level-sensitive synchronous reset.
	Reset bool

	// InputValid and InputValue are driven by the producer.
	InputValid bool
	InputValue Element

	// OutputReady is driven by the consumer. It tells that the consumer takes
	// the current output element in this cycle.
	OutputReady bool
}

// Outputs are the registered signals the buffer drives.
type Outputs struct {
	OutputValid bool

	// OutputValue is only meaningful when OutputValid is set.
	OutputValue Element

	InputReady bool
}

// Transfer reports the handshakes that completed in a cycle.
type Transfer struct {
	Accepted      bool
	AcceptedValue Element

	Drained      bool
	DrainedValue Element
}

// Derive computes the handshake outputs implied by a committed state.
func Derive(s State) Outputs {
	return Outputs{
		OutputValid: s.Main.occupied,
		OutputValue: s.Main.value,
		InputReady:  !s.Overflow.occupied,
	}
}
