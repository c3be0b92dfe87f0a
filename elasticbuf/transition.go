package elasticbuf

// Next computes the state committed at the end of a cycle, given the state
// committed at the end of the previous one and this cycle's inputs. The
// handshake decisions use the outputs derived from s. Reset is not handled
// here; see Buffer.Tick.
func Next(s State, in Inputs) (State, Transfer) {
	s.mustBeValid()

	out := Derive(s)
	accept := in.InputValid && out.InputReady
	drain := out.OutputValid && in.OutputReady

	return step(s, accept, drain, in.InputValue)
}

func step(s State, accept, drain bool, value Element) (State, Transfer) {
	var transfer Transfer

	if drain {
		if s.Main.IsEmpty() {
			panic("elasticbuf: draining an empty buffer")
		}

		transfer.Drained = true
		transfer.DrainedValue = s.Main.value
	}

	if accept {
		if !s.Overflow.IsEmpty() {
			panic("elasticbuf: accepting into a full buffer")
		}

		transfer.Accepted = true
		transfer.AcceptedValue = value
	}

	next := s

	switch {
	case !s.Overflow.IsEmpty():
		if drain {
			next.Main = s.Overflow
			next.Overflow = Empty()
		}
	case !s.Main.IsEmpty():
		switch {
		case drain && accept:
			// The new element takes the vacated main slot directly.
			next.Main = Occupied(value)
		case drain:
			next.Main = Empty()
		case accept:
			next.Overflow = Occupied(value)
		}
	default:
		if accept {
			next.Main = Occupied(value)
		}
	}

	return next, transfer
}
