package verification

import (
	"fmt"

	"github.com/sarchlab/elasticbuf/elasticbuf"
)

// Violation is a broken rule found in a given cycle.
type Violation struct {
	Cycle uint64
	Err   error
}

func (v Violation) Error() string {
	return fmt.Sprintf("cycle %d: %v", v.Cycle, v.Err)
}

func (v Violation) Unwrap() error {
	return v.Err
}

// Report summarizes a run.
type Report struct {
	Cycles             uint64
	ResetCycles        uint64
	Accepted           uint64
	Drained            uint64
	Rejected           uint64
	Discarded          uint64
	BackpressureCycles uint64
	MaxOccupancy       int
}

// Throughput returns the number of drained elements per cycle out of reset.
func (r Report) Throughput() float64 {
	active := r.Cycles - r.ResetCycles
	if active == 0 {
		return 0
	}

	return float64(r.Drained) / float64(active)
}

// Scoreboard keeps a reference model of the buffer's content and checks every
// sample against it. Elements accepted are expected at the output in order,
// exactly once.
type Scoreboard struct {
	pending    []elasticbuf.Element
	report     Report
	violations []Violation
}

// NewScoreboard creates an empty Scoreboard.
func NewScoreboard() *Scoreboard {
	return &Scoreboard{}
}

// Check verifies one sample and updates the reference model.
func (s *Scoreboard) Check(sample Sample) {
	s.report.Cycles++

	if sample.Inputs.Reset {
		s.checkReset(sample)
		return
	}

	s.checkOutputs(sample)
	s.checkHandshakes(sample)
	s.applyTransfer(sample)
	s.checkState(sample)

	if sample.Rejected() {
		s.report.Rejected++
	}

	if sample.Backpressured() {
		s.report.BackpressureCycles++
	}
}

func (s *Scoreboard) checkReset(sample Sample) {
	s.report.ResetCycles++
	s.report.Discarded += uint64(len(s.pending))
	s.pending = nil

	if sample.Next.OutputValid || sample.Next.InputReady {
		s.fail(sample, fmt.Errorf("%w: outputs %+v", ErrResetNotMasked, sample.Next))
	}

	if sample.Transfer != (elasticbuf.Transfer{}) {
		s.fail(sample, fmt.Errorf("%w: transfer during reset", ErrHandshakeViolated))
	}

	if sample.State.Size() != 0 {
		s.fail(sample, fmt.Errorf("%w: state %s survived reset",
			ErrResetNotMasked, sample.State))
	}
}

func (s *Scoreboard) checkOutputs(sample Sample) {
	out := sample.Outputs

	if !out.OutputValid {
		if len(s.pending) > 0 {
			s.fail(sample, fmt.Errorf("%w: output not valid while holding %d elements",
				ErrUnexpectedOutput, len(s.pending)))
		}

		return
	}

	if len(s.pending) == 0 {
		s.fail(sample, fmt.Errorf("%w: output valid with %#x while empty",
			ErrUnexpectedOutput, uint64(out.OutputValue)))

		return
	}

	if out.OutputValue != s.pending[0] {
		s.fail(sample, fmt.Errorf("%w: output %#x, want %#x",
			ErrDataMismatch, uint64(out.OutputValue), uint64(s.pending[0])))
	}
}

func (s *Scoreboard) checkHandshakes(sample Sample) {
	in, out, t := sample.Inputs, sample.Outputs, sample.Transfer

	wantAccept := in.InputValid && out.InputReady
	if t.Accepted != wantAccept {
		s.fail(sample, fmt.Errorf("%w: accepted=%v with valid=%v ready=%v",
			ErrHandshakeViolated, t.Accepted, in.InputValid, out.InputReady))
	}

	wantDrain := out.OutputValid && in.OutputReady
	if t.Drained != wantDrain {
		s.fail(sample, fmt.Errorf("%w: drained=%v with valid=%v ready=%v",
			ErrHandshakeViolated, t.Drained, out.OutputValid, in.OutputReady))
	}
}

func (s *Scoreboard) applyTransfer(sample Sample) {
	t := sample.Transfer

	if t.Drained {
		s.report.Drained++

		switch {
		case len(s.pending) == 0:
			s.fail(sample, fmt.Errorf("%w: drained %#x from an empty buffer",
				ErrDataMismatch, uint64(t.DrainedValue)))
		case t.DrainedValue != s.pending[0]:
			s.fail(sample, fmt.Errorf("%w: drained %#x, want %#x",
				ErrDataMismatch, uint64(t.DrainedValue), uint64(s.pending[0])))
			s.pending = s.pending[1:]
		default:
			s.pending = s.pending[1:]
		}
	}

	if t.Accepted {
		s.report.Accepted++
		s.pending = append(s.pending, t.AcceptedValue)
	}
}

func (s *Scoreboard) checkState(sample Sample) {
	st := sample.State

	if !st.IsValid() {
		s.fail(sample, fmt.Errorf("%w: %s", ErrOrderingViolated, st))
	}

	if len(s.pending) > elasticbuf.Capacity {
		s.fail(sample, fmt.Errorf("%w: %d elements in flight",
			ErrCapacityExceeded, len(s.pending)))
	}

	if st.Size() != len(s.pending) {
		s.fail(sample, fmt.Errorf("%w: buffer holds %d elements, want %d",
			ErrDataMismatch, st.Size(), len(s.pending)))
	}

	if st.Size() > s.report.MaxOccupancy {
		s.report.MaxOccupancy = st.Size()
	}
}

func (s *Scoreboard) fail(sample Sample, err error) {
	s.violations = append(s.violations, Violation{Cycle: sample.Cycle, Err: err})
}

// Pending returns the elements accepted but not yet drained, oldest first.
func (s *Scoreboard) Pending() []elasticbuf.Element {
	return s.pending
}

// Violations returns every violation found so far.
func (s *Scoreboard) Violations() []Violation {
	return s.violations
}

// Report returns the statistics collected so far.
func (s *Scoreboard) Report() Report {
	return s.report
}

// Err returns nil if no rule was broken. Otherwise it returns the first
// violation, which unwraps to one of the package's sentinel errors.
func (s *Scoreboard) Err() error {
	if len(s.violations) == 0 {
		return nil
	}

	if len(s.violations) == 1 {
		return s.violations[0]
	}

	return fmt.Errorf("%d violations, first at %w",
		len(s.violations), s.violations[0])
}
