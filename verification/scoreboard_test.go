package verification

import (
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	"github.com/sarchlab/elasticbuf/elasticbuf"
)

var _ = ginkgo.Describe("Scoreboard", func() {
	var sb *Scoreboard

	acceptSample := func(cycle uint64, v elasticbuf.Element) Sample {
		return Sample{
			Cycle:    cycle,
			Inputs:   elasticbuf.Inputs{InputValid: true, InputValue: v},
			Outputs:  elasticbuf.Outputs{InputReady: true},
			Transfer: elasticbuf.Transfer{Accepted: true, AcceptedValue: v},
			State:    elasticbuf.State{Main: elasticbuf.Occupied(v)},
		}
	}

	ginkgo.BeforeEach(func() {
		sb = NewScoreboard()
	})

	ginkgo.It("should accept a clean accept and drain", func() {
		sb.Check(acceptSample(0, 0x10))
		sb.Check(Sample{
			Cycle:  1,
			Inputs: elasticbuf.Inputs{OutputReady: true},
			Outputs: elasticbuf.Outputs{
				OutputValid: true,
				OutputValue: 0x10,
				InputReady:  true,
			},
			Transfer: elasticbuf.Transfer{Drained: true, DrainedValue: 0x10},
		})

		gomega.Expect(sb.Err()).To(gomega.Succeed())
		gomega.Expect(sb.Pending()).To(gomega.BeEmpty())
		gomega.Expect(sb.Report().Accepted).To(gomega.Equal(uint64(1)))
		gomega.Expect(sb.Report().Drained).To(gomega.Equal(uint64(1)))
		gomega.Expect(sb.Report().MaxOccupancy).To(gomega.Equal(1))
	})

	ginkgo.It("should catch a wrong output value", func() {
		sb.Check(acceptSample(0, 0x10))
		sb.Check(Sample{
			Cycle: 1,
			Outputs: elasticbuf.Outputs{
				OutputValid: true,
				OutputValue: 0x11,
				InputReady:  true,
			},
			State: elasticbuf.State{Main: elasticbuf.Occupied(0x10)},
		})

		gomega.Expect(sb.Err()).To(gomega.MatchError(ErrDataMismatch))
		gomega.Expect(sb.Violations()).To(gomega.HaveLen(1))
		gomega.Expect(sb.Violations()[0].Cycle).To(gomega.Equal(uint64(1)))
	})

	ginkgo.It("should catch an output that is valid while empty", func() {
		sb.Check(Sample{
			Outputs: elasticbuf.Outputs{OutputValid: true, InputReady: true},
		})

		gomega.Expect(sb.Err()).To(gomega.MatchError(ErrUnexpectedOutput))
	})

	ginkgo.It("should catch a transfer the handshake did not allow", func() {
		sb.Check(Sample{
			Inputs:   elasticbuf.Inputs{InputValid: true, InputValue: 3},
			Transfer: elasticbuf.Transfer{Accepted: true, AcceptedValue: 3},
			State:    elasticbuf.State{Main: elasticbuf.Occupied(3)},
		})

		gomega.Expect(sb.Err()).To(gomega.MatchError(ErrHandshakeViolated))
	})

	ginkgo.It("should catch an overflow slot used alone", func() {
		s := acceptSample(0, 7)
		s.State = elasticbuf.State{Overflow: elasticbuf.Occupied(7)}
		sb.Check(s)

		gomega.Expect(sb.Err()).To(gomega.MatchError(ErrOrderingViolated))
	})

	ginkgo.It("should catch outputs left high by reset", func() {
		sb.Check(acceptSample(0, 1))
		sb.Check(Sample{
			Cycle:  1,
			Inputs: elasticbuf.Inputs{Reset: true},
			Next:   elasticbuf.Outputs{InputReady: true},
		})

		gomega.Expect(sb.Err()).To(gomega.MatchError(ErrResetNotMasked))
		gomega.Expect(sb.Report().Discarded).To(gomega.Equal(uint64(1)))
		gomega.Expect(sb.Pending()).To(gomega.BeEmpty())
	})

	ginkgo.It("should count rejected offers and backpressure", func() {
		sb.Check(acceptSample(0, 1))
		sb.Check(Sample{
			Cycle:  1,
			Inputs: elasticbuf.Inputs{InputValid: true, InputValue: 2},
			Outputs: elasticbuf.Outputs{
				OutputValid: true,
				OutputValue: 1,
			},
			State: elasticbuf.State{Main: elasticbuf.Occupied(1)},
		})

		gomega.Expect(sb.Err()).To(gomega.Succeed())
		gomega.Expect(sb.Report().Rejected).To(gomega.Equal(uint64(1)))
		gomega.Expect(sb.Report().BackpressureCycles).To(gomega.Equal(uint64(1)))
	})

	ginkgo.It("should report several violations at once", func() {
		sb.Check(Sample{Outputs: elasticbuf.Outputs{OutputValid: true}})
		sb.Check(Sample{Cycle: 1, Outputs: elasticbuf.Outputs{OutputValid: true}})

		gomega.Expect(sb.Err()).To(gomega.MatchError(gomega.ContainSubstring("2 violations")))
		gomega.Expect(sb.Err()).To(gomega.MatchError(ErrUnexpectedOutput))
	})

	ginkgo.It("should compute throughput over cycles out of reset", func() {
		r := Report{Cycles: 12, ResetCycles: 2, Drained: 5}
		gomega.Expect(r.Throughput()).To(gomega.BeNumerically("~", 0.5))
		gomega.Expect(Report{}.Throughput()).To(gomega.BeZero())
	})
})
