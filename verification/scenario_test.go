package verification

import (
	"strings"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	"github.com/sarchlab/elasticbuf/elasticbuf"
	"github.com/sarchlab/elasticbuf/hooking"
	"github.com/sarchlab/elasticbuf/timing"
)

var _ = ginkgo.Describe("Scenario", func() {
	ginkgo.It("should ship the built-in scenarios in order", func() {
		scenarios, err := BuiltinScenarios()
		gomega.Expect(err).NotTo(gomega.HaveOccurred())

		names := make([]string, 0, len(scenarios))
		for _, s := range scenarios {
			names = append(names, s.Name)
		}

		gomega.Expect(names).To(gomega.Equal([]string{
			"reset_check",
			"valid_and_ready",
			"valid_then_ready",
			"buffer",
			"buffer_full",
			"reset_mid_stream",
		}))
	})

	ginkgo.It("should pass every built-in scenario", func() {
		scenarios, err := BuiltinScenarios()
		gomega.Expect(err).NotTo(gomega.HaveOccurred())

		for _, s := range scenarios {
			result, err := MakeScenarioRunner().Run(s)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(result.Err()).To(gomega.Succeed(), s.Name)
		}
	})

	ginkgo.It("should drain the sweep in order", func() {
		s, err := BuiltinScenario("valid_and_ready")
		gomega.Expect(err).NotTo(gomega.HaveOccurred())

		var drained []elasticbuf.Element
		result, err := MakeScenarioRunner().
			WithBufferHook(hooking.HookFunc(func(ctx hooking.HookCtx) {
				if ctx.Pos == elasticbuf.HookPosDrain {
					drained = append(drained, ctx.Item.(elasticbuf.Element))
				}
			})).
			Run(s)

		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(result.Err()).To(gomega.Succeed())
		gomega.Expect(drained).To(gomega.HaveLen(17))
		gomega.Expect(drained[0]).To(gomega.Equal(elasticbuf.Element(0x01)))
		for i, e := range drained[1:] {
			gomega.Expect(e).To(gomega.Equal(elasticbuf.Element(i)))
		}
	})

	ginkgo.It("should report the rejected element of a full buffer", func() {
		s, err := BuiltinScenario("buffer_full")
		gomega.Expect(err).NotTo(gomega.HaveOccurred())

		result, err := MakeScenarioRunner().Run(s)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(result.Report.Accepted).To(gomega.Equal(uint64(2)))
		gomega.Expect(result.Report.Drained).To(gomega.Equal(uint64(2)))
		gomega.Expect(result.Report.Rejected).To(gomega.Equal(uint64(1)))
		gomega.Expect(result.Report.MaxOccupancy).To(gomega.Equal(2))
	})

	ginkgo.It("should discard the content on a reset in the middle", func() {
		s, err := BuiltinScenario("reset_mid_stream")
		gomega.Expect(err).NotTo(gomega.HaveOccurred())

		result, err := MakeScenarioRunner().Run(s)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(result.Err()).To(gomega.Succeed())
		gomega.Expect(result.Report.Discarded).To(gomega.Equal(uint64(2)))
		gomega.Expect(result.Report.ResetCycles).To(gomega.Equal(uint64(DefaultResetCycles + 3)))
	})

	ginkgo.It("should keep the driven inputs of a reset in the samples", func() {
		s, err := BuiltinScenario("reset_mid_stream")
		gomega.Expect(err).NotTo(gomega.HaveOccurred())

		var resets []Sample
		result, err := MakeScenarioRunner().
			WithBenchHook(hooking.HookFunc(func(ctx hooking.HookCtx) {
				sample := ctx.Item.(Sample)
				if sample.Inputs.Reset && sample.Cycle >= DefaultResetCycles {
					resets = append(resets, sample)
				}
			})).
			Run(s)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(result.Err()).To(gomega.Succeed())

		gomega.Expect(resets).To(gomega.HaveLen(3))
		for _, r := range resets {
			gomega.Expect(r.Inputs).To(gomega.Equal(elasticbuf.Inputs{
				Reset:       true,
				InputValid:  true,
				InputValue:  0x11,
				OutputReady: true,
			}))
			gomega.Expect(r.Transfer).To(gomega.BeZero())
			gomega.Expect(r.Rejected()).To(gomega.BeFalse())
			gomega.Expect(r.Backpressured()).To(gomega.BeFalse())
		}
	})

	ginkgo.It("should fail on an unknown name", func() {
		_, err := BuiltinScenario("no_such_scenario")
		gomega.Expect(err).To(gomega.MatchError(ErrUnknownScenario))
	})

	ginkgo.It("should report a wrong expectation with its step", func() {
		s, err := LoadScenario(strings.NewReader(`
name: wrong
reset_cycles: 1
steps:
  - expect: {input_ready: false}
  - drive: {valid: true, value: 0x20}
    expect: {accepted: true}
  - expect: {output_value: 0x21}
`))
		gomega.Expect(err).NotTo(gomega.HaveOccurred())

		result, err := MakeScenarioRunner().Run(s)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(result.Failures).To(gomega.HaveLen(1))

		f := result.Failures[0]
		gomega.Expect(f.Step).To(gomega.Equal(2))
		gomega.Expect(f.Cycle).To(gomega.Equal(uint64(3)))
		gomega.Expect(f.Signal).To(gomega.Equal("output_value"))
		gomega.Expect(f.Got).To(gomega.Equal(uint64(0x20)))
		gomega.Expect(result.Err()).To(gomega.MatchError(ErrExpectationFailed))
	})

	ginkgo.It("should mask values to the scenario width", func() {
		s, err := LoadScenario(strings.NewReader(`
name: narrow
width: 4
steps:
  - {}
  - drive: {valid: true, value: 0x3A}
    expect: {accepted: true}
  - drive: {ready: true}
    expect: {output_value: 0x0A, drained_value: 0x0A}
`))
		gomega.Expect(err).NotTo(gomega.HaveOccurred())

		result, err := MakeScenarioRunner().Run(s)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(result.Err()).To(gomega.Succeed())
	})

	ginkgo.It("should unroll repeated steps with a stride", func() {
		s := Scenario{
			Name: "repeat",
			Steps: []Step{
				{
					Repeat: 3,
					Stride: 2,
					Drive:  Drive{Valid: true, Value: 1},
					Expect: Expect{OutputValue: ptr(uint64(0))},
				},
				{Drive: Drive{Ready: true}},
			},
		}

		cycles := s.unroll()
		gomega.Expect(cycles).To(gomega.HaveLen(4))
		gomega.Expect(cycles[2].drive.Value).To(gomega.Equal(uint64(5)))
		gomega.Expect(*cycles[2].expect.OutputValue).To(gomega.Equal(uint64(4)))
		gomega.Expect(cycles[3].step).To(gomega.Equal(1))
		gomega.Expect(*s.Steps[0].Expect.OutputValue).To(gomega.BeZero())
	})

	ginkgo.It("should run scenarios back to back on one engine", func() {
		engine := timing.NewSerialEngine()
		runner := MakeScenarioRunner().WithEngine(engine)

		var starts []timing.VTimeInCycle
		runner = runner.WithBenchHook(hooking.HookFunc(func(ctx hooking.HookCtx) {
			if s := ctx.Item.(Sample); s.Cycle == 0 {
				starts = append(starts, s.Time)
			}
		}))

		for _, name := range []string{"buffer", "buffer_full"} {
			s, err := BuiltinScenario(name)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			result, err := runner.Run(s)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(result.Err()).To(gomega.Succeed())
		}

		gomega.Expect(starts).To(gomega.Equal([]timing.VTimeInCycle{0, 16}))
	})

	ginkgo.DescribeTable("should name benches after scenarios",
		func(scenario, bench string) {
			gomega.Expect(BenchName(scenario)).To(gomega.Equal(bench))
		},
		ginkgo.Entry(nil, "buffer_full", "BufferFull"),
		ginkgo.Entry(nil, "reset-check", "ResetCheck"),
		ginkgo.Entry(nil, "valid and ready", "ValidAndReady"),
		ginkgo.Entry(nil, "2x", "Scenario2x"),
		ginkgo.Entry(nil, "", "Scenario"),
	)

	ginkgo.DescribeTable("should reject invalid scenarios",
		func(doc string) {
			_, err := LoadScenario(strings.NewReader(doc))
			gomega.Expect(err).To(gomega.MatchError(ErrInvalidScenario))
		},
		ginkgo.Entry("no name", "steps: [{}]"),
		ginkgo.Entry("no steps", "name: empty"),
		ginkgo.Entry("bad width", "name: wide\nwidth: 65\nsteps: [{}]"),
		ginkgo.Entry("negative repeat", "name: neg\nsteps: [{repeat: -1}]"),
		ginkgo.Entry("unknown field", "name: typo\nstpes: [{}]"),
	)
})

func ptr[T any](v T) *T {
	return &v
}
