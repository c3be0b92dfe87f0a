package verification

import (
	"strings"
	"unicode"

	"github.com/sarchlab/elasticbuf/elasticbuf"
	"github.com/sarchlab/elasticbuf/hooking"
	"github.com/sarchlab/elasticbuf/timing"
)

// script plays the unrolled cycles of a scenario. It is the producer, the
// consumer, and the resetter of the bench at the same time.
type script struct {
	Sink

	cycles      []cycle
	resetCycles uint64
}

func (s *script) at(benchCycle uint64) (cycle, bool) {
	if benchCycle < s.resetCycles {
		return cycle{}, false
	}

	i := benchCycle - s.resetCycles
	if i >= uint64(len(s.cycles)) {
		return cycle{}, false
	}

	return s.cycles[i], true
}

func (s *script) Offer(benchCycle uint64, _ elasticbuf.Outputs) Offer {
	c, _ := s.at(benchCycle)

	return Offer{
		Valid: c.drive.Valid,
		Value: elasticbuf.Element(c.drive.Value),
	}
}

func (s *script) Accepted(elasticbuf.Element) {}

func (s *script) Done() bool {
	return true
}

func (s *script) Ready(benchCycle uint64, _ elasticbuf.Outputs) bool {
	c, _ := s.at(benchCycle)
	return c.drive.Ready
}

func (s *script) Reset(benchCycle uint64) bool {
	c, _ := s.at(benchCycle)
	return c.drive.Reset
}

// expectationChecker compares every bench sample with the script.
type expectationChecker struct {
	scenario string
	script   *script
	failures []Failure
}

func (c *expectationChecker) Func(ctx hooking.HookCtx) {
	sample := ctx.Item.(Sample)

	cyc, ok := c.script.at(sample.Cycle)
	if !ok {
		return
	}

	e := cyc.expect
	out := sample.Outputs
	t := sample.Transfer

	c.checkBool(cyc, sample, "output_valid", out.OutputValid, e.OutputValid)
	c.checkBool(cyc, sample, "input_ready", out.InputReady, e.InputReady)
	c.checkBool(cyc, sample, "accepted", t.Accepted, e.Accepted)
	c.checkBool(cyc, sample, "drained", t.Drained, e.Drained)

	if out.OutputValid {
		c.checkValue(cyc, sample, "output_value", out.OutputValue, e.OutputValue)
	} else if e.OutputValue != nil {
		c.fail(cyc, sample, "output_valid", false, true)
	}

	if t.Drained {
		c.checkValue(cyc, sample, "drained_value", t.DrainedValue, e.DrainedValue)
	} else if e.DrainedValue != nil {
		c.fail(cyc, sample, "drained", false, true)
	}
}

func (c *expectationChecker) checkBool(
	cyc cycle,
	sample Sample,
	signal string,
	got bool,
	want *bool,
) {
	if want != nil && got != *want {
		c.fail(cyc, sample, signal, got, *want)
	}
}

func (c *expectationChecker) checkValue(
	cyc cycle,
	sample Sample,
	signal string,
	got elasticbuf.Element,
	want *uint64,
) {
	if want != nil && uint64(got) != *want {
		c.fail(cyc, sample, signal, uint64(got), *want)
	}
}

func (c *expectationChecker) fail(
	cyc cycle,
	sample Sample,
	signal string,
	got, want any,
) {
	c.failures = append(c.failures, Failure{
		Scenario: c.scenario,
		Step:     cyc.step,
		Cycle:    sample.Cycle,
		Signal:   signal,
		Got:      got,
		Want:     want,
	})
}

// ScenarioRunner runs scenarios on fresh benches.
type ScenarioRunner struct {
	engine      timing.Engine
	freq        timing.FreqInHz
	benchHooks  []hooking.Hook
	bufferHooks []hooking.Hook
	onBench     func(*Bench)
}

// MakeScenarioRunner creates a ScenarioRunner with a 100 MHz clock.
func MakeScenarioRunner() ScenarioRunner {
	return ScenarioRunner{freq: 100 * timing.MHz}
}

// WithEngine runs every scenario on the given engine, one after another.
// Without it, each scenario gets a fresh engine.
func (r ScenarioRunner) WithEngine(engine timing.Engine) ScenarioRunner {
	r.engine = engine
	return r
}

// WithFreq sets the clock frequency of the benches.
func (r ScenarioRunner) WithFreq(freq timing.FreqInHz) ScenarioRunner {
	r.freq = freq
	return r
}

// WithBenchHook attaches a hook to every bench, e.g., a recorder of samples.
func (r ScenarioRunner) WithBenchHook(h hooking.Hook) ScenarioRunner {
	r.benchHooks = append(r.benchHooks[:len(r.benchHooks):len(r.benchHooks)], h)
	return r
}

// WithBufferHook attaches a hook to the buffer of every bench.
func (r ScenarioRunner) WithBufferHook(h hooking.Hook) ScenarioRunner {
	r.bufferHooks = append(
		r.bufferHooks[:len(r.bufferHooks):len(r.bufferHooks)], h)
	return r
}

// WithBenchCallback calls f with every bench before it starts.
func (r ScenarioRunner) WithBenchCallback(f func(*Bench)) ScenarioRunner {
	r.onBench = f
	return r
}

// Run plays a scenario from reset to its last step.
func (r ScenarioRunner) Run(s Scenario) (ScenarioResult, error) {
	if err := s.Validate(); err != nil {
		return ScenarioResult{}, err
	}

	sc := &script{
		cycles:      s.unroll(),
		resetCycles: s.resetCycles(),
	}

	engine := r.engine
	if engine == nil {
		engine = timing.NewSerialEngine()
	}

	bench := MakeBuilder().
		WithEngine(engine).
		WithFreq(r.freq).
		WithWidth(s.width()).
		WithProducer(sc).
		WithConsumer(sc).
		WithResetCycles(sc.resetCycles).
		WithMaxCycles(uint64(len(sc.cycles))).
		Build(BenchName(s.Name))

	checker := &expectationChecker{scenario: s.Name, script: sc}
	bench.AcceptHook(checker)

	for _, h := range r.benchHooks {
		bench.AcceptHook(h)
	}

	for _, h := range r.bufferHooks {
		bench.Buffer().AcceptHook(h)
	}

	if r.onBench != nil {
		r.onBench(bench)
	}

	bench.Start()

	if err := engine.Run(); err != nil {
		return ScenarioResult{}, err
	}

	return ScenarioResult{
		Scenario:   s.Name,
		Report:     bench.Scoreboard().Report(),
		Failures:   checker.failures,
		Violations: bench.Scoreboard().Violations(),
	}, nil
}

// BenchName turns a scenario name such as "buffer_full" into a component name
// such as "BufferFull".
func BenchName(scenario string) string {
	words := strings.FieldsFunc(scenario, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	var sb strings.Builder
	for _, w := range words {
		runes := []rune(w)
		runes[0] = unicode.ToUpper(runes[0])
		sb.WriteString(string(runes))
	}

	name := sb.String()
	if name == "" || name[0] < 'A' || name[0] > 'Z' {
		name = "Scenario" + name
	}

	return name
}
