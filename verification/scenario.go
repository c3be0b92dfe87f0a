package verification

import (
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"

	"gopkg.in/yaml.v3"

	"github.com/sarchlab/elasticbuf/elasticbuf"
)

//go:embed scenarios/*.yaml
var builtinFS embed.FS

// Scenario is a cycle-by-cycle script for a bench. Step i drives the i-th
// cycle after the initial reset is released.
type Scenario struct {
	Name        string  `yaml:"name"`
	Description string  `yaml:"description"`
	ResetCycles *uint64 `yaml:"reset_cycles"`
	Width       int     `yaml:"width"`
	Steps       []Step  `yaml:"steps"`
}

// Step drives the inputs of one or more cycles and checks what is read in
// them.
type Step struct {
	// Repeat runs the step this many times. Zero means once.
	Repeat int `yaml:"repeat"`

	// Stride is added to every value of the step, driven and expected, at
	// each repetition.
	Stride uint64 `yaml:"stride"`

	Drive  Drive  `yaml:"drive"`
	Expect Expect `yaml:"expect"`
}

// Drive lists the inputs of a cycle. Unset inputs are low.
type Drive struct {
	Reset bool   `yaml:"reset"`
	Valid bool   `yaml:"valid"`
	Value uint64 `yaml:"value"`
	Ready bool   `yaml:"ready"`
}

// Expect lists the signals checked in a cycle. Nil fields are not checked.
// The handshake outputs are the registered values the producer and the
// consumer see during the cycle.
type Expect struct {
	OutputValid  *bool   `yaml:"output_valid"`
	OutputValue  *uint64 `yaml:"output_value"`
	InputReady   *bool   `yaml:"input_ready"`
	Accepted     *bool   `yaml:"accepted"`
	Drained      *bool   `yaml:"drained"`
	DrainedValue *uint64 `yaml:"drained_value"`
}

// LoadScenario decodes one YAML scenario.
func LoadScenario(r io.Reader) (Scenario, error) {
	var s Scenario

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	if err := dec.Decode(&s); err != nil {
		return Scenario{}, fmt.Errorf("%w: %w", ErrInvalidScenario, err)
	}

	if err := s.Validate(); err != nil {
		return Scenario{}, err
	}

	return s, nil
}

// LoadScenarioFile decodes the YAML scenario stored in a file.
func LoadScenarioFile(filename string) (Scenario, error) {
	f, err := os.Open(filename)
	if err != nil {
		return Scenario{}, err
	}
	defer f.Close()

	s, err := LoadScenario(f)
	if err != nil {
		return Scenario{}, fmt.Errorf("%s: %w", filename, err)
	}

	return s, nil
}

// BuiltinScenarios returns the scenarios shipped with the package, in the
// order they are meant to run.
func BuiltinScenarios() ([]Scenario, error) {
	entries, err := fs.ReadDir(builtinFS, "scenarios")
	if err != nil {
		return nil, err
	}

	scenarios := make([]Scenario, 0, len(entries))

	for _, entry := range entries {
		f, err := builtinFS.Open(path.Join("scenarios", entry.Name()))
		if err != nil {
			return nil, err
		}

		s, err := LoadScenario(f)
		f.Close()

		if err != nil {
			return nil, fmt.Errorf("%s: %w", entry.Name(), err)
		}

		scenarios = append(scenarios, s)
	}

	return scenarios, nil
}

// BuiltinScenario returns the built-in scenario with the given name.
func BuiltinScenario(name string) (Scenario, error) {
	scenarios, err := BuiltinScenarios()
	if err != nil {
		return Scenario{}, err
	}

	for _, s := range scenarios {
		if s.Name == name {
			return s, nil
		}
	}

	return Scenario{}, fmt.Errorf("%w: %q", ErrUnknownScenario, name)
}

// Validate checks that the scenario can be run.
func (s Scenario) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidScenario)
	}

	if len(s.Steps) == 0 {
		return fmt.Errorf("%w: %s has no steps", ErrInvalidScenario, s.Name)
	}

	if s.Width < 0 || s.Width > 64 {
		return fmt.Errorf("%w: %s has width %d",
			ErrInvalidScenario, s.Name, s.Width)
	}

	for i, step := range s.Steps {
		if step.Repeat < 0 {
			return fmt.Errorf("%w: %s step %d repeats %d times",
				ErrInvalidScenario, s.Name, i, step.Repeat)
		}
	}

	return nil
}

func (s Scenario) resetCycles() uint64 {
	if s.ResetCycles == nil {
		return DefaultResetCycles
	}

	return *s.ResetCycles
}

func (s Scenario) width() int {
	if s.Width == 0 {
		return elasticbuf.DefaultWidth
	}

	return s.Width
}

// cycle is one unrolled step.
type cycle struct {
	step   int
	drive  Drive
	expect Expect
}

func (s Scenario) unroll() []cycle {
	var cycles []cycle

	for i, step := range s.Steps {
		n := step.Repeat
		if n == 0 {
			n = 1
		}

		for k := 0; k < n; k++ {
			offset := uint64(k) * step.Stride

			c := cycle{step: i, drive: step.Drive, expect: step.Expect}
			c.drive.Value += offset
			c.expect.OutputValue = shifted(step.Expect.OutputValue, offset)
			c.expect.DrainedValue = shifted(step.Expect.DrainedValue, offset)

			cycles = append(cycles, c)
		}
	}

	return cycles
}

func shifted(v *uint64, offset uint64) *uint64 {
	if v == nil {
		return nil
	}

	n := *v + offset

	return &n
}

// Failure is an expectation a scenario cycle did not meet.
type Failure struct {
	Scenario string
	Step     int
	Cycle    uint64
	Signal   string
	Got      any
	Want     any
}

func (f Failure) Error() string {
	return fmt.Sprintf("%s: step %d (cycle %d): %s is %#v, want %#v: %v",
		f.Scenario, f.Step, f.Cycle, f.Signal, f.Got, f.Want,
		ErrExpectationFailed)
}

func (f Failure) Unwrap() error {
	return ErrExpectationFailed
}

// ScenarioResult is the outcome of a scenario run.
type ScenarioResult struct {
	Scenario   string
	Report     Report
	Failures   []Failure
	Violations []Violation
}

// Err returns nil if the scenario passed. Otherwise it joins every failed
// expectation and every scoreboard violation.
func (r ScenarioResult) Err() error {
	errs := make([]error, 0, len(r.Failures)+len(r.Violations))

	for _, f := range r.Failures {
		errs = append(errs, f)
	}

	for _, v := range r.Violations {
		errs = append(errs, fmt.Errorf("%s: %w", r.Scenario, v))
	}

	return errors.Join(errs...)
}
