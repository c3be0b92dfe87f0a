package timing

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// VTimeInCycle is the simulation time, counted in cycles of the clock that
// drives the engine.
type VTimeInCycle uint64

// VTimeInSec is a wall-clock duration in the simulated world.
type VTimeInSec float64

// FreqInHz is a clock frequency.
type FreqInHz uint64

// Frequency units.
const (
	Hz  FreqInHz = 1
	KHz FreqInHz = 1000 * Hz
	MHz FreqInHz = 1000 * KHz
	GHz FreqInHz = 1000 * MHz
)

// ErrZeroFrequency is returned when a zero frequency is given where a clock is
// needed.
var ErrZeroFrequency = errors.New("timing: frequency must be greater than zero")

// Period returns the time between two rising edges.
func (f FreqInHz) Period() VTimeInSec {
	if f == 0 {
		panic(ErrZeroFrequency)
	}

	return VTimeInSec(1.0 / float64(f))
}

// CyclesToSec converts a cycle count into seconds.
func (f FreqInHz) CyclesToSec(c VTimeInCycle) VTimeInSec {
	return VTimeInSec(float64(c) * float64(f.Period()))
}

// String prints the frequency with the largest unit that divides it.
func (f FreqInHz) String() string {
	switch {
	case f >= GHz && f%GHz == 0:
		return fmt.Sprintf("%dGHz", f/GHz)
	case f >= MHz && f%MHz == 0:
		return fmt.Sprintf("%dMHz", f/MHz)
	case f >= KHz && f%KHz == 0:
		return fmt.Sprintf("%dKHz", f/KHz)
	default:
		return fmt.Sprintf("%dHz", uint64(f))
	}
}

// ParseFreq parses strings like "100MHz", "1GHz", "250khz", or "50".
func ParseFreq(s string) (FreqInHz, error) {
	str := strings.ToLower(strings.TrimSpace(s))

	unit := Hz
	for _, u := range []struct {
		suffix string
		unit   FreqInHz
	}{
		{"ghz", GHz},
		{"mhz", MHz},
		{"khz", KHz},
		{"hz", Hz},
	} {
		if strings.HasSuffix(str, u.suffix) {
			unit = u.unit
			str = strings.TrimSpace(strings.TrimSuffix(str, u.suffix))

			break
		}
	}

	n, err := strconv.ParseUint(str, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("timing: invalid frequency %q: %w", s, err)
	}

	if n == 0 {
		return 0, ErrZeroFrequency
	}

	return FreqInHz(n) * unit, nil
}
