package tracing

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"sync"
	"time"

	"github.com/sarchlab/elasticbuf/timing"
	"github.com/sarchlab/elasticbuf/verification"
)

type vcdVar struct {
	id    string
	name  string
	width int
	mask  uint64
	last  uint64
	dirty bool
}

// WaveformWriter dumps the bench signals as a Value Change Dump, one clock
// period per sample. The clock rises at the start of each cycle.
type WaveformWriter struct {
	mu sync.Mutex
	w  *bufio.Writer

	scope    string
	periodPS uint64

	clk    *vcdVar
	rstn   *vcdVar
	iValid *vcdVar
	iData  *vcdVar
	iReady *vcdVar
	oValid *vcdVar
	oData  *vcdVar
	oReady *vcdVar
	vars   []*vcdVar

	started    bool
	terminated bool
	err        error
}

// NewWaveformWriter creates a writer for a buffer of the given element width
// clocked at freq. The signals are placed in a module named scope.
func NewWaveformWriter(
	w io.Writer,
	scope string,
	freq timing.FreqInHz,
	width int,
) *WaveformWriter {
	if freq == 0 {
		panic(timing.ErrZeroFrequency)
	}

	periodPS := uint64(1e12) / uint64(freq)
	if periodPS < 2 {
		panic(fmt.Sprintf("frequency %s is too high for a waveform", freq))
	}

	ww := &WaveformWriter{
		w:        bufio.NewWriter(w),
		scope:    scope,
		periodPS: periodPS,
	}

	ww.clk = ww.addVar("clk", 1)
	ww.rstn = ww.addVar("rstn", 1)
	ww.iValid = ww.addVar("i_valid", 1)
	ww.iData = ww.addVar("i_data", width)
	ww.iReady = ww.addVar("i_ready", 1)
	ww.oValid = ww.addVar("o_valid", 1)
	ww.oData = ww.addVar("o_data", width)
	ww.oReady = ww.addVar("o_ready", 1)

	return ww
}

func (ww *WaveformWriter) addVar(name string, width int) *vcdVar {
	// Identifiers are printable ASCII characters starting at '!'.
	v := &vcdVar{
		id:    string(rune('!' + len(ww.vars))),
		name:  name,
		width: width,
		mask:  ^uint64(0),
	}

	if width < 64 {
		v.mask = 1<<uint(width) - 1
	}
	ww.vars = append(ww.vars, v)

	return v
}

// TraceSample writes the signal changes of the cycle.
func (ww *WaveformWriter) TraceSample(s verification.Sample) {
	ww.mu.Lock()
	defer ww.mu.Unlock()

	if ww.terminated || ww.err != nil {
		return
	}

	if !ww.started {
		ww.writeHeader()
	}

	rise := uint64(s.Time) * ww.periodPS

	ww.set(ww.clk, 1)
	ww.set(ww.rstn, bit(!s.Inputs.Reset))
	ww.set(ww.iValid, bit(s.Inputs.InputValid))
	ww.set(ww.iData, uint64(s.Inputs.InputValue))
	ww.set(ww.iReady, bit(s.Inputs.OutputReady))
	ww.set(ww.oValid, bit(s.Outputs.OutputValid))
	ww.set(ww.oData, uint64(s.Outputs.OutputValue))
	ww.set(ww.oReady, bit(s.Outputs.InputReady))

	if !ww.started {
		ww.printf("#%d\n$dumpvars\n", rise)
		ww.dumpAll()
		ww.printf("$end\n")
		ww.started = true
	} else {
		ww.printf("#%d\n", rise)
		ww.dumpChanged()
	}

	ww.set(ww.clk, 0)
	ww.printf("#%d\n", rise+ww.periodPS/2)
	ww.dumpChanged()
}

func (ww *WaveformWriter) writeHeader() {
	ww.printf("$date\n\t%s\n$end\n", time.Now().Format(time.RFC1123))
	ww.printf("$version\n\telasticbuf\n$end\n")
	ww.printf("$timescale 1ps $end\n")
	ww.printf("$scope module %s $end\n", ww.scope)

	for _, v := range ww.vars {
		ww.printf("$var wire %d %s %s $end\n", v.width, v.id, v.name)
	}

	ww.printf("$upscope $end\n$enddefinitions $end\n")
}

// set updates a variable. Values wider than the variable are truncated to
// its declared width.
func (ww *WaveformWriter) set(v *vcdVar, value uint64) {
	value &= v.mask

	if !ww.started || v.last != value {
		v.dirty = true
	}

	v.last = value
}

func (ww *WaveformWriter) dumpAll() {
	for _, v := range ww.vars {
		ww.dump(v)
	}
}

func (ww *WaveformWriter) dumpChanged() {
	for _, v := range ww.vars {
		if v.dirty {
			ww.dump(v)
		}
	}
}

func (ww *WaveformWriter) dump(v *vcdVar) {
	v.dirty = false

	if v.width == 1 {
		ww.printf("%d%s\n", v.last, v.id)
		return
	}

	ww.printf("b%s %s\n", strconv.FormatUint(v.last, 2), v.id)
}

func (ww *WaveformWriter) printf(format string, args ...any) {
	if ww.err != nil {
		return
	}

	_, ww.err = fmt.Fprintf(ww.w, format, args...)
}

// Terminate flushes the output.
func (ww *WaveformWriter) Terminate() {
	ww.mu.Lock()
	defer ww.mu.Unlock()

	if ww.terminated {
		return
	}

	ww.terminated = true

	if ww.err == nil {
		ww.err = ww.w.Flush()
	}
}

// Err returns the first write error, if any.
func (ww *WaveformWriter) Err() error {
	ww.mu.Lock()
	defer ww.mu.Unlock()

	return ww.err
}

func bit(b bool) uint64 {
	if b {
		return 1
	}

	return 0
}
