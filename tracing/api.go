// Package tracing turns what a bench does into records: database tables,
// waveforms, log lines, and metrics.
package tracing

import (
	"fmt"
	"reflect"

	"github.com/sarchlab/elasticbuf/hooking"
	"github.com/sarchlab/elasticbuf/verification"
)

// A Tracer consumes bench samples.
type Tracer interface {
	// TraceSample records one cycle.
	TraceSample(s verification.Sample)

	// Terminate writes out what is still buffered. No sample may follow.
	Terminate()
}

// CollectSamples lets the tracer receive every sample of a bench.
func CollectSamples(domain hooking.NamedHookable, tracer Tracer) {
	for _, hook := range domain.Hooks() {
		h, ok := hook.(*sampleHook)
		if ok && h.t == tracer {
			panic(fmt.Sprintf(
				"domain %s already has tracer %s",
				domain.Name(), reflect.TypeOf(tracer)))
		}
	}

	domain.AcceptHook(&sampleHook{t: tracer})
}

type sampleHook struct {
	t Tracer
}

func (h *sampleHook) Func(ctx hooking.HookCtx) {
	if ctx.Pos != verification.HookPosSample {
		return
	}

	h.t.TraceSample(ctx.Item.(verification.Sample))
}
