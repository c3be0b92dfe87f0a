package timing

import (
	"sync"

	"github.com/sarchlab/elasticbuf/hooking"
)

// A Ticker updates its state cycle by cycle.
type Ticker interface {
	// Tick advances the state by one cycle and reports whether anything
	// changed, i.e., whether it is worth ticking again.
	Tick() bool
}

// TickScheduler schedules tick events for a handler, at most one per cycle.
type TickScheduler struct {
	lock      sync.Mutex
	handler   Handler
	Freq      FreqInHz
	Engine    EventScheduler
	secondary bool

	nextTickTime VTimeInCycle
	scheduled    bool
}

// NewTickScheduler creates a scheduler for tick events.
func NewTickScheduler(
	handler Handler,
	engine EventScheduler,
	freq FreqInHz,
) *TickScheduler {
	if freq == 0 {
		panic(ErrZeroFrequency)
	}

	return &TickScheduler{
		handler: handler,
		Engine:  engine,
		Freq:    freq,
	}
}

// NewSecondaryTickScheduler creates a scheduler that always schedules
// secondary tick events.
func NewSecondaryTickScheduler(
	handler Handler,
	engine EventScheduler,
	freq FreqInHz,
) *TickScheduler {
	t := NewTickScheduler(handler, engine, freq)
	t.secondary = true

	return t
}

// TickNow schedules a tick event in the current cycle.
func (t *TickScheduler) TickNow() {
	t.schedule(t.CurrentTime())
}

// TickLater schedules a tick event in the next cycle.
func (t *TickScheduler) TickLater() {
	t.schedule(t.CurrentTime() + 1)
}

func (t *TickScheduler) schedule(at VTimeInCycle) {
	t.lock.Lock()
	defer t.lock.Unlock()

	if t.scheduled && t.nextTickTime >= at {
		return
	}

	tick := MakeTickEvent(t.handler, at)
	tick.secondary = t.secondary

	t.nextTickTime = at
	t.scheduled = true
	t.Engine.Schedule(tick)
}

// CurrentTime returns the current cycle of the engine.
func (t *TickScheduler) CurrentTime() VTimeInCycle {
	return t.Engine.CurrentTime()
}

// TickingComponent is a component that updates its state from cycle to
// cycle. A programmer only needs to provide the Tick function.
type TickingComponent struct {
	*hooking.HookableBase
	*TickScheduler

	name   string
	ticker Ticker
}

// NewTickingComponent creates a new ticking component.
func NewTickingComponent(
	name string,
	engine EventScheduler,
	freq FreqInHz,
	ticker Ticker,
) *TickingComponent {
	tc := &TickingComponent{
		HookableBase: hooking.NewHookableBase(),
		name:         name,
		ticker:       ticker,
	}
	tc.TickScheduler = NewTickScheduler(tc, engine, freq)

	return tc
}

// Name returns the name of the component.
func (c *TickingComponent) Name() string {
	return c.name
}

// Handle runs one tick and keeps ticking as long as progress is made.
func (c *TickingComponent) Handle(_ Event) error {
	if c.ticker.Tick() {
		c.TickLater()
	}

	return nil
}
