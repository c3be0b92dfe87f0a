package monitoring

import (
	"sync"
	"time"

	"github.com/sarchlab/elasticbuf/hooking"
	"github.com/sarchlab/elasticbuf/verification"
)

// A ProgressBar tracks elements going through a bench. An element is in
// progress between its accept and its drain.
type ProgressBar struct {
	sync.Mutex
	ID         string
	Name       string
	StartTime  time.Time
	Total      uint64
	Finished   uint64
	InProgress uint64
	Discarded  uint64
}

// IncrementInProgress adds the number of in-progress element.
func (b *ProgressBar) IncrementInProgress(amount uint64) {
	b.Lock()
	defer b.Unlock()

	b.InProgress += amount
}

// MoveInProgressToFinished reduces the number of in progress item by a certain
// amount and increase the finished item by the same amount.
func (b *ProgressBar) MoveInProgressToFinished(amount uint64) {
	b.Lock()
	defer b.Unlock()

	b.InProgress -= amount
	b.Finished += amount
}

// DiscardInProgress drops every in-progress item, as a reset does.
func (b *ProgressBar) DiscardInProgress() {
	b.Lock()
	defer b.Unlock()

	b.Discarded += b.InProgress
	b.InProgress = 0
}

// ProgressSnapshot is a copy of the counters of a ProgressBar.
type ProgressSnapshot struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	StartTime  time.Time `json:"start_time"`
	Total      uint64    `json:"total"`
	Finished   uint64    `json:"finished"`
	InProgress uint64    `json:"in_progress"`
	Discarded  uint64    `json:"discarded"`
}

// Snapshot returns a copy of the counters that is safe to read.
func (b *ProgressBar) Snapshot() ProgressSnapshot {
	b.Lock()
	defer b.Unlock()

	return ProgressSnapshot{
		ID:         b.ID,
		Name:       b.Name,
		StartTime:  b.StartTime,
		Total:      b.Total,
		Finished:   b.Finished,
		InProgress: b.InProgress,
		Discarded:  b.Discarded,
	}
}

// Func updates the bar from a bench sample.
func (b *ProgressBar) Func(ctx hooking.HookCtx) {
	if ctx.Pos != verification.HookPosSample {
		return
	}

	s := ctx.Item.(verification.Sample)

	if s.Inputs.Reset {
		b.DiscardInProgress()
		return
	}

	if s.Transfer.Drained {
		b.MoveInProgressToFinished(1)
	}

	if s.Transfer.Accepted {
		b.IncrementInProgress(1)
	}
}
