package tracing

import (
	"log"

	"github.com/sarchlab/elasticbuf/elasticbuf"
	"github.com/sarchlab/elasticbuf/hooking"
	"github.com/sarchlab/elasticbuf/timing"
)

// TransferLogger is a buffer hook that logs every accept, drain, and reset.
type TransferLogger struct {
	logger     *log.Logger
	timeTeller timing.TimeTeller
}

// NewTransferLogger creates a TransferLogger.
func NewTransferLogger(
	logger *log.Logger,
	timeTeller timing.TimeTeller,
) *TransferLogger {
	return &TransferLogger{
		logger:     logger,
		timeTeller: timeTeller,
	}
}

// Func writes a line for the hook.
func (h *TransferLogger) Func(ctx hooking.HookCtx) {
	name := "?"
	if d, ok := ctx.Domain.(hooking.NamedHookable); ok {
		name = d.Name()
	}

	now := h.timeTeller.CurrentTime()

	switch ctx.Pos {
	case elasticbuf.HookPosAccept:
		h.logger.Printf("%d, %s, accept, %#x",
			now, name, uint64(ctx.Item.(elasticbuf.Element)))
	case elasticbuf.HookPosDrain:
		h.logger.Printf("%d, %s, drain, %#x",
			now, name, uint64(ctx.Item.(elasticbuf.Element)))
	case elasticbuf.HookPosReset:
		discarded := ctx.Item.(elasticbuf.State)
		if discarded.Size() > 0 {
			h.logger.Printf("%d, %s, reset, discarding %s",
				now, name, discarded)
		}
	}
}
