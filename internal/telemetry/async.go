package telemetry

import (
	"context"
	"time"

	"go.uber.org/zap"
)

const emitTimeout = 5 * time.Second

// ShutdownDrainDuration is how long the server waits after closing the listener before it
// shuts the providers down, so pending EmitAsync calls can finish.
const ShutdownDrainDuration = emitTimeout

// EmitAsync hands event to emitter on its own goroutine, detached from the request context
// and bounded by emitTimeout. Failures are logged. Nil arguments are ignored.
func EmitAsync(emitter EventEmitter, event *Event) {
	if emitter == nil || event == nil {
		return
	}
	go emitDetached(emitter, event)
}

func emitDetached(emitter EventEmitter, event *Event) {
	ctx, cancel := context.WithTimeout(context.Background(), emitTimeout)
	defer cancel()
	if err := emitter.Emit(ctx, event); err != nil {
		zap.L().Warn("telemetry: async emit failed",
			zap.String("event_type", event.EventType),
			zap.String("source", event.Source),
			zap.Error(err))
	}
}
