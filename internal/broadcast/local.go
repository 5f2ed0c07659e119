package broadcast

import (
	"time"

	"github.com/matheus3301/livechat/internal/bus"
	"github.com/matheus3301/livechat/internal/metrics"
	"go.uber.org/zap"
)

// Namespace is the bus namespace broadcast frames travel under.
const Namespace = "broadcast."

// Local is a Channel between tabs living in one process, carried by a
// bus.Bus. Frames are JSON-encoded exactly as on the cross-process
// transports.
type Local struct {
	bus     *bus.Bus
	logger  *zap.Logger
	bufSize int
}

// NewLocal creates a channel on b.
func NewLocal(b *bus.Bus, logger *zap.Logger) *Local {
	return &Local{bus: b, logger: logger, bufSize: 256}
}

func (l *Local) Post(eventType EventType, payload any) {
	frame, err := Encode(eventType, payload)
	if err != nil {
		l.logger.Error("broadcast encode failed", zap.String("type", string(eventType)), zap.Error(err))
		metrics.BroadcastFailed.WithLabelValues("encode").Inc()
		return
	}
	l.bus.Publish(bus.Event{
		Kind:      Namespace + string(eventType),
		Timestamp: time.Now(),
		Payload:   frame,
	})
	metrics.BroadcastPosted.WithLabelValues(string(eventType)).Inc()
}

func (l *Local) Subscribe(h Handler) func() {
	ch, unsub := l.bus.Subscribe(Namespace, l.bufSize)
	go func() {
		for evt := range ch {
			frame, ok := evt.Payload.([]byte)
			if !ok {
				continue
			}
			Deliver(l.logger, h, frame)
		}
	}()
	return unsub
}

func (l *Local) Close() error { return nil }
