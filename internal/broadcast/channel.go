// Package broadcast is the same-device channel that keeps every tab of a
// profile in step. Delivery is unordered and at most once; every
// subscriber, including the poster's own tab, sees every envelope.
package broadcast

import (
	"github.com/matheus3301/livechat/internal/metrics"
	"go.uber.org/zap"
)

// Handler receives every envelope posted on the channel.
type Handler func(Envelope)

// Channel is one tab's handle on the profile's broadcast channel.
type Channel interface {
	// Post publishes an event. It never blocks and never fails; problems
	// are logged and the event is lost.
	Post(eventType EventType, payload any)
	// Subscribe registers h and returns a function that removes it.
	Subscribe(h Handler) (unsubscribe func())
	Close() error
}

// Deliver parses a raw frame and hands it to h. Malformed frames are
// logged and skipped.
func Deliver(logger *zap.Logger, h Handler, frame []byte) {
	env, err := Parse(frame)
	if err != nil {
		logger.Warn("dropping malformed broadcast frame", zap.Error(err))
		metrics.BroadcastFailed.WithLabelValues("malformed").Inc()
		return
	}
	metrics.BroadcastReceived.WithLabelValues(string(env.Type)).Inc()
	h(env)
}
