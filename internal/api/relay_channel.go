package api

import (
	"context"
	"sync"
	"time"

	"github.com/matheus3301/livechat/internal/broadcast"
	"github.com/matheus3301/livechat/internal/metrics"
	"go.uber.org/zap"
)

// RelayChannel is a broadcast.Channel reaching the other tabs of a profile
// through the relay daemon.
//
// Posts are queued and sent by a single goroutine; when the queue is full
// the frame is dropped. Subscriptions hold one server stream each and
// re-open it after a pause if the relay goes away. Frames published while
// a stream is down are not replayed.
type RelayChannel struct {
	client *RelayClient
	logger *zap.Logger
	queue  chan []byte
	retry  time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewRelayChannel starts a channel on client with room for queueSize
// pending posts.
func NewRelayChannel(client *RelayClient, queueSize int, logger *zap.Logger) *RelayChannel {
	ctx, cancel := context.WithCancel(context.Background())
	c := &RelayChannel{
		client: client,
		logger: logger,
		queue:  make(chan []byte, queueSize),
		retry:  time.Second,
		ctx:    ctx,
		cancel: cancel,
	}
	c.wg.Add(1)
	go c.sendLoop()
	return c
}

func (c *RelayChannel) Post(eventType broadcast.EventType, payload any) {
	frame, err := broadcast.Encode(eventType, payload)
	if err != nil {
		c.logger.Error("broadcast encode failed", zap.String("type", string(eventType)), zap.Error(err))
		metrics.BroadcastFailed.WithLabelValues("encode").Inc()
		return
	}
	select {
	case c.queue <- frame:
		metrics.BroadcastPosted.WithLabelValues(string(eventType)).Inc()
	default:
		c.logger.Warn("broadcast queue full, dropping", zap.String("type", string(eventType)))
		metrics.BroadcastFailed.WithLabelValues("queue_full").Inc()
	}
}

func (c *RelayChannel) sendLoop() {
	defer c.wg.Done()
	for {
		select {
		case frame := <-c.queue:
			ctx, cancel := context.WithTimeout(c.ctx, 2*time.Second)
			if err := c.client.Publish(ctx, frame); err != nil {
				c.logger.Warn("relay publish failed", zap.Error(err))
				metrics.BroadcastFailed.WithLabelValues("publish").Inc()
			}
			cancel()
		case <-c.ctx.Done():
			return
		}
	}
}

func (c *RelayChannel) Subscribe(h broadcast.Handler) func() {
	ctx, cancel := context.WithCancel(c.ctx)
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		for {
			c.consume(ctx, h)
			select {
			case <-ctx.Done():
				return
			case <-time.After(c.retry):
			}
		}
	}()
	return cancel
}

func (c *RelayChannel) consume(ctx context.Context, h broadcast.Handler) {
	frames, err := c.client.Subscribe(ctx)
	if err != nil {
		if ctx.Err() == nil {
			c.logger.Warn("relay subscribe failed", zap.Error(err))
		}
		return
	}
	for {
		frame, err := frames.Recv()
		if err != nil {
			if ctx.Err() == nil {
				c.logger.Warn("relay stream closed", zap.Error(err))
			}
			return
		}
		broadcast.Deliver(c.logger, h, frame)
	}
}

// Close stops sending and ends every subscription.
func (c *RelayChannel) Close() error {
	c.cancel()
	c.wg.Wait()
	return nil
}
