package broadcast

import (
	"context"
	"sync"
	"time"

	"github.com/matheus3301/livechat/internal/metrics"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// PubSubClient is the subset of a redis client the channel needs.
type PubSubClient interface {
	Publish(ctx context.Context, channel string, message any) *redis.IntCmd
	Subscribe(ctx context.Context, channel string) Subscription
}

// Subscription is one live SUBSCRIBE. *redis.PubSub satisfies it.
type Subscription interface {
	Channel(opts ...redis.ChannelOption) <-chan *redis.Message
	Close() error
}

// RedisPubSub adapts *redis.Client to PubSubClient.
type RedisPubSub struct {
	*redis.Client
}

func (c RedisPubSub) Subscribe(ctx context.Context, channel string) Subscription {
	return c.Client.Subscribe(ctx, channel)
}

// Redis is a Channel over redis PUBLISH/SUBSCRIBE, for tabs that share a
// redis-backed store instead of a local relay.
type Redis struct {
	client  PubSubClient
	channel string
	logger  *zap.Logger
	queue   chan []byte
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	mu   sync.Mutex
	subs []Subscription
}

// NewRedis starts a redis channel named channel. queueSize bounds the
// number of frames waiting to be published.
func NewRedis(client PubSubClient, channel string, queueSize int, logger *zap.Logger) *Redis {
	ctx, cancel := context.WithCancel(context.Background())
	r := &Redis{
		client:  client,
		channel: channel,
		logger:  logger,
		queue:   make(chan []byte, queueSize),
		ctx:     ctx,
		cancel:  cancel,
	}
	r.wg.Add(1)
	go r.sendLoop()
	return r
}

func (r *Redis) Post(eventType EventType, payload any) {
	frame, err := Encode(eventType, payload)
	if err != nil {
		r.logger.Error("broadcast encode failed", zap.String("type", string(eventType)), zap.Error(err))
		metrics.BroadcastFailed.WithLabelValues("encode").Inc()
		return
	}
	select {
	case r.queue <- frame:
		metrics.BroadcastPosted.WithLabelValues(string(eventType)).Inc()
	default:
		r.logger.Warn("broadcast queue full, dropping", zap.String("type", string(eventType)))
		metrics.BroadcastFailed.WithLabelValues("queue_full").Inc()
	}
}

func (r *Redis) sendLoop() {
	defer r.wg.Done()
	for {
		select {
		case frame := <-r.queue:
			ctx, cancel := context.WithTimeout(r.ctx, 2*time.Second)
			if err := r.client.Publish(ctx, r.channel, frame).Err(); err != nil {
				r.logger.Warn("redis publish failed", zap.Error(err))
				metrics.BroadcastFailed.WithLabelValues("publish").Inc()
			}
			cancel()
		case <-r.ctx.Done():
			return
		}
	}
}

func (r *Redis) Subscribe(h Handler) func() {
	ps := r.client.Subscribe(r.ctx, r.channel)
	r.mu.Lock()
	r.subs = append(r.subs, ps)
	r.mu.Unlock()
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		for msg := range ps.Channel() {
			Deliver(r.logger, h, []byte(msg.Payload))
		}
	}()
	var once sync.Once
	return func() {
		once.Do(func() { _ = ps.Close() })
	}
}

// Close stops the sender and every subscription started from this channel.
func (r *Redis) Close() error {
	r.cancel()
	r.mu.Lock()
	for _, ps := range r.subs {
		_ = ps.Close()
	}
	r.subs = nil
	r.mu.Unlock()
	r.wg.Wait()
	return nil
}
