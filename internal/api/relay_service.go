package api

import (
	"context"
	"time"

	"github.com/matheus3301/livechat/internal/broadcast"
	"github.com/matheus3301/livechat/internal/bus"
	"github.com/matheus3301/livechat/internal/metrics"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	grpcstatus "google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// RelayService fans every published frame out to every subscribed tab of
// the profile. A subscriber that falls behind misses frames.
type RelayService struct {
	bus     *bus.Bus
	logger  *zap.Logger
	bufSize int
}

// NewRelayService creates a relay on b.
func NewRelayService(b *bus.Bus, logger *zap.Logger) *RelayService {
	return &RelayService{
		bus:     b,
		logger:  logger,
		bufSize: 256,
	}
}

func (s *RelayService) Ping(_ context.Context, _ *emptypb.Empty) (*emptypb.Empty, error) {
	return &emptypb.Empty{}, nil
}

func (s *RelayService) Publish(_ context.Context, in *wrapperspb.BytesValue) (*emptypb.Empty, error) {
	frame := in.GetValue()
	env, err := broadcast.Parse(frame)
	if err != nil {
		return nil, grpcstatus.Errorf(codes.InvalidArgument, "%v", err)
	}
	metrics.RelayEvents.WithLabelValues(string(env.Type)).Inc()
	n := s.bus.Publish(bus.Event{
		Kind:      broadcast.Namespace + string(env.Type),
		Timestamp: time.Now(),
		Payload:   frame,
	})
	s.logger.Debug("frame relayed", zap.String("type", string(env.Type)), zap.Int("subscribers", n))
	return &emptypb.Empty{}, nil
}

func (s *RelayService) Subscribe(_ *emptypb.Empty, stream RelaySubscribeStream) error {
	ch, unsub := s.bus.Subscribe(broadcast.Namespace, s.bufSize)
	defer unsub()

	metrics.RelaySubscribers.Inc()
	defer metrics.RelaySubscribers.Dec()
	s.logger.Info("tab subscribed")
	defer s.logger.Info("tab unsubscribed")

	for {
		select {
		case evt, ok := <-ch:
			if !ok {
				return nil
			}
			frame, ok := evt.Payload.([]byte)
			if !ok {
				continue
			}
			if err := stream.Send(wrapperspb.Bytes(frame)); err != nil {
				return err
			}
		case <-stream.Context().Done():
			return nil
		}
	}
}
