// Package daemon assembles livechatd, the per-profile relay every tab of a
// profile connects to for cross-tab broadcast.
package daemon

import (
	"context"

	"github.com/matheus3301/livechat/internal/api"
	"github.com/matheus3301/livechat/internal/bus"
	"github.com/matheus3301/livechat/internal/lock"
	"github.com/matheus3301/livechat/internal/logging"
	"github.com/matheus3301/livechat/internal/metrics"
	"github.com/matheus3301/livechat/internal/session"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Params holds the resolved profile configuration passed to the fx module.
type Params struct {
	Profile     string
	SocketPath  string // optional override for testing; empty = use default
	LockPath    string // optional override for testing; empty = use default
	MetricsAddr string // empty disables /metrics
}

func (p Params) socketPath() string {
	if p.SocketPath != "" {
		return p.SocketPath
	}
	return session.SocketPath(p.Profile)
}

func (p Params) lockPath() string {
	if p.LockPath != "" {
		return p.LockPath
	}
	return session.LockPath(p.Profile)
}

// Module returns the fx module for the relay daemon.
func Module(p Params) fx.Option {
	return fx.Module("daemon",
		fx.Supply(p),
		fx.Provide(
			provideLogger,
			provideBus,
			provideLock,
			provideRelayService,
			provideServer,
			provideMetricsServer,
		),
		fx.Invoke(registerLifecycle),
	)
}

func provideLogger(p Params) (*zap.Logger, error) {
	if err := session.EnsureDir(p.Profile); err != nil {
		return nil, err
	}
	return logging.New(session.RelayLogPath(p.Profile), p.Profile, "relay")
}

func provideBus(logger *zap.Logger) *bus.Bus {
	return bus.New(bus.WithDropHook(func(evt bus.Event) {
		metrics.RelayDropped.Inc()
		logger.Debug("slow tab missed a frame", zap.String("kind", evt.Kind))
	}))
}

func provideLock(p Params, logger *zap.Logger) (*lock.Lock, error) {
	logger.Info("acquiring relay lock", zap.String("path", p.lockPath()))
	l, err := lock.Acquire(p.lockPath())
	if err != nil {
		return nil, err
	}
	logger.Info("relay lock acquired")
	return l, nil
}

func provideRelayService(b *bus.Bus, logger *zap.Logger) *api.RelayService {
	return api.NewRelayService(b, logger.Named("relay"))
}

// The lock is taken before the socket is touched.
func provideServer(p Params, _ *lock.Lock, relay *api.RelayService, logger *zap.Logger) (*Server, error) {
	return NewServer(p.socketPath(), relay, logger)
}

func provideMetricsServer(p Params, logger *zap.Logger) *MetricsServer {
	return NewMetricsServer(p.MetricsAddr, logger)
}

func registerLifecycle(lc fx.Lifecycle, srv *Server, ms *MetricsServer, lk *lock.Lock, logger *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			go func() {
				if err := srv.Start(); err != nil {
					logger.Error("gRPC server error", zap.Error(err))
				}
			}()
			ms.Start()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			ms.Stop(ctx)
			srv.Stop(ctx)
			if err := lk.Release(); err != nil {
				logger.Warn("error releasing lock", zap.Error(err))
			}
			logger.Info("relay stopped")
			_ = logger.Sync()
			return nil
		},
	})
}
