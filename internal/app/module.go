// Package app assembles one tab: store, broadcast channel and chat
// manager for a profile, plus the terminal UI on top.
package app

import (
	"context"
	"fmt"

	"github.com/benbjohnson/clock"
	"github.com/matheus3301/livechat/internal/api"
	"github.com/matheus3301/livechat/internal/broadcast"
	"github.com/matheus3301/livechat/internal/bus"
	"github.com/matheus3301/livechat/internal/chat"
	"github.com/matheus3301/livechat/internal/config"
	"github.com/matheus3301/livechat/internal/logging"
	"github.com/matheus3301/livechat/internal/session"
	"github.com/matheus3301/livechat/internal/store"
	"github.com/matheus3301/livechat/internal/tui"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

// Params is the resolved tab configuration.
type Params struct {
	Profile string
	Config  *config.Config
	// Logger replaces the profile's file logger when set (tests).
	Logger *zap.Logger
}

// Module is a full tab with the terminal UI.
func Module(p Params) fx.Option {
	return fx.Options(
		Core(p),
		fx.Module("tui",
			fx.Provide(
				fx.Annotate(provideUI, fx.As(fx.Self()), fx.As(new(chat.Notifier))),
			),
			fx.Invoke(registerUI),
		),
	)
}

// Core is a tab without presentation: the manager runs against the
// profile's store and channel.
func Core(p Params) fx.Option {
	return fx.Module("tab",
		Storage(p),
		fx.Provide(
			provideMachine,
			provideManager,
		),
		fx.Invoke(registerManager),
	)
}

// Storage is the profile's store and broadcast channel, without a
// manager. livechatctl reads and watches a profile through it.
func Storage(p Params) fx.Option {
	return fx.Options(
		fx.Supply(p),
		fx.WithLogger(func(logger *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: logger.Named("fx")}
		}),
		fx.Provide(
			provideLogger,
			provideClock,
			provideBus,
			provideRedis,
			provideBackend,
			provideStore,
			provideChannel,
		),
	)
}

func provideLogger(p Params) (*zap.Logger, error) {
	if p.Logger != nil {
		return p.Logger, nil
	}
	if err := session.EnsureDir(p.Profile); err != nil {
		return nil, err
	}
	return logging.New(session.TabLogPath(p.Profile), p.Profile, "tab", logging.FileOnly())
}

func provideClock() clock.Clock { return clock.New() }

func provideBus() *bus.Bus { return bus.New() }

// provideRedis builds the client eagerly; it does not connect until the
// first command, so sqlite/relay profiles never touch the network.
func provideRedis(lc fx.Lifecycle, p Params) *redis.Client {
	rc := p.Config.Redis
	client := redis.NewClient(&redis.Options{
		Addr:     rc.Addr,
		Password: rc.Password,
		DB:       rc.DB,
	})
	lc.Append(fx.StopHook(client.Close))
	return client
}

func provideBackend(lc fx.Lifecycle, p Params, rdb *redis.Client, logger *zap.Logger) (store.Backend, error) {
	switch p.Config.Store.Backend {
	case "redis":
		logger.Info("store on redis", zap.String("addr", p.Config.Redis.Addr))
		return store.NewRedis(rdb, p.Config.Redis.Prefix), nil
	default:
		if err := session.EnsureDir(p.Profile); err != nil {
			return nil, err
		}
		path := session.StorePath(p.Profile)
		db, err := store.Open(path)
		if err != nil {
			return nil, err
		}
		result, err := db.Migrate()
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		logger.Info("store opened",
			zap.String("path", path),
			zap.Uint("version", result.Version),
			zap.Bool("migrated", result.Changed),
		)
		lc.Append(fx.StopHook(db.Close))
		return db, nil
	}
}

func provideStore(b store.Backend, clk clock.Clock, logger *zap.Logger) *store.Store {
	return store.New(b, clk, logger.Named("store"))
}

func provideChannel(lc fx.Lifecycle, p Params, b *bus.Bus, rdb *redis.Client, logger *zap.Logger) (broadcast.Channel, error) {
	cfg := p.Config
	logger = logger.Named("broadcast")

	var ch broadcast.Channel
	switch cfg.Broadcast.Transport {
	case "relay":
		socketPath := session.SocketPath(p.Profile)
		conn, err := api.Dial(socketPath)
		if err != nil {
			return nil, fmt.Errorf("app.provideChannel: %w", err)
		}
		lc.Append(fx.StopHook(conn.Close))
		ch = api.NewRelayChannel(api.NewRelayClient(conn), cfg.Broadcast.QueueSize, logger)
	case "redis":
		ch = broadcast.NewRedis(broadcast.RedisPubSub{Client: rdb}, cfg.Redis.Prefix+"broadcast", cfg.Broadcast.QueueSize, logger)
	default:
		ch = broadcast.NewLocal(b, logger)
	}
	logger.Info("broadcast channel ready", zap.String("transport", cfg.Broadcast.Transport))
	// Registered after the connection's hook, so it runs first on stop.
	lc.Append(fx.StopHook(ch.Close))
	return ch, nil
}

func provideMachine(b *bus.Bus) *session.Machine {
	return session.NewMachine(b)
}

type managerIn struct {
	fx.In

	Store    *store.Store
	Channel  broadcast.Channel
	Clock    clock.Clock
	Logger   *zap.Logger
	Session  *session.Machine
	Notifier chat.Notifier `optional:"true"`
}

func provideManager(in managerIn) *chat.Manager {
	return chat.New(chat.Deps{
		Store:    in.Store,
		Channel:  in.Channel,
		Clock:    in.Clock,
		Logger:   in.Logger.Named("chat"),
		Notifier: in.Notifier,
		Session:  in.Session,
	})
}

func registerManager(lc fx.Lifecycle, m *chat.Manager, logger *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			m.Start()
			return nil
		},
		OnStop: func(context.Context) error {
			// A closed tab stops counting as online.
			m.SetVisible(false)
			m.Stop()
			logger.Info("tab stopped")
			_ = logger.Sync()
			return nil
		},
	})
}

func provideUI(p Params, logger *zap.Logger) *tui.App {
	return tui.New(p.Profile, logger.Named("tui"))
}

func registerUI(lc fx.Lifecycle, sd fx.Shutdowner, ui *tui.App, m *chat.Manager, logger *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			ui.Bind(m)
			go func() {
				if err := ui.Run(); err != nil {
					logger.Error("tui exited", zap.Error(err))
				}
				_ = sd.Shutdown()
			}()
			return nil
		},
		OnStop: func(context.Context) error {
			ui.Stop()
			return nil
		},
	})
}
