package daemon

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/matheus3301/livechat/internal/api"
	"github.com/matheus3301/livechat/internal/metrics"
	"go.uber.org/zap"
	"google.golang.org/grpc"
)

// Server manages the relay's gRPC server on the profile's Unix socket.
type Server struct {
	grpcServer *grpc.Server
	listener   net.Listener
	socketPath string
	logger     *zap.Logger
}

// NewServer binds the relay service to socketPath. A stale socket left by
// a crashed relay is removed first; the lock guarantees nobody else owns it.
func NewServer(socketPath string, relay *api.RelayService, logger *zap.Logger) (*Server, error) {
	const op = "daemon.NewServer"

	if _, err := os.Stat(socketPath); err == nil {
		_ = os.Remove(socketPath)
	}
	listener, err := net.Listen("unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("%s: listen unix socket: %w", op, err)
	}
	if err := os.Chmod(socketPath, 0600); err != nil {
		_ = listener.Close()
		return nil, fmt.Errorf("%s: chmod socket: %w", op, err)
	}

	srv := grpc.NewServer()
	api.RegisterRelayServer(srv, relay)

	return &Server{
		grpcServer: srv,
		listener:   listener,
		socketPath: socketPath,
		logger:     logger,
	}, nil
}

// SocketPath is where the server listens.
func (s *Server) SocketPath() string { return s.socketPath }

// Start serves until Stop. Blocks.
func (s *Server) Start() error {
	s.logger.Info("relay listening", zap.String("socket", s.socketPath))
	return s.grpcServer.Serve(s.listener)
}

// Stop waits for streams to end, bounded by ctx, then removes the socket.
// Subscribe streams never end on their own, so expiry of ctx forces them.
func (s *Server) Stop(ctx context.Context) {
	s.logger.Info("relay stopping")
	done := make(chan struct{})
	go func() {
		s.grpcServer.GracefulStop()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		s.grpcServer.Stop()
	}
	_ = os.Remove(s.socketPath)
}

// MetricsServer exposes /metrics over HTTP. A nil *MetricsServer is valid
// and does nothing.
type MetricsServer struct {
	srv    *http.Server
	logger *zap.Logger
}

// NewMetricsServer returns nil when addr is empty.
func NewMetricsServer(addr string, logger *zap.Logger) *MetricsServer {
	if addr == "" {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	return &MetricsServer{
		srv:    &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second},
		logger: logger,
	}
}

func (m *MetricsServer) Start() {
	if m == nil {
		return
	}
	go func() {
		m.logger.Info("metrics listening", zap.String("addr", m.srv.Addr))
		if err := m.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			m.logger.Error("metrics server error", zap.Error(err))
		}
	}()
}

func (m *MetricsServer) Stop(ctx context.Context) {
	if m == nil {
		return
	}
	_ = m.srv.Shutdown(ctx)
}
