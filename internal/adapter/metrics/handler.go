package metrics

import (
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"rclip/internal/domain"
)

// NewHandler serves /metrics from gatherer and a /healthz liveness probe.
func NewHandler(gatherer prometheus.Gatherer) http.Handler {
	r := chi.NewRouter()
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok\n"))
	})
	return r
}

// Server exposes the metrics handler on its own listener, independent of the
// clipboard endpoints.
type Server struct {
	listener net.Listener
	srv      *http.Server
	logger   domain.Logger
}

// Listen binds addr for the metrics server. Failures are reported as a
// BindError for the "metrics" endpoint.
func Listen(addr string, handler http.Handler, logger domain.Logger) (*Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, &domain.BindError{Stage: domain.StageListen, Endpoint: "metrics", Address: addr, Err: err}
	}
	return &Server{
		listener: ln,
		srv: &http.Server{
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
		},
		logger: logger,
	}, nil
}

// Addr returns the address the server is bound to.
func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}

// Serve runs the HTTP server in the background. Errors are logged, never
// propagated: metrics are not part of the clipboard service.
func (s *Server) Serve() {
	s.logger.Info("metrics server listening", "address", s.listener.Addr().String())
	go func() {
		if err := s.srv.Serve(s.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("metrics server stopped", "err", err)
		}
	}()
}

// Close stops the server.
func (s *Server) Close() error {
	return s.srv.Close()
}
