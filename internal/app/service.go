package app

import (
	"errors"

	"rclip/internal/domain"
)

// Service runs the connection-dispatch loop: it binds the copy and paste
// endpoints, waits for pending connections on either, and hands every
// accepted connection to the dispatcher.
type Service struct {
	binder     domain.Binder
	mux        domain.Multiplexer
	acceptor   domain.Acceptor
	dispatcher domain.Dispatcher
	logger     domain.Logger
}

// Closer is implemented by binders that can release an endpoint.
type Closer interface {
	Close(ep *domain.Endpoint) error
}

// NewService creates the service with all dependencies injected.
func NewService(
	b domain.Binder,
	mx domain.Multiplexer,
	ac domain.Acceptor,
	ds domain.Dispatcher,
	lg domain.Logger,
) *Service {
	return &Service{
		binder:     b,
		mux:        mx,
		acceptor:   ac,
		dispatcher: ds,
		logger:     lg,
	}
}

// Listen validates cfg and binds both endpoints. If the paste endpoint
// fails the copy endpoint is released; the service never runs with one
// endpoint.
func (s *Service) Listen(cfg Config) ([]*domain.Endpoint, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	copyEp, err := s.binder.Bind(domain.Copy, cfg.Address, cfg.CopyPort)
	if err != nil {
		return nil, err
	}

	pasteEp, err := s.binder.Bind(domain.Paste, cfg.Address, cfg.PastePort)
	if err != nil {
		if c, ok := s.binder.(Closer); ok {
			_ = c.Close(copyEp)
		}
		return nil, err
	}

	s.logger.Info("listening",
		"copy", copyEp.AddrPort().String(),
		"paste", pasteEp.AddrPort().String(),
		"copy_command", cfg.CopyCommand,
		"paste_command", cfg.PasteCommand)

	return []*domain.Endpoint{copyEp, pasteEp}, nil
}

// Serve runs the main loop on the given endpoints. There is no shutdown
// path: it only returns on a fatal error, which is always a
// *domain.RuntimeError.
func (s *Service) Serve(endpoints []*domain.Endpoint) error {
	for {
		if err := s.serveOnce(endpoints); err != nil {
			return err
		}
	}
}

// Run is Listen followed by Serve.
func (s *Service) Run(cfg Config) error {
	endpoints, err := s.Listen(cfg)
	if err != nil {
		return err
	}
	return s.Serve(endpoints)
}

// serveOnce waits for readiness once and drains every ready endpoint.
func (s *Service) serveOnce(endpoints []*domain.Endpoint) error {
	ready, err := s.mux.Wait(endpoints)
	if err != nil {
		return &domain.RuntimeError{Op: "wait", Err: err}
	}

	for _, ep := range ready {
		if err := s.acceptor.Drain(ep, s.dispatch); err != nil {
			var runtimeErr *domain.RuntimeError
			if errors.As(err, &runtimeErr) {
				return err
			}
			return &domain.RuntimeError{Op: "accept", Err: err}
		}
	}
	return nil
}

func (s *Service) dispatch(conn domain.Conn) error {
	if err := s.dispatcher.Dispatch(conn); err != nil {
		return &domain.RuntimeError{Op: "spawn", Err: err}
	}
	return nil
}
