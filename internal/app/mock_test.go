package app

import (
	"errors"
	"net/netip"

	"rclip/internal/domain"
)

// errMuxDone ends a scripted main loop.
var errMuxDone = errors.New("mux script exhausted")

// mockBinder hands out fake endpoints and records calls.
type mockBinder struct {
	failOn  map[domain.Direction]error
	bound   []domain.Direction
	closed  []*domain.Endpoint
	nextFD  int
	lastCfg struct {
		addr  netip.Addr
		ports []int
	}
}

func (m *mockBinder) Bind(dir domain.Direction, addr netip.Addr, port int) (*domain.Endpoint, error) {
	m.bound = append(m.bound, dir)
	m.lastCfg.addr = addr
	m.lastCfg.ports = append(m.lastCfg.ports, port)
	if err := m.failOn[dir]; err != nil {
		return nil, err
	}
	m.nextFD++
	return &domain.Endpoint{Direction: dir, Addr: addr, Port: port, FD: m.nextFD}, nil
}

func (m *mockBinder) Close(ep *domain.Endpoint) error {
	m.closed = append(m.closed, ep)
	return nil
}

// mockMux returns one scripted ready set per Wait call, then err (or
// errMuxDone).
type mockMux struct {
	script [][]domain.Direction
	err    error
	waits  int
}

func (m *mockMux) Wait(endpoints []*domain.Endpoint) ([]*domain.Endpoint, error) {
	if m.waits >= len(m.script) {
		if m.err != nil {
			return nil, m.err
		}
		return nil, errMuxDone
	}
	dirs := m.script[m.waits]
	m.waits++

	var ready []*domain.Endpoint
	for _, dir := range dirs {
		for _, ep := range endpoints {
			if ep.Direction == dir {
				ready = append(ready, ep)
			}
		}
	}
	return ready, nil
}

// mockAcceptor hands out pending connection counts per direction on each
// drain and records the drain order.
type mockAcceptor struct {
	pending map[domain.Direction]int
	err     error
	drained []domain.Direction
}

func (m *mockAcceptor) Drain(ep *domain.Endpoint, handle func(domain.Conn) error) error {
	m.drained = append(m.drained, ep.Direction)
	n := m.pending[ep.Direction]
	m.pending[ep.Direction] = 0
	for i := 0; i < n; i++ {
		if err := handle(domain.Conn{Direction: ep.Direction}); err != nil {
			return err
		}
	}
	return m.err
}

// mockDispatcher records dispatched connections.
type mockDispatcher struct {
	err        error
	dispatched []domain.Direction
}

func (m *mockDispatcher) Dispatch(conn domain.Conn) error {
	m.dispatched = append(m.dispatched, conn.Direction)
	return m.err
}

// mockLogger discards all log output.
type mockLogger struct{}

func (l *mockLogger) Debug(msg string, args ...any) {}
func (l *mockLogger) Info(msg string, args ...any)  {}
func (l *mockLogger) Warn(msg string, args ...any)  {}
func (l *mockLogger) Error(msg string, args ...any) {}
