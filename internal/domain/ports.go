package domain

import "net/netip"

// Binder creates listening endpoints.
type Binder interface {
	Bind(dir Direction, addr netip.Addr, port int) (*Endpoint, error)
}

// Multiplexer blocks until at least one endpoint has a pending connection and
// returns the ready ones.
type Multiplexer interface {
	Wait(endpoints []*Endpoint) ([]*Endpoint, error)
}

// Acceptor drains every pending connection of a ready endpoint, handing each
// one to handle before accepting the next. It returns when nothing is pending.
type Acceptor interface {
	Drain(ep *Endpoint, handle func(Conn) error) error
}

// Dispatcher turns one accepted connection into one external command
// invocation. It always closes conn.File.
type Dispatcher interface {
	Dispatch(conn Conn) error
}

// Logger provides structured logging.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Recorder observes connection and child process events.
type Recorder interface {
	Accepted(dir Direction)
	TransientAcceptError(dir Direction, errno string)
	Spawned(dir Direction)
	SpawnFailed(dir Direction)
	Exited(dir Direction, code int)
}

// NopRecorder discards every event.
type NopRecorder struct{}

func (NopRecorder) Accepted(Direction)                     {}
func (NopRecorder) TransientAcceptError(Direction, string) {}
func (NopRecorder) Spawned(Direction)                      {}
func (NopRecorder) SpawnFailed(Direction)                  {}
func (NopRecorder) Exited(Direction, int)                  {}
