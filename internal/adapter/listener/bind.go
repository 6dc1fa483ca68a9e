//go:build linux

package listener

import (
	"errors"
	"fmt"
	"net/netip"

	"golang.org/x/sys/unix"

	"rclip/internal/domain"
)

// DefaultBacklog is the listen queue length used when none is configured.
const DefaultBacklog = 4

// Binder creates non-blocking, close-on-exec IPv4 listening sockets.
type Binder struct {
	backlog int
}

// NewBinder creates a binder that listens with the given queue length.
func NewBinder(backlog int) *Binder {
	if backlog < 1 {
		backlog = DefaultBacklog
	}
	return &Binder{backlog: backlog}
}

// Bind creates a listening socket for dir on addr:port. Port 0 binds an
// ephemeral port; the returned endpoint carries the port actually bound.
func (b *Binder) Bind(dir domain.Direction, addr netip.Addr, port int) (*domain.Endpoint, error) {
	addr = addr.Unmap()
	target := netip.AddrPortFrom(addr, uint16(port)).String()
	fail := func(stage domain.BindStage, err error) error {
		return &domain.BindError{Stage: stage, Endpoint: dir.String(), Address: target, Err: err}
	}

	if !addr.Is4() {
		return nil, fail(domain.StageSocket, errors.New("not an IPv4 address"))
	}
	if port < 0 || port > 65535 {
		return nil, fail(domain.StageSocket, fmt.Errorf("port %d out of range", port))
	}

	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM|unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC, 0)
	if err != nil {
		return nil, fail(domain.StageSocket, err)
	}
	// Connections closed by a paste command leave TIME_WAIT entries behind;
	// without SO_REUSEADDR a restart would fail to bind until they expire.
	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		_ = unix.Close(fd)
		return nil, fail(domain.StageSocket, err)
	}

	if err := unix.Bind(fd, &unix.SockaddrInet4{Port: port, Addr: addr.As4()}); err != nil {
		_ = unix.Close(fd)
		return nil, fail(domain.StageBind, err)
	}

	if err := unix.Listen(fd, b.backlog); err != nil {
		_ = unix.Close(fd)
		return nil, fail(domain.StageListen, err)
	}

	bound, err := unix.Getsockname(fd)
	if err != nil {
		_ = unix.Close(fd)
		return nil, fail(domain.StageListen, err)
	}
	if sa, ok := bound.(*unix.SockaddrInet4); ok {
		port = sa.Port
	}

	return &domain.Endpoint{
		Direction: dir,
		Addr:      addr,
		Port:      port,
		FD:        fd,
	}, nil
}

// Close releases the endpoint's socket.
func (b *Binder) Close(ep *domain.Endpoint) error {
	return unix.Close(ep.FD)
}
