//go:build linux

package listener

import (
	"errors"
	"fmt"
	"net/netip"
	"os"
	"syscall"

	"golang.org/x/sys/unix"

	"rclip/internal/domain"
)

// DefaultTransientErrors lists the accept errors that are retried instead of
// ending the service: pending network errors of the dequeued connection.
var DefaultTransientErrors = []string{
	"ENETDOWN",
	"EPROTO",
	"ENOPROTOOPT",
	"EHOSTDOWN",
	"ENONET",
	"EHOSTUNREACH",
	"ENETUNREACH",
	"ECONNABORTED",
}

// ParseErrnos converts errno names such as "ENETDOWN" to their values.
func ParseErrnos(names []string) ([]syscall.Errno, error) {
	known := make(map[string]syscall.Errno)
	for i := 1; i < 256; i++ {
		if name := unix.ErrnoName(syscall.Errno(i)); name != "" {
			known[name] = syscall.Errno(i)
		}
	}

	errnos := make([]syscall.Errno, 0, len(names))
	for _, name := range names {
		errno, ok := known[name]
		if !ok {
			return nil, fmt.Errorf("unknown errno %q", name)
		}
		errnos = append(errnos, errno)
	}
	return errnos, nil
}

// Acceptor drains pending connections from non-blocking listening sockets.
type Acceptor struct {
	transient map[syscall.Errno]bool
	logger    domain.Logger
	recorder  domain.Recorder
	// accept is unix.Accept4; tests replace it to script accept errors.
	accept func(fd, flags int) (int, unix.Sockaddr, error)
}

// NewAcceptor creates an acceptor that retries the given transient errors.
func NewAcceptor(transient []syscall.Errno, logger domain.Logger, recorder domain.Recorder) *Acceptor {
	set := make(map[syscall.Errno]bool, len(transient))
	for _, errno := range transient {
		set[errno] = true
	}
	if recorder == nil {
		recorder = domain.NopRecorder{}
	}
	return &Acceptor{transient: set, logger: logger, recorder: recorder, accept: unix.Accept4}
}

// Drain accepts connections on ep until none are pending, calling handle for
// each one before the next accept. An error from handle stops the drain and
// is returned unchanged.
func (a *Acceptor) Drain(ep *domain.Endpoint, handle func(domain.Conn) error) error {
	for {
		fd, sa, err := a.accept(ep.FD, unix.SOCK_CLOEXEC)
		if err != nil {
			var errno syscall.Errno
			if !errors.As(err, &errno) {
				return err
			}
			switch {
			case errno == unix.EAGAIN || errno == unix.EWOULDBLOCK:
				return nil
			case errno == unix.EINTR:
				continue
			case a.transient[errno]:
				a.logger.Warn("transient accept error", "direction", ep.Direction, "err", err)
				a.recorder.TransientAcceptError(ep.Direction, unix.ErrnoName(errno))
				continue
			default:
				return fmt.Errorf("%s endpoint: %w", ep.Direction, err)
			}
		}

		remote := remoteAddr(sa)
		conn := domain.Conn{
			Direction: ep.Direction,
			File:      os.NewFile(uintptr(fd), fmt.Sprintf("%s-conn:%s", ep.Direction, remote)),
			Remote:    remote,
		}
		a.recorder.Accepted(ep.Direction)
		a.logger.Debug("connection accepted", "direction", ep.Direction, "remote", remote)

		if err := handle(conn); err != nil {
			return err
		}
	}
}

func remoteAddr(sa unix.Sockaddr) netip.AddrPort {
	switch sa := sa.(type) {
	case *unix.SockaddrInet4:
		return netip.AddrPortFrom(netip.AddrFrom4(sa.Addr), uint16(sa.Port))
	case *unix.SockaddrInet6:
		return netip.AddrPortFrom(netip.AddrFrom16(sa.Addr), uint16(sa.Port))
	default:
		return netip.AddrPort{}
	}
}
