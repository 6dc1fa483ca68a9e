//go:build linux

package listener

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"

	"rclip/internal/domain"
)

// Multiplexer waits on several listening sockets with poll(2).
type Multiplexer struct{}

// Wait blocks without a timeout until at least one endpoint has a pending
// connection. Interrupted waits are retried.
func (Multiplexer) Wait(endpoints []*domain.Endpoint) ([]*domain.Endpoint, error) {
	fds := make([]unix.PollFd, len(endpoints))
	for i, ep := range endpoints {
		fds[i] = unix.PollFd{Fd: int32(ep.FD), Events: unix.POLLIN}
	}

	for {
		n, err := unix.Poll(fds, -1)
		if errors.Is(err, unix.EINTR) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if n == 0 {
			continue
		}

		ready := make([]*domain.Endpoint, 0, n)
		for i := range fds {
			revents := fds[i].Revents
			if revents&unix.POLLNVAL != 0 {
				return nil, fmt.Errorf("%s endpoint: invalid descriptor %d", endpoints[i].Direction, fds[i].Fd)
			}
			// POLLERR and POLLHUP are drained too so accept reports the cause.
			if revents&(unix.POLLIN|unix.POLLERR|unix.POLLHUP) != 0 {
				ready = append(ready, endpoints[i])
			}
		}
		return ready, nil
	}
}
