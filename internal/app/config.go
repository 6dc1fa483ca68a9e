package app

import (
	"errors"
	"fmt"
	"net/netip"
	"strconv"
	"syscall"

	"rclip/internal/domain"
)

// Config holds the immutable configuration of the service. It is read once at
// startup and never mutated.
type Config struct {
	Address      netip.Addr
	CopyPort     int
	PastePort    int
	CopyCommand  string
	PasteCommand string
	Shell        string
	Backlog      int
	// TransientErrors are the accept errors retried instead of ending the
	// service.
	TransientErrors []syscall.Errno
}

// Validate checks every precondition of the main loop. Failures are
// *domain.ConfigError.
func (c Config) Validate() error {
	if !c.Address.Is4() {
		return &domain.ConfigError{Field: "address", Err: fmt.Errorf("%q is not an IPv4 address", c.Address)}
	}
	if err := checkPort(c.CopyPort); err != nil {
		return &domain.ConfigError{Field: "copy port", Err: err}
	}
	if err := checkPort(c.PastePort); err != nil {
		return &domain.ConfigError{Field: "paste port", Err: err}
	}
	if c.CopyCommand == "" {
		return &domain.ConfigError{Field: "copy command", Err: errors.New("missing; set --copy or run under Wayland/X11")}
	}
	if c.PasteCommand == "" {
		return &domain.ConfigError{Field: "paste command", Err: errors.New("missing; set --paste or run under Wayland/X11")}
	}
	if c.Shell == "" {
		return &domain.ConfigError{Field: "shell", Err: errors.New("empty")}
	}
	if c.Backlog < 1 {
		return &domain.ConfigError{Field: "backlog", Err: fmt.Errorf("%d is less than 1", c.Backlog)}
	}
	return nil
}

// ParsePort parses a decimal port number in 1-65535.
func ParsePort(s string) (int, error) {
	port, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%q is not a number", s)
	}
	if err := checkPort(port); err != nil {
		return 0, err
	}
	return port, nil
}

// ParseAddress parses a dotted-quad IPv4 bind address.
func ParseAddress(s string) (netip.Addr, error) {
	addr, err := netip.ParseAddr(s)
	if err != nil {
		return netip.Addr{}, err
	}
	if !addr.Is4() {
		return netip.Addr{}, fmt.Errorf("%q is not an IPv4 address", s)
	}
	return addr, nil
}

func checkPort(port int) error {
	if port < 1 || port > 65535 {
		return fmt.Errorf("%d is outside 1-65535", port)
	}
	return nil
}
