package domain

import (
	"net/netip"
	"os"
)

// Direction is the data direction of a listening endpoint and of every
// connection accepted on it.
type Direction int

const (
	// Copy connections deliver new clipboard contents.
	Copy Direction = iota
	// Paste connections receive the current clipboard contents.
	Paste
)

func (d Direction) String() string {
	switch d {
	case Copy:
		return "copy"
	case Paste:
		return "paste"
	default:
		return "unknown"
	}
}

// Endpoint is a bound, listening, non-blocking socket. It is created once at
// startup and never mutated afterwards.
type Endpoint struct {
	Direction Direction
	Addr      netip.Addr
	// Port is the port the socket is actually bound to.
	Port int
	FD   int
}

// AddrPort returns the bound address of the endpoint.
func (e *Endpoint) AddrPort() netip.AddrPort {
	return netip.AddrPortFrom(e.Addr, uint16(e.Port))
}

// Conn is an accepted connection. Whoever receives a Conn owns File and must
// close it.
type Conn struct {
	Direction Direction
	File      *os.File
	Remote    netip.AddrPort
}
