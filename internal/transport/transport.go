// Package transport supplies the duplex byte channel the protocol layer runs
// on. The core only ever writes a request and blocks for a response (client
// side) or blocks for a request and replies (server side); how the channel is
// established is this package's business alone.
package transport

import (
	"io"
	"net"
	"time"
)

// Connection is one acquired duplex byte channel. It carries exactly one
// call and must be closed on every exit path.
type Connection interface {
	In() io.Reader
	Out() io.Writer
	Close() error
}

// Source hands out fresh connections, one per call.
type Source interface {
	Connect() (Connection, error)
}

// TCPSource dials a parley server over TCP, one connection per call.
type TCPSource struct {
	Addr    string
	Timeout time.Duration
}

// NewTCPSource creates a source for the given server address with a default
// dial timeout.
func NewTCPSource(addr string) *TCPSource {
	return &TCPSource{Addr: addr, Timeout: 10 * time.Second}
}

// Connect dials the server.
func (s *TCPSource) Connect() (Connection, error) {
	conn, err := net.DialTimeout("tcp", s.Addr, s.Timeout)
	if err != nil {
		return nil, err
	}
	return NetConnection(conn), nil
}

type netConnection struct {
	conn net.Conn
}

// NetConnection wraps an established net.Conn as a Connection.
func NetConnection(conn net.Conn) Connection {
	return &netConnection{conn: conn}
}

func (c *netConnection) In() io.Reader  { return c.conn }
func (c *netConnection) Out() io.Writer { return c.conn }
func (c *netConnection) Close() error   { return c.conn.Close() }
