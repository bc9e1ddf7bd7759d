// Package server runs the parley wire protocol: a TCP listener that serves
// exactly one request/response call per accepted connection, dispatching
// opcodes against the chat model.
package server

import (
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/parley-im/parley/internal/bus"
	"github.com/parley-im/parley/internal/chat"
	"go.uber.org/zap"
)

// Server accepts client connections and routes their requests to the model.
// Independent connections are served concurrently; the model's own lock
// serializes state access.
type Server struct {
	listener net.Listener
	model    *chat.Model
	bus      *bus.Bus
	logger   *zap.Logger
	wg       sync.WaitGroup
}

// New binds the listener so the effective address is known before Start.
func New(addr string, model *chat.Model, b *bus.Bus, logger *zap.Logger) (*Server, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", addr, err)
	}
	return &Server{
		listener: listener,
		model:    model,
		bus:      b,
		logger:   logger,
	}, nil
}

// Addr returns the bound listen address.
func (s *Server) Addr() string {
	return s.listener.Addr().String()
}

// Start accepts connections until Stop closes the listener. Blocks.
func (s *Server) Start() error {
	s.logger.Info("server listening", zap.String("addr", s.Addr()))
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("accept: %w", err)
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handleConn(conn)
		}()
	}
}

// Stop closes the listener and waits for in-flight calls to finish.
func (s *Server) Stop() {
	s.logger.Info("server stopping")
	_ = s.listener.Close()
	s.wg.Wait()
}

// handleConn serves one call: read an opcode, decode its parameters, apply,
// respond. The connection is released on every exit path; a call that fails
// mid-decode or mid-apply is simply closed without a response.
func (s *Server) handleConn(conn net.Conn) {
	defer conn.Close()

	if err := s.serveCall(conn); err != nil {
		s.logger.Warn("request failed",
			zap.String("peer", conn.RemoteAddr().String()), zap.Error(err))
	}
}

// publish emits a domain event on the bus, if one is attached.
func (s *Server) publish(kind string, payload any) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(bus.Event{Kind: kind, Timestamp: time.Now(), Payload: payload})
}
