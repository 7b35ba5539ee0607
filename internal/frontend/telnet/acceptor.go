package telnet

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/lootlist/internal/config"
)

// BusyMessage is written to clients refused because the server is full.
const BusyMessage = "Too many explorers are here already. Try again later."

// SessionHandler runs one connected player until they quit, the connection
// fails, or ctx is cancelled.
type SessionHandler interface {
	HandleSession(ctx context.Context, conn *Conn) error
}

// errStopping refuses connections accepted while Stop runs.
var errStopping = errors.New("acceptor stopping")

// errFull refuses connections over telnet.max_sessions.
var errFull = errors.New("session limit reached")

// Acceptor serves Telnet clients, one goroutine per connection, and caps how
// many are connected at once.
type Acceptor struct {
	cfg     config.TelnetConfig
	handler SessionHandler
	logger  *zap.Logger

	shutdown context.Context
	cancel   context.CancelFunc
	bound    chan struct{}
	handlers sync.WaitGroup

	mu      sync.Mutex
	ln      net.Listener
	live    map[string]*Conn
	closing bool
}

// NewAcceptor returns an Acceptor for cfg. Nothing is bound until
// ListenAndServe.
//
// Precondition: handler and logger are non-nil.
func NewAcceptor(cfg config.TelnetConfig, handler SessionHandler, logger *zap.Logger) *Acceptor {
	shutdown, cancel := context.WithCancel(context.Background())
	return &Acceptor{
		cfg:      cfg,
		handler:  handler,
		logger:   logger,
		shutdown: shutdown,
		cancel:   cancel,
		bound:    make(chan struct{}),
		live:     make(map[string]*Conn),
	}
}

// ListenAndServe binds cfg.Addr and serves until Stop, after which it
// returns nil.
func (a *Acceptor) ListenAndServe() error {
	ln, err := net.Listen("tcp", a.cfg.Addr())
	if err != nil {
		return fmt.Errorf("telnet: listen %s: %w", a.cfg.Addr(), err)
	}
	a.mu.Lock()
	if a.closing {
		a.mu.Unlock()
		_ = ln.Close()
		return nil
	}
	a.ln = ln
	a.mu.Unlock()
	close(a.bound)

	a.logger.Info("telnet acceptor listening",
		zap.String("addr", ln.Addr().String()),
		zap.Int("max_sessions", a.cfg.MaxSessions),
	)
	for {
		raw, err := ln.Accept()
		switch {
		case err == nil:
			a.admit(NewConn(raw, a.cfg.ReadTimeout, a.cfg.WriteTimeout))
		case a.shutdown.Err() != nil, errors.Is(err, net.ErrClosed):
			return nil
		default:
			a.logger.Error("telnet: accept failed", zap.Error(err))
		}
	}
}

// admit starts a handler for conn or turns it away.
func (a *Acceptor) admit(conn *Conn) {
	conn.ID = uuid.NewString()
	active, err := a.register(conn)
	if err != nil {
		a.logger.Warn("refusing client",
			zap.String("remote_addr", conn.RemoteAddr()),
			zap.Int("active", active),
			zap.Error(err),
		)
		if errors.Is(err, errFull) {
			_ = conn.WriteLine(BusyMessage)
		}
		_ = conn.Close()
		return
	}
	go func() {
		defer a.handlers.Done()
		a.run(conn, active)
	}()
}

// register records conn and returns the connected count including it. On
// success the caller owns one count of a.handlers.
func (a *Acceptor) register(conn *Conn) (int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	switch {
	case a.closing:
		return len(a.live), errStopping
	case a.cfg.MaxSessions > 0 && len(a.live) >= a.cfg.MaxSessions:
		return len(a.live), errFull
	}
	a.live[conn.ID] = conn
	a.handlers.Add(1)
	return len(a.live), nil
}

func (a *Acceptor) run(conn *Conn, active int) {
	defer func() {
		_ = conn.Close()
		a.mu.Lock()
		delete(a.live, conn.ID)
		a.mu.Unlock()
	}()

	logger := a.logger.With(
		zap.String("conn_id", conn.ID),
		zap.String("remote_addr", conn.RemoteAddr()),
	)
	logger.Info("client connected", zap.Int("active", active))
	if err := conn.Negotiate(); err != nil {
		logger.Warn("telnet negotiation failed", zap.Error(err))
		return
	}

	began := time.Now()
	err := a.handler.HandleSession(a.shutdown, conn)
	held := zap.Duration("duration", time.Since(began))
	switch {
	case err == nil:
		logger.Info("session ended", held)
	case a.shutdown.Err() != nil:
		logger.Info("session closed by shutdown", held)
	default:
		logger.Debug("session ended with error", held, zap.Error(err))
	}
}

// Stop stops accepting, cancels every session, closes their connections so
// blocked reads return, and waits for the handlers. Repeated calls are
// no-ops.
func (a *Acceptor) Stop() {
	a.mu.Lock()
	if a.closing {
		a.mu.Unlock()
		return
	}
	a.closing = true
	a.cancel()
	if a.ln != nil {
		_ = a.ln.Close()
	}
	open := make([]*Conn, 0, len(a.live))
	for _, c := range a.live {
		open = append(open, c)
	}
	a.mu.Unlock()

	for _, c := range open {
		_ = c.Close()
	}
	a.handlers.Wait()
	a.logger.Info("telnet acceptor stopped", zap.Int("sessions_closed", len(open)))
}

// Ready is closed once the listener is bound.
func (a *Acceptor) Ready() <-chan struct{} { return a.bound }

// Addr is the bound address, or "" before binding.
func (a *Acceptor) Addr() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.ln == nil {
		return ""
	}
	return a.ln.Addr().String()
}

// Active is the number of connected sessions.
func (a *Acceptor) Active() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.live)
}

// IsRunning reports whether the acceptor is bound and not stopped.
func (a *Acceptor) IsRunning() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.ln != nil && !a.closing
}
