// Package server runs the loot list server's long-lived services and stops
// them in reverse order on a signal or failure.
package server

import (
	"context"
	"fmt"
	"os/signal"
	"slices"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Service is a component whose Start blocks until Stop is called or it fails.
type Service interface {
	Start() error
	Stop()
}

// FuncService builds a Service from two closures.
type FuncService struct {
	StartFn func() error
	StopFn  func()
}

func (f *FuncService) Start() error { return f.StartFn() }
func (f *FuncService) Stop()        { f.StopFn() }

type entry struct {
	name string
	svc  Service
}

// Lifecycle owns the process's services. They start together and stop in
// reverse registration order.
type Lifecycle struct {
	logger *zap.Logger

	mu      sync.Mutex
	entries []entry
}

// NewLifecycle returns an empty Lifecycle.
//
// Precondition: logger is non-nil.
func NewLifecycle(logger *zap.Logger) *Lifecycle {
	return &Lifecycle{logger: logger}
}

// Add registers svc under name.
func (l *Lifecycle) Add(name string, svc Service) {
	l.mu.Lock()
	l.entries = append(l.entries, entry{name: name, svc: svc})
	l.mu.Unlock()
}

// Names lists registered services in start order.
func (l *Lifecycle) Names() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	names := make([]string, 0, len(l.entries))
	for _, e := range l.entries {
		names = append(names, e.name)
	}
	return names
}

// Run starts every service and waits for SIGINT, SIGTERM, cancellation of
// ctx or the first service error, then stops them all.
//
// Postcondition: every service has been stopped. The result is the first
// service error, or nil when shutdown was requested.
func (l *Lifecycle) Run(ctx context.Context) error {
	began := time.Now()
	ctx, stopSignals := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	l.mu.Lock()
	entries := slices.Clone(l.entries)
	l.mu.Unlock()

	g, gctx := errgroup.WithContext(ctx)
	for _, e := range entries {
		g.Go(func() error {
			l.logger.Info("starting service", zap.String("service", e.name))
			up := time.Now()
			if err := e.svc.Start(); err != nil {
				l.logger.Error("service failed",
					zap.String("service", e.name),
					zap.Duration("uptime", time.Since(up)),
					zap.Error(err),
				)
				return fmt.Errorf("service %s: %w", e.name, err)
			}
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		if ctx.Err() != nil {
			l.logger.Info("shutdown requested", zap.NamedError("cause", context.Cause(ctx)))
		}
		l.stopAll(entries)
		return nil
	})

	err := g.Wait()
	l.logger.Info("shutdown complete",
		zap.Int("services", len(entries)),
		zap.Duration("uptime", time.Since(began)),
	)
	return err
}

func (l *Lifecycle) stopAll(entries []entry) {
	for _, e := range slices.Backward(entries) {
		t := time.Now()
		e.svc.Stop()
		l.logger.Info("service stopped",
			zap.String("service", e.name),
			zap.Duration("elapsed", time.Since(t)),
		)
	}
}
