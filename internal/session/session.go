// Package session runs a long-lived connection to a robot or simulator next to
// graph execution. One goroutine owns the backend: it serialises commands and
// keeps a sensor snapshot that readers access without blocking.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/specialistvlad/robogrid/internal/ctxlog"
	"github.com/specialistvlad/robogrid/internal/metrics"
	"github.com/specialistvlad/robogrid/internal/value"
)

var (
	ErrDispatchTimeout = errors.New("dispatch timed out")
	ErrNotRunning      = errors.New("session is not running")
	ErrAlreadyStarted  = errors.New("session already started")
)

const (
	DefaultDispatchTimeout = 5 * time.Second
	haltTimeout            = 5 * time.Second
)

// Config tunes a session.
type Config struct {
	// DispatchTimeout bounds a dispatch whose context carries no deadline.
	DispatchTimeout time.Duration
	// PollInterval refreshes the sensor snapshot periodically when positive.
	PollInterval time.Duration
}

type command struct {
	ctx    context.Context
	action string
	args   value.Record
	reply  chan reply
}

type reply struct {
	result value.Value
	err    error
}

// Session is a node.Robot backed by a Backend.
type Session struct {
	backend Backend
	desc    Descriptor
	cfg     Config

	// Written only by the loop goroutine.
	snapshot atomic.Pointer[value.Record]
	running  atomic.Bool

	// lifecycle orders Start against Stop.
	lifecycle sync.Mutex
	started   bool

	commands chan command
	quit     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
	stopErr  error
}

// New creates a session. Nothing connects until Start.
func New(backend Backend, desc Descriptor, cfg Config) *Session {
	if cfg.DispatchTimeout <= 0 {
		cfg.DispatchTimeout = DefaultDispatchTimeout
	}
	s := &Session{
		backend:  backend,
		desc:     desc,
		cfg:      cfg,
		commands: make(chan command),
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	empty := value.Record{}
	s.snapshot.Store(&empty)
	return s
}

// Descriptor returns the robot the session connects to.
func (s *Session) Descriptor() Descriptor { return s.desc }

// Start connects the backend and starts the session goroutine. It returns once
// the first sensor snapshot is buffered, or with the connection error.
func (s *Session) Start(ctx context.Context) error {
	s.lifecycle.Lock()
	select {
	case <-s.quit:
		s.lifecycle.Unlock()
		return ErrNotRunning
	default:
	}
	if s.started {
		s.lifecycle.Unlock()
		return ErrAlreadyStarted
	}
	s.started = true
	ready := make(chan error, 1)
	go s.loop(context.WithoutCancel(ctx), ready)
	s.lifecycle.Unlock()
	return <-ready
}

// Running reports whether the session accepts dispatches.
func (s *Session) Running() bool { return s.running.Load() }

// Done is closed once the session goroutine has exited.
func (s *Session) Done() <-chan struct{} { return s.done }

func (s *Session) loop(ctx context.Context, ready chan<- error) {
	logger := ctxlog.FromContext(ctx).With("model", s.desc.Model)
	defer close(s.done)

	connectCtx, cancel := context.WithTimeout(ctx, s.cfg.DispatchTimeout)
	err := s.backend.Connect(connectCtx, s.desc)
	cancel()
	if err != nil {
		ready <- fmt.Errorf("connect: %w", err)
		return
	}
	s.refresh(ctx)
	s.running.Store(true)
	logger.Info("Session started.")
	ready <- nil

	var tick <-chan time.Time
	if s.cfg.PollInterval > 0 {
		ticker := time.NewTicker(s.cfg.PollInterval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case cmd := <-s.commands:
			start := time.Now()
			result, err := s.backend.Execute(cmd.ctx, cmd.action, cmd.args)
			outcome := "ok"
			if err != nil {
				outcome = "error"
			}
			metrics.SessionDispatchSeconds.WithLabelValues(cmd.action, outcome).Observe(time.Since(start).Seconds())
			logger.Debug("Action dispatched.", "action", cmd.action, "outcome", outcome, "duration", time.Since(start))
			// Refresh first so a sensor read right after the reply sees the
			// effect of the command.
			s.refresh(ctx)
			cmd.reply <- reply{result: result, err: err}
		case <-tick:
			s.refresh(ctx)
		case <-s.quit:
			s.running.Store(false)
			s.stopErr = s.shutdown(ctx)
			logger.Info("Session stopped.")
			return
		}
	}
}

func (s *Session) refresh(ctx context.Context) {
	senseCtx, cancel := context.WithTimeout(ctx, s.cfg.DispatchTimeout)
	defer cancel()
	snap, err := s.backend.Sense(senseCtx)
	if err != nil {
		ctxlog.FromContext(ctx).Warn("Sensor refresh failed, keeping the previous snapshot.", "error", err)
		return
	}
	if snap == nil {
		snap = value.Record{}
	}
	s.snapshot.Store(&snap)
}

func (s *Session) shutdown(ctx context.Context) error {
	haltCtx, cancel := context.WithTimeout(ctx, haltTimeout)
	defer cancel()
	return errors.Join(s.backend.Halt(haltCtx), s.backend.Close())
}

// Dispatch sends one action to the robot and waits for its result. Without a
// deadline on ctx the session's dispatch timeout applies.
func (s *Session) Dispatch(ctx context.Context, action string, args value.Record) (value.Value, error) {
	if !s.running.Load() {
		return value.Null(), ErrNotRunning
	}
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.DispatchTimeout)
		defer cancel()
	}

	cmd := command{ctx: ctx, action: action, args: args, reply: make(chan reply, 1)}
	select {
	case s.commands <- cmd:
	case <-ctx.Done():
		return value.Null(), dispatchErr(ctx, action)
	case <-s.done:
		return value.Null(), ErrNotRunning
	}

	select {
	case r := <-cmd.reply:
		if r.err != nil {
			return value.Null(), r.err
		}
		return r.result, nil
	case <-ctx.Done():
		return value.Null(), dispatchErr(ctx, action)
	}
}

func dispatchErr(ctx context.Context, action string) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: action '%s'", ErrDispatchTimeout, action)
	}
	return ctx.Err()
}

// ReadSensors returns the buffered sensor snapshot. It never blocks. The
// returned record must not be modified.
func (s *Session) ReadSensors() value.Record {
	return *s.snapshot.Load()
}

// Stop halts the robot and closes the backend. It is idempotent and safe to
// call before Start.
func (s *Session) Stop(ctx context.Context) error {
	s.lifecycle.Lock()
	s.stopOnce.Do(func() { close(s.quit) })
	started := s.started
	s.lifecycle.Unlock()
	if !started {
		return nil
	}
	select {
	case <-s.done:
		return s.stopErr
	case <-ctx.Done():
		return ctx.Err()
	}
}
