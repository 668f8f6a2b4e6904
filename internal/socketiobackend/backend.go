// Package socketiobackend drives a remote simulator bridge over socket.io. The
// bridge receives "action" and "halt" events, answers every action with an
// "action_result" event and pushes "sensors" snapshots whenever it likes.
package socketiobackend

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/specialistvlad/robogrid/internal/ctxlog"
	"github.com/specialistvlad/robogrid/internal/session"
	"github.com/specialistvlad/robogrid/internal/value"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

// Event names of the bridge protocol.
const (
	EventAction       = "action"
	EventActionResult = "action_result"
	EventSensors      = "sensors"
	EventHalt         = "halt"
)

const connectTimeout = 15 * time.Second

var ErrNotConnected = errors.New("bridge is not connected")

// Backend is a session.Backend talking to a socket.io bridge.
type Backend struct {
	io *socket.Socket

	mu       sync.Mutex
	snapshot value.Record
	pending  map[string]chan actionResult
}

// New creates a disconnected backend.
func New() *Backend {
	return &Backend{pending: make(map[string]chan actionResult)}
}

var _ session.Backend = (*Backend)(nil)

// Connect dials desc.URL over websocket and waits for the namespace to accept
// the connection.
func (b *Backend) Connect(ctx context.Context, desc session.Descriptor) error {
	logger := ctxlog.FromContext(ctx).With("url", desc.URL, "namespace", desc.Namespace)

	parsedURL, err := url.Parse(desc.URL)
	if err != nil {
		return fmt.Errorf("failed to parse URL: %w", err)
	}
	if parsedURL.Scheme == "" || parsedURL.Host == "" {
		return fmt.Errorf("bridge URL '%s' needs a scheme and a host", desc.URL)
	}

	opts := socket.DefaultOptions()
	opts.SetPath(parsedURL.Path)
	if desc.Insecure {
		logger.Warn("Skipping TLS certificate verification")
		opts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	manager := socket.NewManager(baseURL, opts)
	io := manager.Socket(desc.Namespace, opts)

	connectChan := make(chan error, 1)
	io.Once(types.EventName("connect"), func(...any) {
		connectChan <- nil
	})
	io.Once(types.EventName("connect_error"), func(errs ...any) {
		connectChan <- eventError(errs)
	})
	io.On(types.EventName(EventSensors), func(data ...any) {
		snap, err := decodeSensors(data)
		if err != nil {
			logger.Warn("Dropping malformed sensor snapshot.", "error", err)
			return
		}
		b.mu.Lock()
		b.snapshot = snap
		b.mu.Unlock()
	})
	io.On(types.EventName(EventActionResult), func(data ...any) {
		id, res, err := decodeResult(data)
		if err != nil {
			logger.Warn("Dropping malformed action result.", "error", err)
			return
		}
		b.mu.Lock()
		ch, ok := b.pending[id]
		delete(b.pending, id)
		b.mu.Unlock()
		if ok {
			ch <- res
		}
	})

	logger.Debug("Connecting to bridge...")
	io.Connect()

	timer := time.NewTimer(connectTimeout)
	defer timer.Stop()
	select {
	case err := <-connectChan:
		if err != nil {
			io.Disconnect()
			return fmt.Errorf("socket.io connection failed: %w", err)
		}
	case <-ctx.Done():
		io.Disconnect()
		return fmt.Errorf("waiting for socket.io connection: %w", ctx.Err())
	case <-timer.C:
		io.Disconnect()
		return fmt.Errorf("timed out after %s waiting for socket.io connection", connectTimeout)
	}

	b.io = io
	logger.Info("Connected to bridge.", "sid", io.Id())
	return nil
}

// Execute emits an action event and waits for the matching action_result.
func (b *Backend) Execute(ctx context.Context, action string, args value.Record) (value.Value, error) {
	if b.io == nil {
		return value.Null(), ErrNotConnected
	}
	id := uuid.NewString()
	ch := make(chan actionResult, 1)
	b.mu.Lock()
	b.pending[id] = ch
	b.mu.Unlock()

	b.io.Emit(EventAction, map[string]any{
		"id":     id,
		"action": action,
		"args":   args.ToAny(),
	})

	select {
	case res := <-ch:
		if res.err != nil {
			return value.Null(), fmt.Errorf("bridge rejected '%s': %w", action, res.err)
		}
		return res.result, nil
	case <-ctx.Done():
		b.mu.Lock()
		delete(b.pending, id)
		b.mu.Unlock()
		return value.Null(), ctx.Err()
	}
}

// Sense returns the latest snapshot pushed by the bridge.
func (b *Backend) Sense(context.Context) (value.Record, error) {
	if b.io == nil {
		return nil, ErrNotConnected
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.snapshot.Clone(), nil
}

// Halt asks the bridge to stop the robot.
func (b *Backend) Halt(context.Context) error {
	if b.io == nil {
		return nil
	}
	b.io.Emit(EventHalt)
	return nil
}

// Close disconnects from the bridge.
func (b *Backend) Close() error {
	if b.io == nil {
		return nil
	}
	b.io.Disconnect()
	b.io = nil
	return nil
}
