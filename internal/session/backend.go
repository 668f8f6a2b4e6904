package session

import (
	"context"

	"github.com/specialistvlad/robogrid/internal/value"
)

// Descriptor names the robot a session connects to.
type Descriptor struct {
	// Model selects the robot model, such as "go2" or "h1".
	Model string
	// URL is the address of a remote simulator bridge.
	URL string
	// Namespace is the socket.io namespace of a remote bridge.
	Namespace string
	// Insecure skips TLS certificate verification.
	Insecure bool
}

// Backend is a robot or simulator. A Session calls a backend from a single
// goroutine, so implementations need no locking of their own.
type Backend interface {
	Connect(ctx context.Context, desc Descriptor) error
	Execute(ctx context.Context, action string, args value.Record) (value.Value, error)
	Sense(ctx context.Context) (value.Record, error)
	// Halt brings the robot to an idle state.
	Halt(ctx context.Context) error
	Close() error
}
