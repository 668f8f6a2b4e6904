package testutil

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/specialistvlad/robogrid/internal/ctxlog"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

// Write implements the io.Writer interface for SafeBuffer.
func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

// String implements the fmt.Stringer interface for SafeBuffer.
func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// NewLogger returns a debug-level text logger writing to w. Setting
// ROBOGRID_TEST_LOGS=true mirrors the output to stderr.
func NewLogger(w io.Writer) *slog.Logger {
	if os.Getenv("ROBOGRID_TEST_LOGS") == "true" {
		w = io.MultiWriter(w, os.Stderr)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// Context returns a background context carrying a logger that writes to buf.
func Context(buf *SafeBuffer) context.Context {
	return ctxlog.WithLogger(context.Background(), NewLogger(buf))
}
