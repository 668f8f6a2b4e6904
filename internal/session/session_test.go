package session_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/specialistvlad/robogrid/internal/session"
	"github.com/specialistvlad/robogrid/internal/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	mu         sync.Mutex
	connectErr error
	senseErr   error
	senses     int
	halted     bool
	closed     bool
	desc       session.Descriptor

	block  chan struct{}
	active atomic.Int32
	peak   atomic.Int32
}

func (b *fakeBackend) Connect(_ context.Context, desc session.Descriptor) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.desc = desc
	return b.connectErr
}

func (b *fakeBackend) Execute(ctx context.Context, action string, _ value.Record) (value.Value, error) {
	n := b.active.Add(1)
	defer b.active.Add(-1)
	for {
		p := b.peak.Load()
		if n <= p || b.peak.CompareAndSwap(p, n) {
			break
		}
	}
	if b.block != nil {
		select {
		case <-b.block:
		case <-ctx.Done():
			return value.Null(), ctx.Err()
		}
	}
	return value.Text("did " + action), nil
}

func (b *fakeBackend) Sense(context.Context) (value.Record, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.senseErr != nil {
		return nil, b.senseErr
	}
	b.senses++
	return value.Record{"ultrasonic": value.Int(b.senses)}, nil
}

func (b *fakeBackend) Halt(context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.halted = true
	return nil
}

func (b *fakeBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	return nil
}

func (b *fakeBackend) senseCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.senses
}

func startSession(t *testing.T, b *fakeBackend, cfg session.Config) *session.Session {
	t.Helper()
	s := session.New(b, session.Descriptor{Model: "go2"}, cfg)
	require.NoError(t, s.Start(context.Background()))
	t.Cleanup(func() { _ = s.Stop(context.Background()) })
	return s
}

func TestSession_DispatchAndSense(t *testing.T) {
	b := &fakeBackend{}
	s := startSession(t, b, session.Config{})

	assert.True(t, s.Running())
	assert.Equal(t, "go2", b.desc.Model)
	assert.Equal(t, 1.0, s.ReadSensors().Get("ultrasonic").AsNumber(), "the first snapshot is buffered by Start")

	res, err := s.Dispatch(context.Background(), "walk", nil)
	require.NoError(t, err)
	assert.Equal(t, "did walk", res.AsText())
	require.Eventually(t, func() bool {
		return s.ReadSensors().Get("ultrasonic").AsNumber() == 2
	}, time.Second, time.Millisecond, "every command refreshes the snapshot")
}

func TestSession_NotRunning(t *testing.T) {
	b := &fakeBackend{}
	s := session.New(b, session.Descriptor{}, session.Config{})

	_, err := s.Dispatch(context.Background(), "stand", nil)
	assert.ErrorIs(t, err, session.ErrNotRunning)
	assert.Empty(t, s.ReadSensors())

	require.NoError(t, s.Start(context.Background()))
	require.NoError(t, s.Stop(context.Background()))
	_, err = s.Dispatch(context.Background(), "stand", nil)
	assert.ErrorIs(t, err, session.ErrNotRunning)
	assert.ErrorIs(t, s.Start(context.Background()), session.ErrNotRunning)
}

func TestSession_StopIsIdempotent(t *testing.T) {
	b := &fakeBackend{}
	idle := session.New(b, session.Descriptor{}, session.Config{})
	require.NoError(t, idle.Stop(context.Background()), "stop before start")
	require.NoError(t, idle.Stop(context.Background()))

	s := startSession(t, b, session.Config{})
	require.NoError(t, s.Stop(context.Background()))
	require.NoError(t, s.Stop(context.Background()))
	assert.False(t, s.Running())

	b.mu.Lock()
	defer b.mu.Unlock()
	assert.True(t, b.halted)
	assert.True(t, b.closed)
}

func TestSession_StopRacingStart(t *testing.T) {
	for range 200 {
		b := &fakeBackend{}
		s := session.New(b, session.Descriptor{}, session.Config{})

		var wg sync.WaitGroup
		var startErr, stopErr error
		wg.Add(2)
		go func() { defer wg.Done(); startErr = s.Start(context.Background()) }()
		go func() { defer wg.Done(); stopErr = s.Stop(context.Background()) }()
		wg.Wait()

		require.NoError(t, stopErr)
		if startErr != nil {
			require.ErrorIs(t, startErr, session.ErrNotRunning)
			continue
		}
		select {
		case <-s.Done():
		default:
			t.Fatal("stop returned while the started session was still running")
		}
		assert.False(t, s.Running())
		b.mu.Lock()
		assert.True(t, b.halted)
		b.mu.Unlock()
	}
}

func TestSession_StartTwice(t *testing.T) {
	s := startSession(t, &fakeBackend{}, session.Config{})
	assert.ErrorIs(t, s.Start(context.Background()), session.ErrAlreadyStarted)
}

func TestSession_ConnectFailure(t *testing.T) {
	boom := errors.New("no route to robot")
	s := session.New(&fakeBackend{connectErr: boom}, session.Descriptor{}, session.Config{})

	err := s.Start(context.Background())
	require.ErrorIs(t, err, boom)
	assert.False(t, s.Running())
	<-s.Done()
	assert.NoError(t, s.Stop(context.Background()))
}

func TestSession_DispatchTimeout(t *testing.T) {
	b := &fakeBackend{block: make(chan struct{})}
	s := startSession(t, b, session.Config{DispatchTimeout: 20 * time.Millisecond})

	_, err := s.Dispatch(context.Background(), "walk", nil)
	require.ErrorIs(t, err, session.ErrDispatchTimeout)
	assert.Contains(t, err.Error(), "walk")

	close(b.block)
	res, err := s.Dispatch(context.Background(), "sit", nil)
	require.NoError(t, err, "the session recovers once the backend returns")
	assert.Equal(t, "did sit", res.AsText())
}

func TestSession_CallerCancellation(t *testing.T) {
	b := &fakeBackend{block: make(chan struct{})}
	s := startSession(t, b, session.Config{})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	_, err := s.Dispatch(ctx, "walk", nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, session.ErrDispatchTimeout)
}

func TestSession_ReadSensorsNeverBlocks(t *testing.T) {
	b := &fakeBackend{block: make(chan struct{})}
	s := startSession(t, b, session.Config{DispatchTimeout: time.Second})

	errc := make(chan error, 1)
	go func() {
		_, err := s.Dispatch(context.Background(), "walk", nil)
		errc <- err
	}()
	require.Eventually(t, func() bool { return b.active.Load() == 1 }, time.Second, time.Millisecond)

	got := make(chan value.Record, 1)
	go func() { got <- s.ReadSensors() }()
	select {
	case snap := <-got:
		assert.Equal(t, 1.0, snap.Get("ultrasonic").AsNumber())
	case <-time.After(100 * time.Millisecond):
		t.Fatal("ReadSensors blocked behind a running dispatch")
	}

	close(b.block)
	require.NoError(t, <-errc)
}

func TestSession_SerialisesCommands(t *testing.T) {
	b := &fakeBackend{}
	s := startSession(t, b, session.Config{})

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Dispatch(context.Background(), "wave", nil)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), b.peak.Load())
}

func TestSession_PollsSensors(t *testing.T) {
	b := &fakeBackend{}
	s := startSession(t, b, session.Config{PollInterval: 2 * time.Millisecond})

	require.Eventually(t, func() bool { return b.senseCount() >= 5 }, time.Second, time.Millisecond)
	assert.GreaterOrEqual(t, s.ReadSensors().Get("ultrasonic").AsNumber(), 2.0)
}

func TestSession_SenseFailureKeepsSnapshot(t *testing.T) {
	b := &fakeBackend{}
	s := startSession(t, b, session.Config{})

	b.mu.Lock()
	b.senseErr = errors.New("sensor bus reset")
	b.mu.Unlock()

	_, err := s.Dispatch(context.Background(), "stand", nil)
	require.NoError(t, err)
	_, err = s.Dispatch(context.Background(), "stand", nil)
	require.NoError(t, err)
	assert.Equal(t, 1.0, s.ReadSensors().Get("ultrasonic").AsNumber())
}
