package socketiobackend

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/specialistvlad/robogrid/internal/session"
	"github.com/specialistvlad/robogrid/internal/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeResult(t *testing.T) {
	tests := []struct {
		name    string
		data    []any
		wantID  string
		want    value.Value
		wantErr string
	}{
		{
			name:   "result value",
			data:   []any{map[string]any{"id": "a1", "ok": true, "result": map[string]any{"distance": 0.5}}},
			wantID: "a1",
			want:   value.RecordOf(value.Record{"distance": value.Number(0.5)}),
		},
		{
			name:   "missing result means success",
			data:   []any{map[string]any{"id": "a2"}},
			wantID: "a2",
			want:   value.Bool(true),
		},
		{
			name:    "error message",
			data:    []any{map[string]any{"id": "a3", "error": "motor fault"}},
			wantID:  "a3",
			wantErr: "motor fault",
		},
		{
			name:    "not ok",
			data:    []any{map[string]any{"id": "a4", "ok": false}},
			wantID:  "a4",
			wantErr: "action failed",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			id, res, err := decodeResult(tc.data)
			require.NoError(t, err)
			assert.Equal(t, tc.wantID, id)
			if tc.wantErr != "" {
				assert.EqualError(t, res.err, tc.wantErr)
				return
			}
			require.NoError(t, res.err)
			assert.True(t, value.Equal(tc.want, res.result), "got %s", res.result)
		})
	}
}

func TestDecodeResult_Malformed(t *testing.T) {
	_, _, err := decodeResult(nil)
	assert.Error(t, err)
	_, _, err = decodeResult([]any{"text"})
	assert.ErrorContains(t, err, "not an object")
	_, _, err = decodeResult([]any{map[string]any{"ok": true}})
	assert.ErrorContains(t, err, "no id")
}

func TestDecodeSensors(t *testing.T) {
	snap, err := decodeSensors([]any{map[string]any{
		"ultrasonic": 1.25,
		"imu":        map[string]any{"value": 3, "yaw": 3},
	}})
	require.NoError(t, err)
	assert.Equal(t, 1.25, snap.Get("ultrasonic").AsNumber())
	assert.Equal(t, 3.0, snap.Get("imu").AsNumber())

	_, err = decodeSensors([]any{42})
	assert.Error(t, err)
}

func TestEventError(t *testing.T) {
	boom := errors.New("refused")
	assert.Equal(t, boom, eventError([]any{boom}))
	assert.EqualError(t, eventError([]any{"nope"}), "nope")
	assert.Error(t, eventError(nil))
}

func TestBackend_NotConnected(t *testing.T) {
	b := New()
	_, err := b.Execute(context.Background(), "stand", nil)
	assert.ErrorIs(t, err, ErrNotConnected)
	_, err = b.Sense(context.Background())
	assert.ErrorIs(t, err, ErrNotConnected)
	assert.NoError(t, b.Halt(context.Background()))
	assert.NoError(t, b.Close())
}

func TestConnect_RejectsBadURL(t *testing.T) {
	err := New().Connect(context.Background(), session.Descriptor{URL: "localhost"})
	assert.ErrorContains(t, err, "needs a scheme and a host")
}

func TestConnect_GivesUpWithContext(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	err := New().Connect(ctx, session.Descriptor{URL: "http://127.0.0.1:1/socket.io/"})
	assert.Error(t, err)
}
