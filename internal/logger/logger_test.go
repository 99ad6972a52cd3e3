package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInterpolate(t *testing.T) {
	tests := []struct {
		name string
		msg  string
		ctx  Context
		want string
	}{
		{
			name: "no placeholders",
			msg:  "plain message",
			ctx:  Context{"path": "/x"},
			want: "plain message",
		},
		{
			name: "string value",
			msg:  "Processing '{path}'.",
			ctx:  Context{"path": "/tmp/x"},
			want: "Processing '/tmp/x'.",
		},
		{
			name: "int value",
			msg:  "Added {count} new file(s).",
			ctx:  Context{"count": 4},
			want: "Added 4 new file(s).",
		},
		{
			name: "multiple placeholders",
			msg:  "both {a} and {b}",
			ctx:  Context{"a": "AA", "b": "aa"},
			want: "both AA and aa",
		},
		{
			name: "missing placeholder left alone",
			msg:  "value {missing}",
			ctx:  Context{"other": 1},
			want: "value {missing}",
		},
		{
			name: "nil context",
			msg:  "value {x}",
			ctx:  nil,
			want: "value {x}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Interpolate(tt.msg, tt.ctx))
		})
	}
}

func TestNew_WritesRenderedMessage(t *testing.T) {
	var buf bytes.Buffer
	log := New("debug", &buf)

	log.Info("Added {count} new file(s).", Context{"count": 2})
	assert.Contains(t, buf.String(), "Added 2 new file(s).")
}

func TestNew_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := New("warn", &buf)

	log.Debug("hidden", nil)
	log.Info("hidden too", nil)
	log.Warning("visible", nil)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "visible")
}

func TestNew_UnknownLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	log := New("bogus", &buf)

	log.Debug("debug line", nil)
	log.Info("info line", nil)

	out := buf.String()
	assert.NotContains(t, out, "debug line")
	assert.Contains(t, out, "info line")
}

func TestRecorder(t *testing.T) {
	rec := NewRecorder()

	rec.Error("'{path}' is a symlink; this is not supported.", Context{"path": "/r/aa/BB"})
	rec.Info("Added {count} new file(s).", Context{"count": 4})
	rec.Warning("plain warning", nil)
	rec.Debug("a debug line", nil)

	records := rec.Records()
	require.Len(t, records, 4)
	assert.Equal(t, Record{Level: "error", Message: "'/r/aa/BB' is a symlink; this is not supported."}, records[0])
	assert.Equal(t, Record{Level: "info", Message: "Added 4 new file(s)."}, records[1])

	lines := rec.Lines()
	require.Len(t, lines, 4)
	assert.Equal(t, "error: '/r/aa/BB' is a symlink; this is not supported.", lines[0])
	assert.Equal(t, "warning: plain warning", lines[2])
	assert.Equal(t, "debug: a debug line", lines[3])

	rec.Reset()
	assert.Empty(t, rec.Records())
}
