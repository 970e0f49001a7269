package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRingBuffer_Overwrite(t *testing.T) {
	rb := NewRingBuffer[int](3)
	for i := 1; i <= 5; i++ {
		rb.Push(i)
	}

	assert.Equal(t, []int{3, 4, 5}, rb.GetAll())
	assert.Equal(t, 3, rb.Len())
	assert.Equal(t, 3, rb.Cap())

	rb.Clear()
	assert.Empty(t, rb.GetAll())
}

func TestLogger_RecentEntries(t *testing.T) {
	var out bytes.Buffer
	l := newWithOutput(Config{Level: "debug", Format: "json", BufferSize: 10}, &out)

	tmdb := l.WithComponent("tmdb")
	tmdb.Info().Int("page", 2).Msg("discover")
	l.Warn().Msg("plain warning")

	entries := l.Recent().GetRecentLogs()
	require.Len(t, entries, 2)

	assert.Equal(t, "tmdb", entries[0].Component)
	assert.Equal(t, "discover", entries[0].Message)
	assert.Equal(t, "info", entries[0].Level)
	assert.EqualValues(t, 2, entries[0].Fields["page"])

	warns := l.Recent().Filter("warn", "", 0)
	require.Len(t, warns, 1)
	assert.Equal(t, "plain warning", warns[0].Message)

	assert.Len(t, l.Recent().Filter("", "tmdb", 5), 1)
	assert.Contains(t, out.String(), `"component":"tmdb"`)
	assert.Empty(t, l.GetLogFilePath())
}

func TestRecentLogs_IgnoresMalformed(t *testing.T) {
	r := NewRecentLogs(0)
	n, err := r.Write([]byte("not json"))
	require.NoError(t, err)
	assert.Equal(t, 8, n)
	assert.Empty(t, r.GetRecentLogs())
}

func TestParseLevel(t *testing.T) {
	tests := map[string]string{
		"trace":   "trace",
		"DEBUG":   "debug",
		"warning": "warn",
		"bogus":   "info",
	}
	for in, want := range tests {
		assert.Equal(t, want, parseLevel(in).String(), in)
	}
}

type fakeHub struct {
	types   []string
	entries []LogEntry
}

func (f *fakeHub) Broadcast(msgType string, payload interface{}) {
	f.types = append(f.types, msgType)
	if e, ok := payload.(LogEntry); ok {
		f.entries = append(f.entries, e)
	}
}

func TestLogger_BroadcastHub(t *testing.T) {
	var out bytes.Buffer
	l := newWithOutput(Config{Level: "info", Format: "json"}, &out)

	l.Info().Msg("before hub")

	hub := &fakeHub{}
	l.SetBroadcastHub(hub)
	cl := l.WithComponent("catalog")
	cl.Info().Msg("streamed")

	l.SetBroadcastHub(nil)
	l.Info().Msg("after hub")

	require.Len(t, hub.entries, 1)
	assert.Equal(t, []string{"logs:entry"}, hub.types)
	assert.Equal(t, "streamed", hub.entries[0].Message)
	assert.Equal(t, "catalog", hub.entries[0].Component)
}
