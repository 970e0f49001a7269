package logger

import (
	"strings"

	json "github.com/goccy/go-json"
)

const defaultBufferSize = 1000

// LogEntry represents a parsed log entry kept for the logs endpoint.
type LogEntry struct {
	Timestamp string         `json:"timestamp"`
	Level     string         `json:"level"`
	Component string         `json:"component,omitempty"`
	Message   string         `json:"message"`
	Fields    map[string]any `json:"fields,omitempty"`
}

// RecentLogs implements io.Writer and keeps the last N zerolog JSON entries.
type RecentLogs struct {
	buffer *RingBuffer[LogEntry]
	sink   broadcastSink
}

// NewRecentLogs creates a buffer holding up to size entries.
func NewRecentLogs(size int) *RecentLogs {
	if size <= 0 {
		size = defaultBufferSize
	}
	return &RecentLogs{buffer: NewRingBuffer[LogEntry](size)}
}

// Write implements io.Writer. It receives JSON log entries from zerolog.
func (r *RecentLogs) Write(p []byte) (n int, err error) {
	n = len(p)

	entry, parseErr := parseLogEntry(p)
	if parseErr != nil {
		return n, nil //nolint:nilerr // Silently ignore malformed log entries
	}

	r.buffer.Push(entry)
	r.sink.send(entry)
	return n, nil
}

// GetRecentLogs returns all buffered log entries, oldest first.
func (r *RecentLogs) GetRecentLogs() []LogEntry {
	return r.buffer.GetAll()
}

// Filter returns the newest limit entries matching level and component.
// Empty filters match everything; limit <= 0 means no limit.
func (r *RecentLogs) Filter(level, component string, limit int) []LogEntry {
	all := r.buffer.GetAll()
	out := make([]LogEntry, 0, len(all))
	for _, e := range all {
		if level != "" && !strings.EqualFold(e.Level, level) {
			continue
		}
		if component != "" && e.Component != component {
			continue
		}
		out = append(out, e)
	}
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out
}

// parseLogEntry parses a zerolog JSON entry into a LogEntry.
func parseLogEntry(data []byte) (LogEntry, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return LogEntry{}, err
	}

	entry := LogEntry{}

	if ts, ok := raw["time"].(string); ok {
		entry.Timestamp = ts
		delete(raw, "time")
	}
	if level, ok := raw["level"].(string); ok {
		entry.Level = level
		delete(raw, "level")
	}
	if component, ok := raw["component"].(string); ok {
		entry.Component = component
		delete(raw, "component")
	}
	if msg, ok := raw["message"].(string); ok {
		entry.Message = msg
		delete(raw, "message")
	}

	if len(raw) > 0 {
		entry.Fields = raw
	}

	return entry, nil
}
