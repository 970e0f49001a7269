package logger

import "sync/atomic"

// Broadcaster is the interface for pushing log entries to live viewers.
type Broadcaster interface {
	Broadcast(msgType string, payload interface{})
}

// broadcastSink holds the optional hub entries are forwarded to. The hub is
// attached after the logger exists, so it is swapped atomically.
type broadcastSink struct {
	hub atomic.Pointer[Broadcaster]
}

func (b *broadcastSink) set(hub Broadcaster) {
	if hub == nil {
		b.hub.Store(nil)
		return
	}
	b.hub.Store(&hub)
}

func (b *broadcastSink) send(entry LogEntry) {
	if hub := b.hub.Load(); hub != nil {
		(*hub).Broadcast("logs:entry", entry)
	}
}

// SetBroadcastHub enables streaming of new log entries to hub. nil disables it.
func (l *Logger) SetBroadcastHub(hub Broadcaster) {
	l.recent.sink.set(hub)
}
