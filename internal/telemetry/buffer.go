package telemetry

import "log"

// pending is one serialized event awaiting a broker connection.
type pending struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool
}

// backlog holds pump and system events while the broker is unreachable.
// Diagnostic dumps are never backlogged: they are on-demand and reproducible,
// so the publisher discards them instead. When the backlog is full the oldest
// event is dropped and the loss is counted per topic, so the reconnect log
// shows what downstream energy accounting is missing. Not safe for concurrent
// use — the publisher synchronises.
type backlog struct {
	events  []pending
	limit   int
	dropped map[string]int
}

func newBacklog(limit int) *backlog {
	return &backlog{
		limit:   limit,
		dropped: make(map[string]int),
	}
}

func (b *backlog) add(msg pending) {
	if len(b.events) == b.limit {
		oldest := b.events[0]
		b.events = b.events[1:]
		if len(b.dropped) == 0 {
			log.Printf("telemetry: backlog full (%d events), dropping oldest", b.limit)
		}
		b.dropped[oldest.topic]++
	}
	b.events = append(b.events, msg)
}

// drain returns the backlogged events in arrival order and resets the
// backlog, logging a per-topic summary of anything dropped while offline.
func (b *backlog) drain() []pending {
	for topic, n := range b.dropped {
		log.Printf("telemetry: dropped %d %s events while offline", n, topic)
	}
	events := b.events
	b.events = nil
	b.dropped = make(map[string]int)
	return events
}

func (b *backlog) len() int {
	return len(b.events)
}
