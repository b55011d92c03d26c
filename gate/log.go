package gate

import (
	"sync"
	"time"

	"github.com/gatedb/gatedb/value"
)

// Verbosity controls how much of each emit the structured log records
// (spec §6.C).
type Verbosity int

const (
	// Off records nothing.
	Off Verbosity = iota
	// Events records type + claimed gate signature.
	Events
	// Deep adds stream id + parent stream id.
	Deep
	// VerbosityData adds the event's data payload.
	VerbosityData
)

// LogEntry is one recorded emit.
type LogEntry struct {
	Seq      uint64
	Time     time.Time
	Type     string
	Claimed  string // claiming gate's signature, "" if unclaimed
	StreamID string
	ParentID string
	Data     value.Map
}

// Log is the shared structured log every Stream (root and children)
// appends to.
type Log struct {
	mu        sync.Mutex
	verbosity Verbosity
	seq       uint64
	entries   []LogEntry
}

// NewLog creates a Log at the given verbosity.
func NewLog(v Verbosity) *Log {
	return &Log{verbosity: v}
}

func (l *Log) record(streamID, parentID, typ, claimed string, data value.Map) {
	if l.verbosity == Off {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.seq++
	e := LogEntry{Seq: l.seq, Time: time.Now(), Type: typ, Claimed: claimed}
	if l.verbosity >= Deep {
		e.StreamID = streamID
		e.ParentID = parentID
	}
	if l.verbosity >= VerbosityData {
		e.Data = data
	}
	l.entries = append(l.entries, e)
}

// Entries returns a copy of every recorded entry.
func (l *Log) Entries() []LogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]LogEntry, len(l.entries))
	copy(out, l.entries)
	return out
}
