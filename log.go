package glimmer

import (
	"fmt"
	"time"
)

// LogKind classifies a log record.
type LogKind string

const (
	LogInfo  LogKind = "log"
	LogWarn  LogKind = "warn"
	LogError LogKind = "error"
)

// LogRecord is one entry in the runtime's log stream. Script faults, asset
// faults, and script print calls all land here; display is up to the host.
type LogRecord struct {
	Kind LogKind
	Text string
	Time time.Time
}

const logCapacity = 256

// Logger collects LogRecords in a bounded ring and optionally forwards each
// record to a subscriber as it arrives. The zero value is ready to use.
// Not safe for concurrent use; the frame loop is single-threaded.
type Logger struct {
	records []LogRecord
	start   int

	// Sink, when non-nil, receives every record synchronously.
	Sink func(LogRecord)
}

// Log appends an info record.
func (l *Logger) Log(format string, args ...any) { l.append(LogInfo, format, args...) }

// Warn appends a warning record.
func (l *Logger) Warn(format string, args ...any) { l.append(LogWarn, format, args...) }

// Error appends an error record.
func (l *Logger) Error(format string, args ...any) { l.append(LogError, format, args...) }

func (l *Logger) append(kind LogKind, format string, args ...any) {
	rec := LogRecord{Kind: kind, Text: fmt.Sprintf(format, args...), Time: time.Now()}
	if len(l.records) < logCapacity {
		l.records = append(l.records, rec)
	} else {
		l.records[l.start] = rec
		l.start = (l.start + 1) % logCapacity
	}
	if l.Sink != nil {
		l.Sink(rec)
	}
}

// Records returns the buffered records, oldest first.
func (l *Logger) Records() []LogRecord {
	if l.start == 0 {
		return l.records
	}
	out := make([]LogRecord, 0, len(l.records))
	out = append(out, l.records[l.start:]...)
	out = append(out, l.records[:l.start]...)
	return out
}

// Clear drops all buffered records.
func (l *Logger) Clear() {
	l.records = l.records[:0]
	l.start = 0
}
