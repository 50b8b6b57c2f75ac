package analysis

import (
	"sync"

	"go.uber.org/zap"
)

// Sink receives diagnostics produced while analyzing a type.
type Sink interface {
	Debug(typeName, step string, fields ...zap.Field)
	Warn(typeName, msg string, fields ...zap.Field)
}

type zapSink struct {
	logger *zap.Logger
}

// NewZapSink returns a Sink that writes through logger.
func NewZapSink(logger *zap.Logger) Sink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &zapSink{logger: logger.Named("analysis")}
}

func (s *zapSink) Debug(typeName, step string, fields ...zap.Field) {
	s.logger.Debug(step, append([]zap.Field{zap.String("type", typeName)}, fields...)...)
}

func (s *zapSink) Warn(typeName, msg string, fields ...zap.Field) {
	s.logger.Warn(msg, append([]zap.Field{zap.String("type", typeName)}, fields...)...)
}

// Entry is one diagnostic kept by a RecordingSink.
type Entry struct {
	Type    string
	Level   string
	Message string
}

// RecordingSink keeps diagnostics in memory. It is safe for concurrent use.
type RecordingSink struct {
	mu      sync.Mutex
	entries []Entry
}

func (s *RecordingSink) Debug(typeName, step string, _ ...zap.Field) {
	s.add(Entry{Type: typeName, Level: "debug", Message: step})
}

func (s *RecordingSink) Warn(typeName, msg string, _ ...zap.Field) {
	s.add(Entry{Type: typeName, Level: "warn", Message: msg})
}

func (s *RecordingSink) add(e Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, e)
}

// Entries returns a copy of the recorded diagnostics.
func (s *RecordingSink) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Entry(nil), s.entries...)
}
