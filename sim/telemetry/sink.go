package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

// Message is one published telemetry value.
type Message struct {
	RunID   string          `json:"runId"`
	Topic   string          `json:"topic"`
	SimTime int64           `json:"simulationTime"`
	Payload json.RawMessage `json:"payload"`
}

// Sink receives rate-limited messages from a Publisher.
type Sink interface {
	Publish(msg Message) error
}

// Connector is implemented by sinks that must reach an external endpoint
// before the run starts. A Connect failure aborts startup.
type Connector interface {
	Connect(ctx context.Context) error
}

// Discard drops every message.
var Discard Sink = discardSink{}

type discardSink struct{}

func (discardSink) Publish(Message) error { return nil }

// MemorySink keeps every message in publish order. Used by tests and by the
// CLI summary.
type MemorySink struct {
	mu       sync.Mutex
	messages []Message
}

// NewMemorySink returns an empty MemorySink.
func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

// Publish records msg.
func (s *MemorySink) Publish(msg Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, msg)
	return nil
}

// Messages returns a copy of everything published so far.
func (s *MemorySink) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// ByTopic returns the messages published on topic, oldest first.
func (s *MemorySink) ByTopic(topic string) []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Message
	for _, m := range s.messages {
		if m.Topic == topic {
			out = append(out, m)
		}
	}
	return out
}

// LogSink writes each message as a logrus debug entry.
type LogSink struct{}

// Publish logs msg.
func (LogSink) Publish(msg Message) error {
	logrus.WithFields(logrus.Fields{
		"run":   msg.RunID,
		"topic": msg.Topic,
	}).Debugf("[tick %07d] %s", msg.SimTime, msg.Payload)
	return nil
}

// FileSink appends messages as JSON lines to a file opened by Connect.
type FileSink struct {
	Path string

	f   *os.File
	enc *json.Encoder
}

// Connect opens (or creates) the output file.
func (s *FileSink) Connect(_ context.Context) error {
	f, err := os.OpenFile(s.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening telemetry file %s: %w", s.Path, err)
	}
	s.f = f
	s.enc = json.NewEncoder(f)
	return nil
}

// Publish writes one JSON line.
func (s *FileSink) Publish(msg Message) error {
	if s.enc == nil {
		return fmt.Errorf("telemetry file %s: not connected", s.Path)
	}
	return s.enc.Encode(msg)
}

// Close closes the output file.
func (s *FileSink) Close() error {
	if s.f == nil {
		return nil
	}
	err := s.f.Close()
	s.f, s.enc = nil, nil
	return err
}
