// Package telemetry is the outbound boundary of the plant: a Publisher that
// stamps messages with the run ID and drops publishes that arrive faster than
// one per topic per interval, plus a few Sink implementations.
package telemetry

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// Publisher rate-limits publishes per topic and forwards them to a Sink.
// The limit is measured in wall-clock time, independently of simulated time.
//
// Thread-safety: NOT thread-safe; owned by the goroutine driving the run.
type Publisher struct {
	sink     Sink
	runID    uuid.UUID
	interval time.Duration
	limiters map[string]*rate.Limiter
	now      func() time.Time

	published int64
	dropped   int64
	failed    int64
}

// NewPublisher creates a Publisher. An interval <= 0 disables rate limiting.
// A nil sink discards everything.
func NewPublisher(sink Sink, runID uuid.UUID, interval time.Duration) *Publisher {
	if sink == nil {
		sink = Discard
	}
	return &Publisher{
		sink:     sink,
		runID:    runID,
		interval: interval,
		limiters: make(map[string]*rate.Limiter),
		now:      time.Now,
	}
}

// WithClock replaces the wall clock used by the limiters. Tests only.
func (p *Publisher) WithClock(now func() time.Time) *Publisher {
	p.now = now
	return p
}

// RunID returns the identifier stamped on every message.
func (p *Publisher) RunID() uuid.UUID { return p.runID }

// Connect reaches the sink if it needs connecting.
func (p *Publisher) Connect(ctx context.Context) error {
	if c, ok := p.sink.(Connector); ok {
		return c.Connect(ctx)
	}
	return nil
}

// Publish marshals payload and forwards it, unless this topic already
// published within the interval. Returns whether the message was sent.
func (p *Publisher) Publish(simTime int64, topic string, payload any) bool {
	if !p.allow(topic) {
		p.dropped++
		return false
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		logrus.Warnf("telemetry: cannot marshal payload for %s: %v", topic, err)
		p.failed++
		return false
	}
	msg := Message{RunID: p.runID.String(), Topic: topic, SimTime: simTime, Payload: raw}
	if err := p.sink.Publish(msg); err != nil {
		logrus.Warnf("telemetry: publish %s failed: %v", topic, err)
		p.failed++
		return false
	}
	p.published++
	return true
}

// PublishValue wraps v as {"value": v}, the flat shape dashboards expect.
func (p *Publisher) PublishValue(simTime int64, topic string, v any) bool {
	return p.Publish(simTime, topic, map[string]any{"value": v})
}

// Stats returns how many messages were sent, dropped by the limiter, and
// lost to marshal or sink errors.
func (p *Publisher) Stats() (published, dropped, failed int64) {
	return p.published, p.dropped, p.failed
}

func (p *Publisher) allow(topic string) bool {
	if p.interval <= 0 {
		return true
	}
	lim, ok := p.limiters[topic]
	if !ok {
		lim = rate.NewLimiter(rate.Every(p.interval), 1)
		p.limiters[topic] = lim
	}
	return lim.AllowN(p.now(), 1)
}
