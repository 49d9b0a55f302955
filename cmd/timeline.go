package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/factory-sim/factory-sim/sim"
	"github.com/factory-sim/factory-sim/sim/factory"
)

// defaultStartDate is the calendar date of simulated minute 0. It is a Monday.
const defaultStartDate = "2024-01-01"

// Timeline is a scripted sequence of ingress commands, loaded from YAML:
//
//	start_date: 2024-01-01
//	commands:
//	  - at_minute: 1440
//	    topic: factory/command/strategy
//	    payload: {strategy: PREVENTIVE_MAINTENANCE}
//	  - cron: "0 8 * * 1"
//	    topic: factory/command/EMERGENCY_MATERIALS
//	    payload: {trigger: true}
type Timeline struct {
	StartDate string          `yaml:"start_date"`
	Commands  []TimelineEntry `yaml:"commands" validate:"dive"`
}

// TimelineEntry fires once at AtMinute or at every match of Cron.
// Exactly one of the two must be set.
type TimelineEntry struct {
	AtMinute *int64 `yaml:"at_minute" validate:"omitempty,gte=0"`
	Cron     string `yaml:"cron"`
	Topic    string `yaml:"topic" validate:"required,startswith=factory/command/"`
	Payload  any    `yaml:"payload"`
}

// ScheduledCommand is one expanded timeline firing.
type ScheduledCommand struct {
	At      int64 // simulated minute
	Topic   string
	Payload []byte
}

var (
	cronParser        = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	timelineValidator = validator.New()
)

// LoadTimeline reads and validates a timeline file.
func LoadTimeline(path string) (*Timeline, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading command timeline: %v", factory.ErrConfiguration, err)
	}
	var tl Timeline
	if err := decodeStrict(data, &tl); err != nil {
		return nil, fmt.Errorf("%w: parsing command timeline %s: %v", factory.ErrConfiguration, path, err)
	}
	if err := tl.Validate(); err != nil {
		return nil, err
	}
	return &tl, nil
}

// Validate checks every entry.
func (tl *Timeline) Validate() error {
	if err := timelineValidator.Struct(tl); err != nil {
		return fmt.Errorf("%w: command timeline: %v", factory.ErrConfiguration, err)
	}
	if _, err := tl.start(); err != nil {
		return err
	}
	for i, e := range tl.Commands {
		switch {
		case e.AtMinute == nil && e.Cron == "":
			return fmt.Errorf("%w: command %d: one of at_minute or cron is required", factory.ErrConfiguration, i)
		case e.AtMinute != nil && e.Cron != "":
			return fmt.Errorf("%w: command %d: at_minute and cron are mutually exclusive", factory.ErrConfiguration, i)
		}
		if e.Cron != "" {
			if _, err := cronParser.Parse(e.Cron); err != nil {
				return fmt.Errorf("%w: command %d: cron %q: %v", factory.ErrConfiguration, i, e.Cron, err)
			}
		}
	}
	return nil
}

func (tl *Timeline) start() (time.Time, error) {
	date := tl.StartDate
	if date == "" {
		date = defaultStartDate
	}
	t, err := time.Parse(time.DateOnly, date)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: start_date %q: %v", factory.ErrConfiguration, date, err)
	}
	return t, nil
}

// Expand resolves every entry to the simulated minutes at which it fires
// within [0, horizon). Results are ordered by time, then by file order.
func (tl *Timeline) Expand(horizon int64) ([]ScheduledCommand, error) {
	start, err := tl.start()
	if err != nil {
		return nil, err
	}
	end := start.Add(time.Duration(horizon) * time.Minute)

	var out []ScheduledCommand
	for i, e := range tl.Commands {
		payload, err := encodePayload(e.Payload)
		if err != nil {
			return nil, fmt.Errorf("%w: command %d payload: %v", factory.ErrConfiguration, i, err)
		}
		if e.AtMinute != nil {
			if *e.AtMinute < horizon {
				out = append(out, ScheduledCommand{At: *e.AtMinute, Topic: e.Topic, Payload: payload})
			}
			continue
		}
		sched, err := cronParser.Parse(e.Cron)
		if err != nil {
			return nil, fmt.Errorf("%w: command %d: cron %q: %v", factory.ErrConfiguration, i, e.Cron, err)
		}
		// Next is strictly after its argument; back off so minute 0 can match.
		for t := sched.Next(start.Add(-time.Nanosecond)); t.Before(end); t = sched.Next(t) {
			at := int64(t.Sub(start) / time.Minute)
			out = append(out, ScheduledCommand{At: at, Topic: e.Topic, Payload: payload})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].At < out[j].At })
	return out, nil
}

// encodePayload turns a YAML payload into the JSON bytes the ingress parses.
// A nil payload becomes an empty object.
func encodePayload(p any) ([]byte, error) {
	if p == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(p)
}

// scheduleCommands places each command on the plant clock. Invalid commands
// are logged by the plant when they fire and do not stop the run.
func scheduleCommands(f *factory.Factory, cmds []ScheduledCommand) {
	clock := f.Clock()
	for _, c := range cmds {
		c := c
		clock.ScheduleAt(c.At, "command", func() {
			_ = f.HandleCommand(c.Topic, c.Payload)
		})
	}
	if len(cmds) > 0 {
		logrus.Infof("Scheduled %d timeline commands, first at %s", len(cmds), sim.FormatTime(cmds[0].At))
	}
}
