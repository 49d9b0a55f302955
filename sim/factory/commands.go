package factory

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/factory-sim/factory-sim/sim"
	"github.com/factory-sim/factory-sim/sim/telemetry"
)

// CommandKind enumerates the operator commands the plant accepts.
type CommandKind int

const (
	CommandActivate CommandKind = iota
	CommandDeactivate
	CommandPause
	CommandResume
	CommandStop
)

func (k CommandKind) String() string {
	switch k {
	case CommandActivate:
		return "activate"
	case CommandDeactivate:
		return "deactivate"
	case CommandPause:
		return "pause"
	case CommandResume:
		return "resume"
	case CommandStop:
		return "stop"
	}
	return fmt.Sprintf("CommandKind(%d)", int(k))
}

// Command is a parsed ingress message.
type Command struct {
	Kind     CommandKind
	Strategy Strategy
	Duration int64 // minutes; 0 selects the strategy default

	// BadDuration is set when the payload carried a duration that could
	// not be used. The default duration applies.
	BadDuration bool
}

type strategyPayload struct {
	Strategy json.RawMessage `json:"strategy"`
	Action   string          `json:"action"`
	Trigger  *bool           `json:"trigger"`
	Duration json.RawMessage `json:"duration"`
}

type simulationPayload struct {
	Action string `json:"action"`
}

// errUnknownCommand is wrapped with ErrInvalidCommand for topics nobody
// handles. Callers log these at WARNING rather than ERROR.
var errUnknownCommand = errors.New("unknown command topic")

// ParseCommand decodes a message received on topic. Accepted forms:
//
//	factory/command/strategy    {"strategy": 3 | "LEAN_MANUFACTURING", "action": "activate", "duration": 10}
//	factory/command/<STRATEGY>  {"trigger": true, "duration": 10}
//	factory/command/simulation  {"action": "pause" | "resume" | "stop"}
//
// Durations are in days.
func ParseCommand(topic string, payload []byte) (Command, error) {
	switch {
	case topic == telemetry.SimulationCommand:
		return parseSimulationCommand(payload)
	case topic == telemetry.StrategyCommand:
		return parseStrategyCommand(payload, "")
	case strings.HasPrefix(topic, telemetry.CommandPrefix):
		return parseStrategyCommand(payload, strings.TrimPrefix(topic, telemetry.CommandPrefix))
	}
	return Command{}, fmt.Errorf("%w: %w %q", ErrInvalidCommand, errUnknownCommand, topic)
}

func parseSimulationCommand(payload []byte) (Command, error) {
	var action string
	var p simulationPayload
	if err := json.Unmarshal(payload, &p); err == nil {
		action = p.Action
	} else if err := json.Unmarshal(payload, &action); err != nil {
		action = string(bytes.TrimSpace(payload))
	}
	switch strings.ToLower(strings.TrimSpace(action)) {
	case "pause":
		return Command{Kind: CommandPause}, nil
	case "resume":
		return Command{Kind: CommandResume}, nil
	case "stop":
		return Command{Kind: CommandStop}, nil
	}
	return Command{}, fmt.Errorf("%w: %w simulation action %q", ErrInvalidCommand, errUnknownCommand, action)
}

func parseStrategyCommand(payload []byte, name string) (Command, error) {
	var p strategyPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return Command{}, fmt.Errorf("%w: malformed payload: %v", ErrInvalidCommand, err)
	}

	ref := name
	if ref == "" {
		r, err := strategyRef(p.Strategy)
		if err != nil {
			return Command{}, err
		}
		ref = r
	}
	s, err := ParseStrategy(ref)
	if err != nil {
		return Command{}, err
	}

	cmd := Command{Kind: CommandActivate, Strategy: s}
	switch {
	case p.Trigger != nil:
		if !*p.Trigger {
			cmd.Kind = CommandDeactivate
		}
	case p.Action != "":
		switch strings.ToLower(p.Action) {
		case "activate":
		case "deactivate":
			cmd.Kind = CommandDeactivate
		default:
			return Command{}, fmt.Errorf("%w: unknown action %q", ErrInvalidCommand, p.Action)
		}
	}
	cmd.Duration, cmd.BadDuration = parseDays(p.Duration)
	return cmd, nil
}

// strategyRef accepts a JSON number or string.
func strategyRef(raw json.RawMessage) (string, error) {
	if len(raw) == 0 {
		return "", fmt.Errorf("%w: missing strategy", ErrInvalidCommand)
	}
	var idx json.Number
	if err := json.Unmarshal(raw, &idx); err == nil {
		return idx.String(), nil
	}
	var name string
	if err := json.Unmarshal(raw, &name); err == nil {
		return name, nil
	}
	return "", fmt.Errorf("%w: strategy must be an index or a name, got %s", ErrInvalidCommand, raw)
}

// parseDays converts an optional duration in days to minutes. A missing
// value returns (0, false); an unusable one returns (0, true).
func parseDays(raw json.RawMessage) (int64, bool) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, false
	}
	var days float64
	if err := json.Unmarshal(raw, &days); err != nil {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, true
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return 0, true
		}
		days = v
	}
	if days <= 0 {
		return 0, true
	}
	return sim.Minutes(days * float64(sim.Day)), false
}

// HandleCommand parses and applies one ingress message. Invalid commands are
// logged and ignored; the returned error is informational.
func (f *Factory) HandleCommand(topic string, payload []byte) error {
	cmd, err := ParseCommand(topic, payload)
	if err != nil {
		if errors.Is(err, errUnknownCommand) {
			f.log(LevelWarning, "Command", "Ignoring command on %s: %v", topic, err)
		} else {
			f.log(LevelError, "Command", "Rejected command on %s: %v", topic, err)
		}
		return err
	}
	f.Apply(cmd)
	return nil
}

// Apply executes a parsed command against the plant.
func (f *Factory) Apply(cmd Command) {
	switch cmd.Kind {
	case CommandActivate:
		if cmd.BadDuration {
			f.log(LevelWarning, "Command", "Invalid duration for %s, using the default", cmd.Strategy)
		}
		f.strategies.Activate(cmd.Strategy, cmd.Duration)
	case CommandDeactivate:
		f.strategies.Deactivate(cmd.Strategy)
	case CommandPause:
		f.Pause()
		f.log(LevelInfo, "Simulation", "Simulation paused")
	case CommandResume:
		f.Resume()
		f.log(LevelInfo, "Simulation", "Simulation resumed")
	case CommandStop:
		f.Stop()
		f.log(LevelInfo, "Simulation", "Simulation stopped")
	}
}
