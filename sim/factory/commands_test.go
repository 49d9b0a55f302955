package factory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/factory-sim/factory-sim/sim"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		name    string
		topic   string
		payload string
		want    Command
	}{
		{"index", "factory/command/strategy", `{"strategy": 0}`,
			Command{Kind: CommandActivate, Strategy: PreventiveMaintenance}},
		{"name with action", "factory/command/strategy", `{"strategy": "lean_manufacturing", "action": "deactivate"}`,
			Command{Kind: CommandDeactivate, Strategy: LeanManufacturing}},
		{"numeric string", "factory/command/strategy", `{"strategy": "14"}`,
			Command{Kind: CommandActivate, Strategy: HireWorkers}},
		{"duration in days", "factory/command/strategy", `{"strategy": 9, "duration": 2.5}`,
			Command{Kind: CommandActivate, Strategy: LeanManufacturing, Duration: 2*sim.Day + 12*sim.Hour}},
		{"bad duration falls back", "factory/command/strategy", `{"strategy": 9, "duration": -1}`,
			Command{Kind: CommandActivate, Strategy: LeanManufacturing, BadDuration: true}},
		{"per-strategy topic", "factory/command/OUTSOURCING", `{"trigger": true, "duration": "3"}`,
			Command{Kind: CommandActivate, Strategy: Outsourcing, Duration: 3 * sim.Day}},
		{"per-strategy off", "factory/command/OUTSOURCING", `{"trigger": false}`,
			Command{Kind: CommandDeactivate, Strategy: Outsourcing}},
		{"pause", "factory/command/simulation", `{"action": "pause"}`, Command{Kind: CommandPause}},
		{"bare stop", "factory/command/simulation", `"stop"`, Command{Kind: CommandStop}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCommand(tt.topic, []byte(tt.payload))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseCommand_Errors(t *testing.T) {
	tests := []struct {
		name    string
		topic   string
		payload string
		want    error
	}{
		{"unknown topic", "factory/other", `{}`, ErrInvalidCommand},
		{"malformed json", "factory/command/strategy", `{"strategy":`, ErrInvalidCommand},
		{"missing strategy", "factory/command/strategy", `{}`, ErrInvalidCommand},
		{"index out of range", "factory/command/strategy", `{"strategy": 99}`, ErrInvalidStrategy},
		{"unknown name", "factory/command/strategy", `{"strategy": "TELEPORT"}`, ErrInvalidStrategy},
		{"unknown strategy topic", "factory/command/TELEPORT", `{"trigger": true}`, ErrInvalidStrategy},
		{"unknown action", "factory/command/strategy", `{"strategy": 1, "action": "toggle"}`, ErrInvalidCommand},
		{"unknown simulation action", "factory/command/simulation", `{"action": "rewind"}`, ErrInvalidCommand},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCommand(tt.topic, []byte(tt.payload))
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestHandleCommand_InvalidIsLoggedAndIgnored(t *testing.T) {
	f := newTestFactory(t)

	err := f.HandleCommand("factory/command/strategy", []byte(`{"strategy": 99}`))
	assert.ErrorIs(t, err, ErrInvalidStrategy)
	assert.True(t, hasLog(f, LevelError, "Command"))

	err = f.HandleCommand("factory/command/simulation", []byte(`{"action": "rewind"}`))
	assert.ErrorIs(t, err, ErrInvalidCommand)
	assert.True(t, hasLog(f, LevelWarning, "Command"))

	assert.Empty(t, f.Strategies().Active())
	assert.Empty(t, f.Audit().Strategies)
}

func TestHandleCommand_ActivatesAndPauses(t *testing.T) {
	f := newTestFactory(t)

	require.NoError(t, f.HandleCommand("factory/command/strategy", []byte(`{"strategy": "KPI_MONITORING", "duration": 2}`)))
	require.NoError(t, f.HandleCommand("factory/command/simulation", []byte(`{"action": "pause"}`)))

	assert.True(t, f.Strategies().IsActive(KPIMonitoring))
	assert.Equal(t, 2*sim.Day, f.Strategies().Remaining(KPIMonitoring))
	assert.True(t, f.Paused())

	require.NoError(t, f.HandleCommand("factory/command/simulation", []byte(`{"action": "resume"}`)))
	assert.False(t, f.Paused())
}
