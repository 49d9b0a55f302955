package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/factory-sim/factory-sim/sim"
	"github.com/factory-sim/factory-sim/sim/factory"
	"github.com/factory-sim/factory-sim/sim/telemetry"
)

func minute(m int64) *int64 { return &m }

func quietPlant(t *testing.T) *factory.Factory {
	t.Helper()
	cfg := factory.DefaultConfig()
	cfg.Disruptions = factory.DisruptionConfig{}
	f, err := factory.New(cfg, nil)
	require.NoError(t, err)
	return f
}

func TestTimelineExpand_CronOnSimulatedCalendar(t *testing.T) {
	// GIVEN a timeline starting on a Monday with a weekly Monday 08:00 entry
	tl := &Timeline{
		StartDate: "2024-01-01",
		Commands: []TimelineEntry{
			{Cron: "0 8 * * 1", Topic: telemetry.CommandPrefix + "EMERGENCY_MATERIALS", Payload: map[string]any{"trigger": true}},
		},
	}
	require.NoError(t, tl.Validate())

	// WHEN it is expanded over two weeks
	got, err := tl.Expand(2 * sim.Week)
	require.NoError(t, err)

	// THEN it fires on both Mondays at 08:00
	require.Len(t, got, 2)
	assert.Equal(t, 8*sim.Hour, got[0].At)
	assert.Equal(t, sim.Week+8*sim.Hour, got[1].At)
	assert.JSONEq(t, `{"trigger": true}`, string(got[0].Payload))
}

func TestTimelineExpand_MatchesMinuteZero(t *testing.T) {
	tl := &Timeline{Commands: []TimelineEntry{{Cron: "0 0 * * *", Topic: telemetry.SimulationCommand}}}

	got, err := tl.Expand(3 * sim.Day)
	require.NoError(t, err)

	ats := make([]int64, len(got))
	for i, c := range got {
		ats[i] = c.At
	}
	assert.Equal(t, []int64{0, sim.Day, 2 * sim.Day}, ats)
	assert.Equal(t, "{}", string(got[0].Payload))
}

func TestTimelineExpand_OrdersByTimeThenFileOrder(t *testing.T) {
	tl := &Timeline{Commands: []TimelineEntry{
		{AtMinute: minute(600), Topic: telemetry.StrategyCommand, Payload: map[string]any{"strategy": 1}},
		{AtMinute: minute(60), Topic: telemetry.SimulationCommand, Payload: "pause"},
		{AtMinute: minute(600), Topic: telemetry.StrategyCommand, Payload: map[string]any{"strategy": 2}},
		{AtMinute: minute(sim.Day), Topic: telemetry.SimulationCommand, Payload: "stop"},
	}}

	got, err := tl.Expand(sim.Day)
	require.NoError(t, err)

	require.Len(t, got, 3, "an entry at the horizon is outside the run")
	assert.Equal(t, int64(60), got[0].At)
	assert.Equal(t, `"pause"`, string(got[0].Payload))
	assert.JSONEq(t, `{"strategy": 1}`, string(got[1].Payload))
	assert.JSONEq(t, `{"strategy": 2}`, string(got[2].Payload))
}

func TestTimelineValidate_Rejects(t *testing.T) {
	tests := []struct {
		name string
		tl   Timeline
	}{
		{"neither time nor cron", Timeline{Commands: []TimelineEntry{{Topic: telemetry.SimulationCommand}}}},
		{"both time and cron", Timeline{Commands: []TimelineEntry{{AtMinute: minute(1), Cron: "* * * * *", Topic: telemetry.SimulationCommand}}}},
		{"bad cron", Timeline{Commands: []TimelineEntry{{Cron: "every day", Topic: telemetry.SimulationCommand}}}},
		{"seconds field", Timeline{Commands: []TimelineEntry{{Cron: "0 0 8 * * 1", Topic: telemetry.SimulationCommand}}}},
		{"negative minute", Timeline{Commands: []TimelineEntry{{AtMinute: minute(-5), Topic: telemetry.SimulationCommand}}}},
		{"missing topic", Timeline{Commands: []TimelineEntry{{AtMinute: minute(1)}}}},
		{"foreign topic", Timeline{Commands: []TimelineEntry{{AtMinute: minute(1), Topic: "factory/inventory/parts"}}}},
		{"bad start date", Timeline{StartDate: "01/02/2024"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.tl.Validate(), factory.ErrConfiguration)
		})
	}
}

func TestLoadTimeline_FromYAML(t *testing.T) {
	path := writeFile(t, "commands.yaml", `
start_date: 2024-01-01
commands:
  - at_minute: 90
    topic: factory/command/strategy
    payload: {strategy: PREVENTIVE_MAINTENANCE, duration: 2}
  - cron: "30 6 * * *"
    topic: factory/command/simulation
    payload: pause
`)
	tl, err := LoadTimeline(path)
	require.NoError(t, err)

	got, err := tl.Expand(sim.Day)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(90), got[0].At)
	assert.JSONEq(t, `{"strategy": "PREVENTIVE_MAINTENANCE", "duration": 2}`, string(got[0].Payload))
	assert.Equal(t, 6*sim.Hour+30, got[1].At)
}

func TestLoadTimeline_RejectsUnknownFields(t *testing.T) {
	path := writeFile(t, "commands.yaml", `
commands:
  - at: 90
    topic: factory/command/simulation
`)
	_, err := LoadTimeline(path)
	assert.ErrorIs(t, err, factory.ErrConfiguration)
}

func TestScheduleCommands_FireOnThePlantClock(t *testing.T) {
	// GIVEN a plant and a timeline that activates a strategy at minute 60
	f := quietPlant(t)
	tl := &Timeline{Commands: []TimelineEntry{
		{AtMinute: minute(60), Topic: telemetry.StrategyCommand, Payload: map[string]any{"strategy": "KPI_MONITORING"}},
		{AtMinute: minute(90), Topic: telemetry.StrategyCommand, Payload: map[string]any{"strategy": 99}},
	}}
	cmds, err := tl.Expand(sim.Day)
	require.NoError(t, err)
	scheduleCommands(f, cmds)

	// WHEN the run passes minute 59 and then minute 60
	f.RunUntil(59)
	assert.False(t, f.Strategies().IsActive(factory.KPIMonitoring))
	f.RunUntil(120)

	// THEN the strategy is active from minute 60, and the bad entry was
	// logged without stopping the run
	st, ok := f.Strategies().State(factory.KPIMonitoring)
	require.True(t, ok)
	assert.Equal(t, int64(60), st.ActivatedAt)
	assert.Equal(t, int64(120), f.Now())
	assert.False(t, f.Stopped())
}

func TestScheduleCommands_StopEndsTheRun(t *testing.T) {
	f := quietPlant(t)
	scheduleCommands(f, []ScheduledCommand{{At: sim.Day, Topic: telemetry.SimulationCommand, Payload: []byte(`"stop"`)}})

	f.RunUntil(3 * sim.Day)

	assert.True(t, f.Stopped())
	assert.Equal(t, sim.Day, f.Now())
}
