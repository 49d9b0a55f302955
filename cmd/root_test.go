package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/factory-sim/factory-sim/sim"
	"github.com/factory-sim/factory-sim/sim/factory"
	"github.com/factory-sim/factory-sim/sim/telemetry"
)

func TestListStrategies_PrintsWholeCatalog(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, listStrategies(&buf))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1+len(factory.AllStrategies()))
	assert.Contains(t, lines[1], "PREVENTIVE_MAINTENANCE")
	assert.Contains(t, lines[1], "persistent")
	assert.Contains(t, lines[1], "$25000")
	assert.Contains(t, buf.String(), "SCHEDULE_OVERTIME")
	assert.Contains(t, buf.String(), "one-shot")
}

func TestNewSink(t *testing.T) {
	sink, closeSink, err := newSink("none")
	require.NoError(t, err)
	assert.Equal(t, telemetry.Discard, sink)
	assert.NoError(t, closeSink())

	sink, _, err = newSink("log")
	require.NoError(t, err)
	assert.IsType(t, telemetry.LogSink{}, sink)

	path := filepath.Join(t.TempDir(), "telemetry.jsonl")
	sink, closeSink, err = newSink(path)
	require.NoError(t, err)
	fs, ok := sink.(*telemetry.FileSink)
	require.True(t, ok)
	assert.Equal(t, path, fs.Path)
	assert.NoError(t, closeSink(), "closing an unconnected file sink is a no-op")
}

func TestNewSink_UnreachableFileFailsConnect(t *testing.T) {
	sink, _, err := newSink(filepath.Join(t.TempDir(), "missing", "dir", "out.jsonl"))
	require.NoError(t, err)

	pub := telemetry.NewPublisher(sink, uuid.Nil, 0)
	assert.Error(t, pub.Connect(context.Background()))
}

func TestPrintSummary_AfterRun(t *testing.T) {
	// GIVEN a plant run for two days
	f := quietPlant(t)
	f.Strategies().Activate(factory.KPIMonitoring, 0)
	f.Run(2)

	// WHEN the summary is printed
	var buf bytes.Buffer
	require.NoError(t, printSummary(&buf, Summarize(f)))

	// THEN it carries the header and a JSON body that agrees with the plant
	out := buf.String()
	require.True(t, strings.HasPrefix(out, "=== Simulation Metrics ===\n"))
	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(out, "=== Simulation Metrics ===\n")), &got))
	assert.Equal(t, float64(2), got["simulated_days"])
	assert.Equal(t, float64(f.Ledger().TotalOrders()), got["total_orders"])
	assert.Equal(t, []any{"KPI_MONITORING"}, got["active_strategies"])
	assert.Equal(t, "KPI_MONITORING", got["most_used_strategy"])
	series, ok := got["series"].(map[string]any)
	require.True(t, ok)
	assert.Len(t, series, len(summarySeries))
	assert.Contains(t, series, "oee")
}

func TestParseConsoleLine(t *testing.T) {
	tests := []struct {
		line    string
		want    consoleCommand
		skipped bool
	}{
		{line: "pause", want: consoleCommand{Topic: telemetry.SimulationCommand, Payload: []byte("pause")}},
		{line: `factory/command/strategy {"strategy": 3}`, want: consoleCommand{Topic: telemetry.StrategyCommand, Payload: []byte(`{"strategy": 3}`)}},
		{line: "factory/command/OUTSOURCING", want: consoleCommand{Topic: "factory/command/OUTSOURCING", Payload: []byte("{}")}},
		{line: "   ", skipped: true},
		{line: "# comment", skipped: true},
	}
	for _, tt := range tests {
		got, ok := parseConsoleLine(tt.line)
		if tt.skipped {
			assert.False(t, ok, tt.line)
			continue
		}
		require.True(t, ok, tt.line)
		assert.Equal(t, tt.want, got, tt.line)
	}
}

func TestRunPaced_ReachesHorizon(t *testing.T) {
	f := quietPlant(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// 1ms ticks at 600k minutes per second advance 600 minutes per tick
	runPaced(ctx, f, sim.Day, 600000, time.Millisecond, nil)

	assert.Equal(t, sim.Day, f.Now())
	assert.NoError(t, ctx.Err())
}

func TestRunPaced_PauseHoldsTheClock(t *testing.T) {
	f := quietPlant(t)
	cmds := make(chan consoleCommand, 1)
	cmds <- consoleCommand{Topic: telemetry.SimulationCommand, Payload: []byte("pause")}
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	runPaced(ctx, f, sim.Day, 600000, 5*time.Millisecond, cmds)

	assert.True(t, f.Paused())
	assert.Zero(t, f.Now())
}

func TestRunPaced_StopEndsEarly(t *testing.T) {
	f := quietPlant(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	cmds := readConsole(ctx, strings.NewReader("pause\nstop\n"))
	runPaced(ctx, f, sim.Week, 60, 5*time.Millisecond, cmds)

	assert.True(t, f.Stopped())
	assert.Less(t, f.Now(), sim.Week)
	assert.NoError(t, ctx.Err())
}
