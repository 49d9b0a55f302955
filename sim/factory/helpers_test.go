package factory

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// quietConfig is the default plant with every random disruption switched
// off, so tests decide what goes wrong and when.
func quietConfig() Config {
	cfg := DefaultConfig()
	cfg.Disruptions = DisruptionConfig{}
	return cfg
}

func newTestFactory(t *testing.T, mutate ...func(*Config)) *Factory {
	t.Helper()
	cfg := quietConfig()
	for _, m := range mutate {
		m(&cfg)
	}
	f, err := New(cfg, nil)
	require.NoError(t, err)
	return f
}

// assertInvariants checks pool ceilings and ledger signs.
func assertInvariants(t *testing.T, f *Factory) {
	t.Helper()
	cnc, assembly, qc, workers := f.Pools()
	for _, p := range []interface {
		Name() string
		InUse() int
		Capacity() int
	}{cnc, assembly, qc, workers} {
		require.GreaterOrEqual(t, p.InUse(), 0, "pool %s", p.Name())
	}
	for _, item := range []Item{RawMaterials, Parts, FinishedProducts, Backlog} {
		require.GreaterOrEqual(t, f.Ledger().Get(item), 0, "ledger %s", item)
	}
	s := f.State()
	require.LessOrEqual(t, s.OperationalCNC, s.TotalCNC)
	require.LessOrEqual(t, s.AvailableWorkers, s.TotalWorkers)
	require.Equal(t, s.OperationalCNC, cnc.Capacity())
	require.Equal(t, s.AvailableWorkers, workers.Capacity())
}

// hasLog reports whether any plant log entry matches level and component.
func hasLog(f *Factory, level LogLevel, component string) bool {
	for _, e := range f.Logs() {
		if e.Level == level && e.Component == component {
			return true
		}
	}
	return false
}
