package sim

import (
	"math"
	"math/rand"
	"testing"
)

func TestSimulationKey_Creation(t *testing.T) {
	tests := []struct {
		name string
		seed int64
	}{
		{"positive seed", 42},
		{"zero seed", 0},
		{"negative seed", -1},
		{"max int64", math.MaxInt64},
		{"min int64", math.MinInt64},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := NewSimulationKey(tt.seed)
			if int64(key) != tt.seed {
				t.Errorf("NewSimulationKey(%d) = %d, want %d", tt.seed, key, tt.seed)
			}
		})
	}
}

func TestPartitionedRNG_DeterministicDerivation(t *testing.T) {
	// GIVEN two RNGs built from the same key
	rng1 := NewPartitionedRNG(NewSimulationKey(42))
	rng2 := NewPartitionedRNG(NewSimulationKey(42))

	// WHEN three values are drawn from the disruption stream of each
	// THEN the sequences are identical
	for i := 0; i < 3; i++ {
		a := rng1.ForSubsystem(SubsystemDisruptions).Float64()
		b := rng2.ForSubsystem(SubsystemDisruptions).Float64()
		if a != b {
			t.Errorf("value %d: got %v and %v, want identical", i, a, b)
		}
	}
}

func TestPartitionedRNG_SubsystemIsolation(t *testing.T) {
	// GIVEN one RNG that draws heavily from the quality stream
	rngA := NewPartitionedRNG(NewSimulationKey(42))
	for i := 0; i < 10; i++ {
		rngA.ForSubsystem(SubsystemQuality).Float64()
	}

	// WHEN its disruption stream is first used
	got := rngA.ForSubsystem(SubsystemDisruptions).Float64()

	// THEN it matches a fresh RNG's first disruption draw
	want := NewPartitionedRNG(NewSimulationKey(42)).ForSubsystem(SubsystemDisruptions).Float64()
	if got != want {
		t.Errorf("disruption first value = %v, want %v (isolation broken)", got, want)
	}
}

func TestPartitionedRNG_OrdersUsesMasterSeed(t *testing.T) {
	seed := int64(42)
	orders := NewPartitionedRNG(NewSimulationKey(seed)).ForSubsystem(SubsystemOrders)
	direct := rand.New(rand.NewSource(seed))

	for i := 0; i < 10; i++ {
		if got, want := orders.Float64(), direct.Float64(); got != want {
			t.Errorf("value %d: orders RNG = %v, direct RNG = %v", i, got, want)
		}
	}
}

func TestPartitionedRNG_StreamsDiffer(t *testing.T) {
	rng := NewPartitionedRNG(NewSimulationKey(7))
	seen := make(map[float64]string)
	for _, name := range []string{SubsystemOrders, SubsystemDisruptions, SubsystemQuality, SubsystemSensors} {
		v := rng.ForSubsystem(name).Float64()
		if prev, ok := seen[v]; ok {
			t.Errorf("%s and %s produced the same first value %v", name, prev, v)
		}
		seen[v] = name
	}
}

func TestPartitionedRNG_CachesInstance(t *testing.T) {
	rng := NewPartitionedRNG(NewSimulationKey(42))
	if rng.ForSubsystem(SubsystemSensors) != rng.ForSubsystem(SubsystemSensors) {
		t.Error("ForSubsystem returned different instances for same name")
	}
	if len(rng.subsystems) != 1 {
		t.Errorf("have %d cached subsystems, want 1", len(rng.subsystems))
	}
}

func TestPartitionedRNG_Key(t *testing.T) {
	rng := NewPartitionedRNG(NewSimulationKey(12345))
	if rng.Key() != SimulationKey(12345) {
		t.Errorf("Key() = %v, want 12345", rng.Key())
	}
}

func TestUniform_Bounds(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 1000; i++ {
		v := Uniform(rng, 0.6, 1.4)
		if v < 0.6 || v >= 1.4 {
			t.Fatalf("Uniform(0.6, 1.4) = %v, out of range", v)
		}
	}
}

func TestIntBetween_Inclusive(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	seen := make(map[int]bool)
	for i := 0; i < 1000; i++ {
		v := IntBetween(rng, 1, 3)
		if v < 1 || v > 3 {
			t.Fatalf("IntBetween(1, 3) = %d, out of range", v)
		}
		seen[v] = true
	}
	for _, want := range []int{1, 2, 3} {
		if !seen[want] {
			t.Errorf("IntBetween(1, 3) never returned %d", want)
		}
	}
	if got := IntBetween(rng, 5, 5); got != 5 {
		t.Errorf("IntBetween(5, 5) = %d, want 5", got)
	}
}

func TestFnv1a64_Collision(t *testing.T) {
	names := []string{SubsystemOrders, SubsystemDisruptions, SubsystemQuality, SubsystemSensors, "audit-ids", ""}
	hashes := make(map[int64]string)
	for _, name := range names {
		h := fnv1a64(name)
		if existing, ok := hashes[h]; ok {
			t.Errorf("hash collision: %q and %q both hash to %d", name, existing, h)
		}
		hashes[h] = name
	}
}

func BenchmarkPartitionedRNG_ForSubsystem_CacheHit(b *testing.B) {
	rng := NewPartitionedRNG(NewSimulationKey(42))
	rng.ForSubsystem(SubsystemQuality)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		rng.ForSubsystem(SubsystemQuality)
	}
}
