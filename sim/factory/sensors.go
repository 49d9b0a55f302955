package factory

import (
	"github.com/factory-sim/factory-sim/sim"
)

const (
	sensorInterval int64 = 10

	idleTemperature    = 20.0
	loadTemperature    = 40.0 // added at full utilization
	idleVibration      = 0.1
	loadVibration      = 1.5
	warningHeat        = 1.2
	warningVibration   = 2.0
	warningChanceRatio = 50.0 // signature chance = failure chance / ratio

	temperatureAlertAt = 65.0
	vibrationAlertAt   = 2.0
)

// Sensors tracks ambient conditions and per-machine temperature and
// vibration. Entry i describes CNC machine i; machines with index >=
// operational count are treated as powered down.
type Sensors struct {
	f *Factory

	Temperatures       []float64
	Vibrations         []float64
	AmbientTemperature float64
	AmbientHumidity    float64
}

func newSensors(f *Factory) *Sensors {
	s := &Sensors{f: f, AmbientTemperature: 22, AmbientHumidity: 45}
	for i := 0; i < f.state.TotalCNC; i++ {
		s.addMachine()
	}
	return s
}

func (s *Sensors) addMachine() {
	s.Temperatures = append(s.Temperatures, idleTemperature)
	s.Vibrations = append(s.Vibrations, idleVibration)
}

func (s *Sensors) removeMachine() {
	if n := len(s.Temperatures); n > 0 {
		s.Temperatures = s.Temperatures[:n-1]
		s.Vibrations = s.Vibrations[:n-1]
	}
}

// reset puts every machine back to near-idle readings after maintenance.
func (s *Sensors) reset() {
	rng := s.f.sensorRNG()
	for i := range s.Temperatures {
		s.Temperatures[i] = idleTemperature + sim.Uniform(rng, 0, 2)
		s.Vibrations[i] = idleVibration + sim.Uniform(rng, 0, 0.1)
	}
}

// update takes one reading. Sensors are dark during an outage.
func (s *Sensors) update() {
	f := s.f
	if f.state.PowerOutage {
		return
	}
	rng := f.sensorRNG()
	s.AmbientTemperature = clamp(s.AmbientTemperature+sim.Uniform(rng, -0.5, 0.5), 15, 30)
	s.AmbientHumidity = clamp(s.AmbientHumidity+sim.Uniform(rng, -1, 1), 30, 70)

	util := f.metrics.Utilization.CNC
	warnable := !f.strategies.IsActive(PreventiveMaintenance)
	for i := range s.Temperatures {
		if i >= f.state.OperationalCNC {
			if s.Temperatures[i] > s.AmbientTemperature {
				s.Temperatures[i] = max(s.AmbientTemperature, s.Temperatures[i]-sim.Uniform(rng, 0.5, 1.5))
			}
			s.Vibrations[i] = 0
			continue
		}
		heat, shake := 1.0, 1.0
		if i == 0 && warnable && rng.Float64() < f.params.CNCFailureChance()/warningChanceRatio {
			heat, shake = warningHeat, warningVibration
		}
		s.Temperatures[i] = (idleTemperature+util*loadTemperature)*heat + sim.Uniform(rng, -3, 3)
		s.Vibrations[i] = (idleVibration+util*loadVibration)*shake + sim.Uniform(rng, -0.1, 0.1)
	}
}

// TemperatureAlert reports whether any machine runs hotter than the alert level.
func (s *Sensors) TemperatureAlert() bool {
	for _, t := range s.Temperatures {
		if t > temperatureAlertAt {
			return true
		}
	}
	return false
}

// VibrationAlert reports whether any machine vibrates above the alert level.
func (s *Sensors) VibrationAlert() bool {
	for _, v := range s.Vibrations {
		if v > vibrationAlertAt {
			return true
		}
	}
	return false
}

func clamp(v, lo, hi float64) float64 {
	return max(lo, min(hi, v))
}
