package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/factory-sim/factory-sim/sim/factory"
)

// envPrefix namespaces environment overrides, e.g. FACTORY_SEED=7.
const envPrefix = "FACTORY"

// runSettings are the run-level knobs. Each one can come from a flag, a
// FACTORY_* environment variable, or a .env file, in that order of precedence.
type runSettings struct {
	Seed            int64
	SeedSet         bool // seed given explicitly; overrides the plant file
	Days            int
	LogLevel        string
	ConfigPath      string
	CommandsPath    string
	Telemetry       string
	PublishInterval time.Duration
	Pace            float64 // simulated minutes per wall-clock second; 0 runs flat out
	Interactive     bool
}

// loadSettings merges the command's flags with the environment.
// A missing .env file is not an error.
func loadSettings(cmd *cobra.Command) (runSettings, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return runSettings{}, fmt.Errorf("binding flags: %w", err)
	}

	s := runSettings{
		Seed:            v.GetInt64("seed"),
		SeedSet:         v.IsSet("seed"),
		Days:            v.GetInt("days"),
		LogLevel:        v.GetString("log"),
		ConfigPath:      v.GetString("config"),
		CommandsPath:    v.GetString("commands"),
		Telemetry:       v.GetString("telemetry"),
		PublishInterval: v.GetDuration("publish-interval"),
		Pace:            v.GetFloat64("pace"),
		Interactive:     v.GetBool("interactive"),
	}
	if s.Days <= 0 {
		return s, fmt.Errorf("%w: --days must be positive, got %d", factory.ErrConfiguration, s.Days)
	}
	if s.Pace < 0 {
		return s, fmt.Errorf("%w: --pace must not be negative, got %g", factory.ErrConfiguration, s.Pace)
	}
	return s, nil
}

// loadPlantConfig returns the default plant overlaid with the YAML file at
// path. Unknown keys are rejected so typos do not silently fall back to
// defaults. An empty path selects the defaults alone.
func loadPlantConfig(path string) (factory.Config, error) {
	cfg := factory.DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("%w: reading plant file: %v", factory.ErrConfiguration, err)
	}
	if err := decodeStrict(data, &cfg); err != nil {
		return cfg, fmt.Errorf("%w: parsing plant file %s: %v", factory.ErrConfiguration, path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("plant file %s: %w", path, err)
	}
	return cfg, nil
}

// decodeStrict decodes YAML into out with KnownFields(true). An empty
// document leaves out untouched.
func decodeStrict(data []byte, out any) error {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
