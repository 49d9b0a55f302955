package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/factory-sim/factory-sim/sim"
	"github.com/factory-sim/factory-sim/sim/factory"
	"github.com/factory-sim/factory-sim/sim/telemetry"
)

// connectTimeout bounds how long startup waits for the telemetry sink.
const connectTimeout = 10 * time.Second

var rootCmd = &cobra.Command{
	Use:   "factory-sim",
	Short: "Discrete-event simulator for a disruption-prone manufacturing plant",
}

// runCmd executes one plant run and prints the summary
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the plant simulation",
	Run: func(cmd *cobra.Command, args []string) {
		settings, err := loadSettings(cmd)
		if err != nil {
			logrus.Fatalf("%v", err)
		}

		level, err := logrus.ParseLevel(settings.LogLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", settings.LogLevel)
		}
		logrus.SetLevel(level)

		cfg, err := loadPlantConfig(settings.ConfigPath)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		if settings.SeedSet {
			cfg.Seed = settings.Seed
		}

		sink, closeSink, err := newSink(settings.Telemetry)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		defer func() {
			if err := closeSink(); err != nil {
				logrus.Warnf("Closing telemetry sink: %v", err)
			}
		}()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		pub := telemetry.NewPublisher(sink, uuid.New(), settings.PublishInterval)
		connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
		err = pub.Connect(connectCtx)
		cancel()
		if err != nil {
			logrus.Fatalf("%v: telemetry sink unreachable: %v", factory.ErrConfiguration, err)
		}

		f, err := factory.New(cfg, pub)
		if err != nil {
			logrus.Fatalf("%v", err)
		}

		horizon := int64(settings.Days) * sim.Day
		if settings.CommandsPath != "" {
			tl, err := LoadTimeline(settings.CommandsPath)
			if err != nil {
				logrus.Fatalf("%v", err)
			}
			cmds, err := tl.Expand(horizon)
			if err != nil {
				logrus.Fatalf("%v", err)
			}
			scheduleCommands(f, cmds)
		}

		logrus.Infof("Starting plant simulation: run %s, seed %d, %d days", pub.RunID(), cfg.Seed, settings.Days)
		startTime := time.Now()
		if settings.Pace > 0 {
			var console <-chan consoleCommand
			if settings.Interactive {
				console = readConsole(ctx, os.Stdin)
			}
			runPaced(ctx, f, horizon, settings.Pace, paceTick, console)
		} else {
			f.RunUntil(horizon)
		}

		if err := printSummary(os.Stdout, Summarize(f)); err != nil {
			logrus.Errorf("%v", err)
		}
		logrus.Infof("Simulation complete in %s.", time.Since(startTime).Round(time.Millisecond))
	},
}

// strategiesCmd lists the strategy catalog
var strategiesCmd = &cobra.Command{
	Use:   "strategies",
	Short: "List the adaptation strategies and their costs",
	Run: func(cmd *cobra.Command, args []string) {
		if err := listStrategies(cmd.OutOrStdout()); err != nil {
			logrus.Fatalf("%v", err)
		}
	},
}

func listStrategies(out io.Writer) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "INDEX\tNAME\tKIND\tCOST\tWEEKLY\tDAYS\tTITLE")
	for _, s := range factory.AllStrategies() {
		info := s.Info()
		kind, days := "persistent", fmt.Sprintf("%g", float64(info.DefaultDuration)/float64(sim.Day))
		if info.OneShot {
			kind, days = "one-shot", "-"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t$%.0f\t$%.0f\t%s\t%s\n",
			int(s), info.Name, kind, info.ImplementationCost, info.WeeklyCost, days, info.Title)
	}
	return w.Flush()
}

// newSink maps --telemetry to a sink: "none", "log", or a JSON-lines file path.
func newSink(target string) (telemetry.Sink, func() error, error) {
	noop := func() error { return nil }
	switch target {
	case "", "none":
		return telemetry.Discard, noop, nil
	case "log":
		return telemetry.LogSink{}, noop, nil
	}
	fs := &telemetry.FileSink{Path: target}
	return fs, fs.Close, nil
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// addRunFlags registers the run flags on c.
func addRunFlags(c *cobra.Command) {
	c.Flags().Int64("seed", 42, "Seed for every random stream in the run (overrides the plant file)")
	c.Flags().Int("days", 30, "Simulated days to run")
	c.Flags().String("log", "info", "Log level (trace, debug, info, warn, error, fatal, panic)")

	// Inputs
	c.Flags().String("config", "", "Plant parameters YAML; unset keys keep their defaults")
	c.Flags().String("commands", "", "Command timeline YAML (at_minute or cron entries)")

	// Telemetry
	c.Flags().String("telemetry", "none", "Telemetry sink: none, log, or a JSON-lines file path")
	c.Flags().Duration("publish-interval", time.Second, "Minimum wall-clock gap between publishes on one topic")

	// Pacing
	c.Flags().Float64("pace", 0, "Simulated minutes per wall-clock second; 0 runs as fast as possible")
	c.Flags().Bool("interactive", false, "With --pace, read commands from stdin (\"pause\", or \"<topic> <json>\")")
}

// init sets up CLI flags and subcommands
func init() {
	addRunFlags(runCmd)

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(strategiesCmd)
}
