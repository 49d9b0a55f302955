package cmd

import (
	"bufio"
	"context"
	"io"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/factory-sim/factory-sim/sim/factory"
	"github.com/factory-sim/factory-sim/sim/telemetry"
)

// paceTick is how often the paced driver advances the plant.
const paceTick = 100 * time.Millisecond

// consoleCommand is one command read from the console.
type consoleCommand struct {
	Topic   string
	Payload []byte
}

// parseConsoleLine reads "<topic> <json>" or a bare simulation action such as
// "pause". Blank lines and lines starting with # are skipped.
func parseConsoleLine(line string) (consoleCommand, bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return consoleCommand{}, false
	}
	topic, payload, found := strings.Cut(line, " ")
	if !strings.HasPrefix(topic, telemetry.CommandPrefix) {
		return consoleCommand{Topic: telemetry.SimulationCommand, Payload: []byte(line)}, true
	}
	if !found {
		payload = "{}"
	}
	return consoleCommand{Topic: topic, Payload: []byte(strings.TrimSpace(payload))}, true
}

// readConsole forwards parsed lines from r until EOF or ctx is done. The
// channel is closed when reading stops.
func readConsole(ctx context.Context, r io.Reader) <-chan consoleCommand {
	out := make(chan consoleCommand)
	go func() {
		defer close(out)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			c, ok := parseConsoleLine(scanner.Text())
			if !ok {
				continue
			}
			select {
			case out <- c:
			case <-ctx.Done():
				return
			}
		}
		if err := scanner.Err(); err != nil {
			logrus.Warnf("Console input stopped: %v", err)
		}
	}()
	return out
}

// runPaced advances the plant by pace simulated minutes per wall-clock second
// until the horizon, a stop command, or ctx cancellation. Console commands are
// applied on this goroutine between steps; the plant is never touched from
// another goroutine. A paused plant keeps accepting commands but does not
// advance.
func runPaced(ctx context.Context, f *factory.Factory, until int64, pace float64, tick time.Duration, cmds <-chan consoleCommand) {
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	step := pace * tick.Seconds()
	var carry float64
	f.Start()
	for f.Now() < until && !f.Stopped() {
		select {
		case <-ctx.Done():
			logrus.Warnf("Interrupted at minute %d", f.Now())
			return
		case c, ok := <-cmds:
			if !ok {
				cmds = nil
				continue
			}
			_ = f.HandleCommand(c.Topic, c.Payload)
		case <-ticker.C:
			if f.Paused() {
				continue
			}
			carry += step
			advance := int64(carry)
			carry -= float64(advance)
			f.RunUntil(min(f.Now()+advance, until))
		}
	}
}
