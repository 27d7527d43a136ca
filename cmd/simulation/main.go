package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"maneuver-sim/internal/config"
	"maneuver-sim/internal/logging"
	"maneuver-sim/internal/scenario"
	"maneuver-sim/internal/simulation"

	"github.com/spf13/pflag"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "simulation: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	fs := config.Flags("simulation")
	fs.SetOutput(stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, err := config.Load(fs)
	if err != nil {
		return err
	}

	logFile, err := logging.OpenFile(cfg.LogFile)
	if err != nil {
		return err
	}
	var extra io.Writer
	if logFile != nil {
		defer logFile.Close()
		extra = logFile
	}
	logger := logging.New(stderr, extra, cfg.LogLevel)

	ctx := context.Background()
	provider, reader := setupMetrics()
	defer provider.Shutdown(ctx)

	descs, err := scenario.Load(cfg.Scenario)
	if err != nil {
		return err
	}

	// Every configured agent is built as the special variant unless it says otherwise.
	factory := scenario.Factory{
		DefaultVariant: scenario.VariantSpecial,
		Rand:           scenario.NewRand(cfg.Seed),
	}
	manager := simulation.NewManager(simulation.WithLogger(logger))
	agents, err := factory.Register(manager, descs)
	if err != nil {
		return fmt.Errorf("registering agents: %w", err)
	}

	logger.Info("simulation starting",
		"scenario", cfg.Scenario, "agents", len(agents),
		"timeStep", cfg.TimeStep, "duration", cfg.Duration)

	for simTime := 0.0; simTime < cfg.Duration; simTime += cfg.TimeStep {
		report := manager.Svc(cfg.TimeStep)
		printState(stdout, simTime, agents)
		logTick(logger, report)
	}

	logger.Info("simulation finished", "ticks", manager.Ticks(), "time", manager.Time())
	logMetrics(ctx, logger, reader)
	return nil
}

func printState(w io.Writer, simTime float64, agents []simulation.Agent) {
	fmt.Fprintln(w, "----")
	for _, a := range agents {
		fmt.Fprintf(w, "Time: %g, %s\n", simTime, a)
	}
}

func logTick(logger *slog.Logger, report simulation.TickReport) {
	s := report.Summary()
	logger.Debug("tick",
		"tick", report.Tick,
		"pairs", s.Pairs,
		"detections", s.Detections,
		"meanDistance", s.MeanDistance,
		"stdDevDistance", s.StdDevDistance)
}
