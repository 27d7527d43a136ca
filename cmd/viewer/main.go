package main

import (
	"io"
	"log"
	"os"

	"maneuver-sim/internal/config"
	"maneuver-sim/internal/logging"
	"maneuver-sim/internal/scenario"
	"maneuver-sim/internal/simulation"
	"maneuver-sim/internal/visualization"

	"github.com/hajimehoshi/ebiten/v2"
)

func main() {
	fs := config.Flags("viewer")
	fs.Int("viewer.width", 1024, "window width")
	fs.Int("viewer.height", 768, "window height")
	fs.Int("viewer.tps", 2, "simulation ticks per second")
	if err := fs.Parse(os.Args[1:]); err != nil {
		log.Fatalf("Error parsing flags: %v", err)
	}
	cfg, err := config.Load(fs)
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}
	logFile, err := logging.OpenFile(cfg.LogFile)
	if err != nil {
		log.Fatalf("Error opening log file: %v", err)
	}
	var extra io.Writer
	if logFile != nil {
		defer logFile.Close()
		extra = logFile
	}
	logger := logging.New(os.Stderr, extra, cfg.LogLevel)

	descs, err := scenario.Load(cfg.Scenario)
	if err != nil {
		log.Fatalf("Error loading scenario: %v", err)
	}

	factory := scenario.Factory{
		DefaultVariant: scenario.VariantSpecial,
		Rand:           scenario.NewRand(cfg.Seed),
	}
	manager := simulation.NewManager(simulation.WithLogger(logger))
	if _, err := factory.Register(manager, descs); err != nil {
		log.Fatalf("Error registering agents: %v", err)
	}

	ebiten.SetWindowSize(cfg.Viewer.Width, cfg.Viewer.Height)
	ebiten.SetWindowTitle("Maneuver Simulation")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	if cfg.Viewer.TPS > 0 {
		ebiten.SetTPS(cfg.Viewer.TPS)
	}

	renderer := visualization.NewRenderer(manager, cfg.TimeStep, cfg.Duration)
	if err := ebiten.RunGame(renderer); err != nil {
		log.Fatal(err)
	}
}
