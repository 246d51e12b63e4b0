// Package main provides the battlesim binary, which plays out an Elves-versus-Goblins cave
// battle and optionally searches for the smallest Elf attack power that loses no Elf.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/cavecombat/internal/config"
	"github.com/cory-johannsen/cavecombat/internal/observability"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	mapPath := flag.String("map", "", "path to a cave map file")
	scenarioPath := flag.String("scenario", "", "path to a scenario YAML file")
	boost := flag.Bool("boost", false, "also search for the minimal elf attack power with no elf casualty")
	renderMap := flag.Bool("render", false, "print the final battlefield")
	color := flag.Bool("color", false, "colour the rendered battlefield")
	copyReport := flag.Bool("clipboard", false, "copy the report to the system clipboard")
	flag.Parse()

	if (*mapPath == "") == (*scenarioPath == "") {
		fmt.Fprintln(os.Stderr, "battlesim: exactly one of -map or -scenario is required")
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	if *color {
		cfg.Render.Color = true
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	app, cleanup, err := InitializeApp(cfg, logger)
	if err != nil {
		logger.Fatal("initializing battlesim", zap.Error(err))
	}
	defer cleanup()

	err = app.Run(Job{
		MapPath:      *mapPath,
		ScenarioPath: *scenarioPath,
		Boost:        *boost,
		Render:       *renderMap,
		Clipboard:    *copyReport,
	})
	if err != nil {
		logger.Error("battle failed", zap.Error(err))
		cleanup()
		_ = logger.Sync()
		os.Exit(1)
	}

	logger.Info("battlesim finished", zap.Duration("elapsed", time.Since(start)))
}
