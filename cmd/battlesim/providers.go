package main

import (
	"fmt"
	"io"
	"os"

	"github.com/atotto/clipboard"
	"go.uber.org/zap"

	"github.com/cory-johannsen/cavecombat/internal/config"
	"github.com/cory-johannsen/cavecombat/internal/scripting"
)

// ProvideScripts creates the Lua hook manager and loads cfg.Scripting.Dir when it is set.
//
// Postcondition: The cleanup func closes the VM.
func ProvideScripts(cfg config.Config, logger *zap.Logger) (*scripting.Manager, func(), error) {
	mgr := scripting.NewManager(logger)
	if cfg.Scripting.Dir != "" {
		if err := mgr.Load(cfg.Scripting.Dir, cfg.Scripting.InstructionLimit); err != nil {
			return nil, nil, fmt.Errorf("loading battle scripts: %w", err)
		}
	}
	return mgr, mgr.Close, nil
}

// ProvideOutput returns the report destination.
func ProvideOutput() io.Writer {
	return os.Stdout
}

// ProvideCopier returns the system clipboard writer.
func ProvideCopier() Copier {
	return clipboard.WriteAll
}
