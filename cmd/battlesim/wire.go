//go:build wireinject

package main

import (
	"github.com/google/wire"
	"go.uber.org/zap"

	"github.com/cory-johannsen/cavecombat/internal/config"
)

// InitializeApp assembles the App from the loaded configuration and logger.
func InitializeApp(cfg config.Config, logger *zap.Logger) (*App, func(), error) {
	wire.Build(
		ProvideScripts,
		ProvideOutput,
		ProvideCopier,
		NewApp,
	)
	return nil, nil, nil
}
