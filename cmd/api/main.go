package main

import (
	"os"

	"github.com/yigit/ssis/internal/pkg/logger"
	"github.com/yigit/ssis/internal/server"
)

// @title SSIS Registry API
// @version 1.0
// @description Records API for colleges, programs and students

// @host localhost:8080
// @BasePath /api/v1
// @schemes http

func main() {
	// CONFIG_PATH overrides configs/config.yaml
	srv, err := server.NewServer(os.Getenv("CONFIG_PATH"))
	if err != nil {
		logger.Error().Err(err).Msg("Failed to initialize server")
		os.Exit(1)
	}

	if err := srv.Run(); err != nil {
		logger.Error().Err(err).Msg("Server execution failed or shutdown encountered errors")
		os.Exit(1)
	}

	logger.Info().Msg("Application finished gracefully.")
}
