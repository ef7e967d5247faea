package main

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/yigit/schoolchat/internal/pkg/logger"
	"github.com/yigit/schoolchat/internal/server"
)

// @title SchoolChat Realtime API
// @version 1.0
// @description Realtime messaging and presence for school participants
// @BasePath /api/v1
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT token for authorization

func main() {
	flagSet := pflag.NewFlagSet("schoolchat-api", pflag.ExitOnError)
	configPath := flagSet.String("config", filepath.Join("configs", "config.yaml"), "path to the YAML config file")
	envFile := flagSet.String("env-file", ".env", "optional dotenv file loaded before the config")
	_ = flagSet.Parse(os.Args[1:])

	if err := godotenv.Load(*envFile); err != nil {
		logger.Warn().Str("path", *envFile).Msg("No env file loaded, using process environment")
	}

	srv, err := server.NewServer(*configPath)
	if err != nil {
		// Error details are logged within NewServer's setup functions
		logger.Error().Err(err).Msg("Failed to initialize server")
		os.Exit(1)
	}

	// Run the server (this blocks until shutdown signal)
	if err := srv.Run(); err != nil {
		logger.Error().Err(err).Msg("Server execution failed or shutdown encountered errors")
		os.Exit(1)
	}

	logger.Info().Msg("Application finished gracefully.")
}
