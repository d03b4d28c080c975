package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"goeda/internal"
	"goeda/internal/config"
	"goeda/internal/pipeline"

	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	// Load application configuration
	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logger := internal.NewLogger(appConfig.LogLevel)

	registry, err := pipeline.RegistryFromFile(appConfig.Profiles.File)
	if err != nil {
		log.Fatalf("Failed to load profiles: %v", err)
	}
	profiles, err := registry.Select(appConfig.Profiles.Names)
	if err != nil {
		log.Fatalf("Failed to select profiles: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runner := pipeline.NewRunner(pipeline.OptionsFromConfig(appConfig), logger)
	results, err := runner.RunAll(ctx, profiles)
	for _, res := range results {
		logger.Info("Profile %s: %d/%d stages succeeded, output in %s",
			res.Profile, res.Stages.Overall.Successful, res.Stages.Overall.TotalStages, res.OutputDir)
	}
	if err != nil {
		logger.Error("%v", err)
		stop()
		os.Exit(1)
	}
}
