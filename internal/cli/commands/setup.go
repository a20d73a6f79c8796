// Package commands implements the tdlineage subcommands.
package commands

import (
	"os"
	"strconv"

	"github.com/rezaim0/tdlineage/internal/cli/config"
)

// getConfig returns the current configuration. It uses the config loaded
// by the root command when available, otherwise falls back to environment
// variables with defaults so commands stay usable in isolation (tests,
// direct invocation).
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}

	workers := config.DefaultWorkers
	if v := os.Getenv("TDLINEAGE_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			workers = n
		}
	}

	output := os.Getenv("TDLINEAGE_OUTPUT")
	if output == "" {
		output = config.DefaultOutput
	}

	return &config.Config{
		ModelsDir:    getEnvOrDefault("TDLINEAGE_MODELS_DIR", config.DefaultModelsDir),
		OutputFormat: output,
		Workers:      workers,
		Verbose:      os.Getenv("TDLINEAGE_VERBOSE") == "true",
	}
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
