// Package config loads tdlineage configuration from file, environment
// variables, and CLI flags.
package config

// Config holds all CLI configuration options.
type Config struct {
	ModelsDir    string `koanf:"models_dir"`
	OutputFormat string `koanf:"output"`
	Workers      int    `koanf:"workers"`
	Verbose      bool   `koanf:"verbose"`
}

// Default configuration values.
const (
	DefaultModelsDir = "models"
	DefaultOutput    = "text"
	DefaultWorkers   = 0 // 0 = one worker per CPU
)
