package config

import "fmt"

// Validate checks the loaded configuration for values the CLI cannot
// work with.
func (c *Config) Validate() error {
	switch c.OutputFormat {
	case "text", "json":
	default:
		return fmt.Errorf("invalid output format %q (expected text or json)", c.OutputFormat)
	}

	if c.Workers < 0 {
		return fmt.Errorf("workers must be >= 0, got %d", c.Workers)
	}

	return nil
}
