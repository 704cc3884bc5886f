// Package config holds the CLI-facing configuration for the archive
// inspector, bound from flags, environment, and an optional TOML file via
// viper (see main.go).
package config

// Config holds app configuration.
type Config struct {
	// InputFile is the path to the movie archive to open.
	InputFile string `mapstructure:"input"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `mapstructure:"log_level"`

	// LogOutputDir, if set, causes logs to be written to both stdout and
	// a timestamped file in that directory.
	LogOutputDir string `mapstructure:"log_output_dir"`
}
