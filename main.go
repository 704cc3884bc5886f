package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/rgaskell/rayvault/internal/archive"
	"github.com/rgaskell/rayvault/internal/config"
	"github.com/rgaskell/rayvault/internal/logging"
)

var (
	cfgFile string
	cfg     *config.Config
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "rayvault",
	Short: "Open a Director/Shockwave movie archive and list its casts",
	RunE:  inspect,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to config file")

	rootCmd.Flags().StringP("input", "i", "", "path to the movie archive to open (required)")
	rootCmd.MarkFlagRequired("input")

	rootCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.Flags().String("log-output-dir", "", "directory to write log files (if set, logs are written to both stdout and file)")

	viper.BindPFlag("input", rootCmd.Flags().Lookup("input"))
	viper.BindPFlag("log_level", rootCmd.Flags().Lookup("log-level"))
	viper.BindPFlag("log_output_dir", rootCmd.Flags().Lookup("log-output-dir"))
}

// initConfig reads in config file and environment variables if set
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "rayvault"))
		}
		viper.AddConfigPath("/etc/rayvault")
		viper.SetConfigName("config")
		viper.SetConfigType("toml")
	}

	viper.SetEnvPrefix("RAYVAULT")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// inspect opens the movie archive named by --input and prints a summary
// of its casts.
func inspect(cmd *cobra.Command, args []string) error {
	cfg = &config.Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	if err := logging.Setup(cfg.LogLevel, cfg.LogOutputDir); err != nil {
		return fmt.Errorf("could not set up logging: %w", err)
	}

	slog.Info("opening archive", "input", cfg.InputFile)

	file, err := os.Open(cfg.InputFile)
	if err != nil {
		return fmt.Errorf("failed to open archive: %w", err)
	}
	defer file.Close()

	a, err := archive.Open(file, slog.Default())
	if err != nil {
		slog.Error(fmt.Sprintf("error opening %s", cfg.InputFile), "error", err)
		return nil
	}

	fmt.Printf("codec: %s  afterburned: %v  version: %d\n", a.Codec(), a.Afterburned(), a.Version())
	for _, cast := range a.Casts() {
		fmt.Printf("cast %q (id=%d): %d member slots\n", cast.Name, cast.ID, len(cast.MemberIDs))
	}

	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
