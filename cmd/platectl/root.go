package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"go-plate-inspector/internal/config"
	"go-plate-inspector/internal/logger"
)

var version = "1.0.0"

var rootCmd = &cobra.Command{
	Use:   "platectl",
	Short: "Number plate recognition from the command line",
	Long: `platectl runs the number plate pipeline without the HTTP server.

It reads the same environment variables and .env file as the API server
(CASCADE_PATH, ALLOWLIST_PATH, OCR_LANGUAGE, DETECT_* and so on).`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		envFile, _ := cmd.Flags().GetString("env-file")
		if err := config.LoadDotEnv(envFile); err != nil {
			return err
		}
		verbose, _ := cmd.Flags().GetBool("verbose")
		level := "warn"
		if verbose {
			level = "debug"
		}
		logger.Configure(level, "text")
		logger.SetOutput(cmd.ErrOrStderr())
		return nil
	},
}

// Execute runs the root command and exits non-zero on failure
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		logger.WithError(err).Debug("Command execution failed")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("env-file", ".env", "Environment file to load before reading configuration")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}
