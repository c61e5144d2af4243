package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rpupo63/company-rating-backend/config"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// cfg is filled in by the root command before any subcommand runs
var cfg config.Config

// rootCmd starts the HTTP server when no subcommand is given
var rootCmd = &cobra.Command{
	Use:   "company-ratings",
	Short: "Company rating and ranking backend",
	Long: `Imports company and stipend spreadsheets into a company store, serves the
records over HTTP for rating, and ranks companies by their aggregated score.`,
	PersistentPreRunE: setupCommand,
	RunE:              runServe,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

// Execute runs the CLI with the process arguments
func Execute() error {
	return rootCmd.ExecuteContext(context.Background())
}

func init() {
	rootCmd.PersistentFlags().String("env-file", ".env", "dotenv file loaded before reading the environment")
	rootCmd.PersistentFlags().String("log-level", "", "log level: trace, debug, info, warn, error (overrides LOG_LEVEL)")
}

func setupCommand(cmd *cobra.Command, _ []string) error {
	envFile, _ := cmd.Flags().GetString("env-file")
	if err := godotenv.Load(envFile); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Error loading %s file: %v\n", envFile, err)
	}

	env := config.New()
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		env["LOG_LEVEL"] = level
	}

	loaded, err := config.Load(env)
	if err != nil {
		return err
	}
	cfg = loaded

	setupLogging(cfg, os.Stderr)
	return nil
}

// setupLogging configures the global zerolog logger from the configuration
func setupLogging(cfg config.Config, w io.Writer) {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	if cfg.LogFormat == "console" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}
	log.Logger = zerolog.New(w).With().Timestamp().Logger()
}
