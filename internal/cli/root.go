// Package cli implements the memory-authenticity CLI commands.
package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rcliao/memory-authenticity/internal/config"
	"github.com/rcliao/memory-authenticity/internal/logging"
	"github.com/rcliao/memory-authenticity/internal/patterns"
	"github.com/rcliao/memory-authenticity/internal/scorer"
	"github.com/rcliao/memory-authenticity/internal/store"
)

var (
	dbPath       string
	configPath   string
	patternsPath string
	logLevel     string
	formatFlag   string
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "memory-authenticity",
	Short: "Score memory fragments for lived-experience authenticity",
	Long: "Scores text fragments for how likely they record lived experience rather than synthetic filler. " +
		"Heuristic, explainable, SQLite-backed, single binary.",
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Database path (default: $MEMORY_AUTH_DB or ~/.memory-authenticity/memory.db)")
	RootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: $MEMORY_AUTH_CONFIG or ~/.memory-authenticity/config.yaml)")
	RootCmd.PersistentFlags().StringVarP(&patternsPath, "patterns", "p", "", "Pattern file (default: built-in patterns)")
	RootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
	RootCmd.PersistentFlags().StringVarP(&formatFlag, "format", "f", "json", "Output format: json or text")
}

// loadConfig reads the config file and applies flag overrides.
func loadConfig() *config.Config {
	cfg, err := config.Load(configPath)
	if err != nil {
		exitErr("load config", err)
	}
	if dbPath != "" {
		cfg.DBPath = dbPath
	}
	if patternsPath != "" {
		cfg.PatternsPath = patternsPath
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	return cfg
}

func getDBPath() string {
	return loadConfig().DBPath
}

func openStore() (*store.SQLiteStore, error) {
	return store.NewSQLiteStore(getDBPath())
}

// newScorer builds a scorer from the configured patterns and tunables.
func newScorer(cfg *config.Config) (*scorer.Scorer, error) {
	ps, err := patterns.Load(cfg.PatternsPath)
	if err != nil {
		return nil, err
	}
	return scorer.New(ps, cfg.Scoring)
}

func newLogger(cfg *config.Config) *zap.Logger {
	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		exitErr("logger", err)
	}
	return logger
}

func textFormat() bool {
	return formatFlag == "text"
}

func printJSON(cmd *cobra.Command, v any) {
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Fprintln(cmd.OutOrStdout(), string(b))
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
