package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/ruminaider/toolkit/internal/config"
	"github.com/ruminaider/toolkit/internal/logging"
)

var version = "0.1.0"

var (
	cfgFile string
	cfg     config.Config
	logger  = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "toolkit",
	Short: "Choose which client profile toolkit acts on",
	Long: "toolkit keeps a registry of client profiles and one shared active profile. " +
		"Run without arguments to pick the active profile interactively.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		// Default behavior: interactive selection
		return selectCmd.RunE(cmd, args)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version",
	// No config needed.
	PersistentPreRun: func(cmd *cobra.Command, args []string) {},
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "toolkit %s\n", version)
	},
}

// setup loads configuration and opens the log file.
func setup() error {
	loaded, err := config.Load(viper.New(), cfgFile)
	if err != nil {
		return err
	}
	cfg = loaded

	l, err := logging.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return err
	}
	logger = l
	logger.Debug("config loaded",
		zap.String("dir", cfg.Dir),
		zap.String("registry", cfg.Registry),
		zap.String("active_file", cfg.ActiveProfileFile()),
		zap.String("mode", cfg.Mode),
	)
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ~/.toolkit/config.yaml)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(selectCmd)
	rootCmd.AddCommand(profileCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
