// Package cli holds the radiosky command tree.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"radiosky/pkg/config"
)

const defaultConfigPath = "radiosky.yaml"

// app carries state shared by the subcommands once the root has run.
type app struct {
	configPath string
	verbose    bool
	cfg        *config.Config
}

// NewRootCmd builds the radiosky command tree.
func NewRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:   "radiosky",
		Short: "Find and insert discrete sources in radio image cubes",
		Long: `radiosky extracts point components from radio image cubes by segmentation
and inserts components back into images with nearest-pixel or Lanczos
interpolation.

Settings come from a YAML file (--config, or RADIOSKY_CONFIG, which may be
set in a .env file).`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()
			return a.load(cmd)
		},
	}

	cmd.PersistentFlags().StringVar(&a.configPath, "config", "", "Path to the YAML configuration (default $RADIOSKY_CONFIG or "+defaultConfigPath+")")
	cmd.PersistentFlags().BoolVar(&a.verbose, "verbose", false, "Debug logging")

	cmd.AddCommand(newSimulateCmd(a))
	cmd.AddCommand(newFindCmd(a))
	cmd.AddCommand(newMatchCmd())
	cmd.AddCommand(newNearestCmd())
	cmd.AddCommand(newConfigCmd(a))

	return cmd
}

func (a *app) resolveConfigPath() string {
	if a.configPath != "" {
		return a.configPath
	}
	if env := os.Getenv(config.EnvConfigPath); env != "" {
		return env
	}
	return defaultConfigPath
}

func (a *app) load(cmd *cobra.Command) error {
	path := a.resolveConfigPath()
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return err
	}
	a.cfg = cfg

	level := slog.LevelInfo
	if a.verbose || cfg.Output.Verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
	slog.Debug("Loaded configuration", "path", path)
	return nil
}

func (a *app) requireConfig() (*config.Config, error) {
	if a.cfg == nil {
		return nil, fmt.Errorf("configuration not loaded")
	}
	return a.cfg, nil
}
