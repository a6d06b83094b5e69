package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	configPath string
	httpAddr   string
)

// Execute runs the CLI.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	envConfig := os.Getenv("CONFIG_PATH")
	if envConfig == "" {
		envConfig = "config/config.yaml"
	}

	cmd := &cobra.Command{
		Use:   "mcq-assessment",
		Short: "Timed MCQ assessment service",
	}

	cmd.PersistentFlags().StringVar(&configPath, "config", envConfig, "path to YAML config")
	cmd.PersistentFlags().StringVar(&httpAddr, "addr", "", "listen address (overrides config)")
	cmd.AddCommand(newServeCmd(&configPath, &httpAddr))
	cmd.AddCommand(newMigrateCmd(&configPath))
	return cmd
}
