package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"resume-builder/internal/bootstrap"
	"resume-builder/internal/shared/config"
	"resume-builder/internal/shared/telemetry"
)

var version = "dev"

// newClient is swapped in tests.
var newClient = bootstrap.NewLLMClient

type rootOptions struct {
	cfgPath string
	envFile string
	debug   bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "resumectl",
		Short:         "AI resume builder",
		Long:          "resumectl builds a resume prompt from your details, asks the configured model to write the resume and saves it as PDF and Word files.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&opts.cfgPath, "config", "c", "", "path to YAML config file (default: CONFIG_FILE env var)")
	root.PersistentFlags().StringVar(&opts.envFile, "env-file", "", "load KEY=VALUE pairs from this file before reading config")
	root.PersistentFlags().BoolVar(&opts.debug, "debug", false, "enable debug logging")

	root.AddCommand(
		newPromptCmd(),
		newGenerateCmd(opts),
		newInspectCmd(opts),
		newVersionCmd(),
	)
	return root
}

// loadConfig resolves configuration.
// Priority: environment > --config file > CONFIG_FILE file > defaults.
func (o *rootOptions) loadConfig() (config.Config, error) {
	if o.envFile != "" {
		if err := config.LoadEnvFile(o.envFile); err != nil {
			return config.Config{}, fmt.Errorf("load env file: %w", err)
		}
	}
	path := o.cfgPath
	if path == "" {
		path = os.Getenv("CONFIG_FILE")
	}
	cfg := config.LoadFrom(path)

	level := cfg.LogLevel
	if o.debug {
		level = "debug"
	}
	telemetry.Configure(os.Stderr, level, "pretty")
	return cfg, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version info",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "resumectl %s\n", version)
		},
	}
}
