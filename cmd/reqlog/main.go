package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/glimte/reqlog-go"
	"github.com/glimte/reqlog-go/config"
)

var (
	// Version information
	version   = "dev"
	buildTime = "unknown"
	gitCommit = "unknown"
)

// app holds state shared by the subcommands
type app struct {
	configPath string
	maskFields []string
	logLevel   string
	logFormat  string

	cfg    *config.Config
	client *reqlog.Client
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "reqlog",
		Short: "Request and response logging for HTTP and message handlers",
		Long: `reqlog logs every HTTP request and every consumed message before and after
it is handled, with sensitive fields masked.`,
		Version:      fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildTime),
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load(cmd)
		},
	}

	// Global flags
	rootCmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().StringArrayVarP(&a.maskFields, "mask", "m", nil, "Field selector to mask (repeatable)")
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&a.logFormat, "log-format", "", "Log format (json, text)")

	rootCmd.AddCommand(
		newServeCmd(a),
		newMaskCmd(a),
		newConsumeCmd(a),
	)

	return rootCmd
}

// load reads the configuration with explicitly set flags taking precedence
func (a *app) load(cmd *cobra.Command) error {
	overrides := make(map[string]any)
	flags := cmd.Flags()
	if flags.Changed("mask") {
		overrides["masking.fields"] = a.maskFields
	}
	if flags.Changed("log-level") {
		overrides["logging.level"] = a.logLevel
	}
	if flags.Changed("log-format") {
		overrides["logging.format"] = a.logFormat
	}

	cfg, err := config.NewLoader(
		config.WithConfigFile(a.configPath),
		config.WithOverrides(overrides),
	).Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := reqlog.NewLogger(cfg.Logging, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	client, err := reqlog.NewClient(*cfg, reqlog.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}

	a.cfg = cfg
	a.client = client
	return nil
}
