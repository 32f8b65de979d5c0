// Package root contains the root command for the application
package root

import (
	"context"
	"fmt"

	"fjacquet/statement-csv/internal/config"
	"fjacquet/statement-csv/internal/container"
	"fjacquet/statement-csv/internal/logging"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// CommonFlags represents the flags that are common to multiple commands
type CommonFlags struct {
	Input        string
	Output       string
	Rules        string
	Config       string
	Unclassified bool
}

var (
	// Log is the shared logger instance for commands
	Log = logrus.New()

	// AppConfig is the configuration loaded before any subcommand runs
	AppConfig *config.Config

	// AppContainer holds the wired dependencies of the running command
	AppContainer *container.Container

	// Cmd is the root command
	Cmd = &cobra.Command{
		Use:   "statement-csv",
		Short: "A CLI tool to convert bank statement exports to Skrooge CSV.",
		Long: `statement-csv converts bank statement exports (copied statement dumps,
CSV history exports and spreadsheets) into one Skrooge-importable CSV.
Payee, category, mode and comment are resolved from an ordered rule table.`,
		Run: func(cmd *cobra.Command, args []string) {
			Log.Info("Welcome to statement-csv!")
			Log.Info("Use --help to see available commands")
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return Setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if AppContainer == nil {
				return
			}
			if err := AppContainer.Close(); err != nil {
				Log.Warnf("Failed to release resources: %v", err)
			}
		},
	}

	// SharedFlags holds the values of the persistent flags
	SharedFlags = CommonFlags{}
)

// Init initializes the root command and all flags
func Init() {
	Cmd.PersistentFlags().StringVarP(&SharedFlags.Input, "input", "i", "", "Input file (or directory for batch)")
	Cmd.PersistentFlags().StringVarP(&SharedFlags.Output, "output", "o", "", "Output file (or directory for batch); stdout when empty")
	Cmd.PersistentFlags().StringVarP(&SharedFlags.Rules, "rules", "r", "", "Rule table file (default: rules.csv in the config locations)")
	Cmd.PersistentFlags().StringVar(&SharedFlags.Config, "config", "", "Config file (default: config.yaml in the config locations)")
	Cmd.PersistentFlags().BoolVar(&SharedFlags.Unclassified, "unclassified", false, "Only output records without mode or payee")
}

// Setup loads the configuration, applies flag overrides, configures
// logging and wires the container.
func Setup() error {
	if _, err := config.LoadEnv(); err != nil {
		Log.Debugf("No .env file loaded: %v", err)
	}

	cfg, err := config.InitializeConfig(SharedFlags.Config)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if SharedFlags.Rules != "" {
		cfg.Rules.File = SharedFlags.Rules
	}
	AppConfig = cfg
	Log = config.ConfigureLoggingFromConfig(cfg, Log)

	c, err := container.New(cfg, GetLogrusAdapter(), nil)
	if err != nil {
		return err
	}
	AppContainer = c
	return nil
}

// GetLogrusAdapter wraps the shared logger in the logging abstraction.
func GetLogrusAdapter() logging.Logger {
	return logging.NewLogrusAdapterFromLogger(Log)
}

// GetContainer returns the wired container, or nil before Setup.
func GetContainer() *container.Container {
	return AppContainer
}

// Context returns the command's context, or a background context.
func Context(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
