package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/zhazhalove/elasticsearch-azure-entra-mock-dataset/internal/logging"
	"github.com/zhazhalove/elasticsearch-azure-entra-mock-dataset/internal/seeder"
	"github.com/zhazhalove/elasticsearch-azure-entra-mock-dataset/pkg/output"
)

var (
	cfgFile   string
	logLevel  string
	logFormat string
)

var rootCmd = &cobra.Command{
	Use:   "entraseed",
	Short: "Synthetic Azure Entra ID sign-in dataset generator",
	Long: `entraseed generates realistic Azure Entra ID sign-in logs: interactive
logins, silent token refreshes and occasional impossible-travel anomalies.

Events are written as Elasticsearch/OpenSearch _bulk NDJSON and can also be
sent straight to a search cluster, a HEC collector or a NATS subject.`,
	Version:       "0.1.0",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. SIGINT and SIGTERM cancel the command's
// context so network sinks stop early.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		output.Error("%v", err)
		return err
	}
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./entraseed.yaml or ~/.entraseed/entraseed.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format: text, json")
}

// loadConfig reads the config cascade and applies the persistent flags.
func loadConfig(cmd *cobra.Command) (*seeder.Config, error) {
	config, err := seeder.LoadConfig(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if cmd.Flags().Changed("log-level") {
		config.Log.Level = logLevel
	}
	if cmd.Flags().Changed("log-format") {
		config.Log.Format = logFormat
	}
	return config, nil
}

// newLogger builds the process logger on the command's stderr.
func newLogger(cmd *cobra.Command, config *seeder.Config) (*logging.Logger, error) {
	level, err := logging.ParseLevel(config.Log.Level)
	if err != nil {
		return nil, err
	}
	format, err := logging.ParseFormat(config.Log.Format)
	if err != nil {
		return nil, err
	}
	logger := logging.New(level, format, cmd.ErrOrStderr())
	logging.SetDefault(logger)
	return logger, nil
}

func newPrinter(cmd *cobra.Command) *output.Printer {
	return output.NewPrinter(cmd.OutOrStdout(), cmd.ErrOrStderr())
}

// splitList parses a comma-separated flag value.
func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
