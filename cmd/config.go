package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zhazhalove/elasticsearch-azure-entra-mock-dataset/internal/seeder"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration commands",
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration",
	Long:  "Load the configuration cascade, check it, and print the effective settings with secrets masked",
	RunE: func(cmd *cobra.Command, args []string) error {
		config, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if err := config.Validate(); err != nil {
			return fmt.Errorf("configuration validation failed: %w", err)
		}

		printer := newPrinter(cmd)
		printer.Success("Configuration is valid")
		return printer.YAML(redact(*config))
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configValidateCmd)
}

const masked = "********"

// redact returns a copy of c with credentials masked.
func redact(c seeder.Config) seeder.Config {
	mask := func(s *string) {
		if *s != "" {
			*s = masked
		}
	}
	mask(&c.Sinks.OpenSearch.Password)
	mask(&c.Sinks.Elasticsearch.Password)
	mask(&c.Sinks.Elasticsearch.APIKey)
	mask(&c.Sinks.HEC.Token)
	mask(&c.Sinks.NATS.Password)
	mask(&c.Sinks.NATS.Token)
	return c
}
