package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zhazhalove/elasticsearch-azure-entra-mock-dataset/internal/seeder"
)

var pushSinks string

var pushCmd = &cobra.Command{
	Use:   "push <file>",
	Short: "Send an existing bulk file to network sinks",
	Long: `Read a bulk NDJSON file written by generate and deliver its events to the
configured network sinks. Document IDs are the event IDs, so pushing the same
file twice overwrites rather than duplicates.

Examples:
  entraseed push bulk_synthetic_entra_signin.ndjson --sink opensearch
  entraseed push out.ndjson --sink hec,nats --config ./entraseed.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runPush,
}

func init() {
	rootCmd.AddCommand(pushCmd)

	pushCmd.Flags().StringVar(&pushSinks, "sink", "", "Comma-separated sinks (default: enabled sinks except file)")
}

func runPush(cmd *cobra.Command, args []string) error {
	config, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := newLogger(cmd, config)
	if err != nil {
		return err
	}
	printer := newPrinter(cmd)

	var names []string
	if cmd.Flags().Changed("sink") {
		names = splitList(pushSinks)
	}

	runner := seeder.NewRunner(config, logger, printer)
	delivered, err := runner.Push(cmd.Context(), args[0], names)
	if err != nil {
		return fmt.Errorf("push failed: %w", err)
	}

	for _, name := range seeder.SinkNames(delivered) {
		printer.Success("%s: %d documents", name, delivered[name])
	}
	return nil
}
