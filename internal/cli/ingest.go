package cli

import (
	"github.com/spf13/cobra"

	"github.com/provtrace/provtrace/internal/store"
)

// IngestOptions holds flags for the ingest command.
type IngestOptions struct {
	*RootOptions
	Database   string
	Partitions int
}

// NewIngestCommand creates the ingest command.
func NewIngestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &IngestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "ingest <events-file>",
		Short: "Ingest provenance events from a YAML fixture",
		Long: `Ingest provenance events into the event store.

The events file is validated against the embedded event schema before any
write happens. Ingest is idempotent: events whose IDs are already stored
are silently skipped.

Example:
  provtrace ingest --db ./prov.db events.yaml
  provtrace ingest --db ./prov.db --partitions 8 events.yaml`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIngest(cmd, opts, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite event store (required)")
	cmd.Flags().IntVar(&opts.Partitions, "partitions", 0, "partition count when creating a new store (0 = default)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

type ingestSummary struct {
	Events     int `json:"events"`
	Partitions int `json:"partitions"`
}

func runIngest(cmd *cobra.Command, opts *IngestOptions, path string) error {
	doc, err := LoadEventDocument(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "load event document", err)
	}

	st, err := store.Open(opts.Database, opts.Partitions)
	if err != nil {
		return WrapExitError(ExitCommandError, "open store", err)
	}
	defer st.Close()

	if err := st.WriteEvents(cmd.Context(), doc.Events); err != nil {
		return WrapExitError(ExitCommandError, "write events", err)
	}

	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	summary := ingestSummary{Events: len(doc.Events), Partitions: st.PartitionCount()}
	if formatter.IsJSON() {
		return formatter.JSON(summary)
	}
	formatter.Printf("Ingested %d event(s) into %s (%d partitions)\n",
		summary.Events, opts.Database, summary.Partitions)
	return nil
}
