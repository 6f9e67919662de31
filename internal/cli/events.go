package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/provtrace/provtrace/internal/provenance"
	"github.com/provtrace/provtrace/internal/store"
)

// EventsOptions holds flags for the events command.
type EventsOptions struct {
	*RootOptions
	Database string
	FlowFile string
}

// NewEventsCommand creates the events command.
func NewEventsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &EventsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "events",
		Short: "List stored events touching a flowfile",
		Long: `List every stored provenance event that touches a flowfile, as its
primary flowfile or as a parent or child, in (event_time, event_id) order.

Example:
  provtrace events --db ./prov.db --flowfile u1`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEvents(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite event store (required)")
	cmd.Flags().StringVar(&opts.FlowFile, "flowfile", "", "flowfile ID (required)")
	_ = cmd.MarkFlagRequired("db")
	_ = cmd.MarkFlagRequired("flowfile")

	return cmd
}

func runEvents(cmd *cobra.Command, opts *EventsOptions) error {
	st, err := store.Open(opts.Database, 0)
	if err != nil {
		return WrapExitError(ExitCommandError, "open store", err)
	}
	defer st.Close()

	records, err := st.ReadByFlowFile(cmd.Context(), opts.FlowFile)
	if err != nil {
		return WrapExitError(ExitCommandError, "read events", err)
	}

	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	if formatter.IsJSON() {
		return formatter.JSON(records)
	}

	formatter.Printf("%d event(s) touching %s\n", len(records), opts.FlowFile)
	for _, rec := range records {
		formatter.Printf("  %s\n", formatEvent(rec))
	}
	return nil
}

// formatEvent renders one event record for text output.
func formatEvent(rec provenance.EventRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "#%d t=%d %s flowfile=%s", rec.EventID, rec.EventTime, rec.EventType, rec.FlowFileID)
	if len(rec.ParentIDs) > 0 {
		fmt.Fprintf(&b, " parents=%s", strings.Join(rec.ParentIDs, ","))
	}
	if len(rec.ChildIDs) > 0 {
		fmt.Fprintf(&b, " children=%s", strings.Join(rec.ChildIDs, ","))
	}
	return b.String()
}
