package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/trustlab/internal/export"
	"github.com/roach88/trustlab/internal/store"
)

// ExportOptions holds flags for the export command.
type ExportOptions struct {
	*RootOptions
	Type string // "json" | "csv"
	Out  string // directory
}

// ExportReport describes a written export.
type ExportReport struct {
	Path   string             `json:"path"`
	Record store.ExportRecord `json:"record"`
}

// String renders the report for the text format.
func (r *ExportReport) String() string {
	return fmt.Sprintf("✓ Exported %s to %s (%d bytes)", r.Record.Format, r.Path, r.Record.Bytes)
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the session as JSON or CSV",
		Long: `Write the stored session to a file named
{experimentId}_{participantId|anon}_{timestamp}.{json|csv} and record the
export in the export log.

Examples:
  trustlab export --type csv
  trustlab export --type json --out ./results`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Type, "type", string(export.FormatJSON), "export format (json|csv)")
	cmd.Flags().StringVar(&opts.Out, "out", rootOpts.config().ExportDir, "output directory")

	return cmd
}

func runExport(opts *ExportOptions, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd)

	format, err := export.ParseFormat(opts.Type)
	if err != nil {
		return f.Fail(WrapExitError(ExitCommandError, "invalid --type", err))
	}

	w, err := openWorkspace(opts.RootOptions, durableOnly)
	if err != nil {
		return f.Fail(err)
	}
	defer w.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if err := w.machine.Open(ctx); err != nil {
		return f.Fail(err)
	}

	res, err := export.WriteFile(ctx, opts.Out, format, w.machine.Session(), w.cat, w.now(), w.backend)
	if err != nil {
		return f.Fail(&ExitError{Code: ExitCommandError, Message: "export failed", Err: err, Reason: ErrCodeExport})
	}
	f.VerboseLog("content hash %s", res.Record.ContentHash)
	return f.Success(&ExportReport{Path: res.Path, Record: res.Record})
}

// ExportList is the export log of one experiment.
type ExportList struct {
	ExperimentID string               `json:"experimentId"`
	Exports      []store.ExportRecord `json:"exports"`
}

// String renders the list for the text format.
func (l *ExportList) String() string {
	if len(l.Exports) == 0 {
		return fmt.Sprintf("No exports for %s.", l.ExperimentID)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Exports for %s:\n", l.ExperimentID)
	for _, e := range l.Exports {
		fmt.Fprintf(&b, "  #%d %s %s %s (%d bytes, session %s)\n",
			e.Seq, e.ExportedAt, e.Format, e.Filename, e.Bytes, e.SessionID)
	}
	return strings.TrimRight(b.String(), "\n")
}

// NewExportsCommand creates the exports command.
func NewExportsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "exports",
		Short:         "List recorded exports",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExports(rootOpts, cmd)
		},
	}
}

func runExports(opts *RootOptions, cmd *cobra.Command) error {
	f := newFormatter(opts, cmd)

	w, err := openWorkspace(opts, durableOnly)
	if err != nil {
		return f.Fail(err)
	}
	defer w.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	records, err := w.backend.ListExports(ctx, w.cat.Experiment.ID)
	if err != nil {
		return f.Fail(err)
	}
	return f.Success(&ExportList{ExperimentID: w.cat.Experiment.ID, Exports: records})
}
