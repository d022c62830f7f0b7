package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/chipsim/internal/ir"
	"github.com/roach88/chipsim/internal/store"
)

// SaveOptions holds flags for the save command.
type SaveOptions struct {
	*RootOptions
	DB string
}

// SavedChip reports the revision recorded for one chip.
type SavedChip struct {
	Chip     string `json:"chip"`
	Revision string `json:"revision"`
	Seq      int64  `json:"seq"`
	Compiled bool   `json:"compiled"`
	Inserted bool   `json:"inserted"`
}

// NewSaveCommand creates the save command.
func NewSaveCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SaveOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "save <path>",
		Short: "Record chip revisions in the database",
		Long: `Register the chips under <path>, compile them, and append a revision
for every chip whose definition or compiled program changed since its
last saved revision. Unchanged chips are left alone.

The database defaults to $CHIPSIM_DB, or chipsim.db.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSave(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.DB, "db", rootOpts.config().DBPath, "revision database path")

	return cmd
}

func runSave(opts *SaveOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	eng, result, loadErr := buildEngine(path, formatter, opts.config())
	if loadErr != nil {
		return outputLoadError(formatter, loadErr)
	}

	st, err := store.Open(opts.DB)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeDatabase, err.Error(), nil)
	}
	defer st.Close()

	ctx := commandContext(cmd)
	saved := make([]SavedChip, 0, len(result.Chips))
	for _, def := range result.Chips {
		entry, err := eng.Registry().Lookup(ir.Kind(def.ID))
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeNotFound, err.Error(), nil)
		}
		rev, inserted, err := st.SaveChip(ctx, def, entry.Code)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeDatabase, err.Error(), nil)
		}
		formatter.VerboseLog("Saved %s: revision %s (inserted=%t)", def.ID, rev.Revision, inserted)
		saved = append(saved, SavedChip{
			Chip:     def.ID,
			Revision: rev.Revision,
			Seq:      rev.Seq,
			Compiled: rev.Code != "",
			Inserted: inserted,
		})
	}

	if formatter.Format == "json" {
		return formatter.Success(saved)
	}

	inserted := 0
	for _, s := range saved {
		mark := "="
		if s.Inserted {
			mark = "+"
			inserted++
		}
		fmt.Fprintf(formatter.Writer, "%s %s seq=%d %s\n", mark, s.Chip, s.Seq, s.Revision)
	}
	fmt.Fprintf(formatter.Writer, "\n✓ %d new revision(s), %d unchanged\n", inserted, len(saved)-inserted)
	return nil
}

// commandContext returns the command's context, or Background when the
// command runs outside Execute.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
