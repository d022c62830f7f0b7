package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/roach88/chipsim/internal/compiler"
	"github.com/roach88/chipsim/internal/store"
)

// ListOptions holds flags for the list command.
type ListOptions struct {
	*RootOptions
	DB      string
	History string // list every revision of this chip
	Export  string // write the latest revisions as chip files here
}

// RevisionInfo is one listed revision.
type RevisionInfo struct {
	Chip     string `json:"chip"`
	Name     string `json:"name"`
	Revision string `json:"revision"`
	Seq      int64  `json:"seq"`
	Hash     string `json:"hash"`
	Compiled bool   `json:"compiled"`
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ListOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved chip revisions",
		Long: `List the latest saved revision of every chip, ordered by when it was
last saved. --history lists every revision of one chip instead, and
--export writes the latest revisions as version 0 chip files.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.DB, "db", rootOpts.config().DBPath, "revision database path")
	cmd.Flags().StringVar(&opts.History, "history", "", "list every revision of this chip")
	cmd.Flags().StringVar(&opts.Export, "export", "", "write latest revisions as chip files to this directory")

	return cmd
}

func runList(opts *ListOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	if _, err := os.Stat(opts.DB); err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("database not found: %s", opts.DB), nil)
	}
	st, err := store.Open(opts.DB)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeDatabase, err.Error(), nil)
	}
	defer st.Close()

	ctx := commandContext(cmd)
	var revs []store.Revision
	if opts.History != "" {
		revs, err = st.History(ctx, opts.History)
	} else {
		revs, err = st.LatestChips(ctx)
	}
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeDatabase, err.Error(), nil)
	}
	if opts.History != "" && len(revs) == 0 {
		return formatter.Fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("no revisions for chip %s", opts.History), nil)
	}

	if opts.Export != "" {
		if err := exportRevisions(revs, opts.Export, opts.History != ""); err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeWriteFailed, err.Error(), nil)
		}
		formatter.VerboseLog("Exported %d chip file(s) to %s", len(revs), opts.Export)
	}

	infos := make([]RevisionInfo, len(revs))
	for i, r := range revs {
		infos[i] = RevisionInfo{
			Chip:     r.ChipID,
			Name:     r.Name,
			Revision: r.Revision,
			Seq:      r.Seq,
			Hash:     r.DefinitionHash,
			Compiled: r.Code != "",
		}
	}

	if formatter.Format == "json" {
		return formatter.Success(infos)
	}

	if len(infos) == 0 {
		fmt.Fprintln(formatter.Writer, "No chips saved.")
		return nil
	}
	for _, info := range infos {
		compiled := "interpreted"
		if info.Compiled {
			compiled = "compiled"
		}
		fmt.Fprintf(formatter.Writer, "%4d  %-20s %-20s %s  %s\n",
			info.Seq, info.Chip, info.Name, shortHash(info.Hash), compiled)
	}
	if opts.Export != "" {
		fmt.Fprintf(formatter.Writer, "\nWrote %d chip file(s) to %s\n", len(infos), opts.Export)
	}
	return nil
}

// exportRevisions writes each revision's definition to dir/<chip>.json,
// or dir/<chip>.<seq>.json when bySeq is set.
func exportRevisions(revs []store.Revision, dir string, bySeq bool) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating export directory: %w", err)
	}
	for _, r := range revs {
		data, err := compiler.MarshalChipFile(r.Definition)
		if err != nil {
			return err
		}
		name := r.ChipID + ".json"
		if bySeq {
			name = fmt.Sprintf("%s.%d.json", r.ChipID, r.Seq)
		}
		if err := os.WriteFile(filepath.Join(dir, name), data, 0644); err != nil {
			return fmt.Errorf("writing %s: %w", name, err)
		}
	}
	return nil
}

func shortHash(hash string) string {
	if len(hash) > 12 {
		return hash[:12]
	}
	return hash
}
