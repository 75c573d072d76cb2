package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/ytget/ytmux/internal/config"
	"github.com/ytget/ytmux/internal/history"
)

func newHistoryCommand(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show or clear the download history",
	}

	var all bool
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List finished downloads, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.listHistory(all)
		},
	}
	listCmd.Flags().BoolVar(&all, "all", false, "Include entries whose file no longer exists")

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove every history entry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.clearHistory()
		},
	}

	cmd.AddCommand(listCmd, clearCmd)
	return cmd
}

func (e *env) listHistory(all bool) error {
	store, err := e.openHistory()
	if err != nil {
		return err
	}
	defer store.Close()

	entries, err := store.List()
	if err != nil {
		return err
	}
	if !all {
		entries = history.Existing(entries)
	}
	entries = history.Newest(entries)

	if len(entries) == 0 {
		if e.cfg.HistoryBackend == config.DefaultHistoryBackend {
			_, err = fmt.Fprintln(e.out, "History is kept in memory only; set history.backend to text or sqlite to persist it.")
			return err
		}
		_, err = fmt.Fprintln(e.out, "No downloads yet.")
		return err
	}

	tw := tabwriter.NewWriter(e.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "WHEN\tFILE\tPATH")
	for _, entry := range entries {
		when := "-"
		if !entry.CompletedAt.IsZero() {
			when = humanize.Time(entry.CompletedAt)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", when, entry.Filename, entry.Path)
	}
	return tw.Flush()
}

func (e *env) clearHistory() error {
	store, err := e.openHistory()
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Clear(); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	e.logger.Info().Str("backend", e.cfg.HistoryBackend).Msg("History cleared")
	_, err = fmt.Fprintln(e.out, "History cleared.")
	return err
}
