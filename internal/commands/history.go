package commands

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sidebuddy/sidebuddy/internal/history"
	"github.com/sidebuddy/sidebuddy/internal/render"
)

var (
	historyExportFormat string
	historyExportOutput string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Manage generated episodes",
	Long: `View and manage the podcast episodes saved on this machine.

` + history.ListAliases(),
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all episodes",
	Args:  cobra.NoArgs,
	RunE:  runHistoryList,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <ref>",
	Short: "Show an episode and its transcript",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

var historyExportCmd = &cobra.Command{
	Use:   "export <ref>",
	Short: "Export an episode as markdown or JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryExport,
}

var historyRenameCmd = &cobra.Command{
	Use:   "rename <ref> <title>",
	Short: "Rename an episode",
	Args:  cobra.ExactArgs(2),
	RunE:  runHistoryRename,
}

var historyDeleteCmd = &cobra.Command{
	Use:   "delete <ref>",
	Short: "Delete an episode",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryDelete,
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all episodes",
	Args:  cobra.NoArgs,
	RunE:  runHistoryClear,
}

func init() {
	historyExportCmd.Flags().StringVar(&historyExportFormat, "format", "markdown", "Export format (markdown, json)")
	historyExportCmd.Flags().StringVarP(&historyExportOutput, "output", "o", "", "Write to file instead of stdout")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyExportCmd)
	historyCmd.AddCommand(historyRenameCmd)
	historyCmd.AddCommand(historyDeleteCmd)
	historyCmd.AddCommand(historyClearCmd)
}

func openHistory() (*history.Store, error) {
	store, err := history.DefaultStore()
	if err != nil {
		return nil, fmt.Errorf("failed to open history: %w", err)
	}
	return store, nil
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	store, err := openHistory()
	if err != nil {
		return err
	}

	episodes, err := store.List()
	if err != nil {
		return fmt.Errorf("failed to list episodes: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(episodes) == 0 {
		fmt.Fprintln(out, "No episodes found.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "#\tID\tTITLE\tLINES\tCREATED")
	_, _ = fmt.Fprintln(w, "-\t--\t-----\t-----\t-------")

	for i, ep := range episodes {
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\n",
			i+1, ep.ID, truncate(ep.Title, 40), len(ep.Transcript), history.FormatRelativeTime(ep.CreatedAt))
	}

	return w.Flush()
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	store, err := openHistory()
	if err != nil {
		return err
	}

	ep, err := history.NewResolver(store).ResolveEpisode(args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	md := history.EpisodeMarkdown(ep)
	if !isTerminal(out) {
		fmt.Fprint(out, md)
		return nil
	}

	cfg := loadConfig(cmd.ErrOrStderr())
	opts := render.OptionsFromConfig(cfg.Markdown, getTerminalWidth())
	fmt.Fprintln(out, strings.TrimRight(render.MarkdownOrPlain(md, opts), "\n"))
	return nil
}

func runHistoryExport(cmd *cobra.Command, args []string) error {
	format, err := history.ParseExportFormat(historyExportFormat)
	if err != nil {
		return err
	}

	store, err := openHistory()
	if err != nil {
		return err
	}

	id, err := history.NewResolver(store).Resolve(args[0])
	if err != nil {
		return err
	}

	data, err := store.Export(id, format)
	if err != nil {
		return err
	}

	if historyExportOutput == "" {
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}

	if err := os.WriteFile(historyExportOutput, data, 0o644); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	printSuccess(cmd.ErrOrStderr(), fmt.Sprintf("Exported %s to %s", id, historyExportOutput))
	return nil
}

func runHistoryRename(cmd *cobra.Command, args []string) error {
	store, err := openHistory()
	if err != nil {
		return err
	}

	id, err := history.NewResolver(store).Resolve(args[0])
	if err != nil {
		return err
	}

	if err := store.UpdateTitle(id, args[1]); err != nil {
		return fmt.Errorf("failed to rename: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Renamed episode %s\n", id)
	return nil
}

func runHistoryDelete(cmd *cobra.Command, args []string) error {
	store, err := openHistory()
	if err != nil {
		return err
	}

	id, err := history.NewResolver(store).Resolve(args[0])
	if err != nil {
		return err
	}

	if err := store.Delete(id); err != nil {
		return fmt.Errorf("failed to delete: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Deleted episode: %s\n", id)
	return nil
}

func runHistoryClear(cmd *cobra.Command, args []string) error {
	store, err := openHistory()
	if err != nil {
		return err
	}

	if err := store.ClearAll(); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), "All episodes deleted.")
	return nil
}
