package cmd

import (
	"fmt"

	"offvsix/internal/config"
	"offvsix/internal/database"

	"github.com/dustin/go-humanize"
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"
)

var historyPublisher string

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Lists extensions recorded in the download history",
	Long: `Lists the downloads recorded with --history, grouped by publisher and
extension, newest version first.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		return runHistory(cmd)
	},
}

func init() {
	historyCmd.Flags().StringVar(&historyPublisher, "publisher", "", "only list extensions of this publisher")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command) error {
	cfg := config.GetConfig()

	db, err := database.New(cfg.HistoryPath)
	if err != nil {
		return fmt.Errorf("error opening download history: %w", err)
	}
	defer db.Close()

	records, err := db.GetDownloads(historyPublisher)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(records) == 0 {
		fmt.Fprintln(out, "No downloads recorded.")
		return nil
	}

	table := uitable.New()
	table.MaxColWidth = 80
	table.AddRow("ID", "EXTENSION", "VERSION", "SIZE", "DOWNLOADED", "FILE")
	for _, rec := range records {
		table.AddRow(
			rec.ID,
			rec.Identifier().String(),
			rec.Version,
			humanize.Bytes(uint64(rec.FileSize)),
			humanize.Time(rec.DownloadedAt),
			rec.FilePath,
		)
	}
	fmt.Fprintln(out, table)
	return nil
}
