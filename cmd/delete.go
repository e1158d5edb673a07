package cmd

import (
	"fmt"
	"strings"

	"offvsix/internal/config"
	"offvsix/internal/database"
	"offvsix/internal/models"
	"offvsix/internal/utils"

	"github.com/spf13/cobra"
)

var (
	deleteVersion string
	deleteYes     bool
)

var deleteCmd = &cobra.Command{
	Use:   "delete [EXTENSION_ID]",
	Short: "Deletes downloaded versions of an extension and their files",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		return runDelete(cmd, args[0])
	},
}

func init() {
	deleteCmd.Flags().StringVar(&deleteVersion, "version", "", "only delete this version")
	deleteCmd.Flags().BoolVarP(&deleteYes, "yes", "y", false, "do not ask for confirmation")
	rootCmd.AddCommand(deleteCmd)
}

func runDelete(cmd *cobra.Command, extensionID string) error {
	id, err := models.ParseIdentifier(extensionID)
	if err != nil {
		return err
	}

	cfg := config.GetConfig()
	db, err := database.New(cfg.HistoryPath)
	if err != nil {
		return fmt.Errorf("error opening download history: %w", err)
	}
	defer db.Close()

	var records []models.DownloadRecord
	if deleteVersion != "" {
		rec, err := db.GetDownload(id.Publisher, id.Name, deleteVersion)
		if err != nil {
			return err
		}
		records = append(records, *rec)
	} else {
		records, err = db.GetExtensionDownloads(id.Publisher, id.Name)
		if err != nil {
			return err
		}
	}
	if len(records) == 0 {
		return fmt.Errorf("extension with ID %s not found", id)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Found %d download(s) for deletion:\n", len(records))
	for _, rec := range records {
		fmt.Fprintf(out, "  %s %s - %s\n", rec.Identifier(), rec.Version, rec.FilePath)
	}

	if !deleteYes {
		fmt.Fprintf(out, "\nContinue with deletion? (y/N): ")

		var response string
		fmt.Fscanln(cmd.InOrStdin(), &response)

		if !strings.EqualFold(response, "y") {
			fmt.Fprintln(out, "Deletion cancelled")
			return nil
		}
	}

	fileUtils := utils.NewFileUtils()
	for _, rec := range records {
		if err := fileUtils.RemoveFile(rec.FilePath); err != nil {
			return fmt.Errorf("failed to delete .vsix file: %w", err)
		}
		if err := db.DeleteDownload(rec.ID); err != nil {
			return fmt.Errorf("failed to delete from database: %w", err)
		}
		fmt.Fprintf(out, "Deleted %s\n", rec.Identifier().FileName(rec.Version))
	}

	return nil
}
