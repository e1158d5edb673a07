package cmd

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"offvsix/internal/config"
	"offvsix/internal/database"
	"offvsix/internal/server"
	"offvsix/internal/utils"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves downloaded extensions over HTTP",
	Long: `Starts an HTTP server that lists the downloads recorded in the history
database and serves their .vsix files, so machines without internet access
can fetch them from this mirror.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		return runServe(cmd)
	},
}

func init() {
	serveCmd.Flags().String("host", "127.0.0.1", "address to listen on")
	serveCmd.Flags().Int("port", 8080, "port to listen on")
	bindServeFlags()
	rootCmd.AddCommand(serveCmd)
}

func bindServeFlags() {
	bindFlags(serveCmd, map[string]string{
		config.KeyServerHost: "host",
		config.KeyServerPort: "port",
	})
}

func runServe(cmd *cobra.Command) error {
	cfg := config.GetConfig()

	db, err := database.New(cfg.HistoryPath)
	if err != nil {
		return fmt.Errorf("error opening download history: %w", err)
	}
	defer db.Close()

	out := cmd.OutOrStdout()
	srv := server.New(db, utils.NewLogger(out, !cfg.NoPrint))
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	fmt.Fprintf(out, "Server started. Mirror is available at: http://%s\n", addr)
	fmt.Fprintln(out, "Press Ctrl+C to stop the server")

	errChan := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(addr); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case <-cmd.Context().Done():
		fmt.Fprintln(out, "\nSignal received. Stopping server...")
	case err := <-errChan:
		return fmt.Errorf("server start error: %w", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("error during server shutdown: %w", err)
	}

	fmt.Fprintln(out, "Server stopped successfully")
	return nil
}
