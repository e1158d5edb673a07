package cmd

import (
	"errors"
	"fmt"

	"offvsix/internal/config"
	"offvsix/internal/database"
	"offvsix/internal/extensions"
	"offvsix/internal/marketplace"
	"offvsix/internal/utils"

	"github.com/spf13/cobra"
)

var (
	versionFlag string
	fileFlag    string
)

const usageMessage = "Please provide either an extension or a file containing extensions."

func runDownload(cmd *cobra.Command, args []string) error {
	cfg := config.GetConfig()
	cmd.SilenceErrors = cfg.NoPrint

	if fileFlag == "" && len(args) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), usageMessage)
		return nil
	}

	logger := utils.NewLogger(cmd.OutOrStdout(), !cfg.NoPrint)
	manager, closeHistory, err := newManager(cfg, logger)
	if err != nil {
		return err
	}
	defer closeHistory()

	req := extensions.Request{
		Version:     versionFlag,
		Destination: cfg.Destination,
		NoCache:     cfg.NoCache,
	}

	// The manager reports download failures itself; the returned error only
	// sets the exit status.
	if fileFlag != "" {
		summary, err := manager.DownloadFromFile(cmd.Context(), fileFlag, req)
		if err != nil {
			cmd.SilenceErrors = errors.Is(err, extensions.ErrListFileNotFound) || cfg.NoPrint
			return err
		}
		if summary.HasFailures() {
			cmd.SilenceErrors = true
			return fmt.Errorf("%d of %d extension(s) failed", summary.Failed, len(summary.Results))
		}
		return nil
	}

	req.Extension = args[0]
	result := manager.Download(cmd.Context(), req)
	if result.Err != nil {
		cmd.SilenceErrors = true
		return fmt.Errorf("%s: %w", result.Extension, result.Err)
	}
	return nil
}

// newManager wires the marketplace provider and, when enabled, the download
// history. The returned func closes the history database.
func newManager(cfg config.Config, logger *utils.Logger) (*extensions.Manager, func(), error) {
	opts := []marketplace.Option{
		marketplace.WithProxy(cfg.Proxy),
		marketplace.WithQueryTimeout(cfg.QueryTimeout),
		marketplace.WithDownloadTimeout(cfg.DownloadTimeout),
	}
	if cfg.QueryURL != "" {
		opts = append(opts, marketplace.WithQueryURL(cfg.QueryURL))
	}
	if cfg.AssetURL != "" {
		opts = append(opts, marketplace.WithAssetBaseURL(cfg.AssetURL))
	}
	if cfg.OpenVSXURL != "" {
		opts = append(opts, marketplace.WithOpenVSXURL(cfg.OpenVSXURL))
	}

	marketplaceType := marketplace.MarketplaceType(cfg.Marketplace)
	if marketplaceType == "" {
		marketplaceType = marketplace.MarketplaceTypeMicrosoft
	}
	provider, err := marketplace.NewFactory(opts...).CreateByType(marketplaceType)
	if err != nil {
		return nil, nil, fmt.Errorf("error initializing marketplace: %w", err)
	}

	managerOpts := []extensions.ManagerOption{
		extensions.WithProxyNotice(cfg.Proxy),
		extensions.WithMarketplaceType(marketplaceType),
	}

	closeHistory := func() {}
	if cfg.HistoryEnabled {
		db, err := database.New(cfg.HistoryPath)
		if err != nil {
			return nil, nil, fmt.Errorf("error opening download history: %w", err)
		}
		managerOpts = append(managerOpts, extensions.WithHistory(db))
		closeHistory = func() { db.Close() }
	}

	return extensions.New(provider, logger, managerOpts...), closeHistory, nil
}
