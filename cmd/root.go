package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"offvsix/internal/config"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "offvsix [EXTENSION]",
		Short: "Downloads VS Code extensions for offline installation",
		Long: `offvsix resolves a publisher.extension identifier against the marketplace,
picks the latest version (or the one given with --version) and saves the
.vsix package into the destination directory. A file that is already
present is not downloaded again unless --no-cache is given.

Use --file to download every extension listed in a text file, one
identifier per line.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			return runDownload(cmd, args)
		},
	}
)

func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	config.SetDefaults()
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to config file (default ./config.yaml)")

	flags := rootCmd.Flags()
	flags.StringVar(&versionFlag, "version", "", "Specific version to download.")
	flags.StringVar(&fileFlag, "file", "", "Path to a text file with extensions to download, one per line.")
	flags.String("destination", "extensions", "Destination folder.")
	flags.String("proxy", "", "Proxy URL.")
	flags.Bool("no-cache", false, "Force re-download even if the extension already exists.")
	flags.Bool("no-print", false, "Suppress progress and result messages.")
	flags.String("marketplace", "microsoft", "Marketplace to download from (microsoft, open-vsx).")
	flags.Bool("history", false, "Record successful downloads in the history database.")

	bindRootFlags()
}

func bindRootFlags() {
	bindFlags(rootCmd, map[string]string{
		config.KeyDestination:    "destination",
		config.KeyProxy:          "proxy",
		config.KeyNoCache:        "no-cache",
		config.KeyNoPrint:        "no-print",
		config.KeyMarketplace:    "marketplace",
		config.KeyHistoryEnabled: "history",
	})
}

// bindFlags maps command line flags onto their configuration keys, so a
// flag given on the command line wins over the config file.
func bindFlags(cmd *cobra.Command, flagsByKey map[string]string) {
	for key, name := range flagsByKey {
		if err := viper.BindPFlag(key, cmd.Flags().Lookup(name)); err != nil {
			panic(err)
		}
	}
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			fmt.Fprintf(os.Stderr, "Error reading config file: %v\n", err)
		}
	}
}
