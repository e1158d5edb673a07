package config

import (
	"time"

	"github.com/spf13/viper"
)

const (
	KeyDestination     = "download.destination"
	KeyProxy           = "download.proxy"
	KeyNoCache         = "download.no_cache"
	KeyNoPrint         = "output.no_print"
	KeyMarketplace     = "marketplace.type"
	KeyQueryURL        = "marketplace.query_url"
	KeyAssetURL        = "marketplace.asset_url"
	KeyOpenVSXURL      = "marketplace.openvsx_url"
	KeyQueryTimeout    = "timeouts.query"
	KeyDownloadTimeout = "timeouts.download"
	KeyHistoryEnabled  = "history.enabled"
	KeyHistoryPath     = "history.path"
	KeyServerHost      = "server.host"
	KeyServerPort      = "server.port"
)

type Config struct {
	Destination string
	Proxy       string
	NoCache     bool
	NoPrint     bool

	Marketplace string
	// Endpoint overrides, for mirrors of the gallery. Empty means the
	// public endpoints.
	QueryURL   string
	AssetURL   string
	OpenVSXURL string

	QueryTimeout    time.Duration
	DownloadTimeout time.Duration

	HistoryEnabled bool
	HistoryPath    string

	Host string
	Port int
}

func SetDefaults() {
	viper.SetDefault(KeyDestination, "extensions")
	viper.SetDefault(KeyProxy, "")
	viper.SetDefault(KeyNoCache, false)
	viper.SetDefault(KeyNoPrint, false)

	viper.SetDefault(KeyMarketplace, "microsoft")
	viper.SetDefault(KeyQueryURL, "")
	viper.SetDefault(KeyAssetURL, "")
	viper.SetDefault(KeyOpenVSXURL, "")

	viper.SetDefault(KeyQueryTimeout, 20*time.Second)
	viper.SetDefault(KeyDownloadTimeout, 60*time.Second)

	viper.SetDefault(KeyHistoryEnabled, false)
	viper.SetDefault(KeyHistoryPath, "offvsix.db")

	viper.SetDefault(KeyServerHost, "127.0.0.1")
	viper.SetDefault(KeyServerPort, 8080)
}

func GetConfig() Config {
	return Config{
		Destination: viper.GetString(KeyDestination),
		Proxy:       viper.GetString(KeyProxy),
		NoCache:     viper.GetBool(KeyNoCache),
		NoPrint:     viper.GetBool(KeyNoPrint),

		Marketplace: viper.GetString(KeyMarketplace),
		QueryURL:    viper.GetString(KeyQueryURL),
		AssetURL:    viper.GetString(KeyAssetURL),
		OpenVSXURL:  viper.GetString(KeyOpenVSXURL),

		QueryTimeout:    viper.GetDuration(KeyQueryTimeout),
		DownloadTimeout: viper.GetDuration(KeyDownloadTimeout),

		HistoryEnabled: viper.GetBool(KeyHistoryEnabled),
		HistoryPath:    viper.GetString(KeyHistoryPath),

		Host: viper.GetString(KeyServerHost),
		Port: viper.GetInt(KeyServerPort),
	}
}
