package marketplace

import (
	"fmt"
	"net/http"
	"net/url"
	"time"

	"offvsix/internal/utils"
)

const (
	DefaultQueryTimeout    = 20 * time.Second
	DefaultDownloadTimeout = 60 * time.Second
)

type options struct {
	proxyURL        string
	queryTimeout    time.Duration
	downloadTimeout time.Duration
	queryURL        string
	assetBaseURL    string
	openVSXURL      string
	transport       http.RoundTripper
}

// Option configures a marketplace provider.
type Option func(*options)

// WithProxy routes both the metadata query and the download through proxyURL.
func WithProxy(proxyURL string) Option {
	return func(opts *options) {
		opts.proxyURL = proxyURL
	}
}

func WithQueryTimeout(timeout time.Duration) Option {
	return func(opts *options) {
		if timeout > 0 {
			opts.queryTimeout = timeout
		}
	}
}

func WithDownloadTimeout(timeout time.Duration) Option {
	return func(opts *options) {
		if timeout > 0 {
			opts.downloadTimeout = timeout
		}
	}
}

// WithQueryURL overrides the gallery extensionquery endpoint.
func WithQueryURL(queryURL string) Option {
	return func(opts *options) {
		opts.queryURL = queryURL
	}
}

// WithAssetBaseURL replaces the per-publisher vsassets host with a single
// base URL.
func WithAssetBaseURL(baseURL string) Option {
	return func(opts *options) {
		opts.assetBaseURL = baseURL
	}
}

func WithOpenVSXURL(apiURL string) Option {
	return func(opts *options) {
		opts.openVSXURL = apiURL
	}
}

// WithTransport sets the round tripper used for every request. It takes
// precedence over WithProxy.
func WithTransport(transport http.RoundTripper) Option {
	return func(opts *options) {
		opts.transport = transport
	}
}

func newOptions(opts []Option) options {
	o := options{
		queryTimeout:    DefaultQueryTimeout,
		downloadTimeout: DefaultDownloadTimeout,
		queryURL:        utils.GalleryQueryURL,
		openVSXURL:      utils.OpenVSXAPIURL,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// newHTTPClient builds the client shared by the query and the download.
// Timeouts are applied per call through the request context.
func newHTTPClient(opts options) (*http.Client, error) {
	if opts.transport != nil {
		return &http.Client{Transport: opts.transport}, nil
	}

	// Proxy settings come from the caller only, never from the environment.
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = nil
	if opts.proxyURL != "" {
		proxy, err := url.Parse(opts.proxyURL)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy URL %q: %w", opts.proxyURL, err)
		}
		if proxy.Scheme == "" || proxy.Host == "" {
			return nil, fmt.Errorf("invalid proxy URL %q: scheme and host are required", opts.proxyURL)
		}
		transport.Proxy = http.ProxyURL(proxy)
	}

	return &http.Client{Transport: transport}, nil
}
