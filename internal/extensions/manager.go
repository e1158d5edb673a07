package extensions

import (
	"context"
	"errors"
	"strings"
	"time"

	"offvsix/internal/marketplace"
	"offvsix/internal/models"
	"offvsix/internal/utils"
)

// Request is a single download. An empty Version means "latest"; an empty
// Destination means "extensions".
type Request struct {
	Extension   string
	Version     string
	Destination string
	NoCache     bool
}

type Outcome int

const (
	OutcomeFailed Outcome = iota
	OutcomeDownloaded
	OutcomeCached
)

func (o Outcome) String() string {
	switch o {
	case OutcomeDownloaded:
		return "downloaded"
	case OutcomeCached:
		return "cached"
	default:
		return "failed"
	}
}

type Result struct {
	Extension  string
	Identifier models.Identifier
	Version    string
	FilePath   string
	Size       int64
	Outcome    Outcome
	Err        error
}

// HistoryRecorder stores successful downloads.
type HistoryRecorder interface {
	RecordDownload(rec *models.DownloadRecord) error
}

type Manager struct {
	provider        marketplace.MarketplaceProvider
	logger          *utils.Logger
	fileUtils       *utils.FileUtils
	history         HistoryRecorder
	proxy           string
	marketplaceType marketplace.MarketplaceType
}

type ManagerOption func(*Manager)

func WithHistory(history HistoryRecorder) ManagerOption {
	return func(m *Manager) {
		m.history = history
	}
}

// WithProxyNotice makes every download announce the proxy it goes through.
func WithProxyNotice(proxy string) ManagerOption {
	return func(m *Manager) {
		m.proxy = proxy
	}
}

func WithMarketplaceType(t marketplace.MarketplaceType) ManagerOption {
	return func(m *Manager) {
		m.marketplaceType = t
	}
}

func New(provider marketplace.MarketplaceProvider, logger *utils.Logger, opts ...ManagerOption) *Manager {
	m := &Manager{
		provider:        provider,
		logger:          logger,
		fileUtils:       utils.NewFileUtils(),
		marketplaceType: marketplace.MarketplaceTypeMicrosoft,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Download runs the query, resolve and fetch steps for one extension. Every
// failure is reported and returned in the Result; nothing is retried.
func (m *Manager) Download(ctx context.Context, req Request) Result {
	result := Result{Extension: strings.TrimSpace(req.Extension)}

	id, err := models.ParseIdentifier(req.Extension)
	if err != nil {
		m.logger.LogError("Invalid extension identifier: %s. Use the form publisher.extension", result.Extension)
		return result.fail(err)
	}
	result.Identifier = id

	m.logger.LogBanner("=", "Downloading %s", id)
	if m.proxy != "" {
		m.logger.LogInfo("Using proxy: %s", m.proxy)
	}

	m.logger.LogInfo("Querying %s API...", m.provider.GetName())
	version, err := m.provider.ResolveVersion(ctx, id, req.Version)
	if err != nil {
		m.reportQueryError(id, err)
		return result.fail(err)
	}
	result.Version = version

	filePath, err := ResolveArtifactPath(req.Destination, id, version)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrInvalidVersion):
			m.logger.LogError("Invalid version %q for %s", version, id)
		case errors.Is(err, models.ErrInvalidIdentifier):
			m.logger.LogError("Invalid extension identifier: %s. Use the form publisher.extension", id)
		default:
			m.logger.LogError("Failed to prepare destination: %v", err)
		}
		return result.fail(err)
	}
	result.FilePath = filePath

	if !req.NoCache && m.fileUtils.FileExists(filePath) {
		m.logger.LogWarning("File %s already exists.", filePath)
		m.logger.LogInfo("Use --no-cache to force re-download.")
		result.Outcome = OutcomeCached
		return result
	}

	m.logger.LogInfo("Downloading version %s...", version)
	size, err := m.provider.DownloadArtifact(ctx, id, version, filePath)
	if err != nil {
		m.reportDownloadError(id, version, err)
		return result.fail(err)
	}
	result.Size = size
	result.Outcome = OutcomeDownloaded

	m.logger.LogDownloaded(filePath, size)
	m.recordHistory(result)

	return result
}

func (m *Manager) reportQueryError(id models.Identifier, err error) {
	switch {
	case errors.Is(err, marketplace.ErrExtensionNotFound):
		m.logger.LogError("Extension not found: %s", id)
	case errors.Is(err, marketplace.ErrQueryStatus):
		m.logger.LogError("Failed to query Marketplace API: %v", err)
	case errors.Is(err, marketplace.ErrQueryParse):
		m.logger.LogError("Failed to parse Marketplace API response")
	default:
		m.logger.LogError("Failed to query Marketplace API: %v", err)
	}
}

func (m *Manager) reportDownloadError(id models.Identifier, version string, err error) {
	if errors.Is(err, marketplace.ErrDownloadStatus) {
		m.logger.LogError("Failed to download %s", id.FileName(version))
		return
	}
	m.logger.LogError("Failed to download asset: %v", err)
}

func (m *Manager) recordHistory(result Result) {
	if m.history == nil {
		return
	}

	rec := &models.DownloadRecord{
		Publisher:    result.Identifier.Publisher,
		Name:         result.Identifier.Name,
		Version:      result.Version,
		FilePath:     result.FilePath,
		FileSize:     result.Size,
		Marketplace:  string(m.marketplaceType),
		DownloadedAt: time.Now().UTC(),
	}
	if err := m.history.RecordDownload(rec); err != nil {
		m.logger.LogWarning("Warning: failed to record download history: %v", err)
	}
}

func (r Result) fail(err error) Result {
	r.Outcome = OutcomeFailed
	r.Err = err
	return r
}
