package marketplace

import (
	"context"
	"errors"

	"offvsix/internal/models"
)

// MarketplaceProvider defines the interface for different marketplace implementations
type MarketplaceProvider interface {
	// ResolveVersion queries the marketplace for id. A non-empty override is
	// returned verbatim once the query has succeeded.
	ResolveVersion(ctx context.Context, id models.Identifier, override string) (string, error)
	// DownloadArtifact fetches the package for id at version and writes it to
	// filePath, returning the number of bytes written.
	DownloadArtifact(ctx context.Context, id models.Identifier, version, filePath string) (int64, error)
	GetName() string
}

// MarketplaceType represents the type of marketplace
type MarketplaceType string

const (
	MarketplaceTypeMicrosoft MarketplaceType = "microsoft"
	MarketplaceTypeOpenVSX   MarketplaceType = "open-vsx"
)

var (
	ErrQueryTransport    = errors.New("failed to query marketplace")
	ErrQueryStatus       = errors.New("marketplace query returned an error status")
	ErrQueryParse        = errors.New("failed to parse marketplace response")
	ErrExtensionNotFound = errors.New("extension not found")
	ErrDownloadTransport = errors.New("failed to download asset")
	ErrDownloadStatus    = errors.New("download returned an error status")
)
