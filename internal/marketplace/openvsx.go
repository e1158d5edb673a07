package marketplace

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"offvsix/internal/models"
	"offvsix/internal/utils"
)

type OpenVSXMarketplace struct {
	client *http.Client
	opts   options
}

func NewOpenVSX(opts ...Option) (*OpenVSXMarketplace, error) {
	o := newOptions(opts)
	client, err := newHTTPClient(o)
	if err != nil {
		return nil, err
	}
	return &OpenVSXMarketplace{
		client: client,
		opts:   o,
	}, nil
}

func (m *OpenVSXMarketplace) GetName() string {
	return "Open VSX Registry"
}

func (m *OpenVSXMarketplace) ResolveVersion(ctx context.Context, id models.Identifier, override string) (string, error) {
	ext, err := m.fetchExtension(ctx, id)
	if err != nil {
		return "", err
	}

	if override != "" {
		return override, nil
	}

	if ext.Version == "" {
		return "", fmt.Errorf("%w: %s", ErrExtensionNotFound, id)
	}
	return ext.Version, nil
}

func (m *OpenVSXMarketplace) DownloadArtifact(ctx context.Context, id models.Identifier, version, filePath string) (int64, error) {
	// Open VSX file URL pattern: /api/{namespace}/{name}/{version}/file/{namespace}.{name}-{version}.vsix
	downloadURL := fmt.Sprintf("%s/%s/%s/%s/file/%s",
		m.opts.openVSXURL,
		url.PathEscape(id.Publisher),
		url.PathEscape(id.Name),
		url.PathEscape(version),
		url.PathEscape(id.FileName(version)),
	)
	return downloadFile(ctx, m.client, m.opts.downloadTimeout, downloadURL, filePath)
}

type openVSXExtension struct {
	Namespace string `json:"namespace"`
	Name      string `json:"name"`
	Version   string `json:"version"`
	Error     string `json:"error"`
}

func (m *OpenVSXMarketplace) fetchExtension(ctx context.Context, id models.Identifier) (*openVSXExtension, error) {
	apiURL := fmt.Sprintf("%s/%s/%s", m.opts.openVSXURL, url.PathEscape(id.Publisher), url.PathEscape(id.Name))

	ctx, cancel := context.WithTimeout(ctx, m.opts.queryTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set(utils.UserAgentHeader, utils.UserAgent)
	req.Header.Set(utils.AcceptHeader, utils.JSONContentType)

	resp, err := m.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrQueryTransport, err)
	}
	defer resp.Body.Close()

	// The registry answers 404 for unknown namespaces and names.
	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrExtensionNotFound, id)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s", ErrQueryStatus, resp.Status)
	}

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrQueryTransport, err)
	}

	var ext openVSXExtension
	if err := json.Unmarshal(bodyBytes, &ext); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrQueryParse, err)
	}

	if ext.Error != "" {
		return nil, fmt.Errorf("%w: %s: %s", ErrExtensionNotFound, id, ext.Error)
	}

	return &ext, nil
}
