package marketplace

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"offvsix/internal/models"
	"offvsix/internal/utils"
)

// Marketplace talks to the Visual Studio Marketplace gallery API.
type Marketplace struct {
	client *http.Client
	opts   options
}

func New(opts ...Option) (*Marketplace, error) {
	o := newOptions(opts)
	client, err := newHTTPClient(o)
	if err != nil {
		return nil, err
	}
	return &Marketplace{
		client: client,
		opts:   o,
	}, nil
}

func (m *Marketplace) GetName() string {
	return "Visual Studio Marketplace"
}

func (m *Marketplace) ResolveVersion(ctx context.Context, id models.Identifier, override string) (string, error) {
	response, err := m.queryExtension(ctx, id)
	if err != nil {
		return "", err
	}

	if override != "" {
		return override, nil
	}

	version, ok := response.latestVersion()
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrExtensionNotFound, id)
	}
	return version, nil
}

func (m *Marketplace) DownloadArtifact(ctx context.Context, id models.Identifier, version, filePath string) (int64, error) {
	return downloadFile(ctx, m.client, m.opts.downloadTimeout, m.assetURL(id, version), filePath)
}

type queryRequest struct {
	Filters []queryFilter `json:"filters"`
	Flags   int           `json:"flags"`
}

type queryFilter struct {
	Criteria []queryCriterion `json:"criteria"`
}

type queryCriterion struct {
	FilterType int    `json:"filterType"`
	Value      string `json:"value"`
}

// queryResponse is the raw extensionquery payload. Its levels are decoded one
// at a time, so a level that is missing, null, empty or of the wrong JSON
// type reads as "not found" rather than as a parse failure.
type queryResponse struct {
	body json.RawMessage
}

// member returns the named member of raw when raw is a JSON object.
func member(raw json.RawMessage, name string) (json.RawMessage, bool) {
	var object map[string]json.RawMessage
	if err := json.Unmarshal(raw, &object); err != nil {
		return nil, false
	}
	value, ok := object[name]
	return value, ok
}

// firstElement returns the first item of raw when raw is a non-empty JSON array.
func firstElement(raw json.RawMessage) (json.RawMessage, bool) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil || len(items) == 0 {
		return nil, false
	}
	return items[0], true
}

// firstOf walks raw.name[0].
func firstOf(raw json.RawMessage, name string) (json.RawMessage, bool) {
	list, ok := member(raw, name)
	if !ok {
		return nil, false
	}
	return firstElement(list)
}

// latestVersion walks results[0].extensions[0].versions[0].version. The
// gallery lists versions newest first.
func (r *queryResponse) latestVersion() (string, bool) {
	if r == nil {
		return "", false
	}
	result, ok := firstOf(r.body, "results")
	if !ok {
		return "", false
	}
	ext, ok := firstOf(result, "extensions")
	if !ok {
		return "", false
	}
	latest, ok := firstOf(ext, "versions")
	if !ok {
		return "", false
	}
	raw, ok := member(latest, "version")
	if !ok {
		return "", false
	}

	var version string
	if err := json.Unmarshal(raw, &version); err != nil || version == "" {
		return "", false
	}
	return version, true
}

func (m *Marketplace) queryExtension(ctx context.Context, id models.Identifier) (*queryResponse, error) {
	requestBody := queryRequest{
		Filters: []queryFilter{
			{
				Criteria: []queryCriterion{
					{
						FilterType: utils.FilterTypeExtensionName,
						Value:      id.String(),
					},
				},
			},
		},
		Flags: utils.QueryFlags,
	}

	jsonData, err := json.Marshal(requestBody)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, m.opts.queryTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.opts.queryURL, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set(utils.ContentTypeHeader, utils.JSONContentType)
	req.Header.Set(utils.AcceptHeader, utils.HTTPAPIVersion)
	req.Header.Set(utils.UserAgentHeader, utils.UserAgent)

	resp, err := m.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrQueryTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s", ErrQueryStatus, resp.Status)
	}

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrQueryTransport, err)
	}

	var body json.RawMessage
	if err := json.Unmarshal(bodyBytes, &body); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrQueryParse, err)
	}

	return &queryResponse{body: body}, nil
}

func (m *Marketplace) assetURL(id models.Identifier, version string) string {
	base := m.opts.assetBaseURL
	if base == "" {
		base = fmt.Sprintf(utils.GalleryAssetHostFmt, id.Publisher)
	}
	return fmt.Sprintf("%s/_apis/public/gallery/publisher/%s/extension/%s/%s/assetbyname/%s",
		base,
		url.PathEscape(id.Publisher),
		url.PathEscape(id.Name),
		url.PathEscape(version),
		utils.VSIXPackageAsset,
	)
}
