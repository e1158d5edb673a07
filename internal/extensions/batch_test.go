package extensions

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"offvsix/internal/models"
	"offvsix/internal/utils"
)

func writeList(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "extensions.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestReadExtensionList(t *testing.T) {
	path := writeList(t, "ms-python.python\n\n   \n# pinned below\n  golang.go  \r\nredhat.vscode-yaml")

	list, err := ReadExtensionList(path)
	require.NoError(t, err)
	require.Equal(t, []string{"ms-python.python", "golang.go", "redhat.vscode-yaml"}, list)
}

func TestDownloadFromFileContinuesPastFailures(t *testing.T) {
	provider := &fakeProvider{versions: map[string]string{"pub.ext": "1.0.0"}, content: "payload"}
	m, out := newTestManager(provider)
	destination := t.TempDir()
	path := writeList(t, "badid\n\npub.ext\n")

	summary, err := m.DownloadFromFile(context.Background(), path, Request{Destination: destination})
	require.NoError(t, err)
	require.Len(t, summary.Results, 2)

	require.Equal(t, "badid", summary.Results[0].Extension)
	require.Equal(t, OutcomeFailed, summary.Results[0].Outcome)
	require.ErrorIs(t, summary.Results[0].Err, models.ErrInvalidIdentifier)

	require.Equal(t, OutcomeDownloaded, summary.Results[1].Outcome)
	require.FileExists(t, filepath.Join(destination, "pub.ext-1.0.0.vsix"))

	require.Equal(t, 1, summary.Downloaded)
	require.Equal(t, 1, summary.Failed)
	require.True(t, summary.HasFailures())
	require.Equal(t, []string{"pub.ext"}, provider.queries)

	text := out.String()
	invalid := strings.Index(text, "Invalid extension identifier: badid")
	downloading := strings.Index(text, "Downloading pub.ext")
	require.GreaterOrEqual(t, invalid, 0)
	require.Greater(t, downloading, invalid)
}

func TestDownloadFromFileSharesOptions(t *testing.T) {
	provider := &fakeProvider{versions: map[string]string{}, content: "payload"}
	m, _ := newTestManager(provider)
	destination := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(destination, "a.one-9.9.9.vsix"), []byte("old"), 0644))
	path := writeList(t, "a.one\nb.two\n")

	summary, err := m.DownloadFromFile(context.Background(), path, Request{Version: "9.9.9", Destination: destination})
	require.NoError(t, err)
	require.Equal(t, 1, summary.Cached)
	require.Equal(t, 1, summary.Downloaded)
	require.False(t, summary.HasFailures())
	require.Equal(t, []string{"b.two-9.9.9.vsix"}, provider.downloads)
}

func TestDownloadFromFileMissingFile(t *testing.T) {
	provider := &fakeProvider{}
	var out bytes.Buffer
	m := New(provider, utils.NewLogger(&out, false))
	path := filepath.Join(t.TempDir(), "missing.txt")

	_, err := m.DownloadFromFile(context.Background(), path, Request{})
	require.ErrorIs(t, err, ErrListFileNotFound)
	require.Contains(t, out.String(), "File not found: "+path)
	require.Empty(t, provider.queries)
}
