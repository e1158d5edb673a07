package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"

	"offvsix/internal/config"
	"offvsix/internal/extensions"
)

// newGallery fakes the marketplace: every extension exists at version 1.0.0
// except those of the "missing" publisher.
func newGallery(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			var query struct {
				Filters []struct {
					Criteria []struct {
						Value string `json:"value"`
					} `json:"criteria"`
				} `json:"filters"`
			}
			if err := json.NewDecoder(r.Body).Decode(&query); err != nil {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			if strings.HasPrefix(query.Filters[0].Criteria[0].Value, "missing.") {
				io.WriteString(w, `{"results":[{"extensions":[]}]}`)
				return
			}
			io.WriteString(w, `{"results":[{"extensions":[{"versions":[{"version":"1.0.0"}]}]}]}`)
			return
		}
		io.WriteString(w, "vsix")
	}))
	t.Cleanup(srv.Close)
	return srv
}

func resetFlags(cmds ...*cobra.Command) {
	reset := func(f *pflag.Flag) {
		f.Value.Set(f.DefValue)
		f.Changed = false
	}
	for _, c := range cmds {
		c.Flags().VisitAll(reset)
		c.PersistentFlags().VisitAll(reset)
	}
}

// setup resets global command and config state and writes a config file
// pointing at a fake gallery. It returns the config path and a scratch dir.
func setup(t *testing.T) (string, string) {
	t.Helper()

	viper.Reset()
	config.SetDefaults()
	bindRootFlags()
	bindServeFlags()
	resetFlags(rootCmd, historyCmd, deleteCmd, serveCmd)
	rootCmd.SilenceErrors = false
	t.Cleanup(viper.Reset)

	dir := t.TempDir()
	gallery := newGallery(t)
	cfgPath := filepath.Join(dir, "config.yaml")
	content := fmt.Sprintf(`
marketplace:
  query_url: %s/query
  asset_url: %s
history:
  path: %s
`, gallery.URL, gallery.URL, filepath.Join(dir, "history.db"))
	require.NoError(t, os.WriteFile(cfgPath, []byte(content), 0644))

	return cfgPath, dir
}

func execute(stdin string, args ...string) (string, error) {
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestNoArgumentsPrintsUsage(t *testing.T) {
	setup(t)

	out, err := execute("")
	require.NoError(t, err)
	require.Contains(t, out, usageMessage)
}

func TestDownloadSingleExtension(t *testing.T) {
	cfgPath, dir := setup(t)
	destination := filepath.Join(dir, "vsix")

	out, err := execute("", "--config", cfgPath, "--destination", destination, "ms-python.python")
	require.NoError(t, err)
	require.Contains(t, out, "Downloading ms-python.python")
	require.Contains(t, out, "Successfully downloaded to:")

	content, err := os.ReadFile(filepath.Join(destination, "ms-python.python-1.0.0.vsix"))
	require.NoError(t, err)
	require.Equal(t, "vsix", string(content))

	out, err = execute("", "--config", cfgPath, "--destination", destination, "ms-python.python")
	require.NoError(t, err)
	require.Contains(t, out, "already exists")
}

func TestDownloadVersionFlag(t *testing.T) {
	cfgPath, dir := setup(t)

	_, err := execute("", "--config", cfgPath, "--destination", dir, "--version", "0.9.0", "pub.ext")
	require.NoError(t, err)
	require.FileExists(t, filepath.Join(dir, "pub.ext-0.9.0.vsix"))
}

func TestDownloadNotFoundFails(t *testing.T) {
	cfgPath, dir := setup(t)

	out, err := execute("", "--config", cfgPath, "--destination", dir, "missing.ext")
	require.Error(t, err)
	require.Contains(t, out, "Extension not found: missing.ext")
	require.Equal(t, 1, strings.Count(out, "not found"))
	require.NotContains(t, out, "Error:")
}

func TestSetupErrorsArePrinted(t *testing.T) {
	cfgPath, dir := setup(t)

	out, err := execute("", "--config", cfgPath, "--destination", dir, "--marketplace", "bogus", "pub.ext")
	require.Error(t, err)
	require.Contains(t, out, "Error: error initializing marketplace")
}

func TestDownloadNoPrint(t *testing.T) {
	cfgPath, dir := setup(t)

	out, err := execute("", "--config", cfgPath, "--destination", dir, "--no-print", "pub.ext")
	require.NoError(t, err)
	require.Empty(t, out)
	require.FileExists(t, filepath.Join(dir, "pub.ext-1.0.0.vsix"))
}

func TestDownloadFromFile(t *testing.T) {
	cfgPath, dir := setup(t)
	list := filepath.Join(dir, "list.txt")
	require.NoError(t, os.WriteFile(list, []byte("badid\npub.ext\n"), 0644))

	out, err := execute("", "--config", cfgPath, "--destination", dir, "--file", list)
	require.EqualError(t, err, "1 of 2 extension(s) failed")
	require.Contains(t, out, "Invalid extension identifier: badid")
	require.Contains(t, out, "Processed 2 extension(s): 1 downloaded, 0 already present, 1 failed")
	require.NotContains(t, out, "Error:")
	require.FileExists(t, filepath.Join(dir, "pub.ext-1.0.0.vsix"))
}

func TestDownloadFromMissingFile(t *testing.T) {
	cfgPath, dir := setup(t)
	list := filepath.Join(dir, "nope.txt")

	out, err := execute("", "--config", cfgPath, "--file", list)
	require.ErrorIs(t, err, extensions.ErrListFileNotFound)
	require.Contains(t, out, "File not found: "+list)
	require.NotContains(t, out, "Error:")
}

func TestHistoryAndDelete(t *testing.T) {
	cfgPath, dir := setup(t)

	out, err := execute("", "--config", cfgPath, "history")
	require.NoError(t, err)
	require.Contains(t, out, "No downloads recorded.")

	_, err = execute("", "--config", cfgPath, "--destination", dir, "--history", "ms-python.python")
	require.NoError(t, err)
	artifact := filepath.Join(dir, "ms-python.python-1.0.0.vsix")
	require.FileExists(t, artifact)

	out, err = execute("", "--config", cfgPath, "history")
	require.NoError(t, err)
	require.Contains(t, out, "EXTENSION")
	require.Contains(t, out, "ms-python.python")
	require.Contains(t, out, "1.0.0")

	out, err = execute("n\n", "--config", cfgPath, "delete", "ms-python.python")
	require.NoError(t, err)
	require.Contains(t, out, "Deletion cancelled")
	require.FileExists(t, artifact)

	out, err = execute("", "--config", cfgPath, "delete", "ms-python.python", "--yes")
	require.NoError(t, err)
	require.Contains(t, out, "Deleted ms-python.python-1.0.0.vsix")
	require.NoFileExists(t, artifact)

	out, err = execute("", "--config", cfgPath, "history")
	require.NoError(t, err)
	require.Contains(t, out, "No downloads recorded.")
}

func TestDeleteUnknownExtension(t *testing.T) {
	cfgPath, _ := setup(t)

	_, err := execute("", "--config", cfgPath, "delete", "pub.ext", "--yes")
	require.Error(t, err)
}
