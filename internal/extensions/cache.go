package extensions

import (
	"fmt"
	"path/filepath"
	"strings"

	"offvsix/internal/models"
	"offvsix/internal/utils"
)

// ResolveArtifactPath returns <destination>/<publisher>.<name>-<version>.vsix,
// creating destination if needed. An empty destination means "extensions".
// The artifact name must be a single path element, so neither the version
// nor the identifier may carry a path separator.
func ResolveArtifactPath(destination string, id models.Identifier, version string) (string, error) {
	if version == "" || hasPathSeparator(version) {
		return "", fmt.Errorf("%w: %q", models.ErrInvalidVersion, version)
	}

	fileName := id.FileName(version)
	if hasPathSeparator(id.String()) || filepath.Base(fileName) != fileName {
		return "", fmt.Errorf("%w: %s", models.ErrInvalidIdentifier, id)
	}

	if destination == "" {
		destination = utils.DefaultDestination
	}

	if err := utils.NewFileUtils().EnsureDirectory(destination); err != nil {
		return "", fmt.Errorf("failed to create directory %s: %w", destination, err)
	}

	return filepath.Join(destination, fileName), nil
}

func hasPathSeparator(s string) bool {
	return strings.ContainsAny(s, `/\`)
}
