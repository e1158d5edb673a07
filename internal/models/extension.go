package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrInvalidIdentifier = errors.New("invalid extension identifier")
	ErrInvalidVersion    = errors.New("invalid extension version")
)

// Identifier is a marketplace extension ID split into its publisher and
// extension name. The name may itself contain dots.
type Identifier struct {
	Publisher string `json:"publisher"`
	Name      string `json:"name"`
}

func ParseIdentifier(raw string) (Identifier, error) {
	ext := strings.TrimSpace(raw)
	publisher, name, found := strings.Cut(ext, ".")
	if !found || publisher == "" || name == "" {
		return Identifier{}, fmt.Errorf("%w: %s", ErrInvalidIdentifier, ext)
	}
	return Identifier{Publisher: publisher, Name: name}, nil
}

func (id Identifier) String() string {
	return id.Publisher + "." + id.Name
}

// FileName is the artifact file name for a given version.
func (id Identifier) FileName(version string) string {
	return fmt.Sprintf("%s.%s-%s.vsix", id.Publisher, id.Name, version)
}

// DownloadRecord is a downloaded artifact as kept in the history database.
type DownloadRecord struct {
	ID           int64     `json:"id"`
	Publisher    string    `json:"publisher"`
	Name         string    `json:"name"`
	Version      string    `json:"version"`
	FilePath     string    `json:"filePath"`
	FileSize     int64     `json:"fileSize"`
	Marketplace  string    `json:"marketplace"`
	DownloadedAt time.Time `json:"downloadedAt"`
}

func (r DownloadRecord) Identifier() Identifier {
	return Identifier{Publisher: r.Publisher, Name: r.Name}
}
