package database

import (
	"database/sql"
	"fmt"
	"time"

	"offvsix/internal/models"
)

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRecord(row rowScanner) (*models.DownloadRecord, error) {
	var (
		rec          models.DownloadRecord
		marketplace  sql.NullString
		downloadedAt string
	)

	err := row.Scan(
		&rec.ID, &rec.Publisher, &rec.Name, &rec.Version,
		&rec.FilePath, &rec.FileSize, &marketplace, &downloadedAt,
	)
	if err != nil {
		return nil, err
	}

	rec.Marketplace = marketplace.String
	rec.DownloadedAt, err = time.Parse(time.RFC3339Nano, downloadedAt)
	if err != nil {
		return nil, fmt.Errorf("invalid downloaded_at %q for %s: %w", downloadedAt, rec.Identifier(), err)
	}

	return &rec, nil
}
