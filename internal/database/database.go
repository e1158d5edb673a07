package database

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"offvsix/internal/models"

	_ "modernc.org/sqlite"
)

var ErrNotFound = errors.New("download record not found")

const recordColumns = `id, publisher, name, version, file_path, file_size, marketplace, downloaded_at`

// timestampLayout is fixed width and always written in UTC, so downloaded_at
// sorts as text in time order.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Database is the download history: one row per publisher, name and version.
type Database struct {
	db *sql.DB
}

func New(dbPath string) (*Database, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Test connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := createTables(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("database migration error: %w", err)
	}

	return &Database{db: db}, nil
}

func createTables(db *sql.DB) error {
	createTableSQL := `
	CREATE TABLE IF NOT EXISTS downloads (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		publisher TEXT NOT NULL,
		name TEXT NOT NULL,
		version TEXT NOT NULL,
		file_path TEXT NOT NULL,
		file_size INTEGER NOT NULL,
		marketplace TEXT,
		downloaded_at TEXT NOT NULL,
		UNIQUE(publisher, name, version)
	);

	CREATE INDEX IF NOT EXISTS idx_downloads_publisher ON downloads(publisher);
	CREATE INDEX IF NOT EXISTS idx_downloads_downloaded_at ON downloads(downloaded_at);
	`

	_, err := db.Exec(createTableSQL)
	return err
}

func (d *Database) Close() error {
	return d.db.Close()
}

// RecordDownload inserts rec, replacing an earlier download of the same
// version.
func (d *Database) RecordDownload(rec *models.DownloadRecord) error {
	if rec.DownloadedAt.IsZero() {
		rec.DownloadedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO downloads (publisher, name, version, file_path, file_size, marketplace, downloaded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(publisher, name, version) DO UPDATE SET
			file_path = excluded.file_path,
			file_size = excluded.file_size,
			marketplace = excluded.marketplace,
			downloaded_at = excluded.downloaded_at
	`

	_, err := d.db.Exec(query,
		rec.Publisher, rec.Name, rec.Version, rec.FilePath, rec.FileSize, rec.Marketplace,
		rec.DownloadedAt.UTC().Format(timestampLayout),
	)
	if err != nil {
		return fmt.Errorf("failed to record download: %w", err)
	}
	return nil
}

// GetDownloads lists every record, optionally restricted to one publisher.
func (d *Database) GetDownloads(publisher string) ([]models.DownloadRecord, error) {
	query := `SELECT ` + recordColumns + ` FROM downloads`
	var args []interface{}
	if publisher != "" {
		query += ` WHERE publisher = ?`
		args = append(args, publisher)
	}
	query += ` ORDER BY publisher, name, downloaded_at DESC`

	return d.queryRecords(query, args...)
}

// GetExtensionDownloads lists the recorded versions of one extension, newest
// download first.
func (d *Database) GetExtensionDownloads(publisher, name string) ([]models.DownloadRecord, error) {
	query := `SELECT ` + recordColumns + ` FROM downloads
		WHERE publisher = ? AND name = ?
		ORDER BY downloaded_at DESC`

	return d.queryRecords(query, publisher, name)
}

func (d *Database) GetDownload(publisher, name, version string) (*models.DownloadRecord, error) {
	query := `SELECT ` + recordColumns + ` FROM downloads
		WHERE publisher = ? AND name = ? AND version = ?`

	rec, err := scanRecord(d.db.QueryRow(query, publisher, name, version))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s.%s-%s", ErrNotFound, publisher, name, version)
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (d *Database) DeleteDownload(id int64) error {
	result, err := d.db.Exec(`DELETE FROM downloads WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete download: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete download: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	return nil
}

func (d *Database) Count() (int64, error) {
	var count int64
	if err := d.db.QueryRow(`SELECT COUNT(*) FROM downloads`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count downloads: %w", err)
	}
	return count, nil
}

func (d *Database) queryRecords(query string, args ...interface{}) ([]models.DownloadRecord, error) {
	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query downloads: %w", err)
	}
	defer rows.Close()

	var records []models.DownloadRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating downloads: %w", err)
	}
	return records, nil
}
