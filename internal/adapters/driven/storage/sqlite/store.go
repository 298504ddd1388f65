package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/lis186/smart-tra-mcp-server/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/lis186/smart-tra-mcp-server/internal/core/domain"
	"github.com/lis186/smart-tra-mcp-server/internal/core/ports/driven"
)

// Dataset keys in snapshot_meta.
const (
	datasetStations = "stations"
	datasetTrains   = "train_catalog"
)

// Store is the SQLite-backed snapshot cache.
type Store struct {
	db   *sql.DB
	path string
}

var _ driven.StationCacheStore = (*Store)(nil)

// NewStore creates a SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.smart-tra/data/cache.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".smart-tra", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "cache.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}

		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}

		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// SaveStations replaces the cached station list wholesale.
func (s *Store) SaveStations(ctx context.Context, stations []domain.StationRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, "DELETE FROM stations"); err != nil {
		return fmt.Errorf("clearing stations: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO stations (id, name_local, name_romanized, address, lat, lon)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, st := range stations {
		var lat, lon any
		if st.Position != nil {
			lat, lon = st.Position.Lat, st.Position.Lon
		}
		if _, err := stmt.ExecContext(ctx, st.ID, st.NameLocal, st.NameRomanized, st.Address, lat, lon); err != nil {
			return fmt.Errorf("saving station %s: %w", st.ID, err)
		}
	}

	if err := touchDataset(ctx, tx, datasetStations); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// LoadStations returns the cached station list, or domain.ErrNotFound
// when no snapshot was ever saved.
func (s *Store) LoadStations(ctx context.Context) ([]domain.StationRecord, error) {
	if err := s.requireDataset(ctx, datasetStations); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name_local, name_romanized, address, lat, lon
		FROM stations ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("querying stations: %w", err)
	}
	defer rows.Close()

	var stations []domain.StationRecord //nolint:prealloc // size unknown from query
	for rows.Next() {
		var st domain.StationRecord
		var lat, lon sql.NullFloat64
		if err := rows.Scan(&st.ID, &st.NameLocal, &st.NameRomanized, &st.Address, &lat, &lon); err != nil {
			return nil, fmt.Errorf("scanning station: %w", err)
		}
		if lat.Valid && lon.Valid {
			st.Position = &domain.Coordinates{Lat: lat.Float64, Lon: lon.Float64}
		}
		stations = append(stations, st)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating stations: %w", err)
	}
	return stations, nil
}

// SaveTrainCatalog replaces the cached train catalog wholesale.
func (s *Store) SaveTrainCatalog(ctx context.Context, trains []domain.TrainCandidate) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, "DELETE FROM train_catalog"); err != nil {
		return fmt.Errorf("clearing train catalog: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO train_catalog (train_no, train_type_code, train_type_name)
		VALUES (?, ?, ?)
		ON CONFLICT(train_no) DO UPDATE SET
			train_type_code = excluded.train_type_code,
			train_type_name = excluded.train_type_name
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, tr := range trains {
		if _, err := stmt.ExecContext(ctx, tr.TrainNo, tr.TrainTypeCode, tr.TrainTypeName); err != nil {
			return fmt.Errorf("saving train %s: %w", tr.TrainNo, err)
		}
	}

	if err := touchDataset(ctx, tx, datasetTrains); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// LoadTrainCatalog returns the cached train catalog, or
// domain.ErrNotFound when no snapshot was ever saved.
func (s *Store) LoadTrainCatalog(ctx context.Context) ([]domain.TrainCandidate, error) {
	if err := s.requireDataset(ctx, datasetTrains); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT train_no, train_type_code, train_type_name
		FROM train_catalog ORDER BY train_no
	`)
	if err != nil {
		return nil, fmt.Errorf("querying train catalog: %w", err)
	}
	defer rows.Close()

	var trains []domain.TrainCandidate //nolint:prealloc // size unknown from query
	for rows.Next() {
		var tr domain.TrainCandidate
		if err := rows.Scan(&tr.TrainNo, &tr.TrainTypeCode, &tr.TrainTypeName); err != nil {
			return nil, fmt.Errorf("scanning train: %w", err)
		}
		trains = append(trains, tr)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating train catalog: %w", err)
	}
	return trains, nil
}

// RefreshedAt returns when a dataset snapshot was last saved, or
// domain.ErrNotFound when it never was.
func (s *Store) RefreshedAt(ctx context.Context, dataset string) (time.Time, error) {
	var at time.Time
	err := s.db.QueryRowContext(ctx,
		"SELECT refreshed_at FROM snapshot_meta WHERE dataset = ?", dataset).Scan(&at)
	if err == sql.ErrNoRows {
		return time.Time{}, domain.ErrNotFound
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("querying snapshot meta: %w", err)
	}
	return at, nil
}

// requireDataset distinguishes "never cached" from "cached empty".
func (s *Store) requireDataset(ctx context.Context, dataset string) error {
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM snapshot_meta WHERE dataset = ?", dataset).Scan(&count)
	if err != nil {
		return fmt.Errorf("checking snapshot meta: %w", err)
	}
	if count == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// touchDataset records a snapshot refresh inside the save transaction.
func touchDataset(ctx context.Context, tx *sql.Tx, dataset string) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO snapshot_meta (dataset, refreshed_at)
		VALUES (?, ?)
		ON CONFLICT(dataset) DO UPDATE SET refreshed_at = excluded.refreshed_at
	`, dataset, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("recording snapshot refresh: %w", err)
	}
	return nil
}
