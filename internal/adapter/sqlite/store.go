package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/couchcryptid/parking-schedule-service/internal/domain"
	_ "modernc.org/sqlite" // SQLite driver
)

// Store persists every refreshed snapshot to a SQLite table and reads it back
// for warm starts. It implements pipeline.Loader and pipeline.Extractor.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and ensures the schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.Init(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize database: %w", err)
	}
	return s, nil
}

// Init creates the locations table and its indexes.
func (s *Store) Init() error {
	schema := `
	CREATE TABLE IF NOT EXISTS locations (
		location_id INTEGER PRIMARY KEY,
		latitude REAL NOT NULL,
		longitude REAL NOT NULL,
		parking_type TEXT NOT NULL,
		time_limit TEXT,
		time_limit_violation INTEGER NOT NULL,
		zone_type_violation INTEGER NOT NULL,
		rules TEXT NOT NULL,
		record TEXT NOT NULL,
		refreshed_at TIMESTAMP NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_locations_parking_type ON locations(parking_type);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Name identifies the sink in logs and metrics.
func (s *Store) Name() string { return "sqlite" }

// Load replaces the table contents with snap in a single transaction.
func (s *Store) Load(ctx context.Context, snap *domain.Snapshot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.ExecContext(ctx, `DELETE FROM locations`); err != nil {
		return fmt.Errorf("clear locations: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO locations
		(location_id, latitude, longitude, parking_type, time_limit, time_limit_violation, zone_type_violation, rules, record, refreshed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare statement: %w", err)
	}
	defer stmt.Close()

	refreshedAt := snap.LoadedAt().UTC().Format(time.RFC3339)
	for _, spot := range snap.Spots() {
		rules, err := json.Marshal(spot.Rules)
		if err != nil {
			return fmt.Errorf("encode rules of location %d: %w", spot.Location.ID, err)
		}
		record, err := json.Marshal(spot.Record)
		if err != nil {
			return fmt.Errorf("encode record of location %d: %w", spot.Location.ID, err)
		}

		var timeLimit sql.NullString
		if spot.Classification.TimeLimit != nil {
			timeLimit = sql.NullString{String: *spot.Classification.TimeLimit, Valid: true}
		}

		_, err = stmt.ExecContext(ctx,
			spot.Location.ID, spot.Location.Lat, spot.Location.Lon,
			string(spot.Classification.ParkingType), timeLimit,
			spot.Violations.TimeLimit, spot.Violations.ZoneType,
			string(rules), string(record), refreshedAt,
		)
		if err != nil {
			return fmt.Errorf("insert location %d: %w", spot.Location.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Extract returns the raw records of the last persisted snapshot, ordered by
// location id.
func (s *Store) Extract(ctx context.Context) ([]domain.RawRecord, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT record FROM locations ORDER BY location_id`)
	if err != nil {
		return nil, fmt.Errorf("query locations: %w", err)
	}
	defer rows.Close()

	var records []domain.RawRecord
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		var rec domain.RawRecord
		if err := json.Unmarshal([]byte(data), &rec); err != nil {
			return nil, fmt.Errorf("decode stored record: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// CountByParkingType summarizes the persisted snapshot.
func (s *Store) CountByParkingType(ctx context.Context) (map[domain.ParkingType]int, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT parking_type, COUNT(*)
		FROM locations
		GROUP BY parking_type
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[domain.ParkingType]int)
	for rows.Next() {
		var pt string
		var n int
		if err := rows.Scan(&pt, &n); err != nil {
			return nil, err
		}
		counts[domain.ParkingType(pt)] = n
	}
	return counts, rows.Err()
}

func (s *Store) Close() error {
	return s.db.Close()
}
