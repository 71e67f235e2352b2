package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/chiri-lab/atlas-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS areas (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	polygon    TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS analyses (
	id         TEXT PRIMARY KEY,
	area_id    TEXT NOT NULL REFERENCES areas(id) ON DELETE CASCADE,
	result     TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_areas_name ON areas(name);
CREATE INDEX IF NOT EXISTS idx_analyses_area_id ON analyses(area_id);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveArea(ctx context.Context, name string, polygon model.Polygon) (*model.SavedArea, error) {
	if err := polygon.Validate(); err != nil {
		return nil, err
	}

	id := uuid.New().String()
	now := time.Now().UTC()

	polyJSON, err := json.Marshal(polygon)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: marshal polygon")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO areas (id, name, polygon, created_at) VALUES (?, ?, ?, ?)`,
		id, name, string(polyJSON), now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert area")
	}

	return &model.SavedArea{ID: id, Name: name, Polygon: polygon, CreatedAt: now}, nil
}

func (s *SQLiteStore) GetArea(ctx context.Context, id string) (*model.SavedArea, error) {
	var (
		area     model.SavedArea
		polyJSON string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, polygon, created_at FROM areas WHERE id = ?`, id,
	).Scan(&area.ID, &area.Name, &polyJSON, &area.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &NotFoundError{Kind: "area", ID: id}
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get area %s", id)
	}

	if err := json.Unmarshal([]byte(polyJSON), &area.Polygon); err != nil {
		return nil, eris.Wrapf(err, "sqlite: unmarshal polygon for area %s", id)
	}
	return &area, nil
}

func (s *SQLiteStore) ListAreas(ctx context.Context) ([]model.SavedArea, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, polygon, created_at FROM areas ORDER BY created_at DESC`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list areas")
	}
	defer rows.Close()

	var areas []model.SavedArea
	for rows.Next() {
		var (
			area     model.SavedArea
			polyJSON string
		)
		if err := rows.Scan(&area.ID, &area.Name, &polyJSON, &area.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan area row")
		}
		if err := json.Unmarshal([]byte(polyJSON), &area.Polygon); err != nil {
			return nil, eris.Wrapf(err, "sqlite: unmarshal polygon for area %s", area.ID)
		}
		areas = append(areas, area)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "sqlite: iterate area rows")
	}
	return areas, nil
}

func (s *SQLiteStore) DeleteArea(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM areas WHERE id = ?`, id)
	if err != nil {
		return eris.Wrapf(err, "sqlite: delete area %s", id)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "sqlite: rows affected")
	}
	if n == 0 {
		return &NotFoundError{Kind: "area", ID: id}
	}
	return nil
}

func (s *SQLiteStore) SaveAnalysis(ctx context.Context, areaID string, result model.AnalysisResult) (string, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	resultJSON, err := json.Marshal(result)
	if err != nil {
		return "", eris.Wrap(err, "sqlite: marshal analysis result")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO analyses (id, area_id, result, created_at) VALUES (?, ?, ?, ?)`,
		id, areaID, string(resultJSON), now,
	)
	if err != nil {
		return "", eris.Wrapf(err, "sqlite: insert analysis for area %s", areaID)
	}
	return id, nil
}

func (s *SQLiteStore) ListAnalyses(ctx context.Context, areaID string) ([]AnalysisSnapshot, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, area_id, result, created_at FROM analyses WHERE area_id = ? ORDER BY created_at DESC`,
		areaID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: list analyses for area %s", areaID)
	}
	defer rows.Close()

	var snaps []AnalysisSnapshot
	for rows.Next() {
		var (
			snap       AnalysisSnapshot
			resultJSON string
		)
		if err := rows.Scan(&snap.ID, &snap.AreaID, &resultJSON, &snap.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan analysis row")
		}
		if err := json.Unmarshal([]byte(resultJSON), &snap.Result); err != nil {
			return nil, eris.Wrapf(err, "sqlite: unmarshal analysis %s", snap.ID)
		}
		snaps = append(snaps, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "sqlite: iterate analysis rows")
	}
	return snaps, nil
}
