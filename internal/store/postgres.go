package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/chiri-lab/atlas-cli/internal/db"
	"github.com/chiri-lab/atlas-cli/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

// NewPostgresWithPool wraps an existing pool; used by tests with pgxmock.
func NewPostgresWithPool(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool, closeFn: pool.Close}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS areas (
	id         TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	name       TEXT NOT NULL,
	polygon    JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS analyses (
	id         TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	area_id    TEXT NOT NULL REFERENCES areas(id) ON DELETE CASCADE,
	result     JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_areas_name ON areas(name);
CREATE INDEX IF NOT EXISTS idx_analyses_area_id ON analyses(area_id);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) SaveArea(ctx context.Context, name string, polygon model.Polygon) (*model.SavedArea, error) {
	if err := polygon.Validate(); err != nil {
		return nil, err
	}

	id := uuid.New().String()
	now := time.Now().UTC()

	polyJSON, err := json.Marshal(polygon)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: marshal polygon")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO areas (id, name, polygon, created_at) VALUES ($1, $2, $3, $4)`,
		id, name, polyJSON, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert area")
	}

	return &model.SavedArea{ID: id, Name: name, Polygon: polygon, CreatedAt: now}, nil
}

func (s *PostgresStore) GetArea(ctx context.Context, id string) (*model.SavedArea, error) {
	var (
		area     model.SavedArea
		polyJSON []byte
	)
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, polygon, created_at FROM areas WHERE id = $1`, id,
	).Scan(&area.ID, &area.Name, &polyJSON, &area.CreatedAt)
	if err != nil {
		if eris.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Kind: "area", ID: id}
		}
		return nil, eris.Wrapf(err, "postgres: get area %s", id)
	}

	if err := json.Unmarshal(polyJSON, &area.Polygon); err != nil {
		return nil, eris.Wrapf(err, "postgres: unmarshal polygon for area %s", id)
	}
	return &area, nil
}

func (s *PostgresStore) ListAreas(ctx context.Context) ([]model.SavedArea, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, polygon, created_at FROM areas ORDER BY created_at DESC`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list areas")
	}
	defer rows.Close()

	var areas []model.SavedArea
	for rows.Next() {
		var (
			area     model.SavedArea
			polyJSON []byte
		)
		if err := rows.Scan(&area.ID, &area.Name, &polyJSON, &area.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan area row")
		}
		if err := json.Unmarshal(polyJSON, &area.Polygon); err != nil {
			return nil, eris.Wrapf(err, "postgres: unmarshal polygon for area %s", area.ID)
		}
		areas = append(areas, area)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "postgres: iterate area rows")
	}
	return areas, nil
}

func (s *PostgresStore) DeleteArea(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM areas WHERE id = $1`, id)
	if err != nil {
		return eris.Wrapf(err, "postgres: delete area %s", id)
	}
	if tag.RowsAffected() == 0 {
		return &NotFoundError{Kind: "area", ID: id}
	}
	return nil
}

func (s *PostgresStore) SaveAnalysis(ctx context.Context, areaID string, result model.AnalysisResult) (string, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	resultJSON, err := json.Marshal(result)
	if err != nil {
		return "", eris.Wrap(err, "postgres: marshal analysis result")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO analyses (id, area_id, result, created_at) VALUES ($1, $2, $3, $4)`,
		id, areaID, resultJSON, now,
	)
	if err != nil {
		return "", eris.Wrapf(err, "postgres: insert analysis for area %s", areaID)
	}
	return id, nil
}

func (s *PostgresStore) ListAnalyses(ctx context.Context, areaID string) ([]AnalysisSnapshot, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, area_id, result, created_at FROM analyses WHERE area_id = $1 ORDER BY created_at DESC`,
		areaID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: list analyses for area %s", areaID)
	}
	defer rows.Close()

	var snaps []AnalysisSnapshot
	for rows.Next() {
		var (
			snap       AnalysisSnapshot
			resultJSON []byte
		)
		if err := rows.Scan(&snap.ID, &snap.AreaID, &resultJSON, &snap.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan analysis row")
		}
		if err := json.Unmarshal(resultJSON, &snap.Result); err != nil {
			return nil, eris.Wrapf(err, "postgres: unmarshal analysis %s", snap.ID)
		}
		snaps = append(snaps, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "postgres: iterate analysis rows")
	}
	return snaps, nil
}
