// Package store persists saved analysis areas and their analysis history.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/chiri-lab/atlas-cli/internal/model"
)

// Store defines persistence for saved areas and analysis snapshots. Drawn
// polygons stay in memory until a caller saves them; after that the geometry
// is identical, only the lifecycle differs.
type Store interface {
	// Areas
	SaveArea(ctx context.Context, name string, polygon model.Polygon) (*model.SavedArea, error)
	GetArea(ctx context.Context, id string) (*model.SavedArea, error)
	ListAreas(ctx context.Context) ([]model.SavedArea, error)
	DeleteArea(ctx context.Context, id string) error

	// Analysis history
	SaveAnalysis(ctx context.Context, areaID string, result model.AnalysisResult) (string, error)
	ListAnalyses(ctx context.Context, areaID string) ([]AnalysisSnapshot, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// AnalysisSnapshot is one persisted aggregation outcome for a saved area.
type AnalysisSnapshot struct {
	ID        string               `json:"id"`
	AreaID    string               `json:"area_id"`
	Result    model.AnalysisResult `json:"result"`
	CreatedAt time.Time            `json:"created_at"`
}

// NotFoundError reports a missing area or snapshot.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("store: %s %s not found", e.Kind, e.ID)
}
