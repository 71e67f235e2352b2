package model

// ProjectPoint is one construction project record. The free-text fields are
// the source of truth; numeric values (floor area) are extracted permissively
// at aggregation time rather than at load time.
type ProjectPoint struct {
	Lat              float64 `json:"lat"`
	Lng              float64 `json:"lng"`
	Usage            string  `json:"usage"`
	ConstructionType string  `json:"construction_type"`
	FloorAreaText    string  `json:"floor_area_text"`
	PermitDate       string  `json:"permit_date,omitempty"`
	CompletionDate   string  `json:"completion_date,omitempty"`
}

// AnalysisResult is the outcome of aggregating a point dataset over a
// polygon. It is derived, recomputed on demand, and never persisted as-is;
// stores that keep history serialize a snapshot.
type AnalysisResult struct {
	Count                     int            `json:"count"`
	TotalArea                 float64        `json:"total_area"`
	AvgArea                   float64        `json:"avg_area"`
	UsageBreakdown            map[string]int `json:"usage_breakdown"`
	ConstructionTypeBreakdown map[string]int `json:"construction_type_breakdown"`
	MatchedPoints             []ProjectPoint `json:"matched_points"`
}
