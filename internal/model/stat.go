package model

// StatRecord is one joined statistic for a (prefecture, city, year, month)
// key. Records are built once by the join index and never mutated afterwards.
type StatRecord struct {
	Prefecture      string  `json:"prefecture"`
	City            string  `json:"city"`
	Year            string  `json:"year"`
	Month           string  `json:"month"`
	BuildingCount   float64 `json:"building_count"`
	FloorAreaTotal  float64 `json:"floor_area_total"`
	ResidenceArea   float64 `json:"residence_area"`
	EstimatedAmount float64 `json:"estimated_amount"`
}

// GeometryFeature is a boundary polygon with its joined indicator values.
// Indicator fields are pointers: nil means "no data", which renders
// differently from a true zero measurement.
type GeometryFeature struct {
	Prefecture      string   `json:"prefecture"`
	City            string   `json:"city"`
	Ring            Ring     `json:"ring"`
	BuildingCount   *float64 `json:"building_count"`
	FloorAreaTotal  *float64 `json:"floor_area_total"`
	EstimatedAmount *float64 `json:"estimated_amount"`
}
