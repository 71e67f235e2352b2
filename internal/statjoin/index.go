// Package statjoin builds the keyed statistic index and joins it onto
// geometry features. It is the single join point between the two
// independently sourced datasets: administrative boundaries on one side and
// the statistical table on the other.
package statjoin

import (
	"go.uber.org/zap"

	"github.com/chiri-lab/atlas-cli/internal/model"
	"github.com/chiri-lab/atlas-cli/internal/normalize"
	"github.com/chiri-lab/atlas-cli/internal/unitcost"
)

// Row is one raw statistic row as produced by an external decoder.
type Row struct {
	Prefecture     string
	City           string
	Year           string
	Month          string
	BuildingCount  float64
	FloorAreaTotal float64
	ResidenceArea  float64
}

// Index is a keyed map of joined statistic records. Build it once per
// classification cycle; it is read-only afterwards and safe for concurrent
// lookups.
type Index struct {
	records    map[string]model.StatRecord
	dropped    int
	duplicates int
}

// Build iterates raw rows and indexes a StatRecord per join key. Rows missing
// any of prefecture, city, year, or month are dropped, not erred; the drop
// count is kept because the loss is otherwise invisible. Duplicate keys keep
// the last row seen (documented tie-break) and are counted.
//
// The resolver must be fully populated before Build runs: estimated amounts
// are computed here, at build time.
func Build(rows []Row, resolver *unitcost.Resolver) *Index {
	idx := &Index{records: make(map[string]model.StatRecord, len(rows))}
	unknownPrefs := map[string]bool{}

	for _, row := range rows {
		pref := normalize.Normalize(row.Prefecture)
		city := normalize.Normalize(row.City)
		year := normalize.Normalize(row.Year)
		month := normalize.Normalize(row.Month)
		if pref == "" || city == "" || year == "" || month == "" {
			idx.dropped++
			continue
		}

		if !resolver.Known(pref) && !unknownPrefs[pref] {
			unknownPrefs[pref] = true
			zap.L().Warn("statjoin: prefecture missing from unit cost table, estimated amounts zeroed",
				zap.String("prefecture", pref),
			)
		}

		key := normalize.BuildKey(pref, city, year, month)
		if _, exists := idx.records[key]; exists {
			idx.duplicates++
		}
		idx.records[key] = model.StatRecord{
			Prefecture:      pref,
			City:            city,
			Year:            year,
			Month:           month,
			BuildingCount:   row.BuildingCount,
			FloorAreaTotal:  row.FloorAreaTotal,
			ResidenceArea:   row.ResidenceArea,
			EstimatedAmount: row.ResidenceArea * resolver.Lookup(pref),
		}
	}

	if idx.dropped > 0 {
		zap.L().Info("statjoin: dropped rows with missing key fields", zap.Int("dropped", idx.dropped))
	}
	return idx
}

// Lookup returns the record for a place and period, if any.
func (idx *Index) Lookup(prefecture, city, year, month string) (model.StatRecord, bool) {
	rec, ok := idx.records[normalize.BuildKey(prefecture, city, year, month)]
	return rec, ok
}

// Len returns the number of indexed records.
func (idx *Index) Len() int { return len(idx.records) }

// Dropped returns the number of rows dropped for missing key fields.
func (idx *Index) Dropped() int { return idx.dropped }

// Duplicates returns the number of rows that overwrote an earlier row with
// the same join key.
func (idx *Index) Duplicates() int { return idx.duplicates }

// Attach joins indexed statistics onto geometry features for one period and
// returns new enriched features; the input slice is not modified. Features
// with no matching statistic get nil indicators ("no data") rather than
// aborting the batch. Attaching the same index and period twice yields
// identical results.
func Attach(features []model.GeometryFeature, idx *Index, year, month string) []model.GeometryFeature {
	out := make([]model.GeometryFeature, len(features))
	for i, f := range features {
		enriched := f
		enriched.BuildingCount = nil
		enriched.FloorAreaTotal = nil
		enriched.EstimatedAmount = nil

		if rec, ok := idx.Lookup(f.Prefecture, f.City, year, month); ok {
			bc, fa, ea := rec.BuildingCount, rec.FloorAreaTotal, rec.EstimatedAmount
			enriched.BuildingCount = &bc
			enriched.FloorAreaTotal = &fa
			enriched.EstimatedAmount = &ea
		}
		out[i] = enriched
	}
	return out
}
