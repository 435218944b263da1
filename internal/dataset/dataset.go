// Package dataset loads and indexes the reference destination dataset.
package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/lakbaylabs/lakbay/pkg/models"
)

// Dataset is the in-memory reference destination table. It is loaded once at
// startup and read-only thereafter, so it is safe to share across concurrent
// request handlers without locking.
type Dataset struct {
	rows   []models.Destination
	byName map[string]int
	byFold map[string]int
}

// Load reads the destination CSV at path.
func Load(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	ds, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("read dataset %s: %w", path, err)
	}
	log.Info().Str("path", path).Int("destinations", ds.Len()).Msg("Reference dataset loaded")
	return ds, nil
}

// Read parses destination rows from CSV data. Header names are
// whitespace-trimmed before matching.
func Read(r io.Reader) (*Dataset, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(name)] = i
	}
	for _, required := range []string{models.ColDestination, models.ColDestinationType, models.ColTravelPurpose, models.ColTravelSeason, models.ColMunicipality, models.ColBudget} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("missing column %q", required)
		}
	}

	ds := &Dataset{
		byName: make(map[string]int),
		byFold: make(map[string]int),
	}
	field := func(rec []string, col string) string {
		idx, ok := cols[col]
		if !ok || idx >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[idx])
	}

	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		dest := models.Destination{
			Name:         field(rec, models.ColDestination),
			Type:         field(rec, models.ColDestinationType),
			Purpose:      field(rec, models.ColTravelPurpose),
			Season:       field(rec, models.ColTravelSeason),
			Municipality: field(rec, models.ColMunicipality),
			Budget:       field(rec, models.ColBudget),
			PackingTips:  field(rec, models.ColPackingTips),
		}
		if dest.Name == "" {
			continue
		}
		idx := len(ds.rows)
		ds.rows = append(ds.rows, dest)
		if _, exists := ds.byName[dest.Name]; !exists {
			ds.byName[dest.Name] = idx
		}
		folded := strings.ToLower(dest.Name)
		if _, exists := ds.byFold[folded]; !exists {
			ds.byFold[folded] = idx
		}
	}
	if len(ds.rows) == 0 {
		return nil, fmt.Errorf("dataset contains no destinations")
	}
	return ds, nil
}

// Len returns the number of destinations.
func (d *Dataset) Len() int { return len(d.rows) }

// All returns every destination row.
func (d *Dataset) All() []models.Destination { return d.rows }

// LookupExact finds a destination by trimmed exact name.
func (d *Dataset) LookupExact(name string) (*models.Destination, bool) {
	idx, ok := d.byName[strings.TrimSpace(name)]
	if !ok {
		return nil, false
	}
	return &d.rows[idx], true
}

// Lookup finds a destination by name: trimmed exact match first, then
// case-insensitive.
func (d *Dataset) Lookup(name string) (*models.Destination, bool) {
	if dest, ok := d.LookupExact(name); ok {
		return dest, true
	}
	idx, ok := d.byFold[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, false
	}
	return &d.rows[idx], true
}

// Names returns every destination name in row order.
func (d *Dataset) Names() []string {
	names := make([]string, len(d.rows))
	for i, row := range d.rows {
		names[i] = row.Name
	}
	return names
}

// Distinct returns the sorted distinct values of a categorical column. This
// is how closed category sets are derived from the data rather than
// hardcoded.
func (d *Dataset) Distinct(column string) []string {
	seen := make(map[string]struct{})
	var values []string
	for i := range d.rows {
		v := d.columnValue(&d.rows[i], column)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; !ok {
			seen[v] = struct{}{}
			values = append(values, v)
		}
	}
	sort.Strings(values)
	return values
}

func (d *Dataset) columnValue(row *models.Destination, column string) string {
	switch column {
	case models.ColDestination:
		return row.Name
	case models.ColDestinationType:
		return row.Type
	case models.ColTravelPurpose:
		return row.Purpose
	case models.ColTravelSeason:
		return row.Season
	case models.ColMunicipality:
		return row.Municipality
	case models.ColBudget:
		return row.Budget
	default:
		return ""
	}
}
