package dataset

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lakbaylabs/lakbay/pkg/models"
)

const sampleCSV = `Destination,Destination_Type,Travel_Purpose,Travel_season,Municipality,Budget,Packing Tips
Dahican Surf Resort,Beach,Relaxation,Summer (March-May),Mati City,"4,800",Bring sunscreen and a rash guard.
Mount Hamiguitan Range,Mountain,Adventure,Summer (March-May),San Isidro,"6,500",Pack trekking shoes.
Subangan Museum,Cultural,Cultural Discovery,Holiday Season (November-February),Mati City,"1,200",
`

func TestRead(t *testing.T) {
	ds, err := Read(strings.NewReader(sampleCSV))
	require.NoError(t, err)

	assert.Equal(t, 3, ds.Len())
	assert.Equal(t, []string{"Dahican Surf Resort", "Mount Hamiguitan Range", "Subangan Museum"}, ds.Names())

	row, ok := ds.LookupExact("Dahican Surf Resort")
	require.True(t, ok)
	assert.Equal(t, "Beach", row.Type)
	assert.Equal(t, "Mati City", row.Municipality)
	assert.Equal(t, "4,800", row.Budget)

	budget, err := row.BudgetValue()
	require.NoError(t, err)
	assert.Equal(t, 4800.0, budget)
}

func TestRead_MissingColumn(t *testing.T) {
	csv := "Destination,Budget\nDahican Surf Resort,4800\n"
	_, err := Read(strings.NewReader(csv))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing column")
}

func TestRead_Empty(t *testing.T) {
	csv := "Destination,Destination_Type,Travel_Purpose,Travel_season,Municipality,Budget\n"
	_, err := Read(strings.NewReader(csv))
	assert.Error(t, err)
}

func TestLookup_CaseInsensitive(t *testing.T) {
	ds, err := Read(strings.NewReader(sampleCSV))
	require.NoError(t, err)

	row, ok := ds.Lookup("dahican surf resort")
	require.True(t, ok)
	assert.Equal(t, "Dahican Surf Resort", row.Name)

	_, ok = ds.Lookup("Atlantis")
	assert.False(t, ok)

	// Exact lookup stays case-sensitive.
	_, ok = ds.LookupExact("dahican surf resort")
	assert.False(t, ok)
}

func TestDistinct(t *testing.T) {
	ds, err := Read(strings.NewReader(sampleCSV))
	require.NoError(t, err)

	assert.Equal(t, []string{"Beach", "Cultural", "Mountain"}, ds.Distinct(models.ColDestinationType))
	assert.Equal(t, []string{"Mati City", "San Isidro"}, ds.Distinct(models.ColMunicipality))
	assert.Equal(t,
		[]string{"Holiday Season (November-February)", "Summer (March-May)"},
		ds.Distinct(models.ColTravelSeason))
}
