package models

// Dataset column names. These double as the vocabulary field keys so that the
// encoder and the fitted classifier can never disagree about which column a
// code belongs to. The odd lowercase "season" follows the source dataset.
const (
	ColDestination     = "Destination"
	ColDestinationType = "Destination_Type"
	ColTravelPurpose   = "Travel_Purpose"
	ColTravelSeason    = "Travel_season"
	ColMunicipality    = "Municipality"
	ColBudget          = "Budget"
	ColPackingTips     = "Packing Tips"
)

// CategoricalColumns are the dataset columns that get a fitted vocabulary,
// in feature-vector order.
var CategoricalColumns = []string{
	ColDestinationType,
	ColTravelPurpose,
	ColTravelSeason,
	ColMunicipality,
}

// Destination is one row of the reference destination dataset. Budget is kept
// in its raw display form (may contain thousands separators); use BudgetValue
// for the numeric daily cost.
type Destination struct {
	Name         string `json:"destination"`
	Type         string `json:"destination_type"`
	Purpose      string `json:"travel_purpose"`
	Season       string `json:"travel_season"`
	Municipality string `json:"municipality"`
	Budget       string `json:"budget"`
	PackingTips  string `json:"packing_tips"`
}

// BudgetValue returns the numeric daily cost of the destination.
func (d *Destination) BudgetValue() (float64, error) {
	return ParseAmount(d.Budget)
}
