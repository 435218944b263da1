// Package models contains domain models for lakbay.
package models

import (
	"strconv"
	"strings"
)

// GroupType represents the composition of the travelling party.
type GroupType string

const (
	GroupSolo    GroupType = "Solo"
	GroupCouple  GroupType = "Couple"
	GroupFamily  GroupType = "Family"
	GroupFriends GroupType = "Friends"
)

// Preference is a traveller's stated preference set, as received from the
// client. Budget may arrive as text with thousands separators; categorical
// fields are matched against the fitted vocabulary, not these raw strings.
type Preference struct {
	Budget          string    `json:"budget"`
	DestinationType string    `json:"destination_type"`
	TravelPurpose   string    `json:"travel_purpose"`
	TravelSeason    string    `json:"travel_season"`
	Municipality    string    `json:"municipality"`
	GroupType       GroupType `json:"group_type,omitempty"`
	NumberOfPeople  int       `json:"number_of_people,omitempty"`
	TripDuration    int       `json:"trip_duration,omitempty"`
}

// BudgetValue parses the raw budget string, stripping thousands separators.
func (p *Preference) BudgetValue() (float64, error) {
	return ParseAmount(p.Budget)
}

// ParseAmount converts a free-form currency amount to a float. Thousands
// separators and surrounding whitespace are stripped before parsing.
func ParseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", "")
	return strconv.ParseFloat(s, 64)
}
