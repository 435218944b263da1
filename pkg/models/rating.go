package models

import "fmt"

// Rating is a user satisfaction score pair, each on a 1-5 scale.
type Rating struct {
	SystemSatisfactionScore    int `json:"system_satisfaction_score"`
	AnalyticsSatisfactionScore int `json:"analytics_satisfaction_score"`
}

// Validate checks both scores are within the 1-5 range.
func (r Rating) Validate() error {
	if r.SystemSatisfactionScore < 1 || r.SystemSatisfactionScore > 5 {
		return fmt.Errorf("system satisfaction score must be between 1 and 5, got %d", r.SystemSatisfactionScore)
	}
	if r.AnalyticsSatisfactionScore < 1 || r.AnalyticsSatisfactionScore > 5 {
		return fmt.Errorf("analytics satisfaction score must be between 1 and 5, got %d", r.AnalyticsSatisfactionScore)
	}
	return nil
}
