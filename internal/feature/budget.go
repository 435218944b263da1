package feature

import "math"

// BudgetMatch scores how close a candidate's typical daily cost sits to the
// user's stated budget:
//
//	match = 1 - |userBudget - candidateBudget| / userBudget
//
// A zero or missing user budget scores 0 (worst case) instead of dividing by
// zero. Equal budgets score exactly 1.0. The score goes negative when the
// candidate costs more than twice the budget; downstream weighting keeps
// that as a penalty rather than clamping it away.
func BudgetMatch(userBudget, candidateBudget float64) float64 {
	if userBudget == 0 {
		return 0
	}
	return 1 - math.Abs(userBudget-candidateBudget)/userBudget
}
