package main

import (
	"math"
	"time"

	"lg/adaptive-tdee-go-api/expenditure"
	"lg/adaptive-tdee-go-api/store"
)

// withFormulaEstimate attaches the Mifflin-St Jeor basal rate and the
// activity-scaled expenditure computed from the stored profile alone. They are
// left out when the profile is incomplete. This is the number shown before the
// adaptive estimate has enough data.
func withFormulaEstimate(s store.GoalSettings, t expenditure.Tuning, today time.Time) goalSettingsResponse {
	resp := goalSettingsResponse{GoalSettings: s}
	bmr, tdee, ok := expenditure.FormulaEstimate(s.Profile(today), t)
	if !ok {
		return resp
	}
	b, d := int(math.Round(bmr)), int(math.Round(tdee))
	resp.FormulaBMR, resp.FormulaTDEE = &b, &d
	return resp
}
