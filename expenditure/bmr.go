package expenditure

import (
	"math"
	"time"
)

// ActivityMultipliers maps activity level strings to their multiplier on
// basal rate. It is the single source of truth for valid activity levels and
// is also used for input validation by the settings API.
var ActivityMultipliers = map[string]float64{
	"sedentary":   1.2,
	"light":       1.375,
	"moderate":    1.55,
	"active":      1.725,
	"very_active": 1.9,
}

// MifflinStJeor returns the basal metabolic rate for the given body, using a
// different constant for male vs female.
func MifflinStJeor(sex string, ageYears int, heightCM, weightKG float64) float64 {
	bmr := 10*weightKG + 6.25*heightCM - 5*float64(ageYears)
	if sex == "male" {
		return bmr + 5
	}
	return bmr - 161
}

// AgeOn returns the age in whole years on the given day. ok is false for a
// birth date in the future or more than 130 years back.
func AgeOn(dob, on time.Time) (int, bool) {
	age := on.Year() - dob.Year()
	if on.Before(dob.AddDate(age, 0, 0)) {
		age--
	}
	if age < 0 || age > 130 {
		return 0, false
	}
	return age, true
}

// resolvedProfile is UserGoalProfile with every default applied.
type resolvedProfile struct {
	Goal           GoalType
	WeeklyRateKG   float64
	ActivityFactor float64
	Body           *body
	WeightKG       float64
	TargetWeightKG float64
	HasTarget      bool
}

// body carries what the basal-rate formula needs besides current weight.
type body struct {
	Sex      string
	AgeYears int
	HeightCM float64
}

// resolveProfile applies defaults to an optional profile. A missing profile
// behaves as maintain with the default activity factor.
func resolveProfile(p *UserGoalProfile, t Tuning) resolvedProfile {
	r := resolvedProfile{Goal: GoalMaintain, ActivityFactor: t.DefaultActivityFactor}
	if p == nil {
		return r
	}
	if p.GoalType.Valid() {
		r.Goal = p.GoalType
	}
	if r.Goal != GoalMaintain && isFinite(p.WeeklyRateKG) {
		r.WeeklyRateKG = math.Abs(p.WeeklyRateKG)
	}

	switch {
	case p.ActivityFactor != nil && *p.ActivityFactor >= 1 && *p.ActivityFactor <= 2.5:
		r.ActivityFactor = *p.ActivityFactor
	case p.ActivityLevel != nil:
		if m, ok := ActivityMultipliers[*p.ActivityLevel]; ok {
			r.ActivityFactor = m
		}
	}

	if p.Sex != nil && p.AgeYears != nil && p.HeightCM != nil && *p.HeightCM > 0 &&
		*p.AgeYears >= 0 && *p.AgeYears <= 130 {
		r.Body = &body{Sex: *p.Sex, AgeYears: *p.AgeYears, HeightCM: *p.HeightCM}
	}
	if p.WeightKG != nil && *p.WeightKG > 0 {
		r.WeightKG = *p.WeightKG
	}
	if p.TargetWeightKG != nil && *p.TargetWeightKG > 0 {
		r.TargetWeightKG = *p.TargetWeightKG
		r.HasTarget = true
	}
	return r
}

// priorExpenditure is the physiological anchor: basal rate times activity
// factor. A basal rate reported alongside a weight reading wins over the
// formula. Returns PriorNone when neither is available.
func priorExpenditure(reportedBMR *float64, p resolvedProfile, currentKG float64) (float64, PriorSource) {
	if reportedBMR != nil && *reportedBMR > 0 {
		return *reportedBMR * p.ActivityFactor, PriorReportedBMR
	}
	if p.Body == nil {
		return 0, PriorNone
	}
	w := currentKG
	if !(w > 0) {
		w = p.WeightKG
	}
	if !(w > 0) {
		return 0, PriorNone
	}
	bmr := MifflinStJeor(p.Body.Sex, p.Body.AgeYears, p.Body.HeightCM, w)
	if bmr <= 0 {
		return 0, PriorNone
	}
	return bmr * p.ActivityFactor, PriorMifflin
}

// FormulaEstimate returns the static basal rate and expenditure for a profile
// from its stored body weight alone, without any logged data. ok is false
// when sex, age, height or weight is missing.
func FormulaEstimate(p *UserGoalProfile, t Tuning) (bmr, tdee float64, ok bool) {
	r := resolveProfile(p, t)
	if r.Body == nil || !(r.WeightKG > 0) {
		return 0, 0, false
	}
	bmr = MifflinStJeor(r.Body.Sex, r.Body.AgeYears, r.Body.HeightCM, r.WeightKG)
	if bmr <= 0 {
		return 0, 0, false
	}
	return bmr, bmr * r.ActivityFactor, true
}
