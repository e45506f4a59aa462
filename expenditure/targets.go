package expenditure

import "math"

// kcalPerKGPerWeek converts a weekly weight-change rate to a daily calorie
// adjustment.
const kcalPerKGPerWeek = EnergyDensityKcalPerKG / 7

// effectiveGoal switches to maintain once a target weight has been reached
// in the goal's direction.
func effectiveGoal(p resolvedProfile, currentKG float64) (GoalType, bool) {
	if !p.HasTarget || !(currentKG > 0) {
		return p.Goal, false
	}
	switch {
	case p.Goal == GoalLose && currentKG <= p.TargetWeightKG:
		return GoalMaintain, true
	case p.Goal == GoalGain && currentKG >= p.TargetWeightKG:
		return GoalMaintain, true
	}
	return p.Goal, false
}

// dailyTarget applies the goal's weekly rate to the estimate.
func dailyTarget(tdee float64, goal GoalType, weeklyRateKG float64) float64 {
	target := tdee
	switch goal {
	case GoalLose:
		target = tdee - weeklyRateKG*kcalPerKGPerWeek
	case GoalGain:
		target = tdee + weeklyRateKG*kcalPerKGPerWeek
	}
	return math.Max(target, MinExpenditureKcal)
}

// allocateMacros splits targetKcal into protein, fat and carbohydrate grams.
//
// Protein comes from body weight, capped at MaxProteinShare of the target.
// Fat is the larger of the essential floor and a share of what protein
// leaves. Carbs take the rest. When protein and fat alone overshoot the
// target both are scaled down to fit and carbs are zero. The rounded split
// always lands within 10% of targetKcal.
func allocateMacros(targetKcal, weightKG float64, t Tuning) MacroTargets {
	if !(targetKcal > 0) {
		return MacroTargets{}
	}
	if !(weightKG > 0) {
		weightKG = 0
	}

	protein := t.ProteinGPerKG * weightKG
	if maxProtein := t.MaxProteinShare * targetKcal / 4; protein > maxProtein {
		protein = maxProtein
	}

	fat := math.Max(t.FatFloorGPerKG*weightKG, t.FatShareOfRemaining*(targetKcal-protein*4)/9)

	carbs := 0.0
	if remaining := targetKcal - protein*4 - fat*9; remaining >= 0 {
		carbs = remaining / 4
	} else {
		scale := targetKcal / (protein*4 + fat*9)
		protein *= scale
		fat *= scale
	}

	m := MacroTargets{
		ProteinG: int(math.Round(protein)),
		FatG:     int(math.Round(fat)),
		CarbsG:   int(math.Round(carbs)),
	}
	return conserve(m, targetKcal)
}

// conserve re-derives carbs from the rounded protein and fat so the total
// stays on target, then trims fat and protein if rounding still overshoots
// the tolerance band.
func conserve(m MacroTargets, targetKcal float64) MacroTargets {
	rest := targetKcal - float64(m.ProteinG*4+m.FatG*9)
	m.CarbsG = max(0, int(math.Round(rest/4)))
	for float64(m.Calories()) > targetKcal*1.1 && (m.FatG > 0 || m.ProteinG > 0) {
		if m.FatG > 0 {
			m.FatG--
		} else {
			m.ProteinG--
		}
	}
	return m
}

// withinTolerance reports whether the split's calories are within 10% of
// the target.
func withinTolerance(m MacroTargets, targetKcal float64) bool {
	cal := float64(m.Calories())
	return cal >= targetKcal*0.9 && cal <= targetKcal*1.1
}
