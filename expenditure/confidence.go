package expenditure

import (
	"fmt"
	"strings"
)

var levels = []Confidence{ConfidenceNone, ConfidenceLow, ConfidenceMedium, ConfidenceHigh}

func rank(c Confidence) int {
	for i, l := range levels {
		if l == c {
			return i
		}
	}
	return 0
}

func capAt(c, ceiling Confidence) Confidence {
	if rank(c) > rank(ceiling) {
		return ceiling
	}
	return c
}

// lower drops c by one level without reaching none.
func lower(c Confidence) Confidence {
	if r := rank(c); r > 1 {
		return levels[r-1]
	}
	return ConfidenceLow
}

// scoreConfidence combines logging volume, fit stability and outlier load
// into a rating. none is never returned here; only the data gate produces it.
func scoreConfidence(counts ObservationCounts, tr trend, t Tuning) (Confidence, string) {
	adherence := 0.0
	if counts.WindowDays > 0 {
		adherence = min(1, float64(counts.IntakeDays)/float64(counts.WindowDays))
	}

	var c Confidence
	switch {
	case adherence >= t.HighAdherence && tr.CleanDays >= t.HighCleanWeightDays:
		c = ConfidenceHigh
	case adherence >= t.MediumAdherence && tr.CleanDays >= t.MedCleanWeightDays:
		c = ConfidenceMedium
	default:
		c = ConfidenceLow
	}

	reasons := []string{
		fmt.Sprintf("intake logged on %d of %d days", counts.IntakeDays, counts.WindowDays),
		fmt.Sprintf("%d clean weigh-in days", tr.CleanDays),
	}

	switch {
	case tr.ResidualKG > t.NoisyResidualKG:
		c = capAt(c, ConfidenceLow)
		reasons = append(reasons, fmt.Sprintf("weight is noisy around the trend (%.1f kg)", tr.ResidualKG))
	case tr.ResidualKG > t.StableResidualKG:
		c = capAt(c, ConfidenceMedium)
		reasons = append(reasons, fmt.Sprintf("weight is somewhat noisy around the trend (%.1f kg)", tr.ResidualKG))
	}

	if counts.WeightDays > 0 {
		ratio := float64(len(tr.Outliers)) / float64(counts.WeightDays)
		if ratio > t.MaxOutlierRatio {
			c = capAt(c, ConfidenceMedium)
			reasons = append(reasons, fmt.Sprintf("%d of %d weigh-in days look like outliers", len(tr.Outliers), counts.WeightDays))
		}
	}

	switch tr.Method {
	case TrendTwoPoint:
		c = capAt(c, ConfidenceMedium)
		reasons = append(reasons, "trend taken from first and last weigh-in only")
	case TrendFlat:
		c = lower(c)
		reasons = append(reasons, "no weight trend available, assuming maintenance")
	}

	return c, strings.Join(reasons, "; ")
}
