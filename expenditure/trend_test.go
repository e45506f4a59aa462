package expenditure

import (
	"math"
	"slices"
	"testing"
)

func flatReadings(first, last int, kg float64) []dayReading {
	var out []dayReading
	for i := first; i <= last; i++ {
		out = append(out, dayReading{Index: i, WeightKG: kg})
	}
	return out
}

// TestFitTrend_Linear verifies an exact line is recovered with no outliers.
func TestFitTrend_Linear(t *testing.T) {
	var readings []dayReading
	for i := 1; i <= 21; i++ {
		readings = append(readings, dayReading{Index: i, WeightKG: 85 - 0.1*float64(i-1)})
	}
	tr := fitTrend(readings, DefaultTuning())

	if tr.Method != TrendWeighted {
		t.Errorf("method = %s, want weighted", tr.Method)
	}
	if math.Abs(tr.SlopeKGPerDay+0.1) > 1e-9 {
		t.Errorf("slope = %v, want -0.1", tr.SlopeKGPerDay)
	}
	if len(tr.Outliers) != 0 || tr.CleanDays != 21 {
		t.Errorf("outliers = %v clean = %d", tr.Outliers, tr.CleanDays)
	}
	if math.Abs(tr.LatestKG-83) > 1e-9 {
		t.Errorf("latest = %v, want 83", tr.LatestKG)
	}
	if tr.ResidualKG > 1e-9 {
		t.Errorf("residual = %v, want 0", tr.ResidualKG)
	}
}

// TestFitTrend_WaterSpikes verifies one- and two-day bumps are flagged and
// leave the flat trend untouched.
func TestFitTrend_WaterSpikes(t *testing.T) {
	cases := []struct {
		name  string
		bumps map[int]float64
		want  []int
	}{
		{"one day early", map[int]float64{5: 82.5}, []int{5}},
		{"one day middle", map[int]float64{11: 83}, []int{11}},
		{"two day bump", map[int]float64{9: 82, 10: 82.2}, []int{9, 10}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			readings := flatReadings(1, 21, 80)
			for i := range readings {
				if kg, ok := tc.bumps[readings[i].Index]; ok {
					readings[i].WeightKG = kg
				}
			}
			tr := fitTrend(readings, DefaultTuning())
			if !slices.Equal(tr.Outliers, tc.want) {
				t.Errorf("outliers = %v, want %v", tr.Outliers, tc.want)
			}
			if math.Abs(tr.SlopeKGPerDay) > 1e-9 {
				t.Errorf("slope = %v, want 0", tr.SlopeKGPerDay)
			}
			if tr.CleanDays != 21-len(tc.want) {
				t.Errorf("clean days = %d, want %d", tr.CleanDays, 21-len(tc.want))
			}
		})
	}
}

// TestFitTrend_NormalNoiseKept verifies day-to-day noise under the thresholds
// is not flagged.
func TestFitTrend_NormalNoiseKept(t *testing.T) {
	var readings []dayReading
	for i := 1; i <= 21; i++ {
		noise := 0.0
		if i%2 == 0 {
			noise = -0.05
		}
		readings = append(readings, dayReading{Index: i, WeightKG: 85 - 0.1*float64(i-1) + noise})
	}
	tr := fitTrend(readings, DefaultTuning())
	if len(tr.Outliers) != 0 {
		t.Errorf("outliers = %v, want none", tr.Outliers)
	}
	if tr.SlopeKGPerDay >= 0 {
		t.Errorf("slope = %v, want negative", tr.SlopeKGPerDay)
	}
}

// TestFitTrend_TwoPointFallback verifies that when filtering leaves fewer than
// two clean days the slope comes from the first and last reading.
func TestFitTrend_TwoPointFallback(t *testing.T) {
	tr := fitTrend(readingsOf(0, 80, 1, 86, 2, 80), DefaultTuning())
	if tr.Method != TrendTwoPoint {
		t.Fatalf("method = %s, want two_point", tr.Method)
	}
	if tr.SlopeKGPerDay != 0 {
		t.Errorf("slope = %v, want 0", tr.SlopeKGPerDay)
	}
	if len(tr.Outliers) != 3 || tr.CleanDays != 0 {
		t.Errorf("outliers = %v clean = %d, want all three flagged", tr.Outliers, tr.CleanDays)
	}
}

// TestFitTrend_FlatFallback verifies a single distinct day yields a zero slope.
func TestFitTrend_FlatFallback(t *testing.T) {
	tr := fitTrend(readingsOf(4, 81.2), DefaultTuning())
	if tr.Method != TrendFlat || tr.SlopeKGPerDay != 0 {
		t.Errorf("trend = %+v, want flat with zero slope", tr)
	}
	if tr.LatestKG != 81.2 {
		t.Errorf("latest = %v, want 81.2", tr.LatestKG)
	}

	empty := fitTrend(nil, DefaultTuning())
	if empty.Method != TrendFlat || empty.SlopeKGPerDay != 0 {
		t.Errorf("empty trend = %+v, want flat", empty)
	}
}

// TestWeightedFit_Recency verifies recency weighting reacts more to a recent
// change than a plain regression does.
func TestWeightedFit_Recency(t *testing.T) {
	readings := flatReadings(0, 13, 80)
	for j := range 7 {
		readings = append(readings, dayReading{Index: 14 + j, WeightKG: 80 - 0.2*float64(j+1)})
	}
	points := gapFill(readings)

	plain, ok := weightedFit(points, unweighted)
	if !ok {
		t.Fatal("plain fit failed")
	}
	recent, ok := weightedFit(points, recencyWeight(20, DefaultRecencyHalfLifeDay))
	if !ok {
		t.Fatal("weighted fit failed")
	}
	if recent.Slope >= plain.Slope {
		t.Errorf("weighted slope %v should be steeper than plain slope %v", recent.Slope, plain.Slope)
	}
}

// TestWeightedFit_Degenerate verifies a single index cannot be fitted.
func TestWeightedFit_Degenerate(t *testing.T) {
	if _, ok := weightedFit([]dayPoint{{Index: 3, WeightKG: 80}}, unweighted); ok {
		t.Error("expected ok=false for zero spread")
	}
	if _, ok := weightedFit(nil, unweighted); ok {
		t.Error("expected ok=false for no points")
	}
}
