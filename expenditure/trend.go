package expenditure

import "math"

// trend is the Trend Fitter's output.
type trend struct {
	SlopeKGPerDay float64
	InterceptKG   float64
	Method        TrendMethod
	// Outliers holds the day indices of flagged readings. They are excluded
	// from the fit but kept for diagnostics.
	Outliers   []int
	CleanDays  int
	ResidualKG float64
	LatestKG   float64
}

// line is y = Intercept + Slope*x.
type line struct {
	Intercept float64
	Slope     float64
}

func (l line) at(x int) float64 {
	return l.Intercept + l.Slope*float64(x)
}

// weightedFit runs a weighted least-squares regression of weight against day
// index. ok is false when the day indices have no spread.
func weightedFit(points []dayPoint, weight func(dayPoint) float64) (line, bool) {
	var sw, sx, sy float64
	for _, p := range points {
		w := weight(p)
		sw += w
		sx += w * float64(p.Index)
		sy += w * p.WeightKG
	}
	if sw <= 0 {
		return line{}, false
	}
	mx, my := sx/sw, sy/sw
	var sxx, sxy float64
	for _, p := range points {
		w := weight(p)
		dx := float64(p.Index) - mx
		sxx += w * dx * dx
		sxy += w * dx * (p.WeightKG - my)
	}
	if sxx < 1e-9 {
		return line{}, false
	}
	slope := sxy / sxx
	return line{Intercept: my - slope*mx, Slope: slope}, true
}

func unweighted(dayPoint) float64 { return 1 }

// recencyWeight halves a point's weight every halfLife days before last.
func recencyWeight(last int, halfLife float64) func(dayPoint) float64 {
	return func(p dayPoint) float64 {
		return math.Exp2(-float64(last-p.Index) / halfLife)
	}
}

// flagOutliers fits a plain regression to the gap-filled series and returns
// the indices of observed days that sit too far from it.
func flagOutliers(readings []dayReading, t Tuning) map[int]bool {
	flagged := make(map[int]bool)
	points := gapFill(readings)
	ref, ok := weightedFit(points, unweighted)
	if !ok {
		return flagged
	}

	var ss float64
	for _, p := range points {
		r := p.WeightKG - ref.at(p.Index)
		ss += r * r
	}
	sd := math.Sqrt(ss / float64(len(points)))

	for _, r := range readings {
		dev := math.Abs(r.WeightKG - ref.at(r.Index))
		if dev > t.OutlierAbsKG || (dev > t.OutlierMinKG && dev > t.OutlierSDMultiple*sd) {
			flagged[r.Index] = true
		}
	}
	return flagged
}

// fitTrend flags outlier days, then fits a recency-weighted line to the
// remaining days. With fewer than two clean days it falls back to the slope
// between the first and last reading, and without two distinct days to a
// flat trend.
func fitTrend(readings []dayReading, t Tuning) trend {
	if len(readings) == 0 {
		return trend{Method: TrendFlat}
	}

	flagged := flagOutliers(readings, t)
	clean := make([]dayReading, 0, len(readings))
	var outliers []int
	for _, r := range readings {
		if flagged[r.Index] {
			outliers = append(outliers, r.Index)
			continue
		}
		clean = append(clean, r)
	}

	tr := trend{Outliers: outliers, CleanDays: len(clean)}
	last := readings[len(readings)-1]

	if len(clean) >= 2 {
		points := gapFill(clean)
		end := clean[len(clean)-1].Index
		if fit, ok := weightedFit(points, recencyWeight(end, t.RecencyHalfLifeDays)); ok {
			tr.Method = TrendWeighted
			tr.SlopeKGPerDay = fit.Slope
			tr.InterceptKG = fit.Intercept
			tr.ResidualKG = residual(clean, fit)
			tr.LatestKG = fit.at(end)
			return tr
		}
	}

	first := readings[0]
	if last.Index != first.Index {
		fit := line{Slope: (last.WeightKG - first.WeightKG) / float64(last.Index-first.Index)}
		fit.Intercept = first.WeightKG - fit.Slope*float64(first.Index)
		tr.Method = TrendTwoPoint
		tr.SlopeKGPerDay = fit.Slope
		tr.InterceptKG = fit.Intercept
		tr.ResidualKG = residual(readings, fit)
		tr.LatestKG = last.WeightKG
		return tr
	}

	tr.Method = TrendFlat
	tr.InterceptKG = last.WeightKG
	tr.LatestKG = last.WeightKG
	return tr
}

// residual is the root-mean-square distance of the readings from fit.
func residual(readings []dayReading, fit line) float64 {
	if len(readings) == 0 {
		return 0
	}
	var ss float64
	for _, r := range readings {
		d := r.WeightKG - fit.at(r.Index)
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(readings)))
}
