package expenditure

import (
	"cmp"
	"math"
	"slices"
	"time"
)

const oneDay = 24 * time.Hour

// dayReading is one calendar day's weight: the mean of that day's readings.
type dayReading struct {
	Index    int
	WeightKG float64
}

// dayPoint is one day of the gap-filled series. Observed is false for
// interpolated days.
type dayPoint struct {
	Index    int
	WeightKG float64
	Observed bool
}

// prepared is the reshaped window handed to the later stages.
type prepared struct {
	start      time.Time
	windowDays int
	readings   []dayReading
	intake     []IntakeObservation
	latestBMR  *float64
	counts     ObservationCounts
}

// truncateDay returns t at midnight UTC.
func truncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// dayIndex returns the number of whole days from start to t.
func dayIndex(start, t time.Time) int {
	return int(truncateDay(t).Sub(start) / oneDay)
}

// windowBounds returns the inclusive [today - window, today] range.
func windowBounds(now time.Time, lookbackWeeks int) (start, end time.Time, days int) {
	days = lookbackWeeks * 7
	end = truncateDay(now)
	start = end.AddDate(0, 0, -days)
	return start, end, days
}

// sufficient reports whether the window passes the data gate.
func sufficient(in Inputs, t Tuning) bool {
	return len(in.Weights) >= t.MinWeightObservations && len(in.Intake) >= t.MinIntakeObservations
}

// prepare sorts and reshapes the window: same-day weight readings are
// averaged, readings outside the window or with non-positive weight are
// dropped, and intake is sorted by date.
func prepare(in Inputs) prepared {
	start := truncateDay(in.Start)
	span := dayIndex(start, in.End)

	weights := slices.Clone(in.Weights)
	slices.SortStableFunc(weights, func(a, b WeightObservation) int {
		return a.Date.Compare(b.Date)
	})

	type acc struct {
		sum float64
		n   int
	}
	byDay := make(map[int]*acc)
	var latestBMR *float64
	for _, w := range weights {
		idx := dayIndex(start, w.Date)
		if idx < 0 || idx > span || !(w.WeightKG > 0) || math.IsInf(w.WeightKG, 0) {
			continue
		}
		a, ok := byDay[idx]
		if !ok {
			a = &acc{}
			byDay[idx] = a
		}
		a.sum += w.WeightKG
		a.n++
		if w.BMRKcal != nil && *w.BMRKcal > 0 {
			latestBMR = w.BMRKcal
		}
	}

	readings := make([]dayReading, 0, len(byDay))
	for idx, a := range byDay {
		readings = append(readings, dayReading{Index: idx, WeightKG: a.sum / float64(a.n)})
	}
	slices.SortFunc(readings, func(a, b dayReading) int { return cmp.Compare(a.Index, b.Index) })

	intake := make([]IntakeObservation, 0, len(in.Intake))
	partial := 0
	seen := make(map[int]bool)
	for _, o := range in.Intake {
		idx := dayIndex(start, o.Date)
		if idx < 0 || idx > span || o.Calories < 0 || math.IsNaN(o.Calories) || math.IsInf(o.Calories, 0) {
			continue
		}
		intake = append(intake, o)
		seen[idx] = true
		if o.PartialDay {
			partial++
		}
	}
	slices.SortStableFunc(intake, func(a, b IntakeObservation) int {
		return a.Date.Compare(b.Date)
	})

	return prepared{
		start:      start,
		windowDays: in.WindowDays,
		readings:   readings,
		intake:     intake,
		latestBMR:  latestBMR,
		counts: ObservationCounts{
			WeightObservations: len(in.Weights),
			IntakeObservations: len(in.Intake),
			WeightDays:         len(readings),
			FilledDays:         len(gapFill(readings)),
			IntakeDays:         len(seen),
			PartialIntakeDays:  partial,
			WindowDays:         in.WindowDays,
		},
	}
}

// gapFill builds a daily series from the first to the last reading,
// interpolating linearly across missing days. Days outside the observed range
// are not extrapolated.
func gapFill(readings []dayReading) []dayPoint {
	if len(readings) == 0 {
		return nil
	}
	first, last := readings[0].Index, readings[len(readings)-1].Index
	points := make([]dayPoint, 0, last-first+1)
	for i, r := range readings {
		points = append(points, dayPoint{Index: r.Index, WeightKG: r.WeightKG, Observed: true})
		if i == len(readings)-1 {
			break
		}
		next := readings[i+1]
		gap := float64(next.Index - r.Index)
		for d := r.Index + 1; d < next.Index; d++ {
			frac := float64(d-r.Index) / gap
			points = append(points, dayPoint{
				Index:    d,
				WeightKG: r.WeightKG + (next.WeightKG-r.WeightKG)*frac,
			})
		}
	}
	return points
}

// fullIntakeDays returns the days usable for average intake: partial days are
// left out unless every day is partial.
func fullIntakeDays(intake []IntakeObservation) []IntakeObservation {
	full := make([]IntakeObservation, 0, len(intake))
	for _, o := range intake {
		if !o.PartialDay {
			full = append(full, o)
		}
	}
	if len(full) == 0 {
		return intake
	}
	return full
}
