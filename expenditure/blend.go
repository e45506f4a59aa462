package expenditure

import "math"

// blend is the Expenditure Blender's output.
type blend struct {
	AvgIntakeKcal float64
	ImbalanceKcal float64
	RawKcal       float64
	PriorKcal     float64
	PriorSource   PriorSource
	Alpha         float64
	EstimateKcal  float64
	BalanceKcal   float64
	Status        BalanceStatus
}

// smoothingAlpha derives the EMA factor from the window length.
func smoothingAlpha(windowDays int) float64 {
	if windowDays < 1 {
		windowDays = 1
	}
	return 2 / float64(windowDays+1)
}

// warmupAlpha is the smoothing factor for the k-th value folded in after the
// seed.
func warmupAlpha(alpha float64, k int) float64 {
	return math.Max(alpha, 1/float64(k+1))
}

// blendExpenditure turns the weight slope and the logged intake into a
// smoothed expenditure estimate.
//
// Each full intake day contributes a raw value, that day's calories plus the
// energy released (or minus the energy stored) by the trend. The values are
// folded into a running estimate that starts at the prior, which counts as a
// single day: the k-th fed day uses max(alpha, 1/(k+1)), so the estimate is a
// plain mean while fewer than 1/alpha days are in and an EMA after that.
// Without a prior the running estimate starts at the first raw value.
func blendExpenditure(intake []IntakeObservation, slopeKGPerDay, prior float64, source PriorSource, windowDays int, t Tuning) blend {
	full := fullIntakeDays(intake)
	b := blend{PriorKcal: prior, PriorSource: source, Alpha: smoothingAlpha(windowDays)}
	if len(full) == 0 {
		return b
	}

	var sum float64
	for _, o := range full {
		sum += o.Calories
	}
	b.AvgIntakeKcal = sum / float64(len(full))
	// Weight loss (negative slope) means the body burned more than was eaten.
	b.ImbalanceKcal = -slopeKGPerDay * EnergyDensityKcalPerKG
	b.RawKcal = b.AvgIntakeKcal + b.ImbalanceKcal

	est := prior
	feed := full
	if source == PriorNone {
		est = full[0].Calories + b.ImbalanceKcal
		feed = full[1:]
	}
	for k, o := range feed {
		raw := o.Calories + b.ImbalanceKcal
		est += warmupAlpha(b.Alpha, k+1) * (raw - est)
	}

	// The prior may damp the trend but never reverse it.
	if math.Abs(b.ImbalanceKcal) > 1e-6 {
		bound := b.AvgIntakeKcal + t.MinTrendShare*b.ImbalanceKcal
		if b.ImbalanceKcal > 0 {
			est = math.Max(est, bound)
		} else {
			est = math.Min(est, bound)
		}
	}

	b.EstimateKcal = math.Max(est, MinExpenditureKcal)
	b.BalanceKcal = b.AvgIntakeKcal - b.EstimateKcal
	b.Status = balanceStatus(b.BalanceKcal, t.MaintenanceBandKcal)
	return b
}

func balanceStatus(balance, band float64) BalanceStatus {
	switch {
	case math.Abs(balance) <= band:
		return BalanceMaintenance
	case balance < 0:
		return BalanceDeficit
	default:
		return BalanceSurplus
	}
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
