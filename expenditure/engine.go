// Package expenditure estimates a person's daily energy expenditure from
// logged body weight and food intake, and turns the estimate into a calorie
// and macro target for their goal.
//
// The estimator is stateless: each call reads the current window of
// observations and recomputes from scratch. Callers that want caching wrap
// Load and Compute themselves.
package expenditure

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// WeightStore returns a user's weight readings in [from, to], ascending by date.
type WeightStore interface {
	WeightObservations(ctx context.Context, userID int, from, to time.Time) ([]WeightObservation, error)
}

// IntakeStore returns a user's daily intake totals in [from, to], ascending by date.
type IntakeStore interface {
	IntakeObservations(ctx context.Context, userID int, from, to time.Time) ([]IntakeObservation, error)
}

// ProfileStore returns a user's goal profile, or nil with no error when the
// user has none.
type ProfileStore interface {
	GoalProfile(ctx context.Context, userID int) (*UserGoalProfile, error)
}

// Estimator runs the estimation pipeline against its collaborators.
type Estimator struct {
	weights  WeightStore
	intake   IntakeStore
	profiles ProfileStore
	tuning   Tuning
	now      func() time.Time
	log      *zap.Logger
}

// Option configures an Estimator.
type Option func(*Estimator)

// WithTuning replaces the default tuning parameters.
func WithTuning(t Tuning) Option {
	return func(e *Estimator) { e.tuning = t }
}

// WithClock sets the function used for "today".
func WithClock(now func() time.Time) Option {
	return func(e *Estimator) { e.now = now }
}

// WithLogger sets the logger used for stage diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(e *Estimator) { e.log = l }
}

// NewEstimator builds an Estimator. profiles may be nil, in which case every
// user is treated as having no profile.
func NewEstimator(weights WeightStore, intake IntakeStore, profiles ProfileStore, opts ...Option) *Estimator {
	e := &Estimator{
		weights:  weights,
		intake:   intake,
		profiles: profiles,
		tuning:   DefaultTuning(),
		now:      time.Now,
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Tuning returns the parameters in use.
func (e *Estimator) Tuning() Tuning {
	return e.tuning
}

// Estimate loads the user's window and computes the estimate. Only
// collaborator failures are returned as errors; too little data is a
// ConfidenceNone result.
func (e *Estimator) Estimate(ctx context.Context, userID, lookbackWeeks int) (ExpenditureEstimate, error) {
	in, err := e.Load(ctx, userID, lookbackWeeks)
	if err != nil {
		return ExpenditureEstimate{}, err
	}
	return e.Compute(in), nil
}

// Load fetches the observations and profile for the window ending today. The
// three fetches run concurrently.
func (e *Estimator) Load(ctx context.Context, userID, lookbackWeeks int) (Inputs, error) {
	if lookbackWeeks <= 0 {
		lookbackWeeks = DefaultLookbackWeeks
	}
	lookbackWeeks = min(lookbackWeeks, MaxLookbackWeeks)
	start, end, days := windowBounds(e.now(), lookbackWeeks)
	in := Inputs{UserID: userID, Start: start, End: end, WindowDays: days}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		w, err := e.weights.WeightObservations(gctx, userID, start, end)
		if err != nil {
			return fmt.Errorf("fetch weight observations: %w", err)
		}
		in.Weights = w
		return nil
	})
	g.Go(func() error {
		obs, err := e.intake.IntakeObservations(gctx, userID, start, end)
		if err != nil {
			return fmt.Errorf("fetch intake observations: %w", err)
		}
		in.Intake = obs
		return nil
	})
	if e.profiles != nil {
		g.Go(func() error {
			p, err := e.profiles.GoalProfile(gctx, userID)
			if err != nil {
				return fmt.Errorf("fetch goal profile: %w", err)
			}
			in.Profile = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Inputs{}, err
	}
	return in, nil
}

// insufficient is the result for windows that cannot support an estimate.
func insufficient(counts ObservationCounts, reason string) ExpenditureEstimate {
	return ExpenditureEstimate{
		Confidence:        ConfidenceNone,
		ConfidenceReason:  reason,
		BalanceStatus:     BalanceMaintenance,
		ObservationCounts: counts,
		Diagnostics:       Diagnostics{OutlierDates: []string{}},
	}
}

// Compute runs the four stages over in. It performs no I/O and is safe for
// concurrent use.
func (e *Estimator) Compute(in Inputs) ExpenditureEstimate {
	t := e.tuning
	log := e.log.With(zap.Int("user_id", in.UserID))

	if !sufficient(in, t) {
		reason := fmt.Sprintf("need at least %d weigh-ins and %d days of logged intake, have %d and %d",
			t.MinWeightObservations, t.MinIntakeObservations, len(in.Weights), len(in.Intake))
		log.Debug("insufficient data", zap.Int("weights", len(in.Weights)), zap.Int("intake", len(in.Intake)))
		return insufficient(ObservationCounts{
			WeightObservations: len(in.Weights),
			IntakeObservations: len(in.Intake),
			WindowDays:         in.WindowDays,
		}, reason)
	}

	p := prepare(in)
	if len(p.readings) == 0 || len(p.intake) == 0 {
		log.Debug("no usable observations inside the window")
		return insufficient(p.counts, "no usable observations inside the window")
	}

	tr := fitTrend(p.readings, t)
	p.counts.CleanWeightDays = tr.CleanDays
	if len(tr.Outliers) > 0 {
		log.Debug("weight outliers excluded", zap.Ints("day_indices", tr.Outliers))
	}
	if tr.Method != TrendWeighted {
		log.Debug("trend fallback", zap.String("method", string(tr.Method)))
	}

	profile := resolveProfile(in.Profile, t)
	prior, source := priorExpenditure(p.latestBMR, profile, tr.LatestKG)
	bl := blendExpenditure(p.intake, tr.SlopeKGPerDay, prior, source, p.windowDays, t)

	confidence, reason := scoreConfidence(p.counts, tr, t)

	goal, reached := effectiveGoal(profile, tr.LatestKG)
	rate := profile.WeeklyRateKG
	if reached {
		rate = 0
	}
	target := dailyTarget(bl.EstimateKcal, goal, rate)
	bodyKG := tr.LatestKG
	if !(bodyKG > 0) {
		bodyKG = profile.WeightKG
	}
	macros := allocateMacros(math.Round(target), bodyKG, t)

	for _, v := range []float64{tr.SlopeKGPerDay, tr.LatestKG, tr.ResidualKG, bl.EstimateKcal, bl.RawKcal, bl.PriorKcal, target} {
		if !isFinite(v) {
			log.Warn("non-finite intermediate value, treating as insufficient data")
			return insufficient(p.counts, "observations could not be fitted")
		}
	}
	if !withinTolerance(macros, math.Round(target)) {
		log.Warn("macro split outside tolerance", zap.Int("target", int(math.Round(target))), zap.Int("macro_kcal", macros.Calories()))
	}

	outlierDates := make([]string, 0, len(tr.Outliers))
	for _, idx := range tr.Outliers {
		outlierDates = append(outlierDates, p.start.AddDate(0, 0, idx).Format("2006-01-02"))
	}

	est := ExpenditureEstimate{
		EstimatedTDEEKcal:     int(math.Round(bl.EstimateKcal)),
		Confidence:            confidence,
		ConfidenceReason:      reason,
		AvgLoggedCaloriesKcal: int(math.Round(bl.AvgIntakeKcal)),
		WeightChangeKGPerWeek: round2(tr.SlopeKGPerDay * 7),
		OutliersCount:         len(tr.Outliers),
		EnergyBalanceKcal:     int(math.Round(bl.BalanceKcal)),
		BalanceStatus:         bl.Status,
		DailyTargetKcal:       int(math.Round(target)),
		MacroTargets:          macros,
		ObservationCounts:     p.counts,
		Diagnostics: Diagnostics{
			TrendMethod:    tr.Method,
			OutlierDates:   outlierDates,
			TrendWeightKG:  round2(tr.LatestKG),
			ResidualKG:     round2(tr.ResidualKG),
			PriorKcal:      int(math.Round(bl.PriorKcal)),
			PriorSource:    bl.PriorSource,
			RawKcal:        int(math.Round(bl.RawKcal)),
			SmoothingAlpha: round4(bl.Alpha),
			EffectiveGoal:  goal,
			GoalReached:    reached,
		},
	}
	log.Debug("expenditure estimated",
		zap.Int("tdee", est.EstimatedTDEEKcal),
		zap.String("confidence", string(est.Confidence)),
		zap.Int("target", est.DailyTargetKcal))
	return est
}

// round2 rounds to two decimals and folds -0 into 0 so output is stable.
func round2(f float64) float64 {
	r := math.Round(f*100) / 100
	if r == 0 {
		return 0
	}
	return r
}

func round4(f float64) float64 { return math.Round(f*10000) / 10000 }
