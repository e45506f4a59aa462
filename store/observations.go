package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"lg/adaptive-tdee-go-api/expenditure"
)

// Observations reads the engine's inputs from the service tables. It
// implements expenditure.WeightStore, IntakeStore and ProfileStore.
type Observations struct {
	db  Querier
	now func() time.Time
}

// NewObservations wraps a pool (or any Querier) as the engine's collaborator.
func NewObservations(db Querier) *Observations {
	return &Observations{db: db, now: time.Now}
}

var (
	_ expenditure.WeightStore  = (*Observations)(nil)
	_ expenditure.IntakeStore  = (*Observations)(nil)
	_ expenditure.ProfileStore = (*Observations)(nil)
)

type weightRow struct {
	Date     DateOnly `db:"date"`
	WeightKG float64  `db:"weight_kg"`
	BMRKcal  *float64 `db:"bmr_kcal"`
	Source   string   `db:"source"`
}

// WeightObservations returns every reading in [from, to]. Several sources may
// report the same day; they are all returned.
func (o *Observations) WeightObservations(ctx context.Context, userID int, from, to time.Time) ([]expenditure.WeightObservation, error) {
	rows, err := QueryMany[weightRow](ctx, o.db,
		`SELECT date, weight_kg, bmr_kcal, source FROM weight_log
		 WHERE user_id = @userID AND date >= @from AND date <= @to
		 ORDER BY date ASC, source ASC`,
		pgx.NamedArgs{"userID": userID, "from": from.Format(DateLayout), "to": to.Format(DateLayout)})
	if err != nil {
		return nil, err
	}
	out := make([]expenditure.WeightObservation, len(rows))
	for i, r := range rows {
		out[i] = expenditure.WeightObservation{
			Date:     r.Date.Time,
			WeightKG: r.WeightKG,
			BMRKcal:  r.BMRKcal,
			Source:   expenditure.WeightSource(r.Source),
		}
	}
	return out, nil
}

type intakeRow struct {
	Date       DateOnly `db:"date"`
	Calories   float64  `db:"calories"`
	ProteinG   float64  `db:"protein_g"`
	CarbsG     float64  `db:"carbs_g"`
	FatG       float64  `db:"fat_g"`
	PartialDay bool     `db:"partial_day"`
}

// IntakeObservations returns one row per day with food logged in [from, to].
// Exercise items are not intake and are left out.
func (o *Observations) IntakeObservations(ctx context.Context, userID int, from, to time.Time) ([]expenditure.IntakeObservation, error) {
	rows, err := QueryMany[intakeRow](ctx, o.db,
		`SELECT
			i.date,
			SUM(i.calories)::float8                 AS calories,
			COALESCE(SUM(i.protein_g), 0)::float8   AS protein_g,
			COALESCE(SUM(i.carbs_g),   0)::float8   AS carbs_g,
			COALESCE(SUM(i.fat_g),     0)::float8   AS fat_g,
			COALESCE(BOOL_OR(f.partial), false)     AS partial_day
		 FROM calorie_log_items i
		 LEFT JOIN calorie_log_day_flags f ON f.user_id = i.user_id AND f.date = i.date
		 WHERE i.user_id = @userID AND i.date >= @from AND i.date <= @to AND i.type != 'exercise'
		 GROUP BY i.date
		 ORDER BY i.date ASC`,
		pgx.NamedArgs{"userID": userID, "from": from.Format(DateLayout), "to": to.Format(DateLayout)})
	if err != nil {
		return nil, err
	}
	out := make([]expenditure.IntakeObservation, len(rows))
	for i, r := range rows {
		out[i] = expenditure.IntakeObservation{
			Date:       r.Date.Time,
			Calories:   r.Calories,
			ProteinG:   r.ProteinG,
			CarbsG:     r.CarbsG,
			FatG:       r.FatG,
			PartialDay: r.PartialDay,
		}
	}
	return out, nil
}

// GoalProfile returns the user's profile, or nil when no settings row exists.
func (o *Observations) GoalProfile(ctx context.Context, userID int) (*expenditure.UserGoalProfile, error) {
	s, err := QueryOne[GoalSettings](ctx, o.db,
		"SELECT * FROM calorie_log_user_settings WHERE user_id = @userID",
		pgx.NamedArgs{"userID": userID})
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return s.Profile(o.now()), nil
}

// UserIDs lists every user, for batch jobs.
func (o *Observations) UserIDs(ctx context.Context) ([]int, error) {
	type idRow struct {
		ID int `db:"id"`
	}
	rows, err := QueryMany[idRow](ctx, o.db, "SELECT id FROM users ORDER BY id", nil)
	if err != nil {
		return nil, err
	}
	ids := make([]int, len(rows))
	for i, r := range rows {
		ids[i] = r.ID
	}
	return ids, nil
}
