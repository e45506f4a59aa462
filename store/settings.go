package store

import (
	"time"

	"lg/adaptive-tdee-go-api/expenditure"
)

// GoalSettings maps to calorie_log_user_settings: one row per user holding
// the applied daily targets and the goal/body profile the estimator reads.
// Profile fields are nullable so a freshly created row still works.
type GoalSettings struct {
	UserID         int `json:"user_id"          db:"user_id"`
	CalorieBudget  int `json:"calorie_budget"   db:"calorie_budget"`
	ProteinTargetG int `json:"protein_target_g" db:"protein_target_g"`
	CarbsTargetG   int `json:"carbs_target_g"   db:"carbs_target_g"`
	FatTargetG     int `json:"fat_target_g"     db:"fat_target_g"`

	GoalType       string    `json:"goal_type"          db:"goal_type"`
	WeeklyRateKG   float64   `json:"weekly_rate_kg"     db:"weekly_rate_kg"`
	ActivityLevel  *string   `json:"activity_level"     db:"activity_level"`
	ActivityFactor *float64  `json:"activity_factor"    db:"activity_factor"`
	Sex            *string   `json:"sex"                db:"sex"`
	DateOfBirth    *DateOnly `json:"date_of_birth"      db:"date_of_birth"`
	HeightCM       *float64  `json:"height_cm"          db:"height_cm"`
	WeightKG       *float64  `json:"weight_kg"          db:"weight_kg"`
	TargetWeightKG *float64  `json:"target_weight_kg"   db:"target_weight_kg"`

	TargetsAppliedAt *time.Time `json:"targets_applied_at" db:"targets_applied_at"`
	UpdatedAt        *time.Time `json:"updated_at"         db:"updated_at"`
}

// Profile converts the row to the engine's goal profile, deriving age from
// date of birth as of today. An implausible birth date leaves age unset.
func (s GoalSettings) Profile(today time.Time) *expenditure.UserGoalProfile {
	p := &expenditure.UserGoalProfile{
		GoalType:       expenditure.GoalType(s.GoalType),
		WeeklyRateKG:   s.WeeklyRateKG,
		ActivityFactor: s.ActivityFactor,
		ActivityLevel:  s.ActivityLevel,
		Sex:            s.Sex,
		HeightCM:       s.HeightCM,
		WeightKG:       s.WeightKG,
		TargetWeightKG: s.TargetWeightKG,
	}
	if s.DateOfBirth != nil && !s.DateOfBirth.IsZero() {
		if age, ok := expenditure.AgeOn(s.DateOfBirth.Time, today); ok {
			p.AgeYears = &age
		}
	}
	return p
}
