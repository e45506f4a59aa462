package expenditure

import "time"

/* ─── Inputs ─────────────────────────────────────────────────────────── */

// WeightSource tags where a weight reading came from.
type WeightSource string

const (
	SourceManual WeightSource = "manual"
	SourceScale  WeightSource = "scale"
	SourceImport WeightSource = "import"
)

// WeightObservation is one body-weight sample. BMRKcal is set when the
// reporting device (usually a smart scale) also estimated a basal rate.
type WeightObservation struct {
	Date     time.Time    `json:"date"`
	WeightKG float64      `json:"weight_kg"`
	BMRKcal  *float64     `json:"bmr_kcal,omitempty"`
	Source   WeightSource `json:"source"`
}

// IntakeObservation is one day's logged nutrition totals. PartialDay marks a
// day the user knows they did not log completely.
type IntakeObservation struct {
	Date       time.Time `json:"date"`
	Calories   float64   `json:"calories_kcal"`
	ProteinG   float64   `json:"protein_g"`
	CarbsG     float64   `json:"carbs_g"`
	FatG       float64   `json:"fat_g"`
	PartialDay bool      `json:"partial_day,omitempty"`
}

// GoalType is the direction the user wants their weight to move.
type GoalType string

const (
	GoalLose     GoalType = "lose"
	GoalGain     GoalType = "gain"
	GoalMaintain GoalType = "maintain"
)

// Valid reports whether g is one of the known goal types.
func (g GoalType) Valid() bool {
	return g == GoalLose || g == GoalGain || g == GoalMaintain
}

// UserGoalProfile is the caller-supplied goal and body profile. Every field
// except GoalType and WeeklyRateKG is optional; defaults are applied once in
// resolveProfile, never deeper inside the stages.
type UserGoalProfile struct {
	GoalType       GoalType `json:"goal_type"`
	WeeklyRateKG   float64  `json:"weekly_rate_kg_per_week"`
	ActivityFactor *float64 `json:"activity_factor,omitempty"`
	ActivityLevel  *string  `json:"activity_level,omitempty"`
	Sex            *string  `json:"sex,omitempty"`
	AgeYears       *int     `json:"age_years,omitempty"`
	HeightCM       *float64 `json:"height_cm,omitempty"`
	WeightKG       *float64 `json:"weight_kg,omitempty"`
	TargetWeightKG *float64 `json:"target_weight_kg,omitempty"`
}

// Inputs is everything one computation reads: the window bounds and the
// observations and profile fetched for it. It is also what a cache
// fingerprints, so it must stay a plain value.
type Inputs struct {
	UserID     int                 `json:"user_id"`
	Start      time.Time           `json:"start"`
	End        time.Time           `json:"end"`
	WindowDays int                 `json:"window_days"`
	Weights    []WeightObservation `json:"weights"`
	Intake     []IntakeObservation `json:"intake"`
	Profile    *UserGoalProfile    `json:"profile"`
}

/* ─── Output ─────────────────────────────────────────────────────────── */

// Confidence rates how much the estimate can be trusted. ConfidenceNone
// means there is no number to show.
type Confidence string

const (
	ConfidenceNone   Confidence = "none"
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// BalanceStatus classifies average intake against estimated expenditure.
type BalanceStatus string

const (
	BalanceDeficit     BalanceStatus = "deficit"
	BalanceMaintenance BalanceStatus = "maintenance"
	BalanceSurplus     BalanceStatus = "surplus"
)

// TrendMethod names how the weight slope was obtained.
type TrendMethod string

const (
	TrendWeighted TrendMethod = "weighted"
	TrendTwoPoint TrendMethod = "two_point"
	TrendFlat     TrendMethod = "flat"
)

// PriorSource names where the physiological prior's basal rate came from.
type PriorSource string

const (
	PriorReportedBMR PriorSource = "reported_bmr"
	PriorMifflin     PriorSource = "mifflin_st_jeor"
	PriorNone        PriorSource = "none"
)

// MacroTargets is a daily gram split. Grams are whole numbers.
type MacroTargets struct {
	ProteinG int `json:"protein_g"`
	CarbsG   int `json:"carbs_g"`
	FatG     int `json:"fat_g"`
}

// Calories returns the energy content of the split (4/4/9 kcal per gram).
func (m MacroTargets) Calories() int {
	return m.ProteinG*4 + m.CarbsG*4 + m.FatG*9
}

// ObservationCounts summarizes what the window contained.
type ObservationCounts struct {
	WeightObservations int `json:"weight_observations"`
	IntakeObservations int `json:"intake_observations"`
	WeightDays         int `json:"weight_days"`
	CleanWeightDays    int `json:"clean_weight_days"`
	FilledDays         int `json:"filled_days"`
	IntakeDays         int `json:"intake_days"`
	PartialIntakeDays  int `json:"partial_intake_days"`
	WindowDays         int `json:"window_days"`
}

// Diagnostics exposes intermediate values for debugging and display.
type Diagnostics struct {
	TrendMethod    TrendMethod `json:"trend_method,omitempty"`
	OutlierDates   []string    `json:"outlier_dates"`
	TrendWeightKG  float64     `json:"trend_weight_kg"`
	ResidualKG     float64     `json:"residual_kg"`
	PriorKcal      int         `json:"prior_kcal"`
	PriorSource    PriorSource `json:"prior_source,omitempty"`
	RawKcal        int         `json:"raw_expenditure_kcal"`
	SmoothingAlpha float64     `json:"smoothing_alpha"`
	EffectiveGoal  GoalType    `json:"effective_goal,omitempty"`
	GoalReached    bool        `json:"goal_reached"`
}

// ExpenditureEstimate is the engine's output. It is rebuilt on every call.
type ExpenditureEstimate struct {
	EstimatedTDEEKcal     int               `json:"estimated_tdee_kcal"`
	Confidence            Confidence        `json:"confidence"`
	ConfidenceReason      string            `json:"confidence_reason"`
	AvgLoggedCaloriesKcal int               `json:"avg_logged_calories_kcal"`
	WeightChangeKGPerWeek float64           `json:"weight_change_kg_per_week"`
	OutliersCount         int               `json:"outliers_count"`
	EnergyBalanceKcal     int               `json:"energy_balance_kcal"`
	BalanceStatus         BalanceStatus     `json:"balance_status"`
	DailyTargetKcal       int               `json:"daily_target_kcal"`
	MacroTargets          MacroTargets      `json:"macro_targets"`
	ObservationCounts     ObservationCounts `json:"observation_counts"`
	Diagnostics           Diagnostics       `json:"diagnostics"`
}
