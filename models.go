package main

import (
	"time"

	"lg/adaptive-tdee-go-api/store"
)

/* ─── Domain structs ─────────────────────────────────────────────────── */

// weightEntry maps to weight_log. BMRKcal is set when the reading came from a
// device that also estimates basal rate.
type weightEntry struct {
	ID        int            `json:"id" db:"id"`
	UserID    int            `json:"user_id" db:"user_id"`
	Date      store.DateOnly `json:"date" db:"date"`
	WeightKG  float64        `json:"weight_kg" db:"weight_kg"`
	BMRKcal   *float64       `json:"bmr_kcal" db:"bmr_kcal"`
	Source    string         `json:"source" db:"source"`
	CreatedAt *time.Time     `json:"created_at" db:"created_at"`
}

// calorieLogItem maps to calorie_log_items. Nullable numeric fields use pointers
// so pgx can scan NULLs and JSON omits them naturally.
type calorieLogItem struct {
	ID        int            `json:"id" db:"id"`
	UserID    int            `json:"user_id" db:"user_id"`
	Date      store.DateOnly `json:"date" db:"date"`
	ItemName  string         `json:"item_name" db:"item_name"`
	Type      string         `json:"type" db:"type"`
	Qty       *float64       `json:"qty" db:"qty"`
	Uom       *string        `json:"uom" db:"uom"`
	Calories  int            `json:"calories" db:"calories"`
	ProteinG  *float64       `json:"protein_g" db:"protein_g"`
	CarbsG    *float64       `json:"carbs_g" db:"carbs_g"`
	FatG      *float64       `json:"fat_g" db:"fat_g"`
	CreatedAt *time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt *time.Time     `json:"updated_at" db:"updated_at"`
}

// dayFlag maps to calorie_log_day_flags.
type dayFlag struct {
	UserID    int            `json:"user_id" db:"user_id"`
	Date      store.DateOnly `json:"date" db:"date"`
	Partial   bool           `json:"partial" db:"partial"`
	UpdatedAt *time.Time     `json:"updated_at" db:"updated_at"`
}

// goalSettingsResponse is the GET/PATCH /api/goal-settings shape: the stored
// row plus the formula-only estimate for users who have not logged enough yet.
type goalSettingsResponse struct {
	store.GoalSettings
	FormulaBMR  *int `json:"formula_bmr,omitempty"`
	FormulaTDEE *int `json:"formula_tdee,omitempty"`
}

/* ─── Requests ───────────────────────────────────────────────────────── */

// createWeightEntryRequest is the request body for POST /api/weight-log.
type createWeightEntryRequest struct {
	Date     string   `json:"date"`
	WeightKG float64  `json:"weight_kg"`
	BMRKcal  *float64 `json:"bmr_kcal"`
	Source   string   `json:"source"`
}

// updateWeightEntryRequest is the request body for PUT /api/weight-log/:id.
// Omitted fields keep their current values.
type updateWeightEntryRequest struct {
	Date     *string  `json:"date"`
	WeightKG *float64 `json:"weight_kg"`
	BMRKcal  *float64 `json:"bmr_kcal"`
}

// createCalorieLogItemRequest is the request body for POST /api/calorie-log/items.
type createCalorieLogItemRequest struct {
	Date     string   `json:"date"`
	ItemName string   `json:"item_name"`
	Type     string   `json:"type"`
	Qty      *float64 `json:"qty"`
	Uom      *string  `json:"uom"`
	Calories int      `json:"calories"`
	ProteinG *float64 `json:"protein_g"`
	CarbsG   *float64 `json:"carbs_g"`
	FatG     *float64 `json:"fat_g"`
}

// updateCalorieLogItemRequest is the request body for PUT /api/calorie-log/items/:id.
type updateCalorieLogItemRequest struct {
	Date     *string  `json:"date"`
	ItemName *string  `json:"item_name"`
	Type     *string  `json:"type"`
	Qty      *float64 `json:"qty"`
	Uom      *string  `json:"uom"`
	Calories *int     `json:"calories"`
	ProteinG *float64 `json:"protein_g"`
	CarbsG   *float64 `json:"carbs_g"`
	FatG     *float64 `json:"fat_g"`
}

// patchGoalSettingsRequest is the request body for PATCH /api/goal-settings.
// All fields are pointers; only non-nil fields get written to the database.
type patchGoalSettingsRequest struct {
	GoalType       *string  `json:"goal_type"`
	WeeklyRateKG   *float64 `json:"weekly_rate_kg"`
	ActivityLevel  *string  `json:"activity_level"`
	ActivityFactor *float64 `json:"activity_factor"`
	Sex            *string  `json:"sex"`
	DateOfBirth    *string  `json:"date_of_birth"` // YYYY-MM-DD, stored as date
	HeightCM       *float64 `json:"height_cm"`
	WeightKG       *float64 `json:"weight_kg"`
	TargetWeightKG *float64 `json:"target_weight_kg"`
}
