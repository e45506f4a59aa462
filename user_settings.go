package main

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"

	"lg/adaptive-tdee-go-api/expenditure"
	"lg/adaptive-tdee-go-api/store"
)

// maxWeeklyRateKG is the fastest change a goal may ask for.
const maxWeeklyRateKG = 1.5

// validateGoalPatch rejects values the estimator would otherwise ignore.
func validateGoalPatch(body patchGoalSettingsRequest) error {
	if body.GoalType != nil && !expenditure.GoalType(*body.GoalType).Valid() {
		return errors.New("goal_type must be one of: lose, gain, maintain")
	}
	if body.WeeklyRateKG != nil && (*body.WeeklyRateKG < 0 || *body.WeeklyRateKG > maxWeeklyRateKG) {
		return fmt.Errorf("weekly_rate_kg must be between 0 and %g", maxWeeklyRateKG)
	}
	if body.ActivityLevel != nil {
		if _, ok := expenditure.ActivityMultipliers[*body.ActivityLevel]; !ok {
			return errors.New("activity_level must be one of: sedentary, light, moderate, active, very_active")
		}
	}
	if body.ActivityFactor != nil && (*body.ActivityFactor < 1 || *body.ActivityFactor > 2.5) {
		return errors.New("activity_factor must be between 1 and 2.5")
	}
	if body.Sex != nil && *body.Sex != "male" && *body.Sex != "female" {
		return errors.New("sex must be male or female")
	}
	if body.DateOfBirth != nil {
		dob, err := time.Parse(store.DateLayout, *body.DateOfBirth)
		if err != nil {
			return errors.New("invalid date_of_birth, expected YYYY-MM-DD")
		}
		if _, ok := expenditure.AgeOn(dob, time.Now()); !ok {
			return errors.New("date_of_birth is not plausible")
		}
	}
	if body.HeightCM != nil && (*body.HeightCM < 50 || *body.HeightCM > 272) {
		return errors.New("height_cm must be between 50 and 272")
	}
	if body.WeightKG != nil {
		if err := validateWeight(*body.WeightKG); err != nil {
			return err
		}
	}
	if body.TargetWeightKG != nil {
		if err := validateWeight(*body.TargetWeightKG); err != nil {
			return errors.New("target_weight_kg must be between 0 and 500")
		}
	}
	return nil
}

// getGoalSettings returns the goal settings for the authenticated user, with
// the formula-only estimate when the profile allows one.
// GET /api/goal-settings.
func (h *Handler) getGoalSettings(c *gin.Context) {
	userID := c.GetInt("user_id")

	s, err := store.QueryOne[store.GoalSettings](c, h.db,
		"SELECT * FROM calorie_log_user_settings WHERE user_id = @userID",
		pgx.NamedArgs{"userID": userID})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			apiError(c, http.StatusNotFound, "settings not found")
		} else {
			h.logFailure(c, "getGoalSettings", "query failed", err)
			apiError(c, http.StatusInternalServerError, "failed to fetch settings")
		}
		return
	}

	c.JSON(http.StatusOK, withFormulaEstimate(s, h.estimator.Tuning(), time.Now()))
}

// goalPatchClauses builds the SET clause for the fields the client actually
// sent. A new activity_level without an activity_factor clears the stored
// factor, which would otherwise keep overriding the level.
func goalPatchClauses(body patchGoalSettingsRequest, userID int) ([]string, pgx.NamedArgs) {
	setClauses := []string{}
	args := pgx.NamedArgs{"userID": userID}
	set := func(column, arg string, v any) {
		setClauses = append(setClauses, column+" = @"+arg)
		args[arg] = v
	}

	if body.GoalType != nil {
		set("goal_type", "goalType", *body.GoalType)
	}
	if body.WeeklyRateKG != nil {
		set("weekly_rate_kg", "weeklyRateKG", *body.WeeklyRateKG)
	}
	if body.ActivityLevel != nil {
		set("activity_level", "activityLevel", *body.ActivityLevel)
	}
	switch {
	case body.ActivityFactor != nil:
		set("activity_factor", "activityFactor", *body.ActivityFactor)
	case body.ActivityLevel != nil:
		setClauses = append(setClauses, "activity_factor = NULL")
	}
	if body.Sex != nil {
		set("sex", "sex", *body.Sex)
	}
	if body.DateOfBirth != nil {
		set("date_of_birth", "dateOfBirth", *body.DateOfBirth)
	}
	if body.HeightCM != nil {
		set("height_cm", "heightCM", *body.HeightCM)
	}
	if body.WeightKG != nil {
		set("weight_kg", "weightKG", *body.WeightKG)
	}
	if body.TargetWeightKG != nil {
		set("target_weight_kg", "targetWeightKG", *body.TargetWeightKG)
	}
	return setClauses, args
}

// patchGoalSettings updates only the provided goal fields.
// PATCH /api/goal-settings. Pointer fields distinguish "not provided" from zero.
func (h *Handler) patchGoalSettings(c *gin.Context) {
	userID := c.GetInt("user_id")

	var body patchGoalSettingsRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validateGoalPatch(body); err != nil {
		apiError(c, http.StatusBadRequest, err.Error())
		return
	}

	setClauses, args := goalPatchClauses(body, userID)
	if len(setClauses) == 0 {
		apiError(c, http.StatusBadRequest, "no fields to update")
		return
	}

	query := "UPDATE calorie_log_user_settings SET " +
		strings.Join(setClauses, ", ") +
		", updated_at = now() WHERE user_id = @userID RETURNING *"

	s, err := store.QueryOne[store.GoalSettings](c, h.db, query, args)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			apiError(c, http.StatusNotFound, "settings not found")
		} else {
			h.logFailure(c, "patchGoalSettings", "update failed", err)
			apiError(c, http.StatusInternalServerError, "failed to update settings")
		}
		return
	}
	h.cache.invalidate(userID)

	c.JSON(http.StatusOK, withFormulaEstimate(s, h.estimator.Tuning(), time.Now()))
}
