package main

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"

	"lg/adaptive-tdee-go-api/expenditure"
	"lg/adaptive-tdee-go-api/store"
)

// lookbackParam reads ?weeks=N, falling back to the configured window.
func (h *Handler) lookbackParam(c *gin.Context) (int, bool) {
	s := c.Query("weeks")
	if s == "" {
		return h.lookbackWeeks, true
	}
	weeks, err := strconv.Atoi(s)
	if err != nil || weeks < 1 || weeks > expenditure.MaxLookbackWeeks {
		apiError(c, http.StatusBadRequest, "weeks must be a whole number between 1 and "+strconv.Itoa(expenditure.MaxLookbackWeeks))
		return 0, false
	}
	return weeks, true
}

// getExpenditure returns the adaptive expenditure estimate, daily target and
// macro split for the authenticated user.
// GET /api/expenditure?weeks=N. Too little data is a 200 with confidence "none".
func (h *Handler) getExpenditure(c *gin.Context) {
	userID := c.GetInt("user_id")
	weeks, ok := h.lookbackParam(c)
	if !ok {
		return
	}

	est, hit, err := h.cache.get(c.Request.Context(), userID, weeks)
	if err != nil {
		h.logFailure(c, "getExpenditure", "estimate failed", err)
		apiError(c, http.StatusInternalServerError, "failed to compute expenditure")
		return
	}

	c.Header("X-Estimate-Cache", cacheStatus(hit))
	c.JSON(http.StatusOK, est)
}

// applyExpenditure copies the current daily target and macro split into the
// user's goal settings.
// POST /api/expenditure/apply?weeks=N. Returns 409 when there is no estimate.
func (h *Handler) applyExpenditure(c *gin.Context) {
	userID := c.GetInt("user_id")
	weeks, ok := h.lookbackParam(c)
	if !ok {
		return
	}

	est, _, err := h.cache.get(c.Request.Context(), userID, weeks)
	if err != nil {
		h.logFailure(c, "applyExpenditure", "estimate failed", err)
		apiError(c, http.StatusInternalServerError, "failed to compute expenditure")
		return
	}
	if est.Confidence == expenditure.ConfidenceNone {
		c.JSON(http.StatusConflict, gin.H{
			"error":    "not enough data to set targets",
			"estimate": est,
		})
		return
	}

	s, err := store.QueryOne[store.GoalSettings](c, h.db,
		`UPDATE calorie_log_user_settings SET
			calorie_budget     = @calories,
			protein_target_g   = @protein,
			carbs_target_g     = @carbs,
			fat_target_g       = @fat,
			targets_applied_at = now(),
			updated_at         = now()
		 WHERE user_id = @userID
		 RETURNING *`,
		pgx.NamedArgs{
			"userID":   userID,
			"calories": est.DailyTargetKcal,
			"protein":  est.MacroTargets.ProteinG,
			"carbs":    est.MacroTargets.CarbsG,
			"fat":      est.MacroTargets.FatG,
		})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			apiError(c, http.StatusNotFound, "settings not found")
		} else {
			h.logFailure(c, "applyExpenditure", "update settings failed", err)
			apiError(c, http.StatusInternalServerError, "failed to apply targets")
		}
		return
	}
	h.cache.invalidate(userID)

	c.JSON(http.StatusOK, gin.H{"settings": s, "estimate": est})
}

func cacheStatus(hit bool) string {
	if hit {
		return "hit"
	}
	return "miss"
}
