package main

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"

	"lg/adaptive-tdee-go-api/expenditure"
	"lg/adaptive-tdee-go-api/store"
)

// Plausible bounds for a logged reading.
const (
	maxWeightKG = 500.0
	maxBMRKcal  = 5000.0
)

// dateRangeParams reads the required ?start and ?end query params. It writes
// the 400 response itself and returns ok=false on bad input.
func dateRangeParams(c *gin.Context) (start, end string, ok bool) {
	start, end = c.Query("start"), c.Query("end")
	if start == "" || end == "" {
		apiError(c, http.StatusBadRequest, "start and end query params are required")
		return "", "", false
	}
	if _, err := time.Parse(store.DateLayout, start); err != nil {
		apiError(c, http.StatusBadRequest, "invalid start, expected YYYY-MM-DD")
		return "", "", false
	}
	if _, err := time.Parse(store.DateLayout, end); err != nil {
		apiError(c, http.StatusBadRequest, "invalid end, expected YYYY-MM-DD")
		return "", "", false
	}
	if start > end {
		apiError(c, http.StatusBadRequest, "start must not be after end")
		return "", "", false
	}
	return start, end, true
}

func validateWeight(kg float64) error {
	if !(kg > 0) || kg > maxWeightKG {
		return fmt.Errorf("weight_kg must be between 0 and %g", maxWeightKG)
	}
	return nil
}

func validateBMR(bmr *float64) error {
	if bmr != nil && (!(*bmr > 0) || *bmr > maxBMRKcal) {
		return fmt.Errorf("bmr_kcal must be between 0 and %g", maxBMRKcal)
	}
	return nil
}

// validateNewWeight checks a create request and fills the default source.
func validateNewWeight(body *createWeightEntryRequest) error {
	if body.Date == "" {
		return errors.New("date is required")
	}
	if _, err := time.Parse(store.DateLayout, body.Date); err != nil {
		return errors.New("invalid date, expected YYYY-MM-DD")
	}
	if err := validateWeight(body.WeightKG); err != nil {
		return err
	}
	if err := validateBMR(body.BMRKcal); err != nil {
		return err
	}
	switch expenditure.WeightSource(body.Source) {
	case "":
		body.Source = string(expenditure.SourceManual)
	case expenditure.SourceManual, expenditure.SourceScale, expenditure.SourceImport:
	default:
		return errors.New("source must be one of: manual, scale, import")
	}
	return nil
}

// getWeightLog returns weight entries for the authenticated user within [start, end].
// GET /api/weight-log?start=YYYY-MM-DD&end=YYYY-MM-DD. Both params required.
// Returns an empty array (not null) if no entries exist in the range.
func (h *Handler) getWeightLog(c *gin.Context) {
	userID := c.GetInt("user_id")
	start, end, ok := dateRangeParams(c)
	if !ok {
		return
	}

	entries, err := store.QueryMany[weightEntry](c, h.db,
		`SELECT * FROM weight_log
		 WHERE user_id = @userID AND date >= @start AND date <= @end
		 ORDER BY date ASC, source ASC`,
		pgx.NamedArgs{"userID": userID, "start": start, "end": end})
	if err != nil {
		h.logFailure(c, "getWeightLog", "query failed", err)
		apiError(c, http.StatusInternalServerError, "failed to fetch weight log")
		return
	}
	if entries == nil {
		entries = []weightEntry{}
	}

	c.JSON(http.StatusOK, entries)
}

// upsertWeightEntry creates or updates the reading for a date and source.
// POST /api/weight-log. Body: { "date": "YYYY-MM-DD", "weight_kg": 82.4, "bmr_kcal"?, "source"? }.
// UNIQUE(user_id, date, source) means posting the same date and source updates in
// place, while a scale and a manual reading for one day are both kept.
func (h *Handler) upsertWeightEntry(c *gin.Context) {
	userID := c.GetInt("user_id")

	var body createWeightEntryRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validateNewWeight(&body); err != nil {
		apiError(c, http.StatusBadRequest, err.Error())
		return
	}

	entry, err := store.QueryOne[weightEntry](c, h.db,
		`INSERT INTO weight_log (user_id, date, weight_kg, bmr_kcal, source)
		 VALUES (@userID, @date, @weightKG, @bmrKcal, @source)
		 ON CONFLICT (user_id, date, source) DO UPDATE SET
			weight_kg = EXCLUDED.weight_kg,
			bmr_kcal  = EXCLUDED.bmr_kcal
		 RETURNING *`,
		pgx.NamedArgs{
			"userID": userID, "date": body.Date, "weightKG": body.WeightKG,
			"bmrKcal": body.BMRKcal, "source": body.Source,
		})
	if err != nil {
		h.logFailure(c, "upsertWeightEntry", "upsert failed", err)
		apiError(c, http.StatusInternalServerError, "failed to upsert weight entry")
		return
	}
	h.cache.invalidate(userID)

	c.JSON(http.StatusCreated, entry)
}

// updateWeightEntry partially updates an existing weight entry.
// PUT /api/weight-log/:id. Uses COALESCE so omitted fields keep their current values.
func (h *Handler) updateWeightEntry(c *gin.Context) {
	userID := c.GetInt("user_id")
	id := c.Param("id")

	var body updateWeightEntryRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.Date != nil {
		if _, err := time.Parse(store.DateLayout, *body.Date); err != nil {
			apiError(c, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
			return
		}
	}
	if body.WeightKG != nil {
		if err := validateWeight(*body.WeightKG); err != nil {
			apiError(c, http.StatusBadRequest, err.Error())
			return
		}
	}
	if err := validateBMR(body.BMRKcal); err != nil {
		apiError(c, http.StatusBadRequest, err.Error())
		return
	}

	entry, err := store.QueryOne[weightEntry](c, h.db,
		`UPDATE weight_log SET
			date      = COALESCE(@date, date),
			weight_kg = COALESCE(@weightKG, weight_kg),
			bmr_kcal  = COALESCE(@bmrKcal, bmr_kcal)
		 WHERE id = @id AND user_id = @userID
		 RETURNING *`,
		pgx.NamedArgs{
			"id": id, "userID": userID, "date": body.Date,
			"weightKG": body.WeightKG, "bmrKcal": body.BMRKcal,
		})
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			apiError(c, http.StatusNotFound, "weight entry not found")
		case store.IsUniqueViolation(err):
			apiError(c, http.StatusConflict, "an entry from this source already exists for that date")
		default:
			h.logFailure(c, "updateWeightEntry", "update failed", err)
			apiError(c, http.StatusInternalServerError, "failed to update weight entry")
		}
		return
	}
	h.cache.invalidate(userID)

	c.JSON(http.StatusOK, entry)
}

// deleteWeightEntry removes a weight log entry by ID.
// DELETE /api/weight-log/:id. Returns 204 on success, 404 if not found.
func (h *Handler) deleteWeightEntry(c *gin.Context) {
	userID := c.GetInt("user_id")
	id := c.Param("id")

	result, err := h.db.Exec(c,
		"DELETE FROM weight_log WHERE id = @id AND user_id = @userID",
		pgx.NamedArgs{"id": id, "userID": userID})
	if err != nil {
		h.logFailure(c, "deleteWeightEntry", "delete failed", err)
		apiError(c, http.StatusInternalServerError, "failed to delete weight entry")
		return
	}
	if result.RowsAffected() == 0 {
		apiError(c, http.StatusNotFound, "weight entry not found")
		return
	}
	h.cache.invalidate(userID)

	c.Status(http.StatusNoContent)
}
