package main

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"

	"lg/adaptive-tdee-go-api/store"
)

// validItemTypes is the set of allowed values for the calorie_log_item_type enum.
// Exercise items are logged but never count as intake.
var validItemTypes = map[string]bool{
	"breakfast": true,
	"lunch":     true,
	"dinner":    true,
	"snack":     true,
	"exercise":  true,
}

// maxItemCalories bounds a single logged item.
const maxItemCalories = 20000

// validateMacros rejects negative gram values.
func validateMacros(protein, carbs, fat *float64) error {
	names := []string{"protein_g", "carbs_g", "fat_g"}
	for i, v := range []*float64{protein, carbs, fat} {
		if v != nil && *v < 0 {
			return fmt.Errorf("%s must not be negative", names[i])
		}
	}
	return nil
}

func validateNewItem(body *createCalorieLogItemRequest, today time.Time) error {
	if body.ItemName == "" {
		return errors.New("item_name is required")
	}
	if !validItemTypes[body.Type] {
		return errors.New("type must be one of: breakfast, lunch, dinner, snack, exercise")
	}
	if body.Date == "" {
		body.Date = today.Format(store.DateLayout)
	} else if _, err := time.Parse(store.DateLayout, body.Date); err != nil {
		return errors.New("invalid date, expected YYYY-MM-DD")
	}
	if body.Calories < 0 || body.Calories > maxItemCalories {
		return fmt.Errorf("calories must be between 0 and %d", maxItemCalories)
	}
	return validateMacros(body.ProteinG, body.CarbsG, body.FatG)
}

// listCalorieLogItems returns the user's items within [start, end].
// GET /api/calorie-log/items?start=YYYY-MM-DD&end=YYYY-MM-DD. Both params required.
func (h *Handler) listCalorieLogItems(c *gin.Context) {
	userID := c.GetInt("user_id")
	start, end, ok := dateRangeParams(c)
	if !ok {
		return
	}

	items, err := store.QueryMany[calorieLogItem](c, h.db,
		`SELECT * FROM calorie_log_items
		 WHERE user_id = @userID AND date >= @start AND date <= @end
		 ORDER BY date ASC, created_at ASC`,
		pgx.NamedArgs{"userID": userID, "start": start, "end": end})
	if err != nil {
		h.logFailure(c, "listCalorieLogItems", "query failed", err)
		apiError(c, http.StatusInternalServerError, "failed to fetch items")
		return
	}
	if items == nil {
		items = []calorieLogItem{}
	}

	c.JSON(http.StatusOK, items)
}

// createCalorieLogItem logs a food or exercise item.
// POST /api/calorie-log/items. Date defaults to today.
func (h *Handler) createCalorieLogItem(c *gin.Context) {
	userID := c.GetInt("user_id")

	var body createCalorieLogItemRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validateNewItem(&body, time.Now()); err != nil {
		apiError(c, http.StatusBadRequest, err.Error())
		return
	}

	item, err := store.QueryOne[calorieLogItem](c, h.db,
		`INSERT INTO calorie_log_items (user_id, date, item_name, type, qty, uom, calories, protein_g, carbs_g, fat_g)
		 VALUES (@userID, @date, @itemName, @type, @qty, @uom, @calories, @proteinG, @carbsG, @fatG)
		 RETURNING *`,
		pgx.NamedArgs{
			"userID": userID, "date": body.Date, "itemName": body.ItemName,
			"type": body.Type, "qty": body.Qty, "uom": body.Uom,
			"calories": body.Calories, "proteinG": body.ProteinG,
			"carbsG": body.CarbsG, "fatG": body.FatG,
		})
	if err != nil {
		h.logFailure(c, "createCalorieLogItem", "insert failed", err)
		apiError(c, http.StatusInternalServerError, "failed to create item")
		return
	}
	h.cache.invalidate(userID)

	c.JSON(http.StatusCreated, item)
}

// updateCalorieLogItem updates an existing calorie log entry.
// PUT /api/calorie-log/items/:id. Uses COALESCE so omitted fields keep their current value.
func (h *Handler) updateCalorieLogItem(c *gin.Context) {
	userID := c.GetInt("user_id")
	id := c.Param("id")

	var body updateCalorieLogItemRequest
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
	if body.Type != nil && !validItemTypes[*body.Type] {
		apiError(c, http.StatusBadRequest, "type must be one of: breakfast, lunch, dinner, snack, exercise")
		return
	}
	if body.Calories != nil && (*body.Calories < 0 || *body.Calories > maxItemCalories) {
		apiError(c, http.StatusBadRequest, fmt.Sprintf("calories must be between 0 and %d", maxItemCalories))
		return
	}
	if err := validateMacros(body.ProteinG, body.CarbsG, body.FatG); err != nil {
		apiError(c, http.StatusBadRequest, err.Error())
		return
	}

	item, err := store.QueryOne[calorieLogItem](c, h.db,
		`UPDATE calorie_log_items SET
			date = COALESCE(@date, date),
			item_name = COALESCE(@itemName, item_name),
			type = COALESCE(@type::calorie_log_item_type, type),
			qty = COALESCE(@qty, qty),
			uom = COALESCE(@uom, uom),
			calories = COALESCE(@calories, calories),
			protein_g = COALESCE(@proteinG, protein_g),
			carbs_g = COALESCE(@carbsG, carbs_g),
			fat_g = COALESCE(@fatG, fat_g),
			updated_at = now()
		 WHERE id = @id AND user_id = @userID
		 RETURNING *`,
		pgx.NamedArgs{
			"id": id, "userID": userID,
			"date": body.Date, "itemName": body.ItemName, "type": body.Type,
			"qty": body.Qty, "uom": body.Uom, "calories": body.Calories,
			"proteinG": body.ProteinG, "carbsG": body.CarbsG, "fatG": body.FatG,
		})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			apiError(c, http.StatusNotFound, "item not found")
		} else {
			h.logFailure(c, "updateCalorieLogItem", "update failed", err)
			apiError(c, http.StatusInternalServerError, "failed to update item")
		}
		return
	}
	h.cache.invalidate(userID)

	c.JSON(http.StatusOK, item)
}

// deleteCalorieLogItem removes a calorie log entry. Returns 204 on success.
// DELETE /api/calorie-log/items/:id.
func (h *Handler) deleteCalorieLogItem(c *gin.Context) {
	userID := c.GetInt("user_id")
	id := c.Param("id")

	result, err := h.db.Exec(c,
		"DELETE FROM calorie_log_items WHERE id = @id AND user_id = @userID",
		pgx.NamedArgs{"id": id, "userID": userID})
	if err != nil {
		h.logFailure(c, "deleteCalorieLogItem", "delete failed", err)
		apiError(c, http.StatusInternalServerError, "failed to delete item")
		return
	}
	if result.RowsAffected() == 0 {
		apiError(c, http.StatusNotFound, "item not found")
		return
	}
	h.cache.invalidate(userID)

	c.Status(http.StatusNoContent)
}

// putDayFlag marks or clears a day as partially logged. Partial days still
// count as logged but are kept out of the average intake.
// PUT /api/calorie-log/day-flags/:date. Body: { "partial": true }.
func (h *Handler) putDayFlag(c *gin.Context) {
	userID := c.GetInt("user_id")
	date := c.Param("date")
	if _, err := time.Parse(store.DateLayout, date); err != nil {
		apiError(c, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}

	var body struct {
		Partial *bool `json:"partial"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.Partial == nil {
		apiError(c, http.StatusBadRequest, "partial is required")
		return
	}

	flag, err := store.QueryOne[dayFlag](c, h.db,
		`INSERT INTO calorie_log_day_flags (user_id, date, partial)
		 VALUES (@userID, @date, @partial)
		 ON CONFLICT (user_id, date) DO UPDATE SET partial = EXCLUDED.partial, updated_at = now()
		 RETURNING *`,
		pgx.NamedArgs{"userID": userID, "date": date, "partial": *body.Partial})
	if err != nil {
		h.logFailure(c, "putDayFlag", "upsert failed", err)
		apiError(c, http.StatusInternalServerError, "failed to save day flag")
		return
	}
	h.cache.invalidate(userID)

	c.JSON(http.StatusOK, flag)
}
