package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"lg/adaptive-tdee-go-api/expenditure"
	"lg/adaptive-tdee-go-api/store"
)

// Handler holds shared dependencies for all route handlers.
type Handler struct {
	db            store.Querier
	estimator     *expenditure.Estimator
	cache         *estimateCache
	lookbackWeeks int // default window for GET /api/expenditure
	log           *zap.Logger
}

// apiError returns a consistent JSON error response: {"error": "message"}.
func apiError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

// logFailure records a handler failure with the calling user.
func (h *Handler) logFailure(c *gin.Context, handler, msg string, err error) {
	h.log.Error(msg,
		zap.String("handler", handler),
		zap.Int("user_id", c.GetInt("user_id")),
		zap.Error(err))
}

// registerRoutes registers all API routes on the router.
func (h *Handler) registerRoutes(router *gin.Engine) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Public routes
	router.POST("/api/login", h.login)

	// Authenticated routes
	api := router.Group("/api", h.authMiddleware())
	api.GET("/expenditure", h.getExpenditure)
	api.POST("/expenditure/apply", h.applyExpenditure)
	api.GET("/weight-log", h.getWeightLog)
	api.POST("/weight-log", h.upsertWeightEntry)
	api.PUT("/weight-log/:id", h.updateWeightEntry)
	api.DELETE("/weight-log/:id", h.deleteWeightEntry)
	api.GET("/calorie-log/items", h.listCalorieLogItems)
	api.POST("/calorie-log/items", h.createCalorieLogItem)
	api.PUT("/calorie-log/items/:id", h.updateCalorieLogItem)
	api.DELETE("/calorie-log/items/:id", h.deleteCalorieLogItem)
	api.PUT("/calorie-log/day-flags/:date", h.putDayFlag)
	api.GET("/goal-settings", h.getGoalSettings)
	api.PATCH("/goal-settings", h.patchGoalSettings)
}
