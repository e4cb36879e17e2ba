package http

import (
	"net/http"
	"time"

	"github.com/fpellegrini/habitus/internal/adapters/handler/http/middleware"
	"github.com/fpellegrini/habitus/internal/core/services"
	"github.com/gin-gonic/gin"
)

type ProgressHandler struct {
	svc *services.ProgressService
}

func NewProgressHandler(svc *services.ProgressService) *ProgressHandler {
	return &ProgressHandler{
		svc: svc,
	}
}

func (h *ProgressHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/goals/:id/streak", h.Streak)
	router.GET("/goals/:id/stats", h.Stats)
	router.GET("/goals/:id/progress", h.FiniteProgress)
	router.GET("/goals/:id/heatmap", h.GoalHeatmap)
	router.GET("/heatmap", h.OverviewHeatmap)
}

// parseWindow reads from/to query params, defaulting to the last 30 days.
func parseWindow(c *gin.Context) (time.Time, time.Time, bool) {
	to := time.Now().UTC()
	from := to.AddDate(0, 0, -30)

	if f := c.Query("from"); f != "" {
		parsed, err := parseDateField(f)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid from format (use RFC3339 or YYYY-MM-DD)"})
			return from, to, false
		}
		from = parsed
	}
	if t := c.Query("to"); t != "" {
		parsed, err := parseDateField(t)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid to format (use RFC3339 or YYYY-MM-DD)"})
			return from, to, false
		}
		to = parsed
	}

	if to.Before(from) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "to must not be before from"})
		return from, to, false
	}

	return from, to, true
}

func (h *ProgressHandler) Streak(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	result, err := h.svc.GetStreak(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *ProgressHandler) Stats(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	from, to, ok := parseWindow(c)
	if !ok {
		return
	}

	stats, err := h.svc.GetCompletionStats(c.Request.Context(), c.Param("id"), userID, from, to)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

func (h *ProgressHandler) FiniteProgress(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	progress, err := h.svc.GetFiniteProgress(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, progress)
}

func (h *ProgressHandler) GoalHeatmap(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	from, to, ok := parseWindow(c)
	if !ok {
		return
	}

	days, err := h.svc.GetGoalHeatmap(c.Request.Context(), c.Param("id"), userID, from, to)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"days": days})
}

func (h *ProgressHandler) OverviewHeatmap(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	from, to, ok := parseWindow(c)
	if !ok {
		return
	}

	days, err := h.svc.GetOverviewHeatmap(c.Request.Context(), userID, from, to)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"days": days})
}
