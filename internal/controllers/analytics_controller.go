package controllers

import (
	"net/http"
	"strconv"

	"linklytics-be/internal/middleware"
	"linklytics-be/internal/service"

	"github.com/gin-gonic/gin"
)

const defaultWindowDays = 7

type AnalyticsController struct {
	analyticsService service.AnalyticsService
}

func NewAnalyticsController(analyticsService service.AnalyticsService) *AnalyticsController {
	return &AnalyticsController{analyticsService: analyticsService}
}

// windowDays reads the ?days= query parameter, falling back to the default
// window for anything missing or unparsable.
func windowDays(c *gin.Context) int {
	days, err := strconv.Atoi(c.DefaultQuery("days", strconv.Itoa(defaultWindowDays)))
	if err != nil || days < 1 {
		return defaultWindowDays
	}
	return days
}

// Summary handles GET /api/v1/analytics/:shortCode/summary
func (ac *AnalyticsController) Summary(c *gin.Context) {
	userID := c.GetString(middleware.ContextUserID)
	data, err := ac.analyticsService.Summary(c.Request.Context(), c.Param("shortCode"), userID, windowDays(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "data": data})
}

// Timeseries handles GET /api/v1/analytics/:shortCode/timeseries
func (ac *AnalyticsController) Timeseries(c *gin.Context) {
	userID := c.GetString(middleware.ContextUserID)
	data, err := ac.analyticsService.Timeseries(c.Request.Context(), c.Param("shortCode"), userID, windowDays(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "data": data})
}

// Devices handles GET /api/v1/analytics/:shortCode/devices
func (ac *AnalyticsController) Devices(c *gin.Context) {
	userID := c.GetString(middleware.ContextUserID)
	data, err := ac.analyticsService.Devices(c.Request.Context(), c.Param("shortCode"), userID, windowDays(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "data": data})
}

// UTM handles GET /api/v1/analytics/:shortCode/utmData?utmParam=utmSource
func (ac *AnalyticsController) UTM(c *gin.Context) {
	userID := c.GetString(middleware.ContextUserID)
	field := c.DefaultQuery("utmParam", "utmSource")
	data, err := ac.analyticsService.UTMBreakdown(c.Request.Context(), c.Param("shortCode"), userID, windowDays(c), field)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "data": data})
}

// Locations handles GET /api/v1/analytics/:shortCode/locations
func (ac *AnalyticsController) Locations(c *gin.Context) {
	userID := c.GetString(middleware.ContextUserID)
	data, err := ac.analyticsService.Locations(c.Request.Context(), c.Param("shortCode"), userID, windowDays(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "data": data})
}

// Referrers handles GET /api/v1/analytics/:shortCode/referrers
func (ac *AnalyticsController) Referrers(c *gin.Context) {
	userID := c.GetString(middleware.ContextUserID)
	data, err := ac.analyticsService.Referrers(c.Request.Context(), c.Param("shortCode"), userID, windowDays(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "data": data})
}
