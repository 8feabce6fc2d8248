package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"spms/models"
)

const (
	liveFeedLimit  = 100
	energyCacheTTL = 2 * time.Second
)

type EnergyHandler struct {
	DB    *gorm.DB
	Cache *redis.Client // optional; nil disables caching
}

// PropertyEnergySummary is the per-property aggregate over retained readings.
type PropertyEnergySummary struct {
	PropertyID  uint    `gorm:"column:property_id" json:"propertyId"`
	AvgKWh      float64 `gorm:"column:avg_kwh" json:"avg_kWh"`
	AvgTemp     float64 `gorm:"column:avg_temp" json:"avg_temp"`
	AvgHumidity float64 `gorm:"column:avg_humidity" json:"avg_humidity"`
	Readings    int64   `gorm:"column:readings" json:"readings"`
}

// Live returns the most recent readings across all properties, newest first.
func (h *EnergyHandler) Live(c *gin.Context) {
	var readings []models.EnergyReading
	if getCached(c.Request.Context(), h.Cache, "energy:live", &readings) {
		c.JSON(http.StatusOK, readings)
		return
	}

	err := h.DB.Order("timestamp desc").Limit(liveFeedLimit).Find(&readings).Error
	if err != nil {
		fail(c, http.StatusInternalServerError, CodeInternal, err.Error())
		return
	}

	setCached(c.Request.Context(), h.Cache, "energy:live", readings, energyCacheTTL)
	c.JSON(http.StatusOK, readings)
}

// Summary aggregates average power, temperature and humidity per property.
func (h *EnergyHandler) Summary(c *gin.Context) {
	var summary []PropertyEnergySummary
	if getCached(c.Request.Context(), h.Cache, "energy:summary", &summary) {
		c.JSON(http.StatusOK, summary)
		return
	}

	err := h.DB.Model(&models.EnergyReading{}).
		Select("property_id, AVG(power_kwh) as avg_kwh, AVG(temp_c) as avg_temp, AVG(humidity) as avg_humidity, COUNT(*) as readings").
		Group("property_id").
		Scan(&summary).Error
	if err != nil {
		fail(c, http.StatusInternalServerError, CodeInternal, err.Error())
		return
	}

	setCached(c.Request.Context(), h.Cache, "energy:summary", summary, energyCacheTTL)
	c.JSON(http.StatusOK, summary)
}
