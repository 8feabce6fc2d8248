package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"spms/models"
)

const propertiesPerPage = 6

type PropertyHandler struct {
	DB *gorm.DB
}

// List returns a page of properties plus the total count.
func (h *PropertyHandler) List(c *gin.Context) {
	page, err := strconv.Atoi(c.Query("page"))
	if err != nil || page < 1 {
		page = 1
	}

	var total int64
	if err := h.DB.Model(&models.Property{}).Count(&total).Error; err != nil {
		fail(c, http.StatusInternalServerError, CodeInternal, err.Error())
		return
	}

	var properties []models.Property
	err = h.DB.Offset((page - 1) * propertiesPerPage).Limit(propertiesPerPage).Find(&properties).Error
	if err != nil {
		fail(c, http.StatusInternalServerError, CodeInternal, err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{"properties": properties, "total": total})
}

type addPropertyRequest struct {
	Name         string  `json:"name" binding:"required"`
	Location     string  `json:"location"`
	Rent         float64 `json:"rent"`
	InitialPrice float64 `json:"initialPrice"`
}

// Create adds a property (manager action).
func (h *PropertyHandler) Create(c *gin.Context) {
	var req addPropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, CodeInvalidInput, "Invalid request body")
		return
	}

	prop := models.Property{
		Name:         req.Name,
		Location:     req.Location,
		Rent:         req.Rent,
		InitialPrice: req.InitialPrice,
		Status:       models.PropertyAvailable,
	}
	if err := h.DB.Create(&prop).Error; err != nil {
		fail(c, http.StatusInternalServerError, CodeInternal, "Failed to add property")
		return
	}

	c.JSON(http.StatusOK, gin.H{"msg": "Property added", "prop": prop})
}

type requestPropertyRequest struct {
	TenantID   uint `json:"tenantId" binding:"required"`
	PropertyID uint `json:"propertyId" binding:"required"`
}

// Request marks an available property as requested by a tenant.
func (h *PropertyHandler) Request(c *gin.Context) {
	var req requestPropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, CodeInvalidInput, "Invalid request body")
		return
	}

	var prop models.Property
	if err := h.DB.First(&prop, req.PropertyID).Error; err != nil {
		fail(c, http.StatusNotFound, CodeNotFound, "Property not found")
		return
	}
	if prop.Status != models.PropertyAvailable {
		fail(c, http.StatusBadRequest, CodeInvalidInput, "Property not available")
		return
	}

	prop.Status = models.PropertyRequested
	prop.TenantID = &req.TenantID
	if err := h.DB.Save(&prop).Error; err != nil {
		fail(c, http.StatusInternalServerError, CodeInternal, "Failed to update property")
		return
	}

	c.JSON(http.StatusOK, gin.H{"msg": "Request sent to manager", "prop": prop})
}

// Requests lists pending tenant requests for the manager dashboard.
func (h *PropertyHandler) Requests(c *gin.Context) {
	var requests []models.Property
	err := h.DB.Preload("Tenant").Where("status = ?", models.PropertyRequested).Find(&requests).Error
	if err != nil {
		fail(c, http.StatusInternalServerError, CodeInternal, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"requests": requests})
}
