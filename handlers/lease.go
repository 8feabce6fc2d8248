package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"spms/ledger"
	"spms/models"
)

type LeaseHandler struct {
	DB     *gorm.DB
	Ledger *ledger.Service
}

type approveRequest struct {
	PropertyID uint `json:"propertyId" binding:"required"`
}

// Approve turns a requested property into an occupied one and materializes
// the lease with its full 12-month payment schedule. Guarded against
// double-approval: one lease per property.
func (h *LeaseHandler) Approve(c *gin.Context) {
	var req approveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, CodeInvalidInput, "Invalid request body")
		return
	}

	var prop models.Property
	if err := h.DB.First(&prop, req.PropertyID).Error; err != nil {
		fail(c, http.StatusNotFound, CodeNotFound, "Property not found")
		return
	}
	if prop.TenantID == nil {
		fail(c, http.StatusBadRequest, CodeInvalidInput, "Property has no pending request")
		return
	}

	var existing models.Lease
	err := h.DB.Where("property_id = ?", prop.ID).First(&existing).Error
	if err == nil {
		fail(c, http.StatusBadRequest, CodeAlreadyLeased, "Property already has a lease")
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		fail(c, http.StatusInternalServerError, CodeInternal, err.Error())
		return
	}

	start := time.Now()
	lease := models.Lease{
		PropertyID:  prop.ID,
		TenantID:    *prop.TenantID,
		StartDate:   start,
		EndDate:     start.AddDate(1, 0, 0),
		TotalAmount: prop.InitialPrice + prop.Rent*11,
		MonthlyRent: prop.Rent,
		Status:      "active",
		Payments:    ledger.BuildSchedule(start, prop.InitialPrice, prop.Rent),
	}

	txErr := h.DB.Transaction(func(tx *gorm.DB) error {
		prop.Status = models.PropertyOccupied
		if err := tx.Save(&prop).Error; err != nil {
			return err
		}
		return tx.Create(&lease).Error
	})
	if txErr != nil {
		fail(c, http.StatusInternalServerError, CodeInternal, "Failed to generate lease")
		return
	}

	c.JSON(http.StatusOK, gin.H{"msg": "Lease generated and property approved", "lease": lease})
}

// TenantLease fetches the lease for a tenant, schedule included.
func (h *LeaseHandler) TenantLease(c *gin.Context) {
	var lease models.Lease
	err := h.DB.Preload("Payments", func(db *gorm.DB) *gorm.DB { return db.Order("seq asc") }).
		Preload("Property").
		Where("tenant_id = ?", c.Param("tenantId")).First(&lease).Error
	if err != nil {
		fail(c, http.StatusNotFound, CodeNotFound, "Lease not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"lease": lease})
}

type payRequest struct {
	LeaseID uint   `json:"leaseId" binding:"required"`
	Type    string `json:"type"` // "initial" | "monthly"
}

// Pay records a payment for the current calendar month (named-month policy).
func (h *LeaseHandler) Pay(c *gin.Context) {
	var req payRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, CodeInvalidInput, "Invalid request body")
		return
	}
	if req.Type != "initial" && req.Type != "monthly" {
		fail(c, http.StatusBadRequest, CodeInvalidInput, "Type must be initial or monthly")
		return
	}

	var lease models.Lease
	if err := h.DB.First(&lease, req.LeaseID).Error; err != nil {
		fail(c, http.StatusNotFound, CodeNotFound, "Lease not found")
		return
	}

	label := ledger.MonthLabel(time.Now())
	entry, err := h.Ledger.PayMonth(lease.ID, label)
	switch {
	case errors.Is(err, ledger.ErrNoEntry):
		fail(c, http.StatusBadRequest, CodeInvalidInput, "No payment record found for this month")
		return
	case errors.Is(err, ledger.ErrAlreadyPaid):
		fail(c, http.StatusBadRequest, CodeAlreadyPaid, "This month is already paid")
		return
	case err != nil:
		fail(c, http.StatusInternalServerError, CodeInternal, "Payment failed")
		return
	}

	err = h.DB.Preload("Payments", func(db *gorm.DB) *gorm.DB { return db.Order("seq asc") }).
		First(&lease, lease.ID).Error
	if err != nil {
		fail(c, http.StatusInternalServerError, CodeInternal, err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": fmt.Sprintf("Payment for %s recorded successfully.", entry.Month),
		"lease":   lease,
	})
}
