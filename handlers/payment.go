package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"spms/ledger"
	"spms/models"
)

type PaymentHandler struct {
	DB     *gorm.DB
	Ledger *ledger.Service
	Delay  time.Duration // simulated processing latency
}

type mockPaymentRequest struct {
	UserID     uint    `json:"userId" binding:"required"`
	CardID     string  `json:"cardId" binding:"required"`
	Amount     float64 `json:"amount"`
	PropertyID uint    `json:"propertyId"`
}

// Mock simulates a card payment: validate the stored card, wait out the fake
// processing delay, record the payment, then advance the lease ledger by one
// entry (sequential-unlock). A missing lease is fine; the payment still
// stands on its own as an audit row.
func (h *PaymentHandler) Mock(c *gin.Context) {
	var req mockPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, CodeInvalidInput, "Invalid request body")
		return
	}

	var user models.User
	if err := h.DB.Preload("Cards").First(&user, req.UserID).Error; err != nil {
		fail(c, http.StatusNotFound, CodeNotFound, "User not found")
		return
	}

	if !hasCard(user.Cards, req.CardID) {
		fail(c, http.StatusBadRequest, CodeInvalidInput, "Invalid or missing card")
		return
	}

	// Simulate payment processing latency.
	time.Sleep(h.Delay)

	payment := models.Payment{
		UserID:     req.UserID,
		PropertyID: req.PropertyID,
		CardID:     req.CardID,
		Amount:     req.Amount,
		Status:     "success",
		Timestamp:  time.Now(),
	}
	if err := h.DB.Create(&payment).Error; err != nil {
		fail(c, http.StatusInternalServerError, CodeInternal, "Failed to record payment")
		return
	}

	var lease models.Lease
	err := h.DB.Where("property_id = ? AND tenant_id = ?", req.PropertyID, req.UserID).First(&lease).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// Payment before a lease exists; nothing to advance.
		c.JSON(http.StatusOK, gin.H{
			"msg":     "Mock payment processed successfully",
			"payment": payment,
			"lease":   nil,
		})
		return
	}
	if err != nil {
		fail(c, http.StatusInternalServerError, CodeInternal, err.Error())
		return
	}

	if err := h.Ledger.Advance(&lease); err != nil {
		fail(c, http.StatusInternalServerError, CodeInternal, "Failed to update lease")
		return
	}

	err = h.DB.Preload("Payments", func(db *gorm.DB) *gorm.DB { return db.Order("seq asc") }).
		First(&lease, lease.ID).Error
	if err != nil {
		fail(c, http.StatusInternalServerError, CodeInternal, err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"msg":     "Mock payment processed successfully",
		"payment": payment,
		"lease":   lease,
	})
}

// hasCard matches either the opaque card token or a bare last-4.
func hasCard(cards []models.Card, ref string) bool {
	for _, card := range cards {
		if card.CardID == ref || card.Last4 == ref {
			return true
		}
	}
	return false
}
