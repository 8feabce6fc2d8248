package handlers

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"spms/models"
)

type UserHandler struct {
	DB *gorm.DB
}

type saveCardRequest struct {
	UserID      uint   `json:"userId" binding:"required"`
	CardNumber  string `json:"cardNumber" binding:"required"`
	Brand       string `json:"brand"`
	ExpiryMonth int    `json:"expiryMonth"`
	ExpiryYear  int    `json:"expiryYear"`
	CVV         string `json:"cvv"`
}

// SaveCard stores a card-on-file reference. Only the last 4 digits and an
// opaque token are kept; the PAN itself is discarded.
func (h *UserHandler) SaveCard(c *gin.Context) {
	var req saveCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, CodeInvalidInput, "Invalid request body")
		return
	}

	var user models.User
	if err := h.DB.First(&user, req.UserID).Error; err != nil {
		fail(c, http.StatusNotFound, CodeNotFound, "User not found")
		return
	}

	last4 := req.CardNumber
	if len(last4) > 4 {
		last4 = last4[len(last4)-4:]
	}

	cvvSum := sha256.Sum256([]byte(req.CVV))
	card := models.Card{
		UserID:      user.ID,
		CardID:      newCardToken(),
		Last4:       last4,
		Brand:       req.Brand,
		ExpiryMonth: req.ExpiryMonth,
		ExpiryYear:  req.ExpiryYear,
		CVVHash:     hex.EncodeToString(cvvSum[:]),
	}

	if err := h.DB.Create(&card).Error; err != nil {
		fail(c, http.StatusInternalServerError, CodeInternal, "Failed to save card")
		return
	}

	c.JSON(http.StatusOK, gin.H{"msg": "Card saved", "card": card})
}

// GetUser returns a user with their saved cards, fresh from the store.
func (h *UserHandler) GetUser(c *gin.Context) {
	var user models.User
	if err := h.DB.Preload("Cards").First(&user, c.Param("id")).Error; err != nil {
		fail(c, http.StatusNotFound, CodeNotFound, "User not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

func newCardToken() string {
	buf := make([]byte, 16)
	rand.Read(buf)
	return hex.EncodeToString(buf)
}
