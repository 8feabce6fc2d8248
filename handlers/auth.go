package handlers

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"spms/models"
)

type AuthHandler struct {
	DB *gorm.DB
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, CodeInvalidInput, "Invalid request body")
		return
	}

	role := req.Role
	if role == "" {
		role = "tenant"
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		fail(c, http.StatusInternalServerError, CodeInternal, err.Error())
		return
	}

	user := models.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: string(hashedPassword),
		Role:     role,
	}

	if result := h.DB.Create(&user); result.Error != nil {
		fail(c, http.StatusBadRequest, CodeInvalidInput, "User already exists")
		return
	}

	c.JSON(http.StatusOK, gin.H{"msg": "User registered", "user": user})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, CodeInvalidInput, "Invalid request body")
		return
	}

	var user models.User
	if err := h.DB.Preload("Cards").Where("email = ?", req.Email).First(&user).Error; err != nil {
		fail(c, http.StatusNotFound, CodeNotFound, "Invalid credentials")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		fail(c, http.StatusNotFound, CodeNotFound, "Invalid credentials")
		return
	}

	session := sessions.Default(c)
	session.Set("user_id", user.ID)
	session.Save()

	c.JSON(http.StatusOK, gin.H{"msg": "Login successful", "user": user})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	session.Save()
	c.JSON(http.StatusOK, gin.H{"msg": "Logged out"})
}

// AuthRequired guards routes that need a logged-in user.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		if session.Get("user_id") == nil {
			fail(c, http.StatusUnauthorized, CodeInvalidInput, "Login required")
			c.Abort()
			return
		}
		c.Next()
	}
}
