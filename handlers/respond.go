package handlers

import "github.com/gin-gonic/gin"

// Stable machine-readable error codes carried alongside the human message.
const (
	CodeNotFound      = "NOT_FOUND"
	CodeInvalidInput  = "INVALID_INPUT"
	CodeAlreadyPaid   = "ALREADY_PAID"
	CodeAlreadyLeased = "ALREADY_LEASED"
	CodeInternal      = "INTERNAL"
)

func fail(c *gin.Context, status int, code, msg string) {
	c.JSON(status, gin.H{"msg": msg, "code": code})
}
