package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/openturf/territory-backend-go/internal/middleware"
	"github.com/openturf/territory-backend-go/pkg/response"
)

const tokenTTL = 30 * 24 * time.Hour

// AuthHandler issues owner tokens. There is no account system; the
// owner id is whatever stable identifier the device presents.
type AuthHandler struct {
	secret string
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(secret string) *AuthHandler {
	return &AuthHandler{secret: secret}
}

type tokenRequest struct {
	OwnerID string `json:"ownerId" binding:"required"`
}

// IssueToken handles POST /api/v1/auth/token
func (h *AuthHandler) IssueToken(c *gin.Context) {
	var req tokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid token request")
		return
	}

	token, err := middleware.IssueToken(h.secret, req.OwnerID, tokenTTL)
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}

	response.Success(c, gin.H{"token": token, "ownerId": req.OwnerID})
}
