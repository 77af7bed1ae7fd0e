package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"bacbo-analyst-backend/internal/services"
)

const tokenTTL = 24 * time.Hour

// AuthHandler exchanges the shared transport secret for a short-lived JWT
// bound to one conversation. The chat transport authenticates once and
// then opens the feed with the token.
type AuthHandler struct {
	jwtService *services.JWTService
	botToken   string
}

func NewAuthHandler(jwtService *services.JWTService, botToken string) *AuthHandler {
	return &AuthHandler{
		jwtService: jwtService,
		botToken:   botToken,
	}
}

func (h *AuthHandler) Authenticate(c *gin.Context) {
	if h.botToken == "" || c.Query("key") != h.botToken {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid transport key"})
		return
	}

	userID, err := strconv.ParseInt(c.Query("user_id"), 10, 64)
	if err != nil || userID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user_id"})
		return
	}

	token, err := h.jwtService.GenerateToken(userID, tokenTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to issue token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":      token,
		"expires_in": tokenTTL.Seconds(),
	})
}
