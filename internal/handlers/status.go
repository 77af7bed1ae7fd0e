package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bacbo-analyst-backend/internal/services"
)

type StatusHandler struct {
	entitlements *services.EntitlementService
	sessions     *services.SessionStore
}

func NewStatusHandler(entitlements *services.EntitlementService, sessions *services.SessionStore) *StatusHandler {
	return &StatusHandler{
		entitlements: entitlements,
		sessions:     sessions,
	}
}

// GetCurrentUser reports the authenticated user's plan, quota and live
// session, mirroring what the status-query event tells the operator.
func (h *StatusHandler) GetCurrentUser(c *gin.Context) {
	userID := c.GetInt64("user_id")

	user, err := h.entitlements.GetOrCreate(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load user"})
		return
	}

	if _, err := h.entitlements.CanUse(c.Request.Context(), user); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to evaluate entitlement"})
		return
	}

	state, history := h.sessions.Get(userID).Snapshot()

	c.JSON(http.StatusOK, gin.H{
		"user": h.entitlements.Status(user),
		"session": gin.H{
			"state":   state,
			"history": history,
		},
	})
}

// ResetSession returns the conversation to idle with an empty history.
func (h *StatusHandler) ResetSession(c *gin.Context) {
	userID := c.GetInt64("user_id")
	h.sessions.Reset(userID)
	c.JSON(http.StatusOK, gin.H{"status": "reset"})
}
