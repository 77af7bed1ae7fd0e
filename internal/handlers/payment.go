package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"bacbo-analyst-backend/internal/models"
	"bacbo-analyst-backend/internal/services"
)

// PaymentHandler receives confirmation webhooks from the payment gateway.
// It owns the at-most-once guarantee: a reference is claimed before the
// entitlement service ever sees the event, because the service itself
// will happily double-extend on a redelivery.
type PaymentHandler struct {
	machine  *services.ConversationStateMachine
	ledger   services.PaymentLedger
	notifier services.Notifier
}

func NewPaymentHandler(machine *services.ConversationStateMachine, ledger services.PaymentLedger, notifier services.Notifier) *PaymentHandler {
	return &PaymentHandler{
		machine:  machine,
		ledger:   ledger,
		notifier: notifier,
	}
}

type paymentWebhookRequest struct {
	UserID       int64  `json:"user_id" binding:"required"`
	DurationDays int    `json:"duration_days" binding:"required,min=1"`
	PaymentRef   string `json:"payment_ref" binding:"required"`
}

func (h *PaymentHandler) HandleWebhook(c *gin.Context) {
	var req paymentWebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid webhook payload",
			"details": err.Error(),
		})
		return
	}

	claimed, err := h.ledger.ClaimPaymentReference(c.Request.Context(), req.PaymentRef)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record payment reference"})
		return
	}
	if !claimed {
		c.JSON(http.StatusOK, gin.H{"status": "duplicate", "payment_ref": req.PaymentRef})
		return
	}

	event := models.Event{
		Type:         models.EventPaymentConfirmed,
		UserID:       req.UserID,
		DurationDays: req.DurationDays,
		PaymentRef:   req.PaymentRef,
	}

	notifications, err := h.machine.Handle(c.Request.Context(), event)
	if err != nil {
		log.Printf("Payment confirmation failed for user %d (ref %s): %v", req.UserID, req.PaymentRef, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to apply payment"})
		return
	}

	if h.notifier != nil {
		for _, n := range notifications {
			h.notifier.Deliver(n)
		}
	}

	c.JSON(http.StatusOK, gin.H{"status": "applied", "payment_ref": req.PaymentRef})
}
