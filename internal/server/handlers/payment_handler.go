package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dairyops/milkledger/internal/service/payments"
)

// PaymentHandler serves the payment-collection and reminder-config endpoints.
type PaymentHandler struct {
	svc    *payments.Service
	logger *zap.Logger
}

// NewPaymentHandler constructs the HTTP handler adapter.
func NewPaymentHandler(svc *payments.Service, logger *zap.Logger) *PaymentHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PaymentHandler{svc: svc, logger: logger}
}

// ListByShift bootstraps today's payment rows for the shift and returns them.
func (h *PaymentHandler) ListByShift(c *gin.Context) {
	records, err := h.svc.ListToday(c.Request.Context(), c.Query("ownerId"), c.Param("shift"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "payments": records})
}

type savePaymentRequest struct {
	OwnerID      string `json:"ownerId"`
	CustomerName string `json:"customerName"`
	Shift        string `json:"shift"`
	Paid         bool   `json:"paid"`
}

// Save upserts today's payment row for one customer.
func (h *PaymentHandler) Save(c *gin.Context) {
	var req savePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid payment payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid request body"})
		return
	}

	record, err := h.svc.SetPaid(c.Request.Context(), req.OwnerID, req.Shift, req.CustomerName, req.Paid)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "payment": record})
}

type reminderConfigRequest struct {
	Shift        string `json:"shift"`
	Time         string `json:"time"`
	Enabled      bool   `json:"enabled"`
	DurationDays int    `json:"durationDays"`
}

// SetReminderConfig replaces a shift's reminder schedule and returns the new
// snapshot.
func (h *PaymentHandler) SetReminderConfig(c *gin.Context) {
	var req reminderConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid reminder config payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid request body"})
		return
	}

	cfg, err := h.svc.Configure(c.Request.Context(), req.Shift, req.Enabled, req.Time, req.DurationDays)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "config": cfg})
}

// GetReminderConfig returns the stored schedule for every shift.
func (h *PaymentHandler) GetReminderConfig(c *gin.Context) {
	configs, err := h.svc.Configs(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "configs": configs})
}
