package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dairyops/milkledger/internal/service/ledger"
)

// LedgerHandler serves the raw delivery ledger endpoints.
type LedgerHandler struct {
	svc    *ledger.Service
	logger *zap.Logger
}

// NewLedgerHandler constructs the HTTP handler adapter.
func NewLedgerHandler(svc *ledger.Service, logger *zap.Logger) *LedgerHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LedgerHandler{svc: svc, logger: logger}
}

// writeRequest is the shared body shape of the two ledger write endpoints.
type writeRequest struct {
	OwnerID      string   `json:"ownerId"`
	CustomerName string   `json:"customerName"`
	Shift        string   `json:"shift"`
	Date         string   `json:"date"`
	Quantity     float64  `json:"quantity"`
	Rate         *float64 `json:"rate"`
}

// List returns entries for a shift; missing start/end bounds return the full
// history.
func (h *LedgerHandler) List(c *gin.Context) {
	entries, err := h.svc.Entries(c.Request.Context(),
		c.Query("ownerId"), c.Query("shift"), c.Query("start"), c.Query("end"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, entries)
}

// Create upserts one delivery entry, or resets the row when quantity is
// zero. The rate comes from the body when supplied, otherwise from the
// customer's current price per unit.
func (h *LedgerHandler) Create(c *gin.Context) {
	var req writeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid ledger payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid request body"})
		return
	}

	outcome, err := h.svc.Record(c.Request.Context(), ledger.WriteRequest{
		OwnerID:      req.OwnerID,
		Shift:        req.Shift,
		Date:         req.Date,
		CustomerName: req.CustomerName,
		Quantity:     req.Quantity,
		Rate:         req.Rate,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	if outcome.Reset {
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"status":  "reset",
			"message": "entry reset successfully",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"status":  "saved",
		"entry":   outcome.Entry,
		"amount":  outcome.Entry.Amount,
	})
}

// Delete removes one entry by id.
func (h *LedgerHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "deleted"})
}
