package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dairyops/milkledger/internal/domain/models"
	"github.com/dairyops/milkledger/internal/service/ledger"
	"github.com/dairyops/milkledger/internal/service/overview"
)

// OverviewHandler serves the month matrix endpoints.
type OverviewHandler struct {
	svc       *overview.Service
	ledgerSvc *ledger.Service
	logger    *zap.Logger
}

// NewOverviewHandler constructs the HTTP handler adapter.
func NewOverviewHandler(svc *overview.Service, ledgerSvc *ledger.Service, logger *zap.Logger) *OverviewHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OverviewHandler{svc: svc, ledgerSvc: ledgerSvc, logger: logger}
}

func monthYearParams(c *gin.Context) (int, int, error) {
	month, err := strconv.Atoi(c.Query("month"))
	if err != nil {
		return 0, 0, models.NewValidationError("month", "month must be a number")
	}
	year, err := strconv.Atoi(c.Query("year"))
	if err != nil {
		return 0, 0, models.NewValidationError("year", "year must be a number")
	}
	return month, year, nil
}

// Get builds the month matrix for a shift.
func (h *OverviewHandler) Get(c *gin.Context) {
	month, year, err := monthYearParams(c)
	if err != nil {
		respondError(c, err)
		return
	}

	report, err := h.svc.BuildMonthReport(c.Request.Context(),
		c.Query("ownerId"), c.Query("shift"), year, month)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// CreateEntry writes one delivery entry with the rate always resolved from
// the customer's current price per unit, never taken from the caller.
func (h *OverviewHandler) CreateEntry(c *gin.Context) {
	var req writeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid overview entry payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid request body"})
		return
	}

	outcome, err := h.ledgerSvc.Record(c.Request.Context(), ledger.WriteRequest{
		OwnerID:      req.OwnerID,
		Shift:        req.Shift,
		Date:         req.Date,
		CustomerName: req.CustomerName,
		Quantity:     req.Quantity,
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

// Export writes the month matrix to the configured spreadsheet.
func (h *OverviewHandler) Export(c *gin.Context) {
	month, year, err := monthYearParams(c)
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.svc.ExportMonthReport(c.Request.Context(),
		c.Query("ownerId"), c.Query("shift"), year, month); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "report exported"})
}
