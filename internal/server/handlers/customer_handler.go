package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dairyops/milkledger/internal/repository/mongodb"
)

// CustomerHandler serves the read-only customer endpoints. Customer
// management (create/update/delete) lives outside this service.
type CustomerHandler struct {
	customers mongodb.CustomerStore
	logger    *zap.Logger
}

// NewCustomerHandler constructs the HTTP handler adapter.
func NewCustomerHandler(customers mongodb.CustomerStore, logger *zap.Logger) *CustomerHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CustomerHandler{customers: customers, logger: logger}
}

// List returns every customer in scope.
func (h *CustomerHandler) List(c *gin.Context) {
	customers, err := h.customers.All(c.Request.Context(), c.Query("ownerId"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, customers)
}

// ByShift returns the customers of one shift.
func (h *CustomerHandler) ByShift(c *gin.Context) {
	customers, err := h.customers.ByShift(c.Request.Context(), c.Query("ownerId"), c.Param("shift"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, customers)
}
