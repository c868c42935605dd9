package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dairyops/milkledger/internal/domain/models"
)

// respondError maps domain errors onto the `{success:false, error}` envelope.
// Expected conditions (validation, not-found) stay 4xx; anything else is a
// 500 with the wrapped message.
func respondError(c *gin.Context, err error) {
	var ve *models.ValidationError

	status := http.StatusInternalServerError
	switch {
	case errors.As(err, &ve):
		status = http.StatusBadRequest
	case errors.Is(err, models.ErrCustomerNotFound):
		status = http.StatusNotFound
	case errors.Is(err, models.ErrNotFound):
		status = http.StatusNotFound
	}

	c.JSON(status, gin.H{"success": false, "error": err.Error()})
}
