package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"stock-ledger-service/internal/middleware"
	"stock-ledger-service/internal/models"
	"stock-ledger-service/internal/services"
)

// CreateTransfer validates and executes a multi-line transfer. Validation
// errors come back together with a 422 and nothing written; a successful
// transfer returns the correlation ID stamped on every ledger entry.
func (h *LedgerHandler) CreateTransfer(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)

	var req models.TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "VALIDATION_ERROR",
				Message: err.Error(),
			},
		})
		return
	}

	lines := make([]services.TransferLine, len(req.Lines))
	for i, line := range req.Lines {
		lines[i] = services.TransferLine{
			ProductID:       line.ProductID,
			SKU:             line.SKU,
			ToLocationID:    line.ToLocationID,
			FromPlacementID: line.FromPlacementID,
			FromBatchID:     line.FromBatchID,
			Quantity:        line.Quantity,
		}
	}

	result, err := h.transfers.MoveBetweenLocations(c.Request.Context(), tenantID, actorFromContext(c), req.FromLocationID, req.Reference, lines)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	if !result.OK {
		lineErrors := make([]models.TransferLineErrorDTO, len(result.Errors))
		for i, lineErr := range result.Errors {
			lineErrors[i] = models.TransferLineErrorDTO{
				Index:   lineErr.Index,
				Kind:    string(lineErr.Kind),
				SKU:     lineErr.SKU,
				Message: lineErr.Message,
			}
		}
		c.JSON(http.StatusUnprocessableEntity, models.TransferResponse{
			Success: false,
			Errors:  lineErrors,
		})
		return
	}

	c.JSON(http.StatusOK, models.TransferResponse{
		Success:       true,
		CorrelationID: &result.CorrelationID,
	})
}
