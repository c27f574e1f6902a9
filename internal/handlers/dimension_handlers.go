package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"stock-ledger-service/internal/middleware"
	"stock-ledger-service/internal/models"
)

// ListPlacements returns all placements at a location
func (h *LedgerHandler) ListPlacements(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)

	locationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "INVALID_ID", Message: "Invalid location ID"},
		})
		return
	}

	placements, err := h.repo.ListPlacements(c.Request.Context(), tenantID, locationID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "LIST_FAILED", Message: "Failed to list placements"},
		})
		return
	}

	c.JSON(http.StatusOK, models.PlacementListResponse{
		Success: true,
		Data:    placements,
	})
}

// ListBatches returns all batches for a product under a placement
func (h *LedgerHandler) ListBatches(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)

	placementID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "INVALID_ID", Message: "Invalid placement ID"},
		})
		return
	}
	productID, err := uuid.Parse(c.Query("productId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "INVALID_ID", Message: "Invalid product ID"},
		})
		return
	}

	batches, err := h.repo.ListBatches(c.Request.Context(), tenantID, productID, placementID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "LIST_FAILED", Message: "Failed to list batches"},
		})
		return
	}

	c.JSON(http.StatusOK, models.BatchListResponse{
		Success: true,
		Data:    batches,
	})
}

// SetDefaultPlacement sets the canonical outbound placement for a product at
// a location
func (h *LedgerHandler) SetDefaultPlacement(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)

	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "INVALID_ID", Message: "Invalid product ID"},
		})
		return
	}

	var req models.SetDefaultPlacementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "VALIDATION_ERROR", Message: err.Error()},
		})
		return
	}

	if err := h.resolver.SetDefaultPlacement(c.Request.Context(), tenantID, productID, req.LocationID, req.PlacementID); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.SuccessResponse{
		Success: true,
		Message: stringPtr("Default placement saved"),
	})
}

// ClearDefaultPlacement removes the canonical placement mapping
func (h *LedgerHandler) ClearDefaultPlacement(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)

	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "INVALID_ID", Message: "Invalid product ID"},
		})
		return
	}
	locationID, err := uuid.Parse(c.Query("locationId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "INVALID_ID", Message: "Invalid location ID"},
		})
		return
	}

	if err := h.resolver.ClearDefaultPlacement(c.Request.Context(), tenantID, productID, locationID); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.SuccessResponse{
		Success: true,
		Message: stringPtr("Default placement cleared"),
	})
}
