package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"stock-ledger-service/internal/middleware"
	"stock-ledger-service/internal/models"
)

// ListReorders returns reorder rules joined with current stock and the
// computed recommended restock amount
func (h *LedgerHandler) ListReorders(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)
	page, limit := parsePagination(c)

	var locationID *uuid.UUID
	if locationIDStr := c.Query("locationId"); locationIDStr != "" {
		id, err := uuid.Parse(locationIDStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Success: false,
				Error:   models.Error{Code: "INVALID_ID", Message: "Invalid location ID"},
			})
			return
		}
		locationID = &id
	}

	overview, total, err := h.reorders.ListOverview(c.Request.Context(), tenantID, locationID, page, limit)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	totalPages := int(total) / limit
	if int(total)%limit > 0 {
		totalPages++
	}

	c.JSON(http.StatusOK, models.ReorderListResponse{
		Success: true,
		Data:    overview,
		Pagination: &models.PaginationMeta{
			Page:       page,
			Limit:      limit,
			TotalItems: total,
			TotalPages: totalPages,
		},
	})
}

// SetThreshold creates or updates a standing reorder rule
func (h *LedgerHandler) SetThreshold(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)

	var req models.SetThresholdRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "VALIDATION_ERROR", Message: err.Error()},
		})
		return
	}

	reorder, err := h.reorders.SetThreshold(c.Request.Context(), tenantID, req.ProductID, req.LocationID, req.Minimum, req.Buffer)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.ReorderResponse{
		Success: true,
		Data:    reorder,
		Message: stringPtr("Reorder rule saved"),
	})
}

// DeleteThreshold removes a reorder rule
func (h *LedgerHandler) DeleteThreshold(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)

	productID, err := uuid.Parse(c.Query("productId"))
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

	if err := h.reorders.DeleteThreshold(c.Request.Context(), tenantID, productID, locationID); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.SuccessResponse{
		Success: true,
		Message: stringPtr("Reorder rule deleted"),
	})
}

// RecordRequest flags a product for ad-hoc reordering
func (h *LedgerHandler) RecordRequest(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)

	var req models.AdHocRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "VALIDATION_ERROR", Message: err.Error()},
		})
		return
	}

	reorder, err := h.reorders.RecordAdHocRequest(c.Request.Context(), tenantID, req.ProductID, req.LocationID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, models.ReorderResponse{
		Success: true,
		Data:    reorder,
		Message: stringPtr("Reorder requested"),
	})
}

// BulkFinalize turns a batch of reorder lines into a persisted order with
// per-line results. The order is created even when some lines fail.
func (h *LedgerHandler) BulkFinalize(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)

	var req models.BulkFinalizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "VALIDATION_ERROR", Message: err.Error()},
		})
		return
	}

	outcome, err := h.reorders.BulkFinalize(c.Request.Context(), tenantID, actorFromContext(c), req.LocationID, req.Items)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	results := make([]models.FinalizeLineResultDTO, len(outcome.Results))
	allOK := outcome.ExportErr == nil
	for i, result := range outcome.Results {
		dto := models.FinalizeLineResultDTO{
			Index:   result.Index,
			SKU:     result.SKU,
			Success: result.Err == nil,
		}
		if result.Err != nil {
			allOK = false
			dto.Error = &models.Error{Code: result.Err.Code, Message: result.Err.Message}
		}
		results[i] = dto
	}

	response := models.FinalizeResponse{
		Success:     allOK,
		OrderID:     outcome.Order.ID,
		OrderNumber: outcome.Order.OrderNumber,
		Results:     results,
		CreatedAt:   outcome.Order.CreatedAt,
	}
	if outcome.Attachment != nil {
		response.AttachmentID = &outcome.Attachment.ID
	}

	c.JSON(http.StatusCreated, response)
}

// ListOrders returns order snapshots, newest first
func (h *LedgerHandler) ListOrders(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)
	page, limit := parsePagination(c)

	orders, total, err := h.reorders.ListOrders(c.Request.Context(), tenantID, page, limit)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	totalPages := int(total) / limit
	if int(total)%limit > 0 {
		totalPages++
	}

	c.JSON(http.StatusOK, models.OrderListResponse{
		Success: true,
		Data:    orders,
		Pagination: &models.PaginationMeta{
			Page:       page,
			Limit:      limit,
			TotalItems: total,
			TotalPages: totalPages,
		},
	})
}

// GetOrder returns one order snapshot with its lines
func (h *LedgerHandler) GetOrder(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "INVALID_ID", Message: "Invalid order ID"},
		})
		return
	}

	order, err := h.reorders.GetOrder(c.Request.Context(), tenantID, id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.OrderResponse{
		Success: true,
		Data:    order,
	})
}
