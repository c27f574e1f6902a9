package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"stock-ledger-service/internal/middleware"
	"stock-ledger-service/internal/models"
	"stock-ledger-service/internal/repository"
	"stock-ledger-service/internal/services"
)

type LedgerHandler struct {
	repo      repository.InventoryRepositoryInterface
	ledger    *services.LedgerService
	transfers *services.TransferOrchestrator
	reorders  *services.ReorderEngine
	resolver  *services.DimensionResolver
}

func NewLedgerHandler(repo repository.InventoryRepositoryInterface, ledger *services.LedgerService, transfers *services.TransferOrchestrator, reorders *services.ReorderEngine, resolver *services.DimensionResolver) *LedgerHandler {
	return &LedgerHandler{
		repo:      repo,
		ledger:    ledger,
		transfers: transfers,
		reorders:  reorders,
		resolver:  resolver,
	}
}

// respondServiceError maps the ledger error taxonomy onto HTTP status codes.
func respondServiceError(c *gin.Context, err error) {
	var svcErr *services.Error
	if errors.As(err, &svcErr) {
		status := http.StatusInternalServerError
		switch svcErr.Kind {
		case services.KindValidation:
			status = http.StatusBadRequest
		case services.KindNotFound:
			status = http.StatusNotFound
		case services.KindConflict:
			status = http.StatusConflict
		case services.KindExternal:
			status = http.StatusBadGateway
		}
		c.JSON(status, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    svcErr.Code,
				Message: svcErr.Message,
			},
		})
		return
	}

	c.JSON(http.StatusInternalServerError, models.ErrorResponse{
		Success: false,
		Error: models.Error{
			Code:    "INTERNAL_ERROR",
			Message: "An unexpected error occurred",
		},
	})
}

func actorFromContext(c *gin.Context) services.Actor {
	name := c.GetString("user_name")
	if name == "" {
		name = c.GetString("user_email")
	}
	return services.Actor{
		ID:   c.GetString("user_id"),
		Name: name,
	}
}

func parsePagination(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return page, limit
}

func stringPtr(s string) *string {
	return &s
}

// ApplyMovement records one stock movement. The delta sign is derived from
// the movement type: increases add, decreases subtract, adjustments carry
// the sign of the submitted amount. Transfer legs are only created through
// the transfers endpoint so they always come in conserved pairs.
func (h *LedgerHandler) ApplyMovement(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)

	var req models.ApplyMovementRequest
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

	var delta int
	switch req.Type {
	case models.MovementTypeIncrease:
		delta = abs(req.Amount)
	case models.MovementTypeDecrease:
		delta = -abs(req.Amount)
	case models.MovementTypeAdjustment:
		delta = req.Amount
	default:
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "INVALID_MOVEMENT_TYPE",
				Message: "Movement type must be tilgang, afgang or regulering; transfers go through /transfers",
			},
		})
		return
	}

	platform := "web"
	if req.Platform != nil {
		platform = *req.Platform
	}

	inventory, err := h.ledger.ApplyMovement(c.Request.Context(), tenantID, actorFromContext(c), services.MovementInput{
		ProductID:  req.ProductID,
		LocationID: req.LocationID,
		Placement:  req.Placement,
		Batch:      req.Batch,
		Type:       req.Type,
		Delta:      delta,
		Reference:  req.Reference,
		Platform:   platform,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.InventoryResponse{
		Success: true,
		Data:    inventory,
		Message: stringPtr("Movement applied"),
	})
}

// GetInventory returns the quantity row for one exact tuple
func (h *LedgerHandler) GetInventory(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)

	var key models.InventoryKey
	var err error
	if key.ProductID, err = uuid.Parse(c.Query("productId")); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "INVALID_ID", Message: "Invalid product ID"},
		})
		return
	}
	if key.LocationID, err = uuid.Parse(c.Query("locationId")); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "INVALID_ID", Message: "Invalid location ID"},
		})
		return
	}
	if key.PlacementID, err = uuid.Parse(c.Query("placementId")); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "INVALID_ID", Message: "Invalid placement ID"},
		})
		return
	}
	if key.BatchID, err = uuid.Parse(c.Query("batchId")); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "INVALID_ID", Message: "Invalid batch ID"},
		})
		return
	}

	inventory, err := h.repo.GetInventory(c.Request.Context(), tenantID, key)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, models.ErrorResponse{
				Success: false,
				Error:   models.Error{Code: "INVENTORY_NOT_FOUND", Message: "No inventory for this tuple"},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "INTERNAL_ERROR", Message: "Failed to read inventory"},
		})
		return
	}

	c.JSON(http.StatusOK, models.InventoryResponse{
		Success: true,
		Data:    inventory,
	})
}

// ListHistory returns ledger entries, newest first
func (h *LedgerHandler) ListHistory(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)
	page, limit := parsePagination(c)

	var filter models.HistoryFilter
	if productIDStr := c.Query("productId"); productIDStr != "" {
		productID, err := uuid.Parse(productIDStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Success: false,
				Error:   models.Error{Code: "INVALID_ID", Message: "Invalid product ID"},
			})
			return
		}
		filter.ProductID = &productID
	}
	if locationIDStr := c.Query("locationId"); locationIDStr != "" {
		locationID, err := uuid.Parse(locationIDStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Success: false,
				Error:   models.Error{Code: "INVALID_ID", Message: "Invalid location ID"},
			})
			return
		}
		filter.LocationID = &locationID
	}
	if typeStr := c.Query("type"); typeStr != "" {
		movementType := models.MovementType(typeStr)
		filter.Type = &movementType
	}

	entries, total, err := h.ledger.ListHistory(c.Request.Context(), tenantID, filter, page, limit)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	totalPages := int(total) / limit
	if int(total)%limit > 0 {
		totalPages++
	}

	c.JSON(http.StatusOK, models.HistoryListResponse{
		Success: true,
		Data:    entries,
		Pagination: &models.PaginationMeta{
			Page:       page,
			Limit:      limit,
			TotalItems: total,
			TotalPages: totalPages,
		},
	})
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
