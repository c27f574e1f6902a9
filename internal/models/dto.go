package models

import (
	"time"

	"github.com/google/uuid"
)

// DimensionRef addresses a placement or batch either by ID (must exist) or
// by name (created on demand). Exactly one of the two should be set; when
// both are empty the sentinel dimension is used.
type DimensionRef struct {
	ID   *uuid.UUID `json:"id,omitempty"`
	Name *string    `json:"name,omitempty"`
}

// IsZero reports whether the reference is empty.
func (r DimensionRef) IsZero() bool {
	return r.ID == nil && (r.Name == nil || *r.Name == "")
}

// Request models

type ApplyMovementRequest struct {
	ProductID  uuid.UUID    `json:"productId" binding:"required"`
	LocationID uuid.UUID    `json:"locationId" binding:"required"`
	Placement  DimensionRef `json:"placement"`
	Batch      DimensionRef `json:"batch"`
	Type       MovementType `json:"type" binding:"required"`
	Amount     int          `json:"amount" binding:"required"`
	Reference  *string      `json:"reference,omitempty"`
	Platform   *string      `json:"platform,omitempty"`
}

type TransferLineRequest struct {
	ProductID       uuid.UUID  `json:"productId" binding:"required"`
	SKU             string     `json:"sku" binding:"required"`
	ToLocationID    uuid.UUID  `json:"toLocationId" binding:"required"`
	FromPlacementID *uuid.UUID `json:"fromPlacementId,omitempty"`
	FromBatchID     *uuid.UUID `json:"fromBatchId,omitempty"`
	Quantity        int        `json:"quantity"`
}

type TransferRequest struct {
	FromLocationID uuid.UUID             `json:"fromLocationId" binding:"required"`
	Reference      *string               `json:"reference,omitempty"`
	Lines          []TransferLineRequest `json:"lines" binding:"required,min=1"`
}

type SetThresholdRequest struct {
	ProductID  uuid.UUID `json:"productId" binding:"required"`
	LocationID uuid.UUID `json:"locationId" binding:"required"`
	Minimum    int       `json:"minimum" binding:"gte=0"`
	Buffer     int       `json:"buffer" binding:"gte=0"`
}

type AdHocRequestRequest struct {
	ProductID  uuid.UUID `json:"productId" binding:"required"`
	LocationID uuid.UUID `json:"locationId" binding:"required"`
}

type BulkFinalizeItem struct {
	ProductID      uuid.UUID `json:"productId" binding:"required"`
	SKU            string    `json:"sku" binding:"required"`
	Text1          string    `json:"text1"`
	Text2          string    `json:"text2"`
	Barcode        string    `json:"barcode"`
	SupplierName   *string   `json:"supplierName,omitempty"`
	UnitName       string    `json:"unitName"`
	CostPrice      float64   `json:"costPrice" binding:"gte=0"`
	OrderedAmount  int       `json:"orderedAmount" binding:"gte=0"`
	AlreadyOrdered int       `json:"alreadyOrdered" binding:"gte=0"`
	IsRequested    bool      `json:"isRequested"`
}

type BulkFinalizeRequest struct {
	LocationID uuid.UUID          `json:"locationId" binding:"required"`
	Items      []BulkFinalizeItem `json:"items" binding:"required,min=1"`
}

type SetDefaultPlacementRequest struct {
	LocationID  uuid.UUID `json:"locationId" binding:"required"`
	PlacementID uuid.UUID `json:"placementId" binding:"required"`
}

// HistoryFilter narrows a history listing.
type HistoryFilter struct {
	ProductID  *uuid.UUID
	LocationID *uuid.UUID
	Type       *MovementType
}

// ReorderOverview is a reorder rule joined with the product and its current
// total quantity at the rule's location, plus the computed recommendation.
type ReorderOverview struct {
	Reorder           Reorder  `json:"reorder"`
	Product           *Product `json:"product,omitempty"`
	Quantity          int      `json:"quantity"`
	RecommendedAmount int      `json:"recommendedAmount"`
}

// Response models

type ErrorResponse struct {
	Success bool  `json:"success"`
	Error   Error `json:"error"`
}

type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type SuccessResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message *string     `json:"message,omitempty"`
}

type PaginationMeta struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalItems int64 `json:"totalItems"`
	TotalPages int   `json:"totalPages"`
}

type InventoryResponse struct {
	Success bool       `json:"success"`
	Data    *Inventory `json:"data,omitempty"`
	Message *string    `json:"message,omitempty"`
}

type HistoryListResponse struct {
	Success    bool               `json:"success"`
	Data       []InventoryHistory `json:"data"`
	Pagination *PaginationMeta    `json:"pagination,omitempty"`
}

type TransferLineErrorDTO struct {
	Index   int    `json:"index"`
	Kind    string `json:"kind"`
	SKU     string `json:"sku"`
	Message string `json:"message"`
}

type TransferResponse struct {
	Success       bool                   `json:"success"`
	CorrelationID *uuid.UUID             `json:"correlationId,omitempty"`
	Errors        []TransferLineErrorDTO `json:"errors,omitempty"`
}

type ReorderResponse struct {
	Success bool     `json:"success"`
	Data    *Reorder `json:"data,omitempty"`
	Message *string  `json:"message,omitempty"`
}

type ReorderListResponse struct {
	Success    bool              `json:"success"`
	Data       []ReorderOverview `json:"data"`
	Pagination *PaginationMeta   `json:"pagination,omitempty"`
}

type FinalizeLineResultDTO struct {
	Index   int    `json:"index"`
	SKU     string `json:"sku"`
	Success bool   `json:"success"`
	Error   *Error `json:"error,omitempty"`
}

type FinalizeResponse struct {
	Success      bool                    `json:"success"`
	OrderID      uuid.UUID               `json:"orderId"`
	OrderNumber  string                  `json:"orderNumber"`
	AttachmentID *uuid.UUID              `json:"attachmentId,omitempty"`
	Results      []FinalizeLineResultDTO `json:"results"`
	CreatedAt    time.Time               `json:"createdAt"`
}

type OrderResponse struct {
	Success bool    `json:"success"`
	Data    *Order  `json:"data,omitempty"`
	Message *string `json:"message,omitempty"`
}

type OrderListResponse struct {
	Success    bool            `json:"success"`
	Data       []Order         `json:"data"`
	Pagination *PaginationMeta `json:"pagination,omitempty"`
}

type PlacementListResponse struct {
	Success bool        `json:"success"`
	Data    []Placement `json:"data"`
}

type BatchListResponse struct {
	Success bool    `json:"success"`
	Data    []Batch `json:"data"`
}
