package repository

import (
	"context"

	"github.com/Tesseract-Nexus/go-shared/cache"
	"github.com/google/uuid"
	"stock-ledger-service/internal/models"
)

// InventoryRepositoryInterface is the persistence boundary of the ledger.
// Services depend on this interface so business logic can be tested against
// a mock; WithTransaction hands the callback a repository bound to the
// transaction so every write inside the callback commits or rolls back as
// one unit.
type InventoryRepositoryInterface interface {
	WithTransaction(ctx context.Context, fn func(txRepo InventoryRepositoryInterface) error) error

	// Catalog
	GetProductByID(ctx context.Context, tenantID string, id uuid.UUID) (*models.Product, error)
	GetLocationByID(ctx context.Context, tenantID string, id uuid.UUID) (*models.Location, error)

	// Dimensions
	GetPlacementByID(ctx context.Context, tenantID string, id uuid.UUID) (*models.Placement, error)
	GetPlacementByName(ctx context.Context, tenantID string, locationID uuid.UUID, name string) (*models.Placement, error)
	CreatePlacement(ctx context.Context, placement *models.Placement) error
	ListPlacements(ctx context.Context, tenantID string, locationID uuid.UUID) ([]models.Placement, error)
	GetBatchByID(ctx context.Context, tenantID string, id uuid.UUID) (*models.Batch, error)
	GetBatchByName(ctx context.Context, tenantID string, productID, placementID uuid.UUID, name string) (*models.Batch, error)
	CreateBatch(ctx context.Context, batch *models.Batch) error
	ListBatches(ctx context.Context, tenantID string, productID, placementID uuid.UUID) ([]models.Batch, error)
	GetDefaultPlacement(ctx context.Context, tenantID string, productID, locationID uuid.UUID) (*models.DefaultPlacement, error)
	SetDefaultPlacement(ctx context.Context, mapping *models.DefaultPlacement) error
	ClearDefaultPlacement(ctx context.Context, tenantID string, productID, locationID uuid.UUID) error

	// Quantity rows and history
	GetInventory(ctx context.Context, tenantID string, key models.InventoryKey) (*models.Inventory, error)
	GetInventoryForUpdate(ctx context.Context, tenantID string, key models.InventoryKey) (*models.Inventory, error)
	CreateInventory(ctx context.Context, inventory *models.Inventory) error
	SaveInventory(ctx context.Context, inventory *models.Inventory) error
	CreateHistory(ctx context.Context, entry *models.InventoryHistory) error
	ListHistory(ctx context.Context, tenantID string, filter models.HistoryFilter, page, limit int) ([]models.InventoryHistory, int64, error)
	ListStockedPlacements(ctx context.Context, tenantID string, productID, locationID uuid.UUID) ([]models.Placement, error)
	ListStockedBatches(ctx context.Context, tenantID string, productID, placementID uuid.UUID) ([]models.Batch, error)
	SumQuantity(ctx context.Context, tenantID string, productID, locationID uuid.UUID) (int, error)

	// Reorders
	GetReorder(ctx context.Context, tenantID string, productID, locationID uuid.UUID) (*models.Reorder, error)
	CreateReorder(ctx context.Context, reorder *models.Reorder) error
	UpdateReorder(ctx context.Context, tenantID string, productID, locationID uuid.UUID, updates map[string]interface{}) error
	DeleteReorder(ctx context.Context, tenantID string, productID, locationID uuid.UUID) error
	ListReorders(ctx context.Context, tenantID string, locationID *uuid.UUID, page, limit int) ([]models.Reorder, int64, error)

	// Orders
	GenerateOrderNumber(ctx context.Context, tenantID string) (string, error)
	CreateOrder(ctx context.Context, order *models.Order) error
	GetOrderByID(ctx context.Context, tenantID string, id uuid.UUID) (*models.Order, error)
	ListOrders(ctx context.Context, tenantID string, page, limit int) ([]models.Order, int64, error)
	CreateAttachment(ctx context.Context, attachment *models.Attachment) error

	// Health
	RedisHealth(ctx context.Context) error
	CacheStats() *cache.CacheStats
}

var _ InventoryRepositoryInterface = (*InventoryRepository)(nil)
