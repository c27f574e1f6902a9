package services

import (
	"context"

	"github.com/Tesseract-Nexus/go-shared/cache"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"stock-ledger-service/internal/models"
	"stock-ledger-service/internal/repository"
)

// MockInventoryRepository is a testify mock of the persistence boundary.
// WithTransaction executes the callback against the mock itself so
// transactional flows can be asserted without a database.
type MockInventoryRepository struct {
	mock.Mock
}

var _ repository.InventoryRepositoryInterface = (*MockInventoryRepository)(nil)

func (m *MockInventoryRepository) WithTransaction(ctx context.Context, fn func(txRepo repository.InventoryRepositoryInterface) error) error {
	args := m.Called(ctx, fn)
	if args.Error(0) != nil {
		return args.Error(0)
	}
	return fn(m)
}

func (m *MockInventoryRepository) GetProductByID(ctx context.Context, tenantID string, id uuid.UUID) (*models.Product, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockInventoryRepository) GetLocationByID(ctx context.Context, tenantID string, id uuid.UUID) (*models.Location, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Location), args.Error(1)
}

func (m *MockInventoryRepository) GetPlacementByID(ctx context.Context, tenantID string, id uuid.UUID) (*models.Placement, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Placement), args.Error(1)
}

func (m *MockInventoryRepository) GetPlacementByName(ctx context.Context, tenantID string, locationID uuid.UUID, name string) (*models.Placement, error) {
	args := m.Called(ctx, tenantID, locationID, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Placement), args.Error(1)
}

func (m *MockInventoryRepository) CreatePlacement(ctx context.Context, placement *models.Placement) error {
	args := m.Called(ctx, placement)
	return args.Error(0)
}

func (m *MockInventoryRepository) ListPlacements(ctx context.Context, tenantID string, locationID uuid.UUID) ([]models.Placement, error) {
	args := m.Called(ctx, tenantID, locationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Placement), args.Error(1)
}

func (m *MockInventoryRepository) GetBatchByID(ctx context.Context, tenantID string, id uuid.UUID) (*models.Batch, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Batch), args.Error(1)
}

func (m *MockInventoryRepository) GetBatchByName(ctx context.Context, tenantID string, productID, placementID uuid.UUID, name string) (*models.Batch, error) {
	args := m.Called(ctx, tenantID, productID, placementID, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Batch), args.Error(1)
}

func (m *MockInventoryRepository) CreateBatch(ctx context.Context, batch *models.Batch) error {
	args := m.Called(ctx, batch)
	return args.Error(0)
}

func (m *MockInventoryRepository) ListBatches(ctx context.Context, tenantID string, productID, placementID uuid.UUID) ([]models.Batch, error) {
	args := m.Called(ctx, tenantID, productID, placementID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Batch), args.Error(1)
}

func (m *MockInventoryRepository) GetDefaultPlacement(ctx context.Context, tenantID string, productID, locationID uuid.UUID) (*models.DefaultPlacement, error) {
	args := m.Called(ctx, tenantID, productID, locationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DefaultPlacement), args.Error(1)
}

func (m *MockInventoryRepository) SetDefaultPlacement(ctx context.Context, mapping *models.DefaultPlacement) error {
	args := m.Called(ctx, mapping)
	return args.Error(0)
}

func (m *MockInventoryRepository) ClearDefaultPlacement(ctx context.Context, tenantID string, productID, locationID uuid.UUID) error {
	args := m.Called(ctx, tenantID, productID, locationID)
	return args.Error(0)
}

func (m *MockInventoryRepository) GetInventory(ctx context.Context, tenantID string, key models.InventoryKey) (*models.Inventory, error) {
	args := m.Called(ctx, tenantID, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Inventory), args.Error(1)
}

func (m *MockInventoryRepository) GetInventoryForUpdate(ctx context.Context, tenantID string, key models.InventoryKey) (*models.Inventory, error) {
	args := m.Called(ctx, tenantID, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Inventory), args.Error(1)
}

func (m *MockInventoryRepository) CreateInventory(ctx context.Context, inventory *models.Inventory) error {
	args := m.Called(ctx, inventory)
	return args.Error(0)
}

func (m *MockInventoryRepository) SaveInventory(ctx context.Context, inventory *models.Inventory) error {
	args := m.Called(ctx, inventory)
	return args.Error(0)
}

func (m *MockInventoryRepository) CreateHistory(ctx context.Context, entry *models.InventoryHistory) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockInventoryRepository) ListHistory(ctx context.Context, tenantID string, filter models.HistoryFilter, page, limit int) ([]models.InventoryHistory, int64, error) {
	args := m.Called(ctx, tenantID, filter, page, limit)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]models.InventoryHistory), args.Get(1).(int64), args.Error(2)
}

func (m *MockInventoryRepository) ListStockedPlacements(ctx context.Context, tenantID string, productID, locationID uuid.UUID) ([]models.Placement, error) {
	args := m.Called(ctx, tenantID, productID, locationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Placement), args.Error(1)
}

func (m *MockInventoryRepository) ListStockedBatches(ctx context.Context, tenantID string, productID, placementID uuid.UUID) ([]models.Batch, error) {
	args := m.Called(ctx, tenantID, productID, placementID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Batch), args.Error(1)
}

func (m *MockInventoryRepository) SumQuantity(ctx context.Context, tenantID string, productID, locationID uuid.UUID) (int, error) {
	args := m.Called(ctx, tenantID, productID, locationID)
	return args.Int(0), args.Error(1)
}

func (m *MockInventoryRepository) GetReorder(ctx context.Context, tenantID string, productID, locationID uuid.UUID) (*models.Reorder, error) {
	args := m.Called(ctx, tenantID, productID, locationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Reorder), args.Error(1)
}

func (m *MockInventoryRepository) CreateReorder(ctx context.Context, reorder *models.Reorder) error {
	args := m.Called(ctx, reorder)
	return args.Error(0)
}

func (m *MockInventoryRepository) UpdateReorder(ctx context.Context, tenantID string, productID, locationID uuid.UUID, updates map[string]interface{}) error {
	args := m.Called(ctx, tenantID, productID, locationID, updates)
	return args.Error(0)
}

func (m *MockInventoryRepository) DeleteReorder(ctx context.Context, tenantID string, productID, locationID uuid.UUID) error {
	args := m.Called(ctx, tenantID, productID, locationID)
	return args.Error(0)
}

func (m *MockInventoryRepository) ListReorders(ctx context.Context, tenantID string, locationID *uuid.UUID, page, limit int) ([]models.Reorder, int64, error) {
	args := m.Called(ctx, tenantID, locationID, page, limit)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]models.Reorder), args.Get(1).(int64), args.Error(2)
}

func (m *MockInventoryRepository) GenerateOrderNumber(ctx context.Context, tenantID string) (string, error) {
	args := m.Called(ctx, tenantID)
	return args.String(0), args.Error(1)
}

func (m *MockInventoryRepository) CreateOrder(ctx context.Context, order *models.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockInventoryRepository) GetOrderByID(ctx context.Context, tenantID string, id uuid.UUID) (*models.Order, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockInventoryRepository) ListOrders(ctx context.Context, tenantID string, page, limit int) ([]models.Order, int64, error) {
	args := m.Called(ctx, tenantID, page, limit)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]models.Order), args.Get(1).(int64), args.Error(2)
}

func (m *MockInventoryRepository) CreateAttachment(ctx context.Context, attachment *models.Attachment) error {
	args := m.Called(ctx, attachment)
	return args.Error(0)
}

func (m *MockInventoryRepository) RedisHealth(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockInventoryRepository) CacheStats() *cache.CacheStats {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*cache.CacheStats)
}
