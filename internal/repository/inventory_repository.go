package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Tesseract-Nexus/go-shared/cache"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"stock-ledger-service/internal/models"
)

var ErrNotFound = errors.New("not found")

// Cache TTL constants
const (
	InventoryCacheTTL   = 2 * time.Minute  // quantity rows change on every movement
	ReorderListCacheTTL = 5 * time.Minute  // reorder rules change rarely
	DimensionCacheTTL   = 30 * time.Minute // placements/batches are append-mostly

	cacheKeyPrefix = "tesseract:stockledger:"
)

type InventoryRepository struct {
	db    *gorm.DB
	redis *redis.Client
	cache *cache.CacheLayer
}

func NewInventoryRepository(db *gorm.DB, redisClient *redis.Client) *InventoryRepository {
	repo := &InventoryRepository{
		db:    db,
		redis: redisClient,
	}

	if redisClient != nil {
		cacheConfig := cache.CacheConfig{
			L1Enabled:  true,
			L1MaxItems: 5000,
			L1TTL:      30 * time.Second,
			DefaultTTL: InventoryCacheTTL,
			KeyPrefix:  cacheKeyPrefix,
		}
		repo.cache = cache.NewCacheLayerFromClient(redisClient, cacheConfig)
	}

	return repo
}

// WithTransaction runs fn against a repository bound to one database
// transaction. All writes inside fn commit or roll back together.
func (r *InventoryRepository) WithTransaction(ctx context.Context, fn func(txRepo InventoryRepositoryInterface) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepo := &InventoryRepository{db: tx, redis: r.redis, cache: r.cache}
		return fn(txRepo)
	})
}

func notFoundOr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// generateInventoryCacheKey creates a cache key for one quantity row
func generateInventoryCacheKey(tenantID string, key models.InventoryKey) string {
	return fmt.Sprintf("inventory:%s:%s:%s:%s:%s",
		tenantID, key.ProductID, key.LocationID, key.PlacementID, key.BatchID)
}

// invalidateInventoryCaches drops the row cache plus the derived reorder
// overview caches for the tenant.
func (r *InventoryRepository) invalidateInventoryCaches(ctx context.Context, tenantID string, key models.InventoryKey) {
	if r.cache == nil {
		return
	}
	_ = r.cache.Delete(ctx, generateInventoryCacheKey(tenantID, key))
	_ = r.cache.DeletePattern(ctx, fmt.Sprintf("reorder:list:%s:*", tenantID))
}

func (r *InventoryRepository) invalidateReorderCaches(ctx context.Context, tenantID string) {
	if r.cache == nil {
		return
	}
	_ = r.cache.DeletePattern(ctx, fmt.Sprintf("reorder:list:%s:*", tenantID))
}

// RedisHealth returns the health status of the Redis connection
func (r *InventoryRepository) RedisHealth(ctx context.Context) error {
	if r.redis == nil {
		return fmt.Errorf("redis not configured")
	}
	return r.redis.Ping(ctx).Err()
}

// CacheStats returns cache statistics
func (r *InventoryRepository) CacheStats() *cache.CacheStats {
	if r.cache == nil {
		return nil
	}
	stats := r.cache.Stats()
	return &stats
}

// ========== Catalog Operations ==========

func (r *InventoryRepository) GetProductByID(ctx context.Context, tenantID string, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&product).Error
	if err != nil {
		return nil, notFoundOr(err)
	}
	return &product, nil
}

func (r *InventoryRepository) GetLocationByID(ctx context.Context, tenantID string, id uuid.UUID) (*models.Location, error) {
	var location models.Location
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&location).Error
	if err != nil {
		return nil, notFoundOr(err)
	}
	return &location, nil
}

// ========== Dimension Operations ==========

func (r *InventoryRepository) GetPlacementByID(ctx context.Context, tenantID string, id uuid.UUID) (*models.Placement, error) {
	var placement models.Placement
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&placement).Error
	if err != nil {
		return nil, notFoundOr(err)
	}
	return &placement, nil
}

func (r *InventoryRepository) GetPlacementByName(ctx context.Context, tenantID string, locationID uuid.UUID, name string) (*models.Placement, error) {
	var placement models.Placement
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND location_id = ? AND name = ?", tenantID, locationID, name).
		First(&placement).Error
	if err != nil {
		return nil, notFoundOr(err)
	}
	return &placement, nil
}

func (r *InventoryRepository) CreatePlacement(ctx context.Context, placement *models.Placement) error {
	placement.CreatedAt = time.Now()
	placement.UpdatedAt = time.Now()
	return r.db.WithContext(ctx).Create(placement).Error
}

func (r *InventoryRepository) ListPlacements(ctx context.Context, tenantID string, locationID uuid.UUID) ([]models.Placement, error) {
	var placements []models.Placement
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND location_id = ?", tenantID, locationID).
		Order("created_at ASC").
		Find(&placements).Error
	return placements, err
}

func (r *InventoryRepository) GetBatchByID(ctx context.Context, tenantID string, id uuid.UUID) (*models.Batch, error) {
	var batch models.Batch
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&batch).Error
	if err != nil {
		return nil, notFoundOr(err)
	}
	return &batch, nil
}

func (r *InventoryRepository) GetBatchByName(ctx context.Context, tenantID string, productID, placementID uuid.UUID, name string) (*models.Batch, error) {
	var batch models.Batch
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND product_id = ? AND placement_id = ? AND name = ?", tenantID, productID, placementID, name).
		First(&batch).Error
	if err != nil {
		return nil, notFoundOr(err)
	}
	return &batch, nil
}

func (r *InventoryRepository) CreateBatch(ctx context.Context, batch *models.Batch) error {
	batch.CreatedAt = time.Now()
	batch.UpdatedAt = time.Now()
	return r.db.WithContext(ctx).Create(batch).Error
}

func (r *InventoryRepository) ListBatches(ctx context.Context, tenantID string, productID, placementID uuid.UUID) ([]models.Batch, error) {
	var batches []models.Batch
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND product_id = ? AND placement_id = ?", tenantID, productID, placementID).
		Order("created_at ASC").
		Find(&batches).Error
	return batches, err
}

func (r *InventoryRepository) GetDefaultPlacement(ctx context.Context, tenantID string, productID, locationID uuid.UUID) (*models.DefaultPlacement, error) {
	var mapping models.DefaultPlacement
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND product_id = ? AND location_id = ?", tenantID, productID, locationID).
		First(&mapping).Error
	if err != nil {
		return nil, notFoundOr(err)
	}
	return &mapping, nil
}

// SetDefaultPlacement upserts the (product, location) -> placement mapping.
func (r *InventoryRepository) SetDefaultPlacement(ctx context.Context, mapping *models.DefaultPlacement) error {
	mapping.UpdatedAt = time.Now()
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "tenant_id"}, {Name: "product_id"}, {Name: "location_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"placement_id", "updated_at"}),
	}).Create(mapping).Error
}

func (r *InventoryRepository) ClearDefaultPlacement(ctx context.Context, tenantID string, productID, locationID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("tenant_id = ? AND product_id = ? AND location_id = ?", tenantID, productID, locationID).
		Delete(&models.DefaultPlacement{}).Error
}

// ========== Quantity Rows and History ==========

// GetInventory reads one quantity row, redis read-through.
func (r *InventoryRepository) GetInventory(ctx context.Context, tenantID string, key models.InventoryKey) (*models.Inventory, error) {
	cacheKey := generateInventoryCacheKey(tenantID, key)

	if r.redis != nil {
		val, err := r.redis.Get(ctx, cacheKeyPrefix+cacheKey).Result()
		if err == nil {
			var inventory models.Inventory
			if err := json.Unmarshal([]byte(val), &inventory); err == nil {
				return &inventory, nil
			}
		}
	}

	var inventory models.Inventory
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND product_id = ? AND location_id = ? AND placement_id = ? AND batch_id = ?",
			tenantID, key.ProductID, key.LocationID, key.PlacementID, key.BatchID).
		First(&inventory).Error
	if err != nil {
		return nil, notFoundOr(err)
	}

	if r.redis != nil {
		if data, marshalErr := json.Marshal(inventory); marshalErr == nil {
			r.redis.Set(ctx, cacheKeyPrefix+cacheKey, data, InventoryCacheTTL)
		}
	}

	return &inventory, nil
}

// GetInventoryForUpdate reads one quantity row under SELECT ... FOR UPDATE.
// Only meaningful inside WithTransaction; concurrent movements on the same
// tuple serialize on this lock.
func (r *InventoryRepository) GetInventoryForUpdate(ctx context.Context, tenantID string, key models.InventoryKey) (*models.Inventory, error) {
	var inventory models.Inventory
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("tenant_id = ? AND product_id = ? AND location_id = ? AND placement_id = ? AND batch_id = ?",
			tenantID, key.ProductID, key.LocationID, key.PlacementID, key.BatchID).
		First(&inventory).Error
	if err != nil {
		return nil, notFoundOr(err)
	}
	return &inventory, nil
}

func (r *InventoryRepository) CreateInventory(ctx context.Context, inventory *models.Inventory) error {
	inventory.CreatedAt = time.Now()
	inventory.UpdatedAt = time.Now()
	if err := r.db.WithContext(ctx).Create(inventory).Error; err != nil {
		return err
	}
	r.invalidateInventoryCaches(ctx, inventory.TenantID, inventory.Key())
	return nil
}

func (r *InventoryRepository) SaveInventory(ctx context.Context, inventory *models.Inventory) error {
	inventory.UpdatedAt = time.Now()
	if err := r.db.WithContext(ctx).Save(inventory).Error; err != nil {
		return err
	}
	r.invalidateInventoryCaches(ctx, inventory.TenantID, inventory.Key())
	return nil
}

func (r *InventoryRepository) CreateHistory(ctx context.Context, entry *models.InventoryHistory) error {
	entry.CreatedAt = time.Now()
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *InventoryRepository) ListHistory(ctx context.Context, tenantID string, filter models.HistoryFilter, page, limit int) ([]models.InventoryHistory, int64, error) {
	var entries []models.InventoryHistory
	var total int64
	query := r.db.WithContext(ctx).Where("tenant_id = ?", tenantID)

	if filter.ProductID != nil {
		query = query.Where("product_id = ?", *filter.ProductID)
	}
	if filter.LocationID != nil {
		query = query.Where("location_id = ?", *filter.LocationID)
	}
	if filter.Type != nil {
		query = query.Where("type = ?", *filter.Type)
	}

	if err := query.Model(&models.InventoryHistory{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if page > 0 && limit > 0 {
		offset := (page - 1) * limit
		query = query.Offset(offset).Limit(limit)
	}

	err := query.Order("created_at DESC").Find(&entries).Error
	return entries, total, err
}

// ListStockedPlacements returns placements at a location holding a non-zero
// quantity of the product, in insertion order.
func (r *InventoryRepository) ListStockedPlacements(ctx context.Context, tenantID string, productID, locationID uuid.UUID) ([]models.Placement, error) {
	var placements []models.Placement
	err := r.db.WithContext(ctx).
		Joins("JOIN inventory ON inventory.placement_id = placements.id AND inventory.tenant_id = placements.tenant_id").
		Where("placements.tenant_id = ? AND inventory.product_id = ? AND inventory.location_id = ? AND inventory.quantity <> 0",
			tenantID, productID, locationID).
		Group("placements.id").
		Order("MIN(placements.created_at) ASC").
		Find(&placements).Error
	return placements, err
}

// ListStockedBatches returns batches under a placement holding a non-zero
// quantity of the product, in insertion order.
func (r *InventoryRepository) ListStockedBatches(ctx context.Context, tenantID string, productID, placementID uuid.UUID) ([]models.Batch, error) {
	var batches []models.Batch
	err := r.db.WithContext(ctx).
		Joins("JOIN inventory ON inventory.batch_id = batches.id AND inventory.tenant_id = batches.tenant_id").
		Where("batches.tenant_id = ? AND inventory.product_id = ? AND inventory.placement_id = ? AND inventory.quantity <> 0",
			tenantID, productID, placementID).
		Group("batches.id").
		Order("MIN(batches.created_at) ASC").
		Find(&batches).Error
	return batches, err
}

// SumQuantity totals all quantity rows for a product at a location.
func (r *InventoryRepository) SumQuantity(ctx context.Context, tenantID string, productID, locationID uuid.UUID) (int, error) {
	var total *int
	err := r.db.WithContext(ctx).
		Model(&models.Inventory{}).
		Select("SUM(quantity)").
		Where("tenant_id = ? AND product_id = ? AND location_id = ?", tenantID, productID, locationID).
		Scan(&total).Error
	if err != nil {
		return 0, err
	}
	if total == nil {
		return 0, nil
	}
	return *total, nil
}
