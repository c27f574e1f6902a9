package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"stock-ledger-service/internal/models"
)

// ========== Reorder Operations ==========

func (r *InventoryRepository) GetReorder(ctx context.Context, tenantID string, productID, locationID uuid.UUID) (*models.Reorder, error) {
	var reorder models.Reorder
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND product_id = ? AND location_id = ?", tenantID, productID, locationID).
		First(&reorder).Error
	if err != nil {
		return nil, notFoundOr(err)
	}
	return &reorder, nil
}

func (r *InventoryRepository) CreateReorder(ctx context.Context, reorder *models.Reorder) error {
	reorder.CreatedAt = time.Now()
	reorder.UpdatedAt = time.Now()
	if err := r.db.WithContext(ctx).Create(reorder).Error; err != nil {
		return err
	}
	r.invalidateReorderCaches(ctx, reorder.TenantID)
	return nil
}

func (r *InventoryRepository) UpdateReorder(ctx context.Context, tenantID string, productID, locationID uuid.UUID, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()
	result := r.db.WithContext(ctx).
		Model(&models.Reorder{}).
		Where("tenant_id = ? AND product_id = ? AND location_id = ?", tenantID, productID, locationID).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	r.invalidateReorderCaches(ctx, tenantID)
	return nil
}

func (r *InventoryRepository) DeleteReorder(ctx context.Context, tenantID string, productID, locationID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("tenant_id = ? AND product_id = ? AND location_id = ?", tenantID, productID, locationID).
		Delete(&models.Reorder{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	r.invalidateReorderCaches(ctx, tenantID)
	return nil
}

func (r *InventoryRepository) ListReorders(ctx context.Context, tenantID string, locationID *uuid.UUID, page, limit int) ([]models.Reorder, int64, error) {
	cacheKey := generateReorderListCacheKey(tenantID, locationID, page, limit)

	if r.redis != nil {
		val, err := r.redis.Get(ctx, cacheKeyPrefix+cacheKey).Result()
		if err == nil {
			var cached reorderListCacheEntry
			if err := json.Unmarshal([]byte(val), &cached); err == nil {
				return cached.Reorders, cached.Total, nil
			}
		}
	}

	var reorders []models.Reorder
	var total int64
	query := r.db.WithContext(ctx).Where("tenant_id = ?", tenantID)

	if locationID != nil {
		query = query.Where("location_id = ?", *locationID)
	}

	if err := query.Model(&models.Reorder{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if page > 0 && limit > 0 {
		offset := (page - 1) * limit
		query = query.Offset(offset).Limit(limit)
	}

	err := query.Order("created_at ASC").Find(&reorders).Error
	if err != nil {
		return nil, 0, err
	}

	if r.redis != nil {
		if data, marshalErr := json.Marshal(reorderListCacheEntry{Reorders: reorders, Total: total}); marshalErr == nil {
			r.redis.Set(ctx, cacheKeyPrefix+cacheKey, data, ReorderListCacheTTL)
		}
	}

	return reorders, total, nil
}

type reorderListCacheEntry struct {
	Reorders []models.Reorder `json:"reorders"`
	Total    int64            `json:"total"`
}

func generateReorderListCacheKey(tenantID string, locationID *uuid.UUID, page, limit int) string {
	locID := "all"
	if locationID != nil {
		locID = locationID.String()
	}
	return fmt.Sprintf("reorder:list:%s:%s:%d:%d", tenantID, locID, page, limit)
}

// ========== Order Operations ==========

// GenerateOrderNumber builds the order number as
// <tenant prefix>-<yyMM>-<sequence within the month>, matching the numbering
// the purchasing side already reconciles against.
func (r *InventoryRepository) GenerateOrderNumber(ctx context.Context, tenantID string) (string, error) {
	monthStart := time.Now().Truncate(24 * time.Hour).AddDate(0, 0, 1-time.Now().Day())

	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("tenant_id = ? AND created_at >= ?", tenantID, monthStart).
		Count(&count).Error; err != nil {
		return "", err
	}

	return fmt.Sprintf("%s-%s-%04d", tenantPrefix(tenantID), time.Now().Format("0601"), count+1), nil
}

// tenantPrefix derives the 4-character order number prefix from the tenant ID.
func tenantPrefix(tenantID string) string {
	cleaned := strings.ToUpper(strings.ReplaceAll(tenantID, "-", ""))
	if len(cleaned) >= 4 {
		return cleaned[:4]
	}
	return fmt.Sprintf("%04s", cleaned)
}

// CreateOrder persists the order and its lines in one insert.
func (r *InventoryRepository) CreateOrder(ctx context.Context, order *models.Order) error {
	order.CreatedAt = time.Now()
	for i := range order.Lines {
		order.Lines[i].TenantID = order.TenantID
		order.Lines[i].CreatedAt = time.Now()
	}
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *InventoryRepository) GetOrderByID(ctx context.Context, tenantID string, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Preload("Lines").
		First(&order).Error
	if err != nil {
		return nil, notFoundOr(err)
	}
	return &order, nil
}

func (r *InventoryRepository) ListOrders(ctx context.Context, tenantID string, page, limit int) ([]models.Order, int64, error) {
	var orders []models.Order
	var total int64
	query := r.db.WithContext(ctx).Where("tenant_id = ?", tenantID)

	if err := query.Model(&models.Order{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if page > 0 && limit > 0 {
		offset := (page - 1) * limit
		query = query.Offset(offset).Limit(limit)
	}

	err := query.Preload("Lines").Order("created_at DESC").Find(&orders).Error
	return orders, total, err
}

func (r *InventoryRepository) CreateAttachment(ctx context.Context, attachment *models.Attachment) error {
	attachment.CreatedAt = time.Now()
	return r.db.WithContext(ctx).Create(attachment).Error
}
