package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SentinelDimensionName is the reserved placement/batch name meaning
// "unassigned". Every location owns one sentinel placement and every
// (product, placement) pair owns one sentinel batch, created lazily.
const SentinelDimensionName = "-"

// MovementType classifies a ledger mutation. The wire values are kept from
// the legacy system so existing history rows and integrations stay readable.
type MovementType string

const (
	MovementTypeIncrease   MovementType = "tilgang"    // goods received
	MovementTypeDecrease   MovementType = "afgang"     // goods issued
	MovementTypeAdjustment MovementType = "regulering" // manual correction
	MovementTypeTransfer   MovementType = "flyt"       // one leg of a location transfer
)

// IsDecreasing reports whether a movement of this type with the given delta
// requires an existing inventory row at the tuple.
func (t MovementType) IsDecreasing(delta int) bool {
	switch t {
	case MovementTypeDecrease:
		return true
	case MovementTypeAdjustment, MovementTypeTransfer:
		return delta < 0
	}
	return false
}

// Product is a tenant-scoped catalog entry. Identity is immutable,
// attributes are not.
type Product struct {
	ID           uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	TenantID     string    `json:"tenantId" gorm:"type:varchar(255);not null;uniqueIndex:idx_tenant_product_sku"`
	SKU          string    `json:"sku" gorm:"type:varchar(100);not null;uniqueIndex:idx_tenant_product_sku"`
	Barcode      string    `json:"barcode" gorm:"type:varchar(100)"`
	Name         string    `json:"name" gorm:"type:varchar(255);not null"`
	Text1        string    `json:"text1" gorm:"type:varchar(255)"`
	Text2        string    `json:"text2" gorm:"type:varchar(255)"`
	UnitName     string    `json:"unitName" gorm:"type:varchar(50)"`
	CostPrice    float64   `json:"costPrice" gorm:"type:decimal(12,2);not null;default:0"`
	SalesPrice   float64   `json:"salesPrice" gorm:"type:decimal(12,2);not null;default:0"`
	SupplierName *string   `json:"supplierName,omitempty" gorm:"type:varchar(255)"`
	Barred       bool      `json:"barred" gorm:"not null;default:false"`

	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
	DeletedAt *gorm.DeletedAt `json:"deletedAt,omitempty" gorm:"index"`
}

// Location is a physical site holding inventory.
type Location struct {
	ID       uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	TenantID string    `json:"tenantId" gorm:"type:varchar(255);not null;index"`
	Name     string    `json:"name" gorm:"type:varchar(255);not null"`
	Barred   bool      `json:"barred" gorm:"not null;default:false"`

	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
	DeletedAt *gorm.DeletedAt `json:"deletedAt,omitempty" gorm:"index"`
}

// Placement is a named sub-location (shelf, zone) within a Location.
// Name is unique per (tenant, location).
type Placement struct {
	ID         uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	TenantID   string    `json:"tenantId" gorm:"type:varchar(255);not null;uniqueIndex:idx_tenant_location_placement"`
	LocationID uuid.UUID `json:"locationId" gorm:"type:uuid;not null;uniqueIndex:idx_tenant_location_placement;index"`
	Name       string    `json:"name" gorm:"type:varchar(255);not null;uniqueIndex:idx_tenant_location_placement"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Batch is a named lot within a Placement, scoped to one product.
// Name is unique per (tenant, product, placement).
type Batch struct {
	ID          uuid.UUID  `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	TenantID    string     `json:"tenantId" gorm:"type:varchar(255);not null;uniqueIndex:idx_tenant_product_placement_batch"`
	ProductID   uuid.UUID  `json:"productId" gorm:"type:uuid;not null;uniqueIndex:idx_tenant_product_placement_batch;index"`
	PlacementID uuid.UUID  `json:"placementId" gorm:"type:uuid;not null;uniqueIndex:idx_tenant_product_placement_batch;index"`
	Name        string     `json:"name" gorm:"type:varchar(255);not null;uniqueIndex:idx_tenant_product_placement_batch"`
	ExpiryDate  *time.Time `json:"expiryDate,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// DefaultPlacement designates the canonical placement outbound stock must
// leave from for a (product, location) pair. At most one row per pair.
type DefaultPlacement struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	TenantID    string    `json:"tenantId" gorm:"type:varchar(255);not null;uniqueIndex:idx_tenant_default_placement"`
	ProductID   uuid.UUID `json:"productId" gorm:"type:uuid;not null;uniqueIndex:idx_tenant_default_placement;index"`
	LocationID  uuid.UUID `json:"locationId" gorm:"type:uuid;not null;uniqueIndex:idx_tenant_default_placement;index"`
	PlacementID uuid.UUID `json:"placementId" gorm:"type:uuid;not null"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// InventoryKey identifies one quantity row. Exactly one Inventory row exists
// per key; rows are created lazily on first write.
type InventoryKey struct {
	ProductID   uuid.UUID `json:"productId"`
	LocationID  uuid.UUID `json:"locationId"`
	PlacementID uuid.UUID `json:"placementId"`
	BatchID     uuid.UUID `json:"batchId"`
}

// Inventory is the quantity row for one (product, location, placement,
// batch) tuple. Quantity is signed; decrements against a missing row are
// rejected, but an existing row may go negative.
type Inventory struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	TenantID    string    `json:"tenantId" gorm:"type:varchar(255);not null;uniqueIndex:idx_tenant_inventory_tuple"`
	ProductID   uuid.UUID `json:"productId" gorm:"type:uuid;not null;uniqueIndex:idx_tenant_inventory_tuple;index"`
	LocationID  uuid.UUID `json:"locationId" gorm:"type:uuid;not null;uniqueIndex:idx_tenant_inventory_tuple;index"`
	PlacementID uuid.UUID `json:"placementId" gorm:"type:uuid;not null;uniqueIndex:idx_tenant_inventory_tuple"`
	BatchID     uuid.UUID `json:"batchId" gorm:"type:uuid;not null;uniqueIndex:idx_tenant_inventory_tuple"`
	Quantity    int       `json:"quantity" gorm:"not null;default:0"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Key returns the composite identity of the row.
func (i *Inventory) Key() InventoryKey {
	return InventoryKey{
		ProductID:   i.ProductID,
		LocationID:  i.LocationID,
		PlacementID: i.PlacementID,
		BatchID:     i.BatchID,
	}
}

// InventoryHistory is the append-only ledger entry. Rows are never updated
// or deleted. Product, placement, batch and actor names are denormalized so
// the audit trail survives later renames.
type InventoryHistory struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	TenantID    string    `json:"tenantId" gorm:"type:varchar(255);not null;index"`
	ProductID   uuid.UUID `json:"productId" gorm:"type:uuid;not null;index"`
	LocationID  uuid.UUID `json:"locationId" gorm:"type:uuid;not null;index"`
	PlacementID uuid.UUID `json:"placementId" gorm:"type:uuid;not null"`
	BatchID     uuid.UUID `json:"batchId" gorm:"type:uuid;not null"`

	SKU           string `json:"sku" gorm:"type:varchar(100);not null"`
	ProductName   string `json:"productName" gorm:"type:varchar(255);not null"`
	PlacementName string `json:"placementName" gorm:"type:varchar(255);not null"`
	BatchName     string `json:"batchName" gorm:"type:varchar(255);not null"`
	ActorName     string `json:"actorName" gorm:"type:varchar(255);not null"`

	Type              MovementType `json:"type" gorm:"type:varchar(20);not null;index"`
	Amount            int          `json:"amount" gorm:"not null"`
	ResultingQuantity int          `json:"resultingQuantity" gorm:"not null"`
	Platform          string       `json:"platform" gorm:"type:varchar(50);not null;default:'web'"`
	Reference         *string      `json:"reference,omitempty" gorm:"type:varchar(255)"`
	CorrelationID     *uuid.UUID   `json:"correlationId,omitempty" gorm:"type:uuid;index"`

	CreatedAt time.Time `json:"createdAt" gorm:"index"`
}

func (Product) TableName() string          { return "products" }
func (Location) TableName() string         { return "locations" }
func (Placement) TableName() string        { return "placements" }
func (Batch) TableName() string            { return "batches" }
func (DefaultPlacement) TableName() string { return "default_placements" }
func (Inventory) TableName() string        { return "inventory" }
func (InventoryHistory) TableName() string { return "inventory_history" }
