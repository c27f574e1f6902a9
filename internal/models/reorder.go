package models

import (
	"time"

	"github.com/google/uuid"
)

// Reorder is a standing restock rule or an ad-hoc "please reorder" flag for
// one (product, location) pair. Ad-hoc requests carry Minimum 0 and
// IsRequested true. Rows are deleted once fulfilled.
type Reorder struct {
	ID         uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	TenantID   string    `json:"tenantId" gorm:"type:varchar(255);not null;uniqueIndex:idx_tenant_reorder"`
	ProductID  uuid.UUID `json:"productId" gorm:"type:uuid;not null;uniqueIndex:idx_tenant_reorder;index"`
	LocationID uuid.UUID `json:"locationId" gorm:"type:uuid;not null;uniqueIndex:idx_tenant_reorder;index"`

	Minimum        int  `json:"minimum" gorm:"not null;default:0"`
	Buffer         int  `json:"buffer" gorm:"not null;default:0"`
	Ordered        int  `json:"ordered" gorm:"not null;default:0"`
	OrderAmount    int  `json:"orderAmount" gorm:"not null;default:0"`
	MaxOrderAmount int  `json:"maxOrderAmount" gorm:"not null;default:0"`
	IsRequested    bool `json:"isRequested" gorm:"not null;default:false"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Order is the immutable snapshot of one finalized reorder batch. Created
// once at finalization, never mutated.
type Order struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	TenantID    string    `json:"tenantId" gorm:"type:varchar(255);not null;index"`
	OrderNumber string    `json:"orderNumber" gorm:"type:varchar(50);not null;uniqueIndex"`
	LocationID  uuid.UUID `json:"locationId" gorm:"type:uuid;not null;index"`
	RequestedBy string    `json:"requestedBy" gorm:"type:varchar(255);not null"`

	CreatedAt time.Time `json:"createdAt"`

	Lines []OrderLine `json:"lines,omitempty" gorm:"foreignKey:OrderID"`
}

// OrderLine is one line of an Order snapshot. Product attributes are copied
// at finalization time so the snapshot is self-contained.
type OrderLine struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	TenantID  string    `json:"tenantId" gorm:"type:varchar(255);not null;index"`
	OrderID   uuid.UUID `json:"orderId" gorm:"type:uuid;not null;index"`
	ProductID uuid.UUID `json:"productId" gorm:"type:uuid;not null;index"`

	SupplierName *string `json:"supplierName,omitempty" gorm:"type:varchar(255)"`
	SKU          string  `json:"sku" gorm:"type:varchar(100);not null"`
	Barcode      string  `json:"barcode" gorm:"type:varchar(100)"`
	Text1        string  `json:"text1" gorm:"type:varchar(255)"`
	Text2        string  `json:"text2" gorm:"type:varchar(255)"`
	UnitName     string  `json:"unitName" gorm:"type:varchar(50)"`
	CostPrice    float64 `json:"costPrice" gorm:"type:decimal(12,2);not null"`
	Quantity     int     `json:"quantity" gorm:"not null"`
	Sum          float64 `json:"sum" gorm:"type:decimal(12,2);not null"`

	CreatedAt time.Time `json:"createdAt"`
}

// Attachment is a persisted export artifact reference for an Order.
type Attachment struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	TenantID    string    `json:"tenantId" gorm:"type:varchar(255);not null;index"`
	OrderID     uuid.UUID `json:"orderId" gorm:"type:uuid;not null;index"`
	FileName    string    `json:"fileName" gorm:"type:varchar(255);not null"`
	ContentType string    `json:"contentType" gorm:"type:varchar(100);not null"`
	ByteSize    int64     `json:"byteSize" gorm:"not null"`
	StoragePath string    `json:"storagePath" gorm:"type:varchar(512);not null"`

	CreatedAt time.Time `json:"createdAt"`
}

func (Reorder) TableName() string    { return "reorders" }
func (Order) TableName() string      { return "orders" }
func (OrderLine) TableName() string  { return "order_lines" }
func (Attachment) TableName() string { return "attachments" }
