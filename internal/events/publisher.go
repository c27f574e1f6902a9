// Package events provides NATS event publishing for stock-ledger-service
package events

import (
	"context"
	"fmt"
	"time"

	"github.com/Tesseract-Nexus/go-shared/events"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"stock-ledger-service/internal/models"
)

// LedgerEventPublisher publishes ledger events to NATS JetStream. Publish
// failures are logged, never propagated; the ledger state is already
// committed when an event goes out.
type LedgerEventPublisher struct {
	publisher *events.Publisher
	logger    *logrus.Entry
}

// NewLedgerEventPublisher creates a new ledger event publisher
func NewLedgerEventPublisher(natsURL string, logger *logrus.Logger) (*LedgerEventPublisher, error) {
	if natsURL == "" {
		return nil, fmt.Errorf("NATS URL is required")
	}

	log := logger
	if log == nil {
		log = logrus.StandardLogger()
	}

	config := events.DefaultPublisherConfig(natsURL)
	config.Name = "stock-ledger-service-publisher"

	publisher, err := events.NewPublisher(config, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create publisher: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := publisher.EnsureStream(ctx, events.StreamInventory, []string{"inventory.>"}); err != nil {
		log.WithError(err).Warn("Failed to ensure inventory stream exists")
	}

	return &LedgerEventPublisher{
		publisher: publisher,
		logger:    log.WithField("component", "ledger-events"),
	}, nil
}

// PublishMovementApplied publishes an inventory.adjusted event for one
// committed ledger mutation.
func (p *LedgerEventPublisher) PublishMovementApplied(ctx context.Context, tenantID string, entry *models.InventoryHistory, previousQuantity int) {
	event := events.NewInventoryEvent(events.InventoryAdjusted, tenantID)
	event.Items = []events.InventoryItem{
		{
			ProductID:     entry.ProductID.String(),
			Name:          entry.ProductName,
			SKU:           entry.SKU,
			CurrentStock:  entry.ResultingQuantity,
			PreviousStock: previousQuantity,
			WarehouseID:   entry.LocationID.String(),
		},
	}
	event.AdjustmentReason = string(entry.Type)
	event.AdjustedBy = entry.ActorName
	if entry.Amount > 0 {
		event.AdjustmentType = "add"
	} else {
		event.AdjustmentType = "remove"
	}
	event.AlertLevel = "info"
	event.AlertMessage = fmt.Sprintf("Stock %s: %s (SKU: %s) changed by %d to %d",
		entry.Type, entry.ProductName, entry.SKU, entry.Amount, entry.ResultingQuantity)

	if err := p.publisher.PublishInventory(ctx, event); err != nil {
		p.logger.WithFields(logrus.Fields{
			"sku":  entry.SKU,
			"type": entry.Type,
		}).WithError(err).Error("Failed to publish inventory.adjusted event")
		return
	}

	p.logger.WithFields(logrus.Fields{
		"sku":               entry.SKU,
		"type":              entry.Type,
		"amount":            entry.Amount,
		"resultingQuantity": entry.ResultingQuantity,
	}).Info("Published inventory.adjusted event")
}

// PublishTransferCompleted publishes one inventory.adjusted event covering
// every leg of a committed transfer.
func (p *LedgerEventPublisher) PublishTransferCompleted(ctx context.Context, tenantID string, correlationID uuid.UUID, entries []models.InventoryHistory) {
	event := events.NewInventoryEvent(events.InventoryAdjusted, tenantID)
	for _, entry := range entries {
		event.Items = append(event.Items, events.InventoryItem{
			ProductID:    entry.ProductID.String(),
			Name:         entry.ProductName,
			SKU:          entry.SKU,
			CurrentStock: entry.ResultingQuantity,
			WarehouseID:  entry.LocationID.String(),
		})
	}
	event.AdjustmentReason = "transfer"
	event.AdjustmentType = "set"
	event.AlertLevel = "info"
	event.AlertMessage = fmt.Sprintf("Transfer %s moved stock across %d ledger entries", correlationID, len(entries))
	event.CalculateSummary()

	if err := p.publisher.PublishInventory(ctx, event); err != nil {
		p.logger.WithField("correlationId", correlationID).WithError(err).Error("Failed to publish transfer event")
		return
	}

	p.logger.WithFields(logrus.Fields{
		"correlationId": correlationID,
		"entries":       len(entries),
	}).Info("Published transfer event")
}

// PublishRestockOrdered publishes an inventory.adjusted event for a
// finalized reorder batch.
func (p *LedgerEventPublisher) PublishRestockOrdered(ctx context.Context, tenantID string, order *models.Order) {
	event := events.NewInventoryEvent(events.InventoryAdjusted, tenantID)
	for _, line := range order.Lines {
		event.Items = append(event.Items, events.InventoryItem{
			ProductID:    line.ProductID.String(),
			Name:         line.Text1,
			SKU:          line.SKU,
			CurrentStock: line.Quantity,
			WarehouseID:  order.LocationID.String(),
		})
	}
	event.AdjustmentReason = "restock_ordered"
	event.AdjustmentType = "set"
	event.AdjustedBy = order.RequestedBy
	event.AlertLevel = "info"
	event.AlertMessage = fmt.Sprintf("Restock order %s created with %d lines", order.OrderNumber, len(order.Lines))

	if err := p.publisher.PublishInventory(ctx, event); err != nil {
		p.logger.WithField("orderNumber", order.OrderNumber).WithError(err).Error("Failed to publish restock event")
		return
	}

	p.logger.WithFields(logrus.Fields{
		"orderNumber": order.OrderNumber,
		"lines":       len(order.Lines),
	}).Info("Published restock event")
}

// IsConnected returns true if connected to NATS
func (p *LedgerEventPublisher) IsConnected() bool {
	return p.publisher.IsConnected()
}

// Close closes the NATS connection
func (p *LedgerEventPublisher) Close() {
	p.publisher.Close()
}
