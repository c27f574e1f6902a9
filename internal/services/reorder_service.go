package services

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"stock-ledger-service/internal/models"
	"stock-ledger-service/internal/repository"
)

// Exporter renders an order snapshot into a binary spreadsheet artifact.
type Exporter interface {
	RenderOrder(order *models.Order) ([]byte, error)
}

// AttachmentStore persists an export artifact and records its reference.
type AttachmentStore interface {
	SaveOrderExport(ctx context.Context, tenantID string, order *models.Order, data []byte) (*models.Attachment, error)
}

// ReorderEventPublisher is the slice of the event publisher the engine
// needs. Nil disables publishing.
type ReorderEventPublisher interface {
	PublishRestockOrdered(ctx context.Context, tenantID string, order *models.Order)
}

// FinalizeLineResult is the outcome of one independent per-line reorder
// update during BulkFinalize.
type FinalizeLineResult struct {
	Index int
	SKU   string
	Err   *Error
}

// FinalizeOutcome carries the committed Order snapshot plus the per-line
// results. The Order exists regardless of per-line or export failures.
type FinalizeOutcome struct {
	Order      *models.Order
	Attachment *models.Attachment
	ExportErr  *Error
	Results    []FinalizeLineResult
}

// ReorderEngine computes restock recommendations, tracks ordered quantities
// and ad-hoc requests, and finalizes reorder batches into immutable order
// snapshots.
type ReorderEngine struct {
	repo        repository.InventoryRepositoryInterface
	exporter    Exporter
	attachments AttachmentStore
	publisher   ReorderEventPublisher
	logger      *logrus.Entry
}

func NewReorderEngine(repo repository.InventoryRepositoryInterface, exporter Exporter, attachments AttachmentStore, publisher ReorderEventPublisher, logger *logrus.Logger) *ReorderEngine {
	log := logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &ReorderEngine{
		repo:        repo,
		exporter:    exporter,
		attachments: attachments,
		publisher:   publisher,
		logger:      log.WithField("component", "reorder-engine"),
	}
}

// RecommendedAmount computes how much to restock. Never negative; zero
// whenever quantity + ordered already covers minimum + buffer.
func RecommendedAmount(quantity int, reorder *models.Reorder) int {
	recommended := reorder.Minimum + reorder.Buffer - (quantity + reorder.Ordered)
	if recommended < 0 {
		return 0
	}
	return recommended
}

// SetThreshold creates or updates the standing restock rule for
// (product, location).
func (s *ReorderEngine) SetThreshold(ctx context.Context, tenantID string, productID, locationID uuid.UUID, minimum, buffer int) (*models.Reorder, error) {
	if minimum < 0 || buffer < 0 {
		return nil, newValidationError(CodeInvalidAmount, "minimum and buffer must not be negative")
	}
	if err := s.checkProductAndLocation(ctx, tenantID, productID, locationID); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetReorder(ctx, tenantID, productID, locationID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, newStorageError(err)
	}

	if existing != nil {
		updates := map[string]interface{}{
			"minimum":      minimum,
			"buffer":       buffer,
			"is_requested": false,
		}
		if err := s.repo.UpdateReorder(ctx, tenantID, productID, locationID, updates); err != nil {
			return nil, newStorageError(err)
		}
		existing.Minimum = minimum
		existing.Buffer = buffer
		existing.IsRequested = false
		return existing, nil
	}

	reorder := &models.Reorder{
		ID:         uuid.New(),
		TenantID:   tenantID,
		ProductID:  productID,
		LocationID: locationID,
		Minimum:    minimum,
		Buffer:     buffer,
	}
	if err := s.repo.CreateReorder(ctx, reorder); err != nil {
		return nil, newStorageError(err)
	}
	return reorder, nil
}

// DeleteThreshold removes the reorder rule for (product, location).
func (s *ReorderEngine) DeleteThreshold(ctx context.Context, tenantID string, productID, locationID uuid.UUID) error {
	if err := s.repo.DeleteReorder(ctx, tenantID, productID, locationID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return newNotFoundError(CodeReorderNotFound, "no reorder rule for product %s at location %s", productID, locationID)
		}
		return newStorageError(err)
	}
	return nil
}

// RecordAdHocRequest flags a product for reordering at a location without a
// threshold. Conflicts if any reorder already exists for the pair, surfacing
// the existing state so the caller can render it.
func (s *ReorderEngine) RecordAdHocRequest(ctx context.Context, tenantID string, productID, locationID uuid.UUID) (*models.Reorder, error) {
	if err := s.checkProductAndLocation(ctx, tenantID, productID, locationID); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetReorder(ctx, tenantID, productID, locationID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, newStorageError(err)
	}
	if existing != nil {
		if existing.IsRequested {
			return nil, newConflictError(CodeAlreadyRequested, "product is already requested for reordering")
		}
		return nil, newConflictError(CodeAlreadyBelowMinimum, "product already has a reorder rule with minimum %d", existing.Minimum)
	}

	reorder := &models.Reorder{
		ID:          uuid.New(),
		TenantID:    tenantID,
		ProductID:   productID,
		LocationID:  locationID,
		IsRequested: true,
	}
	if err := s.repo.CreateReorder(ctx, reorder); err != nil {
		return nil, newStorageError(err)
	}

	s.logger.WithFields(logrus.Fields{
		"productId":  productID,
		"locationId": locationID,
	}).Info("ad-hoc reorder requested")
	return reorder, nil
}

// ListOverview returns reorder rules joined with the product, current total
// quantity at the rule's location and the computed recommendation.
func (s *ReorderEngine) ListOverview(ctx context.Context, tenantID string, locationID *uuid.UUID, page, limit int) ([]models.ReorderOverview, int64, error) {
	reorders, total, err := s.repo.ListReorders(ctx, tenantID, locationID, page, limit)
	if err != nil {
		return nil, 0, newStorageError(err)
	}

	overview := make([]models.ReorderOverview, 0, len(reorders))
	for _, reorder := range reorders {
		quantity, err := s.repo.SumQuantity(ctx, tenantID, reorder.ProductID, reorder.LocationID)
		if err != nil {
			return nil, 0, newStorageError(err)
		}
		product, err := s.repo.GetProductByID(ctx, tenantID, reorder.ProductID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, 0, newStorageError(err)
		}
		overview = append(overview, models.ReorderOverview{
			Reorder:           reorder,
			Product:           product,
			Quantity:          quantity,
			RecommendedAmount: RecommendedAmount(quantity, &reorder),
		})
	}
	return overview, total, nil
}

// BulkFinalize turns a batch of reorder lines into a persisted purchase
// order. The per-line bookkeeping updates are independent and run
// concurrently; partial failure is reported per line. The Order snapshot is
// written unconditionally, and export/attachment failures never roll it
// back.
func (s *ReorderEngine) BulkFinalize(ctx context.Context, tenantID string, actor Actor, locationID uuid.UUID, items []models.BulkFinalizeItem) (*FinalizeOutcome, error) {
	if len(items) == 0 {
		return nil, newValidationError(CodeInvalidAmount, "at least one item is required")
	}
	location, err := s.repo.GetLocationByID(ctx, tenantID, locationID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, newNotFoundError(CodeLocationNotFound, "location %s does not exist", locationID)
		}
		return nil, newStorageError(err)
	}

	// Per-line bookkeeping: each line is an independent purchasing decision,
	// so failures here must not abort the rest of the batch.
	results := make([]FinalizeLineResult, len(items))
	var wg sync.WaitGroup
	for i, item := range items {
		wg.Add(1)
		go func(index int, item models.BulkFinalizeItem) {
			defer wg.Done()
			results[index] = FinalizeLineResult{
				Index: index,
				SKU:   item.SKU,
				Err:   s.finalizeLine(ctx, tenantID, locationID, item),
			}
		}(i, item)
	}
	wg.Wait()

	order, err := s.persistOrderSnapshot(ctx, tenantID, actor, location, items)
	if err != nil {
		return nil, err
	}

	outcome := &FinalizeOutcome{Order: order, Results: results}

	if s.exporter != nil && s.attachments != nil {
		data, exportErr := s.exporter.RenderOrder(order)
		if exportErr != nil {
			outcome.ExportErr = newExternalError(CodeExportFailed, exportErr, "order export failed")
			s.logger.WithError(exportErr).WithField("orderNumber", order.OrderNumber).Error("order export failed")
		} else if attachment, saveErr := s.attachments.SaveOrderExport(ctx, tenantID, order, data); saveErr != nil {
			outcome.ExportErr = newExternalError(CodeAttachmentFailed, saveErr, "attachment upload failed")
			s.logger.WithError(saveErr).WithField("orderNumber", order.OrderNumber).Error("attachment upload failed")
		} else {
			outcome.Attachment = attachment
		}
	}

	s.logger.WithFields(logrus.Fields{
		"orderNumber": order.OrderNumber,
		"lines":       len(order.Lines),
	}).Info("reorder batch finalized")

	if s.publisher != nil {
		s.publisher.PublishRestockOrdered(ctx, tenantID, order)
	}

	return outcome, nil
}

// finalizeLine performs the bookkeeping for one item: ad-hoc requests are
// fulfilled by deleting the reorder row, standing rules record the new
// ordered quantity.
func (s *ReorderEngine) finalizeLine(ctx context.Context, tenantID string, locationID uuid.UUID, item models.BulkFinalizeItem) *Error {
	if item.IsRequested {
		if err := s.repo.DeleteReorder(ctx, tenantID, item.ProductID, locationID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return newNotFoundError(CodeReorderNotFound, "no reorder request for %s", item.SKU)
			}
			return newStorageError(err)
		}
		return nil
	}

	updates := map[string]interface{}{
		"ordered": item.OrderedAmount + item.AlreadyOrdered,
	}
	if err := s.repo.UpdateReorder(ctx, tenantID, item.ProductID, locationID, updates); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return newNotFoundError(CodeReorderNotFound, "no reorder rule for %s", item.SKU)
		}
		e := newStorageError(err)
		e.Code = CodeReorderUpdateFailed
		return e
	}
	return nil
}

// persistOrderSnapshot writes the immutable Order + OrderLine audit record.
func (s *ReorderEngine) persistOrderSnapshot(ctx context.Context, tenantID string, actor Actor, location *models.Location, items []models.BulkFinalizeItem) (*models.Order, error) {
	orderNumber, err := s.repo.GenerateOrderNumber(ctx, tenantID)
	if err != nil {
		return nil, newStorageError(err)
	}

	order := &models.Order{
		ID:          uuid.New(),
		TenantID:    tenantID,
		OrderNumber: orderNumber,
		LocationID:  location.ID,
		RequestedBy: actor.Name,
	}
	for _, item := range items {
		order.Lines = append(order.Lines, models.OrderLine{
			ID:           uuid.New(),
			TenantID:     tenantID,
			OrderID:      order.ID,
			ProductID:    item.ProductID,
			SupplierName: item.SupplierName,
			SKU:          item.SKU,
			Barcode:      item.Barcode,
			Text1:        item.Text1,
			Text2:        item.Text2,
			UnitName:     item.UnitName,
			CostPrice:    item.CostPrice,
			Quantity:     item.OrderedAmount,
			Sum:          float64(item.OrderedAmount) * item.CostPrice,
		})
	}

	if err := s.repo.CreateOrder(ctx, order); err != nil {
		return nil, newStorageError(err)
	}
	return order, nil
}

// GetOrder returns one order snapshot with its lines.
func (s *ReorderEngine) GetOrder(ctx context.Context, tenantID string, id uuid.UUID) (*models.Order, error) {
	order, err := s.repo.GetOrderByID(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, newNotFoundError("ORDER_NOT_FOUND", "order %s does not exist", id)
		}
		return nil, newStorageError(err)
	}
	return order, nil
}

// ListOrders returns order snapshots, newest first.
func (s *ReorderEngine) ListOrders(ctx context.Context, tenantID string, page, limit int) ([]models.Order, int64, error) {
	orders, total, err := s.repo.ListOrders(ctx, tenantID, page, limit)
	if err != nil {
		return nil, 0, newStorageError(err)
	}
	return orders, total, nil
}

func (s *ReorderEngine) checkProductAndLocation(ctx context.Context, tenantID string, productID, locationID uuid.UUID) error {
	product, err := s.repo.GetProductByID(ctx, tenantID, productID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return newNotFoundError(CodeProductNotFound, "product %s does not exist", productID)
		}
		return newStorageError(err)
	}
	if product.Barred {
		e := newConflictError(CodeProductBarred, "product %s is barred", product.SKU)
		e.SKU = product.SKU
		return e
	}

	if _, err := s.repo.GetLocationByID(ctx, tenantID, locationID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return newNotFoundError(CodeLocationNotFound, "location %s does not exist", locationID)
		}
		return newStorageError(err)
	}
	return nil
}
