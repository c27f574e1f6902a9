package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"stock-ledger-service/internal/models"
	"stock-ledger-service/internal/repository"
)

// Actor identifies the user a mutation is recorded against.
type Actor struct {
	ID   string
	Name string
}

// MovementInput describes one ledger mutation. Delta is signed; the caller
// derives the sign from the movement type (increase types positive,
// decrease types negative).
type MovementInput struct {
	ProductID     uuid.UUID
	LocationID    uuid.UUID
	Placement     models.DimensionRef
	Batch         models.DimensionRef
	Type          models.MovementType
	Delta         int
	Reference     *string
	Platform      string
	CorrelationID *uuid.UUID
}

// MovementEventPublisher is the slice of the event publisher the ledger
// needs. Nil disables publishing.
type MovementEventPublisher interface {
	PublishMovementApplied(ctx context.Context, tenantID string, entry *models.InventoryHistory, previousQuantity int)
}

// LedgerService is the single authority for mutating a quantity row. Every
// successful mutation writes exactly one history entry in the same
// transaction; concurrent mutations of one tuple serialize on a row lock.
type LedgerService struct {
	repo      repository.InventoryRepositoryInterface
	resolver  *DimensionResolver
	publisher MovementEventPublisher
	logger    *logrus.Entry
}

func NewLedgerService(repo repository.InventoryRepositoryInterface, resolver *DimensionResolver, publisher MovementEventPublisher, logger *logrus.Logger) *LedgerService {
	log := logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &LedgerService{
		repo:      repo,
		resolver:  resolver,
		publisher: publisher,
		logger:    log.WithField("component", "ledger-service"),
	}
}

// resolvedMovement is a movement with its dimensions resolved to rows, ready
// to be applied inside a transaction.
type resolvedMovement struct {
	input     MovementInput
	tenantID  string
	actor     Actor
	product   *models.Product
	placement *models.Placement
	batch     *models.Batch
}

// ApplyMovement validates, resolves dimensions, and applies one mutation.
// Decrease movements require the exact tuple row to exist; increase
// movements create it at zero first. The resulting quantity may go negative
// for an existing row.
func (s *LedgerService) ApplyMovement(ctx context.Context, tenantID string, actor Actor, input MovementInput) (*models.Inventory, error) {
	resolved, err := s.resolve(ctx, tenantID, actor, input)
	if err != nil {
		return nil, err
	}

	var result *models.Inventory
	var entry *models.InventoryHistory
	var previous int
	err = s.repo.WithTransaction(ctx, func(txRepo repository.InventoryRepositoryInterface) error {
		inventory, history, prev, applyErr := s.applyResolved(ctx, txRepo, resolved)
		if applyErr != nil {
			return applyErr
		}
		result, entry, previous = inventory, history, prev
		return nil
	})
	if err != nil {
		var svcErr *Error
		if errors.As(err, &svcErr) {
			return nil, svcErr
		}
		return nil, newStorageError(err)
	}

	s.logger.WithFields(logrus.Fields{
		"sku":      resolved.product.SKU,
		"type":     input.Type,
		"delta":    input.Delta,
		"quantity": result.Quantity,
	}).Info("movement applied")

	if s.publisher != nil {
		s.publisher.PublishMovementApplied(ctx, tenantID, entry, previous)
	}

	return result, nil
}

// ListHistory returns ledger entries, newest first.
func (s *LedgerService) ListHistory(ctx context.Context, tenantID string, filter models.HistoryFilter, page, limit int) ([]models.InventoryHistory, int64, error) {
	entries, total, err := s.repo.ListHistory(ctx, tenantID, filter, page, limit)
	if err != nil {
		return nil, 0, newStorageError(err)
	}
	return entries, total, nil
}

// resolve validates the input and pins the dimension rows. No writes beyond
// lazy dimension creation happen here.
func (s *LedgerService) resolve(ctx context.Context, tenantID string, actor Actor, input MovementInput) (*resolvedMovement, error) {
	switch input.Type {
	case models.MovementTypeIncrease, models.MovementTypeDecrease, models.MovementTypeAdjustment, models.MovementTypeTransfer:
	default:
		return nil, newValidationError(CodeInvalidMovementType, "unknown movement type %q", input.Type)
	}

	if input.Delta == 0 {
		return nil, newValidationError(CodeInvalidAmount, "movement delta must be non-zero")
	}
	if input.Type == models.MovementTypeIncrease && input.Delta < 0 {
		return nil, newValidationError(CodeInvalidAmount, "increase movement requires a positive delta")
	}
	if input.Type == models.MovementTypeDecrease && input.Delta > 0 {
		return nil, newValidationError(CodeInvalidAmount, "decrease movement requires a negative delta")
	}

	product, err := s.repo.GetProductByID(ctx, tenantID, input.ProductID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, newNotFoundError(CodeProductNotFound, "product %s does not exist", input.ProductID)
		}
		return nil, newStorageError(err)
	}
	if product.Barred {
		e := newConflictError(CodeProductBarred, "product %s is barred", product.SKU)
		e.SKU = product.SKU
		return nil, e
	}

	location, err := s.repo.GetLocationByID(ctx, tenantID, input.LocationID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, newNotFoundError(CodeLocationNotFound, "location %s does not exist", input.LocationID)
		}
		return nil, newStorageError(err)
	}
	if location.Barred {
		return nil, newConflictError(CodeLocationBarred, "location %s is barred", location.Name)
	}

	placement, err := s.resolver.ResolveOrCreatePlacement(ctx, tenantID, input.LocationID, input.Placement)
	if err != nil {
		return nil, err
	}
	batch, err := s.resolver.ResolveOrCreateBatch(ctx, tenantID, input.ProductID, placement.ID, input.Batch)
	if err != nil {
		return nil, err
	}

	return &resolvedMovement{
		input:     input,
		tenantID:  tenantID,
		actor:     actor,
		product:   product,
		placement: placement,
		batch:     batch,
	}, nil
}

// applyResolved performs the locked read-modify-write and the paired history
// insert. Must run inside a transaction; the caller owns commit/rollback.
func (s *LedgerService) applyResolved(ctx context.Context, txRepo repository.InventoryRepositoryInterface, m *resolvedMovement) (*models.Inventory, *models.InventoryHistory, int, error) {
	key := models.InventoryKey{
		ProductID:   m.input.ProductID,
		LocationID:  m.input.LocationID,
		PlacementID: m.placement.ID,
		BatchID:     m.batch.ID,
	}

	inventory, err := txRepo.GetInventoryForUpdate(ctx, m.tenantID, key)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, nil, 0, newStorageError(err)
		}
		if m.input.Type.IsDecreasing(m.input.Delta) {
			// Never create a row just to drive it negative from zero.
			e := newNotFoundError(CodeInventoryNotFound,
				"no inventory for %s at placement %s, batch %s", m.product.SKU, m.placement.Name, m.batch.Name)
			e.SKU = m.product.SKU
			e.Placement = m.placement.Name
			return nil, nil, 0, e
		}
		inventory = &models.Inventory{
			ID:          uuid.New(),
			TenantID:    m.tenantID,
			ProductID:   key.ProductID,
			LocationID:  key.LocationID,
			PlacementID: key.PlacementID,
			BatchID:     key.BatchID,
			Quantity:    0,
		}
		if createErr := txRepo.CreateInventory(ctx, inventory); createErr != nil {
			return nil, nil, 0, newStorageError(createErr)
		}
	}

	previous := inventory.Quantity
	inventory.Quantity += m.input.Delta
	if err := txRepo.SaveInventory(ctx, inventory); err != nil {
		return nil, nil, 0, newStorageError(err)
	}

	platform := m.input.Platform
	if platform == "" {
		platform = "web"
	}

	entry := &models.InventoryHistory{
		ID:                uuid.New(),
		TenantID:          m.tenantID,
		ProductID:         key.ProductID,
		LocationID:        key.LocationID,
		PlacementID:       key.PlacementID,
		BatchID:           key.BatchID,
		SKU:               m.product.SKU,
		ProductName:       m.product.Name,
		PlacementName:     m.placement.Name,
		BatchName:         m.batch.Name,
		ActorName:         m.actor.Name,
		Type:              m.input.Type,
		Amount:            m.input.Delta,
		ResultingQuantity: inventory.Quantity,
		Platform:          platform,
		Reference:         m.input.Reference,
		CorrelationID:     m.input.CorrelationID,
	}
	if err := txRepo.CreateHistory(ctx, entry); err != nil {
		return nil, nil, 0, newStorageError(err)
	}

	return inventory, entry, previous, nil
}
