package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"stock-ledger-service/internal/models"
	"stock-ledger-service/internal/repository"
)

// DimensionResolver resolves placement and batch dimension values. It is the
// only place the sentinel "-" dimension is created or special-cased; every
// other component works with resolved IDs.
type DimensionResolver struct {
	repo   repository.InventoryRepositoryInterface
	logger *logrus.Entry
}

func NewDimensionResolver(repo repository.InventoryRepositoryInterface, logger *logrus.Logger) *DimensionResolver {
	log := logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &DimensionResolver{
		repo:   repo,
		logger: log.WithField("component", "dimension-resolver"),
	}
}

// ResolveOrCreatePlacement resolves a placement reference at a location.
// An ID must name an existing placement at that location; a name is looked
// up and created on first use; an empty reference resolves to the sentinel.
func (s *DimensionResolver) ResolveOrCreatePlacement(ctx context.Context, tenantID string, locationID uuid.UUID, ref models.DimensionRef) (*models.Placement, error) {
	if ref.ID != nil {
		placement, err := s.repo.GetPlacementByID(ctx, tenantID, *ref.ID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, newNotFoundError(CodePlacementNotFound, "placement %s does not exist", ref.ID)
			}
			return nil, newStorageError(err)
		}
		if placement.LocationID != locationID {
			return nil, newNotFoundError(CodePlacementNotFound, "placement %s does not belong to location %s", ref.ID, locationID)
		}
		return placement, nil
	}

	if ref.Name == nil || *ref.Name == "" {
		return s.SentinelPlacement(ctx, tenantID, locationID)
	}

	return s.placementByName(ctx, tenantID, locationID, *ref.Name)
}

// ResolveOrCreateBatch mirrors placement resolution, scoped to the already
// resolved placement.
func (s *DimensionResolver) ResolveOrCreateBatch(ctx context.Context, tenantID string, productID, placementID uuid.UUID, ref models.DimensionRef) (*models.Batch, error) {
	if ref.ID != nil {
		batch, err := s.repo.GetBatchByID(ctx, tenantID, *ref.ID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, newNotFoundError(CodeBatchNotFound, "batch %s does not exist", ref.ID)
			}
			return nil, newStorageError(err)
		}
		if batch.ProductID != productID || batch.PlacementID != placementID {
			return nil, newNotFoundError(CodeBatchNotFound, "batch %s does not belong to placement %s", ref.ID, placementID)
		}
		return batch, nil
	}

	if ref.Name == nil || *ref.Name == "" {
		return s.SentinelBatch(ctx, tenantID, productID, placementID)
	}

	return s.batchByName(ctx, tenantID, productID, placementID, *ref.Name)
}

// SentinelPlacement returns the location's "-" placement, creating it on
// first use.
func (s *DimensionResolver) SentinelPlacement(ctx context.Context, tenantID string, locationID uuid.UUID) (*models.Placement, error) {
	return s.placementByName(ctx, tenantID, locationID, models.SentinelDimensionName)
}

// SentinelBatch returns the "-" batch for (product, placement), creating it
// on first use.
func (s *DimensionResolver) SentinelBatch(ctx context.Context, tenantID string, productID, placementID uuid.UUID) (*models.Batch, error) {
	return s.batchByName(ctx, tenantID, productID, placementID, models.SentinelDimensionName)
}

// DefaultPlacement returns the canonical placement for (product, location),
// or nil when none is configured.
func (s *DimensionResolver) DefaultPlacement(ctx context.Context, tenantID string, productID, locationID uuid.UUID) (*models.Placement, error) {
	mapping, err := s.repo.GetDefaultPlacement(ctx, tenantID, productID, locationID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, newStorageError(err)
	}

	placement, err := s.repo.GetPlacementByID(ctx, tenantID, mapping.PlacementID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Mapping points at a deleted placement; treat as unconfigured.
			s.logger.WithFields(logrus.Fields{
				"productId":   productID,
				"locationId":  locationID,
				"placementId": mapping.PlacementID,
			}).Warn("default placement mapping references missing placement")
			return nil, nil
		}
		return nil, newStorageError(err)
	}
	return placement, nil
}

// SetDefaultPlacement upserts the canonical placement for (product, location)
// after verifying the placement belongs to the location.
func (s *DimensionResolver) SetDefaultPlacement(ctx context.Context, tenantID string, productID, locationID, placementID uuid.UUID) error {
	placement, err := s.repo.GetPlacementByID(ctx, tenantID, placementID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return newNotFoundError(CodePlacementNotFound, "placement %s does not exist", placementID)
		}
		return newStorageError(err)
	}
	if placement.LocationID != locationID {
		return newNotFoundError(CodePlacementNotFound, "placement %s does not belong to location %s", placementID, locationID)
	}

	mapping := &models.DefaultPlacement{
		TenantID:    tenantID,
		ProductID:   productID,
		LocationID:  locationID,
		PlacementID: placementID,
	}
	if err := s.repo.SetDefaultPlacement(ctx, mapping); err != nil {
		return newStorageError(err)
	}
	return nil
}

// ClearDefaultPlacement removes the mapping; clearing an absent mapping is
// not an error.
func (s *DimensionResolver) ClearDefaultPlacement(ctx context.Context, tenantID string, productID, locationID uuid.UUID) error {
	if err := s.repo.ClearDefaultPlacement(ctx, tenantID, productID, locationID); err != nil {
		return newStorageError(err)
	}
	return nil
}

func (s *DimensionResolver) placementByName(ctx context.Context, tenantID string, locationID uuid.UUID, name string) (*models.Placement, error) {
	placement, err := s.repo.GetPlacementByName(ctx, tenantID, locationID, name)
	if err == nil {
		return placement, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, newStorageError(err)
	}

	created := &models.Placement{
		ID:         uuid.New(),
		TenantID:   tenantID,
		LocationID: locationID,
		Name:       name,
	}
	if createErr := s.repo.CreatePlacement(ctx, created); createErr != nil {
		// Lost the create race; the unique index guarantees the winner is
		// now readable.
		if existing, getErr := s.repo.GetPlacementByName(ctx, tenantID, locationID, name); getErr == nil {
			return existing, nil
		}
		return nil, newStorageError(createErr)
	}

	s.logger.WithFields(logrus.Fields{
		"locationId": locationID,
		"name":       name,
	}).Debug("created placement")
	return created, nil
}

func (s *DimensionResolver) batchByName(ctx context.Context, tenantID string, productID, placementID uuid.UUID, name string) (*models.Batch, error) {
	batch, err := s.repo.GetBatchByName(ctx, tenantID, productID, placementID, name)
	if err == nil {
		return batch, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, newStorageError(err)
	}

	created := &models.Batch{
		ID:          uuid.New(),
		TenantID:    tenantID,
		ProductID:   productID,
		PlacementID: placementID,
		Name:        name,
	}
	if createErr := s.repo.CreateBatch(ctx, created); createErr != nil {
		if existing, getErr := s.repo.GetBatchByName(ctx, tenantID, productID, placementID, name); getErr == nil {
			return existing, nil
		}
		return nil, newStorageError(createErr)
	}

	s.logger.WithFields(logrus.Fields{
		"productId":   productID,
		"placementId": placementID,
		"name":        name,
	}).Debug("created batch")
	return created, nil
}
