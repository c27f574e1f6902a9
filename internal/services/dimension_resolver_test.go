package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"stock-ledger-service/internal/models"
	"stock-ledger-service/internal/repository"
)

func TestResolvePlacementByNameCreatesOnFirstUse(t *testing.T) {
	repo := new(MockInventoryRepository)
	resolver := NewDimensionResolver(repo, testLogger())
	locationID := uuid.New()
	name := "Shelf-1"

	repo.On("GetPlacementByName", mock.Anything, testTenant, locationID, name).Return(nil, repository.ErrNotFound)
	repo.On("CreatePlacement", mock.Anything, mock.AnythingOfType("*models.Placement")).Return(nil)

	placement, err := resolver.ResolveOrCreatePlacement(context.Background(), testTenant, locationID, models.DimensionRef{Name: &name})

	assert.NoError(t, err)
	assert.Equal(t, name, placement.Name)
	assert.Equal(t, locationID, placement.LocationID)
	assert.Equal(t, testTenant, placement.TenantID)
}

func TestResolvePlacementByNameReturnsExisting(t *testing.T) {
	repo := new(MockInventoryRepository)
	resolver := NewDimensionResolver(repo, testLogger())
	locationID := uuid.New()
	name := "Shelf-1"
	existing := &models.Placement{ID: uuid.New(), TenantID: testTenant, LocationID: locationID, Name: name}

	repo.On("GetPlacementByName", mock.Anything, testTenant, locationID, name).Return(existing, nil)

	placement, err := resolver.ResolveOrCreatePlacement(context.Background(), testTenant, locationID, models.DimensionRef{Name: &name})

	assert.NoError(t, err)
	assert.Equal(t, existing.ID, placement.ID)
	repo.AssertNotCalled(t, "CreatePlacement", mock.Anything, mock.Anything)
}

func TestResolvePlacementSurvivesCreateRace(t *testing.T) {
	repo := new(MockInventoryRepository)
	resolver := NewDimensionResolver(repo, testLogger())
	locationID := uuid.New()
	name := "Shelf-1"
	winner := &models.Placement{ID: uuid.New(), TenantID: testTenant, LocationID: locationID, Name: name}

	// First lookup misses, the create collides with a concurrent winner, the
	// re-lookup finds the winner's row.
	repo.On("GetPlacementByName", mock.Anything, testTenant, locationID, name).Return(nil, repository.ErrNotFound).Once()
	repo.On("CreatePlacement", mock.Anything, mock.AnythingOfType("*models.Placement")).Return(assert.AnError)
	repo.On("GetPlacementByName", mock.Anything, testTenant, locationID, name).Return(winner, nil).Once()

	placement, err := resolver.ResolveOrCreatePlacement(context.Background(), testTenant, locationID, models.DimensionRef{Name: &name})

	assert.NoError(t, err)
	assert.Equal(t, winner.ID, placement.ID)
}

func TestResolveEmptyReferenceUsesSentinel(t *testing.T) {
	repo := new(MockInventoryRepository)
	resolver := NewDimensionResolver(repo, testLogger())
	locationID := uuid.New()
	sentinel := &models.Placement{ID: uuid.New(), TenantID: testTenant, LocationID: locationID, Name: models.SentinelDimensionName}

	repo.On("GetPlacementByName", mock.Anything, testTenant, locationID, models.SentinelDimensionName).Return(sentinel, nil)

	placement, err := resolver.ResolveOrCreatePlacement(context.Background(), testTenant, locationID, models.DimensionRef{})

	assert.NoError(t, err)
	assert.Equal(t, models.SentinelDimensionName, placement.Name)
}

func TestResolvePlacementByIDChecksLocation(t *testing.T) {
	repo := new(MockInventoryRepository)
	resolver := NewDimensionResolver(repo, testLogger())
	locationID := uuid.New()
	elsewhere := &models.Placement{ID: uuid.New(), TenantID: testTenant, LocationID: uuid.New(), Name: "Shelf-9"}

	repo.On("GetPlacementByID", mock.Anything, testTenant, elsewhere.ID).Return(elsewhere, nil)

	_, err := resolver.ResolveOrCreatePlacement(context.Background(), testTenant, locationID, models.DimensionRef{ID: &elsewhere.ID})

	var svcErr *Error
	assert.ErrorAs(t, err, &svcErr)
	assert.Equal(t, KindNotFound, svcErr.Kind)
	assert.Equal(t, CodePlacementNotFound, svcErr.Code)
}

func TestResolveBatchByIDChecksScope(t *testing.T) {
	repo := new(MockInventoryRepository)
	resolver := NewDimensionResolver(repo, testLogger())
	productID := uuid.New()
	placementID := uuid.New()
	foreign := &models.Batch{ID: uuid.New(), TenantID: testTenant, ProductID: uuid.New(), PlacementID: placementID, Name: "LOT-X"}

	repo.On("GetBatchByID", mock.Anything, testTenant, foreign.ID).Return(foreign, nil)

	_, err := resolver.ResolveOrCreateBatch(context.Background(), testTenant, productID, placementID, models.DimensionRef{ID: &foreign.ID})

	var svcErr *Error
	assert.ErrorAs(t, err, &svcErr)
	assert.Equal(t, CodeBatchNotFound, svcErr.Code)
}

func TestDefaultPlacementUnconfigured(t *testing.T) {
	repo := new(MockInventoryRepository)
	resolver := NewDimensionResolver(repo, testLogger())
	productID := uuid.New()
	locationID := uuid.New()

	repo.On("GetDefaultPlacement", mock.Anything, testTenant, productID, locationID).Return(nil, repository.ErrNotFound)

	placement, err := resolver.DefaultPlacement(context.Background(), testTenant, productID, locationID)

	assert.NoError(t, err)
	assert.Nil(t, placement)
}

func TestDefaultPlacementDanglingMapping(t *testing.T) {
	repo := new(MockInventoryRepository)
	resolver := NewDimensionResolver(repo, testLogger())
	productID := uuid.New()
	locationID := uuid.New()
	mapping := &models.DefaultPlacement{TenantID: testTenant, ProductID: productID, LocationID: locationID, PlacementID: uuid.New()}

	repo.On("GetDefaultPlacement", mock.Anything, testTenant, productID, locationID).Return(mapping, nil)
	repo.On("GetPlacementByID", mock.Anything, testTenant, mapping.PlacementID).Return(nil, repository.ErrNotFound)

	placement, err := resolver.DefaultPlacement(context.Background(), testTenant, productID, locationID)

	assert.NoError(t, err)
	assert.Nil(t, placement)
}

func TestSetDefaultPlacementRejectsForeignPlacement(t *testing.T) {
	repo := new(MockInventoryRepository)
	resolver := NewDimensionResolver(repo, testLogger())
	productID := uuid.New()
	locationID := uuid.New()
	elsewhere := &models.Placement{ID: uuid.New(), TenantID: testTenant, LocationID: uuid.New(), Name: "Shelf-9"}

	repo.On("GetPlacementByID", mock.Anything, testTenant, elsewhere.ID).Return(elsewhere, nil)

	err := resolver.SetDefaultPlacement(context.Background(), testTenant, productID, locationID, elsewhere.ID)

	var svcErr *Error
	assert.ErrorAs(t, err, &svcErr)
	assert.Equal(t, CodePlacementNotFound, svcErr.Code)
	repo.AssertNotCalled(t, "SetDefaultPlacement", mock.Anything, mock.Anything)
}

func TestSetDefaultPlacementUpserts(t *testing.T) {
	repo := new(MockInventoryRepository)
	resolver := NewDimensionResolver(repo, testLogger())
	productID := uuid.New()
	locationID := uuid.New()
	placement := &models.Placement{ID: uuid.New(), TenantID: testTenant, LocationID: locationID, Name: "Shelf-1"}

	repo.On("GetPlacementByID", mock.Anything, testTenant, placement.ID).Return(placement, nil)
	repo.On("SetDefaultPlacement", mock.Anything, mock.MatchedBy(func(m *models.DefaultPlacement) bool {
		return m.ProductID == productID && m.LocationID == locationID && m.PlacementID == placement.ID
	})).Return(nil)

	err := resolver.SetDefaultPlacement(context.Background(), testTenant, productID, locationID, placement.ID)

	assert.NoError(t, err)
	repo.AssertExpectations(t)
}
