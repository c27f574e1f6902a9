package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"stock-ledger-service/internal/models"
	"stock-ledger-service/internal/repository"
)

type stubExporter struct {
	data []byte
	err  error
}

func (s *stubExporter) RenderOrder(order *models.Order) ([]byte, error) {
	return s.data, s.err
}

type stubAttachmentStore struct {
	attachment *models.Attachment
	err        error
}

func (s *stubAttachmentStore) SaveOrderExport(ctx context.Context, tenantID string, order *models.Order, data []byte) (*models.Attachment, error) {
	return s.attachment, s.err
}

type reorderFixture struct {
	repo     *MockInventoryRepository
	engine   *ReorderEngine
	product  *models.Product
	location *models.Location
}

func newReorderFixture(exporter Exporter, attachments AttachmentStore) *reorderFixture {
	repo := new(MockInventoryRepository)
	engine := NewReorderEngine(repo, exporter, attachments, nil, testLogger())
	return &reorderFixture{
		repo:     repo,
		engine:   engine,
		product:  &models.Product{ID: uuid.New(), TenantID: testTenant, SKU: "SKU-100", Name: "Widget", CostPrice: 12.50},
		location: &models.Location{ID: uuid.New(), TenantID: testTenant, Name: "Main Warehouse"},
	}
}

func (f *reorderFixture) expectCatalog() {
	f.repo.On("GetProductByID", mock.Anything, testTenant, f.product.ID).Return(f.product, nil)
	f.repo.On("GetLocationByID", mock.Anything, testTenant, f.location.ID).Return(f.location, nil)
}

func TestRecommendedAmount(t *testing.T) {
	cases := []struct {
		name     string
		quantity int
		reorder  models.Reorder
		want     int
	}{
		{"below minimum", 2, models.Reorder{Minimum: 10, Buffer: 5}, 13},
		{"well stocked", 20, models.Reorder{Minimum: 10, Buffer: 5}, 0},
		{"covered by pending order", 2, models.Reorder{Minimum: 10, Buffer: 5, Ordered: 13}, 0},
		{"exactly at threshold", 15, models.Reorder{Minimum: 10, Buffer: 5}, 0},
		{"negative stock", -3, models.Reorder{Minimum: 10, Buffer: 0}, 13},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, RecommendedAmount(tc.quantity, &tc.reorder))
		})
	}
}

func TestSetThresholdCreates(t *testing.T) {
	f := newReorderFixture(nil, nil)
	f.expectCatalog()
	f.repo.On("GetReorder", mock.Anything, testTenant, f.product.ID, f.location.ID).Return(nil, repository.ErrNotFound)

	var created *models.Reorder
	f.repo.On("CreateReorder", mock.Anything, mock.AnythingOfType("*models.Reorder")).
		Run(func(args mock.Arguments) {
			created = args.Get(1).(*models.Reorder)
		}).Return(nil)

	reorder, err := f.engine.SetThreshold(context.Background(), testTenant, f.product.ID, f.location.ID, 10, 5)

	assert.NoError(t, err)
	assert.Equal(t, 10, reorder.Minimum)
	assert.Equal(t, 5, reorder.Buffer)
	assert.False(t, reorder.IsRequested)
	assert.Equal(t, created, reorder)
}

func TestSetThresholdUpdatesAndClearsRequestedFlag(t *testing.T) {
	f := newReorderFixture(nil, nil)
	f.expectCatalog()

	existing := &models.Reorder{
		ID: uuid.New(), TenantID: testTenant, ProductID: f.product.ID, LocationID: f.location.ID,
		IsRequested: true,
	}
	f.repo.On("GetReorder", mock.Anything, testTenant, f.product.ID, f.location.ID).Return(existing, nil)
	f.repo.On("UpdateReorder", mock.Anything, testTenant, f.product.ID, f.location.ID, map[string]interface{}{
		"minimum":      7,
		"buffer":       3,
		"is_requested": false,
	}).Return(nil)

	reorder, err := f.engine.SetThreshold(context.Background(), testTenant, f.product.ID, f.location.ID, 7, 3)

	assert.NoError(t, err)
	assert.Equal(t, 7, reorder.Minimum)
	assert.False(t, reorder.IsRequested)
	f.repo.AssertNotCalled(t, "CreateReorder", mock.Anything, mock.Anything)
}

func TestSetThresholdRejectsNegativeValues(t *testing.T) {
	f := newReorderFixture(nil, nil)

	_, err := f.engine.SetThreshold(context.Background(), testTenant, f.product.ID, f.location.ID, -1, 0)

	var svcErr *Error
	assert.ErrorAs(t, err, &svcErr)
	assert.Equal(t, CodeInvalidAmount, svcErr.Code)
}

func TestRecordAdHocRequest(t *testing.T) {
	f := newReorderFixture(nil, nil)
	f.expectCatalog()
	f.repo.On("GetReorder", mock.Anything, testTenant, f.product.ID, f.location.ID).Return(nil, repository.ErrNotFound)
	f.repo.On("CreateReorder", mock.Anything, mock.AnythingOfType("*models.Reorder")).Return(nil)

	reorder, err := f.engine.RecordAdHocRequest(context.Background(), testTenant, f.product.ID, f.location.ID)

	assert.NoError(t, err)
	assert.True(t, reorder.IsRequested)
	assert.Equal(t, 0, reorder.Minimum)
}

func TestRecordAdHocRequestConflicts(t *testing.T) {
	t.Run("already requested", func(t *testing.T) {
		f := newReorderFixture(nil, nil)
		f.expectCatalog()
		existing := &models.Reorder{IsRequested: true}
		f.repo.On("GetReorder", mock.Anything, testTenant, f.product.ID, f.location.ID).Return(existing, nil)

		_, err := f.engine.RecordAdHocRequest(context.Background(), testTenant, f.product.ID, f.location.ID)

		var svcErr *Error
		assert.ErrorAs(t, err, &svcErr)
		assert.Equal(t, KindConflict, svcErr.Kind)
		assert.Equal(t, CodeAlreadyRequested, svcErr.Code)
	})

	t.Run("standing rule exists", func(t *testing.T) {
		f := newReorderFixture(nil, nil)
		f.expectCatalog()
		existing := &models.Reorder{Minimum: 10}
		f.repo.On("GetReorder", mock.Anything, testTenant, f.product.ID, f.location.ID).Return(existing, nil)

		_, err := f.engine.RecordAdHocRequest(context.Background(), testTenant, f.product.ID, f.location.ID)

		var svcErr *Error
		assert.ErrorAs(t, err, &svcErr)
		assert.Equal(t, CodeAlreadyBelowMinimum, svcErr.Code)
		assert.Contains(t, svcErr.Message, "10")
	})
}

func TestListOverviewComputesRecommendation(t *testing.T) {
	f := newReorderFixture(nil, nil)

	reorder := models.Reorder{
		ID: uuid.New(), TenantID: testTenant, ProductID: f.product.ID, LocationID: f.location.ID,
		Minimum: 10, Buffer: 5,
	}
	f.repo.On("ListReorders", mock.Anything, testTenant, (*uuid.UUID)(nil), 1, 20).Return([]models.Reorder{reorder}, int64(1), nil)
	f.repo.On("SumQuantity", mock.Anything, testTenant, f.product.ID, f.location.ID).Return(2, nil)
	f.repo.On("GetProductByID", mock.Anything, testTenant, f.product.ID).Return(f.product, nil)

	overview, total, err := f.engine.ListOverview(context.Background(), testTenant, nil, 1, 20)

	assert.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, overview, 1)
	assert.Equal(t, 2, overview[0].Quantity)
	assert.Equal(t, 13, overview[0].RecommendedAmount)
	assert.Equal(t, "SKU-100", overview[0].Product.SKU)
}

func TestBulkFinalizePersistsOrderAndUpdatesLines(t *testing.T) {
	f := newReorderFixture(nil, nil)
	f.repo.On("GetLocationByID", mock.Anything, testTenant, f.location.ID).Return(f.location, nil)

	adHocProduct := uuid.New()
	f.repo.On("DeleteReorder", mock.Anything, testTenant, adHocProduct, f.location.ID).Return(nil)
	f.repo.On("UpdateReorder", mock.Anything, testTenant, f.product.ID, f.location.ID, map[string]interface{}{
		"ordered": 10,
	}).Return(nil)

	f.repo.On("GenerateOrderNumber", mock.Anything, testTenant).Return("ACME-2608-0001", nil)

	var order *models.Order
	f.repo.On("CreateOrder", mock.Anything, mock.AnythingOfType("*models.Order")).
		Run(func(args mock.Arguments) {
			order = args.Get(1).(*models.Order)
		}).Return(nil)

	outcome, err := f.engine.BulkFinalize(context.Background(), testTenant, testActor, f.location.ID, []models.BulkFinalizeItem{
		{ProductID: f.product.ID, SKU: "SKU-100", UnitName: "pcs", CostPrice: 12.50, OrderedAmount: 8, AlreadyOrdered: 2},
		{ProductID: adHocProduct, SKU: "SKU-200", CostPrice: 4, OrderedAmount: 3, IsRequested: true},
	})

	assert.NoError(t, err)
	assert.Nil(t, outcome.ExportErr)
	for _, result := range outcome.Results {
		assert.Nil(t, result.Err)
	}

	assert.NotNil(t, order)
	assert.Equal(t, "ACME-2608-0001", order.OrderNumber)
	assert.Equal(t, "Jane Tester", order.RequestedBy)
	assert.Len(t, order.Lines, 2)
	assert.Equal(t, 8, order.Lines[0].Quantity)
	assert.Equal(t, 100.0, order.Lines[0].Sum)
	assert.Equal(t, 12.0, order.Lines[1].Sum)
}

func TestBulkFinalizeReportsPartialLineFailure(t *testing.T) {
	f := newReorderFixture(nil, nil)
	f.repo.On("GetLocationByID", mock.Anything, testTenant, f.location.ID).Return(f.location, nil)

	missingProduct := uuid.New()
	f.repo.On("UpdateReorder", mock.Anything, testTenant, f.product.ID, f.location.ID, mock.Anything).Return(nil)
	f.repo.On("UpdateReorder", mock.Anything, testTenant, missingProduct, f.location.ID, mock.Anything).Return(repository.ErrNotFound)

	f.repo.On("GenerateOrderNumber", mock.Anything, testTenant).Return("ACME-2608-0002", nil)
	f.repo.On("CreateOrder", mock.Anything, mock.AnythingOfType("*models.Order")).Return(nil)

	outcome, err := f.engine.BulkFinalize(context.Background(), testTenant, testActor, f.location.ID, []models.BulkFinalizeItem{
		{ProductID: f.product.ID, SKU: "SKU-100", OrderedAmount: 5},
		{ProductID: missingProduct, SKU: "SKU-404", OrderedAmount: 2},
	})

	assert.NoError(t, err)
	assert.Nil(t, outcome.Results[0].Err)
	assert.NotNil(t, outcome.Results[1].Err)
	assert.Equal(t, CodeReorderNotFound, outcome.Results[1].Err.Code)

	// The snapshot survives per-line failures.
	assert.NotNil(t, outcome.Order)
	assert.Len(t, outcome.Order.Lines, 2)
}

func TestBulkFinalizeExportFailureDoesNotRollBackOrder(t *testing.T) {
	exporter := &stubExporter{err: errors.New("render failed")}
	f := newReorderFixture(exporter, &stubAttachmentStore{})
	f.repo.On("GetLocationByID", mock.Anything, testTenant, f.location.ID).Return(f.location, nil)
	f.repo.On("UpdateReorder", mock.Anything, testTenant, f.product.ID, f.location.ID, mock.Anything).Return(nil)
	f.repo.On("GenerateOrderNumber", mock.Anything, testTenant).Return("ACME-2608-0003", nil)
	f.repo.On("CreateOrder", mock.Anything, mock.AnythingOfType("*models.Order")).Return(nil)

	outcome, err := f.engine.BulkFinalize(context.Background(), testTenant, testActor, f.location.ID, []models.BulkFinalizeItem{
		{ProductID: f.product.ID, SKU: "SKU-100", OrderedAmount: 5},
	})

	assert.NoError(t, err)
	assert.NotNil(t, outcome.Order)
	assert.Nil(t, outcome.Attachment)
	assert.NotNil(t, outcome.ExportErr)
	assert.Equal(t, KindExternal, outcome.ExportErr.Kind)
	assert.Equal(t, CodeExportFailed, outcome.ExportErr.Code)
}

func TestBulkFinalizeAttachesExport(t *testing.T) {
	attachment := &models.Attachment{ID: uuid.New(), FileName: "order-ACME-2608-0004.xlsx"}
	f := newReorderFixture(&stubExporter{data: []byte("xlsx")}, &stubAttachmentStore{attachment: attachment})
	f.repo.On("GetLocationByID", mock.Anything, testTenant, f.location.ID).Return(f.location, nil)
	f.repo.On("UpdateReorder", mock.Anything, testTenant, f.product.ID, f.location.ID, mock.Anything).Return(nil)
	f.repo.On("GenerateOrderNumber", mock.Anything, testTenant).Return("ACME-2608-0004", nil)
	f.repo.On("CreateOrder", mock.Anything, mock.AnythingOfType("*models.Order")).Return(nil)

	outcome, err := f.engine.BulkFinalize(context.Background(), testTenant, testActor, f.location.ID, []models.BulkFinalizeItem{
		{ProductID: f.product.ID, SKU: "SKU-100", OrderedAmount: 5},
	})

	assert.NoError(t, err)
	assert.Nil(t, outcome.ExportErr)
	assert.Equal(t, attachment.ID, outcome.Attachment.ID)
}

func TestBulkFinalizeRequiresItems(t *testing.T) {
	f := newReorderFixture(nil, nil)

	_, err := f.engine.BulkFinalize(context.Background(), testTenant, testActor, f.location.ID, nil)

	var svcErr *Error
	assert.ErrorAs(t, err, &svcErr)
	assert.Equal(t, KindValidation, svcErr.Kind)
}

func TestDeleteThresholdNotFound(t *testing.T) {
	f := newReorderFixture(nil, nil)
	f.repo.On("DeleteReorder", mock.Anything, testTenant, f.product.ID, f.location.ID).Return(repository.ErrNotFound)

	err := f.engine.DeleteThreshold(context.Background(), testTenant, f.product.ID, f.location.ID)

	var svcErr *Error
	assert.ErrorAs(t, err, &svcErr)
	assert.Equal(t, CodeReorderNotFound, svcErr.Code)
}
