package export

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"stock-ledger-service/internal/models"
	"stock-ledger-service/internal/repository"
)

// attachmentRepoStub satisfies the repository interface through embedding;
// only CreateAttachment is exercised here.
type attachmentRepoStub struct {
	repository.InventoryRepositoryInterface
	created *models.Attachment
	err     error
}

func (s *attachmentRepoStub) CreateAttachment(ctx context.Context, attachment *models.Attachment) error {
	s.created = attachment
	return s.err
}

func TestSaveOrderExport(t *testing.T) {
	repo := &attachmentRepoStub{}
	baseDir := t.TempDir()
	service := NewAttachmentService(repo, baseDir, nil)

	order := &models.Order{ID: uuid.New(), OrderNumber: "ACME-2608-0001"}
	data := []byte("workbook bytes")

	attachment, err := service.SaveOrderExport(context.Background(), "tenant-1", order, data)

	assert.NoError(t, err)
	assert.Equal(t, "order-ACME-2608-0001.xlsx", attachment.FileName)
	assert.Equal(t, order.ID, attachment.OrderID)
	assert.Equal(t, int64(len(data)), attachment.ByteSize)
	assert.Equal(t, attachment, repo.created)

	written, err := os.ReadFile(filepath.Join(baseDir, "tenant-1", attachment.FileName))
	assert.NoError(t, err)
	assert.Equal(t, data, written)
}

func TestSaveOrderExportRecordFailure(t *testing.T) {
	repo := &attachmentRepoStub{err: assert.AnError}
	service := NewAttachmentService(repo, t.TempDir(), nil)

	order := &models.Order{ID: uuid.New(), OrderNumber: "ACME-2608-0002"}

	_, err := service.SaveOrderExport(context.Background(), "tenant-1", order, []byte("x"))

	assert.Error(t, err)
}
