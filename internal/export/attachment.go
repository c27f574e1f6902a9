package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"stock-ledger-service/internal/models"
	"stock-ledger-service/internal/repository"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// AttachmentService writes export artifacts under a base directory and
// records an Attachment row pointing at them.
type AttachmentService struct {
	repo    repository.InventoryRepositoryInterface
	baseDir string
	logger  *logrus.Entry
}

func NewAttachmentService(repo repository.InventoryRepositoryInterface, baseDir string, logger *logrus.Logger) *AttachmentService {
	log := logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &AttachmentService{
		repo:    repo,
		baseDir: baseDir,
		logger:  log.WithField("component", "attachment-service"),
	}
}

// SaveOrderExport persists the artifact to disk and records its reference.
func (s *AttachmentService) SaveOrderExport(ctx context.Context, tenantID string, order *models.Order, data []byte) (*models.Attachment, error) {
	dir := filepath.Join(s.baseDir, tenantID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create attachment directory: %w", err)
	}

	fileName := fmt.Sprintf("order-%s.xlsx", order.OrderNumber)
	path := filepath.Join(dir, fileName)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write attachment: %w", err)
	}

	attachment := &models.Attachment{
		ID:          uuid.New(),
		TenantID:    tenantID,
		OrderID:     order.ID,
		FileName:    fileName,
		ContentType: xlsxContentType,
		ByteSize:    int64(len(data)),
		StoragePath: path,
	}
	if err := s.repo.CreateAttachment(ctx, attachment); err != nil {
		return nil, fmt.Errorf("failed to record attachment: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"orderNumber": order.OrderNumber,
		"bytes":       attachment.ByteSize,
	}).Info("order export saved")
	return attachment, nil
}
