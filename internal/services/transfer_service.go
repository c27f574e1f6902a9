package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"stock-ledger-service/internal/models"
	"stock-ledger-service/internal/repository"
)

// TransferLine is one line of a multi-line transfer. Placement and batch may
// be omitted, in which case they are auto-selected among the dimensions
// currently holding stock (sentinel preferred, else first by insertion
// order).
type TransferLine struct {
	ProductID       uuid.UUID
	SKU             string
	ToLocationID    uuid.UUID
	FromPlacementID *uuid.UUID
	FromBatchID     *uuid.UUID
	Quantity        int
}

// TransferResult reports the outcome of MoveBetweenLocations. Either OK with
// the correlation ID stamped on every ledger entry, or the full list of
// per-line validation errors with nothing written.
type TransferResult struct {
	OK            bool
	CorrelationID uuid.UUID
	Errors        []TransferLineError
}

// TransferEventPublisher is the slice of the event publisher the
// orchestrator needs. Nil disables publishing.
type TransferEventPublisher interface {
	PublishTransferCompleted(ctx context.Context, tenantID string, correlationID uuid.UUID, entries []models.InventoryHistory)
}

// TransferOrchestrator validates and executes multi-line stock transfers
// between locations on top of the ledger. Validation is a pure pass that
// collects every line error before any write; execution runs all paired
// movement legs in one database transaction.
type TransferOrchestrator struct {
	repo      repository.InventoryRepositoryInterface
	ledger    *LedgerService
	resolver  *DimensionResolver
	publisher TransferEventPublisher
	logger    *logrus.Entry
}

func NewTransferOrchestrator(repo repository.InventoryRepositoryInterface, ledger *LedgerService, resolver *DimensionResolver, publisher TransferEventPublisher, logger *logrus.Logger) *TransferOrchestrator {
	log := logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &TransferOrchestrator{
		repo:      repo,
		ledger:    ledger,
		resolver:  resolver,
		publisher: publisher,
		logger:    log.WithField("component", "transfer-orchestrator"),
	}
}

// validatedLine is a line that passed every check, with its source and
// destination tuples fully resolved.
type validatedLine struct {
	line          TransferLine
	product       *models.Product
	fromPlacement *models.Placement
	fromBatch     *models.Batch
	destPlacement *models.Placement
	destBatch     *models.Batch
}

// MoveBetweenLocations transfers stock from one location to one or more
// destination locations. For every executed line the source decreases and
// the destination increases by exactly the line quantity; the two legs share
// one correlation ID and the whole call is one transaction.
func (s *TransferOrchestrator) MoveBetweenLocations(ctx context.Context, tenantID string, actor Actor, fromLocationID uuid.UUID, reference *string, lines []TransferLine) (*TransferResult, error) {
	if _, err := s.repo.GetLocationByID(ctx, tenantID, fromLocationID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, newNotFoundError(CodeLocationNotFound, "location %s does not exist", fromLocationID)
		}
		return nil, newStorageError(err)
	}

	validated, lineErrors, err := s.validate(ctx, tenantID, fromLocationID, lines)
	if err != nil {
		return nil, err
	}
	if len(lineErrors) > 0 {
		return &TransferResult{OK: false, Errors: lineErrors}, nil
	}

	correlationID := uuid.New()
	entries := make([]models.InventoryHistory, 0, len(validated)*2)

	err = s.repo.WithTransaction(ctx, func(txRepo repository.InventoryRepositoryInterface) error {
		// Lines grouped by destination so the history of one transfer reads
		// destination by destination.
		for _, group := range groupByDestination(validated) {
			for _, v := range group {
				sourceLeg := &resolvedMovement{
					input: MovementInput{
						ProductID:     v.line.ProductID,
						LocationID:    fromLocationID,
						Type:          models.MovementTypeTransfer,
						Delta:         -v.line.Quantity,
						Reference:     reference,
						Platform:      "web",
						CorrelationID: &correlationID,
					},
					tenantID:  tenantID,
					actor:     actor,
					product:   v.product,
					placement: v.fromPlacement,
					batch:     v.fromBatch,
				}
				destLeg := &resolvedMovement{
					input: MovementInput{
						ProductID:     v.line.ProductID,
						LocationID:    v.line.ToLocationID,
						Type:          models.MovementTypeTransfer,
						Delta:         v.line.Quantity,
						Reference:     reference,
						Platform:      "web",
						CorrelationID: &correlationID,
					},
					tenantID:  tenantID,
					actor:     actor,
					product:   v.product,
					placement: v.destPlacement,
					batch:     v.destBatch,
				}

				_, sourceEntry, _, applyErr := s.ledger.applyResolved(ctx, txRepo, sourceLeg)
				if applyErr != nil {
					return applyErr
				}
				_, destEntry, _, applyErr := s.ledger.applyResolved(ctx, txRepo, destLeg)
				if applyErr != nil {
					return applyErr
				}
				entries = append(entries, *sourceEntry, *destEntry)
			}
		}
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
		"correlationId": correlationID,
		"lines":         len(validated),
		"fromLocation":  fromLocationID,
	}).Info("transfer completed")

	if s.publisher != nil {
		s.publisher.PublishTransferCompleted(ctx, tenantID, correlationID, entries)
	}

	return &TransferResult{OK: true, CorrelationID: correlationID}, nil
}

// validate runs every line through the full check sequence and collects all
// failures. It performs no inventory writes; only sentinel destination
// dimensions may be created lazily for lines that pass.
func (s *TransferOrchestrator) validate(ctx context.Context, tenantID string, fromLocationID uuid.UUID, lines []TransferLine) ([]validatedLine, []TransferLineError, error) {
	var validated []validatedLine
	var lineErrors []TransferLineError

	destinations := map[uuid.UUID]bool{}

	for i, line := range lines {
		if line.Quantity <= 0 {
			lineErrors = append(lineErrors, TransferLineError{
				Index:   i,
				Kind:    TransferErrNonPositiveQuantity,
				SKU:     line.SKU,
				Message: "quantity must be greater than zero",
			})
			continue
		}

		if !destinations[line.ToLocationID] {
			if _, err := s.repo.GetLocationByID(ctx, tenantID, line.ToLocationID); err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return nil, nil, newNotFoundError(CodeLocationNotFound, "destination location %s does not exist", line.ToLocationID)
				}
				return nil, nil, newStorageError(err)
			}
			destinations[line.ToLocationID] = true
		}

		product, err := s.repo.GetProductByID(ctx, tenantID, line.ProductID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				lineErrors = append(lineErrors, TransferLineError{
					Index:   i,
					Kind:    TransferErrInvalidPlacement,
					SKU:     line.SKU,
					Message: "no stock found for product",
				})
				continue
			}
			return nil, nil, newStorageError(err)
		}

		fromPlacement, lineErr, err := s.resolveSourcePlacement(ctx, tenantID, fromLocationID, i, line)
		if err != nil {
			return nil, nil, err
		}
		if lineErr != nil {
			lineErrors = append(lineErrors, *lineErr)
			continue
		}

		// Outbound stock may only leave from the configured canonical
		// placement when one exists.
		defaultPlacement, err := s.resolver.DefaultPlacement(ctx, tenantID, line.ProductID, fromLocationID)
		if err != nil {
			return nil, nil, err
		}
		if defaultPlacement != nil && defaultPlacement.ID != fromPlacement.ID {
			lineErrors = append(lineErrors, TransferLineError{
				Index:   i,
				Kind:    TransferErrNotDefaultPlacement,
				SKU:     line.SKU,
				Message: "stock must be moved from placement " + defaultPlacement.Name + ", not " + fromPlacement.Name,
			})
			continue
		}

		fromBatch, lineErr, err := s.resolveSourceBatch(ctx, tenantID, i, line, fromPlacement)
		if err != nil {
			return nil, nil, err
		}
		if lineErr != nil {
			lineErrors = append(lineErrors, *lineErr)
			continue
		}

		// Transferred stock always arrives at the destination's sentinel
		// dimensions.
		destPlacement, err := s.resolver.SentinelPlacement(ctx, tenantID, line.ToLocationID)
		if err != nil {
			return nil, nil, err
		}
		destBatch, err := s.resolver.SentinelBatch(ctx, tenantID, line.ProductID, destPlacement.ID)
		if err != nil {
			return nil, nil, err
		}

		validated = append(validated, validatedLine{
			line:          line,
			product:       product,
			fromPlacement: fromPlacement,
			fromBatch:     fromBatch,
			destPlacement: destPlacement,
			destBatch:     destBatch,
		})
	}

	return validated, lineErrors, nil
}

func (s *TransferOrchestrator) resolveSourcePlacement(ctx context.Context, tenantID string, fromLocationID uuid.UUID, index int, line TransferLine) (*models.Placement, *TransferLineError, error) {
	if line.FromPlacementID != nil {
		placement, err := s.repo.GetPlacementByID(ctx, tenantID, *line.FromPlacementID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, &TransferLineError{
					Index:   index,
					Kind:    TransferErrInvalidPlacement,
					SKU:     line.SKU,
					Message: "placement does not exist",
				}, nil
			}
			return nil, nil, newStorageError(err)
		}
		if placement.LocationID != fromLocationID {
			return nil, &TransferLineError{
				Index:   index,
				Kind:    TransferErrInvalidPlacement,
				SKU:     line.SKU,
				Message: "placement does not belong to the source location",
			}, nil
		}
		return placement, nil, nil
	}

	candidates, err := s.repo.ListStockedPlacements(ctx, tenantID, line.ProductID, fromLocationID)
	if err != nil {
		return nil, nil, newStorageError(err)
	}
	if len(candidates) == 0 {
		return nil, &TransferLineError{
			Index:   index,
			Kind:    TransferErrInvalidPlacement,
			SKU:     line.SKU,
			Message: "no placement holds stock for this product at the source location",
		}, nil
	}
	return preferSentinelPlacement(candidates), nil, nil
}

func (s *TransferOrchestrator) resolveSourceBatch(ctx context.Context, tenantID string, index int, line TransferLine, placement *models.Placement) (*models.Batch, *TransferLineError, error) {
	if line.FromBatchID != nil {
		batch, err := s.repo.GetBatchByID(ctx, tenantID, *line.FromBatchID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, &TransferLineError{
					Index:   index,
					Kind:    TransferErrInvalidBatch,
					SKU:     line.SKU,
					Message: "batch does not exist",
				}, nil
			}
			return nil, nil, newStorageError(err)
		}
		if batch.ProductID != line.ProductID || batch.PlacementID != placement.ID {
			return nil, &TransferLineError{
				Index:   index,
				Kind:    TransferErrInvalidBatch,
				SKU:     line.SKU,
				Message: "batch does not belong to the resolved placement",
			}, nil
		}
		return batch, nil, nil
	}

	candidates, err := s.repo.ListStockedBatches(ctx, tenantID, line.ProductID, placement.ID)
	if err != nil {
		return nil, nil, newStorageError(err)
	}
	if len(candidates) == 0 {
		return nil, &TransferLineError{
			Index:   index,
			Kind:    TransferErrInvalidBatch,
			SKU:     line.SKU,
			Message: "no batch holds stock for this product at placement " + placement.Name,
		}, nil
	}
	return preferSentinelBatch(candidates), nil, nil
}

// preferSentinelPlacement is the auto-selection tie-break: the sentinel "-"
// wins if it is among the candidates, otherwise the first candidate by
// insertion order.
func preferSentinelPlacement(candidates []models.Placement) *models.Placement {
	for i := range candidates {
		if candidates[i].Name == models.SentinelDimensionName {
			return &candidates[i]
		}
	}
	return &candidates[0]
}

func preferSentinelBatch(candidates []models.Batch) *models.Batch {
	for i := range candidates {
		if candidates[i].Name == models.SentinelDimensionName {
			return &candidates[i]
		}
	}
	return &candidates[0]
}

// groupByDestination partitions validated lines by destination location,
// preserving line order within each group.
func groupByDestination(lines []validatedLine) [][]validatedLine {
	var order []uuid.UUID
	groups := map[uuid.UUID][]validatedLine{}
	for _, v := range lines {
		if _, seen := groups[v.line.ToLocationID]; !seen {
			order = append(order, v.line.ToLocationID)
		}
		groups[v.line.ToLocationID] = append(groups[v.line.ToLocationID], v)
	}
	result := make([][]validatedLine, 0, len(order))
	for _, id := range order {
		result = append(result, groups[id])
	}
	return result
}
