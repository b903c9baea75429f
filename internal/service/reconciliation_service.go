package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tirasundara/reconcile-accounts/internal/domain"
	"github.com/tirasundara/reconcile-accounts/internal/matcher"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ReconciliationService orchestrates the reconciliation process
type ReconciliationService struct {
	leftRepo           domain.RecordRepository
	rightRepo          domain.RecordRepository
	reconciler         domain.RecordReconciler
	logger             *zap.Logger
	preserveInputOrder bool
}

// NewReconciliationService creates a new ReconciliationService
func NewReconciliationService(
	leftRepo domain.RecordRepository,
	rightRepo domain.RecordRepository,
	reconciler domain.RecordReconciler,
	logger *zap.Logger,
) *ReconciliationService {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &ReconciliationService{
		leftRepo:   leftRepo,
		rightRepo:  rightRepo,
		reconciler: reconciler,
		logger:     logger,
	}
}

// PreserveInputOrder makes results follow the order records had in their sources
// instead of ascending date order
func (s *ReconciliationService) PreserveInputOrder(preserve bool) *ReconciliationService {
	s.preserveInputOrder = preserve
	return s
}

// Reconcile loads both batches and tags every record as FOUND or MISSING
func (s *ReconciliationService) Reconcile(ctx context.Context) (domain.ReconciliationResult, error) {
	runID := uuid.NewString()
	log := s.logger.With(zap.String("run_id", runID))
	startTime := time.Now()

	log.Info("Reconciliation.Start",
		zap.String("left", s.leftRepo.GetSourceIdentifier()),
		zap.String("right", s.rightRepo.GetSourceIdentifier()),
	)

	// Get both batches concurrently
	var leftRows, rightRows [][]string
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := s.leftRepo.GetRows(gctx)
		if err != nil {
			return fmt.Errorf("fetching left records: %w", err)
		}
		leftRows = rows
		return nil
	})
	g.Go(func() error {
		rows, err := s.rightRepo.GetRows(gctx)
		if err != nil {
			return fmt.Errorf("fetching right records: %w", err)
		}
		rightRows = rows
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Error("Reconciliation.Error", zap.Error(err))
		return domain.ReconciliationResult{}, err
	}

	left, right, err := s.reconciler.ReconcileRows(leftRows, rightRows)
	if err != nil {
		log.Error("Reconciliation.Error", zap.Error(err))
		return domain.ReconciliationResult{}, fmt.Errorf("matching records: %w", err)
	}

	if s.preserveInputOrder {
		left = matcher.RestoreInputOrder(left)
		right = matcher.RestoreInputOrder(right)
	}

	result := domain.ReconciliationResult{
		RunID:         runID,
		ToleranceDays: s.reconciler.ToleranceDays(),
		Left:          left,
		Right:         right,
		LeftSummary:   summarize(s.leftRepo.GetSourceIdentifier(), left),
		RightSummary:  summarize(s.rightRepo.GetSourceIdentifier(), right),
	}

	log.Info("Reconciliation.Complete",
		zap.Int("left_total", result.LeftSummary.Total),
		zap.Int("right_total", result.RightSummary.Total),
		zap.Int("matched", result.LeftSummary.Found),
		zap.Int64("duration_ms", time.Since(startTime).Milliseconds()),
	)

	return result, nil
}

// summarize counts the statuses of one side and totals the amounts that parse as decimals
func summarize(source string, tagged []domain.TaggedRecord) domain.BatchSummary {
	summary := domain.BatchSummary{
		Source:        source,
		Total:         len(tagged),
		FoundAmount:   decimal.Zero,
		MissingAmount: decimal.Zero,
	}

	for _, rec := range tagged {
		amount, err := decimal.NewFromString(rec.Amount)
		if err != nil {
			summary.UnparsedAmounts++
		}

		switch rec.Status {
		case domain.Found:
			summary.Found++
			if err == nil {
				summary.FoundAmount = summary.FoundAmount.Add(amount)
			}
		case domain.Missing:
			summary.Missing++
			if err == nil {
				summary.MissingAmount = summary.MissingAmount.Add(amount)
			}
		}
	}

	return summary
}
