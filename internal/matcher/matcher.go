package matcher

import (
	"fmt"
	"sort"

	"github.com/tirasundara/reconcile-accounts/internal/domain"
	"go.uber.org/zap"
)

// DefaultToleranceDays is the tolerance window used when none is configured
const DefaultToleranceDays = 1

// Batch names used in error metadata
const (
	LeftBatch  = "left"
	RightBatch = "right"
)

// Reconciler pairs records of two batches one-to-one. It implements domain.RecordReconciler.
//
// Both batches are stably sorted by date. Each left record then takes the first
// unused right record, in date order, with equal content fields and a date within
// the tolerance window. The pairing is greedy: it never revisits an earlier choice
// to increase the total number of matches.
type Reconciler struct {
	toleranceDays int
	dateLayout    string
	fingerprint   func(domain.Record) Fingerprint
	logger        *zap.Logger
}

// Option configures a Reconciler
type Option func(*Reconciler)

// WithToleranceDays sets how many calendar days two matching dates may be apart
func WithToleranceDays(days int) Option {
	return func(r *Reconciler) {
		if days >= 0 {
			r.toleranceDays = days
		}
	}
}

// WithDateLayout sets the layout used to parse the date field of raw rows
func WithDateLayout(layout string) Option {
	return func(r *Reconciler) {
		if layout != "" {
			r.dateLayout = layout
		}
	}
}

// WithFingerprinter replaces the content fingerprint function
func WithFingerprinter(fn func(domain.Record) Fingerprint) Option {
	return func(r *Reconciler) {
		if fn != nil {
			r.fingerprint = fn
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(r *Reconciler) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewReconciler creates a new Reconciler with the given options
func NewReconciler(opts ...Option) *Reconciler {
	r := &Reconciler{
		toleranceDays: DefaultToleranceDays,
		dateLayout:    domain.DefaultDateLayout,
		fingerprint:   FingerprintOf,
		logger:        zap.NewNop(),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// ToleranceDays returns the configured tolerance window
func (r *Reconciler) ToleranceDays() int {
	return r.toleranceDays
}

// ReconcileRows parses both batches of raw rows and reconciles them.
// Any malformed row fails the whole call and no partial result is returned.
func (r *Reconciler) ReconcileRows(batch1, batch2 [][]string) ([]domain.TaggedRecord, []domain.TaggedRecord, error) {
	left, err := domain.ParseRecords(batch1, r.dateLayout, LeftBatch)
	if err != nil {
		return nil, nil, fmt.Errorf("parsing %s batch: %w", LeftBatch, err)
	}

	right, err := domain.ParseRecords(batch2, r.dateLayout, RightBatch)
	if err != nil {
		return nil, nil, fmt.Errorf("parsing %s batch: %w", RightBatch, err)
	}

	result1, result2 := r.Reconcile(left, right)
	return result1, result2, nil
}

// Reconcile tags every record of both batches as FOUND or MISSING.
// Results come back in ascending date order; the inputs are not modified.
func (r *Reconciler) Reconcile(batch1, batch2 []domain.Record) ([]domain.TaggedRecord, []domain.TaggedRecord) {
	r.logger.Debug("Matching records",
		zap.Int("left", len(batch1)),
		zap.Int("right", len(batch2)),
		zap.Int("tolerance_days", r.toleranceDays),
	)

	left := sortByDate(batch1)
	right := sortByDate(batch2)

	index := newCandidateIndex(right, r.fingerprint)
	used := make([]bool, len(right))

	result1 := make([]domain.TaggedRecord, 0, len(left))
	matched := 0

	for _, rec := range left {
		status := domain.Missing

		if j, found := index.first(rec, r.fingerprint(rec), used, r.toleranceDays); found {
			// Mark right record as consumed
			used[j] = true
			status = domain.Found
			matched++
		}

		result1 = append(result1, domain.TaggedRecord{Record: rec, Status: status})
	}

	result2 := make([]domain.TaggedRecord, 0, len(right))
	for j, rec := range right {
		status := domain.Missing
		if used[j] {
			status = domain.Found
		}
		result2 = append(result2, domain.TaggedRecord{Record: rec, Status: status})
	}

	r.logger.Debug("Matching complete", zap.Int("matched", matched))

	return result1, result2
}

// sortByDate returns a copy of records stably sorted by ascending date
func sortByDate(records []domain.Record) []domain.Record {
	sorted := make([]domain.Record, len(records))
	copy(sorted, records)

	sort.SliceStable(sorted, func(i, j int) bool {
		return dayNumber(sorted[i].Date) < dayNumber(sorted[j].Date)
	})

	return sorted
}
