package matcher_test

import (
	"fmt"
	"math/rand"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tirasundara/reconcile-accounts/internal/domain"
	"github.com/tirasundara/reconcile-accounts/internal/matcher"
	"go.uber.org/zap/zaptest"
)

func TestReconciler_Scenarios(t *testing.T) {
	tests := []struct {
		name        string
		batch1      [][]string
		batch2      [][]string
		wantResult1 []domain.Status
		wantResult2 []domain.Status
	}{
		{
			name:        "one day apart matches",
			batch1:      [][]string{{"2024-01-10", "A", "100", "X"}},
			batch2:      [][]string{{"2024-01-11", "A", "100", "X"}},
			wantResult1: []domain.Status{domain.Found},
			wantResult2: []domain.Status{domain.Found},
		},
		{
			name:        "three days apart does not match",
			batch1:      [][]string{{"2024-01-10", "A", "100", "X"}},
			batch2:      [][]string{{"2024-01-13", "A", "100", "X"}},
			wantResult1: []domain.Status{domain.Missing},
			wantResult2: []domain.Status{domain.Missing},
		},
		{
			name: "earliest left record consumes the sole candidate",
			batch1: [][]string{
				{"2024-01-11", "A", "100", "X"},
				{"2024-01-10", "A", "100", "X"},
			},
			batch2:      [][]string{{"2024-01-10", "A", "100", "X"}},
			wantResult1: []domain.Status{domain.Found, domain.Missing},
			wantResult2: []domain.Status{domain.Found},
		},
		{
			name:   "empty left batch",
			batch1: [][]string{},
			batch2: [][]string{
				{"2024-01-10", "A", "100", "X"},
				{"2024-01-12", "B", "200", "Y"},
			},
			wantResult1: []domain.Status{},
			wantResult2: []domain.Status{domain.Missing, domain.Missing},
		},
		{
			name:        "both batches empty",
			batch1:      nil,
			batch2:      nil,
			wantResult1: []domain.Status{},
			wantResult2: []domain.Status{},
		},
		{
			name:        "two days apart does not match",
			batch1:      [][]string{{"2024-01-10", "A", "100", "X"}},
			batch2:      [][]string{{"2024-01-08", "A", "100", "X"}},
			wantResult1: []domain.Status{domain.Missing},
			wantResult2: []domain.Status{domain.Missing},
		},
		{
			name:        "month boundary",
			batch1:      [][]string{{"2024-01-31", "A", "100", "X"}},
			batch2:      [][]string{{"2024-02-01", "A", "100", "X"}},
			wantResult1: []domain.Status{domain.Found},
			wantResult2: []domain.Status{domain.Found},
		},
		{
			name:        "year boundary",
			batch1:      [][]string{{"2024-01-01", "A", "100", "X"}},
			batch2:      [][]string{{"2023-12-31", "A", "100", "X"}},
			wantResult1: []domain.Status{domain.Found},
			wantResult2: []domain.Status{domain.Found},
		},
		{
			name:        "leap day boundary",
			batch1:      [][]string{{"2024-02-28", "A", "100", "X"}},
			batch2:      [][]string{{"2024-03-01", "A", "100", "X"}},
			wantResult1: []domain.Status{domain.Missing},
			wantResult2: []domain.Status{domain.Missing},
		},
		{
			name: "content mismatch on any field",
			batch1: [][]string{
				{"2024-01-10", "A", "100", "X"},
				{"2024-01-10", "A", "100", "X"},
				{"2024-01-10", "A", "100", "X"},
			},
			batch2: [][]string{
				{"2024-01-10", "B", "100", "X"},
				{"2024-01-10", "A", "100.00", "X"},
				{"2024-01-10", "A", "100", "Y"},
			},
			wantResult1: []domain.Status{domain.Missing, domain.Missing, domain.Missing},
			wantResult2: []domain.Status{domain.Missing, domain.Missing, domain.Missing},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := matcher.NewReconciler()

			result1, result2, err := m.ReconcileRows(tt.batch1, tt.batch2)
			require.NoError(t, err)

			assert.Equal(t, tt.wantResult1, statuses(result1))
			assert.Equal(t, tt.wantResult2, statuses(result2))
		})
	}
}

func TestReconciler_OutputInDateOrder(t *testing.T) {
	m := matcher.NewReconciler()

	result1, result2 := m.Reconcile(
		[]domain.Record{
			newRecord(t, "2024-03-02", "C", "3", "Z", 0),
			newRecord(t, "2024-01-02", "A", "1", "X", 1),
			newRecord(t, "2024-02-02", "B", "2", "Y", 2),
		},
		[]domain.Record{
			newRecord(t, "2024-02-03", "B", "2", "Y", 0),
			newRecord(t, "2024-01-01", "A", "1", "X", 1),
		},
	)

	require.Len(t, result1, 3)
	assert.Equal(t, []string{"A", "B", "C"}, counterparties(result1))
	assert.Equal(t, []domain.Status{domain.Found, domain.Found, domain.Missing}, statuses(result1))

	require.Len(t, result2, 2)
	assert.Equal(t, []string{"A", "B"}, counterparties(result2))
	assert.Equal(t, []int{1, 0}, []int{result2[0].Seq, result2[1].Seq})
}

func TestReconciler_TieBreakPicksEarliestCandidate(t *testing.T) {
	m := matcher.NewReconciler()

	// Both right records are eligible; the earlier one in date order wins
	_, result2 := m.Reconcile(
		[]domain.Record{newRecord(t, "2024-05-10", "A", "100", "X", 0)},
		[]domain.Record{
			newRecord(t, "2024-05-11", "A", "100", "X", 0),
			newRecord(t, "2024-05-09", "A", "100", "X", 1),
		},
	)

	require.Len(t, result2, 2)
	assert.Equal(t, 1, result2[0].Seq)
	assert.Equal(t, domain.Found, result2[0].Status)
	assert.Equal(t, domain.Missing, result2[1].Status)

	// Equal dates: original relative order breaks the tie
	_, result2 = m.Reconcile(
		[]domain.Record{newRecord(t, "2024-05-10", "A", "100", "X", 0)},
		[]domain.Record{
			newRecord(t, "2024-05-10", "A", "100", "X", 0),
			newRecord(t, "2024-05-10", "A", "100", "X", 1),
		},
	)

	require.Len(t, result2, 2)
	assert.Equal(t, 0, result2[0].Seq)
	assert.Equal(t, domain.Found, result2[0].Status)
	assert.Equal(t, domain.Missing, result2[1].Status)
}

func TestReconciler_OneToOne(t *testing.T) {
	m := matcher.NewReconciler()

	result1, result2 := m.Reconcile(
		[]domain.Record{
			newRecord(t, "2024-01-10", "A", "100", "X", 0),
			newRecord(t, "2024-01-10", "A", "100", "X", 1),
			newRecord(t, "2024-01-10", "A", "100", "X", 2),
		},
		[]domain.Record{
			newRecord(t, "2024-01-09", "A", "100", "X", 0),
			newRecord(t, "2024-01-11", "A", "100", "X", 1),
		},
	)

	assert.Equal(t, []domain.Status{domain.Found, domain.Found, domain.Missing}, statuses(result1))
	assert.Equal(t, []domain.Status{domain.Found, domain.Found}, statuses(result2))
}

func TestReconciler_ToleranceOption(t *testing.T) {
	left := []domain.Record{newRecord(t, "2024-01-10", "A", "100", "X", 0)}
	right := []domain.Record{newRecord(t, "2024-01-12", "A", "100", "X", 0)}

	result1, _ := matcher.NewReconciler().Reconcile(left, right)
	assert.Equal(t, domain.Missing, result1[0].Status)

	result1, _ = matcher.NewReconciler(matcher.WithToleranceDays(2)).Reconcile(left, right)
	assert.Equal(t, domain.Found, result1[0].Status)

	sameDay := []domain.Record{newRecord(t, "2024-01-11", "A", "100", "X", 0)}
	m := matcher.NewReconciler(matcher.WithToleranceDays(0))
	assert.Equal(t, 0, m.ToleranceDays())

	result1, _ = m.Reconcile(left, sameDay)
	assert.Equal(t, domain.Missing, result1[0].Status)

	result1, _ = m.Reconcile(left, left)
	assert.Equal(t, domain.Found, result1[0].Status)

	// Negative tolerance is ignored
	assert.Equal(t, 1, matcher.NewReconciler(matcher.WithToleranceDays(-3)).ToleranceDays())
}

func TestReconciler_FingerprintCollision(t *testing.T) {
	// Every record collides; only full field comparison tells them apart
	m := matcher.NewReconciler(matcher.WithFingerprinter(func(domain.Record) matcher.Fingerprint {
		return 42
	}))

	result1, result2 := m.Reconcile(
		[]domain.Record{
			newRecord(t, "2024-01-10", "A", "100", "X", 0),
			newRecord(t, "2024-01-10", "B", "200", "Y", 1),
		},
		[]domain.Record{
			newRecord(t, "2024-01-10", "C", "300", "Z", 0),
			newRecord(t, "2024-01-11", "B", "200", "Y", 1),
		},
	)

	assert.Equal(t, []domain.Status{domain.Missing, domain.Found}, statuses(result1))
	assert.Equal(t, []domain.Status{domain.Missing, domain.Found}, statuses(result2))
}

func TestReconciler_DoesNotModifyInput(t *testing.T) {
	left := []domain.Record{
		newRecord(t, "2024-01-12", "A", "100", "X", 0),
		newRecord(t, "2024-01-10", "B", "100", "X", 1),
	}
	right := []domain.Record{
		newRecord(t, "2024-01-11", "A", "100", "X", 0),
		newRecord(t, "2024-01-01", "B", "100", "X", 1),
	}

	leftCopy := append([]domain.Record(nil), left...)
	rightCopy := append([]domain.Record(nil), right...)

	matcher.NewReconciler().Reconcile(left, right)

	assert.Equal(t, leftCopy, left)
	assert.Equal(t, rightCopy, right)
}

func TestReconciler_ReconcileRowsErrors(t *testing.T) {
	m := matcher.NewReconciler(matcher.WithLogger(zaptest.NewLogger(t)))
	valid := [][]string{{"2024-01-10", "A", "100", "X"}}

	tests := []struct {
		name    string
		batch1  [][]string
		batch2  [][]string
		wantErr error
		wantMsg string
	}{
		{
			name:    "bad date in left batch",
			batch1:  [][]string{{"2024-01-10", "A", "100", "X"}, {"10/01/2024", "A", "100", "X"}},
			batch2:  valid,
			wantErr: domain.ErrDateFormat,
			wantMsg: "parsing left batch",
		},
		{
			name:    "short row in right batch",
			batch1:  valid,
			batch2:  [][]string{{"2024-01-10", "A", "100"}},
			wantErr: domain.ErrShape,
			wantMsg: "parsing right batch",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result1, result2, err := m.ReconcileRows(tt.batch1, tt.batch2)

			assert.ErrorIs(t, err, tt.wantErr)
			assert.Contains(t, err.Error(), tt.wantMsg)
			assert.Nil(t, result1)
			assert.Nil(t, result2)
		})
	}
}

func TestReconciler_DateLayoutOption(t *testing.T) {
	m := matcher.NewReconciler(matcher.WithDateLayout("02/01/2006"))

	result1, result2, err := m.ReconcileRows(
		[][]string{{"31/12/2023", "A", "100", "X"}},
		[][]string{{"01/01/2024", "A", "100", "X"}},
	)
	require.NoError(t, err)

	assert.Equal(t, domain.Found, result1[0].Status)
	assert.Equal(t, domain.Found, result2[0].Status)
}

func TestReconciler_UnpaddedDates(t *testing.T) {
	m := matcher.NewReconciler()

	result1, result2, err := m.ReconcileRows(
		[][]string{{"2024-1-5", "A", "1", "X"}},
		[][]string{{"2024-01-06", "A", "1", "X"}},
	)
	require.NoError(t, err)

	assert.Equal(t, domain.Found, result1[0].Status)
	assert.Equal(t, domain.Found, result2[0].Status)
	assert.Equal(t, "2024-1-5", result1[0].DateText)
	assert.Equal(t, "2024-01-06", result2[0].DateText)
}

// Randomised batches must satisfy the pairing invariants and agree with a plain scan
func TestReconciler_Properties(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	m := matcher.NewReconciler()

	for round := 0; round < 200; round++ {
		left := randomBatch(rng, rng.Intn(25))
		right := randomBatch(rng, rng.Intn(25))

		result1, result2 := m.Reconcile(left, right)

		// Cardinality
		require.Len(t, result1, len(left))
		require.Len(t, result2, len(right))

		// Balanced matching
		assert.Equal(t, countFound(result1), countFound(result2), "round %d", round)

		// No record dropped or duplicated
		assert.ElementsMatch(t, seqs(left), taggedSeqs(result1), "round %d", round)
		assert.ElementsMatch(t, seqs(right), taggedSeqs(result2), "round %d", round)

		// Same outcome as scanning all of the right batch
		want1, want2 := referenceScan(left, right, 1)
		assert.Equal(t, want1, statuses(result1), "round %d", round)
		assert.Equal(t, want2, statuses(result2), "round %d", round)

		// Determinism
		again1, again2 := m.Reconcile(left, right)
		assert.Equal(t, result1, again1)
		assert.Equal(t, result2, again2)
	}
}

// referenceScan is the unindexed O(n*m) form of the pairing
func referenceScan(left, right []domain.Record, toleranceDays int) ([]domain.Status, []domain.Status) {
	l := append([]domain.Record(nil), left...)
	r := append([]domain.Record(nil), right...)
	sort.SliceStable(l, func(i, j int) bool { return l[i].Date.Before(l[j].Date) })
	sort.SliceStable(r, func(i, j int) bool { return r[i].Date.Before(r[j].Date) })

	used := make(map[int]bool)
	result1 := make([]domain.Status, 0, len(l))
	for _, rec := range l {
		status := domain.Missing
		for j, candidate := range r {
			if used[j] {
				continue
			}
			if matcher.WithinTolerance(rec, candidate, toleranceDays) {
				used[j] = true
				status = domain.Found
				break
			}
		}
		result1 = append(result1, status)
	}

	result2 := make([]domain.Status, 0, len(r))
	for j := range r {
		if used[j] {
			result2 = append(result2, domain.Found)
		} else {
			result2 = append(result2, domain.Missing)
		}
	}

	return result1, result2
}

func randomBatch(rng *rand.Rand, n int) []domain.Record {
	start := time.Date(2023, 12, 25, 0, 0, 0, 0, time.UTC)
	records := make([]domain.Record, 0, n)

	for i := 0; i < n; i++ {
		records = append(records, domain.Record{
			Date:         start.AddDate(0, 0, rng.Intn(14)),
			Counterparty: []string{"A", "B"}[rng.Intn(2)],
			Amount:       fmt.Sprintf("%d", 100*(1+rng.Intn(2))),
			Target:       "X",
			Seq:          i,
		})
	}

	return records
}

func newRecord(t *testing.T, date, counterparty, amount, target string, seq int) domain.Record {
	t.Helper()

	return domain.Record{
		Date:         parseDate(t, date),
		Counterparty: counterparty,
		Amount:       amount,
		Target:       target,
		Seq:          seq,
	}
}

func statuses(tagged []domain.TaggedRecord) []domain.Status {
	out := make([]domain.Status, 0, len(tagged))
	for _, tr := range tagged {
		out = append(out, tr.Status)
	}
	return out
}

func counterparties(tagged []domain.TaggedRecord) []string {
	out := make([]string, 0, len(tagged))
	for _, tr := range tagged {
		out = append(out, tr.Counterparty)
	}
	return out
}

func countFound(tagged []domain.TaggedRecord) int {
	n := 0
	for _, tr := range tagged {
		if tr.Status == domain.Found {
			n++
		}
	}
	return n
}

func seqs(records []domain.Record) []int {
	out := make([]int, 0, len(records))
	for _, rec := range records {
		out = append(out, rec.Seq)
	}
	return out
}

func taggedSeqs(tagged []domain.TaggedRecord) []int {
	out := make([]int, 0, len(tagged))
	for _, tr := range tagged {
		out = append(out, tr.Seq)
	}
	return out
}
