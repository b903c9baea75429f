package matcher

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
	"github.com/tirasundara/reconcile-accounts/internal/domain"
)

// Fingerprint is a hash of the non-date fields of a record.
// Equal records always share a fingerprint, the reverse does not hold.
type Fingerprint uint64

// FingerprintOf hashes counterparty, amount and target of rec.
// Fields are length-prefixed so ("ab", "c") and ("a", "bc") hash apart.
func FingerprintOf(rec domain.Record) Fingerprint {
	d := xxhash.New()

	var size [8]byte
	for _, field := range [...]string{rec.Counterparty, rec.Amount, rec.Target} {
		binary.LittleEndian.PutUint64(size[:], uint64(len(field)))
		_, _ = d.Write(size[:])
		_, _ = d.WriteString(field)
	}

	return Fingerprint(d.Sum64())
}

// candidateIndex buckets date-sorted records by fingerprint.
// Each bucket keeps indices in ascending order, hence ascending date.
type candidateIndex struct {
	records []domain.Record
	buckets map[Fingerprint][]int
}

func newCandidateIndex(records []domain.Record, fingerprint func(domain.Record) Fingerprint) *candidateIndex {
	buckets := make(map[Fingerprint][]int)
	for i, rec := range records {
		fp := fingerprint(rec)
		buckets[fp] = append(buckets[fp], i)
	}

	return &candidateIndex{
		records: records,
		buckets: buckets,
	}
}

// first returns the earliest unused record matching rec, or false when there is none
func (ix *candidateIndex) first(rec domain.Record, fp Fingerprint, used []bool, toleranceDays int) (int, bool) {
	latest := dayNumber(rec.Date) + int64(toleranceDays)

	for _, j := range ix.buckets[fp] {
		if used[j] {
			continue
		}

		candidate := ix.records[j]

		// Bucket is date ordered, nothing further can be in range
		if dayNumber(candidate.Date) > latest {
			break
		}

		// Fingerprints may collide, confirm on the full fields
		if WithinTolerance(rec, candidate, toleranceDays) {
			return j, true
		}
	}

	return -1, false
}
