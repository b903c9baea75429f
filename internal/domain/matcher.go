package domain

// RecordReconciler defines the interface for pairing two batches of raw record rows
type RecordReconciler interface {
	ReconcileRows(batch1, batch2 [][]string) ([]TaggedRecord, []TaggedRecord, error)

	// ToleranceDays returns how many calendar days two matching dates may be apart
	ToleranceDays() int
}
