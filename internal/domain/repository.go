package domain

import "context"

// RecordRepository defines the interface for reading a batch of raw record rows
type RecordRepository interface {
	// GetRows returns every data row of the source, in source order
	GetRows(ctx context.Context) ([][]string, error)

	// GetSourceIdentifier returns source identifier
	GetSourceIdentifier() string
}
