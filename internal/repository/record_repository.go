package repository

import (
	"context"
	"errors"
	"path/filepath"
	"strings"

	"github.com/tirasundara/reconcile-accounts/internal/domain"
	"github.com/tirasundara/reconcile-accounts/pkg/fileutil"
)

// CSVRecordRepository implements the RecordRepository interface for CSV files
type CSVRecordRepository struct {
	FilePath         string
	SourceIdentifier string
	HasHeader        bool
}

// NewCSVRecordRepository creates a new CSVRecordRepository
func NewCSVRecordRepository(filePath string, hasHeader bool) *CSVRecordRepository {
	// Source identifier is the file name without its extension
	sourceID := filepath.Base(filePath)
	sourceID = strings.TrimSuffix(sourceID, filepath.Ext(sourceID))

	return &CSVRecordRepository{
		FilePath:         filePath,
		SourceIdentifier: sourceID,
		HasHeader:        hasHeader,
	}
}

func (r *CSVRecordRepository) GetSourceIdentifier() string {
	return r.SourceIdentifier
}

// GetRows reads every data row of the file. Rows are returned as read, without any
// shape or date validation; a header, when present, only decides column order.
func (r *CSVRecordRepository) GetRows(ctx context.Context) ([][]string, error) {
	if !r.HasHeader {
		reader := fileutil.NewCSVReader(r.FilePath, false)

		rows, err := reader.ReadAll(ctx)
		if err != nil {
			return nil, r.sourceError("reading record rows", err)
		}
		return rows, nil
	}

	reader := fileutil.NewCSVReader(r.FilePath, true)

	// Read just the header row
	header, err := reader.ReadHeader()
	if err != nil {
		return nil, r.sourceError("reading record header", err)
	}

	columnMap, err := createHeaderMap(header, recordHeaderFields)
	if err != nil {
		return nil, r.sourceError("mapping CSV columns", err)
	}

	rows := make([][]string, 0)
	var rowProcessorFn = func(row []string) error {
		rows = append(rows, projectRow(row, columnMap, len(header)))
		return nil
	}

	// Process data row by row
	if err := reader.ReadAndProcessByRow(ctx, rowProcessorFn); err != nil {
		return nil, r.sourceError("reading record rows", err)
	}

	return rows, nil
}

func (r *CSVRecordRepository) sourceError(message string, err error) error {
	// Cancellation is not a source failure
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	return domain.WrapWithMetadata(domain.CodeSource, message, map[string]string{
		"source": r.SourceIdentifier,
		"path":   r.FilePath,
	}, err)
}
