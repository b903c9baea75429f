package fileutil

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
)

// CSVReader provides a helper/utility to read CSV file(s)
type CSVReader struct {
	FilePath  string
	HasHeader bool
	Comma     rune
}

// NewCSVReader returns a CSVReader instance for a specified CSV file
func NewCSVReader(fp string, hasHeader bool) *CSVReader {
	return &CSVReader{
		FilePath:  fp,
		HasHeader: hasHeader,
		Comma:     ',',
	}
}

// ReadHeader reads ONLY the header of the specified CSV file
func (r *CSVReader) ReadHeader() ([]string, error) {
	f, err := os.Open(r.FilePath)
	if err != nil {
		return nil, fmt.Errorf("opening a csv file: %w", err)
	}
	defer f.Close()

	header, err := r.newReader(f).Read()
	if err != nil {
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}

	return header, nil
}

// ReadAndProcessByRow reads and processes a CSV file row by row, allows for streaming large file(s).
// Rows may carry any number of fields; callers validate the shape.
func (r *CSVReader) ReadAndProcessByRow(ctx context.Context, processorFn func([]string) error) error {
	f, err := os.Open(r.FilePath)
	if err != nil {
		return fmt.Errorf("opening a csv file: %w", err)
	}
	defer f.Close()

	return r.process(ctx, f, processorFn)
}

// ReadAll reads every data row of the CSV file
func (r *CSVReader) ReadAll(ctx context.Context) ([][]string, error) {
	rows := make([][]string, 0)
	err := r.ReadAndProcessByRow(ctx, func(row []string) error {
		rows = append(rows, row)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return rows, nil
}

func (r *CSVReader) process(ctx context.Context, src io.Reader, processorFn func([]string) error) error {
	reader := r.newReader(src)

	// Skip header
	if r.HasHeader {
		_, err := reader.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading CSV header: %w", err)
		}
	}

	// read and process row by row
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		row, err := reader.Read()
		if err == io.EOF {
			break // end of file, stop
		}
		if err != nil {
			return fmt.Errorf("reading CSV row: %w", err)
		}

		if err = processorFn(row); err != nil {
			return err
		}
	}

	return nil
}

func (r *CSVReader) newReader(src io.Reader) *csv.Reader {
	reader := csv.NewReader(src)
	reader.FieldsPerRecord = -1
	if r.Comma != 0 {
		reader.Comma = r.Comma
	}
	return reader
}
