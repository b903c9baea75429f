package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"

	"github.com/tirasundara/reconcile-accounts/internal/domain"
)

// Supported output formats
const (
	FormatJSON = "json"
	FormatCSV  = "csv"
)

// OutputFormatter defines the interface for formatting reconciliation results
type OutputFormatter interface {
	Format(result domain.ReconciliationResult) ([]byte, error)
	FileExtension() string
}

// NewFormatter returns the formatter for the given output format.
// Records keep the date text they were read with.
func NewFormatter(format string, prettyPrint bool) (OutputFormatter, error) {
	switch format {
	case FormatJSON:
		return NewJSONFormatter(prettyPrint, domain.OutputDateLayout), nil
	case FormatCSV:
		return NewCSVFormatter(domain.OutputDateLayout), nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}

// JSONFormatter formats reconciliation results as JSON.
// DateLayout renders records that carry no source date text.
type JSONFormatter struct {
	PrettyPrint bool
	DateLayout  string
}

func NewJSONFormatter(prettyPrint bool, dateLayout string) *JSONFormatter {
	if dateLayout == "" {
		dateLayout = domain.OutputDateLayout
	}

	return &JSONFormatter{
		PrettyPrint: prettyPrint,
		DateLayout:  dateLayout,
	}
}

type jsonRecord struct {
	Date         string        `json:"date"`
	Counterparty string        `json:"counterparty"`
	Amount       string        `json:"amount"`
	Target       string        `json:"target"`
	Status       domain.Status `json:"status"`
	Seq          int           `json:"seq"`
}

type jsonResult struct {
	RunID         string              `json:"run_id"`
	ToleranceDays int                 `json:"tolerance_days"`
	Left          []jsonRecord        `json:"left"`
	Right         []jsonRecord        `json:"right"`
	LeftSummary   domain.BatchSummary `json:"left_summary"`
	RightSummary  domain.BatchSummary `json:"right_summary"`
}

// Format implements the OutputFormatter interface for JSON
func (f *JSONFormatter) Format(result domain.ReconciliationResult) ([]byte, error) {
	out := jsonResult{
		RunID:         result.RunID,
		ToleranceDays: result.ToleranceDays,
		Left:          f.records(result.Left),
		Right:         f.records(result.Right),
		LeftSummary:   result.LeftSummary,
		RightSummary:  result.RightSummary,
	}

	if f.PrettyPrint {
		return json.MarshalIndent(out, "", "  ")
	}
	return json.Marshal(out)
}

func (f *JSONFormatter) FileExtension() string {
	return "json"
}

func (f *JSONFormatter) records(tagged []domain.TaggedRecord) []jsonRecord {
	records := make([]jsonRecord, 0, len(tagged))
	for _, tr := range tagged {
		records = append(records, jsonRecord{
			Date:         tr.FormatDate(f.DateLayout),
			Counterparty: tr.Counterparty,
			Amount:       tr.Amount,
			Target:       tr.Target,
			Status:       tr.Status,
			Seq:          tr.Seq,
		})
	}
	return records
}

// CSVFormatter writes both tagged batches as five-field rows, left first, separated by an empty line
type CSVFormatter struct {
	DateLayout string
}

func NewCSVFormatter(dateLayout string) *CSVFormatter {
	if dateLayout == "" {
		dateLayout = domain.OutputDateLayout
	}

	return &CSVFormatter{
		DateLayout: dateLayout,
	}
}

// Format implements the OutputFormatter interface for CSV
func (f *CSVFormatter) Format(result domain.ReconciliationResult) ([]byte, error) {
	var buf bytes.Buffer

	if err := f.write(&buf, result.Left); err != nil {
		return nil, fmt.Errorf("writing left records: %w", err)
	}

	buf.WriteString("\n")

	if err := f.write(&buf, result.Right); err != nil {
		return nil, fmt.Errorf("writing right records: %w", err)
	}

	return buf.Bytes(), nil
}

func (f *CSVFormatter) FileExtension() string {
	return "csv"
}

func (f *CSVFormatter) write(buf *bytes.Buffer, tagged []domain.TaggedRecord) error {
	w := csv.NewWriter(buf)
	for _, tr := range tagged {
		if err := w.Write(tr.Fields(f.DateLayout)); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}
