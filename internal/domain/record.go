package domain

import (
	"strconv"
	"strings"
	"time"
)

// Date layouts. DefaultDateLayout reads year-month-day with or without zero padding,
// OutputDateLayout renders dates that have no source text.
const (
	DefaultDateLayout = "2006-1-2"
	OutputDateLayout  = "2006-01-02"
)

// RecordFieldCount is the number of fields a raw record row must carry
const RecordFieldCount = 4

// Status is the reconciliation outcome of a single record
type Status string

// Record statuses
const (
	Found   Status = "FOUND"
	Missing Status = "MISSING"
)

// Record represents one transaction line of a batch
type Record struct {
	Date         time.Time
	DateText     string // Date field as read from the source, empty for records built in code
	Counterparty string
	Amount       string
	Target       string
	Seq          int // Position of the record in its input batch
}

// FormatDate returns the date as it was read, or formatted with layout when there is no source text
func (r Record) FormatDate(layout string) string {
	if r.DateText != "" {
		return r.DateText
	}
	if layout == "" {
		layout = OutputDateLayout
	}
	return r.Date.Format(layout)
}

// SameContent reports whether r and other carry equal non-date fields
func (r Record) SameContent(other Record) bool {
	return r.Counterparty == other.Counterparty &&
		r.Amount == other.Amount &&
		r.Target == other.Target
}

// TaggedRecord is a Record annotated with its reconciliation outcome
type TaggedRecord struct {
	Record
	Status Status
}

// Fields renders the tagged record as a five-field row.
// layout only applies to records without source date text.
func (t TaggedRecord) Fields(layout string) []string {
	return []string{
		t.FormatDate(layout),
		t.Counterparty,
		t.Amount,
		t.Target,
		string(t.Status),
	}
}

// ParseRecord builds a Record out of a raw row: date, counterparty, amount, target.
// batch and seq are only used to give context to errors.
func ParseRecord(fields []string, layout, batch string, seq int) (Record, error) {
	if len(fields) != RecordFieldCount {
		return Record{}, WithMetadata(CodeShape,
			"record must carry exactly "+strconv.Itoa(RecordFieldCount)+" fields",
			map[string]string{
				"batch":  batch,
				"row":    strconv.Itoa(seq),
				"fields": strconv.Itoa(len(fields)),
			})
	}

	if layout == "" {
		layout = DefaultDateLayout
	}

	date, err := time.Parse(layout, strings.TrimSpace(fields[0]))
	if err != nil {
		return Record{}, WrapWithMetadata(CodeDateFormat,
			"invalid record date",
			map[string]string{
				"batch": batch,
				"row":   strconv.Itoa(seq),
				"value": fields[0],
			}, err)
	}

	return Record{
		Date:         CalendarDate(date),
		DateText:     fields[0],
		Counterparty: fields[1],
		Amount:       fields[2],
		Target:       fields[3],
		Seq:          seq,
	}, nil
}

// ParseRecords parses a whole batch, failing on the first invalid row
func ParseRecords(rows [][]string, layout, batch string) ([]Record, error) {
	records := make([]Record, 0, len(rows))
	for i, row := range rows {
		rec, err := ParseRecord(row, layout, batch, i)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	return records, nil
}

// CalendarDate drops the time of day and location, keeping only the calendar date
func CalendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
