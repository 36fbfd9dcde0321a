package services

import (
	"encoding/csv"
	"errors"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/applytrack/applytrackd/internal/models"
)

// csvHeader is the exchange header, in column order. Existing exports from
// the extension use exactly these names.
var csvHeader = []string{
	"Company", "Position", "Location", "Salary", "Status",
	"Applied Date", "Last Update", "Notes", "URL",
}

// ErrNoValidRows means the file parsed but nothing in it had the three
// required columns. Nothing is imported in that case.
var ErrNoValidRows = errors.New("no valid rows: each row needs Company, Position and Status")

// CSVService converts between the record list and the CSV exchange format.
type CSVService struct {
	Logger *zap.Logger
}

func NewCSVService(logger *zap.Logger) *CSVService {
	return &CSVService{Logger: logger}
}

// Export renders records in their given (display) order. Every field is
// double-quote-wrapped unconditionally, matching the files the extension
// already produced; inner quotes are doubled so standard parsers round-trip
// them.
func (s *CSVService) Export(records []models.JobRecord) []byte {
	var b strings.Builder
	writeRow(&b, csvHeader)
	for _, r := range records {
		writeRow(&b, []string{
			r.Company, r.Position, r.Location, r.Salary, string(r.Status),
			r.AppliedDate, r.LastUpdate, r.Notes, r.URL,
		})
	}
	return []byte(b.String())
}

func writeRow(b *strings.Builder, fields []string) {
	for i, f := range fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('"')
		b.WriteString(strings.ReplaceAll(f, `"`, `""`))
		b.WriteByte('"')
	}
	b.WriteByte('\n')
}

// Import parses a CSV stream into records ready for BulkImport. Header names
// match case-insensitively. Rows missing Company, Position or Status are
// dropped; valid rows in an otherwise-parseable file are imported even when
// siblings are dropped (there is no all-or-none guarantee). A file that does
// not parse at all imports nothing. Dates normalize per the usual rules;
// a missing Applied Date becomes today and a missing Last Update becomes the
// applied date, both handled downstream by BulkImport.
func (s *CSVService) Import(r io.Reader) ([]models.JobRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, ErrNoValidRows
	}

	// Map header name (lowercased) to column index.
	cols := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	get := func(row []string, name string) string {
		i, ok := cols[strings.ToLower(name)]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var records []models.JobRecord
	dropped := 0
	for _, row := range rows[1:] {
		company := get(row, "Company")
		position := get(row, "Position")
		status := get(row, "Status")
		if company == "" || position == "" || status == "" {
			dropped++
			continue
		}
		records = append(records, models.JobRecord{
			Company:     company,
			Position:    position,
			Location:    get(row, "Location"),
			Salary:      get(row, "Salary"),
			Status:      models.ParseStatus(status),
			AppliedDate: get(row, "Applied Date"),
			LastUpdate:  get(row, "Last Update"),
			Notes:       get(row, "Notes"),
			URL:         get(row, "URL"),
		})
	}
	if dropped > 0 {
		s.Logger.Warn("dropped import rows missing required columns", zap.Int("count", dropped))
	}
	if len(records) == 0 {
		return nil, ErrNoValidRows
	}
	return records, nil
}
