// Package loader parses bulk bill sources (CSV, JSON, YAML) into bill
// transport records. Parsing is all-or-nothing: a malformed row fails the
// whole file with SourceFormatError and no records are returned.
package loader

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/gfbarbieri/coffer/internal/fund/domain"
)

// DateLayout is the calendar date format accepted in bill sources.
const DateLayout = "2006-01-02"

// Load parses the file at path into bill records based on its extension.
// Supported extensions: .csv, .json, .yaml, .yml.
func Load(path string) ([]domain.BillRecord, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path is user-chosen import input
	if err != nil {
		return nil, &domain.SourceFormatError{Path: path, Reason: err.Error()}
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return parseCSV(path, data)
	case ".json":
		return parseJSON(path, data)
	case ".yaml", ".yml":
		return parseYAML(path, data)
	default:
		return nil, &domain.SourceFormatError{Path: path, Reason: "unsupported file extension"}
	}
}

func parseJSON(path string, data []byte) ([]domain.BillRecord, error) {
	var rows []rawRecord
	if err := json.Unmarshal(data, &rows); err != nil {
		// Allow a single object as well as an array.
		var one rawRecord
		if errOne := json.Unmarshal(data, &one); errOne != nil {
			return nil, &domain.SourceFormatError{Path: path, Reason: err.Error()}
		}
		rows = []rawRecord{one}
	}
	return convert(path, rows)
}

func parseYAML(path string, data []byte) ([]domain.BillRecord, error) {
	var rows []rawRecord
	if err := yaml.Unmarshal(data, &rows); err != nil {
		return nil, &domain.SourceFormatError{Path: path, Reason: err.Error()}
	}
	return convert(path, rows)
}

func parseCSV(path string, data []byte) ([]domain.BillRecord, error) {
	reader := csv.NewReader(strings.NewReader(string(data)))
	reader.TrimLeadingSpace = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, &domain.SourceFormatError{Path: path, Reason: err.Error()}
	}
	if len(rows) < 2 {
		return nil, &domain.SourceFormatError{Path: path, Reason: "no data rows"}
	}

	cols := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"bill_id", "service", "amount_due", "recurring"} {
		if _, ok := cols[required]; !ok {
			return nil, &domain.SourceFormatError{Path: path, Reason: "missing column " + required}
		}
	}

	cell := func(row []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	raws := make([]rawRecord, 0, len(rows)-1)
	for n, row := range rows[1:] {
		recurring, err := strconv.ParseBool(strings.ToLower(cell(row, "recurring")))
		if err != nil {
			return nil, &domain.SourceFormatError{Path: path, Reason: fmt.Sprintf("row %d: bad recurring flag", n+2)}
		}
		raw := rawRecord{
			BillID:    cell(row, "bill_id"),
			Service:   cell(row, "service"),
			AmountDue: cell(row, "amount_due"),
			Recurring: recurring,
			DueDate:   cell(row, "due_date"),
			StartDate: cell(row, "start_date"),
			Frequency: cell(row, "frequency"),
			EndDate:   cell(row, "end_date"),
		}
		if s := cell(row, "interval"); s != "" {
			v, err := strconv.Atoi(s)
			if err != nil {
				return nil, &domain.SourceFormatError{Path: path, Reason: fmt.Sprintf("row %d: bad interval", n+2)}
			}
			raw.Interval = v
		}
		if s := cell(row, "occurrences"); s != "" {
			v, err := strconv.Atoi(s)
			if err != nil {
				return nil, &domain.SourceFormatError{Path: path, Reason: fmt.Sprintf("row %d: bad occurrences", n+2)}
			}
			raw.Occurrences = &v
		}
		raws = append(raws, raw)
	}
	return convert(path, raws)
}

// rawRecord is the file-level row shape with string dates, converted to
// the typed transport record after parsing.
type rawRecord struct {
	BillID      string `json:"bill_id" yaml:"bill_id"`
	Service     string `json:"service" yaml:"service"`
	AmountDue   string `json:"amount_due" yaml:"amount_due"`
	Recurring   bool   `json:"recurring" yaml:"recurring"`
	DueDate     string `json:"due_date" yaml:"due_date"`
	StartDate   string `json:"start_date" yaml:"start_date"`
	Frequency   string `json:"frequency" yaml:"frequency"`
	Interval    int    `json:"interval" yaml:"interval"`
	Occurrences *int   `json:"occurrences" yaml:"occurrences"`
	EndDate     string `json:"end_date" yaml:"end_date"`
}

func convert(path string, raws []rawRecord) ([]domain.BillRecord, error) {
	records := make([]domain.BillRecord, 0, len(raws))
	for n, raw := range raws {
		rec := domain.BillRecord{
			BillID:      raw.BillID,
			Service:     raw.Service,
			AmountDue:   raw.AmountDue,
			Recurring:   raw.Recurring,
			Frequency:   raw.Frequency,
			Interval:    raw.Interval,
			Occurrences: raw.Occurrences,
		}
		var err error
		if rec.DueDate, err = parseDate(raw.DueDate); err != nil {
			return nil, &domain.SourceFormatError{Path: path, Reason: fmt.Sprintf("record %d: bad due_date %q", n+1, raw.DueDate)}
		}
		if rec.StartDate, err = parseDate(raw.StartDate); err != nil {
			return nil, &domain.SourceFormatError{Path: path, Reason: fmt.Sprintf("record %d: bad start_date %q", n+1, raw.StartDate)}
		}
		if rec.EndDate, err = parseDate(raw.EndDate); err != nil {
			return nil, &domain.SourceFormatError{Path: path, Reason: fmt.Sprintf("record %d: bad end_date %q", n+1, raw.EndDate)}
		}
		records = append(records, rec)
	}
	return records, nil
}

func parseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return nil, err
	}
	t = domain.Normalize(t)
	return &t, nil
}
