package claims

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// RequiredColumns lists the header fields a bulk upload must contain.
var RequiredColumns = []string{"claim_number", "patient_id", "provider_id", "service_date", "total_amount"}

// Row is one raw, unvalidated record from an uploaded file. Line is the
// 1-based line number in the file (the header is line 1).
type Row struct {
	Line        int
	ClaimNumber string
	PatientID   string
	ProviderID  string
	ServiceDate string
	TotalAmount string
}

// ParseCSV reads a claims upload. A missing required column or an unparseable
// file aborts the whole batch; per-row content problems are left to the
// caller's validators. Extra columns are ignored.
func ParseCSV(r io.Reader) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: file is empty", ErrInvalidInput)
		}
		return nil, fmt.Errorf("%w: unparseable file: %v", ErrInvalidInput, err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.ToLower(strings.TrimSpace(name))] = i
	}
	var missing []string
	for _, col := range RequiredColumns {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing required columns: %s", ErrInvalidInput, strings.Join(missing, ", "))
	}

	field := func(record []string, col string) string {
		i := index[col]
		if i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	var rows []Row
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: unparseable file: %v", ErrInvalidInput, err)
		}
		line++
		rows = append(rows, Row{
			Line:        line,
			ClaimNumber: field(record, "claim_number"),
			PatientID:   field(record, "patient_id"),
			ProviderID:  field(record, "provider_id"),
			ServiceDate: field(record, "service_date"),
			TotalAmount: field(record, "total_amount"),
		})
	}
	return rows, nil
}

const sampleCSV = `claim_number,patient_id,provider_id,service_date,total_amount
CLM-2024-0001,PAT001,PRV001,2024-01-15,1250.50
CLM-2024-0002,PAT002,PRV001,2024-02-03,340.00
CLM-2024-0003,PAT003,PRV002,2024-02-18,87.25
`

// SampleCSV returns a small well-formed upload template.
func SampleCSV() []byte {
	return []byte(sampleCSV)
}
