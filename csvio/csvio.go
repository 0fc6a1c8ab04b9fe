// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package csvio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/danielhkuo/voucher-manager/models"
)

var (
	ErrEmptyFile     = errors.New("csv file has no data rows")
	ErrMissingColumn = errors.New("csv header is missing a required column")
	ErrInvalidType   = errors.New(`type must be "Mã CODE" or "Link voucher"`)
	ErrInvalidValue  = errors.New("value must be a positive whole number")
)

// Template is the sample file offered for download before an import.
const Template = `brand,value,type,code,note,image_url
Traveloka,100000,Mã CODE,TRVLK2024,Hết hạn 31/12,
Shopee,50000,Mã CODE,SHOPEE50K,,
Grab,200000,Link voucher,https://grab.com/voucher/abc,VIP user only,
`

var requiredColumns = []string{"brand", "value", "type", "code"}

// ParseImport reads an import file. The first record is the header;
// column names are matched case-insensitively and may appear in any order.
// Blank lines are skipped and do not count toward row numbers.
func ParseImport(r io.Reader) ([]models.ImportRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyFile
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, name := range requiredColumns {
		if _, ok := columns[name]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, name)
		}
	}

	field := func(record []string, name string) string {
		i, ok := columns[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	var rows []models.ImportRow
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv row %d: %w", len(rows)+1, err)
		}
		if isBlank(record) {
			continue
		}

		rows = append(rows, models.ImportRow{
			Line:     len(rows) + 1,
			Brand:    field(record, "brand"),
			ValueRaw: field(record, "value"),
			Type:     field(record, "type"),
			Code:     field(record, "code"),
			Note:     field(record, "note"),
			ImageURL: field(record, "image_url"),
		})
	}

	if len(rows) == 0 {
		return nil, ErrEmptyFile
	}
	return rows, nil
}

func isBlank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

// ParseType maps the display names used in import files to voucher types.
func ParseType(s string) (models.VoucherType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "mã code", "code":
		return models.TypeCode, nil
	case "link voucher", "image":
		return models.TypeImage, nil
	}
	return "", ErrInvalidType
}

// ParseValue parses a denomination such as "100000", "100,000" or "100000.0".
func ParseValue(s string) (int64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")

	n, err := strconv.ParseInt(s, 10, 64)
	if err == nil {
		if n <= 0 {
			return 0, ErrInvalidValue
		}
		return n, nil
	}
	if errors.Is(err, strconv.ErrRange) {
		return 0, ErrInvalidValue
	}

	// Spreadsheet exports write whole numbers as "100000.0".
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f <= 0 || f != math.Trunc(f) || f >= 1<<63 {
		return 0, ErrInvalidValue
	}
	return int64(f), nil
}

// ImportPlan is the outcome of validating an import before it is stored.
// Accept holds the rows that should be inserted; Result carries the
// per-row errors and duplicates with Inserted still zero.
type ImportPlan struct {
	Accept []models.CreateVoucherRequest
	Result models.ImportResult
}

// PlanImport validates rows against the owner's existing codes. A code that
// already exists, or that appeared on an earlier row, is reported as a
// duplicate and skipped.
func PlanImport(rows []models.ImportRow, existing map[string]bool) ImportPlan {
	plan := ImportPlan{
		Result: models.ImportResult{
			Success:    true,
			Errors:     []string{},
			Duplicates: []string{},
		},
	}

	seen := make(map[string]bool, len(rows))
	skip := func(format string, args ...any) {
		plan.Result.Errors = append(plan.Result.Errors, fmt.Sprintf(format, args...))
		plan.Result.Skipped++
	}

	for _, row := range rows {
		if row.Brand == "" || row.ValueRaw == "" || row.Type == "" || row.Code == "" {
			skip("line %d: missing required field (brand, value, type, code)", row.Line)
			continue
		}

		typ, err := ParseType(row.Type)
		if err != nil {
			skip("line %d: %v", row.Line, err)
			continue
		}

		value, err := ParseValue(row.ValueRaw)
		if err != nil {
			skip("line %d: %v", row.Line, err)
			continue
		}

		switch {
		case utf8.RuneCountInString(row.Brand) > models.MaxBrandLength:
			skip("line %d: %v", row.Line, models.ErrBrandTooLong)
			continue
		case utf8.RuneCountInString(row.Code) > models.MaxCodeLength:
			skip("line %d: %v", row.Line, models.ErrCodeTooLong)
			continue
		case utf8.RuneCountInString(row.Note) > models.MaxNoteLength:
			skip("line %d: %v", row.Line, models.ErrNoteTooLong)
			continue
		}

		if existing[row.Code] || seen[row.Code] {
			plan.Result.Duplicates = append(plan.Result.Duplicates, row.Code)
			plan.Result.Skipped++
			continue
		}
		seen[row.Code] = true

		req := models.CreateVoucherRequest{
			Brand: row.Brand,
			Value: value,
			Type:  typ,
			Code:  row.Code,
			Note:  row.Note,
		}
		if typ == models.TypeImage {
			req.ImageURL = row.ImageURL
		}
		plan.Accept = append(plan.Accept, req)
	}

	return plan
}

var exportHeader = []string{"Brand", "Value", "Type", "Status", "Code", "Customer", "Sent At", "Sold At", "Created At"}

// WriteExport writes vouchers as CSV with RFC 3339 timestamps.
func WriteExport(w io.Writer, vouchers []models.Voucher) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	for _, v := range vouchers {
		record := []string{
			v.Brand,
			strconv.FormatInt(v.Value, 10),
			string(v.Type),
			string(v.Status),
			deref(v.Code),
			deref(v.CustomerName),
			formatTime(v.SentAt),
			formatTime(v.SoldAt),
			v.CreatedAt.UTC().Format(time.RFC3339),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// ExportFilename names a download, e.g. vouchers-SOLD-20250101-150405.csv.
func ExportFilename(status models.Status, now time.Time) string {
	label := string(status)
	if label == "" {
		label = "ALL"
	}
	return fmt.Sprintf("vouchers-%s-%s.csv", label, now.UTC().Format("20060102-150405"))
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
