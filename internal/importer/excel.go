package importer

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

var (
	ErrNoWorksheet   = errors.New("workbook has no worksheets")
	ErrEmptyWorkbook = errors.New("workbook has no data rows")
)

// MemberRow is one spreadsheet row of member data. Position is the 1-based
// row number in the sheet, used to identify failures in the import summary.
type MemberRow struct {
	Position   int
	Email      string
	Title      string
	FirstName  string
	MiddleName string
	Surname    string
	Gender     string
}

// Validate rejects rows missing required fields before any write is
// attempted. Checked per row so heterogeneous sheets cannot slip through.
func (r MemberRow) Validate() error {
	var missing []string
	if r.Email == "" {
		missing = append(missing, "email")
	}
	if r.FirstName == "" {
		missing = append(missing, "firstName")
	}
	if r.Surname == "" {
		missing = append(missing, "surname")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required fields: %s", strings.Join(missing, ", "))
	}
	return nil
}

// Identity names the row in error messages using whatever it carries.
func (r MemberRow) Identity() string {
	switch {
	case r.Email != "":
		return r.Email
	case r.Surname != "":
		return r.Surname
	default:
		return fmt.Sprintf("row %d", r.Position)
	}
}

// ParseWorkbook reads the first worksheet of an .xlsx/.xls upload. The first
// row is treated as a header naming the columns (email, firstName, surname,
// title, middleName, gender); header matching is case-insensitive.
func ParseWorkbook(r io.Reader) ([]MemberRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrNoWorksheet
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("reading worksheet %q: %w", sheets[0], err)
	}
	if len(rows) < 2 {
		return nil, ErrEmptyWorkbook
	}

	cols := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}

	cell := func(row []string, name string) string {
		idx, ok := cols[name]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	members := make([]MemberRow, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if len(row) == 0 {
			continue
		}
		members = append(members, MemberRow{
			Position:   i + 2, // 1-based, after the header row
			Email:      cell(row, "email"),
			Title:      cell(row, "title"),
			FirstName:  cell(row, "firstname"),
			MiddleName: cell(row, "middlename"),
			Surname:    cell(row, "surname"),
			Gender:     cell(row, "gender"),
		})
	}
	if len(members) == 0 {
		return nil, ErrEmptyWorkbook
	}

	return members, nil
}
