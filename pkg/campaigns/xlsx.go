package campaigns

import (
	"errors"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ErrNoPhoneColumn is returned when a lead sheet has no recognizable phone
// number column.
var ErrNoPhoneColumn = errors.New("campaigns: no phone column found in sheet")

// ParseLeadsXLSX reads the first sheet of an uploaded workbook into leads.
// The header row is matched loosely: any column containing "phone" or
// "number" supplies the number, any column containing "name" the lead name.
func ParseLeadsXLSX(r io.Reader) ([]Lead, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, errors.New("campaigns: sheet has no lead rows")
	}

	nameCol, phoneCol := -1, -1
	for i, header := range rows[0] {
		h := strings.ToLower(strings.TrimSpace(header))
		switch {
		case phoneCol < 0 && (strings.Contains(h, "phone") || strings.Contains(h, "number")):
			phoneCol = i
		case nameCol < 0 && strings.Contains(h, "name"):
			nameCol = i
		}
	}
	if phoneCol < 0 {
		return nil, ErrNoPhoneColumn
	}

	var leads []Lead
	for _, row := range rows[1:] {
		if phoneCol >= len(row) || strings.TrimSpace(row[phoneCol]) == "" {
			continue
		}
		lead := Lead{Phone: strings.TrimSpace(row[phoneCol])}
		if nameCol >= 0 && nameCol < len(row) {
			lead.Name = strings.TrimSpace(row[nameCol])
		}
		leads = append(leads, lead)
	}
	return leads, nil
}
