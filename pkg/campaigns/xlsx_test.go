package campaigns

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func buildWorkbook(t *testing.T, rows [][]any) *bytes.Buffer {
	t.Helper()

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func TestParseLeadsXLSX(t *testing.T) {
	buf := buildWorkbook(t, [][]any{
		{"Name", "Phone Number", "City"},
		{"Asha", "9876543210", "Pune"},
		{"Ben", "+919812345678", "Delhi"},
		{"NoPhone", "", "Mumbai"},
	})

	leads, err := ParseLeadsXLSX(buf)
	require.NoError(t, err)
	require.Len(t, leads, 2)
	assert.Equal(t, Lead{Name: "Asha", Phone: "9876543210"}, leads[0])
	assert.Equal(t, Lead{Name: "Ben", Phone: "+919812345678"}, leads[1])
}

func TestParseLeadsXLSXLooseHeaders(t *testing.T) {
	buf := buildWorkbook(t, [][]any{
		{"customer_name", "contact number"},
		{"Asha", "9876543210"},
	})

	leads, err := ParseLeadsXLSX(buf)
	require.NoError(t, err)
	require.Len(t, leads, 1)
	assert.Equal(t, "Asha", leads[0].Name)
}

func TestParseLeadsXLSXNoPhoneColumn(t *testing.T) {
	buf := buildWorkbook(t, [][]any{
		{"Name", "City"},
		{"Asha", "Pune"},
	})

	_, err := ParseLeadsXLSX(buf)
	assert.ErrorIs(t, err, ErrNoPhoneColumn)
}

func TestParseLeadsXLSXEmptySheet(t *testing.T) {
	buf := buildWorkbook(t, [][]any{{"Name", "Phone"}})

	_, err := ParseLeadsXLSX(buf)
	assert.Error(t, err)
}
