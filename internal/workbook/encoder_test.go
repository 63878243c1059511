package workbook

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

func encodeFixedDocument(t *testing.T) []byte {
	t.Helper()
	doc := fixedBuilder().Build("encoder test")
	data, err := NewEncoder(zap.NewNop()).Encode(doc)
	require.NoError(t, err)
	return data
}

func TestEncode_SizeContract(t *testing.T) {
	data := encodeFixedDocument(t)
	// External contract: the fixed synthetic dataset must encode past 20 KB.
	assert.Greater(t, len(data), 20000)
}

func TestEncode_PreservesStructure(t *testing.T) {
	data := encodeFixedDocument(t)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"README", "Data", "Summary", "Transactions"}, f.GetSheetList())

	title, err := f.GetCellValue(SheetReadme, "A1")
	require.NoError(t, err)
	assert.Equal(t, "Generated Spreadsheet", title)

	month, err := f.GetCellValue(SheetData, "A2")
	require.NoError(t, err)
	assert.Equal(t, "Jan", month)

	formula, err := f.GetCellFormula(SheetData, "D2")
	require.NoError(t, err)
	assert.Equal(t, "B2-C2", formula)

	sumFormula, err := f.GetCellFormula(SheetSummary, "B3")
	require.NoError(t, err)
	assert.Equal(t, "SUM(Data!B2:B13)", sumFormula)

	lastRef, err := f.GetCellValue(SheetTransactions, "E801")
	require.NoError(t, err)
	assert.Equal(t, "REF-000800", lastRef)
}

func TestEncode_FormulasEvaluate(t *testing.T) {
	data := encodeFixedDocument(t)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	// Profit = Revenue - Costs for every data row.
	for i := 0; i < 12; i++ {
		row := i + 2
		got, err := f.CalcCellValue(SheetData, fmt.Sprintf("D%d", row))
		require.NoError(t, err)
		want := (18000 + 1000*i) - (12000 + 600*i)
		assert.Equal(t, fmt.Sprintf("%d", want), got, "profit row %d", row)
	}

	// Summary totals equal the column sums over all 12 rows.
	totals := map[string]string{
		"B3": "282000", // revenue: 12*18000 + 1000*66
		"B4": "183600", // costs:   12*12000 + 600*66
		"B5": "98400",  // profit
	}
	for cell, want := range totals {
		got, err := f.CalcCellValue(SheetSummary, cell)
		require.NoError(t, err)
		assert.Equal(t, want, got, "summary cell %s", cell)
	}
}

func TestEncode_StructurallyIdempotent(t *testing.T) {
	doc := fixedBuilder().Build("idempotence test")
	enc := NewEncoder(zap.NewNop())

	first, err := enc.Encode(doc)
	require.NoError(t, err)
	second, err := enc.Encode(doc)
	require.NoError(t, err)

	f1, err := excelize.OpenReader(bytes.NewReader(first))
	require.NoError(t, err)
	defer f1.Close()
	f2, err := excelize.OpenReader(bytes.NewReader(second))
	require.NoError(t, err)
	defer f2.Close()

	require.Equal(t, f1.GetSheetList(), f2.GetSheetList())
	for _, sheet := range f1.GetSheetList() {
		rows1, err := f1.GetRows(sheet)
		require.NoError(t, err)
		rows2, err := f2.GetRows(sheet)
		require.NoError(t, err)
		assert.Equal(t, rows1, rows2, "sheet %s", sheet)
	}
}

func TestEncode_RejectsInvalidDocument(t *testing.T) {
	enc := NewEncoder(zap.NewNop())

	t.Run("duplicate sheet names", func(t *testing.T) {
		doc := &Document{}
		doc.AddSheet("Data").SetNumber(1, 1, 1, nil)
		doc.AddSheet("Data").SetNumber(1, 1, 2, nil)

		data, err := enc.Encode(doc)
		require.Error(t, err)
		assert.Nil(t, data)
	})

	t.Run("dangling formula reference", func(t *testing.T) {
		doc := &Document{}
		sheet := doc.AddSheet("Data")
		sheet.SetFormula(1, 1, "=Missing!A1", nil)

		data, err := enc.Encode(doc)
		require.Error(t, err)
		assert.Nil(t, data)
	})
}
