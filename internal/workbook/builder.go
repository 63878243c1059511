package workbook

import (
	"fmt"
	"time"
)

// Sheet names, fixed by the document layout.
const (
	SheetReadme       = "README"
	SheetData         = "Data"
	SheetSummary      = "Summary"
	SheetTransactions = "Transactions"
)

// Data sheet shape: one row per calendar month plus a header row.
const (
	monthCount   = 12
	baseRevenue  = 18000
	revenueStep  = 1000
	baseCost     = 12000
	costStep     = 600
	dataFirstRow = 2 // row 1 is the header
)

// Transactions sheet shape. The row count and column verbosity are chosen so
// the encoded artifact reliably exceeds the 20 KB minimum-size contract.
const (
	transactionRows = 800
	amountModulus   = 900
	amountFloor     = 50
)

var months = []string{
	"Jan", "Feb", "Mar", "Apr", "May", "Jun",
	"Jul", "Aug", "Sep", "Oct", "Nov", "Dec",
}

var transactionCategories = []string{
	"Sales", "Ops", "Marketing", "R&D", "Other",
	"Support", "Finance", "Legal", "HR", "IT",
}

// transactionEpoch anchors the synthetic transaction dates.
var transactionEpoch = time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)

// Builder constructs workbook documents with a fixed synthetic dataset. The
// description is echoed on the overview sheet but does not shape the content.
type Builder struct {
	now func() time.Time
}

// NewBuilder returns a Builder using the wall clock for generation timestamps.
func NewBuilder() *Builder {
	return &Builder{now: time.Now}
}

// Build assembles the four-sheet document. It accepts any description,
// including the empty string, and never fails.
func (b *Builder) Build(description string) *Document {
	doc := &Document{}
	b.buildReadmeSheet(doc, description)
	b.buildDataSheet(doc)
	b.buildSummarySheet(doc)
	b.buildTransactionsSheet(doc)
	return doc
}

func (b *Builder) buildReadmeSheet(doc *Document, description string) {
	sheet := doc.AddSheet(SheetReadme)

	title := &Style{Bold: true, FontSize: 14, FillColor: "F5F5F7", WrapText: true}
	wrapped := &Style{WrapText: true}

	sheet.SetString(1, 1, "Generated Spreadsheet", title)
	sheet.SetString(2, 1, "Description: "+description, wrapped)
	sheet.SetString(3, 1, "Generated At: "+b.now().UTC().Format(time.RFC3339), wrapped)
	sheet.SetString(4, 1, "", wrapped)
	sheet.SetString(5, 1, "This workbook contains a sample financial model: monthly figures on the Data sheet, computed totals and a chart on the Summary sheet, and a synthetic transaction ledger.", wrapped)
	sheet.SetString(6, 1, "", wrapped)
	sheet.ColWidths[1] = 90
}

func (b *Builder) buildDataSheet(doc *Document) {
	sheet := doc.AddSheet(SheetData)
	bold := &Style{Bold: true}

	for col, header := range []string{"Month", "Revenue", "Costs", "Profit"} {
		sheet.SetString(1, col+1, header, bold)
	}

	for i, month := range months {
		row := dataFirstRow + i
		sheet.SetString(row, 1, month, nil)
		sheet.SetNumber(row, 2, float64(baseRevenue+revenueStep*i), nil)
		sheet.SetNumber(row, 3, float64(baseCost+costStep*i), nil)
		sheet.SetFormula(row, 4, fmt.Sprintf("=B%d-C%d", row, row), nil)
	}

	sheet.AutoFilter = &Range{
		Sheet:   SheetData,
		FromRow: 1, FromCol: 1,
		ToRow: monthCount + 1, ToCol: 4,
	}
}

func (b *Builder) buildSummarySheet(doc *Document) {
	sheet := doc.AddSheet(SheetSummary)

	title := &Style{Bold: true, FontSize: 14}
	sheet.SetString(1, 1, "KPI Summary", title)

	lastRow := monthCount + 1
	totals := []struct {
		label string
		col   string
	}{
		{"Total Revenue", "B"},
		{"Total Costs", "C"},
		{"Total Profit", "D"},
	}
	for i, t := range totals {
		row := 3 + i
		sheet.SetString(row, 1, t.label, nil)
		sheet.SetFormula(row, 2, fmt.Sprintf("=SUM(%s!%s%d:%s%d)", SheetData, t.col, dataFirstRow, t.col, lastRow), nil)
	}

	series := make([]ChartSeries, 0, 3)
	for col := 2; col <= 4; col++ {
		series = append(series, ChartSeries{
			NameRef: Range{Sheet: SheetData, FromRow: 1, FromCol: col, ToRow: 1, ToCol: col},
			Values:  Range{Sheet: SheetData, FromRow: dataFirstRow, FromCol: col, ToRow: lastRow, ToCol: col},
		})
	}
	sheet.Charts = append(sheet.Charts, &Chart{
		Title:  "Revenue vs Costs vs Profit",
		Anchor: Address{Row: 7, Col: 1},
		Categories: Range{
			Sheet:   SheetData,
			FromRow: dataFirstRow, FromCol: 1,
			ToRow: lastRow, ToCol: 1,
		},
		Series: series,
		Width:  900,
		Height: 450,
	})
}

func (b *Builder) buildTransactionsSheet(doc *Document) {
	sheet := doc.AddSheet(SheetTransactions)
	bold := &Style{Bold: true}

	for col, header := range []string{"Date", "Category", "Amount", "Note", "Reference", "Description"} {
		sheet.SetString(1, col+1, header, bold)
	}

	for i := 1; i <= transactionRows; i++ {
		row := i + 1
		date := transactionEpoch.AddDate(0, 0, i%365)
		sheet.SetString(row, 1, date.Format("2006-01-02"), nil)
		sheet.SetString(row, 2, transactionCategories[i%len(transactionCategories)], nil)
		sheet.SetNumber(row, 3, float64((i*7)%amountModulus+amountFloor), nil)
		sheet.SetString(row, 4, fmt.Sprintf("Auto-generated transaction row %d with detailed description", i), nil)
		sheet.SetString(row, 5, fmt.Sprintf("REF-%06d", i), nil)
		sheet.SetString(row, 6, fmt.Sprintf("Detailed description for transaction %d including additional context and information to increase file size", i), nil)
	}
}
