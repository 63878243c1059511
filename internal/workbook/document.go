// Package workbook builds and encodes multi-sheet spreadsheet documents.
//
// A Document is a transient, in-memory description of a workbook: ordered
// sheets of sparse cells plus chart objects bound to cell ranges. Documents
// are constructed by Builder and serialized to xlsx bytes by Encoder.
package workbook

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Address identifies a cell by 1-based row and column.
type Address struct {
	Row int
	Col int
}

// Name returns the A1-style reference for the address.
func (a Address) Name() string {
	name, err := excelize.CoordinatesToCellName(a.Col, a.Row)
	if err != nil {
		return ""
	}
	return name
}

// CellKind discriminates the value held by a Cell.
type CellKind int

const (
	CellString CellKind = iota
	CellNumber
	CellFormula
)

// Style holds the presentational attributes a cell may carry.
type Style struct {
	Bold      bool
	FontSize  float64
	FillColor string // RGB hex without leading #, empty for no fill
	WrapText  bool
}

// Cell is a single workbook cell: a literal string, a literal number, or a
// formula string beginning with "=".
type Cell struct {
	Kind    CellKind
	Str     string
	Num     float64
	Formula string
	Style   *Style
}

// Range is a rectangular cell region, optionally qualified with a sheet name.
type Range struct {
	Sheet   string
	FromRow int
	FromCol int
	ToRow   int
	ToCol   int
}

// Ref returns the sheet-qualified absolute A1-style reference for the range,
// e.g. "Data!$B$2:$B$13". Single-cell ranges collapse to one reference.
func (r Range) Ref() string {
	from := Address{Row: r.FromRow, Col: r.FromCol}.Name()
	to := Address{Row: r.ToRow, Col: r.ToCol}.Name()
	abs := func(ref string) string {
		col := strings.TrimRight(ref, "0123456789")
		return "$" + col + "$" + ref[len(col):]
	}
	if from == to {
		return r.Sheet + "!" + abs(from)
	}
	return r.Sheet + "!" + abs(from) + ":" + abs(to)
}

// ChartSeries binds one data series to its title cell and value range.
type ChartSeries struct {
	NameRef Range // single cell holding the series title
	Values  Range
}

// Chart is a line chart embedded in a sheet, bound to category and series
// ranges on a (possibly different) sheet.
type Chart struct {
	Title      string
	Anchor     Address
	Categories Range
	Series     []ChartSeries
	Width      uint // display size in pixels
	Height     uint
}

// Sheet is a named sparse grid of cells.
type Sheet struct {
	Name       string
	Cells      map[Address]Cell
	ColWidths  map[int]float64 // column index -> width in characters
	AutoFilter *Range          // filter region on this sheet, nil for none
	Charts     []*Chart
}

// SetString places a literal string cell.
func (s *Sheet) SetString(row, col int, v string, style *Style) {
	s.Cells[Address{Row: row, Col: col}] = Cell{Kind: CellString, Str: v, Style: style}
}

// SetNumber places a literal numeric cell.
func (s *Sheet) SetNumber(row, col int, v float64, style *Style) {
	s.Cells[Address{Row: row, Col: col}] = Cell{Kind: CellNumber, Num: v, Style: style}
}

// SetFormula places a formula cell. The formula must begin with "=" and every
// cell it references must exist in the finished document.
func (s *Sheet) SetFormula(row, col int, formula string, style *Style) {
	s.Cells[Address{Row: row, Col: col}] = Cell{Kind: CellFormula, Formula: formula, Style: style}
}

// Document is an ordered collection of sheets. The first sheet is the
// workbook's overview page.
type Document struct {
	Sheets []*Sheet
}

// AddSheet appends a new empty sheet and returns it.
func (d *Document) AddSheet(name string) *Sheet {
	s := &Sheet{
		Name:      name,
		Cells:     make(map[Address]Cell),
		ColWidths: make(map[int]float64),
	}
	d.Sheets = append(d.Sheets, s)
	return s
}

// SheetByName returns the named sheet, or nil.
func (d *Document) SheetByName(name string) *Sheet {
	for _, s := range d.Sheets {
		if s.Name == name {
			return s
		}
	}
	return nil
}

// cellRefPattern matches A1-style references inside formulas, with an
// optional sheet qualifier, optional $ anchors, and an optional range tail,
// e.g. B2, $B$2, Data!B2, Data!B2:B13. The qualifier binds the whole range.
var cellRefPattern = regexp.MustCompile(`(?:([A-Za-z_][A-Za-z0-9_]*)!)?\$?([A-Z]{1,3})\$?([0-9]+)(?::\$?([A-Z]{1,3})\$?([0-9]+))?`)

// Validate checks the structural invariants the encoder relies on: at least
// one sheet, unique non-empty sheet names, formula references that resolve to
// existing cells, and chart ranges that lie entirely on existing cells.
func (d *Document) Validate() error {
	if len(d.Sheets) == 0 {
		return fmt.Errorf("document has no sheets")
	}

	seen := make(map[string]bool, len(d.Sheets))
	for _, s := range d.Sheets {
		if s.Name == "" {
			return fmt.Errorf("sheet with empty name")
		}
		if seen[s.Name] {
			return fmt.Errorf("duplicate sheet name %q", s.Name)
		}
		seen[s.Name] = true
	}

	for _, s := range d.Sheets {
		for addr, cell := range s.Cells {
			if cell.Kind != CellFormula {
				continue
			}
			if !strings.HasPrefix(cell.Formula, "=") {
				return fmt.Errorf("sheet %q cell %s: formula %q missing leading =", s.Name, addr.Name(), cell.Formula)
			}
			if err := d.checkFormulaRefs(s, cell.Formula); err != nil {
				return fmt.Errorf("sheet %q cell %s: %w", s.Name, addr.Name(), err)
			}
		}
		for _, chart := range s.Charts {
			if err := d.checkChart(chart); err != nil {
				return fmt.Errorf("sheet %q chart %q: %w", s.Name, chart.Title, err)
			}
		}
	}
	return nil
}

func (d *Document) checkFormulaRefs(home *Sheet, formula string) error {
	for _, m := range cellRefPattern.FindAllStringSubmatch(formula, -1) {
		target := home
		if m[1] != "" {
			if target = d.SheetByName(m[1]); target == nil {
				return fmt.Errorf("formula %q references unknown sheet %q", formula, m[1])
			}
		}

		fromCol, err := excelize.ColumnNameToNumber(m[2])
		if err != nil {
			return fmt.Errorf("formula %q: %w", formula, err)
		}
		fromRow, _ := strconv.Atoi(m[3])
		toCol, toRow := fromCol, fromRow
		if m[4] != "" {
			if toCol, err = excelize.ColumnNameToNumber(m[4]); err != nil {
				return fmt.Errorf("formula %q: %w", formula, err)
			}
			toRow, _ = strconv.Atoi(m[5])
		}

		for row := fromRow; row <= toRow; row++ {
			for col := fromCol; col <= toCol; col++ {
				if _, ok := target.Cells[Address{Row: row, Col: col}]; !ok {
					return fmt.Errorf("formula %q references missing cell %s!%s",
						formula, target.Name, Address{Row: row, Col: col}.Name())
				}
			}
		}
	}
	return nil
}

func (d *Document) checkChart(chart *Chart) error {
	if len(chart.Series) == 0 {
		return fmt.Errorf("chart has no series")
	}
	ranges := []Range{chart.Categories}
	for _, s := range chart.Series {
		ranges = append(ranges, s.NameRef, s.Values)
	}
	for _, r := range ranges {
		target := d.SheetByName(r.Sheet)
		if target == nil {
			return fmt.Errorf("range %s references unknown sheet %q", r.Ref(), r.Sheet)
		}
		for row := r.FromRow; row <= r.ToRow; row++ {
			for col := r.FromCol; col <= r.ToCol; col++ {
				if _, ok := target.Cells[Address{Row: row, Col: col}]; !ok {
					return fmt.Errorf("range %s covers missing cell %s", r.Ref(), Address{Row: row, Col: col}.Name())
				}
			}
		}
	}
	return nil
}
