package workbook

import (
	"fmt"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// Encoder serializes a Document to xlsx bytes. Encoding is deterministic for
// a fixed document; the timestamps the builder embeds are the only source of
// run-to-run variation.
type Encoder struct {
	logger *zap.Logger
}

// NewEncoder creates an Encoder.
func NewEncoder(logger *zap.Logger) *Encoder {
	return &Encoder{logger: logger}
}

// Encode validates the document and writes it out as an xlsx package. A
// structural invariant violation (duplicate sheet name, dangling reference)
// is a hard error; no partial output is produced.
func (e *Encoder) Encode(doc *Document) ([]byte, error) {
	if err := doc.Validate(); err != nil {
		return nil, fmt.Errorf("invalid document: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	// The fresh file carries a default sheet; rename it to the first sheet
	// so the document's sheet order is preserved exactly.
	if err := f.SetSheetName(f.GetSheetName(0), doc.Sheets[0].Name); err != nil {
		return nil, fmt.Errorf("failed to name first sheet: %w", err)
	}
	for _, sheet := range doc.Sheets[1:] {
		if _, err := f.NewSheet(sheet.Name); err != nil {
			return nil, fmt.Errorf("failed to create sheet %q: %w", sheet.Name, err)
		}
	}

	styles := newStyleCache(f)
	for _, sheet := range doc.Sheets {
		if err := e.encodeSheet(f, sheet, styles); err != nil {
			return nil, fmt.Errorf("failed to encode sheet %q: %w", sheet.Name, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}

	e.logger.Debug("Workbook encoded",
		zap.Int("sheets", len(doc.Sheets)),
		zap.Int("bytes", buf.Len()))
	return buf.Bytes(), nil
}

func (e *Encoder) encodeSheet(f *excelize.File, sheet *Sheet, styles *styleCache) error {
	addrs := make([]Address, 0, len(sheet.Cells))
	for addr := range sheet.Cells {
		addrs = append(addrs, addr)
	}
	// Stable cell order keeps the encoded structure reproducible.
	sort.Slice(addrs, func(i, j int) bool {
		if addrs[i].Row != addrs[j].Row {
			return addrs[i].Row < addrs[j].Row
		}
		return addrs[i].Col < addrs[j].Col
	})

	for _, addr := range addrs {
		cell := sheet.Cells[addr]
		ref := addr.Name()

		var err error
		switch cell.Kind {
		case CellString:
			err = f.SetCellValue(sheet.Name, ref, cell.Str)
		case CellNumber:
			err = f.SetCellValue(sheet.Name, ref, cell.Num)
		case CellFormula:
			err = f.SetCellFormula(sheet.Name, ref, strings.TrimPrefix(cell.Formula, "="))
		}
		if err != nil {
			return fmt.Errorf("failed to set cell %s: %w", ref, err)
		}

		if cell.Style != nil {
			styleID, err := styles.id(*cell.Style)
			if err != nil {
				return fmt.Errorf("failed to build style for %s: %w", ref, err)
			}
			if err := f.SetCellStyle(sheet.Name, ref, ref, styleID); err != nil {
				return fmt.Errorf("failed to style cell %s: %w", ref, err)
			}
		}
	}

	for col, width := range sheet.ColWidths {
		name, err := excelize.ColumnNumberToName(col)
		if err != nil {
			return fmt.Errorf("invalid column %d: %w", col, err)
		}
		if err := f.SetColWidth(sheet.Name, name, name, width); err != nil {
			return fmt.Errorf("failed to set width of column %s: %w", name, err)
		}
	}

	if sheet.AutoFilter != nil {
		r := sheet.AutoFilter
		ref := Address{Row: r.FromRow, Col: r.FromCol}.Name() + ":" + Address{Row: r.ToRow, Col: r.ToCol}.Name()
		if err := f.AutoFilter(sheet.Name, ref, nil); err != nil {
			return fmt.Errorf("failed to set auto-filter %s: %w", ref, err)
		}
	}

	for _, chart := range sheet.Charts {
		if err := e.encodeChart(f, sheet.Name, chart); err != nil {
			return fmt.Errorf("failed to add chart %q: %w", chart.Title, err)
		}
	}

	return nil
}

func (e *Encoder) encodeChart(f *excelize.File, sheetName string, chart *Chart) error {
	series := make([]excelize.ChartSeries, 0, len(chart.Series))
	for _, s := range chart.Series {
		series = append(series, excelize.ChartSeries{
			Name:       s.NameRef.Ref(),
			Categories: chart.Categories.Ref(),
			Values:     s.Values.Ref(),
		})
	}

	return f.AddChart(sheetName, chart.Anchor.Name(), &excelize.Chart{
		Type:   excelize.Line,
		Series: series,
		Title:  []excelize.RichTextRun{{Text: chart.Title}},
		Dimension: excelize.ChartDimension{
			Width:  chart.Width,
			Height: chart.Height,
		},
	})
}

// styleCache deduplicates excelize style ids across cells sharing a Style.
type styleCache struct {
	f   *excelize.File
	ids map[Style]int
}

func newStyleCache(f *excelize.File) *styleCache {
	return &styleCache{f: f, ids: make(map[Style]int)}
}

func (c *styleCache) id(s Style) (int, error) {
	if id, ok := c.ids[s]; ok {
		return id, nil
	}

	style := &excelize.Style{}
	if s.Bold || s.FontSize > 0 {
		style.Font = &excelize.Font{Bold: s.Bold, Size: s.FontSize}
	}
	if s.FillColor != "" {
		style.Fill = excelize.Fill{Type: "pattern", Color: []string{s.FillColor}, Pattern: 1}
	}
	if s.WrapText {
		style.Alignment = &excelize.Alignment{WrapText: true, Vertical: "top"}
	}

	id, err := c.f.NewStyle(style)
	if err != nil {
		return 0, err
	}
	c.ids[s] = id
	return id, nil
}
