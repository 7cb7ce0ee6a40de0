package converter

import (
	"math"

	"github.com/rgonek/uniast-converter/uniast"
)

// convertTable treats the first native row as the header row. Column widths
// and header cells are matched to columns by index.
func (s *state) convertTable(block Block, path string) (*uniast.Table, error) {
	table := &uniast.Table{
		Columns: []uniast.TableColumn{},
		Rows:    [][]uniast.TableCell{},
		Styles:  blockStyles(block.Props),
	}
	if block.Table == nil {
		return table, nil
	}

	rowsPath := uniast.Field(path, "content.rows")
	widths := block.Table.ColumnWidths
	var header []TableCell
	if len(block.Table.Rows) > 0 {
		header = block.Table.Rows[0].Cells
	}

	columns := max(len(header), len(widths))
	for idx := 0; idx < columns; idx++ {
		var column uniast.TableColumn
		if idx < len(header) {
			cell, err := s.convertCell(header[idx], uniast.Index(uniast.Index(rowsPath, 0), idx))
			if err != nil {
				return nil, err
			}
			column.HeaderCell = &cell
		}
		if idx < len(widths) && widths[idx] != nil {
			column.WidthPx = uniast.IntPtr(int(math.Round(*widths[idx])))
		}
		table.Columns = append(table.Columns, column)
	}

	for rowIdx := 1; rowIdx < len(block.Table.Rows); rowIdx++ {
		row := block.Table.Rows[rowIdx]
		cells := make([]uniast.TableCell, 0, len(row.Cells))
		for cellIdx, nativeCell := range row.Cells {
			cell, err := s.convertCell(nativeCell, uniast.Index(uniast.Index(rowsPath, rowIdx), cellIdx))
			if err != nil {
				return nil, err
			}
			cells = append(cells, cell)
		}
		table.Rows = append(table.Rows, cells)
	}
	return table, nil
}

func (s *state) convertCell(cell TableCell, path string) (uniast.TableCell, error) {
	content, err := s.convertInlines(cell.Content, uniast.Field(path, "content"), false)
	if err != nil {
		return uniast.TableCell{}, err
	}

	out := uniast.TableCell{Content: content, Styles: blockStyles(cell.Props)}
	if span, ok := cell.Props.Int("colspan"); ok && span != 1 {
		out.ColSpan = uniast.IntPtr(span)
	}
	if span, ok := cell.Props.Int("rowspan"); ok && span != 1 {
		out.RowSpan = uniast.IntPtr(span)
	}
	return out, nil
}
