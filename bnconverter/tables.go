package bnconverter

import (
	"fmt"

	"github.com/rgonek/uniast-converter/converter"
	"github.com/rgonek/uniast-converter/uniast"
)

// convertTable emits a header row only when some column has a header cell;
// columns without one get an empty cell.
func (s *state) convertTable(table *uniast.Table, path string) (converter.Block, error) {
	content := &converter.TableContent{
		Type:         converter.TableContentType,
		ColumnWidths: make([]*float64, len(table.Columns)),
		Rows:         []converter.TableRow{},
	}
	for idx, column := range table.Columns {
		if column.WidthPx != nil {
			width := float64(*column.WidthPx)
			content.ColumnWidths[idx] = &width
		}
	}

	hasHeader := false
	for _, column := range table.Columns {
		if column.HeaderCell != nil {
			hasHeader = true
			break
		}
	}

	columnsPath := uniast.Field(path, "columns")
	if hasHeader {
		row := converter.TableRow{Cells: make([]converter.TableCell, 0, len(table.Columns))}
		for idx, column := range table.Columns {
			if column.HeaderCell == nil {
				row.Cells = append(row.Cells, s.emptyCell())
				continue
			}
			cell, err := s.convertCell(*column.HeaderCell, uniast.Field(uniast.Index(columnsPath, idx), "headerCell"))
			if err != nil {
				return converter.Block{}, err
			}
			row.Cells = append(row.Cells, cell)
		}
		content.HeaderRows = 1
		content.Rows = append(content.Rows, row)
	} else if len(table.Rows) > 0 {
		s.addWarning(converter.WarningLossyConversion, uniast.TypeTable, fmt.Sprintf("%s: table without header cells, first row reads back as header", path))
	}

	rowsPath := uniast.Field(path, "rows")
	for rowIdx, cells := range table.Rows {
		row := converter.TableRow{Cells: make([]converter.TableCell, 0, len(cells))}
		for cellIdx, cell := range cells {
			native, err := s.convertCell(cell, uniast.Index(uniast.Index(rowsPath, rowIdx), cellIdx))
			if err != nil {
				return converter.Block{}, err
			}
			row.Cells = append(row.Cells, native)
		}
		content.Rows = append(content.Rows, row)
	}

	native := s.newBlock(converter.BlockTable, blockProps(table.Styles))
	native.Table = content
	return native, nil
}

func (s *state) convertCell(cell uniast.TableCell, path string) (converter.TableCell, error) {
	content, err := s.convertInlines(cell.Content, uniast.Field(path, "content"), false)
	if err != nil {
		return converter.TableCell{}, err
	}

	props := blockProps(cell.Styles)
	props["colspan"] = 1
	props["rowspan"] = 1
	if cell.ColSpan != nil {
		props["colspan"] = *cell.ColSpan
	}
	if cell.RowSpan != nil {
		props["rowspan"] = *cell.RowSpan
	}
	return converter.TableCell{Type: converter.TableCellType, Props: props, Content: content}, nil
}

func (s *state) emptyCell() converter.TableCell {
	props := blockProps(uniast.BlockStyles{})
	props["colspan"] = 1
	props["rowspan"] = 1
	return converter.TableCell{Type: converter.TableCellType, Props: props, Content: []converter.InlineContent{}}
}
