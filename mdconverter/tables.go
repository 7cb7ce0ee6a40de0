package mdconverter

import (
	"github.com/yuin/goldmark/ast"
	extast "github.com/yuin/goldmark/extension/ast"

	"github.com/rgonek/uniast-converter/uniast"
)

// convertTableNode maps the header row to column header cells and the
// remaining rows to table rows. Cell alignment becomes the cell text
// alignment.
func (s *state) convertTableNode(node *extast.Table) (uniast.Block, bool, error) {
	table := &uniast.Table{Columns: []uniast.TableColumn{}, Rows: [][]uniast.TableCell{}}

	for row := node.FirstChild(); row != nil; row = row.NextSibling() {
		switch typed := row.(type) {
		case *extast.TableHeader:
			cells, err := s.convertTableCells(typed)
			if err != nil {
				return nil, false, err
			}
			for idx := range cells {
				table.Columns = append(table.Columns, uniast.TableColumn{HeaderCell: &cells[idx]})
			}
		case *extast.TableRow:
			cells, err := s.convertTableCells(typed)
			if err != nil {
				return nil, false, err
			}
			table.Rows = append(table.Rows, cells)
		}
	}

	if len(table.Columns) == 0 && len(table.Rows) == 0 {
		return nil, false, nil
	}
	return table, true, nil
}

func (s *state) convertTableCells(row ast.Node) ([]uniast.TableCell, error) {
	cells := []uniast.TableCell{}
	for child := row.FirstChild(); child != nil; child = child.NextSibling() {
		cell, ok := child.(*extast.TableCell)
		if !ok {
			continue
		}
		content, err := s.convertInlineChildren(cell, newMarkStack())
		if err != nil {
			return nil, err
		}
		converted := uniast.TableCell{Content: content}
		if alignment := cellAlignment(cell.Alignment); alignment != "" {
			converted.Styles.TextAlignment = alignment
		}
		cells = append(cells, converted)
	}
	return cells, nil
}

func cellAlignment(alignment extast.Alignment) string {
	switch alignment {
	case extast.AlignLeft:
		return "left"
	case extast.AlignCenter:
		return "center"
	case extast.AlignRight:
		return "right"
	default:
		return ""
	}
}
