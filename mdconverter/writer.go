package mdconverter

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/rgonek/uniast-converter/converter"
	"github.com/rgonek/uniast-converter/uniast"
)

// writer renders a UniAst document as Markdown.
type writer struct {
	config   Config
	logger   *slog.Logger
	urls     map[uniast.LinkTarget]*string
	warnings []converter.Warning
}

func (w *writer) addWarning(warnType converter.WarningType, nodeType, message string) {
	w.warnings = append(w.warnings, converter.Warning{
		Type:     warnType,
		NodeType: nodeType,
		Message:  message,
	})
}

func (w *writer) writeDocument(doc *uniast.Document) (string, error) {
	return w.writeBlocks(doc.Blocks, "blocks")
}

// writeBlocks separates blocks with a blank line. Adjacent lists of the same
// kind switch markers so they read back as separate lists.
func (w *writer) writeBlocks(blocks []uniast.Block, path string) (string, error) {
	parts := make([]string, 0, len(blocks))
	alternate := false
	var previous *uniast.List
	for idx, block := range blocks {
		blockPath := uniast.Index(path, idx)

		var (
			out string
			err error
		)
		if list, ok := block.(*uniast.List); ok {
			alternate = previous != nil && isOrderedList(previous) == isOrderedList(list) && !alternate
			previous = list
			out, err = w.writeList(list, blockPath, alternate)
		} else {
			previous = nil
			alternate = false
			out, err = w.writeBlock(block, blockPath)
		}
		if err != nil {
			return "", err
		}
		if out == "" {
			continue
		}
		parts = append(parts, out)
	}
	return strings.Join(parts, "\n\n"), nil
}

func (w *writer) writeBlock(block uniast.Block, path string) (string, error) {
	switch b := block.(type) {
	case *uniast.Paragraph:
		return w.writeInlines(b.Content, uniast.Field(path, "content"), inlineOptions{})

	case *uniast.Heading:
		content, err := w.writeInlines(b.Content, uniast.Field(path, "content"), inlineOptions{singleLine: true})
		if err != nil {
			return "", err
		}
		return strings.Repeat("#", b.Level) + " " + content, nil

	case *uniast.Quote:
		content, err := w.writeBlocks(b.Content, uniast.Field(path, "content"))
		if err != nil {
			return "", err
		}
		return prefixLines(content, "> ", ">"), nil

	case *uniast.Code:
		return writeCode(b), nil

	case *uniast.List:
		return w.writeList(b, path, false)

	case *uniast.Table:
		return w.writeTable(b, path)

	case *uniast.Image:
		return w.writeImage(b, path), nil

	case *uniast.Break:
		return "---", nil

	case *uniast.MacroBlock:
		return w.writeMacroBlock(b, path)

	default:
		return "", uniast.Nodef(path, block.NodeType(), uniast.ErrUnexpectedNode, "unsupported block")
	}
}

func writeCode(code *uniast.Code) string {
	fence := strings.Repeat("`", max(3, longestRun(code.Content, '`')+1))
	var b strings.Builder
	b.WriteString(fence)
	b.WriteString(code.Language)
	b.WriteByte('\n')
	if code.Content != "" {
		b.WriteString(code.Content)
		b.WriteByte('\n')
	}
	b.WriteString(fence)
	return b.String()
}

// writeList writes one line group per item. Continuation lines and nested
// lists are indented to the width of the item marker.
func (w *writer) writeList(list *uniast.List, path string, alternate bool) (string, error) {
	bullet := w.config.BulletMarker
	delimiter := "."
	if alternate {
		bullet = bullet.alternate()
		delimiter = ")"
	}

	lines := make([]string, 0, len(list.Items))
	for idx, item := range list.Items {
		itemPath := uniast.Index(uniast.Field(path, "items"), idx)

		var marker, prefix string
		switch {
		case item.Checked != nil:
			marker = string(bullet) + " "
			prefix = marker + "[ ] "
			if *item.Checked {
				prefix = marker + "[x] "
			}
		case item.Number != nil:
			marker = strconv.Itoa(*item.Number) + delimiter + " "
			prefix = marker
		default:
			marker = string(bullet) + " "
			prefix = marker
		}
		indent := strings.Repeat(" ", len(marker))

		var text string
		if paragraph, ok := item.Content[0].(*uniast.Paragraph); ok {
			var err error
			text, err = w.writeInlines(paragraph.Content, uniast.Field(uniast.Index(uniast.Field(itemPath, "content"), 0), "content"), inlineOptions{})
			if err != nil {
				return "", err
			}
		}
		lines = append(lines, strings.TrimRight(prefix+prefixContinuation(text, indent), " "))

		if len(item.Content) > 1 {
			nested, ok := item.Content[1].(*uniast.List)
			if !ok {
				return "", uniast.Nodef(uniast.Index(uniast.Field(itemPath, "content"), 1), item.Content[1].NodeType(), uniast.ErrMalformedList, "second item block must be a list")
			}
			out, err := w.writeList(nested, uniast.Index(uniast.Field(itemPath, "content"), 1), false)
			if err != nil {
				return "", err
			}
			lines = append(lines, prefixLines(out, indent, ""))
		}
	}
	return strings.Join(lines, "\n"), nil
}

func isOrderedList(list *uniast.List) bool {
	return len(list.Items) > 0 && list.Items[0].Number != nil
}

// writeTable writes a pipe table. A table without header cells gets an
// empty header row.
func (w *writer) writeTable(table *uniast.Table, path string) (string, error) {
	columns := len(table.Columns)
	for _, row := range table.Rows {
		columns = max(columns, len(row))
	}
	if columns == 0 {
		w.addWarning(converter.WarningDroppedBlock, uniast.TypeTable, fmt.Sprintf("%s: empty table dropped", path))
		return "", nil
	}

	lossy := false
	options := inlineOptions{singleLine: true, table: true}

	header := make([]string, columns)
	separator := make([]string, columns)
	for idx := range separator {
		separator[idx] = "  -  "
	}
	for idx, column := range table.Columns {
		if column.WidthPx != nil {
			lossy = true
		}
		if column.HeaderCell == nil {
			continue
		}
		cellPath := uniast.Field(uniast.Index(uniast.Field(path, "columns"), idx), "headerCell")
		content, err := w.writeInlines(column.HeaderCell.Content, uniast.Field(cellPath, "content"), options)
		if err != nil {
			return "", err
		}
		header[idx] = content
		separator[idx] = alignmentSeparator(column.HeaderCell.Styles.TextAlignment)
		lossy = lossy || column.HeaderCell.ColSpan != nil || column.HeaderCell.RowSpan != nil
	}

	lines := []string{tableRow(header), "|" + strings.Join(separator, "|") + "|"}
	for rowIdx, row := range table.Rows {
		cells := make([]string, columns)
		for cellIdx, cell := range row {
			cellPath := uniast.Index(uniast.Index(uniast.Field(path, "rows"), rowIdx), cellIdx)
			content, err := w.writeInlines(cell.Content, uniast.Field(cellPath, "content"), options)
			if err != nil {
				return "", err
			}
			cells[cellIdx] = content
			lossy = lossy || cell.ColSpan != nil || cell.RowSpan != nil
		}
		lines = append(lines, tableRow(cells))
	}

	if lossy {
		w.addWarning(converter.WarningLossyConversion, uniast.TypeTable, fmt.Sprintf("%s: column widths and cell spans are not written", path))
	}
	return strings.Join(lines, "\n"), nil
}

func tableRow(cells []string) string {
	return "| " + strings.Join(cells, " | ") + " |"
}

func alignmentSeparator(alignment string) string {
	switch alignment {
	case "left":
		return " :-  "
	case "center":
		return " :-: "
	case "right":
		return "  -: "
	default:
		return "  -  "
	}
}

func (w *writer) writeMacroBlock(m *uniast.MacroBlock, path string) (string, error) {
	switch body := m.Body.(type) {
	case nil, uniast.NoBody:
		return formatMacroTag(m.Name, m.Params, true), nil
	case uniast.RawBody:
		return formatMacroTag(m.Name, m.Params, false) + "\n" + body.Content + "\n" + formatClosingTag(m.Name), nil
	case uniast.InlineContentsBody:
		content, err := w.writeInlines(body.Content, uniast.Field(path, "body.content"), inlineOptions{})
		if err != nil {
			return "", err
		}
		return formatMacroTag(m.Name, m.Params, false) + "\n" + content + "\n" + formatClosingTag(m.Name), nil
	default:
		return "", uniast.Nodef(path, uniast.TypeMacroBlock, uniast.ErrMacroBodyKind, "unsupported body %T", m.Body)
	}
}

// prefixLines prefixes every line of text. Blank lines get emptyPrefix.
func prefixLines(text, prefix, emptyPrefix string) string {
	lines := strings.Split(text, "\n")
	for idx, line := range lines {
		if line == "" {
			lines[idx] = emptyPrefix
			continue
		}
		lines[idx] = prefix + line
	}
	return strings.Join(lines, "\n")
}

// prefixContinuation indents every line of text but the first.
func prefixContinuation(text, indent string) string {
	first, rest, found := strings.Cut(text, "\n")
	if !found {
		return text
	}
	return first + "\n" + prefixLines(rest, indent, "")
}

func longestRun(text string, c byte) int {
	longest, current := 0, 0
	for idx := 0; idx < len(text); idx++ {
		if text[idx] != c {
			current = 0
			continue
		}
		current++
		longest = max(longest, current)
	}
	return longest
}
