package uniast

// WalkTargets calls fn with the target of every link and image under blocks,
// in document order. path is the location of blocks and prefixes the paths
// passed to fn.
func WalkTargets(blocks []Block, path string, fn func(target LinkTarget, path string)) {
	for idx, block := range blocks {
		walkBlockTargets(block, Index(path, idx), fn)
	}
}

func walkBlockTargets(block Block, path string, fn func(LinkTarget, string)) {
	switch b := block.(type) {
	case *Paragraph:
		walkInlineTargets(b.Content, Field(path, "content"), fn)
	case *Heading:
		walkInlineTargets(b.Content, Field(path, "content"), fn)
	case *Quote:
		WalkTargets(b.Content, Field(path, "content"), fn)
	case *List:
		for idx, item := range b.Items {
			WalkTargets(item.Content, Field(Index(Field(path, "items"), idx), "content"), fn)
		}
	case *Table:
		for idx, column := range b.Columns {
			if column.HeaderCell != nil {
				walkInlineTargets(column.HeaderCell.Content, Field(Index(Field(path, "columns"), idx), "headerCell.content"), fn)
			}
		}
		for rowIdx, row := range b.Rows {
			for cellIdx, cell := range row {
				walkInlineTargets(cell.Content, Field(Index(Index(Field(path, "rows"), rowIdx), cellIdx), "content"), fn)
			}
		}
	case *Image:
		fn(b.Target, Field(path, "target"))
	case *MacroBlock:
		if body, ok := b.Body.(InlineContentsBody); ok {
			walkInlineTargets(body.Content, Field(path, "body.content"), fn)
		}
	}
}

func walkInlineTargets(content []InlineContent, path string, fn func(LinkTarget, string)) {
	for idx, inline := range content {
		walkInlineTarget(inline, Index(path, idx), fn)
	}
}

func walkInlineTarget(inline InlineContent, path string, fn func(LinkTarget, string)) {
	switch n := inline.(type) {
	case *Link:
		fn(n.Target, Field(path, "target"))
		for idx, child := range n.Content {
			walkInlineTarget(child, Index(Field(path, "content"), idx), fn)
		}
	case *Image:
		fn(n.Target, Field(path, "target"))
	case *InlineMacro:
		if body, ok := n.Body.(InlineContentBody); ok {
			walkInlineTarget(body.Content, Field(path, "body.content"), fn)
		}
	}
}
