package uniast

import "fmt"

// Validate checks the structural invariants of a document: list shape and
// numbering, heading levels, link nesting, present targets and macro body
// placement.
func Validate(doc *Document) error {
	if doc == nil {
		return fmt.Errorf("%w: nil document", ErrInvalidDocument)
	}
	return validateBlocks(doc.Blocks, "blocks")
}

func validateBlocks(blocks []Block, path string) error {
	for idx, block := range blocks {
		if err := validateBlock(block, Index(path, idx)); err != nil {
			return err
		}
	}
	return nil
}

func validateBlock(block Block, path string) error {
	switch b := block.(type) {
	case *Paragraph:
		return validateInlines(b.Content, Field(path, "content"))
	case *Heading:
		if b.Level < 1 || b.Level > 6 {
			return Nodef(path, TypeHeading, ErrInvalidDocument, "heading level %d out of range 1..6", b.Level)
		}
		return validateInlines(b.Content, Field(path, "content"))
	case *Quote:
		return validateBlocks(b.Content, Field(path, "content"))
	case *Code, *Break:
		return nil
	case *List:
		return validateList(b, path)
	case *Table:
		return validateTable(b, path)
	case *Image:
		return validateTarget(b.Target, Field(path, "target"))
	case *MacroBlock:
		if b.Name == "" {
			return Nodef(path, TypeMacroBlock, ErrInvalidDocument, "macro without name")
		}
		if body, ok := b.Body.(InlineContentsBody); ok {
			return validateInlines(body.Content, Field(path, "body.content"))
		}
		return nil
	case nil:
		return Nodef(path, "", ErrUnexpectedNode, "nil block")
	default:
		return Nodef(path, block.NodeType(), ErrUnexpectedNode, "unsupported block")
	}
}

func validateList(list *List, path string) error {
	if len(list.Items) == 0 {
		return Nodef(path, TypeList, ErrMalformedList, "list without items")
	}

	var previous *int
	for idx, item := range list.Items {
		itemPath := Index(Field(path, "items"), idx)
		if item.Number != nil && item.Checked != nil {
			return Nodef(itemPath, "listItem", ErrMalformedList, "item is both numbered and checkable")
		}
		if item.Number != nil && previous != nil && *item.Number != *previous+1 {
			return Nodef(itemPath, "listItem", ErrMalformedList, "number %d does not follow %d", *item.Number, *previous)
		}
		previous = item.Number

		if len(item.Content) == 0 {
			return Nodef(itemPath, "listItem", ErrMalformedList, "item without content")
		}
		if len(item.Content) > 2 {
			return Nodef(itemPath, "listItem", ErrMalformedList, "item has %d content blocks, at most 2 allowed", len(item.Content))
		}
		paragraph, ok := item.Content[0].(*Paragraph)
		if !ok {
			return Nodef(Index(Field(itemPath, "content"), 0), nodeType(item.Content[0]), ErrMalformedList, "first item block must be a paragraph")
		}
		if err := validateInlines(paragraph.Content, Field(Index(Field(itemPath, "content"), 0), "content")); err != nil {
			return err
		}
		if len(item.Content) == 2 {
			nested, ok := item.Content[1].(*List)
			if !ok {
				return Nodef(Index(Field(itemPath, "content"), 1), nodeType(item.Content[1]), ErrMalformedList, "second item block must be a list")
			}
			if err := validateList(nested, Index(Field(itemPath, "content"), 1)); err != nil {
				return err
			}
		}
	}
	return nil
}

func validateTable(table *Table, path string) error {
	for idx, column := range table.Columns {
		if column.HeaderCell == nil {
			continue
		}
		if err := validateInlines(column.HeaderCell.Content, Field(Index(Field(path, "columns"), idx), "headerCell.content")); err != nil {
			return err
		}
	}
	for rowIdx, row := range table.Rows {
		for cellIdx, cell := range row {
			if err := validateInlines(cell.Content, Field(Index(Index(Field(path, "rows"), rowIdx), cellIdx), "content")); err != nil {
				return err
			}
		}
	}
	return nil
}

func validateInlines(inlines []InlineContent, path string) error {
	for idx, inline := range inlines {
		if err := validateInline(inline, Index(path, idx), false); err != nil {
			return err
		}
	}
	return nil
}

func validateInline(inline InlineContent, path string, inLink bool) error {
	switch n := inline.(type) {
	case *Text, *Subscript, *Superscript:
		return nil
	case *Link:
		if inLink {
			return Nodef(path, TypeLink, ErrNestedLink, "links cannot contain links")
		}
		for idx, content := range n.Content {
			if err := validateInline(content, Index(Field(path, "content"), idx), true); err != nil {
				return err
			}
		}
		return validateTarget(n.Target, Field(path, "target"))
	case *Image:
		return validateTarget(n.Target, Field(path, "target"))
	case *InlineMacro:
		if n.Name == "" {
			return Nodef(path, TypeInlineMacro, ErrInvalidDocument, "macro without name")
		}
		if body, ok := n.Body.(InlineContentBody); ok {
			if body.Content == nil {
				return Nodef(path, TypeInlineMacro, ErrMacroBodyKind, "inlineContent body without content")
			}
			return validateInline(body.Content, Field(path, "body.content"), inLink)
		}
		return nil
	case nil:
		return Nodef(path, "", ErrUnexpectedNode, "nil inline content")
	default:
		return Nodef(path, inline.NodeType(), ErrUnexpectedNode, "unsupported inline content")
	}
}

func validateTarget(target LinkTarget, path string) error {
	switch t := target.(type) {
	case *ExternalTarget:
		return nil
	case *InternalTarget:
		if t.ParsedReference == nil && t.RawReference == "" {
			return Nodef(path, TargetInternal, ErrInvalidDocument, "internal target without reference")
		}
		return nil
	case nil:
		return Nodef(path, "", ErrInvalidDocument, "missing target")
	default:
		return Nodef(path, target.TargetType(), ErrUnexpectedNode, "unsupported target")
	}
}

func nodeType(node Node) string {
	if node == nil {
		return ""
	}
	return node.NodeType()
}
