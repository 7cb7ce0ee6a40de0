package converter

import (
	"github.com/rgonek/uniast-converter/uniast"
)

func isListItem(nativeType string) bool {
	switch nativeType {
	case BlockBulletListItem, BlockNumberedItem, BlockCheckListItem:
		return true
	}
	return false
}

// convertListItem converts one native list item. Its children must fold into
// exactly one list, which becomes the item's nested list.
func (s *state) convertListItem(block Block, path string, previous *uniast.ListItem) (uniast.ListItem, error) {
	content, err := s.convertInlines(block.Content, uniast.Field(path, "content"), false)
	if err != nil {
		return uniast.ListItem{}, err
	}

	item := uniast.ListItem{
		Content: []uniast.Block{&uniast.Paragraph{Content: content}},
		Styles:  blockStyles(block.Props),
	}

	switch block.Type {
	case BlockNumberedItem:
		item.Number = uniast.IntPtr(itemNumber(block, previous))
	case BlockCheckListItem:
		checked, _ := block.Props.Bool("checked")
		item.Checked = uniast.BoolPtr(checked)
	}

	if len(block.Children) == 0 {
		return item, nil
	}

	childrenPath := uniast.Field(path, "children")
	nested, err := s.convertBlocks(block.Children, childrenPath)
	if err != nil {
		return uniast.ListItem{}, err
	}
	switch len(nested) {
	case 0:
		return item, nil
	case 1:
		list, ok := nested[0].(*uniast.List)
		if !ok {
			return uniast.ListItem{}, uniast.Nodef(childrenPath, nested[0].NodeType(), uniast.ErrMalformedList, "list item children must be list items")
		}
		item.Content = append(item.Content, list)
		return item, nil
	default:
		return uniast.ListItem{}, uniast.Nodef(childrenPath, block.Type, uniast.ErrMalformedList, "list item children fold into %d blocks, expected one list", len(nested))
	}
}

// itemNumber continues the numbering of the previous item when it is
// numbered, otherwise starts at the item's start property or 1. Numbers
// stored on the native blocks are ignored.
func itemNumber(block Block, previous *uniast.ListItem) int {
	if previous != nil && previous.Number != nil {
		return *previous.Number + 1
	}
	if start, ok := block.Props.Int("start"); ok {
		return start
	}
	return 1
}
