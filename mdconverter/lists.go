package mdconverter

import (
	"github.com/yuin/goldmark/ast"
	extast "github.com/yuin/goldmark/extension/ast"

	"github.com/rgonek/uniast-converter/uniast"
)

// convertListNode converts bullet, ordered and task lists. Ordered items are
// numbered from the list start; task items carry their checkbox state
// instead of a number.
func (s *state) convertListNode(node *ast.List) (uniast.Block, bool, error) {
	list := &uniast.List{}

	idx := 0
	for child := node.FirstChild(); child != nil; child = child.NextSibling() {
		listItem, ok := child.(*ast.ListItem)
		if !ok {
			continue
		}

		item, err := s.convertListItemNode(listItem)
		if err != nil {
			return nil, false, err
		}
		if item.Checked == nil && node.IsOrdered() {
			item.Number = uniast.IntPtr(node.Start + idx)
		}
		list.Items = append(list.Items, item)
		idx++
	}

	if len(list.Items) == 0 {
		return nil, false, nil
	}
	return list, true, nil
}

// convertListItemNode folds an item into a paragraph and at most one nested
// list. Further paragraphs join the first one on a new line and further
// lists join the nested one.
func (s *state) convertListItemNode(node *ast.ListItem) (uniast.ListItem, error) {
	paragraph := &uniast.Paragraph{Content: []uniast.InlineContent{}}
	item := uniast.ListItem{Content: []uniast.Block{paragraph}}
	var nested *uniast.List

	for child := node.FirstChild(); child != nil; child = child.NextSibling() {
		switch typed := child.(type) {
		case *ast.TextBlock, *ast.Paragraph:
			if child == node.FirstChild() {
				item.Checked = taskState(typed)
			}
			content, err := s.convertInlineChildren(typed, newMarkStack())
			if err != nil {
				return uniast.ListItem{}, err
			}
			if len(paragraph.Content) > 0 {
				paragraph.Content = appendInline(paragraph.Content, plainText("\n"))
			}
			for _, inline := range trimTrailingBreak(content) {
				paragraph.Content = appendInline(paragraph.Content, inline)
			}

		case *ast.List:
			converted, ok, err := s.convertListNode(typed)
			if err != nil {
				return uniast.ListItem{}, err
			}
			if !ok {
				continue
			}
			if nested == nil {
				nested = converted.(*uniast.List)
				item.Content = append(item.Content, nested)
				continue
			}
			nested.Items = append(nested.Items, converted.(*uniast.List).Items...)
			renumber(nested)

		default:
			return uniast.ListItem{}, uniast.Nodef(s.position(child), uniast.TypeList, uniast.ErrMalformedList,
				"list items hold paragraphs and lists, got %s", child.Kind().String())
		}
	}

	return item, nil
}

// taskState returns the checkbox state of a task item's text block.
func taskState(node ast.Node) *bool {
	if checkBox, ok := node.FirstChild().(*extast.TaskCheckBox); ok {
		return uniast.BoolPtr(checkBox.IsChecked)
	}
	return nil
}

// renumber makes numbers of consecutive ordered items follow each other.
func renumber(list *uniast.List) {
	for idx := 1; idx < len(list.Items); idx++ {
		previous := list.Items[idx-1].Number
		if previous != nil && list.Items[idx].Number != nil {
			list.Items[idx].Number = uniast.IntPtr(*previous + 1)
		}
	}
}
