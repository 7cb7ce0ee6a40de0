package bnconverter

import (
	"github.com/rgonek/uniast-converter/converter"
	"github.com/rgonek/uniast-converter/uniast"
)

// convertList expands a list into sibling native items. A nested list
// becomes the children of its item.
func (s *state) convertList(list *uniast.List, path string) ([]converter.Block, error) {
	out := make([]converter.Block, 0, len(list.Items))
	var previous *uniast.ListItem
	for idx := range list.Items {
		item := &list.Items[idx]
		native, err := s.convertListItem(item, uniast.Index(path, idx), previous)
		if err != nil {
			return nil, err
		}
		out = append(out, native)
		previous = item
	}
	return out, nil
}

func (s *state) convertListItem(item *uniast.ListItem, path string, previous *uniast.ListItem) (converter.Block, error) {
	contentPath := uniast.Field(path, "content")
	para, ok := item.Content[0].(*uniast.Paragraph)
	if !ok {
		return converter.Block{}, uniast.Nodef(uniast.Index(contentPath, 0), item.Content[0].NodeType(), uniast.ErrMalformedList, "first item block must be a paragraph")
	}

	props := blockProps(item.Styles)
	var native converter.Block
	switch {
	case item.Checked != nil:
		props["checked"] = *item.Checked
		native = s.newBlock(converter.BlockCheckListItem, props)
	case item.Number != nil:
		if (previous == nil || previous.Number == nil) && *item.Number != 1 {
			props["start"] = *item.Number
		}
		native = s.newBlock(converter.BlockNumberedItem, props)
	default:
		native = s.newBlock(converter.BlockBulletListItem, props)
	}

	content, err := s.convertInlines(para.Content, uniast.Field(uniast.Index(contentPath, 0), "content"), false)
	if err != nil {
		return converter.Block{}, err
	}
	native.Content = content

	if len(item.Content) < 2 {
		return native, nil
	}
	nested, ok := item.Content[1].(*uniast.List)
	if !ok {
		return converter.Block{}, uniast.Nodef(uniast.Index(contentPath, 1), item.Content[1].NodeType(), uniast.ErrMalformedList, "second item block must be a list")
	}
	children, err := s.convertList(nested, uniast.Field(uniast.Index(contentPath, 1), "items"))
	if err != nil {
		return converter.Block{}, err
	}
	native.Children = children
	return native, nil
}
