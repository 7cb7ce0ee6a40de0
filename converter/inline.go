package converter

import (
	"github.com/rgonek/uniast-converter/internal/target"
	"github.com/rgonek/uniast-converter/reference"
	"github.com/rgonek/uniast-converter/uniast"
)

func (s *state) convertInlines(content []InlineContent, path string, inLink bool) ([]uniast.InlineContent, error) {
	out := make([]uniast.InlineContent, 0, len(content))
	for idx, ic := range content {
		converted, err := s.convertInline(ic, uniast.Index(path, idx), inLink)
		if err != nil {
			return nil, err
		}
		if converted != nil {
			out = append(out, converted)
		}
	}
	return out, nil
}

// convertInline converts one inline node. It returns nil when an unknown node
// is skipped.
func (s *state) convertInline(ic InlineContent, path string, inLink bool) (uniast.InlineContent, error) {
	switch ic.Type {
	case InlineText:
		return &uniast.Text{Content: ic.Text, Styles: textStyles(ic.Styles)}, nil

	case InlineLink:
		if inLink {
			return nil, uniast.Nodef(path, ic.Type, uniast.ErrNestedLink, "links cannot contain links")
		}
		inlines, err := s.convertInlines(ic.Content, uniast.Field(path, "content"), true)
		if err != nil {
			return nil, err
		}
		content, err := uniast.LinkContents(inlines, uniast.Field(path, "content"))
		if err != nil {
			return nil, err
		}
		link := &uniast.Link{Content: content}
		s.targets.Add(&link.Target, target.Request{Raw: ic.Href, Kind: reference.KindDocument})
		return link, nil

	case InlineSubscript, InlineSuperscript:
		text, styles, err := scriptContent(ic, path)
		if err != nil {
			return nil, err
		}
		if ic.Type == InlineSubscript {
			return &uniast.Subscript{Content: text, Styles: styles}, nil
		}
		return &uniast.Superscript{Content: text, Styles: styles}, nil

	default:
		if id, ok := MacroID(ic.Type); ok {
			return s.convertInlineMacro(ic, id, path, inLink)
		}
		if err := s.unknown(path, ic.Type); err != nil {
			return nil, err
		}
		return nil, nil
	}
}

// scriptContent extracts the single text child of a subscript or
// superscript. No child yields an empty string.
func scriptContent(ic InlineContent, path string) (string, uniast.TextStyles, error) {
	switch len(ic.Content) {
	case 0:
		return "", uniast.TextStyles{}, nil
	case 1:
		child := ic.Content[0]
		if child.Type != InlineText {
			return "", uniast.TextStyles{}, uniast.Nodef(uniast.Index(uniast.Field(path, "content"), 0), child.Type, uniast.ErrUnexpectedNode, "only text is allowed in %s", ic.Type)
		}
		return child.Text, textStyles(child.Styles), nil
	default:
		return "", uniast.TextStyles{}, uniast.Nodef(path, ic.Type, uniast.ErrUnexpectedChildren, "%d children, at most one allowed", len(ic.Content))
	}
}

func textStyles(styles *Styles) uniast.TextStyles {
	if styles == nil {
		return uniast.TextStyles{}
	}
	return uniast.TextStyles{
		Bold:            styles.Bold,
		Italic:          styles.Italic,
		Underline:       styles.Underline,
		Strikethrough:   styles.Strike,
		Code:            styles.Code,
		BackgroundColor: colorValue(styles.BackgroundColor),
		TextColor:       colorValue(styles.TextColor),
	}
}
