package bnconverter

import (
	"fmt"

	"github.com/rgonek/uniast-converter/converter"
	"github.com/rgonek/uniast-converter/uniast"
)

func (s *state) convertInlines(content []uniast.InlineContent, path string, inLink bool) ([]converter.InlineContent, error) {
	out := make([]converter.InlineContent, 0, len(content))
	for idx, inline := range content {
		converted, err := s.convertInline(inline, uniast.Index(path, idx), inLink)
		if err != nil {
			return nil, err
		}
		out = append(out, converted)
	}
	return out, nil
}

func (s *state) convertInline(inline uniast.InlineContent, path string, inLink bool) (converter.InlineContent, error) {
	switch n := inline.(type) {
	case *uniast.Text:
		return converter.InlineContent{Type: converter.InlineText, Text: n.Content, Styles: nativeStyles(n.Styles)}, nil

	case *uniast.Link:
		if inLink {
			return converter.InlineContent{}, uniast.Nodef(path, uniast.TypeLink, uniast.ErrNestedLink, "links cannot contain links")
		}
		content := make([]uniast.InlineContent, len(n.Content))
		for idx, child := range n.Content {
			content[idx] = child
		}
		converted, err := s.convertInlines(content, uniast.Field(path, "content"), true)
		if err != nil {
			return converter.InlineContent{}, err
		}
		return converter.InlineContent{Type: converter.InlineLink, Href: s.href(n.Target), Content: converted}, nil

	case *uniast.Image:
		// Native inline content has no image; keep it reachable as a link.
		label := n.Alt
		if label == "" {
			label = s.href(n.Target)
		}
		if inLink {
			s.addWarning(converter.WarningLossyConversion, uniast.TypeImage, fmt.Sprintf("%s: inline image inside link converted to text", path))
			return plainText(label), nil
		}
		s.addWarning(converter.WarningLossyConversion, uniast.TypeImage, fmt.Sprintf("%s: inline image converted to link", path))
		return converter.InlineContent{
			Type:    converter.InlineLink,
			Href:    s.href(n.Target),
			Content: []converter.InlineContent{plainText(label)},
		}, nil

	case *uniast.InlineMacro:
		return s.convertInlineMacro(n, path, inLink)

	case *uniast.Subscript:
		return scriptContent(converter.InlineSubscript, n.Content, n.Styles), nil

	case *uniast.Superscript:
		return scriptContent(converter.InlineSuperscript, n.Content, n.Styles), nil

	default:
		return converter.InlineContent{}, uniast.Nodef(path, inline.NodeType(), uniast.ErrUnexpectedNode, "unsupported inline content")
	}
}

// scriptContent wraps text in a subscript or superscript. Empty text gives
// no child.
func scriptContent(nativeType, text string, styles uniast.TextStyles) converter.InlineContent {
	out := converter.InlineContent{Type: nativeType, Content: []converter.InlineContent{}}
	if text != "" {
		out.Content = append(out.Content, converter.InlineContent{Type: converter.InlineText, Text: text, Styles: nativeStyles(styles)})
	}
	return out
}

func nativeStyles(styles uniast.TextStyles) *converter.Styles {
	return &converter.Styles{
		Bold:            styles.Bold,
		Italic:          styles.Italic,
		Underline:       styles.Underline,
		Strike:          styles.Strikethrough,
		Code:            styles.Code,
		TextColor:       styles.TextColor,
		BackgroundColor: styles.BackgroundColor,
	}
}
