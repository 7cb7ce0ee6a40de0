package bnconverter

import (
	"fmt"

	"github.com/rgonek/uniast-converter/converter"
	"github.com/rgonek/uniast-converter/internal/logging"
	"github.com/rgonek/uniast-converter/uniast"
)

func (s *state) convertBlocks(blocks []uniast.Block, path string) ([]converter.Block, error) {
	out := make([]converter.Block, 0, len(blocks))
	for idx, block := range blocks {
		blockPath := uniast.Index(path, idx)
		logging.LogTrace(s.logger, "Converting block", "path", blockPath, "type", block.NodeType())

		converted, err := s.convertBlock(block, blockPath)
		if err != nil {
			return nil, err
		}
		out = append(out, converted...)
	}
	return out, nil
}

// convertBlock returns one native block, or a run of list items for a list.
func (s *state) convertBlock(block uniast.Block, path string) ([]converter.Block, error) {
	switch b := block.(type) {
	case *uniast.Paragraph:
		if img, ok := b.ImageOnly(); ok {
			if !b.Styles.IsZero() {
				s.addWarning(converter.WarningLossyConversion, uniast.TypeParagraph, fmt.Sprintf("%s: styles of image paragraph dropped", path))
			}
			return []converter.Block{s.convertImage(img)}, nil
		}
		content, err := s.convertInlines(b.Content, uniast.Field(path, "content"), false)
		if err != nil {
			return nil, err
		}
		native := s.newBlock(converter.BlockParagraph, blockProps(b.Styles))
		native.Content = content
		return []converter.Block{native}, nil

	case *uniast.Heading:
		content, err := s.convertInlines(b.Content, uniast.Field(path, "content"), false)
		if err != nil {
			return nil, err
		}
		native := s.newBlock(converter.BlockHeading, blockProps(b.Styles))
		if s.config.LegacyHeadings && b.Level >= 4 {
			native.Type = fmt.Sprintf("Heading%d", b.Level)
		} else {
			native.Props["level"] = b.Level
		}
		native.Content = content
		return []converter.Block{native}, nil

	case *uniast.Quote:
		native, err := s.convertQuote(b, path)
		if err != nil {
			return nil, err
		}
		return []converter.Block{native}, nil

	case *uniast.Code:
		props := converter.Props{}
		if b.Language != "" {
			props["language"] = b.Language
		}
		native := s.newBlock(converter.BlockCode, props)
		native.Content = []converter.InlineContent{}
		if b.Content != "" {
			native.Content = append(native.Content, plainText(b.Content))
		}
		return []converter.Block{native}, nil

	case *uniast.List:
		return s.convertList(b, uniast.Field(path, "items"))

	case *uniast.Table:
		native, err := s.convertTable(b, path)
		if err != nil {
			return nil, err
		}
		return []converter.Block{native}, nil

	case *uniast.Image:
		return []converter.Block{s.convertImage(b)}, nil

	case *uniast.Break:
		return []converter.Block{s.newBlock(converter.BlockDivider, converter.Props{})}, nil

	case *uniast.MacroBlock:
		native, err := s.convertMacroBlock(b, path)
		if err != nil {
			return nil, err
		}
		return []converter.Block{native}, nil

	default:
		return nil, uniast.Nodef(path, block.NodeType(), uniast.ErrUnexpectedNode, "unsupported block")
	}
}

// convertQuote merges the quoted paragraphs into the single inline run a
// native quote holds.
func (s *state) convertQuote(quote *uniast.Quote, path string) (converter.Block, error) {
	contentPath := uniast.Field(path, "content")
	if len(quote.Content) > 1 {
		if s.config.Quotes == QuoteError {
			return converter.Block{}, uniast.Nodef(path, uniast.TypeQuote, uniast.ErrUnexpectedChildren, "quote holds %d blocks, expected one paragraph", len(quote.Content))
		}
		s.addWarning(converter.WarningLossyConversion, uniast.TypeQuote, fmt.Sprintf("%s: %d paragraphs joined", path, len(quote.Content)))
	}

	content := []converter.InlineContent{}
	for idx, block := range quote.Content {
		para, ok := block.(*uniast.Paragraph)
		if !ok {
			return converter.Block{}, uniast.Nodef(uniast.Index(contentPath, idx), block.NodeType(), uniast.ErrUnexpectedNode, "quotes may only hold paragraphs")
		}
		inlines, err := s.convertInlines(para.Content, uniast.Field(uniast.Index(contentPath, idx), "content"), false)
		if err != nil {
			return converter.Block{}, err
		}
		if idx > 0 {
			content = append(content, plainText("\n"))
		}
		content = append(content, inlines...)
	}

	native := s.newBlock(converter.BlockQuote, blockProps(quote.Styles))
	native.Content = content
	return native, nil
}

func (s *state) convertImage(img *uniast.Image) converter.Block {
	props := converter.Props{
		"backgroundColor": "default",
		"url":             s.href(img.Target),
		"name":            img.Alt,
		"caption":         img.Caption,
		"showPreview":     true,
	}
	if img.Styles.Alignment != "" {
		props["textAlignment"] = img.Styles.Alignment
	}
	if img.WidthPx != nil {
		props["previewWidth"] = *img.WidthPx
	}
	return s.newBlock(converter.BlockImage, props)
}

// blockProps emits the style props with the editor defaults for unset
// values.
func blockProps(styles uniast.BlockStyles) converter.Props {
	return converter.Props{
		"textColor":       orDefault(styles.TextColor, "default"),
		"backgroundColor": orDefault(styles.BackgroundColor, "default"),
		"textAlignment":   orDefault(styles.TextAlignment, "left"),
	}
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

func plainText(text string) converter.InlineContent {
	return converter.InlineContent{Type: converter.InlineText, Text: text, Styles: &converter.Styles{}}
}
