package converter

import (
	"fmt"

	"github.com/rgonek/uniast-converter/internal/logging"
	"github.com/rgonek/uniast-converter/uniast"
)

// convertBlocks folds a native block sequence into UniAst blocks. Runs of
// adjacent list items, of any kind, are merged into one list.
func (s *state) convertBlocks(blocks []Block, path string) ([]uniast.Block, error) {
	var out []uniast.Block
	for idx, block := range blocks {
		blockPath := uniast.Index(path, idx)
		logging.LogTrace(s.logger, "Converting block", "path", blockPath, "type", block.Type)

		if isListItem(block.Type) {
			var list *uniast.List
			if len(out) > 0 {
				list, _ = out[len(out)-1].(*uniast.List)
			}

			var previous *uniast.ListItem
			if list != nil {
				previous = &list.Items[len(list.Items)-1]
			}
			item, err := s.convertListItem(block, blockPath, previous)
			if err != nil {
				return nil, err
			}

			if list != nil {
				list.Items = append(list.Items, item)
			} else {
				out = append(out, &uniast.List{Items: []uniast.ListItem{item}})
			}
			continue
		}

		converted, err := s.convertBlock(block, blockPath)
		if err != nil {
			return nil, err
		}
		out = append(out, converted...)
	}
	return out, nil
}

func (s *state) convertBlock(block Block, path string) ([]uniast.Block, error) {
	switch block.Type {
	case BlockParagraph:
		if err := noChildren(block, path); err != nil {
			return nil, err
		}
		content, err := s.convertInlines(block.Content, uniast.Field(path, "content"), false)
		if err != nil {
			return nil, err
		}
		return []uniast.Block{&uniast.Paragraph{Content: content, Styles: blockStyles(block.Props)}}, nil

	case BlockHeading, BlockHeading4, BlockHeading5, BlockHeading6:
		return s.convertHeading(block, path)

	case BlockQuote:
		if err := noChildren(block, path); err != nil {
			return nil, err
		}
		content, err := s.convertInlines(block.Content, uniast.Field(path, "content"), false)
		if err != nil {
			return nil, err
		}
		return []uniast.Block{&uniast.Quote{
			Content: []uniast.Block{&uniast.Paragraph{Content: content}},
			Styles:  blockStyles(block.Props),
		}}, nil

	case BlockCode:
		if err := noChildren(block, path); err != nil {
			return nil, err
		}
		content, err := rawText(block.Content, uniast.Field(path, "content"))
		if err != nil {
			return nil, err
		}
		return []uniast.Block{&uniast.Code{Content: content, Language: block.Props.String("language")}}, nil

	case BlockImage:
		if err := noChildren(block, path); err != nil {
			return nil, err
		}
		img := s.convertImage(block, path)
		if img == nil {
			return nil, nil
		}
		return []uniast.Block{&uniast.Paragraph{Content: []uniast.InlineContent{img}}}, nil

	case BlockTable:
		if err := noChildren(block, path); err != nil {
			return nil, err
		}
		table, err := s.convertTable(block, path)
		if err != nil {
			return nil, err
		}
		return []uniast.Block{table}, nil

	case BlockDivider:
		if err := noChildren(block, path); err != nil {
			return nil, err
		}
		return []uniast.Block{&uniast.Break{}}, nil

	default:
		if id, ok := MacroID(block.Type); ok {
			macroBlock, err := s.convertMacroBlock(block, id, path)
			if err != nil {
				return nil, err
			}
			return []uniast.Block{macroBlock}, nil
		}
		return nil, s.unknown(path, block.Type)
	}
}

// convertHeading returns the heading followed by its converted children,
// which become siblings.
func (s *state) convertHeading(block Block, path string) ([]uniast.Block, error) {
	level, err := s.headingLevel(block, path)
	if err != nil {
		return nil, err
	}
	content, err := s.convertInlines(block.Content, uniast.Field(path, "content"), false)
	if err != nil {
		return nil, err
	}

	out := []uniast.Block{&uniast.Heading{Level: level, Content: content, Styles: blockStyles(block.Props)}}
	if len(block.Children) > 0 {
		children, err := s.convertBlocks(block.Children, uniast.Field(path, "children"))
		if err != nil {
			return nil, err
		}
		out = append(out, children...)
	}
	return out, nil
}

func (s *state) headingLevel(block Block, path string) (int, error) {
	switch block.Type {
	case BlockHeading4:
		return 4, nil
	case BlockHeading5:
		return 5, nil
	case BlockHeading6:
		return 6, nil
	}

	level, ok := block.Props.Int("level")
	if !ok {
		return 1, nil
	}
	if level >= 1 && level <= 6 {
		return level, nil
	}
	if s.config.HeadingOverflow == HeadingError {
		return 0, uniast.Nodef(path, block.Type, uniast.ErrUnexpectedNode, "heading level %d out of range 1..6", level)
	}

	clamped := min(max(level, 1), 6)
	s.addWarning(WarningClampedValue, block.Type, fmt.Sprintf("%s: heading level %d clamped to %d", path, level, clamped))
	return clamped, nil
}

func noChildren(block Block, path string) error {
	if len(block.Children) == 0 {
		return nil
	}
	return uniast.Nodef(path, block.Type, uniast.ErrUnexpectedChildren, "%d nested blocks", len(block.Children))
}

// rawText concatenates text nodes; any other inline node is an error.
func rawText(content []InlineContent, path string) (string, error) {
	var text string
	for idx, ic := range content {
		if ic.Type != InlineText {
			return "", uniast.Nodef(uniast.Index(path, idx), ic.Type, uniast.ErrUnexpectedNode, "only text is allowed here")
		}
		text += ic.Text
	}
	return text, nil
}

func blockStyles(props Props) uniast.BlockStyles {
	return uniast.BlockStyles{
		TextColor:       colorValue(props.String("textColor")),
		BackgroundColor: colorValue(props.String("backgroundColor")),
		TextAlignment:   alignmentValue(props.String("textAlignment")),
	}
}

func colorValue(color string) string {
	if color == "default" {
		return ""
	}
	return color
}

func alignmentValue(alignment string) string {
	if alignment == "left" {
		return ""
	}
	return alignment
}
