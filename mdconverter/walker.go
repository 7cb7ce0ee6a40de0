package mdconverter

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark/ast"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"

	"github.com/rgonek/uniast-converter/converter"
	"github.com/rgonek/uniast-converter/uniast"
)

func (s *state) convertDocument(root ast.Node) (*uniast.Document, error) {
	if err := s.checkContext(); err != nil {
		return nil, err
	}

	blocks, err := s.convertNodeSequence(root)
	if err != nil {
		return nil, err
	}
	if blocks == nil {
		blocks = []uniast.Block{}
	}
	return &uniast.Document{Blocks: blocks}, nil
}

func (s *state) convertBlockNode(node ast.Node) (uniast.Block, bool, error) {
	switch typed := node.(type) {
	case *ast.Paragraph:
		return s.convertParagraphNode(typed)
	case *ast.TextBlock:
		return s.convertParagraphNode(typed)
	case *ast.Heading:
		return s.convertHeadingNode(typed)
	case *ast.Blockquote:
		return s.convertBlockquoteNode(typed)
	case *ast.ThematicBreak:
		return &uniast.Break{}, true, nil
	case *ast.FencedCodeBlock:
		return s.convertFencedCodeBlockNode(typed)
	case *ast.CodeBlock:
		return s.convertCodeBlockNode(typed)
	case *ast.List:
		return s.convertListNode(typed)
	case *ast.HTMLBlock:
		return s.convertHTMLBlockNode(typed)
	case *extast.Table:
		return s.convertTableNode(typed)
	case *MacroBlockNode:
		return s.convertMacroBlockNode(typed)
	default:
		nodeKind := typed.Kind().String()
		textValue := strings.TrimSpace(string(linesText(node, s.source)))
		if textValue == "" {
			return nil, false, nil
		}
		s.addWarning(
			converter.WarningUnknownNode,
			nodeKind,
			fmt.Sprintf("%s: unsupported markdown block node %s", s.position(node), nodeKind),
		)
		return &uniast.Paragraph{Content: []uniast.InlineContent{plainText(textValue)}}, true, nil
	}
}

func (s *state) convertNodeSequence(parent ast.Node) ([]uniast.Block, error) {
	var blocks []uniast.Block
	for child := parent.FirstChild(); child != nil; child = child.NextSibling() {
		if err := s.checkContext(); err != nil {
			return nil, err
		}

		converted, ok, err := s.convertBlockNode(child)
		if err != nil {
			return nil, err
		}
		if ok {
			blocks = append(blocks, converted)
		}
	}
	return blocks, nil
}

// convertInlineFragment parses fragment as Markdown and returns the inline
// content of its paragraphs, joined by line breaks.
func (s *state) convertInlineFragment(fragment string) ([]uniast.InlineContent, error) {
	if err := s.checkContext(); err != nil {
		return nil, err
	}

	trimmed := strings.TrimSpace(fragment)
	if trimmed == "" {
		return []uniast.InlineContent{}, nil
	}

	originalSource := s.source
	originalSpanStack := s.htmlSpanStack
	defer func() {
		s.source = originalSource
		s.htmlSpanStack = originalSpanStack
	}()

	s.source = []byte(trimmed)
	s.htmlSpanStack = nil

	root := s.parser.Parser().Parse(text.NewReader(s.source))
	content := []uniast.InlineContent{}
	for child := root.FirstChild(); child != nil; child = child.NextSibling() {
		if len(content) > 0 {
			content = appendInline(content, plainText("\n"))
		}

		var converted []uniast.InlineContent
		if isInlineContainer(child) {
			var err error
			converted, err = s.convertInlineChildren(child, newMarkStack())
			if err != nil {
				return nil, err
			}
		} else {
			s.addWarning(converter.WarningLossyConversion, child.Kind().String(), "block content in inline fragment kept as text")
			converted = []uniast.InlineContent{plainText(strings.TrimSpace(string(linesText(child, s.source))))}
		}
		for _, inline := range converted {
			content = appendInline(content, inline)
		}
	}
	return content, nil
}

func isInlineContainer(node ast.Node) bool {
	switch node.(type) {
	case *ast.Paragraph, *ast.TextBlock:
		return true
	default:
		return false
	}
}

// position locates node in the source as "line N".
func (s *state) position(node ast.Node) string {
	for current := node; current != nil; current = current.Parent() {
		if current.Type() != ast.TypeBlock {
			continue
		}
		lines := current.Lines()
		if lines == nil || lines.Len() == 0 {
			continue
		}
		offset := lines.At(0).Start
		if offset > len(s.source) {
			break
		}
		return fmt.Sprintf("line %d", bytes.Count(s.source[:offset], []byte{'\n'})+1)
	}
	return "document"
}

// linesText concatenates the raw source lines of a block node.
func linesText(node ast.Node, source []byte) []byte {
	if node.Type() != ast.TypeBlock {
		return nil
	}
	var buf bytes.Buffer
	lines := node.Lines()
	for idx := 0; idx < lines.Len(); idx++ {
		segment := lines.At(idx)
		buf.Write(segment.Value(source))
	}
	return buf.Bytes()
}
