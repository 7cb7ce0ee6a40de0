package mdconverter

import (
	"strings"

	"github.com/yuin/goldmark/ast"

	"github.com/rgonek/uniast-converter/uniast"
)

// convertParagraphNode converts a paragraph or a tight list item's text
// block. A paragraph holding a single macro call becomes a macro block.
func (s *state) convertParagraphNode(node ast.Node) (uniast.Block, bool, error) {
	if macroNode, ok := soleMacro(node, s.source); ok {
		block, err := s.convertMacroNodeAsBlock(macroNode)
		if err != nil {
			return nil, false, err
		}
		return block, true, nil
	}

	content, err := s.convertInlineChildren(node, newMarkStack())
	if err != nil {
		return nil, false, err
	}
	return &uniast.Paragraph{Content: trimTrailingBreak(content)}, true, nil
}

func (s *state) convertHeadingNode(node *ast.Heading) (uniast.Block, bool, error) {
	content, err := s.convertInlineChildren(node, newMarkStack())
	if err != nil {
		return nil, false, err
	}
	return &uniast.Heading{Level: node.Level, Content: trimTrailingBreak(content)}, true, nil
}

func (s *state) convertBlockquoteNode(node *ast.Blockquote) (uniast.Block, bool, error) {
	content, err := s.convertNodeSequence(node)
	if err != nil {
		return nil, false, err
	}
	if content == nil {
		content = []uniast.Block{}
	}
	return &uniast.Quote{Content: content}, true, nil
}

func (s *state) convertFencedCodeBlockNode(node *ast.FencedCodeBlock) (uniast.Block, bool, error) {
	code := &uniast.Code{Content: codeLines(node, s.source)}
	if language := node.Language(s.source); len(language) > 0 {
		code.Language = string(language)
	}
	return code, true, nil
}

func (s *state) convertCodeBlockNode(node *ast.CodeBlock) (uniast.Block, bool, error) {
	return &uniast.Code{Content: codeLines(node, s.source)}, true, nil
}

// codeLines joins the lines of a code block without the final line ending.
func codeLines(node ast.Node, source []byte) string {
	return strings.TrimSuffix(strings.TrimSuffix(string(linesText(node, source)), "\n"), "\r")
}

// soleMacro returns the macro call of a block whose only other content is
// whitespace.
func soleMacro(node ast.Node, source []byte) (*MacroNode, bool) {
	var found *MacroNode
	for child := node.FirstChild(); child != nil; child = child.NextSibling() {
		switch typed := child.(type) {
		case *MacroNode:
			if found != nil {
				return nil, false
			}
			found = typed
		case *ast.Text:
			if strings.TrimSpace(string(typed.Value(source))) != "" {
				return nil, false
			}
		default:
			return nil, false
		}
	}
	return found, found != nil
}

// trimTrailingBreak drops a line break ending the content.
func trimTrailingBreak(content []uniast.InlineContent) []uniast.InlineContent {
	if len(content) == 0 {
		return content
	}
	last, ok := content[len(content)-1].(*uniast.Text)
	if !ok || !strings.HasSuffix(last.Content, "\n") {
		return content
	}
	last.Content = strings.TrimRight(last.Content, "\n")
	if last.Content == "" {
		return content[:len(content)-1]
	}
	return content
}
