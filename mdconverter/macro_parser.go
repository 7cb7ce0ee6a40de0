package mdconverter

import (
	"strings"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

type MacroParser struct{}

func NewMacroParser() parser.InlineParser {
	return &MacroParser{}
}

func (p *MacroParser) Trigger() []byte {
	return []byte{'{'}
}

func (p *MacroParser) Parse(parent ast.Node, block text.Reader, pc parser.Context) ast.Node {
	line, _ := block.PeekLine()
	tag, ok := scanMacroTag(line)
	if !ok {
		return nil
	}

	node := NewMacroNode(tag)
	if tag.selfClosing {
		block.Advance(tag.length)
		return node
	}

	start, end, found := findClosingTag(line[tag.length:], tag.name)
	if !found {
		return nil
	}
	node.Body = string(line[tag.length : tag.length+start])
	node.HasBody = true
	block.Advance(tag.length + end)
	return node
}

type MacroBlockParser struct{}

func NewMacroBlockParser() parser.BlockParser {
	return &MacroBlockParser{}
}

func (p *MacroBlockParser) Trigger() []byte {
	return []byte{'{'}
}

// Open accepts an opening tag alone on its line when a matching closing tag
// follows. Without one the line is left to the paragraph parser.
func (p *MacroBlockParser) Open(parent ast.Node, reader text.Reader, pc parser.Context) (ast.Node, parser.State) {
	line, _ := reader.PeekLine()
	trimmed := strings.TrimLeft(trimLineEnding(string(line)), " \t")
	tag, ok := scanMacroTag([]byte(trimmed))
	if !ok || tag.selfClosing || strings.TrimSpace(trimmed[tag.length:]) != "" {
		return nil, parser.NoChildren
	}
	if !hasClosingLine(reader, tag.name) {
		return nil, parser.NoChildren
	}
	return NewMacroBlockNode(tag), parser.NoChildren
}

// Continue collects body lines. Nested calls of the same macro are counted
// so their closing tags stay in the body.
func (p *MacroBlockParser) Continue(node ast.Node, reader text.Reader, pc parser.Context) parser.State {
	block := node.(*MacroBlockNode)
	line, segment := reader.PeekLine()
	if line == nil {
		return parser.Close
	}

	rawLine := trimLineEnding(string(line))
	depth := macroLineDepth(rawLine, block.Name)
	block.openDepth += depth
	reader.Advance(segment.Stop - segment.Start - (len(line) - len(rawLine)) + segment.Padding)
	if block.openDepth == 0 {
		block.closed = true
		return parser.Close
	}
	block.appendBodyLine(rawLine)
	return parser.Continue | parser.NoChildren
}

func (p *MacroBlockParser) Close(node ast.Node, reader text.Reader, pc parser.Context) {}

func (p *MacroBlockParser) CanInterruptParagraph() bool {
	return true
}

func (p *MacroBlockParser) CanAcceptIndentedLine() bool {
	return false
}

func trimLineEnding(value string) string {
	return strings.TrimRight(value, "\r\n")
}

// macroLineDepth returns 1 for an opening tag of name alone on line, -1 for
// its closing tag and 0 otherwise.
func macroLineDepth(line, name string) int {
	trimmed := strings.TrimLeft(line, " \t")
	if tag, ok := scanMacroTag([]byte(trimmed)); ok && !tag.selfClosing && tag.name == name &&
		strings.TrimSpace(trimmed[tag.length:]) == "" {
		return 1
	}
	if length, ok := scanClosingTag([]byte(trimmed), name); ok && strings.TrimSpace(trimmed[length:]) == "" {
		return -1
	}
	return 0
}

// hasClosingLine looks ahead for the line closing a macro opened on the
// current line. Container markers in front of lines are skipped.
func hasClosingLine(reader text.Reader, name string) bool {
	savedLine, savedPosition := reader.Position()
	defer reader.SetPosition(savedLine, savedPosition)

	depth := 1
	reader.AdvanceLine()
	for {
		line, _ := reader.PeekLine()
		if line == nil {
			return false
		}
		rawLine := strings.TrimLeft(trimLineEnding(string(line)), " \t>")
		depth += macroLineDepth(rawLine, name)
		if depth == 0 {
			return true
		}
		reader.AdvanceLine()
	}
}
