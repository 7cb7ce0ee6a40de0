package mdconverter

import (
	"strconv"
	"strings"

	"github.com/yuin/goldmark/ast"

	"github.com/rgonek/uniast-converter/uniast"
)

var (
	KindWikiLink   = ast.NewNodeKind("WikiLink")
	KindWikiImage  = ast.NewNodeKind("WikiImage")
	KindMacro      = ast.NewNodeKind("Macro")
	KindMacroBlock = ast.NewNodeKind("MacroBlock")
)

// WikiLinkNode is a "[[label|reference]]" link. Label is Markdown.
type WikiLinkNode struct {
	ast.BaseInline
	Label     string
	Reference string
}

func NewWikiLinkNode(label, ref string) *WikiLinkNode {
	return &WikiLinkNode{Label: label, Reference: ref}
}

func (n *WikiLinkNode) Kind() ast.NodeKind {
	return KindWikiLink
}

func (n *WikiLinkNode) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{
		"Label":     n.Label,
		"Reference": n.Reference,
	}, nil)
}

// WikiImageNode is a "![[alt|reference]]" image.
type WikiImageNode struct {
	ast.BaseInline
	Alt       string
	Reference string
}

func NewWikiImageNode(alt, ref string) *WikiImageNode {
	return &WikiImageNode{Alt: alt, Reference: ref}
}

func (n *WikiImageNode) Kind() ast.NodeKind {
	return KindWikiImage
}

func (n *WikiImageNode) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{
		"Alt":       n.Alt,
		"Reference": n.Reference,
	}, nil)
}

// MacroNode is an inline macro call, either "{{name k=v /}}" or
// "{{name k=v}}body{{/name}}" on a single line.
type MacroNode struct {
	ast.BaseInline
	Name    string
	Params  uniast.Params
	Body    string
	HasBody bool
}

func NewMacroNode(tag macroTag) *MacroNode {
	return &MacroNode{Name: tag.name, Params: tag.params}
}

func (n *MacroNode) Kind() ast.NodeKind {
	return KindMacro
}

func (n *MacroNode) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{
		"Name":    n.Name,
		"Params":  strings.Join(n.Params.Keys(), ","),
		"HasBody": strconv.FormatBool(n.HasBody),
	}, nil)
}

// MacroBlockNode is a macro call spanning lines:
//
//	{{name k=v}}
//	body
//	{{/name}}
type MacroBlockNode struct {
	ast.BaseBlock
	Name      string
	Params    uniast.Params
	bodyLines []string
	openDepth int
	closed    bool
}

func NewMacroBlockNode(tag macroTag) *MacroBlockNode {
	return &MacroBlockNode{Name: tag.name, Params: tag.params, openDepth: 1}
}

func (n *MacroBlockNode) Kind() ast.NodeKind {
	return KindMacroBlock
}

func (n *MacroBlockNode) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{
		"Name":  n.Name,
		"Lines": strconv.Itoa(len(n.bodyLines)),
	}, nil)
}

func (n *MacroBlockNode) appendBodyLine(line string) {
	n.bodyLines = append(n.bodyLines, line)
}

// Closed reports whether the closing tag was seen. A call left open by its
// container ending is not closed.
func (n *MacroBlockNode) Closed() bool {
	return n.closed
}

// Body returns the raw lines between the opening and closing tags.
func (n *MacroBlockNode) Body() string {
	return strings.Join(n.bodyLines, "\n")
}
