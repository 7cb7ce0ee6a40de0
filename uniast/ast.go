// Package uniast defines the editor-agnostic document model used as the pivot
// between editor block trees and text formats.
package uniast

// Node type names, as used in the "type" discriminator of the JSON form.
const (
	TypeParagraph   = "paragraph"
	TypeHeading     = "heading"
	TypeQuote       = "quote"
	TypeCode        = "code"
	TypeList        = "list"
	TypeTable       = "table"
	TypeImage       = "image"
	TypeBreak       = "break"
	TypeMacroBlock  = "macroBlock"
	TypeText        = "text"
	TypeLink        = "link"
	TypeInlineMacro = "inlineMacro"
	TypeSubscript   = "subscript"
	TypeSuperscript = "superscript"
)

// Document is the root of a UniAst tree.
type Document struct {
	Blocks []Block `json:"blocks"`
}

// Node is implemented by every block and inline node.
type Node interface {
	NodeType() string
}

// Block is a top-level or nested block node. The set of implementations is
// closed: Paragraph, Heading, Quote, Code, List, Table, Image, Break and
// MacroBlock.
type Block interface {
	Node
	isBlock()
}

// InlineContent is an inline node. The set of implementations is closed:
// Text, Link, Image, InlineMacro, Subscript and Superscript.
type InlineContent interface {
	Node
	isInline()
}

// LinkContent is an inline node allowed inside a Link, i.e. any inline
// node except another Link.
type LinkContent interface {
	InlineContent
	isLinkContent()
}

// BlockStyles are presentation attributes shared by most blocks.
type BlockStyles struct {
	TextColor       string `json:"textColor,omitempty"`
	BackgroundColor string `json:"backgroundColor,omitempty"`
	TextAlignment   string `json:"textAlignment,omitempty"`
}

// IsZero reports whether no style is set.
func (s BlockStyles) IsZero() bool {
	return s == BlockStyles{}
}

// TextStyles are the styles of a text run. Flags are always present.
type TextStyles struct {
	Bold            bool   `json:"bold"`
	Italic          bool   `json:"italic"`
	Underline       bool   `json:"underline"`
	Strikethrough   bool   `json:"strikethrough"`
	Code            bool   `json:"code"`
	BackgroundColor string `json:"backgroundColor,omitempty"`
	TextColor       string `json:"textColor,omitempty"`
}

// ImageStyles are the styles of an image.
type ImageStyles struct {
	Alignment string `json:"alignment,omitempty"`
}

type Paragraph struct {
	Content []InlineContent `json:"content"`
	Styles  BlockStyles     `json:"styles"`
}

type Heading struct {
	Level   int             `json:"level"`
	Content []InlineContent `json:"content"`
	Styles  BlockStyles     `json:"styles"`
}

// Quote wraps blocks; converters expect paragraphs only.
type Quote struct {
	Content []Block     `json:"content"`
	Styles  BlockStyles `json:"styles"`
}

type Code struct {
	Content  string `json:"content"`
	Language string `json:"language,omitempty"`
}

// List is the only list container. Items carry their own nested list as the
// second element of their content.
type List struct {
	Items  []ListItem  `json:"items"`
	Styles BlockStyles `json:"styles"`
}

// ListItem is a bullet item when neither Number nor Checked is set, an ordered
// item when Number is set and a checklist item when Checked is set.
type ListItem struct {
	Content []Block     `json:"content"`
	Number  *int        `json:"number,omitempty"`
	Checked *bool       `json:"checked,omitempty"`
	Styles  BlockStyles `json:"styles"`
}

type Table struct {
	Columns []TableColumn `json:"columns"`
	Rows    [][]TableCell `json:"rows"`
	Styles  BlockStyles   `json:"styles"`
}

type TableColumn struct {
	HeaderCell *TableCell `json:"headerCell,omitempty"`
	WidthPx    *int       `json:"widthPx,omitempty"`
}

type TableCell struct {
	Content []InlineContent `json:"content"`
	Styles  BlockStyles     `json:"styles"`
	ColSpan *int            `json:"colSpan,omitempty"`
	RowSpan *int            `json:"rowSpan,omitempty"`
}

// Image is both a block and an inline node.
type Image struct {
	Target  LinkTarget  `json:"target"`
	Caption string      `json:"caption,omitempty"`
	WidthPx *int        `json:"widthPx,omitempty"`
	Alt     string      `json:"alt,omitempty"`
	Styles  ImageStyles `json:"styles"`
}

type Break struct{}

type MacroBlock struct {
	Name   string         `json:"name"`
	Params Params         `json:"params"`
	Body   MacroBlockBody `json:"body,omitempty"`
}

type Text struct {
	Content string     `json:"content"`
	Styles  TextStyles `json:"styles"`
}

type Link struct {
	Content []LinkContent `json:"content"`
	Target  LinkTarget    `json:"target"`
}

type InlineMacro struct {
	Name   string          `json:"name"`
	Params Params          `json:"params"`
	Body   InlineMacroBody `json:"body,omitempty"`
}

type Subscript struct {
	Content string     `json:"content"`
	Styles  TextStyles `json:"styles"`
}

type Superscript struct {
	Content string     `json:"content"`
	Styles  TextStyles `json:"styles"`
}

func (*Paragraph) NodeType() string   { return TypeParagraph }
func (*Heading) NodeType() string     { return TypeHeading }
func (*Quote) NodeType() string       { return TypeQuote }
func (*Code) NodeType() string        { return TypeCode }
func (*List) NodeType() string        { return TypeList }
func (*Table) NodeType() string       { return TypeTable }
func (*Image) NodeType() string       { return TypeImage }
func (*Break) NodeType() string       { return TypeBreak }
func (*MacroBlock) NodeType() string  { return TypeMacroBlock }
func (*Text) NodeType() string        { return TypeText }
func (*Link) NodeType() string        { return TypeLink }
func (*InlineMacro) NodeType() string { return TypeInlineMacro }
func (*Subscript) NodeType() string   { return TypeSubscript }
func (*Superscript) NodeType() string { return TypeSuperscript }

func (*Paragraph) isBlock()  {}
func (*Heading) isBlock()    {}
func (*Quote) isBlock()      {}
func (*Code) isBlock()       {}
func (*List) isBlock()       {}
func (*Table) isBlock()      {}
func (*Image) isBlock()      {}
func (*Break) isBlock()      {}
func (*MacroBlock) isBlock() {}

func (*Text) isInline()        {}
func (*Link) isInline()        {}
func (*Image) isInline()       {}
func (*InlineMacro) isInline() {}
func (*Subscript) isInline()   {}
func (*Superscript) isInline() {}

func (*Text) isLinkContent()        {}
func (*Image) isLinkContent()       {}
func (*InlineMacro) isLinkContent() {}
func (*Subscript) isLinkContent()   {}
func (*Superscript) isLinkContent() {}

// ImageOnly returns the image when the paragraph holds exactly one inline
// image and nothing else.
func (p *Paragraph) ImageOnly() (*Image, bool) {
	if len(p.Content) != 1 {
		return nil, false
	}
	img, ok := p.Content[0].(*Image)
	return img, ok
}

// IntPtr returns a pointer to v.
func IntPtr(v int) *int {
	return &v
}

// BoolPtr returns a pointer to v.
func BoolPtr(v bool) *bool {
	return &v
}
