package converter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// Native BlockNote block types.
const (
	BlockParagraph      = "paragraph"
	BlockHeading        = "heading"
	BlockHeading4       = "Heading4"
	BlockHeading5       = "Heading5"
	BlockHeading6       = "Heading6"
	BlockQuote          = "quote"
	BlockCode           = "codeBlock"
	BlockBulletListItem = "bulletListItem"
	BlockNumberedItem   = "numberedListItem"
	BlockCheckListItem  = "checkListItem"
	BlockTable          = "table"
	BlockImage          = "image"
	BlockDivider        = "divider"
)

// Native BlockNote inline content types.
const (
	InlineText        = "text"
	InlineLink        = "link"
	InlineSubscript   = "subscript"
	InlineSuperscript = "superscript"
)

// MacroPrefix prefixes block and inline types that are macros; the rest of
// the type is the macro id.
const MacroPrefix = "Macro_"

// MacroID returns the macro id carried by a native type.
func MacroID(nativeType string) (string, bool) {
	if !strings.HasPrefix(nativeType, MacroPrefix) {
		return "", false
	}
	return strings.TrimPrefix(nativeType, MacroPrefix), true
}

// Props holds the properties of a block or inline node.
type Props map[string]interface{}

// String returns the string property key, or "".
func (p Props) String(key string) string {
	s, _ := p[key].(string)
	return s
}

// Int returns the numeric property key as an int. Numeric strings are
// accepted because older documents stored levels as strings.
func (p Props) Int(key string) (int, bool) {
	switch v := p[key].(type) {
	case float64:
		switch {
		case math.IsNaN(v):
			return 0, false
		case v >= math.MaxInt:
			return math.MaxInt, true
		case v <= math.MinInt:
			return math.MinInt, true
		}
		return int(math.Round(v)), true
	case int:
		return v, true
	case string:
		var n int
		if _, err := fmt.Sscanf(v, "%d", &n); err == nil {
			return n, true
		}
	}
	return 0, false
}

// Bool returns the boolean property key.
func (p Props) Bool(key string) (bool, bool) {
	b, ok := p[key].(bool)
	return b, ok
}

// Block is a node of the BlockNote document tree. Content holds inline
// content for text blocks; Table holds the content of table blocks.
type Block struct {
	ID       string          `json:"id,omitempty"`
	Type     string          `json:"type"`
	Props    Props           `json:"props,omitempty"`
	Content  []InlineContent `json:"-"`
	Table    *TableContent   `json:"-"`
	Children []Block         `json:"children"`
}

// Styles are the styles of a BlockNote text node.
type Styles struct {
	Bold            bool   `json:"bold,omitempty"`
	Italic          bool   `json:"italic,omitempty"`
	Underline       bool   `json:"underline,omitempty"`
	Strike          bool   `json:"strike,omitempty"`
	Code            bool   `json:"code,omitempty"`
	TextColor       string `json:"textColor,omitempty"`
	BackgroundColor string `json:"backgroundColor,omitempty"`
}

// InlineContent is an inline node: styled text, a link or a custom inline
// content such as a macro.
type InlineContent struct {
	Type    string          `json:"type"`
	Text    string          `json:"text,omitempty"`
	Styles  *Styles         `json:"styles,omitempty"`
	Href    string          `json:"href,omitempty"`
	Props   Props           `json:"props,omitempty"`
	Content []InlineContent `json:"content,omitempty"`
}

// TableContent is the content of a table block.
type TableContent struct {
	Type         string     `json:"type"`
	ColumnWidths []*float64 `json:"columnWidths,omitempty"`
	HeaderRows   int        `json:"headerRows,omitempty"`
	Rows         []TableRow `json:"rows"`
}

type TableRow struct {
	Cells []TableCell `json:"cells"`
}

// TableCell is a table cell. Older documents store cells as plain inline
// content arrays; both forms are accepted when decoding.
type TableCell struct {
	Type    string          `json:"type"`
	Props   Props           `json:"props,omitempty"`
	Content []InlineContent `json:"content"`
}

// Type tags of table content and cells.
const (
	TableContentType = "tableContent"
	TableCellType    = "tableCell"
)

type blockWire struct {
	ID       string          `json:"id,omitempty"`
	Type     string          `json:"type"`
	Props    Props           `json:"props,omitempty"`
	Content  json.RawMessage `json:"content,omitempty"`
	Children []Block         `json:"children"`
}

func (b Block) MarshalJSON() ([]byte, error) {
	wire := blockWire{ID: b.ID, Type: b.Type, Props: b.Props, Children: b.Children}
	if wire.Children == nil {
		wire.Children = []Block{}
	}

	var content any
	switch {
	case b.Table != nil:
		content = b.Table
	case b.Content != nil:
		content = b.Content
	}
	if content != nil {
		raw, err := json.Marshal(content)
		if err != nil {
			return nil, err
		}
		wire.Content = raw
	}
	return json.Marshal(wire)
}

func (b *Block) UnmarshalJSON(data []byte) error {
	var wire blockWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	*b = Block{ID: wire.ID, Type: wire.Type, Props: wire.Props, Children: wire.Children}
	content := bytes.TrimSpace(wire.Content)
	switch {
	case len(content) == 0 || bytes.Equal(content, []byte("null")):
	case content[0] == '[':
		if err := json.Unmarshal(content, &b.Content); err != nil {
			return fmt.Errorf("block %q: %w", wire.ID, err)
		}
		if b.Content == nil {
			b.Content = []InlineContent{}
		}
	case content[0] == '{':
		var table TableContent
		if err := json.Unmarshal(content, &table); err != nil {
			return fmt.Errorf("block %q: %w", wire.ID, err)
		}
		b.Table = &table
	default:
		return fmt.Errorf("block %q: unsupported content %s", wire.ID, content)
	}
	return nil
}

func (c *TableCell) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		*c = TableCell{Type: TableCellType}
		return json.Unmarshal(data, &c.Content)
	}

	type alias TableCell
	var cell alias
	if err := json.Unmarshal(data, &cell); err != nil {
		return err
	}
	*c = TableCell(cell)
	return nil
}

// DecodeBlocks parses a JSON array of BlockNote blocks.
func DecodeBlocks(data []byte) ([]Block, error) {
	var blocks []Block
	if err := json.Unmarshal(data, &blocks); err != nil {
		return nil, fmt.Errorf("failed to decode blocks: %w", err)
	}
	return blocks, nil
}
