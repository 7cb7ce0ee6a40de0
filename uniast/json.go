package uniast

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// marshalTyped encodes v as a JSON object and prepends the "type"
// discriminator.
func marshalTyped(nodeType string, v any) ([]byte, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	head := []byte(`{"type":` + strconv.Quote(nodeType))
	if bytes.Equal(body, []byte("{}")) {
		return append(head, '}'), nil
	}
	head = append(head, ',')
	return append(head, body[1:]...), nil
}

func (d *Document) MarshalJSON() ([]byte, error) {
	blocks := d.Blocks
	if blocks == nil {
		blocks = []Block{}
	}
	return json.Marshal(struct {
		Blocks []Block `json:"blocks"`
	}{blocks})
}

func (p *Paragraph) MarshalJSON() ([]byte, error) {
	type alias Paragraph
	return marshalTyped(TypeParagraph, (*alias)(p))
}

func (h *Heading) MarshalJSON() ([]byte, error) {
	type alias Heading
	return marshalTyped(TypeHeading, (*alias)(h))
}

func (q *Quote) MarshalJSON() ([]byte, error) {
	type alias Quote
	return marshalTyped(TypeQuote, (*alias)(q))
}

func (c *Code) MarshalJSON() ([]byte, error) {
	type alias Code
	return marshalTyped(TypeCode, (*alias)(c))
}

func (l *List) MarshalJSON() ([]byte, error) {
	type alias List
	return marshalTyped(TypeList, (*alias)(l))
}

func (t *Table) MarshalJSON() ([]byte, error) {
	type alias Table
	return marshalTyped(TypeTable, (*alias)(t))
}

func (i *Image) MarshalJSON() ([]byte, error) {
	type alias Image
	return marshalTyped(TypeImage, (*alias)(i))
}

func (b *Break) MarshalJSON() ([]byte, error) {
	return marshalTyped(TypeBreak, struct{}{})
}

func (m *MacroBlock) MarshalJSON() ([]byte, error) {
	wire := struct {
		Name   string         `json:"name"`
		Params Params         `json:"params"`
		Body   MacroBlockBody `json:"body,omitempty"`
	}{Name: m.Name, Params: m.Params, Body: m.Body}
	if wire.Params == nil {
		wire.Params = Params{}
	}
	if BlockBodyKind(m.Body) == BodyNone {
		wire.Body = nil
	}
	return marshalTyped(TypeMacroBlock, wire)
}

func (t *Text) MarshalJSON() ([]byte, error) {
	type alias Text
	return marshalTyped(TypeText, (*alias)(t))
}

func (l *Link) MarshalJSON() ([]byte, error) {
	type alias Link
	return marshalTyped(TypeLink, (*alias)(l))
}

func (m *InlineMacro) MarshalJSON() ([]byte, error) {
	wire := struct {
		Name   string          `json:"name"`
		Params Params          `json:"params"`
		Body   InlineMacroBody `json:"body,omitempty"`
	}{Name: m.Name, Params: m.Params, Body: m.Body}
	if wire.Params == nil {
		wire.Params = Params{}
	}
	if InlineBodyKind(m.Body) == BodyNone {
		wire.Body = nil
	}
	return marshalTyped(TypeInlineMacro, wire)
}

func (s *Subscript) MarshalJSON() ([]byte, error) {
	type alias Subscript
	return marshalTyped(TypeSubscript, (*alias)(s))
}

func (s *Superscript) MarshalJSON() ([]byte, error) {
	type alias Superscript
	return marshalTyped(TypeSuperscript, (*alias)(s))
}

func (t *ExternalTarget) MarshalJSON() ([]byte, error) {
	type alias ExternalTarget
	return marshalTyped(TargetExternal, (*alias)(t))
}

func (t *InternalTarget) MarshalJSON() ([]byte, error) {
	type alias InternalTarget
	return marshalTyped(TargetInternal, (*alias)(t))
}

func (NoBody) MarshalJSON() ([]byte, error) {
	return marshalTyped(string(BodyNone), struct{}{})
}

func (b RawBody) MarshalJSON() ([]byte, error) {
	type alias RawBody
	return marshalTyped(string(BodyRaw), alias(b))
}

func (b InlineContentsBody) MarshalJSON() ([]byte, error) {
	type alias InlineContentsBody
	return marshalTyped(string(BodyInlineContents), alias(b))
}

func (b InlineContentBody) MarshalJSON() ([]byte, error) {
	type alias InlineContentBody
	return marshalTyped(string(BodyInlineContent), alias(b))
}

// UnmarshalJSON decodes a document, resolving every "type" discriminator.
func (d *Document) UnmarshalJSON(data []byte) error {
	var wire struct {
		Blocks []json.RawMessage `json:"blocks"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}

	blocks, err := decodeBlocks(wire.Blocks, "blocks")
	if err != nil {
		return err
	}
	d.Blocks = blocks
	return nil
}

type typeProbe struct {
	Type string `json:"type"`
}

func probeType(raw json.RawMessage, path string) (string, error) {
	var probe typeProbe
	if err := json.Unmarshal(raw, &probe); err != nil {
		return "", NewNodeError(path, "", fmt.Errorf("%w: %v", ErrInvalidDocument, err))
	}
	return probe.Type, nil
}

func decodeInto(raw json.RawMessage, path, nodeType string, v any) error {
	if err := json.Unmarshal(raw, v); err != nil {
		return NewNodeError(path, nodeType, fmt.Errorf("%w: %v", ErrInvalidDocument, err))
	}
	return nil
}

func decodeBlocks(raws []json.RawMessage, path string) ([]Block, error) {
	if raws == nil {
		return nil, nil
	}
	blocks := make([]Block, 0, len(raws))
	for idx, raw := range raws {
		block, err := decodeBlock(raw, Index(path, idx))
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, block)
	}
	return blocks, nil
}

func decodeBlock(raw json.RawMessage, path string) (Block, error) {
	nodeType, err := probeType(raw, path)
	if err != nil {
		return nil, err
	}

	switch nodeType {
	case TypeParagraph:
		var wire struct {
			Content []json.RawMessage `json:"content"`
			Styles  BlockStyles       `json:"styles"`
		}
		if err := decodeInto(raw, path, nodeType, &wire); err != nil {
			return nil, err
		}
		content, err := decodeInlines(wire.Content, Field(path, "content"))
		if err != nil {
			return nil, err
		}
		return &Paragraph{Content: content, Styles: wire.Styles}, nil
	case TypeHeading:
		var wire struct {
			Level   int               `json:"level"`
			Content []json.RawMessage `json:"content"`
			Styles  BlockStyles       `json:"styles"`
		}
		if err := decodeInto(raw, path, nodeType, &wire); err != nil {
			return nil, err
		}
		content, err := decodeInlines(wire.Content, Field(path, "content"))
		if err != nil {
			return nil, err
		}
		return &Heading{Level: wire.Level, Content: content, Styles: wire.Styles}, nil
	case TypeQuote:
		var wire struct {
			Content []json.RawMessage `json:"content"`
			Styles  BlockStyles       `json:"styles"`
		}
		if err := decodeInto(raw, path, nodeType, &wire); err != nil {
			return nil, err
		}
		content, err := decodeBlocks(wire.Content, Field(path, "content"))
		if err != nil {
			return nil, err
		}
		return &Quote{Content: content, Styles: wire.Styles}, nil
	case TypeCode:
		var code Code
		if err := decodeInto(raw, path, nodeType, &code); err != nil {
			return nil, err
		}
		return &code, nil
	case TypeList:
		return decodeList(raw, path)
	case TypeTable:
		return decodeTable(raw, path)
	case TypeImage:
		return decodeImage(raw, path)
	case TypeBreak:
		return &Break{}, nil
	case TypeMacroBlock:
		var wire struct {
			Name   string          `json:"name"`
			Params map[string]any  `json:"params"`
			Body   json.RawMessage `json:"body"`
		}
		if err := decodeInto(raw, path, nodeType, &wire); err != nil {
			return nil, err
		}
		params, err := decodeParams(wire.Params, Field(path, "params"))
		if err != nil {
			return nil, err
		}
		body, err := decodeBody(wire.Body, Field(path, "body"))
		if err != nil {
			return nil, err
		}
		blockBody, ok := body.(MacroBlockBody)
		if !ok {
			return nil, Nodef(path, nodeType, ErrMacroBodyKind, "%s body is not allowed on a block macro", body.BodyKind())
		}
		return &MacroBlock{Name: wire.Name, Params: params, Body: blockBody}, nil
	default:
		return nil, Nodef(path, nodeType, ErrUnexpectedNode, "unknown block type %q", nodeType)
	}
}

func decodeList(raw json.RawMessage, path string) (*List, error) {
	var wire struct {
		Items []struct {
			Content []json.RawMessage `json:"content"`
			Number  *int              `json:"number"`
			Checked *bool             `json:"checked"`
			Styles  BlockStyles       `json:"styles"`
		} `json:"items"`
		Styles BlockStyles `json:"styles"`
	}
	if err := decodeInto(raw, path, TypeList, &wire); err != nil {
		return nil, err
	}

	list := &List{Items: make([]ListItem, 0, len(wire.Items)), Styles: wire.Styles}
	for idx, item := range wire.Items {
		itemPath := Index(Field(path, "items"), idx)
		content, err := decodeBlocks(item.Content, Field(itemPath, "content"))
		if err != nil {
			return nil, err
		}
		list.Items = append(list.Items, ListItem{
			Content: content,
			Number:  item.Number,
			Checked: item.Checked,
			Styles:  item.Styles,
		})
	}
	return list, nil
}

type wireCell struct {
	Content []json.RawMessage `json:"content"`
	Styles  BlockStyles       `json:"styles"`
	ColSpan *int              `json:"colSpan"`
	RowSpan *int              `json:"rowSpan"`
}

func (w wireCell) decode(path string) (TableCell, error) {
	content, err := decodeInlines(w.Content, Field(path, "content"))
	if err != nil {
		return TableCell{}, err
	}
	return TableCell{Content: content, Styles: w.Styles, ColSpan: w.ColSpan, RowSpan: w.RowSpan}, nil
}

func decodeTable(raw json.RawMessage, path string) (*Table, error) {
	var wire struct {
		Columns []struct {
			HeaderCell *wireCell `json:"headerCell"`
			WidthPx    *int      `json:"widthPx"`
		} `json:"columns"`
		Rows   [][]wireCell `json:"rows"`
		Styles BlockStyles  `json:"styles"`
	}
	if err := decodeInto(raw, path, TypeTable, &wire); err != nil {
		return nil, err
	}

	table := &Table{Columns: make([]TableColumn, 0, len(wire.Columns)), Styles: wire.Styles}
	for idx, column := range wire.Columns {
		col := TableColumn{WidthPx: column.WidthPx}
		if column.HeaderCell != nil {
			cell, err := column.HeaderCell.decode(Field(Index(Field(path, "columns"), idx), "headerCell"))
			if err != nil {
				return nil, err
			}
			col.HeaderCell = &cell
		}
		table.Columns = append(table.Columns, col)
	}

	table.Rows = make([][]TableCell, 0, len(wire.Rows))
	for rowIdx, row := range wire.Rows {
		cells := make([]TableCell, 0, len(row))
		for cellIdx, wc := range row {
			cell, err := wc.decode(Index(Index(Field(path, "rows"), rowIdx), cellIdx))
			if err != nil {
				return nil, err
			}
			cells = append(cells, cell)
		}
		table.Rows = append(table.Rows, cells)
	}
	return table, nil
}

func decodeImage(raw json.RawMessage, path string) (*Image, error) {
	var wire struct {
		Target  json.RawMessage `json:"target"`
		Caption string          `json:"caption"`
		WidthPx *int            `json:"widthPx"`
		Alt     string          `json:"alt"`
		Styles  ImageStyles     `json:"styles"`
	}
	if err := decodeInto(raw, path, TypeImage, &wire); err != nil {
		return nil, err
	}
	target, err := decodeTarget(wire.Target, Field(path, "target"))
	if err != nil {
		return nil, err
	}
	return &Image{Target: target, Caption: wire.Caption, WidthPx: wire.WidthPx, Alt: wire.Alt, Styles: wire.Styles}, nil
}

func decodeInlines(raws []json.RawMessage, path string) ([]InlineContent, error) {
	if raws == nil {
		return nil, nil
	}
	content := make([]InlineContent, 0, len(raws))
	for idx, raw := range raws {
		inline, err := decodeInline(raw, Index(path, idx))
		if err != nil {
			return nil, err
		}
		content = append(content, inline)
	}
	return content, nil
}

func decodeInline(raw json.RawMessage, path string) (InlineContent, error) {
	nodeType, err := probeType(raw, path)
	if err != nil {
		return nil, err
	}

	switch nodeType {
	case TypeText:
		var text Text
		if err := decodeInto(raw, path, nodeType, &text); err != nil {
			return nil, err
		}
		return &text, nil
	case TypeLink:
		var wire struct {
			Content []json.RawMessage `json:"content"`
			Target  json.RawMessage   `json:"target"`
		}
		if err := decodeInto(raw, path, nodeType, &wire); err != nil {
			return nil, err
		}
		inlines, err := decodeInlines(wire.Content, Field(path, "content"))
		if err != nil {
			return nil, err
		}
		content, err := LinkContents(inlines, Field(path, "content"))
		if err != nil {
			return nil, err
		}
		target, err := decodeTarget(wire.Target, Field(path, "target"))
		if err != nil {
			return nil, err
		}
		return &Link{Content: content, Target: target}, nil
	case TypeImage:
		return decodeImage(raw, path)
	case TypeInlineMacro:
		var wire struct {
			Name   string          `json:"name"`
			Params map[string]any  `json:"params"`
			Body   json.RawMessage `json:"body"`
		}
		if err := decodeInto(raw, path, nodeType, &wire); err != nil {
			return nil, err
		}
		params, err := decodeParams(wire.Params, Field(path, "params"))
		if err != nil {
			return nil, err
		}
		body, err := decodeBody(wire.Body, Field(path, "body"))
		if err != nil {
			return nil, err
		}
		inlineBody, ok := body.(InlineMacroBody)
		if !ok {
			return nil, Nodef(path, nodeType, ErrMacroBodyKind, "%s body is not allowed on an inline macro", body.BodyKind())
		}
		return &InlineMacro{Name: wire.Name, Params: params, Body: inlineBody}, nil
	case TypeSubscript:
		var sub Subscript
		if err := decodeInto(raw, path, nodeType, &sub); err != nil {
			return nil, err
		}
		return &sub, nil
	case TypeSuperscript:
		var sup Superscript
		if err := decodeInto(raw, path, nodeType, &sup); err != nil {
			return nil, err
		}
		return &sup, nil
	default:
		return nil, Nodef(path, nodeType, ErrUnexpectedNode, "unknown inline type %q", nodeType)
	}
}

// LinkContents narrows inline nodes to link content, rejecting nested links.
func LinkContents(inlines []InlineContent, path string) ([]LinkContent, error) {
	content := make([]LinkContent, 0, len(inlines))
	for idx, inline := range inlines {
		lc, ok := inline.(LinkContent)
		if !ok {
			return nil, Nodef(Index(path, idx), inline.NodeType(), ErrNestedLink, "links cannot contain links")
		}
		content = append(content, lc)
	}
	return content, nil
}

func decodeTarget(raw json.RawMessage, path string) (LinkTarget, error) {
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, Nodef(path, "", ErrInvalidDocument, "missing target")
	}
	targetType, err := probeType(raw, path)
	if err != nil {
		return nil, err
	}

	switch targetType {
	case TargetExternal:
		var target ExternalTarget
		if err := decodeInto(raw, path, targetType, &target); err != nil {
			return nil, err
		}
		return &target, nil
	case TargetInternal:
		var target InternalTarget
		if err := decodeInto(raw, path, targetType, &target); err != nil {
			return nil, err
		}
		return &target, nil
	default:
		return nil, Nodef(path, targetType, ErrUnexpectedNode, "unknown target type %q", targetType)
	}
}

// decodedBody is implemented by every body; it is asserted to the block or
// inline body interface by the caller.
type decodedBody interface {
	BodyKind() MacroBodyKind
}

func decodeBody(raw json.RawMessage, path string) (decodedBody, error) {
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return NoBody{}, nil
	}
	kind, err := probeType(raw, path)
	if err != nil {
		return nil, err
	}

	switch MacroBodyKind(kind) {
	case BodyNone:
		return NoBody{}, nil
	case BodyRaw:
		var body RawBody
		if err := decodeInto(raw, path, kind, &body); err != nil {
			return nil, err
		}
		return body, nil
	case BodyInlineContents:
		var wire struct {
			Content []json.RawMessage `json:"content"`
		}
		if err := decodeInto(raw, path, kind, &wire); err != nil {
			return nil, err
		}
		content, err := decodeInlines(wire.Content, Field(path, "content"))
		if err != nil {
			return nil, err
		}
		return InlineContentsBody{Content: content}, nil
	case BodyInlineContent:
		var wire struct {
			Content json.RawMessage `json:"content"`
		}
		if err := decodeInto(raw, path, kind, &wire); err != nil {
			return nil, err
		}
		content, err := decodeInline(wire.Content, Field(path, "content"))
		if err != nil {
			return nil, err
		}
		return InlineContentBody{Content: content}, nil
	default:
		return nil, Nodef(path, kind, ErrMacroBodyKind, "unknown body kind %q", kind)
	}
}

func decodeParams(raw map[string]any, path string) (Params, error) {
	params := make(Params, len(raw))
	for key, value := range raw {
		param, err := ParamFromAny(value)
		if err != nil {
			return nil, NewNodeError(Field(path, key), "", err)
		}
		params[key] = param
	}
	return params, nil
}
