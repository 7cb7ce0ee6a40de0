package uniast

import (
	"encoding/json"
	"testing"

	"github.com/rgonek/uniast-converter/reference"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDocument() *Document {
	return &Document{Blocks: []Block{
		&Heading{Level: 2, Content: []InlineContent{&Text{Content: "Title", Styles: TextStyles{Bold: true}}}},
		&Paragraph{
			Content: []InlineContent{
				&Text{Content: "see "},
				&Link{
					Content: []LinkContent{&Text{Content: "home", Styles: TextStyles{Italic: true, TextColor: "red"}}},
					Target: &InternalTarget{
						ParsedReference: &reference.EntityReference{Kind: reference.KindDocument, Space: []string{"Main"}, Page: "WebHome"},
						RawReference:    "Main.WebHome",
					},
				},
				&InlineMacro{Name: "status", Params: Params{"color": StringValue("green"), "count": NumberValue(2), "strong": BoolValue(true)}, Body: NoBody{}},
				&Subscript{Content: "2"},
			},
			Styles: BlockStyles{TextAlignment: "center"},
		},
		&List{Items: []ListItem{
			{
				Content: []Block{
					&Paragraph{Content: []InlineContent{&Text{Content: "one"}}},
					&List{Items: []ListItem{{Content: []Block{&Paragraph{Content: []InlineContent{&Text{Content: "nested"}}}}, Checked: BoolPtr(true)}}},
				},
				Number: IntPtr(3),
			},
			{Content: []Block{&Paragraph{Content: []InlineContent{&Text{Content: "two"}}}}, Number: IntPtr(4)},
		}},
		&Table{
			Columns: []TableColumn{{HeaderCell: &TableCell{Content: []InlineContent{&Text{Content: "h"}}}, WidthPx: IntPtr(120)}},
			Rows:    [][]TableCell{{{Content: []InlineContent{&Text{Content: "c"}}, ColSpan: IntPtr(1)}}},
		},
		&Image{Target: &ExternalTarget{URL: "http://example.com/a.png"}, Alt: "a", WidthPx: IntPtr(50), Styles: ImageStyles{Alignment: "left"}},
		&Code{Content: "x := 1", Language: "go"},
		&Quote{Content: []Block{&Paragraph{Content: []InlineContent{&Superscript{Content: "th"}}}}},
		&Break{},
		&MacroBlock{Name: "code", Params: Params{}, Body: RawBody{Content: "raw text"}},
		&MacroBlock{Name: "info", Params: Params{}, Body: InlineContentsBody{Content: []InlineContent{&Text{Content: "note"}}}},
		&MacroBlock{Name: "toc", Params: Params{}, Body: NoBody{}},
	}}
}

func TestDocumentJSONRoundTrip(t *testing.T) {
	doc := sampleDocument()

	data, err := json.Marshal(doc)
	require.NoError(t, err)

	var decoded Document
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, doc, &decoded)
}

func TestMarshalUsesTypeDiscriminators(t *testing.T) {
	data, err := json.Marshal(&Paragraph{Content: []InlineContent{&Text{Content: "a"}}})
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"type": "paragraph",
		"content": [{"type": "text", "content": "a", "styles": {"bold": false, "italic": false, "underline": false, "strikethrough": false, "code": false}}],
		"styles": {}
	}`, string(data))

	data, err = json.Marshal(&Break{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"break"}`, string(data))

	data, err = json.Marshal(&MacroBlock{Name: "toc"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"macroBlock","name":"toc","params":{}}`, string(data))
}

func TestUnmarshalErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{
			name:    "unknown block",
			input:   `{"blocks":[{"type":"video"}]}`,
			wantErr: ErrUnexpectedNode,
		},
		{
			name:    "nested link",
			input:   `{"blocks":[{"type":"paragraph","content":[{"type":"link","target":{"type":"external","url":"x"},"content":[{"type":"link","target":{"type":"external","url":"y"},"content":[]}]}]}]}`,
			wantErr: ErrNestedLink,
		},
		{
			name:    "inline body on block macro",
			input:   `{"blocks":[{"type":"macroBlock","name":"m","params":{},"body":{"type":"inlineContent","content":{"type":"text","content":"x","styles":{}}}}]}`,
			wantErr: ErrMacroBodyKind,
		},
		{
			name:    "object param",
			input:   `{"blocks":[{"type":"macroBlock","name":"m","params":{"a":{"b":1}}}]}`,
			wantErr: ErrInvalidParam,
		},
		{
			name:    "image without target",
			input:   `{"blocks":[{"type":"image","alt":"x"}]}`,
			wantErr: ErrInvalidDocument,
		},
		{
			name:    "blocks not an array",
			input:   `{"blocks":{}}`,
			wantErr: ErrInvalidDocument,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var doc Document
			err := json.Unmarshal([]byte(tt.input), &doc)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestUnmarshalReportsPath(t *testing.T) {
	var doc Document
	err := json.Unmarshal([]byte(`{"blocks":[{"type":"break"},{"type":"quote","content":[{"type":"bogus"}]}]}`), &doc)

	var nodeErr *NodeError
	require.ErrorAs(t, err, &nodeErr)
	assert.Equal(t, "blocks[1].content[0]", nodeErr.Path)
}

func TestParams(t *testing.T) {
	params := Params{"b": NumberValue(1.5), "a": BoolValue(false), "c": StringValue("x")}
	assert.Equal(t, []string{"a", "b", "c"}, params.Keys())
	assert.Equal(t, "1.5", params["b"].String())
	assert.Equal(t, "false", params["a"].String())

	value, err := ParamFromAny(3)
	require.NoError(t, err)
	assert.Equal(t, NumberValue(3), value)

	_, err = ParamFromAny(nil)
	assert.ErrorIs(t, err, ErrInvalidParam)

	raw, err := ParamToAny(StringValue("s"))
	require.NoError(t, err)
	assert.Equal(t, "s", raw)
}

func TestBodyKindPlacement(t *testing.T) {
	assert.True(t, BodyInlineContents.AllowedInBlock())
	assert.False(t, BodyInlineContent.AllowedInBlock())
	assert.True(t, BodyInlineContent.AllowedInline())
	assert.False(t, BodyInlineContents.AllowedInline())
	assert.False(t, MacroBodyKind("html").Valid())
	assert.Equal(t, BodyNone, BlockBodyKind(nil))
	assert.Equal(t, BodyNone, InlineBodyKind(nil))
}
