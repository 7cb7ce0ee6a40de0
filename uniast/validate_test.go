package uniast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func paragraph(text string) *Paragraph {
	return &Paragraph{Content: []InlineContent{&Text{Content: text}}}
}

func TestValidateAcceptsSample(t *testing.T) {
	require.NoError(t, Validate(sampleDocument()))
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name    string
		doc     *Document
		wantErr error
		path    string
	}{
		{
			name:    "empty list",
			doc:     &Document{Blocks: []Block{&List{}}},
			wantErr: ErrMalformedList,
			path:    "blocks[0]",
		},
		{
			name: "item without paragraph",
			doc: &Document{Blocks: []Block{&List{Items: []ListItem{
				{Content: []Block{&Code{Content: "x"}}},
			}}}},
			wantErr: ErrMalformedList,
			path:    "blocks[0].items[0].content[0]",
		},
		{
			name: "second element not a list",
			doc: &Document{Blocks: []Block{&List{Items: []ListItem{
				{Content: []Block{paragraph("a"), paragraph("b")}},
			}}}},
			wantErr: ErrMalformedList,
			path:    "blocks[0].items[0].content[1]",
		},
		{
			name: "numbered and checked",
			doc: &Document{Blocks: []Block{&List{Items: []ListItem{
				{Content: []Block{paragraph("a")}, Number: IntPtr(1), Checked: BoolPtr(false)},
			}}}},
			wantErr: ErrMalformedList,
			path:    "blocks[0].items[0]",
		},
		{
			name: "gap in numbering",
			doc: &Document{Blocks: []Block{&List{Items: []ListItem{
				{Content: []Block{paragraph("a")}, Number: IntPtr(1)},
				{Content: []Block{paragraph("b")}, Number: IntPtr(3)},
			}}}},
			wantErr: ErrMalformedList,
			path:    "blocks[0].items[1]",
		},
		{
			name:    "heading level",
			doc:     &Document{Blocks: []Block{&Heading{Level: 7}}},
			wantErr: ErrInvalidDocument,
			path:    "blocks[0]",
		},
		{
			name: "link inside inline macro inside link",
			doc: &Document{Blocks: []Block{&Paragraph{Content: []InlineContent{
				&Link{
					Target: &ExternalTarget{URL: "a"},
					Content: []LinkContent{&InlineMacro{Name: "m", Body: InlineContentBody{
						Content: &Link{Target: &ExternalTarget{URL: "b"}},
					}}},
				},
			}}}},
			wantErr: ErrNestedLink,
			path:    "blocks[0].content[0].content[0].body.content",
		},
		{
			name:    "image without target",
			doc:     &Document{Blocks: []Block{&Image{}}},
			wantErr: ErrInvalidDocument,
			path:    "blocks[0].target",
		},
		{
			name:    "empty internal target",
			doc:     &Document{Blocks: []Block{&Image{Target: &InternalTarget{}}}},
			wantErr: ErrInvalidDocument,
			path:    "blocks[0].target",
		},
		{
			name:    "nil block",
			doc:     &Document{Blocks: []Block{nil}},
			wantErr: ErrUnexpectedNode,
			path:    "blocks[0]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.doc)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)

			var nodeErr *NodeError
			require.ErrorAs(t, err, &nodeErr)
			assert.Equal(t, tt.path, nodeErr.Path)
		})
	}
}

func TestValidateMixedListNumbering(t *testing.T) {
	doc := &Document{Blocks: []Block{&List{Items: []ListItem{
		{Content: []Block{paragraph("a")}, Number: IntPtr(5)},
		{Content: []Block{paragraph("b")}},
		{Content: []Block{paragraph("c")}, Number: IntPtr(1)},
	}}}}
	assert.NoError(t, Validate(doc))
}

func TestNodeErrorMessage(t *testing.T) {
	err := Nodef("blocks[1]", TypeCode, ErrUnexpectedNode, "inline %s", "link")
	assert.Equal(t, "blocks[1] (code): unexpected node: inline link", err.Error())
	assert.ErrorIs(t, err, ErrUnexpectedNode)
}
