package reference

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCodec(t *testing.T) *WikiURLCodec {
	t.Helper()
	codec, err := NewWikiURLCodec("https://wiki.example.com/xwiki", "xwiki")
	require.NoError(t, err)
	return codec
}

func TestWikiURLCodecParse(t *testing.T) {
	codec := newTestCodec(t)
	ctx := context.Background()

	ref, err := codec.ParseURL(ctx, "https://wiki.example.com/xwiki/bin/view/Main/Sub/My%20Page", KindDocument)
	require.NoError(t, err)
	assert.Equal(t, &EntityReference{Kind: KindDocument, Wiki: "xwiki", Space: []string{"Main", "Sub"}, Page: "My Page"}, ref)

	ref, err = codec.ParseURL(ctx, "https://wiki.example.com/xwiki/bin/download/Main/Page/logo.png", KindAttachment)
	require.NoError(t, err)
	assert.Equal(t, &EntityReference{Kind: KindAttachment, Wiki: "xwiki", Space: []string{"Main"}, Page: "Page", Attachment: "logo.png"}, ref)
}

func TestWikiURLCodecParseFailures(t *testing.T) {
	codec := newTestCodec(t)
	ctx := context.Background()

	tests := []struct {
		name string
		url  string
		kind Kind
	}{
		{"foreign host", "http://somewhere.somewhere", KindDocument},
		{"outside base path", "https://wiki.example.com/other/bin/view/Main/Page", KindDocument},
		{"page as image", "https://wiki.example.com/xwiki/bin/view/Main/Page", KindAttachment},
		{"unknown action", "https://wiki.example.com/xwiki/bin/edit/Main/Page", KindDocument},
		{"missing page", "https://wiki.example.com/xwiki/bin/view/Main", KindDocument},
		{"not a url", "%zz", KindDocument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := codec.ParseURL(ctx, tt.url, tt.kind)
			assert.ErrorIs(t, err, ErrInvalidReference)
		})
	}
}

func TestWikiURLCodecSerializeRoundTrip(t *testing.T) {
	codec := newTestCodec(t)
	ctx := context.Background()

	refs := []*EntityReference{
		{Kind: KindDocument, Space: []string{"Main", "Sub dir"}, Page: "Page/One"},
		{Kind: KindAttachment, Wiki: "xwiki", Space: []string{"Main"}, Page: "Page", Attachment: "a b.png"},
	}
	for _, ref := range refs {
		t.Run(ref.String(), func(t *testing.T) {
			u, err := codec.SerializeURL(ctx, ref)
			require.NoError(t, err)

			parsed, err := codec.ParseURL(ctx, u, ref.Kind)
			require.NoError(t, err)
			assert.Equal(t, ref.Space, parsed.Space)
			assert.Equal(t, ref.Page, parsed.Page)
			assert.Equal(t, ref.Attachment, parsed.Attachment)
		})
	}
}

func TestWikiURLCodecSerializeShape(t *testing.T) {
	codec := newTestCodec(t)
	u, err := codec.SerializeURL(context.Background(), &EntityReference{Kind: KindDocument, Space: []string{"Main"}, Page: "WebHome"})
	require.NoError(t, err)
	assert.Equal(t, "https://wiki.example.com/xwiki/bin/view/Main/WebHome", u)
}

func TestWikiURLCodecSerializeRejectsForeignWiki(t *testing.T) {
	codec := newTestCodec(t)
	_, err := codec.SerializeURL(context.Background(), &EntityReference{Kind: KindDocument, Wiki: "other", Space: []string{"Main"}, Page: "P"})
	assert.ErrorIs(t, err, ErrInvalidReference)
}

func TestNewWikiURLCodecValidatesBase(t *testing.T) {
	_, err := NewWikiURLCodec("/relative", "xwiki")
	assert.Error(t, err)
}
