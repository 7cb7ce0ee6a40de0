package converter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rgonek/uniast-converter/macro"
	"github.com/rgonek/uniast-converter/uniast"
)

func testRegistry() macro.Registry {
	return macro.MustCatalog(
		macro.Definition{ID: "toc", Body: uniast.BodyNone},
		macro.Definition{ID: "code", Body: uniast.BodyRaw},
		macro.Definition{ID: "info", Body: uniast.BodyInlineContents},
		macro.Definition{ID: "mention", Body: uniast.BodyNone},
		macro.Definition{ID: "emph", Body: uniast.BodyInlineContent},
	)
}

func TestMacroBlocks(t *testing.T) {
	cfg := Config{Registry: testRegistry()}

	t.Run("no body", func(t *testing.T) {
		result := mustConvertJSON(t, cfg, `[{"type":"Macro_toc","props":{"depth":2,"numbered":true,"title":"Contents"}}]`)
		require.Len(t, result.Document.Blocks, 1)
		assert.Equal(t, &uniast.MacroBlock{
			Name: "toc",
			Params: uniast.Params{
				"depth":    uniast.NumberValue(2),
				"numbered": uniast.BoolValue(true),
				"title":    uniast.StringValue("Contents"),
			},
			Body: uniast.NoBody{},
		}, result.Document.Blocks[0])
	})

	t.Run("raw body", func(t *testing.T) {
		result := mustConvertJSON(t, cfg, `[{"type":"Macro_code","content":[{"type":"text","text":"a"},{"type":"text","text":"b"}]}]`)
		block := result.Document.Blocks[0].(*uniast.MacroBlock)
		assert.Equal(t, uniast.RawBody{Content: "ab"}, block.Body)
		assert.Equal(t, uniast.Params{}, block.Params)
	})

	t.Run("inline contents body", func(t *testing.T) {
		result := mustConvertJSON(t, cfg, `[{"type":"Macro_info","content":[{"type":"text","text":"note","styles":{"bold":true}}]}]`)
		block := result.Document.Blocks[0].(*uniast.MacroBlock)
		assert.Equal(t, uniast.InlineContentsBody{Content: []uniast.InlineContent{
			&uniast.Text{Content: "note", Styles: uniast.TextStyles{Bold: true}},
		}}, block.Body)
	})

	t.Run("none body with content is an error", func(t *testing.T) {
		_, err := convertJSON(t, cfg, `[{"type":"Macro_toc","content":[{"type":"text","text":"x"}]}]`)
		assert.ErrorIs(t, err, uniast.ErrMacroBodyKind)
	})

	t.Run("inline content kind on a block", func(t *testing.T) {
		_, err := convertJSON(t, cfg, `[{"type":"Macro_emph","content":[]}]`)
		assert.ErrorIs(t, err, uniast.ErrMacroBodyKind)
	})

	t.Run("unregistered", func(t *testing.T) {
		_, err := convertJSON(t, cfg, `[{"type":"Macro_chart"}]`)
		require.Error(t, err)
		assert.ErrorIs(t, err, uniast.ErrUnknownMacro)
		assert.Contains(t, err.Error(), `"chart"`)
	})

	t.Run("unregistered without registry", func(t *testing.T) {
		_, err := convertJSON(t, Config{}, `[{"type":"Macro_toc"}]`)
		assert.ErrorIs(t, err, uniast.ErrUnknownMacro)
	})

	t.Run("children are rejected", func(t *testing.T) {
		_, err := convertJSON(t, cfg, `[{"type":"Macro_toc","children":[{"type":"paragraph"}]}]`)
		assert.ErrorIs(t, err, uniast.ErrUnexpectedChildren)
	})

	t.Run("non primitive param", func(t *testing.T) {
		_, err := convertJSON(t, cfg, `[{"type":"Macro_toc","props":{"levels":[1,2]}}]`)
		require.Error(t, err)
		assert.ErrorIs(t, err, uniast.ErrInvalidParam)
		assert.Contains(t, err.Error(), "blocks[0].props.levels")
	})
}

func TestInlineMacros(t *testing.T) {
	cfg := Config{Registry: testRegistry()}

	t.Run("no body", func(t *testing.T) {
		result := mustConvertJSON(t, cfg, `[{"type":"paragraph","content":[{"type":"Macro_mention","props":{"user":"alice"}}]}]`)
		para := result.Document.Blocks[0].(*uniast.Paragraph)
		assert.Equal(t, &uniast.InlineMacro{
			Name:   "mention",
			Params: uniast.Params{"user": uniast.StringValue("alice")},
			Body:   uniast.NoBody{},
		}, para.Content[0])
	})

	t.Run("single inline content", func(t *testing.T) {
		result := mustConvertJSON(t, cfg, `[{"type":"paragraph","content":[{"type":"Macro_emph","content":[{"type":"text","text":"hi"}]}]}]`)
		m := result.Document.Blocks[0].(*uniast.Paragraph).Content[0].(*uniast.InlineMacro)
		assert.Equal(t, uniast.InlineContentBody{Content: text("hi")}, m.Body)
	})

	t.Run("raw body", func(t *testing.T) {
		result := mustConvertJSON(t, cfg, `[{"type":"paragraph","content":[{"type":"Macro_code","content":[{"type":"text","text":"x<y"}]}]}]`)
		m := result.Document.Blocks[0].(*uniast.Paragraph).Content[0].(*uniast.InlineMacro)
		assert.Equal(t, uniast.RawBody{Content: "x<y"}, m.Body)
	})

	t.Run("single inline content needs one node", func(t *testing.T) {
		_, err := convertJSON(t, cfg, `[{"type":"paragraph","content":[{"type":"Macro_emph","content":[]}]}]`)
		assert.ErrorIs(t, err, uniast.ErrMacroBodyKind)
	})

	t.Run("none body with content is an error", func(t *testing.T) {
		_, err := convertJSON(t, cfg, `[{"type":"paragraph","content":[{"type":"Macro_mention","content":[{"type":"text","text":"x"}]}]}]`)
		assert.ErrorIs(t, err, uniast.ErrMacroBodyKind)
	})

	t.Run("inline contents kind inline", func(t *testing.T) {
		_, err := convertJSON(t, cfg, `[{"type":"paragraph","content":[{"type":"Macro_info","content":[]}]}]`)
		assert.ErrorIs(t, err, uniast.ErrMacroBodyKind)
	})
}
