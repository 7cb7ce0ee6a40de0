package converter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rgonek/uniast-converter/macro"
	"github.com/rgonek/uniast-converter/reference"
	"github.com/rgonek/uniast-converter/uniast"
)

var update = flag.Bool("update", false, "update golden files")

func newTestConverter(t testing.TB, cfg Config) *Converter {
	t.Helper()

	conv, err := New(cfg)
	require.NoError(t, err)

	return conv
}

func convertJSON(t *testing.T, cfg Config, input string) (Result, error) {
	t.Helper()
	return newTestConverter(t, cfg).ConvertJSON(context.Background(), []byte(input))
}

func mustConvertJSON(t *testing.T, cfg Config, input string) Result {
	t.Helper()
	result, err := convertJSON(t, cfg, input)
	require.NoError(t, err)
	require.NotNil(t, result.Document)
	return result
}

func text(content string) *uniast.Text {
	return &uniast.Text{Content: content}
}

type fakeURLParser struct {
	calls atomic.Int32
	parse func(rawURL string, kind reference.Kind) (*reference.EntityReference, error)
}

func (p *fakeURLParser) ParseURL(_ context.Context, rawURL string, kind reference.Kind) (*reference.EntityReference, error) {
	p.calls.Add(1)
	return p.parse(rawURL, kind)
}

func TestGoldenFiles(t *testing.T) {
	testDataDir := "../testdata/blocknote"

	err := filepath.Walk(testDataDir, func(path string, info os.FileInfo, err error) error {
		require.NoError(t, err)

		if info.IsDir() || filepath.Ext(path) != ".json" || strings.HasSuffix(path, ".uniast.json") {
			return nil
		}

		t.Run(path, func(t *testing.T) {
			input, err := os.ReadFile(path)
			require.NoError(t, err)

			goldenPath := strings.TrimSuffix(path, ".json") + ".uniast.json"

			conv := newTestConverter(t, Config{})
			result, err := conv.ConvertJSON(context.Background(), input)
			require.NoError(t, err)
			output, err := json.MarshalIndent(result.Document, "", "  ")
			require.NoError(t, err)

			if *update {
				require.NoError(t, os.WriteFile(goldenPath, append(output, '\n'), 0644))
				t.Logf("Updated golden file: %s", goldenPath)
				return
			}

			expected, err := os.ReadFile(goldenPath)
			if os.IsNotExist(err) {
				t.Fatalf("Golden file missing: %s. Run with -update to create it.", goldenPath)
			}
			require.NoError(t, err)
			assert.JSONEq(t, string(expected), string(output))
		})

		return nil
	})
	require.NoError(t, err)
}

func TestEmptyInput(t *testing.T) {
	result := mustConvertJSON(t, Config{}, `[]`)
	assert.Equal(t, []uniast.Block{}, result.Document.Blocks)
	assert.Empty(t, result.Warnings)
}

func TestListFolding(t *testing.T) {
	t.Run("adjacent items merge", func(t *testing.T) {
		result := mustConvertJSON(t, Config{}, `[
			{"type":"bulletListItem","content":[{"type":"text","text":"1"}]},
			{"type":"bulletListItem","content":[{"type":"text","text":"2"}]},
			{"type":"bulletListItem","content":[{"type":"text","text":"3"}]}
		]`)
		require.Len(t, result.Document.Blocks, 1)
		list := result.Document.Blocks[0].(*uniast.List)
		require.Len(t, list.Items, 3)
		for idx, item := range list.Items {
			para := item.Content[0].(*uniast.Paragraph)
			assert.Equal(t, []uniast.InlineContent{text(string(rune('1' + idx)))}, para.Content)
			assert.Nil(t, item.Number)
			assert.Nil(t, item.Checked)
		}
	})

	t.Run("separated runs stay separate", func(t *testing.T) {
		result := mustConvertJSON(t, Config{}, `[
			{"type":"bulletListItem","content":[]},
			{"type":"paragraph","content":[]},
			{"type":"bulletListItem","content":[]}
		]`)
		require.Len(t, result.Document.Blocks, 3)
		assert.IsType(t, &uniast.List{}, result.Document.Blocks[0])
		assert.IsType(t, &uniast.Paragraph{}, result.Document.Blocks[1])
		assert.IsType(t, &uniast.List{}, result.Document.Blocks[2])
	})

	t.Run("numbers are recomputed", func(t *testing.T) {
		result := mustConvertJSON(t, Config{}, `[
			{"type":"numberedListItem","props":{"start":5},"content":[]},
			{"type":"numberedListItem","props":{"start":1},"content":[]},
			{"type":"numberedListItem","content":[]}
		]`)
		list := result.Document.Blocks[0].(*uniast.List)
		var numbers []int
		for _, item := range list.Items {
			require.NotNil(t, item.Number)
			numbers = append(numbers, *item.Number)
		}
		assert.Equal(t, []int{5, 6, 7}, numbers)
	})

	t.Run("numbering defaults to one", func(t *testing.T) {
		result := mustConvertJSON(t, Config{}, `[{"type":"numberedListItem","content":[]}]`)
		list := result.Document.Blocks[0].(*uniast.List)
		assert.Equal(t, 1, *list.Items[0].Number)
	})

	t.Run("unchecked checklist item", func(t *testing.T) {
		result := mustConvertJSON(t, Config{}, `[{"type":"checkListItem","content":[]}]`)
		list := result.Document.Blocks[0].(*uniast.List)
		require.NotNil(t, list.Items[0].Checked)
		assert.False(t, *list.Items[0].Checked)
	})

	t.Run("children must fold into one list", func(t *testing.T) {
		_, err := convertJSON(t, Config{}, `[
			{"type":"bulletListItem","content":[],"children":[
				{"type":"bulletListItem","content":[]},
				{"type":"paragraph","content":[]}
			]}
		]`)
		require.Error(t, err)
		assert.ErrorIs(t, err, uniast.ErrMalformedList)

		var nodeErr *uniast.NodeError
		require.ErrorAs(t, err, &nodeErr)
		assert.Equal(t, "blocks[0].children", nodeErr.Path)
	})

	t.Run("non list children", func(t *testing.T) {
		_, err := convertJSON(t, Config{}, `[
			{"type":"bulletListItem","content":[],"children":[{"type":"paragraph","content":[]}]}
		]`)
		assert.ErrorIs(t, err, uniast.ErrMalformedList)
	})
}

func TestHeadings(t *testing.T) {
	tests := []struct {
		name  string
		block string
		level int
	}{
		{"level three", `{"type":"heading","props":{"level":3},"content":[]}`, 3},
		{"string level", `{"type":"heading","props":{"level":"2"},"content":[]}`, 2},
		{"missing level", `{"type":"heading","content":[]}`, 1},
		{"legacy four", `{"type":"Heading4","content":[]}`, 4},
		{"legacy six", `{"type":"Heading6","content":[]}`, 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := mustConvertJSON(t, Config{}, "["+tt.block+"]")
			require.Len(t, result.Document.Blocks, 1)
			assert.Equal(t, tt.level, result.Document.Blocks[0].(*uniast.Heading).Level)
		})
	}
}

func TestHeadingOverflow(t *testing.T) {
	input := `[{"type":"heading","props":{"level":9},"content":[]}]`

	result := mustConvertJSON(t, Config{}, input)
	assert.Equal(t, 6, result.Document.Blocks[0].(*uniast.Heading).Level)
	require.Len(t, result.Warnings, 1)
	assert.Equal(t, WarningClampedValue, result.Warnings[0].Type)

	_, err := convertJSON(t, Config{HeadingOverflow: HeadingError}, input)
	assert.ErrorIs(t, err, uniast.ErrUnexpectedNode)
}

func TestHugeNumericProps(t *testing.T) {
	result := mustConvertJSON(t, Config{}, `[
		{"type":"heading","props":{"level":1e300},"content":[]},
		{"type":"heading","props":{"level":-1e300},"content":[]},
		{"type":"image","props":{"url":"https://example.com/a.png","previewWidth":1e300}}
	]`)
	require.Len(t, result.Document.Blocks, 3)
	assert.Equal(t, 6, result.Document.Blocks[0].(*uniast.Heading).Level)
	assert.Equal(t, 1, result.Document.Blocks[1].(*uniast.Heading).Level)
	require.Len(t, result.Warnings, 2)
	assert.Contains(t, result.Warnings[0].Message, "clamped to 6")

	image := result.Document.Blocks[2].(*uniast.Paragraph).Content[0].(*uniast.Image)
	require.NotNil(t, image.WidthPx)
	assert.Equal(t, math.MaxInt, *image.WidthPx)
}

func TestPropsInt(t *testing.T) {
	props := Props{"small": 2.6, "big": 1e300, "low": -1e300, "text": "7", "bad": "x"}

	n, ok := props.Int("small")
	assert.True(t, ok)
	assert.Equal(t, 3, n)

	n, _ = props.Int("big")
	assert.Equal(t, math.MaxInt, n)

	n, _ = props.Int("low")
	assert.Equal(t, math.MinInt, n)

	n, ok = props.Int("text")
	assert.True(t, ok)
	assert.Equal(t, 7, n)

	_, ok = props.Int("bad")
	assert.False(t, ok)
	_, ok = props.Int("missing")
	assert.False(t, ok)
}

func TestNoChildrenAllowed(t *testing.T) {
	for _, blockType := range []string{"paragraph", "quote", "codeBlock", "divider", "table"} {
		t.Run(blockType, func(t *testing.T) {
			_, err := convertJSON(t, Config{}, `[{"type":"`+blockType+`","children":[{"type":"paragraph"}]}]`)
			assert.ErrorIs(t, err, uniast.ErrUnexpectedChildren)
		})
	}
}

func TestCodeRejectsNonText(t *testing.T) {
	_, err := convertJSON(t, Config{}, `[
		{"type":"codeBlock","content":[{"type":"text","text":"x"},{"type":"link","href":"https://a","content":[]}]}
	]`)
	require.Error(t, err)
	assert.ErrorIs(t, err, uniast.ErrUnexpectedNode)
	assert.Contains(t, err.Error(), "blocks[0].content[1]")
}

func TestImageDrop(t *testing.T) {
	result := mustConvertJSON(t, Config{}, `[
		{"type":"image","props":{"name":"nothing"}},
		{"type":"paragraph","content":[]}
	]`)
	require.Len(t, result.Document.Blocks, 1)
	assert.IsType(t, &uniast.Paragraph{}, result.Document.Blocks[0])
	require.Len(t, result.Warnings, 1)
	assert.Equal(t, WarningDroppedBlock, result.Warnings[0].Type)
	assert.Equal(t, BlockImage, result.Warnings[0].NodeType)
}

func TestTableWithoutRows(t *testing.T) {
	result := mustConvertJSON(t, Config{}, `[
		{"type":"table","content":{"type":"tableContent","columnWidths":[50,60],"rows":[]}}
	]`)
	table := result.Document.Blocks[0].(*uniast.Table)
	require.Len(t, table.Columns, 2)
	assert.Nil(t, table.Columns[0].HeaderCell)
	assert.Equal(t, 60, *table.Columns[1].WidthPx)
	assert.Empty(t, table.Rows)
}

func TestTextStyleDefaulting(t *testing.T) {
	result := mustConvertJSON(t, Config{}, `[
		{"type":"paragraph","content":[
			{"type":"text","text":"plain"},
			{"type":"text","text":"styled","styles":{"strike":true,"code":true,"underline":true,"backgroundColor":"blue","textColor":"default"}}
		]}
	]`)
	para := result.Document.Blocks[0].(*uniast.Paragraph)
	assert.Equal(t, uniast.TextStyles{}, para.Content[0].(*uniast.Text).Styles)
	assert.Equal(t, uniast.TextStyles{
		Underline:       true,
		Strikethrough:   true,
		Code:            true,
		BackgroundColor: "blue",
	}, para.Content[1].(*uniast.Text).Styles)

	data, err := json.Marshal(para.Content[0])
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"text","content":"plain","styles":{"bold":false,"italic":false,"underline":false,"strikethrough":false,"code":false}}`, string(data))
}

func TestLinks(t *testing.T) {
	t.Run("nested link is rejected", func(t *testing.T) {
		result, err := convertJSON(t, Config{}, `[
			{"type":"paragraph","content":[
				{"type":"link","href":"https://a","content":[
					{"type":"link","href":"https://b","content":[{"type":"text","text":"x"}]}
				]}
			]}
		]`)
		require.Error(t, err)
		assert.ErrorIs(t, err, uniast.ErrNestedLink)
		assert.Nil(t, result.Document)
	})

	t.Run("nested link inside inline macro body", func(t *testing.T) {
		cfg := Config{Registry: macro.MustCatalog(macro.Definition{ID: "wrap", Body: uniast.BodyInlineContent})}
		_, err := convertJSON(t, cfg, `[
			{"type":"paragraph","content":[
				{"type":"link","href":"https://a","content":[
					{"type":"Macro_wrap","content":[{"type":"link","href":"https://b","content":[]}]}
				]}
			]}
		]`)
		assert.ErrorIs(t, err, uniast.ErrNestedLink)
	})

	t.Run("unresolvable URL stays external", func(t *testing.T) {
		parser := &fakeURLParser{parse: func(string, reference.Kind) (*reference.EntityReference, error) {
			return nil, errors.New("lookup failed")
		}}
		raw := "https://example.com/some path?q=1#frag"
		result := mustConvertJSON(t, Config{URLParser: parser}, `[
			{"type":"paragraph","content":[{"type":"link","href":"`+raw+`","content":[{"type":"text","text":"x"}]}]}
		]`)

		link := result.Document.Blocks[0].(*uniast.Paragraph).Content[0].(*uniast.Link)
		assert.Equal(t, &uniast.ExternalTarget{URL: raw}, link.Target)
		assert.Equal(t, []uniast.LinkContent{text("x")}, link.Content)
		require.Len(t, result.Warnings, 1)
		assert.Equal(t, WarningUnresolvedReference, result.Warnings[0].Type)
	})

	t.Run("invalid reference is silent", func(t *testing.T) {
		parser := &fakeURLParser{parse: func(string, reference.Kind) (*reference.EntityReference, error) {
			return nil, reference.ErrInvalidReference
		}}
		result := mustConvertJSON(t, Config{URLParser: parser}, `[
			{"type":"paragraph","content":[{"type":"link","href":"https://elsewhere","content":[]}]}
		]`)
		assert.Empty(t, result.Warnings)
	})

	t.Run("panicking parser falls back", func(t *testing.T) {
		parser := &fakeURLParser{parse: func(string, reference.Kind) (*reference.EntityReference, error) {
			panic("boom")
		}}
		result := mustConvertJSON(t, Config{URLParser: parser}, `[
			{"type":"paragraph","content":[{"type":"link","href":"https://a","content":[]}]}
		]`)
		link := result.Document.Blocks[0].(*uniast.Paragraph).Content[0].(*uniast.Link)
		assert.Equal(t, &uniast.ExternalTarget{URL: "https://a"}, link.Target)
	})

	t.Run("resolved targets keep document order", func(t *testing.T) {
		parser := &fakeURLParser{parse: func(rawURL string, kind reference.Kind) (*reference.EntityReference, error) {
			page := strings.TrimPrefix(rawURL, "https://wiki/")
			return &reference.EntityReference{Kind: kind, Space: []string{"Main"}, Page: page}, nil
		}}

		var content bytes.Buffer
		content.WriteString(`[{"type":"paragraph","content":[`)
		for idx := 0; idx < 20; idx++ {
			if idx > 0 {
				content.WriteByte(',')
			}
			content.WriteString(`{"type":"link","href":"https://wiki/P` + string(rune('a'+idx)) + `","content":[]}`)
		}
		content.WriteString(`]}]`)

		result := mustConvertJSON(t, Config{URLParser: parser, Concurrency: 4}, content.String())
		para := result.Document.Blocks[0].(*uniast.Paragraph)
		require.Len(t, para.Content, 20)
		for idx, inline := range para.Content {
			target := inline.(*uniast.Link).Target.(*uniast.InternalTarget)
			assert.Equal(t, "P"+string(rune('a'+idx)), target.ParsedReference.Page)
			assert.Equal(t, target.ParsedReference.String(), target.RawReference)
		}
		assert.Equal(t, int32(20), parser.calls.Load())
	})

	t.Run("images resolve as attachments", func(t *testing.T) {
		var kinds []reference.Kind
		parser := &fakeURLParser{parse: func(_ string, kind reference.Kind) (*reference.EntityReference, error) {
			kinds = append(kinds, kind)
			return &reference.EntityReference{Kind: kind, Space: []string{"S"}, Page: "P", Attachment: "a.png"}, nil
		}}
		result := mustConvertJSON(t, Config{URLParser: parser}, `[{"type":"image","props":{"url":"https://wiki/a.png"}}]`)
		img := result.Document.Blocks[0].(*uniast.Paragraph).Content[0].(*uniast.Image)
		assert.Equal(t, []reference.Kind{reference.KindAttachment}, kinds)
		assert.Equal(t, "S.P@a.png", img.Target.(*uniast.InternalTarget).RawReference)
	})
}

func TestSubscriptSuperscript(t *testing.T) {
	result := mustConvertJSON(t, Config{}, `[
		{"type":"paragraph","content":[
			{"type":"subscript","content":[{"type":"text","text":"2","styles":{"bold":true}}]},
			{"type":"superscript","content":[]}
		]}
	]`)
	para := result.Document.Blocks[0].(*uniast.Paragraph)
	assert.Equal(t, &uniast.Subscript{Content: "2", Styles: uniast.TextStyles{Bold: true}}, para.Content[0])
	assert.Equal(t, &uniast.Superscript{Content: ""}, para.Content[1])

	_, err := convertJSON(t, Config{}, `[
		{"type":"paragraph","content":[
			{"type":"superscript","content":[{"type":"text","text":"a"},{"type":"text","text":"b"}]}
		]}
	]`)
	assert.ErrorIs(t, err, uniast.ErrUnexpectedChildren)
}

func TestUnknownNodes(t *testing.T) {
	input := `[
		{"type":"mystery","content":[]},
		{"type":"paragraph","content":[{"type":"mention","props":{"user":"x"}},{"type":"text","text":"ok"}]}
	]`

	_, err := convertJSON(t, Config{}, input)
	require.Error(t, err)
	assert.ErrorIs(t, err, uniast.ErrUnexpectedNode)

	result := mustConvertJSON(t, Config{UnknownNodes: UnknownSkip}, input)
	require.Len(t, result.Document.Blocks, 1)
	assert.Equal(t, []uniast.InlineContent{text("ok")}, result.Document.Blocks[0].(*uniast.Paragraph).Content)
	require.Len(t, result.Warnings, 2)
	assert.Equal(t, "mystery", result.Warnings[0].NodeType)
	assert.Equal(t, "mention", result.Warnings[1].NodeType)
}

func TestInvalidJSON(t *testing.T) {
	_, err := convertJSON(t, Config{}, `{"type":"paragraph"}`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode blocks")

	_, err = convertJSON(t, Config{}, `[{"type":"paragraph","content":42}]`)
	require.Error(t, err)
}

func TestCancelledContext(t *testing.T) {
	parser := &fakeURLParser{parse: func(string, reference.Kind) (*reference.EntityReference, error) {
		return nil, reference.ErrInvalidReference
	}}
	conv := newTestConverter(t, Config{URLParser: parser})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := conv.ConvertJSON(ctx, []byte(`[{"type":"paragraph","content":[{"type":"link","href":"https://a","content":[]}]}]`))
	assert.ErrorIs(t, err, context.Canceled)
}
