package macro

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/rgonek/uniast-converter/uniast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogLookup(t *testing.T) {
	catalog, err := NewCatalog(
		Definition{ID: "info", Body: uniast.BodyInlineContents},
		Definition{ID: "toc"},
	)
	require.NoError(t, err)

	def, ok := catalog.Lookup("info")
	require.True(t, ok)
	assert.Equal(t, uniast.BodyInlineContents, def.Body)

	def, ok = catalog.Lookup("toc")
	require.True(t, ok)
	assert.Equal(t, uniast.BodyNone, def.Body)

	_, ok = catalog.Lookup("missing")
	assert.False(t, ok)

	assert.Equal(t, []string{"info", "toc"}, ids(catalog.Definitions()))
}

func TestCatalogRejectsInvalidDefinitions(t *testing.T) {
	tests := []Definition{
		{ID: ""},
		{ID: "two words"},
		{ID: "x", Body: "html"},
	}
	for _, def := range tests {
		_, err := NewCatalog(def)
		assert.ErrorIs(t, err, ErrInvalidDefinition, "definition %+v", def)
	}

	_, err := NewCatalog(Definition{ID: "a"}, Definition{ID: "a"})
	assert.ErrorIs(t, err, ErrInvalidDefinition)
}

func TestCatalogConcurrentLookup(t *testing.T) {
	catalog := MustCatalog(Definition{ID: "code", Body: uniast.BodyRaw})

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, ok := catalog.Lookup("code")
			assert.True(t, ok)
		}()
	}
	wg.Wait()
}

func TestLoad(t *testing.T) {
	catalog, err := Load(strings.NewReader(`
macros:
  - id: info
    body: inlineContents
  - id: code
    body: raw
  - id: status
    body: inlineContent
  - id: toc
`))
	require.NoError(t, err)
	assert.Equal(t, []string{"code", "info", "status", "toc"}, ids(catalog.Definitions()))

	def, _ := catalog.Lookup("status")
	assert.Equal(t, uniast.BodyInlineContent, def.Body)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(strings.NewReader("macros:\n  - id: x\n    kind: raw\n"))
	assert.Error(t, err)

	_, err = Load(strings.NewReader("macros:\n  - id: x\n    body: everything\n"))
	assert.ErrorIs(t, err, ErrInvalidDefinition)

	catalog, err := Load(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, catalog.Definitions())
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "macros.yaml")
	require.NoError(t, os.WriteFile(path, []byte("macros:\n  - id: toc\n    body: none\n"), 0o600))

	catalog, err := LoadFile(path)
	require.NoError(t, err)
	_, ok := catalog.Lookup("toc")
	assert.True(t, ok)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestEmptyRegistry(t *testing.T) {
	_, ok := Empty.Lookup("anything")
	assert.False(t, ok)
}

func ids(defs []Definition) []string {
	out := make([]string, 0, len(defs))
	for _, def := range defs {
		out = append(out, def.ID)
	}
	return out
}
