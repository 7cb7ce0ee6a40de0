package mdconverter

import (
	"fmt"
	"strings"

	"github.com/rgonek/uniast-converter/converter"
	"github.com/rgonek/uniast-converter/uniast"
)

// Macro bodies are raw text unless the registry declares inline content for
// the macro, in which case the body is parsed as Markdown.

func (s *state) parsesBody(name string) bool {
	def, ok := s.config.Registry.Lookup(name)
	return ok && (def.Body == uniast.BodyInlineContent || def.Body == uniast.BodyInlineContents)
}

func (s *state) convertMacroNode(node *MacroNode) (*uniast.InlineMacro, error) {
	macroCall := &uniast.InlineMacro{Name: node.Name, Params: node.Params, Body: uniast.NoBody{}}
	if !node.HasBody {
		return macroCall, nil
	}
	if !s.parsesBody(node.Name) {
		macroCall.Body = uniast.RawBody{Content: node.Body}
		return macroCall, nil
	}

	content, err := s.convertInlineFragment(node.Body)
	if err != nil {
		return nil, err
	}
	if len(content) != 1 {
		s.addWarning(
			converter.WarningLossyConversion,
			uniast.TypeInlineMacro,
			fmt.Sprintf("%s: macro %q body holds %d inline nodes, kept raw", s.position(node), node.Name, len(content)),
		)
		macroCall.Body = uniast.RawBody{Content: node.Body}
		return macroCall, nil
	}
	macroCall.Body = uniast.InlineContentBody{Content: content[0]}
	return macroCall, nil
}

// convertMacroNodeAsBlock converts a macro call standing alone in a
// paragraph.
func (s *state) convertMacroNodeAsBlock(node *MacroNode) (*uniast.MacroBlock, error) {
	return s.newMacroBlock(node.Name, node.Params, node.Body, node.HasBody)
}

// convertMacroBlockNode converts a multi-line macro call. A call whose
// container ended before the closing tag is kept as text.
func (s *state) convertMacroBlockNode(node *MacroBlockNode) (uniast.Block, bool, error) {
	if !node.Closed() {
		s.addWarning(
			converter.WarningLossyConversion,
			uniast.TypeMacroBlock,
			fmt.Sprintf("%s: macro %q is not closed, kept as text", s.position(node), node.Name),
		)
		lines := append([]string{formatMacroTag(node.Name, node.Params, false)}, node.bodyLines...)
		return &uniast.Paragraph{Content: []uniast.InlineContent{plainText(strings.Join(lines, "\n"))}}, true, nil
	}

	block, err := s.newMacroBlock(node.Name, node.Params, node.Body(), true)
	if err != nil {
		return nil, false, err
	}
	return block, true, nil
}

func (s *state) newMacroBlock(name string, params uniast.Params, body string, hasBody bool) (*uniast.MacroBlock, error) {
	block := &uniast.MacroBlock{Name: name, Params: params, Body: uniast.NoBody{}}
	if !hasBody {
		return block, nil
	}
	if !s.parsesBody(name) {
		block.Body = uniast.RawBody{Content: body}
		return block, nil
	}

	content, err := s.convertInlineFragment(body)
	if err != nil {
		return nil, err
	}
	block.Body = uniast.InlineContentsBody{Content: content}
	return block, nil
}
