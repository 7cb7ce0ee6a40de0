package converter

import (
	"github.com/rgonek/uniast-converter/uniast"
)

// convertMacroBlock reinterprets the native content according to the body
// kind the registry declares for id.
func (s *state) convertMacroBlock(block Block, id, path string) (*uniast.MacroBlock, error) {
	if err := noChildren(block, path); err != nil {
		return nil, err
	}
	def, ok := s.config.Registry.Lookup(id)
	if !ok {
		return nil, uniast.Nodef(path, block.Type, uniast.ErrUnknownMacro, "macro %q is not registered", id)
	}
	params, err := macroParams(block.Props, uniast.Field(path, "props"))
	if err != nil {
		return nil, err
	}

	contentPath := uniast.Field(path, "content")
	out := &uniast.MacroBlock{Name: id, Params: params}
	switch def.Body {
	case uniast.BodyNone:
		if len(block.Content) > 0 {
			return nil, uniast.Nodef(path, block.Type, uniast.ErrMacroBodyKind, "macro %q takes no body but has %d content nodes", id, len(block.Content))
		}
		out.Body = uniast.NoBody{}
	case uniast.BodyRaw:
		raw, err := rawText(block.Content, contentPath)
		if err != nil {
			return nil, err
		}
		out.Body = uniast.RawBody{Content: raw}
	case uniast.BodyInlineContents:
		content, err := s.convertInlines(block.Content, contentPath, false)
		if err != nil {
			return nil, err
		}
		out.Body = uniast.InlineContentsBody{Content: content}
	default:
		return nil, uniast.Nodef(path, block.Type, uniast.ErrMacroBodyKind, "macro %q declares a %s body, not allowed on blocks", id, def.Body)
	}
	return out, nil
}

func (s *state) convertInlineMacro(ic InlineContent, id, path string, inLink bool) (*uniast.InlineMacro, error) {
	def, ok := s.config.Registry.Lookup(id)
	if !ok {
		return nil, uniast.Nodef(path, ic.Type, uniast.ErrUnknownMacro, "macro %q is not registered", id)
	}
	params, err := macroParams(ic.Props, uniast.Field(path, "props"))
	if err != nil {
		return nil, err
	}

	contentPath := uniast.Field(path, "content")
	out := &uniast.InlineMacro{Name: id, Params: params}
	switch def.Body {
	case uniast.BodyNone:
		if len(ic.Content) > 0 {
			return nil, uniast.Nodef(path, ic.Type, uniast.ErrMacroBodyKind, "macro %q takes no body but has %d content nodes", id, len(ic.Content))
		}
		out.Body = uniast.NoBody{}
	case uniast.BodyRaw:
		raw, err := rawText(ic.Content, contentPath)
		if err != nil {
			return nil, err
		}
		out.Body = uniast.RawBody{Content: raw}
	case uniast.BodyInlineContent:
		if len(ic.Content) != 1 {
			return nil, uniast.Nodef(path, ic.Type, uniast.ErrMacroBodyKind, "macro %q needs exactly one content node, got %d", id, len(ic.Content))
		}
		content, err := s.convertInline(ic.Content[0], uniast.Index(contentPath, 0), inLink)
		if err != nil {
			return nil, err
		}
		if content == nil {
			return nil, uniast.Nodef(uniast.Index(contentPath, 0), ic.Content[0].Type, uniast.ErrMacroBodyKind, "macro %q body was skipped", id)
		}
		out.Body = uniast.InlineContentBody{Content: content}
	default:
		return nil, uniast.Nodef(path, ic.Type, uniast.ErrMacroBodyKind, "macro %q declares a %s body, not allowed inline", id, def.Body)
	}
	return out, nil
}

func macroParams(props Props, path string) (uniast.Params, error) {
	params := make(uniast.Params, len(props))
	for key, value := range props {
		param, err := uniast.ParamFromAny(value)
		if err != nil {
			return nil, uniast.NewNodeError(uniast.Field(path, key), "", err)
		}
		params[key] = param
	}
	return params, nil
}
