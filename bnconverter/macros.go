package bnconverter

import (
	"github.com/rgonek/uniast-converter/converter"
	"github.com/rgonek/uniast-converter/uniast"
)

func (s *state) convertMacroBlock(m *uniast.MacroBlock, path string) (converter.Block, error) {
	def, ok := s.config.Registry.Lookup(m.Name)
	if !ok {
		return converter.Block{}, uniast.Nodef(path, uniast.TypeMacroBlock, uniast.ErrUnknownMacro, "macro %q is not registered", m.Name)
	}
	kind := uniast.BlockBodyKind(m.Body)
	if kind != def.Body {
		return converter.Block{}, uniast.Nodef(path, uniast.TypeMacroBlock, uniast.ErrMacroBodyKind, "macro %q declares a %s body, got %s", m.Name, def.Body, kind)
	}
	props, err := nativeProps(m.Params, uniast.Field(path, "params"))
	if err != nil {
		return converter.Block{}, err
	}

	native := s.newBlock(converter.MacroPrefix+m.Name, props)
	switch body := m.Body.(type) {
	case uniast.RawBody:
		native.Content = []converter.InlineContent{plainText(body.Content)}
	case uniast.InlineContentsBody:
		content, err := s.convertInlines(body.Content, uniast.Field(path, "body.content"), false)
		if err != nil {
			return converter.Block{}, err
		}
		native.Content = content
	}
	return native, nil
}

func (s *state) convertInlineMacro(m *uniast.InlineMacro, path string, inLink bool) (converter.InlineContent, error) {
	def, ok := s.config.Registry.Lookup(m.Name)
	if !ok {
		return converter.InlineContent{}, uniast.Nodef(path, uniast.TypeInlineMacro, uniast.ErrUnknownMacro, "macro %q is not registered", m.Name)
	}
	kind := uniast.InlineBodyKind(m.Body)
	if kind != def.Body {
		return converter.InlineContent{}, uniast.Nodef(path, uniast.TypeInlineMacro, uniast.ErrMacroBodyKind, "macro %q declares a %s body, got %s", m.Name, def.Body, kind)
	}
	props, err := nativeProps(m.Params, uniast.Field(path, "params"))
	if err != nil {
		return converter.InlineContent{}, err
	}

	native := converter.InlineContent{Type: converter.MacroPrefix + m.Name, Props: props}
	switch body := m.Body.(type) {
	case uniast.RawBody:
		native.Content = []converter.InlineContent{plainText(body.Content)}
	case uniast.InlineContentBody:
		content, err := s.convertInline(body.Content, uniast.Field(path, "body.content"), inLink)
		if err != nil {
			return converter.InlineContent{}, err
		}
		native.Content = []converter.InlineContent{content}
	}
	return native, nil
}

func nativeProps(params uniast.Params, path string) (converter.Props, error) {
	props := make(converter.Props, len(params))
	for _, key := range params.Keys() {
		value, err := uniast.ParamToAny(params[key])
		if err != nil {
			return nil, uniast.NewNodeError(uniast.Field(path, key), "", err)
		}
		props[key] = value
	}
	return props, nil
}
