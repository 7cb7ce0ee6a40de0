package mdconverter

import (
	"fmt"
	"strings"

	"github.com/yuin/goldmark/ast"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/util"

	"github.com/rgonek/uniast-converter/converter"
	"github.com/rgonek/uniast-converter/internal/target"
	"github.com/rgonek/uniast-converter/reference"
	"github.com/rgonek/uniast-converter/uniast"
)

func (s *state) convertInlineChildren(parent ast.Node, stack *markStack) ([]uniast.InlineContent, error) {
	content := []uniast.InlineContent{}

	for child := parent.FirstChild(); child != nil; child = child.NextSibling() {
		converted, err := s.convertInlineNode(child, stack)
		if err != nil {
			return nil, err
		}
		for _, node := range converted {
			content = appendInline(content, node)
		}
	}

	return content, nil
}

func (s *state) convertInlineNode(node ast.Node, stack *markStack) ([]uniast.InlineContent, error) {
	switch typed := node.(type) {
	case *ast.Text:
		var content []uniast.InlineContent
		textValue := unescapeMarkdown(string(typed.Value(s.source)))
		if textValue != "" {
			content = append(content, newTextNode(textValue, stack))
		}
		if typed.HardLineBreak() || typed.SoftLineBreak() {
			content = append(content, newTextNode("\n", stack))
		}
		return content, nil

	case *ast.String:
		return []uniast.InlineContent{newTextNode(string(typed.Value), stack)}, nil

	case *ast.Emphasis:
		kind := markItalic
		if typed.Level >= 2 {
			kind = markBold
		}
		stack.push(kind, "")
		content, err := s.convertInlineChildren(typed, stack)
		stack.popByType(kind)
		return content, err

	case *extast.Strikethrough:
		stack.push(markStrike, "")
		content, err := s.convertInlineChildren(typed, stack)
		stack.popByType(markStrike)
		return content, err

	case *ast.CodeSpan:
		stack.push(markCode, "")
		defer stack.popByType(markCode)
		var b strings.Builder
		for child := typed.FirstChild(); child != nil; child = child.NextSibling() {
			switch segment := child.(type) {
			case *ast.Text:
				b.Write(segment.Value(s.source))
			case *ast.String:
				b.Write(segment.Value)
			}
		}
		return []uniast.InlineContent{newTextNode(b.String(), stack)}, nil

	case *ast.Link:
		return s.convertLinkNode(typed, strings.TrimSpace(string(typed.Destination)), stack)

	case *ast.AutoLink:
		label := string(typed.Label(s.source))
		destination := string(typed.URL(s.source))
		if typed.AutoLinkType == ast.AutoLinkEmail && !strings.HasPrefix(strings.ToLower(destination), "mailto:") {
			destination = "mailto:" + destination
		}
		link := &uniast.Link{Content: []uniast.LinkContent{newLinkText(label, stack)}}
		s.targets.Add(&link.Target, target.Request{Raw: destination, Kind: reference.KindDocument})
		return []uniast.InlineContent{link}, nil

	case *ast.Image:
		image := &uniast.Image{
			Alt:     plainTextOf(typed, s.source),
			Caption: string(typed.Title),
		}
		s.targets.Add(&image.Target, target.Request{Raw: strings.TrimSpace(string(typed.Destination)), Kind: reference.KindAttachment})
		return []uniast.InlineContent{image}, nil

	case *WikiLinkNode:
		label, err := s.convertInlineFragment(typed.Label)
		if err != nil {
			return nil, err
		}
		if len(label) == 0 {
			label = []uniast.InlineContent{plainText(typed.Reference)}
		}
		content, err := uniast.LinkContents(label, s.position(typed))
		if err != nil {
			return nil, err
		}
		link := &uniast.Link{Content: content}
		s.targets.Add(&link.Target, target.Request{Raw: typed.Reference, Kind: reference.KindDocument, Wiki: true})
		return []uniast.InlineContent{link}, nil

	case *WikiImageNode:
		image := &uniast.Image{
			Alt:    typed.Alt,
			Styles: uniast.ImageStyles{Alignment: s.config.ImageAlignment},
		}
		s.targets.Add(&image.Target, target.Request{Raw: typed.Reference, Kind: reference.KindAttachment, Wiki: true})
		return []uniast.InlineContent{image}, nil

	case *MacroNode:
		inline, err := s.convertMacroNode(typed)
		if err != nil {
			return nil, err
		}
		return []uniast.InlineContent{inline}, nil

	case *ast.RawHTML:
		return s.convertRawHTML(rawHTMLValue(typed, s.source), stack), nil

	case *extast.TaskCheckBox:
		return nil, nil

	default:
		if node.HasChildren() {
			return s.convertInlineChildren(node, stack)
		}
		return s.warnUnknownInline(node, stack), nil
	}
}

func (s *state) convertLinkNode(node *ast.Link, destination string, stack *markStack) ([]uniast.InlineContent, error) {
	inlines, err := s.convertInlineChildren(node, stack)
	if err != nil {
		return nil, err
	}
	if destination == "" {
		return inlines, nil
	}

	content, err := uniast.LinkContents(inlines, s.position(node))
	if err != nil {
		return nil, err
	}
	link := &uniast.Link{Content: content}
	s.targets.Add(&link.Target, target.Request{Raw: destination, Kind: reference.KindDocument})
	return []uniast.InlineContent{link}, nil
}

func (s *state) warnUnknownInline(node ast.Node, stack *markStack) []uniast.InlineContent {
	nodeKind := node.Kind().String()
	s.addWarning(
		converter.WarningUnknownNode,
		nodeKind,
		fmt.Sprintf("%s: unsupported markdown inline node %s", s.position(node), nodeKind),
	)
	textValue := plainTextOf(node, s.source)
	if textValue == "" {
		return nil
	}
	return []uniast.InlineContent{newTextNode(textValue, stack)}
}

func newLinkText(label string, stack *markStack) uniast.LinkContent {
	return newTextNode(label, stack).(uniast.LinkContent)
}

// plainTextOf returns the unescaped text below node, ignoring markup.
func plainTextOf(node ast.Node, source []byte) string {
	var b strings.Builder
	_ = ast.Walk(node, func(current ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch typed := current.(type) {
		case *ast.Text:
			b.WriteString(unescapeMarkdown(string(typed.Value(source))))
			if typed.SoftLineBreak() || typed.HardLineBreak() {
				b.WriteByte('\n')
			}
		case *ast.String:
			b.Write(typed.Value)
		}
		return ast.WalkContinue, nil
	})
	return b.String()
}

func rawHTMLValue(node *ast.RawHTML, source []byte) string {
	var b strings.Builder
	for idx := 0; idx < node.Segments.Len(); idx++ {
		segment := node.Segments.At(idx)
		b.Write(segment.Value(source))
	}
	return b.String()
}

// unescapeMarkdown resolves backslash escapes and character references. An
// escaped ampersand never starts a reference.
func unescapeMarkdown(value string) string {
	if !strings.ContainsAny(value, `\&`) {
		return value
	}

	var b strings.Builder
	start := 0
	flush := func(end int) {
		chunk := util.ResolveNumericReferences([]byte(value[start:end]))
		b.Write(util.ResolveEntityNames(chunk))
	}
	for idx := 0; idx < len(value); idx++ {
		if value[idx] != '\\' || idx+1 == len(value) || !isASCIIPunct(value[idx+1]) {
			continue
		}
		flush(idx)
		b.WriteByte(value[idx+1])
		idx++
		start = idx + 1
	}
	flush(len(value))
	return b.String()
}
