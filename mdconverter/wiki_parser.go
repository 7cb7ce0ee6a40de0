package mdconverter

import (
	"bytes"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

type WikiLinkParser struct{}

func NewWikiLinkParser() parser.InlineParser {
	return &WikiLinkParser{}
}

func (p *WikiLinkParser) Trigger() []byte {
	return []byte{'['}
}

func (p *WikiLinkParser) Parse(parent ast.Node, block text.Reader, pc parser.Context) ast.Node {
	line, _ := block.PeekLine()
	label, ref, length, ok := scanWikiTarget(line, 0)
	if !ok {
		return nil
	}

	block.Advance(length)
	return NewWikiLinkNode(label, ref)
}

type WikiImageParser struct{}

func NewWikiImageParser() parser.InlineParser {
	return &WikiImageParser{}
}

func (p *WikiImageParser) Trigger() []byte {
	return []byte{'!'}
}

func (p *WikiImageParser) Parse(parent ast.Node, block text.Reader, pc parser.Context) ast.Node {
	line, _ := block.PeekLine()
	if len(line) == 0 || line[0] != '!' {
		return nil
	}
	alt, ref, length, ok := scanWikiTarget(line, 1)
	if !ok {
		return nil
	}

	block.Advance(length)
	return NewWikiImageNode(unescapeMarkdown(alt), ref)
}

// scanWikiTarget parses "[[label|reference]]" or "[[reference]]" starting at
// offset. The reference is everything after the last pipe.
func scanWikiTarget(line []byte, offset int) (label, ref string, length int, ok bool) {
	rest := line[offset:]
	if !bytes.HasPrefix(rest, []byte("[[")) {
		return "", "", 0, false
	}

	closing := bytes.Index(rest, []byte("]]"))
	if closing < 0 {
		return "", "", 0, false
	}
	inner := rest[2:closing]
	if bytes.ContainsAny(inner, "\r\n") {
		return "", "", 0, false
	}

	if pipe := bytes.LastIndexByte(inner, '|'); pipe >= 0 {
		label, ref = string(inner[:pipe]), string(inner[pipe+1:])
	} else {
		label, ref = string(inner), string(inner)
	}
	if ref == "" {
		return "", "", 0, false
	}
	return label, ref, offset + closing + 2, true
}
