package mdconverter

import (
	"fmt"
	"strings"

	"github.com/yuin/goldmark/ast"
	xhtml "golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/rgonek/uniast-converter/converter"
	"github.com/rgonek/uniast-converter/uniast"
)

// convertHTMLBlockNode keeps the text of an HTML block as a paragraph.
func (s *state) convertHTMLBlockNode(node *ast.HTMLBlock) (uniast.Block, bool, error) {
	var b strings.Builder
	lines := node.Lines()
	for idx := 0; idx < lines.Len(); idx++ {
		segment := lines.At(idx)
		b.Write(segment.Value(s.source))
	}
	if node.HasClosure() {
		b.Write(node.ClosureLine.Value(s.source))
	}

	raw := strings.TrimSpace(b.String())
	if raw == "" {
		return nil, false, nil
	}

	textValue := normalizeHTMLText(htmlText(raw))
	s.addWarning(
		converter.WarningLossyConversion,
		node.Kind().String(),
		fmt.Sprintf("%s: html block converted to text", s.position(node)),
	)
	s.logger.Debug("HTML block converted to text", "position", s.position(node))
	if textValue == "" {
		return nil, false, nil
	}
	return &uniast.Paragraph{Content: []uniast.InlineContent{plainText(textValue)}}, true, nil
}

// htmlText extracts the text of an HTML fragment. Unparseable input is
// returned unchanged.
func htmlText(raw string) string {
	nodes, err := xhtml.ParseFragment(strings.NewReader(raw), &xhtml.Node{
		Type:     xhtml.ElementNode,
		Data:     "body",
		DataAtom: atom.Body,
	})
	if err != nil {
		return raw
	}

	var builder strings.Builder
	for _, node := range nodes {
		extractHTMLNodeText(node, &builder)
	}
	return builder.String()
}

func extractHTMLNodeText(node *xhtml.Node, builder *strings.Builder) {
	switch node.Type {
	case xhtml.TextNode:
		builder.WriteString(node.Data)
	case xhtml.ElementNode:
		if strings.EqualFold(node.Data, "br") {
			builder.WriteString("\n")
			return
		}
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			extractHTMLNodeText(child, builder)
		}
		switch strings.ToLower(node.Data) {
		case "p", "div", "li", "tr", "h1", "h2", "h3", "h4", "h5", "h6":
			builder.WriteString("\n")
		}
	case xhtml.CommentNode:
	default:
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			extractHTMLNodeText(child, builder)
		}
	}
}

func normalizeHTMLText(value string) string {
	value = strings.ReplaceAll(value, "\r\n", "\n")
	value = strings.ReplaceAll(value, "\r", "\n")
	lines := strings.Split(value, "\n")

	kept := lines[:0]
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}
