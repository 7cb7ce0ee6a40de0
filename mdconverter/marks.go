package mdconverter

import "github.com/rgonek/uniast-converter/uniast"

// markKind is a text style being applied while walking inline nodes.
type markKind string

const (
	markBold            markKind = "bold"
	markItalic          markKind = "italic"
	markStrike          markKind = "strike"
	markCode            markKind = "code"
	markUnderline       markKind = "underline"
	markTextColor       markKind = "textColor"
	markBackgroundColor markKind = "backgroundColor"
	markSubscript       markKind = "subscript"
	markSuperscript     markKind = "superscript"
)

type mark struct {
	kind  markKind
	value string
}

type markStack struct {
	items []mark
}

func newMarkStack() *markStack {
	return &markStack{}
}

func (s *markStack) push(kind markKind, value string) {
	s.items = append(s.items, mark{kind: kind, value: value})
}

func (s *markStack) popByType(kind markKind) bool {
	for i := len(s.items) - 1; i >= 0; i-- {
		if s.items[i].kind != kind {
			continue
		}
		s.items = append(s.items[:i], s.items[i+1:]...)
		return true
	}

	return false
}

// styles folds the stack into text styles. The innermost color wins.
func (s *markStack) styles() uniast.TextStyles {
	var styles uniast.TextStyles
	for _, m := range s.items {
		switch m.kind {
		case markBold:
			styles.Bold = true
		case markItalic:
			styles.Italic = true
		case markStrike:
			styles.Strikethrough = true
		case markCode:
			styles.Code = true
		case markUnderline:
			styles.Underline = true
		case markTextColor:
			styles.TextColor = m.value
		case markBackgroundColor:
			styles.BackgroundColor = m.value
		}
	}
	return styles
}

// script returns the innermost subscript or superscript mark, if any.
func (s *markStack) script() (markKind, bool) {
	for i := len(s.items) - 1; i >= 0; i-- {
		if kind := s.items[i].kind; kind == markSubscript || kind == markSuperscript {
			return kind, true
		}
	}
	return "", false
}

// newTextNode builds the inline node for a text run under the current marks.
func newTextNode(textValue string, stack *markStack) uniast.InlineContent {
	styles := stack.styles()
	switch kind, _ := stack.script(); kind {
	case markSubscript:
		return &uniast.Subscript{Content: textValue, Styles: styles}
	case markSuperscript:
		return &uniast.Superscript{Content: textValue, Styles: styles}
	default:
		return &uniast.Text{Content: textValue, Styles: styles}
	}
}

func plainText(textValue string) *uniast.Text {
	return &uniast.Text{Content: textValue}
}

// appendInline appends next, merging adjacent runs of the same kind and
// styles. Empty runs are dropped.
func appendInline(content []uniast.InlineContent, next uniast.InlineContent) []uniast.InlineContent {
	if len(content) == 0 {
		if isEmptyRun(next) {
			return content
		}
		return append(content, next)
	}

	switch typed := next.(type) {
	case *uniast.Text:
		if typed.Content == "" {
			return content
		}
		if last, ok := content[len(content)-1].(*uniast.Text); ok && last.Styles == typed.Styles {
			last.Content += typed.Content
			return content
		}
	case *uniast.Subscript:
		if typed.Content == "" {
			return content
		}
		if last, ok := content[len(content)-1].(*uniast.Subscript); ok && last.Styles == typed.Styles {
			last.Content += typed.Content
			return content
		}
	case *uniast.Superscript:
		if typed.Content == "" {
			return content
		}
		if last, ok := content[len(content)-1].(*uniast.Superscript); ok && last.Styles == typed.Styles {
			last.Content += typed.Content
			return content
		}
	}

	return append(content, next)
}

func isEmptyRun(node uniast.InlineContent) bool {
	switch typed := node.(type) {
	case *uniast.Text:
		return typed.Content == ""
	case *uniast.Subscript:
		return typed.Content == ""
	case *uniast.Superscript:
		return typed.Content == ""
	default:
		return false
	}
}
