package mdconverter

import (
	"regexp"
	"strings"

	"github.com/rgonek/uniast-converter/converter"
	"github.com/rgonek/uniast-converter/uniast"
)

var (
	spanStyleColorRe     = regexp.MustCompile(`(?i)(?:^|[;"'\s])color\s*:\s*([^;"']+)`)
	spanStyleBgColorRe   = regexp.MustCompile(`(?i)\bbackground-color\s*:\s*([^;"']+)`)
	openingSpanTagPrefix = "<span"
	closingSpanTagPrefix = "</span"
	openingUnderlineTag  = "<u>"
	closingUnderlineTag  = "</u>"
	openingSubTag        = "<sub>"
	closingSubTag        = "</sub>"
	openingSupTag        = "<sup>"
	closingSupTag        = "</sup>"
	hardBreakTag1        = "<br>"
	hardBreakTag2        = "<br/>"
	hardBreakTag3        = "<br />"
)

// convertRawHTML applies an inline HTML tag to the mark stack. Tags other
// than underline, scripts, colored spans and line breaks are dropped.
func (s *state) convertRawHTML(rawHTML string, stack *markStack) []uniast.InlineContent {
	trimmed := strings.TrimSpace(rawHTML)
	lower := strings.ToLower(trimmed)

	switch lower {
	case openingUnderlineTag:
		stack.push(markUnderline, "")
		return nil
	case closingUnderlineTag:
		stack.popByType(markUnderline)
		return nil

	case openingSubTag:
		stack.push(markSubscript, "")
		return nil
	case closingSubTag:
		stack.popByType(markSubscript)
		return nil

	case openingSupTag:
		stack.push(markSuperscript, "")
		return nil
	case closingSupTag:
		stack.popByType(markSuperscript)
		return nil

	case hardBreakTag1, hardBreakTag2, hardBreakTag3:
		return []uniast.InlineContent{newTextNode("\n", stack)}
	}

	if strings.HasPrefix(lower, openingSpanTagPrefix) {
		var pushed []markKind
		if color, ok := extractSpanStyleColor(trimmed, true); ok {
			stack.push(markBackgroundColor, color)
			pushed = append(pushed, markBackgroundColor)
		}
		if color, ok := extractSpanStyleColor(trimmed, false); ok {
			stack.push(markTextColor, color)
			pushed = append(pushed, markTextColor)
		}
		s.pushHTMLSpanContext(pushed)
		return nil
	}

	if strings.HasPrefix(lower, closingSpanTagPrefix) {
		if pushed, ok := s.popHTMLSpanContext(); ok {
			for _, kind := range pushed {
				stack.popByType(kind)
			}
		}
		return nil
	}

	s.addWarning(converter.WarningLossyConversion, "html", "unsupported inline html "+trimmed+" dropped")
	return nil
}

func extractSpanStyleColor(tag string, background bool) (string, bool) {
	var match []string
	if background {
		match = spanStyleBgColorRe.FindStringSubmatch(tag)
	} else {
		match = spanStyleColorRe.FindStringSubmatch(tag)
	}
	if len(match) != 2 {
		return "", false
	}

	value := strings.TrimSpace(match[1])
	if value == "" {
		return "", false
	}

	return value, true
}

func (s *state) pushHTMLSpanContext(kinds []markKind) {
	s.htmlSpanStack = append(s.htmlSpanStack, kinds)
}

func (s *state) popHTMLSpanContext() ([]markKind, bool) {
	if len(s.htmlSpanStack) == 0 {
		return nil, false
	}

	lastIndex := len(s.htmlSpanStack) - 1
	kinds := s.htmlSpanStack[lastIndex]
	s.htmlSpanStack = s.htmlSpanStack[:lastIndex]
	return kinds, true
}
