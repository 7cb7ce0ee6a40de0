package mdconverter

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/rgonek/uniast-converter/converter"
	"github.com/rgonek/uniast-converter/uniast"
)

var (
	entityLikeRe     = regexp.MustCompile(`^&(?:#[0-9]+|#[xX][0-9a-fA-F]+|[A-Za-z][A-Za-z0-9]*);`)
	orderedMarkerRe  = regexp.MustCompile(`^[0-9]{1,9}[.)]`)
	lineStartSpecial = "#>+-="
)

type inlineOptions struct {
	// singleLine writes line breaks as <br>.
	singleLine bool
	// table escapes pipes.
	table bool
}

// styleMark is a delimiter pair kept open across text runs.
type styleMark struct {
	kind  markKind
	value string
}

// inlineWriter writes inline content, keeping style delimiters open across
// runs that share them. Whitespace at the edges of a run is moved outside
// the delimiters.
type inlineWriter struct {
	w       *writer
	options inlineOptions
	b       strings.Builder
	active  []styleMark
	pending string
}

func (w *writer) writeInlines(content []uniast.InlineContent, path string, options inlineOptions) (string, error) {
	iw := &inlineWriter{w: w, options: options}
	for idx, inline := range content {
		if err := iw.writeInline(inline, uniast.Index(path, idx)); err != nil {
			return "", err
		}
	}
	iw.closeAll()
	return iw.b.String(), nil
}

func (iw *inlineWriter) writeInline(inline uniast.InlineContent, path string) error {
	switch n := inline.(type) {
	case *uniast.Text:
		if n.Styles.Code {
			iw.writeAtom(n.Styles, codeSpan(n.Content, iw.options))
			return nil
		}
		iw.writeText(n.Content, n.Styles)

	case *uniast.Subscript:
		iw.writeAtom(n.Styles, "<sub>"+iw.escape(n.Content, false)+"</sub>")

	case *uniast.Superscript:
		iw.writeAtom(n.Styles, "<sup>"+iw.escape(n.Content, false)+"</sup>")

	case *uniast.Link:
		content := make([]uniast.InlineContent, len(n.Content))
		for idx, child := range n.Content {
			content[idx] = child
		}
		label, err := iw.w.writeInlines(content, uniast.Field(path, "content"), iw.options)
		if err != nil {
			return err
		}
		iw.writeRaw(iw.w.linkMarkdown(label, n.Target))

	case *uniast.Image:
		iw.writeRaw(iw.w.writeImage(n, path))

	case *uniast.InlineMacro:
		out, err := iw.w.writeInlineMacro(n, path, iw.options)
		if err != nil {
			return err
		}
		iw.writeRaw(out)

	default:
		return uniast.Nodef(path, inline.NodeType(), uniast.ErrUnexpectedNode, "unsupported inline content")
	}
	return nil
}

func (iw *inlineWriter) writeText(content string, styles uniast.TextStyles) {
	lead, core, trail := splitSpace(content)
	if core == "" {
		iw.closeUnshared(styleMarks(styles))
		iw.pending += content
		return
	}

	iw.transition(styleMarks(styles), lead)
	iw.b.WriteString(iw.escape(core, iw.atLineStart()))
	iw.pending = iw.breaks(trail)
}

// writeAtom writes pre-rendered content under styles without splitting it.
func (iw *inlineWriter) writeAtom(styles uniast.TextStyles, rendered string) {
	iw.transition(styleMarks(styles), "")
	iw.b.WriteString(rendered)
}

// writeRaw writes unstyled content, closing every open delimiter first.
func (iw *inlineWriter) writeRaw(rendered string) {
	iw.transition(nil, "")
	iw.b.WriteString(rendered)
}

// transition closes delimiters not shared with marks, flushes pending
// whitespace and lead, then opens the missing delimiters.
func (iw *inlineWriter) transition(marks []styleMark, lead string) {
	common := 0
	for common < len(iw.active) && common < len(marks) && iw.active[common] == marks[common] {
		common++
	}
	for idx := len(iw.active) - 1; idx >= common; idx-- {
		iw.b.WriteString(closingDelimiter(iw.active[idx]))
	}
	iw.b.WriteString(iw.breaks(iw.pending))
	iw.b.WriteString(iw.breaks(lead))
	iw.pending = ""
	for _, m := range marks[common:] {
		iw.b.WriteString(openingDelimiter(m))
	}
	iw.active = marks
}

// closeUnshared closes the open delimiters that marks does not continue.
// Whitespace between runs of equal style must not join them.
func (iw *inlineWriter) closeUnshared(marks []styleMark) {
	common := 0
	for common < len(iw.active) && common < len(marks) && iw.active[common] == marks[common] {
		common++
	}
	for idx := len(iw.active) - 1; idx >= common; idx-- {
		iw.b.WriteString(closingDelimiter(iw.active[idx]))
	}
	iw.active = iw.active[:common]
}

func (iw *inlineWriter) closeAll() {
	for idx := len(iw.active) - 1; idx >= 0; idx-- {
		iw.b.WriteString(closingDelimiter(iw.active[idx]))
	}
	iw.active = nil
	iw.b.WriteString(strings.TrimRight(iw.breaks(iw.pending), " \t"))
	iw.pending = ""
}

func (iw *inlineWriter) atLineStart() bool {
	out := iw.b.String()
	return out == "" || strings.HasSuffix(out, "\n")
}

// breaks renders line breaks of whitespace for the current context.
func (iw *inlineWriter) breaks(space string) string {
	if iw.options.singleLine {
		return strings.ReplaceAll(space, "\n", "<br>")
	}
	return space
}

// escape backslash-escapes characters Markdown would otherwise interpret.
func (iw *inlineWriter) escape(text string, lineStart bool) string {
	var b strings.Builder
	for idx := 0; idx < len(text); idx++ {
		c := text[idx]
		if lineStart && c != ' ' && c != '\t' {
			lineStart = false
			if strings.IndexByte(lineStartSpecial, c) >= 0 {
				b.WriteByte('\\')
			} else if marker := orderedMarkerRe.FindString(text[idx:]); marker != "" {
				b.WriteString(marker[:len(marker)-1])
				b.WriteByte('\\')
				b.WriteByte(marker[len(marker)-1])
				idx += len(marker) - 1
				continue
			}
		}

		switch c {
		case '\\', '*', '_', '`', '[', ']', '<', '~':
			b.WriteByte('\\')
		case '{':
			if idx+1 < len(text) && text[idx+1] == '{' {
				b.WriteByte('\\')
			}
		case '&':
			if entityLikeRe.MatchString(text[idx:]) {
				b.WriteByte('\\')
			}
		case '|':
			if iw.options.table {
				b.WriteByte('\\')
			}
		case '\n':
			if iw.options.singleLine {
				b.WriteString("<br>")
				lineStart = false
				continue
			}
			lineStart = true
		}
		b.WriteByte(c)
	}
	return b.String()
}

// styleMarks orders marks from outermost to innermost.
func styleMarks(styles uniast.TextStyles) []styleMark {
	var marks []styleMark
	if styles.Strikethrough {
		marks = append(marks, styleMark{kind: markStrike})
	}
	if styles.Italic {
		marks = append(marks, styleMark{kind: markItalic})
	}
	if styles.Bold {
		marks = append(marks, styleMark{kind: markBold})
	}
	if styles.Underline {
		marks = append(marks, styleMark{kind: markUnderline})
	}
	if styles.TextColor != "" {
		marks = append(marks, styleMark{kind: markTextColor, value: styles.TextColor})
	}
	if styles.BackgroundColor != "" {
		marks = append(marks, styleMark{kind: markBackgroundColor, value: styles.BackgroundColor})
	}
	return marks
}

func openingDelimiter(m styleMark) string {
	switch m.kind {
	case markStrike:
		return "~~"
	case markItalic:
		return "_"
	case markBold:
		return "**"
	case markUnderline:
		return "<u>"
	case markTextColor:
		return fmt.Sprintf(`<span style="color: %s">`, m.value)
	case markBackgroundColor:
		return fmt.Sprintf(`<span style="background-color: %s">`, m.value)
	default:
		return ""
	}
}

func closingDelimiter(m styleMark) string {
	switch m.kind {
	case markStrike:
		return "~~"
	case markItalic:
		return "_"
	case markBold:
		return "**"
	case markUnderline:
		return "</u>"
	case markTextColor, markBackgroundColor:
		return "</span>"
	default:
		return ""
	}
}

// codeSpan wraps content in enough backticks to hold it.
func codeSpan(content string, options inlineOptions) string {
	if options.singleLine {
		content = strings.ReplaceAll(content, "\n", " ")
	}
	if options.table {
		content = strings.ReplaceAll(content, "|", `\|`)
	}
	fence := strings.Repeat("`", longestRun(content, '`')+1)
	if strings.HasPrefix(content, "`") || strings.HasSuffix(content, "`") ||
		(strings.HasPrefix(content, " ") && strings.HasSuffix(content, " ") && strings.TrimSpace(content) != "") {
		content = " " + content + " "
	}
	return fence + content + fence
}

func splitSpace(text string) (lead, core, trail string) {
	core = strings.TrimLeftFunc(text, unicode.IsSpace)
	lead = text[:len(text)-len(core)]
	trimmed := strings.TrimRightFunc(core, unicode.IsSpace)
	trail = core[len(trimmed):]
	return lead, trimmed, trail
}

// linkMarkdown writes a link around an already rendered label. Internal
// targets use the wiki syntax unless only a serialized URL is known.
func (w *writer) linkMarkdown(label string, t uniast.LinkTarget) string {
	switch target := t.(type) {
	case *uniast.InternalTarget:
		if target.RawReference != "" {
			return "[[" + label + "|" + target.RawReference + "]]"
		}
		if url := w.serializedURL(t); url != "" {
			return "[" + label + "](" + linkDestination(url) + ")"
		}
		return "[[" + label + "|" + target.ParsedReference.String() + "]]"
	case *uniast.ExternalTarget:
		return "[" + label + "](" + linkDestination(target.URL) + ")"
	default:
		return label
	}
}

func (w *writer) writeImage(image *uniast.Image, path string) string {
	alt := escapeLabel(image.Alt)
	if image.WidthPx != nil {
		w.addWarning(converter.WarningLossyConversion, uniast.TypeImage, fmt.Sprintf("%s: image width is not written", path))
	}

	if internal, ok := image.Target.(*uniast.InternalTarget); ok {
		ref := internal.RawReference
		if ref == "" {
			if url := w.serializedURL(image.Target); url != "" {
				return "![" + alt + "](" + linkDestination(url) + imageTitle(image.Caption) + ")"
			}
			ref = internal.ParsedReference.String()
		}
		if image.Caption != "" {
			w.addWarning(converter.WarningLossyConversion, uniast.TypeImage, fmt.Sprintf("%s: caption of wiki image is not written", path))
		}
		return "![[" + alt + "|" + ref + "]]"
	}

	url := ""
	if external, ok := image.Target.(*uniast.ExternalTarget); ok {
		url = external.URL
	}
	return "![" + alt + "](" + linkDestination(url) + imageTitle(image.Caption) + ")"
}

func (w *writer) writeInlineMacro(m *uniast.InlineMacro, path string, options inlineOptions) (string, error) {
	switch body := m.Body.(type) {
	case nil, uniast.NoBody:
		return formatMacroTag(m.Name, m.Params, true), nil
	case uniast.RawBody:
		return formatMacroTag(m.Name, m.Params, false) + body.Content + formatClosingTag(m.Name), nil
	case uniast.InlineContentBody:
		content, err := w.writeInlines([]uniast.InlineContent{body.Content}, uniast.Field(path, "body.content"), options)
		if err != nil {
			return "", err
		}
		return formatMacroTag(m.Name, m.Params, false) + content + formatClosingTag(m.Name), nil
	default:
		return "", uniast.Nodef(path, uniast.TypeInlineMacro, uniast.ErrMacroBodyKind, "unsupported body %T", m.Body)
	}
}

func (w *writer) serializedURL(t uniast.LinkTarget) string {
	if slot, ok := w.urls[t]; ok {
		return *slot
	}
	return ""
}

func linkDestination(url string) string {
	if url == "" || !strings.ContainsAny(url, " \t()<>") {
		return url
	}
	return "<" + strings.NewReplacer("<", `\<`, ">", `\>`).Replace(url) + ">"
}

func imageTitle(caption string) string {
	if caption == "" {
		return ""
	}
	return ` "` + strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(caption) + `"`
}

func escapeLabel(label string) string {
	return strings.NewReplacer(`\`, `\\`, "[", `\[`, "]", `\]`, "|", `\|`, "\n", " ").Replace(label)
}
