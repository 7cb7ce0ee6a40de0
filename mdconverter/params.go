package mdconverter

import (
	"regexp"
	"strings"

	"github.com/kballard/go-shellquote"

	"github.com/rgonek/uniast-converter/uniast"
)

var (
	macroNameRe  = regexp.MustCompile(`^[^\s{}/"'=\\]+`)
	paramKeyRe   = regexp.MustCompile(`^[A-Za-z0-9_.:-]+$`)
	closingTagRe = regexp.MustCompile(`^\{\{\s*/\s*([^\s{}/"'=\\]+)\s*\}\}`)
)

// macroTag is an opening macro tag: "{{name k=v}}" or "{{name k=v /}}".
type macroTag struct {
	name        string
	params      uniast.Params
	selfClosing bool
	// length is the number of source bytes the tag spans.
	length int
}

// scanMacroTag parses the macro tag at the start of src. Parameter values are
// Markdown-unescaped first and then split with shell quoting rules, so "}}"
// inside quotes does not end the tag. Tags never span lines.
func scanMacroTag(src []byte) (macroTag, bool) {
	if len(src) < 4 || src[0] != '{' || src[1] != '{' {
		return macroTag{}, false
	}

	pos := 2 + countSpaces(src[2:])
	name := macroNameRe.Find(src[pos:])
	if name == nil {
		return macroTag{}, false
	}
	pos += len(name)

	var (
		params      strings.Builder
		quote       byte
		shellEscape bool
		end         = -1
	)
	for pos < len(src) {
		c := src[pos]
		if c == '\n' || c == '\r' {
			return macroTag{}, false
		}

		if quote == 0 && !shellEscape && c == '}' && pos+1 < len(src) && src[pos+1] == '}' {
			end = pos
			break
		}

		width := 1
		if c == '\\' && pos+1 < len(src) && isASCIIPunct(src[pos+1]) {
			c = src[pos+1]
			width = 2
		}
		pos += width
		params.WriteByte(c)

		switch {
		case shellEscape:
			shellEscape = false
		case quote == '\'':
			if c == '\'' {
				quote = 0
			}
		case c == '\\':
			shellEscape = true
		case quote == '"':
			if c == '"' {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		}
	}
	if end < 0 {
		return macroTag{}, false
	}

	tag := macroTag{name: string(name), params: uniast.Params{}, length: end + 2}
	raw := strings.TrimRight(params.String(), " \t")
	if strings.HasSuffix(raw, "/") {
		tag.selfClosing = true
		raw = strings.TrimSuffix(raw, "/")
	}

	words, err := shellquote.Split(raw)
	if err != nil {
		return macroTag{}, false
	}
	for _, word := range words {
		key, value, ok := strings.Cut(word, "=")
		if !ok || !paramKeyRe.MatchString(key) {
			return macroTag{}, false
		}
		tag.params[key] = uniast.StringValue(value)
	}
	return tag, true
}

// scanClosingTag reports whether src starts with "{{/name}}" and returns the
// tag length.
func scanClosingTag(src []byte, name string) (int, bool) {
	match := closingTagRe.FindSubmatch(src)
	if match == nil || string(match[1]) != name {
		return 0, false
	}
	return len(match[0]), true
}

// findClosingTag returns the offset of the first "{{/name}}" in src.
func findClosingTag(src []byte, name string) (start, end int, ok bool) {
	for idx := 0; idx+1 < len(src); idx++ {
		if src[idx] != '{' || src[idx+1] != '{' {
			continue
		}
		if length, found := scanClosingTag(src[idx:], name); found {
			return idx, idx + length, true
		}
	}
	return 0, 0, false
}

// formatMacroTag writes an opening tag with parameters sorted by key. Values
// are always double quoted.
func formatMacroTag(name string, params uniast.Params, selfClosing bool) string {
	var b strings.Builder
	b.WriteString("{{")
	b.WriteString(name)
	for _, key := range params.Keys() {
		b.WriteByte(' ')
		b.WriteString(key)
		b.WriteString(`="`)
		b.WriteString(escapeParamValue(params[key].String()))
		b.WriteByte('"')
	}
	if selfClosing {
		b.WriteString(" /}}")
	} else {
		b.WriteString("}}")
	}
	return b.String()
}

func formatClosingTag(name string) string {
	return "{{/" + name + "}}"
}

// escapeParamValue quotes value for a double-quoted shell word, then escapes
// the backslashes Markdown would otherwise consume.
func escapeParamValue(value string) string {
	quoted := strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(value)

	var b strings.Builder
	for idx := 0; idx < len(quoted); idx++ {
		c := quoted[idx]
		b.WriteByte(c)
		if c == '\\' && (idx+1 == len(quoted) || isASCIIPunct(quoted[idx+1])) {
			b.WriteByte('\\')
		}
	}
	return b.String()
}

func countSpaces(src []byte) int {
	n := 0
	for n < len(src) && (src[n] == ' ' || src[n] == '\t') {
		n++
	}
	return n
}

func isASCIIPunct(c byte) bool {
	return strings.IndexByte("!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~", c) >= 0
}
