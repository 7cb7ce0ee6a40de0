// Package reference models structured references to wiki entities and the
// collaborators translating them to and from URLs.
package reference

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Kind is the type of entity a reference points to.
type Kind string

const (
	KindDocument   Kind = "document"
	KindAttachment Kind = "attachment"
	KindSpace      Kind = "space"
)

// ErrInvalidReference is returned when a string or URL is not a reference.
var ErrInvalidReference = errors.New("invalid reference")

// EntityReference identifies a space, document or attachment.
type EntityReference struct {
	Kind       Kind     `json:"type"`
	Wiki       string   `json:"wiki,omitempty"`
	Space      []string `json:"space,omitempty"`
	Page       string   `json:"page,omitempty"`
	Attachment string   `json:"attachment,omitempty"`
}

// Parser parses the textual form of a reference.
type Parser interface {
	ParseReference(ctx context.Context, value string, kind Kind) (*EntityReference, error)
}

// URLParser parses a URL into a reference. Implementations may fail for any
// URL that does not point inside the wiki.
type URLParser interface {
	ParseURL(ctx context.Context, rawURL string, kind Kind) (*EntityReference, error)
}

// URLSerializer builds the URL of a reference.
type URLSerializer interface {
	SerializeURL(ctx context.Context, ref *EntityReference) (string, error)
}

// StringParser implements Parser with Parse.
type StringParser struct{}

// ParseReference implements Parser.
func (StringParser) ParseReference(_ context.Context, value string, kind Kind) (*EntityReference, error) {
	return Parse(value, kind)
}

// String returns the canonical textual form, for example
// "wiki:Main.Sub.Page@file.png".
func (r *EntityReference) String() string {
	if r == nil {
		return ""
	}

	var b strings.Builder
	if r.Wiki != "" {
		b.WriteString(escape(r.Wiki))
		b.WriteByte(':')
	}
	for idx, space := range r.Space {
		if idx > 0 {
			b.WriteByte('.')
		}
		b.WriteString(escape(space))
	}
	if r.Kind == KindSpace {
		return b.String()
	}
	if len(r.Space) > 0 {
		b.WriteByte('.')
	}
	b.WriteString(escape(r.Page))
	if r.Kind == KindAttachment {
		b.WriteByte('@')
		b.WriteString(escapeAny(r.Attachment, attachmentEscapable))
	}
	return b.String()
}

// Validate checks that the reference is complete for its kind.
func (r *EntityReference) Validate() error {
	switch r.Kind {
	case KindSpace:
		if len(r.Space) == 0 {
			return fmt.Errorf("%w: space reference without space", ErrInvalidReference)
		}
	case KindDocument:
		if len(r.Space) == 0 || r.Page == "" {
			return fmt.Errorf("%w: document reference needs a space and a page", ErrInvalidReference)
		}
	case KindAttachment:
		if len(r.Space) == 0 || r.Page == "" || r.Attachment == "" {
			return fmt.Errorf("%w: attachment reference needs a space, a page and a file name", ErrInvalidReference)
		}
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidReference, r.Kind)
	}
	for _, space := range r.Space {
		if space == "" {
			return fmt.Errorf("%w: empty space name", ErrInvalidReference)
		}
	}
	return nil
}

// Parse parses the canonical textual form produced by String. Separators
// ('.', ':', '@') inside names are escaped with a backslash.
func Parse(value string, kind Kind) (*EntityReference, error) {
	if strings.TrimSpace(value) == "" {
		return nil, fmt.Errorf("%w: empty value", ErrInvalidReference)
	}

	ref := &EntityReference{Kind: kind}
	rest := value
	if wiki, after, found := cutUnescaped(rest, ':'); found {
		ref.Wiki = unescape(wiki)
		rest = after
	}

	if kind == KindAttachment {
		doc, file, found := cutLastUnescaped(rest, '@')
		if !found {
			return nil, fmt.Errorf("%w: %q has no attachment part", ErrInvalidReference, value)
		}
		ref.Attachment = unescape(file)
		rest = doc
	}

	parts := splitUnescaped(rest, '.')
	for idx := range parts {
		parts[idx] = unescape(parts[idx])
	}
	if kind == KindSpace {
		ref.Space = parts
	} else {
		ref.Space = parts[:len(parts)-1]
		ref.Page = parts[len(parts)-1]
	}
	if len(ref.Space) == 0 {
		ref.Space = nil
	}

	if err := ref.Validate(); err != nil {
		return nil, fmt.Errorf("%q: %w", value, err)
	}
	return ref, nil
}

const (
	escapable = `\.:@`
	// Attachment names end the reference, so dots in them stay unescaped.
	attachmentEscapable = `\:@`
)

func escape(name string) string {
	return escapeAny(name, escapable)
}

func escapeAny(name, chars string) string {
	if !strings.ContainsAny(name, chars) {
		return name
	}
	var b strings.Builder
	for _, r := range name {
		if strings.ContainsRune(chars, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

func unescape(name string) string {
	if !strings.Contains(name, `\`) {
		return name
	}
	var b strings.Builder
	for idx := 0; idx < len(name); idx++ {
		if name[idx] == '\\' && idx+1 < len(name) {
			idx++
		}
		b.WriteByte(name[idx])
	}
	return b.String()
}

func cutUnescaped(s string, sep byte) (before, after string, found bool) {
	for idx := 0; idx < len(s); idx++ {
		switch s[idx] {
		case '\\':
			idx++
		case sep:
			return s[:idx], s[idx+1:], true
		}
	}
	return s, "", false
}

func cutLastUnescaped(s string, sep byte) (before, after string, found bool) {
	last := -1
	for idx := 0; idx < len(s); idx++ {
		switch s[idx] {
		case '\\':
			idx++
		case sep:
			last = idx
		}
	}
	if last < 0 {
		return s, "", false
	}
	return s[:last], s[last+1:], true
}

func splitUnescaped(s string, sep byte) []string {
	var parts []string
	start := 0
	for idx := 0; idx < len(s); idx++ {
		switch s[idx] {
		case '\\':
			idx++
		case sep:
			parts = append(parts, s[start:idx])
			start = idx + 1
		}
	}
	return append(parts, s[start:])
}
