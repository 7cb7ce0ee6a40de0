package reference

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

const (
	actionView     = "view"
	actionDownload = "download"
)

// WikiURLCodec maps references to "<base>/bin/view/<space...>/<page>" and
// "<base>/bin/download/<space...>/<page>/<file>" URLs.
type WikiURLCodec struct {
	base *url.URL
	wiki string
}

// NewWikiURLCodec creates a codec for the wiki served at baseURL. The wiki
// name is recorded on every parsed reference.
func NewWikiURLCodec(baseURL, wiki string) (*WikiURLCodec, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", baseURL, err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q: scheme and host are required", baseURL)
	}
	base.Path = strings.TrimSuffix(base.Path, "/")
	base.RawQuery = ""
	base.Fragment = ""

	return &WikiURLCodec{base: base, wiki: wiki}, nil
}

// ParseURL implements URLParser. Links accept both page and attachment URLs;
// images only accept attachment URLs.
func (c *WikiURLCodec) ParseURL(_ context.Context, rawURL string, kind Kind) (*EntityReference, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidReference, err)
	}
	if !strings.EqualFold(u.Scheme, c.base.Scheme) || !strings.EqualFold(u.Host, c.base.Host) {
		return nil, fmt.Errorf("%w: %q is outside %s", ErrInvalidReference, rawURL, c.base)
	}

	prefix := c.base.Path + "/bin/"
	if !strings.HasPrefix(u.EscapedPath(), prefix) {
		return nil, fmt.Errorf("%w: %q has no action path", ErrInvalidReference, rawURL)
	}

	segments := strings.Split(strings.TrimPrefix(u.EscapedPath(), prefix), "/")
	for idx, segment := range segments {
		decoded, err := url.PathUnescape(segment)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidReference, err)
		}
		segments[idx] = decoded
	}

	action, names := segments[0], segments[1:]
	ref := &EntityReference{Wiki: c.wiki}
	switch action {
	case actionView:
		if kind == KindAttachment {
			return nil, fmt.Errorf("%w: %q is not an attachment URL", ErrInvalidReference, rawURL)
		}
		if len(names) < 2 {
			return nil, fmt.Errorf("%w: %q does not name a page", ErrInvalidReference, rawURL)
		}
		ref.Kind = KindDocument
		ref.Space = names[:len(names)-1]
		ref.Page = names[len(names)-1]
	case actionDownload:
		if len(names) < 3 {
			return nil, fmt.Errorf("%w: %q does not name an attachment", ErrInvalidReference, rawURL)
		}
		ref.Kind = KindAttachment
		ref.Space = names[:len(names)-2]
		ref.Page = names[len(names)-2]
		ref.Attachment = names[len(names)-1]
	default:
		return nil, fmt.Errorf("%w: unsupported action %q", ErrInvalidReference, action)
	}

	if err := ref.Validate(); err != nil {
		return nil, err
	}
	return ref, nil
}

// SerializeURL implements URLSerializer.
func (c *WikiURLCodec) SerializeURL(_ context.Context, ref *EntityReference) (string, error) {
	if ref == nil {
		return "", fmt.Errorf("%w: nil reference", ErrInvalidReference)
	}
	if err := ref.Validate(); err != nil {
		return "", err
	}
	if ref.Wiki != "" && ref.Wiki != c.wiki {
		return "", fmt.Errorf("%w: wiki %q is not served at %s", ErrInvalidReference, ref.Wiki, c.base)
	}

	var names []string
	action := actionView
	switch ref.Kind {
	case KindSpace:
		names = append(append(names, ref.Space...), "WebHome")
	case KindDocument:
		names = append(append(names, ref.Space...), ref.Page)
	case KindAttachment:
		action = actionDownload
		names = append(append(names, ref.Space...), ref.Page, ref.Attachment)
	}

	escaped := make([]string, 0, len(names)+2)
	escaped = append(escaped, "bin", action)
	for _, name := range names {
		escaped = append(escaped, url.PathEscape(name))
	}

	u := *c.base
	u.RawPath = c.base.EscapedPath() + "/" + strings.Join(escaped, "/")
	path, err := url.PathUnescape(u.RawPath)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidReference, err)
	}
	u.Path = path
	return u.String(), nil
}
