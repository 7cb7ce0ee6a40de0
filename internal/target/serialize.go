package target

import (
	"context"
	"log/slog"

	"github.com/rgonek/uniast-converter/internal/logging"
	"github.com/rgonek/uniast-converter/reference"
	"github.com/rgonek/uniast-converter/uniast"
)

// SerializeBatch collects string slots to fill from targets in one Serialize
// call.
type SerializeBatch struct {
	targets []uniast.LinkTarget
	paths   []string
	slots   []*string
}

// Add registers slot to receive the URL of t. path locates the target for
// error reporting.
func (b *SerializeBatch) Add(slot *string, t uniast.LinkTarget, path string) {
	b.targets = append(b.targets, t)
	b.paths = append(b.paths, path)
	b.slots = append(b.slots, slot)
}

// Len returns the number of pending targets.
func (b *SerializeBatch) Len() int {
	return len(b.targets)
}

// Serializer turns link targets back into URLs.
type Serializer struct {
	urls   reference.URLSerializer
	limit  int
	logger *slog.Logger
}

// NewSerializer creates a Serializer. A nil URL serializer makes internal
// targets fall back to their raw reference.
func NewSerializer(urls reference.URLSerializer, limit int, logger *slog.Logger) *Serializer {
	if limit <= 0 {
		limit = DefaultConcurrency
	}
	return &Serializer{urls: urls, limit: limit, logger: logging.OrDiscard(logger)}
}

// Serialize fills every slot of b. External targets are copied verbatim.
// Internal targets are serialized from their parsed reference, falling back
// to the raw reference when there is none or serialization fails. Only an
// unsupported target is an error.
func (s *Serializer) Serialize(ctx context.Context, b *SerializeBatch) ([]Failure, error) {
	for idx, t := range b.targets {
		switch t.(type) {
		case *uniast.ExternalTarget, *uniast.InternalTarget:
		case nil:
			return nil, uniast.Nodef(b.paths[idx], "", uniast.ErrInvalidDocument, "missing target")
		default:
			return nil, uniast.Nodef(b.paths[idx], t.TargetType(), uniast.ErrUnexpectedNode, "unsupported target")
		}
	}

	n := b.Len()
	urls := make([]string, n)
	errs := make([]error, n)
	err := runIndexed(ctx, n, s.limit, func(ctx context.Context, idx int) {
		urls[idx], errs[idx] = s.serialize(ctx, b.targets[idx])
	})
	if err != nil {
		return nil, err
	}

	var failures []Failure
	for idx, slot := range b.slots {
		*slot = urls[idx]
		if errs[idx] != nil {
			failures = append(failures, Failure{Raw: urls[idx], Err: errs[idx]})
		}
	}
	return failures, nil
}

func (s *Serializer) serialize(ctx context.Context, t uniast.LinkTarget) (string, error) {
	switch t := t.(type) {
	case *uniast.ExternalTarget:
		return t.URL, nil
	case *uniast.InternalTarget:
		if t.ParsedReference == nil || s.urls == nil {
			return t.RawReference, nil
		}
		url, err := guard(func() (string, error) {
			return s.urls.SerializeURL(ctx, t.ParsedReference)
		})
		if err != nil {
			s.logger.Debug("Falling back to raw reference", "reference", t.RawReference, logging.Err(err))
			return t.RawReference, err
		}
		return url, nil
	default:
		return "", uniast.ErrUnexpectedNode
	}
}
