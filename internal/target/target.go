// Package target resolves link and image destinations to UniAst targets and
// back. Lookups of one conversion run concurrently; results are stored by
// position so output order never depends on completion order.
package target

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/rgonek/uniast-converter/internal/logging"
	"github.com/rgonek/uniast-converter/reference"
	"github.com/rgonek/uniast-converter/uniast"
)

// DefaultConcurrency bounds concurrent lookups when no limit is configured.
const DefaultConcurrency = 8

// ErrCollaboratorPanic wraps a panic raised by an injected parser or
// serializer.
var ErrCollaboratorPanic = errors.New("reference collaborator panicked")

// Failure records a lookup that fell back to the unresolved form.
type Failure struct {
	Raw string
	Err error
}

// Request describes one destination to resolve.
type Request struct {
	// Raw is a URL, or a reference string when Wiki is set.
	Raw  string
	Kind reference.Kind
	Wiki bool
}

// Batch collects target slots to fill in one Resolve call.
type Batch struct {
	requests []Request
	slots    []*uniast.LinkTarget
}

// Add registers slot to receive the resolution of req.
func (b *Batch) Add(slot *uniast.LinkTarget, req Request) {
	b.requests = append(b.requests, req)
	b.slots = append(b.slots, slot)
}

// Len returns the number of pending requests.
func (b *Batch) Len() int {
	return len(b.requests)
}

// Resolver turns URLs and reference strings into link targets.
type Resolver struct {
	urls   reference.URLParser
	refs   reference.Parser
	limit  int
	logger *slog.Logger
}

// NewResolver creates a Resolver. Either parser may be nil: URLs then stay
// external and reference strings stay unparsed.
func NewResolver(urls reference.URLParser, refs reference.Parser, limit int, logger *slog.Logger) *Resolver {
	if limit <= 0 {
		limit = DefaultConcurrency
	}
	return &Resolver{urls: urls, refs: refs, limit: limit, logger: logging.OrDiscard(logger)}
}

// Resolve fills every slot of b. Parse failures never abort: they fall back
// to an external target (URLs) or an unparsed internal target (reference
// strings) and are reported as failures in request order.
func (r *Resolver) Resolve(ctx context.Context, b *Batch) ([]Failure, error) {
	n := b.Len()
	targets := make([]uniast.LinkTarget, n)
	errs := make([]error, n)

	err := runIndexed(ctx, n, r.limit, func(ctx context.Context, idx int) {
		targets[idx], errs[idx] = r.resolve(ctx, b.requests[idx])
	})
	if err != nil {
		return nil, err
	}

	var failures []Failure
	for idx, slot := range b.slots {
		*slot = targets[idx]
		if errs[idx] != nil {
			failures = append(failures, Failure{Raw: b.requests[idx].Raw, Err: errs[idx]})
		}
	}
	return failures, nil
}

func (r *Resolver) resolve(ctx context.Context, req Request) (uniast.LinkTarget, error) {
	if req.Wiki {
		if r.refs == nil {
			return &uniast.InternalTarget{RawReference: req.Raw}, nil
		}
		ref, err := guard(func() (*reference.EntityReference, error) {
			return r.refs.ParseReference(ctx, req.Raw, req.Kind)
		})
		if err != nil {
			r.logger.Debug("Reference left unparsed", "reference", req.Raw, logging.Err(err))
			return &uniast.InternalTarget{RawReference: req.Raw}, err
		}
		return &uniast.InternalTarget{ParsedReference: ref, RawReference: req.Raw}, nil
	}

	if r.urls == nil {
		return &uniast.ExternalTarget{URL: req.Raw}, nil
	}
	ref, err := guard(func() (*reference.EntityReference, error) {
		return r.urls.ParseURL(ctx, req.Raw, req.Kind)
	})
	if err != nil {
		logging.LogTrace(r.logger, "URL kept external", "url", req.Raw, logging.Err(err))
		return &uniast.ExternalTarget{URL: req.Raw}, err
	}
	if ref == nil {
		return &uniast.ExternalTarget{URL: req.Raw}, fmt.Errorf("%w: parser returned no reference", reference.ErrInvalidReference)
	}
	return &uniast.InternalTarget{ParsedReference: ref, RawReference: ref.String()}, nil
}

// guard calls fn, turning a panic into an error.
func guard[T any](fn func() (T, error)) (result T, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			var zero T
			result = zero
			err = fmt.Errorf("%w: %v", ErrCollaboratorPanic, rec)
		}
	}()
	return fn()
}

// runIndexed calls fn for every index in [0, n) with at most limit calls in
// flight and waits for all of them.
func runIndexed(ctx context.Context, n, limit int, fn func(ctx context.Context, idx int)) error {
	if n == 0 {
		return nil
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for idx := 0; idx < n; idx++ {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			fn(gctx, idx)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}
