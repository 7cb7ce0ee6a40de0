package target

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rgonek/uniast-converter/reference"
	"github.com/rgonek/uniast-converter/uniast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeURLParser struct {
	inFlight atomic.Int32
	maxSeen  atomic.Int32
}

func (p *fakeURLParser) ParseURL(_ context.Context, rawURL string, kind reference.Kind) (*reference.EntityReference, error) {
	current := p.inFlight.Add(1)
	defer p.inFlight.Add(-1)
	for {
		seen := p.maxSeen.Load()
		if current <= seen || p.maxSeen.CompareAndSwap(seen, current) {
			break
		}
	}

	switch {
	case strings.HasPrefix(rawURL, "panic:"):
		panic("parser exploded")
	case strings.HasPrefix(rawURL, "wiki:"):
		// Later requests finish first to prove results keep input order.
		var n int
		_, _ = fmt.Sscanf(rawURL, "wiki:%d", &n)
		time.Sleep(time.Duration(10-n) * time.Millisecond)
		return &reference.EntityReference{Kind: kind, Space: []string{"Main"}, Page: fmt.Sprintf("P%d", n)}, nil
	default:
		return nil, reference.ErrInvalidReference
	}
}

func TestResolvePreservesOrder(t *testing.T) {
	parser := &fakeURLParser{}
	resolver := NewResolver(parser, nil, 3, nil)

	slots := make([]uniast.LinkTarget, 10)
	var batch Batch
	for idx := range slots {
		batch.Add(&slots[idx], Request{Raw: fmt.Sprintf("wiki:%d", idx), Kind: reference.KindDocument})
	}

	failures, err := resolver.Resolve(context.Background(), &batch)
	require.NoError(t, err)
	assert.Empty(t, failures)

	for idx, slot := range slots {
		internal, ok := slot.(*uniast.InternalTarget)
		require.True(t, ok, "slot %d", idx)
		assert.Equal(t, fmt.Sprintf("Main.P%d", idx), internal.RawReference)
		assert.Equal(t, fmt.Sprintf("P%d", idx), internal.ParsedReference.Page)
	}
	assert.LessOrEqual(t, parser.maxSeen.Load(), int32(3))
}

func TestResolveFallsBackToExternal(t *testing.T) {
	resolver := NewResolver(&fakeURLParser{}, nil, 0, nil)

	var external, panicking uniast.LinkTarget
	var batch Batch
	batch.Add(&external, Request{Raw: "http://somewhere.somewhere/?q=1&x", Kind: reference.KindAttachment})
	batch.Add(&panicking, Request{Raw: "panic:now", Kind: reference.KindDocument})

	failures, err := resolver.Resolve(context.Background(), &batch)
	require.NoError(t, err)

	assert.Equal(t, &uniast.ExternalTarget{URL: "http://somewhere.somewhere/?q=1&x"}, external)
	assert.Equal(t, &uniast.ExternalTarget{URL: "panic:now"}, panicking)
	require.Len(t, failures, 2)
	assert.ErrorIs(t, failures[0].Err, reference.ErrInvalidReference)
	assert.ErrorIs(t, failures[1].Err, ErrCollaboratorPanic)
}

func TestResolveWithoutParsers(t *testing.T) {
	resolver := NewResolver(nil, nil, 0, nil)

	var link, wiki uniast.LinkTarget
	var batch Batch
	batch.Add(&link, Request{Raw: "http://x", Kind: reference.KindDocument})
	batch.Add(&wiki, Request{Raw: "Main.Page", Kind: reference.KindDocument, Wiki: true})

	failures, err := resolver.Resolve(context.Background(), &batch)
	require.NoError(t, err)
	assert.Empty(t, failures)
	assert.Equal(t, &uniast.ExternalTarget{URL: "http://x"}, link)
	assert.Equal(t, &uniast.InternalTarget{RawReference: "Main.Page"}, wiki)
}

func TestResolveWikiReferences(t *testing.T) {
	resolver := NewResolver(nil, reference.StringParser{}, 0, nil)

	var parsed, unparsed uniast.LinkTarget
	var batch Batch
	batch.Add(&parsed, Request{Raw: "Main.Page", Kind: reference.KindDocument, Wiki: true})
	batch.Add(&unparsed, Request{Raw: "documentReference", Kind: reference.KindDocument, Wiki: true})

	failures, err := resolver.Resolve(context.Background(), &batch)
	require.NoError(t, err)
	require.Len(t, failures, 1)
	assert.Equal(t, "documentReference", failures[0].Raw)

	assert.Equal(t, &uniast.InternalTarget{
		ParsedReference: &reference.EntityReference{Kind: reference.KindDocument, Space: []string{"Main"}, Page: "Page"},
		RawReference:    "Main.Page",
	}, parsed)
	assert.Equal(t, &uniast.InternalTarget{RawReference: "documentReference"}, unparsed)
}

func TestResolveCancelledContext(t *testing.T) {
	resolver := NewResolver(&fakeURLParser{}, nil, 1, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var slot uniast.LinkTarget
	var batch Batch
	batch.Add(&slot, Request{Raw: "wiki:1"})

	_, err := resolver.Resolve(ctx, &batch)
	assert.ErrorIs(t, err, context.Canceled)
}

type fakeURLSerializer struct{}

func (fakeURLSerializer) SerializeURL(_ context.Context, ref *reference.EntityReference) (string, error) {
	switch ref.Page {
	case "Broken":
		return "", errors.New("no route")
	case "Panic":
		panic("serializer exploded")
	}
	return "https://wiki/" + ref.String(), nil
}

func TestSerialize(t *testing.T) {
	serializer := NewSerializer(fakeURLSerializer{}, 2, nil)

	targets := []uniast.LinkTarget{
		&uniast.ExternalTarget{URL: "http://example.com/a b"},
		&uniast.InternalTarget{ParsedReference: &reference.EntityReference{Kind: reference.KindDocument, Space: []string{"Main"}, Page: "Home"}, RawReference: "ignored"},
		&uniast.InternalTarget{RawReference: "Raw.Only"},
		&uniast.InternalTarget{ParsedReference: &reference.EntityReference{Kind: reference.KindDocument, Space: []string{"Main"}, Page: "Broken"}, RawReference: "Main.Broken"},
		&uniast.InternalTarget{ParsedReference: &reference.EntityReference{Kind: reference.KindDocument, Space: []string{"Main"}, Page: "Panic"}, RawReference: "Main.Panic"},
	}
	out := make([]string, len(targets))
	var batch SerializeBatch
	for idx, target := range targets {
		batch.Add(&out[idx], target, fmt.Sprintf("t[%d]", idx))
	}

	failures, err := serializer.Serialize(context.Background(), &batch)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"http://example.com/a b",
		"https://wiki/Main.Home",
		"Raw.Only",
		"Main.Broken",
		"Main.Panic",
	}, out)
	require.Len(t, failures, 2)
	assert.ErrorIs(t, failures[1].Err, ErrCollaboratorPanic)
}

func TestSerializeRejectsMissingTarget(t *testing.T) {
	serializer := NewSerializer(nil, 0, nil)
	var out string
	var batch SerializeBatch
	batch.Add(&out, nil, "blocks[0].target")

	_, err := serializer.Serialize(context.Background(), &batch)
	assert.ErrorIs(t, err, uniast.ErrInvalidDocument)
}
