// Package mdconverter converts Markdown to UniAst documents and back.
//
// Besides GitHub Flavored Markdown it reads and writes the wiki syntax for
// internal links ("[[label|reference]]") and images ("![[alt|reference]]")
// and macro calls ("{{name k=v /}}").
package mdconverter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"

	"github.com/rgonek/uniast-converter/converter"
	"github.com/rgonek/uniast-converter/internal/logging"
	"github.com/rgonek/uniast-converter/internal/target"
	"github.com/rgonek/uniast-converter/reference"
	"github.com/rgonek/uniast-converter/uniast"
)

// Converter converts between Markdown and UniAst.
type Converter struct {
	config     Config
	parser     goldmark.Markdown
	resolver   *target.Resolver
	serializer *target.Serializer
	logger     *slog.Logger
}

type state struct {
	ctx           context.Context
	config        Config
	logger        *slog.Logger
	source        []byte
	parser        goldmark.Markdown
	targets       target.Batch
	warnings      []converter.Warning
	htmlSpanStack [][]markKind
}

// New creates a new Converter with the given config.
func New(config Config) (*Converter, error) {
	cfg := config.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := logging.OrDiscard(cfg.Logger)
	return &Converter{
		config: cfg,
		parser: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithParserOptions(
				parser.WithInlineParsers(
					util.Prioritized(NewWikiImageParser(), 198),
					util.Prioritized(NewWikiLinkParser(), 199),
					util.Prioritized(NewMacroParser(), 199),
				),
				parser.WithBlockParsers(
					util.Prioritized(NewMacroBlockParser(), 90),
				),
			),
		),
		resolver:   target.NewResolver(cfg.URLParser, cfg.ReferenceParser, cfg.Concurrency, logger),
		serializer: target.NewSerializer(cfg.URLSerializer, cfg.Concurrency, logger),
		logger:     logger,
	}, nil
}

// ToUniAst parses a Markdown document. Link and image destinations are
// resolved once the whole document is converted; failures fall back to
// external or unparsed targets and are reported as warnings.
func (c *Converter) ToUniAst(ctx context.Context, markdown string) (*uniast.Document, Result, error) {
	s := &state{
		ctx:    ctx,
		config: c.config,
		logger: c.logger,
		source: []byte(markdown),
		parser: c.parser,
	}

	root := c.parser.Parser().Parse(text.NewReader(s.source))
	doc, err := s.convertDocument(root)
	if err != nil {
		c.logger.Debug("Markdown conversion failed", logging.Err(err))
		return nil, Result{}, err
	}

	failures, err := c.resolver.Resolve(ctx, &s.targets)
	if err != nil {
		return nil, Result{}, fmt.Errorf("failed to resolve targets: %w", err)
	}
	for _, failure := range failures {
		if errors.Is(failure.Err, reference.ErrInvalidReference) {
			continue
		}
		s.addWarning(converter.WarningUnresolvedReference, "", fmt.Sprintf("%q left unresolved: %v", failure.Raw, failure.Err))
	}

	return doc, Result{Warnings: s.warnings}, nil
}

// ToMarkdown writes doc as Markdown. The document is validated first.
func (c *Converter) ToMarkdown(ctx context.Context, doc *uniast.Document) (string, Result, error) {
	if err := uniast.Validate(doc); err != nil {
		return "", Result{}, err
	}

	w := &writer{
		config: c.config,
		logger: c.logger,
		urls:   make(map[uniast.LinkTarget]*string),
	}

	var batch target.SerializeBatch
	uniast.WalkTargets(doc.Blocks, "blocks", func(t uniast.LinkTarget, path string) {
		internal, ok := t.(*uniast.InternalTarget)
		if !ok || internal.RawReference != "" || internal.ParsedReference == nil {
			return
		}
		if _, ok := w.urls[t]; ok {
			return
		}
		slot := new(string)
		w.urls[t] = slot
		batch.Add(slot, t, path)
	})
	failures, err := c.serializer.Serialize(ctx, &batch)
	if err != nil {
		return "", Result{}, fmt.Errorf("failed to serialize targets: %w", err)
	}
	for _, failure := range failures {
		w.addWarning(converter.WarningUnresolvedReference, "", fmt.Sprintf("reference could not be serialized: %v", failure.Err))
	}

	out, err := w.writeDocument(doc)
	if err != nil {
		c.logger.Debug("Markdown rendering failed", logging.Err(err))
		return "", Result{}, err
	}
	return out, Result{Warnings: w.warnings}, nil
}

func (s *state) addWarning(warnType converter.WarningType, nodeType, message string) {
	s.warnings = append(s.warnings, converter.Warning{
		Type:     warnType,
		NodeType: nodeType,
		Message:  message,
	})
}

func (s *state) checkContext() error {
	if s.ctx == nil {
		return nil
	}
	return s.ctx.Err()
}
