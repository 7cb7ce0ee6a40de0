// Package bnconverter converts UniAst documents to BlockNote editor blocks.
package bnconverter

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/rgonek/uniast-converter/converter"
	"github.com/rgonek/uniast-converter/internal/logging"
	"github.com/rgonek/uniast-converter/internal/target"
	"github.com/rgonek/uniast-converter/uniast"
)

// Result holds the output of a UniAst to BlockNote conversion.
type Result struct {
	Blocks   []converter.Block   `json:"blocks"`
	Warnings []converter.Warning `json:"warnings,omitempty"`
}

// Converter converts UniAst documents to BlockNote blocks.
type Converter struct {
	config     Config
	serializer *target.Serializer
	logger     *slog.Logger
}

type state struct {
	config   Config
	logger   *slog.Logger
	urls     map[uniast.LinkTarget]*string
	warnings []converter.Warning
}

// New creates a new Converter with the given config.
func New(config Config) (*Converter, error) {
	cfg := config.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := logging.OrDiscard(cfg.Logger)
	return &Converter{
		config:     cfg,
		serializer: target.NewSerializer(cfg.URLSerializer, cfg.Concurrency, logger),
		logger:     logger,
	}, nil
}

// Convert converts doc to native blocks. The document is validated first;
// structural problems abort the conversion and no blocks are returned.
func (c *Converter) Convert(ctx context.Context, doc *uniast.Document) (Result, error) {
	if err := uniast.Validate(doc); err != nil {
		return Result{}, err
	}

	s := &state{
		config: c.config,
		logger: c.logger,
		urls:   make(map[uniast.LinkTarget]*string),
	}

	var batch target.SerializeBatch
	uniast.WalkTargets(doc.Blocks, "blocks", func(t uniast.LinkTarget, path string) {
		if _, ok := s.urls[t]; ok {
			return
		}
		slot := new(string)
		s.urls[t] = slot
		batch.Add(slot, t, path)
	})
	failures, err := c.serializer.Serialize(ctx, &batch)
	if err != nil {
		return Result{}, fmt.Errorf("failed to serialize targets: %w", err)
	}
	for _, failure := range failures {
		s.addWarning(converter.WarningUnresolvedReference, "", fmt.Sprintf("reference %q kept raw: %v", failure.Raw, failure.Err))
	}

	blocks, err := s.convertBlocks(doc.Blocks, "blocks")
	if err != nil {
		c.logger.Debug("UniAst conversion failed", logging.Err(err))
		return Result{}, err
	}
	return Result{Blocks: blocks, Warnings: s.warnings}, nil
}

// ConvertJSON decodes a UniAst JSON document and converts it.
func (c *Converter) ConvertJSON(ctx context.Context, input []byte) (Result, error) {
	var doc uniast.Document
	if err := json.Unmarshal(input, &doc); err != nil {
		return Result{}, fmt.Errorf("failed to decode document: %w", err)
	}
	return c.Convert(ctx, &doc)
}

func (s *state) addWarning(warnType converter.WarningType, nodeType, message string) {
	s.warnings = append(s.warnings, converter.Warning{
		Type:     warnType,
		NodeType: nodeType,
		Message:  message,
	})
}

func (s *state) href(t uniast.LinkTarget) string {
	if slot, ok := s.urls[t]; ok {
		return *slot
	}
	return ""
}

func (s *state) newBlock(blockType string, props converter.Props) converter.Block {
	return converter.Block{
		ID:       s.config.IDGenerator(),
		Type:     blockType,
		Props:    props,
		Children: []converter.Block{},
	}
}
