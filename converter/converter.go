// Package converter converts BlockNote editor blocks to UniAst documents.
package converter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/rgonek/uniast-converter/internal/logging"
	"github.com/rgonek/uniast-converter/internal/target"
	"github.com/rgonek/uniast-converter/reference"
	"github.com/rgonek/uniast-converter/uniast"
)

// Converter converts BlockNote blocks to UniAst.
type Converter struct {
	config   Config
	resolver *target.Resolver
	logger   *slog.Logger
}

type state struct {
	config   Config
	logger   *slog.Logger
	targets  target.Batch
	warnings []Warning
}

// New creates a new Converter with the given config.
func New(config Config) (*Converter, error) {
	cfg := config.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := logging.OrDiscard(cfg.Logger)
	return &Converter{
		config:   cfg,
		resolver: target.NewResolver(cfg.URLParser, nil, cfg.Concurrency, logger),
		logger:   logger,
	}, nil
}

// Convert converts blocks to a UniAst document. Structural problems abort the
// conversion with an error wrapping one of the uniast sentinel errors; no
// document is returned in that case.
func (c *Converter) Convert(ctx context.Context, blocks []Block) (Result, error) {
	s := &state{
		config: c.config,
		logger: c.logger,
	}

	converted, err := s.convertBlocks(blocks, "blocks")
	if err != nil {
		c.logger.Debug("BlockNote conversion failed", logging.Err(err))
		return Result{}, err
	}

	failures, err := c.resolver.Resolve(ctx, &s.targets)
	if err != nil {
		return Result{}, fmt.Errorf("failed to resolve targets: %w", err)
	}
	for _, failure := range failures {
		if errors.Is(failure.Err, reference.ErrInvalidReference) {
			continue
		}
		s.addWarning(WarningUnresolvedReference, "", fmt.Sprintf("%q kept as external URL: %v", failure.Raw, failure.Err))
	}

	if converted == nil {
		converted = []uniast.Block{}
	}
	return Result{
		Document: &uniast.Document{Blocks: converted},
		Warnings: s.warnings,
	}, nil
}

// ConvertJSON decodes a JSON array of BlockNote blocks and converts it.
func (c *Converter) ConvertJSON(ctx context.Context, input []byte) (Result, error) {
	blocks, err := DecodeBlocks(input)
	if err != nil {
		return Result{}, err
	}
	return c.Convert(ctx, blocks)
}

func (s *state) addWarning(warnType WarningType, nodeType, message string) {
	s.warnings = append(s.warnings, Warning{
		Type:     warnType,
		NodeType: nodeType,
		Message:  message,
	})
}

func (s *state) unknown(path, nodeType string) error {
	if s.config.UnknownNodes == UnknownSkip {
		s.logger.Debug("Skipping unknown node", "path", path, "type", nodeType)
		s.addWarning(WarningUnknownNode, nodeType, fmt.Sprintf("%s skipped", path))
		return nil
	}
	return uniast.Nodef(path, nodeType, uniast.ErrUnexpectedNode, "unsupported type %q", nodeType)
}
