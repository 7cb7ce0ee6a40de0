package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/rgonek/uniast-converter/bnconverter"
	"github.com/rgonek/uniast-converter/converter"
	"github.com/rgonek/uniast-converter/internal/logging"
	"github.com/rgonek/uniast-converter/macro"
	"github.com/rgonek/uniast-converter/mdconverter"
	"github.com/rgonek/uniast-converter/reference"
	"github.com/rgonek/uniast-converter/uniast"
)

type format string

const (
	formatBlockNote format = "blocknote"
	formatUniAst    format = "uniast"
	formatMarkdown  format = "markdown"
)

func parseFormat(value string) (format, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "blocknote", "bn":
		return formatBlockNote, nil
	case "uniast", "json":
		return formatUniAst, nil
	case "markdown", "md":
		return formatMarkdown, nil
	default:
		return "", fmt.Errorf("unknown format %q (allowed: blocknote, uniast, markdown)", value)
	}
}

// options holds the flags shared by every command.
type options struct {
	logLevel    string
	logJSON     bool
	macros      string
	baseURL     string
	wiki        string
	concurrency int
	skipUnknown bool
}

func (o *options) newLogger(w io.Writer) *slog.Logger {
	return slog.New(logging.NewHandler(w, logging.ParseLevel(o.logLevel), o.logJSON))
}

// pipeline converts documents between formats through UniAst.
type pipeline struct {
	fromBlockNote *converter.Converter
	toBlockNote   *bnconverter.Converter
	markdown      *mdconverter.Converter
	logger        *slog.Logger
}

func newPipeline(o *options, logger *slog.Logger) (*pipeline, error) {
	var registry macro.Registry = macro.Empty
	if o.macros != "" {
		catalog, err := macro.LoadFile(o.macros)
		if err != nil {
			return nil, err
		}
		registry = catalog
	}

	bnConfig := converter.Config{Registry: registry, Concurrency: o.concurrency, Logger: logger}
	toBNConfig := bnconverter.Config{Registry: registry, Concurrency: o.concurrency, Logger: logger}
	mdConfig := mdconverter.Config{Registry: registry, Concurrency: o.concurrency, Logger: logger}
	if o.skipUnknown {
		bnConfig.UnknownNodes = converter.UnknownSkip
	}
	if o.baseURL != "" {
		codec, err := reference.NewWikiURLCodec(o.baseURL, o.wiki)
		if err != nil {
			return nil, err
		}
		bnConfig.URLParser = codec
		toBNConfig.URLSerializer = codec
		mdConfig.URLParser = codec
		mdConfig.URLSerializer = codec
	}

	fromBlockNote, err := converter.New(bnConfig)
	if err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	toBlockNote, err := bnconverter.New(toBNConfig)
	if err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	markdown, err := mdconverter.New(mdConfig)
	if err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &pipeline{
		fromBlockNote: fromBlockNote,
		toBlockNote:   toBlockNote,
		markdown:      markdown,
		logger:        logger,
	}, nil
}

// decode reads input in the given format into a UniAst document.
func (p *pipeline) decode(ctx context.Context, from format, input []byte) (*uniast.Document, error) {
	switch from {
	case formatBlockNote:
		result, err := p.fromBlockNote.ConvertJSON(ctx, input)
		if err != nil {
			return nil, err
		}
		p.logWarnings(result.Warnings)
		return result.Document, nil
	case formatUniAst:
		var doc uniast.Document
		if err := json.Unmarshal(input, &doc); err != nil {
			return nil, fmt.Errorf("failed to decode document: %w", err)
		}
		return &doc, nil
	case formatMarkdown:
		doc, result, err := p.markdown.ToUniAst(ctx, string(input))
		if err != nil {
			return nil, err
		}
		p.logWarnings(result.Warnings)
		return doc, nil
	default:
		return nil, fmt.Errorf("unknown format %q", from)
	}
}

// encode writes doc in the given format. JSON output is indented when pretty
// is set.
func (p *pipeline) encode(ctx context.Context, to format, doc *uniast.Document, pretty bool) ([]byte, error) {
	switch to {
	case formatBlockNote:
		result, err := p.toBlockNote.Convert(ctx, doc)
		if err != nil {
			return nil, err
		}
		p.logWarnings(result.Warnings)
		return marshalJSON(result.Blocks, pretty)
	case formatUniAst:
		if err := uniast.Validate(doc); err != nil {
			return nil, err
		}
		return marshalJSON(doc, pretty)
	case formatMarkdown:
		out, result, err := p.markdown.ToMarkdown(ctx, doc)
		if err != nil {
			return nil, err
		}
		p.logWarnings(result.Warnings)
		return []byte(out + "\n"), nil
	default:
		return nil, fmt.Errorf("unknown format %q", to)
	}
}

func (p *pipeline) logWarnings(warnings []converter.Warning) {
	for _, w := range warnings {
		p.logger.Warn(w.Message, "type", w.Type, "nodeType", w.NodeType)
	}
}

func marshalJSON(v any, pretty bool) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode output: %w", err)
	}
	if pretty {
		var buf bytes.Buffer
		if err := json.Indent(&buf, data, "", "  "); err != nil {
			return nil, fmt.Errorf("failed to format output: %w", err)
		}
		data = buf.Bytes()
	}
	return append(data, '\n'), nil
}

func readInput(cmd *cobra.Command, args []string) ([]byte, error) {
	if len(args) == 0 {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(args[0])
}

// isTerminal reports whether w is a terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
