package bnconverter

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/rgonek/uniast-converter/macro"
	"github.com/rgonek/uniast-converter/reference"
)

// QuotePolicy controls quotes wrapping more than one paragraph, which a
// native quote cannot hold.
type QuotePolicy string

const (
	// QuoteJoin joins the paragraphs with line breaks and warns.
	QuoteJoin QuotePolicy = "join"
	// QuoteError fails the conversion.
	QuoteError QuotePolicy = "error"
)

// Config configures UniAst to BlockNote conversion.
type Config struct {
	// LegacyHeadings emits levels 4 to 6 as the Heading4, Heading5 and
	// Heading6 block types of older editor versions.
	LegacyHeadings bool        `json:"legacyHeadings,omitempty"`
	Quotes         QuotePolicy `json:"quotes,omitempty"`
	Concurrency    int         `json:"concurrency,omitempty"`

	Registry      macro.Registry          `json:"-"`
	URLSerializer reference.URLSerializer `json:"-"`
	// IDGenerator returns a fresh block id. Defaults to random UUIDs.
	IDGenerator func() string `json:"-"`
	Logger      *slog.Logger  `json:"-"`
}

func (c Config) applyDefaults() Config {
	if c.Quotes == "" {
		c.Quotes = QuoteJoin
	}
	if c.Registry == nil {
		c.Registry = macro.Empty
	}
	if c.IDGenerator == nil {
		c.IDGenerator = uuid.NewString
	}
	return c
}

// Validate checks that config values are valid.
func (c Config) Validate() error {
	if c.Quotes != QuoteJoin && c.Quotes != QuoteError {
		return fmt.Errorf("invalid quotes %q", c.Quotes)
	}
	if c.Concurrency < 0 {
		return fmt.Errorf("concurrency must not be negative, got %d", c.Concurrency)
	}
	return nil
}
