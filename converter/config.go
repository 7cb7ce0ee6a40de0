package converter

import (
	"fmt"
	"log/slog"

	"github.com/rgonek/uniast-converter/macro"
	"github.com/rgonek/uniast-converter/reference"
)

// UnknownPolicy controls what happens to native node types the converter
// does not know.
type UnknownPolicy string

const (
	UnknownError UnknownPolicy = "error"
	UnknownSkip  UnknownPolicy = "skip"
)

// HeadingOverflow controls heading levels outside 1..6.
type HeadingOverflow string

const (
	HeadingClamp HeadingOverflow = "clamp"
	HeadingError HeadingOverflow = "error"
)

// Config configures BlockNote to UniAst conversion.
type Config struct {
	UnknownNodes    UnknownPolicy   `json:"unknownNodes,omitempty"`
	HeadingOverflow HeadingOverflow `json:"headingOverflow,omitempty"`
	Concurrency     int             `json:"concurrency,omitempty"`

	Registry  macro.Registry      `json:"-"`
	URLParser reference.URLParser `json:"-"`
	Logger    *slog.Logger        `json:"-"`
}

func (c Config) applyDefaults() Config {
	if c.UnknownNodes == "" {
		c.UnknownNodes = UnknownError
	}
	if c.HeadingOverflow == "" {
		c.HeadingOverflow = HeadingClamp
	}
	if c.Registry == nil {
		c.Registry = macro.Empty
	}
	return c
}

// Validate checks that config values are valid.
func (c Config) Validate() error {
	if c.UnknownNodes != UnknownError && c.UnknownNodes != UnknownSkip {
		return fmt.Errorf("invalid unknownNodes %q", c.UnknownNodes)
	}
	if c.HeadingOverflow != HeadingClamp && c.HeadingOverflow != HeadingError {
		return fmt.Errorf("invalid headingOverflow %q", c.HeadingOverflow)
	}
	if c.Concurrency < 0 {
		return fmt.Errorf("concurrency must not be negative, got %d", c.Concurrency)
	}
	return nil
}
