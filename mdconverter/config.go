package mdconverter

import (
	"fmt"
	"log/slog"

	"github.com/rgonek/uniast-converter/macro"
	"github.com/rgonek/uniast-converter/reference"
)

// BulletMarker is the character written in front of bullet and task items.
type BulletMarker string

const (
	BulletAsterisk BulletMarker = "*"
	BulletDash     BulletMarker = "-"
)

// alternate returns the other marker. Consecutive lists switch markers so
// they read back as separate lists.
func (m BulletMarker) alternate() BulletMarker {
	if m == BulletDash {
		return BulletAsterisk
	}
	return BulletDash
}

// Config configures Markdown conversion in both directions.
type Config struct {
	BulletMarker BulletMarker `json:"bulletMarker,omitempty"`
	// ImageAlignment is the alignment given to images written with the
	// wiki syntax.
	ImageAlignment string `json:"imageAlignment,omitempty"`
	Concurrency    int    `json:"concurrency,omitempty"`

	Registry        macro.Registry          `json:"-"`
	URLParser       reference.URLParser     `json:"-"`
	ReferenceParser reference.Parser        `json:"-"`
	URLSerializer   reference.URLSerializer `json:"-"`
	Logger          *slog.Logger            `json:"-"`
}

func (c Config) applyDefaults() Config {
	if c.BulletMarker == "" {
		c.BulletMarker = BulletAsterisk
	}
	if c.ImageAlignment == "" {
		c.ImageAlignment = "left"
	}
	if c.Registry == nil {
		c.Registry = macro.Empty
	}
	if c.ReferenceParser == nil {
		c.ReferenceParser = reference.StringParser{}
	}
	return c
}

// Validate checks that config values are valid.
func (c Config) Validate() error {
	if c.BulletMarker != BulletAsterisk && c.BulletMarker != BulletDash {
		return fmt.Errorf("invalid bulletMarker %q", c.BulletMarker)
	}
	switch c.ImageAlignment {
	case "left", "center", "right":
	default:
		return fmt.Errorf("invalid imageAlignment %q", c.ImageAlignment)
	}
	if c.Concurrency < 0 {
		return fmt.Errorf("concurrency must not be negative, got %d", c.Concurrency)
	}
	return nil
}
