package mdconverter

import "github.com/rgonek/uniast-converter/converter"

// Result holds the warnings of a Markdown conversion.
type Result struct {
	Warnings []converter.Warning `json:"warnings,omitempty"`
}
