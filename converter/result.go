package converter

import "github.com/rgonek/uniast-converter/uniast"

// Result holds the output of a BlockNote to UniAst conversion.
type Result struct {
	Document *uniast.Document `json:"document"`
	Warnings []Warning        `json:"warnings,omitempty"`
}

// WarningType categorizes conversion warnings.
type WarningType string

const (
	WarningUnknownNode         WarningType = "unknown_node"
	WarningDroppedBlock        WarningType = "dropped_block"
	WarningLossyConversion     WarningType = "lossy_conversion"
	WarningClampedValue        WarningType = "clamped_value"
	WarningUnresolvedReference WarningType = "unresolved_reference"
)

// Warning represents a non-fatal issue encountered during conversion.
type Warning struct {
	Type     WarningType `json:"type"`
	NodeType string      `json:"nodeType,omitempty"`
	Message  string      `json:"message"`
}
