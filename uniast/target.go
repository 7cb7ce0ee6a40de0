package uniast

import "github.com/rgonek/uniast-converter/reference"

// Target type names.
const (
	TargetExternal = "external"
	TargetInternal = "internal"
)

// LinkTarget is the destination of a link or image: ExternalTarget or
// InternalTarget.
type LinkTarget interface {
	TargetType() string
	isLinkTarget()
}

// ExternalTarget is an opaque URL.
type ExternalTarget struct {
	URL string `json:"url"`
}

// InternalTarget is a reference to a wiki entity. RawReference keeps the
// original string form; ParsedReference is nil when it could not be parsed.
type InternalTarget struct {
	ParsedReference *reference.EntityReference `json:"parsedReference"`
	RawReference    string                     `json:"rawReference"`
}

func (*ExternalTarget) TargetType() string { return TargetExternal }
func (*InternalTarget) TargetType() string { return TargetInternal }

func (*ExternalTarget) isLinkTarget() {}
func (*InternalTarget) isLinkTarget() {}
