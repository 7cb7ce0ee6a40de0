package uniast

import (
	"errors"
	"fmt"
)

// Structural errors. They abort a whole conversion.
var (
	ErrUnexpectedNode     = errors.New("unexpected node")
	ErrUnexpectedChildren = errors.New("unexpected children")
	ErrNestedLink         = errors.New("nested link")
	ErrMacroBodyKind      = errors.New("macro body kind mismatch")
	ErrUnknownMacro       = errors.New("unknown macro")
	ErrMalformedList      = errors.New("malformed list")
	ErrInvalidParam       = errors.New("invalid macro parameter")
	ErrInvalidDocument    = errors.New("invalid document")
)

// NodeError locates a structural error in the input tree.
type NodeError struct {
	Path string
	Type string
	Err  error
}

// NewNodeError wraps err with the location of the failing node.
func NewNodeError(path, nodeType string, err error) *NodeError {
	return &NodeError{Path: path, Type: nodeType, Err: err}
}

func (e *NodeError) Error() string {
	if e.Type == "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("%s (%s): %v", e.Path, e.Type, e.Err)
}

func (e *NodeError) Unwrap() error {
	return e.Err
}

// Nodef builds a NodeError wrapping sentinel with a formatted detail.
func Nodef(path, nodeType string, sentinel error, format string, args ...any) *NodeError {
	return NewNodeError(path, nodeType, fmt.Errorf("%w: "+format, append([]any{sentinel}, args...)...))
}

// Index appends an index to a path, for example "blocks" -> "blocks[2]".
func Index(path string, idx int) string {
	return fmt.Sprintf("%s[%d]", path, idx)
}

// Field appends a field name to a path.
func Field(path, name string) string {
	if path == "" {
		return name
	}
	return path + "." + name
}
