package uniast

import (
	"fmt"
	"sort"
	"strconv"
)

// MacroBodyKind is the kind of body a macro declares.
type MacroBodyKind string

const (
	BodyNone           MacroBodyKind = "none"
	BodyRaw            MacroBodyKind = "raw"
	BodyInlineContent  MacroBodyKind = "inlineContent"
	BodyInlineContents MacroBodyKind = "inlineContents"
)

// Valid reports whether k is a known body kind.
func (k MacroBodyKind) Valid() bool {
	switch k {
	case BodyNone, BodyRaw, BodyInlineContent, BodyInlineContents:
		return true
	}
	return false
}

// AllowedInBlock reports whether a block macro may carry this kind of body.
func (k MacroBodyKind) AllowedInBlock() bool {
	return k == BodyNone || k == BodyRaw || k == BodyInlineContents
}

// AllowedInline reports whether an inline macro may carry this kind of body.
func (k MacroBodyKind) AllowedInline() bool {
	return k == BodyNone || k == BodyRaw || k == BodyInlineContent
}

// MacroBlockBody is the body of a block macro: NoBody, RawBody or
// InlineContentsBody.
type MacroBlockBody interface {
	BodyKind() MacroBodyKind
	isBlockBody()
}

// InlineMacroBody is the body of an inline macro: NoBody, RawBody or
// InlineContentBody.
type InlineMacroBody interface {
	BodyKind() MacroBodyKind
	isInlineBody()
}

type NoBody struct{}

type RawBody struct {
	Content string `json:"content"`
}

type InlineContentsBody struct {
	Content []InlineContent `json:"content"`
}

type InlineContentBody struct {
	Content InlineContent `json:"content"`
}

func (NoBody) BodyKind() MacroBodyKind             { return BodyNone }
func (RawBody) BodyKind() MacroBodyKind            { return BodyRaw }
func (InlineContentsBody) BodyKind() MacroBodyKind { return BodyInlineContents }
func (InlineContentBody) BodyKind() MacroBodyKind  { return BodyInlineContent }

func (NoBody) isBlockBody()             {}
func (RawBody) isBlockBody()            {}
func (InlineContentsBody) isBlockBody() {}

func (NoBody) isInlineBody()            {}
func (RawBody) isInlineBody()           {}
func (InlineContentBody) isInlineBody() {}

// BlockBodyKind returns the kind of body, treating nil as BodyNone.
func BlockBodyKind(body MacroBlockBody) MacroBodyKind {
	if body == nil {
		return BodyNone
	}
	return body.BodyKind()
}

// InlineBodyKind returns the kind of body, treating nil as BodyNone.
func InlineBodyKind(body InlineMacroBody) MacroBodyKind {
	if body == nil {
		return BodyNone
	}
	return body.BodyKind()
}

// ParamValue is a macro parameter value: BoolValue, NumberValue or
// StringValue.
type ParamValue interface {
	String() string
	isParamValue()
}

type BoolValue bool

type NumberValue float64

type StringValue string

func (v BoolValue) String() string { return strconv.FormatBool(bool(v)) }

func (v NumberValue) String() string {
	return strconv.FormatFloat(float64(v), 'f', -1, 64)
}

func (v StringValue) String() string { return string(v) }

func (BoolValue) isParamValue()   {}
func (NumberValue) isParamValue() {}
func (StringValue) isParamValue() {}

// Params maps parameter names to primitive values.
type Params map[string]ParamValue

// Keys returns the parameter names in sorted order.
func (p Params) Keys() []string {
	keys := make([]string, 0, len(p))
	for key := range p {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// ParamFromAny converts a decoded primitive (bool, float64, int or string) to
// a ParamValue.
func ParamFromAny(value any) (ParamValue, error) {
	switch v := value.(type) {
	case bool:
		return BoolValue(v), nil
	case float64:
		return NumberValue(v), nil
	case int:
		return NumberValue(v), nil
	case string:
		return StringValue(v), nil
	default:
		return nil, fmt.Errorf("%w: unsupported value of type %T", ErrInvalidParam, value)
	}
}

// ParamToAny converts a ParamValue back to its primitive form.
func ParamToAny(value ParamValue) (any, error) {
	switch v := value.(type) {
	case BoolValue:
		return bool(v), nil
	case NumberValue:
		return float64(v), nil
	case StringValue:
		return string(v), nil
	default:
		return nil, fmt.Errorf("%w: unexpected value of type %T", ErrInvalidParam, value)
	}
}
