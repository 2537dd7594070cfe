package model

import (
	"strconv"
)

type ScalarKind int

const (
	KindNull ScalarKind = iota
	KindString
	KindNumber
	KindBool
)

// Scalar is a leaf JSON value. Raw holds the string content, the number
// literal as written in the document, or "true"/"false" for booleans.
type Scalar struct {
	Kind ScalarKind
	Raw  string
}

func String(s string) Scalar { return Scalar{Kind: KindString, Raw: s} }

func Number(literal string) Scalar { return Scalar{Kind: KindNumber, Raw: literal} }

func Bool(b bool) Scalar { return Scalar{Kind: KindBool, Raw: strconv.FormatBool(b)} }

func Null() Scalar { return Scalar{Kind: KindNull} }

// Truthy reports whether the value counts as present: empty strings, false,
// numeric zero and null do not.
func (s Scalar) Truthy() bool {
	switch s.Kind {
	case KindString:
		return s.Raw != ""
	case KindBool:
		return s.Raw == "true"
	case KindNumber:
		f, err := strconv.ParseFloat(s.Raw, 64)
		if err != nil {
			// Literal came from the JSON decoder, so this only happens on overflow.
			return true
		}
		return f != 0
	default:
		return false
	}
}

// Text renders the value as a CSV cell.
func (s Scalar) Text(style BoolStyle) string {
	switch s.Kind {
	case KindNull:
		return ""
	case KindBool:
		return style.Format(s.Raw == "true")
	default:
		return s.Raw
	}
}

// IsPresentAndTruthy is the presence check applied to optional SBOM fields:
// the key must exist and its value must be truthy.
func IsPresentAndTruthy(value Scalar, ok bool) bool {
	return ok && value.Truthy()
}
