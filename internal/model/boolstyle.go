package model

import (
	"fmt"
	"strings"
)

type BoolStyle string

const (
	// BoolStylePython writes True/False, which is what existing inventory
	// imports were built against.
	BoolStylePython BoolStyle = "python"
	BoolStyleLower  BoolStyle = "lower"
)

func (s BoolStyle) Format(b bool) string {
	if s == BoolStyleLower {
		if b {
			return "true"
		}
		return "false"
	}
	if b {
		return "True"
	}
	return "False"
}

func (s BoolStyle) String() string {
	return string(s)
}

// ParseBoolStyle parses a bool style case-insensitively.
// Accepts "capitalized" as "python".
func ParseBoolStyle(s string) (BoolStyle, error) {
	switch strings.ToLower(s) {
	case "python", "capitalized":
		return BoolStylePython, nil
	case "lower", "lowercase":
		return BoolStyleLower, nil
	default:
		return "", fmt.Errorf("invalid bool style: %s", s)
	}
}
