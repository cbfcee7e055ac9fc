package domain

import "strings"

// Parameter is a configurable product parameter exported from the 3D configuration tool.
// Records are owned by the caller's store; the mapping engine only reads them.
type Parameter struct {
	NodeID       string
	DisplayName  string
	ControlType  string
	DefaultValue *string
	Min          *float64
	Max          *float64
	Step         *float64
	Section      string
	GroupTag     string
	ChannelTag   string
	RawFragment  string
}

// HasFragment reports whether the parameter carries exported markup.
func (p Parameter) HasFragment() bool {
	return strings.TrimSpace(p.RawFragment) != ""
}

// ColorOption is a selectable colour offered for a configurable product.
type ColorOption struct {
	ID      string
	Name    string
	Hex     string
	InStock bool
}
