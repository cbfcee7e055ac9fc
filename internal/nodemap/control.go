package nodemap

import "strings"

// ControlKind is the canonical kind of a UI control.
type ControlKind string

const (
	KindNumber   ControlKind = "number"
	KindText     ControlKind = "text"
	KindCheckbox ControlKind = "checkbox"
	KindColor    ControlKind = "color"
	KindDropdown ControlKind = "dropdown"
	KindHidden   ControlKind = "hidden"
)

var declaredKinds = map[string]ControlKind{
	"number":   KindNumber,
	"range":    KindNumber,
	"slider":   KindNumber,
	"float":    KindNumber,
	"int":      KindNumber,
	"text":     KindText,
	"textarea": KindText,
	"email":    KindText,
	"search":   KindText,
	"string":   KindText,
	"checkbox": KindCheckbox,
	"toggle":   KindCheckbox,
	"bool":     KindCheckbox,
	"color":    KindColor,
	"colour":   KindColor,
	"select":   KindDropdown,
	"dropdown": KindDropdown,
	"menu":     KindDropdown,
	"hidden":   KindHidden,
}

// ParseControlKind maps a declared control kind onto one of the six canonical kinds.
// Unknown or empty declarations default to KindNumber.
func ParseControlKind(declared string) ControlKind {
	if kind, ok := declaredKinds[strings.ToLower(strings.TrimSpace(declared))]; ok {
		return kind
	}
	return KindNumber
}

// Bounds holds optional numeric limits of a number control.
type Bounds struct {
	Min  *float64
	Max  *float64
	Step *float64
}

// Complete reports whether both min and max are known.
func (b Bounds) Complete() bool {
	return b.Min != nil && b.Max != nil
}

// Merge returns b with missing fields filled from fallback.
func (b Bounds) Merge(fallback Bounds) Bounds {
	if b.Min == nil {
		b.Min = fallback.Min
	}
	if b.Max == nil {
		b.Max = fallback.Max
	}
	if b.Step == nil {
		b.Step = fallback.Step
	}
	return b
}

// Control is the closed set of control variants. Each variant carries only the fields
// relevant to its kind.
type Control interface {
	Kind() ControlKind
	control()
}

// NumberControl is a numeric input or slider.
type NumberControl struct {
	Bounds Bounds
}

// TextControl is a free text input.
type TextControl struct{}

// CheckboxControl is a boolean toggle.
type CheckboxControl struct {
	Checked bool
}

// ColorControl is a colour picker.
type ColorControl struct{}

// DropdownControl is a select element with its declared options.
type DropdownControl struct {
	Options []DropdownOption
}

// HiddenControl carries a value without a visible widget.
type HiddenControl struct{}

// DropdownOption is a single dropdown choice.
type DropdownOption struct {
	Value    string
	Label    string
	Selected bool
}

func (NumberControl) Kind() ControlKind   { return KindNumber }
func (TextControl) Kind() ControlKind     { return KindText }
func (CheckboxControl) Kind() ControlKind { return KindCheckbox }
func (ColorControl) Kind() ControlKind    { return KindColor }
func (DropdownControl) Kind() ControlKind { return KindDropdown }
func (HiddenControl) Kind() ControlKind   { return KindHidden }

func (NumberControl) control()   {}
func (TextControl) control()     {}
func (CheckboxControl) control() {}
func (ColorControl) control()    {}
func (DropdownControl) control() {}
func (HiddenControl) control()   {}

// BoundsOf returns the bounds carried by a number control, or empty bounds otherwise.
func BoundsOf(c Control) Bounds {
	if n, ok := c.(NumberControl); ok {
		return n.Bounds
	}
	return Bounds{}
}

// Retype converts a parsed control to the given kind, keeping fields the target variant
// can carry.
func Retype(c Control, kind ControlKind) Control {
	if c != nil && c.Kind() == kind {
		return c
	}
	switch kind {
	case KindNumber:
		return NumberControl{Bounds: BoundsOf(c)}
	case KindText:
		return TextControl{}
	case KindCheckbox:
		return CheckboxControl{}
	case KindColor:
		return ColorControl{}
	case KindDropdown:
		return DropdownControl{}
	case KindHidden:
		return HiddenControl{}
	default:
		return NumberControl{Bounds: BoundsOf(c)}
	}
}
