package nodemap

import (
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/hanko-field/configurator/internal/platform/textutil"
)

const controlSelector = "input, select, textarea"

// identifierAttrs lists the attributes consulted for the control identifier, in order.
var identifierAttrs = []string{"id", "name"}

// ParsedField holds the raw fields extracted from one markup fragment.
type ParsedField struct {
	Identifier   string
	DeclaredKind string
	Control      Control
	Value        *string
	Label        string
}

// Kind returns the canonical control kind.
func (f ParsedField) Kind() ControlKind {
	if f.Control == nil {
		return KindNumber
	}
	return f.Control.Kind()
}

// Bounds returns the numeric bounds when the field is a number control.
func (f ParsedField) Bounds() Bounds {
	return BoundsOf(f.Control)
}

// ParseSnippet extracts the control described by an exported markup fragment.
// Only a missing control element or a missing identifier are fatal; absent bounds,
// value and label leave the corresponding fields empty.
func ParseSnippet(fragment string) (ParsedField, error) {
	doc, err := fragmentDocument(fragment)
	if err != nil {
		return ParsedField{}, &ParseError{Err: ErrNoControlElement}
	}

	ctrl := doc.Find(controlSelector).First()
	if ctrl.Length() == 0 {
		return ParsedField{}, &ParseError{Err: ErrNoControlElement}
	}
	element := goquery.NodeName(ctrl)

	identifier := ""
	for _, name := range identifierAttrs {
		if value := strings.TrimSpace(ctrl.AttrOr(name, "")); value != "" {
			identifier = value
			break
		}
	}
	if identifier == "" {
		return ParsedField{}, &ParseError{Element: element, Err: ErrNoIdentifier}
	}

	declared := declaredKind(ctrl, element)
	field := ParsedField{
		Identifier:   identifier,
		DeclaredKind: declared,
		Label:        labelText(doc, ctrl, identifier),
	}

	switch kind := ParseControlKind(declared); kind {
	case KindNumber:
		field.Control = NumberControl{Bounds: Bounds{
			Min:  floatAttr(ctrl, "min"),
			Max:  floatAttr(ctrl, "max"),
			Step: floatAttr(ctrl, "step"),
		}}
		field.Value = attrPtr(ctrl, "value")
	case KindCheckbox:
		_, checked := ctrl.Attr("checked")
		field.Control = CheckboxControl{Checked: checked}
		if v := attrPtr(ctrl, "value"); v != nil {
			field.Value = v
		} else {
			state := strconv.FormatBool(checked)
			field.Value = &state
		}
	case KindDropdown:
		options := dropdownOptions(ctrl)
		field.Control = DropdownControl{Options: options}
		field.Value = selectedOption(options)
	default:
		field.Control = Retype(nil, kind)
		if element == "textarea" {
			if text := strings.TrimSpace(ctrl.Text()); text != "" {
				field.Value = &text
			}
		} else {
			field.Value = attrPtr(ctrl, "value")
		}
	}

	return field, nil
}

func fragmentDocument(fragment string) (*goquery.Document, error) {
	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(fragment), body)
	if err != nil {
		return nil, err
	}
	root := &html.Node{Type: html.DocumentNode}
	for _, n := range nodes {
		root.AppendChild(n)
	}
	return goquery.NewDocumentFromNode(root), nil
}

func declaredKind(ctrl *goquery.Selection, element string) string {
	switch element {
	case "select":
		return "select"
	case "textarea":
		return "textarea"
	}
	return strings.ToLower(strings.TrimSpace(ctrl.AttrOr("type", "")))
}

func labelText(doc *goquery.Document, ctrl *goquery.Selection, identifier string) string {
	var text string
	doc.Find("label").EachWithBreak(func(_ int, label *goquery.Selection) bool {
		if strings.TrimSpace(label.AttrOr("for", "")) == identifier {
			text = label.Text()
			return false
		}
		return true
	})
	if text == "" {
		if wrapping := ctrl.Closest("label"); wrapping.Length() > 0 {
			text = wrapping.Clone().Find(controlSelector).Remove().End().Text()
		}
	}
	if text == "" {
		text = doc.Find("label").First().Text()
	}
	if text == "" {
		text = ctrl.AttrOr("aria-label", "")
	}
	return textutil.CollapseWhitespace(text)
}

func dropdownOptions(ctrl *goquery.Selection) []DropdownOption {
	var options []DropdownOption
	ctrl.Find("option").Each(func(_ int, opt *goquery.Selection) {
		label := textutil.CollapseWhitespace(opt.Text())
		value, ok := opt.Attr("value")
		if !ok {
			value = label
		}
		_, selected := opt.Attr("selected")
		options = append(options, DropdownOption{Value: strings.TrimSpace(value), Label: label, Selected: selected})
	})
	return options
}

func selectedOption(options []DropdownOption) *string {
	for _, opt := range options {
		if opt.Selected {
			value := opt.Value
			return &value
		}
	}
	if len(options) > 0 {
		value := options[0].Value
		return &value
	}
	return nil
}

func attrPtr(sel *goquery.Selection, name string) *string {
	value, ok := sel.Attr(name)
	if !ok {
		return nil
	}
	value = strings.TrimSpace(value)
	return &value
}

func floatAttr(sel *goquery.Selection, name string) *float64 {
	raw, ok := sel.Attr(name)
	if !ok {
		return nil
	}
	parsed, err := strconv.ParseFloat(numericAttr(raw), 64)
	if err != nil {
		return nil
	}
	return &parsed
}

// numericAttr rewrites a decimal comma ("2,5") to a point. Any other comma is left in place
// so thousands-grouped values fail to parse instead of being truncated.
func numericAttr(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.Count(raw, ",") != 1 || strings.Contains(raw, ".") {
		return raw
	}
	frac := raw[strings.Index(raw, ",")+1:]
	if len(frac) == 0 || len(frac) > 2 {
		return raw
	}
	return strings.Replace(raw, ",", ".", 1)
}
