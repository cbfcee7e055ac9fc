package nodemap

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/hanko-field/configurator/internal/domain"
)

// Severity classifies a validation issue.
type Severity int

const (
	SeveritySuggestion Severity = iota
	SeverityWarning
	SeverityError
)

// String returns a human-readable severity name.
func (s Severity) String() string {
	switch s {
	case SeveritySuggestion:
		return "suggestion"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// Issue codes reported by the validator.
const (
	CodeMissingFragment     = "missing_fragment"
	CodeUnparseableFragment = "unparseable_fragment"
	CodeMissingDisplayName  = "missing_display_name"
	CodeMissingSection      = "missing_section"
	CodeMissingBounds       = "missing_bounds"
	CodeChannelCollision    = "channel_collision"
)

// Issue is a single validation finding.
type Issue struct {
	Severity Severity
	Code     string
	NodeID   string
	Message  string
}

// Report is the categorised result of validating a parameter set. Valid is false exactly
// when Errors is non-empty.
type Report struct {
	Valid       bool
	Errors      []string
	Warnings    []string
	Suggestions []string
	Issues      []Issue
}

func (r *Report) add(severity Severity, code, nodeID, message string) {
	r.Issues = append(r.Issues, Issue{Severity: severity, Code: code, NodeID: nodeID, Message: message})
	switch severity {
	case SeverityError:
		r.Errors = append(r.Errors, message)
	case SeverityWarning:
		r.Warnings = append(r.Warnings, message)
	default:
		r.Suggestions = append(r.Suggestions, message)
	}
}

// Validate scans a parameter set with the default engine.
func Validate(params []domain.Parameter) Report {
	return New().Validate(params)
}

// Validate scans the parameter set and reports errors, warnings and suggestions without
// modifying any parameter.
func (e *Engine) Validate(params []domain.Parameter) Report {
	report := Report{
		Errors:      []string{},
		Warnings:    []string{},
		Suggestions: []string{},
	}

	for i, p := range params {
		name := parameterLabel(p, i)
		kind, kindKnown := ControlKind(""), false
		bounds := Bounds{Min: p.Min, Max: p.Max, Step: p.Step}
		if strings.TrimSpace(p.ControlType) != "" {
			kind, kindKnown = ParseControlKind(p.ControlType), true
		}

		switch {
		case !p.HasFragment():
			report.add(SeverityError, CodeMissingFragment, p.NodeID,
				fmt.Sprintf("%s: raw fragment is missing", name))
		default:
			r, err := e.resolve(p)
			if err != nil {
				report.add(SeverityError, CodeUnparseableFragment, p.NodeID,
					fmt.Sprintf("%s: fragment cannot be parsed: %s", name, parseReason(err)))
				break
			}
			kind, kindKnown = r.info.ControlType, true
			bounds = r.info.Bounds
			if strings.TrimSpace(p.DisplayName) == "" {
				report.add(SeveritySuggestion, CodeMissingDisplayName, p.NodeID,
					fmt.Sprintf("%s: no display name set, %q will be used", name, r.info.DisplayName))
			}
		}

		if strings.TrimSpace(p.Section) == "" {
			report.add(SeveritySuggestion, CodeMissingSection, p.NodeID,
				fmt.Sprintf("%s: no section assigned", name))
		}
		if kindKnown && kind == KindNumber && !bounds.Complete() {
			report.add(SeverityWarning, CodeMissingBounds, p.NodeID,
				fmt.Sprintf("%s: numeric control is missing %s", name, missingBounds(bounds)))
		}
	}

	groups := GroupRGB(params)
	groupIDs := make([]string, 0, len(groups))
	for id := range groups {
		groupIDs = append(groupIDs, id)
	}
	sort.Strings(groupIDs)
	for _, id := range groupIDs {
		for _, c := range groups[id].Collisions {
			report.add(SeverityWarning, CodeChannelCollision, c.By,
				fmt.Sprintf("rgb group %q: channel %s of %q replaced by %q", id, c.Channel, c.Replaced, c.By))
		}
	}

	report.Valid = len(report.Errors) == 0
	return report
}

func parameterLabel(p domain.Parameter, index int) string {
	if id := strings.TrimSpace(p.NodeID); id != "" {
		return fmt.Sprintf("parameter %q", id)
	}
	return fmt.Sprintf("parameter #%d", index+1)
}

func parseReason(err error) string {
	switch {
	case errors.Is(err, ErrNoIdentifier):
		return "control has no id attribute"
	case errors.Is(err, ErrNoControlElement):
		return "no control element"
	}
	return err.Error()
}

func missingBounds(b Bounds) string {
	switch {
	case b.Min == nil && b.Max == nil:
		return "min and max"
	case b.Min == nil:
		return "min"
	default:
		return "max"
	}
}
