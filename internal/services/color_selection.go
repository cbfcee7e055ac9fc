package services

import (
	"strings"

	domain "github.com/hanko-field/configurator/internal/domain"
)

// Default colour rules, in evaluation order.
const (
	ColorRuleExplicit = "explicit_default"
	ColorRuleInStock  = "first_in_stock"
	ColorRuleFirst    = "first_option"
)

// ColorChoice is a selected colour option and the rule that picked it.
type ColorChoice struct {
	Option domain.ColorOption
	Rule   string
}

type colorSelector struct {
	name string
	pick func(options []domain.ColorOption, explicit string) (domain.ColorOption, bool)
}

var defaultColorChain = []colorSelector{
	{
		name: ColorRuleExplicit,
		pick: func(options []domain.ColorOption, explicit string) (domain.ColorOption, bool) {
			if explicit == "" {
				return domain.ColorOption{}, false
			}
			for _, opt := range options {
				if strings.TrimSpace(opt.ID) == explicit {
					return opt, true
				}
			}
			return domain.ColorOption{}, false
		},
	},
	{
		name: ColorRuleInStock,
		pick: func(options []domain.ColorOption, _ string) (domain.ColorOption, bool) {
			for _, opt := range options {
				if opt.InStock {
					return opt, true
				}
			}
			return domain.ColorOption{}, false
		},
	},
	{
		name: ColorRuleFirst,
		pick: func(options []domain.ColorOption, _ string) (domain.ColorOption, bool) {
			if len(options) == 0 {
				return domain.ColorOption{}, false
			}
			return options[0], true
		},
	},
}

// SelectDefaultColor evaluates the default colour rules in order: the explicitly configured
// option, then the first option in stock, then the first option. It reports false only when
// there are no options.
func SelectDefaultColor(options []domain.ColorOption, explicit string) (ColorChoice, bool) {
	explicit = strings.TrimSpace(explicit)
	for _, selector := range defaultColorChain {
		if opt, ok := selector.pick(options, explicit); ok {
			return ColorChoice{Option: opt, Rule: selector.name}, true
		}
	}
	return ColorChoice{}, false
}
