package services

import (
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	fragmentPolicyOnce sync.Once
	fragmentPolicy     *bluemonday.Policy
)

// sanitizeFragment strips everything except form controls and their labels from exported
// markup before it is echoed back to clients.
func sanitizeFragment(fragment string) string {
	fragmentPolicyOnce.Do(func() {
		p := bluemonday.NewPolicy()
		p.AllowElements("div", "span", "label", "input", "select", "option", "textarea")
		p.AllowAttrs("for").OnElements("label")
		p.AllowAttrs("id", "name").OnElements("input", "select", "textarea")
		p.AllowAttrs("type", "min", "max", "step", "value", "checked").OnElements("input")
		p.AllowAttrs("value", "selected").OnElements("option")
		p.AllowAttrs("class").Globally()
		fragmentPolicy = p
	})
	return fragmentPolicy.Sanitize(fragment)
}
