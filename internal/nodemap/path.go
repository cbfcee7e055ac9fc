package nodemap

import (
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// Rule rewrites a case-insensitive match of Pattern to Replacement.
type Rule struct {
	Pattern     string `yaml:"pattern"`
	Replacement string `yaml:"replacement"`
}

// Rules is the ordered correction table applied to node paths.
// Paths match a whole node path, Segments match one path segment and Substrings match
// anywhere in the path. Matching is case-insensitive throughout.
type Rules struct {
	Paths      []Rule `yaml:"paths"`
	Segments   []Rule `yaml:"segments"`
	Substrings []Rule `yaml:"substrings"`
}

// DefaultRules returns the built-in correction table for the exported scenes.
func DefaultRules() Rules {
	return Rules{
		Paths: []Rule{
			{Pattern: "/sleutelhoes/controls", Replacement: "/sleutelhoes/CTRL"},
			{Pattern: "/doos/controls", Replacement: "/doos/CTRL"},
			{Pattern: "/geo1/material", Replacement: "/geo1/MAT"},
		},
		Segments: []Rule{
			{Pattern: "mat", Replacement: "MAT"},
			{Pattern: "ctrl", Replacement: "CTRL"},
		},
		Substrings: []Rule{
			{Pattern: "meshstandard", Replacement: "meshStandard"},
			{Pattern: "principledshader", Replacement: "principledShader"},
		},
	}
}

// LoadRules decodes a YAML correction table.
func LoadRules(r io.Reader) (Rules, error) {
	var rules Rules
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&rules); err != nil {
		if err == io.EOF {
			return Rules{}, nil
		}
		return Rules{}, fmt.Errorf("nodemap: decode rules: %w", err)
	}
	return rules, nil
}

// Normalizer applies a correction table to node paths.
type Normalizer struct {
	rules Rules
}

var defaultNormalizer = &Normalizer{rules: DefaultRules()}

// DefaultNormalizer returns the normalizer backed by DefaultRules.
func DefaultNormalizer() *Normalizer { return defaultNormalizer }

// NewNormalizer validates the table and returns a normalizer for it. A table is rejected
// when normalizing any of its own patterns or replacements twice yields a different path.
func NewNormalizer(rules Rules) (*Normalizer, error) {
	for _, group := range [][]Rule{rules.Paths, rules.Segments, rules.Substrings} {
		for _, rule := range group {
			if strings.TrimSpace(rule.Pattern) == "" {
				return nil, fmt.Errorf("%w: empty pattern", ErrInvalidRule)
			}
		}
	}
	for _, rule := range rules.Segments {
		if strings.Contains(rule.Pattern, "/") || strings.Contains(rule.Replacement, "/") {
			return nil, fmt.Errorf("%w: segment rule %q contains '/'", ErrInvalidRule, rule.Pattern)
		}
	}

	n := &Normalizer{rules: rules}
	for _, group := range [][]Rule{rules.Paths, rules.Segments, rules.Substrings} {
		for _, rule := range group {
			for _, sample := range []string{
				rule.Pattern,
				rule.Replacement,
				"/scene/" + rule.Pattern + "/node",
				"/scene/" + rule.Replacement + "/node",
			} {
				once := n.Normalize(sample)
				if twice := n.Normalize(once); twice != once {
					return nil, fmt.Errorf("%w: %q normalizes to %q then %q", ErrNonIdempotentRules, sample, once, twice)
				}
			}
		}
	}
	return n, nil
}

// NormalizePath normalizes a node path with the default correction table.
func NormalizePath(path string) string {
	return defaultNormalizer.Normalize(path)
}

// Normalize ensures a leading '/' and applies the correction table in order: whole-path
// replacements, segment replacements, then substring replacements.
func (n *Normalizer) Normalize(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if n == nil {
		return path
	}

	for _, rule := range n.rules.Paths {
		if strings.EqualFold(path, withLeadingSlash(rule.Pattern)) {
			path = withLeadingSlash(rule.Replacement)
			break
		}
	}

	if len(n.rules.Segments) > 0 {
		segments := strings.Split(path, "/")
		for i, segment := range segments {
			for _, rule := range n.rules.Segments {
				if strings.EqualFold(segment, rule.Pattern) {
					segment = rule.Replacement
				}
			}
			segments[i] = segment
		}
		path = strings.Join(segments, "/")
	}

	for _, rule := range n.rules.Substrings {
		path = replaceFold(path, rule.Pattern, rule.Replacement)
	}
	return path
}

func withLeadingSlash(path string) string {
	if strings.HasPrefix(path, "/") {
		return path
	}
	return "/" + path
}

func replaceFold(s, old, replacement string) string {
	if old == "" || len(s) < len(old) || !strings.Contains(strings.ToLower(s), strings.ToLower(old)) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	i := 0
	for i <= len(s)-len(old) {
		if strings.EqualFold(s[i:i+len(old)], old) {
			b.WriteString(replacement)
			i += len(old)
			continue
		}
		b.WriteByte(s[i])
		i++
	}
	b.WriteString(s[i:])
	return b.String()
}
