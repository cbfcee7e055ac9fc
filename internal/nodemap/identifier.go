package nodemap

import "strings"

const (
	// SegmentSeparator separates node segments inside a control identifier.
	SegmentSeparator = "-"
	// DegenerateLeaf is the leaf used for identifiers that carry a single segment.
	DegenerateLeaf = "value"
)

// Decomposition is an identifier split into its node path and leaf parameter.
type Decomposition struct {
	Segments         []string
	Path             string
	LeafParam        string
	DisplayNameGuess string
	Degenerate       bool

	emptyLeaf bool
}

// Decompose splits an identifier into node path segments and the leaf parameter name.
// A single-segment identifier maps to path "/<identifier>" with leaf "value".
func Decompose(identifier string) Decomposition {
	parts := strings.Split(identifier, SegmentSeparator)
	if len(parts) < 2 {
		d := Decomposition{
			Segments:   []string{identifier},
			Path:       "/" + identifier,
			LeafParam:  DegenerateLeaf,
			Degenerate: true,
		}
		d.DisplayNameGuess = DisplayName(d, "", nil)
		return d
	}

	segments := parts[:len(parts)-1]
	leaf := parts[len(parts)-1]
	d := Decomposition{
		Segments:  segments,
		Path:      "/" + strings.Join(segments, "/"),
		LeafParam: leaf,
	}
	if leaf == "" {
		d.LeafParam = DegenerateLeaf
		d.Degenerate = true
		d.emptyLeaf = true
	}
	d.DisplayNameGuess = DisplayName(d, "", nil)
	return d
}

// Identifier rejoins the decomposition into the identifier it came from.
func (d Decomposition) Identifier() string {
	switch {
	case d.emptyLeaf:
		return strings.Join(d.Segments, SegmentSeparator) + SegmentSeparator
	case d.Degenerate:
		return strings.Join(d.Segments, SegmentSeparator)
	}
	return strings.Join(d.Segments, SegmentSeparator) + SegmentSeparator + d.LeafParam
}

// KeyVariants returns the four lookup spellings registered for an identifier: the literal,
// its lower-cased form, and the literal with '-' swapped to '_' and '_' swapped to '-'.
func KeyVariants(identifier string) [4]string {
	return [4]string{
		identifier,
		strings.ToLower(identifier),
		strings.ReplaceAll(identifier, "-", "_"),
		strings.ReplaceAll(identifier, "_", "-"),
	}
}
