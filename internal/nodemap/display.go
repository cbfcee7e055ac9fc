package nodemap

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// wellKnownLeaves maps common dimension terms and their Dutch synonyms to curated labels.
var wellKnownLeaves = map[string]string{
	"height":    "Height",
	"hoogte":    "Height",
	"width":     "Width",
	"breedte":   "Width",
	"depth":     "Depth",
	"diepte":    "Depth",
	"length":    "Length",
	"lengte":    "Length",
	"thickness": "Thickness",
	"dikte":     "Thickness",
	"diameter":  "Diameter",
	"radius":    "Radius",
	"straal":    "Radius",
	"size":      "Size",
	"grootte":   "Size",
	"scale":     "Scale",
	"schaal":    "Scale",
	"text":      "Text",
	"tekst":     "Text",
}

var channelLabels = map[Channel]string{
	ChannelRed:   "Color (Red)",
	ChannelGreen: "Color (Green)",
	ChannelBlue:  "Color (Blue)",
}

// DisplayName synthesizes a human-readable label for a decomposed identifier.
// Colour-channel leaves resolve to "Color (<Channel>)" without a scene prefix. Well-known
// leaves use their curated label, other leaves are humanized. The label text is used when
// the identifier carries no leaf of its own, and the literal identifier is the last resort.
func DisplayName(d Decomposition, label string, sceneLabels map[string]string) string {
	if channel, ok := ChannelOfLeaf(d.LeafParam); ok {
		return channelLabels[channel]
	}

	name := ""
	if !d.Degenerate {
		if curated, ok := wellKnownLeaves[strings.ToLower(d.LeafParam)]; ok {
			name = curated
		} else {
			name = Humanize(d.LeafParam)
		}
	}
	if name == "" {
		name = Humanize(label)
	}
	if name == "" {
		if literal := d.Identifier(); strings.TrimSpace(literal) != "" {
			return literal
		}
		return Humanize(DegenerateLeaf)
	}

	if len(sceneLabels) > 0 && len(d.Segments) > 0 {
		if scene, ok := sceneLabels[strings.ToLower(d.Segments[0])]; ok && scene != "" {
			return scene + " " + name
		}
	}
	return name
}

// Humanize turns an identifier fragment into title-cased words: separators become spaces,
// camelCase boundaries are split and runs of whitespace collapse.
func Humanize(s string) string {
	var b strings.Builder
	runes := []rune(s)
	for i, r := range runes {
		switch {
		case r == '_' || r == '-' || r == '.' || r == '/':
			b.WriteRune(' ')
			continue
		case i > 0 && unicode.IsUpper(r) && unicode.IsLower(runes[i-1]):
			b.WriteRune(' ')
		}
		b.WriteRune(r)
	}
	words := strings.Fields(b.String())
	if len(words) == 0 {
		return ""
	}
	// Casers hold state, so each call builds its own.
	return cases.Title(language.Und, cases.NoLower).String(strings.Join(words, " "))
}
