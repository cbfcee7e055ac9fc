package nodemap

import (
	"strings"

	"github.com/hanko-field/configurator/internal/domain"
)

// MappingEntry describes how one UI control drives one scene parameter.
type MappingEntry struct {
	Path         string
	LeafParam    string
	ControlType  ControlKind
	DefaultValue string
}

// ParameterInfo is the enriched view of one successfully mapped parameter.
type ParameterInfo struct {
	NodeID       string
	Identifier   string
	DisplayName  string
	ControlType  ControlKind
	Control      Control
	DefaultValue string
	Path         string
	LeafParam    string
	RawFragment  string
	Section      string
	Bounds       Bounds
	GroupTag     string
	Channel      Channel
}

// ColorMapping is either a SingleColorMapping or an RGBColorMapping.
type ColorMapping interface {
	colorMapping()
}

// SingleColorMapping binds one colour control to one scene parameter.
type SingleColorMapping struct {
	Identifier string
	Entry      MappingEntry
}

// RGBColorMapping binds the channel parameters of one RGB group.
type RGBColorMapping struct {
	GroupID     string
	DisplayName string
	Channels    map[Channel]ChannelMapping
}

// ChannelMapping is the scene binding of one channel inside an RGB group.
type ChannelMapping struct {
	Identifier string
	Entry      MappingEntry
}

func (SingleColorMapping) colorMapping() {}
func (RGBColorMapping) colorMapping()    {}

// Visible reports whether the group has the red channel that carries the visible control.
func (m RGBColorMapping) Visible() bool {
	_, ok := m.Channels[ChannelRed]
	return ok
}

// UniversalMapping is the complete lookup structure for one parameter set.
type UniversalMapping struct {
	Parameters    map[string]ParameterInfo
	NodeMappings  map[string]MappingEntry
	ColorMappings map[string]ColorMapping
	RGBGroups     map[string]RGBGroup
}

// Lookup resolves a control identifier spelled as any registered key variant.
func (m UniversalMapping) Lookup(key string) (MappingEntry, bool) {
	if entry, ok := m.NodeMappings[key]; ok {
		return entry, true
	}
	entry, ok := m.NodeMappings[strings.ToLower(key)]
	return entry, ok
}

// Engine compiles parameter sets into mappings and validation reports. It holds only
// configuration and is safe for concurrent use.
type Engine struct {
	normalizer  *Normalizer
	sceneLabels map[string]string
	onSkip      func(domain.Parameter, error)
}

// Option customises an Engine.
type Option func(*Engine)

// WithNormalizer replaces the default path correction table.
func WithNormalizer(n *Normalizer) Option {
	return func(e *Engine) {
		if n != nil {
			e.normalizer = n
		}
	}
}

// WithSceneLabels prefixes display names with a label chosen by the first path segment.
func WithSceneLabels(labels map[string]string) Option {
	return func(e *Engine) {
		e.sceneLabels = make(map[string]string, len(labels))
		for scene, label := range labels {
			e.sceneLabels[strings.ToLower(strings.TrimSpace(scene))] = strings.TrimSpace(label)
		}
	}
}

// WithSkipHook registers a callback invoked for every parameter left out of a mapping.
func WithSkipHook(fn func(domain.Parameter, error)) Option {
	return func(e *Engine) {
		e.onSkip = fn
	}
}

// New constructs an Engine.
func New(opts ...Option) *Engine {
	e := &Engine{normalizer: DefaultNormalizer()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

type resolved struct {
	parsed ParsedField
	info   ParameterInfo
	entry  MappingEntry
	// grouped is true when the channel comes from the channel tag, the same source GroupRGB uses.
	grouped bool
}

func (e *Engine) resolve(p domain.Parameter) (resolved, error) {
	parsed, err := ParseSnippet(p.RawFragment)
	if err != nil {
		return resolved{}, err
	}

	d := Decompose(parsed.Identifier)
	path := e.normalizer.Normalize(d.Path)

	kind := parsed.Kind()
	if strings.TrimSpace(p.ControlType) != "" {
		kind = ParseControlKind(p.ControlType)
	}
	control := Retype(parsed.Control, kind)
	if n, ok := control.(NumberControl); ok {
		n.Bounds = Bounds{Min: p.Min, Max: p.Max, Step: p.Step}.Merge(n.Bounds)
		control = n
	}

	defaultValue := ""
	switch {
	case p.DefaultValue != nil:
		defaultValue = *p.DefaultValue
	case parsed.Value != nil:
		defaultValue = *parsed.Value
	}

	displayName := strings.TrimSpace(p.DisplayName)
	if displayName == "" {
		displayName = DisplayName(d, parsed.Label, e.sceneLabels)
	}

	channel, tagged := ParseChannel(p.ChannelTag)
	if !tagged {
		channel, _ = ChannelOfLeaf(d.LeafParam)
	}

	nodeID := strings.TrimSpace(p.NodeID)
	if nodeID == "" {
		nodeID = parsed.Identifier
	}

	entry := MappingEntry{
		Path:         path,
		LeafParam:    d.LeafParam,
		ControlType:  kind,
		DefaultValue: defaultValue,
	}
	return resolved{
		parsed: parsed,
		entry:  entry,
		info: ParameterInfo{
			NodeID:       nodeID,
			Identifier:   parsed.Identifier,
			DisplayName:  displayName,
			ControlType:  kind,
			Control:      control,
			DefaultValue: defaultValue,
			Path:         path,
			LeafParam:    d.LeafParam,
			RawFragment:  p.RawFragment,
			Section:      strings.TrimSpace(p.Section),
			Bounds:       BoundsOf(control),
			GroupTag:     strings.TrimSpace(p.GroupTag),
			Channel:      channel,
		},
		grouped: tagged,
	}, nil
}

// Assemble maps every parameter with a parseable fragment. Parameters without a fragment
// or with a fatal parse failure are left out; the batch itself never fails.
func (e *Engine) Assemble(params []domain.Parameter) UniversalMapping {
	m := UniversalMapping{
		Parameters:    make(map[string]ParameterInfo, len(params)),
		NodeMappings:  make(map[string]MappingEntry, len(params)*4),
		ColorMappings: make(map[string]ColorMapping),
		RGBGroups:     GroupRGB(params),
	}
	// A derived key variant never replaces another identifier's literal key.
	literal := make(map[string]bool, len(params))

	for _, p := range params {
		if !p.HasFragment() {
			e.skip(p, ErrMissingFragment)
			continue
		}
		r, err := e.resolve(p)
		if err != nil {
			e.skip(p, err)
			continue
		}

		for _, key := range KeyVariants(r.parsed.Identifier) {
			if key != r.parsed.Identifier && literal[key] {
				continue
			}
			m.NodeMappings[key] = r.entry
		}
		literal[r.parsed.Identifier] = true

		_, channelLeaf := ChannelOfLeaf(r.entry.LeafParam)
		if r.entry.ControlType == KindColor || channelLeaf {
			e.foldColor(m, r)
		}

		m.Parameters[r.info.NodeID] = r.info
	}
	return m
}

func (e *Engine) foldColor(m UniversalMapping, r resolved) {
	groupID := r.info.GroupTag
	group, grouped := m.RGBGroups[groupID]
	if groupID == "" || !r.grouped || !grouped {
		m.ColorMappings[r.parsed.Identifier] = SingleColorMapping{Identifier: r.parsed.Identifier, Entry: r.entry}
		return
	}

	rgb, ok := m.ColorMappings[groupID].(RGBColorMapping)
	if !ok {
		name := r.info.DisplayName
		if group.DisplayName != "" {
			name = group.DisplayName
		}
		rgb = RGBColorMapping{
			GroupID:     groupID,
			DisplayName: name,
			Channels:    make(map[Channel]ChannelMapping, len(Channels)),
		}
	}
	rgb.Channels[r.info.Channel] = ChannelMapping{Identifier: r.parsed.Identifier, Entry: r.entry}
	m.ColorMappings[groupID] = rgb
}

func (e *Engine) skip(p domain.Parameter, err error) {
	if e.onSkip != nil {
		e.onSkip(p, err)
	}
}
