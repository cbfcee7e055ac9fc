package nodemap

import (
	"strings"

	"github.com/hanko-field/configurator/internal/domain"
)

// Channel is one colour channel of an RGB group.
type Channel string

const (
	ChannelRed   Channel = "r"
	ChannelGreen Channel = "g"
	ChannelBlue  Channel = "b"
)

// Channels lists the colour channels in display order.
var Channels = []Channel{ChannelRed, ChannelGreen, ChannelBlue}

var channelLeaves = map[string]Channel{
	"colorr":  ChannelRed,
	"colorg":  ChannelGreen,
	"colorb":  ChannelBlue,
	"colourr": ChannelRed,
	"colourg": ChannelGreen,
	"colourb": ChannelBlue,
}

// ParseChannel interprets a channel tag. It accepts r/g/b and red/green/blue in any case.
func ParseChannel(tag string) (Channel, bool) {
	switch strings.ToLower(strings.TrimSpace(tag)) {
	case "r", "red":
		return ChannelRed, true
	case "g", "green":
		return ChannelGreen, true
	case "b", "blue":
		return ChannelBlue, true
	}
	return "", false
}

// ChannelOfLeaf reports the colour channel named by a leaf parameter such as "colorr".
func ChannelOfLeaf(leaf string) (Channel, bool) {
	channel, ok := channelLeaves[strings.ToLower(leaf)]
	return channel, ok
}

// RGBGroup is up to three parameters jointly forming one colour control.
type RGBGroup struct {
	GroupID     string
	DisplayName string
	Components  map[Channel]domain.Parameter
	// Collisions lists members replaced by a later parameter on the same channel.
	Collisions []Collision
}

// Collision records a (group, channel) slot overwritten during aggregation.
type Collision struct {
	Channel  Channel
	Replaced string
	By       string
}

// Primary returns the red member, the only one exposed as a visible control.
func (g RGBGroup) Primary() (domain.Parameter, bool) {
	p, ok := g.Components[ChannelRed]
	return p, ok
}

// Visible reports whether the group surfaces as a control.
func (g RGBGroup) Visible() bool {
	_, ok := g.Components[ChannelRed]
	return ok
}

// GroupRGB folds channel-tagged parameters into colour groups keyed by group tag.
// A later parameter on an occupied (group, channel) slot replaces the earlier one. The
// group name comes from the first red member, or from the first member until one arrives.
func GroupRGB(params []domain.Parameter) map[string]RGBGroup {
	groups := make(map[string]RGBGroup)
	named := make(map[string]bool)
	for _, p := range params {
		groupID := strings.TrimSpace(p.GroupTag)
		if groupID == "" {
			continue
		}
		channel, ok := ParseChannel(p.ChannelTag)
		if !ok {
			continue
		}

		group, exists := groups[groupID]
		if !exists {
			group = RGBGroup{
				GroupID:     groupID,
				DisplayName: memberName(p),
				Components:  make(map[Channel]domain.Parameter, len(Channels)),
			}
		}
		if prev, occupied := group.Components[channel]; occupied {
			group.Collisions = append(group.Collisions, Collision{Channel: channel, Replaced: prev.NodeID, By: p.NodeID})
		}
		group.Components[channel] = p
		if channel == ChannelRed && !named[groupID] {
			group.DisplayName = memberName(p)
			named[groupID] = true
		}
		groups[groupID] = group
	}
	return groups
}

func memberName(p domain.Parameter) string {
	if name := strings.TrimSpace(p.DisplayName); name != "" {
		return name
	}
	return p.NodeID
}
