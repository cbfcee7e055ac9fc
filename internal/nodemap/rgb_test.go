package nodemap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hanko-field/configurator/internal/domain"
)

func channelParam(id, group, channel, name string) domain.Parameter {
	return domain.Parameter{NodeID: id, GroupTag: group, ChannelTag: channel, DisplayName: name}
}

func TestGroupRGB_FullGroup(t *testing.T) {
	groups := GroupRGB([]domain.Parameter{
		channelParam("a-colorr", "rgb-123", "r", "Lid colour"),
		channelParam("a-colorg", "rgb-123", "g", "Lid green"),
		channelParam("a-colorb", "rgb-123", "b", "Lid blue"),
	})

	require.Len(t, groups, 1)
	group := groups["rgb-123"]
	assert.Equal(t, "rgb-123", group.GroupID)
	assert.Equal(t, "Lid colour", group.DisplayName)
	require.Len(t, group.Components, 3)
	assert.Equal(t, "a-colorr", group.Components[ChannelRed].NodeID)
	assert.Equal(t, "a-colorg", group.Components[ChannelGreen].NodeID)
	assert.Equal(t, "a-colorb", group.Components[ChannelBlue].NodeID)
	assert.True(t, group.Visible())
	assert.Empty(t, group.Collisions)

	primary, ok := group.Primary()
	require.True(t, ok)
	assert.Equal(t, "a-colorr", primary.NodeID)
}

func TestGroupRGB_NameFallsBackUntilRedArrives(t *testing.T) {
	params := []domain.Parameter{
		channelParam("b-colorg", "body", "g", "Body green"),
		channelParam("b-colorb", "body", "b", "Body blue"),
	}
	group := GroupRGB(params)["body"]
	assert.Equal(t, "Body green", group.DisplayName)
	assert.False(t, group.Visible())

	params = append(params, channelParam("b-colorr", "body", "R", "Body colour"))
	group = GroupRGB(params)["body"]
	assert.Equal(t, "Body colour", group.DisplayName)
	assert.True(t, group.Visible())
}

func TestGroupRGB_FirstRedNameWins(t *testing.T) {
	group := GroupRGB([]domain.Parameter{
		channelParam("first", "g1", "r", "First red"),
		channelParam("second", "g1", "r", "Second red"),
	})["g1"]

	assert.Equal(t, "First red", group.DisplayName)
	assert.Equal(t, "second", group.Components[ChannelRed].NodeID)
	require.Len(t, group.Collisions, 1)
	assert.Equal(t, Collision{Channel: ChannelRed, Replaced: "first", By: "second"}, group.Collisions[0])
}

func TestGroupRGB_IgnoresUntaggedParameters(t *testing.T) {
	groups := GroupRGB([]domain.Parameter{
		channelParam("no-group", "", "r", ""),
		channelParam("no-channel", "g1", "", ""),
		channelParam("bad-channel", "g1", "alpha", ""),
		channelParam("ok", " g2 ", "blue", ""),
	})

	require.Len(t, groups, 1)
	group := groups["g2"]
	assert.Equal(t, "ok", group.DisplayName)
	assert.Equal(t, "ok", group.Components[ChannelBlue].NodeID)
}

func TestParseChannel(t *testing.T) {
	for tag, want := range map[string]Channel{"r": ChannelRed, "G": ChannelGreen, " blue ": ChannelBlue, "Red": ChannelRed} {
		got, ok := ParseChannel(tag)
		assert.True(t, ok, tag)
		assert.Equal(t, want, got, tag)
	}
	_, ok := ParseChannel("a")
	assert.False(t, ok)
}
