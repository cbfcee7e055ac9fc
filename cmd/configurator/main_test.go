package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hanko-field/configurator/internal/domain"
	"github.com/hanko-field/configurator/internal/nodemap"
	"github.com/hanko-field/configurator/internal/platform/config"
)

func TestBuildEngineOptions_Defaults(t *testing.T) {
	opts, err := buildEngineOptions(config.NodeMapConfig{})
	require.NoError(t, err)
	assert.Empty(t, opts)
}

func TestBuildEngineOptions_RulesAndLabels(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte("segments:\n  - pattern: deksel\n    replacement: lid\n"), 0o644))

	opts, err := buildEngineOptions(config.NodeMapConfig{
		RulesFile:   path,
		SceneLabels: map[string]string{"doos": "Box"},
	})
	require.NoError(t, err)
	require.Len(t, opts, 2)

	m := nodemap.New(opts...).Assemble([]domain.Parameter{
		{NodeID: "p", RawFragment: `<input type="number" id="doos-deksel-height">`},
	})
	info := m.Parameters["p"]
	assert.Equal(t, "/doos/lid", info.Path)
	assert.Equal(t, "Box Height", info.DisplayName)
}

func TestBuildEngineOptions_Errors(t *testing.T) {
	_, err := buildEngineOptions(config.NodeMapConfig{RulesFile: filepath.Join(t.TempDir(), "missing.yaml")})
	assert.ErrorIs(t, err, os.ErrNotExist)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("segments:\n  - pattern: ''\n"), 0o644))
	_, err = buildEngineOptions(config.NodeMapConfig{RulesFile: path})
	assert.ErrorIs(t, err, nodemap.ErrInvalidRule)
}
