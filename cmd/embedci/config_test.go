package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, content string) string {
	fpath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(fpath, []byte(content), 0644))
	return fpath
}

func TestLoadConfig(t *testing.T) {
	t.Parallel()
	fpath := writeFile(t, `
restriction:
  valence_min: 1
  valence_max: 3
  mott:
    orbitals: [0, 2]
    electrons: 1
  projection: sz
  target: 0.5
solver:
  tol: 1.0e-9
  max_krylov: 32
`)
	cfg, err := loadConfig(fpath)
	require.NoError(t, err)
	require.NotNil(t, cfg.Restriction.ValenceMin)
	assert.Equal(t, 1, *cfg.Restriction.ValenceMin)
	assert.Equal(t, 3, *cfg.Restriction.ValenceMax)
	assert.Equal(t, []int{0, 2}, cfg.Restriction.Mott.Orbitals)
	assert.Equal(t, "sz", cfg.Restriction.Projection)
	assert.Equal(t, 0.5, *cfg.Restriction.Target)
	assert.Equal(t, 1e-9, cfg.Solver.Tol)
	assert.Equal(t, 32, cfg.Solver.MaxKrylov)
	// Defaults are kept for absent fields.
	assert.Equal(t, 200, cfg.Solver.MaxRestarts)
	assert.Equal(t, uint64(1), cfg.Solver.Seed)
}

func TestLoadConfigInvalid(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		content string
	}{
		{name: "projection", content: "restriction:\n  projection: lz\n"},
		{name: "valence", content: "restriction:\n  valence_min: 3\n  valence_max: 1\n"},
		{name: "negative", content: "restriction:\n  valence_min: -1\n"},
		{name: "mott_empty", content: "restriction:\n  mott:\n    electrons: 0\n"},
		{name: "mott_duplicate", content: "restriction:\n  mott:\n    orbitals: [1, 1]\n    electrons: 1\n"},
		{name: "mott_electrons", content: "restriction:\n  mott:\n    orbitals: [1]\n    electrons: 2\n"},
		{name: "target", content: "restriction:\n  target: 1\n"},
		{name: "tol", content: "solver:\n  tol: 0\n"},
		{name: "krylov", content: "solver:\n  max_krylov: 0\n"},
		{name: "yaml", content: "solver: [\n"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			_, err := loadConfig(writeFile(t, test.content))
			require.Error(t, err)
		})
	}

	_, err := loadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestFlagsOverrideConfig(t *testing.T) {
	t.Parallel()
	fpath := writeFile(t, "restriction:\n  projection: jz\n")
	f := &inputFlags{}
	cmd := &cobra.Command{Use: "test"}
	f.register(cmd)
	require.NoError(t, cmd.Flags().Parse([]string{"--config", fpath, "--projection", "sz", "--target", "-0.5"}))

	cfg, err := f.config(cmd)
	require.NoError(t, err)
	assert.Equal(t, "sz", cfg.Restriction.Projection)
	require.NotNil(t, cfg.Restriction.Target)
	assert.Equal(t, -0.5, *cfg.Restriction.Target)
}
