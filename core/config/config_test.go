package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_NoFileReturnsDefault(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_YAMLOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	yml := `source_root: app
ui_dir: app/ui
alias:
  segments:
    features/: app/
duplicates:
  segments: [utils]
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "importfix.yaml"), []byte(yml), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "app", cfg.SourceRoot)
	assert.Equal(t, "app/ui", cfg.UIDir)
	assert.Equal(t, []string{".ts", ".tsx"}, cfg.Extensions)
	assert.Equal(t, "@/", cfg.Alias.Prefix)
	assert.Equal(t, map[string]string{"features/": "app/"}, cfg.Alias.Segments)
	assert.Equal(t, []string{"utils"}, cfg.Duplicates.Segments)
}

func TestLoad_TOML(t *testing.T) {
	dir := t.TempDir()
	tml := `extensions = [".ts", ".tsx", ".mts"]

[alias]
fallback = "src/shared/"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "importfix.toml"), []byte(tml), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, []string{".ts", ".tsx", ".mts"}, cfg.Extensions)
	assert.Equal(t, []string{"**/node_modules/**"}, cfg.Exclude)
	assert.Equal(t, "src/shared/", cfg.Alias.Fallback)
	assert.Equal(t, "src", cfg.SourceRoot)
}

func TestLoad_YAMLWinsOverTOML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "importfix.yaml"), []byte("source_root: web\nui_dir: web/ui\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "importfix.toml"), []byte(`source_root = "other"`), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "web", cfg.SourceRoot)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{name: "malformed yaml", file: "importfix.yaml", content: "source_root: [unclosed"},
		{name: "malformed toml", file: "importfix.toml", content: "source_root = "},
		{name: "ui dir outside root", file: "importfix.yaml", content: "ui_dir: lib/ui\n"},
		{name: "extension without dot", file: "importfix.yaml", content: "extensions: [ts]\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			require.NoError(t, os.WriteFile(filepath.Join(dir, tt.file), []byte(tt.content), 0o644))

			_, err := Load(dir)
			assert.Error(t, err)
		})
	}
}

func TestValidate_Default(t *testing.T) {
	assert.NoError(t, Default().Validate())

	cfg := Default()
	cfg.SourceRoot = "."
	assert.Error(t, cfg.Validate())
}
