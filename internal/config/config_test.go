package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestConfigs creates a temporary directory structure for testing.
// It returns the "configs" directory path and a cleanup function.
func setupTestConfigs(t *testing.T) (string, func()) {
	rootDir, err := os.MkdirTemp("", "config_test_")
	require.NoError(t, err)

	// Viper looks for a "configs" subdirectory relative to the cwd.
	configsPath := filepath.Join(rootDir, "configs")
	require.NoError(t, os.Mkdir(configsPath, 0755))

	oldWd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(rootDir))

	cleanup := func() {
		os.Chdir(oldWd)
		os.RemoveAll(rootDir)
	}

	return configsPath, cleanup
}

func TestLoadConfig_Defaults(t *testing.T) {
	_, cleanup := setupTestConfigs(t)
	defer cleanup()

	// No config.yaml present: every field falls back to its default.
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, DefaultLcovPath, cfg.LcovPath)
	assert.Equal(t, DefaultRepoRoot, cfg.RepoRoot)
	assert.Equal(t, DefaultContextLines, cfg.ContextLines)
	assert.Equal(t, DefaultMaxOutputBytes, cfg.MaxOutputBytes)
	assert.Equal(t, DefaultMaxFiles, cfg.MaxFiles)
	assert.Equal(t, DefaultPromptPath, cfg.PromptPath)
	assert.False(t, cfg.Raw)
}

func TestLoadConfig_FileOverridesDefaults(t *testing.T) {
	configsPath, cleanup := setupTestConfigs(t)
	defer cleanup()

	configContent := `
lcov_path: "out/cov.info"
repo_root: "/src/project"
context_lines: 10
max_output_bytes: 512
max_files: 3
prompt_path: "prompts/REVIEW.md"
raw: true
`
	err := os.WriteFile(filepath.Join(configsPath, "config.yaml"), []byte(configContent), 0644)
	require.NoError(t, err)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "out/cov.info", cfg.LcovPath)
	assert.Equal(t, "/src/project", cfg.RepoRoot)
	assert.Equal(t, 10, cfg.ContextLines)
	assert.Equal(t, 512, cfg.MaxOutputBytes)
	assert.Equal(t, 3, cfg.MaxFiles)
	assert.Equal(t, "prompts/REVIEW.md", cfg.PromptPath)
	assert.True(t, cfg.Raw)
}

func TestLoadConfig_PartialFileKeepsDefaults(t *testing.T) {
	configsPath, cleanup := setupTestConfigs(t)
	defer cleanup()

	configContent := `
context_lines: 5
`
	err := os.WriteFile(filepath.Join(configsPath, "config.yaml"), []byte(configContent), 0644)
	require.NoError(t, err)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.ContextLines)
	assert.Equal(t, DefaultLcovPath, cfg.LcovPath)
	assert.Equal(t, DefaultMaxFiles, cfg.MaxFiles)
}

func TestLoadConfig_MalformedYAML(t *testing.T) {
	configsPath, cleanup := setupTestConfigs(t)
	defer cleanup()

	malformed := "lcov_path: test\n  repo_root: oops" // Bad indentation
	err := os.WriteFile(filepath.Join(configsPath, "config.yaml"), []byte(malformed), 0644)
	require.NoError(t, err)

	_, err = LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoad_Success(t *testing.T) {
	configsPath, cleanup := setupTestConfigs(t)
	defer cleanup()

	configContent := `
lcov_path: "cov.info"
max_files: 7
`
	err := os.WriteFile(filepath.Join(configsPath, "custom.yaml"), []byte(configContent), 0644)
	require.NoError(t, err)

	var cfg Config
	err = Load("custom", &cfg)
	require.NoError(t, err)
	assert.Equal(t, "cov.info", cfg.LcovPath)
	assert.Equal(t, 7, cfg.MaxFiles)
}

func TestLoad_FileNotExists(t *testing.T) {
	_, cleanup := setupTestConfigs(t)
	defer cleanup()

	var cfg Config
	err := Load("non_existent_config", &cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}
