package main

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestFindPos(t *testing.T) {
	data := "ab\ncd\nef"
	tests := []struct {
		offset int
		want   FilePos
	}{
		{0, FilePos{line: 1, pos: 0}},
		{2, FilePos{line: 1, pos: 2}},
		{3, FilePos{line: 2, pos: 0}},
		{4, FilePos{line: 2, pos: 1}},
		{7, FilePos{line: 3, pos: 1}},
	}
	for _, tt := range tests {
		got := findPos(bufio.NewReader(strings.NewReader(data)), tt.offset)
		assert.Equal(t, tt.want, got, "offset %d", tt.offset)
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	path := writeConfig(t, `{
  "unsplash": {"access": "file-key", "timeout": "5s"},
  "gallery": {"count": 4, "query": "ocean"},
  "server": {"listen": "127.0.0.1:9000"},
  "debug": {"prettyJson": true}
}`)

	cfg, err := loadConfig(viper.New(), path)
	require.NoError(t, err)
	assert.Equal(t, "file-key", cfg.Unsplash.AccessKey)
	assert.Equal(t, 5*time.Second, cfg.Unsplash.Timeout)
	assert.Equal(t, DefaultUnsplashEndpoint, cfg.Unsplash.Endpoint)
	assert.Equal(t, 4, cfg.Gallery.Count)
	assert.Equal(t, "ocean", cfg.Gallery.Query)
	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Listen)
	assert.True(t, cfg.Debug.PrettyJson)
}

func TestLoadConfigDefaultsAndEnv(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv("UNSPLASH_ACCESS_KEY", "env-key")
	t.Setenv("GALLERY_GALLERY_QUERY", "forest")

	cfg, err := loadConfig(viper.New(), "")
	require.NoError(t, err)
	assert.Equal(t, "env-key", cfg.Unsplash.AccessKey)
	assert.Equal(t, 10, cfg.Gallery.Count)
	assert.Equal(t, "forest", cfg.Gallery.Query)
	assert.Equal(t, ":8081", cfg.Server.Listen)
	assert.Equal(t, time.Duration(0), cfg.Unsplash.Timeout)
}

func TestLoadConfigEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `{"unsplash": {"access": "file-key"}}`)
	t.Setenv("GALLERY_UNSPLASH_ACCESS", "env-key")

	cfg, err := loadConfig(viper.New(), path)
	require.NoError(t, err)
	assert.Equal(t, "env-key", cfg.Unsplash.AccessKey)
}

func TestLoadConfigMissingExplicitFile(t *testing.T) {
	_, err := loadConfig(viper.New(), filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unable to open configuration file")
}

func TestLoadConfigSyntaxError(t *testing.T) {
	path := writeConfig(t, "{\n  \"gallery\": {\"count\": 4,}\n}")

	_, err := loadConfig(viper.New(), path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unable to decode configuration file")
}

func TestLoadConfigRejectsBadCount(t *testing.T) {
	path := writeConfig(t, `{"gallery": {"count": 0}}`)

	_, err := loadConfig(viper.New(), path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gallery.count")
}
