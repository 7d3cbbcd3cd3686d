package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	viper.Set("format", "json")
	viper.Set("max_file_size_mb", 64)
	viper.Set("line_numbers", true)
	viper.Set("context", 2)

	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "json", c.Format)
	assert.Equal(t, 64, c.MaxFileSizeMB)
	assert.True(t, c.LineNumbers)
	assert.Equal(t, 2, c.Context)
}

func TestCheckFileSize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "big.log")
	require.NoError(t, os.WriteFile(path, []byte(strings.Repeat("x", 2048)), 0o600))

	unlimited := &Config{MaxFileSizeMB: 0}
	assert.NoError(t, unlimited.CheckFileSize(path))

	// 2KB file against a 1MB limit passes.
	roomy := &Config{MaxFileSizeMB: 1}
	assert.NoError(t, roomy.CheckFileSize(path))
}

func TestCheckFileSizeOverLimit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "big.log")
	require.NoError(t, os.WriteFile(path, []byte(strings.Repeat("x", 2*1024*1024)), 0o600))

	c := &Config{MaxFileSizeMB: 1}
	err := c.CheckFileSize(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "over the 1MB limit")
}

func TestCheckFileSizeMissingFile(t *testing.T) {
	c := &Config{MaxFileSizeMB: 1}
	assert.Error(t, c.CheckFileSize(filepath.Join(t.TempDir(), "absent")))
}

func TestExpandGlobs(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.log", "a.log", "c.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x\n"), 0o600))
	}

	files, err := ExpandGlobs([]string{filepath.Join(dir, "*.log")})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.log"), filepath.Join(dir, "b.log")}, files)
}

func TestExpandGlobsDeduplicates(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.log")
	require.NoError(t, os.WriteFile(path, []byte("x\n"), 0o600))

	files, err := ExpandGlobs([]string{path, filepath.Join(dir, "*.log")})
	require.NoError(t, err)
	assert.Equal(t, []string{path}, files)
}

func TestExpandGlobsErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := ExpandGlobs(nil)
	assert.Error(t, err)

	_, err = ExpandGlobs([]string{dir})
	assert.ErrorContains(t, err, "is a directory")

	_, err = ExpandGlobs([]string{filepath.Join(dir, "*.none")})
	assert.ErrorContains(t, err, "no matches")

	_, err = ExpandGlobs([]string{filepath.Join(dir, "missing.log")})
	assert.Error(t, err)
}
