package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/steveyegge/tailzero/internal/config"
)

func TestRunConfig_Print(t *testing.T) {
	c := config.Default()
	c.Search.Workers = 7

	var out bytes.Buffer
	require.NoError(t, runConfig(&out, c, ""))
	assert.Contains(t, out.String(), "workers: 7")
	assert.Contains(t, out.String(), "algorithm: sha256")
}

func TestRunConfig_Write(t *testing.T) {
	c := config.Default()
	c.Search.Workers = 7
	c.Search.Contiguous = true
	c.History.Keep = 3

	path := filepath.Join(t.TempDir(), "conf", "tailzero.yaml")

	var out bytes.Buffer
	require.NoError(t, runConfig(&out, c, path))
	assert.Contains(t, out.String(), "Wrote configuration to "+path)

	loaded, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, c, loaded)
}
