package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "keyhold.log")

	log, f, err := NewLogger(path, logrus.WarnLevel)
	require.NoError(t, err)
	log.Info("hidden")
	log.WithField("component", "page").Warn("shown")
	require.NoError(t, f.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hidden")
	assert.Contains(t, string(data), "component=page")
	assert.Contains(t, string(data), "msg=shown")
}
