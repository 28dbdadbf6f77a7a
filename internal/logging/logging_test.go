package logging_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ppm/internal/config"
	"ppm/internal/logging"
)

func TestInit_JSONAndLevel(t *testing.T) {
	var buf bytes.Buffer
	logging.Init(config.LogConfig{Level: "warn", Format: "json"}, &buf)
	t.Cleanup(func() { logging.Init(config.LogConfig{Level: "info"}, nil) })

	logrus.Info("dropped")
	logrus.WithField("route", "r/1").Warn("kept")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "kept", entry["msg"])
	assert.Equal(t, "r/1", entry["route"])
}

func TestInit_InvalidLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	logging.Init(config.LogConfig{Level: "loud"}, &buf)

	assert.Equal(t, logrus.InfoLevel, logrus.GetLevel())
}
