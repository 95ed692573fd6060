package rlog

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNew_UnknownValuesFallBackToDefaults(t *testing.T) {
	logger := New(Config{Level: "bogus", Format: "bogus", Output: "bogus"})
	require.NotNil(t, logger)
}

func TestForStage_TagsStageField(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	tagged := ForStage(logger, "scheduling")
	tagged.Info("wave dispatched")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "scheduling", entry["stage"])
}
