package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitWriter(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf)
	t.Cleanup(func() { InitWriter(&bytes.Buffer{}) })

	Info().Str("cmd", "list").Msg("starting")

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "info", line["level"])
	assert.Equal(t, "starting", line["msg"])
	assert.Equal(t, "list", line["cmd"])
	assert.Contains(t, line, "ts")
}

func TestSetDebug(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf)
	t.Cleanup(func() { SetDebug(false) })

	Debug().Msg("hidden")
	assert.Zero(t, buf.Len())

	SetDebug(true)
	Debug().Msg("shown")
	assert.Contains(t, buf.String(), "shown")
}
