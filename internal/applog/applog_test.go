package applog

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestNewTagsComponent(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "debug", "resolver")
	log.Info().Msg("hello")

	assert.Contains(t, buf.String(), `"component":"resolver"`)
	assert.Contains(t, buf.String(), `"message":"hello"`)
}

func TestParseLevelFallsBackToInfo(t *testing.T) {
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("not-a-level"))
	assert.Equal(t, zerolog.DebugLevel, ParseLevel(" Debug "))
}
