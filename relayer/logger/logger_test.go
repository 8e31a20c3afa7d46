package logger

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestNewVariants(t *testing.T) {
	t.Run("json format logs expected fields", func(t *testing.T) {
		var buf bytes.Buffer
		log := NewWithWriter(&buf, int(zerolog.InfoLevel), "json", false)

		log.Info().Str("key", "value").Msg("json_test")

		require.Contains(t, buf.String(), `"message":"json_test"`)
		require.Contains(t, buf.String(), `"key":"value"`)
		require.Contains(t, buf.String(), `"time":`)
	})

	t.Run("console format logs human readable output", func(t *testing.T) {
		var buf bytes.Buffer
		log := NewWithWriter(&buf, int(zerolog.DebugLevel), "console", false)

		log.Debug().Str("key", "value").Msg("console_test")

		out := buf.String()
		require.Contains(t, out, "console_test")
		require.Contains(t, out, "key=value")
		require.False(t, strings.HasPrefix(out, "{"))
	})

	t.Run("level filtering", func(t *testing.T) {
		var buf bytes.Buffer
		log := NewWithWriter(&buf, int(zerolog.WarnLevel), "json", false)

		log.Info().Msg("dropped")
		log.Warn().Msg("kept")

		require.NotContains(t, buf.String(), "dropped")
		require.Contains(t, buf.String(), "kept")
	})

	t.Run("sampler keeps one in five", func(t *testing.T) {
		var buf bytes.Buffer
		log := NewWithWriter(&buf, int(zerolog.InfoLevel), "json", true)

		for i := 0; i < 10; i++ {
			log.Info().Msg("sampled")
		}

		require.Equal(t, 2, strings.Count(buf.String(), "sampled"))
	})
}

func TestComponent(t *testing.T) {
	var buf bytes.Buffer
	log := Component(NewWithWriter(&buf, int(zerolog.InfoLevel), "json", false), "relay_core")

	log.Info().Msg("hello")

	require.Contains(t, buf.String(), `"component":"relay_core"`)
}
