package postgres

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rainyindia/holiday-signal/internal/domain"
)

func TestEncodeSources(t *testing.T) {
	t.Run("nil encodes as empty array", func(t *testing.T) {
		b, err := encodeSources(nil)
		require.NoError(t, err)
		assert.Equal(t, "[]", string(b))
	})

	t.Run("round trip", func(t *testing.T) {
		in := []domain.Source{
			{
				Name:  "test-news",
				URL:   "https://example.com/story",
				Title: "Chennai schools closed",
				Date:  time.Date(2024, 11, 18, 6, 30, 0, 0, time.UTC),
			},
		}
		b, err := encodeSources(in)
		require.NoError(t, err)

		var out []domain.Source
		require.NoError(t, json.Unmarshal(b, &out))
		assert.Equal(t, in, out)
	})
}
