package kafka

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rainyindia/holiday-signal/internal/domain"
)

func TestSerializeToMessage(t *testing.T) {
	processedAt := time.Date(2024, 11, 18, 9, 30, 0, 0, time.UTC)
	u := domain.Update{
		UpdateID:    "chennai_2024-11-18",
		Title:       "Chennai schools closed amid heavy rain",
		Content:     "All schools in Chennai will remain closed",
		Region:      "Chennai",
		State:       "Tamil Nadu",
		Reason:      domain.NewsReason,
		Category:    domain.CategoryEducational,
		HolidayType: domain.HolidayTypeWeather,
		Confidence:  95,
		IsActive:    true,
		ProcessedAt: processedAt,
	}

	msg, err := serializeToMessage(u)
	require.NoError(t, err)

	assert.Equal(t, []byte("chennai_2024-11-18"), msg.Key)

	var decoded domain.Update
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, u.UpdateID, decoded.UpdateID)
	assert.Equal(t, u.Confidence, decoded.Confidence)
	assert.Equal(t, u.State, decoded.State)

	require.Len(t, msg.Headers, 2)
	assert.Equal(t, "holiday_type", msg.Headers[0].Key)
	assert.Equal(t, []byte(domain.HolidayTypeWeather), msg.Headers[0].Value)
	assert.Equal(t, "processed_at", msg.Headers[1].Key)
	assert.Equal(t, []byte("2024-11-18T09:30:00Z"), msg.Headers[1].Value)
}
