package kafka

import (
	"testing"
	"time"

	"github.com/couchcryptid/flood-alert-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerializeToMessage(t *testing.T) {
	now := time.Date(2026, 8, 6, 12, 5, 0, 0, time.UTC)
	alert := domain.Alert{
		ID:        "a-1",
		BasinID:   "bes",
		BasinName: "Besòs",
		Level:     domain.LevelOrange,
		Message:   "Besòs: forecast peak flow 180.0 m³/s reaches the orange threshold (150 m³/s)",
		Flow:      180,
		Timestamp: now,
	}

	msg, err := serializeToMessage(alert)
	require.NoError(t, err)

	assert.Equal(t, []byte("bes"), msg.Key)
	assert.Contains(t, string(msg.Value), `"level":"orange"`)
	assert.Contains(t, string(msg.Value), `"flow":180`)
	require.Len(t, msg.Headers, 2)
	assert.Equal(t, "level", msg.Headers[0].Key)
	assert.Equal(t, []byte("orange"), msg.Headers[0].Value)
	assert.Equal(t, "emitted_at", msg.Headers[1].Key)
	assert.Equal(t, []byte(now.Format(time.RFC3339)), msg.Headers[1].Value)
}
