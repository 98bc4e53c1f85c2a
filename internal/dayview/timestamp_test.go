package dayview

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimestampConversions(t *testing.T) {
	at := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

	native := Native(at)
	assert.Equal(t, TimestampNative, native.Kind())
	converted, ok := native.Time()
	require.True(t, ok)
	assert.True(t, at.Equal(converted))

	epoch := Epoch(at.UnixMilli())
	assert.Equal(t, TimestampEpoch, epoch.Kind())
	assert.Equal(t, at.UnixMilli(), epoch.Millis())

	var none Timestamp
	assert.True(t, none.IsZero())
	assert.Nil(t, none.Ptr())
	assert.Equal(t, int64(0), none.Millis())
	assert.True(t, FromPtr(nil).IsZero())
}

func TestTimestampUnmarshalJSON(t *testing.T) {
	var payload struct {
		A Timestamp `json:"a"`
		B Timestamp `json:"b"`
		C Timestamp `json:"c"`
		D Timestamp `json:"d"`
	}
	err := json.Unmarshal([]byte(`{"a":1714554000000,"b":"2024-05-01T09:00:00Z","c":null,"d":"2024-05-03"}`), &payload)
	require.NoError(t, err)

	assert.Equal(t, TimestampEpoch, payload.A.Kind())
	assert.Equal(t, TimestampNative, payload.B.Kind())
	assert.Equal(t, payload.A.Millis(), payload.B.Millis())
	assert.True(t, payload.C.IsZero())
	d, ok := payload.D.Time()
	require.True(t, ok)
	assert.Equal(t, "2024-05-03", DateID(d))

	var bad Timestamp
	assert.Error(t, json.Unmarshal([]byte(`"yesterday"`), &bad))
}

func TestTimestampMarshalJSON(t *testing.T) {
	raw, err := json.Marshal(Epoch(0))
	require.NoError(t, err)
	assert.Equal(t, `"1970-01-01T00:00:00Z"`, string(raw))

	raw, err = json.Marshal(Timestamp{})
	require.NoError(t, err)
	assert.Equal(t, "null", string(raw))
}
