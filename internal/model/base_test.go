package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMillisUnmarshalNumber(t *testing.T) {
	var m Millis
	require.NoError(t, json.Unmarshal([]byte("1712345678901"), &m))
	assert.Equal(t, Millis(1712345678901), m)
}

func TestMillisUnmarshalISO(t *testing.T) {
	var m Millis
	require.NoError(t, json.Unmarshal([]byte(`"2024-04-05T17:34:38.901Z"`), &m))

	expected := time.Date(2024, 4, 5, 17, 34, 38, 901000000, time.UTC)
	assert.Equal(t, expected.UnixMilli(), int64(m))
}

func TestMillisUnmarshalNumericString(t *testing.T) {
	var m Millis
	require.NoError(t, json.Unmarshal([]byte(`"1712345678901"`), &m))
	assert.Equal(t, Millis(1712345678901), m)
}

func TestMillisUnmarshalNull(t *testing.T) {
	var m Millis = 42
	require.NoError(t, json.Unmarshal([]byte("null"), &m))
	assert.True(t, m.IsZero())
}

func TestMillisUnmarshalGarbage(t *testing.T) {
	var m Millis
	assert.Error(t, json.Unmarshal([]byte(`"next tuesday"`), &m))
}

func TestMillisRoundTrip(t *testing.T) {
	now := Now()
	data, err := json.Marshal(now)
	require.NoError(t, err)

	var back Millis
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, now, back)
}

func TestRequestCanTransition(t *testing.T) {
	r := Request{ID: "r1", Status: RequestStatusPending}
	assert.NoError(t, r.CanTransition())

	r.Status = RequestStatusAccepted
	assert.Error(t, r.CanTransition())

	r.Status = RequestStatusDeclined
	assert.Error(t, r.CanTransition())
}

func TestRequestNotificationTypeMatrix(t *testing.T) {
	assert.Equal(t, NotificationTypeBuyRequestAccepted, RequestNotificationType(RequestTypeBuy, true))
	assert.Equal(t, NotificationTypeBuyRequestDeclined, RequestNotificationType(RequestTypeBuy, false))
	assert.Equal(t, NotificationTypeSellRequestAccepted, RequestNotificationType(RequestTypeSell, true))
	assert.Equal(t, NotificationTypeSellRequestDeclined, RequestNotificationType(RequestTypeSell, false))
}

func TestNotificationVisibility(t *testing.T) {
	global := Notification{ID: "n1"}
	assert.True(t, global.Global())
	assert.True(t, global.VisibleTo("anyone"))

	addressed := Notification{ID: "n2", RecipientID: "u1"}
	assert.False(t, addressed.Global())
	assert.True(t, addressed.VisibleTo("u1"))
	assert.False(t, addressed.VisibleTo("u2"))
}
