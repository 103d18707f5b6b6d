package server

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMessageEvent_RoundTrip(t *testing.T) {
	raw := `{"id":7,"sender_id":1,"receiver_id":2,"content":"hi","image_path":"/img/a.webp","reply_to":33,"meta":{"client":"web"}}`

	var ev MessageEvent
	err := json.Unmarshal([]byte(raw), &ev)
	assert.NoError(t, err, "expected event to parse")
	assert.Equal(t, int64(7), ev.Id, "expected id to be extracted")
	assert.Equal(t, 1, ev.SenderId, "expected sender_id to be extracted")
	assert.Equal(t, 2, ev.ReceiverId, "expected receiver_id to be extracted")
	assert.Equal(t, "hi", ev.Content, "expected content to be extracted")
	assert.Equal(t, "/img/a.webp", ev.ImagePath, "expected image_path to be extracted")

	out, err := json.Marshal(&ev)
	assert.NoError(t, err, "expected event to re-serialize")

	var got, want map[string]any
	assert.NoError(t, json.Unmarshal(out, &got))
	assert.NoError(t, json.Unmarshal([]byte(raw), &want))
	assert.Equal(t, want, got, "expected unknown fields to survive the round trip unchanged")
}

func TestMessageEvent_MarshalConstructed(t *testing.T) {
	ev := &MessageEvent{Id: 7, SenderId: 1, ReceiverId: 2, Content: "hi"}

	out, err := json.Marshal(ev)
	assert.NoError(t, err, "expected event to serialize")

	var got map[string]any
	assert.NoError(t, json.Unmarshal(out, &got))
	assert.Equal(t, map[string]any{
		"id":          float64(7),
		"sender_id":   float64(1),
		"receiver_id": float64(2),
		"content":     "hi",
	}, got, "expected empty optional fields to be omitted")
}

func TestMessageEvent_Validate(t *testing.T) {
	tcases := []struct {
		name string
		ev   MessageEvent
		err  bool
	}{
		{
			name: "valid",
			ev:   MessageEvent{Id: 7, SenderId: 1, ReceiverId: 2},
			err:  false,
		},
		{
			name: "missing id",
			ev:   MessageEvent{SenderId: 1, ReceiverId: 2},
			err:  true,
		},
		{
			name: "missing sender",
			ev:   MessageEvent{Id: 7, ReceiverId: 2},
			err:  true,
		},
		{
			name: "missing receiver",
			ev:   MessageEvent{Id: 7, SenderId: 1},
			err:  true,
		},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.ev.Validate()
			if tc.err {
				assert.Error(t, err, "expected validation to fail")
			} else {
				assert.NoError(t, err, "expected validation to pass")
			}
		})
	}
}

func TestMessageEvent_MalformedField(t *testing.T) {
	var ev MessageEvent
	err := json.Unmarshal([]byte(`{"id":"not-a-number","sender_id":1,"receiver_id":2}`), &ev)
	assert.Error(t, err, "expected a malformed required field to be rejected")
}

func TestErrInvalidMessage(t *testing.T) {
	t.Run("positive id is echoed", func(t *testing.T) {
		msg := ErrInvalidMessage(3)
		assert.Equal(t, 3, msg.Id, "expected message id to be echoed")
		assert.Equal(t, 400, msg.Response.ResponseCode, "expected bad request response code")
	})

	t.Run("unknown id is omitted", func(t *testing.T) {
		msg := ErrInvalidMessage(-1)
		assert.Zero(t, msg.Id, "expected no id on the response")
	})
}

func TestNow(t *testing.T) {
	res := Now()
	assert.Equal(t, time.UTC, res.Location(), "expected UTC timestamps")
	assert.Zero(t, res.Nanosecond()%int(time.Millisecond), "expected millisecond precision")
}
