package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

type BaseMessage struct {
	Id        int       `json:"id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type ClientMessage struct {
	BaseMessage
	Join    *Join         `json:"join,omitempty"`
	Publish *MessageEvent `json:"publish,omitempty"`
	Delete  *Delete       `json:"delete,omitempty"`
	client  *Client       `json:"-"`
}

type Join struct {
	FriendId int `json:"friend_id,omitempty"`
}

type Delete struct {
	MessageId int64 `json:"message_id"`
}

// MessageEvent is a chat message as persisted by the HTTP API and
// echoed over the realtime channel. The required ids are typed;
// every other field the sender included is carried through the
// round trip unchanged.
type MessageEvent struct {
	Id         int64
	SenderId   int
	ReceiverId int
	Content    string
	ImagePath  string

	// fields holds the event as received, so keys this server
	// doesn't know about survive re-serialization.
	fields map[string]json.RawMessage
}

func (m *MessageEvent) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	for key, dst := range map[string]any{
		"id":          &m.Id,
		"sender_id":   &m.SenderId,
		"receiver_id": &m.ReceiverId,
		"content":     &m.Content,
		"image_path":  &m.ImagePath,
	} {
		raw, ok := fields[key]
		if !ok {
			continue
		}
		if err := json.Unmarshal(raw, dst); err != nil {
			return fmt.Errorf("field %q: %w", key, err)
		}
	}

	m.fields = fields
	return nil
}

func (m *MessageEvent) MarshalJSON() ([]byte, error) {
	fields := make(map[string]json.RawMessage, len(m.fields)+3)
	for k, v := range m.fields {
		fields[k] = v
	}

	if err := setRawField(fields, "id", m.Id); err != nil {
		return nil, err
	}
	if err := setRawField(fields, "sender_id", m.SenderId); err != nil {
		return nil, err
	}
	if err := setRawField(fields, "receiver_id", m.ReceiverId); err != nil {
		return nil, err
	}
	if _, ok := m.fields["content"]; ok || m.Content != "" {
		if err := setRawField(fields, "content", m.Content); err != nil {
			return nil, err
		}
	}
	if _, ok := m.fields["image_path"]; ok || m.ImagePath != "" {
		if err := setRawField(fields, "image_path", m.ImagePath); err != nil {
			return nil, err
		}
	}

	return json.Marshal(fields)
}

func setRawField(fields map[string]json.RawMessage, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("field %q: %w", key, err)
	}
	fields[key] = raw
	return nil
}

// Validate checks the fields the relay needs for addressing. The
// rest of the payload is deliberately unconstrained.
func (m *MessageEvent) Validate() error {
	if m.Id <= 0 {
		return fmt.Errorf("message event missing id")
	}
	if m.SenderId <= 0 {
		return fmt.Errorf("message event missing sender_id")
	}
	if m.ReceiverId <= 0 {
		return fmt.Errorf("message event missing receiver_id")
	}
	return nil
}

type ServerMessage struct {
	BaseMessage
	Response *Response     `json:"response,omitempty"`
	Message  *MessageEvent `json:"message,omitempty"`
	Deleted  *Deleted      `json:"deleted,omitempty"`
}

type Deleted struct {
	MessageId int64 `json:"message_id"`
}

type Response struct {
	ResponseCode int    `json:"response_code"`
	Error        string `json:"error,omitempty"`
	Data         any    `json:"data,omitempty"`
}

func NoErrAccepted(id int) *ServerMessage {
	return &ServerMessage{
		BaseMessage: BaseMessage{
			Id:        id,
			Timestamp: Now(),
		},
		Response: &Response{
			ResponseCode: http.StatusAccepted,
		},
	}
}

func ErrInvalidMessage(id int) *ServerMessage {
	msg := &ServerMessage{
		BaseMessage: BaseMessage{
			Timestamp: Now(),
		},
		Response: &Response{
			ResponseCode: http.StatusBadRequest,
			Error:        "invalid message format",
		},
	}

	if id > 0 {
		msg.Id = id
	}
	return msg
}

func ErrInternalError(id int) *ServerMessage {
	return &ServerMessage{
		BaseMessage: BaseMessage{
			Id:        id,
			Timestamp: Now(),
		},
		Response: &Response{
			ResponseCode: http.StatusInternalServerError,
			Error:        "internal server error",
		},
	}
}

func Now() time.Time {
	return time.Now().UTC().Round(time.Millisecond)
}
