package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/sdegypt/diychach/internal/database"
	"github.com/sdegypt/diychach/internal/stats"
)

func TestSession(t *testing.T) {
	db := &database.MockRepository{}
	defer db.AssertExpectations(t)
	db.On("GetAccountById", 1).Return(database.User{
		Id:           1,
		Username:     "tester",
		EmailAddress: "tester@example.com",
	}, nil)

	su := &stats.MockStatsUpdater{}
	defer su.AssertExpectations(t)

	app := newTestApp(t, db, su)

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/auth/session", nil)
	ctx := WithUserId(req.Context(), 1)
	ctx = WithUnreadCount(ctx, 7)

	app.session(rr, req.WithContext(ctx))

	assert.Equal(t, http.StatusOK, rr.Code, "expected OK response")

	var resp SessionResponse
	assert.NoError(t, json.NewDecoder(rr.Body).Decode(&resp), "expected a session response body")
	assert.Equal(t, 1, resp.User.Id, "expected the session user")
	assert.Equal(t, "tester", resp.User.Username)
	assert.Equal(t, 7, resp.UnreadCount, "expected the middleware's unread count to be echoed")
}

func TestCreateMessage(t *testing.T) {
	t.Run("persists message and notifies receiver", func(t *testing.T) {
		db := &database.MockRepository{}
		defer db.AssertExpectations(t)
		db.On("CreateChatMessage", database.CreateChatMessageParams{
			SenderId:   1,
			ReceiverId: 2,
			Content:    "hi",
		}).Return(database.ChatMessage{Id: 7, SenderId: 1, ReceiverId: 2, Content: "hi"}, nil)
		db.On("CreateNotification", database.CreateNotificationParams{
			UserId:  2,
			Kind:    "chat_message",
			Content: "new message",
		}).Return(database.Notification{Id: 1}, nil)

		su := &stats.MockStatsUpdater{}
		defer su.AssertExpectations(t)

		app := newTestApp(t, db, su)

		body, _ := json.Marshal(CreateMessageRequest{ReceiverId: 2, Content: "hi"})
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/messages", bytes.NewReader(body))

		app.createMessage(rr, req.WithContext(WithUserId(req.Context(), 1)))

		assert.Equal(t, http.StatusCreated, rr.Code, "expected created response")

		var resp map[string]any
		assert.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
		assert.Equal(t, float64(7), resp["id"], "expected the stored message id")
	})

	t.Run("rejects empty message", func(t *testing.T) {
		db := &database.MockRepository{}
		defer db.AssertExpectations(t)

		su := &stats.MockStatsUpdater{}
		defer su.AssertExpectations(t)

		app := newTestApp(t, db, su)

		body, _ := json.Marshal(CreateMessageRequest{ReceiverId: 2})
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/messages", bytes.NewReader(body))

		app.createMessage(rr, req.WithContext(WithUserId(req.Context(), 1)))

		assert.Equal(t, http.StatusBadRequest, rr.Code, "expected bad request response")
		db.AssertNotCalled(t, "CreateChatMessage", mock.Anything)
	})
}

func TestGetConversation(t *testing.T) {
	t.Run("returns messages", func(t *testing.T) {
		db := &database.MockRepository{}
		defer db.AssertExpectations(t)
		db.On("GetConversation", 1, 2, defaultConversationLimit).Return([]database.ChatMessage{
			{Id: 7, SenderId: 1, ReceiverId: 2, Content: "hi"},
		}, nil)

		su := &stats.MockStatsUpdater{}
		defer su.AssertExpectations(t)

		app := newTestApp(t, db, su)

		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/messages?friend_id=2", nil)

		app.getConversation(rr, req.WithContext(WithUserId(req.Context(), 1)))

		assert.Equal(t, http.StatusOK, rr.Code, "expected OK response")

		var resp []map[string]any
		assert.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
		assert.Len(t, resp, 1, "expected one message")
	})

	t.Run("rejects missing friend id", func(t *testing.T) {
		db := &database.MockRepository{}
		defer db.AssertExpectations(t)

		su := &stats.MockStatsUpdater{}
		defer su.AssertExpectations(t)

		app := newTestApp(t, db, su)

		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/messages", nil)

		app.getConversation(rr, req.WithContext(WithUserId(req.Context(), 1)))

		assert.Equal(t, http.StatusBadRequest, rr.Code, "expected bad request response")
	})
}
