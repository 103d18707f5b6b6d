package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/gorilla/websocket"

	"github.com/sdegypt/diychach/internal/database"
	"github.com/sdegypt/diychach/internal/server"
	"github.com/sdegypt/diychach/internal/types"
)

const defaultConversationLimit = 50

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type CreateMessageRequest struct {
	ReceiverId int    `json:"receiver_id"`
	Content    string `json:"content"`
	ImagePath  string `json:"image_path,omitempty"`
}

type SessionResponse struct {
	User        types.User `json:"user"`
	UnreadCount int        `json:"unread_count"`
}

func (s *App) writeJson(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Println("failed to encode response:", err)
	}
}

func (s *App) createAccount(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	pwdHash, err := hashPassword(req.Password)
	if err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	newUser, err := s.db.CreateAccount(database.CreateAccountParams{
		Username:     req.Username,
		EmailAddress: req.Email,
		PasswordHash: pwdHash,
	})
	if err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusCreated, types.User{
		Id:           newUser.Id,
		Username:     newUser.Username,
		EmailAddress: newUser.EmailAddress,
	})
}

func (s *App) login(w http.ResponseWriter, r *http.Request) {
	var lr LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&lr); err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	dbUser, err := s.db.GetAccountByEmail(lr.Email)
	if err != nil {
		var errResp *ApiError
		if errors.Is(err, sql.ErrNoRows) {
			errResp = NewNotFoundError()
		} else {
			errResp = NewInternalServerError(err)
		}
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if !verifyPassword(dbUser.PasswordHash, lr.Password) {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	u := types.User{
		Id:           dbUser.Id,
		Username:     dbUser.Username,
		EmailAddress: dbUser.EmailAddress,
		IsAdmin:      dbUser.IsAdmin,
		CreatedAt:    dbUser.CreatedAt,
		UpdatedAt:    dbUser.UpdatedAt,
	}

	token, err := s.createJwtForSession(u, defaultExp)
	if err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	http.SetCookie(w, createJwtCookie(token, defaultExp))

	s.writeJson(w, http.StatusOK, u)
}

func (s *App) logout(w http.ResponseWriter, _ *http.Request) {
	// instruct browser to delete cookie by overwriting it with an expired token
	http.SetCookie(w, createJwtCookie("", time.Duration(time.Unix(0, 0).Unix())))
	w.WriteHeader(http.StatusNoContent)
}

func (s *App) session(w http.ResponseWriter, r *http.Request) {
	userId, ok := UserId(r.Context())
	if !ok {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	user, err := s.db.GetAccountById(userId)
	if err != nil {
		errResp := NewNotFoundError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusOK, SessionResponse{
		User: types.User{
			Id:           user.Id,
			Username:     user.Username,
			EmailAddress: user.EmailAddress,
			IsAdmin:      user.IsAdmin,
			CreatedAt:    user.CreatedAt,
			UpdatedAt:    user.UpdatedAt,
		},
		UnreadCount: UnreadCount(r.Context()),
	})
}

// createMessage persists a chat message. The realtime relay never
// writes to storage, so this handler is the durable write the
// relay's publish path depends on.
func (s *App) createMessage(w http.ResponseWriter, r *http.Request) {
	userId, ok := UserId(r.Context())
	if !ok {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	var req CreateMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if req.ReceiverId <= 0 || (req.Content == "" && req.ImagePath == "") {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	msg, err := s.db.CreateChatMessage(database.CreateChatMessageParams{
		SenderId:   userId,
		ReceiverId: req.ReceiverId,
		Content:    req.Content,
		ImagePath:  req.ImagePath,
	})
	if err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if _, err := s.db.CreateNotification(database.CreateNotificationParams{
		UserId:  req.ReceiverId,
		Kind:    "chat_message",
		Content: "new message",
	}); err != nil {
		// the message is already stored, a missing notification
		// is not worth failing the request over
		s.log.Printf("create notification for account %d: %v", req.ReceiverId, err)
	}

	s.writeJson(w, http.StatusCreated, chatMessageResponse(msg))
}

func (s *App) getConversation(w http.ResponseWriter, r *http.Request) {
	userId, ok := UserId(r.Context())
	if !ok {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	friendId, err := strconv.Atoi(r.URL.Query().Get("friend_id"))
	if err != nil || friendId <= 0 {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	messages, err := s.db.GetConversation(userId, friendId, defaultConversationLimit)
	if err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	resp := make([]types.ChatMessage, 0, len(messages))
	for _, m := range messages {
		resp = append(resp, chatMessageResponse(m))
	}

	s.writeJson(w, http.StatusOK, resp)
}

func chatMessageResponse(m database.ChatMessage) types.ChatMessage {
	msg := types.ChatMessage{
		Id:         m.Id,
		SenderId:   m.SenderId,
		ReceiverId: m.ReceiverId,
		Content:    m.Content,
		CreatedAt:  m.CreatedAt,
	}
	if m.ImagePath.Valid {
		msg.ImagePath = m.ImagePath.String
	}

	return msg
}

func (s *App) listNotifications(w http.ResponseWriter, r *http.Request) {
	userId, ok := UserId(r.Context())
	if !ok {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	notifications, err := s.db.ListNotifications(userId, defaultConversationLimit)
	if err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	resp := make([]types.Notification, 0, len(notifications))
	for _, n := range notifications {
		resp = append(resp, types.Notification{
			Id:        n.Id,
			UserId:    n.UserId,
			Kind:      n.Kind,
			Content:   n.Content,
			Read:      n.Read,
			CreatedAt: n.CreatedAt,
		})
	}

	s.writeJson(w, http.StatusOK, resp)
}

func (s *App) markNotificationsRead(w http.ResponseWriter, r *http.Request) {
	userId, ok := UserId(r.Context())
	if !ok {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if err := s.db.MarkNotificationsRead(userId); err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *App) serveWs(w http.ResponseWriter, r *http.Request) {
	id, ok := UserId(r.Context())
	if !ok {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	user, err := s.db.GetAccountById(id)
	if err != nil {
		var errResp *ApiError
		if errors.Is(err, sql.ErrNoRows) {
			errResp = NewNotFoundError()
		} else {
			errResp = NewInternalServerError(err)
		}
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			// only allow connections from allowed origins
			origin := r.Header.Get("Origin")
			if origin == "" {
				// if no origin header, allow the request
				return true
			}

			return slices.Contains(s.allowedOrigins, origin)
		},
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Println("error upgrading connection:", err)
		return
	}

	client, err := server.NewClient(types.User{
		Id:           user.Id,
		Username:     user.Username,
		EmailAddress: user.EmailAddress,
	}, conn, s.cs, s.log)
	if err != nil {
		s.log.Println("error creating client:", err)
		conn.Close()
		return
	}

	s.cs.RegisterChan <- client

	go client.Write()
	go client.Read()
}
