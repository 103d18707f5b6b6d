package api

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/sdegypt/diychach/internal/config"
	"github.com/sdegypt/diychach/internal/database"
	"github.com/sdegypt/diychach/internal/stats"
	"github.com/sdegypt/diychach/internal/testutil"
	"github.com/sdegypt/diychach/internal/types"
)

func newTestApp(t *testing.T, db database.Repository, su *stats.MockStatsUpdater) *App {
	su.On("RegisterMetric", metricUnreadLookupFailures).Once()

	return NewApp(
		http.NewServeMux(),
		testutil.TestLogger(t),
		nil,
		db,
		su,
		&config.Config{
			ServerAddr: "localhost:8080",
			SigningKey: []byte("test-signing-key"),
		},
	)
}

func sessionCookie(t *testing.T, app *App, accountId int) *http.Cookie {
	token, err := app.createJwtForSession(types.User{Id: accountId}, time.Hour)
	if err != nil {
		t.Fatalf("failed to create session token: %v", err)
	}
	return createJwtCookie(token, time.Hour)
}

func Test_unreadCountMiddleware_NoSession(t *testing.T) {
	db := &database.MockRepository{}
	defer db.AssertExpectations(t)

	su := &stats.MockStatsUpdater{}
	defer su.AssertExpectations(t)

	app := newTestApp(t, db, su)

	var gotCount int
	called := false
	handler := app.unreadCountMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		gotCount = UnreadCount(r.Context())
	}))

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	handler.ServeHTTP(rr, req)

	assert.True(t, called, "expected the request to proceed")
	assert.Zero(t, gotCount, "expected zero unread count for anonymous requests")
	db.AssertNotCalled(t, "UnreadNotificationCount", mock.Anything, mock.Anything)
}

func Test_unreadCountMiddleware_WithSession(t *testing.T) {
	db := &database.MockRepository{}
	defer db.AssertExpectations(t)
	db.On("UnreadNotificationCount", mock.Anything, 1).Return(5, nil)

	su := &stats.MockStatsUpdater{}
	defer su.AssertExpectations(t)

	app := newTestApp(t, db, su)

	var gotCount int
	handler := app.unreadCountMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotCount = UnreadCount(r.Context())
	}))

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(sessionCookie(t, app, 1))
	handler.ServeHTTP(rr, req)

	assert.Equal(t, 5, gotCount, "expected the store's unread count to be exposed")
}

func Test_unreadCountMiddleware_StoreFailure(t *testing.T) {
	db := &database.MockRepository{}
	defer db.AssertExpectations(t)
	db.On("UnreadNotificationCount", mock.Anything, 1).Return(0, errors.New("connection refused"))

	su := &stats.MockStatsUpdater{}
	defer su.AssertExpectations(t)
	su.On("Incr", metricUnreadLookupFailures).Once()

	app := newTestApp(t, db, su)

	buf := &bytes.Buffer{}
	app.log.SetOutput(buf)

	var gotCount int
	called := false
	handler := app.unreadCountMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		gotCount = UnreadCount(r.Context())
	}))

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(sessionCookie(t, app, 1))
	handler.ServeHTTP(rr, req)

	assert.True(t, called, "expected the request to proceed despite the store failure")
	assert.Zero(t, gotCount, "expected the count to degrade to zero")
	assert.Contains(t, buf.String(), "unread count", "expected the failure to be logged")
}

func TestUnreadCount_Default(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Zero(t, UnreadCount(req.Context()), "expected zero for requests without a resolved count")
}

func TestErrorHandler_PanicRecovery(t *testing.T) {
	buf := &bytes.Buffer{}
	app := &App{
		log: testutil.TestLogger(t),
	}

	app.log.SetOutput(buf)

	// handler that panics
	panicHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic(errors.New("test panic"))
	})

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	handler := app.errorHandler(panicHandler)
	handler.ServeHTTP(rr, req)

	assert.Equal(t, "close", rr.Header().Get("Connection"))
	assert.Contains(t, buf.String(), "panic: test panic")
}

func Test_errorHandler_NoPanic(t *testing.T) {
	app := &App{}

	// simple handler that does not panic
	called := false
	okHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	handler := app.errorHandler(okHandler)
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ok", rr.Body.String())
	assert.True(t, called, "expected handler to be called")
}
