package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"sync"
	"testing"

	"palace-guide/algo"
	"palace-guide/catalog"
	"palace-guide/db"
	"palace-guide/model"
	"palace-guide/places"
	"palace-guide/publish"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// memUsers 内存用户存储
type memUsers struct {
	mu    sync.Mutex
	users []model.User
}

func (m *memUsers) FindByEmail(_ context.Context, email string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			u := u
			return &u, nil
		}
	}
	return nil, db.ErrUserNotFound
}

func (m *memUsers) Create(_ context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == user.Email {
			return db.ErrUserExists
		}
	}
	user.ID = uint(len(m.users) + 1)
	m.users = append(m.users, *user)
	return nil
}

func (m *memUsers) List(context.Context) ([]model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.User(nil), m.users...), nil
}

// recordingEvents 记录发布的事件
type recordingEvents struct {
	mu     sync.Mutex
	events []publish.LocateEvent
}

func (r *recordingEvents) PublishLocate(ev publish.LocateEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

type testEnv struct {
	router *gin.Engine
	users  *memUsers
	events *recordingEvents
}

func newTestEnv(t *testing.T, buildings []model.Building, searcher places.Searcher) *testEnv {
	t.Helper()
	if buildings == nil {
		var err error
		buildings, err = catalog.Default()
		require.NoError(t, err)
	}
	resolver := algo.NewResolver(buildings, algo.Gyeongbokgung)
	env := &testEnv{users: &memUsers{}, events: &recordingEvents{}}
	h := New(Deps{
		Resolver:   resolver,
		Users:      env.users,
		Identifier: places.NewIdentifier(searcher, nil, resolver),
		Places:     searcher,
		Events:     env.events,
		JWTSecret:  []byte("test-secret"),
	})
	env.router = gin.New()
	h.Routes(env.router.Group("/api"))
	return env
}

func (e *testEnv) do(method, path, body string, headers ...string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}
