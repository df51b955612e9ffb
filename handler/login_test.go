package handler

import (
	"net/http"
	"testing"

	"palace-guide/model"
	"palace-guide/utils"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedUser(t *testing.T, env *testEnv, email, password, name string) {
	t.Helper()
	hash, err := utils.HashPassword(password)
	require.NoError(t, err)
	env.users.users = append(env.users.users, model.User{Email: email, Password: hash, Name: name})
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	seedUser(t, env, "user1@example.com", "password1", "김철수")

	w := env.do(http.MethodPost, "/api/login", `{"email": "user1@example.com", "password": "password1"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, "user1", body["username"])
	assert.Equal(t, "김철수", body["name"])

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(body["token"].(string), claims, func(*jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	assert.Equal(t, "user1@example.com", claims.Email)
	assert.Equal(t, "palace-guide", claims.Issuer)
}

func TestLoginRejected(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	seedUser(t, env, "user1@example.com", "password1", "김철수")

	cases := []struct {
		name string
		body string
		code int
	}{
		{"wrong password", `{"email": "user1@example.com", "password": "password2"}`, http.StatusUnauthorized},
		{"unknown user", `{"email": "nobody@example.com", "password": "password1"}`, http.StatusUnauthorized},
		{"not an email", `{"email": "user1", "password": "password1"}`, http.StatusBadRequest},
		{"missing password", `{"email": "user1@example.com"}`, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := env.do(http.MethodPost, "/api/login", tc.body)
			assert.Equal(t, tc.code, w.Code)
			assert.NotContains(t, decode(t, w), "token")
		})
	}
}

func TestRegisterThenLogin(t *testing.T) {
	env := newTestEnv(t, nil, nil)

	body := `{"email": "new@example.com", "password": "secret1", "name": "홍길동"}`
	require.Equal(t, http.StatusCreated, env.do(http.MethodPost, "/api/register", body).Code)
	assert.Equal(t, http.StatusConflict, env.do(http.MethodPost, "/api/register", body).Code)
	assert.Equal(t, http.StatusBadRequest,
		env.do(http.MethodPost, "/api/register", `{"email": "x@example.com", "password": "123"}`).Code)

	w := env.do(http.MethodPost, "/api/login", `{"email": "new@example.com", "password": "secret1"}`)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestListUsersRequiresToken(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	seedUser(t, env, "user1@example.com", "password1", "김철수")

	assert.Equal(t, http.StatusUnauthorized, env.do(http.MethodGet, "/api/users", "").Code)
	assert.Equal(t, http.StatusUnauthorized,
		env.do(http.MethodGet, "/api/users", "", "Authorization", "Bearer not-a-token").Code)

	login := decode(t, env.do(http.MethodPost, "/api/login", `{"email": "user1@example.com", "password": "password1"}`))
	w := env.do(http.MethodGet, "/api/users", "", "Authorization", "Bearer "+login["token"].(string))
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	assert.Equal(t, float64(1), body["count"])
	user := body["users"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "user1@example.com", user["email"])
	assert.NotContains(t, user, "password")
	assert.NotContains(t, user, "Password")
}
