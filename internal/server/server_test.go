package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"recipebox/internal/cache"
	"recipebox/internal/config"
	"recipebox/internal/database/dbtest"
	"recipebox/internal/password"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	password.Cost = bcrypt.MinCost
}

type testEnv struct {
	app    *fiber.App
	server *Server
	redis  *miniredis.Miniredis
}

func testConfig() *config.Config {
	return &config.Config{
		Port:                     "0",
		Env:                      "test",
		DBDriver:                 "sqlite",
		DBConnMaxLifetimeMinutes: 5,
		SessionSecret:            "test-secret-key-12345678901234567890123456789012",
		SessionCookieName:        "session",
		SessionTTLHours:          1,
		AllowedOrigins:           "http://localhost:3000",
	}
}

func newTestEnv(t *testing.T, withRedis bool) *testEnv {
	t.Helper()

	db := dbtest.Open(t)
	env := &testEnv{}

	var rdb *redis.Client
	if withRedis {
		env.redis = miniredis.RunT(t)
		rdb = redis.NewClient(&redis.Options{Addr: env.redis.Addr()})
		t.Cleanup(func() { _ = rdb.Close() })
	}

	srv, err := NewServerWithDeps(testConfig(), db, rdb)
	require.NoError(t, err)
	env.server = srv
	env.app = srv.NewApp()
	return env
}

func (e *testEnv) do(t *testing.T, method, path string, body any, cookie *http.Cookie) *http.Response {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func sessionCookie(resp *http.Response) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == "session" && c.Value != "" {
			return c
		}
	}
	return nil
}

func decode(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func signupBody(username string) map[string]any {
	return map[string]any{
		"username":  username,
		"password":  "pw123",
		"image_url": "http://x/y.png",
		"bio":       "I cook",
	}
}

func (e *testEnv) signup(t *testing.T, username string) *http.Cookie {
	t.Helper()
	resp := e.do(t, http.MethodPost, "/signup", signupBody(username), nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	cookie := sessionCookie(resp)
	require.NotNil(t, cookie)
	return cookie
}

func TestSignup_CreatesUserAndSession(t *testing.T) {
	for _, withRedis := range []bool{false, true} {
		name := "memory store"
		if withRedis {
			name = "redis store"
		}
		t.Run(name, func(t *testing.T) {
			env := newTestEnv(t, withRedis)

			resp := env.do(t, http.MethodPost, "/signup",
				`{"username":"ana","password":"pw123","image_url":"http://x/y.png","bio":3}`, nil)
			require.Equal(t, http.StatusCreated, resp.StatusCode)

			body := decode(t, resp)
			assert.Equal(t, "ana", body["username"])
			assert.Equal(t, "3", body["bio"])
			assert.Equal(t, "http://x/y.png", body["image_url"])
			assert.NotZero(t, body["id"])
			assert.Len(t, body, 4)

			cookie := sessionCookie(resp)
			require.NotNil(t, cookie)
			assert.True(t, cookie.HttpOnly)

			resp = env.do(t, http.MethodGet, "/check_session", nil, cookie)
			require.Equal(t, http.StatusOK, resp.StatusCode)
			me := decode(t, resp)
			assert.Equal(t, body["id"], me["id"])
			assert.Equal(t, "ana", me["username"])
		})
	}
}

func TestSignup_MissingFields(t *testing.T) {
	env := newTestEnv(t, false)

	for _, field := range []string{"username", "password", "image_url", "bio"} {
		t.Run(field, func(t *testing.T) {
			payload := signupBody("ana")
			delete(payload, field)

			resp := env.do(t, http.MethodPost, "/signup", payload, nil)
			assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
			assert.Equal(t, "Missing required fields", decode(t, resp)["error"])
			assert.Nil(t, sessionCookie(resp))
		})
	}

	resp := env.do(t, http.MethodPost, "/signup", `{"username":`, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestSignup_PasswordTooLong(t *testing.T) {
	env := newTestEnv(t, false)

	payload := signupBody("ana")
	payload["password"] = strings.Repeat("p", 73)
	resp := env.do(t, http.MethodPost, "/signup", payload, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "Password must be at most 72 bytes long", decode(t, resp)["error"])
	assert.Nil(t, sessionCookie(resp))

	payload["password"] = strings.Repeat("p", 72)
	resp = env.do(t, http.MethodPost, "/signup", payload, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = env.do(t, http.MethodPost, "/login",
		map[string]any{"username": "ana", "password": strings.Repeat("p", 72)}, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestSignup_DuplicateUsername(t *testing.T) {
	env := newTestEnv(t, false)
	env.signup(t, "ana")

	payload := signupBody("ana")
	payload["password"] = "different"
	payload["bio"] = "someone else"

	resp := env.do(t, http.MethodPost, "/signup", payload, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "Username already exists", decode(t, resp)["error"])
}

// Concurrent signups for one name create exactly one user. SQLite runs on a
// single connection here, so the losers are stopped by the username
// pre-check; the unique-index path is covered in the repository tests.
func TestSignup_ConcurrentSameUsernameCreatesOneUser(t *testing.T) {
	env := newTestEnv(t, false)

	const attempts = 5
	statuses := make([]int, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			raw, _ := json.Marshal(signupBody("racer"))
			req := httptest.NewRequest(http.MethodPost, "/signup", bytes.NewReader(raw))
			req.Header.Set("Content-Type", "application/json")
			resp, err := env.app.Test(req, -1)
			if err == nil {
				statuses[i] = resp.StatusCode
			}
		}(i)
	}
	wg.Wait()

	created := 0
	for _, s := range statuses {
		switch s {
		case http.StatusCreated:
			created++
		default:
			assert.Equal(t, http.StatusUnprocessableEntity, s)
		}
	}
	assert.Equal(t, 1, created)
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t, false)
	env.signup(t, "ana")

	tests := []struct {
		name   string
		body   any
		status int
	}{
		{"Correct credentials", map[string]string{"username": "ana", "password": "pw123"}, http.StatusOK},
		{"Wrong password", map[string]string{"username": "ana", "password": "nope"}, http.StatusUnauthorized},
		{"Unknown user", map[string]string{"username": "bob", "password": "pw123"}, http.StatusUnauthorized},
		{"Missing password", map[string]string{"username": "ana"}, http.StatusUnauthorized},
		{"Malformed JSON", `{"username":`, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := env.do(t, http.MethodPost, "/login", tt.body, nil)
			assert.Equal(t, tt.status, resp.StatusCode)
			if tt.status == http.StatusOK {
				assert.NotNil(t, sessionCookie(resp))
				assert.Equal(t, "ana", decode(t, resp)["username"])
			} else {
				assert.Empty(t, resp.Cookies())
				assert.NotEmpty(t, decode(t, resp)["error"])
			}
		})
	}
}

func TestLogin_FailureLeavesSessionUntouched(t *testing.T) {
	env := newTestEnv(t, false)
	cookie := env.signup(t, "ana")

	resp := env.do(t, http.MethodPost, "/login", map[string]string{"username": "ana", "password": "bad"}, cookie)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Empty(t, resp.Cookies())

	resp = env.do(t, http.MethodGet, "/check_session", nil, cookie)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestLogin_RotatesSession(t *testing.T) {
	env := newTestEnv(t, true)
	old := env.signup(t, "ana")

	resp := env.do(t, http.MethodPost, "/login", map[string]string{"username": "ana", "password": "pw123"}, old)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	fresh := sessionCookie(resp)
	require.NotNil(t, fresh)
	assert.NotEqual(t, old.Value, fresh.Value)

	assert.Equal(t, http.StatusUnauthorized, env.do(t, http.MethodGet, "/check_session", nil, old).StatusCode)
	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/check_session", nil, fresh).StatusCode)
}

func TestLogout(t *testing.T) {
	env := newTestEnv(t, true)
	env.signup(t, "ana")

	resp := env.do(t, http.MethodPost, "/login", map[string]string{"username": "ana", "password": "pw123"}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	cookie := sessionCookie(resp)

	resp = env.do(t, http.MethodDelete, "/logout", nil, cookie)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	raw, _ := io.ReadAll(resp.Body)
	assert.Empty(t, raw)
	require.NotEmpty(t, resp.Cookies())
	assert.Empty(t, resp.Cookies()[0].Value)

	resp = env.do(t, http.MethodGet, "/check_session", nil, cookie)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Not Authorized", decode(t, resp)["error"])

	resp = env.do(t, http.MethodDelete, "/logout", nil, cookie)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = env.do(t, http.MethodDelete, "/logout", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestCheckSession_Unauthenticated(t *testing.T) {
	env := newTestEnv(t, false)

	resp := env.do(t, http.MethodGet, "/check_session", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Not Authorized", decode(t, resp)["error"])

	resp = env.do(t, http.MethodGet, "/check_session", nil, &http.Cookie{Name: "session", Value: "forged"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestCheckSession_DeletedUserRevokesSession(t *testing.T) {
	env := newTestEnv(t, true)
	cookie := env.signup(t, "ana")

	sess, err := env.server.sessions.Resolve(context.Background(), cookie.Value)
	require.NoError(t, err)

	// Warm the profile cache so deletion must invalidate it.
	require.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/check_session", nil, cookie).StatusCode)
	require.True(t, env.redis.Exists(cache.UserKey(sess.UserID)))

	require.NoError(t, env.server.userRepo.Delete(context.Background(), sess.UserID))

	resp := env.do(t, http.MethodGet, "/check_session", nil, cookie)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.False(t, env.redis.Exists(cache.SessionKey(sess.ID)))
}

func TestRecipes_RequireSession(t *testing.T) {
	env := newTestEnv(t, false)

	resp := env.do(t, http.MethodGet, "/recipes", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Not Authorized", decode(t, resp)["error"])

	resp = env.do(t, http.MethodPost, "/recipes", map[string]any{
		"title":        "Soup",
		"instructions": strings.Repeat("a", 50),
	}, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRecipes_CreateValidation(t *testing.T) {
	env := newTestEnv(t, false)
	cookie := env.signup(t, "ana")

	tests := []struct {
		name   string
		body   any
		status int
	}{
		{"49 characters", map[string]any{"title": "Soup", "instructions": strings.Repeat("a", 49)}, http.StatusUnprocessableEntity},
		{"50 characters", map[string]any{"title": "Soup", "instructions": strings.Repeat("a", 50)}, http.StatusCreated},
		{"Missing title", map[string]any{"instructions": strings.Repeat("a", 50)}, http.StatusUnprocessableEntity},
		{"Negative minutes", map[string]any{"title": "Soup", "instructions": strings.Repeat("a", 50), "minutes_to_complete": -5}, http.StatusUnprocessableEntity},
		{"Malformed JSON", `{"title":`, http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := env.do(t, http.MethodPost, "/recipes", tt.body, cookie)
			assert.Equal(t, tt.status, resp.StatusCode)
			body := decode(t, resp)
			if tt.status != http.StatusCreated {
				assert.NotEmpty(t, body["error"])
			}
		})
	}
}

func TestRecipes_CreateAndList(t *testing.T) {
	env := newTestEnv(t, false)
	ana := env.signup(t, "ana")
	bob := env.signup(t, "bob")

	resp := env.do(t, http.MethodPost, "/recipes", map[string]any{
		"title":               "Bread",
		"instructions":        strings.Repeat("knead ", 10),
		"minutes_to_complete": 90,
	}, ana)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode(t, resp)
	assert.Equal(t, "Bread", created["title"])
	assert.Equal(t, float64(90), created["minutes_to_complete"])
	owner, ok := created["user"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "ana", owner["username"])
	assert.NotContains(t, owner, "password_hash")
	assert.Equal(t, owner["id"], created["user_id"])

	resp = env.do(t, http.MethodPost, "/recipes", map[string]any{
		"title":        "Salad",
		"instructions": strings.Repeat("chop ", 10),
	}, bob)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Nil(t, decode(t, resp)["minutes_to_complete"])

	resp = env.do(t, http.MethodGet, "/recipes", nil, bob)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var list []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	require.Len(t, list, 2)
	assert.Equal(t, "Bread", list[0]["title"])
	assert.Equal(t, "Salad", list[1]["title"])
	assert.Equal(t, "ana", list[0]["user"].(map[string]any)["username"])
}

func TestRecipes_EmptyListIsArray(t *testing.T) {
	env := newTestEnv(t, false)
	cookie := env.signup(t, "ana")

	resp := env.do(t, http.MethodGet, "/recipes", nil, cookie)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	raw, _ := io.ReadAll(resp.Body)
	assert.JSONEq(t, "[]", string(raw))
}

func TestHealthAndMetrics(t *testing.T) {
	env := newTestEnv(t, true)

	resp := env.do(t, http.MethodGet, "/health/live", nil, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/health/ready", nil, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode(t, resp)
	checks := body["checks"].(map[string]any)
	assert.Equal(t, "healthy", checks["database"])
	assert.Equal(t, "redis", checks["sessions"].(map[string]any)["store"])

	resp = env.do(t, http.MethodGet, "/metrics", nil, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	env.redis.Close()
	resp = env.do(t, http.MethodGet, "/health/ready", nil, nil)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestSwaggerDoc(t *testing.T) {
	env := newTestEnv(t, false)

	resp := env.do(t, http.MethodGet, "/swagger/doc.json", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var doc struct {
		Info  map[string]any            `json:"info"`
		Paths map[string]map[string]any `json:"paths"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&doc))
	assert.Equal(t, "Recipebox API", doc.Info["title"])
	assert.Contains(t, doc.Paths["/signup"], "post")
	assert.Contains(t, doc.Paths["/login"], "post")
	assert.Contains(t, doc.Paths["/check_session"], "get")
	assert.Contains(t, doc.Paths["/logout"], "delete")
	assert.Contains(t, doc.Paths["/recipes"], "get")
	assert.Contains(t, doc.Paths["/recipes"], "post")
}

func TestSessionStoreDown_IsInternalError(t *testing.T) {
	env := newTestEnv(t, true)
	cookie := env.signup(t, "ana")

	env.redis.Close()

	resp := env.do(t, http.MethodGet, "/recipes", nil, cookie)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	body := decode(t, resp)
	assert.Equal(t, "Internal server error", body["error"])
}

func TestCORS_AllowsCredentials(t *testing.T) {
	env := newTestEnv(t, false)

	req := httptest.NewRequest(http.MethodOptions, "/recipes", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	resp, err := env.app.Test(req, -1)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:3000", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", resp.Header.Get("Access-Control-Allow-Credentials"))
}
