package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"leaderboard/internal/service"
	"leaderboard/internal/store"
	"leaderboard/internal/store/storetest"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	s := store.New(storetest.Open(t))
	creds := service.NewCredentials(s, rdb, time.Minute)
	guard := service.NewGuard(s, rdb, "test-secret", time.Hour)
	r, err := NewRouter(creds, guard, []string{"127.0.0.1"})
	require.NoError(t, err)
	return r
}

func request(r http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func register(t *testing.T, r http.Handler, username, password string, isAdmin bool) {
	t.Helper()
	w := request(r, http.MethodPost, "/register", "", gin.H{"username": username, "password": password, "isAdmin": isAdmin})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

func login(t *testing.T, r http.Handler, username, password string) AuthResponse {
	t.Helper()
	w := request(r, http.MethodPost, "/login", "", gin.H{"username": username, "password": password})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestExampleFlow(t *testing.T) {
	r := setupTestRouter(t)

	register(t, r, "alice", "pw1", false)
	w := request(r, http.MethodPost, "/register", "", gin.H{"username": "alice", "password": "pw2"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	auth := login(t, r, "alice", "pw1")
	assert.NotEmpty(t, auth.Token)
	assert.False(t, auth.IsAdmin)

	w = request(r, http.MethodPost, "/contribution", auth.Token, gin.H{"activity": "pr", "points": 5})
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = request(r, http.MethodGet, "/leaderboard", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var board []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &board))
	require.Len(t, board, 1)
	assert.Equal(t, "alice", board[0]["username"])
	assert.Equal(t, float64(5), board[0]["points"])

	w = request(r, http.MethodGet, "/admin/users", auth.Token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	r := setupTestRouter(t)
	register(t, r, "alice", "pw1", false)

	w := request(r, http.MethodPost, "/login", "", gin.H{"username": "alice", "password": "pw2"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w = request(r, http.MethodPost, "/login", "", gin.H{"username": "bob", "password": "pw1"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w = request(r, http.MethodPost, "/login", "", gin.H{"username": "alice", "password": ""})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w = request(r, http.MethodPost, "/login", "", gin.H{"username": "alice"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w = request(r, http.MethodPost, "/login", "", gin.H{"password": "pw1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestContribution_Auth(t *testing.T) {
	r := setupTestRouter(t)

	w := request(r, http.MethodPost, "/contribution", "", gin.H{"activity": "pr", "points": 5})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w = request(r, http.MethodPost, "/contribution", "forged", gin.H{"activity": "pr", "points": 5})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestContribution_MaxPointsAccepted(t *testing.T) {
	r := setupTestRouter(t)
	register(t, r, "alice", "pw", false)
	tok := login(t, r, "alice", "pw").Token

	w := request(r, http.MethodPost, "/contribution", tok, gin.H{"activity": "pr", "points": service.MaxPoints})
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

func TestContribution_Validation(t *testing.T) {
	r := setupTestRouter(t)
	register(t, r, "alice", "pw", false)
	tok := login(t, r, "alice", "pw").Token

	for _, body := range []gin.H{
		{"activity": "pr"},
		{"points": 5},
		{"activity": "pr", "points": 0},
		{"activity": "pr", "points": "five"},
		{"activity": "penalty", "points": -1},
		{"activity": "pr", "points": 1000001},
		{"activity": "pr", "points": int64(9223372036854775000)},
		{"activity": "penalty", "points": -1000001},
	} {
		w := request(r, http.MethodPost, "/contribution", tok, body)
		assert.Equal(t, http.StatusBadRequest, w.Code, "body %v", body)
	}
}

func TestUserActivitiesAndProfile(t *testing.T) {
	r := setupTestRouter(t)
	register(t, r, "alice", "pw", false)
	tok := login(t, r, "alice", "pw").Token

	w := request(r, http.MethodGet, "/user/activities", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	request(r, http.MethodPost, "/contribution", tok, gin.H{"activity": "pr", "points": 20})
	request(r, http.MethodPost, "/contribution", tok, gin.H{"activity": "docs", "points": 2})

	w = request(r, http.MethodGet, "/user/activities", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var acts []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &acts))
	require.Len(t, acts, 2)
	assert.Equal(t, "docs", acts[0]["activity"])

	w = request(r, http.MethodGet, "/user/profile", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var profile map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &profile))
	assert.Equal(t, float64(22), profile["points"])
	assert.Equal(t, "Beginner", profile["level"])

	assert.Equal(t, http.StatusUnauthorized, request(r, http.MethodGet, "/user/activities", "", nil).Code)
}

func TestLeaderboard_NoSecretsAndSorted(t *testing.T) {
	r := setupTestRouter(t)
	for _, name := range []string{"alice", "bob", "carol"} {
		register(t, r, name, "pw", false)
	}
	bob := login(t, r, "bob", "pw").Token
	carol := login(t, r, "carol", "pw").Token
	request(r, http.MethodPost, "/contribution", bob, gin.H{"activity": "pr", "points": 3})
	request(r, http.MethodPost, "/contribution", carol, gin.H{"activity": "pr", "points": 7})

	w := request(r, http.MethodGet, "/leaderboard", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "password")
	assert.NotContains(t, w.Body.String(), "$2a$")

	var board []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &board))
	require.Len(t, board, 3)
	assert.Equal(t, "carol", board[0]["username"])
	assert.Equal(t, "bob", board[1]["username"])
	assert.Equal(t, "alice", board[2]["username"])
	for i := 1; i < len(board); i++ {
		assert.GreaterOrEqual(t, board[i-1]["points"], board[i]["points"])
	}
	assert.Contains(t, board[0], "createdAt")
	assert.Contains(t, board[0], "isAdmin")
}

func TestAdminRoutes(t *testing.T) {
	r := setupTestRouter(t)
	register(t, r, "root", "pw", true)
	register(t, r, "alice", "pw", false)
	admin := login(t, r, "root", "pw")
	require.True(t, admin.IsAdmin)
	login(t, r, "alice", "pw")

	w := request(r, http.MethodGet, "/admin/users", admin.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "$2a$")
	var users []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &users))
	assert.Len(t, users, 2)

	w = request(r, http.MethodGet, "/admin/users?page=2&page_size=1", admin.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &users))
	require.Len(t, users, 1)
	assert.Equal(t, "alice", users[0]["username"])

	w = request(r, http.MethodGet, "/admin/login-logs", admin.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var logs []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &logs))
	require.Len(t, logs, 2)
	assert.Equal(t, "alice", logs[0]["username"])
	assert.Contains(t, logs[0], "ipAddress")

	w = request(r, http.MethodGet, "/admin/stats", admin.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var stats map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, float64(2), stats["totalUsers"])
	assert.Equal(t, float64(0), stats["totalContributions"])
	assert.Equal(t, float64(2), stats["activeUsers"])
	alice := login(t, r, "alice", "pw").Token
	assert.Equal(t, http.StatusForbidden, request(r, http.MethodGet, "/admin/stats", alice, nil).Code)

	w = request(r, http.MethodPost, "/admin/recalculate-points", admin.Token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, http.StatusUnauthorized, request(r, http.MethodGet, "/admin/login-logs", "", nil).Code)
}

func TestLogout_RevokesToken(t *testing.T) {
	r := setupTestRouter(t)
	register(t, r, "alice", "pw", false)
	tok := login(t, r, "alice", "pw").Token

	assert.Equal(t, http.StatusOK, request(r, http.MethodPost, "/logout", tok, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, request(r, http.MethodGet, "/user/profile", tok, nil).Code)

	fresh := login(t, r, "alice", "pw").Token
	assert.Equal(t, http.StatusOK, request(r, http.MethodGet, "/user/profile", fresh, nil).Code)
}

func TestParsePage(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cases := map[string]store.Page{
		"":                      {Number: 1},
		"?page=3":               {Number: 3},
		"?page=2&page_size=10":  {Number: 2, Size: 10},
		"?page=-1&page_size=0":  {Number: 1},
		"?page_size=1000":       {Number: 1},
		"?page=x&page_size=abc": {Number: 1},
	}
	for query, want := range cases {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/admin/users"+query, nil)
		assert.Equal(t, want, parsePage(c), "query %q", query)
	}
}
