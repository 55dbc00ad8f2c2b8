package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cinebuzz/discovery/services/auth"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBackend mimics the auth backend with a single account.
func fakeBackend(t *testing.T) *httptest.Server {
	t.Helper()
	user := map[string]any{"_id": "u1", "name": "Alice", "email": "alice@example.com"}
	mux := http.NewServeMux()
	mux.HandleFunc("/signin", func(w http.ResponseWriter, r *http.Request) {
		var in auth.SigninInput
		_ = json.NewDecoder(r.Body).Decode(&in)
		if in.Password != "secret1" {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "message": "Invalid credentials"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "token": "opaque", "user": user})
	})
	mux.HandleFunc("/signup", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "token": "opaque", "user": user})
	})
	mux.HandleFunc("/me", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer opaque" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "data": user})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newRouter(t *testing.T) *gin.Engine {
	gin.SetMode(gin.TestMode)
	srv := fakeBackend(t)
	cl := auth.NewClient(srv.URL, srv.Client())
	r := gin.New()
	auth.NewMiddleware(cl).RegisterHandler(r)
	RegisterHandler(r, cl)
	return r
}

func do(r *gin.Engine, method, path, token, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestSignin(t *testing.T) {
	r := newRouter(t)

	w := do(r, http.MethodPost, "/api/auth/signin", "", `{"email":"alice@example.com","password":"secret1"}`)
	require.Equal(t, http.StatusOK, w.Code)
	var res map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, true, res["success"])
	assert.Equal(t, "opaque", res["token"])

	w = do(r, http.MethodPost, "/api/auth/signin", "", `{"email":"alice@example.com","password":"nope"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(r, http.MethodPost, "/api/auth/signin", "", `{"email":"","password":"secret1"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSignup(t *testing.T) {
	r := newRouter(t)

	w := do(r, http.MethodPost, "/api/auth/signup", "", `{"name":"Alice","email":"alice@example.com","password":"123"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "at least 6 characters")

	w = do(r, http.MethodPost, "/api/auth/signup", "", `{"name":"Alice","email":"alice@example.com","password":"secret1","confirmPassword":"secret1"}`)
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestMe(t *testing.T) {
	r := newRouter(t)
	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodGet, "/api/auth/me", "", "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodGet, "/api/auth/me", "bad", "").Code)

	w := do(r, http.MethodGet, "/api/auth/me", "opaque", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"name":"Alice"`)
}
