package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/symptomsync/healthai/backend/internal/middleware"
	modelauth "github.com/symptomsync/healthai/backend/internal/model/auth"
	authService "github.com/symptomsync/healthai/backend/internal/service/auth"
)

func setupRouter() (*chi.Mux, *authService.MemoryProvider) {
	provider := authService.NewMemoryProvider()
	h := New(provider, "http://localhost:3000/auth/updatePassword")

	r := chi.NewRouter()
	h.RegisterPublicRoutes(r)
	r.Group(func(g chi.Router) {
		g.Use(middleware.RequireSession(provider))
		h.RegisterSessionRoutes(g)
	})
	return r, provider
}

func do(r http.Handler, method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func signUp(t *testing.T, r http.Handler) modelauth.Session {
	t.Helper()
	resp := do(r, http.MethodPost, "/signup",
		`{"email":"Jane@Example.com","password":"Secret123","confirmPassword":"Secret123"}`, "")
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	var session modelauth.Session
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &session))
	require.NotEmpty(t, session.AccessToken)
	return session
}

func TestSignUpAndMe(t *testing.T) {
	r, _ := setupRouter()
	session := signUp(t, r)

	resp := do(r, http.MethodGet, "/me", "", session.AccessToken)
	require.Equal(t, http.StatusOK, resp.Code)

	var user modelauth.User
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &user))
	assert.Equal(t, "jane@example.com", user.Email)
	assert.Equal(t, session.User.ID, user.ID)
}

func TestSignUpSetsCookie(t *testing.T) {
	r, _ := setupRouter()
	resp := do(r, http.MethodPost, "/signup",
		`{"email":"a@example.com","password":"Secret123","confirmPassword":"Secret123"}`, "")
	require.Equal(t, http.StatusCreated, resp.Code)

	cookies := resp.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, middleware.SessionCookie, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
}

func TestSignUpRejects(t *testing.T) {
	r, _ := setupRouter()
	signUp(t, r)

	tests := []struct {
		name string
		body string
		want int
	}{
		{"weak password", `{"email":"b@example.com","password":"secret","confirmPassword":"secret"}`, http.StatusBadRequest},
		{"mismatch", `{"email":"b@example.com","password":"Secret123","confirmPassword":"Secret124"}`, http.StatusBadRequest},
		{"bad email", `{"email":"nope","password":"Secret123","confirmPassword":"Secret123"}`, http.StatusBadRequest},
		{"taken", `{"email":"jane@example.com","password":"Secret123","confirmPassword":"Secret123"}`, http.StatusConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := do(r, http.MethodPost, "/signup", tt.body, "")
			assert.Equal(t, tt.want, resp.Code, resp.Body.String())
		})
	}
}

func TestLogin(t *testing.T) {
	r, _ := setupRouter()
	signUp(t, r)

	resp := do(r, http.MethodPost, "/login", `{"email":"jane@example.com","password":"Secret123"}`, "")
	assert.Equal(t, http.StatusOK, resp.Code)

	resp = do(r, http.MethodPost, "/login", `{"email":"jane@example.com","password":"wrong"}`, "")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestLogoutRevokesToken(t *testing.T) {
	r, _ := setupRouter()
	session := signUp(t, r)

	resp := do(r, http.MethodPost, "/logout", "", session.AccessToken)
	require.Equal(t, http.StatusOK, resp.Code)

	resp = do(r, http.MethodGet, "/me", "", session.AccessToken)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestForgotPassword(t *testing.T) {
	r, provider := setupRouter()

	resp := do(r, http.MethodPost, "/forgot-password", `{"email":"Jane@example.com"}`, "")
	require.Equal(t, http.StatusAccepted, resp.Code)
	assert.Equal(t, []string{"jane@example.com"}, provider.ResetRequests())
}

func TestUpdatePassword(t *testing.T) {
	r, _ := setupRouter()
	session := signUp(t, r)

	resp := do(r, http.MethodPost, "/update-password",
		`{"password":"Changed456","confirmPassword":"Changed456"}`, session.AccessToken)
	require.Equal(t, http.StatusOK, resp.Code)

	resp = do(r, http.MethodPost, "/login", `{"email":"jane@example.com","password":"Changed456"}`, "")
	assert.Equal(t, http.StatusOK, resp.Code)
}

func TestSessionRoutesWithoutToken(t *testing.T) {
	r, _ := setupRouter()

	resp := do(r, http.MethodGet, "/me", "", "")
	require.Equal(t, http.StatusUnauthorized, resp.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, authService.LoginRoute, body["redirect"])
}
