package handler_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"postapi/auth"
	"postapi/handler"
)

const testSecret = "test-secret"

type testServer struct {
	e     *echo.Echo
	h     *handler.Handler
	posts *memPosts
	users *memUsers
	token string
}

func newTestServer(t *testing.T, configure ...func(*handler.Handler)) *testServer {
	t.Helper()

	s := &testServer{posts: newMemPosts(), users: newMemUsers()}
	s.h = &handler.Handler{
		Posts:       s.posts,
		Users:       s.users,
		DB:          pinger{},
		JWTSecret:   testSecret,
		TokenTTL:    time.Hour,
		Environment: "pro",
		TrimTitle:   true,
		PerPage:     15,
	}
	for _, fn := range configure {
		fn(s.h)
	}

	s.e = echo.New()
	s.e.Validator = handler.NewValidator()
	s.e.HTTPErrorHandler = handler.HTTPErrorHandler
	s.h.Register(s.e)

	token, _, err := auth.IssueToken(testSecret, "user-1", time.Hour)
	require.NoError(t, err)
	s.token = token
	return s
}

// do sends a request; body is sent as JSON when non-empty, token as a
// bearer credential when non-empty.
func (s *testServer) do(method, target, body, token string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	req.Header.Set(echo.HeaderAccept, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) authed(method, target, body string) *httptest.ResponseRecorder {
	return s.do(method, target, body, s.token)
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	out := map[string]any{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func requirePostShape(t *testing.T, v any) map[string]any {
	t.Helper()
	post, ok := v.(map[string]any)
	require.True(t, ok, "expected a JSON object, got %T", v)
	for _, key := range []string{"id", "title", "created_at", "updated_at"} {
		require.Contains(t, post, key)
	}
	return post
}
