package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wyfcoding/smarthome/internal/user/application"
	"github.com/wyfcoding/smarthome/internal/user/infrastructure/persistence/memory"
	"golang.org/x/crypto/bcrypt"
)

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, string, string, any) error { return nil }

type passTx struct{}

func (passTx) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func newRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	repo := memory.NewUserRepository()
	cmd, err := application.NewUserCommandService(repo, noopPublisher{}, passTx{}, bcrypt.MinCost)
	require.NoError(t, err)
	r := gin.New()
	NewUserHandler(application.NewUserService(cmd, application.NewUserQueryService(repo))).RegisterRoutes(&r.RouterGroup)
	return r
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

const registerBody = `{"name":"John Doe","email":"john@example.com","password":"password123",
  "street":"123 Main St","city":"Chicago","state":"IL","zipCode":"60601"}`

func TestUserRoutes(t *testing.T) {
	r := newRouter(t)

	w := do(r, http.MethodPost, "/api/register", registerBody)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var reg struct {
		UserID string `json:"user_id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &reg))
	require.NotEmpty(t, reg.UserID)

	w = do(r, http.MethodPost, "/api/register", registerBody)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "email already exists")

	w = do(r, http.MethodPost, "/api/login", `{"email":"john@example.com","password":"password123"}`)
	require.Equal(t, http.StatusOK, w.Code)
	var login struct {
		UserID string `json:"user_id"`
		Name   string `json:"name"`
		Role   string `json:"role"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &login))
	assert.Equal(t, reg.UserID, login.UserID)
	assert.Equal(t, "customer", login.Role)

	w = do(r, http.MethodGet, "/api/user/"+reg.UserID, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "password")
	var dto application.UserDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &dto))
	assert.Equal(t, "60601", dto.ZipCode)

	w = do(r, http.MethodGet, "/api/customers", "")
	require.Equal(t, http.StatusOK, w.Code)
	var customers []application.UserDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &customers))
	assert.Len(t, customers, 1)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
	}{
		{"wrong password", http.MethodPost, "/api/login", `{"email":"john@example.com","password":"nope"}`, http.StatusBadRequest},
		{"login missing fields", http.MethodPost, "/api/login", `{}`, http.StatusBadRequest},
		{"update", http.MethodPut, "/api/user/update/" + reg.UserID,
			`{"name":"John D","email":"john@example.com","password":"","street":"1 Elm","city":"Chicago","state":"IL","zipCode":"60602"}`, http.StatusOK},
		{"update missing", http.MethodPut, "/api/user/update/nope", `{"name":"X","email":"x@example.com"}`, http.StatusNotFound},
		{"get missing", http.MethodGet, "/api/user/nope", "", http.StatusNotFound},
		{"delete", http.MethodDelete, "/api/user/delete/" + reg.UserID, "", http.StatusOK},
		{"delete again", http.MethodDelete, "/api/user/delete/" + reg.UserID, "", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(r, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
		})
	}
}
