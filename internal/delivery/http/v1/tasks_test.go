package v1

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adanyl0v/go-todo-attachments/internal/attachments"
	objectmemory "github.com/adanyl0v/go-todo-attachments/internal/objectstore/memory"
	"github.com/adanyl0v/go-todo-attachments/internal/services"
	storemem "github.com/adanyl0v/go-todo-attachments/internal/storage/memory"
)

const (
	testIssuer     = "go-todo-attachments"
	testSigningKey = "secret"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := zerolog.Nop()
	taskService := services.NewTaskService(
		logger,
		storemem.NewStore(logger),
		attachments.NewService(logger, objectmemory.NewStore("attachments"), 5*time.Minute),
	)

	router := gin.New()
	RegisterRoutes(router, New(logger, taskService, testIssuer, testSigningKey))
	return router
}

func signToken(t *testing.T, subject, issuer, key string, expiresAt time.Time) string {
	t.Helper()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		Issuer:    issuer,
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(key))
	require.NoError(t, err)
	return token
}

func validToken(t *testing.T, subject string) string {
	return signToken(t, subject, testIssuer, testSigningKey, time.Now().Add(time.Hour))
}

func doRequest(t *testing.T, router http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

type itemResponse struct {
	Item getTaskResponse `json:"item"`
}

type itemsResponse struct {
	Items []getTaskResponse `json:"items"`
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestHealth(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestAuthMiddleware(t *testing.T) {
	router := newTestRouter(t)

	tests := []struct {
		name  string
		token string
	}{
		{name: "missing token"},
		{name: "wrong key", token: signToken(t, "U1", testIssuer, "other", time.Now().Add(time.Hour))},
		{name: "wrong issuer", token: signToken(t, "U1", "someone-else", testSigningKey, time.Now().Add(time.Hour))},
		{name: "expired", token: signToken(t, "U1", testIssuer, testSigningKey, time.Now().Add(-time.Hour))},
		{name: "no subject", token: signToken(t, "", testIssuer, testSigningKey, time.Now().Add(time.Hour))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, router, http.MethodGet, "/tasks", tt.token, "")
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Contains(t, rec.Body.String(), `"error"`)
		})
	}
}

func TestCreateTask(t *testing.T) {
	router := newTestRouter(t)
	token := validToken(t, "U1")

	rec := doRequest(t, router, http.MethodPost, "/tasks", token, `{"name":"Buy milk","dueDate":"2024-06-01"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	created := decode[itemResponse](t, rec).Item
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "Buy milk", created.Name)
	assert.False(t, created.Done)
	assert.False(t, created.CreatedAt.IsZero())
	require.NotNil(t, created.DueDate)
	assert.Equal(t, "2024-06-01", *created.DueDate)
	assert.Empty(t, created.AttachmentURL)
}

func TestCreateTaskBadRequest(t *testing.T) {
	router := newTestRouter(t)
	token := validToken(t, "U1")

	for _, body := range []string{`{`, `{"name":""}`, `{"name":"a","dueDate":"someday"}`} {
		rec := doRequest(t, router, http.MethodPost, "/tasks", token, body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
}

func TestTaskRoutes(t *testing.T) {
	router := newTestRouter(t)
	token := validToken(t, "U1")
	otherToken := validToken(t, "U2")

	rec := doRequest(t, router, http.MethodPost, "/tasks", token, `{"name":"Buy milk"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	taskID := decode[itemResponse](t, rec).Item.ID

	rec = doRequest(t, router, http.MethodGet, "/tasks/"+taskID, otherToken, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doRequest(t, router, http.MethodPatch, "/tasks/"+taskID, token, `{"name":"Buy oat milk","done":true}`)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doRequest(t, router, http.MethodPatch, "/tasks/missing", token, `{"name":"x"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doRequest(t, router, http.MethodPost, "/tasks/"+taskID+"/attachment", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	upload := decode[map[string]string](t, rec)
	assert.True(t, strings.HasPrefix(upload["uploadUrl"], "memory://attachments/"+taskID), upload["uploadUrl"])

	rec = doRequest(t, router, http.MethodPost, "/tasks/missing/attachment", token, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doRequest(t, router, http.MethodGet, "/tasks/"+taskID, token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[itemResponse](t, rec).Item
	assert.Equal(t, "Buy oat milk", got.Name)
	assert.True(t, got.Done)
	assert.Equal(t, "memory://attachments/"+taskID, got.AttachmentURL)

	rec = doRequest(t, router, http.MethodGet, "/tasks", otherToken, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[itemsResponse](t, rec).Items)

	rec = doRequest(t, router, http.MethodDelete, "/tasks/"+taskID, token, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = doRequest(t, router, http.MethodDelete, "/tasks/"+taskID, token, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doRequest(t, router, http.MethodGet, "/tasks", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"items":[]}`, rec.Body.String())
}

func TestNewServiceError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "invalid input", err: services.ErrInvalidInput, want: http.StatusBadRequest},
		{name: "not found", err: services.ErrTaskNotFound, want: http.StatusNotFound},
		{name: "object store down", err: attachments.ErrObjectStoreUnavailable, want: http.StatusServiceUnavailable},
		{name: "unknown", err: assert.AnError, want: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, newServiceError(tt.err).Code)
		})
	}
}
