package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aidaily-app/aidaily/internal/common"
	"github.com/aidaily-app/aidaily/internal/logging"
	"github.com/aidaily-app/aidaily/internal/models"
	"github.com/aidaily-app/aidaily/internal/server/auth"
	"github.com/aidaily-app/aidaily/internal/server/services"
	"github.com/aidaily-app/aidaily/internal/syncx"
)

const testSecret = "handler-test-secret"

type fakeUsers struct {
	registerErr error
	loginErr    error
}

func (f *fakeUsers) Register(ctx context.Context, email string, password []byte) (*services.AuthResult, error) {
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	return &services.AuthResult{AccessToken: "tok", UserID: "u1"}, nil
}

func (f *fakeUsers) Login(ctx context.Context, email string, password []byte) (*services.AuthResult, error) {
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return &services.AuthResult{AccessToken: "tok", UserID: "u1"}, nil
}

type fakeSync struct {
	uploadUser string
	uploadCS   *syncx.ChangeSet
	downloadTS time.Time
}

func (f *fakeSync) Upload(ctx context.Context, userID string, cs *syncx.ChangeSet) (*syncx.UploadResponse, error) {
	f.uploadUser = userID
	f.uploadCS = cs
	return &syncx.UploadResponse{Accepted: cs.Total()}, nil
}

func (f *fakeSync) Download(ctx context.Context, userID string, since time.Time) (*syncx.DownloadResponse, error) {
	f.downloadTS = since
	return &syncx.DownloadResponse{
		ChangeSet:  syncx.ChangeSet{News: []models.NewsItem{{ID: "n1", UserID: userID}}},
		ServerTime: time.Date(2025, 3, 1, 13, 0, 0, 0, time.UTC),
	}, nil
}

func newTestServer(users *fakeUsers, syncSvc *fakeSync) *Server {
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	return NewServer(":0", users, syncSvc, testSecret, logger)
}

func bearerFor(t *testing.T, userID string) string {
	t.Helper()
	token, err := auth.GenerateToken(userID, []byte(testSecret), time.Hour)
	require.NoError(t, err)
	return common.BearerPrefix + token
}

func doJSON(t *testing.T, s *Server, method, path, authHeader string, body any) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authHeader != "" {
		req.Header.Set(common.AuthHeaderName, authHeader)
	}
	resp, err := s.App().Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestHealth(t *testing.T) {
	s := newTestServer(&fakeUsers{}, &fakeSync{})
	resp := doJSON(t, s, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRegister_ReturnsToken(t *testing.T) {
	s := newTestServer(&fakeUsers{}, &fakeSync{})

	resp := doJSON(t, s, http.MethodPost, "/auth/register", "", map[string]string{
		"email": "a@example.com", "password": "pw",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "tok", body["access_token"])
	assert.Equal(t, "bearer", body["token_type"])
	assert.Equal(t, "u1", body["user_id"])
}

func TestRegister_MissingFields(t *testing.T) {
	s := newTestServer(&fakeUsers{}, &fakeSync{})
	resp := doJSON(t, s, http.MethodPost, "/auth/register", "", map[string]string{"email": "a@example.com"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRegister_DuplicateEmail_Conflict(t *testing.T) {
	s := newTestServer(&fakeUsers{registerErr: common.ErrAlreadyExists}, &fakeSync{})
	resp := doJSON(t, s, http.MethodPost, "/auth/register", "", map[string]string{
		"email": "a@example.com", "password": "pw",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestLogin_BadCredentials_Unauthorized(t *testing.T) {
	s := newTestServer(&fakeUsers{loginErr: common.ErrUnauthorized}, &fakeSync{})
	resp := doJSON(t, s, http.MethodPost, "/auth/login", "", map[string]string{
		"email": "a@example.com", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestUpload_RequiresBearerToken(t *testing.T) {
	s := newTestServer(&fakeUsers{}, &fakeSync{})
	resp := doJSON(t, s, http.MethodPost, "/sync/upload", "", &syncx.ChangeSet{})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = doJSON(t, s, http.MethodPost, "/sync/upload", "Bearer garbage", &syncx.ChangeSet{})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestUpload_PassesCallerAndBody(t *testing.T) {
	syncSvc := &fakeSync{}
	s := newTestServer(&fakeUsers{}, syncSvc)

	cs := &syncx.ChangeSet{News: []models.NewsItem{{ID: "n1", Title: "t", UpdatedAt: time.Now().UTC()}}}
	resp := doJSON(t, s, http.MethodPost, "/sync/upload", bearerFor(t, "u42"), cs)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Equal(t, "u42", syncSvc.uploadUser)
	require.NotNil(t, syncSvc.uploadCS)
	assert.Len(t, syncSvc.uploadCS.News, 1)

	var body syncx.UploadResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, 1, body.Accepted)
}

func TestDownload_ParsesSinceAndReturnsServerTime(t *testing.T) {
	syncSvc := &fakeSync{}
	s := newTestServer(&fakeUsers{}, syncSvc)

	since := time.Date(2025, 3, 1, 12, 0, 0, 123456789, time.UTC)
	path := "/sync/download?since=" + since.Format(time.RFC3339Nano)
	resp := doJSON(t, s, http.MethodGet, path, bearerFor(t, "u1"), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert.True(t, syncSvc.downloadTS.Equal(since))

	var body syncx.DownloadResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body.News, 1)
	assert.False(t, body.ServerTime.IsZero())
}

func TestDownload_MissingSince_MeansFullSync(t *testing.T) {
	syncSvc := &fakeSync{downloadTS: time.Now()}
	s := newTestServer(&fakeUsers{}, syncSvc)

	resp := doJSON(t, s, http.MethodGet, "/sync/download", bearerFor(t, "u1"), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, syncSvc.downloadTS.IsZero())
}

func TestDownload_BadSince(t *testing.T) {
	s := newTestServer(&fakeUsers{}, &fakeSync{})
	resp := doJSON(t, s, http.MethodGet, "/sync/download?since=yesterday", bearerFor(t, "u1"), nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
