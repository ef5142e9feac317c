package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aidaily-app/aidaily/internal/common"
	"github.com/aidaily-app/aidaily/internal/syncx"
)

// HTTPClient talks JSON over HTTP to the sync server. Every request carries
// the client-level timeout, so no call can hang the sync round.
type HTTPClient struct {
	baseURL string
	http    *http.Client
}

// NewHTTPClient returns a client for the given base URL ("http://host:port").
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	UserID      string `json:"user_id"`
}

func (c *HTTPClient) Register(ctx context.Context, email, password string) (*Session, error) {
	var resp tokenResponse
	err := c.doJSON(ctx, http.MethodPost, "/auth/register", "", credentialsRequest{Email: email, Password: password}, &resp)
	if err != nil {
		return nil, err
	}
	return &Session{AccessToken: resp.AccessToken, UserID: resp.UserID}, nil
}

func (c *HTTPClient) Login(ctx context.Context, email, password string) (*Session, error) {
	var resp tokenResponse
	err := c.doJSON(ctx, http.MethodPost, "/auth/login", "", credentialsRequest{Email: email, Password: password}, &resp)
	if err != nil {
		return nil, err
	}
	return &Session{AccessToken: resp.AccessToken, UserID: resp.UserID}, nil
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodGet, "/health", "", nil, nil)
}

func (c *HTTPClient) Upload(ctx context.Context, token string, cs *syncx.ChangeSet) (*syncx.UploadResponse, error) {
	var resp syncx.UploadResponse
	if err := c.doJSON(ctx, http.MethodPost, "/sync/upload", token, cs, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) Download(ctx context.Context, token string, since time.Time) (*syncx.DownloadResponse, error) {
	path := "/sync/download?since=" + url.QueryEscape(since.UTC().Format(time.RFC3339Nano))
	var resp syncx.DownloadResponse
	if err := c.doJSON(ctx, http.MethodGet, path, token, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// doJSON sends one request and decodes the JSON response into out (if out is
// non-nil). Transport failures map to common.ErrUnavailable and 401/403 to
// common.ErrUnauthorized so callers can match with errors.Is.
func (c *HTTPClient) doJSON(ctx context.Context, method, path, token string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set(common.AuthHeaderName, common.BearerPrefix+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return c.mapTransportError(err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return common.ErrUnauthorized
	case resp.StatusCode >= 400:
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("server returned %s: %s", resp.Status, strings.TrimSpace(string(b)))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

func (c *HTTPClient) mapTransportError(err error) error {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", common.ErrUnavailable, err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", common.ErrUnavailable, err)
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return fmt.Errorf("%w: %v", common.ErrUnavailable, err)
	}
	return err
}
