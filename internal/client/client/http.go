package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/dmitrijs2005/venuebook/internal/client/models"
	"github.com/dmitrijs2005/venuebook/internal/common"
)

const (
	loginPath    = "/user/login"
	registerPath = "/user/register"
	logoutPath   = "/user/logout"
	profilePath  = "/user/profile"
)

// maxBodySize bounds how much of a response body is read.
const maxBodySize = 1 << 20

type HTTPClient struct {
	baseURL string
	http    *http.Client
}

// NewHTTPClient builds a client for the API rooted at baseURL. timeout caps
// every request; callers can tighten it per call through the context.
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *HTTPClient) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+loginPath, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	return c.doAuth(ctx, httpReq)
}

func (c *HTTPClient) Register(ctx context.Context, form models.RegisterForm, avatar *models.Avatar) (*models.AuthResponse, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fields := []struct{ name, value string }{
		{"first_name", form.FirstName},
		{"last_name", form.LastName},
		{"email", form.Email},
		{"password", form.Password},
		{"password_confirmation", form.PasswordConfirmation},
		{"fingerprint", form.Fingerprint},
	}
	for _, f := range fields {
		if f.name == "fingerprint" && f.value == "" {
			continue
		}
		if err := w.WriteField(f.name, f.value); err != nil {
			return nil, err
		}
	}

	if avatar != nil && len(avatar.Data) > 0 {
		name := avatar.Filename
		if name == "" {
			name = "avatar.jpg"
		}
		part, err := w.CreateFormFile("avatar", filepath.Base(name))
		if err != nil {
			return nil, err
		}
		if _, err := part.Write(avatar.Data); err != nil {
			return nil, err
		}
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+registerPath, &buf)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", w.FormDataContentType())

	return c.doAuth(ctx, httpReq)
}

func (c *HTTPClient) Logout(ctx context.Context, token string) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+logoutPath, nil)
	if err != nil {
		return err
	}
	setBearer(httpReq, token)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return mapTransportError(ctx, err)
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		return statusError(resp)
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodySize))
	return nil
}

func (c *HTTPClient) Profile(ctx context.Context, token string) (*models.Profile, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+profilePath, nil)
	if err != nil {
		return nil, err
	}
	setBearer(httpReq, token)
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, mapTransportError(ctx, err)
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		return nil, statusError(resp)
	}

	var env models.ProfileEnvelope
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodySize)).Decode(&env); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	if env.User == nil {
		return nil, fmt.Errorf("%w: profile missing", ErrMalformedResponse)
	}
	return env.User, nil
}

// doAuth sends a login/register request. Non-2xx answers become a
// *StatusError carrying the server's message.
func (c *HTTPClient) doAuth(ctx context.Context, req *http.Request) (*models.AuthResponse, error) {
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, mapTransportError(ctx, err)
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		return nil, statusError(resp)
	}

	var out models.AuthResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodySize)).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	return &out, nil
}

func setBearer(req *http.Request, token string) {
	req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)
}

func isSuccess(code int) bool {
	return code >= 200 && code < 300
}

// statusError reads the envelope of a failed response, if there is one, to
// recover the server's message.
func statusError(resp *http.Response) *StatusError {
	se := &StatusError{Code: resp.StatusCode}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil || len(raw) == 0 {
		return se
	}
	var env models.AuthResponse
	if json.Unmarshal(raw, &env) == nil {
		se.Message = env.ErrorMessage()
	}
	return se
}
