package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/lichen129/iotdeck/pkg/domain"
)

// TokenSource supplies the current bearer token for outgoing requests.
// An empty return means the request goes out unauthenticated.
type TokenSource func() string

// Client is the iotdeck platform API client.
//
// Every request consults the TokenSource and, when it yields a token, sends it
// as an Authorization: Bearer header. Responses with status 401 fire the
// unauthorized hook at most once per failing request, and the error is still
// returned to the caller so it can react locally.
type Client struct {
	baseURL        string
	tokens         TokenSource
	onUnauthorized func()
	httpClient     *http.Client
}

// New creates a new API client. tokens may be nil for a client that never
// authenticates.
func New(baseURL string, tokens TokenSource) *Client {
	return &Client{
		baseURL: baseURL,
		tokens:  tokens,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// SetTokenSource replaces the token source. Intended for wiring the client to
// a session created after the client.
func (c *Client) SetTokenSource(tokens TokenSource) {
	c.tokens = tokens
}

// SetUnauthorizedHook registers a callback invoked when an authenticated
// request comes back with HTTP 401.
func (c *Client) SetUnauthorizedHook(fn func()) {
	c.onUnauthorized = fn
}

// SetTimeout overrides the default 30s request timeout.
func (c *Client) SetTimeout(d time.Duration) {
	c.httpClient.Timeout = d
}

// LoginRequest is the payload for the login endpoint.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse is the success body of the login endpoint. ExpiresIn is the
// token lifetime in seconds.
type LoginResponse struct {
	Token     string `json:"token"`
	Username  string `json:"username"`
	UserID    string `json:"userId"`
	ExpiresIn int64  `json:"expiresIn"`
}

// RegisterRequest is the payload for the registration endpoint.
type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email,omitempty"`
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	var resp LoginResponse
	if err := c.post(ctx, "/api/login", req, &resp); err != nil {
		return nil, fmt.Errorf("client.Login: %w", err)
	}
	return &resp, nil
}

// Register creates a new account. The caller still has to log in afterwards.
func (c *Client) Register(ctx context.Context, req RegisterRequest) error {
	if err := c.post(ctx, "/api/register", req, nil); err != nil {
		return fmt.Errorf("client.Register: %w", err)
	}
	return nil
}

// Logout notifies the server that the session is over. The unauthorized hook
// is suppressed here: a 401 on the logout call itself must not re-enter the
// forced-logout path.
func (c *Client) Logout(ctx context.Context) error {
	if err := c.doRequest(ctx, http.MethodPost, "/api/logout", nil, nil, true); err != nil {
		return fmt.Errorf("client.Logout: %w", err)
	}
	return nil
}

// ListDevices fetches the device list for a user.
func (c *Client) ListDevices(ctx context.Context, userID string) ([]domain.Device, error) {
	params := url.Values{}
	params.Set("userId", userID)

	var devices []domain.Device
	if err := c.get(ctx, "/api/iot/devices?"+params.Encode(), &devices); err != nil {
		return nil, fmt.Errorf("client.ListDevices: %w", err)
	}
	return devices, nil
}

// KeyConfig is one channel entry in a device configuration payload.
type KeyConfig struct {
	MACKey     string `json:"mac_key"`
	KeyAlias   string `json:"key_alias"`
	DeviceType string `json:"device_type"`
}

// DeviceConfigRequest is the payload for the device configuration endpoint.
type DeviceConfigRequest struct {
	MACAddress string      `json:"mac_address"`
	MACAlias   string      `json:"mac_alias"`
	Keys       []KeyConfig `json:"keys"`
}

// SaveDeviceConfig submits aliases and channel types for a device.
func (c *Client) SaveDeviceConfig(ctx context.Context, req DeviceConfigRequest) error {
	if err := c.post(ctx, "/api/iot/set_keyvalue", req, nil); err != nil {
		return fmt.Errorf("client.SaveDeviceConfig: %w", err)
	}
	return nil
}

// CommandRequest is the payload for the device control endpoint.
type CommandRequest struct {
	MACAddress string `json:"mac_address"`
	MACKey     string `json:"mac_key"`
	Value      string `json:"value"`
}

// SendCommand writes a value to a device channel.
func (c *Client) SendCommand(ctx context.Context, req CommandRequest) error {
	if err := c.post(ctx, "/api/iot/control", req, nil); err != nil {
		return fmt.Errorf("client.SendCommand: %w", err)
	}
	return nil
}

// GetHistory fetches historical readings for a device, newest first.
func (c *Client) GetHistory(ctx context.Context, mac string, limit int) ([]domain.Reading, error) {
	params := url.Values{}
	params.Set("mac", mac)
	params.Set("limit", strconv.Itoa(limit))

	var readings []domain.Reading
	if err := c.get(ctx, "/api/iot/history?"+params.Encode(), &readings); err != nil {
		return nil, fmt.Errorf("client.GetHistory: %w", err)
	}
	return readings, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.doRequest(ctx, http.MethodGet, path, nil, out, false)
}

func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	return c.doRequest(ctx, http.MethodPost, path, body, out, false)
}

func (c *Client) doRequest(ctx context.Context, method, path string, body any, out any, skipAuthHook bool) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	var token string
	if c.tokens != nil {
		token = c.tokens()
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close

	if resp.StatusCode == http.StatusUnauthorized && token != "" && !skipAuthHook && c.onUnauthorized != nil {
		// Fire before returning so the session converges even when the
		// caller swallows the error. The error still propagates below.
		c.onUnauthorized()
	}

	if resp.StatusCode >= 400 {
		respBody, readErr := io.ReadAll(io.LimitReader(resp.Body, 1<<20)) // 1 MB max error body
		if readErr != nil {
			return &HTTPError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("failed to read body: %v", readErr)}
		}
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error != "" {
			return &HTTPError{StatusCode: resp.StatusCode, Message: apiErr.Error}
		}
		return &HTTPError{StatusCode: resp.StatusCode, Message: string(respBody)}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
