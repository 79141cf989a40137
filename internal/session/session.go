package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/lichen129/iotdeck/pkg/client"
	"github.com/lichen129/iotdeck/pkg/domain"
)

// guestName is shown when no user is logged in.
const guestName = "guest"

var (
	// ErrIncompleteResponse means the server accepted the login but the
	// response was missing the token or username.
	ErrIncompleteResponse = errors.New("login response incomplete")
	// ErrLoginFailed wraps transport or API failures during login.
	ErrLoginFailed = errors.New("login failed")
	// ErrRegistrationFailed wraps transport or API failures during registration.
	ErrRegistrationFailed = errors.New("registration failed")
)

// API is the slice of the platform client the session depends on.
type API interface {
	Login(ctx context.Context, req client.LoginRequest) (*client.LoginResponse, error)
	Register(ctx context.Context, req client.RegisterRequest) error
	Logout(ctx context.Context) error
	ListDevices(ctx context.Context, userID string) ([]domain.Device, error)
	SaveDeviceConfig(ctx context.Context, req client.DeviceConfigRequest) error
}

// Navigator switches the visible screen. The session only ever needs the two
// convergence points: the login screen and the default authenticated screen.
type Navigator interface {
	ToLogin()
	ToDashboard()
}

// Notifier surfaces a user-visible message outside the normal render flow.
type Notifier interface {
	Notify(msg string)
}

// Snapshot is an immutable copy of the session state. Derived values are pure
// functions of a snapshot so callers never observe them mid-transition.
type Snapshot struct {
	Token     string
	Username  string
	UserID    string
	ExpiresAt int64 // epoch milliseconds, 0 when absent
}

// Authenticated reports whether the snapshot holds a token that has not
// expired at the given instant.
func (s Snapshot) Authenticated(now time.Time) bool {
	return s.Token != "" && s.ExpiresAt > now.UnixMilli()
}

// DisplayName returns the username, or the guest label when logged out.
func (s Snapshot) DisplayName() string {
	if s.Username != "" {
		return s.Username
	}
	return guestName
}

// Manager is the single source of truth for authentication state during the
// process lifetime, mirrored to the credential store. All transitions are
// atomic from a caller's perspective: Anonymous -> Authenticated only through
// a successful Login, and every path back (explicit logout, detected expiry,
// 401 from the server) converges on the same clearing routine.
type Manager struct {
	api    API
	store  *Store
	nav    Navigator
	notify Notifier
	logger *zap.Logger
	now    func() time.Time

	mu         sync.Mutex
	snap       Snapshot
	devices    []domain.Device
	loggingOut bool
}

// NewManager creates a session manager seeded from the credential store.
// A failed load is logged and the session starts anonymous.
func NewManager(api API, store *Store, nav Navigator, notify Notifier, logger *zap.Logger) *Manager {
	m := &Manager{
		api:    api,
		store:  store,
		nav:    nav,
		notify: notify,
		logger: logger,
		now:    time.Now,
	}
	creds, err := store.Load()
	if err != nil {
		logger.Warn("load persisted credentials", zap.Error(err))
		return m
	}
	m.snap = Snapshot{
		Token:     creds.Token,
		Username:  creds.Username,
		UserID:    creds.UserID,
		ExpiresAt: creds.ExpiresAt,
	}
	return m
}

// Snapshot returns a copy of the current session state.
func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snap
}

// Token returns the current bearer token. This is the client's TokenSource.
func (m *Manager) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snap.Token
}

// Authenticated reports whether the session currently holds a live token.
func (m *Manager) Authenticated() bool {
	return m.Snapshot().Authenticated(m.now())
}

// Devices returns the cached device list.
func (m *Manager) Devices() []domain.Device {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Device, len(m.devices))
	copy(out, m.devices)
	return out
}

// Login exchanges credentials for a session. On success the snapshot is
// replaced wholesale, then persisted, then the navigator is pointed at the
// dashboard, so the guard on the following navigation sees the new state.
// Any failure leaves the session untouched.
func (m *Manager) Login(ctx context.Context, username, password string) error {
	resp, err := m.api.Login(ctx, client.LoginRequest{Username: username, Password: password})
	if err != nil {
		m.logger.Warn("login request failed", zap.String("username", username), zap.Error(err))
		if msg := client.ServerMessage(err); msg != "" {
			return fmt.Errorf("%w: %s", ErrLoginFailed, msg)
		}
		return ErrLoginFailed
	}
	if resp.Token == "" || resp.Username == "" {
		m.logger.Warn("login response incomplete", zap.String("username", username))
		return ErrIncompleteResponse
	}

	snap := Snapshot{
		Token:     resp.Token,
		Username:  resp.Username,
		UserID:    resp.UserID,
		ExpiresAt: m.now().UnixMilli() + resp.ExpiresIn*1000,
	}
	m.mu.Lock()
	m.snap = snap
	m.mu.Unlock()

	if err := m.store.Save(domain.Credentials{
		Token:     snap.Token,
		Username:  snap.Username,
		UserID:    snap.UserID,
		ExpiresAt: snap.ExpiresAt,
	}); err != nil {
		m.logger.Error("persist credentials", zap.Error(err))
	}

	m.logger.Info("logged in", zap.String("username", snap.Username), zap.Int64("expiresAt", snap.ExpiresAt))
	m.nav.ToDashboard()
	return nil
}

// Register creates an account. It never mutates session state; the caller
// logs in separately.
func (m *Manager) Register(ctx context.Context, req client.RegisterRequest) error {
	if err := m.api.Register(ctx, req); err != nil {
		m.logger.Warn("registration failed", zap.String("username", req.Username), zap.Error(err))
		if msg := client.ServerMessage(err); msg != "" {
			return fmt.Errorf("%w: %s", ErrRegistrationFailed, msg)
		}
		return ErrRegistrationFailed
	}
	return nil
}

// Logout notifies the server best-effort, then unconditionally clears the
// session and the credential store and navigates to the login screen. Local
// state converges to Anonymous even when the server is unreachable.
func (m *Manager) Logout(ctx context.Context) {
	m.mu.Lock()
	if m.loggingOut {
		m.mu.Unlock()
		return
	}
	m.loggingOut = true
	m.mu.Unlock()

	if err := m.api.Logout(ctx); err != nil {
		m.logger.Warn("logout notify failed", zap.Error(err))
	}

	m.mu.Lock()
	m.snap = Snapshot{}
	m.devices = nil
	m.loggingOut = false
	m.mu.Unlock()

	if err := m.store.Clear(); err != nil {
		m.logger.Error("clear credentials", zap.Error(err))
	}

	m.logger.Info("logged out")
	m.nav.ToLogin()
}

// CheckTokenExpiration returns true when no expiry is set or it is still in
// the future. A past expiry triggers a full logout as a side effect and
// returns false. Authenticated actions call this before touching the API.
func (m *Manager) CheckTokenExpiration() bool {
	m.mu.Lock()
	expiresAt := m.snap.ExpiresAt
	m.mu.Unlock()

	if expiresAt != 0 && expiresAt < m.now().UnixMilli() {
		m.logger.Info("token expired", zap.Int64("expiresAt", expiresAt))
		m.Logout(context.Background())
		return false
	}
	return true
}

// FetchDevices refreshes the cached device list for the current user. A
// failed fetch is logged and leaves the previous list untouched.
func (m *Manager) FetchDevices(ctx context.Context) {
	if !m.CheckTokenExpiration() {
		return
	}
	m.mu.Lock()
	userID := m.snap.UserID
	m.mu.Unlock()

	devices, err := m.api.ListDevices(ctx, userID)
	if err != nil {
		m.logger.Warn("fetch devices failed", zap.Error(err))
		return
	}
	m.mu.Lock()
	m.devices = devices
	m.mu.Unlock()
}

// SaveConfig submits a device's alias and channel configuration. Channel
// aliases fall back to the raw key. Success notifies the user and refreshes
// the device list; a 401 forces the logout path; anything else notifies the
// user and leaves state untouched.
func (m *Manager) SaveConfig(ctx context.Context, device domain.Device, mac string) {
	if !m.CheckTokenExpiration() {
		return
	}

	req := client.DeviceConfigRequest{
		MACAddress: mac,
		MACAlias:   device.MACAlias,
		Keys:       make([]client.KeyConfig, 0, len(device.Keys)),
	}
	for _, k := range device.Keys {
		alias := k.KeyAlias
		if alias == "" {
			alias = k.MACKey
		}
		req.Keys = append(req.Keys, client.KeyConfig{
			MACKey:     k.MACKey,
			KeyAlias:   alias,
			DeviceType: k.Type,
		})
	}

	if err := m.api.SaveDeviceConfig(ctx, req); err != nil {
		m.logger.Warn("save config failed", zap.String("mac", mac), zap.Error(err))
		if client.IsStatus(err, http.StatusUnauthorized) {
			// The interceptor usually beats us here; HandleUnauthorized
			// is a no-op once the token is gone.
			m.HandleUnauthorized()
		} else {
			m.notify.Notify("Save failed, please retry")
		}
		return
	}

	m.notify.Notify("Configuration saved")
	m.FetchDevices(ctx)
}

// HandleUnauthorized is the client's 401 hook: notify once, then force the
// logout path. It is a no-op when no token is set or a logout is already in
// flight, which keeps the hook from firing twice for one failure.
func (m *Manager) HandleUnauthorized() {
	m.mu.Lock()
	active := m.snap.Token != "" && !m.loggingOut
	m.mu.Unlock()
	if !active {
		return
	}

	m.notify.Notify("Session expired, please log in again")
	m.Logout(context.Background())
}
