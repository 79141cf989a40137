package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/lichen129/iotdeck/pkg/domain"
)

func TestLogin(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/login" || r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		var req LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if req.Username != "chen" || req.Password != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"error": "bad credentials"}) //nolint:errcheck
			return
		}
		json.NewEncoder(w).Encode(LoginResponse{ //nolint:errcheck
			Token:     "tok-123",
			Username:  "chen",
			UserID:    "u-7",
			ExpiresIn: 3600,
		})
	}))
	defer srv.Close()

	c := New(srv.URL, nil)
	resp, err := c.Login(context.Background(), LoginRequest{Username: "chen", Password: "secret"})
	if err != nil {
		t.Fatalf("Login() error: %v", err)
	}
	if resp.Token != "tok-123" {
		t.Errorf("Token = %q, want %q", resp.Token, "tok-123")
	}
	if resp.ExpiresIn != 3600 {
		t.Errorf("ExpiresIn = %d, want 3600", resp.ExpiresIn)
	}
}

func TestLogin_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"error": "bad credentials"}) //nolint:errcheck
	}))
	defer srv.Close()

	c := New(srv.URL, nil)
	_, err := c.Login(context.Background(), LoginRequest{Username: "x", Password: "y"})
	if err == nil {
		t.Fatal("expected error for rejected login")
	}
	if !IsStatus(err, 401) {
		t.Errorf("IsStatus(err, 401) = false, want true; err = %v", err)
	}
	if got := ServerMessage(err); got != "bad credentials" {
		t.Errorf("ServerMessage(err) = %q, want %q", got, "bad credentials")
	}
}

func TestBearerTokenAttached(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode([]domain.Device{}) //nolint:errcheck
	}))
	defer srv.Close()

	c := New(srv.URL, func() string { return "tok-abc" })
	if _, err := c.ListDevices(context.Background(), "u-1"); err != nil {
		t.Fatalf("ListDevices() error: %v", err)
	}
	if gotAuth != "Bearer tok-abc" {
		t.Errorf("Authorization = %q, want %q", gotAuth, "Bearer tok-abc")
	}
}

func TestNoTokenNoHeader(t *testing.T) {
	var gotAuth string
	var hasHeader bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, hasHeader = r.Header["Authorization"]
		json.NewEncoder(w).Encode([]domain.Device{}) //nolint:errcheck
	}))
	defer srv.Close()

	c := New(srv.URL, func() string { return "" })
	if _, err := c.ListDevices(context.Background(), "u-1"); err != nil {
		t.Fatalf("ListDevices() error: %v", err)
	}
	if hasHeader {
		t.Errorf("Authorization header present (%q), want absent", gotAuth)
	}
}

func TestUnauthorizedHookFiresAndErrorPropagates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"error": "token expired"}) //nolint:errcheck
	}))
	defer srv.Close()

	fired := 0
	c := New(srv.URL, func() string { return "stale-token" })
	c.SetUnauthorizedHook(func() { fired++ })

	_, err := c.ListDevices(context.Background(), "u-1")
	if err == nil {
		t.Fatal("expected error from 401 response")
	}
	if !IsStatus(err, 401) {
		t.Errorf("error should still be the 401, got %v", err)
	}
	if fired != 1 {
		t.Errorf("unauthorized hook fired %d times, want 1", fired)
	}
}

func TestUnauthorizedHookSkippedWithoutToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	fired := 0
	c := New(srv.URL, func() string { return "" })
	c.SetUnauthorizedHook(func() { fired++ })

	if _, err := c.ListDevices(context.Background(), "u-1"); err == nil {
		t.Fatal("expected error from 401 response")
	}
	if fired != 0 {
		t.Errorf("unauthorized hook fired %d times for unauthenticated request, want 0", fired)
	}
}

func TestLogoutSkipsUnauthorizedHook(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	fired := 0
	c := New(srv.URL, func() string { return "stale-token" })
	c.SetUnauthorizedHook(func() { fired++ })

	if err := c.Logout(context.Background()); err == nil {
		t.Fatal("expected error from 401 logout response")
	}
	if fired != 0 {
		t.Errorf("unauthorized hook fired %d times on logout, want 0", fired)
	}
}

func TestListDevices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/iot/devices" {
			http.NotFound(w, r)
			return
		}
		if got := r.URL.Query().Get("userId"); got != "u-7" {
			t.Errorf("userId param = %q, want %q", got, "u-7")
		}
		json.NewEncoder(w).Encode([]domain.Device{ //nolint:errcheck
			{MACAddress: "AA:BB:CC:DD:EE:01", MACAlias: "greenhouse", Keys: []domain.DeviceKey{
				{MACKey: "temp", KeyAlias: "Temperature", Type: "sensor", Value: "21.5"},
			}},
			{MACAddress: "AA:BB:CC:DD:EE:02"},
		})
	}))
	defer srv.Close()

	c := New(srv.URL, func() string { return "tok" })
	devices, err := c.ListDevices(context.Background(), "u-7")
	if err != nil {
		t.Fatalf("ListDevices() error: %v", err)
	}
	if len(devices) != 2 {
		t.Fatalf("got %d devices, want 2", len(devices))
	}
	if devices[0].DisplayName() != "greenhouse" {
		t.Errorf("devices[0].DisplayName() = %q, want %q", devices[0].DisplayName(), "greenhouse")
	}
	if devices[1].DisplayName() != "AA:BB:CC:DD:EE:02" {
		t.Errorf("devices[1].DisplayName() = %q, want the MAC fallback", devices[1].DisplayName())
	}
}

func TestSaveDeviceConfig(t *testing.T) {
	var got DeviceConfigRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/iot/set_keyvalue" || r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := New(srv.URL, func() string { return "tok" })
	err := c.SaveDeviceConfig(context.Background(), DeviceConfigRequest{
		MACAddress: "AA:BB:CC:DD:EE:01",
		MACAlias:   "greenhouse",
		Keys: []KeyConfig{
			{MACKey: "temp", KeyAlias: "Temperature", DeviceType: "sensor"},
		},
	})
	if err != nil {
		t.Fatalf("SaveDeviceConfig() error: %v", err)
	}
	if got.MACAddress != "AA:BB:CC:DD:EE:01" {
		t.Errorf("mac_address = %q, want %q", got.MACAddress, "AA:BB:CC:DD:EE:01")
	}
	if len(got.Keys) != 1 || got.Keys[0].KeyAlias != "Temperature" {
		t.Errorf("keys = %+v, want one entry aliased Temperature", got.Keys)
	}
}

func TestGetHistory(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/iot/history" {
			http.NotFound(w, r)
			return
		}
		if got := r.URL.Query().Get("mac"); got != "AA:BB:CC:DD:EE:01" {
			t.Errorf("mac param = %q, want the device MAC", got)
		}
		json.NewEncoder(w).Encode([]domain.Reading{ //nolint:errcheck
			{MACAddress: "AA:BB:CC:DD:EE:01", MACKey: "temp", Value: "21.5"},
		})
	}))
	defer srv.Close()

	c := New(srv.URL, func() string { return "tok" })
	readings, err := c.GetHistory(context.Background(), "AA:BB:CC:DD:EE:01", 50)
	if err != nil {
		t.Fatalf("GetHistory() error: %v", err)
	}
	if len(readings) != 1 || readings[0].Value != "21.5" {
		t.Errorf("readings = %+v, want one reading 21.5", readings)
	}
}

func TestHTTPErrorPlainBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("boom")) //nolint:errcheck
	}))
	defer srv.Close()

	c := New(srv.URL, nil)
	_, err := c.ListDevices(context.Background(), "u-1")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "HTTP 500") {
		t.Errorf("error = %q, want it to contain 'HTTP 500'", err.Error())
	}
}
