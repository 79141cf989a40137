package tui

import (
	"testing"
	"time"
)

func TestFormatTime(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name string
		t    time.Time
		want string
	}{
		{"zero", time.Time{}, "never"},
		{"seconds ago", now.Add(-30 * time.Second), "just now"},
		{"minutes ago", now.Add(-5 * time.Minute), "5m ago"},
		{"hours ago", now.Add(-3 * time.Hour), "3h ago"},
		{"days ago", now.Add(-48 * time.Hour), "2d ago"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := formatTime(tc.t); got != tc.want {
				t.Errorf("formatTime = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestTruncStr(t *testing.T) {
	if got := truncStr("short", 10); got != "short" {
		t.Errorf("got %q", got)
	}
	if got := truncStr("a long device name", 7); got != "a long…" {
		t.Errorf("got %q", got)
	}
	if got := truncStr("温度传感器", 3); got != "温度…" {
		t.Errorf("unicode truncation got %q", got)
	}
}

func TestShortMAC(t *testing.T) {
	if got := shortMAC("AA:BB:CC:DD:EE:FF"); got != "AA:BB…EE:FF" {
		t.Errorf("got %q", got)
	}
	if got := shortMAC("short"); got != "short" {
		t.Errorf("short id should pass through, got %q", got)
	}
}
