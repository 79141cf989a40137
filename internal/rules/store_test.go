package rules

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/lichen129/iotdeck/pkg/domain"
)

func TestStoreRoundTrip(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "state", "rules.json"))

	in := []domain.Rule{
		{
			ID:         uuid.New(),
			MACAddress: "AA:BB:CC:DD:EE:01",
			MACKey:     "temp",
			Op:         ">",
			Threshold:  "30",
			Action:     "fan=on",
			Enabled:    true,
			CreatedAt:  time.Now().UTC().Truncate(time.Second),
		},
	}
	if err := s.Save(in); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	out, err := s.Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("got %d rules, want 1", len(out))
	}
	if out[0].ID != in[0].ID || out[0].Threshold != "30" || !out[0].Enabled {
		t.Errorf("Load() = %+v, want %+v", out[0], in[0])
	}
}

func TestStoreLoadMissingFile(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "rules.json"))
	out, err := s.Load()
	if err != nil {
		t.Fatalf("Load() error for missing file: %v", err)
	}
	if len(out) != 0 {
		t.Errorf("got %d rules, want 0", len(out))
	}
}
