package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/lichen129/iotdeck/pkg/domain"
)

// Credential record keys, written as a flat string map so each field stays
// independently settable, like the browser storage this mirrors.
const (
	keyToken     = "token"
	keyUsername  = "username"
	keyUserID    = "userId"
	keyExpiresAt = "expiresAt"
)

// Store persists the durable session fields to a single JSON file. The file
// survives restarts; clearing it is the local equivalent of logging out.
type Store struct {
	path string
}

// NewStore creates a credential store backed by the file at path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load reads the persisted credential record. A missing file yields a zero
// record and no error; a malformed expiry is treated as absent.
func (s *Store) Load() (domain.Credentials, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return domain.Credentials{}, nil
	}
	if err != nil {
		return domain.Credentials{}, fmt.Errorf("read credentials: %w", err)
	}

	var kv map[string]string
	if err := json.Unmarshal(data, &kv); err != nil {
		return domain.Credentials{}, fmt.Errorf("parse credentials: %w", err)
	}

	creds := domain.Credentials{
		Token:    kv[keyToken],
		Username: kv[keyUsername],
		UserID:   kv[keyUserID],
	}
	if raw := kv[keyExpiresAt]; raw != "" {
		if ms, err := strconv.ParseInt(raw, 10, 64); err == nil {
			creds.ExpiresAt = ms
		}
	}
	return creds, nil
}

// Save writes the credential record, creating the state directory on first
// use. Permissions match a token file: directory 0700, file 0600.
func (s *Store) Save(creds domain.Credentials) error {
	kv := map[string]string{
		keyToken:     creds.Token,
		keyUsername:  creds.Username,
		keyUserID:    creds.UserID,
		keyExpiresAt: strconv.FormatInt(creds.ExpiresAt, 10),
	}
	data, err := json.MarshalIndent(kv, "", "  ")
	if err != nil {
		return fmt.Errorf("encode credentials: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("write credentials: %w", err)
	}
	return nil
}

// Clear removes the credential file. Already-absent is not an error.
func (s *Store) Clear() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove credentials: %w", err)
	}
	return nil
}
