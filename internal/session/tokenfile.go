package session

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/rkohli/stockpilot/internal/crypto/tokencrypt"
)

const (
	tokenFileName = "token.bin"
	keyFileName   = "client.key"
	tokenPurpose  = "access-token"
)

// TokenFile persists the single credential token, sealed at rest.
// Saves are atomic (write-temp-then-rename) so a crash can never leave a
// half-written token behind.
type TokenFile struct {
	dir string
	key []byte
}

// NewTokenFile opens (or initializes) the token store under dir.
func NewTokenFile(dir string) (*TokenFile, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, err
	}
	key, err := tokencrypt.LoadOrCreateKey(filepath.Join(dir, keyFileName))
	if err != nil {
		return nil, err
	}
	return &TokenFile{dir: dir, key: key}, nil
}

type tokenRecord struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

func (t *TokenFile) path() string { return filepath.Join(t.dir, tokenFileName) }

// Save seals and atomically replaces the stored token.
func (t *TokenFile) Save(token string, expiresAt time.Time) error {
	plain, err := json.Marshal(tokenRecord{AccessToken: token, ExpiresAt: expiresAt})
	if err != nil {
		return err
	}
	blob, err := tokencrypt.Seal(t.key, tokenPurpose, plain)
	if err != nil {
		return err
	}
	tmp := t.path() + ".tmp"
	if err := os.WriteFile(tmp, blob, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, t.path())
}

// Load returns the stored token, or "" when none is stored, the seal does
// not open, or the token has expired.
func (t *TokenFile) Load() (string, error) {
	blob, err := os.ReadFile(t.path())
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	plain, err := tokencrypt.Open(t.key, tokenPurpose, blob)
	if err != nil {
		// Unreadable token is as good as no token.
		return "", nil
	}
	var rec tokenRecord
	if err := json.Unmarshal(plain, &rec); err != nil {
		return "", nil
	}
	if rec.AccessToken == "" || (!rec.ExpiresAt.IsZero() && time.Now().After(rec.ExpiresAt)) {
		return "", nil
	}
	return rec.AccessToken, nil
}

// Token implements api.TokenSource.
func (t *TokenFile) Token() (string, error) { return t.Load() }

// Clear removes the stored token. Missing file is not an error.
func (t *TokenFile) Clear() error {
	err := os.Remove(t.path())
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
