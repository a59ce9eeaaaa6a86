package cryptox

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// LoadOrCreatePepper reads the pepper at path, generating and persisting a
// new random one the first time.
func LoadOrCreatePepper(path string) (string, error) {
	b, err := loadOrCreateFile(path, func() ([]byte, error) {
		raw := make([]byte, argonKeyLen)
		if _, err := rand.Read(raw); err != nil {
			return nil, err
		}
		return []byte(base64.RawURLEncoding.EncodeToString(raw)), nil
	})
	if err != nil {
		return "", fmt.Errorf("cryptox: pepper: %w", err)
	}
	return strings.TrimSpace(string(b)), nil
}

// loadOrCreateFile returns the contents of path, writing gen() there with
// 0600 permissions if the file does not exist yet.
func loadOrCreateFile(path string, gen func() ([]byte, error)) ([]byte, error) {
	path = filepath.Clean(path)

	b, err := os.ReadFile(path)
	if err == nil {
		return b, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, err
	}
	b, err = gen()
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(path, b, 0o600); err != nil {
		return nil, err
	}
	return b, nil
}
