package secrets

import (
	"crypto/rand"
	"fmt"
	"os"
	"path/filepath"
)

const defaultKeySize = 32

// LoadOrCreateKey loads a 32-byte encryption key from the specified path,
// or creates a new one if it does not exist.
func LoadOrCreateKey(path string) ([]byte, error) {
	// Clean the path to remove ../ and other traversal shortcuts
	cleanPath := filepath.Clean(path)

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("unexpected error reading key file: %w", err)
		}

		key := make([]byte, defaultKeySize)
		_, err := rand.Read(key)
		if err != nil {
			return nil, fmt.Errorf("failed to generate random key: %w", err)
		}

		err = os.WriteFile(cleanPath, key, 0600)
		if err != nil {
			return nil, fmt.Errorf("failed to write new key file: %w", err)
		}

		return key, nil
	}

	if len(data) != defaultKeySize {
		return nil, fmt.Errorf("invalid key size: expected %d bytes, got %d", defaultKeySize, len(data))
	}

	return data, nil
}
