package credentials

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

// DefaultKeyName is the name the AirNow API key is stored under
const DefaultKeyName = "airnow"

// APIKey is a named secret with the time it was last written
type APIKey struct {
	Name         string    `json:"name"`
	Value        string    `json:"value"`
	LastModified time.Time `json:"last_modified"`
}

// Store is one place an API key can be kept
type Store interface {
	// Name identifies the backend in status output
	Name() string
	Set(key *APIKey) error
	Get(name string) (*APIKey, error)
	Delete(name string) error
}

// Errors
var (
	ErrKeyNotFound      = errors.New("api key not found")
	ErrInvalidKey       = errors.New("invalid api key")
	ErrStoreUnavailable = errors.New("credential store unavailable")
)

// Manager tries its stores in order: the first one that accepts a write
// keeps the key, and reads return the first key found
type Manager struct {
	stores []Store
}

// NewManager builds the standard chain: system keychain when available, an
// encrypted file under dir, then the environment
func NewManager(dir string) (*Manager, error) {
	var stores []Store

	if keyringStore, err := NewKeyringStore(); err == nil {
		stores = append(stores, keyringStore)
	}

	encryptedStore, err := NewEncryptedFileStore(filepath.Join(dir, "credentials.enc"))
	if err != nil {
		return nil, fmt.Errorf("failed to create encrypted store: %w", err)
	}
	stores = append(stores, encryptedStore, NewEnvironmentStore())

	return &Manager{stores: stores}, nil
}

// NewManagerWithStores uses exactly the given stores, in order
func NewManagerWithStores(stores ...Store) *Manager {
	return &Manager{stores: stores}
}

// DefaultManager is NewManager over the per-user config directory
func DefaultManager() (*Manager, error) {
	dir, err := ConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get config directory: %w", err)
	}
	return NewManager(dir)
}

// Set stores value under name in the first store that accepts it and
// returns that store's name
func (m *Manager) Set(name, value string) (string, error) {
	value = strings.TrimSpace(value)
	if name == "" || value == "" {
		return "", ErrInvalidKey
	}

	key := &APIKey{Name: name, Value: value, LastModified: time.Now()}

	var lastErr error
	for _, store := range m.stores {
		if err := store.Set(key); err != nil {
			lastErr = err
			continue
		}
		return store.Name(), nil
	}

	if lastErr != nil {
		return "", fmt.Errorf("failed to store api key: %w", lastErr)
	}
	return "", ErrStoreUnavailable
}

// Get returns the key and the name of the store it came from
func (m *Manager) Get(name string) (*APIKey, string, error) {
	for _, store := range m.stores {
		if key, err := store.Get(name); err == nil && key != nil {
			return key, store.Name(), nil
		}
	}
	return nil, "", fmt.Errorf("%w: %s", ErrKeyNotFound, name)
}

// Delete removes name from every store that holds it
func (m *Manager) Delete(name string) error {
	var deleted bool
	var lastErr error

	for _, store := range m.stores {
		err := store.Delete(name)
		switch {
		case err == nil:
			deleted = true
		case errors.Is(err, ErrKeyNotFound), errors.Is(err, ErrStoreUnavailable):
		default:
			lastErr = err
		}
	}

	if lastErr != nil {
		return fmt.Errorf("failed to delete api key: %w", lastErr)
	}
	if !deleted {
		return fmt.Errorf("%w: %s", ErrKeyNotFound, name)
	}
	return nil
}

// ConfigDir returns the per-user aqiscraper config directory, creating it
func ConfigDir() (string, error) {
	var configDir string

	switch runtime.GOOS {
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		configDir = filepath.Join(home, "Library", "Application Support", "aqiscraper")
	case "windows":
		configDir = filepath.Join(os.Getenv("APPDATA"), "aqiscraper")
	default:
		if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
			configDir = filepath.Join(xdgConfig, "aqiscraper")
		} else {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			configDir = filepath.Join(home, ".config", "aqiscraper")
		}
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return configDir, nil
}

// Mask hides all but the first and last four characters of a secret
func Mask(s string) string {
	if len(s) <= 8 {
		return "********"
	}
	return s[:4] + "..." + s[len(s)-4:]
}
