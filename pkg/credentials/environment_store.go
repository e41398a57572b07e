package credentials

import (
	"os"
	"strings"
	"time"
)

// EnvVar is read by EnvironmentStore
const EnvVar = "AIRNOW_API_KEY"

// EnvironmentStore reads the key from AIRNOW_API_KEY. It is read-only.
type EnvironmentStore struct{}

// NewEnvironmentStore creates a new environment-based credential store
func NewEnvironmentStore() *EnvironmentStore {
	return &EnvironmentStore{}
}

func (e *EnvironmentStore) Name() string { return "environment" }

func (e *EnvironmentStore) Set(key *APIKey) error {
	return ErrStoreUnavailable
}

func (e *EnvironmentStore) Get(name string) (*APIKey, error) {
	value := strings.TrimSpace(os.Getenv(EnvVar))
	if value == "" {
		return nil, ErrKeyNotFound
	}
	return &APIKey{Name: name, Value: value, LastModified: time.Now()}, nil
}

func (e *EnvironmentStore) Delete(name string) error {
	return ErrStoreUnavailable
}
