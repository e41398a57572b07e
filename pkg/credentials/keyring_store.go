package credentials

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

const keyringService = "aqiscraper"

// KeyringStore keeps API keys in the system keychain
type KeyringStore struct{}

// NewKeyringStore returns an error when no keychain is reachable
func NewKeyringStore() (*KeyringStore, error) {
	const probe = "availability_probe"
	if err := keyring.Set(keyringService, probe, "probe"); err != nil {
		return nil, fmt.Errorf("keyring not available: %w", err)
	}
	_ = keyring.Delete(keyringService, probe)

	return &KeyringStore{}, nil
}

func (k *KeyringStore) Name() string { return "keyring" }

func (k *KeyringStore) Set(key *APIKey) error {
	if key == nil || key.Name == "" {
		return ErrInvalidKey
	}

	data, err := json.Marshal(key)
	if err != nil {
		return fmt.Errorf("failed to marshal api key: %w", err)
	}

	if err := keyring.Set(keyringService, key.Name, string(data)); err != nil {
		return fmt.Errorf("failed to store in keyring: %w", err)
	}
	return nil
}

func (k *KeyringStore) Get(name string) (*APIKey, error) {
	if name == "" {
		return nil, ErrInvalidKey
	}

	data, err := keyring.Get(keyringService, name)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil, ErrKeyNotFound
		}
		return nil, fmt.Errorf("failed to retrieve from keyring: %w", err)
	}

	var key APIKey
	if err := json.Unmarshal([]byte(data), &key); err != nil {
		return nil, fmt.Errorf("failed to unmarshal api key: %w", err)
	}
	return &key, nil
}

func (k *KeyringStore) Delete(name string) error {
	if name == "" {
		return ErrInvalidKey
	}

	if err := keyring.Delete(keyringService, name); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return ErrKeyNotFound
		}
		return fmt.Errorf("failed to delete from keyring: %w", err)
	}
	return nil
}
