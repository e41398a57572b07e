// Package credentials stores the AirNow API key outside the config file.
//
// A Manager chains several Stores. NewManager tries, in order, the system
// keychain (github.com/zalando/go-keyring), an AES-GCM encrypted file whose
// key is derived with PBKDF2 (golang.org/x/crypto), and the read-only
// AIRNOW_API_KEY environment variable. Writes go to the first store that
// accepts them; reads return the first key found.
package credentials
