package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"aqiscraper/pkg/credentials"
	"aqiscraper/pkg/ui"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// authCmd groups the API key commands
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage the stored AirNow API key",
	Long: `Manage the AirNow API key outside the configuration file.

The key is stored using:
  - System keychain (when available)
  - Encrypted file with PBKDF2 key derivation
and can also be read from the AIRNOW_API_KEY environment variable.

A key in configuration (AQISCRAPER_API_KEY or airnow.api_key) always wins.`,
}

var setKeyCmd = &cobra.Command{
	Use:   "set-key",
	Short: "Store the AirNow API key",
	Long:  `Prompt for the AirNow API key without echoing it and store it securely.`,
	Example: `  # Interactive
  aqiscraper auth set-key

  # From a pipe
  printf '%s' "$KEY" | aqiscraper auth set-key`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		manager, err := newCredentialManager()
		if err != nil {
			return fmt.Errorf("failed to initialize credential manager: %w", err)
		}

		fmt.Fprint(cmd.OutOrStdout(), "AirNow API key: ")
		value, err := readSecret(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("failed to read API key: %w", err)
		}

		store, err := manager.Set(credentials.DefaultKeyName, value)
		if err != nil {
			return err
		}
		ui.PrintSuccess("API key stored in " + store)
		return nil
	},
}

var clearKeyCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove the stored AirNow API key",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		manager, err := newCredentialManager()
		if err != nil {
			return fmt.Errorf("failed to initialize credential manager: %w", err)
		}

		if err := manager.Delete(credentials.DefaultKeyName); err != nil {
			if errors.Is(err, credentials.ErrKeyNotFound) {
				ui.PrintWarning("No stored API key")
				return nil
			}
			return err
		}
		ui.PrintSuccess("API key removed")
		return nil
	},
}

var keyStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show where the AirNow API key comes from",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		manager, err := newCredentialManager()
		if err != nil {
			return fmt.Errorf("failed to initialize credential manager: %w", err)
		}

		key, from, err := manager.Get(credentials.DefaultKeyName)
		if err != nil {
			ui.PrintWarning("No API key stored", "run 'aqiscraper auth set-key'")
			return nil
		}
		ui.PrintInfo("API key", credentials.Mask(key.Value))
		ui.PrintInfo("Source", from)
		if !key.LastModified.IsZero() && from != "environment" {
			ui.PrintInfo("Stored", key.LastModified.Format("2006-01-02 15:04"))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(setKeyCmd)
	authCmd.AddCommand(clearKeyCmd)
	authCmd.AddCommand(keyStatusCmd)
}

// readSecret reads one line without echo when in is a terminal
func readSecret(in io.Reader) (string, error) {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		secret, err := term.ReadPassword(int(f.Fd()))
		fmt.Println()
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(secret)), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
