package commands

import (
	"fmt"
	"os"

	contextutils "culturology/internal/utils"
	"culturology/internal/version"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"
)

// APIKeyCommands returns commands for managing the admin API key
func APIKeyCommands() *cobra.Command {
	apiKeyCmd := &cobra.Command{
		Use:   "apikey",
		Short: "Admin API key tools",
	}

	var cost int
	hashCmd := &cobra.Command{
		Use:   "hash",
		Short: "Hash an admin key for admin_api_key_hash",
		Long: `Prompt for an admin key and print its bcrypt hash.

Put the hash in admin_api_key_hash (or ADMIN_API_KEY_HASH) instead of storing the key itself.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			fmt.Fprint(os.Stderr, "Enter admin key: ")
			keyBytes, err := term.ReadPassword(int(os.Stdin.Fd()))
			fmt.Fprintln(os.Stderr)
			if err != nil {
				return contextutils.WrapErrorf(contextutils.ErrInternalError, "failed to read key: %v", err)
			}
			if len(keyBytes) == 0 {
				return contextutils.ErrorWithContextf("key cannot be empty")
			}

			fmt.Fprint(os.Stderr, "Confirm admin key: ")
			confirmBytes, err := term.ReadPassword(int(os.Stdin.Fd()))
			fmt.Fprintln(os.Stderr)
			if err != nil {
				return contextutils.WrapErrorf(contextutils.ErrInternalError, "failed to read key confirmation: %v", err)
			}
			if string(keyBytes) != string(confirmBytes) {
				return contextutils.ErrorWithContextf("keys do not match")
			}

			hash, err := HashAdminKey(keyBytes, cost)
			if err != nil {
				return err
			}
			fmt.Println(hash)
			return nil
		},
	}
	hashCmd.Flags().IntVar(&cost, "cost", bcrypt.DefaultCost, "bcrypt cost")

	apiKeyCmd.AddCommand(hashCmd)
	return apiKeyCmd
}

// HashAdminKey returns the bcrypt hash accepted by the admin key middleware
func HashAdminKey(key []byte, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword(key, cost)
	if err != nil {
		return "", contextutils.WrapErrorf(contextutils.ErrInvalidInput, "failed to hash key: %v", err)
	}
	return string(hash), nil
}

// VersionCommand prints build information
func VersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show build information",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Println(version.Current("culturology-admin"))
		},
	}
}
