package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/intrafind/ihub-apps-sub004/internal/sessiontoken"
)

func newKeygenCmd() *cobra.Command {
	var privateFile, publicFile string
	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate a session token signing key",
		Long: `Generate an RSA signing key for session tokens. The private JWK is used by
the login flow to sign tokens and the public JWK set is the session.jwksFile
of the authorization endpoint.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := sessiontoken.GenerateKey()
			if err != nil {
				return err
			}
			set, err := sessiontoken.PublicSet(key)
			if err != nil {
				return err
			}
			if err := writeJSON(cmd.OutOrStdout(), privateFile, key, 0o600); err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), publicFile, set, 0o644)
		},
	}
	cmd.Flags().StringVar(&privateFile, "private", "", "file to write the private JWK to (stdout when empty)")
	cmd.Flags().StringVar(&publicFile, "public", "", "file to write the public JWK set to (stdout when empty)")
	return cmd
}

func writeJSON(stdout io.Writer, fileName string, v any, perm os.FileMode) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal json: %w", err)
	}
	b = append(b, '\n')
	if fileName == "" {
		_, err := stdout.Write(b)
		return err
	}
	if err := os.WriteFile(fileName, b, perm); err != nil {
		return fmt.Errorf("failed to write '%s': %w", fileName, err)
	}
	return nil
}
