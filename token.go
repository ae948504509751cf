package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/intrafind/ihub-apps-sub004/internal/sessiontoken"
)

func newTokenCmd() *cobra.Command {
	var (
		keyFile  string
		issuer   string
		audience string
		duration time.Duration
		p        sessiontoken.Principal
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Sign a session token for local testing",
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := sessiontoken.LoadPrivateKey(keyFile)
			if err != nil {
				return err
			}
			tok, exp, err := sessiontoken.NewSigner(key, issuer, audience, duration).Sign(&p, time.Now())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			fmt.Fprintf(cmd.ErrOrStderr(), "expires at %s\n", exp.Format(time.RFC3339))
			return nil
		},
	}
	cmd.Flags().StringVar(&keyFile, "key", "", "private JWK file")
	cmd.Flags().StringVar(&issuer, "issuer", "", "iss claim")
	cmd.Flags().StringVar(&audience, "audience", "", "aud claim")
	cmd.Flags().DurationVar(&duration, "duration", 0, "token lifetime (default 8h)")
	cmd.Flags().StringVar(&p.Subject, "subject", "", "sub claim")
	cmd.Flags().StringVar(&p.Email, "email", "", "email claim")
	cmd.Flags().StringVar(&p.Name, "name", "", "name claim")
	cmd.Flags().StringSliceVar(&p.Groups, "groups", nil, "groups claim")
	_ = cmd.MarkFlagRequired("key")
	_ = cmd.MarkFlagRequired("subject")
	return cmd
}
