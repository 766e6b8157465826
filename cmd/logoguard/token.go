package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	pkgauth "github.com/matiasleandrokruk/logoguard/pkg/auth"
)

func newTokenCmd(opts *rootOptions) *cobra.Command {
	var (
		subject string
		ttl     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token for the http transport",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.cfg.JWTSecret == "" {
				return exitError(exitUsage, "jwt secret not configured (set jwt_secret or LOGOGUARD_JWT_SECRET)")
			}
			token, err := pkgauth.GenerateToken(opts.cfg.JWTSecret, subject, ttl)
			if err != nil {
				return exitError(exitUsage, "%v", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
			return err
		},
	}

	cmd.Flags().StringVar(&subject, "subject", "", "Caller name embedded in the token")
	cmd.Flags().DurationVar(&ttl, "ttl", pkgauth.DefaultTokenTTL, "Token lifetime")
	_ = cmd.MarkFlagRequired("subject")
	return cmd
}

func newHashKeyCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "hash-key KEY",
		Short:       "Print the bcrypt hash of an API key for api_key_hash",
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{annotationNoConfig: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := pkgauth.HashAPIKey(args[0])
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), hash)
			return err
		},
	}
}
