package main

import (
	"fmt"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/spf13/cobra"

	"github.com/kbukum/asr-server/auth/jwt"
)

func newTokenCmd(flags *rootFlags) *cobra.Command {
	var (
		subject string
		ttl     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a client JWT signed with auth.jwt.secret",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(flags.configPath)
			if err != nil {
				return err
			}
			token, err := mintToken(cfg.Auth.JWT, subject, ttl, time.Now())
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
			return err
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "client", "Token subject")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "Token lifetime (defaults to auth.jwt.token_ttl)")
	return cmd
}

func mintToken(cfg *jwt.Config, subject string, ttl time.Duration, now time.Time) (string, error) {
	if cfg == nil || cfg.Secret == "" {
		return "", fmt.Errorf("auth.jwt.secret is not configured")
	}
	svc, err := jwt.NewService(cfg, jwt.NewClaims)
	if err != nil {
		return "", err
	}
	claims := &jwt.Claims{RegisteredClaims: gojwt.RegisteredClaims{Subject: subject}}
	if ttl > 0 {
		claims.ExpiresAt = gojwt.NewNumericDate(now.Add(ttl))
	}
	return svc.Generate(claims)
}
