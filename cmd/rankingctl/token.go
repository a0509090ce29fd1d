package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/CSA-DanielVillamizar/lama-mototurismo/pkg/jwt"
	"github.com/urfave/cli/v2"
)

func newTokenCommand() *cli.Command {
	return &cli.Command{
		Name:  "token",
		Usage: "issue a bearer token for the ranking HTTP API",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "subject", Value: "rankingctl", Usage: "token subject"},
			&cli.StringFlag{Name: "tenant", Required: true, Usage: "tenant id the token is scoped to"},
			&cli.StringFlag{Name: "role", Value: string(jwt.RoleViewer), Usage: "admin or viewer"},
			&cli.DurationFlag{Name: "ttl", Value: 24 * time.Hour},
		},
		Action: func(c *cli.Context) error {
			role := jwt.Role(c.String("role"))
			if role != jwt.RoleAdmin && role != jwt.RoleViewer {
				return fmt.Errorf("unknown role %q", role)
			}
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			if cfg.Auth.JWTSecret == "" {
				return errors.New("jwt secret is not configured")
			}
			token, err := jwt.NewService(cfg.Auth.JWTSecret, cfg.Auth.Issuer).
				GenerateToken(c.String("subject"), c.String("tenant"), role, c.Duration("ttl"))
			if err != nil {
				return err
			}
			fmt.Fprintln(c.App.Writer, token)
			return nil
		},
	}
}
