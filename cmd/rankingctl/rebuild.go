package main

import (
	"errors"
	"fmt"
	"time"

	attendancedb "github.com/CSA-DanielVillamizar/lama-mototurismo/app/modules/attendance/infrastructure/repositories"
	rankingservice "github.com/CSA-DanielVillamizar/lama-mototurismo/app/modules/ranking/application"
	rankingdomain "github.com/CSA-DanielVillamizar/lama-mototurismo/app/modules/ranking/domain"
	rankingdb "github.com/CSA-DanielVillamizar/lama-mototurismo/app/modules/ranking/infrastructure/repositories"
	"github.com/CSA-DanielVillamizar/lama-mototurismo/pkg/observability"
	"github.com/google/uuid"
	"github.com/urfave/cli/v2"
	"go.opentelemetry.io/otel"
)

func newRebuildCommand() *cli.Command {
	return &cli.Command{
		Name:  "rebuild",
		Usage: "recompute leaderboards from the attendance ledger, synchronously",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "tenant", Usage: "tenant id"},
			&cli.BoolFlag{Name: "all-tenants", Usage: "rebuild every tenant with confirmed attendance in the year"},
			&cli.IntFlag{Name: "year", Value: time.Now().UTC().Year(), Usage: "ranking year"},
			&cli.StringFlag{Name: "scope-type", Usage: "GLOBAL, CONTINENT, COUNTRY or CHAPTER; empty rebuilds every scope"},
			&cli.StringFlag{Name: "scope-id", Usage: "scope id; empty rebuilds every id of scope-type"},
		},
		Action: func(c *cli.Context) error {
			if c.Bool("all-tenants") == (c.String("tenant") != "") {
				return errors.New("exactly one of --tenant or --all-tenants is required")
			}
			if c.String("scope-id") != "" && c.String("scope-type") == "" {
				return errors.New("--scope-id requires --scope-type")
			}
			var scopeType rankingdomain.ScopeType
			if raw := c.String("scope-type"); raw != "" {
				t, err := rankingdomain.ParseScopeType(raw)
				if err != nil {
					return err
				}
				scopeType = t
			}

			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			db, err := openDB(c.Context, cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			svc := rankingservice.NewRankingService(
				rankingdb.NewRepository(db),
				attendancedb.NewRepository(db),
				cliLogger(c),
				observability.NewNoop(),
				otel.Tracer("rankingctl"),
				db,
			)
			year := c.Int("year")

			var tenants []uuid.UUID
			if c.Bool("all-tenants") {
				tenants, err = svc.ListTenantsWithConfirmed(c.Context, year)
				if err != nil {
					return err
				}
			} else {
				id, err := uuid.Parse(c.String("tenant"))
				if err != nil {
					return fmt.Errorf("invalid tenant id: %w", err)
				}
				tenants = []uuid.UUID{id}
			}

			failed := 0
			for _, tenantID := range tenants {
				var res rankingservice.RankingRebuildResult
				if scopeType == "" {
					res = svc.RebuildAll(c.Context, tenantID, year)
				} else {
					res = svc.Rebuild(c.Context, tenantID, year, scopeType, c.String("scope-id"))
				}
				status := "ok"
				if !res.Success {
					status = "FAILED"
					failed++
				}
				fmt.Fprintf(c.App.Writer, "%s %s year=%d rows=%d elapsed=%dms: %s\n",
					status, tenantID, year, res.UpdatedCount, res.ElapsedMs, res.Message)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d rebuilds failed", failed, len(tenants))
			}
			return nil
		},
	}
}
