package main

import (
	"fmt"

	pointsservice "github.com/CSA-DanielVillamizar/lama-mototurismo/app/modules/points/application"
	pointsdomain "github.com/CSA-DanielVillamizar/lama-mototurismo/app/modules/points/domain"
	settingsservice "github.com/CSA-DanielVillamizar/lama-mototurismo/app/modules/settings/application"
	settingsdb "github.com/CSA-DanielVillamizar/lama-mototurismo/app/modules/settings/infrastructure/repositories"
	"github.com/CSA-DanielVillamizar/lama-mototurismo/pkg/observability"
	"github.com/urfave/cli/v2"
	"go.opentelemetry.io/otel"
)

// newPointsCommand previews a calculation with the built-in tunables, or
// with the stored ones when --use-db is set.
func newPointsCommand() *cli.Command {
	return &cli.Command{
		Name:  "points",
		Usage: "preview the points awarded for one attendance",
		Flags: []cli.Flag{
			&cli.Float64Flag{Name: "miles", Usage: "miles ridden to the event"},
			&cli.IntFlag{Name: "class", Value: 1, Usage: "event class, 1 to 5"},
			&cli.StringFlag{Name: "member-country"},
			&cli.StringFlag{Name: "member-continent"},
			&cli.StringFlag{Name: "event-country"},
			&cli.StringFlag{Name: "event-continent"},
			&cli.BoolFlag{Name: "use-db", Usage: "read tunables from the settings table"},
		},
		Action: func(c *cli.Context) error {
			var source settingsservice.Source = settingsservice.StaticSource{}
			if c.Bool("use-db") {
				cfg, err := loadConfig(c)
				if err != nil {
					return err
				}
				db, err := openDB(c.Context, cfg)
				if err != nil {
					return err
				}
				defer db.Close()
				store := settingsservice.NewStore(settingsdb.NewRepository(db), cliLogger(c), observability.NewNoop(), otel.Tracer("rankingctl"))
				if err := store.Refresh(c.Context); err != nil {
					return err
				}
				source = store
			}

			svc := pointsservice.NewPointsService(source, cliLogger(c), observability.NewNoop(), otel.Tracer("rankingctl"))
			calc := svc.CalculatePoints(c.Context, pointsdomain.AttendanceInput{
				Mileage:    c.Float64("miles"),
				EventClass: pointsdomain.EventClass(c.Int("class")),
				Member:     pointsdomain.Location{Country: c.String("member-country"), Continent: c.String("member-continent")},
				Event:      pointsdomain.Location{Country: c.String("event-country"), Continent: c.String("event-continent")},
			})

			fmt.Fprintf(c.App.Writer, "total=%d event=%d distance=%d visitor=%d (%s)\n",
				calc.TotalPoints, calc.PointsPerEvent, calc.PointsPerDistance, calc.VisitorBonus, calc.VisitorClassification)
			fmt.Fprintln(c.App.Writer, calc.Trace)
			return nil
		},
	}
}
