package rankingintegrationtests

import (
	"testing"

	attendancedb "github.com/CSA-DanielVillamizar/lama-mototurismo/app/modules/attendance/infrastructure/repositories"
	rankingservice "github.com/CSA-DanielVillamizar/lama-mototurismo/app/modules/ranking/application"
	rankingdb "github.com/CSA-DanielVillamizar/lama-mototurismo/app/modules/ranking/infrastructure/repositories"
	"github.com/CSA-DanielVillamizar/lama-mototurismo/integration_tests/testutils"
	"github.com/CSA-DanielVillamizar/lama-mototurismo/pkg/observability"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/trace/noop"
)

// TestDeps bundles the ranking stack wired to a real Postgres.
type TestDeps struct {
	Env       *testutils.TestEnvironment
	BunDB     *bun.DB
	Snapshots rankingdb.Repository
	Ledger    attendancedb.Repository
	Service   *rankingservice.RankingService
}

// SetupTestRankingService starts Postgres and builds the ranking service on it.
func SetupTestRankingService(t *testing.T) TestDeps {
	t.Helper()
	env := testutils.NewTestEnvironment(t)

	snapshots := rankingdb.NewRepository(env.DB)
	ledger := attendancedb.NewRepository(env.DB)
	svc := rankingservice.NewRankingService(
		snapshots,
		ledger,
		env.Logger,
		observability.NewNoop(),
		noop.NewTracerProvider().Tracer("test"),
		env.DB,
	)

	return TestDeps{
		Env:       env,
		BunDB:     env.DB,
		Snapshots: snapshots,
		Ledger:    ledger,
		Service:   svc,
	}
}
