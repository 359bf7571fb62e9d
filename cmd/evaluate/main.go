package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/demandloop/backend-go/internal/analytics"
	"github.com/demandloop/backend-go/internal/config"
	"github.com/demandloop/backend-go/internal/domain"
	"github.com/demandloop/backend-go/internal/repository/postgres"
	"github.com/demandloop/backend-go/internal/storage"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/urfave/cli/v2"
)

func newDBURLFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "db-url",
		Usage:    "Database connection string",
		Required: true,
		EnvVars:  []string{"DATABASE_URL"},
	}
}

func newTenantFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "tenant",
		Usage:    "Tenant ID to process",
		Required: true,
	}
}

func cliAuth(tenantID string) domain.AuthContext {
	return domain.AuthContext{
		TenantID: tenantID,
		UserID:   "cli",
		Role:     domain.RoleAdmin,
	}
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("warning: could not load .env file: %v", err)
	}

	app := &cli.App{
		Name:  "evaluate",
		Usage: "Run batch analytics jobs against the demand store",
		Commands: []*cli.Command{
			{
				Name:  "accuracy",
				Usage: "Evaluate past forecasts against realized demand",
				Flags: []cli.Flag{
					newDBURLFlag(),
					newTenantFlag(),
					&cli.IntFlag{
						Name:  "concurrency",
						Usage: "Number of products evaluated in parallel",
						Value: analytics.DefaultEvalConcurrency,
					},
				},
				Action: runAccuracy,
			},
			{
				Name:  "snapshot",
				Usage: "Compute safety-stock recommendations and export them as CSV to object storage",
				Flags: []cli.Flag{
					newDBURLFlag(),
					newTenantFlag(),
					&cli.IntFlag{
						Name:  "lookback-days",
						Usage: "Demand window for the recommendation run",
						Value: 30,
					},
					&cli.Float64Flag{
						Name:  "service-level",
						Usage: "Cycle service level override (0 uses per-node configuration)",
						Value: 0,
					},
				},
				Action: runSnapshot,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func runAccuracy(c *cli.Context) error {
	db, err := postgres.NewDBFromURL("pgx", c.String("db-url"))
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	demandRepo := postgres.NewDemandRepository(db)
	forecastRepo := postgres.NewForecastRepository(db)
	evaluator := analytics.NewAccuracyEvaluator(demandRepo, forecastRepo, c.Int("concurrency"))

	summary, err := evaluator.Evaluate(c.Context, cliAuth(c.String("tenant")))
	if err != nil {
		return fmt.Errorf("accuracy evaluation failed: %w", err)
	}

	return json.NewEncoder(os.Stdout).Encode(summary)
}

func runSnapshot(c *cli.Context) error {
	cfg := config.Load()
	if !cfg.Snapshot.Enabled {
		return fmt.Errorf("snapshot export is disabled (set SNAPSHOT_ENABLED=true)")
	}

	db, err := postgres.NewDBFromURL("pgx", c.String("db-url"))
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	objectStore, err := storage.NewMinioClient(cfg.Snapshot)
	if err != nil {
		return fmt.Errorf("failed to initialize object storage: %w", err)
	}

	demandRepo := postgres.NewDemandRepository(db)
	hierarchyRepo := postgres.NewHierarchyRepository(db)
	suggestionRepo := postgres.NewSuggestionRepository(db)

	aggregator := analytics.NewTimeSeriesAggregator(demandRepo, cfg.Analytics.MinSaleDays)
	optimizer := analytics.NewMultiEchelonOptimizer(
		aggregator, demandRepo, hierarchyRepo, suggestionRepo,
		analytics.EOQRule{
			OrderingCost:       decimal.NewFromFloat(cfg.Analytics.EOQOrderingCost),
			HoldingCostPerYear: decimal.NewFromFloat(cfg.Analytics.EOQHoldingCost),
		},
		decimal.NewFromFloat(cfg.Analytics.UnitCost),
		cfg.Analytics.EvalConcurrency,
	)

	tenantID := c.String("tenant")
	dashboard, err := optimizer.Dashboard(c.Context, cliAuth(tenantID), c.Int("lookback-days"), c.Float64("service-level"))
	if err != nil {
		return fmt.Errorf("recommendation run failed: %w", err)
	}

	exporter := storage.NewSnapshotExporter(objectStore)
	key, err := exporter.ExportRecommendations(c.Context, tenantID, dashboard.Recommendations)
	if err != nil {
		return fmt.Errorf("snapshot export failed: %w", err)
	}

	log.Printf("exported %d recommendations to %s", len(dashboard.Recommendations), key)
	return nil
}
