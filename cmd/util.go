package cmd

import (
	"database/sql"
	"fmt"
	"log"
	"quantlab/api"
	"quantlab/internal/app"
	"quantlab/internal/loader"
	"quantlab/internal/marketdata"
	"quantlab/internal/repository"
	"quantlab/internal/sandbox"
	"quantlab/internal/scheduler"
	"quantlab/internal/util"
	"time"

	_ "github.com/lib/pq"
)

type Dependencies struct {
	Db              *sql.DB
	ApiHandler      *api.ApiHandler
	Scheduler       *scheduler.Scheduler
	StrategyService app.StrategyService
	BacktestService app.BacktestService
}

func CloseDependencies(deps *Dependencies) {
	deps.Scheduler.Stop()
	if err := deps.Db.Close(); err != nil {
		log.Fatalf("failed to close db: %v", err)
	}
}

func InitializeDependencies() (*Dependencies, error) {
	secrets, err := util.LoadSecrets()
	if err != nil {
		return nil, fmt.Errorf("failed to load secrets: %w", err)
	}

	dbConn, err := sql.Open("postgres", secrets.Db.ToConnectionStr())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to db: %w", err)
	}

	strategyRepository := repository.NewStrategyRepository(dbConn)
	revisionRepository := repository.NewStrategyRevisionRepository(dbConn)
	resultRepository := repository.NewBacktestResultRepository(dbConn)
	priceRepository := repository.NewAdjustedPriceRepository(dbConn)

	benchmarkSymbol := secrets.BenchmarkSymbol
	if benchmarkSymbol == "" {
		benchmarkSymbol = "SPY"
	}
	dataProvider := marketdata.NewPostgresProvider(benchmarkSymbol, priceRepository)

	unitCache := loader.NewCache()

	budget := sandbox.DefaultBudget()
	if secrets.Execution.MaxWallClockSecs > 0 {
		budget.MaxWallClock = time.Duration(secrets.Execution.MaxWallClockSecs) * time.Second
	}
	if secrets.Execution.MaxOutputRecords > 0 {
		budget.MaxOutputRecords = secrets.Execution.MaxOutputRecords
	}
	if secrets.Execution.MaxEvalsPerPeriod > 0 {
		budget.MaxEvalsPerPeriod = secrets.Execution.MaxEvalsPerPeriod
	}

	runner := app.NewBacktestRunner(
		strategyRepository,
		revisionRepository,
		resultRepository,
		dataProvider,
		unitCache,
		sandbox.New(),
		budget,
	)

	schedulerConfig := scheduler.DefaultConfig()
	if secrets.Execution.Workers > 0 {
		schedulerConfig.Workers = secrets.Execution.Workers
	}
	if secrets.Execution.QueueDepth > 0 {
		schedulerConfig.QueueDepth = secrets.Execution.QueueDepth
	}
	sched := scheduler.New(runner, schedulerConfig)

	strategyService := app.NewStrategyService(strategyRepository, revisionRepository, unitCache)
	backtestService := app.NewBacktestService(strategyRepository, resultRepository, sched)

	return &Dependencies{
		Db:        dbConn,
		Scheduler: sched,
		ApiHandler: &api.ApiHandler{
			BacktestService: backtestService,
			StrategyService: strategyService,
		},
		StrategyService: strategyService,
		BacktestService: backtestService,
	}, nil
}
