package main

import (
	"context"
	"encoding/json"
	"os"
	"strings"

	"github.com/finboard/warehouse-etl/internal/config"
	"github.com/finboard/warehouse-etl/internal/loader"
	"github.com/finboard/warehouse-etl/internal/model"
	"github.com/finboard/warehouse-etl/internal/pipeline"
	"github.com/finboard/warehouse-etl/internal/repository"
	"github.com/finboard/warehouse-etl/pkg/logger"
	"github.com/finboard/warehouse-etl/pkg/pg"
	"github.com/finboard/warehouse-etl/pkg/prom"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	defer logger.Sync()

	err := config.Load(argValue("--env="))
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	readConf := pg.Config{
		User:     config.Get().PostgresReadUser,
		Host:     config.Get().PostgresReadHost,
		Port:     config.Get().PostgresReadPort,
		Password: config.Get().PostgresReadPassword,
		Database: config.Get().PostgresReadDatabase,
	}
	writeConf := pg.Config{
		User:     config.Get().PostgresWriteUser,
		Host:     config.Get().PostgresWriteHost,
		Port:     config.Get().PostgresWritePort,
		Password: config.Get().PostgresWritePassword,
		Database: config.Get().PostgresWriteDatabase,
	}

	pgDebug := false
	if config.Get().AppEnv == "dev" {
		pgDebug = true
	}
	db, err := pg.CreateReadWrite(readConf, writeConf, pgDebug)
	if err != nil {
		logger.Error("failed connecting to pg", "error", err)
		os.Exit(1)
	}

	var hostname string
	hostname, err = os.Hostname()
	if err != nil {
		hostname = "unknown"
	}
	err = prom.Create(hostname, config.Get().AppEnv, config.Get().PromNamespace)
	if err != nil {
		logger.Error("failed to create prometheus metrics", "error", err)
		os.Exit(1)
	}
	go func() {
		prom.ListenAndServer(config.Get().PromListenAddr, config.Get().PromMetricsPath)
	}()

	rawTransactions, err := readTransactions(argValue("--transactions="))
	if err != nil {
		logger.Error("failed to read transaction batch", "error", err)
		os.Exit(1)
	}
	rawCustomers, err := readCustomers(argValue("--customers="))
	if err != nil {
		logger.Error("failed to read customer batch", "error", err)
		os.Exit(1)
	}

	customerRepo := repository.NewCustomerRepository(db)
	factRepo := repository.NewFactRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	p := pipeline.New(config.Get(), auditRepo, loader.New(db, customerRepo, factRepo))

	result, err := p.Run(context.Background(), rawCustomers, rawTransactions)
	if err != nil {
		os.Exit(1)
	}

	verifier := loader.NewVerifier(db,
		config.Get().AmountMin(), config.Get().AmountMax(), config.Get().Location())
	checks, err := verifier.Verify(context.Background())
	if err != nil {
		logger.Error("warehouse verification failed to execute", "error", err)
		os.Exit(1)
	}
	allPassed := true
	for name, check := range checks {
		if !check.Passed {
			allPassed = false
			logger.Warn("warehouse check failed", "check", name, "value", check.Value)
		}
	}
	if allPassed {
		logger.Info("warehouse verification passed", "run_id", result.Audit.RunID, "checks", len(checks))
	}
}

func readTransactions(path string) ([]model.RawTransaction, error) {
	var out []model.RawTransaction
	if err := readJSONFile(path, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func readCustomers(path string) ([]model.RawCustomer, error) {
	var out []model.RawCustomer
	if err := readJSONFile(path, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func readJSONFile(path string, v interface{}) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, v)
}

func argValue(prefix string) string {
	for _, v := range os.Args {
		if strings.HasPrefix(v, prefix) {
			return strings.TrimPrefix(v, prefix)
		}
	}
	return ""
}
