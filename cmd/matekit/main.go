// matekit 命令行入口：
//
//	批处理（默认）：  matekit -data profiles.csv -out matches.csv
//	单用户查询：      matekit -data profiles.csv -user u001 -topn 5
//	HTTP 服务：       matekit -data profiles.csv -serve -addr :8080
//	Postgres 数据源： matekit -pg "postgres://..." -pg-table profiles -out matches.csv
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"matekit/config"
	"matekit/core"
	"matekit/dataset"
	"matekit/engine"
	"matekit/featurestore"
	"matekit/server"
	"matekit/store"
)

func main() {
	var (
		dataPath   = flag.String("data", "", "profiles CSV path")
		pgDSN      = flag.String("pg", "", "postgres DSN (alternative to -data)")
		pgTable    = flag.String("pg-table", "profiles", "postgres table name")
		configPath = flag.String("config", "", "config file (yaml/json), defaults applied when empty")
		outPath    = flag.String("out", "matches.csv", "batch output CSV path")
		userID     = flag.String("user", "", "recommend for a single user instead of the whole dataset")
		topn       = flag.Int("topn", 0, "override top-n (0 = use config)")
		serve      = flag.Bool("serve", false, "run HTTP server instead of batch")
		addr       = flag.String("addr", ":8080", "HTTP listen address")
		verbose    = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if err := run(*dataPath, *pgDSN, *pgTable, *configPath, *outPath, *userID, *topn, *serve, *addr); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(dataPath, pgDSN, pgTable, configPath, outPath, userID string, topn int, serve bool, addr string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	data, err := loadDataset(ctx, dataPath, pgDSN, pgTable)
	if err != nil {
		return err
	}

	if cfg.FeatureStore.Enabled {
		fs, err := featurestore.NewFeastClient(cfg.FeatureStore.Addr, cfg.FeatureStore.Project)
		if err != nil {
			return err
		}
		defer fs.Close()
		refs := make([]string, 0, data.Schema.Dim())
		for _, col := range data.Schema.EmbeddingColumns {
			refs = append(refs, "user_traits:"+col)
		}
		if err := featurestore.Enrich(ctx, fs, data, refs); err != nil {
			return err
		}
	}

	var opts []engine.Option
	if cfg.Dismissed.Enabled {
		st, err := store.NewRedisStore(cfg.Dismissed.RedisAddr, 0)
		if err != nil {
			return err
		}
		defer st.Close()
		opts = append(opts, engine.WithStore(st))
	}

	eng, err := engine.New(data, cfg, opts...)
	if err != nil {
		return err
	}

	switch {
	case serve:
		return server.New(eng).ListenAndServe(ctx, addr)

	case userID != "":
		matches, err := eng.RecommendForUser(ctx, userID, topn)
		if err != nil {
			return err
		}
		for i, line := range engine.TopMatches(matches) {
			fmt.Printf("%2d. %s\n", i+1, line)
		}
		return nil

	default:
		results, err := eng.RecommendAll(ctx)
		if err != nil {
			return err
		}
		if err := engine.WriteCSVFile(outPath, results); err != nil {
			return err
		}
		slog.Info("batch output written", "path", outPath, "users", len(results))
		return nil
	}
}

func loadDataset(ctx context.Context, dataPath, pgDSN, pgTable string) (*dataset.Dataset, error) {
	switch {
	case pgDSN != "":
		db, err := dataset.OpenPostgres(pgDSN)
		if err != nil {
			return nil, err
		}
		defer db.Close()
		return dataset.LoadPostgres(ctx, db, pgTable)
	case dataPath != "":
		return dataset.LoadCSV(dataPath)
	default:
		return nil, core.NewDomainError(core.ModuleDataset, core.ErrorCodeInvalidInput,
			"either -data or -pg is required")
	}
}
