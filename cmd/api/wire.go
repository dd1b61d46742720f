package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/bryanwahyu/sentichain/internal/application"
	appanalysis "github.com/bryanwahyu/sentichain/internal/application/analysis"
	appchat "github.com/bryanwahyu/sentichain/internal/application/chat"
	apphistory "github.com/bryanwahyu/sentichain/internal/application/history"
	appmarket "github.com/bryanwahyu/sentichain/internal/application/marketplace"
	"github.com/bryanwahyu/sentichain/internal/config"
	"github.com/bryanwahyu/sentichain/internal/domain/ai"
	"github.com/bryanwahyu/sentichain/internal/domain/chain"
	"github.com/bryanwahyu/sentichain/internal/domain/history"
	"github.com/bryanwahyu/sentichain/internal/domain/marketplace"
	"github.com/bryanwahyu/sentichain/internal/domain/sentiment"
	"github.com/bryanwahyu/sentichain/internal/domain/storage"
	openaiClient "github.com/bryanwahyu/sentichain/internal/infra/ai/openai"
	"github.com/bryanwahyu/sentichain/internal/infra/chain/simulated"
	mysqlp "github.com/bryanwahyu/sentichain/internal/infra/db/mysql"
	postgresp "github.com/bryanwahyu/sentichain/internal/infra/db/postgres"
	sqlitep "github.com/bryanwahyu/sentichain/internal/infra/db/sqlite"
	"github.com/bryanwahyu/sentichain/internal/infra/httpserver"
	"github.com/bryanwahyu/sentichain/internal/infra/remote"
	"github.com/bryanwahyu/sentichain/internal/infra/store/snapshot"
	minioStore "github.com/bryanwahyu/sentichain/internal/infra/storage"
	"github.com/bryanwahyu/sentichain/internal/infra/web"
	"github.com/bryanwahyu/sentichain/internal/middleware"
)

type app struct {
	deps    httpserver.Deps
	metrics *middleware.Metrics
	closers []io.Closer
}

func (a *app) Close() {
	for _, c := range a.closers {
		_ = c.Close()
	}
}

func newLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Log.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(cfg.Log.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

type repositories struct {
	history  history.Repository
	listings marketplace.Repository
	health   middleware.HealthChecker
	closer   io.Closer
}

func openStorage(ctx context.Context, cfg *config.Config) (repositories, error) {
	var db *sql.DB
	var err error
	switch cfg.Storage.Driver {
	case config.DriverFile:
		st, err := snapshot.Open(cfg.Storage.Path)
		if err != nil {
			return repositories{}, fmt.Errorf("snapshot store: %w", err)
		}
		return repositories{
			history:  st.History(),
			listings: st.Listings(),
			health:   middleware.CheckFunc(st.Ping),
		}, nil
	case config.DriverSQLite:
		if db, err = sqlitep.Open(ctx, cfg.Storage.Path); err != nil {
			return repositories{}, fmt.Errorf("sqlite open: %w", err)
		}
		return sqlRepos(db, sqlitep.NewHistoryRepository(db), sqlitep.NewListingRepository(db)), nil
	case config.DriverMySQL:
		if db, err = mysqlp.Connect(ctx, cfg.MySQLDSN()); err != nil {
			return repositories{}, fmt.Errorf("mysql connect: %w", err)
		}
		return sqlRepos(db, mysqlp.NewHistoryRepository(db), mysqlp.NewListingRepository(db)), nil
	case config.DriverPostgres:
		if db, err = postgresp.Connect(ctx, cfg.PostgresDSN()); err != nil {
			return repositories{}, fmt.Errorf("postgres connect: %w", err)
		}
		return sqlRepos(db, postgresp.NewHistoryRepository(db), postgresp.NewListingRepository(db)), nil
	}
	return repositories{}, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
}

func sqlRepos(db *sql.DB, h history.Repository, l marketplace.Repository) repositories {
	return repositories{
		history:  h,
		listings: l,
		health:   &middleware.DatabaseHealthChecker{DB: db},
		closer:   db,
	}
}

func build(ctx context.Context, cfg *config.Config, log *slog.Logger) (*app, error) {
	a := &app{metrics: middleware.NewMetrics()}
	health := map[string]middleware.HealthChecker{}

	repos, err := openStorage(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if repos.closer != nil {
		a.closers = append(a.closers, repos.closer)
	}
	health["storage"] = repos.health

	clock := application.SystemClock{}
	seed := cfg.Analysis.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rnd := sentiment.NewSeededRand(seed)

	hist := apphistory.NewStore(repos.history, cfg.Storage.HistoryLimit, cfg.Storage.PersistLimit, log)
	if err := hist.Load(ctx); err != nil {
		log.Warn("history load failed, starting empty", "err", err)
	}

	var chainClient chain.Client
	if cfg.Chain.Mode == config.ChainSimulated {
		chainSeed := cfg.Chain.Seed
		if chainSeed == "" {
			chainSeed = "sentichain"
		}
		chainClient = simulated.New(clock, chainSeed)
	}

	var chatClient ai.Client
	var oa *openaiClient.Client
	if cfg.OpenAI.APIKey != "" {
		oa = openaiClient.NewClient(cfg.OpenAI.APIKey, cfg.OpenAI.Model, cfg.OpenAI.BaseURL)
		chatClient = oa
	}

	var remoteAnalyzer sentiment.RemoteAnalyzer
	switch cfg.Analysis.RemoteProvider {
	case config.ProviderHTTP:
		remoteAnalyzer = remote.NewClient(cfg.Analysis.RemoteEndpoint, cfg.Analysis.RemoteTimeout)
	case config.ProviderOpenAI:
		remoteAnalyzer = sentiment.ClassifierAnalyzer{Classifier: oa}
	}

	var archive storage.ArtifactStore
	if cfg.Minio.Enabled {
		st, err := minioStore.New(ctx, minioStore.Options{
			Endpoint:   cfg.Minio.Endpoint,
			Region:     cfg.Minio.Region,
			Bucket:     cfg.Minio.BucketName,
			AccessKey:  cfg.Minio.AccessKey,
			SecretKey:  cfg.Minio.SecretKey,
			UseSSL:     cfg.Minio.UseSSL,
			Prefix:     cfg.Minio.Prefix,
			PresignTTL: cfg.Minio.PresignTTL,
		})
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("minio init: %w", err)
		}
		archive = st
		health["archive"] = middleware.CheckFunc(st.Ping)
	}

	analysis := &appanalysis.Service{
		Remote:    remoteAnalyzer,
		Fetcher:   web.NewFetcher(cfg.Analysis.FetchTimeout),
		Simulator: sentiment.NewSimulator(rnd),
		History:   hist,
		Chain:     chainClient,
		Clock:     clock,
		Sleeper:   application.SystemSleeper{},
		Rand:      rnd,
		Delays: appanalysis.Delays{
			Basic:     application.Range(cfg.Analysis.BasicDelay),
			Consensus: application.Range(cfg.Analysis.ConsensusDelay),
		},
		Log:              log,
		BatchConcurrency: cfg.Analysis.BatchConcurrency,
	}

	market := appmarket.NewService(repos.listings,
		appmarket.WithChain(chainClient),
		appmarket.WithClock(clock),
		appmarket.WithRand(rnd),
		appmarket.WithLogger(log),
		appmarket.WithPersistLimit(cfg.Storage.MarketLimit),
	)
	if err := market.Load(ctx); err != nil {
		log.Warn("marketplace load failed, using demo listings", "err", err)
	}

	current := func() (string, *sentiment.Result, bool) {
		cur, ok := analysis.Current()
		if !ok {
			return "", nil, false
		}
		r := cur.Results
		return cur.Text, &r, true
	}
	var chat *appchat.Service
	if chatClient != nil {
		chat = appchat.NewService(chatClient, archive, current, log)
	}

	a.deps = httpserver.Deps{
		Analysis:    analysis,
		History:     hist,
		Marketplace: market,
		Chat:        chat,
		Chain:       chainClient,
		Metrics:     a.metrics,
		Health:      health,
		Log:         log,
	}
	return a, nil
}
