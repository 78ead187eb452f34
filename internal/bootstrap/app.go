package bootstrap

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"docuchat/internal/ai"
	"docuchat/internal/app"
	"docuchat/internal/cache"
	"docuchat/internal/config"
	"docuchat/internal/index"
	"docuchat/internal/jobs"
	"docuchat/internal/model"
	mysqlClient "docuchat/internal/platform/mysql"
	rabbitmqClient "docuchat/internal/platform/rabbitmq"
	redisClient "docuchat/internal/platform/redis"
	"docuchat/internal/repository"
	"docuchat/internal/worker"
)

// App holds the process-wide capability objects: initialized once at startup
// and injected into components, never reconstructed per request.
type App struct {
	Config       *config.Config
	MySQL        *gorm.DB
	Redis        *redis.Client
	MQConn       *amqp.Connection
	Index        *index.Store
	LLM          *ai.Client
	HistoryCache *cache.HistoryCache
	IngestWorker *worker.IngestWorker
	SweeperJob   *jobs.SweeperJob

	StartedAt time.Time
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}

	mysqlDB, err := mysqlClient.New(ctx, cfg.MySQLDSN())
	if err != nil {
		return nil, err
	}
	if err := mysqlDB.AutoMigrate(
		&model.Session{},
		&model.Document{},
		&model.IngestJob{},
		&model.ChatTurn{},
	); err != nil {
		return nil, fmt.Errorf("auto migrate tables failed: %w", err)
	}

	redisCli, err := redisClient.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return nil, err
	}

	mqConn, err := rabbitmqClient.New(ctx, cfg.RabbitMQ.URL)
	if err != nil {
		return nil, err
	}

	indexStore, err := index.NewStore(cfg.Storage.IndexDir)
	if err != nil {
		return nil, err
	}

	llmClient := ai.NewClient(ai.Config{
		BaseURL:        cfg.LLM.BaseURL,
		APIKey:         cfg.LLM.APIKey,
		Model:          cfg.LLM.Model,
		EmbeddingModel: cfg.LLM.EmbeddingModel,
	})

	historyCache := cache.NewHistoryCache(
		redisCli,
		time.Duration(cfg.Redis.HistoryTTLSeconds)*time.Second,
		time.Duration(cfg.Redis.DirtyTTLSeconds)*time.Second,
	)

	docRepo := repository.NewDocumentRepository(mysqlDB)
	jobService := app.NewJobService(repository.NewJobRepository(mysqlDB))

	ingestService := app.NewIngestService(
		docRepo,
		jobService,
		llmClient,
		indexStore,
		cfg.RAG.ChunkSize,
		cfg.RAG.ChunkOverlap,
		cfg.RAG.EmbedBatchSize,
	)
	ingestWorker, err := worker.NewIngestWorker(mqConn, ingestService, cfg.RabbitMQ.IngestQueue, cfg.RAG.IngestWorkers)
	if err != nil {
		return nil, err
	}
	if err := ingestWorker.Start(ctx); err != nil {
		return nil, fmt.Errorf("start ingest worker failed: %w", err)
	}

	sweeper := app.NewSweeperService(
		repository.NewSessionRepository(mysqlDB),
		docRepo,
		indexStore,
		historyCache,
	)
	sweeperJob := jobs.NewSweeperJob(sweeper, time.Duration(cfg.Sweeper.IntervalMinutes)*time.Minute)
	sweeperJob.Start()

	return &App{
		Config:       cfg,
		MySQL:        mysqlDB,
		Redis:        redisCli,
		MQConn:       mqConn,
		Index:        indexStore,
		LLM:          llmClient,
		HistoryCache: historyCache,
		IngestWorker: ingestWorker,
		SweeperJob:   sweeperJob,
		StartedAt:    time.Now(),
	}, nil
}

func (a *App) Close() error {
	var closeErr error
	if a.SweeperJob != nil {
		a.SweeperJob.Stop()
	}
	if a.IngestWorker != nil {
		a.IngestWorker.Close()
	}
	if a.MQConn != nil {
		if err := a.MQConn.Close(); err != nil {
			closeErr = err
		}
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			closeErr = err
		}
	}
	if a.MySQL != nil {
		sqlDB, err := a.MySQL.DB()
		if err == nil {
			if err := sqlDB.Close(); err != nil {
				closeErr = err
			}
		}
	}
	return closeErr
}
