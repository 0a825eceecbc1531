package service

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/ervinstupac-byte/anohubsapp-sub009/hydro-common/database"
	mqttcommon "github.com/ervinstupac-byte/anohubsapp-sub009/hydro-common/mqtt"
	rediscommon "github.com/ervinstupac-byte/anohubsapp-sub009/hydro-common/redis"
	"github.com/ervinstupac-byte/anohubsapp-sub009/hydro-kernel/internal/commissioning"
	"github.com/ervinstupac-byte/anohubsapp-sub009/hydro-kernel/internal/config"
	"github.com/ervinstupac-byte/anohubsapp-sub009/hydro-kernel/internal/consumer"
	"github.com/ervinstupac-byte/anohubsapp-sub009/hydro-kernel/internal/feasibility"
	"github.com/ervinstupac-byte/anohubsapp-sub009/hydro-kernel/internal/geometry"
	"github.com/ervinstupac-byte/anohubsapp-sub009/hydro-kernel/internal/jetbalance"
	"github.com/ervinstupac-byte/anohubsapp-sub009/hydro-kernel/internal/repository"
	"github.com/ervinstupac-byte/anohubsapp-sub009/hydro-kernel/internal/safety"
	"github.com/ervinstupac-byte/anohubsapp-sub009/hydro-kernel/internal/spectrum"
	"github.com/ervinstupac-byte/anohubsapp-sub009/hydro-kernel/internal/telemetry"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// KernelService 水电内核服务（整合各层）
type KernelService struct {
	config      *config.Config
	db          *sql.DB
	redisClient *redis.Client
	broker      consumer.Broker
	logger      *zap.Logger

	// 各层组件
	Assets        *AssetService
	Commissioning *commissioning.Analyzer
	Feasibility   *feasibility.Engine
	Guard         *safety.Guard
	JetBalance    *jetbalance.Analyzer
	Geometry      *geometry.Analyzer

	telemetryConsumer *consumer.TelemetryConsumer
	snapshotConsumer  *consumer.SnapshotConsumer
	healthConsumer    *consumer.HealthSyncConsumer

	closeBroker func()
}

// NewKernelService 创建内核服务
func NewKernelService(cfg *config.Config, logger *zap.Logger) (*KernelService, error) {
	// 1. 连接数据库
	db, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		return nil, err
	}

	// 2. 连接 Redis
	redisClient := rediscommon.NewRedisClient(&cfg.Redis)
	if err := rediscommon.Ping(context.Background(), redisClient); err != nil {
		database.Close(db)
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	// 3. 连接 MQTT
	mqttClient, err := mqttcommon.NewClient(&cfg.MQTT, logger)
	if err != nil {
		database.Close(db)
		rediscommon.Close(redisClient)
		return nil, fmt.Errorf("failed to connect mqtt: %w", err)
	}

	s, err := newKernelService(cfg, logger, db, redisClient, mqttClient)
	if err != nil {
		mqttClient.Disconnect()
		database.Close(db)
		rediscommon.Close(redisClient)
		return nil, err
	}
	s.closeBroker = mqttClient.Disconnect
	return s, nil
}

// newKernelService 用已建立的连接组装各层
func newKernelService(
	cfg *config.Config,
	logger *zap.Logger,
	db *sql.DB,
	redisClient *redis.Client,
	broker consumer.Broker,
) (*KernelService, error) {
	// Repository 层
	assetRepo := repository.NewAssetRepository(db, logger)
	sessions, err := newSessionRepository(cfg, db, redisClient, logger)
	if err != nil {
		return nil, err
	}

	// 技术状态来源：配置了外部资产存储时走 HTTP，否则读数据库
	var source consumer.StateSource = assetRepo
	if cfg.Kernel.AssetStore.BaseURL != "" {
		source = telemetry.NewAssetStoreClient(&cfg.Kernel.AssetStore, logger)
		logger.Info("Using external asset store",
			zap.String("base_url", cfg.Kernel.AssetStore.BaseURL),
		)
	}

	// Consumer 层
	cacheManager := consumer.NewCacheManager(cfg, redisClient, logger)
	stateManager := consumer.NewStateManager(cfg, redisClient, logger)
	healthConsumer := consumer.NewHealthSyncConsumer(cfg, cacheManager, stateManager, assetRepo, source, logger)
	telemetryConsumer := consumer.NewTelemetryConsumer(cfg, broker, redisClient, logger)
	snapshotConsumer := consumer.NewSnapshotConsumer(cfg, redisClient, cacheManager, logger)

	// 分析层
	dft := spectrum.NewDFT()
	guard := safety.NewGuard(safety.Policy{
		SafetyMultiplier:  cfg.Kernel.Safety.Multiplier,
		ReferenceVelocity: cfg.Kernel.Safety.ReferenceVelocity,
	}, logger)
	engine := feasibility.NewEngine(logger)

	return &KernelService{
		config:            cfg,
		db:                db,
		redisClient:       redisClient,
		broker:            broker,
		logger:            logger,
		Assets:            NewAssetService(cacheManager, healthConsumer, guard, engine, logger),
		Commissioning:     commissioning.NewAnalyzer(sessions, dft, logger),
		Feasibility:       engine,
		Guard:             guard,
		JetBalance:        jetbalance.NewAnalyzer(dft, logger),
		Geometry:          geometry.NewAnalyzer(logger),
		telemetryConsumer: telemetryConsumer,
		snapshotConsumer:  snapshotConsumer,
		healthConsumer:    healthConsumer,
	}, nil
}

// newSessionRepository 按配置选择调试会话存储
func newSessionRepository(cfg *config.Config, db *sql.DB, redisClient *redis.Client, logger *zap.Logger) (commissioning.Repository, error) {
	switch cfg.Kernel.SessionStore.Type {
	case "", config.SessionStoreMemory:
		return commissioning.NewMemoryRepository(), nil
	case config.SessionStoreRedis:
		return repository.NewRedisSessionRepository(redisClient, cfg.Kernel.SessionStore.TTL, logger), nil
	case config.SessionStorePostgres:
		return repository.NewPostgresSessionRepository(db, logger), nil
	default:
		return nil, fmt.Errorf("unknown session store: %s", cfg.Kernel.SessionStore.Type)
	}
}

// Start 启动服务，阻塞直到上下文取消或某个消费者出错
func (s *KernelService) Start(ctx context.Context) error {
	s.logger.Info("Starting hydro kernel service",
		zap.String("session_store", s.config.Kernel.SessionStore.Type),
	)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	runners := map[string]func(context.Context) error{
		"telemetry": s.telemetryConsumer.Start,
		"snapshot":  s.snapshotConsumer.Start,
		"health":    s.healthConsumer.Start,
	}

	errChan := make(chan error, len(runners))
	var wg sync.WaitGroup
	for name, run := range runners {
		wg.Add(1)
		go func(name string, run func(context.Context) error) {
			defer wg.Done()
			if err := run(ctx); err != nil {
				errChan <- fmt.Errorf("failed to start %s consumer: %w", name, err)
				// 一个消费者失败时停掉其余消费者
				cancel()
			}
		}(name, run)
	}

	wg.Wait()
	close(errChan)
	return <-errChan
}

// Stop 停止服务
func (s *KernelService) Stop() error {
	s.logger.Info("Stopping hydro kernel service")

	if err := s.telemetryConsumer.Stop(context.Background()); err != nil {
		s.logger.Error("Failed to stop telemetry consumer",
			zap.Error(err),
		)
	}
	if s.closeBroker != nil {
		s.closeBroker()
	}

	// 关闭数据库连接
	if err := database.Close(s.db); err != nil {
		s.logger.Error("Failed to close database",
			zap.Error(err),
		)
	}

	// 关闭 Redis 连接
	if err := rediscommon.Close(s.redisClient); err != nil {
		s.logger.Error("Failed to close redis",
			zap.Error(err),
		)
	}

	return nil
}
