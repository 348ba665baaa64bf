package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/wyfcoding/pkg/messagequeue/outbox"
	cartapp "github.com/wyfcoding/storefront/internal/cart/application"
	cartdomain "github.com/wyfcoding/storefront/internal/cart/domain"
	cartgateway "github.com/wyfcoding/storefront/internal/cart/infrastructure/gateway"
	cartmessaging "github.com/wyfcoding/storefront/internal/cart/infrastructure/messaging"
	cartmysql "github.com/wyfcoding/storefront/internal/cart/infrastructure/persistence/mysql"
	carthttp "github.com/wyfcoding/storefront/internal/cart/interfaces/http"
	catalogapp "github.com/wyfcoding/storefront/internal/catalog/application"
	catalogdomain "github.com/wyfcoding/storefront/internal/catalog/domain"
	catalogmessaging "github.com/wyfcoding/storefront/internal/catalog/infrastructure/messaging"
	catalogmysql "github.com/wyfcoding/storefront/internal/catalog/infrastructure/persistence/mysql"
	catalogredis "github.com/wyfcoding/storefront/internal/catalog/infrastructure/persistence/redis"
	"github.com/wyfcoding/storefront/internal/catalog/interfaces/consumer"
	cataloghttp "github.com/wyfcoding/storefront/internal/catalog/interfaces/http"
	categoryapp "github.com/wyfcoding/storefront/internal/category/application"
	categorydomain "github.com/wyfcoding/storefront/internal/category/domain"
	categorymessaging "github.com/wyfcoding/storefront/internal/category/infrastructure/messaging"
	categorymysql "github.com/wyfcoding/storefront/internal/category/infrastructure/persistence/mysql"
	categoryhttp "github.com/wyfcoding/storefront/internal/category/interfaces/http"
	"github.com/wyfcoding/storefront/pkg/cache"
	"github.com/wyfcoding/storefront/pkg/config"
	"github.com/wyfcoding/storefront/pkg/db"
	"github.com/wyfcoding/storefront/pkg/logger"
	"github.com/wyfcoding/storefront/pkg/metrics"
	"github.com/wyfcoding/storefront/pkg/middleware"
	"github.com/wyfcoding/storefront/pkg/mq"
	"golang.org/x/sync/errgroup"
)

var configPath = flag.String("config", "configs/storefront/config.toml", "config file path")

func main() {
	flag.Parse()

	// 1. 配置
	cfg, err := config.Load(*configPath)
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	// 2. 日志
	if err := logger.Init(logger.Config{
		Level:      cfg.Logger.Level,
		Format:     cfg.Logger.Format,
		Output:     cfg.Logger.Output,
		FilePath:   cfg.Logger.FilePath,
		MaxSize:    cfg.Logger.MaxSize,
		MaxBackups: cfg.Logger.MaxBackups,
		MaxAge:     cfg.Logger.MaxAge,
		Compress:   cfg.Logger.Compress,
		WithCaller: cfg.Logger.WithCaller,
	}); err != nil {
		panic(fmt.Sprintf("failed to init logger: %v", err))
	}

	ctx := context.Background()

	// 3. 指标
	m := metrics.New(cfg.ServiceName)
	if err := m.Register(); err != nil {
		logger.Fatal(ctx, "failed to register metrics", "error", err)
	}
	if cfg.Metrics.Enabled {
		go func() {
			if err := metrics.StartHTTPServer(cfg.Metrics.Port, cfg.Metrics.Path); err != nil {
				logger.Error(ctx, "metrics server exited", "error", err)
			}
		}()
	}

	// 4. 基础设施
	database, err := db.Init(db.Config{
		Driver:             cfg.Database.Driver,
		DSN:                cfg.Database.DSN,
		MaxOpenConns:       cfg.Database.MaxOpenConns,
		MaxIdleConns:       cfg.Database.MaxIdleConns,
		ConnMaxLifetime:    cfg.Database.ConnMaxLifetime,
		LogEnabled:         cfg.Database.LogEnabled,
		SlowQueryThreshold: cfg.Database.SlowQueryThreshold,
	})
	if err != nil {
		logger.Fatal(ctx, "failed to connect database", "error", err)
	}
	defer database.Close()

	// 自动迁移仅用于开发环境
	if cfg.Environment == "dev" {
		if err := database.AutoMigrate(
			&catalogdomain.Product{},
			&categorydomain.Category{},
			&cartdomain.Cart{},
			&cartdomain.CartItem{},
		); err != nil {
			logger.Error(ctx, "failed to migrate database", "error", err)
		}
	}

	redisCache, err := cache.New(cache.Config{
		Host:         cfg.Redis.Host,
		Port:         cfg.Redis.Port,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		MaxPoolSize:  cfg.Redis.MaxPoolSize,
		ConnTimeout:  cfg.Redis.ConnTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	})
	if err != nil {
		logger.Fatal(ctx, "failed to init redis", "error", err)
	}
	defer redisCache.Close()

	outboxMgr := outbox.NewManager(database.DB, nil)

	// 5. 仓储与网关
	productRepo := catalogmysql.NewProductRepository(database.DB)
	productCache := catalogredis.NewProductCache(redisCache)
	categoryRepo := categorymysql.NewCategoryRepository(database.DB)
	cartRepo := cartmysql.NewCartRepository(database.DB)
	productGateway := cartgateway.NewCatalogGateway(productRepo)

	catalogPub := catalogmessaging.NewOutboxPublisher(outboxMgr)
	categoryPub := categorymessaging.NewOutboxPublisher(outboxMgr)
	cartPub := cartmessaging.NewOutboxPublisher(outboxMgr)

	// 6. 应用服务。分类查询服务同时充当目录侧的分类校验端口，
	// 目录仓储充当分类侧的商品计数端口。
	categoryQuery := categoryapp.NewCategoryQueryService(categoryRepo)
	categoryCommand := categoryapp.NewCategoryCommandService(categoryRepo, productRepo, categoryPub, database.DB)
	categoryService := categoryapp.NewService(categoryCommand, categoryQuery)

	catalogCommand := catalogapp.NewCatalogCommandService(productRepo, categoryQuery, catalogPub, database.DB, m)
	catalogQuery := catalogapp.NewCatalogQueryService(productRepo, productCache, m)
	catalogService := catalogapp.NewService(catalogCommand, catalogQuery)

	cartCommand := cartapp.NewCartCommandService(cartRepo, productGateway, cartPub, database.DB, m)
	cartQuery := cartapp.NewCartQueryService(cartRepo, productGateway)
	cartService := cartapp.NewService(cartCommand, cartQuery)

	// 7. HTTP 接口层
	gin.SetMode(gin.ReleaseMode)
	if cfg.Environment == "dev" {
		gin.SetMode(gin.DebugMode)
	}
	router := gin.New()
	router.Use(
		middleware.GinRecoveryMiddleware(),
		middleware.GinLoggingMiddleware(),
		middleware.GinCORSMiddleware(),
		middleware.GinRateLimitMiddleware(middleware.NewRateLimiter(200, 100)),
	)
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": cfg.ServiceName, "version": cfg.Version})
	})

	root := router.Group("")
	cataloghttp.NewProductHandler(catalogService).RegisterRoutes(root)
	categoryhttp.NewCategoryHandler(categoryService).RegisterRoutes(root)
	carthttp.NewCartHandler(cartService).RegisterRoutes(root)

	// 8. 启动
	g, gctx := errgroup.WithContext(ctx)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeout) * time.Second,
	}
	g.Go(func() error {
		logger.Info(gctx, "http server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	// 商品事件消费：商品变更后使读缓存失效
	kafkaCfg := mq.KafkaConfig{
		Brokers:        cfg.Kafka.Brokers,
		GroupID:        cfg.Kafka.GroupID,
		SessionTimeout: cfg.Kafka.SessionTimeout,
		MaxRetries:     cfg.Kafka.MaxRetries,
		RetryBackoff:   cfg.Kafka.RetryBackoff,
	}
	if len(cfg.Kafka.Brokers) > 0 {
		dlqProducer, err := mq.NewProducer(kafkaCfg)
		if err != nil {
			logger.Fatal(ctx, "failed to init kafka producer", "error", err)
		}
		defer dlqProducer.Close()
		dlq := mq.NewDeadLetterQueue(dlqProducer, "storefront.dlq")

		invalidator := consumer.NewCacheInvalidationHandler(productCache, logger.Get())
		topics := []string{
			catalogdomain.TopicProductUpdated,
			catalogdomain.TopicProductStockChanged,
			catalogdomain.TopicProductDeleted,
		}
		for _, topic := range topics {
			kafkaConsumer, err := mq.NewConsumer(kafkaCfg, topic)
			if err != nil {
				logger.Fatal(ctx, "failed to init kafka consumer", "topic", topic, "error", err)
			}
			g.Go(func() error {
				defer kafkaConsumer.Close()
				return consumeLoop(gctx, kafkaConsumer, invalidator, dlq)
			})
		}
	}

	// 9. 优雅关闭
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		select {
		case <-quit:
			logger.Info(gctx, "shutting down servers")
		case <-gctx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error(ctx, "server exited with error", "error", err)
	}
}

// consumeLoop 持续消费单个主题，处理失败的消息送入死信队列
func consumeLoop(ctx context.Context, c *mq.KafkaConsumer, handler *consumer.CacheInvalidationHandler, dlq *mq.DeadLetterQueue) error {
	for {
		msg, err := c.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			logger.Error(ctx, "failed to read message", "error", err)
			continue
		}
		if err := handler.Handle(ctx, msg); err != nil {
			if dlqErr := dlq.Send(ctx, msg, "cache invalidation failed", err); dlqErr != nil {
				logger.Error(ctx, "failed to send message to dlq", "error", dlqErr)
			}
		}
	}
}
