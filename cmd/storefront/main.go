// Storefront 主程序
// 功能：智能家居商城后端，提供商品目录、购物车、下单、报表、用户与评论接口
// 架构：基于 DDD 分层 + GORM + MongoDB + Kafka outbox
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	cartapp "github.com/wyfcoding/smarthome/internal/cart/application"
	cart "github.com/wyfcoding/smarthome/internal/cart/domain"
	cartmq "github.com/wyfcoding/smarthome/internal/cart/infrastructure/messaging"
	cartrepo "github.com/wyfcoding/smarthome/internal/cart/infrastructure/persistence/mysql"
	carthttp "github.com/wyfcoding/smarthome/internal/cart/interfaces/http"
	catalogapp "github.com/wyfcoding/smarthome/internal/catalog/application"
	catalog "github.com/wyfcoding/smarthome/internal/catalog/domain"
	"github.com/wyfcoding/smarthome/internal/catalog/infrastructure/export"
	catalogmq "github.com/wyfcoding/smarthome/internal/catalog/infrastructure/messaging"
	catalogrepo "github.com/wyfcoding/smarthome/internal/catalog/infrastructure/persistence/mysql"
	cataloghttp "github.com/wyfcoding/smarthome/internal/catalog/interfaces/http"
	orderapp "github.com/wyfcoding/smarthome/internal/order/application"
	ordermq "github.com/wyfcoding/smarthome/internal/order/infrastructure/messaging"
	orderrepo "github.com/wyfcoding/smarthome/internal/order/infrastructure/persistence/mysql"
	orderhttp "github.com/wyfcoding/smarthome/internal/order/interfaces/http"
	reportingapp "github.com/wyfcoding/smarthome/internal/reporting/application"
	reportinghttp "github.com/wyfcoding/smarthome/internal/reporting/interfaces/http"
	reviewapp "github.com/wyfcoding/smarthome/internal/review/application"
	reviewrepo "github.com/wyfcoding/smarthome/internal/review/infrastructure/persistence/mongodb"
	reviewhttp "github.com/wyfcoding/smarthome/internal/review/interfaces/http"
	userapp "github.com/wyfcoding/smarthome/internal/user/application"
	user "github.com/wyfcoding/smarthome/internal/user/domain"
	usermq "github.com/wyfcoding/smarthome/internal/user/infrastructure/messaging"
	userrepo "github.com/wyfcoding/smarthome/internal/user/infrastructure/persistence/mysql"
	userhttp "github.com/wyfcoding/smarthome/internal/user/interfaces/http"
	"github.com/wyfcoding/smarthome/pkg/cache"
	"github.com/wyfcoding/smarthome/pkg/config"
	"github.com/wyfcoding/smarthome/pkg/db"
	"github.com/wyfcoding/smarthome/pkg/idgen"
	"github.com/wyfcoding/smarthome/pkg/logger"
	"github.com/wyfcoding/smarthome/pkg/metrics"
	"github.com/wyfcoding/smarthome/pkg/middleware"
	"github.com/wyfcoding/smarthome/pkg/mongodb"
	"github.com/wyfcoding/smarthome/pkg/mq"
	"github.com/wyfcoding/smarthome/pkg/outbox"
	"github.com/wyfcoding/smarthome/pkg/ratelimit"
	"github.com/wyfcoding/smarthome/pkg/trace"
	"github.com/wyfcoding/smarthome/pkg/utils"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

const shutdownTimeout = 10 * time.Second

// services 装配完成的应用服务
type services struct {
	catalog   *catalogapp.CatalogService
	cart      *cartapp.CartService
	order     *orderapp.OrderService
	reporting *reportingapp.ReportingService
	user      *userapp.UserService
	review    *reviewapp.ReviewService
	exporter  *export.Exporter
}

func main() {
	configPath := flag.String("config", "configs/storefront/config.toml", "path to config file")
	seedData := flag.Bool("seed", false, "seed demo catalog, store locations and users when empty")
	flag.Parse()

	// 1. 加载配置
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	loggerCfg := logger.Config{
		Level:      cfg.Logger.Level,
		Format:     cfg.Logger.Format,
		Output:     cfg.Logger.Output,
		FilePath:   cfg.Logger.FilePath,
		MaxSize:    cfg.Logger.MaxSize,
		MaxBackups: cfg.Logger.MaxBackups,
		MaxAge:     cfg.Logger.MaxAge,
		Compress:   cfg.Logger.Compress,
		WithCaller: cfg.Logger.WithCaller,
	}
	if err := logger.Init(loggerCfg); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info(ctx, "Starting Storefront",
		"service", cfg.ServiceName,
		"version", cfg.Version,
		"environment", cfg.Environment,
	)

	// 3. 初始化追踪
	if cfg.Tracing.Enabled {
		shutdown, err := trace.InitTracer(ctx, cfg.ServiceName, cfg.Version, cfg.Tracing.CollectorEndpoint, cfg.Tracing.SamplingRate)
		if err != nil {
			logger.Error(ctx, "Failed to initialize tracer", "error", err)
		} else {
			defer func() {
				if err := shutdown(context.Background()); err != nil {
					logger.Error(ctx, "Failed to shutdown tracer", "error", err)
				}
			}()
			logger.Info(ctx, "Tracer initialized", "endpoint", cfg.Tracing.CollectorEndpoint)
		}
	}

	// 4. 初始化数据库
	database, err := db.Init(db.Config{
		Driver:             cfg.Database.Driver,
		DSN:                cfg.Database.DSN,
		MaxOpenConns:       cfg.Database.MaxOpenConns,
		MaxIdleConns:       cfg.Database.MaxIdleConns,
		ConnMaxLifetime:    cfg.Database.ConnMaxLifetime,
		LogEnabled:         cfg.Database.LogEnabled,
		SlowQueryThreshold: cfg.Database.SlowQueryThreshold,
		Tracing:            cfg.Tracing.Enabled,
	})
	if err != nil {
		logger.Fatal(ctx, "Failed to initialize database", "error", err)
	}
	defer database.Close()

	if cfg.Database.AutoMigrate {
		if err := migrate(database); err != nil {
			logger.Fatal(ctx, "Failed to migrate database", "error", err)
		}
	}

	// 5. 初始化 Redis
	redisClient, err := cache.New(ctx, cache.Config{
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
		logger.Fatal(ctx, "Failed to initialize Redis", "error", err)
	}
	defer redisClient.Close()

	// 6. 初始化限流器
	rateLimiter := ratelimit.NewRedisRateLimiter(redisClient)

	// 7. 初始化 MongoDB（评论）
	mongoClient, err := mongodb.Connect(ctx, mongodb.Config{
		URI:         cfg.Mongo.URI,
		Database:    cfg.Mongo.Database,
		ConnTimeout: cfg.Mongo.ConnTimeout,
	})
	if err != nil {
		logger.Fatal(ctx, "Failed to connect MongoDB", "error", err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := mongoClient.Close(closeCtx); err != nil {
			logger.Error(ctx, "Failed to close MongoDB", "error", err)
		}
	}()
	err = utils.RetryWithBackoff(ctx, 3, 500*time.Millisecond, 2*time.Second, func() error {
		return reviewrepo.EnsureIndexes(ctx, mongoClient.DB(), cfg.Mongo.ReviewCollection)
	})
	if err != nil {
		logger.Warn(ctx, "Failed to ensure review indexes", "error", err)
	}

	// 8. 初始化指标
	collector := metrics.MetricsCollector(metrics.NopCollector{})
	var metricsServer *http.Server
	if cfg.Metrics.Enabled {
		registry := prometheus.NewRegistry()
		m := metrics.New(cfg.ServiceName)
		if err := m.Register(registry); err != nil {
			logger.Fatal(ctx, "Failed to register metrics", "error", err)
		}
		collector = metrics.NewDefaultMetricsCollector(m)
		metricsServer = metrics.NewServer(cfg.Metrics.Port, cfg.Metrics.Path, registry)
	}

	// 9. 初始化仓储与应用服务
	ids, err := idgen.New(cfg.Order.NodeID)
	if err != nil {
		logger.Fatal(ctx, "Failed to initialize id generator", "error", err)
	}
	store := outbox.NewGormStore(database.DB)

	svcs, err := buildServices(cfg, database, store, ids, mongoClient, collector)
	if err != nil {
		logger.Fatal(ctx, "Failed to build services", "error", err)
	}
	svcs.reporting.WithDashboardCache(cache.NewJSONCache(redisClient, "smarthome:reporting:"),
		time.Duration(cfg.Reporting.DashboardCacheTTL)*time.Second)

	if *seedData {
		if err := seed(ctx, svcs.catalog, svcs.user); err != nil {
			logger.Fatal(ctx, "Failed to seed data", "error", err)
		}
	}

	// 10. 创建 HTTP 与 gRPC 服务器
	healthSrv := health.NewServer()
	checks := healthChecks{database: database, redis: redisClient, mongo: mongoClient}
	httpServer := createHTTPServer(cfg, svcs, rateLimiter, collector, checks)
	grpcServer := createGRPCServer(healthSrv)

	// 11. 启动后台任务与服务器
	g, gctx := errgroup.WithContext(ctx)

	if cfg.CatalogExport.Enabled {
		exporter := svcs.exporter
		g.Go(func() error { return exporter.Run(gctx) })
		if cfg.CatalogExport.Schedule != "" {
			scheduler, err := exporter.Schedule(cfg.CatalogExport.Schedule)
			if err != nil {
				logger.Fatal(ctx, "Failed to schedule catalog export", "error", err)
			}
			defer scheduler.Stop()
		}
		exporter.Trigger()
	}

	if cfg.Kafka.Enabled {
		producer := mq.NewProducer(mq.KafkaConfig{
			Brokers:      cfg.Kafka.Brokers,
			MaxRetries:   cfg.Kafka.MaxRetries,
			RetryBackoff: cfg.Kafka.RetryBackoff,
		})
		defer producer.Close()
		relay := outbox.NewRelay(store, producer, outbox.RelayConfig{
			Interval:    time.Duration(cfg.Kafka.RelayInterval) * time.Millisecond,
			BatchSize:   cfg.Kafka.RelayBatchSize,
			MaxAttempts: cfg.Kafka.MaxRetries,
		}, collector)
		g.Go(func() error { return relay.Run(gctx) })
	} else {
		logger.Warn(ctx, "Kafka disabled, outbox events stay pending")
	}

	g.Go(func() error {
		logger.Info(ctx, "Starting HTTP server", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		addr := fmt.Sprintf("%s:%d", cfg.GRPC.Host, cfg.GRPC.Port)
		listener, err := net.Listen("tcp", addr)
		if err != nil {
			return fmt.Errorf("listen grpc %s: %w", addr, err)
		}
		logger.Info(ctx, "Starting gRPC server", "addr", addr)
		healthSrv.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
		return grpcServer.Serve(listener)
	})

	if metricsServer != nil {
		g.Go(func() error {
			logger.Info(ctx, "Starting metrics server", "addr", metricsServer.Addr)
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
	}

	// 12. 优雅关停
	g.Go(func() error {
		<-gctx.Done()
		logger.Info(ctx, "Shutting down Storefront")
		healthSrv.Shutdown()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error(ctx, "HTTP server shutdown error", "error", err)
		}
		if metricsServer != nil {
			if err := metricsServer.Shutdown(shutdownCtx); err != nil {
				logger.Error(ctx, "Metrics server shutdown error", "error", err)
			}
		}
		grpcServer.GracefulStop()
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error(ctx, "Storefront stopped with error", "error", err)
		return
	}
	logger.Info(ctx, "Storefront stopped")
}

// migrate 自动迁移所有关系表
func migrate(database *db.DB) error {
	return database.AutoMigrate(
		&catalog.Category{},
		&catalog.Product{},
		&catalog.StoreLocation{},
		&cart.CartItem{},
		&orderrepo.OrderModel{},
		&user.User{},
		&outbox.Event{},
	)
}

// buildServices 按依赖顺序装配各上下文的仓储与服务
func buildServices(
	cfg *config.Config,
	database *db.DB,
	store outbox.Store,
	ids *idgen.Generator,
	mongoClient *mongodb.Client,
	collector metrics.MetricsCollector,
) (*services, error) {
	gdb := database.DB

	products := catalogrepo.NewProductRepository(gdb)
	categories := catalogrepo.NewCategoryRepository(gdb)
	locations := catalogrepo.NewStoreLocationRepository(gdb)
	carts := cartrepo.NewCartRepository(gdb)
	orders := orderrepo.NewOrderRepository(gdb)
	users := userrepo.NewUserRepository(gdb)
	reviews := reviewrepo.NewReviewRepository(mongoClient.DB(), cfg.Mongo.ReviewCollection)

	// 关闭导出时仍构造导出器，Trigger 只写入缓冲通道不会阻塞
	exporter := export.NewExporter(products, categories, cfg.CatalogExport.Path, collector)

	catalogSvc := catalogapp.NewCatalogService(
		catalogapp.NewCatalogCommandService(products, categories, locations, carts,
			catalogmq.NewOutboxPublisher(store), exporter, database),
		catalogapp.NewCatalogQueryService(products, categories, locations),
	)

	cartSvc := cartapp.NewCartService(carts, products, cartmq.NewOutboxPublisher(store))

	orderSvc := orderapp.NewOrderService(
		orderapp.NewOrderCommandService(orders, products, locations, carts,
			ordermq.NewOutboxPublisher(store), ids, database, collector,
			orderapp.Options{
				DeliveryLeadDays: cfg.Order.DeliveryLeadDays,
				MaxPlaceAttempts: cfg.Order.MaxPlaceAttempts,
			}),
		orderapp.NewOrderQueryService(orders),
	)

	userCmd, err := userapp.NewUserCommandService(users, usermq.NewOutboxPublisher(store), database, bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	userSvc := userapp.NewUserService(userCmd, userapp.NewUserQueryService(users))

	return &services{
		catalog:   catalogSvc,
		cart:      cartSvc,
		order:     orderSvc,
		reporting: reportingapp.NewReportingService(orders, products, categories, carts),
		user:      userSvc,
		review:    reviewapp.NewReviewService(reviews),
		exporter:  exporter,
	}, nil
}

// healthChecks 健康检查依赖
type healthChecks struct {
	database *db.DB
	redis    *redis.Client
	mongo    *mongodb.Client
}

func (h healthChecks) check(ctx context.Context) map[string]string {
	status := map[string]string{"database": "ok", "redis": "ok", "mongo": "ok"}
	if err := h.database.Ping(ctx); err != nil {
		status["database"] = err.Error()
	}
	if err := h.redis.Ping(ctx).Err(); err != nil {
		status["redis"] = err.Error()
	}
	if err := h.mongo.Ping(ctx, nil); err != nil {
		status["mongo"] = err.Error()
	}
	return status
}

// createHTTPServer 创建 HTTP 服务器
func createHTTPServer(
	cfg *config.Config,
	svcs *services,
	rateLimiter ratelimit.RateLimiter,
	collector metrics.MetricsCollector,
	checks healthChecks,
) *http.Server {
	if cfg.Environment == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// 添加中间件
	router.Use(otelgin.Middleware(cfg.ServiceName))
	router.Use(middleware.GinLoggingMiddleware())
	router.Use(middleware.GinRecoveryMiddleware())
	router.Use(middleware.GinCORSMiddleware())
	router.Use(middleware.GinMetricsMiddleware(collector))
	router.Use(middleware.RateLimitMiddleware(rateLimiter, cfg.RateLimit))

	// 注册路由
	api := &router.RouterGroup
	cataloghttp.NewCatalogHandler(svcs.catalog).RegisterRoutes(api)
	carthttp.NewCartHandler(svcs.cart).RegisterRoutes(api)
	orderhttp.NewOrderHandler(svcs.order).RegisterRoutes(api)
	reportinghttp.NewReportingHandler(svcs.reporting).RegisterRoutes(api)
	userhttp.NewUserHandler(svcs.user).RegisterRoutes(api)
	reviewhttp.NewReviewHandler(svcs.review).RegisterRoutes(api)

	// 健康检查
	router.GET("/health", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		deps := checks.check(ctx)
		code, state := http.StatusOK, "healthy"
		for _, v := range deps {
			if v != "ok" {
				code, state = http.StatusServiceUnavailable, "unhealthy"
				break
			}
		}
		c.JSON(code, gin.H{
			"status":       state,
			"service":      cfg.ServiceName,
			"dependencies": deps,
			"timestamp":    time.Now().Unix(),
		})
	})

	return &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeout) * time.Second,
	}
}

// createGRPCServer 创建 gRPC 服务器，目前只暴露标准健康检查
func createGRPCServer(healthSrv *health.Server) *grpc.Server {
	server := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(
			middleware.GRPCLoggingInterceptor(),
			middleware.GRPCRecoveryInterceptor(),
		),
	)
	healthpb.RegisterHealthServer(server, healthSrv)
	return server
}
