package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Gobusters/ectoenv"
	"github.com/Gobusters/ectoinject"
	"github.com/Gobusters/ectologger"
	"github.com/Gobusters/ectologger/zapadapter"
	"github.com/Ramsey-B/stem/pkg/database"
	stemmiddleware "github.com/Ramsey-B/stem/pkg/middleware"
	"github.com/Ramsey-B/stem/pkg/startup"
	"github.com/Ramsey-B/stem/pkg/tracing"
	"github.com/Ramsey-B/stem/pkg/tracing/exporters"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"

	"github.com/Ramsey-B/sage/config"
	accountrepo "github.com/Ramsey-B/sage/internal/repositories/account"
	auditlogrepo "github.com/Ramsey-B/sage/internal/repositories/auditlog"
	chatmessagerepo "github.com/Ramsey-B/sage/internal/repositories/chatmessage"
	managerrepo "github.com/Ramsey-B/sage/internal/repositories/manager"
	relationshiprepo "github.com/Ramsey-B/sage/internal/repositories/relationship"
	requestrepo "github.com/Ramsey-B/sage/internal/repositories/request"
	revenuerepo "github.com/Ramsey-B/sage/internal/repositories/revenue"
	sellerrepo "github.com/Ramsey-B/sage/internal/repositories/seller"
	"github.com/Ramsey-B/sage/pkg/assignment"
	"github.com/Ramsey-B/sage/pkg/audit"
	"github.com/Ramsey-B/sage/pkg/book"
	"github.com/Ramsey-B/sage/pkg/chat"
	"github.com/Ramsey-B/sage/pkg/events"
	"github.com/Ramsey-B/sage/pkg/importer"
	sagekafka "github.com/Ramsey-B/sage/pkg/kafka"
	sagemiddleware "github.com/Ramsey-B/sage/pkg/middleware"
	"github.com/Ramsey-B/sage/pkg/permissions"
	sageredis "github.com/Ramsey-B/sage/pkg/redis"
	accountroutes "github.com/Ramsey-B/sage/pkg/routes/account"
	auditlogroutes "github.com/Ramsey-B/sage/pkg/routes/auditlog"
	chatroutes "github.com/Ramsey-B/sage/pkg/routes/chat"
	healthroutes "github.com/Ramsey-B/sage/pkg/routes/health"
	kpiroutes "github.com/Ramsey-B/sage/pkg/routes/kpi"
	managerroutes "github.com/Ramsey-B/sage/pkg/routes/manager"
	relationshiproutes "github.com/Ramsey-B/sage/pkg/routes/relationship"
	requestroutes "github.com/Ramsey-B/sage/pkg/routes/request"
	sellerroutes "github.com/Ramsey-B/sage/pkg/routes/seller"
)

const version = "1.0.0"

func main() {
	_ = godotenv.Load()

	var cfg config.Config
	if err := ectoenv.BindEnv(&cfg); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zapLogger, err := buildZapLogger(cfg)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	logger := zapadapter.NewZapEctoLogger(zapLogger, nil)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if cfg.OTLPEnabled {
		shutdown, err := setupTracing(ctx, cfg)
		if err != nil {
			logger.WithError(err).Warn("Failed to set up tracing, continuing without it")
		} else {
			defer shutdown(context.Background())
		}
	}

	var (
		sqlDB    *sqlx.DB
		db       database.DB
		rdb      *sageredis.Client
		consumer *sagekafka.Consumer
		producer *sagekafka.Producer
		checker  *healthroutes.Checker
		server   *echo.Echo
	)

	boot := startup.NewStartup[any](logger, cfg.StartupMaxAttempts)

	boot.AddDependency(&dependency{
		name: "database",
		start: func(ctx context.Context) error {
			dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
				cfg.DatabaseHost, cfg.DatabasePort, cfg.DatabaseUserName, cfg.DatabasePassword, cfg.DatabaseName, cfg.DatabaseSSLMode)
			conn, err := sqlx.ConnectContext(ctx, cfg.DatabaseDriver, dsn)
			if err != nil {
				return err
			}
			conn.SetMaxOpenConns(cfg.DatabaseMaxOpenConns)
			conn.SetMaxIdleConns(cfg.DatabaseMaxIdleConns)
			conn.SetConnMaxLifetime(cfg.DatabaseConnMaxLifetime)
			sqlDB = conn
			db = database.NewDatabaseInstance(conn, logger)
			return nil
		},
		stop: func(ctx context.Context) error {
			if sqlDB != nil {
				return sqlDB.Close()
			}
			return nil
		},
	})

	boot.AddDependency(&dependency{
		name:      "migrations",
		dependsOn: []string{"database"},
		start: func(ctx context.Context) error {
			driver, err := migratepg.WithInstance(sqlDB.DB, &migratepg.Config{})
			if err != nil {
				return err
			}
			ms := database.NewMigrationService(logger, &database.MigrationConfig{
				MigrationFolderPath: cfg.DatabaseMigrationFolderPath,
				Version:             uint(cfg.DatabaseMigrationVersion),
				Force:               cfg.DatabaseMigrationForce,
				AutoRollback:        cfg.DatabaseMigrationAutoRollback,
			})
			return ms.Migrate(cfg.DatabaseName, driver)
		},
	})

	boot.AddDependency(&dependency{
		name: "redis",
		start: func(ctx context.Context) error {
			client, err := sageredis.NewClient(sageredis.Config{
				Host:     cfg.RedisHost,
				Port:     cfg.RedisPort,
				Password: cfg.RedisPassword,
				DB:       cfg.RedisDB,
			}, logger)
			if err != nil {
				return err
			}
			rdb = client
			return nil
		},
		stop: func(ctx context.Context) error {
			if rdb != nil {
				return rdb.Close()
			}
			return nil
		},
	})

	boot.AddDependency(&dependency{
		name:      "kafka",
		dependsOn: []string{"database", "migrations", "redis"},
		start: func(ctx context.Context) error {
			producer = sagekafka.NewProducer(sagekafka.ProducerConfig{
				Brokers:      cfg.KafkaBrokers,
				Topic:        cfg.KafkaOutputTopic,
				BatchSize:    cfg.KafkaBatchSize,
				BatchTimeout: time.Duration(cfg.KafkaBatchTimeout) * time.Millisecond,
				RequiredAcks: cfg.KafkaRequiredAcks,
				Compression:  cfg.KafkaCompression,
			}, logger)

			if !cfg.KafkaConsumerEnabled {
				return nil
			}

			processor := importer.NewProcessor(
				accountrepo.NewRepository(db, logger),
				sellerrepo.NewRepository(db, logger),
				managerrepo.NewRepository(db, logger),
				relationshiprepo.NewRepository(db, logger),
				relationshiprepo.NewOriginalRepository(db, logger),
				revenuerepo.NewRepository(db, logger),
				logger,
			)
			consumer = sagekafka.NewConsumer(cfg, logger, processor.HandleMessage)
			return consumer.Start(ctx)
		},
		stop: func(ctx context.Context) error {
			if consumer != nil {
				if err := consumer.Stop(); err != nil {
					return err
				}
			}
			if producer != nil {
				return producer.Close()
			}
			return nil
		},
	})

	boot.AddDependency(&dependency{
		name:      "http",
		dependsOn: []string{"database", "migrations", "redis", "kafka"},
		start: func(ctx context.Context) error {
			if err := registerDependencies(cfg, logger, db, rdb, producer); err != nil {
				return err
			}

			server = buildServer(cfg, logger)
			checker = healthroutes.NewChecker(sqlDB, rdb, version)
			checker.RegisterRoutes(server)

			go func() {
				addr := fmt.Sprintf(":%d", cfg.Port)
				if err := server.Start(addr); err != nil && err != http.ErrServerClosed {
					logger.WithError(err).Error("HTTP server stopped")
					cancel()
				}
			}()
			checker.SetReady(true)
			return nil
		},
		stop: func(ctx context.Context) error {
			if checker != nil {
				checker.SetReady(false)
			}
			if server != nil {
				shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 10*time.Second)
				defer shutdownCancel()
				return server.Shutdown(shutdownCtx)
			}
			return nil
		},
	})

	if err := boot.Start(ctx); err != nil {
		logger.WithError(err).Error("Startup failed")
		os.Exit(1)
	}

	logger.Infof("%s listening on port %d", cfg.AppName, cfg.Port)

	<-ctx.Done()
	logger.Info("Shutting down")

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer stopCancel()
	if err := boot.Stop(stopCtx); err != nil {
		logger.WithError(err).Error("Shutdown failed")
	}
}

// registerDependencies wires everything the route handlers resolve from the
// request context.
func registerDependencies(cfg config.Config, logger ectologger.Logger, db database.DB, rdb *sageredis.Client, producer *sagekafka.Producer) error {
	container, err := ectoinject.NewDIDefaultContainer()
	if err != nil {
		return err
	}

	accounts := accountrepo.NewRepository(db, logger)
	sellers := sellerrepo.NewRepository(db, logger)
	managers := managerrepo.NewRepository(db, logger)
	relationships := relationshiprepo.NewRepository(db, logger)
	originals := relationshiprepo.NewOriginalRepository(db, logger)
	requests := requestrepo.NewRepository(db, logger)
	revenues := revenuerepo.NewRepository(db, logger)
	auditLogs := auditlogrepo.NewRepository(db, logger)
	chatMessages := chatmessagerepo.NewRepository(db, logger)

	cache := sageredis.NewBookCache(rdb, logger, cfg.RecentlyMovedTTL, cfg.SellerKPICacheTTL)
	recorder := audit.NewRecorder(auditLogs, logger)
	emitter := events.NewEmitter(producer, logger)

	assignmentSvc := assignment.NewService(
		permissions.Config{ManagerApprovalRequired: cfg.ManagerApprovalRequired},
		relationships, originals, requests, sellers, managers,
		recorder, emitter, cache, logger,
	)
	bookSvc := book.NewService(sellers, relationships, originals, revenues, cache, logger)
	chatSvc := chat.NewService(chatMessages, rdb, cfg.ChatChannelPrefix, logger)

	if err := ectoinject.RegisterInstance[*accountrepo.Repository](container, accounts); err != nil {
		return err
	}
	if err := ectoinject.RegisterInstance[*sellerrepo.Repository](container, sellers); err != nil {
		return err
	}
	if err := ectoinject.RegisterInstance[*managerrepo.Repository](container, managers); err != nil {
		return err
	}
	if err := ectoinject.RegisterInstance[*relationshiprepo.Repository](container, relationships); err != nil {
		return err
	}
	if err := ectoinject.RegisterInstance[*relationshiprepo.OriginalRepository](container, originals); err != nil {
		return err
	}
	if err := ectoinject.RegisterInstance[*requestrepo.Repository](container, requests); err != nil {
		return err
	}
	if err := ectoinject.RegisterInstance[*auditlogrepo.Repository](container, auditLogs); err != nil {
		return err
	}
	if err := ectoinject.RegisterInstance[*assignment.Service](container, assignmentSvc); err != nil {
		return err
	}
	if err := ectoinject.RegisterInstance[*book.Service](container, bookSvc); err != nil {
		return err
	}
	return ectoinject.RegisterInstance[*chat.Service](container, chatSvc)
}

// buildServer assembles the echo server with middleware and all route groups.
func buildServer(cfg config.Config, logger ectologger.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Server.ReadTimeout = time.Duration(cfg.HttpServerReadTimeoutSeconds) * time.Second
	e.Server.WriteTimeout = time.Duration(cfg.HttpServerWriteTimeoutSeconds) * time.Second
	e.Server.IdleTimeout = time.Duration(cfg.HttpServerIdleTimeoutSeconds) * time.Second
	e.Server.ReadHeaderTimeout = time.Duration(cfg.ReadHeaderTimeoutSeconds) * time.Second
	e.Server.MaxHeaderBytes = cfg.MaxHeaderBytes

	e.HTTPErrorHandler = stemmiddleware.Error(logger)

	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: cfg.AllowOrigins,
		AllowMethods: cfg.AllowMethods,
	}))
	e.Use(otelecho.Middleware(cfg.AppName))
	e.Use(stemmiddleware.Context())
	e.Use(stemmiddleware.Logger(logger))

	if cfg.AuthEnabled {
		e.Use(sagemiddleware.Authentication(logger, cfg.AuthIssuerURL, cfg.AuthClientID))
	} else {
		e.Use(sagemiddleware.DevIdentity())
	}

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := e.Group("/api/v1")
	accountroutes.Register(api.Group("/accounts"))
	sellerroutes.Register(api.Group("/sellers"))
	relationshiproutes.Register(api.Group("/relationships"))
	requestroutes.Register(api.Group("/requests"))
	auditlogroutes.Register(api.Group("/audit-logs"))
	chatroutes.Register(api.Group("/chat"))
	managerroutes.Register(api.Group("/managers"))
	kpiroutes.Register(api.Group("/kpis"))

	return e
}

func buildZapLogger(cfg config.Config) (*zap.Logger, error) {
	if cfg.PrettyLogs {
		return zap.NewDevelopment()
	}
	zapCfg := zap.NewProductionConfig()
	if level, err := zap.ParseAtomicLevel(cfg.LogLevel); err == nil {
		zapCfg.Level = level
	}
	return zapCfg.Build()
}

func setupTracing(ctx context.Context, cfg config.Config) (func(context.Context) error, error) {
	exporter, err := exporters.NewOTLPExporter(ctx, exporters.OTLPConfig{
		Endpoint: cfg.OTLPEndpoint,
		Protocol: cfg.OTLPProtocol,
		Insecure: cfg.OTLPInsecure,
		Timeout:  10 * time.Second,
	})
	if err != nil {
		return nil, err
	}

	provider := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
	otel.SetTracerProvider(provider)
	tracing.SetTracer(provider.Tracer(cfg.AppName))

	return provider.Shutdown, nil
}
