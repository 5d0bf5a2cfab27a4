package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/d60-Lab/socialfeed/config"
	"github.com/d60-Lab/socialfeed/internal/api/handler"
	"github.com/d60-Lab/socialfeed/internal/api/router"
	"github.com/d60-Lab/socialfeed/internal/auth"
	"github.com/d60-Lab/socialfeed/internal/cache"
	"github.com/d60-Lab/socialfeed/internal/media"
	"github.com/d60-Lab/socialfeed/internal/notify"
	"github.com/d60-Lab/socialfeed/internal/repository"
	"github.com/d60-Lab/socialfeed/internal/service"
	"github.com/d60-Lab/socialfeed/internal/telemetry"
	"github.com/d60-Lab/socialfeed/pkg/database"
	"github.com/d60-Lab/socialfeed/pkg/logger"
)

// @title socialfeed API
// @version 1.0
// @description Social graph, feed and live notification service.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// closers 按注册的逆序关闭资源
type closers []func()

func (c *closers) add(f func()) { *c = append(*c, f) }

func (c closers) run() {
	for i := len(c) - 1; i >= 0; i-- {
		c[i]()
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := logger.Init(cfg.Server.Mode); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	var cleanup closers
	defer cleanup.run()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Sentry.DSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.Sentry.DSN,
			Environment: cfg.Sentry.Environment,
			SampleRate:  cfg.Sentry.SampleRate,
		}); err != nil {
			return fmt.Errorf("init sentry: %w", err)
		}
		cleanup.add(func() { sentry.Flush(2 * time.Second) })
	}

	shutdownTracing, err := telemetry.InitTracing(ctx, cfg.Tracing)
	if err != nil {
		return err
	}
	cleanup.add(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(ctx)
	})

	db, err := database.InitDB(cfg)
	if err != nil {
		return fmt.Errorf("init database: %w", err)
	}
	cleanup.add(func() { _ = database.Close(db) })

	var rdb *redis.Client
	if cfg.Redis.Enabled {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		cleanup.add(func() { _ = rdb.Close() })
	}

	store, opener, uploadDir, err := openMediaStore(ctx, cfg.Media, &cleanup)
	if err != nil {
		return err
	}

	reg := notify.NewRegistry(cfg.Notify.SessionQueue)
	bus, err := openBus(ctx, cfg.Notify, rdb, reg)
	if err != nil {
		return err
	}
	cleanup.add(func() { _ = bus.Close() })
	dispatcher := notify.NewDispatcher(bus, cfg.Notify.QueueSize)
	stopDispatcher := dispatcher.Start(cfg.Notify.Workers)

	h, authSvc := buildHandler(cfg, db, rdb, store, opener, reg, dispatcher)
	engine := router.New(h, authSvc, router.Options{
		Mode:              cfg.Server.Mode,
		ServiceName:       cfg.Tracing.ServiceName,
		Tracing:           cfg.Tracing.Enabled,
		Swagger:           cfg.Server.Mode != "release",
		UploadDir:         uploadDir,
		UploadPrefix:      cfg.Media.PublicPrefix,
		MaxMultipartBytes: cfg.Media.MaxFileSize,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router.WithCORS(engine, cfg.Server.AllowOrigins),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("addr", srv.Addr),
			zap.String("media", cfg.Media.Driver), zap.String("notify", cfg.Notify.Driver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	// SSE 连接不会自行结束，先关闭会话
	reg.CloseAll()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	if err := stopDispatcher(shutdownCtx); err != nil {
		logger.Warn("notification dispatcher shutdown", zap.Error(err))
	}
	return nil
}

func openMediaStore(ctx context.Context, cfg config.MediaConfig, cleanup *closers) (media.Store, media.Opener, string, error) {
	switch cfg.Driver {
	case "gridfs":
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			return nil, nil, "", fmt.Errorf("connect mongo: %w", err)
		}
		cleanup.add(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = client.Disconnect(ctx)
		})
		if err := client.Ping(ctx, nil); err != nil {
			return nil, nil, "", fmt.Errorf("ping mongo: %w", err)
		}
		store, err := media.NewGridFSStore(client.Database(cfg.MongoDatabase), cfg.Bucket, "/media")
		if err != nil {
			return nil, nil, "", err
		}
		return store, store, "", nil
	default:
		store, err := media.NewLocalStore(cfg.UploadDir, cfg.PublicPrefix)
		if err != nil {
			return nil, nil, "", err
		}
		return store, nil, store.Dir(), nil
	}
}

func openBus(ctx context.Context, cfg config.NotifyConfig, rdb *redis.Client, reg *notify.Registry) (notify.Bus, error) {
	switch cfg.Driver {
	case "redis":
		bus, err := notify.NewRedisBus(ctx, rdb, cfg.Channel, reg)
		if err != nil {
			return nil, err
		}
		return bus, nil
	case "nats":
		nc, err := nats.Connect(cfg.NatsURL, nats.Name("socialfeed"), nats.MaxReconnects(-1))
		if err != nil {
			return nil, fmt.Errorf("connect nats: %w", err)
		}
		bus, err := notify.NewNATSBus(nc, cfg.Channel, reg)
		if err != nil {
			nc.Close()
			return nil, err
		}
		return bus, nil
	default:
		return notify.NewLocalBus(reg), nil
	}
}

func buildHandler(
	cfg *config.Config,
	db *gorm.DB,
	rdb *redis.Client,
	store media.Store,
	opener media.Opener,
	reg *notify.Registry,
	dispatcher *notify.Dispatcher,
) (*handler.Handler, service.AuthService) {
	users := repository.NewUserRepository(db)
	follows := repository.NewFollowRepository(db)
	fans := repository.NewFanRepository(db)
	posts := repository.NewPostRepository(db)

	// 关注列表：有 Redis 时走共享缓存，否则直接查库
	var followees service.FolloweeSource = follows
	var invalidator service.FollowingInvalidator
	if rdb != nil {
		index := cache.NewFollowingIndex(rdb, follows, cfg.Redis.CacheTTL)
		followees, invalidator = index, index
	}

	paging := service.Paging{Default: cfg.Feed.DefaultLimit, Max: cfg.Feed.MaxLimit}
	authSvc := service.NewAuthService(users, auth.NewTokenManager(cfg.JWT.Secret, cfg.JWT.Expiry, cfg.JWT.Issuer))

	h := handler.New(handler.Deps{
		Auth: authSvc,
		Users: service.NewUserService(users, follows, fans, store, service.UserLimits{
			Paging:        service.Paging{Default: cfg.Feed.DefaultLimit, Max: cfg.Feed.MaxUserLimit},
			MaxAvatarSize: cfg.Media.MaxAvatarSize,
		}),
		Relations: service.NewRelationshipService(db, users, follows, fans, invalidator, dispatcher),
		Posts: service.NewPostService(posts, users, store, dispatcher, service.PostLimits{
			Paging:        paging,
			MaxTextLength: cfg.Feed.MaxTextLength,
			MaxFiles:      cfg.Media.MaxPostFiles,
			MaxFileSize:   cfg.Media.MaxFileSize,
		}),
		Engagement: service.NewEngagementService(repository.NewEngagementRepository(db), users, dispatcher),
		Feed:       service.NewFeedService(posts, followees, paging),
		Registry:   reg,
		Opener:     opener,
		Limits: handler.UploadLimits{
			MaxPostFiles:  cfg.Media.MaxPostFiles,
			MaxFileSize:   cfg.Media.MaxFileSize,
			MaxAvatarSize: cfg.Media.MaxAvatarSize,
		},
	})
	return h, authSvc
}
