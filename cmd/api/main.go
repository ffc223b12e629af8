package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"surveycopy/internal/api/handler"
	"surveycopy/internal/datastore/redis_store"
	"surveycopy/internal/interfaces"
	"surveycopy/internal/pkg/caching"
	"surveycopy/internal/pkg/limiter"
	"surveycopy/internal/pkg/locker"
	"surveycopy/internal/pkg/logging"
	"surveycopy/internal/services"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/hiendaovinh/toolkit/pkg/db"
	"github.com/hiendaovinh/toolkit/pkg/env"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func init() {
	// for development
	//nolint:errcheck
	godotenv.Load("../../.env")

	// for production
	//nolint:errcheck
	godotenv.Load("./.env")
}

func main() {
	vs, err := env.EnvsRequired(
		"DB_DSN",
		"ADMIN_API_KEY",
	)
	if err != nil {
		log.Fatal(err)
	}

	container := NewContainer(vs)

	app := &cli.App{
		Name: "api",
		Commands: []*cli.Command{
			commandServer(container),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func commandServer(container *do.Injector) *cli.Command {
	return &cli.Command{
		Name:  "server",
		Usage: "start the web server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "addr",
				Value: "0.0.0.0:8080",
				Usage: "serve address",
			},
		},
		Action: func(c *cli.Context) error {
			vs := do.MustInvokeNamed[map[string]string](container, "envs")
			logger := do.MustInvoke[*zap.Logger](container)
			// nolint:errcheck
			defer logger.Sync()

			router, err := handler.New(&handler.Config{
				Container:   container,
				Mode:        vs["API_MODE"],
				Origins:     strings.Split(vs["API_ORIGINS"], ","),
				AdminAPIKey: vs["ADMIN_API_KEY"],
			})
			if err != nil {
				return err
			}

			srv := &http.Server{
				Addr:    c.String("addr"),
				Handler: router,
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			errWg, errCtx := errgroup.WithContext(ctx)

			errWg.Go(func() error {
				logger.Info("listening", zap.String("addr", c.String("addr")), zap.String("mode", vs["API_MODE"]))
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					return err
				}
				return nil
			})

			errWg.Go(func() error {
				<-errCtx.Done()
				return srv.Shutdown(context.TODO())
			})

			return errWg.Wait()
		},
	}
}

func newRedis(clusterEnv, urlEnv string) (redis.UniversalClient, error) {
	clusterURL := os.Getenv(clusterEnv)
	if clusterURL != "" {
		clusterOpts, err := redis.ParseClusterURL(clusterURL)
		if err != nil {
			return nil, err
		}
		return redis.NewClusterClient(clusterOpts), nil
	}
	return db.InitRedis(&db.RedisConfig{
		URL: os.Getenv(urlEnv),
	})
}

func NewContainer(vs map[string]string) *do.Injector {
	injector := do.New()
	vs["API_MODE"] = os.Getenv("API_MODE")
	vs["API_ORIGINS"] = os.Getenv("API_ORIGINS")
	vs["LOG_LEVEL"] = os.Getenv("LOG_LEVEL")

	if vs["API_MODE"] == "" {
		vs["API_MODE"] = "production"
	}
	if vs["API_ORIGINS"] == "" {
		vs["API_ORIGINS"] = "*"
	}

	do.ProvideNamedValue(injector, "envs", vs)

	do.Provide(injector, func(i *do.Injector) (*zap.Logger, error) {
		return logging.New(vs["LOG_LEVEL"])
	})

	do.Provide(injector, func(i *do.Injector) (*bun.DB, error) {
		sqldb := sql.OpenDB(pgdriver.NewConnector(
			pgdriver.WithDSN(os.Getenv("DB_DSN")),
			pgdriver.WithPassword(os.Getenv("DB_PASSWORD")),
		))

		db := bun.NewDB(sqldb, pgdialect.New())
		return db, nil
	})

	do.ProvideNamed(injector, "db-readonly", func(i *do.Injector) (*bun.DB, error) {
		dsn := os.Getenv("DB_DSN_READONLY")
		if dsn == "" {
			return do.Invoke[*bun.DB](i)
		}

		sqldb := sql.OpenDB(pgdriver.NewConnector(
			pgdriver.WithDSN(dsn),
			pgdriver.WithPassword(os.Getenv("DB_PASSWORD_READONLY")),
		))

		db := bun.NewDB(sqldb, pgdialect.New())
		return db, nil
	})

	do.ProvideNamed(injector, "redis-db", func(i *do.Injector) (redis.UniversalClient, error) {
		return newRedis("CLUSTER_REDIS_DB", "REDIS_DB")
	})

	do.ProvideNamed(injector, "redis-cache", func(i *do.Injector) (redis.UniversalClient, error) {
		return newRedis("CLUSTER_REDIS_CACHE", "REDIS_CACHE")
	})

	do.ProvideNamed(injector, "redis-cache-readonly", func(i *do.Injector) (redis.UniversalClient, error) {
		var clusterOpts *redis.ClusterOptions
		var err error
		clusterCacheRedisReadOnlyURL := os.Getenv("CLUSTER_REDIS_CACHE_READONLY")
		if clusterCacheRedisReadOnlyURL != "" {
			clusterOpts, err = redis.ParseClusterURL(clusterCacheRedisReadOnlyURL)
		} else {
			clusterCacheRedisURL := os.Getenv("CLUSTER_REDIS_CACHE")
			if clusterCacheRedisURL != "" {
				clusterOpts, err = redis.ParseClusterURL(clusterCacheRedisURL)
			}
		}

		if err != nil {
			return nil, err
		}
		if clusterOpts != nil {
			clusterOpts.ReadOnly = true
			return redis.NewClusterClient(clusterOpts), nil
		}

		url := os.Getenv("REDIS_CACHE_READONLY")
		if url == "" {
			return do.InvokeNamed[redis.UniversalClient](i, "redis-cache")
		}
		return db.InitRedis(&db.RedisConfig{
			URL: url,
		})
	})

	do.ProvideNamed(injector, "redis-limiter", func(i *do.Injector) (redis.UniversalClient, error) {
		return newRedis("CLUSTER_REDIS_LIMITER", "REDIS_LIMITER")
	})

	do.ProvideNamed(injector, "redis-mutex", func(i *do.Injector) (redis.UniversalClient, error) {
		return newRedis("CLUSTER_REDIS_MUTEX", "REDIS_MUTEX")
	})

	do.Provide(injector, func(i *do.Injector) (caching.Cache, error) {
		dbRedis, err := do.InvokeNamed[redis.UniversalClient](i, "redis-cache")
		if err != nil {
			return nil, err
		}

		return caching.NewCacheRedis(dbRedis, false)
	})

	do.Provide(injector, func(i *do.Injector) (caching.ReadOnlyCache, error) {
		dbRedis, err := do.InvokeNamed[redis.UniversalClient](i, "redis-cache-readonly")
		if err != nil {
			return nil, err
		}

		return caching.NewCacheRedis(dbRedis, false)
	})

	do.Provide(injector, func(i *do.Injector) (interfaces.Limiter, error) {
		dbRedis, err := do.InvokeNamed[redis.UniversalClient](i, "redis-limiter")
		if err != nil {
			return nil, err
		}

		return limiter.NewLimiter(dbRedis)
	})

	do.Provide(injector, func(i *do.Injector) (*redsync.Redsync, error) {
		dbRedis, err := do.InvokeNamed[redis.UniversalClient](i, "redis-mutex")
		if err != nil {
			return nil, err
		}

		pool := goredis.NewPool(dbRedis)
		rs := redsync.New(pool)
		return rs, nil
	})

	do.Provide(injector, func(i *do.Injector) (interfaces.Locker, error) {
		rs, err := do.Invoke[*redsync.Redsync](i)
		if err != nil {
			return nil, err
		}

		return locker.New(rs), nil
	})

	do.Provide(injector, func(i *do.Injector) (interfaces.CopyReportStore, error) {
		dbRedis, err := do.InvokeNamed[redis.UniversalClient](i, "redis-db")
		if err != nil {
			return nil, err
		}

		return redis_store.NewStore(dbRedis), nil
	})

	do.Provide(injector, func(i *do.Injector) (*services.ServiceConfig, error) {
		return services.NewServiceConfig(injector)
	})

	do.Provide(injector, func(i *do.Injector) (*services.ServiceQuestion, error) {
		return services.NewServiceQuestion(injector)
	})

	do.Provide(injector, func(i *do.Injector) (*services.ServicePlugin, error) {
		return services.NewServicePlugin(injector)
	})

	return injector
}
