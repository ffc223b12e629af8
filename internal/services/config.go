package services

import (
	"context"
	"database/sql"
	"errors"
	"strconv"

	"surveycopy/internal/datastore"
	"surveycopy/internal/models"
	"surveycopy/internal/pkg/caching"

	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/samber/do"
	"github.com/uptrace/bun"
)

type ServiceConfig struct {
	container          *do.Injector
	postgresDB         *bun.DB
	readonlyPostgresDB *bun.DB
	cache              caching.Cache
	readonlyCache      caching.ReadOnlyCache
}

func NewServiceConfig(container *do.Injector) (*ServiceConfig, error) {
	postgresDB, err := do.Invoke[*bun.DB](container)
	if err != nil {
		return nil, err
	}

	cache, err := do.Invoke[caching.Cache](container)
	if err != nil {
		return nil, err
	}

	readonlyPostgresDB, err := do.InvokeNamed[*bun.DB](container, "db-readonly")
	if err != nil {
		return nil, err
	}

	readOnlyCache, err := do.Invoke[caching.ReadOnlyCache](container)
	if err != nil {
		return nil, err
	}

	return &ServiceConfig{container, postgresDB, readonlyPostgresDB, cache, readOnlyCache}, nil
}

// GetStringConfig returns the configured value of key, or defaultValue when
// the key has never been set.
func (service *ServiceConfig) GetStringConfig(ctx context.Context, key string, defaultValue string) (string, error) {
	callback := func() (string, error) {
		config, err := datastore.GetConfigByKey(ctx, service.readonlyPostgresDB, key)
		if errors.Is(err, sql.ErrNoRows) {
			return defaultValue, nil
		}
		if err != nil {
			return defaultValue, err
		}
		return config.Value, nil
	}

	value, err := caching.UseCacheWithRO(ctx, service.readonlyCache, service.cache, DBKeyConfig(key), CACHE_TTL_5_MINS, callback)
	if err != nil {
		return defaultValue, err
	}

	return value, nil
}

func (service *ServiceConfig) GetIntConfig(ctx context.Context, key string, defaultValue int) (int, error) {
	value, err := service.GetStringConfig(ctx, key, strconv.Itoa(defaultValue))
	if err != nil {
		return defaultValue, err
	}

	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue, err
	}

	return intValue, nil
}

func (service *ServiceConfig) SetConfig(ctx context.Context, key string, value string) (*models.Config, error) {
	if key == "" {
		return nil, errorx.Wrap(errors.New("missing config key"), errorx.Validation)
	}

	config := &models.Config{Key: key, Value: value}
	if err := datastore.UpsertConfig(ctx, service.postgresDB, config); err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}

	if err := caching.Invalidate(ctx, service.cache, DBKeyConfig(key)); err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}

	return config, nil
}

// CopyQuestionMode is the copy mode used when a request names none.
func (service *ServiceConfig) CopyQuestionMode(ctx context.Context) (models.CopyMode, error) {
	value, err := service.GetStringConfig(ctx, CONFIG_COPY_QUESTION_MODE, string(models.CopyModeAtomic))
	if err != nil {
		return models.CopyModeAtomic, err
	}

	mode := models.CopyMode(value)
	if !mode.Valid() {
		return models.CopyModeAtomic, errorx.Wrap(ErrInvalidCopyMode, errorx.Invalid)
	}

	return mode, nil
}
