package datastore

import (
	"context"

	"surveycopy/internal/models"

	"github.com/uptrace/bun"
)

func CreateTableConfig(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.Config)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}
	return nil
}

func GetConfigByKey(ctx context.Context, db bun.IDB, key string) (*models.Config, error) {
	var config models.Config
	err := db.NewSelect().Model(&config).Where("? = ?", bun.Ident("key"), key).Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &config, nil
}

// UpsertConfig inserts the key or overwrites its value.
func UpsertConfig(ctx context.Context, db bun.IDB, config *models.Config) error {
	_, err := db.NewInsert().Model(config).
		On("CONFLICT (key) DO UPDATE").
		Set("value = EXCLUDED.value").
		Exec(ctx)
	return err
}
