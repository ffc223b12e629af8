package datastore

import (
	"context"
	"database/sql"
	"errors"

	"surveycopy/internal/models"

	"github.com/uptrace/bun"
)

const DEFAULT_PLUGIN_TYPE = "user"

func CreateTablePlugin(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.Plugin)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.Plugin)(nil)).Index("index_plugins_name").IfNotExists().Unique().Column("name").Exec(ctx)
	if err != nil {
		return err
	}

	return nil
}

func InsertPlugin(ctx context.Context, db bun.IDB, plugin *models.Plugin) error {
	_, err := db.NewInsert().Model(plugin).Returning("*").Exec(ctx)
	return err
}

func GetPluginByName(ctx context.Context, db bun.IDB, name string) (*models.Plugin, error) {
	var plugin models.Plugin
	err := db.NewSelect().Model(&plugin).Where("name = ?", name).Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &plugin, nil
}

func GetPlugins(ctx context.Context, db bun.IDB) ([]*models.Plugin, error) {
	var plugins []*models.Plugin
	err := db.NewSelect().Model(&plugins).Order("name ASC").Scan(ctx)
	if err != nil {
		return nil, err
	}
	return plugins, nil
}

func SetPluginActive(ctx context.Context, db bun.IDB, plugin *models.Plugin, active bool) error {
	plugin.Active = active
	_, err := db.NewUpdate().Model(plugin).Column("active").WherePK().Exec(ctx)
	return err
}

// InstallAndActivatePlugin creates the plugin active when it does not exist
// yet, otherwise it turns it on.
func InstallAndActivatePlugin(ctx context.Context, db *bun.DB, name string) (*models.Plugin, error) {
	var plugin *models.Plugin
	err := db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var err error
		plugin, err = GetPluginByName(ctx, tx, name)
		if errors.Is(err, sql.ErrNoRows) {
			plugin = &models.Plugin{Name: name, PluginType: DEFAULT_PLUGIN_TYPE, Active: true}
			return InsertPlugin(ctx, tx, plugin)
		}
		if err != nil {
			return err
		}
		if plugin.Active {
			return nil
		}
		return SetPluginActive(ctx, tx, plugin, true)
	})
	if err != nil {
		return nil, err
	}
	return plugin, nil
}

// DeactivatePlugin turns the plugin off. An unknown plugin is left alone and
// nil is returned.
func DeactivatePlugin(ctx context.Context, db bun.IDB, name string) (*models.Plugin, error) {
	plugin, err := GetPluginByName(ctx, db, name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if err := SetPluginActive(ctx, db, plugin, false); err != nil {
		return nil, err
	}
	return plugin, nil
}
