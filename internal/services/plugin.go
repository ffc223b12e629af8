package services

import (
	"context"
	"errors"

	"surveycopy/internal/datastore"
	"surveycopy/internal/models"

	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/samber/do"
	"github.com/uptrace/bun"
)

type ServicePlugin struct {
	container  *do.Injector
	postgresDB *bun.DB
}

func NewServicePlugin(container *do.Injector) (*ServicePlugin, error) {
	postgresDB, err := do.Invoke[*bun.DB](container)
	if err != nil {
		return nil, err
	}

	return &ServicePlugin{container, postgresDB}, nil
}

func (service *ServicePlugin) List(ctx context.Context) ([]*models.Plugin, error) {
	plugins, err := datastore.GetPlugins(ctx, service.postgresDB)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}
	return plugins, nil
}

func (service *ServicePlugin) InstallAndActivate(ctx context.Context, name string) (*models.Plugin, error) {
	if name == "" {
		return nil, errorx.Wrap(errors.New("missing plugin name"), errorx.Validation)
	}

	plugin, err := datastore.InstallAndActivatePlugin(ctx, service.postgresDB, name)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}
	return plugin, nil
}

func (service *ServicePlugin) Deactivate(ctx context.Context, name string) (*models.Plugin, error) {
	plugin, err := datastore.DeactivatePlugin(ctx, service.postgresDB, name)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}
	return plugin, nil
}
