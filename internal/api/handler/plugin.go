package handler

import (
	"surveycopy/internal/services"

	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/hiendaovinh/toolkit/pkg/httpx-echo"
	"github.com/labstack/echo/v4"
	"github.com/samber/do"
)

type groupPlugin struct {
	container *do.Injector
}

func (gr *groupPlugin) List(c echo.Context) error {
	servicePlugin, err := do.Invoke[*services.ServicePlugin](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	plugins, err := servicePlugin.List(c.Request().Context())
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	return httpx.RestAbort(c, plugins, nil)
}

func (gr *groupPlugin) Activate(c echo.Context) error {
	servicePlugin, err := do.Invoke[*services.ServicePlugin](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	plugin, err := servicePlugin.InstallAndActivate(c.Request().Context(), c.Param("name"))
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	return httpx.RestAbort(c, plugin, nil)
}

func (gr *groupPlugin) Deactivate(c echo.Context) error {
	servicePlugin, err := do.Invoke[*services.ServicePlugin](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	plugin, err := servicePlugin.Deactivate(c.Request().Context(), c.Param("name"))
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	return httpx.RestAbort(c, plugin, nil)
}
