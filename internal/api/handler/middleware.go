package handler

import (
	"crypto/subtle"
	"errors"

	"surveycopy/internal/interfaces"
	"surveycopy/internal/pkg/limiter"
	"surveycopy/internal/services"

	"github.com/go-redis/redis_rate/v10"
	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/hiendaovinh/toolkit/pkg/httpx-echo"
	"github.com/labstack/echo/v4"
	"github.com/samber/do"
)

const HeaderAPIKey = "X-Api-Key"

// AuthnAdmin lets through requests carrying the admin api key.
func AuthnAdmin(apiKey string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(HeaderAPIKey)
			if header == "" || apiKey == "" || subtle.ConstantTimeCompare([]byte(header), []byte(apiKey)) != 1 {
				httpx.Abort(c, errorx.Wrap(errors.New("unauthorized"), errorx.Authn), -1)
				return nil
			}
			return next(c)
		}
	}
}

func middlewareCopyRateLimit(container *do.Injector) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			l, err := do.Invoke[interfaces.Limiter](container)
			if err != nil {
				return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
			}

			serviceConfig, err := do.Invoke[*services.ServiceConfig](container)
			if err != nil {
				return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
			}

			ctx := c.Request().Context()
			perMinute, err := serviceConfig.GetIntConfig(ctx, services.CONFIG_COPY_RATE_LIMIT_PER_MINUTE, services.COPY_RATE_LIMIT_PER_MINUTE)
			if err != nil || perMinute <= 0 {
				perMinute = services.COPY_RATE_LIMIT_PER_MINUTE
			}

			key := services.LimitKeyCopyQuestion(c.Request().Header.Get(HeaderAPIKey))
			if err := l.Allow(ctx, key, redis_rate.PerMinute(perMinute)); err != nil {
				if errors.Is(err, limiter.ErrRateLimited) {
					return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.RateLimiting))
				}
				return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
			}

			return next(c)
		}
	}
}
