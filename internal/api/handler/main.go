package handler

import (
	"net/http"

	"github.com/hiendaovinh/toolkit/pkg/httpx-echo"
	"github.com/labstack/echo-contrib/pprof"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/samber/do"
)

type Config struct {
	Container   *do.Injector
	Mode        string
	Origins     []string
	AdminAPIKey string
}

func New(cfg *Config) (http.Handler, error) {
	r := echo.New()
	r.Pre(middleware.RemoveTrailingSlash())
	if cfg.Mode == "debug" {
		r.Debug = true
		pprof.Register(r)
	}

	r.JSONSerializer = httpx.SegmentJSONSerializer{}
	r.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "${time_rfc3339}\t${method}\t${uri}\t${status}\t${latency_human}\n",
	}))
	r.Use(middleware.Recover())

	r.GET("", func(c echo.Context) error {
		return c.String(http.StatusOK, "🤖")
	})

	routesAPIv1 := r.Group("/api/v1")
	{
		cors := middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins:     cfg.Origins,
			AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, HeaderAPIKey},
			AllowCredentials: true,
			MaxAge:           60 * 60,
		})

		routesAPIv1.Use(cors)
		routesAPIv1.Use(AuthnAdmin(cfg.AdminAPIKey))
		routesAPIv1.GET("", Hello)

		q := groupQuestion{cfg.Container}
		routesAPIv1.GET("/question/:qid", q.Show)
		routesAPIv1.GET("/question/:qid/copies", q.CopyHistory)
		routesAPIv1.POST("/question/:qid/copy", q.Copy, middlewareCopyRateLimit(cfg.Container))
		routesAPIv1.GET("/group/:gid/questions", q.GroupQuestions)
		routesAPIv1.GET("/copy-report/:id", q.CopyReport)

		p := groupPlugin{cfg.Container}
		routesAPIv1.GET("/plugins", p.List)
		routesAPIv1.POST("/plugin/:name/activate", p.Activate)
		routesAPIv1.POST("/plugin/:name/deactivate", p.Deactivate)
	}

	return r, nil
}

func Hello(c echo.Context) error {
	return httpx.RestAbort(c, "hello world", nil)
}
