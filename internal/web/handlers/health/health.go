package health

import (
	"time"

	"github.com/thomiceli/gistsearch/internal/config"
	"github.com/thomiceli/gistsearch/internal/web/context"
)

func Ping(ctx *context.Context) error {
	return ctx.PlainText(200, "pong")
}

func Healthcheck(ctx *context.Context) error {
	return ctx.Json(map[string]interface{}{
		"gistsearch": "ok",
		"version":    config.GistsearchVersion,
		"time":       time.Now().Format(time.RFC3339),
	})
}
