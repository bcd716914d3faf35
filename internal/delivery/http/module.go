package http

import (
	"go.uber.org/fx"

	"locar-esign/internal/delivery/http/handler"
	"locar-esign/internal/delivery/http/router"
)

var Module = fx.Module("http",
	fx.Provide(
		handler.NewRentalHandler,
		handler.NewWebhookHandler,
		handler.NewHealthHandler,
		router.NewRouter,
	),
)
