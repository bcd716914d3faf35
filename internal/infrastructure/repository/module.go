package repository

import (
	"go.uber.org/fx"

	"locar-esign/internal/infrastructure/assinafy"
)

var Module = fx.Module("repository",
	fx.Provide(NewRentalRepository),
	fx.Provide(
		fx.Annotate(
			NewAPILogRepository,
			fx.As(new(assinafy.APILogSaver)),
		),
	),
)
