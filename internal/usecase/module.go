package usecase

import "go.uber.org/fx"

var Module = fx.Module("usecase",
	fx.Provide(NewReadinessWaiter),
	fx.Provide(NewSignerResolver),
	fx.Provide(NewSignatureUsecase),
	fx.Provide(NewRentalUsecase),
	fx.Provide(NewWebhookUsecase),
)
