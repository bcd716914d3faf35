package assinafy

import "go.uber.org/fx"

var Module = fx.Module("assinafy",
	fx.Provide(NewClient),
)
