//go:build wireinject

package app

import (
	"context"

	"snipedash/internal/config"

	"github.com/google/wire"
)

func buildAppWithWire(ctx context.Context, cfg *config.Config) (*App, error) {
	wire.Build(
		provideAppBuilder,
		wire.Bind(new(appBuilderDeps), new(*AppBuilder)),
		provideAppFromBuilder,
	)
	return nil, nil
}
