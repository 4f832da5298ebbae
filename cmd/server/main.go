package main

import (
	"context"
	"log"

	"go.uber.org/fx"

	"financial-import-platform/internal/config"
	"financial-import-platform/internal/container"
	"financial-import-platform/internal/server"
)

func main() {
	app := fx.New(
		container.Module,
		fx.Invoke(func(
			lc fx.Lifecycle,
			cfg *config.Config,
			srv *server.Server,
		) {
			lc.Append(fx.Hook{
				OnStart: func(ctx context.Context) error {
					log.Printf("Starting Financial Import Platform on port %s", cfg.Server.Port)

					go func() {
						if err := srv.Start(ctx); err != nil {
							log.Printf("Server error: %v", err)
						}
					}()

					return nil
				},
				OnStop: func(ctx context.Context) error {
					return srv.Stop()
				},
			})
		}),
	)

	app.Run()
}
