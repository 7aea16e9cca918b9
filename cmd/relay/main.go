package main

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-lst-sync/internal/config"
	"github.com/MKhiriev/go-lst-sync/internal/handler"
	"github.com/MKhiriev/go-lst-sync/internal/logger"
	"github.com/MKhiriev/go-lst-sync/internal/server"
	"github.com/MKhiriev/go-lst-sync/internal/service"
	"github.com/MKhiriev/go-lst-sync/internal/store"
	"github.com/MKhiriev/go-lst-sync/models"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	info := models.NewAppBuildInfo(orNA(buildVersion), orNA(buildDate), orNA(buildCommit))

	log := logger.NewLogger("relay")
	cfg, err := config.GetRelayConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("error getting configs")
	}
	if cfg.App.Version == "" {
		cfg.App.Version = info.BuildVersion()
	}

	if cfg.App.IssueTokenFor != "" {
		issueToken(cfg, log)
		return
	}

	printBuildInfo(info)

	ctx := log.WithContext(context.Background())

	storages, err := store.NewStorages(ctx, cfg.Storage.DB, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating storages")
	}
	defer func() {
		if err := storages.Close(); err != nil {
			log.Err(err).Msg("error closing storages")
		}
	}()

	services, err := service.NewServices(storages, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating services")
	}

	handlers, err := handler.NewHandlers(services, cfg.Server, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating handlers")
	}

	srv, err := server.NewServer(handlers, cfg.Server, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating server")
	}

	log.Info().Str("address", cfg.Server.HTTPAddress).Msg("relay starting")
	srv.RunServer()
}

// issueToken prints a bearer token for a device identity. The relay keeps no
// user table, so this is the only way credentials are minted.
func issueToken(cfg *config.RelayConfig, log *logger.Logger) {
	token, err := service.NewAuthService(cfg.App, log).CreateToken(log.WithContext(context.Background()), cfg.App.IssueTokenFor)
	if err != nil {
		log.Fatal().Err(err).Msg("error issuing token")
	}
	fmt.Println(token.SignedString)
}

func printBuildInfo(info models.AppBuildInfo) {
	fmt.Printf("Build version: %s\n", info.BuildVersion())
	fmt.Printf("Build date: %s\n", info.BuildDate())
	fmt.Printf("Build commit: %s\n", info.BuildCommit())
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
