package main

import (
	"medibook/internal/catalog/handler"
	"medibook/internal/catalog/repository"
	"medibook/internal/catalog/service"
	"medibook/internal/catalog/validator"
	"medibook/pkg/app"
	"medibook/pkg/config"
)

const ServiceName = "catalog"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()

	cfg.Log.Info("Starting Catalog service")
	providerService, testItemService := initServices(cfg)

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(
		handler.NewProviderHandler(providerService, cfg.Log),
		handler.NewTestItemHandler(testItemService, cfg.Log),
	)
	serverApp.Run(cfg.GracefulShutdown)
}

func initServices(cfg *config.Config) (service.ProviderService, service.TestItemService) {
	catalogValidator := validator.NewCatalogValidator(cfg.Log)

	providerRepo := repository.NewMongoProviderRepository(cfg)
	providerService := service.NewProviderService(providerRepo, catalogValidator, cfg)

	testItemRepo := repository.NewMongoTestItemRepository(cfg)
	testItemService := service.NewTestItemService(testItemRepo, catalogValidator, cfg)

	cfg.Log.Info("Catalog services initialized", "database", cfg.MongoDatabaseName)
	return providerService, testItemService
}
