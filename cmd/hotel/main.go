package main

import (
	"innkeep/internal/hotel/handler"
	"innkeep/internal/hotel/repository"
	"innkeep/internal/hotel/service"
	"innkeep/pkg/app"
	"innkeep/pkg/config"
	"innkeep/pkg/contracts"
)

const ServiceName = "hotel"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting Hotel service")

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(initHandlers(cfg)...)
	serverApp.Run()
}

func initHandlers(cfg *config.Config) []contracts.Handler {
	roomRepo := repository.NewMongoRoomRepository(cfg)
	holdRepo := repository.NewMongoRoomHoldRepository(cfg)
	lockRepo := repository.NewMongoHoldLockRepository(cfg)

	roomService := service.NewRoomService(roomRepo, holdRepo, cfg.Log)
	availabilityService := service.NewAvailabilityService(cfg, roomRepo, holdRepo, lockRepo, cfg.Log)

	cfg.Log.Info("Hotel service initialized", "database", cfg.MongoDatabaseName)
	return []contracts.Handler{
		handler.NewRoomHandler(roomService, cfg.Log),
		handler.NewRoomInternalHandler(availabilityService, cfg.Log),
	}
}
