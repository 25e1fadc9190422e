package main

import (
	"innkeep/internal/booking/events"
	"innkeep/internal/booking/handler"
	"innkeep/internal/booking/repository"
	"innkeep/internal/booking/service"
	"innkeep/internal/booking/validator"
	"innkeep/pkg/app"
	"innkeep/pkg/client"
	"innkeep/pkg/config"
)

const ServiceName = "booking"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting Booking service")

	bookingService, publisher := initServices(cfg)
	defer func() {
		if err := publisher.Close(); err != nil {
			cfg.Log.Error("Failed to close event publisher", "error", err)
		}
	}()

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(handler.NewBookingHandler(bookingService, cfg.Log))
	serverApp.Run()
}

func initServices(cfg *config.Config) (*service.BookingService, events.Publisher) {
	publisher, err := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaBookingTopic, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to initialize event publisher", "error", err)
	}

	hotelClient := client.NewHotelClient(cfg.HotelBaseURL, cfg.RetryPolicy(), cfg.Log)
	bookingRepo := repository.NewMongoBookingRepository(cfg)
	bookingService := service.NewBookingService(
		bookingRepo,
		validator.NewBookingValidator(),
		hotelClient,
		publisher,
		cfg.Log,
	)

	cfg.Log.Info("Booking service initialized",
		"database", cfg.MongoDatabaseName,
		"hotel_base_url", cfg.HotelBaseURL,
	)
	return bookingService, publisher
}
