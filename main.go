package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"verify-station/broadcaster"
	"verify-station/config"
	"verify-station/controllers/idgen"
	"verify-station/database"
	"verify-station/migration"
	"verify-station/pinguard"
	"verify-station/repositories"
	"verify-station/routes"
	"verify-station/services"

	"github.com/gofiber/fiber/v2"
)

func main() {

	config.LoadConfig()
	idgen.Init()

	app := fiber.New()

	// Connect to database
	db, err := database.Open()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Auto migrate models
	if err := migration.Migrate(db); err != nil {
		log.Fatalf("Failed to auto migrate: %v", err)
	}

	jobRepo := repositories.NewJobRepository(db)
	if err := jobRepo.EnsureTodayShift(); err != nil {
		log.Fatalf("Failed to prepare today's shift stats: %v", err)
	}

	deps := &routes.Deps{
		DB:        db,
		Events:    broadcaster.New(),
		Guard:     pinguard.New(config.SupervisorPIN),
		Indicator: services.NewIndicator(config.UseGPIO),
		Mailer:    services.NewMailerFromConfig(),
	}

	// Setup CORS middleware
	config.SetupCORS(app)

	// Setup routes
	routes.Setup(app, deps)

	// Drop the relays on shutdown so the alarm never stays latched
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		deps.Indicator.AllOff()
		_ = app.Shutdown()
	}()

	port := config.APP_PORT
	fmt.Println("🚀 " + config.LineName + " listening on port " + port)

	if err := app.Listen(":" + port); err != nil {
		log.Fatal(err)
	}
}
