package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"lockout_web/internal/api"
	"lockout_web/internal/cf"
	"lockout_web/internal/models"
	"lockout_web/internal/repository"
	"lockout_web/internal/service"
	"lockout_web/internal/storage"
	"lockout_web/pkg/config"
)

func main() {
	// Optional .env for local runs; real deployments set the environment.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := storage.NewPostgresDB(cfg.DB.Host, cfg.DB.User, cfg.DB.Password, cfg.DB.Name, cfg.DB.Port)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	if err := db.AutoMigrate(&models.Room{}, &models.RoomProblem{}); err != nil {
		log.Fatalf("Failed to auto migrate database: %v", err)
	}

	repos := repository.NewRepositories(db)
	client := cf.NewClient(cfg.CF.BaseURL, cfg.CF.Timeout())
	services := service.NewServices(repos, client, cfg)

	r := gin.Default()
	api.SetupRoutes(r, services)

	if err := r.Run(cfg.Server.Address); err != nil {
		log.Fatalf("Failed to run server: %v", err)
	}
}
