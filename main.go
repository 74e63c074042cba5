package main

import (
	"log"

	"gemwall/internal/api"
	"gemwall/internal/config"
	"gemwall/internal/db"
	"gemwall/internal/store"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: no .env file loaded: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Error initializing logger: %v", err)
	}
	defer logger.Sync()

	database, err := db.InitDB(cfg.DSN())
	if err != nil {
		logger.Fatal("initializing database", zap.Error(err))
	}
	defer database.Close()

	server := api.NewServer(store.New(database), cfg, logger)

	logger.Info("server starting", zap.String("port", cfg.ServerPort))
	if err := server.Start(":" + cfg.ServerPort); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
