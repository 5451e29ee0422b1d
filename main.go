package main

import (
	"cipherdrive/config"
	"cipherdrive/internal/repo"
	"cipherdrive/internal/service"
	"cipherdrive/internal/storage"
	"cipherdrive/router"
	"context"
	"log"
)

// main initializes services and starts the HTTP server.
func main() {
	config.InitConfig()
	repo.InitMysql()
	repo.InitRedis()
	storage.InitMinio()

	service.EnsureAdminUser()

	ctx := context.Background()
	if repo.Redis != nil {
		if err := repo.EnableKeyspaceNotifications(ctx); err != nil {
			log.Printf("enable redis keyspace notifications failed: %v", err)
		} else {
			ready := make(chan struct{})
			go repo.ListenRedisExpired(ctx, repo.Redis, ready)
			<-ready
		}
	}

	go service.StartShareSweeper(ctx, config.AppConfig.SweepInterval)

	router := router.InitRouter()

	router.Run(":8000")
}
