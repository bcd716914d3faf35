package main

import (
	"go.uber.org/fx"

	"locar-esign/internal/config"
	deliveryhttp "locar-esign/internal/delivery/http"
	"locar-esign/internal/infrastructure/assinafy"
	"locar-esign/internal/infrastructure/database"
	"locar-esign/internal/infrastructure/logger"
	"locar-esign/internal/infrastructure/pdfgen"
	"locar-esign/internal/infrastructure/redis"
	"locar-esign/internal/infrastructure/repository"
	"locar-esign/internal/infrastructure/storage"
	"locar-esign/internal/server"
	"locar-esign/internal/usecase"
	"locar-esign/internal/worker"
)

func main() {
	fx.New(
		// Configuration
		config.Module,

		// Infrastructure
		logger.Module,
		database.Module,
		redis.Module,
		storage.Module,
		pdfgen.Module,
		assinafy.Module,
		repository.Module,

		// Business Logic
		usecase.Module,

		// Background work
		worker.Module,

		// Delivery
		deliveryhttp.Module,

		// Server
		server.Module,
	).Run()
}
