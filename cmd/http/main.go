package main

import (
	"context"
	"medbridge-service/internal/app/config"
	"medbridge-service/internal/app/delivery/http/middlewares"
	"medbridge-service/internal/app/delivery/http/routers"
	"medbridge-service/internal/app/drivers/database"
	"medbridge-service/internal/app/drivers/logger"
	"medbridge-service/internal/app/drivers/messaging"
	"medbridge-service/internal/app/drivers/storage"
	"medbridge-service/internal/app/services/fhir_aidbox"
	"medbridge-service/internal/app/services/hl7v2"
	"medbridge-service/internal/app/services/hl7v2/consumer"
	"medbridge-service/internal/app/services/messagelog"
	redisrepo "medbridge-service/internal/app/services/shared/redis"
	miniostorage "medbridge-service/internal/app/services/shared/storage"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

func main() {
	driverConfig := config.NewDriverConfig()
	internalConfig := config.NewInternalConfig()

	log := logger.NewLogrusLogger(internalConfig)
	zapLogger := logger.NewZapLogger(driverConfig, internalConfig)
	defer zapLogger.Sync()

	location, err := time.LoadLocation(internalConfig.App.Timezone)
	if err != nil {
		log.Fatalf("Error loading location: %v", err)
	}
	time.Local = location

	mongoDB := database.NewMongoDB(driverConfig)
	redisClient := database.NewRedisClient(driverConfig)
	rabbitMQConn := messaging.NewRabbitMQ(driverConfig)
	minioClient := storage.NewMinio(driverConfig)
	chiRouter := chi.NewRouter()

	// Shared repositories
	redisRepository := redisrepo.NewRedisRepository(redisClient)
	messageLogRepository := messagelog.NewMessageLogMongoRepository(mongoDB, driverConfig.MongoDB.DbName)
	objectStorage := miniostorage.NewMinioStorage(
		minioClient,
		time.Duration(internalConfig.HL7v2.PresignedURLExpiryMinute)*time.Minute,
	)

	// FHIR store client
	fhirClient := fhir_aidbox.NewAidboxClient(internalConfig.FHIR.BaseUrl, zapLogger)

	// Pipeline
	hl7v2Usecase := hl7v2.NewHL7v2Usecase(
		zapLogger,
		fhirClient,
		redisRepository,
		messageLogRepository,
		objectStorage,
		internalConfig,
	)
	hl7v2Controller := hl7v2.NewHL7v2Controller(zapLogger, hl7v2Usecase, internalConfig)

	// Queue intake
	worker, err := consumer.NewWorker(rabbitMQConn, zapLogger, hl7v2Usecase, internalConfig)
	if err != nil {
		log.Fatalf("Failed to initialize queue worker: %v", err)
	}
	workerCtx, stopWorker := context.WithCancel(context.Background())
	defer stopWorker()
	go func() {
		if err := worker.Start(workerCtx); err != nil {
			log.Printf("Queue worker stopped: %v", err)
		}
	}()

	middlewares := middlewares.NewMiddlewares(zapLogger, internalConfig)
	routers.SetupRoutes(chiRouter, internalConfig, middlewares, hl7v2Controller)

	server := &http.Server{
		Addr:    internalConfig.App.Port,
		Handler: chiRouter,
	}

	go func() {
		err := server.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	<-c

	logrus.Println("Waiting for pending requests that already received by server to be processed..")

	stopWorker()

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Second*time.Duration(internalConfig.App.ShutdownTimeout),
	)
	defer cancel()

	err = server.Shutdown(shutdownCtx)
	if err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting")
}
