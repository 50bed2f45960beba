package main

import (
	"go.uber.org/zap"

	"github.com/jaeho19/sdc-lab-dashboard2-sub001/internal/config"
	"github.com/jaeho19/sdc-lab-dashboard2-sub001/internal/db"
	"github.com/jaeho19/sdc-lab-dashboard2-sub001/internal/mq"
	"github.com/jaeho19/sdc-lab-dashboard2-sub001/internal/mqhandler"
	"github.com/jaeho19/sdc-lab-dashboard2-sub001/internal/repository"
	"github.com/jaeho19/sdc-lab-dashboard2-sub001/internal/util"
)

func main() {
	cfg := config.Load()

	logger := util.NewLogger()
	defer logger.Sync()

	dbConn, err := db.NewServiceConnection(cfg.DB, logger)
	if err != nil {
		logger.Fatal("DB initialization failed", zap.Error(err))
	}
	defer dbConn.Close()

	deliveryRepo := repository.NewDeliveryRepository(dbConn)
	deliveryHandler := mqhandler.NewDeadlineDeliveryHandler(deliveryRepo, logger)

	consumer, err := mq.NewConsumer(
		cfg.MQ.URL,
		"deadline_delivery_queue",
		mq.RoutingKeyDeadlineNotification,
		logger,
	)
	if err != nil {
		logger.Fatal("Failed to init consumer", zap.Error(err))
	}
	defer consumer.Close()

	consumer.SetHandler(deliveryHandler.HandleDeadlineNotification)

	logger.Info("Worker started, consuming deadline notification events")
	if err := consumer.StartConsuming(); err != nil {
		logger.Fatal("Consumer exited", zap.Error(err))
	}
}
