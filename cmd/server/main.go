package main

import (
	"time"

	"go.uber.org/zap"

	"github.com/jaeho19/sdc-lab-dashboard2-sub001/internal/config"
	"github.com/jaeho19/sdc-lab-dashboard2-sub001/internal/db"
	"github.com/jaeho19/sdc-lab-dashboard2-sub001/internal/handler"
	"github.com/jaeho19/sdc-lab-dashboard2-sub001/internal/httpserver"
	"github.com/jaeho19/sdc-lab-dashboard2-sub001/internal/mq"
	redisclient "github.com/jaeho19/sdc-lab-dashboard2-sub001/internal/redis"
	"github.com/jaeho19/sdc-lab-dashboard2-sub001/internal/repository"
	"github.com/jaeho19/sdc-lab-dashboard2-sub001/internal/service/auth"
	"github.com/jaeho19/sdc-lab-dashboard2-sub001/internal/service/project"
	"github.com/jaeho19/sdc-lab-dashboard2-sub001/internal/service/sweeper"
	"github.com/jaeho19/sdc-lab-dashboard2-sub001/internal/service/template"
	"github.com/jaeho19/sdc-lab-dashboard2-sub001/internal/util"
)

func main() {
	cfg := config.Load()

	logger := util.NewLogger()
	defer logger.Sync()

	// Ordinary request pool.
	dbConn, err := db.NewConnection(cfg.DB, logger)
	if err != nil {
		logger.Fatal("DB initialization failed", zap.Error(err))
	}
	defer dbConn.Close()

	// Service-role pool: only the cascade deleter and the sweeper see it.
	svcConn, err := db.NewServiceConnection(cfg.DB, logger)
	if err != nil {
		logger.Fatal("Service-role DB initialization failed", zap.Error(err))
	}
	defer svcConn.Close()

	rdb := redisclient.NewClient(cfg.Redis)
	defer rdb.Close()

	publisher, err := mq.NewPublisher(cfg.MQ.URL)
	if err != nil {
		logger.Fatal("MQ publisher initialization failed", zap.Error(err))
	}
	defer publisher.Close()

	location, err := time.LoadLocation(cfg.Sweeper.Timezone)
	if err != nil {
		logger.Fatal("Invalid sweeper timezone",
			zap.String("timezone", cfg.Sweeper.Timezone),
			zap.Error(err),
		)
	}

	// Repositories on the request pool.
	memberRepo := repository.NewMemberRepository(dbConn, logger)
	projectRepo := repository.NewProjectRepository(dbConn, logger)
	milestoneRepo := repository.NewMilestoneRepository(dbConn, logger)
	checklistRepo := repository.NewChecklistRepository(dbConn, logger)
	projectMemberRepo := repository.NewProjectMemberRepository(dbConn, logger)
	notificationRepo := repository.NewNotificationRepository(dbConn, logger)
	weeklyGoalRepo := repository.NewWeeklyGoalRepository(dbConn)

	// Repositories on the service-role pool.
	svcProjectRepo := repository.NewProjectRepository(svcConn, logger)
	svcMilestoneRepo := repository.NewMilestoneRepository(svcConn, logger)
	svcChecklistRepo := repository.NewChecklistRepository(svcConn, logger)
	svcProjectMemberRepo := repository.NewProjectMemberRepository(svcConn, logger)
	svcWeeklyGoalRepo := repository.NewWeeklyGoalRepository(svcConn)
	svcNotificationRepo := repository.NewNotificationRepository(svcConn, logger)

	// Services.
	authService := auth.NewService(memberRepo, cfg.JWT.Secret)
	seeder := template.NewSeeder(milestoneRepo, checklistRepo, logger)
	projectService := project.NewService(
		projectRepo, milestoneRepo, checklistRepo, projectMemberRepo, seeder, logger,
	)
	deleter := project.NewDeleter(
		svcProjectRepo, svcMilestoneRepo, svcChecklistRepo,
		svcProjectMemberRepo, svcWeeklyGoalRepo,
		memberRepo, publisher, logger,
	)

	deduper := util.NewDeduper(rdb, 48*time.Hour)
	deadlineSweeper := sweeper.New(
		svcProjectRepo, svcProjectMemberRepo, svcNotificationRepo,
		publisher, deduper,
		cfg.Sweeper.Offsets, location, logger,
	)

	// Handlers.
	authHandler := handler.NewAuthHandler(authService, logger)
	projectHandler := handler.NewProjectHandler(projectService, deleter, logger)
	notificationHandler := handler.NewNotificationHandler(notificationRepo, logger)
	goalHandler := handler.NewGoalHandler(weeklyGoalRepo, logger)
	sweepHandler := handler.NewSweepHandler(deadlineSweeper, cfg.Sweeper.CronSecret, logger)

	router := httpserver.NewRouter(
		authHandler, projectHandler, notificationHandler, goalHandler, sweepHandler,
		cfg.JWT.Secret, dbConn, logger,
	)

	logger.Info("Starting server", zap.String("port", cfg.Server.Port))
	if err := router.Run(cfg.Server.Port); err != nil {
		logger.Fatal("Server exited", zap.Error(err))
	}
}
