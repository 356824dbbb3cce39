package main

import (
	"log"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/labstack/echo/v4"
	echoMw "github.com/labstack/echo/v4/middleware"
	"github.com/linksclub/teesheet-service/config"
	"github.com/linksclub/teesheet-service/internal/cache"
	"github.com/linksclub/teesheet-service/internal/consumer"
	"github.com/linksclub/teesheet-service/internal/handler"
	"github.com/linksclub/teesheet-service/internal/middleware"
	"github.com/linksclub/teesheet-service/internal/models"
	"github.com/linksclub/teesheet-service/internal/rates"
	"github.com/linksclub/teesheet-service/internal/repository"
	"github.com/linksclub/teesheet-service/internal/schedule"
	"github.com/linksclub/teesheet-service/internal/service"
	"github.com/linksclub/teesheet-service/pkg/database"
	"github.com/linksclub/teesheet-service/pkg/rabbitmq"
	"github.com/linksclub/teesheet-service/pkg/redislock"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg := config.Load()

	db := database.NewPostgresDB(cfg.DSN())

	// Redis: backs the per-slot and per-resource locks
	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Fatalf("invalid redis url: %v", err)
	}
	rdb := redis.NewClient(redisOpts)
	locker := redislock.New(rdb,
		redislock.WithTTL(cfg.LockTTL),
		redislock.WithRetries(cfg.LockRetries, cfg.LockBackoff),
	)

	// RabbitMQ publisher: booking lifecycle + fee totals out
	publisher, err := rabbitmq.NewPublisher(cfg.RabbitURL)
	if err != nil {
		log.Fatalf("failed to connect to RabbitMQ: %v", err)
	}
	defer publisher.Close()

	// RabbitMQ consumer: member directory sync in
	mqConsumer, err := rabbitmq.NewConsumer(cfg.RabbitURL)
	if err != nil {
		log.Fatalf("failed to connect to RabbitMQ: %v", err)
	}
	defer mqConsumer.Close()

	msgs, err := mqConsumer.Consume()
	if err != nil {
		log.Fatalf("failed to start consuming: %v", err)
	}

	// Repositories
	teeTimeRepo := repository.NewTeeTimeRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	rateRepo := repository.NewRateRepository(db)
	memberRepo := repository.NewMemberRepository(db)
	resourceRepo := repository.NewResourceRepository(db)

	consumer.NewMemberConsumer(memberRepo).Start(msgs)

	// Services
	clock := clockwork.NewRealClock()
	holidays := schedule.NewStaticHolidays(cfg.Holidays)
	rateCache := cache.New[[]models.GreenFeeRate](5*time.Minute, clock)
	resolver := rates.NewResolver(rateRepo, holidays, rateCache)

	bookingSvc := service.NewBookingService(
		teeTimeRepo, courseRepo, memberRepo, resourceRepo,
		resolver, holidays, locker, publisher, clock, cfg.PartialCheckIn,
	)
	sheetSvc := service.NewTeeSheetService(teeTimeRepo, courseRepo, holidays)

	// Echo
	e := echo.New()
	e.HTTPErrorHandler = middleware.ErrorHandler
	e.Validator = handler.NewValidator()
	e.Use(echoMw.RequestLoggerWithConfig(echoMw.RequestLoggerConfig{
		LogStatus: true,
		LogURI:    true,
		LogMethod: true,
		LogValuesFunc: func(c echo.Context, v echoMw.RequestLoggerValues) error {
			log.Printf("%s %s %d", v.Method, v.URI, v.Status)
			return nil
		},
	}))
	e.Use(echoMw.Recover())

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok", "service": "teesheet-service"})
	})

	handler.NewTeeTimeHandler(bookingSvc, sheetSvc).RegisterRoutes(e)

	log.Printf("Tee Sheet Service starting on :%s", cfg.ServerPort)
	e.Logger.Fatal(e.Start(":" + cfg.ServerPort))
}
