package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	_ "time/tzdata"

	"github.com/bookify/order-service/config"
	"github.com/bookify/order-service/internal/client/bookservice"
	"github.com/bookify/order-service/internal/client/userservice"
	"github.com/bookify/order-service/internal/controller"
	circuitbreaker "github.com/bookify/order-service/internal/infrastructure/circuit-breaker"
	"github.com/bookify/order-service/internal/infrastructure/database/postgres"
	"github.com/bookify/order-service/internal/infrastructure/message-queue/kafka"
	paymentgateway "github.com/bookify/order-service/internal/infrastructure/payment-gateway"
	"github.com/bookify/order-service/internal/infrastructure/tracing"
	localmiddleware "github.com/bookify/order-service/internal/middleware"
	"github.com/bookify/order-service/internal/notification"
	"github.com/bookify/order-service/internal/repository"
	"github.com/bookify/order-service/internal/service"
	"github.com/bookify/order-service/pkg/response"
	"github.com/go-co-op/gocron/v2"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log.Logger = logger

	config := config.CreateNewConfig()
	if err := config.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	if err := postgres.RunMigrations(config.PostgreSQLConfig.DBUsername, config.PostgreSQLConfig.DBPassword, config.PostgreSQLConfig.DBHost, config.PostgreSQLConfig.DBPort, config.PostgreSQLConfig.DBName); err != nil {
		log.Fatal().Err(err).Msg("failed to run database migrations")
	}

	db, err := postgres.GetDBInstance(config.PostgreSQLConfig.DBUsername, config.PostgreSQLConfig.DBPassword, config.PostgreSQLConfig.DBHost, config.PostgreSQLConfig.DBPort, config.PostgreSQLConfig.DBName)
	if err != nil {
		panic(err)
	}

	traceProvider, err := tracing.InitTracing(config.TracingConfig.CollectorHost)
	if err != nil {
		fmt.Println(err)
	}

	defer func() {
		if err := traceProvider.Shutdown(context.Background()); err != nil {
			fmt.Println(err)
		}
	}()

	tracer := traceProvider.Tracer("order-service")

	e := echo.New()
	g := e.Group("/api/v1")

	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx, span := tracer.Start(c.Request().Context(), fmt.Sprintf("[%s] %s", c.Request().Method, c.Path()))
			defer span.End()

			req := c.Request()
			c.SetRequest(req.WithContext(ctx))

			return next(c)
		}
	})

	// Used empty string so that metrics are not prefixed with the service name making it easier to aggregate across services
	e.Use(echoprometheus.NewMiddleware(""))
	go func() {
		metrics := echo.New()
		metrics.GET("/metrics", echoprometheus.NewHandler())
		if err := metrics.Start(fmt.Sprintf(":%s", config.MetricsPort)); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start metrics server")
		}
	}()

	e.Use(localmiddleware.Logger)

	g.GET("/ping", func(c echo.Context) error {
		return response.WriteSuccessResponse(c, "pong", nil)
	})

	kafkaProducer := kafka.CreateKafkaProducer(config)

	cb := circuitbreaker.CreateCircuitBreaker("order-service")

	vnpayClient := paymentgateway.CreateVNPayClient(config, cb)
	bookClient := bookservice.CreateBookServiceClient(config, cb)
	userClient := userservice.CreateUserServiceClient(config)
	notifier := notification.CreateSMTPNotifier(config)

	orderRepo := repository.CreateOrderRepository(db)
	orderSvc := service.CreateOrderService(orderRepo, vnpayClient, bookClient, userClient, notifier, kafkaProducer, config)
	controller.CreateOrderController(g, orderSvc, localmiddleware.VerifyToken(config.JWTSecret), localmiddleware.RequireAdmin)

	s, err := gocron.NewScheduler()
	if err != nil {
		panic(err)
	}

	_, err = s.NewJob(
		gocron.DurationJob(
			10*time.Minute,
		),
		gocron.NewTask(
			orderSvc.RestoreExpiredOrderStocks,
		),
	)
	if err != nil {
		panic(err)
	}

	s.Start()

	e.Logger.Fatal(e.Start(fmt.Sprintf(":%s", config.ServicePort)))
}
