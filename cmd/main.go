package main

import (
	"context"
	"log"

	"staygo/config"
	"staygo/internal/module/booking/handler"
	"staygo/internal/module/booking/repositories"
	"staygo/internal/module/booking/usecases"
	"staygo/internal/pkg/database"
	"staygo/internal/pkg/http"
	"staygo/internal/pkg/httpclient"
	log_internal "staygo/internal/pkg/log"
	"staygo/internal/pkg/messagestream"
	"staygo/internal/pkg/middleware"
	"staygo/internal/pkg/redis"
	"staygo/internal/pkg/scheduler"
	router "staygo/internal/route"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/hibiken/asynq"
)

func main() {
	cfg := config.InitConfig()

	app, messageRouters, sch, bookingHandler := initService(cfg)

	for _, r := range messageRouters {
		ctx := context.Background()
		go func(r *message.Router) {
			err := r.Run(ctx)
			if err != nil {
				log.Fatal(err)
			}
		}(r)
	}

	// scheduler worker for finalize-stay tasks
	go sch.StartHandler(&cfg.Redis,
		[]string{scheduler.TypeFinalizeStay},
		[]func(ctx context.Context, t *asynq.Task) error{bookingHandler.FinalizeStay},
	)
	go sch.StartMonitoring(&cfg.Redis)

	// start http server
	http.StartHttpServer(app, cfg.HttpServer.Port)
}

func initService(cfg *config.Config) (*fiber.App, []*message.Router, *scheduler.Scheduler, *handler.BookingHandler) {

	// init database
	db := database.GetConnection(&cfg.Database)
	// init redis
	redisClient := redis.SetupClient(&cfg.Redis)
	rs := redis.SetupRedsync(redisClient)
	// init logger
	logger := log_internal.Setup()
	// init http client
	cb := httpclient.InitCircuitBreaker(&cfg.HttpClient, cfg.HttpClient.Type)
	httpClient := httpclient.InitHttpClient(&cfg.HttpClient, cb)

	ctx := context.Background()

	// init scheduler
	sch := &scheduler.Scheduler{Log: logger}
	schedulerClient := sch.InitClient(&cfg.Redis)
	schedulerInspector := sch.InitInspector(&cfg.Redis)

	// init message stream
	amqp := messagestream.NewAmpq(&cfg.MessageStream)

	subscriber, err := amqp.NewSubscriber()
	if err != nil {
		logger.Ctx(ctx).Error("failed to create subscriber")
	}

	publisher, err := amqp.NewPublisher()
	if err != nil {
		logger.Ctx(ctx).Error("failed to create publisher")
	}

	bookingRepo := repositories.New(db, logger, httpClient, redisClient, rs, schedulerClient, schedulerInspector, &cfg.UserService, &cfg.PaymentProvider, &cfg.Booking)
	bookingUsecase := usecases.New(bookingRepo, logger, publisher, &cfg.Booking, &cfg.PaymentProvider)
	m := &middleware.Middleware{
		Log:  logger,
		Repo: bookingRepo,
	}

	v := validator.New()
	bookingHandler := &handler.BookingHandler{
		Log:       logger,
		Validator: v,
		Usecase:   bookingUsecase,
		Publish:   publisher,
	}

	var messageRouters []*message.Router

	paymentOutcomeRouter, err := messagestream.NewRouter(publisher, "payment_outcome_poisoned", "payment_outcome_handler", "payment_outcome", subscriber, bookingHandler.ConsumePaymentOutcomeQueue)
	if err != nil {
		logger.Ctx(ctx).Error("failed to create payment_outcome router")
	}

	messageRouters = append(messageRouters, paymentOutcomeRouter)

	serverHttp := http.SetupHttpEngine()

	r := router.Initialize(serverHttp, bookingHandler, m)

	return r, messageRouters, sch, bookingHandler
}
