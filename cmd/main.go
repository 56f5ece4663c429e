package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	confirmPaymentHandler "github.com/kitchrent/KRM-SettlementService/internal/api/handlers/confirm_booking_payment"
	createBookingHandler "github.com/kitchrent/KRM-SettlementService/internal/api/handlers/create_booking"
	decideBookingHandler "github.com/kitchrent/KRM-SettlementService/internal/api/handlers/decide_booking"
	extendStorageHandler "github.com/kitchrent/KRM-SettlementService/internal/api/handlers/extend_storage"
	getAvailableWindowsHandler "github.com/kitchrent/KRM-SettlementService/internal/api/handlers/get_available_windows"
	getBookingHandler "github.com/kitchrent/KRM-SettlementService/internal/api/handlers/get_booking"
	getTransactionHandler "github.com/kitchrent/KRM-SettlementService/internal/api/handlers/get_transaction"
	getUserBookingsHandler "github.com/kitchrent/KRM-SettlementService/internal/api/handlers/get_user_bookings"
	refundTransactionHandler "github.com/kitchrent/KRM-SettlementService/internal/api/handlers/refund_transaction"
	reviewOverstayHandler "github.com/kitchrent/KRM-SettlementService/internal/api/handlers/review_overstay"
	"github.com/kitchrent/KRM-SettlementService/internal/api/middleware"
	"github.com/kitchrent/KRM-SettlementService/internal/config"
	bookingRepo "github.com/kitchrent/KRM-SettlementService/internal/infra/storage/booking"
	extensionRepo "github.com/kitchrent/KRM-SettlementService/internal/infra/storage/extension"
	penaltyRepo "github.com/kitchrent/KRM-SettlementService/internal/infra/storage/penalty"
	policyRepo "github.com/kitchrent/KRM-SettlementService/internal/infra/storage/policy"
	refundLogRepo "github.com/kitchrent/KRM-SettlementService/internal/infra/storage/refundlog"
	scheduleRepo "github.com/kitchrent/KRM-SettlementService/internal/infra/storage/schedule"
	transactionRepo "github.com/kitchrent/KRM-SettlementService/internal/infra/storage/transaction"
	listingServiceClient "github.com/kitchrent/KRM-SettlementService/internal/integrations/listingservice"
	payServiceClient "github.com/kitchrent/KRM-SettlementService/internal/integrations/payservice"
	"github.com/kitchrent/KRM-SettlementService/internal/notifier"
	confirmPaymentUC "github.com/kitchrent/KRM-SettlementService/internal/usecase/confirm_booking_payment"
	createBookingUC "github.com/kitchrent/KRM-SettlementService/internal/usecase/create_booking"
	decideBookingUC "github.com/kitchrent/KRM-SettlementService/internal/usecase/decide_booking"
	detectOverstaysUC "github.com/kitchrent/KRM-SettlementService/internal/usecase/detect_overstays"
	extendStorageUC "github.com/kitchrent/KRM-SettlementService/internal/usecase/extend_storage"
	getAvailableWindowsUC "github.com/kitchrent/KRM-SettlementService/internal/usecase/get_available_windows"
	getBookingUC "github.com/kitchrent/KRM-SettlementService/internal/usecase/get_booking"
	getTransactionUC "github.com/kitchrent/KRM-SettlementService/internal/usecase/get_transaction"
	getUserBookingsUC "github.com/kitchrent/KRM-SettlementService/internal/usecase/get_user_bookings"
	refundTransactionUC "github.com/kitchrent/KRM-SettlementService/internal/usecase/refund_transaction"
	reviewOverstayUC "github.com/kitchrent/KRM-SettlementService/internal/usecase/review_overstay"
	"github.com/kitchrent/KRM-SettlementService/pkg/dbmetrics"
	"github.com/kitchrent/KRM-SettlementService/pkg/logger"
	"github.com/kitchrent/KRM-SettlementService/pkg/metrics"
	"github.com/kitchrent/KRM-SettlementService/pkg/simpletxmanager"
	"github.com/kitchrent/KRM-SettlementService/pkg/txmanager"
)

// TxManager общий интерфейс обоих transaction manager'ов
type TxManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// EventPublisher общий интерфейс реального notifier'а и заглушки
type EventPublisher interface {
	Publish(routingKey string, payload map[string]interface{})
	Close()
}

func main() {
	// .env опционален: в проде переменные приходят из окружения
	_ = godotenv.Load()

	cfg, err := config.Load("config.toml")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("Starting KRM-SettlementService...")
	log.Info("Configuration loaded from config.toml")

	// Инициализируем метрики (если включены)
	var metricsCollector *metrics.Metrics
	var wrappedDB *dbmetrics.DB
	stopMetricsCh := make(chan struct{})

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Подключаемся к базе данных
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	// Интеграционные клиенты
	listingClient := listingServiceClient.NewClient(
		cfg.ListingService.URL,
		time.Duration(cfg.ListingService.Timeout)*time.Second,
		log,
	)
	payClient := payServiceClient.NewClient(
		cfg.PaymentService.URL,
		time.Duration(cfg.PaymentService.Timeout)*time.Second,
		log,
	)
	log.Info("Integration clients initialized (ListingService=%s timeout=%ds, PaymentService=%s timeout=%ds)",
		cfg.ListingService.URL, cfg.ListingService.Timeout, cfg.PaymentService.URL, cfg.PaymentService.Timeout)

	// Публикация событий в RabbitMQ (если включена)
	var events EventPublisher = notifier.Noop{}
	if cfg.Notifications.Enabled {
		rmq, err := notifier.New(cfg.Notifications.AMQPURL, log)
		if err != nil {
			log.Fatal("Failed to connect to RabbitMQ: %v", err)
		}
		events = rmq
		log.Info("Event publishing enabled (exchange=%s)", cfg.Notifications.Exchange)
	}
	defer events.Close()

	// Репозитории и transaction manager (с метриками или без)
	var dbExecutor dbmetrics.DBExecutor = db
	var txMgr TxManager

	if cfg.Metrics.Enabled {
		wrappedDB = dbmetrics.WrapWithDefault(db, metricsCollector, cfg.Metrics.ServiceName, stopMetricsCh)
		dbExecutor = wrappedDB
		txMgr = txmanager.NewTransactionManager(wrappedDB)
		log.Info("Database metrics collection started")
	} else {
		txMgr = simpletxmanager.NewTransactionManager(db)
	}

	bookingRepository := bookingRepo.NewRepository(dbExecutor)
	transactionRepository := transactionRepo.NewRepository(dbExecutor)
	refundLogRepository := refundLogRepo.NewRepository(dbExecutor)
	penaltyRepository := penaltyRepo.NewRepository(dbExecutor)
	extensionRepository := extensionRepo.NewRepository(dbExecutor)
	scheduleRepository := scheduleRepo.NewRepository(dbExecutor)
	policyRepository := policyRepo.NewRepository(dbExecutor)

	// Use cases
	refundTransactionUseCase := refundTransactionUC.NewUseCase(
		transactionRepository,
		refundLogRepository,
		bookingRepository,
		listingClient,
		payClient,
		txMgr,
		events,
		log,
	)
	createBookingUseCase := createBookingUC.NewUseCase(
		bookingRepository,
		scheduleRepository,
		policyRepository,
		listingClient,
		payClient,
		txMgr,
		events,
		log,
	)
	confirmPaymentUseCase := confirmPaymentUC.NewUseCase(
		bookingRepository,
		transactionRepository,
		txMgr,
		log,
	)
	decideBookingUseCase := decideBookingUC.NewUseCase(
		bookingRepository,
		transactionRepository,
		listingClient,
		refundTransactionUseCase,
		events,
		log,
	)
	getAvailableWindowsUseCase := getAvailableWindowsUC.NewUseCase(
		scheduleRepository,
		bookingRepository,
		log,
	)
	getBookingUseCase := getBookingUC.NewUseCase(bookingRepository, listingClient, log)
	getUserBookingsUseCase := getUserBookingsUC.NewUseCase(bookingRepository, log)
	getTransactionUseCase := getTransactionUC.NewUseCase(
		transactionRepository,
		refundLogRepository,
		bookingRepository,
		listingClient,
		log,
	)
	detectOverstaysUseCase := detectOverstaysUC.NewUseCase(
		bookingRepository,
		penaltyRepository,
		policyRepository,
		listingClient,
		events,
		log,
	)
	reviewOverstayUseCase := reviewOverstayUC.NewUseCase(
		penaltyRepository,
		bookingRepository,
		listingClient,
		payClient,
		txMgr,
		events,
		log,
	)
	extendStorageUseCase := extendStorageUC.NewUseCase(
		bookingRepository,
		extensionRepository,
		transactionRepository,
		listingClient,
		payClient,
		refundTransactionUseCase,
		txMgr,
		events,
		log,
	)

	// Handlers
	createBooking := createBookingHandler.NewHandler(createBookingUseCase, log)
	confirmPayment := confirmPaymentHandler.NewHandler(confirmPaymentUseCase, log)
	approveBooking := decideBookingHandler.NewHandler(decideBookingUseCase, decideBookingUC.ActionApprove, log)
	rejectBooking := decideBookingHandler.NewHandler(decideBookingUseCase, decideBookingUC.ActionReject, log)
	cancelBooking := decideBookingHandler.NewHandler(decideBookingUseCase, decideBookingUC.ActionCancel, log)
	getAvailableWindows := getAvailableWindowsHandler.NewHandler(getAvailableWindowsUseCase, log)
	getBooking := getBookingHandler.NewHandler(getBookingUseCase, log)
	getUserBookings := getUserBookingsHandler.NewHandler(getUserBookingsUseCase, log)
	refundTransaction := refundTransactionHandler.NewHandler(refundTransactionUseCase, log)
	getTransaction := getTransactionHandler.NewHandler(getTransactionUseCase, log)
	reviewOverstay := reviewOverstayHandler.NewHandler(reviewOverstayUseCase, log)
	extendStorage := extendStorageHandler.NewHandler(extendStorageUseCase, log)

	// Роутер
	r := mux.NewRouter()

	if cfg.Metrics.Enabled {
		r.Use(middleware.Metrics(metricsCollector))
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	api := r.PathPrefix("/api/v1").Subrouter()

	// Публичные роуты
	api.HandleFunc("/resources/{resourceId}/available-windows",
		getAvailableWindows.Handle).Methods(http.MethodGet)

	// Защищённые роуты (требуют X-User-ID header)
	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)

	// Бронирования
	protected.HandleFunc("/bookings", createBooking.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/bookings/{id}", getBooking.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/bookings/{id}/payment-confirmed", confirmPayment.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/bookings/{id}/approve", approveBooking.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/bookings/{id}/reject", rejectBooking.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/bookings/{id}/cancel", cancelBooking.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/users/{userId}/bookings", getUserBookings.Handle).Methods(http.MethodGet)

	// Леджер и возвраты
	protected.HandleFunc("/transactions/{id}", getTransaction.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/transactions/{id}/refund", refundTransaction.Handle).Methods(http.MethodPost)

	// Просрочки хранения
	protected.HandleFunc("/overstays/{id}/approve", reviewOverstay.HandleApprove).Methods(http.MethodPost)
	protected.HandleFunc("/overstays/{id}/waive", reviewOverstay.HandleWaive).Methods(http.MethodPost)
	protected.HandleFunc("/overstays/{id}/charge", reviewOverstay.HandleCharge).Methods(http.MethodPost)
	protected.HandleFunc("/overstays/{id}/resolve", reviewOverstay.HandleResolve).Methods(http.MethodPost)

	// Продление хранения
	protected.HandleFunc("/storage-bookings/{id}/extension-checkout",
		extendStorage.HandleCheckout).Methods(http.MethodPost)
	protected.HandleFunc("/extensions/{id}/payment-confirmed",
		extendStorage.HandleConfirmPayment).Methods(http.MethodPost)
	protected.HandleFunc("/extensions/{id}/approve", extendStorage.HandleApprove).Methods(http.MethodPost)
	protected.HandleFunc("/extensions/{id}/reject", extendStorage.HandleReject).Methods(http.MethodPost)

	// Периодическая проверка просроченных хранений
	sweepCtx, stopSweep := context.WithCancel(context.Background())
	if cfg.OverstaySweep.Enabled {
		interval := time.Duration(cfg.OverstaySweep.IntervalMinutes) * time.Minute
		go runOverstaySweep(sweepCtx, detectOverstaysUseCase, interval, log)
		log.Info("Overstay sweep enabled (interval=%s)", interval)
	}

	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	stopSweep()

	if cfg.Metrics.Enabled {
		close(stopMetricsCh)
		log.Info("Metrics collection stopped")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	log.Info("Server stopped gracefully")
}

// runOverstaySweep запускает поиск просроченных хранений по таймеру.
// Первый проход выполняется сразу при старте
func runOverstaySweep(ctx context.Context, uc *detectOverstaysUC.UseCase, interval time.Duration, log *logger.Logger) {
	runOnce := func() {
		report, err := uc.Execute(ctx)
		if err != nil {
			log.Error("Overstay sweep failed: %v", err)
			return
		}
		log.Info("Overstay sweep finished: overdue=%d, detected=%d, promoted=%d, errors=%d",
			report.OverdueBookings, report.Detected, report.Promoted, report.Errors)
	}

	runOnce()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runOnce()
		}
	}
}
