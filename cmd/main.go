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

	addAvailabilityWindowHandler "github.com/m04kA/TCM-BookingService/internal/api/handlers/add_availability_window"
	addHolidayHandler "github.com/m04kA/TCM-BookingService/internal/api/handlers/add_holiday"
	cancelBookingHandler "github.com/m04kA/TCM-BookingService/internal/api/handlers/cancel_booking"
	confirmBookingHandler "github.com/m04kA/TCM-BookingService/internal/api/handlers/confirm_booking"
	confirmTransferHandler "github.com/m04kA/TCM-BookingService/internal/api/handlers/confirm_transfer"
	createBookingHandler "github.com/m04kA/TCM-BookingService/internal/api/handlers/create_booking"
	createRefundRequestHandler "github.com/m04kA/TCM-BookingService/internal/api/handlers/create_refund_request"
	createReviewHandler "github.com/m04kA/TCM-BookingService/internal/api/handlers/create_review"
	decideRefundRequestHandler "github.com/m04kA/TCM-BookingService/internal/api/handlers/decide_refund_request"
	deleteAvailabilityWindowHandler "github.com/m04kA/TCM-BookingService/internal/api/handlers/delete_availability_window"
	directRefundHandler "github.com/m04kA/TCM-BookingService/internal/api/handlers/direct_refund"
	generateSlotsHandler "github.com/m04kA/TCM-BookingService/internal/api/handlers/generate_slots"
	getAvailableSlotsHandler "github.com/m04kA/TCM-BookingService/internal/api/handlers/get_available_slots"
	getBookingHandler "github.com/m04kA/TCM-BookingService/internal/api/handlers/get_booking"
	getPaymentHandler "github.com/m04kA/TCM-BookingService/internal/api/handlers/get_payment"
	getRefundRequestHandler "github.com/m04kA/TCM-BookingService/internal/api/handlers/get_refund_request"
	getTherapistBookingsHandler "github.com/m04kA/TCM-BookingService/internal/api/handlers/get_therapist_bookings"
	getTherapistReviewsHandler "github.com/m04kA/TCM-BookingService/internal/api/handlers/get_therapist_reviews"
	getUserBookingsHandler "github.com/m04kA/TCM-BookingService/internal/api/handlers/get_user_bookings"
	listAvailabilityWindowsHandler "github.com/m04kA/TCM-BookingService/internal/api/handlers/list_availability_windows"
	listHolidaysHandler "github.com/m04kA/TCM-BookingService/internal/api/handlers/list_holidays"
	refundPaymentHandler "github.com/m04kA/TCM-BookingService/internal/api/handlers/refund_payment"
	rejectBookingHandler "github.com/m04kA/TCM-BookingService/internal/api/handlers/reject_booking"
	removeSlotsHandler "github.com/m04kA/TCM-BookingService/internal/api/handlers/remove_slots"
	requestSettlementHandler "github.com/m04kA/TCM-BookingService/internal/api/handlers/request_settlement"
	settleBookingHandler "github.com/m04kA/TCM-BookingService/internal/api/handlers/settle_booking"
	submitJournalHandler "github.com/m04kA/TCM-BookingService/internal/api/handlers/submit_journal"
	"github.com/m04kA/TCM-BookingService/internal/api/middleware"
	"github.com/m04kA/TCM-BookingService/internal/config"
	bookingRepo "github.com/m04kA/TCM-BookingService/internal/infra/storage/booking"
	paymentRepo "github.com/m04kA/TCM-BookingService/internal/infra/storage/payment"
	refundRepo "github.com/m04kA/TCM-BookingService/internal/infra/storage/refund"
	reviewRepo "github.com/m04kA/TCM-BookingService/internal/infra/storage/review"
	therapistRepo "github.com/m04kA/TCM-BookingService/internal/infra/storage/therapist"
	timeslotRepo "github.com/m04kA/TCM-BookingService/internal/infra/storage/timeslot"
	notifierClient "github.com/m04kA/TCM-BookingService/internal/integrations/notifier"
	availabilityService "github.com/m04kA/TCM-BookingService/internal/service/availability"
	bookingsService "github.com/m04kA/TCM-BookingService/internal/service/bookings"
	paymentsService "github.com/m04kA/TCM-BookingService/internal/service/payments"
	refundsService "github.com/m04kA/TCM-BookingService/internal/service/refunds"
	reviewsService "github.com/m04kA/TCM-BookingService/internal/service/reviews"
	createBookingUC "github.com/m04kA/TCM-BookingService/internal/usecase/create_booking"
	generateSlotsUC "github.com/m04kA/TCM-BookingService/internal/usecase/generate_slots"
	getAvailableSlotsUC "github.com/m04kA/TCM-BookingService/internal/usecase/get_available_slots"
	"github.com/m04kA/TCM-BookingService/pkg/dbmetrics"
	"github.com/m04kA/TCM-BookingService/pkg/logger"
	"github.com/m04kA/TCM-BookingService/pkg/metrics"
	"github.com/m04kA/TCM-BookingService/pkg/simpletxmanager"
	"github.com/m04kA/TCM-BookingService/pkg/txmanager"
)

func main() {
	// .env необязателен, переопределяет DB_PASSWORD
	_ = godotenv.Load()

	// Загружаем конфигурацию
	cfg, err := config.Load("config.toml")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализируем логгер
	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("Starting TCM-BookingService...")
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

	// Настраиваем connection pool
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	// Проверяем соединение
	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	// Нотификатор пока только логирует события
	notifier := notifierClient.NewClient(log)

	// Инициализируем репозитории (с метриками или без)
	var (
		bookingRepository   *bookingRepo.Repository
		paymentRepository   *paymentRepo.Repository
		timeslotRepository  *timeslotRepo.Repository
		therapistRepository *therapistRepo.Repository
		refundRepository    *refundRepo.Repository
		reviewRepository    *reviewRepo.Repository
	)

	// Интерфейс transaction manager, общий для сервисов и usecases
	type TxManager interface {
		Do(ctx context.Context, fn func(ctx context.Context) error) error
		DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
		DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
	}
	var txMgr TxManager

	if cfg.Metrics.Enabled {
		wrappedDB = dbmetrics.WrapWithDefault(db, metricsCollector, cfg.Metrics.ServiceName, stopMetricsCh)
		log.Info("Database metrics collection started")

		bookingRepository = bookingRepo.NewRepository(wrappedDB)
		paymentRepository = paymentRepo.NewRepository(wrappedDB)
		timeslotRepository = timeslotRepo.NewRepository(wrappedDB)
		therapistRepository = therapistRepo.NewRepository(wrappedDB)
		refundRepository = refundRepo.NewRepository(wrappedDB)
		reviewRepository = reviewRepo.NewRepository(wrappedDB)
		txMgr = txmanager.NewTransactionManager(wrappedDB)
	} else {
		bookingRepository = bookingRepo.NewRepository(db)
		paymentRepository = paymentRepo.NewRepository(db)
		timeslotRepository = timeslotRepo.NewRepository(db)
		therapistRepository = therapistRepo.NewRepository(db)
		refundRepository = refundRepo.NewRepository(db)
		reviewRepository = reviewRepo.NewRepository(db)
		txMgr = simpletxmanager.NewTransactionManager(db)
	}

	// Инициализируем сервисы
	bookingSvc := bookingsService.NewService(
		bookingRepository,
		paymentRepository,
		timeslotRepository,
		therapistRepository,
		txMgr,
		notifier,
		cfg.Settlement.Rate,
		log,
	)
	paymentSvc := paymentsService.NewService(
		paymentRepository,
		bookingRepository,
		timeslotRepository,
		txMgr,
		notifier,
		log,
	)
	refundSvc := refundsService.NewService(
		refundRepository,
		paymentRepository,
		bookingRepository,
		timeslotRepository,
		txMgr,
		notifier,
		log,
	)
	availabilitySvc := availabilityService.NewService(
		therapistRepository,
		timeslotRepository,
		txMgr,
		log,
	)
	reviewSvc := reviewsService.NewService(
		reviewRepository,
		bookingRepository,
		log,
	)

	// Инициализируем use cases
	createBookingUseCase := createBookingUC.NewUseCase(
		bookingRepository,
		paymentRepository,
		timeslotRepository,
		therapistRepository,
		txMgr,
		cfg.Booking.PackageDiscountRate,
		cfg.Settlement.Rate,
		log,
	)
	getAvailableSlotsUseCase := getAvailableSlotsUC.NewUseCase(
		timeslotRepository,
		therapistRepository,
		cfg.Booking.MaxRangeDays,
		cfg.Booking.BufferMinutes,
		log,
	)
	generateSlotsUseCase := generateSlotsUC.NewUseCase(
		timeslotRepository,
		therapistRepository,
		txMgr,
		cfg.Booking.SessionDurationMinutes,
		cfg.Booking.BufferMinutes,
		cfg.Booking.MaxRangeDays,
		log,
	)

	// Инициализируем handlers
	createBooking := createBookingHandler.NewHandler(createBookingUseCase, log)
	getAvailableSlots := getAvailableSlotsHandler.NewHandler(getAvailableSlotsUseCase, log)
	generateSlots := generateSlotsHandler.NewHandler(generateSlotsUseCase, log)
	getBooking := getBookingHandler.NewHandler(bookingSvc, log)
	getUserBookings := getUserBookingsHandler.NewHandler(bookingSvc, log)
	getTherapistBookings := getTherapistBookingsHandler.NewHandler(bookingSvc, log)
	confirmBooking := confirmBookingHandler.NewHandler(bookingSvc, log)
	rejectBooking := rejectBookingHandler.NewHandler(bookingSvc, log)
	cancelBooking := cancelBookingHandler.NewHandler(bookingSvc, log)
	submitJournal := submitJournalHandler.NewHandler(bookingSvc, log)
	requestSettlement := requestSettlementHandler.NewHandler(bookingSvc, log)
	settleBooking := settleBookingHandler.NewHandler(bookingSvc, log)
	getPayment := getPaymentHandler.NewHandler(paymentSvc, log)
	confirmTransfer := confirmTransferHandler.NewHandler(paymentSvc, log)
	refundPayment := refundPaymentHandler.NewHandler(paymentSvc, log)
	createRefundRequest := createRefundRequestHandler.NewHandler(refundSvc, log)
	getRefundRequest := getRefundRequestHandler.NewHandler(refundSvc, log)
	decideRefundRequest := decideRefundRequestHandler.NewHandler(refundSvc, log)
	directRefund := directRefundHandler.NewHandler(refundSvc, log)
	addAvailabilityWindow := addAvailabilityWindowHandler.NewHandler(availabilitySvc, log)
	listAvailabilityWindows := listAvailabilityWindowsHandler.NewHandler(availabilitySvc, log)
	deleteAvailabilityWindow := deleteAvailabilityWindowHandler.NewHandler(availabilitySvc, log)
	addHoliday := addHolidayHandler.NewHandler(availabilitySvc, log)
	listHolidays := listHolidaysHandler.NewHandler(availabilitySvc, log)
	removeSlots := removeSlotsHandler.NewHandler(availabilitySvc, log)
	createReview := createReviewHandler.NewHandler(reviewSvc, log)
	getTherapistReviews := getTherapistReviewsHandler.NewHandler(reviewSvc, log)

	// Настраиваем роутер
	r := mux.NewRouter()

	// Добавляем metrics middleware (если метрики включены)
	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector))
		log.Info("HTTP metrics middleware enabled")
	}

	// Metrics endpoint (публичный, без аутентификации)
	if cfg.Metrics.Enabled {
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (без аутентификации)
	// ============================================================

	// Свободные слоты терапевта
	api.HandleFunc("/therapists/{therapistId}/available-slots",
		getAvailableSlots.Handle).Methods(http.MethodGet)

	// Отзывы о терапевте
	api.HandleFunc("/therapists/{therapistId}/reviews",
		getTherapistReviews.Handle).Methods(http.MethodGet)

	// ============================================================
	// PROTECTED ROUTES (требуют X-User-ID header)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)

	// --- Бронирования ---
	// Оформление пакета сессий
	protected.HandleFunc("/bookings", createBooking.Handle).Methods(http.MethodPost)

	// Получение бронирования по ID
	protected.HandleFunc("/bookings/{bookingId}", getBooking.Handle).Methods(http.MethodGet)

	// Переходы жизненного цикла
	protected.HandleFunc("/bookings/{bookingId}/confirm", confirmBooking.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/bookings/{bookingId}/reject", rejectBooking.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/bookings/{bookingId}/cancel", cancelBooking.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/bookings/{bookingId}/journal", submitJournal.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/bookings/{bookingId}/request-settlement", requestSettlement.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/bookings/{bookingId}/settle", settleBooking.Handle).Methods(http.MethodPatch)

	// Прямой возврат админом (по бронированию или группе)
	protected.HandleFunc("/bookings/{bookingId}/refund", directRefund.Handle).Methods(http.MethodPost)

	// Отзыв о завершенной сессии
	protected.HandleFunc("/bookings/{bookingId}/reviews", createReview.Handle).Methods(http.MethodPost)

	// История бронирований родителя
	protected.HandleFunc("/users/{userId}/bookings", getUserBookings.Handle).Methods(http.MethodGet)

	// --- Расписание терапевта ---
	protected.HandleFunc("/therapists/{therapistId}/bookings", getTherapistBookings.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/therapists/{therapistId}/availability", addAvailabilityWindow.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/therapists/{therapistId}/availability", listAvailabilityWindows.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/therapists/{therapistId}/availability/{windowId}", deleteAvailabilityWindow.Handle).Methods(http.MethodDelete)
	protected.HandleFunc("/therapists/{therapistId}/holidays", addHoliday.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/therapists/{therapistId}/holidays", listHolidays.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/therapists/{therapistId}/slots/generate", generateSlots.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/therapists/{therapistId}/slots", removeSlots.Handle).Methods(http.MethodDelete)

	// --- Платежи и возвраты ---
	protected.HandleFunc("/payments/{paymentId}", getPayment.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/payments/{paymentId}/confirm", confirmTransfer.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/payments/{paymentId}/refunds", refundPayment.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/payments/{paymentId}/refund-requests", createRefundRequest.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/refund-requests/{requestId}", getRefundRequest.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/refund-requests/{requestId}", decideRefundRequest.Handle).Methods(http.MethodPatch)

	// Создаем HTTP сервер
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

	// Ожидаем сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// Останавливаем сбор метрик connection pool
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
