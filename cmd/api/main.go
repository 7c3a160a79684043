package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/teamturing/competition-api/internal/config"
	"github.com/teamturing/competition-api/internal/gpai"
	"github.com/teamturing/competition-api/internal/handler"
	"github.com/teamturing/competition-api/internal/middleware"
	pgRepo "github.com/teamturing/competition-api/internal/repository/postgres"
	redisRepo "github.com/teamturing/competition-api/internal/repository/redis"
	s3Repo "github.com/teamturing/competition-api/internal/repository/s3"
	"github.com/teamturing/competition-api/internal/service"
	"github.com/teamturing/competition-api/pkg/database"
)

func main() {
	// Загружаем конфигурацию
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}
	log.Printf("Загрузка конфигурации из %s", configPath)

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Printf("Failed to load config: %v", err)
		os.Exit(1)
	}

	// Инициализируем подключение к PostgreSQL
	db, err := database.NewPostgresDB(cfg.Database.PostgresConnectionString())
	if err != nil {
		log.Printf("Failed to connect to database: %v", err)
		os.Exit(1)
	}

	// Применяем миграции
	if err := database.MigrateDB(db); err != nil {
		log.Printf("Failed to migrate database: %v", err)
		os.Exit(1)
	}

	// Read-only подключение к базе соревнования (проверка регистрации)
	registryDB, err := database.NewRegistryDB(cfg.Registry.DSN)
	if err != nil {
		log.Printf("Failed to connect to registry database: %v", err)
		os.Exit(1)
	}

	// Инициализируем подключение к Redis с использованием унифицированной конфигурации
	redisClient, err := database.NewUniversalRedisClient(cfg.Redis)
	if err != nil {
		log.Printf("Failed to connect to Redis: %v", err)
		os.Exit(1)
	}
	log.Println("Successfully connected to Redis")

	// Корневой контекст приложения
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Инициализируем репозитории
	profileRepo := pgRepo.NewUserProfileRepo(db)
	codeRepo := pgRepo.NewVerificationCodeRepo(db)
	participantRepo := pgRepo.NewParticipantInfoRepo(db)
	whitelistRepo := pgRepo.NewWhitelistRepo(db)
	registryRepo := pgRepo.NewRegistryRepo(registryDB)

	cacheRepo, err := redisRepo.NewCacheRepo(redisClient)
	if err != nil {
		log.Printf("Failed to initialize CacheRepo: %v", err)
		os.Exit(1)
	}

	// S3-совместимое хранилище файлов заявок
	submissionStore, err := s3Repo.NewSubmissionStore(ctx, s3Repo.Config{
		Region:    cfg.Storage.Region,
		Endpoint:  cfg.Storage.Endpoint,
		Bucket:    cfg.Storage.Bucket,
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
	})
	if err != nil {
		log.Printf("Failed to initialize submission store: %v", err)
		os.Exit(1)
	}

	// Клиент identity-провайдера
	gpaiClient, err := gpai.NewClient(cfg.GPAI.BaseURL, cfg.GPAI.GPAITimeout())
	if err != nil {
		log.Printf("Failed to initialize GPAI client: %v", err)
		os.Exit(1)
	}

	// Отправка писем: Resend в бою, заглушка на стендах без ключа
	var emailService service.EmailService
	if cfg.Email.Enabled {
		emailService, err = service.NewResendEmailService(cfg.Email.ResendAPIKey, cfg.Email.FromAddress)
		if err != nil {
			log.Printf("Failed to initialize email service: %v", err)
			os.Exit(1)
		}
	} else {
		log.Println("Отправка писем отключена, используется NoopEmailService")
		emailService = &service.NoopEmailService{}
	}

	// Инициализируем сервисы
	verificationService, err := service.NewVerificationService(
		profileRepo,
		codeRepo,
		whitelistRepo,
		emailService,
		cfg.Verification.VerificationTTL(),
		cfg.Verification.ResendCooldown(),
		cfg.Verification.MaxAttempts,
		cfg.Verification.CodePepper,
		cfg.Verification.BypassEnabled,
	)
	if err != nil {
		log.Printf("Failed to initialize VerificationService: %v", err)
		os.Exit(1)
	}

	onboardingService, err := service.NewOnboardingService(participantRepo, cacheRepo, submissionStore)
	if err != nil {
		log.Printf("Failed to initialize OnboardingService: %v", err)
		os.Exit(1)
	}

	submissionService, err := service.NewSubmissionService(submissionStore)
	if err != nil {
		log.Printf("Failed to initialize SubmissionService: %v", err)
		os.Exit(1)
	}

	registryService, err := service.NewRegistryService(registryRepo)
	if err != nil {
		log.Printf("Failed to initialize RegistryService: %v", err)
		os.Exit(1)
	}

	exportService, err := service.NewExportService(participantRepo, profileRepo, submissionStore)
	if err != nil {
		log.Printf("Failed to initialize ExportService: %v", err)
		os.Exit(1)
	}

	// Инициализируем обработчики
	authHandler := handler.NewAuthHandler(gpaiClient, registryService)
	verificationHandler := handler.NewVerificationHandler(verificationService)
	participantHandler := handler.NewParticipantHandler(onboardingService)
	uploadHandler := handler.NewUploadHandler(submissionService)
	pageHandler := handler.NewPageHandler(onboardingService, verificationService)
	adminHandler := handler.NewAdminHandler(exportService)

	// Инициализируем middleware
	sessionMiddleware, err := middleware.NewSessionMiddleware(gpaiClient, verificationService)
	if err != nil {
		log.Printf("Failed to initialize SessionMiddleware: %v", err)
		os.Exit(1)
	}
	rateLimiter := middleware.NewRateLimiter(redisClient)

	// Инициализируем роутер Gin
	router := gin.Default()
	router.Use(middleware.RequestID())

	isProduction := gin.Mode() == gin.ReleaseMode

	// Настройка доверенных прокси для корректной работы c.ClientIP()
	// В production (GIN_MODE=release): не доверяем прокси (защита от IP spoofing)
	// В development: доверяем localhost
	// При деплое за load balancer: добавьте IP балансировщика в список
	if isProduction {
		if err := router.SetTrustedProxies(nil); err != nil {
			log.Printf("Warning: failed to set trusted proxies: %v", err)
		}
	} else {
		if err := router.SetTrustedProxies([]string{"127.0.0.1", "::1"}); err != nil {
			log.Printf("Warning: failed to set trusted proxies: %v", err)
		}
	}

	// Настройка CORS
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"https://competition.teamturing.com", "http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "X-Request-ID", "X-Admin-Token"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Проверка живости для балансировщика
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Настраиваем маршруты API
	api := router.Group("/api")
	{
		// Аутентификация (публичные маршруты провайдерской сессии)
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/login", rateLimiter.Limit(middleware.LoginRateLimitConfig()), authHandler.Login)
			authGroup.POST("/logout", authHandler.Logout)
			authGroup.GET("/me", authHandler.Me)
			authGroup.POST("/verify-user", rateLimiter.Limit(middleware.LoginRateLimitConfig()), authHandler.VerifyUser)
		}

		// Верификация школьной почты: нужна сессия, но не верификация
		verify := api.Group("/")
		verify.Use(sessionMiddleware.RequireSession(true))
		{
			verify.POST("/send-verification-email", rateLimiter.Limit(middleware.VerificationRateLimitConfig()), verificationHandler.SendCode)
			verify.POST("/verify-email-code", rateLimiter.Limit(middleware.VerificationRateLimitConfig()), verificationHandler.VerifyCode)
			verify.GET("/check-school-email", verificationHandler.Status)
		}

		// Онбординг и файлы: сессия + подтвержденная почта
		gated := api.Group("/")
		gated.Use(sessionMiddleware.RequireSession(true), sessionMiddleware.RequireVerified(true))
		gated.Use(rateLimiter.LimitByIP(middleware.DefaultAPIRateLimitConfig()))
		{
			gated.POST("/onboarding/location", participantHandler.StageLocation)
			gated.GET("/onboarding/next-step", participantHandler.NextStep)
			gated.GET("/participant-info", participantHandler.GetParticipantInfo)
			gated.POST("/participant-info", participantHandler.SaveParticipantInfo)

			gated.POST("/upload", uploadHandler.Upload)
			gated.GET("/files", uploadHandler.List)
			gated.DELETE("/files", uploadHandler.Delete)
		}

		// Административные маршруты
		admin := api.Group("/admin")
		admin.Use(middleware.AdminOnly(cfg.Admin.Token))
		{
			admin.GET("/participants/export", adminHandler.ExportParticipants)
		}
	}

	// Страница подтверждения школьной почты: сюда редиректит RequireVerified,
	// поэтому сама она требует только сессию
	router.GET(service.RouteVerifyEmail, sessionMiddleware.RequireSession(false), pageHandler.VerifySchoolEmail)

	// Страничные маршруты мастера: пройденные шаги открыты, вперед нельзя
	dashboard := router.Group("/dashboard")
	dashboard.Use(sessionMiddleware.RequireSession(false), sessionMiddleware.RequireVerified(false))
	{
		dashboard.GET("", pageHandler.DashboardRedirect)
		dashboard.GET("/location", pageHandler.Gate(service.RouteLocation))
		dashboard.GET("/information", pageHandler.Gate(service.RouteInformation))
		dashboard.GET("/upload", pageHandler.Gate(service.RouteUpload))
		dashboard.GET("/submission-complete", pageHandler.Gate(service.RouteSubmissionComplete))
	}

	// Настраиваем HTTP сервер с тайм-аутами для защиты от slow client attacks
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Запускаем сервер в горутине
	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Failed to start server: %v", err)
		}
	}()

	log.Printf("Server started on port %s", cfg.Server.Port)

	// После получения сигнала SIGINT или SIGTERM вызываем cancel() для завершения горутин
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	cancel()

	// Создаем контекст с таймаутом для graceful shutdown сервера
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
		os.Exit(1)
	}

	log.Println("Server exited properly")
}
