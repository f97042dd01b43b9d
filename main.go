package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/lkendi/Task-Management-System/internal/cache"
	"github.com/lkendi/Task-Management-System/internal/config"
	"github.com/lkendi/Task-Management-System/internal/controllers"
	"github.com/lkendi/Task-Management-System/internal/database"
	"github.com/lkendi/Task-Management-System/internal/jwt"
	"github.com/lkendi/Task-Management-System/internal/logging"
	"github.com/lkendi/Task-Management-System/internal/middleware"
	"github.com/lkendi/Task-Management-System/internal/notify"
	"github.com/lkendi/Task-Management-System/internal/repository"
	"github.com/lkendi/Task-Management-System/internal/router"
	"github.com/lkendi/Task-Management-System/internal/scheduler"
	"github.com/lkendi/Task-Management-System/internal/service"
)

const memoryQueueCapacity = 1024

func main() {
	seed := pflag.Bool("seed", false, "seed demo users, projects and tasks")
	migrateOnly := pflag.Bool("migrate-only", false, "run database migrations and exit")
	pflag.Parse()

	// Load configuration
	cfg := config.Load()
	logging.Init(cfg.LogLevel, cfg.LogFile)
	if cfg.JWTSecret == "" {
		logging.Logger.Fatal("JWT_SECRET must be set")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to database
	db, err := database.NewConnection(cfg.DatabaseURL)
	if err != nil {
		logging.Logger.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	if err := database.RunMigrations(db); err != nil {
		logging.Logger.WithError(err).Fatal("Failed to run migrations")
	}
	if *migrateOnly {
		logging.Logger.Info("Migrations applied")
		return
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	taskRepo := repository.NewTaskRepository(db)

	if *seed {
		seeder := &database.Seeder{Users: userRepo, Projects: projectRepo, Tasks: taskRepo, Now: time.Now}
		if err := seeder.Seed(ctx); err != nil {
			logging.Logger.WithError(err).Fatal("Failed to seed database")
		}
	}

	// Notification queue and dashboard cache share Redis (optional - continue
	// in-process if Redis is unavailable)
	var (
		queue       notify.Queue
		cacheClient cache.Cache
	)
	if redisQueue, err := newRedisQueue(cfg.RedisURL); err != nil {
		logging.Logger.WithError(err).Warn("Redis unavailable, using in-memory notification queue without cache")
		queue = notify.NewMemoryQueue(memoryQueueCapacity)
	} else {
		defer redisQueue.Close()
		queue = redisQueue
		cacheClient = cache.NewRedisCache(redisQueue.Client())
		logging.Logger.Info("Connected to Redis")
	}

	var mailer notify.Mailer = notify.LogMailer{}
	if cfg.SMTPHost != "" {
		mailer = &notify.SMTPMailer{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.MailFrom,
		}
	}

	// Initialize services
	jwtService := jwt.NewJWTService(cfg.JWTSecret, cfg.JWTTTL)
	notifier := notify.NewNotifier(userRepo, queue, cfg.AppURL)
	authService := service.NewAuthService(userRepo, jwtService)
	userService := service.NewUserService(userRepo, cacheClient)
	projectService := service.NewProjectService(projectRepo, userRepo, cacheClient)
	taskService := service.NewTaskService(taskRepo, projectRepo, userRepo, notifier, cacheClient)
	dashboardService := service.NewDashboardService(taskRepo, userRepo, cacheClient)

	// Initialize controllers
	gate := controllers.Gate{LoginPath: cfg.LoginPath}
	handlers := router.Handlers{
		Auth:       controllers.NewAuthController(authService, userService, gate, cfg.CookieSecure),
		Users:      controllers.NewUserController(userService, gate),
		Projects:   controllers.NewProjectController(projectService, gate),
		Tasks:      controllers.NewTaskController(taskService, gate),
		QRCodes:    controllers.NewQRCodeController(taskService, gate, cfg.AppURL),
		Dashboards: controllers.NewDashboardController(dashboardService, gate),
		DB:         db,
	}

	gin.SetMode(gin.ReleaseMode)
	engine := router.New(router.Options{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		GeneralLimiter: middleware.NewRateLimiter(ctx, cfg.RateLimitRPS, cfg.RateLimitBurst),
		LoginLimiter:   middleware.NewRateLimiter(ctx, cfg.RateLimitLoginRPS, cfg.RateLimitLoginBurst),
		Tokens:         jwtService,
		Users:          userRepo,
	}, handlers)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	jobs := scheduler.New()
	if _, err := jobs.ScheduleRequeue(cfg.RequeueSchedule, queue); err != nil {
		logging.Logger.WithError(err).Fatal("Invalid REQUEUE_SCHEDULE")
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logging.Logger.WithField("addr", server.Addr).Info("Server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		return notify.NewWorker(queue, mailer, cfg.NotifyMaxRetries).Run(gctx)
	})
	g.Go(func() error {
		return jobs.Run(gctx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logging.Logger.WithError(err).Fatal("Server stopped with error")
	}
	logging.Logger.Info("Server stopped")
}

func newRedisQueue(redisURL string) (*notify.RedisQueue, error) {
	if redisURL == "" {
		return nil, errors.New("REDIS_URL not set")
	}
	return notify.NewRedisQueue(redisURL)
}
