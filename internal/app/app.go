package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"fieldops/internal/auth"
	"fieldops/internal/config"
	"fieldops/internal/handlers"
	"fieldops/internal/logger"
	"fieldops/internal/middleware"
	"fieldops/internal/models/user"
	"fieldops/internal/repository/postgres"
	taskinmem "fieldops/internal/repository/task/inmemory"
	taskpg "fieldops/internal/repository/task/postgres"
	ticketinmem "fieldops/internal/repository/ticket/inmemory"
	ticketpg "fieldops/internal/repository/ticket/postgres"
	userinmem "fieldops/internal/repository/user/inmemory"
	userpg "fieldops/internal/repository/user/postgres"
	"fieldops/internal/service"
	"fieldops/internal/storage"
	"fieldops/internal/worker"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
)

type App struct {
	config    *config.Config
	server    *http.Server
	pool      *pgxpool.Pool
	worker    *worker.SweepWorker
	shutdowns []func() // функции для graceful shutdown
}

func New(cfg *config.Config) *App {
	return &App{
		config:    cfg,
		shutdowns: make([]func(), 0),
	}
}

func (a *App) Init(ctx context.Context) error {

	if err := logger.Init(a.config.Logging.Development); err != nil {
		return fmt.Errorf("инициализация логгера: %w", err)
	}

	a.shutdowns = append(a.shutdowns, func() {
		logger.Info("Завершение работы логгирования...")
		logger.Sync()
	})

	files, err := storage.NewFileStore(a.config.Files.Root)
	if err != nil {
		return fmt.Errorf("инициализация хранилища файлов: %w", err)
	}

	var taskRepo service.TaskRepository
	var ticketRepo service.TicketRepository
	var userRepo service.UserRepository

	// пул создаётся один раз и передаётся репозиториям по ссылке
	if a.config.Repository.Type == "postgres" {
		pool, err := postgres.NewPool(ctx, a.config.Database)
		if err != nil {
			return fmt.Errorf("инициализация PostgreSQL: %w", err)
		}
		a.pool = pool
		a.shutdowns = append(a.shutdowns, func() {
			logger.Info("Repository: Закрытие всех соединений PostgreSQL")
			pool.Close()
		})

		if err := postgres.Migrate(ctx, pool, "internal/migrations"); err != nil {
			return fmt.Errorf("миграции: %w", err)
		}

		taskRepo = taskpg.New(pool)
		ticketRepo = ticketpg.New(pool)
		userRepo = userpg.New(pool)
	} else {
		taskRepo = taskinmem.NewTaskStorage()
		ticketRepo = ticketinmem.NewTicketStorage()
		userRepo = userinmem.NewUserStorage()
	}

	tokens := auth.NewTokenManager(a.config.Auth.Secret, a.config.Auth.TokenTTL)

	taskService := service.NewTaskService(taskRepo, files)
	ticketService := service.NewTicketService(ticketRepo, files)
	assignService := service.NewAssignService(userRepo)
	authService := service.NewAuthService(userRepo, tokens)

	taskHandler := handlers.NewTaskHandler(&taskService)
	ticketHandler := handlers.NewTicketHandler(&ticketService)
	assignHandler := handlers.NewAssignHandler(&assignService)
	authHandler := handlers.NewAuthHandler(&authService, tokens.TTL())

	a.worker = worker.NewSweepWorker(files, &a.config.Worker.SweepInterval)

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(middleware.RateLimit(100))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
	}))

	r.Post("/auth/login", authHandler.PostLogin)
	r.Post("/auth/logout", authHandler.PostLogout)
	r.Get("/health", taskHandler.HealthCheck)

	// всё остальное только с валидным токеном
	r.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(tokens))

		r.Route("/tasks", func(r chi.Router) {
			r.Get("/", taskHandler.GetMyTasks)
			r.Post("/", taskHandler.PostTask)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", taskHandler.GetTaskByID)
				r.Post("/followups", taskHandler.PostFollowup)
			})
		})

		r.Route("/tickets", func(r chi.Router) {
			// регистрация заявок только для офиса
			r.With(middleware.RequireRole(user.RoleAdmin, user.RoleManager)).
				Post("/", ticketHandler.PostTicket)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", ticketHandler.GetTicket)
				r.Post("/report", ticketHandler.PostReport)
				r.Post("/installation-report", ticketHandler.PostInstallationReport)
				r.Post("/feedback", ticketHandler.PostFeedback)
			})
		})

		r.Get("/assignable", assignHandler.GetAssignable)
	})

	a.server = &http.Server{
		Addr:         a.config.GetServerAddr(),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return nil
}

func (a *App) Run(ctx context.Context) error {
	workerCtx, cancelWorker := context.WithCancel(ctx)
	go a.worker.Start(workerCtx)
	a.shutdowns = append(a.shutdowns, cancelWorker)

	logger.Info("Server started")
	if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("запуск сервера: %w", err)
	}
	return nil
}

func (a *App) Shutdown(ctx context.Context) {
	logger.Info("Завершение работы сервера...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := a.server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Ошибка остановки сервера", err)
	}

	for i := len(a.shutdowns) - 1; i >= 0; i-- {
		a.shutdowns[i]()
	}
}
