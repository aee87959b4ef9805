package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/securepass-ai/securepass-backend-go/internal/config"
	"github.com/securepass-ai/securepass-backend-go/internal/domain/access"
	"github.com/securepass-ai/securepass-backend-go/internal/domain/admin"
	"github.com/securepass-ai/securepass-backend-go/internal/domain/auth"
	"github.com/securepass-ai/securepass-backend-go/internal/domain/company"
	"github.com/securepass-ai/securepass-backend-go/internal/domain/door"
	"github.com/securepass-ai/securepass-backend-go/internal/domain/history"
	"github.com/securepass-ai/securepass-backend-go/internal/domain/message"
	"github.com/securepass-ai/securepass-backend-go/internal/domain/user"
	"github.com/securepass-ai/securepass-backend-go/internal/fixtures"
	appHTTP "github.com/securepass-ai/securepass-backend-go/internal/handler/http"
	"github.com/securepass-ai/securepass-backend-go/internal/pkg/cron"
	"github.com/securepass-ai/securepass-backend-go/internal/pkg/database"
	"github.com/securepass-ai/securepass-backend-go/internal/pkg/email"
	"github.com/securepass-ai/securepass-backend-go/internal/pkg/events"
	"github.com/securepass-ai/securepass-backend-go/internal/pkg/jwt"
	"github.com/securepass-ai/securepass-backend-go/internal/pkg/oauth"
	"github.com/securepass-ai/securepass-backend-go/internal/pkg/sse"
	"github.com/securepass-ai/securepass-backend-go/internal/pkg/storage"
	"github.com/securepass-ai/securepass-backend-go/internal/repository/memory"
	"github.com/securepass-ai/securepass-backend-go/internal/repository/postgresql"
	serviceAccess "github.com/securepass-ai/securepass-backend-go/internal/service/access"
	serviceAdmin "github.com/securepass-ai/securepass-backend-go/internal/service/admin"
	serviceAuth "github.com/securepass-ai/securepass-backend-go/internal/service/auth"
	serviceCompany "github.com/securepass-ai/securepass-backend-go/internal/service/company"
	serviceDoor "github.com/securepass-ai/securepass-backend-go/internal/service/door"
	"github.com/securepass-ai/securepass-backend-go/internal/service/file"
	serviceHistory "github.com/securepass-ai/securepass-backend-go/internal/service/history"
	serviceMessage "github.com/securepass-ai/securepass-backend-go/internal/service/message"
	"github.com/securepass-ai/securepass-backend-go/internal/service/notification"
	serviceUser "github.com/securepass-ai/securepass-backend-go/internal/service/user"
)

// repositories is the set of stores selected by STORE_DRIVER.
type repositories struct {
	tx        database.Transactor
	companies company.CompanyRepository
	admins    admin.AdminRepository
	users     user.UserRepository
	doors     door.DoorRepository
	requests  access.PermissionRequestRepository
	ledger    access.LedgerRepository
	history   history.HistoryRepository
	messages  message.MessageRepository
	tokens    auth.RefreshTokenRepository
	close     func()
}

func openRepositories(ctx context.Context, cfg *config.Config) (repositories, error) {
	if cfg.App.StoreDriver == "memory" {
		store := memory.New()
		slog.Warn("Using in-memory store, data is lost on restart")
		return repositories{
			tx:        store.Transactor(),
			companies: store.Companies(),
			admins:    store.Admins(),
			users:     store.Users(),
			doors:     store.Doors(),
			requests:  store.PermissionRequests(),
			ledger:    store.Ledger(),
			history:   store.History(),
			messages:  store.Messages(),
			tokens:    store.RefreshTokens(),
			close:     func() {},
		}, nil
	}

	db, err := database.NewPostgreSQLDB(cfg.DatabaseURL(),
		database.WithPoolSize(cfg.Database.MinConns, cfg.Database.MaxConns),
		database.WithConnMaxLifetime(time.Hour),
	)
	if err != nil {
		return repositories{}, fmt.Errorf("connect to database: %w", err)
	}
	if err := database.Migrate(ctx, db); err != nil {
		db.Close()
		return repositories{}, fmt.Errorf("migrate database: %w", err)
	}

	return repositories{
		tx:        postgresql.NewTransactor(db),
		companies: postgresql.NewCompanyRepository(db),
		admins:    postgresql.NewAdminRepository(db),
		users:     postgresql.NewUserRepository(db),
		doors:     postgresql.NewDoorRepository(db),
		requests:  postgresql.NewPermissionRequestRepository(db),
		ledger:    postgresql.NewLedgerRepository(db),
		history:   postgresql.NewHistoryRepository(db),
		messages:  postgresql.NewMessageRepository(db),
		tokens:    postgresql.NewJWTRepository(db),
		close:     db.Close,
	}, nil
}

func logLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Error loading config: ", err)
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel(cfg.App.LogLevel),
	})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repos, err := openRepositories(ctx, cfg)
	if err != nil {
		log.Fatal("Failed to open store: ", err)
	}
	defer repos.close()

	if _, err := fixtures.SeedSuperAdmin(ctx, repos.admins, fixtures.SuperAdminSeed{
		Name:     cfg.Bootstrap.SuperAdminName,
		Email:    cfg.Bootstrap.SuperAdminEmail,
		Password: cfg.Bootstrap.SuperAdminPassword,
	}); err != nil {
		log.Fatal("Failed to seed super admin: ", err)
	}

	// Token revocation
	var revocationStore jwt.RevocationStore
	var redisClient *redis.Client
	if cfg.Redis.Host != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Fatal("Failed to connect to redis: ", err)
		}
		defer redisClient.Close()
		revocationStore = jwt.NewRedisRevocationStore(redisClient)
	}
	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration, cfg.JWT.RefreshExpiration, revocationStore)

	var googleService oauth.GoogleService
	if cfg.OAuth2Google.Enabled() {
		googleService = oauth.NewGoogleService(cfg.OAuth2Google.ClientID, cfg.OAuth2Google.ClientSecret, cfg.OAuth2Google.RedirectURL, cfg.OAuth2Google.Scopes)
	}

	// Live events: the SSE hub always, NATS when configured
	hub := sse.NewHub()
	publisher := events.Fanout{sse.NewPublisher(hub)}
	if cfg.NATS.URL != "" {
		bus, err := events.NewNATSEventBus(cfg.NATS.URL)
		if err != nil {
			log.Fatal("Failed to connect to NATS: ", err)
		}
		publisher = append(publisher, bus)
	}
	defer publisher.Close()

	fileStorage, err := storage.NewLocalStorage(cfg.Storage.BasePath, cfg.Storage.BaseURL)
	if err != nil {
		log.Fatal("Failed to initialize local storage: ", err)
	}
	fileService := file.NewFileService(fileStorage)

	var replyNotifier message.ReplyNotifier
	if cfg.SMTP.Host != "" {
		emailService, err := email.NewEmailService(cfg.SMTP)
		if err != nil {
			log.Fatal("Failed to initialize email service: ", err)
		}
		notificationService := notification.NewNotificationService(emailService, notification.Config{WorkerCount: 2, QueueSize: 100})
		defer notificationService.Stop()
		replyNotifier = notificationService
	} else {
		slog.Warn("SMTP_HOST not set, reply emails are disabled")
	}

	authService := serviceAuth.NewAuthService(repos.tx, repos.admins, repos.users, repos.tokens, JWTService)
	companyService := serviceCompany.NewCompanyService(repos.companies)
	adminService := serviceAdmin.NewAdminService(repos.admins, repos.companies)
	userService := serviceUser.NewUserService(repos.users, fileService)
	doorService := serviceDoor.NewDoorService(repos.tx, repos.doors, repos.companies, fileService)
	accessService := serviceAccess.NewAccessService(repos.tx, repos.requests, repos.ledger, repos.users, repos.doors, publisher)
	historyService := serviceHistory.NewHistoryService(repos.tx, repos.history, repos.ledger, repos.users, repos.doors, publisher)
	messageService := serviceMessage.NewMessageService(repos.messages, replyNotifier)

	authHandler := appHTTP.NewAuthHandler(JWTService, authService, googleService, cfg.App.FrontendURL)
	companyHandler := appHTTP.NewCompanyHandler(companyService)
	adminHandler := appHTTP.NewAdminHandler(adminService)
	userHandler := appHTTP.NewUserHandler(userService, accessService, historyService)
	doorHandler := appHTTP.NewDoorHandler(doorService, accessService)
	accessHandler := appHTTP.NewAccessHandler(accessService)
	historyHandler := appHTTP.NewHistoryHandler(historyService)
	messageHandler := appHTTP.NewMessageHandler(messageService)
	eventsHandler := appHTTP.NewEventsHandler(hub, JWTService)

	router := appHTTP.NewRouter(
		appHTTP.RouterConfig{
			Env:         cfg.App.Env,
			FrontendURL: cfg.App.FrontendURL,
			UploadDir:   cfg.Storage.BasePath,
		},
		JWTService,
		authHandler,
		companyHandler,
		adminHandler,
		userHandler,
		doorHandler,
		accessHandler,
		historyHandler,
		messageHandler,
		eventsHandler,
	)

	scheduler := cron.NewScheduler()
	cron.NewTokenJobs(authService).RegisterJobs(scheduler)
	scheduler.Start()
	defer scheduler.Stop()

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		// cancels open event streams on shutdown
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	go func() {
		slog.Info("Server running", "addr", server.Addr, "store", cfg.App.StoreDriver)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Graceful shutdown failed", "error", err)
	}
}
