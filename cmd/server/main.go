package main // Entry point package

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/rmaalouf/user-admin-api/internal/config"
	"github.com/rmaalouf/user-admin-api/internal/database"
	"github.com/rmaalouf/user-admin-api/internal/handler"
	"github.com/rmaalouf/user-admin-api/internal/jobs"
	"github.com/rmaalouf/user-admin-api/internal/queue"
	"github.com/rmaalouf/user-admin-api/internal/repository"
	"github.com/rmaalouf/user-admin-api/internal/router"
	"github.com/rmaalouf/user-admin-api/internal/service"
	"github.com/rmaalouf/user-admin-api/internal/storage"
)

func main() {
	_ = godotenv.Load() // best-effort; real deployments use the environment
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := database.Seed(ctx, db); err != nil {
		cancel()
		log.Fatalf("seed: %v", err)
	}
	if cfg.SeedBootUser {
		if _, err := database.SeedBootUser(ctx, db, cfg.BcryptCost); err != nil {
			cancel()
			log.Fatalf("seed boot user: %v", err)
		}
	}
	cancel()

	store, err := storage.New(cfg.StoragePath)
	if err != nil {
		log.Fatalf("storage: %v", err)
	}

	// Repositories.
	users := repository.NewUserRepo(db)
	roles := repository.NewRoleRepo(db)
	perms := repository.NewPermissionRepo(db)
	tokens := repository.NewTokenRepo(db)
	resets := repository.NewResetRepo(db)
	images := repository.NewImageRepo(db)

	// Events are disabled when no broker URL is configured; the
	// publisher degrades to a no-op and the consumer is not started.
	events := queue.NewPublisher(cfg.AMQPURL)
	if cfg.AMQPURL != "" {
		go queue.StartConsumer(cfg.AMQPURL)
	}

	// Services.
	tokenSvc := service.NewTokenService(db, tokens, cfg.TokenSecret, cfg.AppName, cfg.TokenTTLH)
	authSvc := service.NewAuthService(db, users, resets, tokenSvc, events, cfg.ResetTTLMin, cfg.BcryptCost)
	userSvc := &service.UserService{
		DB:         db,
		Users:      users,
		Roles:      roles,
		Perms:      perms,
		Images:     images,
		Tokens:     tokenSvc,
		Store:      store,
		Events:     events,
		BcryptCost: cfg.BcryptCost,
	}
	attachSvc := service.NewAttachService(db, users, roles, perms)
	accessSvc := service.NewAccessService(roles)

	// Retention sweep.
	cleaner := &jobs.Cleaner{Users: users, Images: images, Store: store, RetainDays: cfg.SweepAfterD}
	sched, err := jobs.Schedule(cfg.SweepSpec, cleaner)
	if err != nil {
		log.Fatalf("sweep schedule: %v", err)
	}
	defer sched.Stop()

	rdb := config.NewRedisClient() // nil disables rate limiting

	e := echo.New()
	e.HideBanner = true
	router.RegisterRoutes(e)
	router.RegisterAPI(e, router.Deps{
		Auth:        handler.NewAuthHandler(authSvc, userSvc),
		Profile:     handler.NewProfileHandler(userSvc),
		Users:       handler.NewUsersHandler(userSvc, attachSvc, accessSvc),
		TokenSecret: cfg.TokenSecret,
		Tokens:      tokens,
		UserRepo:    users,
		Perms:       perms,
		Redis:       rdb,
		RateLimit:   config.LoadRateLimitConfig(),
	})

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
