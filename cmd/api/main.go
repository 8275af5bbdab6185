package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-account-api/internal/application/auth"
	"github.com/go-account-api/internal/application/profile"
	"github.com/go-account-api/internal/config"
	"github.com/go-account-api/internal/domain"
	"github.com/go-account-api/internal/infrastructure/dynamo"
	jwtinfra "github.com/go-account-api/internal/infrastructure/jwt"
	"github.com/go-account-api/internal/infrastructure/memory"
	"github.com/go-account-api/internal/infrastructure/notify"
	"github.com/go-account-api/internal/infrastructure/redislock"
	"github.com/go-account-api/internal/infrastructure/smtp"
	"github.com/go-account-api/internal/infrastructure/sns"
	"github.com/go-account-api/internal/pkg/keylock"
	"github.com/go-account-api/internal/pkg/otp"
	"github.com/go-account-api/internal/pkg/password"
	transporthttp "github.com/go-account-api/internal/transport/http"
	"github.com/joho/godotenv"
)

// accountStore is satisfied by both the DynamoDB repo and the in-memory store.
type accountStore interface {
	GetAccount(ctx context.Context, email string) (*domain.Account, error)
	SaveAccount(ctx context.Context, a *domain.Account) error
	GetPending(ctx context.Context, email string) (*domain.PendingAccount, error)
	PutPending(ctx context.Context, p *domain.PendingAccount) error
	Promote(ctx context.Context, a *domain.Account, code string) error
}

type locker interface {
	Lock(ctx context.Context, key string) (func(), error)
}

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, reading from environment")
	}

	cfg := config.Load()
	ctx := context.Background()

	store, err := newStore(ctx, cfg)
	if err != nil {
		fatal("account store unavailable", err)
	}
	locks, err := newLocker(ctx, cfg)
	if err != nil {
		fatal("lock backend unavailable", err)
	}
	tokens, err := jwtinfra.NewProvider(cfg)
	if err != nil {
		fatal("JWT provider not available", err)
	}

	deps := &transporthttp.Deps{
		Auth: auth.NewService(auth.ServiceDeps{
			Store:    store,
			Notifier: newNotifier(ctx, cfg),
			Tokens:   tokens,
			OTP:      otp.NewGenerator(),
			Hasher:   password.NewHasher(cfg.BcryptCost),
			Locker:   locks,
			OTPTTL:   cfg.OTPTTL,
		}),
		Profile: profile.NewService(profile.ServiceDeps{Store: store, Locker: locks}),
		Tokens:  tokens,
	}

	router := transporthttp.NewRouter(cfg, deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "port", cfg.AppPort, "env", cfg.AppEnv, "store", cfg.StoreBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fatal("server error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		fatal("forced shutdown", err)
	}
	slog.Info("server stopped")
}

func newStore(ctx context.Context, cfg *config.Config) (accountStore, error) {
	switch cfg.StoreBackend {
	case "memory":
		slog.Warn("using in-memory account store, data is lost on restart")
		return memory.NewStore(), nil
	case "dynamo":
		client, err := dynamo.NewClient(ctx, cfg)
		if err != nil {
			return nil, err
		}
		// Creates the tables if they don't exist.
		dynamo.Bootstrap(ctx, client, cfg.DynamoTables)
		return dynamo.NewAccountRepo(client, cfg.DynamoTables), nil
	default:
		return nil, fmt.Errorf("unknown STORE_BACKEND %q", cfg.StoreBackend)
	}
}

// newLocker serializes per-email work across instances when Redis is configured,
// otherwise only within this process.
func newLocker(ctx context.Context, cfg *config.Config) (locker, error) {
	if cfg.RedisURL == "" {
		return keylock.New(), nil
	}
	l, err := redislock.NewFromURL(cfg.RedisURL, cfg.LockTTL)
	if err != nil {
		return nil, err
	}
	if err := l.Ping(ctx); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return l, nil
}

func newNotifier(ctx context.Context, cfg *config.Config) notify.Notifier {
	var primary notify.Notifier
	if cfg.MailEnabled {
		primary = smtp.NewOTPNotifier(smtp.NewMailer(cfg), cfg.OTPTTL)
	} else {
		slog.Warn("mail delivery disabled, OTP codes are written to the log")
		primary = notify.NewLog(slog.Default())
	}
	if cfg.SNSTopicARN == "" {
		return primary
	}
	topic, err := sns.NewTopicNotifier(ctx, cfg)
	if err != nil {
		slog.Warn("SNS topic notifier not available", "err", err)
		return primary
	}
	return notify.Multi{primary, topic}
}

func fatal(msg string, err error) {
	slog.Error(msg, "err", err)
	os.Exit(1)
}
