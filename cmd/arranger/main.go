package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/akapochi/event-management/internal/application"
	"github.com/akapochi/event-management/internal/config"
	httptransport "github.com/akapochi/event-management/internal/http"
	"github.com/akapochi/event-management/internal/persistence"
	"github.com/akapochi/event-management/internal/persistence/sqlite"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Missing .env is fine; real deployments use environment variables.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	pool, err := sqlite.NewConnectionPool(cfg.SQLiteDSN)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := pool.Close(); cerr != nil {
			logger.Error("failed to close database", "error", cerr)
		}
	}()

	if err := pool.Ping(context.Background()); err != nil {
		logger.Error("failed to reach database", "error", err)
		os.Exit(1)
	}

	if err := pool.Migrate(context.Background()); err != nil {
		logger.Error("failed to apply migrations", "error", err)
		os.Exit(1)
	}

	idGenerator := uuid.NewString
	tokenGenerator := func() string { return randomHex(32) }
	stateGenerator := func() string { return randomHex(16) }
	now := time.Now

	userRepo := newUserRepositoryAdapter(sqlite.NewUserRepository(pool))
	scheduleRepo := newScheduleRepositoryAdapter(sqlite.NewScheduleRepository(pool))
	availabilityRepo := newAvailabilityRepositoryAdapter(sqlite.NewAvailabilityRepository(pool))
	sessionRepo := newSessionRepositoryAdapter(sqlite.NewSessionRepository(pool))

	policy := application.OwnershipPolicy{AdminUserID: cfg.AdminUserID}

	userService := application.NewUserServiceWithLogger(userRepo, logger)
	scheduleService := application.NewScheduleServiceWithLogger(scheduleRepo, availabilityRepo, userRepo, policy, idGenerator, now, logger)
	availabilityService := application.NewAvailabilityServiceWithLogger(scheduleRepo, availabilityRepo, logger)
	authService := application.NewAuthServiceWithLogger(sessionRepo, userRepo, cfg.AdminUserID, tokenGenerator, now, cfg.SessionTTL, logger)

	var providers []httptransport.OAuthProvider
	if cfg.GitHub.Configured() {
		providers = append(providers, httptransport.NewGitHubProvider(
			cfg.GitHub.ClientID, cfg.GitHub.ClientSecret, cfg.BaseURL+"/auth/github/callback"))
	}
	if cfg.Google.Configured() {
		providers = append(providers, httptransport.NewGoogleProvider(
			cfg.Google.ClientID, cfg.Google.ClientSecret, cfg.BaseURL+"/auth/google/callback"))
	}
	if len(providers) == 0 {
		logger.Warn("no oauth providers configured; logins will fail until credentials are set")
	}

	authHandler := httptransport.NewAuthHandler(userService, authService, providers, stateGenerator, logger)
	scheduleHandler := httptransport.NewScheduleHandler(scheduleService, logger)
	availabilityHandler := httptransport.NewAvailabilityHandler(availabilityService, logger)

	handler := httptransport.NewRouter(httptransport.RouterConfig{
		Auth:              authHandler,
		Schedules:         scheduleHandler,
		Availabilities:    availabilityHandler,
		SessionMiddleware: httptransport.RequireSession(authService, logger),
		Middleware: []func(http.Handler) http.Handler{
			httptransport.RequestLogger(logger),
		},
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("schedule arranger listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server encountered error", "error", err)
		os.Exit(1)
	}
}

func randomHex(bytes int) string {
	if bytes <= 0 {
		bytes = 16
	}
	buf := make([]byte, bytes)
	if _, err := io.ReadFull(rand.Reader, buf); err != nil {
		return fmt.Sprintf("fallback-%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(buf)
}

// The adapters below bridge the application-layer interfaces, which speak
// application types, to the SQLite repositories, which speak persistence
// types.

type userRepositoryAdapter struct {
	repo persistence.UserRepository
}

func newUserRepositoryAdapter(repo persistence.UserRepository) *userRepositoryAdapter {
	return &userRepositoryAdapter{repo: repo}
}

func (a *userRepositoryAdapter) UpsertUser(ctx context.Context, user application.User) error {
	return a.repo.UpsertUser(ctx, persistence.User{
		UserID:      user.UserID,
		Username:    user.Username,
		MailAddress: user.MailAddress,
	})
}

func (a *userRepositoryAdapter) GetUser(ctx context.Context, id string) (application.User, error) {
	stored, err := a.repo.GetUser(ctx, id)
	if err != nil {
		return application.User{}, err
	}
	return toApplicationUser(stored), nil
}

type scheduleRepositoryAdapter struct {
	repo persistence.ScheduleRepository
}

func newScheduleRepositoryAdapter(repo persistence.ScheduleRepository) *scheduleRepositoryAdapter {
	return &scheduleRepositoryAdapter{repo: repo}
}

func (a *scheduleRepositoryAdapter) CreateSchedule(ctx context.Context, schedule application.Schedule) (application.Schedule, error) {
	if err := a.repo.CreateSchedule(ctx, toPersistenceSchedule(schedule)); err != nil {
		return application.Schedule{}, err
	}
	stored, err := a.repo.GetSchedule(ctx, schedule.ScheduleID)
	if err != nil {
		return application.Schedule{}, err
	}
	return toApplicationSchedule(stored), nil
}

func (a *scheduleRepositoryAdapter) GetSchedule(ctx context.Context, id string) (application.Schedule, error) {
	stored, err := a.repo.GetSchedule(ctx, id)
	if err != nil {
		return application.Schedule{}, err
	}
	return toApplicationSchedule(stored), nil
}

func (a *scheduleRepositoryAdapter) UpdateSchedule(ctx context.Context, schedule application.Schedule) (application.Schedule, error) {
	if err := a.repo.UpdateSchedule(ctx, toPersistenceSchedule(schedule)); err != nil {
		return application.Schedule{}, err
	}
	stored, err := a.repo.GetSchedule(ctx, schedule.ScheduleID)
	if err != nil {
		return application.Schedule{}, err
	}
	return toApplicationSchedule(stored), nil
}

func (a *scheduleRepositoryAdapter) DeleteSchedule(ctx context.Context, id string) error {
	return a.repo.DeleteSchedule(ctx, id)
}

func (a *scheduleRepositoryAdapter) ListSchedulesByOwner(ctx context.Context, ownerID string) ([]application.Schedule, error) {
	models, err := a.repo.ListSchedulesByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if len(models) == 0 {
		return nil, nil
	}
	schedules := make([]application.Schedule, 0, len(models))
	for _, model := range models {
		schedules = append(schedules, toApplicationSchedule(model))
	}
	return schedules, nil
}

type availabilityRepositoryAdapter struct {
	repo persistence.AvailabilityRepository
}

func newAvailabilityRepositoryAdapter(repo persistence.AvailabilityRepository) *availabilityRepositoryAdapter {
	return &availabilityRepositoryAdapter{repo: repo}
}

func (a *availabilityRepositoryAdapter) UpsertAvailability(ctx context.Context, scheduleID, userID string, availability int) error {
	return a.repo.UpsertAvailability(ctx, persistence.Availability{
		ScheduleID:   scheduleID,
		UserID:       userID,
		Availability: availability,
	})
}

func (a *availabilityRepositoryAdapter) ListAvailabilitiesForSchedule(ctx context.Context, scheduleID string) ([]application.AvailabilityEntry, error) {
	rows, err := a.repo.ListAvailabilitiesForSchedule(ctx, scheduleID)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	entries := make([]application.AvailabilityEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, application.AvailabilityEntry{
			User:         toApplicationUser(row.User),
			Availability: row.Availability.Availability,
		})
	}
	return entries, nil
}

func (a *availabilityRepositoryAdapter) DeleteAvailabilitiesForSchedule(ctx context.Context, scheduleID string) error {
	return a.repo.DeleteAvailabilitiesForSchedule(ctx, scheduleID)
}

type sessionRepositoryAdapter struct {
	repo persistence.SessionRepository
}

func newSessionRepositoryAdapter(repo persistence.SessionRepository) *sessionRepositoryAdapter {
	return &sessionRepositoryAdapter{repo: repo}
}

func (a *sessionRepositoryAdapter) CreateSession(ctx context.Context, session application.Session) error {
	return a.repo.CreateSession(ctx, persistence.Session{
		Token:     session.Token,
		UserID:    session.UserID,
		ExpiresAt: session.ExpiresAt,
		CreatedAt: session.CreatedAt,
	})
}

func (a *sessionRepositoryAdapter) GetSession(ctx context.Context, token string) (application.Session, error) {
	stored, err := a.repo.GetSession(ctx, token)
	if err != nil {
		return application.Session{}, err
	}
	return application.Session{
		Token:     stored.Token,
		UserID:    stored.UserID,
		ExpiresAt: stored.ExpiresAt,
		CreatedAt: stored.CreatedAt,
	}, nil
}

func (a *sessionRepositoryAdapter) DeleteSession(ctx context.Context, token string) error {
	return a.repo.DeleteSession(ctx, token)
}

func (a *sessionRepositoryAdapter) DeleteExpiredSessions(ctx context.Context, reference time.Time) error {
	return a.repo.DeleteExpiredSessions(ctx, reference)
}

func toApplicationUser(user persistence.User) application.User {
	return application.User{
		UserID:      user.UserID,
		Username:    user.Username,
		MailAddress: user.MailAddress,
	}
}

func toApplicationSchedule(schedule persistence.Schedule) application.Schedule {
	return application.Schedule{
		ScheduleID:   schedule.ScheduleID,
		ScheduleName: schedule.ScheduleName,
		Memo:         schedule.Memo,
		CreatedBy:    schedule.CreatedBy,
		UpdatedAt:    schedule.UpdatedAt,
		Day:          schedule.Day,
		Style:        schedule.Style,
		Term:         schedule.Term,
	}
}

func toPersistenceSchedule(schedule application.Schedule) persistence.Schedule {
	return persistence.Schedule{
		ScheduleID:   schedule.ScheduleID,
		ScheduleName: schedule.ScheduleName,
		Memo:         schedule.Memo,
		CreatedBy:    schedule.CreatedBy,
		UpdatedAt:    schedule.UpdatedAt,
		Day:          schedule.Day,
		Style:        schedule.Style,
		Term:         schedule.Term,
	}
}
