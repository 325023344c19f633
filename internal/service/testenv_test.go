package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"gigmatch/config"
	"gigmatch/internal/domain"
	"gigmatch/internal/models"
	"gigmatch/internal/repository"
	"gigmatch/internal/ws"
	"gigmatch/pkg/payment"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// env bundles a fresh in-memory database with the full service graph, wired
// the same way the router wires production.
type env struct {
	db        *gorm.DB
	users     *repository.UserRepository
	decisions *repository.DecisionRepository
	quotas    *repository.QuotaRepository
	gigs      *repository.GigRepository
	bookings  *repository.BookingRepository

	limiter     *RateLimiter
	matchSvc    *MatchService
	decisionSvc *DecisionService
	bookingSvc  *BookingService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Decision{},
		&models.SwipeQuota{},
		&models.Match{},
		&models.Gig{},
		&models.Application{},
		&models.Booking{},
		&models.Notification{},
	))

	cfg := config.Load()
	userRepo := repository.NewUserRepository(db)
	decisionRepo := repository.NewDecisionRepository(db)
	quotaRepo := repository.NewQuotaRepository(db)
	matchRepo := repository.NewMatchRepository(db)
	gigRepo := repository.NewGigRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	notifRepo := repository.NewNotificationRepository(db)

	hub := ws.NewHub()
	notifier := NewNotificationService(notifRepo, userRepo, nil)
	limiter := NewRateLimiter(quotaRepo, cfg.Quota)
	matchSvc := NewMatchService(db, decisionRepo, matchRepo, userRepo, notifier, hub)
	decisionSvc := NewDecisionService(decisionRepo, userRepo, limiter, matchSvc, cfg.Quota.UndoWindow)
	bookingSvc := NewBookingService(db, bookingRepo, gigRepo, matchRepo, userRepo, &fakeGateway{}, cfg.Payment, notifier, hub)

	return &env{
		db:          db,
		users:       userRepo,
		decisions:   decisionRepo,
		quotas:      quotaRepo,
		gigs:        gigRepo,
		bookings:    bookingRepo,
		limiter:     limiter,
		matchSvc:    matchSvc,
		decisionSvc: decisionSvc,
		bookingSvc:  bookingSvc,
	}
}

func (e *env) seedUser(t *testing.T, role, name string) *models.User {
	t.Helper()
	u := &models.User{
		Username:      name,
		Email:         name + "@example.com",
		Role:          role,
		DisplayName:   name,
		Visible:       true,
		SetupComplete: true,
		AcceptingGigs: true,
	}
	require.NoError(t, e.db.Create(u).Error)
	return u
}

func (e *env) seedGig(t *testing.T, venueID uint, required int) *models.Gig {
	t.Helper()
	g := &models.Gig{
		VenueID:            venueID,
		Title:              "saturday showcase",
		BudgetCents:        100_000,
		Currency:           "USD",
		DepositPercent:     25,
		EventDate:          time.Now().Add(7 * 24 * time.Hour),
		RequiredPerformers: required,
		Status:             domain.GigStatusOpen,
	}
	require.NoError(t, e.db.Create(g).Error)
	return g
}

func (e *env) seedApplication(t *testing.T, gigID, applicantID uint) *models.Application {
	t.Helper()
	live := true
	a := &models.Application{
		GigID:       gigID,
		ApplicantID: applicantID,
		Live:        &live,
		Status:      domain.ApplicationStatusPending,
		AppliedAt:   time.Now(),
	}
	require.NoError(t, e.db.Create(a).Error)
	return a
}

func ptr[T any](v T) *T { return &v }

func testQuotaConfig(performerDecisions, venueDecisions, undos int) config.QuotaConfig {
	return config.QuotaConfig{
		PerformerDailyDecisions: performerDecisions,
		VenueDailyDecisions:     venueDecisions,
		DailyUndos:              undos,
		UndoWindow:              5 * time.Minute,
	}
}

// fakeGateway issues predictable intent references so tests can replay and
// mismatch them deliberately.
type fakeGateway struct {
	calls int
}

func (g *fakeGateway) CreateIntent(ctx context.Context, amountCents int64, currency string, metadata map[string]string) (*payment.Intent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	g.calls++
	ref := fmt.Sprintf("fake_intent_%d", g.calls)
	return &payment.Intent{ID: ref, ClientSecret: ref + "_secret", Status: payment.StatusPending}, nil
}

func (g *fakeGateway) ConfirmIntent(ctx context.Context, intentID string) (string, error) {
	return payment.StatusSucceeded, nil
}
