package repository

import (
	"fmt"
	"strings"
	"testing"

	"gigmatch/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// testDB opens a private in-memory database named after the test so cases
// never see each other's rows.
func testDB(t *testing.T) *gorm.DB {
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
	return db
}

func seedUser(t *testing.T, db *gorm.DB, role, name string, opts ...func(*models.User)) *models.User {
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
	for _, opt := range opts {
		opt(u)
	}
	// GORM never persists zero values for fields carrying a `default:` tag
	// (it even rewrites the struct field to the default before the INSERT),
	// so an opt setting e.g. Visible=false is silently lost on Create.
	// Capture the intended values first, then re-apply them with a map
	// update, which has no zero-value special case.
	want := map[string]any{
		"visible":          u.Visible,
		"setup_complete":   u.SetupComplete,
		"accepting_gigs":   u.AcceptingGigs,
		"search_radius_km": u.SearchRadiusKm,
		"rating":           u.Rating,
	}
	require.NoError(t, db.Create(u).Error)
	require.NoError(t, db.Model(u).Updates(want).Error)
	u.Visible = want["visible"].(bool)
	u.SetupComplete = want["setup_complete"].(bool)
	u.AcceptingGigs = want["accepting_gigs"].(bool)
	u.SearchRadiusKm = want["search_radius_km"].(float64)
	u.Rating = want["rating"].(float64)
	return u
}

func ptr[T any](v T) *T { return &v }
