package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	JWT        JWTConfig
	Quota      QuotaConfig
	Discovery  DiscoveryConfig
	Payment    PaymentConfig
	Firebase   FirebaseConfig
	Cloudinary CloudinaryConfig
}

type ServerConfig struct {
	Port         string
	Env          string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	DSN             string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

type JWTConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
	Issuer        string
}

// QuotaConfig holds the daily swipe quotas. Performers get a smaller decision
// budget than venues; the undo budget is shared across roles.
type QuotaConfig struct {
	PerformerDailyDecisions int
	VenueDailyDecisions     int
	DailyUndos              int
	UndoWindow              time.Duration
}

type DiscoveryConfig struct {
	DefaultRadiusKm float64
	MaxRadiusKm     float64
	PageSize        int
	MaxPageSize     int
}

type PaymentConfig struct {
	Provider      string
	IntentTimeout time.Duration // bound on gateway calls; mutating calls are never retried
}

type FirebaseConfig struct {
	ServiceAccountPath string
}

type CloudinaryConfig struct {
	CloudName string
	APIKey    string
	APISecret string
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getenv("PORT", "8080"),
			Env:          getenv("APP_ENV", "development"),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			DSN:             getenv("DATABASE_DSN", "gigmatch:gigmatch@tcp(localhost:3306)/gigmatch?charset=utf8mb4&parseTime=True&loc=Local"),
			MaxIdleConns:    10,
			MaxOpenConns:    100,
			ConnMaxLifetime: time.Hour,
		},
		JWT: JWTConfig{
			AccessSecret:  getenv("JWT_ACCESS_SECRET", "change-me-in-production"),
			RefreshSecret: getenv("JWT_REFRESH_SECRET", "change-me-refresh"),
			AccessExpiry:  15 * time.Minute,
			RefreshExpiry: 168 * time.Hour,
			Issuer:        "gigmatch",
		},
		Quota: QuotaConfig{
			PerformerDailyDecisions: getint("QUOTA_PERFORMER_DECISIONS", 100),
			VenueDailyDecisions:     getint("QUOTA_VENUE_DECISIONS", 200),
			DailyUndos:              getint("QUOTA_DAILY_UNDOS", 10),
			UndoWindow:              5 * time.Minute,
		},
		Discovery: DiscoveryConfig{
			DefaultRadiusKm: 50,
			MaxRadiusKm:     200,
			PageSize:        20,
			MaxPageSize:     50,
		},
		Payment: PaymentConfig{
			Provider:      getenv("PAYMENT_PROVIDER", "stub"),
			IntentTimeout: 15 * time.Second,
		},
		Firebase: FirebaseConfig{
			ServiceAccountPath: os.Getenv("FIREBASE_SERVICE_ACCOUNT_PATH"),
		},
		Cloudinary: CloudinaryConfig{
			CloudName: os.Getenv("CLOUDINARY_CLOUD_NAME"),
			APIKey:    os.Getenv("CLOUDINARY_API_KEY"),
			APISecret: os.Getenv("CLOUDINARY_API_SECRET"),
		},
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getint(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
