package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	DB      DBConfig
	Blob    BlobConfig
	JWT     JWTConfig
	Server  ServerConfig
	Storage StorageConfig
	Cache   CacheConfig
	Log     LogConfig
	Admin   AdminConfig
}

type DBConfig struct {
	Driver   string
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
	Path     string
}

// BlobConfig selects and configures the blob store. An empty AccessKey makes
// the minio backend fall back to IAM credentials.
type BlobConfig struct {
	Backend        string
	Endpoint       string
	PublicEndpoint string
	AccessKey      string
	SecretKey      string
	Bucket         string
	Region         string
	UseSSL         bool
	URLExpiry      time.Duration
	SlotExpiry     time.Duration
	MemoryBaseURL  string
}

type JWTConfig struct {
	Secret          string
	ExpirationHours int
}

type ServerConfig struct {
	Port         string
	BodyLimitMB  int
	AllowOrigins string
}

// StorageConfig holds presentation figures for the usage dashboard. The
// capacity is never enforced on upload.
type StorageConfig struct {
	CapacityBytes int64
	WarnPercent   float64
}

type CacheConfig struct {
	URLCacheSize int
	URLCacheTTL  time.Duration
}

type LogConfig struct {
	Level  string
	Format string
}

type AdminConfig struct {
	Email    string
	Password string
}

func Load() *Config {
	urlExpiry := getEnvAsDuration("BLOB_URL_EXPIRY", 1*time.Hour)
	port := getEnv("SERVER_PORT", "8080")

	return &Config{
		DB: DBConfig{
			Driver:   getEnv("DB_DRIVER", "postgres"),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "sharebox"),
			Password: getEnv("DB_PASSWORD", "sharebox_secret"),
			Name:     getEnv("DB_NAME", "sharebox"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			Path:     getEnv("DB_PATH", "sharebox.db"),
		},
		Blob: BlobConfig{
			Backend:        getEnv("BLOB_BACKEND", "minio"),
			Endpoint:       getEnv("MINIO_ENDPOINT", "localhost:9000"),
			PublicEndpoint: getEnv("MINIO_PUBLIC_ENDPOINT", getEnv("MINIO_ENDPOINT", "localhost:9000")),
			AccessKey:      getEnv("MINIO_ACCESS_KEY", "sharebox"),
			SecretKey:      getEnv("MINIO_SECRET_KEY", "sharebox_secret"),
			Bucket:         getEnv("MINIO_BUCKET", "sharebox"),
			Region:         getEnv("MINIO_REGION", ""),
			UseSSL:         getEnvAsBool("MINIO_USE_SSL", false),
			URLExpiry:      urlExpiry,
			SlotExpiry:     getEnvAsDuration("BLOB_SLOT_EXPIRY", 15*time.Minute),
			MemoryBaseURL:  getEnv("BLOB_MEMORY_BASE_URL", "http://localhost:"+port),
		},
		JWT: JWTConfig{
			Secret:          getEnv("JWT_SECRET", "change-me-in-production"),
			ExpirationHours: getEnvAsInt("JWT_EXPIRATION_HOURS", 24),
		},
		Server: ServerConfig{
			Port:         port,
			BodyLimitMB:  getEnvAsInt("SERVER_BODY_LIMIT_MB", 100),
			AllowOrigins: getEnv("CORS_ALLOW_ORIGINS", "http://localhost:3000,http://127.0.0.1:3000"),
		},
		Storage: StorageConfig{
			CapacityBytes: getEnvAsInt64("STORAGE_CAPACITY_BYTES", 1<<30),
			WarnPercent:   getEnvAsFloat("STORAGE_WARN_PERCENT", 80),
		},
		Cache: CacheConfig{
			URLCacheSize: getEnvAsInt("URL_CACHE_SIZE", 1024),
			URLCacheTTL:  getEnvAsDuration("URL_CACHE_TTL", urlExpiry/2),
		},
		Log: LogConfig{
			Level:  strings.ToLower(getEnv("LOG_LEVEL", "info")),
			Format: strings.ToLower(getEnv("LOG_FORMAT", "json")),
		},
		Admin: AdminConfig{
			Email:    getEnv("ADMIN_EMAIL", "admin@sharebox.local"),
			Password: getEnv("ADMIN_PASSWORD", "admin123"),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		parsed, err := strconv.Atoi(value)
		if err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvAsInt64(key string, fallback int64) int64 {
	if value, ok := os.LookupEnv(key); ok {
		parsed, err := strconv.ParseInt(value, 10, 64)
		if err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	if value, ok := os.LookupEnv(key); ok {
		parsed, err := strconv.ParseFloat(value, 64)
		if err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		parsed, err := time.ParseDuration(value)
		if err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		parsed, err := strconv.ParseBool(value)
		if err == nil {
			return parsed
		}
	}
	return fallback
}
