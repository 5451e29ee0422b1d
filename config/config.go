package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	JWTSecret     string
	TokenTTL      time.Duration
	DBHost        string
	DBPort        string
	DBUser        string
	DBPass        string
	DBName        string
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	MinioHost     string
	MinioPort     string
	MinioUsername string
	MinioPassword string
	BucketName    string
	RabbitMQURL   string
	AuditExchange string
	AuditQueue    string
	AuditFilePath string

	// DefaultQuotaBytes applies to provisioned regular users.
	// CipherQuotaBytes < 0 leaves cipher-role users without a ceiling.
	DefaultQuotaBytes int64
	CipherQuotaBytes  int64

	MaxUploadBytes int64
	MaxTreeDepth   int

	SweepInterval   time.Duration
	ResetTokenTTL   time.Duration
	PublicRateLimit float64
	PublicRateBurst int

	AdminUserName string
	AdminPassword string
	AdminEmail    string

	// PublicBaseURL prefixes links mailed to users.
	PublicBaseURL string
}

var AppConfig Config

// getEnv returns the environment value or a default.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func getEnvFloat(key string, defaultValue float64) float64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func getEnvInt64(key string, defaultValue int64) int64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return defaultValue
	}
	return parsed
}

// InitConfig loads configuration from the environment.
func InitConfig() {
	rabbitHost := getEnv("RABBITMQ_HOST", "localhost")
	rabbitPort := getEnv("RABBITMQ_PORT", "5672")
	rabbitUser := getEnv("RABBITMQ_USER", "guest")
	rabbitPass := getEnv("RABBITMQ_PASSWORD", "guest")
	rabbitVhost := getEnv("RABBITMQ_VHOST", "/")
	rabbitURL := getEnv("RABBITMQ_URL", "")
	if rabbitURL == "" {
		rabbitURL = fmt.Sprintf(
			"amqp://%s:%s@%s:%s/%s",
			url.PathEscape(rabbitUser),
			url.PathEscape(rabbitPass),
			rabbitHost,
			rabbitPort,
			url.PathEscape(rabbitVhost),
		)
	}
	AppConfig = Config{
		JWTSecret:     getEnv("JWT_SECRET", "l=ax+b"),
		TokenTTL:      getEnvDuration("TOKEN_TTL", 24*time.Hour),
		DBHost:        getEnv("DB_HOST", "localhost"),
		DBPort:        getEnv("DB_PORT", "3306"),
		DBUser:        getEnv("DB_USER", "root"),
		DBPass:        getEnv("DB_PASS", "root"),
		DBName:        getEnv("DB_NAME", "cipherdrive"),
		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		MinioHost:     getEnv("MINIO_HOST", "localhost"),
		MinioPort:     getEnv("MINIO_PORT", "9000"),
		MinioUsername: getEnv("MINIO_USERNAME", "minioadmin"),
		MinioPassword: getEnv("MINIO_PASSWORD", "minioadmin"),
		BucketName:    getEnv("BUCKET_NAME", "cipherdrive"),
		RabbitMQURL:   rabbitURL,
		AuditExchange: getEnv("AUDIT_EXCHANGE", "audit.exchange"),
		AuditQueue:    getEnv("AUDIT_QUEUE", "audit.queue"),
		AuditFilePath: getEnv("AUDIT_FILE_PATH", "logs/audit.log"),

		DefaultQuotaBytes: getEnvInt64("DEFAULT_QUOTA_BYTES", 5*1024*1024*1024),
		CipherQuotaBytes:  getEnvInt64("CIPHER_QUOTA_BYTES", -1),

		MaxUploadBytes: getEnvInt64("MAX_UPLOAD_BYTES", 2*1024*1024*1024),
		MaxTreeDepth:   getEnvInt("MAX_TREE_DEPTH", 64),

		SweepInterval:   getEnvDuration("SWEEP_INTERVAL", 10*time.Minute),
		ResetTokenTTL:   getEnvDuration("RESET_TOKEN_TTL", 30*time.Minute),
		PublicRateLimit: getEnvFloat("PUBLIC_RATE_LIMIT", 5),
		PublicRateBurst: getEnvInt("PUBLIC_RATE_BURST", 10),

		AdminUserName: getEnv("ADMIN_USERNAME", "admin"),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),
		AdminEmail:    getEnv("ADMIN_EMAIL", "admin@localhost"),

		PublicBaseURL: getEnv("PUBLIC_BASE_URL", "http://localhost:8000"),
	}
}
