package config

import (
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Service names. Each service owns a private database and event topic.
const (
	ServiceUser    = "user"
	ServiceProduct = "product"
	ServiceMedia   = "media"
)

// DatabaseConfig holds PostgreSQL database connection settings.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
}

// MinIOConfig holds object storage settings for MinIO.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// JWTConfig holds session token settings. The secret is shared by all services
// so that any of them can verify tokens issued by the user service.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// KafkaConfig holds broker settings for best-effort event publication.
type KafkaConfig struct {
	Brokers      []string
	WriteTimeout time.Duration
	UserTopic    string
	ProductTopic string
	MediaTopic   string
}

// MediaConfig controls where uploaded files are written.
// Driver is "local" (UploadDir on disk) or "minio".
type MediaConfig struct {
	Driver       string
	UploadDir    string
	PublicPrefix string
	MaxFileSize  int64
}

// AppConfig is the centralized configuration struct for one service process.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	Service  string
	Env      string
	LogLevel string
	Port     string
	Database DatabaseConfig
	MinIO    MinIOConfig
	JWT      JWTConfig
	Kafka    KafkaConfig
	Media    MediaConfig
}

var defaultPorts = map[string]string{
	ServiceUser:    "8081",
	ServiceProduct: "8082",
	ServiceMedia:   "8083",
}

// Load reads configuration for the named service from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// Service-scoped keys (USER_PORT, MEDIA_DB_NAME, ...) take precedence over the shared ones.
func Load(service string) *AppConfig {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	prefix := strings.ToUpper(service) + "_"

	return &AppConfig{
		Service:  service,
		Env:      getEnv(v, "APP_ENV", "development"),
		LogLevel: getEnv(v, "LOG_LEVEL", "info"),
		Port:     getEnv(v, prefix+"PORT", getEnv(v, "PORT", defaultPorts[service])),
		Database: DatabaseConfig{
			Host:               getEnv(v, "DB_HOST", ""),
			Port:               getEnv(v, "DB_PORT", "5432"),
			User:               getEnv(v, "DB_USER", ""),
			Password:           getEnv(v, "DB_PASSWORD", ""),
			Name:               getEnv(v, prefix+"DB_NAME", getEnv(v, "DB_NAME", "marketapi_"+service)),
			SSLMode:            getEnv(v, "DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt(v, "DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt(v, "DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt(v, "DB_CONN_MAX_LIFETIME_SEC", 300),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv(v, "MINIO_ENDPOINT", ""),
			AccessKey: getEnv(v, "MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv(v, "MINIO_SECRET_KEY", ""),
			Bucket:    getEnv(v, "MINIO_BUCKET", ""),
			UseSSL:    getEnvBool(v, "MINIO_USE_SSL", false),
		},
		JWT: JWTConfig{
			Secret:     getEnv(v, "JWT_SECRET", ""),
			ExpMinutes: getEnvInt(v, "JWT_EXPIRATION_MINUTES", 24*60),
			Issuer:     getEnv(v, "JWT_ISSUER", "marketapi"),
		},
		Kafka: KafkaConfig{
			Brokers:      splitList(getEnv(v, "KAFKA_BROKERS", "localhost:9092")),
			WriteTimeout: time.Duration(getEnvInt(v, "KAFKA_WRITE_TIMEOUT_MS", 5000)) * time.Millisecond,
			UserTopic:    getEnv(v, "KAFKA_USER_TOPIC", "user-events"),
			ProductTopic: getEnv(v, "KAFKA_PRODUCT_TOPIC", "product-events"),
			MediaTopic:   getEnv(v, "KAFKA_MEDIA_TOPIC", "media-events"),
		},
		Media: MediaConfig{
			Driver:       getEnv(v, "MEDIA_STORAGE_DRIVER", "local"),
			UploadDir:    getEnv(v, "MEDIA_UPLOAD_DIR", "uploads"),
			PublicPrefix: getEnv(v, "MEDIA_PUBLIC_PREFIX", "/uploads/"),
			MaxFileSize:  int64(getEnvInt(v, "MEDIA_MAX_FILE_SIZE", 2*1024*1024)),
		},
	}
}

func getEnv(v *viper.Viper, key, def string) string {
	if s := v.GetString(key); s != "" {
		return s
	}
	return def
}

func getEnvBool(v *viper.Viper, key string, def bool) bool {
	if s := v.GetString(key); s != "" {
		b, err := strconv.ParseBool(s)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(v *viper.Viper, key string, def int) int {
	if s := v.GetString(key); s != "" {
		i, err := strconv.Atoi(s)
		if err == nil {
			return i
		}
	}
	return def
}

func splitList(s string) []string {
	out := make([]string, 0)
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
