package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func newEnvViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()
	return v
}

func TestLoad(t *testing.T) {
	t.Setenv("DB_HOST", "test-host")
	t.Setenv("DB_MAX_OPEN_CONNS", "20")
	t.Setenv("MINIO_USE_SSL", "true")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092")
	t.Setenv("KAFKA_WRITE_TIMEOUT_MS", "250")

	cfg := Load(ServiceMedia)

	assert.Equal(t, ServiceMedia, cfg.Service)
	assert.Equal(t, "test-host", cfg.Database.Host)
	assert.Equal(t, 20, cfg.Database.MaxOpenConns)
	assert.True(t, cfg.MinIO.UseSSL)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 250*time.Millisecond, cfg.Kafka.WriteTimeout)
	assert.Equal(t, "media-events", cfg.Kafka.MediaTopic)
	assert.Equal(t, int64(2*1024*1024), cfg.Media.MaxFileSize)
	assert.Equal(t, "/uploads/", cfg.Media.PublicPrefix)
	assert.Equal(t, "8083", cfg.Port)
	assert.Equal(t, "marketapi_media", cfg.Database.Name)
}

func TestLoad_ServiceScopedOverrides(t *testing.T) {
	t.Setenv("DB_NAME", "shared")
	t.Setenv("PRODUCT_DB_NAME", "products_only")
	t.Setenv("PORT", "9000")
	t.Setenv("PRODUCT_PORT", "9100")

	product := Load(ServiceProduct)
	assert.Equal(t, "products_only", product.Database.Name)
	assert.Equal(t, "9100", product.Port)

	user := Load(ServiceUser)
	assert.Equal(t, "shared", user.Database.Name)
	assert.Equal(t, "9000", user.Port)
}

func TestGetEnv(t *testing.T) {
	key := "TEST_ENV_VAR"
	t.Setenv(key, "value")
	v := newEnvViper()

	assert.Equal(t, "value", getEnv(v, key, "default"))
	assert.Equal(t, "default", getEnv(v, "NON_EXISTENT", "default"))
}

func TestGetEnvBool(t *testing.T) {
	key := "TEST_BOOL_VAR"
	v := newEnvViper()

	t.Setenv(key, "true")
	assert.True(t, getEnvBool(v, key, false))

	t.Setenv(key, "false")
	assert.False(t, getEnvBool(v, key, true))

	t.Setenv(key, "invalid")
	assert.True(t, getEnvBool(v, key, true))

	assert.True(t, getEnvBool(v, "UNSET_BOOL_VAR", true))
}

func TestGetEnvInt(t *testing.T) {
	key := "TEST_INT_VAR"
	v := newEnvViper()

	t.Setenv(key, "123")
	assert.Equal(t, 123, getEnvInt(v, key, 0))

	t.Setenv(key, "invalid")
	assert.Equal(t, 10, getEnvInt(v, key, 10))

	assert.Equal(t, 10, getEnvInt(v, "UNSET_INT_VAR", 10))
}
