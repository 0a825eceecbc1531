package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultValues(t *testing.T) {
	// 清除环境变量
	os.Clearenv()

	cfg, err := Load()
	require.NoError(t, err)
	assert.NotNil(t, cfg)

	// 验证默认值
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "postgres", cfg.Database.User)
	assert.Equal(t, "hydro", cfg.Database.Database)
	assert.Equal(t, "disable", cfg.Database.SSLMode)

	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 0, cfg.Redis.DB)

	assert.Equal(t, "tcp://localhost:1883", cfg.MQTT.Broker)
	assert.Equal(t, "hydro-kernel", cfg.MQTT.ClientID)
	assert.Equal(t, byte(1), cfg.MQTT.QoS)

	assert.Equal(t, "hydro:asset:", cfg.Kernel.Cache.HealthKeyPrefix)
	assert.Equal(t, ":health", cfg.Kernel.Cache.HealthSuffix)
	assert.Equal(t, ":telemetry", cfg.Kernel.Cache.SnapshotSuffix)
	assert.Equal(t, "hydro:state:", cfg.Kernel.Cache.StatePrefix)
	assert.Equal(t, 30, cfg.Kernel.Cache.HealthTTL)
	assert.Equal(t, 300, cfg.Kernel.Cache.StateTTL)

	assert.Equal(t, "hydro:telemetry:stream", cfg.Kernel.Stream.Name)
	assert.Equal(t, "hydro-kernel-group", cfg.Kernel.Stream.Group)
	assert.Equal(t, 10, cfg.Kernel.Stream.BatchSize)
	assert.Equal(t, int64(10000), cfg.Kernel.Stream.MaxLen)
	assert.Equal(t, "hydro/+/telemetry", cfg.Kernel.Topics.Telemetry)
	assert.Equal(t, "hydro/%s/alerts", cfg.Kernel.Topics.AlertFormat)

	assert.Equal(t, 5, cfg.Kernel.PollInterval)
	assert.Equal(t, SessionStoreMemory, cfg.Kernel.SessionStore.Type)
	assert.Equal(t, 7*24*time.Hour, cfg.Kernel.SessionStore.TTL)

	assert.Empty(t, cfg.Kernel.AssetStore.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.Kernel.AssetStore.Timeout)
	assert.Equal(t, 3, cfg.Kernel.AssetStore.RetryCount)

	assert.Equal(t, 4.0, cfg.Kernel.Safety.Multiplier)
	assert.Equal(t, 4.0, cfg.Kernel.Safety.ReferenceVelocity)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_EnvironmentVariables(t *testing.T) {
	os.Clearenv()
	defer os.Clearenv()

	// 设置环境变量
	os.Setenv("DB_HOST", "test-host")
	os.Setenv("DB_PORT", "6543")
	os.Setenv("DB_NAME", "test-db")
	os.Setenv("REDIS_ADDR", "test-redis:6380")
	os.Setenv("REDIS_DB", "2")
	os.Setenv("MQTT_BROKER", "tcp://broker:1883")
	os.Setenv("MQTT_TELEMETRY_TOPIC", "plant/+/telemetry")
	os.Setenv("HEALTH_POLL_INTERVAL", "15")
	os.Setenv("SESSION_STORE", "postgres")
	os.Setenv("SESSION_TTL", "48h")
	os.Setenv("ASSET_STORE_BASE_URL", "http://assets:8080")
	os.Setenv("ASSET_STORE_TIMEOUT", "3s")
	os.Setenv("SAFETY_MULTIPLIER", "5.5")
	os.Setenv("LOG_LEVEL", "debug")
	os.Setenv("LOG_FORMAT", "console")

	cfg, err := Load()
	require.NoError(t, err)

	// 验证环境变量覆盖
	assert.Equal(t, "test-host", cfg.Database.Host)
	assert.Equal(t, 6543, cfg.Database.Port)
	assert.Equal(t, "test-db", cfg.Database.Database)
	assert.Equal(t, "test-redis:6380", cfg.Redis.Addr)
	assert.Equal(t, 2, cfg.Redis.DB)
	assert.Equal(t, "tcp://broker:1883", cfg.MQTT.Broker)
	assert.Equal(t, "plant/+/telemetry", cfg.Kernel.Topics.Telemetry)
	assert.Equal(t, 15, cfg.Kernel.PollInterval)
	assert.Equal(t, SessionStorePostgres, cfg.Kernel.SessionStore.Type)
	assert.Equal(t, 48*time.Hour, cfg.Kernel.SessionStore.TTL)
	assert.Equal(t, "http://assets:8080", cfg.Kernel.AssetStore.BaseURL)
	assert.Equal(t, 3*time.Second, cfg.Kernel.AssetStore.Timeout)
	assert.Equal(t, 5.5, cfg.Kernel.Safety.Multiplier)
	assert.Equal(t, 4.0, cfg.Kernel.Safety.ReferenceVelocity)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
}

func TestLoad_InvalidNumbersFallBack(t *testing.T) {
	os.Clearenv()
	defer os.Clearenv()

	os.Setenv("HEALTH_POLL_INTERVAL", "soon")
	os.Setenv("SAFETY_MULTIPLIER", "x")
	os.Setenv("SESSION_TTL", "a week")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Kernel.PollInterval)
	assert.Equal(t, 4.0, cfg.Kernel.Safety.Multiplier)
	assert.Equal(t, 7*24*time.Hour, cfg.Kernel.SessionStore.TTL)
}

func TestGetEnv(t *testing.T) {
	// 测试默认值
	os.Clearenv()
	value := getEnv("TEST_KEY", "default-value")
	assert.Equal(t, "default-value", value)

	// 测试环境变量存在
	os.Setenv("TEST_KEY", "env-value")
	value = getEnv("TEST_KEY", "default-value")
	assert.Equal(t, "env-value", value)

	// 清理
	os.Unsetenv("TEST_KEY")
}
