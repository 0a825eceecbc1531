package config

import (
	"os"
	"strconv"
	"time"

	"github.com/ervinstupac-byte/anohubsapp-sub009/hydro-common/config"
)

// 会话存储类型
const (
	SessionStoreMemory   = "memory"
	SessionStoreRedis    = "redis"
	SessionStorePostgres = "postgres"
)

// Config 水电内核服务配置
type Config struct {
	Database config.DatabaseConfig
	Redis    config.RedisConfig
	MQTT     config.MQTTConfig

	// 内核特定配置
	Kernel struct {
		// Redis 缓存配置
		Cache struct {
			HealthKeyPrefix string // 健康读模型键前缀，如 "hydro:asset:"
			HealthSuffix    string // 健康读模型键后缀，如 ":health"
			SnapshotPrefix  string // 最新遥测快照键前缀，如 "hydro:asset:"
			SnapshotSuffix  string // 最新遥测快照键后缀，如 ":telemetry"
			StatePrefix     string // 技术状态缓存键前缀，如 "hydro:state:"
			HealthTTL       int    // 健康读模型 TTL（秒），默认 30秒
			StateTTL        int    // 技术状态缓存 TTL（秒），默认 300秒
		}

		// Redis Streams 配置
		Stream struct {
			Name      string // 遥测流，如 "hydro:telemetry:stream"
			Group     string // 消费者组
			Consumer  string // 消费者名
			BatchSize int    // 每次读取条数，默认 10
			MaxLen    int64  // 流近似最大长度，默认 10000
		}

		// MQTT 主题
		Topics struct {
			Telemetry   string // 如 "hydro/+/telemetry"
			AlertFormat string // 告警发布主题格式，如 "hydro/%s/alerts"
		}

		PollInterval int // 健康同步轮询间隔（秒），默认 5秒

		// 调试会话存储
		SessionStore struct {
			Type string        // memory / redis / postgres
			TTL  time.Duration // redis 存储的会话 TTL
		}

		// 外部资产存储（为空时从数据库读取技术状态）
		AssetStore config.HTTPClientConfig

		// 安全策略
		Safety struct {
			Multiplier        float64
			ReferenceVelocity float64
		}
	}

	Log struct {
		Level  string
		Format string
	}
}

// Load 加载配置
func Load() (*Config, error) {
	cfg := &Config{}

	// 从环境变量加载（默认值）
	cfg.Database.Host = getEnv("DB_HOST", "localhost")
	cfg.Database.Port = getEnvInt("DB_PORT", 5432)
	cfg.Database.User = getEnv("DB_USER", "postgres")
	cfg.Database.Password = getEnv("DB_PASSWORD", "postgres")
	cfg.Database.Database = getEnv("DB_NAME", "hydro")
	cfg.Database.SSLMode = getEnv("DB_SSLMODE", "disable")
	cfg.Database.MaxConns = 10
	cfg.Database.MaxIdle = 5

	cfg.Redis.Addr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	cfg.Redis.DB = getEnvInt("REDIS_DB", 0)

	cfg.MQTT.Broker = getEnv("MQTT_BROKER", "tcp://localhost:1883")
	cfg.MQTT.ClientID = getEnv("MQTT_CLIENT_ID", "hydro-kernel")
	cfg.MQTT.Username = getEnv("MQTT_USERNAME", "")
	cfg.MQTT.Password = getEnv("MQTT_PASSWORD", "")
	cfg.MQTT.QoS = 1

	// 缓存配置
	cfg.Kernel.Cache.HealthKeyPrefix = getEnv("CACHE_HEALTH_PREFIX", "hydro:asset:")
	cfg.Kernel.Cache.HealthSuffix = ":health"
	cfg.Kernel.Cache.SnapshotPrefix = getEnv("CACHE_SNAPSHOT_PREFIX", "hydro:asset:")
	cfg.Kernel.Cache.SnapshotSuffix = ":telemetry"
	cfg.Kernel.Cache.StatePrefix = getEnv("CACHE_STATE_PREFIX", "hydro:state:")
	cfg.Kernel.Cache.HealthTTL = getEnvInt("CACHE_HEALTH_TTL", 30)
	cfg.Kernel.Cache.StateTTL = getEnvInt("CACHE_STATE_TTL", 300)

	// 流配置
	cfg.Kernel.Stream.Name = getEnv("TELEMETRY_STREAM", "hydro:telemetry:stream")
	cfg.Kernel.Stream.Group = getEnv("TELEMETRY_GROUP", "hydro-kernel-group")
	cfg.Kernel.Stream.Consumer = getEnv("TELEMETRY_CONSUMER", "hydro-kernel-1")
	cfg.Kernel.Stream.BatchSize = getEnvInt("TELEMETRY_BATCH_SIZE", 10)
	cfg.Kernel.Stream.MaxLen = int64(getEnvInt("TELEMETRY_STREAM_MAXLEN", 10000))

	cfg.Kernel.Topics.Telemetry = getEnv("MQTT_TELEMETRY_TOPIC", "hydro/+/telemetry")
	cfg.Kernel.Topics.AlertFormat = getEnv("MQTT_ALERT_TOPIC_FORMAT", "hydro/%s/alerts")

	cfg.Kernel.PollInterval = getEnvInt("HEALTH_POLL_INTERVAL", 5)

	cfg.Kernel.SessionStore.Type = getEnv("SESSION_STORE", SessionStoreMemory)
	cfg.Kernel.SessionStore.TTL = getEnvDuration("SESSION_TTL", 7*24*time.Hour)

	cfg.Kernel.AssetStore.Timeout = 10 * time.Second
	cfg.Kernel.AssetStore.RetryCount = 3
	cfg.Kernel.AssetStore.LoadFromEnv("ASSET_STORE")

	cfg.Kernel.Safety.Multiplier = getEnvFloat("SAFETY_MULTIPLIER", 4)
	cfg.Kernel.Safety.ReferenceVelocity = getEnvFloat("SAFETY_REFERENCE_VELOCITY", 4)

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if v, err := strconv.Atoi(value); err == nil {
			return v
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if v, err := strconv.ParseFloat(value, 64); err == nil {
			return v
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
