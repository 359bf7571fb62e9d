// backend-go/internal/config/config.go
package config

import (
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Cache     CacheConfig
	Analytics AnalyticsConfig
	Snapshot  SnapshotConfig
}

type ServerConfig struct {
	Port           string
	AdminPort      string
	Mode           string
	ReadTimeout    int
	WriteTimeout   int
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type CacheConfig struct {
	Enabled             bool
	RedisURL            string
	RedisHost           string
	RedisPort           string
	RedisPassword       string
	RedisDB             int
	DashboardTTLSeconds int
}

type AnalyticsConfig struct {
	MinSaleDays     int
	MovingAvgWindow int
	SmoothingAlpha  float64
	SeasonalPeriod  int
	MinOrderDays    int
	EvalConcurrency int
	LotRule         string
	FixedLotSize    float64
	EOQOrderingCost float64
	EOQHoldingCost  float64
	UnitCost        float64
}

type SnapshotConfig struct {
	Enabled   bool
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
}

var (
	once     sync.Once
	instance *Config
)

func Load() *Config {
	once.Do(func() {
		// Load .env file if it exists
		_ = godotenv.Load()

		viper.SetDefault("SERVER_PORT", "8080")
		viper.SetDefault("SERVER_ADMIN_PORT", "8081")
		viper.SetDefault("SERVER_MODE", "debug")
		viper.SetDefault("SERVER_READ_TIMEOUT", 15)
		viper.SetDefault("SERVER_WRITE_TIMEOUT", 30)
		viper.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"*"})
		viper.SetDefault("DB_HOST", "localhost")
		viper.SetDefault("DB_PORT", "5432")
		viper.SetDefault("DB_USER", "postgres")
		viper.SetDefault("DB_PASSWORD", "postgres")
		viper.SetDefault("DB_NAME", "demandloop")
		viper.SetDefault("DB_SSLMODE", "disable")
		viper.SetDefault("CACHE_ENABLED", false)
		viper.SetDefault("REDIS_URL", "")
		viper.SetDefault("REDIS_HOST", "127.0.0.1")
		viper.SetDefault("REDIS_PORT", "6379")
		viper.SetDefault("REDIS_PASSWORD", "")
		viper.SetDefault("REDIS_DB", 0)
		viper.SetDefault("CACHE_DASHBOARD_TTL_SECONDS", 60)
		viper.SetDefault("ANALYTICS_MIN_SALE_DAYS", 1)
		viper.SetDefault("ANALYTICS_MOVING_AVG_WINDOW", 14)
		viper.SetDefault("ANALYTICS_SMOOTHING_ALPHA", 0.3)
		viper.SetDefault("ANALYTICS_SEASONAL_PERIOD", 7)
		viper.SetDefault("ANALYTICS_MIN_ORDER_DAYS", 3)
		viper.SetDefault("ANALYTICS_EVAL_CONCURRENCY", 8)
		viper.SetDefault("ANALYTICS_LOT_RULE", "eoq")
		viper.SetDefault("ANALYTICS_FIXED_LOT_SIZE", 12)
		viper.SetDefault("ANALYTICS_EOQ_ORDERING_COST", 25.0)
		viper.SetDefault("ANALYTICS_EOQ_HOLDING_COST", 2.0)
		viper.SetDefault("ANALYTICS_UNIT_COST", 0.0)
		viper.SetDefault("SNAPSHOT_ENABLED", false)
		viper.SetDefault("SNAPSHOT_ENDPOINT", "")
		viper.SetDefault("SNAPSHOT_ACCESS_KEY", "")
		viper.SetDefault("SNAPSHOT_SECRET_KEY", "")
		viper.SetDefault("SNAPSHOT_BUCKET", "")
		viper.SetDefault("SNAPSHOT_REGION", "us-east-1")
		viper.SetDefault("SNAPSHOT_USE_SSL", true)

		viper.AutomaticEnv()

		instance = &Config{
			Server: ServerConfig{
				Port:           viper.GetString("SERVER_PORT"),
				AdminPort:      viper.GetString("SERVER_ADMIN_PORT"),
				Mode:           viper.GetString("SERVER_MODE"),
				ReadTimeout:    viper.GetInt("SERVER_READ_TIMEOUT"),
				WriteTimeout:   viper.GetInt("SERVER_WRITE_TIMEOUT"),
				AllowedOrigins: viper.GetStringSlice("SERVER_ALLOWED_ORIGINS"),
			},
			Database: DatabaseConfig{
				Host:     viper.GetString("DB_HOST"),
				Port:     viper.GetString("DB_PORT"),
				User:     viper.GetString("DB_USER"),
				Password: viper.GetString("DB_PASSWORD"),
				DBName:   viper.GetString("DB_NAME"),
				SSLMode:  viper.GetString("DB_SSLMODE"),
			},
			Cache: CacheConfig{
				Enabled:             viper.GetBool("CACHE_ENABLED"),
				RedisURL:            viper.GetString("REDIS_URL"),
				RedisHost:           viper.GetString("REDIS_HOST"),
				RedisPort:           viper.GetString("REDIS_PORT"),
				RedisPassword:       viper.GetString("REDIS_PASSWORD"),
				RedisDB:             viper.GetInt("REDIS_DB"),
				DashboardTTLSeconds: viper.GetInt("CACHE_DASHBOARD_TTL_SECONDS"),
			},
			Analytics: AnalyticsConfig{
				MinSaleDays:     viper.GetInt("ANALYTICS_MIN_SALE_DAYS"),
				MovingAvgWindow: viper.GetInt("ANALYTICS_MOVING_AVG_WINDOW"),
				SmoothingAlpha:  viper.GetFloat64("ANALYTICS_SMOOTHING_ALPHA"),
				SeasonalPeriod:  viper.GetInt("ANALYTICS_SEASONAL_PERIOD"),
				MinOrderDays:    viper.GetInt("ANALYTICS_MIN_ORDER_DAYS"),
				EvalConcurrency: viper.GetInt("ANALYTICS_EVAL_CONCURRENCY"),
				LotRule:         viper.GetString("ANALYTICS_LOT_RULE"),
				FixedLotSize:    viper.GetFloat64("ANALYTICS_FIXED_LOT_SIZE"),
				EOQOrderingCost: viper.GetFloat64("ANALYTICS_EOQ_ORDERING_COST"),
				EOQHoldingCost:  viper.GetFloat64("ANALYTICS_EOQ_HOLDING_COST"),
				UnitCost:        viper.GetFloat64("ANALYTICS_UNIT_COST"),
			},
			Snapshot: SnapshotConfig{
				Enabled:   viper.GetBool("SNAPSHOT_ENABLED"),
				Endpoint:  viper.GetString("SNAPSHOT_ENDPOINT"),
				AccessKey: viper.GetString("SNAPSHOT_ACCESS_KEY"),
				SecretKey: viper.GetString("SNAPSHOT_SECRET_KEY"),
				Bucket:    viper.GetString("SNAPSHOT_BUCKET"),
				Region:    viper.GetString("SNAPSHOT_REGION"),
				UseSSL:    viper.GetBool("SNAPSHOT_USE_SSL"),
			},
		}
	})

	return instance
}
