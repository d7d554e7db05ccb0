package config

import (
	"fmt"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

type TLSConfig struct {
	Enabled  bool
	CertFile string
	KeyFile  string
}

type HTTPConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type PostgresConfig struct {
	DSN             string
	MaxOpen         int
	MaxIdle         int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type StorageConfig struct {
	Endpoint      string
	AccessKey     string
	SecretKey     string
	BucketArchive string
	UseSSL        bool
	Region        string
}

type SecurityConfig struct {
	JWTSecret    string
	JWTAccessTTL time.Duration
}

// RateClass is one rate-limit discipline applied to a route group.
type RateClass struct {
	Limit  int
	Window time.Duration
}

type MonitorConfig struct {
	Default RateClass
	Login   RateClass
	API     RateClass
	Stream  RateClass

	CleanupInterval     time.Duration
	EscalationThreshold int
	EscalationWindow    time.Duration
	AutoBlockTTL        time.Duration
	ArchiveRetention    time.Duration
}

type AppConfig struct {
	Environment      string
	HTTP             HTTPConfig
	TLS              TLSConfig
	Postgres         PostgresConfig
	Redis            RedisConfig
	Storage          StorageConfig
	Security         SecurityConfig
	Monitor          MonitorConfig
	AllowCORSOrigins []string
}

func (c *AppConfig) IsProduction() bool {
	return c.Environment == "production"
}

func Load() (*AppConfig, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("../config")

	v.SetEnvPrefix("PRIMEX")
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	var cfg AppConfig
	if err := v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")

	v.SetDefault("http.host", "0.0.0.0")
	v.SetDefault("http.port", 8080)
	v.SetDefault("http.readtimeout", "10s")
	v.SetDefault("http.writetimeout", "15s")
	v.SetDefault("http.idletimeout", "60s")

	v.SetDefault("postgres.maxopen", 30)
	v.SetDefault("postgres.maxidle", 10)
	v.SetDefault("postgres.connmaxlifetime", "30m")

	v.SetDefault("redis.addr", "127.0.0.1:6379")
	v.SetDefault("redis.db", 0)

	v.SetDefault("storage.bucketarchive", "primex-security-archive")
	v.SetDefault("storage.usessl", false)
	v.SetDefault("storage.region", "us-east-1")

	v.SetDefault("security.jwtaccessttl", "24h")

	v.SetDefault("monitor.default.limit", 100)
	v.SetDefault("monitor.default.window", "60s")
	v.SetDefault("monitor.login.limit", 1000)
	v.SetDefault("monitor.login.window", "15m")
	v.SetDefault("monitor.api.limit", 100)
	v.SetDefault("monitor.api.window", "15m")
	v.SetDefault("monitor.stream.limit", 30)
	v.SetDefault("monitor.stream.window", "60s")

	v.SetDefault("monitor.cleanupinterval", "5m")
	v.SetDefault("monitor.escalationthreshold", 5)
	v.SetDefault("monitor.escalationwindow", "1h")
	v.SetDefault("monitor.autoblockttl", "1h")
	v.SetDefault("monitor.archiveretention", "720h") // 30 days
}
