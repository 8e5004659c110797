package shared

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv         string
	LogLevel       string
	HTTPAddr       string
	MetricsAddr    string
	Store          string // mysql|memory
	MySQLDSN       string
	MigrateOnStart bool
	RedisAddr      string
	RedisDB        int
	RedisPass      string
	CacheTTL       time.Duration
	ALSBase        string
	ALSRPS         int
	SeedWorkers    int
	RequestTimeout time.Duration
}

// Load reads the environment. Outside production a .env file in the working
// directory is loaded first; variables already set win.
func Load() Config {
	if e := os.Getenv("APP_ENV"); e == "" || e == "dev" || e == "development" {
		if err := godotenv.Load(); err == nil {
			log.Debug().Msg(".env loaded")
		}
	}
	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
			log.Warn().Str("key", k).Str("value", v).Msg("ignoring non-numeric setting")
		}
		return def
	}
	c := Config{
		AppEnv:         env("APP_ENV", "prod"),
		LogLevel:       env("LOG_LEVEL", "info"),
		HTTPAddr:       env("HTTP_ADDR", ":8080"),
		MetricsAddr:    env("METRICS_ADDR", ""),
		Store:          env("STORE", "mysql"),
		MySQLDSN:       env("MYSQL_DSN", "root:root@tcp(localhost:3306)/unihaven?charset=utf8mb4"),
		MigrateOnStart: env("MIGRATE_ON_START", "true") == "true",
		RedisAddr:      env("REDIS_ADDR", ""),
		RedisPass:      env("REDIS_PASSWORD", ""),
		RedisDB:        atoi("REDIS_DB", 0),
		CacheTTL:       time.Duration(atoi("CACHE_TTL_SECONDS", 300)) * time.Second,
		ALSBase:        env("ALS_BASE_URL", "https://www.als.gov.hk"),
		ALSRPS:         atoi("ALS_RPS", 5),
		SeedWorkers:    atoi("SEED_WORKERS", 4),
		RequestTimeout: time.Duration(atoi("REQUEST_TIMEOUT_SECONDS", 15)) * time.Second,
	}
	if c.Store != "mysql" && c.Store != "memory" {
		log.Warn().Str("store", c.Store).Msg("unknown STORE, using mysql")
		c.Store = "mysql"
	}
	if c.RedisAddr == "" {
		log.Warn().Msg("REDIS_ADDR is empty; caching disabled")
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
