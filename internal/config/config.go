package config

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"dga_gateway/internal/adapters/dga"
	"dga_gateway/internal/config/connections/mongo"
	"dga_gateway/internal/config/connections/postgres"
	"dga_gateway/internal/config/connections/redis"
	"dga_gateway/internal/config/connections/s3"

	"github.com/joho/godotenv"
)

const (
	StoreMongo    = "mongo"
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

type Config struct {
	Port      string
	APIPrefix string

	DGA dga.Config

	StoreDriver   string
	ExportEnabled bool
	TokenCacheTTL time.Duration
	AdminKeyHash  string

	MongoInfo    mongo.ConnectionInfo
	PostgresInfo postgres.ConnectionInfo
	S3Info       s3.ConnectionInfo
	RedisInfo    redis.ConnectionInfo

	S3       *s3.S3
	Mongo    *mongo.Mongo
	Postgres *postgres.Postgres
	Redis    *redis.Redis
}

// Load reads .env (if present) and the environment. It opens no connections.
func Load() (*Config, error) {
	_ = godotenv.Load()

	contract, err := dga.ContractFor(getenv("DGA_CONTRACT_VERSION", dga.DefaultContractVersion))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Port:      getenv("SERVER_PORT", "8070"),
		APIPrefix: strings.TrimRight(getenv("API_PREFIX", "/test5/api"), "/"),
		DGA: dga.Config{
			AuthURL:        os.Getenv("DGA_AUTH_URL"),
			DataURL:        os.Getenv("DGA_API_URL"),
			NotifyURL:      os.Getenv("DGA_NOTI_API_URL"),
			AgentID:        getenvAny("", "DGA_AGENT_ID", "DGA_AGENT_ID_AUTH", "AGENT_ID"),
			ConsumerKey:    getenvAny("", "DGA_CONSUMER_KEY", "DGA_CONSUMER_KEY_NOTI", "CONSUMER_KEY"),
			ConsumerSecret: getenvAny("", "DGA_CONSUMER_SECRET", "DGA_CONSUMER_SECRET_AUTH", "CONSUMER_SECRET"),
			Contract:       contract,
			Timeout:        getduration("DGA_HTTP_TIMEOUT", dga.DefaultTimeout),
		},
		StoreDriver:   strings.ToLower(getenv("STORE_DRIVER", StoreMongo)),
		ExportEnabled: getenv("EXPORT_ENABLED", "false") == "true",
		TokenCacheTTL: getduration("TOKEN_CACHE_TTL", 0),
		AdminKeyHash:  os.Getenv("ADMIN_KEY_HASH"),
		MongoInfo: mongo.ConnectionInfo{
			URI:        os.Getenv("MONGO_URI"),
			Scheme:     getenv("MONGO_SCHEME", "mongodb"),
			User:       os.Getenv("MONGO_USER"),
			Password:   os.Getenv("MONGO_PASSWORD"),
			Host:       getenv("MONGO_HOST", "127.0.0.1"),
			Port:       getenv("MONGO_PORT", "27017"),
			DB:         getenv("MONGO_DB", "dga"),
			AuthSource: os.Getenv("MONGO_AUTH_SOURCE"),
		},
		PostgresInfo: postgres.ConnectionInfo{
			Host:     getenv("PG_HOST", "127.0.0.1"),
			Port:     getenv("PG_PORT", "5432"),
			User:     getenv("PG_USER", "root"),
			Password: getenv("PG_PASSWORD", "hello-world"),
			DB:       getenv("PG_DB", "dga"),
			SSLMode:  getenv("PG_SSLMODE", "disable"),
		},
		S3Info: s3.ConnectionInfo{
			Endpoint:  getenv("AWS_ENDPOINT", "localhost:9000"),
			AccessKey: getenv("AWS_ACCESS_KEY_ID", "minioadmin"),
			SecretKey: getenv("AWS_SECRET_ACCESS_KEY", "minioadmin"),
			Region:    getenv("AWS_DEFAULT_REGION", "us-east-1"),
			Bucket:    getenv("AWS_BUCKET", "exports"),
			UseSSL:    getenv("AWS_USE_SSL", "false") == "true",
		},
		RedisInfo: redis.ConnectionInfo{
			URL: os.Getenv("REDIS_URL"),
		},
	}

	return cfg, cfg.Validate()
}

func (c *Config) Validate() error {
	var errs []error

	switch c.StoreDriver {
	case StoreMongo, StorePostgres, StoreMemory:
	default:
		errs = append(errs, fmt.Errorf("STORE_DRIVER must be one of mongo, postgres, memory (got %q)", c.StoreDriver))
	}

	required := map[string]string{
		"DGA_AUTH_URL":        c.DGA.AuthURL,
		"DGA_API_URL":         c.DGA.DataURL,
		"DGA_NOTI_API_URL":    c.DGA.NotifyURL,
		"DGA_CONSUMER_KEY":    c.DGA.ConsumerKey,
		"DGA_AGENT_ID":        c.DGA.AgentID,
		"DGA_CONSUMER_SECRET": c.DGA.ConsumerSecret,
	}
	for _, k := range []string{"DGA_AUTH_URL", "DGA_API_URL", "DGA_NOTI_API_URL", "DGA_CONSUMER_KEY", "DGA_AGENT_ID", "DGA_CONSUMER_SECRET"} {
		if required[k] == "" {
			errs = append(errs, fmt.Errorf("%s must be set", k))
		}
	}

	if c.TokenCacheTTL < 0 {
		errs = append(errs, errors.New("TOKEN_CACHE_TTL must not be negative"))
	}

	return errors.Join(errs...)
}

// Init loads the config and opens the connections the selected features need.
func Init(ctx context.Context) *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatal("Config error: ", err)
	}

	switch cfg.StoreDriver {
	case StoreMongo:
		cfg.Mongo, err = mongo.NewConnection(ctx, cfg.MongoInfo)
		if err != nil {
			log.Fatal("Mongo connect error:", err)
		}
	case StorePostgres:
		cfg.Postgres, err = postgres.NewConnection(ctx, cfg.PostgresInfo)
		if err != nil {
			log.Fatal("Postgres connect error:", err)
		}
	}

	if cfg.ExportEnabled {
		cfg.S3, err = s3.NewConnection(cfg.S3Info)
		if err != nil {
			log.Fatal("S3 connect error:", err)
		}
		if err := cfg.S3.EnsureBucket(ctx); err != nil {
			log.Fatal("S3 bucket error:", err)
		}
	}

	if cfg.TokenCacheTTL > 0 {
		cfg.Redis, err = redis.NewConnection(ctx, cfg.RedisInfo)
		if err != nil {
			log.Fatal("Redis connect error:", err)
		}
		if cfg.Redis == nil {
			log.Printf("[CONFIG][WARN] TOKEN_CACHE_TTL=%s but REDIS_URL is empty; token cache disabled", cfg.TokenCacheTTL)
		}
	}

	return cfg
}

func (c *Config) CheckConnections(ctx context.Context) error {
	var errs []error

	switch c.StoreDriver {
	case StoreMongo:
		if c.Mongo == nil || c.Mongo.Client == nil {
			errs = append(errs, errors.New("mongo not initialized"))
		} else if err := c.Mongo.Client.Ping(ctx, nil); err != nil {
			errs = append(errs, fmt.Errorf("mongo ping failed: %w", err))
		}
	case StorePostgres:
		if c.Postgres == nil || c.Postgres.Pool == nil {
			errs = append(errs, errors.New("postgres not initialized"))
		} else if err := c.Postgres.Pool.Ping(ctx); err != nil {
			errs = append(errs, fmt.Errorf("postgres ping failed: %w", err))
		}
	}

	if c.ExportEnabled {
		if err := c.S3.Ping(ctx); err != nil {
			errs = append(errs, err)
		}
	}

	if c.Redis != nil {
		if err := c.Redis.Ping(ctx); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func (c *Config) Close(ctx context.Context) {
	if c.Mongo != nil {
		if err := c.Mongo.Close(ctx); err != nil {
			log.Printf("[CONFIG][WARN] mongo close: %v", err)
		}
	}
	c.Postgres.Close()
	if err := c.Redis.Close(); err != nil {
		log.Printf("[CONFIG][WARN] redis close: %v", err)
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// getenvAny returns the first non-empty variable among keys.
func getenvAny(def string, keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return def
}

func getduration(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("[CONFIG][WARN] %s=%q is not a duration, using %s", k, v, def)
		return def
	}
	return d
}
