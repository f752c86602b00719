package config

import "time"

type StorageConfig interface {
	GetDatabaseURL() string
	GetDBMaxOpenConns() int
	GetDBMaxIdleConns() int
	GetDBConnMaxLifetime() time.Duration
	GetRedisURL() string
	GetTopicCacheTTL() time.Duration
}

type Storage struct {
	DatabaseURL       string        `env:"DATABASE_URL"`
	DBMaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS" envDefault:"25"`
	DBMaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS" envDefault:"25"`
	DBConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"5m"`
	RedisURL          string        `env:"REDIS_URL"`
	TopicCacheTTL     time.Duration `env:"TOPIC_CACHE_TTL" envDefault:"10m"`
}

var _ StorageConfig = Storage{}

func (s Storage) GetDatabaseURL() string {
	return s.DatabaseURL
}

func (s Storage) GetDBMaxOpenConns() int {
	return s.DBMaxOpenConns
}

func (s Storage) GetDBMaxIdleConns() int {
	return s.DBMaxIdleConns
}

func (s Storage) GetDBConnMaxLifetime() time.Duration {
	return s.DBConnMaxLifetime
}

// GetRedisURL is optional. An empty value disables the topic cache.
func (s Storage) GetRedisURL() string {
	return s.RedisURL
}

func (s Storage) GetTopicCacheTTL() time.Duration {
	return s.TopicCacheTTL
}
