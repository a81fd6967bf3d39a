// Package config provides runtime configuration values for the library.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendMySQL  = "mysql"
)

// Config holds capacities, catalogue backend and event publishing settings.
type Config struct {
	QueueCapacity    int
	StackCapacity    int
	CatalogueBackend string
	SQLiteDSN        string
	MySQLDSN         string
	Seed             bool
	RedisAddr        string
	RedisChannel     string
	RabbitURL        string
	RabbitExchange   string
	LogLevel         string
	LogFormat        string
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoienv(key string, def int) int {
	v := getenv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func boolenv(key string, def bool) bool {
	v := getenv(key, "")
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

// Load collects configuration from the environment with defaults. Variables
// from the given dotenv files (".env" when none are given) fill in whatever
// the environment does not already set.
func Load(files ...string) Config {
	_ = godotenv.Load(files...)

	return Config{
		QueueCapacity:    atoienv("LIBRARY_QUEUE_CAPACITY", 50),
		StackCapacity:    atoienv("LIBRARY_STACK_CAPACITY", 50),
		CatalogueBackend: getenv("LIBRARY_CATALOGUE_BACKEND", BackendMemory),
		SQLiteDSN:        getenv("LIBRARY_SQLITE_DSN", ":memory:"),
		MySQLDSN:         getenv("MYSQL_DSN", "root:root@tcp(localhost:3306)/library?parseTime=true"),
		Seed:             boolenv("LIBRARY_SEED", false),
		RedisAddr:        getenv("REDIS_ADDR", ""),
		RedisChannel:     getenv("LIBRARY_REDIS_CHANNEL", "library.events"),
		RabbitURL:        getenv("RABBITMQ_URL", ""),
		RabbitExchange:   getenv("LIBRARY_RABBIT_EXCHANGE", "library"),
		LogLevel:         getenv("LOG_LEVEL", "warn"),
		LogFormat:        getenv("LOG_FORMAT", "console"),
	}
}

func (c Config) Validate() error {
	if c.QueueCapacity <= 0 {
		return fmt.Errorf("queue capacity must be positive, got %d", c.QueueCapacity)
	}
	if c.StackCapacity <= 0 {
		return fmt.Errorf("stack capacity must be positive, got %d", c.StackCapacity)
	}
	switch c.CatalogueBackend {
	case BackendMemory, BackendSQLite, BackendMySQL:
	default:
		return fmt.Errorf("unknown catalogue backend %q", c.CatalogueBackend)
	}
	return nil
}
