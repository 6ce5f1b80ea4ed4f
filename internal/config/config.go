package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendMySQL  = "mysql"
)

type Config struct {
	HTTPAddr     string
	GRPCAddr     string
	StoreBackend string
	RedisAddr    string
	MySQLDSN     string
	KafkaBrokers []string
	OrderTopic   string
	ServiceName  string
	WorkerCount  int
	QueueSize    int
	SeedDemo     bool
}

// Load reads the environment, after merging in a .env file when one exists.
// Variables already set win over the file.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		HTTPAddr:     getenv("HTTP_ADDR", ":8080"),
		GRPCAddr:     getenv("GRPC_ADDR", ":9090"),
		StoreBackend: strings.ToLower(getenv("STORE_BACKEND", BackendMemory)),
		RedisAddr:    getenv("REDIS_ADDR", "localhost:6379"),
		MySQLDSN:     getenv("MYSQL_DSN", "root:root@tcp(localhost:3306)/ecofinds?parseTime=true"),
		KafkaBrokers: splitCSV(getenv("KAFKA_BROKERS", "")),
		OrderTopic:   getenv("ORDER_TOPIC", "marketplace.orders"),
		ServiceName:  getenv("SERVICE_NAME", "ecofinds-marketplace"),
	}

	var err error
	if cfg.WorkerCount, err = getint("WORKER_COUNT", 4); err != nil {
		return Config{}, err
	}
	if cfg.QueueSize, err = getint("QUEUE_SIZE", 1000); err != nil {
		return Config{}, err
	}
	if cfg.SeedDemo, err = getbool("SEED_DEMO", true); err != nil {
		return Config{}, err
	}

	switch cfg.StoreBackend {
	case BackendMemory, BackendRedis, BackendMySQL:
	default:
		return Config{}, fmt.Errorf("STORE_BACKEND: unknown backend %q", cfg.StoreBackend)
	}
	if cfg.WorkerCount < 1 {
		return Config{}, fmt.Errorf("WORKER_COUNT: must be at least 1, got %d", cfg.WorkerCount)
	}
	if cfg.QueueSize < 1 {
		return Config{}, fmt.Errorf("QUEUE_SIZE: must be at least 1, got %d", cfg.QueueSize)
	}

	return cfg, nil
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getint(k string, def int) (int, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", k, err)
	}
	return n, nil
}

func getbool(k string, def bool) (bool, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", k, err)
	}
	return b, nil
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
