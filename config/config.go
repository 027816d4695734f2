package config

import (
	"fmt"
	"os"
	"strconv"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	Redis     RedisConfig
	CORS      CORSConfig
	Generator GeneratorConfig
	MQTT      MQTTConfig
	Metrics   MetricsConfig
	Export    ExportConfig
}

type ServerConfig struct {
	Port int
}

type DatabaseConfig struct {
	// Driver is "postgres" or "sqlite".
	Driver     string
	Host       string
	Port       int
	User       string
	Password   string
	Name       string
	SSLMode    string
	SQLitePath string
}

func (d DatabaseConfig) GetDSN() string {
	if d.Driver == "sqlite" {
		return d.SQLitePath
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}

type JWTConfig struct {
	Secret      string
	ExpiryHours int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
	Disabled bool
}

type CORSConfig struct {
	AllowedOrigins string
}

type GeneratorConfig struct {
	Size       int
	Seed       uint64
	Workers    int
	OutputPath string
	// ParamsFile optionally overrides the default distribution parameters.
	ParamsFile string
	// MaxAPISize caps the number of records one API request may generate.
	MaxAPISize int
	// LoadDSN, when set, bulk loads generated datasets into Postgres.
	LoadDSN string
}

type MQTTConfig struct {
	URL   string
	Topic string
}

type MetricsConfig struct {
	Addr string
}

type ExportConfig struct {
	Path string
}

func LoadConfig() (*Config, error) {
	serverPort, err := getIntEnv("SERVER_PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT: %w", err)
	}

	dbPort, err := getIntEnv("DB_PORT", 5432)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	jwtExpiry, err := getIntEnv("JWT_EXPIRY_HOURS", 24)
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_EXPIRY_HOURS: %w", err)
	}

	redisPort, err := getIntEnv("REDIS_PORT", 6379)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_PORT: %w", err)
	}
	redisDB, err := getIntEnv("REDIS_DB", 0)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}
	redisDisabled, err := getBoolEnv("REDIS_DISABLED", false)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DISABLED: %w", err)
	}

	size, err := getIntEnv("DATASET_SIZE", 7000)
	if err != nil {
		return nil, fmt.Errorf("invalid DATASET_SIZE: %w", err)
	}
	seed, err := getUint64Env("DATASET_SEED", 42)
	if err != nil {
		return nil, fmt.Errorf("invalid DATASET_SEED: %w", err)
	}
	workers, err := getIntEnv("DATASET_WORKERS", 1)
	if err != nil {
		return nil, fmt.Errorf("invalid DATASET_WORKERS: %w", err)
	}
	maxAPISize, err := getIntEnv("DATASET_MAX_API_SIZE", 50000)
	if err != nil {
		return nil, fmt.Errorf("invalid DATASET_MAX_API_SIZE: %w", err)
	}

	driver := getEnv("DB_DRIVER", "postgres")
	if driver != "postgres" && driver != "sqlite" {
		return nil, fmt.Errorf("invalid DB_DRIVER %q: want postgres or sqlite", driver)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: serverPort,
		},
		Database: DatabaseConfig{
			Driver:     driver,
			Host:       getEnv("DB_HOST", "localhost"),
			Port:       dbPort,
			User:       getEnv("DB_USER", "etudiants"),
			Password:   getEnv("DB_PASSWORD", "etudiants_dev_password"),
			Name:       getEnv("DB_NAME", "etudiants"),
			SSLMode:    getEnv("DB_SSLMODE", "disable"),
			SQLitePath: getEnv("SQLITE_PATH", "database/etudiants.db"),
		},
		JWT: JWTConfig{
			Secret:      getEnv("JWT_SECRET", "dev-secret-change-me"),
			ExpiryHours: jwtExpiry,
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     redisPort,
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
			Disabled: redisDisabled,
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
		},
		Generator: GeneratorConfig{
			Size:       size,
			Seed:       seed,
			Workers:    workers,
			OutputPath: getEnv("DATASET_OUTPUT", "dataset_reussite_etudiants_ISI.csv"),
			ParamsFile: getEnv("DATASET_PARAMS_FILE", ""),
			MaxAPISize: maxAPISize,
			LoadDSN:    getEnv("DB_DSN", ""),
		},
		MQTT: MQTTConfig{
			URL:   getEnv("MQTT_URL", "tcp://localhost:1883"),
			Topic: getEnv("MQTT_TOPIC", "students/records/+"),
		},
		Metrics: MetricsConfig{
			Addr: getEnv("METRICS_ADDR", ":9090"),
		},
		Export: ExportConfig{
			Path: getEnv("EXPORT_PATH", "database/etudiants.csv"),
		},
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getIntEnv(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}
	return parsed, nil
}

func getUint64Env(key string, fallback uint64) (uint64, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	return strconv.ParseUint(value, 10, 64)
}

func getBoolEnv(key string, fallback bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	return strconv.ParseBool(value)
}
