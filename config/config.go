package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/fx"

	"github.com/Conte777/NewsFlow/services/account-checker/internal/domain/checker/entities"
)

// Config holds all configuration for the account checker service
type Config struct {
	Checker  CheckerConfig
	Telegram TelegramConfig
	Kafka    KafkaConfig
	Database DatabaseConfig
	Logging  LoggingConfig
	Service  ServiceConfig
}

// CheckerConfig holds the verification pipeline settings
type CheckerConfig struct {
	MaxReconnectAttempts int
	ProxyRotation        bool
	DelayBetweenAttempts time.Duration
	MaxConcurrent        int
	RecoverRestricted    bool
	Proxies              []entities.ProxyDescriptor

	ConnectTimeout time.Duration
	ProbeTimeout   time.Duration
	AccountTimeout time.Duration

	RecordsDir string
}

// TelegramConfig holds MTProto probe settings
type TelegramConfig struct {
	VerificationPeer    string
	VerificationMessage string
	ReplyWait           time.Duration
	SystemVersion       string
}

// KafkaConfig holds Kafka configuration for batch report events
type KafkaConfig struct {
	Enabled             bool
	Brokers             []string
	TopicBatchCompleted string
}

// DatabaseConfig holds PostgreSQL configuration for batch history
type DatabaseConfig struct {
	Enabled  bool
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string

	// MigrationsPath is the directory holding the *.up.sql / *.down.sql files
	MigrationsPath string
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string // console or json
}

// ServiceConfig holds service configuration
type ServiceConfig struct {
	Name            string
	Port            string
	ShutdownTimeout time.Duration
}

// Result provides config parts for fx dependency injection using fx.Out pattern
type Result struct {
	fx.Out

	Config   *Config
	Checker  *CheckerConfig
	Telegram *TelegramConfig
	Kafka    *KafkaConfig
	Database *DatabaseConfig
	Logging  *LoggingConfig
	Service  *ServiceConfig
}

// Out loads configuration and returns Result for fx injection
func Out() (Result, error) {
	cfg, err := Load()
	if err != nil {
		return Result{}, err
	}

	return Result{
		Config:   cfg,
		Checker:  &cfg.Checker,
		Telegram: &cfg.Telegram,
		Kafka:    &cfg.Kafka,
		Database: &cfg.Database,
		Logging:  &cfg.Logging,
		Service:  &cfg.Service,
	}, nil
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if exists
	_ = godotenv.Load()

	maxAttempts, err := getEnvInt("MAX_RECONNECT_ATTEMPTS", 3)
	if err != nil {
		return nil, err
	}

	maxConcurrent, err := getEnvInt("MAX_CONCURRENT", 5)
	if err != nil {
		return nil, err
	}

	delaySeconds, err := getEnvInt("DELAY_BETWEEN_ATTEMPTS", 10)
	if err != nil {
		return nil, err
	}

	proxyRotation, err := getEnvBool("PROXY_ROTATION", true)
	if err != nil {
		return nil, err
	}

	recoverRestricted, err := getEnvBool("RECOVER_RESTRICTED", true)
	if err != nil {
		return nil, err
	}

	proxies, err := entities.ParseProxyList(getEnv("PROXIES", ""))
	if err != nil {
		return nil, fmt.Errorf("invalid PROXIES: %w", err)
	}

	connectTimeout, err := getEnvDuration("CONNECT_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, err
	}

	probeTimeout, err := getEnvDuration("PROBE_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, err
	}

	accountTimeout, err := getEnvDuration("ACCOUNT_TIMEOUT", 5*time.Minute)
	if err != nil {
		return nil, err
	}

	replyWait, err := getEnvDuration("REPLY_WAIT", 10*time.Second)
	if err != nil {
		return nil, err
	}

	shutdownTimeout, err := getEnvDuration("SHUTDOWN_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, err
	}

	kafkaEnabled, err := getEnvBool("KAFKA_ENABLED", false)
	if err != nil {
		return nil, err
	}

	dbEnabled, err := getEnvBool("DATABASE_ENABLED", false)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Checker: CheckerConfig{
			MaxReconnectAttempts: maxAttempts,
			ProxyRotation:        proxyRotation,
			DelayBetweenAttempts: time.Duration(delaySeconds) * time.Second,
			MaxConcurrent:        maxConcurrent,
			RecoverRestricted:    recoverRestricted,
			Proxies:              proxies,
			ConnectTimeout:       connectTimeout,
			ProbeTimeout:         probeTimeout,
			AccountTimeout:       accountTimeout,
			RecordsDir:           getEnv("RECORDS_DIR", "./accounts"),
		},
		Telegram: TelegramConfig{
			VerificationPeer:    strings.TrimPrefix(getEnv("VERIFICATION_PEER", "SpamBot"), "@"),
			VerificationMessage: getEnv("VERIFICATION_MESSAGE", "/start"),
			ReplyWait:           replyWait,
			SystemVersion:       getEnv("TELEGRAM_SYSTEM_VERSION", "Linux"),
		},
		Kafka: KafkaConfig{
			Enabled:             kafkaEnabled,
			Brokers:             splitList(getEnv("KAFKA_BROKERS", "localhost:9093")),
			TopicBatchCompleted: getEnv("KAFKA_TOPIC_BATCH_COMPLETED", "account.check.completed"),
		},
		Database: DatabaseConfig{
			Enabled:  dbEnabled,
			Host:     getEnv("DATABASE_HOST", "localhost"),
			Port:     getEnv("DATABASE_PORT", "5432"),
			User:     getEnv("DATABASE_USER", "checker_user"),
			Password: getEnv("DATABASE_PASSWORD", ""),
			DBName:   getEnv("DATABASE_NAME", "account_checker"),
			SSLMode:  getEnv("DATABASE_SSLMODE", "disable"),

			MigrationsPath: getEnv("DATABASE_MIGRATIONS_PATH", "migrations"),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "console"),
		},
		Service: ServiceConfig{
			Name:            getEnv("SERVICE_NAME", "account-checker"),
			Port:            getEnv("SERVICE_PORT", "8085"),
			ShutdownTimeout: shutdownTimeout,
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Checker.MaxReconnectAttempts < 1 {
		return fmt.Errorf("MAX_RECONNECT_ATTEMPTS must be >= 1")
	}

	if c.Checker.MaxConcurrent < 1 {
		return fmt.Errorf("MAX_CONCURRENT must be >= 1")
	}

	if c.Checker.DelayBetweenAttempts < 0 {
		return fmt.Errorf("DELAY_BETWEEN_ATTEMPTS must be >= 0")
	}

	if c.Telegram.VerificationPeer == "" {
		return fmt.Errorf("VERIFICATION_PEER is required")
	}

	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("KAFKA_BROKERS is required when KAFKA_ENABLED is set")
	}

	if c.Database.Enabled && c.Database.DBName == "" {
		return fmt.Errorf("DATABASE_NAME is required when DATABASE_ENABLED is set")
	}

	return nil
}

// GetDSN returns database connection string
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value, err := strconv.Atoi(getEnv(key, strconv.Itoa(defaultValue)))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return value, nil
}

// getEnvBool accepts the usual strconv forms plus the "True"/"False" spelling of older .env files
func getEnvBool(key string, defaultValue bool) (bool, error) {
	value, err := strconv.ParseBool(getEnv(key, strconv.FormatBool(defaultValue)))
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return value, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value, err := time.ParseDuration(getEnv(key, defaultValue.String()))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return value, nil
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			result = append(result, p)
		}
	}
	return result
}
