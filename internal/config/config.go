package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/viper"
)

// Config хранит все настройки приложения
type Config struct {
	Server       ServerConfig
	Database     DatabaseConfig
	Registry     RegistryConfig
	Redis        RedisConfig
	GPAI         GPAIConfig
	Email        EmailConfig
	Storage      StorageConfig
	Verification VerificationConfig
	Admin        AdminConfig
}

// ServerConfig содержит настройки HTTP сервера
type ServerConfig struct {
	Port         string
	ReadTimeout  int
	WriteTimeout int
}

// DatabaseConfig содержит настройки подключения к PostgreSQL
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// RegistryConfig — read-only подключение к основной базе соревнования
// (проверка регистрации участников). Отдельный DSN, отдельные права.
type RegistryConfig struct {
	DSN string `mapstructure:"dsn"`
}

// RedisConfig содержит унифицированные настройки подключения к Redis
// Поддерживает режимы: single, sentinel, cluster
type RedisConfig struct {
	// Mode: Режим работы Redis ("single", "sentinel", "cluster"). По умолчанию "single".
	Mode string `mapstructure:"mode"`

	// Addrs: Список адресов Redis (хост:порт). Используется для всех режимов.
	// Для 'single', если не пуст, используется первый адрес из списка.
	Addrs []string `mapstructure:"addrs"`

	// Addr: Альтернативный адрес для режима 'single' (для обратной совместимости).
	// Используется, если Mode="single" и Addrs пустой.
	Addr string `mapstructure:"addr"`

	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`

	// MasterName: Имя мастер-сервера Redis (только для режима "sentinel")
	MasterName string `mapstructure:"master_name"`

	// MaxRetries: Максимальное количество попыток переподключения (-1 - бесконечно). По умолчанию 0 (без ретраев).
	MaxRetries int `mapstructure:"max_retries"`

	// MinRetryBackoff: Минимальный интервал между попытками (в миллисекундах). По умолчанию 8ms.
	MinRetryBackoff int `mapstructure:"min_retry_backoff"`

	// MaxRetryBackoff: Максимальный интервал между попытками (в миллисекундах). По умолчанию 512ms.
	MaxRetryBackoff int `mapstructure:"max_retry_backoff"`
}

// GPAIConfig содержит настройки identity-провайдера
type GPAIConfig struct {
	// BaseURL: Базовый адрес API провайдера (например, https://agi.example.org)
	BaseURL string `mapstructure:"base_url"`

	// TimeoutSec: Таймаут исходящих вызовов провайдера в секундах. По умолчанию 5.
	TimeoutSec int `mapstructure:"timeout_sec"`
}

// EmailConfig содержит настройки отправки писем (Resend)
type EmailConfig struct {
	ResendAPIKey string `mapstructure:"resend_api_key"`
	FromAddress  string `mapstructure:"from_address"`
	// Enabled: При false письма не отправляются, коды видны только в логах dev-стенда.
	Enabled bool `mapstructure:"enabled"`
}

// StorageConfig содержит настройки S3-совместимого хранилища заявок
type StorageConfig struct {
	Region    string `mapstructure:"region"`
	Endpoint  string `mapstructure:"endpoint"`
	Bucket    string `mapstructure:"bucket"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
}

// VerificationConfig содержит настройки кодов подтверждения почты
type VerificationConfig struct {
	// TTLMin: Срок жизни кода в минутах. По умолчанию 15.
	TTLMin int `mapstructure:"ttl_min"`

	// ResendCooldownSec: Пауза между повторными отправками в секундах. По умолчанию 60.
	ResendCooldownSec int `mapstructure:"resend_cooldown_sec"`

	// MaxAttempts: Лимит неверных вводов одного кода. По умолчанию 5.
	MaxAttempts int `mapstructure:"max_attempts"`

	// CodePepper: Секрет, подмешиваемый в хеш кода. Обязателен.
	CodePepper string `mapstructure:"code_pepper"`

	// BypassEnabled: Разрешает обходной код на dev-стендах. В production всегда false.
	BypassEnabled bool `mapstructure:"bypass_enabled"`
}

// AdminConfig содержит настройки административного доступа
type AdminConfig struct {
	// Token: Токен для X-Admin-Token. Пустой токен закрывает админ-маршруты.
	Token string `mapstructure:"token"`
}

// PostgresConnectionString формирует строку подключения к PostgreSQL
func (d *DatabaseConfig) PostgresConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// GPAITimeout возвращает таймаут провайдера как time.Duration
func (g *GPAIConfig) GPAITimeout() time.Duration {
	if g.TimeoutSec <= 0 {
		return 5 * time.Second
	}
	return time.Duration(g.TimeoutSec) * time.Second
}

// VerificationTTL возвращает срок жизни кода как time.Duration
func (v *VerificationConfig) VerificationTTL() time.Duration {
	if v.TTLMin <= 0 {
		return 15 * time.Minute
	}
	return time.Duration(v.TTLMin) * time.Minute
}

// ResendCooldown возвращает паузу между отправками как time.Duration
func (v *VerificationConfig) ResendCooldown() time.Duration {
	if v.ResendCooldownSec <= 0 {
		return 60 * time.Second
	}
	return time.Duration(v.ResendCooldownSec) * time.Second
}

// Load загружает конфигурацию из файла
func Load(configPath string) (*Config, error) {
	vip := viper.New() // Используем новый экземпляр Viper, чтобы избежать глобального состояния

	// 1. Устанавливаем значения по умолчанию
	vip.SetDefault("server.port", "8080")
	vip.SetDefault("gpai.timeout_sec", 5)
	vip.SetDefault("verification.ttl_min", 15)
	vip.SetDefault("verification.resend_cooldown_sec", 60)
	vip.SetDefault("verification.max_attempts", 5)

	// 2. Привязываем переменные окружения ЯВНО
	// Привязка для секции Database
	vip.BindEnv("database.host", "DATABASE_HOST")
	vip.BindEnv("database.port", "DATABASE_PORT")
	vip.BindEnv("database.user", "DATABASE_USER")
	vip.BindEnv("database.password", "DATABASE_PASSWORD")
	vip.BindEnv("database.dbname", "DATABASE_DBNAME")
	vip.BindEnv("database.sslmode", "DATABASE_SSLMODE")

	// Привязка для секции Registry (база соревнования, read-only)
	vip.BindEnv("registry.dsn", "REGISTRY_DATABASE_URL")

	// Привязка для секции Redis
	vip.BindEnv("redis.mode", "REDIS_MODE")
	vip.BindEnv("redis.addrs", "REDIS_ADDRS") // Для массива строк
	vip.BindEnv("redis.addr", "REDIS_ADDR")   // Для одиночной строки
	vip.BindEnv("redis.password", "REDIS_PASSWORD")
	vip.BindEnv("redis.db", "REDIS_DB")
	vip.BindEnv("redis.master_name", "REDIS_MASTER_NAME")

	// Привязка для секции GPAI
	vip.BindEnv("gpai.base_url", "GPAI_API_URL")
	vip.BindEnv("gpai.timeout_sec", "GPAI_TIMEOUT_SEC")

	// Привязка для секции Email
	vip.BindEnv("email.resend_api_key", "RESEND_API_KEY")
	vip.BindEnv("email.from_address", "EMAIL_FROM_ADDRESS")
	vip.BindEnv("email.enabled", "EMAIL_ENABLED")

	// Привязка для секции Storage
	vip.BindEnv("storage.region", "S3_REGION")
	vip.BindEnv("storage.endpoint", "S3_ENDPOINT")
	vip.BindEnv("storage.bucket", "S3_BUCKET")
	vip.BindEnv("storage.access_key", "S3_ACCESS_KEY")
	vip.BindEnv("storage.secret_key", "S3_SECRET_KEY")

	// Привязка для секции Verification
	vip.BindEnv("verification.ttl_min", "VERIFICATION_TTL_MIN")
	vip.BindEnv("verification.resend_cooldown_sec", "VERIFICATION_RESEND_COOLDOWN_SEC")
	vip.BindEnv("verification.max_attempts", "VERIFICATION_MAX_ATTEMPTS")
	vip.BindEnv("verification.code_pepper", "VERIFICATION_CODE_PEPPER")
	vip.BindEnv("verification.bypass_enabled", "VERIFICATION_BYPASS_ENABLED")

	// Привязка для секции Admin
	vip.BindEnv("admin.token", "ADMIN_TOKEN")

	// Привязка для Server
	vip.BindEnv("server.port", "SERVER_PORT")

	// 3. Устанавливаем путь к файлу конфигурации
	if configPath != "" {
		vip.SetConfigFile(configPath)
		// 4. Пытаемся прочитать файл конфигурации (не страшно, если его нет, т.к. есть BindEnv)
		if err := vip.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); ok {
				log.Printf("Файл конфигурации '%s' не найден, используются переменные окружения/умолчания.", configPath)
			} else {
				log.Printf("Предупреждение: не удалось прочитать файл конфигурации '%s': %v", configPath, err)
			}
		}
	}

	// 5. Анмаршалим конфигурацию (Viper объединит значения из файла и привязанных env vars)
	var cfg Config
	if err := vip.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 6. Логирование конфигурации (только в debug режиме)
	if os.Getenv("GIN_MODE") != "release" {
		log.Printf("--- Загруженные значения конфигурации ---")
		log.Printf("Database Host: %s", cfg.Database.Host)
		log.Printf("Database Port: %s", cfg.Database.Port)
		log.Printf("Database Name: %s", cfg.Database.DBName)
		log.Printf("Registry DSN Set: %t", cfg.Registry.DSN != "")
		log.Printf("Redis Addr: %s", cfg.Redis.Addr)
		log.Printf("Redis Mode: %s", cfg.Redis.Mode)
		log.Printf("GPAI Base URL: %s", cfg.GPAI.BaseURL)
		log.Printf("Email Enabled: %t", cfg.Email.Enabled)
		log.Printf("Storage Bucket: %s", cfg.Storage.Bucket)
		log.Printf("Verification Bypass Enabled: %t", cfg.Verification.BypassEnabled)
		log.Printf("Server Port: %s", cfg.Server.Port)
		log.Printf("-----------------------------------------")
	}

	// 7. Проверка обязательных параметров
	if cfg.Database.Host == "" || cfg.Database.DBName == "" || cfg.Database.User == "" {
		return nil, fmt.Errorf("database configuration (host, dbname, user) is incomplete in config (check DATABASE_HOST, DATABASE_DBNAME, DATABASE_USER env vars)")
	}
	if cfg.GPAI.BaseURL == "" {
		return nil, fmt.Errorf("GPAI base URL is required in config (check GPAI_API_URL env var)")
	}
	if cfg.Registry.DSN == "" {
		return nil, fmt.Errorf("registry database DSN is required in config (check REGISTRY_DATABASE_URL env var)")
	}
	if cfg.Verification.CodePepper == "" {
		return nil, fmt.Errorf("verification code pepper is required in config (check VERIFICATION_CODE_PEPPER env var)")
	}
	if cfg.Storage.Bucket == "" {
		return nil, fmt.Errorf("storage bucket is required in config (check S3_BUCKET env var)")
	}
	ginMode := os.Getenv("GIN_MODE")
	if ginMode == "release" {
		if cfg.Database.Password == "" {
			return nil, fmt.Errorf("database password is required in production mode (check DATABASE_PASSWORD env var)")
		}
		if cfg.Verification.BypassEnabled {
			return nil, fmt.Errorf("verification bypass must be disabled in production mode (check VERIFICATION_BYPASS_ENABLED env var)")
		}
		if cfg.Email.Enabled && cfg.Email.ResendAPIKey == "" {
			return nil, fmt.Errorf("resend API key is required when email is enabled in production mode (check RESEND_API_KEY env var)")
		}
	}

	return &cfg, nil
}
