package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	StorageModeMemory = "memory"
	StorageModeSQL    = "sql"
)

// Server содержит настройки HTTP-сервера.
type Server struct {
	Address string `mapstructure:"address" validate:"required"`
	Debug   bool   `mapstructure:"debug"`
}

// DB содержит параметры подключения к БД.
type DB struct {
	Driver string `mapstructure:"driver" validate:"required,oneof=mysql postgres sqlite"`
	// DSN, если задан, используется вместо host/port/user/password/name
	DSN               string `mapstructure:"dsn"`
	Host              string `mapstructure:"host"`
	Port              int    `mapstructure:"port" validate:"gte=0,lte=65535"`
	User              string `mapstructure:"user"`
	Password          string `mapstructure:"password"`
	PasswordEncrypted bool   `mapstructure:"password_encrypted"`
	Name              string `mapstructure:"name"`
	Table             string `mapstructure:"table" validate:"required"`
	MaxOpenConns      int    `mapstructure:"max_open_conns" validate:"gte=0"`
	MaxIdleConns      int    `mapstructure:"max_idle_conns" validate:"gte=0"`
}

// Storage выбирает бэкенд хранилища отчетов.
type Storage struct {
	Mode string `mapstructure:"mode" validate:"required,oneof=memory sql"`
	Seed bool   `mapstructure:"seed"`
}

// Security содержит секрет для расшифровки учетных данных.
type Security struct {
	Secret string `mapstructure:"secret"`
}

// Logging содержит настройки логирования.
type Logging struct {
	Level  string `mapstructure:"level" validate:"required,oneof=trace debug info warn warning error fatal panic"`
	Format string `mapstructure:"format" validate:"oneof=text json"`
}

// Config объединяет все разделы конфигурации.
type Config struct {
	Server   Server   `mapstructure:"server"`
	DB       DB       `mapstructure:"database"`
	Storage  Storage  `mapstructure:"storage"`
	Security Security `mapstructure:"security"`
	Logging  Logging  `mapstructure:"logging"`
}

// Load читает конфигурацию из .env, файла config.yaml и окружения.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load .env file: %w", err)
	}

	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/reports-service")

	// Чтение файла конфигурации (опционально)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	return decode(v)
}

// LoadFile читает конфигурацию из указанного файла и окружения
func LoadFile(path string) (Config, error) {
	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return decode(v)
}

func newViper() *viper.Viper {
	v := viper.New()

	// Настройка для environment variables
	v.SetEnvPrefix("APP")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)
	bindEnvironmentVariables(v)
	return v
}

func decode(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(cfg); err != nil {
		return Config{}, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// setDefaults устанавливает значения по умолчанию
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.debug", false)

	// Database defaults
	v.SetDefault("database.driver", "mysql")
	v.SetDefault("database.dsn", "")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.user", "reports")
	v.SetDefault("database.password", "")
	v.SetDefault("database.password_encrypted", true)
	v.SetDefault("database.name", "reports")
	v.SetDefault("database.table", "report")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)

	// Storage defaults
	v.SetDefault("storage.mode", StorageModeMemory)
	v.SetDefault("storage.seed", true)

	v.SetDefault("security.secret", "")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// bindEnvironmentVariables привязывает переменные окружения к конфигурации
func bindEnvironmentVariables(v *viper.Viper) {
	// Server
	v.BindEnv("server.address", "APP_SERVER_ADDRESS")
	v.BindEnv("server.debug", "APP_SERVER_DEBUG")

	// Database
	v.BindEnv("database.driver", "APP_DATABASE_DRIVER")
	v.BindEnv("database.dsn", "APP_DATABASE_DSN")
	v.BindEnv("database.host", "APP_DATABASE_HOST")
	v.BindEnv("database.port", "APP_DATABASE_PORT")
	v.BindEnv("database.user", "APP_DATABASE_USER")
	v.BindEnv("database.password", "APP_DATABASE_PASSWORD")
	v.BindEnv("database.password_encrypted", "APP_DATABASE_PASSWORD_ENCRYPTED")
	v.BindEnv("database.name", "APP_DATABASE_NAME")
	v.BindEnv("database.table", "APP_DATABASE_TABLE")

	// Storage
	v.BindEnv("storage.mode", "APP_STORAGE_MODE")
	v.BindEnv("storage.seed", "APP_STORAGE_SEED")

	v.BindEnv("security.secret", "APP_SECURITY_SECRET")

	// Logging
	v.BindEnv("logging.level", "APP_LOGGING_LEVEL")
	v.BindEnv("logging.format", "APP_LOGGING_FORMAT")
}

var validate = validator.New()

// validateConfig проверяет корректность конфигурации
func validateConfig(cfg Config) error {
	if err := validate.Struct(cfg); err != nil {
		return err
	}

	if cfg.Storage.Mode != StorageModeSQL {
		return nil
	}

	// Проверка настроек базы данных для реляционного хранилища
	if cfg.DB.DSN == "" && cfg.DB.Name == "" {
		return fmt.Errorf("database name or DSN must be set for sql storage")
	}
	if cfg.DB.DSN == "" && cfg.DB.Driver != "sqlite" && cfg.DB.Host == "" {
		return fmt.Errorf("database host cannot be empty for driver %s", cfg.DB.Driver)
	}
	if cfg.DB.PasswordEncrypted && cfg.DB.Password != "" && cfg.Security.Secret == "" {
		return fmt.Errorf("security secret is required to decrypt the database password")
	}

	return nil
}

// IsSQL возвращает true, если отчеты хранятся в реляционной БД
func (c Config) IsSQL() bool {
	return c.Storage.Mode == StorageModeSQL
}

// String возвращает строковое представление конфигурации (без чувствительных данных)
func (c Config) String() string {
	return fmt.Sprintf("Config{Server: %+v, DB: {Driver: %s, Host: %s, Name: %s, Table: %s, DSN: [HIDDEN], Password: [HIDDEN]}, Storage: %+v, Logging: %+v}",
		c.Server, c.DB.Driver, c.DB.Host, c.DB.Name, c.DB.Table, c.Storage, c.Logging)
}
