package database

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"reports_srv/internal/config"
	"reports_srv/internal/models"
	"reports_srv/internal/security"

	"github.com/go-sql-driver/mysql"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds the database configuration
type Config struct {
	Driver       string
	DSN          string
	Table        string
	Debug        bool
	MaxOpenConns int
	MaxIdleConns int
}

// ConfigFromApp builds the connection configuration, decrypting the password when needed
func ConfigFromApp(cfg config.Config) (Config, error) {
	dsn := cfg.DB.DSN
	if dsn == "" {
		password := cfg.DB.Password
		if cfg.DB.PasswordEncrypted && password != "" {
			plain, err := security.Decrypt(password, cfg.Security.Secret)
			if err != nil {
				return Config{}, fmt.Errorf("failed to decrypt database password: %w", err)
			}
			password = plain
		}

		var err error
		dsn, err = buildDSN(cfg.DB, password)
		if err != nil {
			return Config{}, err
		}
	}

	return Config{
		Driver:       cfg.DB.Driver,
		DSN:          dsn,
		Table:        cfg.DB.Table,
		Debug:        cfg.Server.Debug,
		MaxOpenConns: cfg.DB.MaxOpenConns,
		MaxIdleConns: cfg.DB.MaxIdleConns,
	}, nil
}

func buildDSN(db config.DB, password string) (string, error) {
	switch db.Driver {
	case DriverMySQL:
		mc := mysql.NewConfig()
		mc.User = db.User
		mc.Passwd = password
		mc.Net = "tcp"
		mc.Addr = net.JoinHostPort(db.Host, strconv.Itoa(db.Port))
		mc.DBName = db.Name
		mc.ParseTime = true
		mc.Loc = time.UTC
		// UPDATE должен сообщать о найденных, а не об измененных строках
		mc.ClientFoundRows = true
		return mc.FormatDSN(), nil

	case DriverPostgres:
		u := url.URL{
			Scheme:   "postgres",
			User:     url.UserPassword(db.User, password),
			Host:     net.JoinHostPort(db.Host, strconv.Itoa(db.Port)),
			Path:     "/" + db.Name,
			RawQuery: "sslmode=disable",
		}
		return u.String(), nil

	case DriverSQLite:
		return db.Name, nil

	default:
		return "", fmt.Errorf("unsupported database driver: %s", db.Driver)
	}
}

// NewDatabase creates a new database connection
func NewDatabase(cfg Config) (*gorm.DB, error) {
	var logLevel logger.LogLevel
	if cfg.Debug {
		logLevel = logger.Info
	} else {
		logLevel = logger.Error
	}

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	}

	dialector, err := newDialector(cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	// Set connection pool settings
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}

	return db, nil
}

func newDialector(cfg Config) (gorm.Dialector, error) {
	switch cfg.Driver {
	case DriverMySQL:
		return gormmysql.Open(cfg.DSN), nil
	case DriverPostgres:
		// драйвер lib/pq, а не pgx: ошибки приходят как *pq.Error
		return postgres.New(postgres.Config{DriverName: "postgres", DSN: cfg.DSN}), nil
	case DriverSQLite:
		return sqlite.Open(sqliteDSN(cfg.DSN)), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}
}

// sqliteDSN включает регистрозависимый LIKE на каждом соединении пула
func sqliteDSN(dsn string) string {
	if strings.Contains(dsn, "_cslike=") || strings.Contains(dsn, "_case_sensitive_like=") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_cslike=1"
}

// AutoMigrate creates or updates the report table
func AutoMigrate(db *gorm.DB, table string) error {
	if table == "" {
		table = models.DefaultTableName
	}
	if err := db.Table(table).AutoMigrate(&models.Report{}); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}
