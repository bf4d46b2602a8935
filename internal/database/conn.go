package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"reports_srv/internal/apperr"
	"reports_srv/internal/sqlbuilder"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"
)

// ConnProvider выдает соединения из пула по запросу
type ConnProvider struct {
	db      *sql.DB
	driver  string
	escaper sqlbuilder.Escaper
}

// NewConnProvider создает провайдер соединений поверх пула gorm
func NewConnProvider(db *gorm.DB, driver string) (*ConnProvider, error) {
	escaper, err := EscaperFor(driver)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	return &ConnProvider{db: sqlDB, driver: driver, escaper: escaper}, nil
}

// EscaperFor возвращает экранирование литералов для драйвера
func EscaperFor(driver string) (sqlbuilder.Escaper, error) {
	switch driver {
	case DriverMySQL:
		return sqlbuilder.MySQL, nil
	case DriverPostgres:
		return sqlbuilder.Postgres, nil
	case DriverSQLite:
		return sqlbuilder.ANSI, nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}
}

// Acquire занимает соединение; вызывающий обязан вызвать Release
func (p *ConnProvider) Acquire(ctx context.Context) (*Conn, error) {
	conn, err := p.db.Conn(ctx)
	if err != nil {
		return nil, WrapError("failed to acquire database connection", err)
	}
	return &Conn{conn: conn, driver: p.driver, Escaper: p.escaper}, nil
}

// Close закрывает пул
func (p *ConnProvider) Close() error {
	return p.db.Close()
}

// Conn занятое соединение с экранированием, соответствующим драйверу
type Conn struct {
	conn    *sql.Conn
	driver  string
	Escaper sqlbuilder.Escaper
}

func (c *Conn) Exec(ctx context.Context, statement string) (sql.Result, error) {
	return c.conn.ExecContext(ctx, statement)
}

func (c *Conn) Query(ctx context.Context, statement string) (*sql.Rows, error) {
	return c.conn.QueryContext(ctx, statement)
}

func (c *Conn) QueryRow(ctx context.Context, statement string) *sql.Row {
	return c.conn.QueryRowContext(ctx, statement)
}

// SupportsLastInsertID is false for postgres, which needs INSERT ... RETURNING
func (c *Conn) SupportsLastInsertID() bool {
	return c.driver != DriverPostgres
}

// Release возвращает соединение в пул
func (c *Conn) Release() error {
	return c.conn.Close()
}

// WrapError оборачивает ошибку драйвера в StorageError, сохраняя код и сообщение драйвера
func WrapError(message string, err error) *apperr.Error {
	appErr := apperr.Storage(message, err)
	if code, msg, ok := DriverError(err); ok {
		appErr.WithDriver(code, msg)
	}
	return appErr
}

// DriverError извлекает код и сообщение из ошибок известных драйверов
func DriverError(err error) (code, message string, ok bool) {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return strconv.Itoa(int(mysqlErr.Number)), mysqlErr.Message, true
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code), pqErr.Message, true
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return strconv.Itoa(int(sqliteErr.Code)), sqliteErr.Error(), true
	}

	return "", "", false
}
