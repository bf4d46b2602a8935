package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"reports_srv/internal/apperr"
	"reports_srv/internal/database"
	"reports_srv/internal/models"
	"reports_srv/internal/sqlbuilder"

	"github.com/sirupsen/logrus"
)

// ConnSource выдает соединения для одной операции
type ConnSource interface {
	Acquire(ctx context.Context) (*database.Conn, error)
}

// SQLStore хранит отчеты в реляционной таблице.
// Каждая операция занимает одно соединение и освобождает его только после завершения запросов.
type SQLStore struct {
	conns   ConnSource
	table   string
	columns []sqlbuilder.Column
	now     func() time.Time
	logger  *logrus.Logger
}

// NewSQLStore создает реляционное хранилище для указанной таблицы
func NewSQLStore(conns ConnSource, table string, logger *logrus.Logger, opts ...Option) *SQLStore {
	o := applyOptions(opts)

	columns := make([]sqlbuilder.Column, len(models.ReportSchema))
	for i, f := range models.ReportSchema {
		columns[i] = sqlbuilder.Column{Name: f.Column, As: f.Name}
	}

	return &SQLStore{
		conns:   conns,
		table:   table,
		columns: columns,
		now:     o.now,
		logger:  logger,
	}
}

// List выполняет SELECT с предикатами фильтра
func (s *SQLStore) List(ctx context.Context, filter models.ReportFilter) ([]models.Report, error) {
	conn, err := s.conns.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer s.release(conn)

	var where []sqlbuilder.WhereClause
	if filter.Title != "" {
		where = append(where, sqlbuilder.WhereClause{Name: models.ColumnFor("title"), Value: filter.Title})
	}
	if filter.DescriptionContains != "" {
		where = append(where, sqlbuilder.WhereClause{
			Name:  models.ColumnFor("description"),
			Value: filter.DescriptionContains,
			Match: sqlbuilder.MatchContains,
		})
	}

	return s.query(ctx, conn, sqlbuilder.Select(conn.Escaper, s.table, s.columns, where))
}

// GetByID возвращает отчет; больше одной строки считается ошибкой хранилища
func (s *SQLStore) GetByID(ctx context.Context, id int64) (*models.Report, error) {
	conn, err := s.conns.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer s.release(conn)

	return s.getByID(ctx, conn, id)
}

// Create вставляет строку и перечитывает ее
func (s *SQLStore) Create(ctx context.Context, params models.CreateParams) (*models.Report, error) {
	conn, err := s.conns.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer s.release(conn)

	now := s.now().UTC()
	values := []sqlbuilder.NameValue{
		{Name: models.ColumnFor("title"), Value: params.Title},
		{Name: models.ColumnFor("description"), Value: params.Description},
		{Name: models.ColumnFor("createdAt"), Value: now},
		{Name: models.ColumnFor("createdBy"), Value: params.CreatedBy},
		{Name: models.ColumnFor("lastModifiedAt"), Value: now},
		{Name: models.ColumnFor("lastModifiedBy"), Value: params.CreatedBy},
	}

	var id int64
	if conn.SupportsLastInsertID() {
		result, err := conn.Exec(ctx, sqlbuilder.Insert(conn.Escaper, s.table, values))
		if err != nil {
			return nil, database.WrapError("failed to insert report", err)
		}
		if err := expectOneRow(result, "insert"); err != nil {
			return nil, err
		}
		if id, err = result.LastInsertId(); err != nil {
			return nil, database.WrapError("failed to read inserted report id", err)
		}
	} else {
		statement := sqlbuilder.InsertReturning(conn.Escaper, s.table, values, models.ColumnFor("id"))
		if err := conn.QueryRow(ctx, statement).Scan(&id); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, apperr.Internal("insert returned no report id")
			}
			return nil, database.WrapError("failed to insert report", err)
		}
	}

	return s.getByID(ctx, conn, id)
}

// Update изменяет строку; ноль затронутых строк означает отсутствие отчета
func (s *SQLStore) Update(ctx context.Context, id int64, params models.UpdateParams) (*models.Report, error) {
	conn, err := s.conns.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer s.release(conn)

	values := []sqlbuilder.NameValue{
		{Name: models.ColumnFor("title"), Value: params.Title},
		{Name: models.ColumnFor("description"), Value: params.Description},
		{Name: models.ColumnFor("lastModifiedBy"), Value: params.LastModifiedBy},
		{Name: models.ColumnFor("lastModifiedAt"), Value: s.now().UTC()},
	}
	statement := sqlbuilder.Update(conn.Escaper, s.table, values, s.idClause(id))

	result, err := conn.Exec(ctx, statement)
	if err != nil {
		return nil, database.WrapError("failed to update report", err)
	}
	if err := expectOneRowOrNotFound(result, id, "update"); err != nil {
		return nil, err
	}

	return s.getByID(ctx, conn, id)
}

// Delete удаляет строку и возвращает ее снимок до удаления
func (s *SQLStore) Delete(ctx context.Context, id int64) (*models.Report, error) {
	conn, err := s.conns.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer s.release(conn)

	snapshot, err := s.getByID(ctx, conn, id)
	if err != nil {
		return nil, err
	}

	result, err := conn.Exec(ctx, sqlbuilder.Delete(conn.Escaper, s.table, s.idClause(id)))
	if err != nil {
		return nil, database.WrapError("failed to delete report", err)
	}
	if err := expectOneRowOrNotFound(result, id, "delete"); err != nil {
		return nil, err
	}

	return snapshot, nil
}

func (s *SQLStore) getByID(ctx context.Context, conn *database.Conn, id int64) (*models.Report, error) {
	statement := sqlbuilder.Select(conn.Escaper, s.table, s.columns, []sqlbuilder.WhereClause{s.idClause(id)})
	reports, err := s.query(ctx, conn, statement)
	if err != nil {
		return nil, err
	}

	switch len(reports) {
	case 1:
		return &reports[0], nil
	case 0:
		return nil, apperr.NotFound("report %d not found", id)
	default:
		return nil, apperr.Storage(fmt.Sprintf("found %d reports with id %d", len(reports), id), nil)
	}
}

func (s *SQLStore) query(ctx context.Context, conn *database.Conn, statement string) ([]models.Report, error) {
	rows, err := conn.Query(ctx, statement)
	if err != nil {
		return nil, database.WrapError("failed to query reports", err)
	}
	defer rows.Close()

	reports := make([]models.Report, 0)
	for rows.Next() {
		var r models.Report
		if err := rows.Scan(r.ScanTargets()...); err != nil {
			return nil, database.WrapError("failed to scan report row", err)
		}
		reports = append(reports, r)
	}
	if err := rows.Err(); err != nil {
		return nil, database.WrapError("failed to read report rows", err)
	}
	return reports, nil
}

func (s *SQLStore) idClause(id int64) sqlbuilder.WhereClause {
	return sqlbuilder.WhereClause{Name: models.ColumnFor("id"), Value: id}
}

func (s *SQLStore) release(conn *database.Conn) {
	if err := conn.Release(); err != nil {
		s.logger.WithError(err).Warn("Ошибка освобождения соединения с БД")
	}
}

func expectOneRow(result sql.Result, operation string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return database.WrapError("failed to read affected rows", err)
	}
	if affected != 1 {
		return apperr.Internal("%s affected %d rows, expected 1", operation, affected)
	}
	return nil
}

func expectOneRowOrNotFound(result sql.Result, id int64, operation string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return database.WrapError("failed to read affected rows", err)
	}
	switch {
	case affected == 0:
		return apperr.NotFound("report %d not found", id)
	case affected > 1:
		return apperr.Internal("%s affected %d rows, expected 1", operation, affected)
	}
	return nil
}
