// Package introspect reads table and column definitions from a live database.
package introspect

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/eleven-am/genkit/internal/logger"
	"github.com/eleven-am/genkit/internal/model"
)

// Supported drivers.
const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
)

// Inspector lists tables and columns of one database schema.
type Inspector struct {
	db     *sqlx.DB
	driver string
	schema string
}

// NewInspector wraps an open connection. schema is only used by PostgreSQL and defaults
// to "public".
func NewInspector(db *sqlx.DB, driver, schema string) *Inspector {
	if driver == DriverPostgres && schema == "" {
		schema = "public"
	}
	return &Inspector{
		db:     db,
		driver: driver,
		schema: schema,
	}
}

// Open connects to the database at url.
func Open(ctx context.Context, driver, url, schema string) (*Inspector, error) {
	dsn := url
	switch driver {
	case DriverMySQL:
		cfg, err := mysql.ParseDSN(url)
		if err != nil {
			return nil, fmt.Errorf("invalid mysql dsn: %w", err)
		}
		cfg.ParseTime = true
		dsn = cfg.FormatDSN()
	case DriverPostgres:
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}

	db, err := sqlx.ConnectContext(ctx, driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to source database: %w", err)
	}

	logger.Source().Debug("Connected to source database", "driver", driver)
	return NewInspector(db, driver, schema), nil
}

// Close closes the underlying connection.
func (i *Inspector) Close() error {
	return i.db.Close()
}

// Driver returns the driver name.
func (i *Inspector) Driver() string {
	return i.driver
}

// ListTables returns live tables matching f, newest first where the database tracks it.
func (i *Inspector) ListTables(ctx context.Context, f Filter) ([]model.Table, error) {
	var query squirrel.SelectBuilder
	switch i.driver {
	case DriverPostgres:
		query = i.postgresTables()
	case DriverMySQL:
		query = i.mysqlTables()
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", i.driver)
	}

	query = i.applyFilter(query, f)
	tables, err := i.selectTables(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	return tables, nil
}

// TablesByNames returns the live tables with the given names. Unknown names are skipped.
func (i *Inspector) TablesByNames(ctx context.Context, names []string) ([]model.Table, error) {
	if len(names) == 0 {
		return nil, nil
	}

	var query squirrel.SelectBuilder
	switch i.driver {
	case DriverPostgres:
		query = i.postgresTables().Where(squirrel.Eq{"c.relname": names})
	case DriverMySQL:
		query = i.mysqlTables().Where(squirrel.Eq{"table_name": names})
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", i.driver)
	}

	tables, err := i.selectTables(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get tables by name: %w", err)
	}
	return tables, nil
}

// ColumnsByTable returns the raw columns of a live table in ordinal order. Only source
// fields are populated. A missing table yields an empty slice.
func (i *Inspector) ColumnsByTable(ctx context.Context, tableName string) ([]model.Column, error) {
	var (
		columns []model.Column
		err     error
	)
	switch i.driver {
	case DriverPostgres:
		err = i.db.SelectContext(ctx, &columns, postgresColumnsQuery, i.schema, tableName)
		for idx := range columns {
			columns[idx].ColumnType = NormalizePostgresType(columns[idx].ColumnType)
		}
	case DriverMySQL:
		err = i.db.SelectContext(ctx, &columns, mysqlColumnsQuery, tableName)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", i.driver)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get columns of %s: %w", tableName, err)
	}

	logger.Source().Debug("Introspected columns", "table", tableName, "columns", len(columns))
	return columns, nil
}

func (i *Inspector) applyFilter(query squirrel.SelectBuilder, f Filter) squirrel.SelectBuilder {
	nameCol, commentCol := "table_name", "table_comment"
	if i.driver == DriverPostgres {
		nameCol = "c.relname"
		commentCol = "COALESCE(obj_description(c.oid, 'pg_class'), '')"
	}

	if f.Name != "" {
		query = query.Where(i.contains(nameCol, f.Name))
	}
	if f.Comment != "" {
		query = query.Where(i.contains(commentCol, f.Comment))
	}
	if len(f.Exclude) > 0 {
		query = query.Where(squirrel.NotEq{nameCol: f.Exclude})
	}
	for _, prefix := range f.ExcludePrefixes {
		query = query.Where(squirrel.NotLike{nameCol: prefix + "%"})
	}
	return query
}

// contains matches a case-insensitive substring. MySQL's default collations already
// compare case-insensitively and it has no ILIKE.
func (i *Inspector) contains(column, value string) squirrel.Sqlizer {
	pattern := "%" + value + "%"
	if i.driver == DriverPostgres {
		return squirrel.ILike{column: pattern}
	}
	return squirrel.Like{column: pattern}
}

func (i *Inspector) selectTables(ctx context.Context, query squirrel.SelectBuilder) ([]model.Table, error) {
	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	var rows []tableRow
	if err := i.db.SelectContext(ctx, &rows, sqlStr, args...); err != nil {
		return nil, err
	}
	return toModels(rows), nil
}
