// Package store persists generation tables and their columns.
package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/eleven-am/genkit/internal/logger"
	"github.com/eleven-am/genkit/internal/model"
)

// Supported drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
)

var tableFields = []string{
	"table_id", "table_name", "table_comment", "sub_table_name", "sub_table_fk_name",
	"class_name", "template_category", "module_name", "business_name", "function_name",
	"function_author", "remark", "create_by", "create_time", "update_by", "update_time",
}

var columnFields = []string{
	"column_id", "table_id", "column_name", "column_comment", "column_type", "javalang_type",
	"tslang_type", "field_name", "is_pk", "is_increment", "is_required", "is_insert", "is_edit",
	"is_list", "is_query", "query_type", "html_type", "dict_type", "column_sort", "create_by",
}

// Options configures Open.
type Options struct {
	Driver         string
	URL            string
	MaxConnections int
}

// ListQuery filters and pages ListTables. Page is 1-based.
type ListQuery struct {
	TableName    string `json:"tableName"`
	TableComment string `json:"tableComment"`
	Page         int    `json:"page"`
	Limit        int    `json:"limit"`
}

// Page is one page of tables, without columns.
type Page struct {
	Items []model.Table `json:"items"`
	Total int64         `json:"total"`
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
}

// Store reads and writes gen_table and gen_table_column.
type Store struct {
	db      *sqlx.DB
	driver  string
	builder squirrel.StatementBuilderType
	tm      *TransactionManager
	log     logger.Logger
	now     func() time.Time
}

// New wraps an open connection. driver selects the SQL dialect.
func New(db *sqlx.DB, driver string) *Store {
	var format squirrel.PlaceholderFormat = squirrel.Question
	if driver == DriverPostgres {
		format = squirrel.Dollar
	}

	return &Store{
		db:      db,
		driver:  driver,
		builder: squirrel.StatementBuilder.PlaceholderFormat(format),
		tm:      NewTransactionManager(db),
		log:     logger.Store(),
		now:     func() time.Time { return time.Now().UTC().Truncate(time.Second) },
	}
}

// Open connects to the metadata database.
func Open(ctx context.Context, opts Options) (*Store, error) {
	dsn := opts.URL
	switch opts.Driver {
	case DriverSQLite, DriverPostgres:
	case DriverMySQL:
		cfg, err := mysql.ParseDSN(opts.URL)
		if err != nil {
			return nil, fmt.Errorf("invalid mysql dsn: %w", err)
		}
		cfg.ParseTime = true
		cfg.Loc = time.UTC
		dsn = cfg.FormatDSN()
	default:
		return nil, fmt.Errorf("unsupported store driver: %s", opts.Driver)
	}

	db, err := sqlx.ConnectContext(ctx, opts.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to store: %w", err)
	}

	if opts.Driver == DriverSQLite {
		db.SetMaxOpenConns(1)
		if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout = 5000"); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to configure sqlite: %w", err)
		}
	} else if opts.MaxConnections > 0 {
		db.SetMaxOpenConns(opts.MaxConnections)
	}

	return New(db, opts.Driver), nil
}

// Close closes the connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying connection.
func (s *Store) DB() *sqlx.DB {
	return s.db
}

// Ping checks the connection.
func (s *Store) Ping(ctx context.Context) error {
	return translate(s.db.PingContext(ctx), "ping", "")
}

// ListTables returns a page of tables matching q. Columns are not loaded.
func (s *Store) ListTables(ctx context.Context, q ListQuery) (*Page, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = 10
	}

	var where squirrel.And
	if q.TableName != "" {
		where = append(where, squirrel.Like{"LOWER(table_name)": "%" + strings.ToLower(q.TableName) + "%"})
	}
	if q.TableComment != "" {
		where = append(where, squirrel.Like{"LOWER(table_comment)": "%" + strings.ToLower(q.TableComment) + "%"})
	}

	countQuery := s.builder.Select("COUNT(*)").From(TableGenTable)
	listQuery := s.builder.Select(tableFields...).From(TableGenTable).
		OrderBy("table_id DESC").
		Limit(uint64(q.Limit)).
		Offset(uint64((q.Page - 1) * q.Limit))
	if len(where) > 0 {
		countQuery = countQuery.Where(where)
		listQuery = listQuery.Where(where)
	}

	page := &Page{Page: q.Page, Limit: q.Limit, Items: []model.Table{}}

	sqlStr, args, err := countQuery.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build count query: %w", err)
	}
	if err := s.db.GetContext(ctx, &page.Total, sqlStr, args...); err != nil {
		return nil, translate(err, "list", TableGenTable)
	}

	sqlStr, args, err = listQuery.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list query: %w", err)
	}
	if err := s.db.SelectContext(ctx, &page.Items, sqlStr, args...); err != nil {
		return nil, translate(err, "list", TableGenTable)
	}

	return page, nil
}

// GetTable returns a table with its columns ordered by sort.
func (s *Store) GetTable(ctx context.Context, id int64) (*model.Table, error) {
	return s.getTable(ctx, squirrel.Eq{"table_id": id})
}

// GetTableByName returns a table with its columns ordered by sort.
func (s *Store) GetTableByName(ctx context.Context, name string) (*model.Table, error) {
	return s.getTable(ctx, squirrel.Eq{"table_name": name})
}

func (s *Store) getTable(ctx context.Context, where squirrel.Eq) (*model.Table, error) {
	sqlStr, args, err := s.builder.Select(tableFields...).From(TableGenTable).Where(where).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	var table model.Table
	if err := s.db.GetContext(ctx, &table, sqlStr, args...); err != nil {
		return nil, translate(err, "get", TableGenTable)
	}

	columns, err := s.columns(ctx, s.db, table.TableID)
	if err != nil {
		return nil, err
	}
	table.Columns = columns
	return &table, nil
}

func (s *Store) columns(ctx context.Context, exec DBExecutor, tableID int64) ([]model.Column, error) {
	sqlStr, args, err := s.builder.Select(columnFields...).From(TableGenColumn).
		Where(squirrel.Eq{"table_id": tableID}).
		OrderBy("column_sort", "column_id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	columns := []model.Column{}
	if err := exec.SelectContext(ctx, &columns, sqlStr, args...); err != nil {
		return nil, translate(err, "get columns", TableGenColumn)
	}
	return columns, nil
}

// TableNames returns the names of every persisted table.
func (s *Store) TableNames(ctx context.Context) ([]string, error) {
	sqlStr, args, err := s.builder.Select("table_name").From(TableGenTable).OrderBy("table_name").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	names := []string{}
	if err := s.db.SelectContext(ctx, &names, sqlStr, args...); err != nil {
		return nil, translate(err, "names", TableGenTable)
	}
	return names, nil
}

// CreateTables inserts tables and their columns in one transaction and returns them with
// identifiers assigned. A table name that already exists fails with ErrDuplicateKey and
// nothing is written.
func (s *Store) CreateTables(ctx context.Context, tables []model.Table) ([]model.Table, error) {
	created := make([]model.Table, 0, len(tables))
	now := s.now()

	err := s.tm.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		for _, t := range tables {
			t = t.Clone()
			t.CreateTime, t.UpdateTime = now, now
			if t.UpdateBy == "" {
				t.UpdateBy = t.CreateBy
			}

			id, err := s.insertTable(ctx, tx, t)
			if err != nil {
				return err
			}
			t.TableID = id

			for i := range t.Columns {
				t.Columns[i].TableID = id
			}
			if err := s.insertColumns(ctx, tx, t.Columns, now); err != nil {
				return err
			}

			columns, err := s.columns(ctx, tx, id)
			if err != nil {
				return err
			}
			t.Columns = columns
			created = append(created, t)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Created tables", "count", len(created))
	return created, nil
}

func (s *Store) insertTable(ctx context.Context, tx *sqlx.Tx, t model.Table) (int64, error) {
	query := s.builder.Insert(TableGenTable).
		Columns(tableFields[1:]...).
		Values(
			t.TableName, t.TableComment, t.SubTableName, t.SubTableFkName,
			t.ClassName, t.TemplateCategory, t.ModuleName, t.BusinessName, t.FunctionName,
			t.FunctionAuthor, t.Remark, t.CreateBy, t.CreateTime, t.UpdateBy, t.UpdateTime,
		)

	if s.driver == DriverPostgres {
		sqlStr, args, err := query.Suffix("RETURNING table_id").ToSql()
		if err != nil {
			return 0, fmt.Errorf("failed to build insert: %w", err)
		}
		var id int64
		if err := tx.QueryRowxContext(ctx, sqlStr, args...).Scan(&id); err != nil {
			return 0, translate(err, "insert", TableGenTable)
		}
		return id, nil
	}

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build insert: %w", err)
	}
	res, err := tx.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return 0, translate(err, "insert", TableGenTable)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, translate(err, "insert", TableGenTable)
	}
	return id, nil
}

func (s *Store) insertColumns(ctx context.Context, exec DBExecutor, columns []model.Column, now time.Time) error {
	if len(columns) == 0 {
		return nil
	}

	fields := append(append([]string{}, columnFields[1:]...), "create_time")
	query := s.builder.Insert(TableGenColumn).Columns(fields...)
	for _, c := range columns {
		query = query.Values(
			c.TableID, c.ColumnName, c.ColumnComment, c.ColumnType, c.JavaType,
			c.TSType, c.FieldName, c.IsPk, c.IsIncrement, c.IsRequired, c.IsInsert, c.IsEdit,
			c.IsList, c.IsQuery, string(c.QueryType), string(c.HTMLType), c.DictType, c.ColumnSort, c.CreateBy,
			now,
		)
	}

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build column insert: %w", err)
	}
	if _, err := exec.ExecContext(ctx, sqlStr, args...); err != nil {
		return translate(err, "insert columns", TableGenColumn)
	}
	return nil
}

// UpdateTable saves table metadata and the editable fields of its columns atomically.
// Columns are matched by ColumnID within the table; unknown columns are ignored.
func (s *Store) UpdateTable(ctx context.Context, t model.Table) error {
	t.UpdateTime = s.now()

	return s.tm.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		var exists int
		sqlStr, args, err := s.builder.Select("COUNT(*)").From(TableGenTable).
			Where(squirrel.Eq{"table_id": t.TableID}).ToSql()
		if err != nil {
			return fmt.Errorf("failed to build query: %w", err)
		}
		if err := tx.GetContext(ctx, &exists, sqlStr, args...); err != nil {
			return translate(err, "update", TableGenTable)
		}
		if exists == 0 {
			return &Error{Op: "update", Table: TableGenTable, Err: ErrNotFound}
		}

		sqlStr, args, err = s.builder.Update(TableGenTable).SetMap(map[string]interface{}{
			"table_name":        t.TableName,
			"table_comment":     t.TableComment,
			"sub_table_name":    t.SubTableName,
			"sub_table_fk_name": t.SubTableFkName,
			"class_name":        t.ClassName,
			"template_category": t.TemplateCategory,
			"module_name":       t.ModuleName,
			"business_name":     t.BusinessName,
			"function_name":     t.FunctionName,
			"function_author":   t.FunctionAuthor,
			"remark":            t.Remark,
			"update_by":         t.UpdateBy,
			"update_time":       t.UpdateTime,
		}).Where(squirrel.Eq{"table_id": t.TableID}).ToSql()
		if err != nil {
			return fmt.Errorf("failed to build update: %w", err)
		}
		if _, err := tx.ExecContext(ctx, sqlStr, args...); err != nil {
			return translate(err, "update", TableGenTable)
		}

		for _, c := range t.Columns {
			sqlStr, args, err := s.builder.Update(TableGenColumn).SetMap(map[string]interface{}{
				"column_comment": c.ColumnComment,
				"javalang_type":  c.JavaType,
				"tslang_type":    c.TSType,
				"field_name":     c.FieldName,
				"is_required":    c.IsRequired,
				"is_insert":      c.IsInsert,
				"is_edit":        c.IsEdit,
				"is_list":        c.IsList,
				"is_query":       c.IsQuery,
				"query_type":     string(c.QueryType),
				"html_type":      string(c.HTMLType),
				"dict_type":      c.DictType,
			}).Where(squirrel.Eq{"column_id": c.ColumnID, "table_id": t.TableID}).ToSql()
			if err != nil {
				return fmt.Errorf("failed to build column update: %w", err)
			}
			if _, err := tx.ExecContext(ctx, sqlStr, args...); err != nil {
				return translate(err, "update column", TableGenColumn)
			}
		}
		return nil
	})
}

// DeleteTables removes tables and their columns.
func (s *Store) DeleteTables(ctx context.Context, ids ...int64) error {
	if len(ids) == 0 {
		return nil
	}

	return s.tm.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		for _, table := range []string{TableGenColumn, TableGenTable} {
			sqlStr, args, err := s.builder.Delete(table).Where(squirrel.Eq{"table_id": ids}).ToSql()
			if err != nil {
				return fmt.Errorf("failed to build delete: %w", err)
			}
			if _, err := tx.ExecContext(ctx, sqlStr, args...); err != nil {
				return translate(err, "delete", table)
			}
		}
		return nil
	})
}

// ReplaceColumns swaps the whole column set of a table in one transaction. On any
// failure the previous columns stay in place.
func (s *Store) ReplaceColumns(ctx context.Context, tableID int64, columns []model.Column) error {
	now := s.now()

	err := s.tm.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		sqlStr, args, err := s.builder.Delete(TableGenColumn).Where(squirrel.Eq{"table_id": tableID}).ToSql()
		if err != nil {
			return fmt.Errorf("failed to build delete: %w", err)
		}
		if _, err := tx.ExecContext(ctx, sqlStr, args...); err != nil {
			return translate(err, "replace columns", TableGenColumn)
		}

		rows := make([]model.Column, len(columns))
		for i, c := range columns {
			c.TableID = tableID
			rows[i] = c
		}
		return s.insertColumns(ctx, tx, rows, now)
	})
	if err != nil {
		return err
	}

	s.log.Debug("Replaced columns", "table_id", tableID, "columns", len(columns))
	return nil
}
