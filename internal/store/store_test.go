package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eleven-am/genkit/internal/infer"
	"github.com/eleven-am/genkit/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	ctx := context.Background()
	s, err := Open(ctx, Options{Driver: DriverSQLite, URL: filepath.Join(t.TempDir(), "genkit.db")})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	require.NoError(t, s.Migrate(ctx))
	return s
}

func sampleTable(name, comment string) model.Table {
	table := infer.Table(name, comment, infer.DefaultDefaults())
	table.CreateBy = "admin"
	table.Columns = infer.Columns([]model.Column{
		{ColumnName: "id", ColumnType: "bigint(20)", ColumnSort: 1, ColumnComment: "ID", IsPk: true, IsIncrement: true},
		{ColumnName: "title", ColumnType: "varchar(100)", ColumnSort: 2, ColumnComment: "Title", IsRequired: true},
		{ColumnName: "status", ColumnType: "char(1)", ColumnSort: 3, ColumnComment: "Status"},
	})
	return table
}

func TestMigrateIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	assert.NoError(t, s.Migrate(context.Background()))
}

func TestCreateAndGetTable(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	created, err := s.CreateTables(ctx, []model.Table{sampleTable("sys_notice", "Notice table")})
	require.NoError(t, err)
	require.Len(t, created, 1)
	require.NotZero(t, created[0].TableID)
	require.Len(t, created[0].Columns, 3)

	got, err := s.GetTable(ctx, created[0].TableID)
	require.NoError(t, err)

	assert.Equal(t, "sys_notice", got.TableName)
	assert.Equal(t, "SysNotice", got.ClassName)
	assert.Equal(t, "notice", got.BusinessName)
	assert.Equal(t, "admin", got.CreateBy)
	assert.Equal(t, "admin", got.UpdateBy)
	assert.WithinDuration(t, time.Now(), got.CreateTime, time.Minute)

	require.Len(t, got.Columns, 3)
	id := got.Columns[0]
	assert.NotZero(t, id.ColumnID)
	assert.Equal(t, got.TableID, id.TableID)
	assert.True(t, bool(id.IsPk))
	assert.True(t, bool(id.IsIncrement))
	assert.False(t, bool(id.IsEdit))

	title := got.Columns[1]
	assert.True(t, bool(title.IsRequired))
	assert.True(t, bool(title.IsList))
	assert.Equal(t, model.HTMLInput, title.HTMLType)
	assert.Equal(t, model.QueryEQ, title.QueryType)
	assert.Equal(t, model.TSString, title.TSType)

	assert.Equal(t, model.HTMLRadio, got.Columns[2].HTMLType)

	byName, err := s.GetTableByName(ctx, "sys_notice")
	require.NoError(t, err)
	assert.Equal(t, got, byName)
}

func TestCreateTablesIsAllOrNothing(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.CreateTables(ctx, []model.Table{sampleTable("sys_notice", "Notice table")})
	require.NoError(t, err)

	_, err = s.CreateTables(ctx, []model.Table{
		sampleTable("sys_post", "Post table"),
		sampleTable("sys_notice", "Notice table"),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplicateKey)
	assert.True(t, IsDuplicate(err))

	names, err := s.TableNames(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"sys_notice"}, names)
}

func TestGetTableNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetTable(context.Background(), 42)
	require.Error(t, err)
	assert.True(t, IsNotFound(err))

	var storeErr *Error
	require.True(t, errors.As(err, &storeErr))
	assert.Equal(t, "get", storeErr.Op)
	assert.Equal(t, TableGenTable, storeErr.Table)
}

func TestListTables(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.CreateTables(ctx, []model.Table{
		sampleTable("sys_notice", "Notice table"),
		sampleTable("sys_post", "Post table"),
		sampleTable("sys_job_log", "Scheduled task log table"),
	})
	require.NoError(t, err)

	page, err := s.ListTables(ctx, ListQuery{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Total)
	assert.Equal(t, 1, page.Page)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "sys_job_log", page.Items[0].TableName, "newest first")
	assert.Empty(t, page.Items[0].Columns)

	page, err = s.ListTables(ctx, ListQuery{Page: 2, Limit: 2})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "sys_notice", page.Items[0].TableName)

	page, err = s.ListTables(ctx, ListQuery{TableComment: "TASK"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)
	assert.Equal(t, "sys_job_log", page.Items[0].TableName)

	page, err = s.ListTables(ctx, ListQuery{TableName: "nothing"})
	require.NoError(t, err)
	assert.Zero(t, page.Total)
	assert.NotNil(t, page.Items)
}

func TestUpdateTable(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	created, err := s.CreateTables(ctx, []model.Table{sampleTable("sys_notice", "Notice table")})
	require.NoError(t, err)

	table := created[0]
	table.FunctionName = "Announcements"
	table.UpdateBy = "editor"
	table.Columns[1].HTMLType = model.HTMLTextarea
	table.Columns[1].IsRequired = false
	table.Columns[2].DictType = "sys_normal_disable"
	table.Columns[2].ColumnType = "ignored(1)"
	require.NoError(t, s.UpdateTable(ctx, table))

	got, err := s.GetTable(ctx, table.TableID)
	require.NoError(t, err)
	assert.Equal(t, "Announcements", got.FunctionName)
	assert.Equal(t, "editor", got.UpdateBy)
	assert.Equal(t, model.HTMLTextarea, got.Columns[1].HTMLType)
	assert.False(t, bool(got.Columns[1].IsRequired))
	assert.Equal(t, "sys_normal_disable", got.Columns[2].DictType)
	assert.Equal(t, "char(1)", got.Columns[2].ColumnType, "source fields are not editable")

	table.TableID = 999
	err = s.UpdateTable(ctx, table)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteTablesRemovesColumns(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	created, err := s.CreateTables(ctx, []model.Table{
		sampleTable("sys_notice", "Notice table"),
		sampleTable("sys_post", "Post table"),
	})
	require.NoError(t, err)

	require.NoError(t, s.DeleteTables(ctx, created[0].TableID))
	require.NoError(t, s.DeleteTables(ctx))

	names, err := s.TableNames(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"sys_post"}, names)

	var orphans int
	require.NoError(t, s.DB().GetContext(ctx, &orphans, "SELECT COUNT(*) FROM gen_table_column WHERE table_id = ?", created[0].TableID))
	assert.Zero(t, orphans)
}

func TestReplaceColumns(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	created, err := s.CreateTables(ctx, []model.Table{sampleTable("sys_notice", "Notice table")})
	require.NoError(t, err)
	tableID := created[0].TableID

	replacement := infer.Columns([]model.Column{
		{ColumnName: "id", ColumnType: "bigint(20)", ColumnSort: 1, IsPk: true},
		{ColumnName: "notice_content", ColumnType: "longblob", ColumnSort: 2},
	})
	require.NoError(t, s.ReplaceColumns(ctx, tableID, replacement))

	got, err := s.GetTable(ctx, tableID)
	require.NoError(t, err)
	require.Len(t, got.Columns, 2)
	assert.Equal(t, "notice_content", got.Columns[1].ColumnName)
	assert.Equal(t, model.HTMLEditor, got.Columns[1].HTMLType)
	assert.Equal(t, tableID, got.Columns[1].TableID)
	assert.Greater(t, got.Columns[0].ColumnID, created[0].Columns[2].ColumnID, "identifiers are reassigned")
}

func TestReplaceColumnsRollsBackOnFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s := New(sqlx.NewDb(db, DriverSQLite), DriverSQLite)
	boom := errors.New("disk full")

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM gen_table_column WHERE table_id = \?`).
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(`INSERT INTO gen_table_column`).WillReturnError(boom)
	mock.ExpectRollback()

	err = s.ReplaceColumns(context.Background(), 7, infer.Columns([]model.Column{
		{ColumnName: "id", ColumnType: "bigint", ColumnSort: 1, IsPk: true},
	}))
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReplaceColumnsWithEmptySetOnlyDeletes(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s := New(sqlx.NewDb(db, DriverPostgres), DriverPostgres)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM gen_table_column WHERE table_id = \$1`).
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectCommit()

	require.NoError(t, s.ReplaceColumns(context.Background(), 7, nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), Options{Driver: "oracle"})
	assert.EqualError(t, err, "unsupported store driver: oracle")

	_, err = schemaStatements("oracle")
	assert.Error(t, err)
}

func TestNewPlaceholderFormatFollowsDriver(t *testing.T) {
	testCases := []struct {
		driver string
		query  string
	}{
		{DriverPostgres, `FROM gen_table WHERE table_id = \$1`},
		{DriverMySQL, `FROM gen_table WHERE table_id = \?`},
		{DriverSQLite, `FROM gen_table WHERE table_id = \?`},
	}

	for _, tc := range testCases {
		t.Run(tc.driver, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			s := New(sqlx.NewDb(db, tc.driver), tc.driver)

			mock.ExpectQuery(tc.query).WithArgs(int64(3)).WillReturnError(sql.ErrNoRows)

			_, err = s.GetTable(context.Background(), 3)
			assert.True(t, IsNotFound(err))
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestCreateTablesKeepsFullWidthMetadata(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	long := strings.Repeat("x", 100)
	table := sampleTable("sys_wide", long)
	table.ModuleName = long
	table.BusinessName = long
	table.FunctionName = long
	table.FunctionAuthor = long
	table.ClassName = long
	require.NoError(t, table.Validate())

	created, err := s.CreateTables(ctx, []model.Table{table})
	require.NoError(t, err)

	got, err := s.GetTable(ctx, created[0].TableID)
	require.NoError(t, err)
	assert.Equal(t, long, got.TableComment)
	assert.Equal(t, long, got.ModuleName)
	assert.Equal(t, long, got.BusinessName)
	assert.Equal(t, long, got.FunctionName)
	assert.Equal(t, long, got.FunctionAuthor)
	assert.NoError(t, got.Validate())
}

func TestSchemaWidthsMatchValidation(t *testing.T) {
	statements, err := schemaStatements(DriverPostgres)
	require.NoError(t, err)
	ddl := strings.Join(statements, "\n")

	for _, typ := range []reflect.Type{reflect.TypeOf(model.Table{}), reflect.TypeOf(model.Column{})} {
		for i := 0; i < typ.NumField(); i++ {
			field := typ.Field(i)
			column := field.Tag.Get("db")
			if column == "" || column == "-" {
				continue
			}

			for _, rule := range strings.Split(field.Tag.Get("validate"), ",") {
				limit, ok := strings.CutPrefix(rule, "max=")
				if !ok {
					continue
				}
				assert.Contains(t, ddl, fmt.Sprintf("\t%s VARCHAR(%s)", column, limit), "%s.%s", typ.Name(), field.Name)
			}
		}
	}
}
