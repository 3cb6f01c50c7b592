package testing

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/eleven-am/genkit/internal/introspect"
	"github.com/eleven-am/genkit/internal/model"
)

// Source is an in-memory live schema
type Source struct {
	mu      sync.Mutex
	tables  map[string]model.Table
	columns map[string][]model.Column

	// Err, when set, fails every call
	Err error
}

// NewSource creates an empty schema
func NewSource() *Source {
	return &Source{
		tables:  make(map[string]model.Table),
		columns: make(map[string][]model.Column),
	}
}

// AddTable adds or replaces a live table
func (s *Source) AddTable(name, comment string, columns ...model.Column) *Source {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tables[name] = model.Table{TableName: name, TableComment: comment}
	s.columns[name] = append([]model.Column(nil), columns...)
	return s
}

// SetColumns replaces the live columns of a table
func (s *Source) SetColumns(name string, columns ...model.Column) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.columns[name] = append([]model.Column(nil), columns...)
}

// ListTables returns live tables matching the filter, sorted by name
func (s *Source) ListTables(ctx context.Context, f introspect.Filter) ([]model.Table, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Err != nil {
		return nil, s.Err
	}

	exclude := make(map[string]bool, len(f.Exclude))
	for _, name := range f.Exclude {
		exclude[name] = true
	}

	var out []model.Table
	for name, t := range s.tables {
		if exclude[name] || hasAnyPrefix(name, f.ExcludePrefixes) {
			continue
		}
		if f.Name != "" && !strings.Contains(strings.ToLower(name), strings.ToLower(f.Name)) {
			continue
		}
		if f.Comment != "" && !strings.Contains(strings.ToLower(t.TableComment), strings.ToLower(f.Comment)) {
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TableName < out[j].TableName })
	return out, nil
}

// TablesByNames returns the named live tables that exist
func (s *Source) TablesByNames(ctx context.Context, names []string) ([]model.Table, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Err != nil {
		return nil, s.Err
	}

	var out []model.Table
	for _, name := range names {
		if t, ok := s.tables[name]; ok {
			out = append(out, t)
		}
	}
	return out, nil
}

// ColumnsByTable returns a copy of the live columns of a table
func (s *Source) ColumnsByTable(ctx context.Context, name string) ([]model.Column, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Err != nil {
		return nil, s.Err
	}
	return append([]model.Column(nil), s.columns[name]...), nil
}

func hasAnyPrefix(name string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(name, p) {
			return true
		}
	}
	return false
}

// JobLogColumns is the live structure of sys_job_log
func JobLogColumns() []model.Column {
	return []model.Column{
		{ColumnName: "job_log_id", ColumnType: "bigint(20)", ColumnSort: 1, ColumnComment: "Task log ID", IsPk: true, IsIncrement: true},
		{ColumnName: "job_name", ColumnType: "varchar(64)", ColumnSort: 2, ColumnComment: "Task name", IsRequired: true},
		{ColumnName: "job_group", ColumnType: "varchar(64)", ColumnSort: 3, ColumnComment: "Task group name", IsRequired: true},
		{ColumnName: "invoke_target", ColumnType: "varchar(500)", ColumnSort: 4, ColumnComment: "Invoke target string", IsRequired: true},
		{ColumnName: "job_message", ColumnType: "varchar(500)", ColumnSort: 5, ColumnComment: "Log message"},
		{ColumnName: "status", ColumnType: "char(1)", ColumnSort: 6, ColumnComment: "Execution status (0 normal 1 failed)"},
		{ColumnName: "exception_info", ColumnType: "varchar(2000)", ColumnSort: 7, ColumnComment: "Exception info"},
		{ColumnName: "create_time", ColumnType: "datetime", ColumnSort: 8, ColumnComment: "Create time"},
	}
}

// NoticeColumns is the live structure of sys_notice
func NoticeColumns() []model.Column {
	return []model.Column{
		{ColumnName: "notice_id", ColumnType: "int(4)", ColumnSort: 1, ColumnComment: "Notice ID", IsPk: true, IsIncrement: true},
		{ColumnName: "notice_title", ColumnType: "varchar(50)", ColumnSort: 2, ColumnComment: "Notice title", IsRequired: true},
		{ColumnName: "notice_type", ColumnType: "char(1)", ColumnSort: 3, ColumnComment: "Notice type (1 notice 2 bulletin)", IsRequired: true},
		{ColumnName: "notice_content", ColumnType: "longblob", ColumnSort: 4, ColumnComment: "Notice content"},
		{ColumnName: "status", ColumnType: "char(1)", ColumnSort: 5, ColumnComment: "Notice status (0 open 1 closed)"},
		{ColumnName: "create_by", ColumnType: "varchar(64)", ColumnSort: 6, ColumnComment: "Creator"},
		{ColumnName: "create_time", ColumnType: "datetime", ColumnSort: 7, ColumnComment: "Create time"},
		{ColumnName: "remark", ColumnType: "varchar(255)", ColumnSort: 8, ColumnComment: "Remark"},
	}
}

// SampleSource is a schema holding sys_job_log, sys_notice, an empty table and a
// generator table.
func SampleSource() *Source {
	return NewSource().
		AddTable("sys_job_log", "Scheduled task log table", JobLogColumns()...).
		AddTable("sys_notice", "Notice table", NoticeColumns()...).
		AddTable("sys_empty", "Table without columns").
		AddTable("gen_table", "Code generation table", model.Column{ColumnName: "table_id", ColumnType: "bigint(20)", ColumnSort: 1, IsPk: true})
}

// ColumnNames lists column names in order
func ColumnNames(columns []model.Column) []string {
	names := make([]string, 0, len(columns))
	for _, c := range columns {
		names = append(names, c.ColumnName)
	}
	return names
}

// FindColumn returns the named column or panics; fixtures are trusted
func FindColumn(columns []model.Column, name string) model.Column {
	for _, c := range columns {
		if c.ColumnName == name {
			return c
		}
	}
	panic(fmt.Sprintf("column %s not found", name))
}
