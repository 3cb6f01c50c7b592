package store

import (
	"context"
	"fmt"
	"strings"
)

// Table names of the metadata schema.
const (
	TableGenTable  = "gen_table"
	TableGenColumn = "gen_table_column"
)

type dialect struct {
	id        string
	timestamp string
	indexes   bool
}

var dialects = map[string]dialect{
	DriverSQLite:   {id: "INTEGER PRIMARY KEY AUTOINCREMENT", timestamp: "DATETIME", indexes: true},
	DriverPostgres: {id: "BIGSERIAL PRIMARY KEY", timestamp: "TIMESTAMP", indexes: true},
	DriverMySQL:    {id: "BIGINT AUTO_INCREMENT PRIMARY KEY", timestamp: "DATETIME"},
}

func schemaStatements(driver string) ([]string, error) {
	d, ok := dialects[driver]
	if !ok {
		return nil, fmt.Errorf("unsupported store driver: %s", driver)
	}

	r := strings.NewReplacer("{id}", d.id, "{ts}", d.timestamp)

	statements := []string{
		r.Replace(`CREATE TABLE IF NOT EXISTS gen_table (
	table_id {id},
	table_name VARCHAR(100) NOT NULL UNIQUE,
	table_comment VARCHAR(100) NOT NULL DEFAULT '',
	sub_table_name VARCHAR(100) NOT NULL DEFAULT '',
	sub_table_fk_name VARCHAR(100) NOT NULL DEFAULT '',
	class_name VARCHAR(100) NOT NULL DEFAULT '',
	template_category VARCHAR(20) NOT NULL DEFAULT 'crud',
	module_name VARCHAR(100) NOT NULL DEFAULT '',
	business_name VARCHAR(100) NOT NULL DEFAULT '',
	function_name VARCHAR(100) NOT NULL DEFAULT '',
	function_author VARCHAR(100) NOT NULL DEFAULT '',
	remark VARCHAR(500) NOT NULL DEFAULT '',
	create_by VARCHAR(64) NOT NULL DEFAULT '',
	create_time {ts} NOT NULL,
	update_by VARCHAR(64) NOT NULL DEFAULT '',
	update_time {ts} NOT NULL
)`),
		r.Replace(`CREATE TABLE IF NOT EXISTS gen_table_column (
	column_id {id},
	table_id BIGINT NOT NULL,
	column_name VARCHAR(100) NOT NULL,
	column_comment VARCHAR(500) NOT NULL DEFAULT '',
	column_type VARCHAR(100) NOT NULL DEFAULT '',
	javalang_type VARCHAR(100) NOT NULL DEFAULT '',
	tslang_type VARCHAR(100) NOT NULL DEFAULT '',
	field_name VARCHAR(100) NOT NULL DEFAULT '',
	is_pk CHAR(1) NOT NULL DEFAULT '0',
	is_increment CHAR(1) NOT NULL DEFAULT '0',
	is_required CHAR(1) NOT NULL DEFAULT '0',
	is_insert CHAR(1) NOT NULL DEFAULT '0',
	is_edit CHAR(1) NOT NULL DEFAULT '0',
	is_list CHAR(1) NOT NULL DEFAULT '0',
	is_query CHAR(1) NOT NULL DEFAULT '0',
	query_type VARCHAR(100) NOT NULL DEFAULT 'EQ',
	html_type VARCHAR(100) NOT NULL DEFAULT '',
	dict_type VARCHAR(100) NOT NULL DEFAULT '',
	column_sort INTEGER NOT NULL DEFAULT 0,
	create_by VARCHAR(64) NOT NULL DEFAULT '',
	create_time {ts} NOT NULL
)`),
	}

	if d.indexes {
		statements = append(statements,
			"CREATE INDEX IF NOT EXISTS idx_gen_table_column_table_id ON gen_table_column (table_id)")
	}

	return statements, nil
}

// Migrate creates the metadata tables when they do not exist.
func (s *Store) Migrate(ctx context.Context) error {
	statements, err := schemaStatements(s.driver)
	if err != nil {
		return err
	}

	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return translate(err, "migrate", "")
		}
	}

	s.log.Debug("Metadata schema ready", "driver", s.driver)
	return nil
}
