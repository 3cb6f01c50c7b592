package introspect

import "github.com/Masterminds/squirrel"

const mysqlColumnsQuery = `
	SELECT
		column_name AS column_name,
		column_type AS column_type,
		ordinal_position AS column_sort,
		column_comment AS column_comment,
		CASE WHEN column_key = 'PRI' THEN '1' ELSE '0' END AS is_pk,
		CASE WHEN extra = 'auto_increment' THEN '1' ELSE '0' END AS is_increment,
		CASE WHEN is_nullable = 'NO' AND column_key <> 'PRI' THEN '1' ELSE '0' END AS is_required
	FROM information_schema.columns
	WHERE table_schema = (SELECT DATABASE()) AND table_name = ?
	ORDER BY ordinal_position
`

func (i *Inspector) mysqlTables() squirrel.SelectBuilder {
	return squirrel.Select(
		"table_name AS table_name",
		"table_comment AS table_comment",
		"create_time AS create_time",
		"update_time AS update_time",
	).
		From("information_schema.tables").
		Where("table_schema = (SELECT DATABASE())").
		Where(squirrel.Eq{"table_type": "BASE TABLE"}).
		OrderBy("create_time DESC").
		PlaceholderFormat(squirrel.Question)
}
