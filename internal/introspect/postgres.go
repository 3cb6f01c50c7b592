package introspect

import (
	"regexp"
	"strings"

	"github.com/Masterminds/squirrel"
)

const postgresColumnsQuery = `
	SELECT
		column_name,
		column_type,
		column_sort,
		column_comment,
		CASE WHEN is_pk THEN '1' ELSE '0' END AS is_pk,
		CASE WHEN is_increment THEN '1' ELSE '0' END AS is_increment,
		CASE WHEN not_null AND NOT is_pk THEN '1' ELSE '0' END AS is_required
	FROM (
		SELECT
			a.attname AS column_name,
			format_type(a.atttypid, a.atttypmod) AS column_type,
			a.attnum AS column_sort,
			COALESCE(col_description(c.oid, a.attnum), '') AS column_comment,
			EXISTS (
				SELECT 1 FROM pg_index i
				WHERE i.indrelid = c.oid AND i.indisprimary AND a.attnum = ANY(i.indkey)
			) AS is_pk,
			(a.attidentity <> '' OR COALESCE(pg_get_expr(d.adbin, d.adrelid), '') LIKE 'nextval(%') AS is_increment,
			a.attnotnull AS not_null
		FROM pg_attribute a
		JOIN pg_class c ON c.oid = a.attrelid
		JOIN pg_namespace n ON n.oid = c.relnamespace
		LEFT JOIN pg_attrdef d ON d.adrelid = a.attrelid AND d.adnum = a.attnum
		WHERE n.nspname = $1 AND c.relname = $2 AND a.attnum > 0 AND NOT a.attisdropped
	) cols
	ORDER BY column_sort
`

func (i *Inspector) postgresTables() squirrel.SelectBuilder {
	return squirrel.Select(
		"c.relname AS table_name",
		"COALESCE(obj_description(c.oid, 'pg_class'), '') AS table_comment",
	).
		From("pg_class c").
		Join("pg_namespace n ON n.oid = c.relnamespace").
		Where(squirrel.Eq{"c.relkind": []string{"r", "p"}}).
		Where(squirrel.Eq{"n.nspname": i.schema}).
		OrderBy("c.relname").
		PlaceholderFormat(squirrel.Dollar)
}

var zonedType = regexp.MustCompile(`^(timestamp|time)(\(\d+\))? (with|without) time zone$`)

var spaceBeforeParen = regexp.MustCompile(`\s+\(`)

// postgresAliases maps format_type spellings onto the short names used elsewhere, longest
// first so "character varying" wins over "character".
var postgresAliases = []struct{ from, to string }{
	{"character varying", "varchar"},
	{"double precision", "double"},
	{"character", "char"},
	{"numeric", "decimal"},
	{"boolean", "bool"},
	{"int8", "bigint"},
	{"int4", "integer"},
	{"int2", "smallint"},
	{"float8", "double"},
	{"float4", "real"},
}

// NormalizePostgresType rewrites a format_type result into the MySQL-like spelling the
// inference rules expect: "character varying(100)" -> "varchar(100)",
// "timestamp(6) with time zone" -> "timestamptz(6)".
func NormalizePostgresType(typeName string) string {
	normalized := strings.Join(strings.Fields(strings.ToLower(typeName)), " ")

	if m := zonedType.FindStringSubmatch(normalized); m != nil {
		base := m[1]
		if m[3] == "with" {
			base += "tz"
		}
		return base + m[2]
	}

	for _, alias := range postgresAliases {
		if strings.HasPrefix(normalized, alias.from) {
			normalized = alias.to + normalized[len(alias.from):]
			break
		}
	}

	return spaceBeforeParen.ReplaceAllString(normalized, "(")
}
