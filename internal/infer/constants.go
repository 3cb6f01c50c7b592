package infer

// Default attribution for bootstrapped tables.
const (
	DefaultAuthor   = "genkit"
	DefaultModule   = "system"
	DefaultCategory = "crud"
)

var (
	stringTypes = set("char", "varchar", "nvarchar", "varchar2", "bpchar")
	textTypes   = set("tinytext", "text", "mediumtext", "longtext")
	timeTypes   = set("datetime", "time", "date", "timestamp", "timestamptz", "timetz")
	numberTypes = set(
		"tinyint", "smallint", "mediumint", "int", "number", "integer", "bigint",
		"float", "double", "decimal", "numeric", "real", "double precision",
	)

	// Columns that never take part in forms, lists or search.
	notEditable  = set("id", "create_by", "create_time", "update_by", "update_time")
	notListable  = set("id", "create_by", "create_time", "update_by", "update_time")
	notQueryable = set("id", "create_by", "create_time", "update_by", "update_time")
)

// textareaLength is the declared string length from which a textarea replaces an input.
const textareaLength = 500

func set(values ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(values))
	for _, v := range values {
		m[v] = struct{}{}
	}
	return m
}

func in(m map[string]struct{}, v string) bool {
	_, ok := m[v]
	return ok
}

// IsNumberType reports whether a base type keyword is numeric.
func IsNumberType(base string) bool {
	return in(numberTypes, base)
}
